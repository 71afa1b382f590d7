package settings

import (
	"context"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/config"
)

// OpenFromEnv picks the settings store from the environment: MySQL when
// FX_DBUSER is set, otherwise a YAML file at FX_SETTINGS or defaultPath.
// The returned close function releases the database connection.
func OpenFromEnv(ctx context.Context, defaultPath string) (Store, func() error, error) {
	db := DBConfigFromEnv()
	if db.User == "" {
		return NewFileStore(config.GetEnv("FX_SETTINGS", defaultPath)), func() error { return nil }, nil
	}

	conn, err := OpenMySQL(ctx, db)
	if err != nil {
		return nil, nil, err
	}
	store, err := NewSQLStore(ctx, conn, config.GetEnv("FX_PROFILE", "default"))
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return store, conn.Close, nil
}
