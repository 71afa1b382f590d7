package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/config"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
)

const schema = `CREATE TABLE IF NOT EXISTS fx_settings (
	profile VARCHAR(64) NOT NULL PRIMARY KEY,
	quality VARCHAR(16) NOT NULL,
	animations_enabled BOOLEAN NOT NULL,
	reduced_motion BOOLEAN NOT NULL,
	particles_enabled BOOLEAN NOT NULL,
	screen_shake_enabled BOOLEAN NOT NULL,
	weather_effects_enabled BOOLEAN NOT NULL,
	last_tier VARCHAR(8) NOT NULL,
	updated_at DATETIME NOT NULL
)`

// DBConfig holds MySQL connection parameters.
type DBConfig struct {
	User     string
	Password string
	Addr     string
	Name     string
}

// DBConfigFromEnv reads FX_DBUSER, FX_DBPASSWORD, FX_DBADDR and FX_DBNAME.
func DBConfigFromEnv() DBConfig {
	return DBConfig{
		User:     config.GetEnv("FX_DBUSER", ""),
		Password: config.GetEnv("FX_DBPASSWORD", ""),
		Addr:     config.GetEnv("FX_DBADDR", "127.0.0.1:3306"),
		Name:     config.GetEnv("FX_DBNAME", "fx"),
	}
}

// DSN formats the connection string for the mysql driver.
func (c DBConfig) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = c.Addr
	cfg.DBName = c.Name
	cfg.AllowNativePasswords = true
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// OpenMySQL opens and pings the database.
func OpenMySQL(ctx context.Context, c DBConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", c.DSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql %s: %w", c.Addr, err)
	}
	return db, nil
}

// SQLStore keeps one settings row per profile.
type SQLStore struct {
	db      *sql.DB
	profile string
}

// NewSQLStore creates the table if needed and returns a store for profile.
func NewSQLStore(ctx context.Context, db *sql.DB, profile string) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create fx_settings: %w", err)
	}
	return &SQLStore{db: db, profile: profile}, nil
}

// Load reads the profile's row, or the defaults if there is none.
func (s *SQLStore) Load(ctx context.Context) (fx.Settings, error) {
	out := fx.DefaultSettings()
	var quality, tier string
	err := s.db.QueryRowContext(ctx, "SELECT "+
		"quality, "+
		"animations_enabled, "+
		"reduced_motion, "+
		"particles_enabled, "+
		"screen_shake_enabled, "+
		"weather_effects_enabled, "+
		"last_tier "+
		"FROM fx_settings WHERE profile = ?", s.profile).
		Scan(&quality, &out.AnimationsEnabled, &out.ReducedMotion, &out.ParticlesEnabled,
			&out.ScreenShakeEnabled, &out.WeatherEffectsEnabled, &tier)
	if errors.Is(err, sql.ErrNoRows) {
		return fx.DefaultSettings(), nil
	}
	if err != nil {
		return fx.DefaultSettings(), fmt.Errorf("load settings %s: %w", s.profile, err)
	}
	out.Quality = fx.QualityMode(quality)
	if err := out.LastTier.UnmarshalText([]byte(tier)); err != nil {
		out.LastTier = fx.TierMedium
	}
	return out, nil
}

// Save upserts the profile's row.
func (s *SQLStore) Save(ctx context.Context, v fx.Settings) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO fx_settings ("+
		"profile, quality, animations_enabled, reduced_motion, particles_enabled, "+
		"screen_shake_enabled, weather_effects_enabled, last_tier, updated_at) "+
		"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) "+
		"ON DUPLICATE KEY UPDATE "+
		"quality = VALUES(quality), "+
		"animations_enabled = VALUES(animations_enabled), "+
		"reduced_motion = VALUES(reduced_motion), "+
		"particles_enabled = VALUES(particles_enabled), "+
		"screen_shake_enabled = VALUES(screen_shake_enabled), "+
		"weather_effects_enabled = VALUES(weather_effects_enabled), "+
		"last_tier = VALUES(last_tier), "+
		"updated_at = VALUES(updated_at)",
		s.profile, string(v.Quality), v.AnimationsEnabled, v.ReducedMotion, v.ParticlesEnabled,
		v.ScreenShakeEnabled, v.WeatherEffectsEnabled, v.LastTier.String(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save settings %s: %w", s.profile, err)
	}
	return nil
}
