package loop

import (
	"bufio"
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/config"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/draw"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/settings"
)

func TestRun_TogglePersistsAndQuits(t *testing.T) {
	store := settings.NewFileStore(filepath.Join(t.TempDir(), "fx.yaml"))

	// Space starts the live screen, z turns particles off, then EOF quits.
	in := bufio.NewReader(strings.NewReader(" z"))
	var out bytes.Buffer

	done := make(chan error, 1)
	go func() {
		done <- Run(in, &out, Options{
			Config:       config.Default(),
			Store:        store,
			TermSizeFunc: draw.FixedTermSize(100, 40),
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end")
	}

	saved, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, saved.ParticlesEnabled)
	assert.True(t, saved.AnimationsEnabled)
	assert.Equal(t, fx.QualityAuto, saved.Quality)
}
