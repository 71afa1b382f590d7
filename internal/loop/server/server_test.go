package server

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/clock"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/config"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/engine"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/quality"
)

func newTestServer(t *testing.T, onTier func(quality.Change)) (*Server, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(time.Unix(1_700_000_000, 0))
	s := New(Options{
		Config:       config.Default(),
		Clock:        clk,
		Rand:         rand.New(rand.NewSource(7)),
		OnTierChange: onTier,
	})
	return s, clk
}

func step(s *Server, clk *clock.Manual, d time.Duration) {
	clk.Advance(d)
	s.Step()
}

func TestServer_DemoSceneAndAmbient(t *testing.T) {
	s, clk := newTestServer(t, nil)
	step(s, clk, 16*time.Millisecond)

	v := s.View()
	for _, h := range []fx.Handle{HandleMarket, HandleMill, HandleQuarry, HandleCaravan, HandleSpinner} {
		_, ok := v.Actor(h)
		assert.True(t, ok, "missing %s", h)
	}
	// Spinner and mill production loop.
	assert.Equal(t, 2, v.Animations)
	assert.Zero(t, v.Dropped)
}

func TestServer_RegisterSpawnsHero(t *testing.T) {
	s, clk := newTestServer(t, nil)
	c := s.RegisterClient("alice")
	step(s, clk, 16*time.Millisecond)

	assert.Equal(t, 1, s.Clients())
	hero, ok := s.View().Actor(c.Hero)
	require.True(t, ok)
	assert.Equal(t, "alice", hero.Label)
	assert.Equal(t, s.Layout().HeroSpawn(0), hero.Pos)
}

func TestServer_PostRequiresRegisteredClient(t *testing.T) {
	s, clk := newTestServer(t, nil)
	gold := engine.Trigger{Kind: engine.TriggerGoldTransaction, Origin: fx.Vec2{X: 30, Y: 30}, Amount: 200}

	assert.False(t, s.Post(uuid.New(), gold))

	c := s.RegisterClient("bob")
	step(s, clk, 16*time.Millisecond)
	require.True(t, s.Post(c.ID, gold))
	step(s, clk, 16*time.Millisecond)

	assert.Positive(t, s.View().Particles)
	assert.NotEmpty(t, s.View().Dots)
}

func TestServer_UnregisterRemovesHeroAndClosesEvents(t *testing.T) {
	s, clk := newTestServer(t, nil)
	c := s.RegisterClient("carol")
	step(s, clk, 16*time.Millisecond)

	s.UnregisterClient(c.ID)
	step(s, clk, 16*time.Millisecond)

	_, ok := s.View().Actor(c.Hero)
	assert.False(t, ok)
	_, open := <-c.EventsCh
	assert.False(t, open)
	assert.Zero(t, s.Clients())
}

func TestServer_TierChangeNotifiesClients(t *testing.T) {
	var changes []quality.Change
	s, clk := newTestServer(t, func(ch quality.Change) { changes = append(changes, ch) })
	c := s.RegisterClient("dave")

	// 10 fps is well below the demotion threshold.
	for i := 0; i < 12; i++ {
		step(s, clk, 100*time.Millisecond)
	}

	require.NotEmpty(t, changes)
	assert.Equal(t, fx.TierMedium, changes[0].From)
	assert.Equal(t, fx.TierLow, changes[0].To)

	select {
	case ev := <-c.EventsCh:
		assert.Equal(t, EventTierChanged, ev.Type)
		assert.Equal(t, fx.TierLow, ev.Tier.To)
	default:
		t.Fatal("no tier event")
	}
}

func TestServer_ShutdownNotifiesAndWaits(t *testing.T) {
	s, _ := newTestServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	c := s.RegisterClient("erin")
	require.Eventually(t, func() bool { return s.Clients() == 1 }, time.Second, 5*time.Millisecond)

	go func() {
		for ev := range c.EventsCh {
			if ev.Type == EventServerShutdown {
				s.UnregisterClient(c.ID)
			}
		}
	}()

	start := time.Now()
	s.Shutdown(5 * time.Second)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Zero(t, s.Clients())
}
