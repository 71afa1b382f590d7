package settings

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/quality"
)

// saveTimeout bounds a single background save.
const saveTimeout = 5 * time.Second

// Persister saves settings off the tick goroutine. Only the newest pending
// value is kept.
type Persister struct {
	live    *Live
	store   Store
	log     *log.Logger
	pending chan fx.Settings
}

// NewPersister creates a persister writing live's settings to store.
func NewPersister(live *Live, store Store, logger *log.Logger) *Persister {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Persister{
		live:    live,
		store:   store,
		log:     logger,
		pending: make(chan fx.Settings, 1),
	}
}

// PersistTier records an adaptive tier change as the next session's
// starting tier. Pinned modes are left alone. It never blocks and is meant
// for engine.Options.OnTierChange.
func (p *Persister) PersistTier(ch quality.Change) {
	if p.live.Settings().Quality != fx.QualityAuto {
		return
	}
	s := p.live.Update(func(s *fx.Settings) { s.LastTier = ch.To })
	p.Schedule(s)
}

// Schedule queues s for saving, replacing any value not yet saved.
func (p *Persister) Schedule(s fx.Settings) {
	for {
		select {
		case p.pending <- s:
			return
		default:
		}
		select {
		case <-p.pending:
		default:
		}
	}
}

// Run saves scheduled settings until ctx is done, then flushes whatever is
// still pending.
func (p *Persister) Run(ctx context.Context) {
	for {
		select {
		case s := <-p.pending:
			p.save(s)
		case <-ctx.Done():
			select {
			case s := <-p.pending:
				p.save(s)
			default:
			}
			return
		}
	}
}

func (p *Persister) save(s fx.Settings) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := p.store.Save(ctx, s); err != nil {
		p.log.Error("saving settings", "err", err)
		return
	}
	p.log.Debug("settings saved", "last_tier", s.LastTier, "quality", s.Quality)
}
