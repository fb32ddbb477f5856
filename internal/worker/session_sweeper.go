package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultSweepInterval is how often idle attempts are looked for.
const DefaultSweepInterval = time.Minute

// IdleEvicter drops attempts unused for longer than ttl.
type IdleEvicter interface {
	EvictIdle(ttl time.Duration) int
}

// SessionSweeper periodically closes attempts nobody touched within the
// idle TTL. Evicted attempts are discarded without writing history.
type SessionSweeper struct {
	sessions IdleEvicter
	ttl      time.Duration
	interval time.Duration
	log      zerolog.Logger
}

func NewSessionSweeper(sessions IdleEvicter, ttl, interval time.Duration, log zerolog.Logger) *SessionSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &SessionSweeper{
		sessions: sessions,
		ttl:      ttl,
		interval: interval,
		log:      log.With().Str("component", "session_sweeper").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop
// ----------------------------------------------------------------

// Start blocks until ctx is cancelled.
func (w *SessionSweeper) Start(ctx context.Context) {
	if w.ttl <= 0 {
		w.log.Info().Msg("Idle TTL disabled, SessionSweeper not started")
		return
	}
	w.log.Info().Dur("ttl", w.ttl).Dur("interval", w.interval).Msg("SessionSweeper started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("SessionSweeper stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *SessionSweeper) sweep() int {
	n := w.sessions.EvictIdle(w.ttl)
	if n > 0 {
		w.log.Info().Int("evicted", n).Msg("Idle attempts closed")
	}
	return n
}
