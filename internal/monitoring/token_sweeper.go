package monitoring

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/isandoval/rbac-admin-be/internal/services"
)

// TokenSweeper periodically clears expired password reset tokens from the
// configured stores.
type TokenSweeper struct {
	resetSvc services.ResetServiceProvider
	cron     *cron.Cron
}

// NewTokenSweeper creates a new sweeper instance.
func NewTokenSweeper(resetSvc services.ResetServiceProvider) *TokenSweeper {
	return &TokenSweeper{
		resetSvc: resetSvc,
		cron:     cron.New(),
	}
}

// Run registers the sweep schedule and starts it. It sweeps once immediately
// so a restart does not leave stale tokens sitting for another interval.
func (s *TokenSweeper) Run() {
	log.Info().Msg("Starting reset token sweeper")
	s.sweep()
	if _, err := s.cron.AddFunc("@every 10m", s.sweep); err != nil {
		log.Error().Err(err).Msg("Failed to schedule token sweep")
		return
	}
	s.cron.Start()
}

// Stop halts the sweeper, waiting for an in-flight sweep to finish.
func (s *TokenSweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("Stopped reset token sweeper")
}

func (s *TokenSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.resetSvc.SweepExpired(ctx)
}
