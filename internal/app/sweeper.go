package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/NavalhaClub/barber-agenda/internal/timezone"
	ucAppointment "github.com/NavalhaClub/barber-agenda/internal/usecase/appointment"
)

// Sweeper roda as duas tarefas periódicas de manutenção: expirar
// pendentes sem aprovação e purgar registros com consenso de exclusão.
// Ambas são idempotentes, então rodar junto com outra instância (ou o
// worker standalone) é seguro.
type Sweeper struct {
	expired   *ucAppointment.SweepExpired
	consensus *ucAppointment.SweepConsensusPurge
	interval  time.Duration
	logger    *zap.Logger
	stopChan  chan struct{}
}

func NewSweeper(
	expired *ucAppointment.SweepExpired,
	consensus *ucAppointment.SweepConsensusPurge,
	interval time.Duration,
	logger *zap.Logger,
) *Sweeper {
	return &Sweeper{
		expired:   expired,
		consensus: consensus,
		interval:  interval,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("starting maintenance sweeper", zap.Duration("interval", s.interval))
	go s.run(ctx)
}

func (s *Sweeper) Stop() {
	s.logger.Info("stopping maintenance sweeper")
	close(s.stopChan)
}

func (s *Sweeper) run(ctx context.Context) {
	// Primeira passada já na subida
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce(ctx)
		case <-s.stopChan:
			s.logger.Info("sweeper stopped")
			return
		case <-ctx.Done():
			s.logger.Info("sweeper cancelled")
			return
		}
	}
}

func (s *Sweeper) RunOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	started := time.Now()

	result, err := s.expired.Execute(runCtx, timezone.Now())
	if err != nil {
		s.logger.Error("expiry sweep failed", zap.Error(err))
	} else {
		if len(result.Failures) > 0 {
			for _, f := range result.Failures {
				s.logger.Warn("expiry sweep record failure",
					zap.Uint("appointment_id", f.AppointmentID),
					zap.String("error", f.Err),
				)
			}
		}
		s.logger.Info("expiry sweep complete",
			zap.Int("processed", result.Processed),
			zap.Int("failures", len(result.Failures)),
		)
	}

	purged, err := s.consensus.Execute(runCtx)
	if err != nil {
		s.logger.Error("consensus purge sweep failed", zap.Error(err))
	} else if purged > 0 {
		s.logger.Info("consensus purge sweep complete", zap.Int64("purged", purged))
	}

	s.logger.Debug("sweeper pass done", zap.Duration("took", time.Since(started)))
}
