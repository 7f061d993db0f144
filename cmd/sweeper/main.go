package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/NavalhaClub/barber-agenda/internal/app"
	"github.com/NavalhaClub/barber-agenda/internal/audit"
	"github.com/NavalhaClub/barber-agenda/internal/config"
	dbpkg "github.com/NavalhaClub/barber-agenda/internal/db"
	infraRepo "github.com/NavalhaClub/barber-agenda/internal/infra/repository"
	ucAppointment "github.com/NavalhaClub/barber-agenda/internal/usecase/appointment"
)

// Worker de manutenção standalone: roda os mesmos sweeps da API para
// implantações onde o cron de agendamentos vive fora do processo web.
func main() {

	cfg := config.Load()

	logger := app.NewLogger(cfg.AppEnv)
	defer logger.Sync()

	db := dbpkg.NewDB(cfg)

	repo := infraRepo.NewAppointmentGormRepository(db)
	dispatcher := audit.NewDispatcher(audit.New(db), logger)

	sweeper := app.NewSweeper(
		ucAppointment.NewSweepExpired(repo, dispatcher, cfg.PendingGrace),
		ucAppointment.NewSweepConsensusPurge(repo),
		cfg.SweepInterval,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper.Start(ctx)

	<-ctx.Done()
	logger.Info("shutting down sweeper")
	sweeper.Stop()
}
