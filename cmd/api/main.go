package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/NavalhaClub/barber-agenda/internal/app"
	"github.com/NavalhaClub/barber-agenda/internal/audit"
	"github.com/NavalhaClub/barber-agenda/internal/config"
	dbpkg "github.com/NavalhaClub/barber-agenda/internal/db"
	infraRepo "github.com/NavalhaClub/barber-agenda/internal/infra/repository"
	"github.com/NavalhaClub/barber-agenda/internal/lock"
	"github.com/NavalhaClub/barber-agenda/internal/routes"
	ucAppointment "github.com/NavalhaClub/barber-agenda/internal/usecase/appointment"
)

func main() {

	cfg := config.Load()

	logger := app.NewLogger(cfg.AppEnv)
	defer logger.Sync()

	db := dbpkg.NewDB(cfg)

	redisClient, err := lock.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Fatal("redis indisponível", zap.Error(err))
	}
	locker := lock.NewRedisSlotLocker(redisClient, cfg.LockTTL)

	// Sweeper embutido: cancela pendings vencidos e purga consensos.
	// Para rodar separado, use cmd/sweeper e suba a API sem ele.
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
	defer sweeper.Stop()

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, cfg, locker, logger)

	logger.Info("server running", zap.String("addr", cfg.Addr()))
	if err := r.Run(cfg.Addr()); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
