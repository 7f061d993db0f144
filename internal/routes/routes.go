package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/NavalhaClub/barber-agenda/internal/audit"
	"github.com/NavalhaClub/barber-agenda/internal/config"
	"github.com/NavalhaClub/barber-agenda/internal/handlers"
	infraRepo "github.com/NavalhaClub/barber-agenda/internal/infra/repository"
	"github.com/NavalhaClub/barber-agenda/internal/lock"
	"github.com/NavalhaClub/barber-agenda/internal/middleware"
	"github.com/NavalhaClub/barber-agenda/internal/models"
	"github.com/NavalhaClub/barber-agenda/internal/storage"
	ucAppointment "github.com/NavalhaClub/barber-agenda/internal/usecase/appointment"
)

func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	cfg *config.Config,
	locker lock.SlotLocker,
	logger *zap.Logger,
) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger, logger)

	uploader := storage.NewUploader(cfg)

	// ======================================================
	// USE CASES: APPOINTMENTS
	// ======================================================
	createUC := ucAppointment.NewCreateAppointment(
		appointmentRepo,
		locker,
		auditDispatcher,
		cfg.SlotStepMinutes,
	)
	approveUC := ucAppointment.NewApproveAppointment(appointmentRepo, auditDispatcher)
	cancelUC := ucAppointment.NewCancelAppointment(appointmentRepo, auditDispatcher)
	completeUC := ucAppointment.NewCompleteAppointment(appointmentRepo, auditDispatcher)
	noShowUC := ucAppointment.NewMarkNoShow(appointmentRepo, auditDispatcher)

	listUC := ucAppointment.NewListForRole(appointmentRepo)
	statsUC := ucAppointment.NewGetStats(appointmentRepo)
	availabilityUC := ucAppointment.NewGetAvailability(appointmentRepo, cfg.SlotStepMinutes)

	hideUC := ucAppointment.NewRequestHide(appointmentRepo, auditDispatcher)
	revertHideUC := ucAppointment.NewRevertHide(appointmentRepo, auditDispatcher)
	forcePurgeUC := ucAppointment.NewForcePurge(appointmentRepo, auditDispatcher)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)
	barbershopHandler := handlers.NewBarbershopHandler(db, uploader)

	serviceHandler := handlers.NewServiceHandler(db)
	customerHandler := handlers.NewCustomerHandler(db)
	barberHandler := handlers.NewBarberHandler(db)
	workingHoursHandler := handlers.NewWorkingHoursHandler(db)

	appointmentHandler := handlers.NewAppointmentHandler(
		db,
		createUC,
		approveUC,
		cancelUC,
		completeUC,
		noShowUC,
		listUC,
		statsUC,
		availabilityUC,
		hideUC,
		revertHideUC,
		forcePurgeUC,
	)

	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	publicHandler := handlers.NewPublicHandler(db, createUC, availabilityUC)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// API PÚBLICA (por slug da barbearia)
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/:slug/services", publicHandler.ListServices)
			publicAPI.GET("/:slug/barbers", publicHandler.ListBarbers)
			publicAPI.GET("/:slug/availability", publicHandler.Availability)
			publicAPI.POST("/:slug/appointments", publicHandler.CreateAppointment)
			publicAPI.POST("/:slug/register", publicHandler.RegisterCustomer)
		}

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			admin := secured.Group("/")
			admin.Use(middleware.RequireRoles(models.RoleAdmin))
			{
				admin.PATCH("/me/barbershop", barbershopHandler.UpdateMeBarbershop)
				admin.POST("/me/barbershop/logo", barbershopHandler.UploadLogo)

				admin.POST("/me/services", serviceHandler.Create)
				admin.PATCH("/me/services/:id", serviceHandler.Update)

				admin.GET("/me/barbers", barberHandler.List)
				admin.POST("/me/barbers", barberHandler.Create)
				admin.PATCH("/me/barbers/:id", barberHandler.Update)

				admin.GET("/me/audit-logs", auditLogsHandler.List)
			}

			staff := secured.Group("/")
			staff.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleBarber))
			{
				staff.GET("/me/barbershop", barbershopHandler.GetMeBarbershop)
				staff.GET("/me/customers", customerHandler.List)
				staff.GET("/me/services", serviceHandler.List)

				staff.GET("/me/working-hours", workingHoursHandler.Get)
				staff.PUT("/me/working-hours", workingHoursHandler.Update)
			}

			// ------------------------------
			// APPOINTMENTS
			// A autorização fina (dono do recurso, aresta de estado)
			// mora nos use cases; aqui só o corte grosso por papel.
			// ------------------------------
			secured.POST("/me/appointments", appointmentHandler.Create)
			secured.GET("/me/appointments", appointmentHandler.List)
			secured.GET("/me/appointments/stats", appointmentHandler.Stats)
			secured.GET("/me/availability", appointmentHandler.Availability)

			secured.PATCH("/me/appointments/:id/approve", appointmentHandler.Approve)
			secured.PATCH("/me/appointments/:id/cancel", appointmentHandler.Cancel)
			secured.PATCH("/me/appointments/:id/complete", appointmentHandler.Complete)
			secured.PATCH("/me/appointments/:id/no-show", appointmentHandler.NoShow)

			secured.DELETE("/me/appointments/:id", appointmentHandler.Hide)
			secured.PATCH("/me/appointments/:id/restore", appointmentHandler.RevertHide)
			secured.DELETE("/me/appointments/:id/force", appointmentHandler.ForcePurge)
		}
	}
}
