package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/NavalhaClub/barber-agenda/internal/domain/appointment"
	"github.com/NavalhaClub/barber-agenda/internal/httperr"
	"github.com/NavalhaClub/barber-agenda/internal/middleware"
	"github.com/NavalhaClub/barber-agenda/internal/models"
	"github.com/NavalhaClub/barber-agenda/internal/timezone"
	ucAppointment "github.com/NavalhaClub/barber-agenda/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	db *gorm.DB

	createUC       *ucAppointment.CreateAppointment
	approveUC      *ucAppointment.ApproveAppointment
	cancelUC       *ucAppointment.CancelAppointment
	completeUC     *ucAppointment.CompleteAppointment
	noShowUC       *ucAppointment.MarkNoShow
	listUC         *ucAppointment.ListForRole
	statsUC        *ucAppointment.GetStats
	availabilityUC *ucAppointment.GetAvailability
	hideUC         *ucAppointment.RequestHide
	revertHideUC   *ucAppointment.RevertHide
	forcePurgeUC   *ucAppointment.ForcePurge
}

func NewAppointmentHandler(
	db *gorm.DB,
	createUC *ucAppointment.CreateAppointment,
	approveUC *ucAppointment.ApproveAppointment,
	cancelUC *ucAppointment.CancelAppointment,
	completeUC *ucAppointment.CompleteAppointment,
	noShowUC *ucAppointment.MarkNoShow,
	listUC *ucAppointment.ListForRole,
	statsUC *ucAppointment.GetStats,
	availabilityUC *ucAppointment.GetAvailability,
	hideUC *ucAppointment.RequestHide,
	revertHideUC *ucAppointment.RevertHide,
	forcePurgeUC *ucAppointment.ForcePurge,
) *AppointmentHandler {
	return &AppointmentHandler{
		db:             db,
		createUC:       createUC,
		approveUC:      approveUC,
		cancelUC:       cancelUC,
		completeUC:     completeUC,
		noShowUC:       noShowUC,
		listUC:         listUC,
		statsUC:        statsUC,
		availabilityUC: availabilityUC,
		hideUC:         hideUC,
		revertHideUC:   revertHideUC,
		forcePurgeUC:   forcePurgeUC,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	BarberID  uint `json:"barber_id"`
	ServiceID uint `json:"service_id" binding:"required"`

	// Balcão: barbeiro/admin agenda para um cliente sem login
	CustomerID    uint   `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`

	Date  string `json:"date" binding:"required"` // YYYY-MM-DD
	Time  string `json:"time" binding:"required"` // HH:mm
	Notes string `json:"notes"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type RevertHideRequest struct {
	Role string `json:"role" binding:"required"` // customer | barber | admin
}

// ======================================================
// HELPERS
// ======================================================

func actorFromContext(c *gin.Context) (uint, domain.Role) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	role := domain.Role(c.MustGet(middleware.ContextUserRole).(string))
	return userID, role
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_id", "Identificador inválido.")
		return 0, false
	}
	return uint(id), true
}

// Barbeiro agenda sempre na própria agenda; o barber_id do payload só
// vale para admin.
func (h *AppointmentHandler) resolveBarberID(
	c *gin.Context,
	userID uint,
	role domain.Role,
	requested uint,
) (uint, bool) {
	if role == domain.RoleBarber {
		var barber models.Barber
		if err := h.db.Where("user_id = ?", userID).First(&barber).Error; err != nil {
			httperr.Forbidden(c, "not_allowed", "Perfil de barbeiro não encontrado.")
			return 0, false
		}
		return barber.ID, true
	}

	if requested == 0 {
		httperr.BadRequest(c, "missing_barber_id", "Barbeiro obrigatório.")
		return 0, false
	}
	return requested, true
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	userID, role := actorFromContext(c)
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	barberID, ok := h.resolveBarberID(c, userID, role, req.BarberID)
	if !ok {
		return
	}

	// Cliente autenticado agenda sempre para o próprio perfil,
	// ignorando qualquer customer_id do payload.
	if role == domain.RoleCustomer {
		var customer models.Customer
		if err := h.db.Where("user_id = ?", userID).First(&customer).Error; err != nil {
			httperr.Forbidden(c, "not_allowed", "Perfil de cliente não encontrado.")
			return
		}
		req.CustomerID = customer.ID
		req.CustomerName = ""
		req.CustomerPhone = ""
		req.CustomerEmail = ""
	}

	in := ucAppointment.CreateAppointmentInput{
		BarbershopID:  barbershopID,
		BarberID:      barberID,
		ServiceID:     req.ServiceID,
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Date:          req.Date,
		Time:          req.Time,
		Notes:         req.Notes,
		ActorUserID:   userID,
	}

	ap, err := h.createUC.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, ap)
}

// ======================================================
// AVAILABILITY
// ======================================================

func (h *AppointmentHandler) Availability(c *gin.Context) {
	userID, role := actorFromContext(c)
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	dateStr := c.Query("date")
	serviceIDStr := c.Query("service_id")
	if dateStr == "" || serviceIDStr == "" {
		httperr.BadRequest(c, "missing_params", "Data e serviço obrigatórios.")
		return
	}

	serviceID, err := strconv.ParseUint(serviceIDStr, 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_service_id", "Serviço inválido.")
		return
	}

	var requestedBarber uint
	if s := c.Query("barber_id"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_barber_id", "Barbeiro inválido.")
			return
		}
		requestedBarber = uint(v)
	}

	barberID, ok := h.resolveBarberID(c, userID, role, requestedBarber)
	if !ok {
		return
	}

	var shop models.Barbershop
	if err := h.db.First(&shop, barbershopID).Error; err != nil {
		httperr.Internal(c, "barbershop_not_found", "Barbearia não encontrada.")
		return
	}

	date, err := parseDateInShop(&shop, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}

	slots, err := h.availabilityUC.Execute(c.Request.Context(), domain.AvailabilityInput{
		BarbershopID: barbershopID,
		BarberID:     barberID,
		ServiceID:    uint(serviceID),
		Date:         date,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  dateStr,
		"slots": slots,
	})
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) List(c *gin.Context) {
	userID, role := actorFromContext(c)
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	var shop models.Barbershop
	if err := h.db.First(&shop, barbershopID).Error; err != nil {
		httperr.Internal(c, "barbershop_not_found", "Barbearia não encontrada.")
		return
	}

	var filter ucAppointment.ListFilter
	filter.Status = c.Query("status")

	if s := c.Query("from"); s != "" {
		from, err := parseDateInShop(&shop, s)
		if err != nil {
			httperr.BadRequest(c, "invalid_from", "Data inicial inválida.")
			return
		}
		filter.From = from
	}
	if s := c.Query("to"); s != "" {
		to, err := parseDateInShop(&shop, s)
		if err != nil {
			httperr.BadRequest(c, "invalid_to", "Data final inválida.")
			return
		}
		// filtro inclusivo no dia final
		_, filter.To = timezone.DayBounds(to, shop.Timezone)
	}

	list, err := h.listUC.Execute(c.Request.Context(), barbershopID, userID, role, filter)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": list})
}

// ======================================================
// STATS
// ======================================================

func (h *AppointmentHandler) Stats(c *gin.Context) {
	userID, role := actorFromContext(c)
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	var shop models.Barbershop
	if err := h.db.First(&shop, barbershopID).Error; err != nil {
		httperr.Internal(c, "barbershop_not_found", "Barbearia não encontrada.")
		return
	}

	groupBy := domain.StatsGroupBy(c.DefaultQuery("group_by", "status"))

	var from, to time.Time
	if s := c.Query("from"); s != "" {
		parsed, err := parseDateInShop(&shop, s)
		if err != nil {
			httperr.BadRequest(c, "invalid_from", "Data inicial inválida.")
			return
		}
		from = parsed
	}
	if s := c.Query("to"); s != "" {
		parsed, err := parseDateInShop(&shop, s)
		if err != nil {
			httperr.BadRequest(c, "invalid_to", "Data final inválida.")
			return
		}
		_, to = timezone.DayBounds(parsed, shop.Timezone)
	}

	rows, err := h.statsUC.Execute(c.Request.Context(), barbershopID, userID, role, from, to, groupBy)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"group_by": groupBy,
		"rows":     rows,
	})
}

// ======================================================
// LIFECYCLE: APPROVE / CANCEL / COMPLETE / NO-SHOW
// ======================================================

func (h *AppointmentHandler) Approve(c *gin.Context) {
	userID, role := actorFromContext(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ap, err := h.approveUC.Execute(c.Request.Context(), userID, role, id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	userID, role := actorFromContext(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "cancellation_reason_required", "Informe o motivo do cancelamento.")
		return
	}

	ap, err := h.cancelUC.Execute(c.Request.Context(), userID, role, id, req.Reason)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	userID, role := actorFromContext(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ap, err := h.completeUC.Execute(c.Request.Context(), userID, role, id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) NoShow(c *gin.Context) {
	userID, role := actorFromContext(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ap, err := h.noShowUC.Execute(c.Request.Context(), userID, role, id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, ap)
}

// ======================================================
// SOFT DELETE (CONSENSO) / RESTORE / FORCE PURGE
// ======================================================

// Hide é o "delete" visto pelos papéis: esconde da própria listagem e,
// quando cliente, barbeiro e admin já esconderam, o registro é purgado.
func (h *AppointmentHandler) Hide(c *gin.Context) {
	userID, role := actorFromContext(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.hideUC.Execute(c.Request.Context(), userID, role, id); err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "hidden"})
}

func (h *AppointmentHandler) RevertHide(c *gin.Context) {
	userID, role := actorFromContext(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req RevertHideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	err := h.revertHideUC.Execute(c.Request.Context(), userID, role, id, domain.Role(req.Role))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "restored"})
}

func (h *AppointmentHandler) ForcePurge(c *gin.Context) {
	userID, role := actorFromContext(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.forcePurgeUC.Execute(c.Request.Context(), userID, role, id); err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "purged"})
}
