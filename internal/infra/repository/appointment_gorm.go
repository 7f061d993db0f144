package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	domain "github.com/NavalhaClub/barber-agenda/internal/domain/appointment"
	"github.com/NavalhaClub/barber-agenda/internal/httperr"
	"github.com/NavalhaClub/barber-agenda/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Barbershop
// --------------------------------------------------

func (r *AppointmentGormRepository) GetBarbershopByID(
	ctx context.Context,
	id uint,
) (*models.Barbershop, error) {

	var shop models.Barbershop
	if err := r.db.WithContext(ctx).First(&shop, id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *AppointmentGormRepository) GetBarbershopBySlug(
	ctx context.Context,
	slug string,
) (*models.Barbershop, error) {

	var shop models.Barbershop
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// --------------------------------------------------
// Barbeiros
// --------------------------------------------------

func (r *AppointmentGormRepository) GetBarber(
	ctx context.Context,
	barbershopID uint,
	barberID uint,
) (*models.Barber, error) {

	var barber models.Barber
	if err := r.db.WithContext(ctx).
		Where("id = ? AND barbershop_id = ?", barberID, barbershopID).
		First(&barber).Error; err != nil {
		return nil, err
	}
	return &barber, nil
}

func (r *AppointmentGormRepository) GetBarberByUser(
	ctx context.Context,
	userID uint,
) (*models.Barber, error) {

	var barber models.Barber
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&barber).Error; err != nil {
		return nil, err
	}
	return &barber, nil
}

// --------------------------------------------------
// Serviços
// --------------------------------------------------

func (r *AppointmentGormRepository) GetService(
	ctx context.Context,
	barbershopID uint,
	serviceID uint,
) (*models.Service, error) {

	var service models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND barbershop_id = ?", serviceID, barbershopID).
		First(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

// --------------------------------------------------
// Clientes
// --------------------------------------------------

func (r *AppointmentGormRepository) GetCustomerByUser(
	ctx context.Context,
	userID uint,
) (*models.Customer, error) {

	var customer models.Customer
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *AppointmentGormRepository) GetOrCreateCustomer(
	ctx context.Context,
	barbershopID uint,
	name string,
	phone string,
	email string,
) (*models.Customer, error) {

	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("barbershop_id = ? AND phone = ?", barbershopID, phone).
		First(&customer).Error

	if err == nil {
		return &customer, nil
	}

	customer = models.Customer{
		BarbershopID: barbershopID,
		Name:         name,
		Phone:        phone,
		Email:        email,
	}

	if err := r.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}

	return &customer, nil
}

// --------------------------------------------------
// Disponibilidade
// --------------------------------------------------

func (r *AppointmentGormRepository) GetWorkingHours(
	ctx context.Context,
	barberID uint,
	weekday int,
) (*models.WorkingHours, error) {

	var wh models.WorkingHours
	if err := r.db.WithContext(ctx).
		Where("barber_id = ? AND weekday = ?", barberID, weekday).
		First(&wh).Error; err != nil {
		return nil, err
	}

	return &wh, nil
}

func (r *AppointmentGormRepository) ListActiveAppointments(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Select("id", "start_time", "end_time", "status").
		Where(
			"barber_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			barberID, activeStatuses(), end, start,
		).
		Order("start_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

func activeStatuses() []string {
	return []string{string(domain.StatusPending), string(domain.StatusConfirmed)}
}

// --------------------------------------------------
// Criação / conflito
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Create(ap).Error
}

func (r *AppointmentGormRepository) AssertNoTimeConflict(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
) error {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"barber_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			barberID, activeStatuses(), end, start,
		).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return httperr.ErrConflict("time_conflict")
	}

	return nil
}

// --------------------------------------------------
// Mudança de estado (escrita condicional)
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointmentByID(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).First(&ap, id).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

// TransitionStatus é o único caminho de escrita de status: UPDATE
// condicionado ao status esperado. RowsAffected == 0 significa que outra
// instância mudou o registro primeiro e nada foi escrito.
func (r *AppointmentGormRepository) TransitionStatus(
	ctx context.Context,
	id uint,
	from domain.Status,
	to domain.Status,
	fields map[string]any,
) (*models.Appointment, error) {

	updates := map[string]any{"status": string(to)}
	for k, v := range fields {
		updates[k] = v
	}

	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)

	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrStatusChanged
	}

	return r.GetAppointmentByID(ctx, id)
}

// --------------------------------------------------
// Ocultação por papel / purge
// --------------------------------------------------

func hiddenColumn(role domain.Role) (string, bool) {
	switch role {
	case domain.RoleCustomer:
		return "hidden_by_customer", true
	case domain.RoleBarber:
		return "hidden_by_barber", true
	case domain.RoleAdmin:
		return "hidden_by_admin", true
	}
	return "", false
}

func (r *AppointmentGormRepository) SetHidden(
	ctx context.Context,
	id uint,
	role domain.Role,
	at time.Time,
) error {

	col, ok := hiddenColumn(role)
	if !ok {
		return httperr.ErrValidation("invalid_role")
	}

	// COALESCE preserva o primeiro marked_for_deletion_at; repetir a
	// chamada não muda nada
	return r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			col:                      true,
			"marked_for_deletion_at": gorm.Expr("COALESCE(marked_for_deletion_at, ?)", at),
		}).Error
}

func (r *AppointmentGormRepository) ClearHidden(
	ctx context.Context,
	id uint,
	role domain.Role,
) error {

	col, ok := hiddenColumn(role)
	if !ok {
		return httperr.ErrValidation("invalid_role")
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", id).
		Update(col, false).Error; err != nil {
		return err
	}

	// Sem nenhuma flag restante o registro sai da fila de exclusão
	return r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND NOT hidden_by_customer AND NOT hidden_by_barber AND NOT hidden_by_admin", id).
		Update("marked_for_deletion_at", nil).Error
}

func (r *AppointmentGormRepository) PurgeIfConsensus(
	ctx context.Context,
	id uint,
) (bool, error) {

	res := r.db.WithContext(ctx).
		Where("id = ? AND hidden_by_customer AND hidden_by_barber AND hidden_by_admin", id).
		Delete(&models.Appointment{})

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *AppointmentGormRepository) PurgeAllConsensus(
	ctx context.Context,
) (int64, error) {

	res := r.db.WithContext(ctx).
		Where("hidden_by_customer AND hidden_by_barber AND hidden_by_admin").
		Delete(&models.Appointment{})

	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *AppointmentGormRepository) HardDelete(
	ctx context.Context,
	id uint,
) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Appointment{}).Error
}

// --------------------------------------------------
// Reconciliador
// --------------------------------------------------

func (r *AppointmentGormRepository) ListExpiredPending(
	ctx context.Context,
	now time.Time,
	defaultGraceMin int,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Joins("JOIN barbershops ON barbershops.id = appointments.barbershop_id").
		Where("appointments.status = ?", string(domain.StatusPending)).
		Where(
			"appointments.start_time + make_interval(mins => CASE WHEN barbershops.pending_grace_minutes > 0 THEN barbershops.pending_grace_minutes ELSE ? END) < ?",
			defaultGraceMin, now,
		).
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

// --------------------------------------------------
// Listagem / estatísticas
// --------------------------------------------------

func applyRoleScope(q *gorm.DB, role domain.Role, barberID, customerID uint) *gorm.DB {
	// Escopo de quem vê o quê + exclusão do que o papel escondeu
	switch role {
	case domain.RoleCustomer:
		q = q.Where("appointments.customer_id = ?", customerID).
			Where("NOT appointments.hidden_by_customer")
	case domain.RoleBarber:
		q = q.Where("appointments.barber_id = ?", barberID).
			Where("NOT appointments.hidden_by_barber")
	case domain.RoleAdmin:
		q = q.Where("NOT appointments.hidden_by_admin")
	}
	return q
}

func (r *AppointmentGormRepository) ListForRole(
	ctx context.Context,
	query domain.ListQuery,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Preload("Customer").
		Preload("Service").
		Preload("Barber").
		Where("appointments.barbershop_id = ?", query.BarbershopID)

	q = applyRoleScope(q, query.Role, query.BarberID, query.CustomerID)

	if !query.From.IsZero() {
		q = q.Where("appointments.start_time >= ?", query.From)
	}
	if !query.To.IsZero() {
		q = q.Where("appointments.start_time < ?", query.To)
	}
	if query.Status != "" {
		q = q.Where("appointments.status = ?", string(query.Status))
	}

	var apps []models.Appointment
	if err := q.Order("appointments.start_time ASC").Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *AppointmentGormRepository) AggregateStats(
	ctx context.Context,
	query domain.StatsQuery,
) ([]domain.StatRow, error) {

	var keyExpr string
	switch query.GroupBy {
	case domain.GroupByStatus:
		keyExpr = "appointments.status"
	case domain.GroupByBarber:
		keyExpr = "appointments.barber_id::text"
	case domain.GroupByDay:
		// Bucket diário no fuso da barbearia, não no do servidor
		keyExpr = "to_char(appointments.start_time AT TIME ZONE barbershops.timezone, 'YYYY-MM-DD')"
	default:
		return nil, httperr.ErrValidation("invalid_group_by")
	}

	q := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Joins("JOIN services ON services.id = appointments.service_id").
		Joins("JOIN barbershops ON barbershops.id = appointments.barbershop_id").
		Where("appointments.barbershop_id = ?", query.BarbershopID)

	q = applyRoleScope(q, query.Role, query.BarberID, query.CustomerID)

	if !query.From.IsZero() {
		q = q.Where("appointments.start_time >= ?", query.From)
	}
	if !query.To.IsZero() {
		q = q.Where("appointments.start_time < ?", query.To)
	}

	var rows []domain.StatRow
	if err := q.
		Select(keyExpr + " AS key, COUNT(*) AS count, COALESCE(SUM(services.price), 0) AS revenue").
		Group(keyExpr).
		Order("key ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
