package appointment

import (
	"context"
	"testing"
	"time"

	domain "github.com/NavalhaClub/barber-agenda/internal/domain/appointment"
	"github.com/NavalhaClub/barber-agenda/internal/httperr"
	"github.com/NavalhaClub/barber-agenda/internal/models"
)

// Cenário padrão: uma barbearia, um barbeiro (user 10), um cliente
// (user 20) e um agendamento pending entre eles.
func seedLifecycle(f *fakeRepo) *models.Appointment {
	shop := f.addShop(models.Barbershop{Slug: "navalha", PendingGraceMinutes: 60})
	barber := f.addBarber(models.Barber{BarbershopID: shop.ID, UserID: 10, Active: true})
	customerUser := uint(20)
	customer := f.addCustomer(models.Customer{BarbershopID: shop.ID, UserID: &customerUser, Name: "João"})

	start := time.Now().Add(48 * time.Hour)
	return f.addAppointment(models.Appointment{
		BarbershopID: shop.ID,
		BarberID:     barber.ID,
		CustomerID:   customer.ID,
		StartTime:    start,
		EndTime:      start.Add(30 * time.Minute),
		DurationMin:  30,
		Status:       string(domain.StatusPending),
	})
}

func TestApproveByOwnBarber(t *testing.T) {
	f := newFakeRepo()
	ap := seedLifecycle(f)
	uc := NewApproveAppointment(f, testDispatcher())

	updated, err := uc.Execute(context.Background(), 10, domain.RoleBarber, ap.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if updated.Status != string(domain.StatusConfirmed) {
		t.Fatalf("status = %s, want confirmed", updated.Status)
	}
}

func TestApproveByAdmin(t *testing.T) {
	f := newFakeRepo()
	ap := seedLifecycle(f)
	uc := NewApproveAppointment(f, testDispatcher())

	if _, err := uc.Execute(context.Background(), 99, domain.RoleAdmin, ap.ID); err != nil {
		t.Fatalf("admin approve: %v", err)
	}
}

func TestApproveDeniedForCustomer(t *testing.T) {
	f := newFakeRepo()
	ap := seedLifecycle(f)
	uc := NewApproveAppointment(f, testDispatcher())

	_, err := uc.Execute(context.Background(), 20, domain.RoleCustomer, ap.ID)
	if !httperr.IsBusiness(err, "not_allowed") {
		t.Fatalf("cliente aprovando deveria dar not_allowed, got %v", err)
	}

	stored, _ := f.GetAppointmentByID(context.Background(), ap.ID)
	if stored.Status != string(domain.StatusPending) {
		t.Fatal("negação de permissão não pode mutar o status")
	}
}

func TestApproveDeniedForOtherBarber(t *testing.T) {
	f := newFakeRepo()
	ap := seedLifecycle(f)
	f.addBarber(models.Barber{BarbershopID: ap.BarbershopID, UserID: 11, Active: true})
	uc := NewApproveAppointment(f, testDispatcher())

	_, err := uc.Execute(context.Background(), 11, domain.RoleBarber, ap.ID)
	if !httperr.IsBusiness(err, "not_allowed") {
		t.Fatalf("outro barbeiro aprovando deveria dar not_allowed, got %v", err)
	}
}

func TestApproveBarberWithoutProfileFailsClosed(t *testing.T) {
	f := newFakeRepo()
	ap := seedLifecycle(f)
	uc := NewApproveAppointment(f, testDispatcher())

	// user 55 diz ser barbeiro mas não tem perfil
	_, err := uc.Execute(context.Background(), 55, domain.RoleBarber, ap.ID)
	if !httperr.IsBusiness(err, "not_allowed") {
		t.Fatalf("barbeiro sem perfil deveria dar not_allowed, got %v", err)
	}
}

func TestApproveInvalidState(t *testing.T) {
	f := newFakeRepo()
	ap := seedLifecycle(f)
	uc := NewApproveAppointment(f, testDispatcher())

	if _, err := uc.Execute(context.Background(), 10, domain.RoleBarber, ap.ID); err != nil {
		t.Fatalf("primeira aprovação: %v", err)
	}

	_, err := uc.Execute(context.Background(), 10, domain.RoleBarber, ap.ID)
	if !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("reaprovar deveria dar invalid_state, got %v", err)
	}
}

// Corrida: o registro muda de status entre a leitura e a escrita
// condicional. A escrita não encontra mais "pending" e falha sem efeito.
func TestApproveLosesRace(t *testing.T) {
	f := newFakeRepo()
	ap := seedLifecycle(f)
	f.transitionErr[ap.ID] = domain.ErrStatusChanged
	uc := NewApproveAppointment(f, testDispatcher())

	_, err := uc.Execute(context.Background(), 10, domain.RoleBarber, ap.ID)
	if !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("corrida perdida deveria virar invalid_state, got %v", err)
	}
}

func TestApproveNotFound(t *testing.T) {
	f := newFakeRepo()
	seedLifecycle(f)
	uc := NewApproveAppointment(f, testDispatcher())

	_, err := uc.Execute(context.Background(), 10, domain.RoleBarber, 9999)
	if !httperr.IsBusiness(err, "appointment_not_found") {
		t.Fatalf("want appointment_not_found, got %v", err)
	}
}

func TestCancelByCustomerWithReason(t *testing.T) {
	f := newFakeRepo()
	ap := seedLifecycle(f)
	uc := NewCancelAppointment(f, testDispatcher())

	updated, err := uc.Execute(context.Background(), 20, domain.RoleCustomer, ap.ID, "imprevisto")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if updated.Status != string(domain.StatusCancelled) {
		t.Fatalf("status = %s, want cancelled", updated.Status)
	}
	if updated.CancellationReason != "imprevisto" || updated.CancelledBy != string(domain.RoleCustomer) {
		t.Fatalf("metadados errados: %q por %q", updated.CancellationReason, updated.CancelledBy)
	}
	if updated.CancelledAt == nil {
		t.Fatal("CancelledAt não preenchido")
	}
}

func TestCancelRequiresReason(t *testing.T) {
	f := newFakeRepo()
	ap := seedLifecycle(f)
	uc := NewCancelAppointment(f, testDispatcher())

	_, err := uc.Execute(context.Background(), 20, domain.RoleCustomer, ap.ID, "")
	if !httperr.IsBusiness(err, "cancellation_reason_required") {
		t.Fatalf("want cancellation_reason_required, got %v", err)
	}
}

func TestCancelConfirmedByBarber(t *testing.T) {
	f := newFakeRepo()
	ap := seedLifecycle(f)

	approve := NewApproveAppointment(f, testDispatcher())
	if _, err := approve.Execute(context.Background(), 10, domain.RoleBarber, ap.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	cancel := NewCancelAppointment(f, testDispatcher())
	updated, err := cancel.Execute(context.Background(), 10, domain.RoleBarber, ap.ID, "cliente pediu")
	if err != nil {
		t.Fatalf("cancel confirmed: %v", err)
	}
	if updated.CancelledBy != string(domain.RoleBarber) {
		t.Fatalf("cancelled_by = %q, want barber", updated.CancelledBy)
	}
}

func TestCompleteOnlyByOwnBarber(t *testing.T) {
	f := newFakeRepo()
	ap := seedLifecycle(f)

	approve := NewApproveAppointment(f, testDispatcher())
	if _, err := approve.Execute(context.Background(), 10, domain.RoleBarber, ap.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	complete := NewCompleteAppointment(f, testDispatcher())

	// Admin não conclui; só o barbeiro dono atesta o serviço
	if _, err := complete.Execute(context.Background(), 99, domain.RoleAdmin, ap.ID); !httperr.IsBusiness(err, "not_allowed") {
		t.Fatalf("admin concluindo deveria dar not_allowed, got %v", err)
	}

	updated, err := complete.Execute(context.Background(), 10, domain.RoleBarber, ap.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if updated.Status != string(domain.StatusCompleted) || updated.CompletedAt == nil {
		t.Fatalf("conclusão incompleta: status=%s completedAt=%v", updated.Status, updated.CompletedAt)
	}
}

func TestCompletePendingIsInvalidState(t *testing.T) {
	f := newFakeRepo()
	ap := seedLifecycle(f)
	complete := NewCompleteAppointment(f, testDispatcher())

	_, err := complete.Execute(context.Background(), 10, domain.RoleBarber, ap.ID)
	if !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("complete de pending deveria dar invalid_state, got %v", err)
	}
}

func TestNoShowOnlyByOwnBarber(t *testing.T) {
	f := newFakeRepo()
	ap := seedLifecycle(f)

	approve := NewApproveAppointment(f, testDispatcher())
	if _, err := approve.Execute(context.Background(), 10, domain.RoleBarber, ap.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	noShow := NewMarkNoShow(f, testDispatcher())

	if _, err := noShow.Execute(context.Background(), 99, domain.RoleAdmin, ap.ID); !httperr.IsBusiness(err, "not_allowed") {
		t.Fatalf("admin marcando no-show deveria dar not_allowed, got %v", err)
	}
	if _, err := noShow.Execute(context.Background(), 20, domain.RoleCustomer, ap.ID); !httperr.IsBusiness(err, "not_allowed") {
		t.Fatalf("cliente marcando no-show deveria dar not_allowed, got %v", err)
	}

	updated, err := noShow.Execute(context.Background(), 10, domain.RoleBarber, ap.ID)
	if err != nil {
		t.Fatalf("no-show: %v", err)
	}
	if updated.Status != string(domain.StatusNoShow) {
		t.Fatalf("status = %s, want no_show", updated.Status)
	}
}
