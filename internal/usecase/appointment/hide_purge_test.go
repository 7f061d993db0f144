package appointment

import (
	"context"
	"testing"

	domain "github.com/NavalhaClub/barber-agenda/internal/domain/appointment"
	"github.com/NavalhaClub/barber-agenda/internal/httperr"
	"github.com/NavalhaClub/barber-agenda/internal/models"
)

func TestRequestHideIdempotent(t *testing.T) {
	f := newFakeRepo()
	ap := seedLifecycle(f)
	uc := NewRequestHide(f, testDispatcher())

	if err := uc.Execute(context.Background(), 20, domain.RoleCustomer, ap.ID); err != nil {
		t.Fatalf("hide: %v", err)
	}
	// Repetição é aceita e não muda nada
	if err := uc.Execute(context.Background(), 20, domain.RoleCustomer, ap.ID); err != nil {
		t.Fatalf("hide repetido: %v", err)
	}

	stored, err := f.GetAppointmentByID(context.Background(), ap.ID)
	if err != nil {
		t.Fatalf("registro sumiu sem consenso: %v", err)
	}
	if !stored.HiddenByCustomer || stored.HiddenByBarber || stored.HiddenByAdmin {
		t.Fatalf("flags erradas: %+v", stored)
	}
	if stored.Status != string(domain.StatusPending) {
		t.Fatal("hide não pode tocar no status")
	}
	if stored.MarkedForDeletionAt == nil {
		t.Fatal("primeira flag deveria marcar para deleção")
	}
}

func TestRequestHideDeniedForStranger(t *testing.T) {
	f := newFakeRepo()
	ap := seedLifecycle(f)

	// Outro cliente da mesma barbearia
	otherUser := uint(21)
	f.addCustomer(models.Customer{BarbershopID: ap.BarbershopID, UserID: &otherUser, Name: "Maria"})

	uc := NewRequestHide(f, testDispatcher())
	err := uc.Execute(context.Background(), otherUser, domain.RoleCustomer, ap.ID)
	if !httperr.IsBusiness(err, "not_allowed") {
		t.Fatalf("cliente alheio escondendo deveria dar not_allowed, got %v", err)
	}
}

func TestThirdHideTriggersPurge(t *testing.T) {
	f := newFakeRepo()
	ap := seedLifecycle(f)
	uc := NewRequestHide(f, testDispatcher())

	ctx := context.Background()
	if err := uc.Execute(ctx, 20, domain.RoleCustomer, ap.ID); err != nil {
		t.Fatalf("hide cliente: %v", err)
	}
	if err := uc.Execute(ctx, 10, domain.RoleBarber, ap.ID); err != nil {
		t.Fatalf("hide barbeiro: %v", err)
	}

	if _, err := f.GetAppointmentByID(ctx, ap.ID); err != nil {
		t.Fatal("duas flags não podem purgar")
	}

	if err := uc.Execute(ctx, 1, domain.RoleAdmin, ap.ID); err != nil {
		t.Fatalf("hide admin: %v", err)
	}

	if _, err := f.GetAppointmentByID(ctx, ap.ID); err == nil {
		t.Fatal("terceira flag deveria purgar o registro")
	}
}

func TestRevertHideAdminOnly(t *testing.T) {
	f := newFakeRepo()
	ap := seedLifecycle(f)

	hide := NewRequestHide(f, testDispatcher())
	if err := hide.Execute(context.Background(), 20, domain.RoleCustomer, ap.ID); err != nil {
		t.Fatalf("hide: %v", err)
	}

	revert := NewRevertHide(f, testDispatcher())

	if err := revert.Execute(context.Background(), 10, domain.RoleBarber, ap.ID, domain.RoleCustomer); !httperr.IsBusiness(err, "not_allowed") {
		t.Fatalf("barbeiro revertendo deveria dar not_allowed, got %v", err)
	}

	if err := revert.Execute(context.Background(), 1, domain.RoleAdmin, ap.ID, domain.RoleCustomer); err != nil {
		t.Fatalf("revert admin: %v", err)
	}

	stored, _ := f.GetAppointmentByID(context.Background(), ap.ID)
	if stored.HiddenByCustomer {
		t.Fatal("flag do cliente não foi revertida")
	}
	if stored.MarkedForDeletionAt != nil {
		t.Fatal("sem flags restantes, a marca de deleção tem que sumir")
	}
}

func TestRevertHideInvalidTargetRole(t *testing.T) {
	f := newFakeRepo()
	ap := seedLifecycle(f)
	revert := NewRevertHide(f, testDispatcher())

	err := revert.Execute(context.Background(), 1, domain.RoleAdmin, ap.ID, domain.RoleSystem)
	if !httperr.IsBusiness(err, "invalid_role") {
		t.Fatalf("want invalid_role, got %v", err)
	}
}

func TestForcePurgeAdminOnly(t *testing.T) {
	f := newFakeRepo()
	ap := seedLifecycle(f)
	uc := NewForcePurge(f, testDispatcher())

	if err := uc.Execute(context.Background(), 10, domain.RoleBarber, ap.ID); !httperr.IsBusiness(err, "not_allowed") {
		t.Fatalf("barbeiro purgando deveria dar not_allowed, got %v", err)
	}

	if err := uc.Execute(context.Background(), 1, domain.RoleAdmin, ap.ID); err != nil {
		t.Fatalf("force purge: %v", err)
	}

	if _, err := f.GetAppointmentByID(context.Background(), ap.ID); err == nil {
		t.Fatal("registro deveria ter sido apagado")
	}
}

func TestSweepConsensusPurge(t *testing.T) {
	f := newFakeRepo()
	ap := seedLifecycle(f)

	// Consenso completo direto no repo (como se o purge imediato
	// tivesse falhado e sobrado para o sweep)
	f.appointments[ap.ID].HiddenByCustomer = true
	f.appointments[ap.ID].HiddenByBarber = true
	f.appointments[ap.ID].HiddenByAdmin = true

	uc := NewSweepConsensusPurge(f)
	n, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("purged = %d, want 1", n)
	}

	// Idempotência: segunda passada não acha nada
	n, err = uc.Execute(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("segunda passada: n=%d err=%v", n, err)
	}
}
