package appointment

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusPending, StatusConfirmed}:   true,
		{StatusPending, StatusCancelled}:   true,
		{StatusConfirmed, StatusCancelled}: true,
		{StatusConfirmed, StatusCompleted}: true,
		{StatusConfirmed, StatusNoShow}:    true,
	}

	// Fechamento completo: toda combinação fora da tabela tem que ser
	// rejeitada, inclusive reentrar no mesmo estado.
	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			want := allowed[[2]Status{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	if CanTransition("xyz", StatusConfirmed) {
		t.Error("status desconhecido não pode ter transições")
	}
	if CanTransition(StatusPending, "xyz") {
		t.Error("transição para status desconhecido deve ser rejeitada")
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := map[Status]bool{
		StatusCompleted: true,
		StatusCancelled: true,
		StatusNoShow:    true,
	}

	for _, s := range AllStatuses() {
		if got := IsTerminal(s); got != terminal[s] {
			t.Errorf("IsTerminal(%s) = %v, want %v", s, got, terminal[s])
		}
	}

	if IsTerminal("xyz") {
		t.Error("status desconhecido não é terminal")
	}
}

func TestIsActive(t *testing.T) {
	active := map[Status]bool{
		StatusPending:   true,
		StatusConfirmed: true,
	}

	for _, s := range AllStatuses() {
		if got := IsActive(s); got != active[s] {
			t.Errorf("IsActive(%s) = %v, want %v", s, got, active[s])
		}
	}
}

func TestInitialStatus(t *testing.T) {
	if InitialStatus() != StatusPending {
		t.Errorf("InitialStatus() = %s, want %s", InitialStatus(), StatusPending)
	}
}
