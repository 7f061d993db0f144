package appointment

// ===============================
// Actors / Roles
// ===============================

type Role string

const (
	RoleCustomer Role = "customer"
	RoleBarber   Role = "barber"
	RoleAdmin    Role = "admin"

	// Usado só como cancelled_by quando o reconciliador expira pendentes
	RoleSystem Role = "system"
)

func IsValidRole(r Role) bool {
	return r == RoleCustomer || r == RoleBarber || r == RoleAdmin
}

// Actor é a parte autenticada executando uma mutação. BarberID e
// CustomerID são resolvidos pelo perfil do próprio usuário (nunca
// confiados do cliente); ficam zerados quando o papel não os possui.
type Actor struct {
	UserID     uint
	Role       Role
	BarberID   uint
	CustomerID uint
}

type Action string

const (
	ActionApprove  Action = "approve"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
	ActionNoShow   Action = "no_show"
	ActionHide     Action = "hide"
)
