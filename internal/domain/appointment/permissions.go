package appointment

import "github.com/NavalhaClub/barber-agenda/internal/models"

// Allowed aplica o contrato de permissão por ação:
//   - approve: barbeiro do agendamento ou admin
//   - cancel / hide: cliente do agendamento, barbeiro do agendamento ou admin
//   - complete / no_show: somente o barbeiro do agendamento
//
// Negado = nenhuma mutação acontece (falha fechada).
func Allowed(actor Actor, ap *models.Appointment, action Action) bool {
	isOwnBarber := actor.Role == RoleBarber && actor.BarberID != 0 && actor.BarberID == ap.BarberID
	isOwnCustomer := actor.Role == RoleCustomer && actor.CustomerID != 0 && actor.CustomerID == ap.CustomerID
	isAdmin := actor.Role == RoleAdmin

	switch action {
	case ActionApprove:
		return isOwnBarber || isAdmin
	case ActionCancel, ActionHide:
		return isOwnCustomer || isOwnBarber || isAdmin
	case ActionComplete, ActionNoShow:
		return isOwnBarber
	}
	return false
}
