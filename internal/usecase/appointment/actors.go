package appointment

import (
	"context"

	domain "github.com/NavalhaClub/barber-agenda/internal/domain/appointment"
	"github.com/NavalhaClub/barber-agenda/internal/httperr"
)

// resolveActor materializa o ator a partir do usuário autenticado.
// Barbeiro e cliente são resolvidos pelo perfil dono do usuário; o id
// vindo da requisição nunca entra aqui. Papel sem perfil = sem permissão.
func resolveActor(
	ctx context.Context,
	repo domain.Repository,
	userID uint,
	role domain.Role,
) (domain.Actor, error) {

	actor := domain.Actor{UserID: userID, Role: role}

	switch role {
	case domain.RoleBarber:
		barber, err := repo.GetBarberByUser(ctx, userID)
		if err != nil {
			return actor, httperr.ErrPermission("not_allowed")
		}
		actor.BarberID = barber.ID

	case domain.RoleCustomer:
		customer, err := repo.GetCustomerByUser(ctx, userID)
		if err != nil {
			return actor, httperr.ErrPermission("not_allowed")
		}
		actor.CustomerID = customer.ID

	case domain.RoleAdmin:
		// admin age incondicionalmente

	default:
		return actor, httperr.ErrValidation("invalid_role")
	}

	return actor, nil
}
