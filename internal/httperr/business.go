package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Taxonomia de erros de negócio. O core só produz estes tipos; o mapeamento
// para status HTTP fica concentrado em Respond.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindPermission
	KindInvalidState
	KindConflict
	KindSchedule
)

type BusinessError struct {
	Kind Kind
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrValidation(code string) error   { return BusinessError{KindValidation, code} }
func ErrNotFound(code string) error     { return BusinessError{KindNotFound, code} }
func ErrPermission(code string) error   { return BusinessError{KindPermission, code} }
func ErrInvalidState(code string) error { return BusinessError{KindInvalidState, code} }
func ErrConflict(code string) error     { return BusinessError{KindConflict, code} }
func ErrSchedule(code string) error     { return BusinessError{KindSchedule, code} }

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func KindOf(err error) (Kind, bool) {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind, true
	}
	return 0, false
}

var kindStatus = map[Kind]int{
	KindValidation:   http.StatusBadRequest,
	KindNotFound:     http.StatusNotFound,
	KindPermission:   http.StatusForbidden,
	KindInvalidState: http.StatusUnprocessableEntity,
	KindConflict:     http.StatusConflict,
	KindSchedule:     http.StatusUnprocessableEntity,
}

// Respond converte qualquer erro do core numa resposta JSON. Erros fora
// da taxonomia viram 500 genérico (nunca vazam detalhe interno).
func Respond(c *gin.Context, err error) {
	var be BusinessError
	if errors.As(err, &be) {
		status, ok := kindStatus[be.Kind]
		if !ok {
			status = http.StatusBadRequest
		}
		Write(c, status, be.Code, messageFor(be.Code))
		return
	}
	Internal(c, "internal_error", "Erro interno.")
}

// Mensagens amigáveis por código; fallback no próprio código.
var messages = map[string]string{
	"invalid_date_or_time":          "Data ou hora inválida.",
	"invalid_state":                 "Ação não permitida no estado atual do agendamento.",
	"not_allowed":                   "Você não tem permissão para esta ação.",
	"time_conflict":                 "Horário já ocupado. Escolha outro horário.",
	"outside_working_hours":         "Fora do horário de atendimento.",
	"slot_no_longer_available":      "Horário não está mais disponível. Atualize a agenda.",
	"too_soon":                      "Horário muito próximo ou no passado.",
	"appointment_not_found":         "Agendamento não encontrado.",
	"barber_not_found":              "Barbeiro não encontrado.",
	"service_not_found":             "Serviço não encontrado.",
	"barbershop_not_found":          "Barbearia não encontrada.",
	"customer_not_found":            "Cliente não encontrado.",
	"cancellation_reason_required":  "Informe o motivo do cancelamento.",
	"invalid_role":                  "Papel inválido.",
	"invalid_group_by":              "Agrupamento inválido.",
	"invalid_status":                "Status inválido.",
	"invalid_window":                "Período inválido.",
	"customer_data_required":        "Informe nome e telefone do cliente.",
	"slot_being_booked":             "Horário sendo reservado por outra pessoa. Tente novamente.",
}

func messageFor(code string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return code
}
