package appointment

import (
	"time"

	"github.com/NavalhaClub/barber-agenda/internal/models"
)

type AvailabilityInput struct {
	BarbershopID uint
	BarberID     uint
	ServiceID    uint
	Date         time.Time
}

type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`

	StartAt time.Time `json:"-"`
}

type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps compara intervalos semiabertos [Start, End).
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// DayWindow é o expediente de um dia já resolvido no fuso da barbearia.
type DayWindow struct {
	Start time.Time
	End   time.Time

	HasLunch   bool
	LunchStart time.Time
	LunchEnd   time.Time
}

// WindowFromWorkingHours materializa o expediente do weekday na data
// pedida. Retorna false quando o dia está inativo ou mal configurado.
func WindowFromWorkingHours(wh *models.WorkingHours, date time.Time, loc *time.Location) (DayWindow, bool) {
	if wh == nil || !wh.Active || wh.StartTime == "" || wh.EndTime == "" {
		return DayWindow{}, false
	}

	parseHM := func(hm string) (time.Time, bool) {
		t, err := time.Parse("15:04", hm)
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(
			date.Year(), date.Month(), date.Day(),
			t.Hour(), t.Minute(), 0, 0,
			loc,
		), true
	}

	start, ok := parseHM(wh.StartTime)
	if !ok {
		return DayWindow{}, false
	}
	end, ok := parseHM(wh.EndTime)
	if !ok || !end.After(start) {
		return DayWindow{}, false
	}

	win := DayWindow{Start: start, End: end}

	if wh.LunchStart != "" && wh.LunchEnd != "" {
		ls, ok1 := parseHM(wh.LunchStart)
		le, ok2 := parseHM(wh.LunchEnd)
		if ok1 && ok2 && le.After(ls) {
			win.HasLunch = true
			win.LunchStart = ls
			win.LunchEnd = le
		}
	}

	return win, true
}

// Contains diz se [start, end) cabe inteiro no expediente, fora da pausa
// de almoço.
func (w DayWindow) Contains(start, end time.Time) bool {
	if start.Before(w.Start) || end.After(w.End) {
		return false
	}
	if w.HasLunch {
		lunch := Interval{Start: w.LunchStart, End: w.LunchEnd}
		if lunch.Overlaps(Interval{Start: start, End: end}) {
			return false
		}
	}
	return true
}

// BuildSlots enumera os inícios candidatos do expediente em incrementos
// de step, descartando:
//   - candidatos que não começam estritamente depois de now
//   - candidatos cujo intervalo [início, início+duração) cruza qualquer
//     agendamento ativo (tudo ou nada: sobreposição parcial exclui o
//     slot inteiro, nunca o encurta)
//   - candidatos que invadem a pausa de almoço
//
// Função pura de (janela, ocupados, now); sem efeitos colaterais.
func BuildSlots(win DayWindow, duration, step time.Duration, busy []Interval, now time.Time) []TimeSlot {
	if duration <= 0 || step <= 0 {
		return nil
	}

	var slots []TimeSlot
	for cur := win.Start; !cur.Add(duration).After(win.End); cur = cur.Add(step) {
		slotEnd := cur.Add(duration)

		if !cur.After(now) {
			continue
		}
		if !win.Contains(cur, slotEnd) {
			continue
		}
		if overlapsAny(Interval{Start: cur, End: slotEnd}, busy) {
			continue
		}

		slots = append(slots, TimeSlot{
			Start:   cur.Format("15:04"),
			End:     slotEnd.Format("15:04"),
			StartAt: cur,
		})
	}

	return slots
}

func overlapsAny(slot Interval, busy []Interval) bool {
	for _, b := range busy {
		if slot.Overlaps(b) {
			return true
		}
	}
	return false
}
