package appointment

import (
	"testing"
	"time"

	"github.com/NavalhaClub/barber-agenda/internal/models"
)

var spLoc = func() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		panic(err)
	}
	return loc
}()

func day(hour, min int) time.Time {
	// Uma segunda-feira qualquer
	return time.Date(2026, 3, 2, hour, min, 0, 0, spLoc)
}

func window(start, end string) DayWindow {
	wh := &models.WorkingHours{
		Weekday:   1,
		Active:    true,
		StartTime: start,
		EndTime:   end,
	}
	win, ok := WindowFromWorkingHours(wh, day(0, 0), spLoc)
	if !ok {
		panic("janela inválida no setup do teste")
	}
	return win
}

func starts(slots []TimeSlot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Start)
	}
	return out
}

func assertStarts(t *testing.T, slots []TimeSlot, want []string) {
	t.Helper()
	got := starts(slots)
	if len(got) != len(want) {
		t.Fatalf("slots = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slots = %v, want %v", got, want)
		}
	}
}

func TestBuildSlotsEmptyDay(t *testing.T) {
	win := window("09:00", "12:00")
	now := day(0, 0)

	slots := BuildSlots(win, 30*time.Minute, 30*time.Minute, nil, now)

	assertStarts(t, slots, []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"})
}

func TestBuildSlotsBusyRemovesOverlapping(t *testing.T) {
	win := window("09:00", "12:00")
	now := day(0, 0)

	busy := []Interval{{Start: day(10, 0), End: day(10, 30)}}

	slots := BuildSlots(win, 30*time.Minute, 30*time.Minute, busy, now)

	assertStarts(t, slots, []string{"09:00", "09:30", "10:30", "11:00", "11:30"})
}

func TestBuildSlotsPartialOverlapExcludesWholeSlot(t *testing.T) {
	win := window("09:00", "12:00")
	now := day(0, 0)

	// Ocupa só 15 minutos no meio do slot das 10:00; o slot inteiro sai,
	// nunca é encurtado
	busy := []Interval{{Start: day(10, 10), End: day(10, 25)}}

	slots := BuildSlots(win, 30*time.Minute, 30*time.Minute, busy, now)

	assertStarts(t, slots, []string{"09:00", "09:30", "10:30", "11:00", "11:30"})
}

func TestBuildSlotsAdjacentBookingsDontConflict(t *testing.T) {
	win := window("09:00", "12:00")
	now := day(0, 0)

	// [10:00, 10:30) ocupado: 09:30 termina exatamente às 10:00 e
	// 10:30 começa exatamente no fim (intervalos semiabertos)
	busy := []Interval{{Start: day(10, 0), End: day(10, 30)}}

	slots := BuildSlots(win, 30*time.Minute, 30*time.Minute, busy, now)

	for _, s := range slots {
		if s.Start == "09:30" {
			return
		}
	}
	t.Fatalf("slot 09:30 adjacente ao ocupado deveria existir, got %v", starts(slots))
}

func TestBuildSlotsSkipsPast(t *testing.T) {
	win := window("09:00", "12:00")
	now := day(10, 0) // 10:00 em ponto

	slots := BuildSlots(win, 30*time.Minute, 30*time.Minute, nil, now)

	// 10:00 não conta: o início tem que ser estritamente futuro
	assertStarts(t, slots, []string{"10:30", "11:00", "11:30"})
}

func TestBuildSlotsLongerServiceNeedsRoom(t *testing.T) {
	win := window("09:00", "12:00")
	now := day(0, 0)

	// Serviço de 45min em grade de 30: último início possível é 11:00
	slots := BuildSlots(win, 45*time.Minute, 30*time.Minute, nil, now)

	assertStarts(t, slots, []string{"09:00", "09:30", "10:00", "10:30", "11:00"})
}

func TestBuildSlotsLunchBlocksSlots(t *testing.T) {
	wh := &models.WorkingHours{
		Weekday:    1,
		Active:     true,
		StartTime:  "09:00",
		EndTime:    "14:00",
		LunchStart: "12:00",
		LunchEnd:   "13:00",
	}
	win, ok := WindowFromWorkingHours(wh, day(0, 0), spLoc)
	if !ok {
		t.Fatal("janela deveria ser válida")
	}

	slots := BuildSlots(win, 30*time.Minute, 30*time.Minute, nil, day(0, 0))

	for _, s := range slots {
		if s.Start == "12:00" || s.Start == "12:30" {
			t.Fatalf("slot %s invade o almoço", s.Start)
		}
	}
	assertStarts(t, slots, []string{
		"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
		"13:00", "13:30",
	})
}

func TestWindowFromWorkingHoursInactiveDay(t *testing.T) {
	wh := &models.WorkingHours{Weekday: 1, Active: false, StartTime: "09:00", EndTime: "12:00"}
	if _, ok := WindowFromWorkingHours(wh, day(0, 0), spLoc); ok {
		t.Fatal("dia inativo não pode ter janela")
	}

	if _, ok := WindowFromWorkingHours(nil, day(0, 0), spLoc); ok {
		t.Fatal("nil não pode ter janela")
	}

	bad := &models.WorkingHours{Weekday: 1, Active: true, StartTime: "12:00", EndTime: "09:00"}
	if _, ok := WindowFromWorkingHours(bad, day(0, 0), spLoc); ok {
		t.Fatal("fim antes do início não pode ter janela")
	}
}

func TestDayWindowContains(t *testing.T) {
	wh := &models.WorkingHours{
		Weekday:    1,
		Active:     true,
		StartTime:  "09:00",
		EndTime:    "18:00",
		LunchStart: "12:00",
		LunchEnd:   "13:00",
	}
	win, _ := WindowFromWorkingHours(wh, day(0, 0), spLoc)

	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  bool
	}{
		{"dentro", day(9, 0), day(9, 30), true},
		{"antes da abertura", day(8, 30), day(9, 0), false},
		{"estoura o fim", day(17, 45), day(18, 15), false},
		{"invade almoço", day(11, 45), day(12, 15), false},
		{"dentro do almoço", day(12, 0), day(12, 30), false},
		{"termina quando o almoço começa", day(11, 30), day(12, 0), true},
		{"começa quando o almoço termina", day(13, 0), day(13, 30), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := win.Contains(tc.start, tc.end); got != tc.want {
				t.Fatalf("Contains(%v, %v) = %v, want %v", tc.start, tc.end, got, tc.want)
			}
		})
	}
}

func TestIntervalOverlaps(t *testing.T) {
	a := Interval{Start: day(10, 0), End: day(10, 30)}

	if a.Overlaps(Interval{Start: day(10, 30), End: day(11, 0)}) {
		t.Error("intervalos encostados não se sobrepõem (semiaberto)")
	}
	if !a.Overlaps(Interval{Start: day(10, 15), End: day(10, 45)}) {
		t.Error("sobreposição parcial deveria contar")
	}
	if !a.Overlaps(Interval{Start: day(9, 0), End: day(11, 0)}) {
		t.Error("continência deveria contar")
	}
}
