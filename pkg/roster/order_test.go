package roster

import (
	"testing"
	"time"

	"github.com/lunzhi/lunzhi/pkg/model"
)

func TestOrderDays(t *testing.T) {
	days := []model.ShiftDay{
		model.NewShiftDay(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)),
		model.NewShiftDay(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)),
		model.NewShiftDay(time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)),
	}
	blockedCount := map[string]int{
		"2026-02-01": 0,
		"2026-02-02": 3,
		"2026-02-03": 1,
	}

	ordered := OrderDays(days, blockedCount)

	want := []string{"2026-02-02", "2026-02-03", "2026-02-01"}
	for i, d := range ordered {
		if d.Date != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], d.Date)
		}
	}
}

func TestOrderDays_StableOnTies(t *testing.T) {
	days := []model.ShiftDay{
		model.NewShiftDay(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)),
		model.NewShiftDay(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)),
		model.NewShiftDay(time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)),
	}
	blockedCount := map[string]int{
		"2026-02-01": 1,
		"2026-02-02": 1,
		"2026-02-03": 1,
	}

	// 阻塞人数相同时保持日期先后顺序
	ordered := OrderDays(days, blockedCount)
	for i, d := range ordered {
		if d.Date != days[i].Date {
			t.Errorf("Tie ordering not stable at %d: got %s, want %s", i, d.Date, days[i].Date)
		}
	}
}

func TestOrderDays_DoesNotMutateInput(t *testing.T) {
	days := []model.ShiftDay{
		model.NewShiftDay(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)),
		model.NewShiftDay(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)),
	}
	blockedCount := map[string]int{"2026-02-02": 5}

	OrderDays(days, blockedCount)

	if days[0].Date != "2026-02-01" || days[1].Date != "2026-02-02" {
		t.Error("OrderDays mutated its input slice")
	}
}
