// Package roster 提供月度轮值分配引擎
package roster

import (
	"time"

	"github.com/lunzhi/lunzhi/pkg/model"
)

// ExpandMonth 展开指定月份的候选轮值日
// 返回按日期升序排列的 ShiftDay：工作日在排班集合内（周日至周四）且不在排除集合中
// 结果为空时直接返回空切片，由调用方决定是否跳过该月
func ExpandMonth(year int, month time.Month, excluded map[string]bool) []model.ShiftDay {
	days := make([]model.ShiftDay, 0, 23)

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for t := first; t.Month() == month; t = t.AddDate(0, 0, 1) {
		if !model.IsScheduledWeekday(t.Weekday()) {
			continue
		}
		day := model.NewShiftDay(t)
		if excluded[day.Date] {
			continue
		}
		days = append(days, day)
	}

	return days
}
