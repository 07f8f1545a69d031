// Package roster 提供月度轮值分配引擎
package roster

import (
	"time"

	"github.com/lunzhi/lunzhi/pkg/model"
)

// SameISOWeek 检查候选日期是否与任一已分配日期处于同一 ISO 周
func SameISOWeek(day model.ShiftDay, assigned []model.ShiftDay) bool {
	for _, a := range assigned {
		if a.ISOYear == day.ISOYear && a.ISOWeek == day.ISOWeek {
			return true
		}
	}
	return false
}

// ConsecutiveDays 检查候选日期是否与任一已分配日期相邻（前后一天）
func ConsecutiveDays(day model.ShiftDay, assigned []model.ShiftDay) bool {
	t := day.Time()
	for _, a := range assigned {
		diff := t.Sub(a.Time())
		if diff == 24*time.Hour || diff == -24*time.Hour {
			return true
		}
	}
	return false
}
