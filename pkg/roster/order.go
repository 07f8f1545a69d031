// Package roster 提供月度轮值分配引擎
package roster

import (
	"sort"

	"github.com/lunzhi/lunzhi/pkg/model"
)

// OrderDays 按约束程度排序轮值日
// 被阻塞人数多的日期排在前面，先决策最难安排的日期；
// 阻塞人数相同时保持原有的日期先后顺序（稳定排序，保证可复现）
func OrderDays(days []model.ShiftDay, blockedCount map[string]int) []model.ShiftDay {
	ordered := make([]model.ShiftDay, len(days))
	copy(ordered, days)

	sort.SliceStable(ordered, func(i, j int) bool {
		return blockedCount[ordered[i].Date] > blockedCount[ordered[j].Date]
	})

	return ordered
}
