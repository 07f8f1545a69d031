// Package roster 提供月度轮值分配引擎
package roster

import (
	"github.com/lunzhi/lunzhi/pkg/model"
)

// AnalyzeDay 分析单个轮值日的约束情况
// 将参与者划分为可用与被阻塞两组，被阻塞者附带可读原因
// （工作日名称或 "specific date"）。纯函数，不修改任何输入
func AnalyzeDay(day model.ShiftDay, participants []model.Participant) (available []string, blocked []model.BlockedParticipant) {
	available = make([]string, 0, len(participants))

	for _, p := range participants {
		var reasons []string

		if p.Constraint.BlocksWeekday(day.Weekday) {
			reasons = append(reasons, day.Weekday.String())
		}
		if p.Constraint.BlocksDate(day.Date) {
			reasons = append(reasons, "specific date")
		}

		if len(reasons) > 0 {
			blocked = append(blocked, model.BlockedParticipant{Name: p.Name, Reasons: reasons})
		} else {
			available = append(available, p.Name)
		}
	}

	return available, blocked
}
