// Package validator 提供轮值表校验功能
package validator

import (
	"fmt"

	"github.com/lunzhi/lunzhi/pkg/model"
	"github.com/lunzhi/lunzhi/pkg/roster"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictBlockedDay  ConflictType = "blocked_day"  // 分配落在阻塞日（硬约束违反）
	ConflictDuplicate   ConflictType = "duplicate"    // 同一日期被多人或多次分配
	ConflictSameWeek    ConflictType = "same_week"    // 同一 ISO 周内多次轮值
	ConflictConsecutive ConflictType = "consecutive"  // 相邻两天连续轮值
)

// Conflict 冲突信息
type Conflict struct {
	Type        ConflictType `json:"type"`
	Severity    string       `json:"severity"` // error/warning
	Participant string       `json:"participant"`
	Date        string       `json:"date"`
	Message     string       `json:"message"`
}

// IsError 检查冲突是否为硬约束违反
func (c Conflict) IsError() bool {
	return c.Severity == "error"
}

// Validator 轮值表校验器
type Validator struct{}

// New 创建轮值表校验器
func New() *Validator {
	return &Validator{}
}

// Validate 校验已生成的轮值表
//
// 阻塞日分配与重复分配是硬约束违反（error）；
// 同周与相邻日分配在约束放宽后属于预期现象，只报告为 warning
func (v *Validator) Validate(participants []model.Participant, assignments map[string][]model.ShiftDay) []Conflict {
	var conflicts []Conflict

	constraints := make(map[string]model.Constraint, len(participants))
	for _, p := range participants {
		constraints[p.Name] = p.Constraint
	}

	seenDates := make(map[string]string) // 日期 -> 参与者

	for name, days := range assignments {
		c, known := constraints[name]

		for i, day := range days {
			if prev, dup := seenDates[day.Date]; dup {
				conflicts = append(conflicts, Conflict{
					Type:        ConflictDuplicate,
					Severity:    "error",
					Participant: name,
					Date:        day.Date,
					Message:     fmt.Sprintf("日期 %s 已分配给 %s，又分配给 %s", day.Date, prev, name),
				})
			}
			seenDates[day.Date] = name

			if known {
				if c.BlocksWeekday(day.Weekday) {
					conflicts = append(conflicts, Conflict{
						Type:        ConflictBlockedDay,
						Severity:    "error",
						Participant: name,
						Date:        day.Date,
						Message:     fmt.Sprintf("参与者 %s 在被阻塞的工作日 %s 被分配", name, day.Weekday),
					})
				}
				if c.BlocksDate(day.Date) {
					conflicts = append(conflicts, Conflict{
						Type:        ConflictBlockedDay,
						Severity:    "error",
						Participant: name,
						Date:        day.Date,
						Message:     fmt.Sprintf("参与者 %s 在被阻塞的日期 %s 被分配", name, day.Date),
					})
				}
			}

			rest := days[i+1:]
			if roster.SameISOWeek(day, rest) {
				conflicts = append(conflicts, Conflict{
					Type:        ConflictSameWeek,
					Severity:    "warning",
					Participant: name,
					Date:        day.Date,
					Message:     fmt.Sprintf("参与者 %s 在同一 ISO 周内多次轮值（%s）", name, day.Date),
				})
			}
			if roster.ConsecutiveDays(day, rest) {
				conflicts = append(conflicts, Conflict{
					Type:        ConflictConsecutive,
					Severity:    "warning",
					Participant: name,
					Date:        day.Date,
					Message:     fmt.Sprintf("参与者 %s 连续两天轮值（%s）", name, day.Date),
				})
			}
		}
	}

	return conflicts
}

// CountErrors 统计硬约束违反数量
func CountErrors(conflicts []Conflict) int {
	count := 0
	for _, c := range conflicts {
		if c.IsError() {
			count++
		}
	}
	return count
}
