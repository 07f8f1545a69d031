// Package model 定义轮值引擎的核心数据模型
package model

import "time"

// Participant 轮值参与者
type Participant struct {
	Name       string     `json:"name" db:"name"`
	Constraint Constraint `json:"constraint" db:"-"`
}

// Constraint 参与者约束：被阻塞的工作日与具体日期
// 排班开始后不可变更
type Constraint struct {
	BlockedWeekdays []time.Weekday `json:"blocked_weekdays" db:"blocked_weekdays"`
	BlockedDates    []string       `json:"blocked_dates" db:"blocked_dates"` // YYYY-MM-DD
}

// BlocksWeekday 检查约束是否阻塞指定工作日
func (c Constraint) BlocksWeekday(w time.Weekday) bool {
	for _, d := range c.BlockedWeekdays {
		if d == w {
			return true
		}
	}
	return false
}

// BlocksDate 检查约束是否阻塞指定日期
func (c Constraint) BlocksDate(date string) bool {
	for _, d := range c.BlockedDates {
		if d == date {
			return true
		}
	}
	return false
}

// IsEmpty 检查是否为空约束
func (c Constraint) IsEmpty() bool {
	return len(c.BlockedWeekdays) == 0 && len(c.BlockedDates) == 0
}

// BlockedParticipant 某日被阻塞的参与者及原因
type BlockedParticipant struct {
	Name    string   `json:"name"`
	Reasons []string `json:"reasons"` // 工作日名称或 "specific date"
}
