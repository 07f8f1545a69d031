// Package model 定义轮值引擎的核心数据模型
package model

import "time"

// ShiftDay 需要一次轮值分配的日历日期
// 由日历展开派生，仅存在于排班工作日集合内
type ShiftDay struct {
	Date    string       `json:"date" db:"date"` // YYYY-MM-DD
	Weekday time.Weekday `json:"weekday" db:"weekday"`
	ISOYear int          `json:"iso_year" db:"iso_year"`
	ISOWeek int          `json:"iso_week" db:"iso_week"`
}

// NewShiftDay 从时间创建 ShiftDay
func NewShiftDay(t time.Time) ShiftDay {
	year, week := t.ISOWeek()
	return ShiftDay{
		Date:    t.Format(DateLayout),
		Weekday: t.Weekday(),
		ISOYear: year,
		ISOWeek: week,
	}
}

// Time 返回对应的时间（UTC 零点）
func (d ShiftDay) Time() time.Time {
	t, _ := time.Parse(DateLayout, d.Date)
	return t
}

// OutcomeKind 单日分配结果类别
type OutcomeKind string

const (
	OutcomeAssigned     OutcomeKind = "assigned"     // 已分配给某参与者
	OutcomeUnassignable OutcomeKind = "unassignable" // 所有参与者均被阻塞
)

// DayOutcome 单个 ShiftDay 的显式分配结果
// 每个 ShiftDay 恰好产生一条结果记录
type DayOutcome struct {
	Day         ShiftDay    `json:"day"`
	Kind        OutcomeKind `json:"kind"`
	Participant string      `json:"participant,omitempty"` // 仅 Kind == OutcomeAssigned 时有效
	Tier        string      `json:"tier,omitempty"`        // 本次分配使用的放宽层级
}

// Warning 某日所有参与者均被阻塞时产生的告警记录
// 仅作为信息输出，不改变控制流
type Warning struct {
	Day     ShiftDay             `json:"day"`
	Blocked []BlockedParticipant `json:"blocked"`
}
