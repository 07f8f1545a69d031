// Package model 定义轮值引擎的核心数据模型
package model

import "time"

// DateLayout 统一的日期格式
const DateLayout = "2006-01-02"

// ScheduledWeekdays 排班工作日（周日至周四）
var ScheduledWeekdays = []time.Weekday{
	time.Sunday,
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
}

// IsScheduledWeekday 检查是否为排班工作日
func IsScheduledWeekday(w time.Weekday) bool {
	for _, d := range ScheduledWeekdays {
		if d == w {
			return true
		}
	}
	return false
}

// ParseDate 解析 YYYY-MM-DD 格式日期
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}
