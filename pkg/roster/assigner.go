// Package roster 提供月度轮值分配引擎
package roster

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/lunzhi/lunzhi/pkg/errors"
	"github.com/lunzhi/lunzhi/pkg/logger"
	"github.com/lunzhi/lunzhi/pkg/model"
)

// Request 轮值生成请求
type Request struct {
	Year          int                 `json:"year"`
	Month         time.Month          `json:"month"`
	Participants  []model.Participant `json:"participants"`
	ReducedLoad   []string            `json:"reduced_load,omitempty"`   // 少排班参与者，最多 2 位，顺序即减配优先级
	ExcludedDates []string            `json:"excluded_dates,omitempty"` // 当月排除的日期（节假日）
}

// Result 轮值生成结果
// 即使存在无法分配的日期，结果也总是完整返回
type Result struct {
	Assignments  map[string][]model.ShiftDay `json:"assignments"`            // 参与者 -> 按日期升序的分配列表
	Outcomes     []model.DayOutcome          `json:"outcomes"`               // 每个轮值日的显式结果，按日期升序
	Unassignable []model.ShiftDay            `json:"unassignable,omitempty"` // 无人可分配的日期
	Quotas       map[string]int              `json:"quotas"`                 // 目标配额（供审计展示）
	Warnings     []model.Warning             `json:"warnings,omitempty"`     // 全员被阻塞日期的告警
	Statistics   *Statistics                 `json:"statistics"`
	Duration     time.Duration               `json:"duration"`
}

// Statistics 轮值统计
type Statistics struct {
	TotalDays        int            `json:"total_days"`
	AssignedDays     int            `json:"assigned_days"`
	UnassignableDays int            `json:"unassignable_days"`
	FillRate         float64        `json:"fill_rate"`
	TierUsage        map[string]int `json:"tier_usage"` // 各放宽层级的使用次数
}

// Engine 轮值分配引擎
// 单线程运行，一次调用内完成；随机源注入且可设种子，
// 固定种子下输出完全确定
type Engine struct {
	logger *logger.RosterLogger
	rng    *rand.Rand
}

// NewEngine 创建轮值分配引擎
// rng 为 nil 时使用时间种子
func NewEngine(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		logger: logger.NewRosterLogger(),
		rng:    rng,
	}
}

// Generate 生成月度轮值表
//
// 流程：校验配置 -> 展开日历 -> 计算配额 -> 逐日约束分析 ->
// 按约束程度排序 -> 分层贪心分配。配置错误在任何分配前返回；
// 单日分配失败只降级为告警，绝不中止整个排班
func (e *Engine) Generate(ctx context.Context, req *Request) (*Result, error) {
	startTime := time.Now()

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	excluded := make(map[string]bool, len(req.ExcludedDates))
	for _, d := range req.ExcludedDates {
		excluded[d] = true
	}

	days := ExpandMonth(req.Year, req.Month, excluded)
	if len(days) == 0 {
		return nil, errors.ErrNoShiftDays
	}

	names := make([]string, len(req.Participants))
	for i, p := range req.Participants {
		names[i] = p.Name
	}

	e.logger.StartRun(req.Year, int(req.Month), len(names), len(days))

	quotas, err := ComputeQuotas(len(days), names, req.ReducedLoad, e.rng)
	if err != nil {
		return nil, err
	}

	// 逐日约束分析：记录阻塞集合，全员被阻塞时生成告警
	blockedByDay := make(map[string]map[string]bool, len(days))
	blockedCount := make(map[string]int, len(days))
	var warnings []model.Warning

	for _, day := range days {
		available, blocked := AnalyzeDay(day, req.Participants)

		set := make(map[string]bool, len(blocked))
		for _, b := range blocked {
			set[b.Name] = true
		}
		blockedByDay[day.Date] = set
		blockedCount[day.Date] = len(blocked)

		if len(available) == 0 {
			warnings = append(warnings, model.Warning{Day: day, Blocked: blocked})
		}
	}

	ordered := OrderDays(days, blockedCount)

	result := &Result{
		Assignments: make(map[string][]model.ShiftDay, len(names)),
		Quotas:      quotas,
		Warnings:    warnings,
		Statistics: &Statistics{
			TotalDays: len(days),
			TierUsage: make(map[string]int),
		},
	}

	assignedCount := make(map[string]int, len(names))

	for _, day := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		blocked := blockedByDay[day.Date]

		var eligible []string
		var used Tier
		for _, tier := range AllTiers {
			eligible = eligibleAtTier(tier, day, names, blocked, quotas, assignedCount, result.Assignments)
			if len(eligible) > 0 {
				used = tier
				break
			}
		}

		if len(eligible) == 0 {
			// 全员被阻塞：记录为无法分配并继续处理后续日期
			e.logger.DayUnassignable(day.Date)
			result.Unassignable = append(result.Unassignable, day)
			result.Outcomes = append(result.Outcomes, model.DayOutcome{
				Day:  day,
				Kind: model.OutcomeUnassignable,
			})
			continue
		}

		if used != TierStrict {
			e.logger.TierRelaxed(day.Date, used.String())
		}
		result.Statistics.TierUsage[used.String()]++

		// 在资格集合中选分配数最少者，平局随机决出
		minAssigned := assignedCount[eligible[0]]
		for _, p := range eligible[1:] {
			if assignedCount[p] < minAssigned {
				minAssigned = assignedCount[p]
			}
		}
		candidates := eligible[:0:0]
		for _, p := range eligible {
			if assignedCount[p] == minAssigned {
				candidates = append(candidates, p)
			}
		}
		chosen := candidates[e.rng.Intn(len(candidates))]

		result.Assignments[chosen] = append(result.Assignments[chosen], day)
		assignedCount[chosen]++
		result.Outcomes = append(result.Outcomes, model.DayOutcome{
			Day:         day,
			Kind:        model.OutcomeAssigned,
			Participant: chosen,
			Tier:        used.String(),
		})
	}

	// 输出统一按日期升序
	for p := range result.Assignments {
		sortDays(result.Assignments[p])
	}
	sortDays(result.Unassignable)
	sort.SliceStable(result.Outcomes, func(i, j int) bool {
		return result.Outcomes[i].Day.Date < result.Outcomes[j].Day.Date
	})

	result.Statistics.UnassignableDays = len(result.Unassignable)
	result.Statistics.AssignedDays = len(days) - len(result.Unassignable)
	result.Statistics.FillRate = float64(result.Statistics.AssignedDays) / float64(len(days)) * 100
	result.Duration = time.Since(startTime)

	e.logger.RunComplete(req.Year, int(req.Month), result.Statistics.AssignedDays, result.Statistics.UnassignableDays, result.Duration)

	return result, nil
}

// eligibleAtTier 计算指定层级下的资格参与者集合
// 阻塞日是硬约束，任何层级都不放宽
func eligibleAtTier(tier Tier, day model.ShiftDay, names []string, blocked map[string]bool,
	quotas, assignedCount map[string]int, assignments map[string][]model.ShiftDay) []string {

	var eligible []string
	for _, p := range names {
		if blocked[p] {
			continue
		}
		if slack := tier.quotaSlack(); slack >= 0 && assignedCount[p] >= quotas[p]+slack {
			continue
		}
		if tier.checksWeek() && SameISOWeek(day, assignments[p]) {
			continue
		}
		if tier.checksConsecutive() && ConsecutiveDays(day, assignments[p]) {
			continue
		}
		eligible = append(eligible, p)
	}
	return eligible
}

// validateRequest 校验轮值生成请求
// 假定输入已由配置层预校验，违反不变量时立即失败
func validateRequest(req *Request) error {
	if req.Month < time.January || req.Month > time.December {
		return errors.InvalidConfiguration("月份必须在 1 到 12 之间")
	}
	if len(req.Participants) == 0 {
		return errors.InvalidConfiguration("没有参与者")
	}

	seen := make(map[string]bool, len(req.Participants))
	for _, p := range req.Participants {
		if p.Name == "" {
			return errors.InvalidConfiguration("参与者名称不能为空")
		}
		if seen[p.Name] {
			return errors.InvalidConfiguration("参与者名称重复: " + p.Name)
		}
		seen[p.Name] = true

		for _, w := range p.Constraint.BlockedWeekdays {
			if w < time.Sunday || w > time.Saturday {
				return errors.ConstraintParse(p.Name, "工作日索引超出 0-6 范围")
			}
		}
		for _, d := range p.Constraint.BlockedDates {
			if _, err := model.ParseDate(d); err != nil {
				return errors.ConstraintParse(p.Name, "日期格式无效: "+d)
			}
		}
	}

	if len(req.ReducedLoad) > 2 {
		return errors.InvalidConfiguration("少排班参与者最多 2 位")
	}
	for _, p := range req.ReducedLoad {
		if !seen[p] {
			return errors.InvalidConfiguration("少排班参与者不在参与者列表中: " + p)
		}
	}

	for _, d := range req.ExcludedDates {
		t, err := model.ParseDate(d)
		if err != nil {
			return errors.InvalidConfiguration("排除日期格式无效: " + d)
		}
		if t.Year() != req.Year || t.Month() != req.Month {
			return errors.InvalidConfiguration("排除日期不在目标月份内: " + d)
		}
	}

	return nil
}

// sortDays 按日期升序排序
func sortDays(days []model.ShiftDay) {
	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})
}
