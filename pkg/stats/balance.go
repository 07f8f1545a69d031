// Package stats 提供轮值统计分析功能
package stats

import (
	"math"
	"sort"
)

// BalanceMetrics 分配均衡性指标
type BalanceMetrics struct {
	ShiftCountGini   float64          `json:"shift_count_gini"` // 班次数基尼系数 (0=完全均衡, 1=完全不均衡)
	Variance         float64          `json:"variance"`         // 班次数方差
	StdDev           float64          `json:"std_dev"`          // 班次数标准差
	AvgShifts        float64          `json:"avg_shifts"`       // 人均班次数
	MaxShifts        int              `json:"max_shifts"`       // 最大班次数
	MinShifts        int              `json:"min_shifts"`       // 最小班次数
	ShiftsRange      int              `json:"shifts_range"`     // 班次数极差
	QuotaDeviation   map[string]int   `json:"quota_deviation"`  // 各参与者实际与配额的偏差
	ParticipantStats map[string]int   `json:"participant_stats"`
}

// BalanceAnalyzer 均衡性分析器
type BalanceAnalyzer struct{}

// NewBalanceAnalyzer 创建均衡性分析器
func NewBalanceAnalyzer() *BalanceAnalyzer {
	return &BalanceAnalyzer{}
}

// Analyze 分析各参与者班次数的均衡性
// counts 为参与者到实际班次数的映射，quotas 为目标配额
func (a *BalanceAnalyzer) Analyze(counts map[string]int, quotas map[string]int) *BalanceMetrics {
	metrics := &BalanceMetrics{
		QuotaDeviation:   make(map[string]int),
		ParticipantStats: make(map[string]int),
	}

	if len(counts) == 0 {
		return metrics
	}

	values := make([]float64, 0, len(counts))
	total := 0
	first := true

	for name, c := range counts {
		metrics.ParticipantStats[name] = c
		values = append(values, float64(c))
		total += c

		if first || c > metrics.MaxShifts {
			metrics.MaxShifts = c
		}
		if first || c < metrics.MinShifts {
			metrics.MinShifts = c
		}
		first = false
	}
	metrics.ShiftsRange = metrics.MaxShifts - metrics.MinShifts
	metrics.AvgShifts = float64(total) / float64(len(counts))

	// 方差与标准差
	var sumSq float64
	for _, v := range values {
		d := v - metrics.AvgShifts
		sumSq += d * d
	}
	metrics.Variance = sumSq / float64(len(values))
	metrics.StdDev = math.Sqrt(metrics.Variance)

	metrics.ShiftCountGini = gini(values)

	for name, q := range quotas {
		metrics.QuotaDeviation[name] = counts[name] - q
	}

	return metrics
}

// gini 计算基尼系数
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum, weightedSum float64
	for i, v := range sorted {
		sum += v
		weightedSum += float64(i+1) * v
	}
	if sum == 0 {
		return 0
	}

	return (2*weightedSum)/(float64(n)*sum) - float64(n+1)/float64(n)
}
