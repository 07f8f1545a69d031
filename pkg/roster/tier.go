// Package roster 提供月度轮值分配引擎
package roster

// Tier 资格判定的放宽层级
// 硬约束（阻塞日）在任何层级都不会被违反；软约束按固定顺序逐层放弃，
// 层级依次求值，首个非空结果即停，使放宽过程可审计
type Tier int

const (
	// TierStrict 严格：未超配额、不同 ISO 周、不相邻
	TierStrict Tier = iota
	// TierDropWeek 放弃同周检查
	TierDropWeek
	// TierAllowOverQuota 允许超出配额一个班次，仍检查相邻日
	TierAllowOverQuota
	// TierDropQuota 完全放弃配额上限，仍检查相邻日
	TierDropQuota
	// TierDropConsecutive 连相邻日检查也放弃，只剩阻塞日硬约束
	TierDropConsecutive
)

// AllTiers 按放宽顺序排列的全部层级
var AllTiers = []Tier{
	TierStrict,
	TierDropWeek,
	TierAllowOverQuota,
	TierDropQuota,
	TierDropConsecutive,
}

// String 返回层级名称
func (t Tier) String() string {
	switch t {
	case TierStrict:
		return "strict"
	case TierDropWeek:
		return "drop_week"
	case TierAllowOverQuota:
		return "allow_over_quota"
	case TierDropQuota:
		return "drop_quota"
	case TierDropConsecutive:
		return "drop_consecutive"
	default:
		return "unknown"
	}
}

// checksWeek 该层级是否检查同 ISO 周冲突
func (t Tier) checksWeek() bool {
	return t == TierStrict
}

// checksConsecutive 该层级是否检查相邻日冲突
func (t Tier) checksConsecutive() bool {
	return t != TierDropConsecutive
}

// quotaSlack 该层级允许超出配额的数量，-1 表示无上限
func (t Tier) quotaSlack() int {
	switch t {
	case TierStrict, TierDropWeek:
		return 0
	case TierAllowOverQuota:
		return 1
	default:
		return -1
	}
}
