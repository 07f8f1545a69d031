// Package roster 提供月度轮值分配引擎
package roster

import (
	"math/rand"

	"github.com/lunzhi/lunzhi/pkg/errors"
)

// ComputeQuotas 计算每位参与者的目标轮值次数
//
// base = total / n，remainder = total % n。余数为零时所有人配额为 base；
// 否则所有人从 base+1 出发，恰好 n - remainder 位参与者的配额减一，
// 保证配额总和严格等于 total。
// 减配候选顺序：先是标记为少排班的参与者（按给定顺序），
// 其余参与者随机排列。随机源由调用方注入，固定种子产生固定结果
func ComputeQuotas(total int, participants []string, reducedLoad []string, rng *rand.Rand) (map[string]int, error) {
	n := len(participants)
	if n == 0 {
		return nil, errors.InvalidConfiguration("没有参与者，无法计算配额")
	}

	base := total / n
	remainder := total % n

	quotas := make(map[string]int, n)
	for _, p := range participants {
		quotas[p] = base
	}

	if remainder == 0 {
		return quotas, nil
	}

	// 有余数时 remainder 位参与者需要承担 base+1 个班次
	for _, p := range participants {
		quotas[p] = base + 1
	}

	flagged := make(map[string]bool, len(reducedLoad))
	candidates := make([]string, 0, n)

	// 少排班的参与者优先承担减配，顺序保持给定顺序
	for _, p := range reducedLoad {
		if _, ok := quotas[p]; ok && !flagged[p] {
			flagged[p] = true
			candidates = append(candidates, p)
		}
	}

	// 其余参与者随机排列
	rest := make([]string, 0, n-len(candidates))
	for _, p := range participants {
		if !flagged[p] {
			rest = append(rest, p)
		}
	}
	rng.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})
	candidates = append(candidates, rest...)

	// 前 n - remainder 位候选各减一个班次
	reduceCount := n - remainder
	for i := 0; i < reduceCount && i < len(candidates); i++ {
		quotas[candidates[i]]--
	}

	return quotas, nil
}
