package roster

import (
	"math/rand"
	"testing"

	"github.com/lunzhi/lunzhi/pkg/errors"
)

func TestComputeQuotas_EvenSplit(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	quotas, err := ComputeQuotas(20, []string{"a", "b", "c", "d"}, nil, rng)
	if err != nil {
		t.Fatalf("ComputeQuotas failed: %v", err)
	}

	for p, q := range quotas {
		if q != 5 {
			t.Errorf("Participant %s should have quota 5, got %d", p, q)
		}
	}
}

func TestComputeQuotas_SumInvariant(t *testing.T) {
	// 配额总和必须严格等于轮值日总数，余数任意取值均成立
	participants := []string{"a", "b", "c", "d", "e"}
	rng := rand.New(rand.NewSource(7))

	for total := 1; total <= 31; total++ {
		quotas, err := ComputeQuotas(total, participants, nil, rng)
		if err != nil {
			t.Fatalf("ComputeQuotas(%d) failed: %v", total, err)
		}

		sum := 0
		for _, q := range quotas {
			sum += q
		}
		if sum != total {
			t.Errorf("Total %d: quota sum is %d, want %d (quotas=%v)", total, sum, total, quotas)
		}

		// 任意两人配额差不超过1
		min, max := quotas[participants[0]], quotas[participants[0]]
		for _, q := range quotas {
			if q < min {
				min = q
			}
			if q > max {
				max = q
			}
		}
		if max-min > 1 {
			t.Errorf("Total %d: quota spread %d exceeds 1 (quotas=%v)", total, max-min, quotas)
		}
	}
}

func TestComputeQuotas_ReducedLoadPriority(t *testing.T) {
	// 23天5人：base=4 余3，两人需要减到4。少排班参与者优先承担减配
	rng := rand.New(rand.NewSource(42))
	quotas, err := ComputeQuotas(23, []string{"a", "b", "c", "d", "e"}, []string{"d", "b"}, rng)
	if err != nil {
		t.Fatalf("ComputeQuotas failed: %v", err)
	}

	if quotas["d"] != 4 {
		t.Errorf("Reduced-load participant d should have quota 4, got %d", quotas["d"])
	}
	if quotas["b"] != 4 {
		t.Errorf("Reduced-load participant b should have quota 4, got %d", quotas["b"])
	}

	sum := 0
	for _, q := range quotas {
		sum += q
	}
	if sum != 23 {
		t.Errorf("Quota sum is %d, want 23", sum)
	}
}

func TestComputeQuotas_Deterministic(t *testing.T) {
	participants := []string{"a", "b", "c", "d", "e", "f", "g"}

	first, err := ComputeQuotas(23, participants, nil, rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("ComputeQuotas failed: %v", err)
	}
	second, err := ComputeQuotas(23, participants, nil, rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("ComputeQuotas failed: %v", err)
	}

	for p, q := range first {
		if second[p] != q {
			t.Errorf("Seeded runs diverged for %s: %d vs %d", p, q, second[p])
		}
	}
}

func TestComputeQuotas_SingleParticipant(t *testing.T) {
	quotas, err := ComputeQuotas(20, []string{"solo"}, nil, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("ComputeQuotas failed: %v", err)
	}
	if quotas["solo"] != 20 {
		t.Errorf("Single participant should carry all 20 shifts, got %d", quotas["solo"])
	}
}

func TestComputeQuotas_NoParticipants(t *testing.T) {
	_, err := ComputeQuotas(20, nil, nil, rand.New(rand.NewSource(1)))
	if err == nil {
		t.Fatal("Expected error for empty participant list")
	}
	if !errors.Is(err, errors.CodeInvalidConfiguration) {
		t.Errorf("Expected INVALID_CONFIGURATION, got %v", errors.GetCode(err))
	}
}
