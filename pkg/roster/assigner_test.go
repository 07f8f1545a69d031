package roster

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/lunzhi/lunzhi/pkg/errors"
	"github.com/lunzhi/lunzhi/pkg/model"
)

func newTestEngine(seed int64) *Engine {
	return NewEngine(rand.New(rand.NewSource(seed)))
}

func fourParticipants() []model.Participant {
	return []model.Participant{
		{Name: "张伟"},
		{Name: "李娜"},
		{Name: "王芳"},
		{Name: "刘强"},
	}
}

func TestEngine_Generate_FullMonth(t *testing.T) {
	// 2026年2月：20个排班日，4人，配额恰好人均5
	engine := newTestEngine(42)
	result, err := engine.Generate(context.Background(), &Request{
		Year:         2026,
		Month:        time.February,
		Participants: fourParticipants(),
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if result.Statistics.TotalDays != 20 {
		t.Errorf("Expected 20 total days, got %d", result.Statistics.TotalDays)
	}
	if result.Statistics.AssignedDays != 20 {
		t.Errorf("Expected all 20 days assigned, got %d", result.Statistics.AssignedDays)
	}
	if len(result.Unassignable) != 0 {
		t.Errorf("Expected no unassignable days, got %v", result.Unassignable)
	}
	if result.Statistics.FillRate != 100 {
		t.Errorf("Expected fill rate 100, got %f", result.Statistics.FillRate)
	}

	// 配额上限在不放弃配额的层级内生效，最终人均恰好5班
	for name, days := range result.Assignments {
		if len(days) != 5 {
			t.Errorf("Participant %s has %d shifts, want 5", name, len(days))
		}
		if result.Quotas[name] != 5 {
			t.Errorf("Participant %s quota is %d, want 5", name, result.Quotas[name])
		}
	}
}

func TestEngine_Generate_OutcomeConservation(t *testing.T) {
	engine := newTestEngine(7)
	result, err := engine.Generate(context.Background(), &Request{
		Year:         2026,
		Month:        time.March,
		Participants: fourParticipants(),
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// 每个轮值日恰好产生一条结果记录，且按日期升序
	if len(result.Outcomes) != result.Statistics.TotalDays {
		t.Fatalf("Expected %d outcomes, got %d", result.Statistics.TotalDays, len(result.Outcomes))
	}

	seen := make(map[string]bool)
	assigned, unassignable := 0, 0
	for i, o := range result.Outcomes {
		if seen[o.Day.Date] {
			t.Errorf("Date %s appears twice in outcomes", o.Day.Date)
		}
		seen[o.Day.Date] = true

		if i > 0 && result.Outcomes[i-1].Day.Date >= o.Day.Date {
			t.Errorf("Outcomes not ascending at %s", o.Day.Date)
		}

		switch o.Kind {
		case model.OutcomeAssigned:
			assigned++
			if o.Participant == "" {
				t.Errorf("Assigned outcome for %s has no participant", o.Day.Date)
			}
		case model.OutcomeUnassignable:
			unassignable++
			if o.Participant != "" {
				t.Errorf("Unassignable outcome for %s names a participant", o.Day.Date)
			}
		}
	}

	if assigned != result.Statistics.AssignedDays {
		t.Errorf("Assigned outcome count %d != statistics %d", assigned, result.Statistics.AssignedDays)
	}
	if unassignable != result.Statistics.UnassignableDays {
		t.Errorf("Unassignable outcome count %d != statistics %d", unassignable, result.Statistics.UnassignableDays)
	}
}

func TestEngine_Generate_Deterministic(t *testing.T) {
	participants := []model.Participant{
		{Name: "张伟", Constraint: model.Constraint{BlockedWeekdays: []time.Weekday{time.Sunday}}},
		{Name: "李娜", Constraint: model.Constraint{BlockedDates: []string{"2026-02-10"}}},
		{Name: "王芳"},
		{Name: "刘强"},
	}
	req := &Request{Year: 2026, Month: time.February, Participants: participants}

	first, err := newTestEngine(12345).Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	second, err := newTestEngine(12345).Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	// 固定种子下两次运行逐日一致
	if len(first.Outcomes) != len(second.Outcomes) {
		t.Fatalf("Outcome counts diverged: %d vs %d", len(first.Outcomes), len(second.Outcomes))
	}
	for i := range first.Outcomes {
		a, b := first.Outcomes[i], second.Outcomes[i]
		if a.Day.Date != b.Day.Date || a.Participant != b.Participant || a.Tier != b.Tier {
			t.Errorf("Run diverged at %s: %s/%s vs %s/%s", a.Day.Date, a.Participant, a.Tier, b.Participant, b.Tier)
		}
	}
}

func TestEngine_Generate_HardConstraintNeverViolated(t *testing.T) {
	participants := []model.Participant{
		{Name: "张伟", Constraint: model.Constraint{BlockedWeekdays: []time.Weekday{time.Sunday}}},
		{Name: "李娜", Constraint: model.Constraint{BlockedDates: []string{"2026-02-10", "2026-02-11"}}},
		{Name: "王芳"},
	}

	result, err := newTestEngine(3).Generate(context.Background(), &Request{
		Year:         2026,
		Month:        time.February,
		Participants: participants,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// 阻塞日是硬约束，任何放宽层级都不得违反
	for _, d := range result.Assignments["张伟"] {
		if d.Weekday == time.Sunday {
			t.Errorf("张伟 assigned on blocked Sunday %s", d.Date)
		}
	}
	for _, d := range result.Assignments["李娜"] {
		if d.Date == "2026-02-10" || d.Date == "2026-02-11" {
			t.Errorf("李娜 assigned on blocked date %s", d.Date)
		}
	}
}

func TestEngine_Generate_AllBlockedDay(t *testing.T) {
	// 所有人都阻塞 2026-02-03：该日无法分配，其余日期照常
	participants := []model.Participant{
		{Name: "张伟", Constraint: model.Constraint{BlockedDates: []string{"2026-02-03"}}},
		{Name: "李娜", Constraint: model.Constraint{BlockedDates: []string{"2026-02-03"}}},
		{Name: "王芳", Constraint: model.Constraint{BlockedDates: []string{"2026-02-03"}}},
	}

	result, err := newTestEngine(5).Generate(context.Background(), &Request{
		Year:         2026,
		Month:        time.February,
		Participants: participants,
	})
	if err != nil {
		t.Fatalf("Generate should degrade, not fail: %v", err)
	}

	if len(result.Unassignable) != 1 || result.Unassignable[0].Date != "2026-02-03" {
		t.Fatalf("Expected exactly 2026-02-03 unassignable, got %v", result.Unassignable)
	}
	if result.Statistics.AssignedDays != 19 {
		t.Errorf("Expected 19 assigned days, got %d", result.Statistics.AssignedDays)
	}

	found := false
	for _, w := range result.Warnings {
		if w.Day.Date == "2026-02-03" {
			found = true
			if len(w.Blocked) != 3 {
				t.Errorf("Warning should list all 3 blocked participants, got %d", len(w.Blocked))
			}
		}
	}
	if !found {
		t.Error("Expected a warning for the fully blocked day")
	}
}

func TestEngine_Generate_SingleParticipant(t *testing.T) {
	// 单人排班：同周与相邻日约束必然放宽到底，但所有日期都要排上
	result, err := newTestEngine(9).Generate(context.Background(), &Request{
		Year:         2026,
		Month:        time.February,
		Participants: []model.Participant{{Name: "张伟"}},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(result.Assignments["张伟"]) != 20 {
		t.Errorf("Solo participant should carry all 20 days, got %d", len(result.Assignments["张伟"]))
	}
	if result.Statistics.TierUsage["drop_consecutive"] == 0 {
		t.Error("Solo roster must relax down to drop_consecutive for adjacent days")
	}
}

func TestEngine_Generate_ExcludedDates(t *testing.T) {
	result, err := newTestEngine(11).Generate(context.Background(), &Request{
		Year:          2026,
		Month:         time.February,
		Participants:  fourParticipants(),
		ExcludedDates: []string{"2026-02-16", "2026-02-17"},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if result.Statistics.TotalDays != 18 {
		t.Errorf("Expected 18 days after holiday exclusion, got %d", result.Statistics.TotalDays)
	}
	for _, o := range result.Outcomes {
		if o.Day.Date == "2026-02-16" || o.Day.Date == "2026-02-17" {
			t.Errorf("Excluded date %s present in outcomes", o.Day.Date)
		}
	}
}

func TestEngine_Generate_EmptyMonth(t *testing.T) {
	var excluded []string
	for _, d := range ExpandMonth(2026, time.February, nil) {
		excluded = append(excluded, d.Date)
	}

	_, err := newTestEngine(1).Generate(context.Background(), &Request{
		Year:          2026,
		Month:         time.February,
		Participants:  fourParticipants(),
		ExcludedDates: excluded,
	})
	if err == nil {
		t.Fatal("Expected error when every date is excluded")
	}
	if !errors.Is(err, errors.CodeInvalidConfiguration) {
		t.Errorf("Expected INVALID_CONFIGURATION, got %v", errors.GetCode(err))
	}
}

func TestEngine_Generate_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine(1).Generate(ctx, &Request{
		Year:         2026,
		Month:        time.February,
		Participants: fourParticipants(),
	})
	if err == nil {
		t.Fatal("Expected error for cancelled context")
	}
}

func TestValidateRequest(t *testing.T) {
	base := func() *Request {
		return &Request{Year: 2026, Month: time.February, Participants: fourParticipants()}
	}

	cases := []struct {
		name   string
		mutate func(*Request)
	}{
		{"月份越界", func(r *Request) { r.Month = 13 }},
		{"无参与者", func(r *Request) { r.Participants = nil }},
		{"空名称", func(r *Request) { r.Participants[0].Name = "" }},
		{"名称重复", func(r *Request) { r.Participants[1].Name = r.Participants[0].Name }},
		{"工作日越界", func(r *Request) {
			r.Participants[0].Constraint.BlockedWeekdays = []time.Weekday{7}
		}},
		{"阻塞日期格式错误", func(r *Request) {
			r.Participants[0].Constraint.BlockedDates = []string{"02/10/2026"}
		}},
		{"少排班超过两人", func(r *Request) { r.ReducedLoad = []string{"张伟", "李娜", "王芳"} }},
		{"少排班不在名单", func(r *Request) { r.ReducedLoad = []string{"不存在"} }},
		{"排除日期格式错误", func(r *Request) { r.ExcludedDates = []string{"Feb 3"} }},
		{"排除日期在月份外", func(r *Request) { r.ExcludedDates = []string{"2026-03-01"} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base()
			tc.mutate(req)
			if err := validateRequest(req); err == nil {
				t.Error("Expected validation error")
			}
		})
	}

	if err := validateRequest(base()); err != nil {
		t.Errorf("Valid request rejected: %v", err)
	}
}

func TestEngine_Generate_ReducedLoad(t *testing.T) {
	// 2026年3月：23个排班日，5人，base=4 余3 => 三人5班、两人4班
	participants := []model.Participant{
		{Name: "张伟"}, {Name: "李娜"}, {Name: "王芳"}, {Name: "刘强"}, {Name: "陈静"},
	}

	result, err := newTestEngine(21).Generate(context.Background(), &Request{
		Year:         2026,
		Month:        time.March,
		Participants: participants,
		ReducedLoad:  []string{"陈静", "李娜"},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if result.Quotas["陈静"] != 4 || result.Quotas["李娜"] != 4 {
		t.Errorf("Reduced-load participants should have quota 4, got 陈静=%d 李娜=%d",
			result.Quotas["陈静"], result.Quotas["李娜"])
	}

	sum := 0
	for _, q := range result.Quotas {
		sum += q
	}
	if sum != 23 {
		t.Errorf("Quota sum is %d, want 23", sum)
	}
}
