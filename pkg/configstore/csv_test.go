package configstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lunzhi/lunzhi/pkg/model"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "participants.csv")

	original := &Config{
		Participants: []model.Participant{
			{Name: "张伟", Constraint: model.Constraint{
				BlockedWeekdays: []time.Weekday{time.Sunday, time.Wednesday},
				BlockedDates:    []string{"2026-02-10", "2026-02-17"},
			}},
			{Name: "李娜"},
			{Name: "王芳", Constraint: model.Constraint{
				BlockedDates: []string{"2026-02-03"},
			}},
		},
		ReducedLoad: []string{"李娜"},
	}

	if err := Save(path, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded.Participants) != 3 {
		t.Fatalf("Expected 3 participants, got %d", len(loaded.Participants))
	}

	zhang := loaded.Participants[0]
	if zhang.Name != "张伟" {
		t.Errorf("Expected 张伟, got %s", zhang.Name)
	}
	if len(zhang.Constraint.BlockedWeekdays) != 2 {
		t.Errorf("张伟 should have 2 blocked weekdays, got %v", zhang.Constraint.BlockedWeekdays)
	}
	if len(zhang.Constraint.BlockedDates) != 2 || zhang.Constraint.BlockedDates[0] != "2026-02-10" {
		t.Errorf("张伟 blocked dates wrong: %v", zhang.Constraint.BlockedDates)
	}

	if !loaded.Participants[1].Constraint.IsEmpty() {
		t.Error("李娜 should have no constraints")
	}

	if len(loaded.ReducedLoad) != 1 || loaded.ReducedLoad[0] != "李娜" {
		t.Errorf("Reduced load should be [李娜], got %v", loaded.ReducedLoad)
	}
}

func TestSave_BOMAndApostrophe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "participants.csv")

	cfg := &Config{
		Participants: []model.Participant{
			{Name: "张伟", Constraint: model.Constraint{BlockedDates: []string{"2026-02-10"}}},
		},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	// Excel 兼容：UTF-8 BOM 开头，日期加前导撇号
	if !strings.HasPrefix(string(raw), utf8BOM) {
		t.Error("File should start with UTF-8 BOM")
	}
	if !strings.Contains(string(raw), "'2026-02-10") {
		t.Error("Dates should carry a leading apostrophe")
	}
}

func TestLoad_DateNormalization(t *testing.T) {
	path := filepath.Join(t.TempDir(), "participants.csv")

	content := "name,weekday_blocks,date_blocks,fewer_shifts\n" +
		"张伟,,'2026-02-10;02/15/2026,NO\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	dates := cfg.Participants[0].Constraint.BlockedDates
	if len(dates) != 2 {
		t.Fatalf("Expected 2 dates, got %v", dates)
	}
	if dates[0] != "2026-02-10" || dates[1] != "2026-02-15" {
		t.Errorf("Dates not normalized: %v", dates)
	}
}

func TestLoad_InvalidWeekday(t *testing.T) {
	path := filepath.Join(t.TempDir(), "participants.csv")

	content := "name,weekday_blocks,date_blocks,fewer_shifts\n" +
		"张伟,9,,NO\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Weekday index 9 should be rejected")
	}
}

func TestLoad_MissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "participants.csv")

	content := "name,weekday_blocks\n张伟,0\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Missing columns should be rejected")
	}
}

func TestLoad_NotFound(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("Missing file should return an error")
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2026-02-10", "2026-02-10"},
		{"2026/02/10", "2026-02-10"},
		{"02/10/2026", "2026-02-10"},
		{" 2026-02-10 ", "2026-02-10"},
	}

	for _, tc := range cases {
		got, err := NormalizeDate(tc.in)
		if err != nil {
			t.Errorf("NormalizeDate(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeDate(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}

	if _, err := NormalizeDate(""); err == nil {
		t.Error("Empty date should be rejected")
	}
	if _, err := NormalizeDate("下周二"); err == nil {
		t.Error("Unparseable date should be rejected")
	}
}

func TestSplitMulti(t *testing.T) {
	got := splitMulti("0; 3 ;;6")
	want := []string{"0", "3", "6"}

	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}
