package service

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"lost-university/backend/internal/dto"
)

// ── 测试辅助 ──

func setupTestSemesterService(clock Clock) SemesterService {
	return NewSemesterService(clock, "21", zap.NewNop())
}

// ── Current 测试 ──

func TestSemesterService_Current(t *testing.T) {
	tests := []struct {
		name   string
		clock  Clock
		want   string
		spring bool
		so     string
	}{
		{"春季学期", fixedClock(2024, time.March), "FS24", true, "23"},
		{"六月仍属春季", fixedClock(2024, time.June), "FS24", true, "23"},
		{"七月切换为秋季", fixedClock(2024, time.July), "HS24", false, "23"},
		{"学习规章 21", fixedClock(2023, time.February), "FS23", true, "21"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := setupTestSemesterService(tt.clock).Current()
			if resp.Semester != tt.want || resp.IsSpringTerm != tt.spring {
				t.Errorf("期望 %s，实际 %+v", tt.want, resp)
			}
			if resp.Studienordnung != tt.so {
				t.Errorf("期望学习规章 %s，实际 %s", tt.so, resp.Studienordnung)
			}
		})
	}
}

// ── NextPossible 测试 ──

func TestSemesterService_NextPossible(t *testing.T) {
	svc := setupTestSemesterService(fixedClock(2024, time.March))

	tests := []struct {
		term, start string
		want        string
		offset      int
	}{
		{"FS", "FS24", "FS24", 0},
		{"HS", "FS24", "HS24", 1},
		{"FS/HS", "HS24", "HS24", 0},
		{"FS", "HS24", "FS25", 1},
	}
	for _, tt := range tests {
		resp, err := svc.NextPossible(&dto.NextPossibleRequest{Term: tt.term, Start: tt.start})
		if err != nil {
			t.Fatalf("%s/%s: NextPossible 应成功: %v", tt.term, tt.start, err)
		}
		if resp.Semester != tt.want || resp.Offset != tt.offset {
			t.Errorf("%s/%s: 期望 %s (+%d)，实际 %s (+%d)", tt.term, tt.start, tt.want, tt.offset, resp.Semester, resp.Offset)
		}
	}
}

func TestSemesterService_NextPossible_InvalidInput(t *testing.T) {
	svc := setupTestSemesterService(fixedClock(2024, time.March))

	if _, err := svc.NextPossible(&dto.NextPossibleRequest{Term: "WS", Start: "FS24"}); !errors.Is(err, ErrInvalidTerm) {
		t.Errorf("期望 ErrInvalidTerm，实际: %v", err)
	}
	if _, err := svc.NextPossible(&dto.NextPossibleRequest{Term: "FS", Start: "fs24"}); !errors.Is(err, ErrInvalidSemester) {
		t.Errorf("期望 ErrInvalidSemester，实际: %v", err)
	}
}

// ── Range 测试 ──

func TestSemesterService_Range(t *testing.T) {
	svc := setupTestSemesterService(fixedClock(2024, time.March))

	resp, err := svc.Range(&dto.SemesterRangeRequest{Start: "HS23", Count: 4})
	if err != nil {
		t.Fatalf("Range 应成功: %v", err)
	}
	want := []string{"HS23", "FS24", "HS24", "FS25"}
	if len(resp.Semesters) != len(want) {
		t.Fatalf("期望 %v，实际 %v", want, resp.Semesters)
	}
	for i := range want {
		if resp.Semesters[i] != want[i] {
			t.Errorf("第 %d 项期望 %s，实际 %s", i, want[i], resp.Semesters[i])
		}
	}

	def, _ := svc.Range(&dto.SemesterRangeRequest{Start: "FS24"})
	if len(def.Semesters) != 6 {
		t.Errorf("默认应返回 6 个学期，实际 %d", len(def.Semesters))
	}

	// 超出两位年份范围的学期被截断
	tail, _ := svc.Range(&dto.SemesterRangeRequest{Start: "HS99", Count: 3})
	if len(tail.Semesters) != 1 {
		t.Errorf("期望截断为 1 个学期，实际 %v", tail.Semesters)
	}
}
