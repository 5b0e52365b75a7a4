package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"lost-university/backend/internal/dto"
)

// ── 测试辅助 ──

func fixedClock(year int, month time.Month) Clock {
	return func() time.Time { return time.Date(year, month, 15, 12, 0, 0, 0, time.UTC) }
}

func setupTestPlanService(clock Clock) (PlanService, SessionCache) {
	cache := newMemorySessionCache(100, time.Hour)
	svc := NewPlanService(newTestStore(testModules()...), cache, "23", clock, nil, zap.NewNop())
	return svc, cache
}

func boolPtr(b bool) *bool { return &b }

// ── Decode 测试 ──

func TestPlanService_Decode_Canonical(t *testing.T) {
	svc, _ := setupTestPlanService(fixedClock(2023, time.September))

	resp, err := svc.Decode(context.Background(), "s1", "#/plan/AD1-AD2?startSemester=HS23")
	if err != nil {
		t.Fatalf("Decode 应成功: %v", err)
	}
	if resp.Text != "#/plan/AD1-AD2?startSemester=HS23" || resp.Rewritten {
		t.Errorf("规范文本不应被改写，实际 text=%s rewritten=%v", resp.Text, resp.Rewritten)
	}
	if resp.Studienordnung != "23" {
		t.Errorf("期望学习规章 23，实际 %s", resp.Studienordnung)
	}
	if len(resp.Semesters) != 2 {
		t.Fatalf("期望 2 个学期，实际 %d", len(resp.Semesters))
	}
	if resp.Semesters[0].Name != "HS23" || resp.Semesters[1].Name != "FS24" {
		t.Errorf("学期名称错误: %+v", resp.Semesters)
	}
	if resp.Semesters[0].ECTS != 4 {
		t.Errorf("期望第 1 学期 4 ECTS，实际 %v", resp.Semesters[0].ECTS)
	}
	if len(resp.Findings) != 0 {
		t.Errorf("合法计划不应有校验结果，实际 %+v", resp.Findings)
	}
	if resp.FromSession {
		t.Error("显式传入的计划不应标记为来自会话")
	}
}

func TestPlanService_Decode_DropsUnknownModules(t *testing.T) {
	svc, _ := setupTestPlanService(fixedClock(2024, time.March))

	resp, err := svc.Decode(context.Background(), "s1", "#/plan/AD1_NOPE-DBS")
	if err != nil {
		t.Fatalf("Decode 应成功: %v", err)
	}
	if resp.Text != "#/plan/AD1-DBS" {
		t.Errorf("期望 #/plan/AD1-DBS，实际 %s", resp.Text)
	}
	if !resp.Rewritten {
		t.Error("丢弃未知模块后应标记为已改写")
	}
	if len(resp.UnknownModules) != 1 || resp.UnknownModules[0].ModuleID != "NOPE" || resp.UnknownModules[0].SemesterNumber != 1 {
		t.Errorf("未知模块上报错误: %+v", resp.UnknownModules)
	}
}

func TestPlanService_Decode_ResumesFromSession(t *testing.T) {
	svc, _ := setupTestPlanService(fixedClock(2024, time.March))
	ctx := context.Background()

	if _, err := svc.Decode(ctx, "s1", "#/plan/AD1-DBS"); err != nil {
		t.Fatalf("Decode 应成功: %v", err)
	}

	for _, text := range []string{"", "https://example.org/#/other"} {
		resp, err := svc.Decode(ctx, "s1", text)
		if err != nil {
			t.Fatalf("文本 %q 应回退到会话缓存: %v", text, err)
		}
		if !resp.FromSession || resp.Text != "#/plan/AD1-DBS" {
			t.Errorf("期望恢复缓存的计划，实际 %+v", resp)
		}
	}
}

func TestPlanService_Decode_NoPlan(t *testing.T) {
	svc, _ := setupTestPlanService(fixedClock(2024, time.March))

	_, err := svc.Decode(context.Background(), "fresh", "")
	if !errors.Is(err, ErrNoPlan) {
		t.Errorf("期望 ErrNoPlan，实际: %v", err)
	}
	_, err = svc.Decode(context.Background(), "", "hello")
	if !errors.Is(err, ErrNoPlan) {
		t.Errorf("无会话时期望 ErrNoPlan，实际: %v", err)
	}
}

func TestPlanService_Decode_CacheFailureIsNotFatal(t *testing.T) {
	svc := NewPlanService(newTestStore(testModules()...), failingSessionCache{}, "23", fixedClock(2024, time.March), nil, zap.NewNop())

	if _, err := svc.Decode(context.Background(), "s1", "#/plan/AD1"); err != nil {
		t.Errorf("缓存写入失败不应影响解码: %v", err)
	}
	if _, err := svc.Decode(context.Background(), "s1", ""); !errors.Is(err, ErrNoPlan) {
		t.Errorf("缓存读取失败时期望 ErrNoPlan，实际: %v", err)
	}
}

// ── Encode 测试 ──

func TestPlanService_Encode_StoresInSession(t *testing.T) {
	svc, _ := setupTestPlanService(fixedClock(2024, time.March))
	ctx := context.Background()

	resp, err := svc.Encode(ctx, "s1", &dto.PlanPayload{
		Semesters: []dto.SemesterPayload{
			{ModuleIDs: []string{"AD1"}},
			{},
			{ModuleIDs: []string{"DBS", " "}},
		},
		StartSemester:     "HS23",
		ValidationEnabled: boolPtr(false),
	})
	if err != nil {
		t.Fatalf("Encode 应成功: %v", err)
	}
	want := "#/plan/AD1--DBS?startSemester=HS23&validation=false"
	if resp.Text != want {
		t.Errorf("期望 %s，实际 %s", want, resp.Text)
	}

	resumed, err := svc.Decode(ctx, "s1", "")
	if err != nil {
		t.Fatalf("应能恢复刚编码的计划: %v", err)
	}
	if resumed.Text != want || resumed.ValidationEnabled {
		t.Errorf("恢复的计划不一致: %+v", resumed)
	}
}

func TestPlanService_Encode_RejectsInvalidInput(t *testing.T) {
	svc, _ := setupTestPlanService(fixedClock(2024, time.March))
	ctx := context.Background()

	_, err := svc.Encode(ctx, "s1", &dto.PlanPayload{
		Semesters: []dto.SemesterPayload{{ModuleIDs: []string{"A-B"}}},
	})
	if !errors.Is(err, ErrInvalidModuleID) {
		t.Errorf("期望 ErrInvalidModuleID，实际: %v", err)
	}

	_, err = svc.Encode(ctx, "s1", &dto.PlanPayload{StartSemester: "WS24"})
	if !errors.Is(err, ErrInvalidSemester) {
		t.Errorf("期望 ErrInvalidSemester，实际: %v", err)
	}
}

// ── Validate 测试 ──

func TestPlanService_Validate_IgnoresValidationFlag(t *testing.T) {
	svc, _ := setupTestPlanService(fixedClock(2023, time.September))
	ctx := context.Background()
	text := "#/plan/AD2-AD1?startSemester=HS23&validation=false"

	decoded, err := svc.Decode(ctx, "s1", text)
	if err != nil {
		t.Fatalf("Decode 应成功: %v", err)
	}
	if len(decoded.Findings) != 0 {
		t.Errorf("关闭校验的计划解码时不应附带校验结果，实际 %+v", decoded.Findings)
	}

	resp, err := svc.Validate(ctx, "s1", text)
	if err != nil {
		t.Fatalf("Validate 应成功: %v", err)
	}
	if resp.HardCount != 2 || resp.SoftCount != 0 {
		t.Errorf("期望 2 个严重问题，实际 hard=%d soft=%d", resp.HardCount, resp.SoftCount)
	}
	for _, f := range resp.Findings {
		if f.Kind != "wrong_term" {
			t.Errorf("期望 wrong_term，实际 %s", f.Kind)
		}
	}
}

func TestPlanService_Validate_SoftFindingForRecommendation(t *testing.T) {
	svc, _ := setupTestPlanService(fixedClock(2023, time.September))

	// HS23, FS24, HS24：AD1 排在 AD2 之后
	resp, err := svc.Validate(context.Background(), "s1", "#/plan/DBS-AD2-AD1?startSemester=HS23")
	if err != nil {
		t.Fatalf("Validate 应成功: %v", err)
	}
	if resp.HardCount != 0 || resp.SoftCount != 1 {
		t.Fatalf("期望 1 个提示，实际 hard=%d soft=%d", resp.HardCount, resp.SoftCount)
	}
	if resp.Findings[0].ModuleID != "AD2" || resp.Findings[0].Kind != "before_recommended" {
		t.Errorf("校验结果错误: %+v", resp.Findings[0])
	}
}
