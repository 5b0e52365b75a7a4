package plan

import (
	"errors"
	"testing"

	"lost-university/backend/pkg/semester"
)

func TestPlan_AddRemoveSemester(t *testing.T) {
	p := New()
	p.AddSemester()
	p.AddSemester()
	p.AddSemester()
	if err := p.AddModule(3, "AD2"); err != nil {
		t.Fatalf("添加模块失败: %v", err)
	}

	if err := p.RemoveSemester(2); err != nil {
		t.Fatalf("删除学期失败: %v", err)
	}
	if len(p.Semesters) != 2 {
		t.Fatalf("期望 2 个学期，实际 %d", len(p.Semesters))
	}
	if p.Semesters[1].Number != 2 {
		t.Errorf("期望编号连续，实际 %d", p.Semesters[1].Number)
	}
	if got := p.Semesters[1].ModuleIDs; len(got) != 1 || got[0] != "AD2" {
		t.Errorf("后续学期应前移，实际 %v", got)
	}

	if err := p.RemoveSemester(5); !errors.Is(err, ErrSemesterNotFound) {
		t.Errorf("期望 ErrSemesterNotFound，实际 %v", err)
	}
}

func TestPlan_ModuleMutations(t *testing.T) {
	p := New()
	p.AddSemester()
	p.AddSemester()

	if err := p.AddModule(1, ""); !errors.Is(err, ErrEmptyModuleID) {
		t.Errorf("期望 ErrEmptyModuleID，实际 %v", err)
	}
	if err := p.AddModule(0, "AD1"); !errors.Is(err, ErrSemesterNotFound) {
		t.Errorf("期望 ErrSemesterNotFound，实际 %v", err)
	}

	_ = p.AddModule(1, "AD1")
	_ = p.AddModule(1, "SE1")
	_ = p.AddModule(1, "AD1")

	if err := p.RemoveModule(1, "AD1"); err != nil {
		t.Fatalf("删除模块失败: %v", err)
	}
	if got := p.Semesters[0].ModuleIDs; len(got) != 2 || got[0] != "SE1" || got[1] != "AD1" {
		t.Errorf("只应删除第一次出现，实际 %v", got)
	}
	if err := p.RemoveModule(2, "AD1"); !errors.Is(err, ErrModuleNotInSemester) {
		t.Errorf("期望 ErrModuleNotInSemester，实际 %v", err)
	}

	if err := p.MoveModule(1, 2, "SE1"); err != nil {
		t.Fatalf("移动模块失败: %v", err)
	}
	if got := p.Semesters[1].ModuleIDs; len(got) != 1 || got[0] != "SE1" {
		t.Errorf("模块应移到第 2 学期，实际 %v", got)
	}
	if err := p.MoveModule(1, 9, "AD1"); !errors.Is(err, ErrSemesterNotFound) {
		t.Errorf("目标学期不存在时不应修改计划，实际 %v", err)
	}
	if got := p.Semesters[0].ModuleIDs; len(got) != 1 || got[0] != "AD1" {
		t.Errorf("移动失败后源学期应保持不变，实际 %v", got)
	}
}

func TestPlan_SemesterNames(t *testing.T) {
	p := New()
	p.AddSemester()
	p.AddSemester()
	p.AddSemester()
	if p.Semesters[0].Name != "" {
		t.Errorf("未设置入学学期时名称应为空，实际 %q", p.Semesters[0].Name)
	}

	start := semester.MustParse("HS23")
	p.SetStartSemester(&start)

	want := []string{"HS23", "FS24", "HS24"}
	for i, s := range p.Semesters {
		if s.Name != want[i] {
			t.Errorf("第 %d 学期期望 %s，实际 %s", i+1, want[i], s.Name)
		}
	}

	info, ok := p.SemesterInfo(3)
	if !ok || info.String() != "HS24" {
		t.Errorf("SemesterInfo(3) 期望 HS24，实际 %v %v", info, ok)
	}
	if _, ok := p.SemesterInfo(0); ok {
		t.Error("编号 0 不应有日历学期")
	}

	start.Year = 2030
	if p.StartSemester.Year != 2023 {
		t.Error("SetStartSemester 应复制入参")
	}

	p.SetStartSemester(nil)
	if p.Semesters[1].Name != "" {
		t.Errorf("清除入学学期后名称应为空，实际 %q", p.Semesters[1].Name)
	}
}

func TestPlan_ModuleIDsAndClone(t *testing.T) {
	start := semester.MustParse("FS24")
	p := &Plan{
		Semesters: []Semester{
			{ModuleIDs: []string{"AD1", "SE1"}},
			{ModuleIDs: []string{"AD1", "DBS"}},
		},
		StartSemester: &start,
	}
	p.Normalize()

	ids := p.ModuleIDs()
	if len(ids) != 3 || ids[0] != "AD1" || ids[1] != "SE1" || ids[2] != "DBS" {
		t.Errorf("期望去重后的 ID 列表，实际 %v", ids)
	}

	c := p.Clone()
	c.Semesters[0].ModuleIDs[0] = "XXX"
	c.StartSemester.Year = 2030
	if p.Semesters[0].ModuleIDs[0] != "AD1" || p.StartSemester.Year != 2024 {
		t.Error("Clone 应为深拷贝")
	}
}
