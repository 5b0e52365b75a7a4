//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lost-university/backend/internal/model"
	"lost-university/backend/internal/repository"
	"lost-university/backend/pkg/semester"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=lost_university password=lost_university dbname=lost_university_test sslmode=disable TimeZone=Europe/Zurich"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	if err := testDB.AutoMigrate(&model.Module{}, &model.Category{}, &model.Focus{}); err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func cleanup(t *testing.T) {
	t.Helper()
	testDB.Exec("DELETE FROM modules")
	testDB.Exec("DELETE FROM categories")
	testDB.Exec("DELETE FROM focuses")
}

func strPtr(s string) *string { return &s }

// ═══════════════════════════════════════════════════════════
// Test: Module ReplaceAll
// ═══════════════════════════════════════════════════════════

func TestModuleRepo_ReplaceAll(t *testing.T) {
	cleanup(t)
	defer cleanup(t)

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	first := []model.Module{
		{ModuleID: "AD1", Name: "Algorithmen 1", ECTS: 4, Term: semester.TermFallOnly},
		{ModuleID: "WE1", Name: "Web Engineering 1", ECTS: 4, Term: semester.TermBoth, IsDeactivated: true, SuccessorModuleID: strPtr("WE2")},
		{ModuleID: "WE2", Name: "Web Engineering 2", ECTS: 4, Term: semester.TermBoth, PredecessorModuleID: strPtr("WE1"), RecommendedModuleIDs: model.StringArray{"AD1"}},
	}
	if err := repo.Module.ReplaceAll(ctx, first, "test"); err != nil {
		t.Fatalf("首次写入失败: %v", err)
	}

	second := []model.Module{
		{ModuleID: "AD1", Name: "Algorithmen und Datenstrukturen 1", ECTS: 4, Term: semester.TermFallOnly},
		{ModuleID: "WE2", Name: "Web Engineering 2", ECTS: 4, Term: semester.TermBoth, PredecessorModuleID: strPtr("WE1"), RecommendedModuleIDs: model.StringArray{"AD1"}},
	}
	if err := repo.Module.ReplaceAll(ctx, second, "test"); err != nil {
		t.Fatalf("二次写入失败: %v", err)
	}

	all, err := repo.Module.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll 失败: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("期望 2 个模块，实际 %d", len(all))
	}

	ad1, err := repo.Module.GetByID(ctx, "AD1")
	if err != nil {
		t.Fatalf("GetByID 失败: %v", err)
	}
	if ad1.Name != "Algorithmen und Datenstrukturen 1" {
		t.Errorf("名称应被更新，实际 %s", ad1.Name)
	}

	we2, _ := repo.Module.GetByID(ctx, "WE2")
	if we2.Predecessor() != "WE1" || !we2.RecommendedModuleIDs.Contains("AD1") {
		t.Errorf("关联字段读写不一致: %+v", we2)
	}

	if _, err := repo.Module.GetByID(ctx, "WE1"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("目录中删除的模块应被移除，实际 err=%v", err)
	}
}

func TestModuleRepo_ListFilter(t *testing.T) {
	cleanup(t)
	defer cleanup(t)

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	_ = repo.Module.ReplaceAll(ctx, []model.Module{
		{ModuleID: "AD1", Name: "Algorithmen 1", Term: semester.TermFallOnly},
		{ModuleID: "DBS", Name: "Datenbanksysteme", Term: semester.TermSpringOnly},
		{ModuleID: "OLD", Name: "Altmodul", Term: semester.TermBoth, IsDeactivated: true},
	}, "test")

	active, _ := repo.Module.List(ctx, repository.ModuleFilter{})
	if len(active) != 2 {
		t.Errorf("默认不应返回停开模块，实际 %d", len(active))
	}

	spring, _ := repo.Module.List(ctx, repository.ModuleFilter{Term: "FS"})
	if len(spring) != 1 || spring[0].ModuleID != "DBS" {
		t.Errorf("按学期过滤失败: %+v", spring)
	}

	byName, _ := repo.Module.List(ctx, repository.ModuleFilter{Keyword: "daten", IncludeInactive: true})
	if len(byName) != 1 || byName[0].ModuleID != "DBS" {
		t.Errorf("关键字过滤失败: %+v", byName)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Category / Focus
// ═══════════════════════════════════════════════════════════

func TestCategoryRepo_ReplaceForStudienordnung(t *testing.T) {
	cleanup(t)
	defer cleanup(t)

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	err := repo.Category.ReplaceForStudienordnung(ctx, "23",
		[]model.Category{{CategoryID: "Kern", Name: "Kernmodule", RequiredECTS: 60, ModuleIDs: model.StringArray{"AD1"}}},
		[]model.Focus{{FocusID: "SE", Name: "Software Engineering", ModuleIDs: model.StringArray{"SE1", "SE2"}}},
		"test")
	if err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	_ = repo.Category.ReplaceForStudienordnung(ctx, "21",
		[]model.Category{{CategoryID: "Kern", Name: "Kern (alt)", RequiredECTS: 50, ModuleIDs: model.StringArray{}}},
		nil, "test")

	cats, _ := repo.Category.ListCategories(ctx, "23")
	if len(cats) != 1 || cats[0].RequiredECTS != 60 {
		t.Errorf("学习规章 23 的类别不正确: %+v", cats)
	}
	focuses, _ := repo.Category.ListFocuses(ctx, "23")
	if len(focuses) != 1 || len(focuses[0].ModuleIDs) != 2 {
		t.Errorf("学习规章 23 的方向不正确: %+v", focuses)
	}
	old, _ := repo.Category.ListCategories(ctx, "21")
	if len(old) != 1 || old[0].Name != "Kern (alt)" {
		t.Errorf("不同学习规章应互不影响: %+v", old)
	}
}
