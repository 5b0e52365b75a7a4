package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm"

	"lost-university/backend/internal/catalog"
	"lost-university/backend/internal/model"
	"lost-university/backend/internal/repository"
)

// ── Mock ModuleRepository ──

type mockModuleRepo struct {
	mu       sync.Mutex
	modules  map[string]model.Module
	failNext error
}

func newMockModuleRepo(modules ...model.Module) *mockModuleRepo {
	m := &mockModuleRepo{modules: make(map[string]model.Module)}
	for _, mod := range modules {
		m.modules[mod.ModuleID] = mod
	}
	return m
}

func (m *mockModuleRepo) GetByID(_ context.Context, id string) (*model.Module, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mod, ok := m.modules[id]; ok {
		return &mod, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockModuleRepo) List(_ context.Context, filter repository.ModuleFilter) ([]model.Module, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Module
	kw := strings.ToLower(filter.Keyword)
	for _, mod := range m.modules {
		if !filter.IncludeInactive && mod.IsDeactivated {
			continue
		}
		if filter.Term != "" && string(mod.Term) != filter.Term {
			continue
		}
		if kw != "" && !strings.Contains(strings.ToLower(mod.ModuleID), kw) && !strings.Contains(strings.ToLower(mod.Name), kw) {
			continue
		}
		result = append(result, mod)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ModuleID < result[j].ModuleID })
	return result, nil
}

func (m *mockModuleRepo) ListAll(ctx context.Context) ([]model.Module, error) {
	return m.List(ctx, repository.ModuleFilter{IncludeInactive: true})
}

func (m *mockModuleRepo) ReplaceAll(_ context.Context, modules []model.Module, syncedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.modules = make(map[string]model.Module, len(modules))
	for _, mod := range modules {
		mod.SyncedBy = strPtr(syncedBy)
		m.modules[mod.ModuleID] = mod
	}
	return nil
}

// ── Mock CategoryRepository ──

type mockCategoryRepo struct {
	mu         sync.Mutex
	categories map[string][]model.Category
	focuses    map[string][]model.Focus
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{
		categories: make(map[string][]model.Category),
		focuses:    make(map[string][]model.Focus),
	}
}

func (m *mockCategoryRepo) ListCategories(_ context.Context, studienordnung string) ([]model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.categories[studienordnung], nil
}

func (m *mockCategoryRepo) ListFocuses(_ context.Context, studienordnung string) ([]model.Focus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focuses[studienordnung], nil
}

func (m *mockCategoryRepo) ReplaceForStudienordnung(_ context.Context, studienordnung string, categories []model.Category, focuses []model.Focus, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range categories {
		categories[i].Studienordnung = studienordnung
	}
	for i := range focuses {
		focuses[i].Studienordnung = studienordnung
	}
	m.categories[studienordnung] = categories
	m.focuses[studienordnung] = focuses
	return nil
}

// ── Mock CatalogSource ──

type mockSource struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	err     error
	calls   int
	// release 非 nil 时 Fetch 阻塞到其关闭，用于测试并发合并
	release chan struct{}
}

func (s *mockSource) Fetch(ctx context.Context, _ string) (*catalog.Catalog, error) {
	s.mu.Lock()
	s.calls++
	release := s.release
	s.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.catalog, nil
}

func (s *mockSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// ── Mock SessionCache ──

type failingSessionCache struct{}

var errCacheDown = errors.New("cache down")

func (failingSessionCache) Load(context.Context, string) (string, bool, error) {
	return "", false, errCacheDown
}

func (failingSessionCache) Save(context.Context, string, string) error {
	return errCacheDown
}

// ── 测试数据 ──

func strPtr(s string) *string { return &s }

func testModules() []model.Module {
	return []model.Module{
		{ModuleID: "AD1", Name: "Algorithmen und Datenstrukturen 1", ECTS: 4, Term: "HS"},
		{ModuleID: "AD2", Name: "Algorithmen und Datenstrukturen 2", ECTS: 4, Term: "FS", RecommendedModuleIDs: model.StringArray{"AD1"}},
		{ModuleID: "DBS", Name: "Datenbanksysteme", ECTS: 4, Term: "FS/HS"},
		{ModuleID: "SE1", Name: "Software Engineering 1", ECTS: 4, Term: "HS"},
		{ModuleID: "WE1", Name: "Web Engineering 1", ECTS: 4, Term: "FS", IsDeactivated: true, SuccessorModuleID: strPtr("WE2")},
		{ModuleID: "WE2", Name: "Web Engineering 2", ECTS: 4, Term: "FS/HS", PredecessorModuleID: strPtr("WE1")},
		{ModuleID: "BAA", Name: "Bachelorarbeit", ECTS: 12, Term: "FS/HS"},
	}
}

func newTestRepo(modules ...model.Module) (*repository.Repository, *mockModuleRepo, *mockCategoryRepo) {
	modRepo := newMockModuleRepo(modules...)
	catRepo := newMockCategoryRepo()
	return &repository.Repository{Module: modRepo, Category: catRepo}, modRepo, catRepo
}

func newTestStore(modules ...model.Module) *catalog.Store {
	store := catalog.NewStore()
	store.Replace(catalog.NewSnapshot(modules))
	return store
}
