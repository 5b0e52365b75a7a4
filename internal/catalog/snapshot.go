package catalog

import (
	"sort"
	"sync/atomic"

	"lost-university/backend/internal/model"
)

// Lookup 模块目录只读查询能力。
// 编解码与校验在一次处理过程中只通过该接口访问目录。
type Lookup interface {
	// FindByID 按模块 ID 查找
	FindByID(id string) (*model.Module, bool)
	// FindByPredecessorID 查找前驱为 id 的模块（一跳后继）
	FindByPredecessorID(id string) (*model.Module, bool)
}

// Catalog 一次完整加载的目录数据
type Catalog struct {
	Modules    []model.Module
	Categories []model.Category
	Focuses    []model.Focus
}

// Snapshot 不可变的内存目录快照，构建后只读。
type Snapshot struct {
	modules       []model.Module
	byID          map[string]int
	byPredecessor map[string]int
}

// NewSnapshot 从模块列表构建快照。
// 多个模块声明同一前驱时取列表中第一个。
func NewSnapshot(modules []model.Module) *Snapshot {
	s := &Snapshot{
		modules:       make([]model.Module, len(modules)),
		byID:          make(map[string]int, len(modules)),
		byPredecessor: make(map[string]int),
	}
	copy(s.modules, modules)

	for i := range s.modules {
		m := &s.modules[i]
		if _, exists := s.byID[m.ModuleID]; !exists {
			s.byID[m.ModuleID] = i
		}
		if p := m.Predecessor(); p != "" {
			if _, exists := s.byPredecessor[p]; !exists {
				s.byPredecessor[p] = i
			}
		}
	}
	return s
}

func (s *Snapshot) FindByID(id string) (*model.Module, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return &s.modules[i], true
}

func (s *Snapshot) FindByPredecessorID(id string) (*model.Module, bool) {
	i, ok := s.byPredecessor[id]
	if !ok {
		return nil, false
	}
	return &s.modules[i], true
}

// Len 模块数量
func (s *Snapshot) Len() int { return len(s.modules) }

// Modules 按 ID 排序的模块副本
func (s *Snapshot) Modules() []model.Module {
	out := make([]model.Module, len(s.modules))
	copy(out, s.modules)
	sort.Slice(out, func(i, j int) bool { return out[i].ModuleID < out[j].ModuleID })
	return out
}

// ── Store ──

// Store 持有当前快照。刷新只替换指针，进行中的处理继续使用旧快照。
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore 创建 Store，初始为空快照
func NewStore() *Store {
	st := &Store{}
	st.current.Store(NewSnapshot(nil))
	return st
}

// Snapshot 返回当前快照（从不为 nil）
func (st *Store) Snapshot() *Snapshot {
	return st.current.Load()
}

// Replace 替换当前快照
func (st *Store) Replace(s *Snapshot) {
	if s == nil {
		s = NewSnapshot(nil)
	}
	st.current.Store(s)
}
