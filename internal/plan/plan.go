package plan

import (
	"errors"

	"lost-university/backend/pkg/semester"
)

// ── 学习计划业务错误 ──

var (
	ErrSemesterNotFound    = errors.New("学期不存在")
	ErrModuleNotInSemester = errors.New("模块不在该学期中")
	ErrEmptyModuleID       = errors.New("模块ID不能为空")
)

// Semester 计划中的一个学期。
// Number 从 1 开始且连续；Name 由入学学期推导，未设置入学学期时为空。
type Semester struct {
	Number    int      `json:"number"`
	Name      string   `json:"name,omitempty"`
	ModuleIDs []string `json:"module_ids"`
}

// Plan 学习计划。
// 同一模块出现在多个学期是合法数据，由校验标记而不是在结构上阻止。
type Plan struct {
	Semesters         []Semester     `json:"semesters"`
	StartSemester     *semester.Info `json:"start_semester,omitempty"`
	ValidationEnabled bool           `json:"validation_enabled"`
}

// New 创建空计划（默认启用校验）
func New() *Plan {
	return &Plan{Semesters: []Semester{}, ValidationEnabled: true}
}

// SemesterInfo 返回第 number 学期对应的日历学期：start + (number − 1)。
// 未设置入学学期时 ok=false。
func (p *Plan) SemesterInfo(number int) (semester.Info, bool) {
	if p.StartSemester == nil || number < 1 {
		return semester.Info{}, false
	}
	return p.StartSemester.Plus(number - 1), true
}

// SetStartSemester 设置入学学期并重新推导所有学期名称
func (p *Plan) SetStartSemester(start *semester.Info) {
	if start != nil {
		s := *start
		p.StartSemester = &s
	} else {
		p.StartSemester = nil
	}
	p.renumber()
}

// AddSemester 在末尾追加一个空学期
func (p *Plan) AddSemester() *Semester {
	p.Semesters = append(p.Semesters, Semester{ModuleIDs: []string{}})
	p.renumber()
	return &p.Semesters[len(p.Semesters)-1]
}

// RemoveSemester 删除学期，其后的学期依次前移以保持编号连续
func (p *Plan) RemoveSemester(number int) error {
	idx, err := p.index(number)
	if err != nil {
		return err
	}
	p.Semesters = append(p.Semesters[:idx], p.Semesters[idx+1:]...)
	p.renumber()
	return nil
}

// AddModule 将模块追加到指定学期末尾
func (p *Plan) AddModule(number int, moduleID string) error {
	if moduleID == "" {
		return ErrEmptyModuleID
	}
	idx, err := p.index(number)
	if err != nil {
		return err
	}
	p.Semesters[idx].ModuleIDs = append(p.Semesters[idx].ModuleIDs, moduleID)
	return nil
}

// RemoveModule 从指定学期删除模块的第一次出现
func (p *Plan) RemoveModule(number int, moduleID string) error {
	idx, err := p.index(number)
	if err != nil {
		return err
	}
	ids := p.Semesters[idx].ModuleIDs
	for i, id := range ids {
		if id == moduleID {
			p.Semesters[idx].ModuleIDs = append(ids[:i:i], ids[i+1:]...)
			return nil
		}
	}
	return ErrModuleNotInSemester
}

// MoveModule 将模块从一个学期移到另一个学期末尾
func (p *Plan) MoveModule(from, to int, moduleID string) error {
	if _, err := p.index(to); err != nil {
		return err
	}
	if err := p.RemoveModule(from, moduleID); err != nil {
		return err
	}
	return p.AddModule(to, moduleID)
}

// ModuleIDs 计划中出现的全部模块 ID（去重，保持首次出现顺序）
func (p *Plan) ModuleIDs() []string {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, s := range p.Semesters {
		for _, id := range s.ModuleIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// Clone 深拷贝
func (p *Plan) Clone() *Plan {
	out := &Plan{
		Semesters:         make([]Semester, len(p.Semesters)),
		ValidationEnabled: p.ValidationEnabled,
	}
	if p.StartSemester != nil {
		s := *p.StartSemester
		out.StartSemester = &s
	}
	for i, s := range p.Semesters {
		out.Semesters[i] = Semester{
			Number:    s.Number,
			Name:      s.Name,
			ModuleIDs: append([]string{}, s.ModuleIDs...),
		}
	}
	return out
}

// Normalize 按位置重新编号并推导名称，用于外部构造的计划
func (p *Plan) Normalize() {
	for i := range p.Semesters {
		if p.Semesters[i].ModuleIDs == nil {
			p.Semesters[i].ModuleIDs = []string{}
		}
	}
	p.renumber()
}

func (p *Plan) index(number int) (int, error) {
	if number < 1 || number > len(p.Semesters) {
		return 0, ErrSemesterNotFound
	}
	return number - 1, nil
}

func (p *Plan) renumber() {
	for i := range p.Semesters {
		p.Semesters[i].Number = i + 1
		p.Semesters[i].Name = semesterName(p.StartSemester, i+1)
	}
}

func semesterName(start *semester.Info, number int) string {
	if start == nil {
		return ""
	}
	return start.Plus(number - 1).String()
}
