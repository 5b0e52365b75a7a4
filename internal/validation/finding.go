package validation

import (
	"fmt"
	"strings"

	"lost-university/backend/pkg/semester"
)

// Severity 校验结果级别
type Severity string

const (
	SeveritySoft Severity = "soft"
	SeverityHard Severity = "hard"
)

// Kind 校验规则类型
type Kind string

const (
	KindDuplicate         Kind = "duplicate"
	KindWrongTerm         Kind = "wrong_term"
	KindInactive          Kind = "inactive"
	KindBeforeRecommended Kind = "before_recommended"
)

// Finding 单个模块的校验结果。
// 只有本包内的四种类型实现该接口。
type Finding interface {
	Kind() Kind
	Severity() Severity
	// Hint 面向学生的提示文本（德语）
	Hint() string
	finding()
}

// Duplicate 模块在计划中出现多次
type Duplicate struct {
	// Affected 除第一次出现外的所有学期编号
	Affected []int `json:"affected"`
}

func (Duplicate) Kind() Kind         { return KindDuplicate }
func (Duplicate) Severity() Severity { return SeverityHard }
func (Duplicate) Hint() string       { return "Modul bereits geplant" }
func (Duplicate) finding()           {}

// WrongTerm 模块所在学期不开课
type WrongTerm struct {
	// Target 建议移入的学期编号
	Target     int           `json:"target"`
	ModuleName string        `json:"module_name"`
	Term       semester.Term `json:"term"`
	Past       bool          `json:"past"`
}

func (WrongTerm) Kind() Kind { return KindWrongTerm }

func (f WrongTerm) Severity() Severity { return pastOrFuture(f.Past) }

func (f WrongTerm) Hint() string {
	return fmt.Sprintf("%s findet nur im %s statt", f.ModuleName, f.Term)
}

func (WrongTerm) finding() {}

// Inactive 模块已停开
type Inactive struct {
	SuccessorModuleID string `json:"successor_module_id,omitempty"`
	ModuleName        string `json:"module_name"`
	Past              bool   `json:"past"`
}

func (Inactive) Kind() Kind { return KindInactive }

func (f Inactive) Severity() Severity { return pastOrFuture(f.Past) }

func (f Inactive) Hint() string {
	if f.SuccessorModuleID != "" {
		return "Modul hat Nachfolger " + f.SuccessorModuleID
	}
	return fmt.Sprintf("Modul %s wird nicht mehr angeboten", f.ModuleName)
}

func (Inactive) finding() {}

// BeforeRecommended 推荐先修模块未计划或排在之后
type BeforeRecommended struct {
	Missing []string `json:"missing"`
	Later   []string `json:"later"`
}

func (BeforeRecommended) Kind() Kind         { return KindBeforeRecommended }
func (BeforeRecommended) Severity() Severity { return SeveritySoft }

func (f BeforeRecommended) Hint() string {
	ids := make([]string, 0, len(f.Missing)+len(f.Later))
	ids = append(ids, f.Missing...)
	ids = append(ids, f.Later...)
	return "Empfohlene Module " + strings.Join(ids, ",")
}

func (BeforeRecommended) finding() {}

// 过去的学期无法再调整，只给出提示
func pastOrFuture(past bool) Severity {
	if past {
		return SeveritySoft
	}
	return SeverityHard
}
