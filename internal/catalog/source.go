package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"lost-university/backend/internal/model"
	"lost-university/backend/pkg/semester"
)

// ── 目录数据 JSON 结构（与公开数据仓库一致） ──

type moduleJSON struct {
	ID                   string    `json:"id"                   yaml:"id"`
	Name                 string    `json:"name"                 yaml:"name"`
	URL                  string    `json:"url"                  yaml:"url"`
	ECTS                 flexFloat `json:"ects"                 yaml:"ects"`
	Term                 string    `json:"term"                 yaml:"term"`
	IsDeactivated        bool      `json:"isDeactivated"        yaml:"isDeactivated"`
	SuccessorModuleID    string    `json:"successorModuleId"    yaml:"successorModuleId"`
	PredecessorModuleID  string    `json:"predecessorModuleId"  yaml:"predecessorModuleId"`
	RecommendedModuleIDs []string  `json:"recommendedModuleIds" yaml:"recommendedModuleIds"`
}

type moduleRefJSON struct {
	ID string `json:"id" yaml:"id"`
}

type categoryJSON struct {
	ID           string          `json:"id"            yaml:"id"`
	Name         string          `json:"name"          yaml:"name"`
	RequiredECTS flexFloat       `json:"required_ects" yaml:"required_ects"`
	Modules      []moduleRefJSON `json:"modules"       yaml:"modules"`
}

type focusJSON struct {
	ID      string          `json:"id"      yaml:"id"`
	Name    string          `json:"name"    yaml:"name"`
	Modules []moduleRefJSON `json:"modules" yaml:"modules"`
}

// flexFloat 兼容数字与字符串两种写法（"ects": 4 / "ects": "4"）
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", string(b), err)
	}
	*f = flexFloat(v)
	return nil
}

func (f *flexFloat) UnmarshalYAML(node *yaml.Node) error {
	return f.UnmarshalJSON([]byte(node.Value))
}

func parseTerm(raw string) semester.Term {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "FS":
		return semester.TermSpringOnly
	case "HS":
		return semester.TermFallOnly
	default:
		return semester.TermBoth
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (m moduleJSON) toModel() model.Module {
	return model.Module{
		ModuleID:             strings.TrimSpace(m.ID),
		Name:                 m.Name,
		URL:                  m.URL,
		ECTS:                 float64(m.ECTS),
		Term:                 parseTerm(m.Term),
		IsDeactivated:        m.IsDeactivated,
		SuccessorModuleID:    optional(m.SuccessorModuleID),
		PredecessorModuleID:  optional(m.PredecessorModuleID),
		RecommendedModuleIDs: model.StringArray(m.RecommendedModuleIDs),
	}
}

func refsToIDs(refs []moduleRefJSON) model.StringArray {
	ids := make(model.StringArray, 0, len(refs))
	for _, r := range refs {
		if id := strings.TrimSpace(r.ID); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func (c categoryJSON) toModel(studienordnung string) model.Category {
	return model.Category{
		CategoryID:     c.ID,
		Studienordnung: studienordnung,
		Name:           c.Name,
		RequiredECTS:   float64(c.RequiredECTS),
		ModuleIDs:      refsToIDs(c.Modules),
	}
}

func (f focusJSON) toModel(studienordnung string) model.Focus {
	return model.Focus{
		FocusID:        f.ID,
		Studienordnung: studienordnung,
		Name:           f.Name,
		ModuleIDs:      refsToIDs(f.Modules),
	}
}

func decodeModules(data []byte) ([]model.Module, error) {
	var raw []moduleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("解析模块数据失败: %w", err)
	}
	return modulesFromJSON(raw), nil
}

func modulesFromJSON(raw []moduleJSON) []model.Module {
	modules := make([]model.Module, 0, len(raw))
	for _, m := range raw {
		if strings.TrimSpace(m.ID) == "" {
			continue
		}
		modules = append(modules, m.toModel())
	}
	return modules
}
