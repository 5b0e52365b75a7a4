package plan

import (
	"net/url"
	"strings"

	"lost-university/backend/internal/catalog"
	"lost-university/backend/pkg/semester"
)

// 计划文本格式：
//
//	#/plan/<模块>_<模块>-<模块>-...?startSemester=HS23&validation=false
//
// 学期之间用 "-" 分隔（空学期保留为空段），同一学期内模块用 "_" 分隔。
// 查询参数只写非默认值，因此同一个计划只有一种规范文本。
const (
	Indicator          = "#/plan/"
	SemesterSeparator  = "-"
	ModuleSeparator    = "_"
	ParamStartSemester = "startSemester"
	ParamValidation    = "validation"
)

// UnknownModule 解码时既找不到本身也找不到后继的模块 ID
type UnknownModule struct {
	SemesterNumber int    `json:"semester_number"`
	ModuleID       string `json:"module_id"`
}

// DecodeResult 解码结果
type DecodeResult struct {
	Plan *Plan
	// Text 解码后计划的规范文本
	Text string
	// Rewritten 为 true 时调用方应将持久化/分享的引用更新为 Text
	Rewritten bool
	// LegacyReplaced 是否触发了旧模块 ID 替换
	LegacyReplaced bool
	UnknownModules []UnknownModule
}

// Codec 计划文本编解码器。
// 只在解码时通过 Lookup 查询目录，本身不持有状态。
type Codec struct {
	lookup catalog.Lookup
}

// NewCodec 创建编解码器
func NewCodec(lookup catalog.Lookup) *Codec {
	return &Codec{lookup: lookup}
}

// Encode 生成计划的规范文本
func (c *Codec) Encode(p *Plan) string {
	return Encode(p)
}

// Encode 生成计划的规范文本
func Encode(p *Plan) string {
	segments := make([]string, len(p.Semesters))
	for i, s := range p.Semesters {
		segments[i] = strings.Join(s.ModuleIDs, ModuleSeparator)
	}

	var b strings.Builder
	b.WriteString(Indicator)
	b.WriteString(strings.Join(segments, SemesterSeparator))

	query := make([]string, 0, 2)
	if p.StartSemester != nil {
		query = append(query, ParamStartSemester+"="+p.StartSemester.String())
	}
	if !p.ValidationEnabled {
		query = append(query, ParamValidation+"=false")
	}
	if len(query) > 0 {
		b.WriteString("?")
		b.WriteString(strings.Join(query, "&"))
	}
	return b.String()
}

// Decode 解析计划文本。
// 不以计划前缀开头时返回 ok=false（“没有计划”）；其余任何格式问题都降级为默认值，不返回错误。
func (c *Codec) Decode(text string) (*DecodeResult, bool) {
	if !strings.HasPrefix(text, Indicator) {
		return nil, false
	}

	normalized, replaced := ReplaceLegacyIDs(text)
	if !strings.HasPrefix(normalized, Indicator) {
		return nil, false
	}

	path, rawQuery, _ := strings.Cut(strings.TrimPrefix(normalized, Indicator), "?")

	p := New()
	if rawQuery != "" {
		// 部分参数格式错误时 ParseQuery 仍返回已解析的部分
		values, _ := url.ParseQuery(rawQuery)
		if start, ok := semester.Parse(values.Get(ParamStartSemester)); ok {
			p.StartSemester = &start
		}
		p.ValidationEnabled = values.Get(ParamValidation) != "false"
	}

	// 空路径也是一个空学期段
	var unknown []UnknownModule
	for i, segment := range strings.Split(path, SemesterSeparator) {
		number := i + 1
		ids, missing := c.resolveSegment(number, segment)
		unknown = append(unknown, missing...)
		p.Semesters = append(p.Semesters, Semester{ModuleIDs: ids})
	}
	p.renumber()

	canonical := Encode(p)
	return &DecodeResult{
		Plan:           p,
		Text:           canonical,
		Rewritten:      replaced || canonical != normalized,
		LegacyReplaced: replaced,
		UnknownModules: unknown,
	}, true
}

// resolveSegment 解析单个学期段：
// 已知 ID 原样保留；未知 ID 尝试一跳后继替换；仍无法解析的丢弃并上报。
func (c *Codec) resolveSegment(number int, segment string) ([]string, []UnknownModule) {
	ids := make([]string, 0)
	var unknown []UnknownModule

	for _, token := range strings.Split(segment, ModuleSeparator) {
		if strings.TrimSpace(token) == "" {
			continue
		}
		if _, ok := c.lookup.FindByID(token); ok {
			ids = append(ids, token)
			continue
		}
		if successor, ok := c.lookup.FindByPredecessorID(token); ok {
			ids = append(ids, successor.ModuleID)
			continue
		}
		unknown = append(unknown, UnknownModule{SemesterNumber: number, ModuleID: token})
	}
	return ids, unknown
}
