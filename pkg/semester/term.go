package semester

// Term 模块开课学期
type Term string

const (
	TermSpringOnly Term = "FS"
	TermFallOnly   Term = "HS"
	TermBoth       Term = "FS/HS"
)

// OfferedIn 模块是否在给定学期开课。
// 未知取值按两季均开课处理（目录数据缺省时不应产生误报）。
func (t Term) OfferedIn(s Info) bool {
	switch t {
	case TermSpringOnly:
		return s.IsSpringTerm
	case TermFallOnly:
		return !s.IsSpringTerm
	default:
		return true
	}
}

// Valid 是否为已知取值
func (t Term) Valid() bool {
	switch t {
	case TermSpringOnly, TermFallOnly, TermBoth:
		return true
	}
	return false
}

// NextPossibleSemesterForModule 返回不早于 start 且开设该模块的最早学期。
// start 为 nil（尚未确定入学学期）时返回 nil。
func NextPossibleSemesterForModule(term Term, start *Info) *Info {
	if start == nil {
		return nil
	}
	next := *start
	if !term.OfferedIn(next) {
		next = next.Plus(1)
	}
	return &next
}

// ── 学习规章（Studienordnung） ──

const (
	Studienordnung21 = "21"
	Studienordnung23 = "23"
)

var studienordnung23Start = Info{Year: 2023, IsSpringTerm: false}

// Studienordnung 根据入学学期选择目录版本：HS23 及以后使用 "23"，之前使用 "21"。
// start 为 nil 时返回 fallback。
func Studienordnung(start *Info, fallback string) string {
	if start == nil {
		return fallback
	}
	if start.Compare(studienordnung23Start) >= 0 {
		return Studienordnung23
	}
	return Studienordnung21
}
