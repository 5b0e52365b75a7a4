package semester

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Info 学期值对象：年份 + 春/秋季标识。
// 同一年内春季学期（FS）排在秋季学期（HS）之前。
type Info struct {
	Year         int
	IsSpringTerm bool
}

const (
	springPrefix = "FS"
	fallPrefix   = "HS"

	// 规范文本只携带两位年份，合法年份区间为 2000–2099
	minYear = 2000
	maxYear = 2099
)

var canonicalPattern = regexp.MustCompile(`^(FS|HS)(\d{2})$`)

// Parse 解析规范文本（如 "FS24"、"HS23"）。
// 格式不合法时返回 ok=false，调用方将其视为“无约束”，而不是错误。
func Parse(text string) (Info, bool) {
	m := canonicalPattern.FindStringSubmatch(text)
	if m == nil {
		return Info{}, false
	}
	yy, err := strconv.Atoi(m[2])
	if err != nil {
		return Info{}, false
	}
	return Info{Year: minYear + yy, IsSpringTerm: m[1] == springPrefix}, true
}

// MustParse 用于常量与测试数据
func MustParse(text string) Info {
	info, ok := Parse(text)
	if !ok {
		panic(fmt.Sprintf("semester: invalid term %q", text))
	}
	return info
}

// Now 根据当前墙钟时间推导所在学期
func Now() Info {
	return At(time.Now())
}

// At 固定切换规则：1–6 月属于春季学期，7–12 月属于秋季学期。
func At(t time.Time) Info {
	return Info{Year: t.Year(), IsSpringTerm: t.Month() <= time.June}
}

// Plus 返回 n 个学期之后的学期（n 可为负）
func (s Info) Plus(n int) Info {
	return fromOrdinal(s.ordinal() + n)
}

// Difference 返回从 other 到 s 的有符号学期数，即 s − other。
// 满足 a.Plus(n).Difference(a) == n 以及 b.Plus(a.Difference(b)) == a。
func (s Info) Difference(other Info) int {
	return s.ordinal() - other.ordinal()
}

// Compare 全序比较，返回 -1 / 0 / 1
func (s Info) Compare(other Info) int {
	d := s.Difference(other)
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	default:
		return 0
	}
}

func (s Info) Before(other Info) bool { return s.Difference(other) < 0 }

func (s Info) After(other Info) bool { return s.Difference(other) > 0 }

// Valid 年份是否可用两位规范文本表示
func (s Info) Valid() bool {
	return s.Year >= minYear && s.Year <= maxYear
}

// String 规范文本形式，Parse(x.String()) == x 对所有合法 x 成立
func (s Info) String() string {
	prefix := fallPrefix
	if s.IsSpringTerm {
		prefix = springPrefix
	}
	return fmt.Sprintf("%s%02d", prefix, s.Year%100)
}

// MarshalText 实现 encoding.TextMarshaler（JSON / YAML 均使用规范文本）
func (s Info) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("semester: year %d out of range", s.Year)
	}
	return []byte(s.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (s *Info) UnmarshalText(text []byte) error {
	info, ok := Parse(string(text))
	if !ok {
		return fmt.Errorf("semester: invalid term %q", string(text))
	}
	*s = info
	return nil
}

// ordinal 春季 = 2*year，秋季 = 2*year+1
func (s Info) ordinal() int {
	if s.IsSpringTerm {
		return s.Year * 2
	}
	return s.Year*2 + 1
}

func fromOrdinal(n int) Info {
	year := n / 2
	rem := n % 2
	if rem < 0 {
		year--
		rem += 2
	}
	return Info{Year: year, IsSpringTerm: rem == 0}
}
