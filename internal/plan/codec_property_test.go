package plan

import (
	"reflect"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"lost-university/backend/internal/catalog"
	"lost-university/backend/internal/model"
	"lost-university/backend/pkg/semester"
)

func genModuleID() *rapid.Generator[string] {
	return rapid.StringMatching(`[A-Z][A-Za-z]{1,5}[0-9]?`).Filter(func(id string) bool {
		for _, r := range LegacyReplacements {
			if strings.Contains(id, r.Old) {
				return false
			}
		}
		return true
	})
}

// genPlan 生成只含目录内模块、无重复的计划。
// 零学期计划的文本解码为一个空学期，不在生成范围内。
func genPlan(ids []string) *rapid.Generator[*Plan] {
	return rapid.Custom(func(t *rapid.T) *Plan {
		p := New()
		count := rapid.IntRange(1, 8).Draw(t, "semesters")
		pool := rapid.Permutation(ids).Draw(t, "pool")
		for i := 0; i < count; i++ {
			n := rapid.IntRange(0, 4).Draw(t, "modules")
			if n > len(pool) {
				n = len(pool)
			}
			p.Semesters = append(p.Semesters, Semester{ModuleIDs: append([]string{}, pool[:n]...)})
			pool = pool[n:]
		}
		if rapid.Bool().Draw(t, "hasStart") {
			start := semester.Info{
				Year:         rapid.IntRange(2000, 2090).Draw(t, "year"),
				IsSpringTerm: rapid.Bool().Draw(t, "spring"),
			}
			p.StartSemester = &start
		}
		p.ValidationEnabled = rapid.Bool().Draw(t, "validation")
		p.Normalize()
		return p
	})
}

func genCatalogIDs(t *rapid.T) []string {
	return rapid.SliceOfNDistinct(genModuleID(), 1, 30, rapid.ID[string]).Draw(t, "ids")
}

func snapshotOf(ids []string) *catalog.Snapshot {
	modules := make([]model.Module, len(ids))
	for i, id := range ids {
		modules[i] = model.Module{ModuleID: id, Name: id}
	}
	return catalog.NewSnapshot(modules)
}

func TestCodec_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ids := genCatalogIDs(t)
		p := genPlan(ids).Draw(t, "plan")
		c := NewCodec(snapshotOf(ids))

		text := c.Encode(p)
		res, ok := c.Decode(text)
		if !ok {
			t.Fatalf("encoded plan %q was not recognised", text)
		}
		if res.Rewritten {
			t.Fatalf("canonical text %q was rewritten to %q", text, res.Text)
		}
		if len(res.UnknownModules) != 0 {
			t.Fatalf("unexpected unknown modules %v", res.UnknownModules)
		}
		if !reflect.DeepEqual(p, res.Plan) {
			t.Fatalf("round-trip changed plan:\n%+v\n%+v", p, res.Plan)
		}
	})
}

func TestCodec_ReencodeIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ids := genCatalogIDs(t)
		c := NewCodec(snapshotOf(ids))

		// 任意拼接的文本，包含未知 ID、空段与多余参数
		tokens := rapid.SliceOfN(rapid.OneOf(rapid.SampledFrom(ids), genModuleID(), rapid.Just(""), rapid.Just(" ")), 0, 12).Draw(t, "tokens")
		var b strings.Builder
		b.WriteString(Indicator)
		for i, tok := range tokens {
			if i > 0 {
				b.WriteString(rapid.SampledFrom([]string{SemesterSeparator, ModuleSeparator}).Draw(t, "sep"))
			}
			b.WriteString(tok)
		}
		b.WriteString(rapid.SampledFrom([]string{"", "?validation=false", "?startSemester=HS23", "?x=1&startSemester=FS30", "?startSemester=bad"}).Draw(t, "query"))

		first, ok := c.Decode(b.String())
		if !ok {
			t.Fatalf("plan text %q not recognised", b.String())
		}
		second, ok := c.Decode(Encode(first.Plan))
		if !ok {
			t.Fatal("re-encoded plan not recognised")
		}
		if second.Rewritten || second.Text != first.Text {
			t.Fatalf("re-encoding %q produced further rewrite %q", first.Text, second.Text)
		}
	})
}
