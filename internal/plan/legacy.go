package plan

import "strings"

// Replacement 旧模块 ID 片段 → 当前片段
type Replacement struct {
	Old string
	New string
}

// LegacyReplacements 历史模块 ID 的替换表，在解析前对整个文本做全局替换，
// 使旧的分享链接长期可用。条目只能追加；Old 不得包含分隔符，New 不得包含任何 Old。
var LegacyReplacements = []Replacement{
	{Old: "RheKI", New: "RheKoI"},
	{Old: "SEProj", New: "SEP2"},
	{Old: "GDBS", New: "DBS"},
	{Old: "FunProg", New: "FP"},
}

// ReplaceLegacyIDs 应用替换表，返回替换后的文本以及是否发生了替换
func ReplaceLegacyIDs(text string) (string, bool) {
	replaced := false
	for _, r := range LegacyReplacements {
		if strings.Contains(text, r.Old) {
			text = strings.ReplaceAll(text, r.Old, r.New)
			replaced = true
		}
	}
	return text, replaced
}
