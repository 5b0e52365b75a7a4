package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"lost-university/backend/internal/dto"
	"lost-university/backend/internal/validation"
)

// styles 终端输出样式
type styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Hard    lipgloss.Style
	Soft    lipgloss.Style
	Success lipgloss.Style
}

func newStyles() styles {
	return styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Label:   lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Hard:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Soft:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
}

// renderPlan 按学期列出模块与学分
func (s styles) renderPlan(w io.Writer, resp *dto.PlanResponse) {
	fmt.Fprintln(w, s.Title.Render(resp.Text))
	if resp.Rewritten {
		fmt.Fprintln(w, s.Soft.Render("! 文本已规范化，请更新分享链接"))
	}
	if resp.StartSemester != "" {
		fmt.Fprintf(w, "%s %s  %s %s\n",
			s.Label.Render("入学学期:"), resp.StartSemester,
			s.Label.Render("学习规章:"), resp.Studienordnung)
	}

	for _, sem := range resp.Semesters {
		header := fmt.Sprintf("%d. Semester", sem.Number)
		if sem.Name != "" {
			header += " (" + sem.Name + ")"
		}
		modules := s.Muted.Render("(leer)")
		if len(sem.ModuleIDs) > 0 {
			modules = strings.Join(sem.ModuleIDs, " ")
		}
		fmt.Fprintf(w, "%s  %s  %s\n", s.Label.Render(header), modules, s.Muted.Render(fmt.Sprintf("[%g ECTS]", sem.ECTS)))
	}

	for _, u := range resp.UnknownModules {
		fmt.Fprintln(w, s.Soft.Render(fmt.Sprintf("! 未知模块 %s（第 %d 学期）已移除", u.ModuleID, u.SemesterNumber)))
	}
}

// renderFindings 严重问题标红，提示标黄
func (s styles) renderFindings(w io.Writer, findings []dto.FindingResponse) {
	if len(findings) == 0 {
		fmt.Fprintln(w, s.Success.Render("✓ 没有发现问题"))
		return
	}
	for _, f := range findings {
		icon, style := "!", s.Soft
		if f.Severity == string(validation.SeverityHard) {
			icon, style = "✗", s.Hard
		}
		fmt.Fprintf(w, "%s %s %s  %s\n",
			style.Render(icon),
			s.Label.Render(f.ModuleID),
			s.Muted.Render(fmt.Sprintf("(%d. Semester, %s)", f.SemesterNumber, f.Kind)),
			f.Hint)
	}
}
