package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/adjudicate/internal/adjudication"
	"github.com/kingrea/adjudicate/internal/labels"
)

var (
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	headingStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	agreeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	disagreeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	tweetStyle    = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#5B8DEF")).
			Padding(0, 1)
)

func (a *App) columnWidths() (int, int) {
	width := a.width
	if width <= 0 {
		width = 100
	}
	rightWidth := max(32, width/3)
	leftWidth := width - rightWidth - 4
	if leftWidth < 40 {
		leftWidth = width - 4
	}
	if leftWidth < 20 {
		leftWidth = width
		rightWidth = 0
	}
	return leftWidth, rightWidth
}

// View renders the current state to a string.
func (a *App) View() string {
	leftWidth, rightWidth := a.columnWidths()
	var content string
	switch a.state {
	case stateLoad:
		content = a.renderLoad()
	case stateReview:
		content = a.renderReview(leftWidth - 4)
	case stateComplete:
		content = a.renderComplete()
	case stateExport:
		content = a.exportMenu.View()
	case stateConfirmReset:
		content = a.renderConfirmReset()
	}
	return a.renderStatusBoard(content, leftWidth, rightWidth)
}

func (a *App) renderLoad() string {
	lines := []string{
		headingStyle.Render("Upload Data"),
		"Choose a JSON file with annotator data.",
		"",
		a.pathInput.View(),
		"",
		mutedStyle.Render("Required columns: " + strings.Join(adjudication.RequiredColumns(), ", ")),
		"",
		mutedStyle.Render("enter load · esc back · ctrl+c quit"),
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderReview(width int) string {
	rec, ok := a.session.Current()
	if !ok {
		return "Please upload a JSON file to begin adjudication."
	}
	title := fmt.Sprintf("Record %d of %d", rec.Index()+1, a.session.Len())
	var badges []string
	if a.session.IsAdjudicated(rec.Index()) {
		badges = append(badges, agreeStyle.Render("✓ adjudicated"))
	}
	if a.session.IsSkipped(rec.Index()) {
		badges = append(badges, mutedStyle.Render("skipped before"))
	}
	if len(badges) > 0 {
		title = fmt.Sprintf("%s  %s", title, strings.Join(badges, " "))
	}
	sections := []string{
		headingStyle.Render(title),
		"",
		tweetStyle.Width(max(20, width-2)).Render(rec.Tweet()),
		"",
		a.renderComparison(rec),
		"",
		mutedStyle.Render("Annotator Reasoning"),
		lipgloss.NewStyle().Width(max(20, width)).Render(rec.Reasoning()),
		"",
		headingStyle.Render("Final Decision"),
		a.form.view(rec, width),
		"",
		mutedStyle.Render(a.reviewHint()),
	}
	return strings.Join(sections, "\n")
}

func (a *App) reviewHint() string {
	if a.form.editing {
		return "typing · esc done · ctrl+s save"
	}
	return "↑/↓ field · ←/→ source · [ ] custom value · enter edit · s save · n/p next/prev · x skip · e export · R reset · o open · q quit"
}

func (a *App) renderComparison(rec adjudication.Record) string {
	header := fmt.Sprintf("%-14s %-18s %-18s", "", "Annotator A", "Annotator B")
	lines := []string{mutedStyle.Render(header)}
	for _, c := range adjudication.Compare(rec) {
		mark := agreeStyle.Render("✓")
		if !c.Agree {
			mark = disagreeStyle.Render("✗")
		}
		lines = append(lines, fmt.Sprintf("%-14s %-18s %-18s %s", c.Dimension.FriendlyName(), c.A, c.B, mark))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderComplete() string {
	sum := a.session.Summary()
	lines := []string{
		agreeStyle.Bold(true).Render("🎉 All records have been processed!"),
		"",
		fmt.Sprintf("%d of %d records adjudicated.", sum.Adjudicated, sum.Total),
	}
	if sum.Skipped > 0 {
		lines = append(lines, fmt.Sprintf("%d record(s) skipped.", sum.Skipped))
	}
	lines = append(lines, "", mutedStyle.Render("e export · p back · R reset · o open another file · q quit"))
	return strings.Join(lines, "\n")
}

func (a *App) renderConfirmReset() string {
	return strings.Join([]string{
		errorStyle.Render("Reset session?"),
		"",
		fmt.Sprintf("%d adjudication(s) will be discarded.", len(a.session.Decisions())),
		"",
		mutedStyle.Render("y confirm · n cancel"),
	}, "\n")
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, total := a.logbook.Tail(8)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := headingStyle.Render(fmt.Sprintf("LOG · %s · %d entries", fileName, total))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) renderStatusBoard(mainContent string, leftWidth, rightWidth int) string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("⚖️ ANNOTATION ADJUDICATION")
	leftBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, leftWidth)).
		Render(lipgloss.NewStyle().Width(max(20, leftWidth-4)).Render(mainContent))
	var body string
	if rightWidth > 0 {
		rightBox := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1).
			Width(max(20, rightWidth)).
			Render(a.renderSidebar(rightWidth - 4))
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	} else {
		body = leftBox
	}
	sections := []string{header, body}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	status := mutedStyle.MarginTop(1).Render(a.statusMsg)
	if a.err != nil {
		status = errorStyle.MarginTop(1).Render("❌ " + a.err.Error())
	}
	sections = append(sections, status)
	return strings.Join(sections, "\n")
}

// renderSidebar shows progress and agreement stats for the loaded file.
func (a *App) renderSidebar(width int) string {
	if !a.session.Loaded() {
		return lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join([]string{
			headingStyle.Render("📊 Session Statistics"),
			"",
			mutedStyle.Render("No file loaded."),
		}, "\n"))
	}
	sum := a.session.Summary()
	a.progress.Width = max(10, width)
	lines := []string{
		headingStyle.Render("📊 Session Statistics"),
		"",
		fmt.Sprintf("File: %s", sum.Source),
		fmt.Sprintf("Total Records: %d", sum.Total),
		fmt.Sprintf("Adjudicated: %d", sum.Adjudicated),
		fmt.Sprintf("Remaining: %d", sum.Remaining),
		fmt.Sprintf("Skipped: %d", sum.Skipped),
		"",
		a.progress.ViewAs(sum.Progress()),
		fmt.Sprintf("Progress: %d/%d", sum.Adjudicated, sum.Total),
		"",
		headingStyle.Render("Annotator Agreement"),
	}
	for _, d := range labels.Dimensions {
		lines = append(lines, fmt.Sprintf("%-13s %5.1f%%", d.FriendlyName(), 100*sum.AgreementRate(d)))
	}
	lines = append(lines,
		fmt.Sprintf("%-13s %d/%d", "All four", sum.FullAgreement, sum.Total),
		"",
		mutedStyle.Render("Session "+shortID(sum.SessionID)),
	)
	return lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
