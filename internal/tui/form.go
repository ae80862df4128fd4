package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/adjudicate/internal/adjudication"
	"github.com/kingrea/adjudicate/internal/labels"
)

// formRow is one focusable line of the review form.
type formRow int

const (
	rowEmotion formRow = iota
	rowSentiment
	rowHateSpeech
	rowCyberbully
	rowReasoning
	rowNotes
	rowCount
)

func (r formRow) dimension() (labels.Dimension, bool) {
	switch r {
	case rowEmotion:
		return labels.Emotion, true
	case rowSentiment:
		return labels.Sentiment, true
	case rowHateSpeech:
		return labels.HateSpeech, true
	case rowCyberbully:
		return labels.Cyberbully, true
	default:
		return "", false
	}
}

type sourceOption struct {
	source adjudication.Source
	title  string
}

var labelSources = []sourceOption{
	{adjudication.SourceA, "Annotator A"},
	{adjudication.SourceB, "Annotator B"},
	{adjudication.SourceCustom, "Custom"},
}

var reasoningSources = []sourceOption{
	{adjudication.SourceShared, "Shared"},
	{adjudication.SourceA, "Annotator A"},
	{adjudication.SourceB, "Annotator B"},
	{adjudication.SourceCustom, "Custom"},
}

var (
	formFocusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	formLabelStyle    = lipgloss.NewStyle().Bold(true).Width(13)
	formChosenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#1A1A1A")).Background(lipgloss.Color("#5B8DEF")).Padding(0, 1)
	formOptionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Padding(0, 1)
	formSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
)

// reviewForm holds the operator's in-progress choices for the record on
// screen.
type reviewForm struct {
	options         labels.OptionSets
	focus           formRow
	labelSource     map[labels.Dimension]int
	customIndex     map[labels.Dimension]int
	reasoningSource int
	reasoning       textinput.Model
	notes           textarea.Model
	editing         bool
}

func newReviewForm(options labels.OptionSets) *reviewForm {
	reasoning := textinput.New()
	reasoning.Placeholder = "Provide your own reasoning for the final decision..."
	reasoning.CharLimit = 2000

	notes := textarea.New()
	notes.Placeholder = "Add any additional notes or comments about this adjudication..."
	notes.ShowLineNumbers = false
	notes.SetHeight(3)

	f := &reviewForm{
		options:   options,
		reasoning: reasoning,
		notes:     notes,
	}
	f.reset()
	return f
}

// reset restores the defaults: annotator A for labels, shared reasoning, and
// empty notes.
func (f *reviewForm) reset() {
	f.focus = rowEmotion
	f.labelSource = map[labels.Dimension]int{}
	f.customIndex = map[labels.Dimension]int{}
	f.reasoningSource = 0
	f.reasoning.SetValue("")
	f.notes.Reset()
	f.stopEditing()
}

func (f *reviewForm) setWidth(width int) {
	f.reasoning.Width = max(20, width-18)
	f.notes.SetWidth(max(20, width-4))
}

func (f *reviewForm) moveFocus(delta int) {
	next := (int(f.focus) + delta) % int(rowCount)
	if next < 0 {
		next += int(rowCount)
	}
	f.focus = formRow(next)
}

func (f *reviewForm) cycleSource(delta int) {
	if d, ok := f.focus.dimension(); ok {
		f.labelSource[d] = wrap(f.labelSource[d]+delta, len(labelSources))
		return
	}
	if f.focus == rowReasoning {
		f.reasoningSource = wrap(f.reasoningSource+delta, len(reasoningSources))
	}
}

// cycleCustom steps through the option set of the focused dimension and
// switches that dimension to a custom choice.
func (f *reviewForm) cycleCustom(delta int) {
	d, ok := f.focus.dimension()
	if !ok {
		return
	}
	opts := f.options.Options(d)
	if labelSources[f.labelSource[d]].source != adjudication.SourceCustom {
		f.labelSource[d] = len(labelSources) - 1
		return
	}
	f.customIndex[d] = wrap(f.customIndex[d]+delta, len(opts))
}

func (f *reviewForm) canEdit() bool {
	switch f.focus {
	case rowNotes:
		return true
	case rowReasoning:
		return reasoningSources[f.reasoningSource].source == adjudication.SourceCustom
	default:
		return false
	}
}

func (f *reviewForm) startEditing() tea.Cmd {
	if !f.canEdit() {
		return nil
	}
	f.editing = true
	if f.focus == rowNotes {
		return f.notes.Focus()
	}
	return f.reasoning.Focus()
}

func (f *reviewForm) stopEditing() {
	f.editing = false
	f.notes.Blur()
	f.reasoning.Blur()
}

func (f *reviewForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case f.editing && f.focus == rowNotes:
		f.notes, cmd = f.notes.Update(msg)
	case f.editing && f.focus == rowReasoning:
		f.reasoning, cmd = f.reasoning.Update(msg)
	}
	return cmd
}

func (f *reviewForm) labelChoice(d labels.Dimension) adjudication.Choice {
	switch labelSources[f.labelSource[d]].source {
	case adjudication.SourceB:
		return adjudication.FromB()
	case adjudication.SourceCustom:
		opts := f.options.Options(d)
		return adjudication.Custom(opts[wrap(f.customIndex[d], len(opts))])
	default:
		return adjudication.FromA()
	}
}

func (f *reviewForm) reasoningChoice() adjudication.Choice {
	switch reasoningSources[f.reasoningSource].source {
	case adjudication.SourceA:
		return adjudication.FromA()
	case adjudication.SourceB:
		return adjudication.FromB()
	case adjudication.SourceCustom:
		return adjudication.Custom(strings.TrimSpace(f.reasoning.Value()))
	default:
		return adjudication.Shared()
	}
}

func (f *reviewForm) choices() adjudication.Choices {
	choices := adjudication.Choices{
		Labels:    make(map[labels.Dimension]adjudication.Choice, len(labels.Dimensions)),
		Reasoning: f.reasoningChoice(),
	}
	for _, d := range labels.Dimensions {
		choices.Labels[d] = f.labelChoice(d)
	}
	return choices
}

func (f *reviewForm) notesValue() string {
	return strings.TrimSpace(f.notes.Value())
}

func (f *reviewForm) view(rec adjudication.Record, width int) string {
	var lines []string
	for row := rowEmotion; row <= rowCyberbully; row++ {
		d, _ := row.dimension()
		selected := f.labelSource[d]
		picker := renderPicker(labelSources, selected)
		value := adjudication.ResolveLabel(rec, d, f.labelChoice(d))
		if labelSources[selected].source == adjudication.SourceCustom {
			value = fmt.Sprintf("◂ %s ▸", value)
		}
		lines = append(lines, f.renderRow(row, d.FriendlyName(), picker, value))
	}
	picker := renderPicker(reasoningSources, f.reasoningSource)
	reasoningValue := adjudication.ResolveReasoning(rec, f.reasoningChoice())
	lines = append(lines, f.renderRow(rowReasoning, "Reasoning", picker, truncate(reasoningValue, max(20, width-50))))
	if reasoningSources[f.reasoningSource].source == adjudication.SourceCustom {
		lines = append(lines, "   "+f.reasoning.View())
	}
	notesTitle := "Adjudicator Notes (Optional)"
	if f.focus == rowNotes {
		notesTitle = formFocusStyle.Render("▸ " + notesTitle)
	} else {
		notesTitle = "  " + notesTitle
	}
	lines = append(lines, "", notesTitle, f.notes.View())
	return strings.Join(lines, "\n")
}

func (f *reviewForm) renderRow(row formRow, title, picker, value string) string {
	marker := "  "
	if f.focus == row {
		marker = formFocusStyle.Render("▸ ")
	}
	return fmt.Sprintf("%s%s %s  %s", marker, formLabelStyle.Render(title), picker, formSelectedStyle.Render("→ "+value))
}

func renderPicker(options []sourceOption, selected int) string {
	parts := make([]string, len(options))
	for i, opt := range options {
		if i == selected {
			parts[i] = formChosenStyle.Render(opt.title)
		} else {
			parts[i] = formOptionStyle.Render(opt.title)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func wrap(value, n int) int {
	if n <= 0 {
		return 0
	}
	value %= n
	if value < 0 {
		value += n
	}
	return value
}

func truncate(value string, width int) string {
	value = strings.ReplaceAll(value, "\n", " ")
	runes := []rune(value)
	if width <= 1 || len(runes) <= width {
		return value
	}
	return string(runes[:width-1]) + "…"
}
