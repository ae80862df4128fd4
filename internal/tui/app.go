// internal/tui/app.go
//
// This is the interactive review screen. It uses bubbletea, which follows The
// Elm Architecture:
//
// 1. Model: the App and the adjudication session it owns
// 2. Update: turns key presses and loader results into session operations
// 3. View: renders the record under the cursor plus the stats sidebar
//
// The session is only ever touched from Update, so it needs no locking.

package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kingrea/adjudicate/internal/adjudication"
	"github.com/kingrea/adjudicate/internal/artifact"
	"github.com/kingrea/adjudicate/internal/config"
	"github.com/kingrea/adjudicate/internal/labels"
	"github.com/kingrea/adjudicate/internal/logbook"
)

// appState represents which "screen" we're on
type appState int

const (
	stateLoad         appState = iota // Path prompt for the upload
	stateReview                       // Record under the cursor with the decision form
	stateComplete                     // Cursor is past the last record
	stateExport                       // Export format picker
	stateConfirmReset                 // Reset confirmation
)

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithSession injects a pre-built session.
func WithSession(s *adjudication.Session) AppOption {
	return func(a *App) {
		if s != nil {
			a.session = s
		}
	}
}

// WithStore overrides the artifact store used for exports.
func WithStore(store *artifact.Store) AppOption {
	return func(a *App) {
		if store != nil {
			a.store = store
		}
	}
}

// WithLogbook overrides the session logbook.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		if lb != nil {
			a.logbook = lb
		}
	}
}

// WithInitialPath loads the given file as soon as the program starts.
func WithInitialPath(path string) AppOption {
	return func(a *App) {
		a.initialPath = strings.TrimSpace(path)
	}
}

type fileLoadedMsg struct {
	name string
	data []byte
	err  error
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state       appState
	returnState appState
	config      *config.Config
	session     *adjudication.Session
	store       *artifact.Store
	logbook     *logbook.Logbook
	options     labels.OptionSets
	initialPath string

	// UI components
	pathInput     textinput.Model
	form          *reviewForm
	exportMenu    list.Model
	exportChoices []exportOption
	progress      progress.Model

	statusMsg  string
	err        error
	lastExport []artifact.Written

	width  int
	height int
}

type exportOption struct {
	id    string
	title string
	desc  string
}

func (o exportOption) Title() string       { return o.title }
func (o exportOption) Description() string { return o.desc }
func (o exportOption) FilterValue() string { return o.id }

func (o exportOption) formats() []adjudication.Format {
	switch o.id {
	case string(adjudication.FormatCSV):
		return []adjudication.Format{adjudication.FormatCSV}
	case string(adjudication.FormatJSON):
		return []adjudication.Format{adjudication.FormatJSON}
	default:
		return adjudication.Formats
	}
}

var exportOptions = []exportOption{
	{id: config.FormatBoth, title: "CSV + JSON", desc: "adjudicated_data_<timestamp>.csv and .json"},
	{id: string(adjudication.FormatCSV), title: "CSV", desc: "adjudicated_data_<timestamp>.csv"},
	{id: string(adjudication.FormatJSON), title: "JSON", desc: "adjudicated_data_<timestamp>.json"},
}

// NewApp creates a new App instance
func NewApp(cfg *config.Config, opts ...AppOption) (*App, error) {
	if cfg == nil {
		return nil, errors.New("tui: config is required")
	}
	options := cfg.LabelOptions()

	pathInput := textinput.New()
	pathInput.Placeholder = "path/to/annotations.json"
	pathInput.Prompt = "File: "
	pathInput.CharLimit = 4096

	items := make([]list.Item, len(exportOptions))
	for i := range exportOptions {
		items[i] = exportOptions[i]
	}
	exportMenu := list.New(items, list.NewDefaultDelegate(), 48, 14)
	exportMenu.Title = "Export Adjudicated Data"
	exportMenu.SetShowStatusBar(false)
	exportMenu.SetFilteringEnabled(false)

	app := &App{
		state:         stateLoad,
		config:        cfg,
		options:       options,
		pathInput:     pathInput,
		form:          newReviewForm(options),
		exportMenu:    exportMenu,
		exportChoices: exportOptions,
		progress:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	if app.session == nil {
		app.session = adjudication.NewSession()
	}
	if app.store == nil {
		app.store = artifact.NewStore(cfg.ExportDir())
	}
	if app.logbook == nil {
		lb, err := logbook.New(cfg.LogPath())
		if err == nil {
			app.logbook = lb
		}
	}
	app.logInfo("Session opened · export dir: %s", cfg.ExportDir())
	app.selectConfiguredExport()
	app.pathInput.SetValue(app.initialPath)
	app.pathInput.Focus()
	if app.session.Loaded() {
		app.state = app.positionState()
	}
	return app, nil
}

// Close releases the logbook.
func (a *App) Close() error {
	return a.logbook.Close()
}

// Session exposes the owned session for callers that run the program.
func (a *App) Session() *adjudication.Session { return a.session }

func (a *App) sessionLog() *logbook.Logbook {
	return a.logbook.With(zap.String("session", a.session.ID()))
}

func (a *App) logInfo(format string, args ...any) {
	a.sessionLog().Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	a.sessionLog().Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	a.sessionLog().Error(format, args...)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	if a.initialPath != "" && !a.session.Loaded() {
		return loadFileCmd(a.initialPath)
	}
	return textinput.Blink
}

func loadFileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		return fileLoadedMsg{name: path, data: data, err: err}
	}
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		left, _ := a.columnWidths()
		a.form.setWidth(left - 4)
		a.pathInput.Width = max(20, left-12)
		a.exportMenu.SetSize(max(0, left-4), max(0, msg.Height-10))
		return a, nil

	case fileLoadedMsg:
		return a.handleFileLoaded(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.state {
		case stateLoad:
			return a.updateLoad(msg)
		case stateReview:
			return a.updateReview(msg)
		case stateComplete:
			return a.updateComplete(msg)
		case stateExport:
			return a.updateExport(msg)
		case stateConfirmReset:
			return a.updateConfirmReset(msg)
		}
	}

	var cmd tea.Cmd
	switch a.state {
	case stateLoad:
		a.pathInput, cmd = a.pathInput.Update(msg)
	case stateReview:
		cmd = a.form.update(msg)
	case stateExport:
		a.exportMenu, cmd = a.exportMenu.Update(msg)
	}
	return a, cmd
}

func (a *App) updateLoad(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		path := strings.TrimSpace(a.pathInput.Value())
		if path == "" {
			a.statusMsg = "Enter the path of a JSON file to load"
			return a, nil
		}
		a.statusMsg = fmt.Sprintf("Loading %s...", filepath.Base(path))
		return a, loadFileCmd(path)
	case "esc":
		if a.session.Loaded() {
			a.state = a.positionState()
			a.pathInput.Blur()
			return a, nil
		}
		return a, tea.Quit
	}
	var cmd tea.Cmd
	a.pathInput, cmd = a.pathInput.Update(msg)
	return a, cmd
}

func (a *App) handleFileLoaded(msg fileLoadedMsg) (tea.Model, tea.Cmd) {
	a.state = stateLoad
	if msg.err != nil {
		a.err = fmt.Errorf("Error reading file: %w", msg.err)
		a.statusMsg = ""
		a.logError("Load %s failed: %v", msg.name, msg.err)
		return a, nil
	}
	n, err := a.session.Load(filepath.Base(msg.name), msg.data)
	if err != nil {
		var validation *adjudication.ValidationError
		var malformed *adjudication.MalformedInputError
		switch {
		case errors.As(err, &validation):
			a.err = fmt.Errorf("Missing required columns: %s", strings.Join(validation.Missing, ", "))
		case errors.As(err, &malformed):
			a.err = fmt.Errorf("Error reading file: %v", malformed.Err)
		default:
			a.err = err
		}
		a.statusMsg = ""
		a.logWarn("Upload %s rejected: %v", msg.name, err)
		if a.session.Loaded() {
			a.state = a.positionState()
		}
		return a, nil
	}
	a.err = nil
	a.statusMsg = fmt.Sprintf("✅ Successfully loaded %d records", n)
	a.logInfo("Loaded %d records from %s", n, msg.name)
	a.form.reset()
	a.pathInput.Blur()
	a.state = a.positionState()
	return a, nil
}

func (a *App) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if a.form.editing {
		switch key {
		case "esc":
			a.form.stopEditing()
			return a, nil
		case "ctrl+s":
			return a.saveAdjudication()
		}
		return a, a.form.update(msg)
	}
	switch key {
	case "up", "k", "shift+tab":
		a.form.moveFocus(-1)
	case "down", "j", "tab":
		a.form.moveFocus(1)
	case "left", "h":
		a.form.cycleSource(-1)
	case "right", "l":
		a.form.cycleSource(1)
	case "[":
		a.form.cycleCustom(-1)
	case "]":
		a.form.cycleCustom(1)
	case "enter":
		return a, a.form.startEditing()
	case "s", "ctrl+s":
		return a.saveAdjudication()
	case "n", "pgdown":
		return a.navigate(adjudication.Forward)
	case "p", "pgup":
		return a.navigate(adjudication.Backward)
	case "x":
		return a.skipRecord()
	case "e":
		return a.openExport()
	case "R":
		return a.confirmReset()
	case "o":
		return a.openLoad()
	case "q":
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) updateComplete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "p", "pgup", "left":
		return a.navigate(adjudication.Backward)
	case "e":
		return a.openExport()
	case "R":
		return a.confirmReset()
	case "o":
		return a.openLoad()
	case "q":
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) updateExport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.state = a.returnState
		return a, nil
	case "enter":
		item, ok := a.exportMenu.SelectedItem().(exportOption)
		if !ok {
			a.statusMsg = "Export selection unavailable"
			return a, nil
		}
		if err := a.config.SetExportFormat(item.id); err != nil {
			a.logWarn("Could not remember export format %s: %v", item.id, err)
		}
		a.runExport(item.formats())
		a.state = a.returnState
		return a, nil
	}
	var cmd tea.Cmd
	a.exportMenu, cmd = a.exportMenu.Update(msg)
	return a, cmd
}

func (a *App) updateConfirmReset(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		return a.resetSession()
	case "n", "N", "esc":
		a.state = a.returnState
		a.statusMsg = "Reset cancelled"
	}
	return a, nil
}

func (a *App) saveAdjudication() (tea.Model, tea.Cmd) {
	rec, ok := a.session.Current()
	if !ok {
		a.statusMsg = "No record to adjudicate"
		return a, nil
	}
	decision := a.session.Adjudicate(rec, a.form.choices(), a.form.notesValue())
	a.err = nil
	a.statusMsg = fmt.Sprintf("✅ Adjudication saved for record %d", rec.Index()+1)
	a.logInfo("Record %d adjudicated · emotion=%s sentiment=%s hate_speech=%s cyberbully=%s",
		rec.Index()+1,
		decision.FinalLabel(labels.Emotion),
		decision.FinalLabel(labels.Sentiment),
		decision.FinalLabel(labels.HateSpeech),
		decision.FinalLabel(labels.Cyberbully),
	)
	a.form.reset()
	a.state = a.positionState()
	return a, nil
}

func (a *App) navigate(dir adjudication.Direction) (tea.Model, tea.Cmd) {
	before := a.session.Cursor()
	after := a.session.Advance(dir)
	if after != before {
		a.form.reset()
		a.statusMsg = ""
	}
	a.state = a.positionState()
	return a, nil
}

func (a *App) skipRecord() (tea.Model, tea.Cmd) {
	before := a.session.Cursor()
	a.session.Skip()
	a.logInfo("Record %d skipped", before+1)
	a.statusMsg = fmt.Sprintf("🚫 Record %d skipped", before+1)
	a.form.reset()
	a.state = a.positionState()
	return a, nil
}

func (a *App) openExport() (tea.Model, tea.Cmd) {
	a.returnState = a.state
	a.form.stopEditing()
	a.selectConfiguredExport()
	a.state = stateExport
	a.statusMsg = "Select a download format"
	return a, nil
}

func (a *App) selectConfiguredExport() {
	for i, opt := range a.exportChoices {
		if opt.id == a.config.Project.Export.Format {
			a.exportMenu.Select(i)
			return
		}
	}
}

func (a *App) runExport(formats []adjudication.Format) {
	count := len(a.session.Decisions())
	if count == 0 {
		a.statusMsg = "⚠️ No adjudicated data to export yet."
		a.logWarn("Export skipped: no decisions")
		return
	}
	written, err := a.store.Export(a.session, artifact.ExportRequest{
		Formats:     formats,
		Adjudicator: a.config.Adjudicator(),
		Summary:     a.config.WriteSummary(),
	})
	a.lastExport = written
	if err != nil {
		a.err = fmt.Errorf("Export failed: %w", err)
		a.logError("Export failed: %v", err)
		return
	}
	names := make([]string, len(written))
	for i, w := range written {
		names[i] = filepath.Base(w.Path)
	}
	a.err = nil
	a.statusMsg = fmt.Sprintf("📥 %d records exported: %s", count, strings.Join(names, ", "))
	a.logInfo("Exported %d decisions to %s (%s)", count, a.store.Dir(), strings.Join(names, ", "))
}

func (a *App) confirmReset() (tea.Model, tea.Cmd) {
	a.returnState = a.state
	a.form.stopEditing()
	a.state = stateConfirmReset
	return a, nil
}

func (a *App) resetSession() (tea.Model, tea.Cmd) {
	discarded := len(a.session.Decisions())
	a.logWarn("Session reset · %d decisions discarded", discarded)
	a.session.Reset()
	a.form.reset()
	a.lastExport = nil
	a.err = nil
	a.statusMsg = "🔄 Session reset"
	return a.openLoad()
}

func (a *App) openLoad() (tea.Model, tea.Cmd) {
	a.form.stopEditing()
	a.state = stateLoad
	return a, a.pathInput.Focus()
}

// positionState maps the cursor onto the review or completion screen.
func (a *App) positionState() appState {
	if a.session.Done() {
		return stateComplete
	}
	return stateReview
}
