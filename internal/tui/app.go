package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/jask/gemq/internal/config"
	"github.com/jask/gemq/internal/gemini"
	"github.com/jask/gemq/internal/history"
	"github.com/jask/gemq/internal/procrun"
	"github.com/jask/gemq/internal/secrets"
	"github.com/jask/gemq/internal/session"
)

// ---------------------------------------------------------------------------
// Messages
// ---------------------------------------------------------------------------

type spinnerTickMsg struct{ gen int }

type requestDoneMsg struct {
	gen     int
	outcome procrun.Outcome
}

type historyLoadedMsg struct {
	entries []history.Entry
	err     error
}

type recordDoneMsg struct{ err error }

// exportedView is a persistent pager the user can tab to after exporting a
// result; it outlives the transient overlay.
type exportedView struct {
	title string
	lines []string
	kind  string
	vp    viewport.Model
}

// App is the top-level program model. It implements session.Workspace so the
// controller can open surfaces, views and warnings on it; the pointer model
// keeps that identity stable across Update calls.
type App struct {
	ctx   context.Context
	cfg   config.Config
	store *history.Store // nil when the history db is unavailable
	ctrl  *session.Controller
	keys  keyMap

	editor         textarea.Model
	promptInFlight string

	entries   []history.Entry
	filtered  []history.Entry
	cursor    int
	searching bool
	query     string

	views      []exportedView
	activeView int // -1 = prompt editor

	overlay *overlaySurface
	focus   string // scopeEditor or scopeHistory

	gen        int
	status     string
	statusWarn bool
	width      int
	height     int
}

// New builds the app. seed pre-fills the prompt editor (from a file argument
// or piped stdin); store may be nil.
func New(ctx context.Context, cfg config.Config, store *history.Store, keys secrets.KeySource, seed string) *App {
	ta := textarea.New()
	ta.Placeholder = "Type a prompt, then ctrl+s to send..."
	ta.CharLimit = 0
	ta.SetValue(seed)
	ta.Focus()

	a := &App{
		ctx:        ctx,
		cfg:        cfg,
		store:      store,
		keys:       newKeyMap(),
		editor:     ta,
		activeView: -1,
		focus:      scopeEditor,
		status:     "ready",
	}
	a.ctrl = session.NewController(cfg, a, keys)
	return a
}

// ---------------------------------------------------------------------------
// session.Workspace
// ---------------------------------------------------------------------------

func (a *App) NewSurface(g session.Geometry) session.Surface {
	s := &overlaySurface{geo: g}
	a.overlay = s
	return s
}

func (a *App) OpenView(lines []string, kind string) {
	vp := viewport.New(a.mainWidth(), a.mainHeight())
	vp.SetContent(strings.Join(lines, "\n"))
	a.views = append(a.views, exportedView{
		title: fmt.Sprintf("Export %d", len(a.views)+1),
		lines: lines,
		kind:  kind,
		vp:    vp,
	})
	a.activeView = len(a.views) - 1
	a.focus = scopeEditor
}

func (a *App) Warn(msg string) {
	a.status = msg
	a.statusWarn = true
	log.Warn().Msg(msg)
}

// ---------------------------------------------------------------------------
// Program plumbing
// ---------------------------------------------------------------------------

func (a *App) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, a.loadHistoryCmd())
}

func (a *App) loadHistoryCmd() tea.Cmd {
	if a.store == nil {
		return nil
	}
	return func() tea.Msg {
		entries, err := a.store.Recent(a.ctx, 100)
		return historyLoadedMsg{entries: entries, err: err}
	}
}

func (a *App) tickCmd(gen int) tea.Cmd {
	return tea.Tick(session.SpinnerInterval(a.cfg.UI.SpinnerIntervalMS), func(time.Time) tea.Msg {
		return spinnerTickMsg{gen: gen}
	})
}

func (a *App) runCmd(gen int, spec procrun.Spec) tea.Cmd {
	return func() tea.Msg {
		out := <-procrun.Start(a.ctx, spec)
		return requestDoneMsg{gen: gen, outcome: out}
	}
}

func (a *App) recordCmd(prompt string, res gemini.Result) tea.Cmd {
	if a.store == nil {
		return nil
	}
	return func() tea.Msg {
		_, err := a.store.Record(a.ctx, history.Entry{
			Prompt:   prompt,
			Response: res.Text,
			Meta:     res.Meta,
			Model:    a.cfg.API.Model,
			Decoded:  res.OK,
		})
		return recordDoneMsg{err: err}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case spinnerTickMsg:
		if msg.gen != a.gen || a.ctrl.Phase() != session.PhaseLoading {
			return a, nil
		}
		a.ctrl.Tick()
		return a, a.tickCmd(msg.gen)

	case requestDoneMsg:
		if msg.gen != a.gen {
			return a, nil // superseded request; its completion is a no-op
		}
		res, delivered := a.ctrl.Complete(msg.outcome)
		if !delivered {
			a.setStatus("request finished after the surface was closed")
			return a, nil
		}
		if res.OK {
			a.setStatus("response ready")
		} else {
			a.Warn("response could not be decoded, raw payload shown")
		}
		return a, a.recordCmd(a.promptInFlight, res)

	case historyLoadedMsg:
		if msg.err != nil {
			a.Warn(fmt.Sprintf("history: %v", msg.err))
			return a, nil
		}
		a.entries = msg.entries
		a.refilter()
		return a, nil

	case recordDoneMsg:
		if msg.err != nil {
			a.Warn(fmt.Sprintf("history: %v", msg.err))
			return a, nil
		}
		return a, a.loadHistoryCmd()

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

// ---------------------------------------------------------------------------
// Key handling
// ---------------------------------------------------------------------------

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Quit) {
		return a, tea.Quit
	}

	if a.overlayActive() {
		return a.handleOverlayKey(msg)
	}
	if a.searching {
		return a.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Cycle):
		a.cycleFocus()
		return a, nil
	case key.Matches(msg, a.keys.Refresh):
		return a, a.loadHistoryCmd()
	}

	if a.focus == scopeHistory {
		return a.handleHistoryKey(msg)
	}
	if a.activeView >= 0 {
		return a.handleViewKey(msg)
	}
	return a.handleEditorKey(msg)
}

func (a *App) handleOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Close):
		a.ctrl.Close()
		a.clearOverlay()
	case key.Matches(msg, a.keys.Export):
		if a.ctrl.Phase() == session.PhaseDisplaying {
			a.ctrl.Export()
			a.clearOverlay()
			a.setStatus("exported to a new view")
		}
	case key.Matches(msg, a.keys.Meta):
		a.ctrl.ShowMeta()
	}
	return a, nil
}

func (a *App) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Send) {
		return a, a.send()
	}
	var cmd tea.Cmd
	a.editor, cmd = a.editor.Update(msg)
	return a, cmd
}

func (a *App) handleViewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		a.activeView = -1
		return a, nil
	}
	var cmd tea.Cmd
	view := &a.views[a.activeView]
	view.vp, cmd = view.vp.Update(msg)
	return a, cmd
}

func (a *App) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Search):
		a.searching = true
		a.query = ""
		a.refilter()
	case key.Matches(msg, a.keys.Open):
		if a.cursor < len(a.filtered) {
			e := a.filtered[a.cursor]
			a.ctrl.Redisplay(e.Response, e.Meta)
		}
	case msg.String() == "esc":
		if a.query != "" {
			a.query = ""
			a.refilter()
		} else {
			a.focus = scopeEditor
		}
	case msg.String() == "up" || msg.String() == "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case msg.String() == "down" || msg.String() == "j":
		if a.cursor < len(a.filtered)-1 {
			a.cursor++
		}
	}
	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.searching = false
		a.query = ""
		a.refilter()
	case "enter":
		a.searching = false
	case "backspace":
		if a.query != "" {
			a.query = a.query[:len(a.query)-1]
			a.refilter()
		}
	default:
		if msg.Type == tea.KeyRunes {
			a.query += string(msg.Runes)
			a.refilter()
		}
	}
	return a, nil
}

// ---------------------------------------------------------------------------
// Actions
// ---------------------------------------------------------------------------

// send reads the whole editor buffer and starts the request pipeline.
// Control returns immediately; completion arrives as a requestDoneMsg.
func (a *App) send() tea.Cmd {
	prompt := a.editor.Value()
	if strings.TrimSpace(prompt) == "" {
		a.Warn("nothing to send")
		return nil
	}
	spec, err := a.ctrl.Begin(prompt)
	if err != nil {
		return nil // warning already surfaced by the controller
	}
	a.promptInFlight = prompt
	a.gen++
	a.setStatus("request sent")
	return tea.Batch(a.tickCmd(a.gen), a.runCmd(a.gen, spec))
}

func (a *App) cycleFocus() {
	// editor, then exported views, then history, then back
	if a.focus == scopeHistory {
		a.focus = scopeEditor
		a.activeView = -1
		return
	}
	if a.activeView < len(a.views)-1 {
		a.activeView++
		return
	}
	a.focus = scopeHistory
	if a.cursor >= len(a.filtered) {
		a.cursor = 0
	}
}

func (a *App) overlayActive() bool {
	return a.overlay != nil && a.overlay.Alive()
}

func (a *App) clearOverlay() {
	a.overlay = nil
}

func (a *App) refilter() {
	a.filtered = history.Filter(a.entries, a.query)
	if a.cursor >= len(a.filtered) {
		a.cursor = 0
	}
}

func (a *App) setStatus(msg string) {
	a.status = msg
	a.statusWarn = false
}

// ---------------------------------------------------------------------------
// Layout
// ---------------------------------------------------------------------------

func (a *App) histWidth() int {
	if a.width == 0 {
		return 36
	}
	w := a.width / 3
	if w > 44 {
		w = 44
	}
	if w < 24 {
		w = 24
	}
	return w
}

func (a *App) mainWidth() int {
	if a.width == 0 {
		return 80
	}
	w := a.width - a.histWidth() - paneStyle.GetHorizontalFrameSize()*2
	if w < 20 {
		w = 20
	}
	return w
}

func (a *App) mainHeight() int {
	if a.height == 0 {
		return 20
	}
	// title + status + footer rows, plus the pane frame
	h := a.height - 3 - paneStyle.GetVerticalFrameSize()
	if h < 5 {
		h = 5
	}
	return h
}

func (a *App) resize() {
	a.editor.SetWidth(a.mainWidth() - paneStyle.GetHorizontalFrameSize())
	a.editor.SetHeight(a.mainHeight() - 1)
	for i := range a.views {
		a.views[i].vp.Width = a.mainWidth() - paneStyle.GetHorizontalFrameSize()
		a.views[i].vp.Height = a.mainHeight() - 1
	}
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (a *App) View() string {
	if a.width == 0 {
		return "starting..."
	}

	main := a.renderMainPane()
	hist := a.renderHistoryPane()
	body := lipgloss.JoinHorizontal(lipgloss.Top, main, hist)

	title := titleStyle.Render(" gemq ") + dimStyle.Render(" "+a.cfg.API.Model)
	statusLine := a.renderStatus()
	footer := a.renderFooter()

	base := title + "\n" + body + "\n" + statusLine + "\n" + footer
	base = padLinesTo(base, a.height)

	if a.overlayActive() {
		return composite(base, a.renderOverlayBox(), a.width, a.height)
	}
	return base
}

func (a *App) renderMainPane() string {
	style := paneStyle
	if a.focus == scopeEditor && !a.overlayActive() {
		style = paneFocusStyle
	}
	var header, content string
	if a.activeView >= 0 && a.activeView < len(a.views) {
		view := a.views[a.activeView]
		header = titleStyle.Render(view.title) + dimStyle.Render(" ("+view.kind+")")
		content = view.vp.View()
	} else {
		header = titleStyle.Render("Prompt")
		content = a.editor.View()
	}
	inner := header + "\n" + content
	return style.Width(a.mainWidth()).Height(a.mainHeight()).Render(inner)
}

func (a *App) renderHistoryPane() string {
	style := paneStyle
	if a.focus == scopeHistory {
		style = paneFocusStyle
	}
	width := a.histWidth() - paneStyle.GetHorizontalFrameSize()

	lines := []string{titleStyle.Render("History")}
	if a.searching || a.query != "" {
		lines = append(lines, metaStyle.Render("/"+a.query))
	}
	if len(a.filtered) == 0 {
		lines = append(lines, dimStyle.Render("no exchanges yet"))
	}
	visible := a.mainHeight() - 2
	for i, e := range a.filtered {
		if i >= visible {
			lines = append(lines, dimStyle.Render(fmt.Sprintf("+%d more", len(a.filtered)-i)))
			break
		}
		prefix := "  "
		if a.focus == scopeHistory && i == a.cursor {
			prefix = "> "
		}
		marker := " "
		if !e.Decoded {
			marker = failStyle.Render("!")
		}
		stamp := dimStyle.Render(e.CreatedAt.Local().Format("02/01 15:04"))
		prompt := truncate(strings.ReplaceAll(e.Prompt, "\n", " "), width-16)
		lines = append(lines, prefix+marker+stamp+" "+prompt)
	}
	return style.Width(a.histWidth()).Height(a.mainHeight()).Render(strings.Join(lines, "\n"))
}

func (a *App) renderStatus() string {
	style := statusBarStyle
	if a.statusWarn {
		style = warnStyle
	}
	flat := strings.ReplaceAll(a.status, "\n", " ")
	return style.Render(padRight(flat, a.width-style.GetHorizontalFrameSize()))
}

func (a *App) renderFooter() string {
	scope := scopeEditor
	switch {
	case a.overlayActive() && a.ctrl.Phase() == session.PhaseLoading:
		scope = scopeLoading
	case a.overlayActive():
		scope = scopeOverlay
	case a.focus == scopeHistory:
		scope = scopeHistory
	}
	text := strings.ReplaceAll(a.keys.helpFor(scope), "\n", " ")
	return footerStyle.Render(padRight(text, a.width-footerStyle.GetHorizontalFrameSize()))
}

// renderOverlayBox renders the floating surface at its current geometry.
func (a *App) renderOverlayBox() string {
	geo := a.overlay.geo
	innerWidth := a.width * geo.WidthPct / 100
	if innerWidth < 20 {
		innerWidth = 20
	}
	innerHeight := geo.Lines
	if innerHeight <= 0 {
		innerHeight = a.height * geo.HeightPct / 100
		if innerHeight < 3 {
			innerHeight = 3
		}
	}

	lines := a.overlay.lines
	clipped := make([]string, 0, innerHeight)
	for i, line := range lines {
		if i >= innerHeight {
			clipped = append(clipped, dimStyle.Render(fmt.Sprintf("+%d more lines (e to export)", len(lines)-i)))
			break
		}
		clipped = append(clipped, truncate(line, innerWidth))
	}
	content := strings.Join(clipped, "\n")
	return modalStyle.Render(lipgloss.NewStyle().Width(innerWidth).Render(content))
}

// padLinesTo pads s with blank lines so the overlay has rows to composite
// onto even when the body is short.
func padLinesTo(s string, height int) string {
	n := strings.Count(s, "\n") + 1
	if n >= height {
		return s
	}
	return s + strings.Repeat("\n", height-n)
}
