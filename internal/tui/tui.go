// Package tui is the interactive terminal front-end. It drives a
// session.Machine exactly like the web front-end does: a path submitted in
// Idle starts an analysis, the outcome is rendered until reset.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/logger"
	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/model"
	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/photo"
	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/session"
)

// headerLines and footerLines frame the result viewport.
const (
	headerLines = 3
	footerLines = 2
)

// messages
type analysisDoneMsg struct {
	state session.State
}

// TUI runs the interactive photo critique.
type TUI struct {
	Analyzer session.Analyzer
	Machine  *session.Machine
	// MaxBytes limits the size of a loaded photo. Zero means unlimited.
	MaxBytes int64
	// Theme is "dark" (default) or "light".
	Theme string
	// Backend is shown in the header, e.g. "gemini/gemini-2.5-flash".
	Backend string
	Log     logrus.FieldLogger
}

// tuiModel implements tea.Model
type tuiModel struct {
	ctx      context.Context
	analyzer session.Analyzer
	machine  *session.Machine
	maxBytes int64
	backend  string
	log      logrus.FieldLogger
	styles   styles

	state    session.State
	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	// dimensions
	width  int
	height int

	// cumulative token usage across analyses
	totalInputTokens  int64
	totalOutputTokens int64
}

// Run starts the program and blocks until the user quits.
func (t *TUI) Run(ctx context.Context) error {
	m := newModel(ctx, t)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newModel(ctx context.Context, t *TUI) *tuiModel {
	ti := textinput.New()
	ti.Placeholder = "写真のパス (JPEG / PNG / WEBP) を入力して Enter"
	ti.CharLimit = 4096
	ti.Width = 80
	ti.Focus()

	st := newStyles(ThemeByName(t.Theme))
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = st.spinner

	machine := t.Machine
	if machine == nil {
		machine = session.NewMachine(model.DefaultMode)
	}
	log := t.Log
	if log == nil {
		log = logger.Discard()
	}

	return &tuiModel{
		ctx:      ctx,
		analyzer: t.Analyzer,
		machine:  machine,
		maxBytes: t.MaxBytes,
		backend:  t.Backend,
		log:      log,
		styles:   st,
		state:    machine.State(),
		input:    ti,
		spinner:  sp,
		viewport: viewport.New(80, 20),
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-4, 10)
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerLines-footerLines, 1)
		m.refreshResult()
		return m, nil

	case analysisDoneMsg:
		m.state = msg.state
		if m.state.Phase == session.PhaseSuccess && m.state.Result != nil {
			m.totalInputTokens += m.state.Result.Usage.InputTokens
			m.totalOutputTokens += m.state.Result.Usage.OutputTokens
		}
		m.refreshResult()
		return m, nil

	case spinner.TickMsg:
		if m.state.Phase != session.PhaseAnalyzing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.state.Phase {
	case session.PhaseIdle:
		return m.handleIdleKey(msg)
	case session.PhaseAnalyzing:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "tab", "shift+tab":
			m.cycleMode(msg.String() == "shift+tab")
		}
		return m, nil
	default:
		return m.handleOutcomeKey(msg)
	}
}

func (m *tuiModel) handleIdleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	empty := m.input.Value() == ""

	switch msg.String() {
	case "tab", "shift+tab":
		m.cycleMode(msg.String() == "shift+tab")
		return m, nil
	case "esc":
		m.input.Reset()
		return m, nil
	case "enter":
		return m, m.submit()
	}

	// With an empty input, single keys act as shortcuts instead of text.
	if empty {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "1", "2", "3":
			idx, _ := strconv.Atoi(msg.String())
			m.selectMode(model.Modes()[idx-1])
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *tuiModel) handleOutcomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "r", "esc":
		m.state = m.machine.Dispatch(m.ctx, session.Reset{})
		m.input.Reset()
		m.viewport.GotoTop()
		return m, m.input.Focus()
	case "tab", "shift+tab":
		m.cycleMode(msg.String() == "shift+tab")
		return m, nil
	}

	if m.state.Phase == session.PhaseSuccess {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *tuiModel) cycleMode(backwards bool) {
	next := m.state.Mode.Next()
	if backwards {
		next = next.Next()
	}
	m.selectMode(next)
}

func (m *tuiModel) selectMode(mode model.EvaluationMode) {
	m.state = m.machine.Dispatch(m.ctx, session.SelectMode{Mode: mode})
}

// submit loads the photo at the typed path and starts an analysis. A file
// that cannot be loaded fails the attempt like any other input error.
func (m *tuiModel) submit() tea.Cmd {
	path := strings.TrimSpace(m.input.Value())
	if path == "" {
		return nil
	}
	path = strings.Trim(path, `"'`)

	img, err := photo.Load(path, m.maxBytes)
	if err != nil {
		m.state, _ = m.machine.Reject(m.ctx, img, err)
		return nil
	}

	done, err := m.machine.Start(m.ctx, m.analyzer, img)
	if err != nil {
		m.log.WithError(err).Debug("submit ignored")
		m.state = m.machine.State()
		return nil
	}
	m.state = m.machine.State()
	m.input.Blur()

	wait := func() tea.Msg {
		return analysisDoneMsg{state: <-done}
	}
	return tea.Batch(wait, m.spinner.Tick)
}

// refreshResult re-renders the result into the viewport.
func (m *tuiModel) refreshResult() {
	if m.state.Phase != session.PhaseSuccess || m.state.Result == nil {
		return
	}
	m.viewport.SetContent(m.renderResult(m.viewport.Width))
}

func (m *tuiModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n")

	switch m.state.Phase {
	case session.PhaseIdle:
		b.WriteString(m.viewIdle())
	case session.PhaseAnalyzing:
		b.WriteString(m.viewAnalyzing())
	case session.PhaseSuccess:
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		b.WriteString(m.styles.dim.Render("↑↓/PgUp/PgDn=scroll  r=新しい写真を評価する  tab=mode  q=quit"))
	case session.PhaseError:
		b.WriteString(m.viewError())
	}
	return b.String()
}

func (m *tuiModel) viewHeader() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("PhotoMentor AI"))
	if m.backend != "" {
		b.WriteString("  ")
		b.WriteString(m.styles.dim.Render(m.backend))
	}
	if m.totalInputTokens > 0 || m.totalOutputTokens > 0 {
		b.WriteString("  ")
		b.WriteString(m.styles.dim.Render(fmt.Sprintf("tokens: %s in / %s out",
			formatTokens(m.totalInputTokens), formatTokens(m.totalOutputTokens))))
	}
	b.WriteString("\n")
	b.WriteString(m.viewModes())
	return b.String()
}

func (m *tuiModel) viewModes() string {
	parts := make([]string, 0, len(model.Modes()))
	for i, mode := range model.Modes() {
		label := fmt.Sprintf("%d %s", i+1, mode.Info().Label)
		if mode == m.state.Mode {
			parts = append(parts, m.styles.selected.Render(label))
		} else {
			parts = append(parts, m.styles.mode.Render(label))
		}
	}
	line := strings.Join(parts, "   ")
	return line + "  " + m.styles.dim.Render(m.state.Mode.Info().Tagline)
}

func (m *tuiModel) viewIdle() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.styles.heading.Render("写真をアップロード"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.styles.dim.Render("Enter=評価する  tab/1-3=採点モード  esc=clear  q=quit"))
	return b.String()
}

func (m *tuiModel) viewAnalyzing() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(m.styles.text.Render("AIが写真を分析中..."))
	b.WriteString("\n")
	b.WriteString(m.styles.dim.Render(m.state.Pending.Info().WaitingMessage))
	if p := m.state.Preview; p != nil {
		b.WriteString("\n\n")
		b.WriteString(m.styles.dim.Render(previewLine(*p)))
	}
	return b.String()
}

func (m *tuiModel) viewError() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.styles.err.Render(m.state.Message))
	b.WriteString("\n\n")
	b.WriteString(m.styles.dim.Render("r=やり直す  q=quit"))
	return b.String()
}

// renderResult renders the full critique, wrapped to width.
func (m *tuiModel) renderResult(width int) string {
	r := m.state.Result
	s := m.styles
	wrap := lipgloss.NewStyle().Width(max(width-2, 20))
	rule := s.rule.Render(strings.Repeat("─", max(width-2, 20)))

	var b strings.Builder
	b.WriteString(s.title.Render(r.Title))
	b.WriteString("  ")
	b.WriteString(s.score(r.Score))
	b.WriteString(s.dim.Render("/100"))
	b.WriteString("  ")
	b.WriteString(s.dim.Render(m.state.Pending.Info().Label))
	b.WriteString("\n")
	if p := m.state.Preview; p != nil {
		b.WriteString(s.dim.Render(previewLine(*p)))
		b.WriteString("\n")
	}
	b.WriteString(wrap.Render(r.Summary))
	b.WriteString("\n")
	b.WriteString(rule)
	b.WriteString("\n")

	b.WriteString(s.heading.Render("評価ランキング"))
	b.WriteString("\n")
	for _, rc := range model.RankedCategories(r) {
		fmt.Fprintf(&b, "%d. %s  %s\n", rc.Rank, s.text.Render(rc.Label), s.score(rc.Score))
		b.WriteString(wrap.Render("   " + rc.Advice))
		b.WriteString("\n")
	}
	b.WriteString(rule)
	b.WriteString("\n")

	b.WriteString(s.heading.Render("良かった点"))
	b.WriteString("\n")
	for _, item := range r.Strengths {
		b.WriteString(s.strength.Render("✓ "))
		b.WriteString(wrap.Render(item))
		b.WriteString("\n")
	}
	b.WriteString(s.heading.Render("改善アドバイス"))
	b.WriteString("\n")
	for _, item := range r.Improvements {
		b.WriteString(s.improve.Render("→ "))
		b.WriteString(wrap.Render(item))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(s.tip.Width(max(width-4, 20)).Render("Pro Tip: テクニカルアドバイス\n" + r.TechnicalAdvice))
	b.WriteString("\n")
	return b.String()
}

func previewLine(img model.Image) string {
	line := img.Name
	if d := img.Dimensions(); d != "" {
		line += "  " + d
	}
	return line + "  " + img.MIMEType
}

// formatTokens formats a token count for display (e.g., "12.3k").
func formatTokens(n int64) string {
	switch {
	case n < 1000:
		return fmt.Sprintf("%d", n)
	case n < 10000:
		return fmt.Sprintf("%.1fk", float64(n)/1000)
	case n < 1000000:
		return fmt.Sprintf("%.0fk", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
