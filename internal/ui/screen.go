package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alfredjeanlab/gate/internal/gate"
	"github.com/alfredjeanlab/gate/internal/logstore"
)

// Triggerer starts an open attempt. *gate.Opener implements it.
type Triggerer interface {
	Trigger(ctx context.Context) <-chan gate.Outcome
}

// chromeHeight is the number of rows used by the title, button, and help.
const chromeHeight = 5

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("74"))
	buttonStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 3).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("74"))
	pressedStyle = buttonStyle.BorderForeground(lipgloss.Color("245")).Foreground(lipgloss.Color("245"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okLineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	badLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// successLine is the message logged for an accepted request.
var successLine = gate.Success(200).Message()

// logGrewMsg reports that the store now holds n entries.
type logGrewMsg int

// outcomeMsg reports a settled attempt.
type outcomeMsg gate.Outcome

// Screen is the single interactive view: an open button above a
// scrolling log that follows new entries.
type Screen struct {
	ctx      context.Context
	opener   Triggerer
	log      *logstore.Store
	updates  <-chan int
	endpoint string

	viewport viewport.Model
	ready    bool
	shown    int // entries rendered into the viewport
	inflight int
}

// NewScreen returns a Screen reading from log and triggering through o.
// The subscription is released when the program exits via Close.
func NewScreen(ctx context.Context, o Triggerer, log *logstore.Store, endpoint string) (*Screen, func()) {
	updates, cancel := log.Subscribe()
	return &Screen{
		ctx:      ctx,
		opener:   o,
		log:      log,
		updates:  updates,
		endpoint: endpoint,
	}, cancel
}

// Run drives the screen on the alternate buffer until the user quits.
func (s *Screen) Run() error {
	_, err := tea.NewProgram(s, tea.WithAltScreen(), tea.WithContext(s.ctx)).Run()
	return err
}

func (s *Screen) Init() tea.Cmd {
	return waitForGrowth(s.updates)
}

func waitForGrowth(ch <-chan int) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return logGrewMsg(n)
	}
}

func awaitOutcome(ch <-chan gate.Outcome) tea.Cmd {
	return func() tea.Msg {
		return outcomeMsg(<-ch)
	}
}

func (s *Screen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h := max(msg.Height-chromeHeight, 1)
		if !s.ready {
			s.viewport = viewport.New(msg.Width, h)
			s.ready = true
		} else {
			s.viewport.Width = msg.Width
			s.viewport.Height = h
		}
		s.refresh()
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return s, tea.Quit
		case "enter", " ", "o":
			// Overlapping presses are allowed; each attempt logs on its own.
			s.inflight++
			return s, awaitOutcome(s.opener.Trigger(s.ctx))
		}

	case logGrewMsg:
		s.refresh()
		return s, waitForGrowth(s.updates)

	case outcomeMsg:
		s.inflight--
		return s, nil
	}

	if !s.ready {
		return s, nil
	}
	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return s, cmd
}

// refresh re-renders the log when it has grown and keeps the newest entry
// in view.
func (s *Screen) refresh() {
	if !s.ready {
		return
	}
	entries := s.log.Snapshot()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = styleEntry(e)
	}
	s.viewport.SetContent(strings.Join(lines, "\n"))
	if len(entries) > s.shown {
		s.viewport.GotoBottom()
	}
	s.shown = len(entries)
}

func styleEntry(e string) string {
	switch {
	case strings.HasSuffix(e, successLine):
		return okLineStyle.Render(e)
	case strings.Contains(e, " failed to open"):
		return badLineStyle.Render(e)
	default:
		return e
	}
}

func (s *Screen) View() string {
	if !s.ready {
		return "starting…"
	}
	btn := buttonStyle
	if s.inflight > 0 {
		btn = pressedStyle
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("gate") + "  " + helpStyle.Render(s.endpoint) + "\n")
	b.WriteString(btn.Render("Open") + "\n")
	b.WriteString(s.viewport.View() + "\n")
	b.WriteString(helpStyle.Render("enter/space: open • ↑/↓: scroll • q: quit"))
	return b.String()
}
