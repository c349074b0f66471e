// Spinner wraps Bubble Tea's spinner component with TTY detection so
// non-interactive installs (CI, piped output, --quiet) never emit control
// sequences. Mirrors the teacher's simplified "spinner v2" design: a
// single enabled flag, no separate running state, concurrency handled by
// Bubble Tea's message passing rather than a mutex.
package console

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pantry-dev/pantry/internal/styles"
)

type spinnerModel struct {
	spinner spinner.Model
	message string
}

func (m spinnerModel) Init() tea.Cmd { return m.spinner.Tick }
func (m spinnerModel) View() string  { return fmt.Sprintf("\r%s %s", m.spinner.View(), m.message) }

type updateMessageMsg string

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMessageMsg:
		m.message = string(msg)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Spinner drives an inline spinner for a single in-flight package install.
type Spinner struct {
	program *tea.Program
	enabled bool
}

// NewSpinner creates a spinner with the given initial message. It is a
// no-op (Start/Stop are both cheap) when stderr is not a TTY or
// ACCESSIBLE is set.
func NewSpinner(message string) *Spinner {
	enabled := isStderrTTY()
	if !enabled {
		return &Spinner{enabled: false}
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.ColorInfo)

	m := spinnerModel{spinner: s, message: message}
	return &Spinner{
		program: tea.NewProgram(m, tea.WithOutput(os.Stderr)),
		enabled: true,
	}
}

// Start begins animating the spinner in the background. Safe to call on
// a disabled spinner (no-op).
func (s *Spinner) Start() {
	if !s.enabled {
		return
	}
	go func() {
		_, _ = s.program.Run()
	}()
}

// UpdateMessage changes the spinner's trailing message while running.
func (s *Spinner) UpdateMessage(message string) {
	if !s.enabled {
		return
	}
	s.program.Send(updateMessageMsg(message))
}

// Stop ends the spinner and clears its line.
func (s *Spinner) Stop() {
	if !s.enabled {
		return
	}
	s.program.Quit()
}

// StopWithMessage stops the spinner and writes a final formatted line.
func (s *Spinner) StopWithMessage(message string) {
	s.Stop()
	fmt.Fprintln(os.Stderr, message)
}
