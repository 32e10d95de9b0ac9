package installer

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sandevgo/ragway/internal/core"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	itemStyle     = lipgloss.NewStyle().PaddingLeft(2)
	selStyle      = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("5"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

var ErrInterrupted = errors.New("installation interrupted")

// Step is one screen of the wizard. Update returns nil once the step has
// written its answer into state; a step that does not apply to state returns
// nil straight away.
type Step interface {
	Init() tea.Cmd
	Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd)
	View(state *InstallState) string
}

func getSteps(runtimePath string) []Step {
	return []Step{
		NewProviderStep(),
		NewModelStep(),
		NewAPIKeyStep(),
		NewEndpointStep(),
		NewStoreStep(),
		NewPostgresDSNStep(),
		NewChannelStep(),
		NewTelegramTokenStep(),
		NewTelegramOwnerStep(),
		NewSaveEnvStep(runtimePath),
	}
}

// item backs both the cursor lists and the bubbles/list model suggestions.
type item struct {
	id    string
	title string
	desc  string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.id }

// nextMsg wakes a step that needs the install state before its first key.
type nextMsg struct{}

func enterStep() tea.Msg { return nextMsg{} }

type model struct {
	steps       []Step
	currentStep int
	state       *InstallState
	cancelled   bool
	width       int
	height      int
}

func initialModel(runtimePath string) model {
	return model{
		steps: getSteps(runtimePath),
		state: NewInstallState(),
	}
}

func (m model) done() bool {
	return m.currentStep >= len(m.steps)
}

func (m model) Init() tea.Cmd {
	if m.done() {
		return tea.Quit
	}
	return m.steps[0].Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			return m, tea.Quit
		}
	}

	if m.cancelled || m.done() {
		return m, tea.Quit
	}

	step, cmd := m.steps[m.currentStep].Update(msg, m.state, m.width, m.height)
	if step != nil {
		m.steps[m.currentStep] = step
		return m, cmd
	}

	m.currentStep++
	if m.done() {
		return m, tea.Quit
	}
	return m, m.steps[m.currentStep].Init()
}

func (m model) View() string {
	switch {
	case m.cancelled:
		return "Installation cancelled.\n"
	case m.done():
		return "Configuration complete!\n"
	}

	header := titleStyle.Render("Setting up "+core.RagwayName) +
		progressStyle.Render(fmt.Sprintf("  step %d of %d", m.currentStep+1, len(m.steps)))
	return header + "\n\n" + m.steps[m.currentStep].View(m.state)
}

// RunWizard starts the TUI and writes runtimePath/.env on completion.
func RunWizard(runtimePath string) (*InstallState, error) {
	final, err := tea.NewProgram(initialModel(runtimePath), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, err
	}

	m := final.(model)
	if m.cancelled || !m.done() {
		return nil, ErrInterrupted
	}
	return m.state, nil
}
