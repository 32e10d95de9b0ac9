package installer

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/ragway/internal/core"
)

// APIKeyStep collects the provider credential. Ollama and custom endpoints
// may run without one.
type APIKeyStep struct {
	input      textinput.Model
	ready      bool
	title      string
	isOptional bool
}

func NewAPIKeyStep() Step {
	return &APIKeyStep{}
}

func (s *APIKeyStep) Init() tea.Cmd {
	return enterStep
}

func (s *APIKeyStep) setup(state *InstallState) {
	s.input = textinput.New()
	s.input.Focus()
	s.input.CharLimit = 255
	s.input.Width = 40
	s.input.EchoMode = textinput.EchoPassword
	s.input.EchoCharacter = '•'

	switch state.providerID() {
	case core.ProviderOpenAI:
		s.title = "OpenAI API Key"
		s.input.Placeholder = "sk-..."
	case core.ProviderAnthropic:
		s.title = "Anthropic API Key"
		s.input.Placeholder = "sk-ant-..."
	case core.ProviderGoogle:
		s.title = "Google AI API Key"
		s.input.Placeholder = "AIza..."
	case core.ProviderOllama:
		s.title = "Ollama API Key"
		s.isOptional = true
	default:
		s.title = "API Key"
		s.isOptional = true
	}
	if s.isOptional {
		s.input.Placeholder = "press Enter to skip"
	}
	s.ready = true
}

func (s *APIKeyStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if !s.ready {
		s.setup(state)
		return s, textinput.Blink
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if s.input.Value() == "" && !s.isOptional {
			return s, cmd
		}
		state.Provider.APIKey = s.input.Value()
		return nil, nil
	}
	return s, cmd
}

func (s *APIKeyStep) View(state *InstallState) string {
	if !s.ready {
		return "Loading...\n"
	}

	optionalHint := ""
	if s.isOptional {
		optionalHint = " (optional)"
	}
	return fmt.Sprintf("Enter your %s%s:\n\n%s\n\n(press enter to confirm)\n",
		s.title, optionalHint, s.input.View())
}
