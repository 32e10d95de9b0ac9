package installer

import (
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/ragway/internal/core"
	"github.com/sandevgo/ragway/internal/providers/llm"
)

// EndpointStep asks for the API URL. It is required for custom providers,
// optional for Ollama and optional as a base URL override for hosted ones.
type EndpointStep struct {
	input    textinput.Model
	ready    bool
	required bool
	invalid  bool
}

func NewEndpointStep() Step {
	return &EndpointStep{}
}

func (s *EndpointStep) Init() tea.Cmd {
	return enterStep
}

func (s *EndpointStep) setup(state *InstallState) {
	s.input = textinput.New()
	s.input.Focus()
	s.input.Width = 50

	switch state.providerID() {
	case core.ProviderCustom:
		s.required = true
		s.input.Placeholder = "https://api.example.com/v1/chat"
	case core.ProviderOllama:
		s.input.Placeholder = llm.DefaultOllamaURL
	default:
		s.input.Placeholder = "press Enter to use the vendor default"
	}
	s.ready = true
}

func (s *EndpointStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if !s.ready {
		s.setup(state)
		return s, textinput.Blink
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		val := strings.TrimSpace(s.input.Value())
		if val == "" {
			if s.required {
				return s, cmd
			}
			return nil, nil
		}
		if _, err := url.ParseRequestURI(val); err != nil {
			s.invalid = true
			return s, cmd
		}
		state.Provider.APIURL = val
		return nil, nil
	}
	return s, cmd
}

func (s *EndpointStep) View(state *InstallState) string {
	if !s.ready {
		return "Loading...\n"
	}
	hint := " (optional)"
	if s.required {
		hint = ""
	}
	view := "Enter the API URL" + hint + ":\n\n" + s.input.View() + "\n\n"
	if s.invalid {
		view += errorStyle.Render("not a valid URL") + "\n\n"
	}
	return view + "(press enter to confirm)\n"
}
