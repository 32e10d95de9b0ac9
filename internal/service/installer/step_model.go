package installer

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/ragway/internal/core"
)

var suggestedModels = map[core.ProviderID][]item{
	core.ProviderOllama: {
		{id: "llama2", title: "llama2", desc: "Meta Llama 2"},
		{id: "llama3", title: "llama3", desc: "Meta Llama 3"},
		{id: "mistral", title: "mistral", desc: "Mistral 7B"},
	},
	core.ProviderOpenAI: {
		{id: "gpt-4o-mini", title: "gpt-4o-mini", desc: "fast and cheap"},
		{id: "gpt-4o", title: "gpt-4o", desc: "flagship"},
		{id: "gpt-3.5-turbo", title: "gpt-3.5-turbo", desc: "legacy"},
	},
	core.ProviderAnthropic: {
		{id: "claude-3-haiku-20240307", title: "claude-3-haiku", desc: "fast"},
		{id: "claude-3-5-sonnet-latest", title: "claude-3-5-sonnet", desc: "balanced"},
	},
	core.ProviderGoogle: {
		{id: "gemini-1.5-flash", title: "gemini-1.5-flash", desc: "fast"},
		{id: "gemini-1.5-pro", title: "gemini-1.5-pro", desc: "large context"},
	},
}

// ModelStep offers known models for the chosen provider, or free text when
// there are no suggestions (custom endpoints).
type ModelStep struct {
	list  list.Model
	input textinput.Model
	ready bool
	free  bool
}

func NewModelStep() Step {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select Model"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return &ModelStep{list: l}
}

func (s *ModelStep) Init() tea.Cmd {
	return enterStep
}

func (s *ModelStep) setup(state *InstallState, width, height int) tea.Cmd {
	s.ready = true
	s.list.SetSize(width, height-4)
	models, ok := suggestedModels[state.providerID()]
	if !ok {
		s.free = true
		s.input = textinput.New()
		s.input.Focus()
		s.input.Width = 40
		s.input.Placeholder = "model name"
		return textinput.Blink
	}

	items := make([]list.Item, len(models))
	for i, m := range models {
		items[i] = m
	}
	return s.list.SetItems(items)
}

func (s *ModelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if !s.ready {
		return s, s.setup(state, width, height)
	}

	if s.free {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
			if val := strings.TrimSpace(s.input.Value()); val != "" {
				state.Provider.Model = val
				return nil, nil
			}
		}
		return s, cmd
	}

	s.list.SetSize(width, height-4)

	var cmd tea.Cmd
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		wasFiltering := s.list.FilterState() == list.Filtering
		s.list, cmd = s.list.Update(msg)
		if wasFiltering || s.list.FilterState() == list.Filtering {
			return s, cmd
		}
		if i, ok := s.list.SelectedItem().(item); ok {
			state.Provider.Model = i.id
			return nil, nil
		}
		return s, cmd
	}

	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

func (s *ModelStep) View(state *InstallState) string {
	if !s.ready {
		return "Loading...\n"
	}
	if s.free {
		return "Enter the model name:\n\n" + s.input.View() + "\n\n(press enter to confirm)\n"
	}
	return s.list.View()
}
