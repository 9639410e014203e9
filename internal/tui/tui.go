// Package tui is the interactive terminal surface: pick a repository,
// watch it analyze, then chat about its code.
package tui

import (
	"codescout/internal/assistant"

	tea "github.com/charmbracelet/bubbletea"
)

// ViewState represents which screen is active.
type ViewState int

const (
	ViewAnalyze ViewState = iota
	ViewChat
)

// Config holds configuration passed from the CLI layer.
type Config struct {
	Assistant *assistant.Assistant
	RepoURL   string
	TopK      int
}

// Model is the top-level Bubble Tea model.
type Model struct {
	state  ViewState
	config Config
	width  int
	height int

	analyze analyzeModel
	chat    chatModel
}

// New creates a new TUI model with the given config.
func New(cfg Config) Model {
	if cfg.TopK <= 0 {
		cfg.TopK = assistant.DefaultTopK
	}
	m := Model{
		state:   ViewAnalyze,
		config:  cfg,
		analyze: newAnalyzeModel(cfg.RepoURL),
	}
	// An assistant restored to ready state skips straight to chat.
	if cfg.Assistant.Status().State == assistant.StateReady {
		m.chat = newChatModel(cfg.Assistant, cfg.TopK)
		m.state = ViewChat
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.state == ViewChat {
			var c tea.Cmd
			m.chat, c = m.chat.Update(msg)
			return m, c
		}
		return m, nil

	case tea.KeyMsg:
		// Both screens own a text input, so plain letters never quit.
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		}

	case analyzeDoneMsg:
		m.analyze, _ = m.analyze.Update(msg)
		if msg.err == nil {
			m.chat = newChatModel(m.config.Assistant, m.config.TopK)
			m.chat.initViewport(m.width, m.height)
			m.state = ViewChat
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.state {
	case ViewAnalyze:
		m.analyze, cmd = m.analyze.Update(msg)
		if cmd != nil {
			return m, cmd
		}
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter && !m.analyze.running {
			locator := m.analyze.locator()
			if locator == "" {
				return m, nil
			}
			m.analyze.running = true
			m.analyze.err = nil
			return m, tea.Batch(m.analyze.spinner.Tick, runAnalyze(m.config.Assistant, locator))
		}

	case ViewChat:
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	switch m.state {
	case ViewAnalyze:
		return m.analyze.View(m.width, m.height)
	case ViewChat:
		return m.chat.View(m.width, m.height)
	}
	return ""
}

// Run starts the TUI program.
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
