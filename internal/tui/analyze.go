package tui

import (
	"context"
	"fmt"
	"strings"

	"codescout/internal/assistant"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type analyzeModel struct {
	input   textinput.Model
	spinner spinner.Model
	running bool
	err     error
}

func newAnalyzeModel(repoURL string) analyzeModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle

	ti := textinput.New()
	ti.Placeholder = "https://github.com/user/repo"
	ti.CharLimit = 500
	ti.SetValue(repoURL)
	ti.Focus()

	return analyzeModel{input: ti, spinner: sp}
}

func (m analyzeModel) locator() string {
	return strings.TrimSpace(m.input.Value())
}

// analyzeDoneMsg is sent when repository analysis completes.
type analyzeDoneMsg struct {
	unitCount int
	err       error
}

func runAnalyze(a *assistant.Assistant, locator string) tea.Cmd {
	return func() tea.Msg {
		n, err := a.Analyze(context.Background(), locator)
		return analyzeDoneMsg{unitCount: n, err: err}
	}
}

func (m analyzeModel) Update(msg tea.Msg) (analyzeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case analyzeDoneMsg:
		m.running = false
		m.err = msg.err
		return m, nil
	case spinner.TickMsg:
		if m.running {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if !m.running {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m analyzeModel) View(width, height int) string {
	s := "\n"
	s += titleStyle.Render("  CodeScout") + "\n\n"
	s += "  Which repository should I read?\n\n"
	s += "  " + m.input.View() + "\n\n"

	if m.running {
		s += fmt.Sprintf("  %s %s\n", m.spinner.View(), dimStyle.Render("Cloning and analyzing, this can take a while..."))
		return s
	}
	if m.err != nil {
		s += errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}
	s += dimStyle.Render("  Press Enter to analyze, Esc to quit.") + "\n"
	return s
}
