package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmModel is a yes/no question. It defaults to No.
type ConfirmModel struct {
	prompt   string
	yes      bool // Highlighted choice
	answered bool
	answer   bool
}

// NewConfirmModel creates a confirmation for prompt
func NewConfirmModel(prompt string) *ConfirmModel {
	return &ConfirmModel{prompt: prompt}
}

// Init initializes the model
func (m *ConfirmModel) Init() tea.Cmd {
	return nil
}

// Update handles key presses
func (m *ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, key.NewBinding(key.WithKeys("y", "Y"))):
		return m.finish(true)

	case key.Matches(keyMsg, key.NewBinding(key.WithKeys("n", "N", "esc", "q", "ctrl+c"))):
		return m.finish(false)

	case key.Matches(keyMsg, key.NewBinding(key.WithKeys("left", "h", "right", "l", "tab"))):
		m.yes = !m.yes
		return m, nil

	case key.Matches(keyMsg, key.NewBinding(key.WithKeys("enter", " "))):
		return m.finish(m.yes)
	}

	return m, nil
}

func (m *ConfirmModel) finish(answer bool) (tea.Model, tea.Cmd) {
	m.answered = true
	m.answer = answer
	return m, tea.Quit
}

// Confirmed reports whether the user answered yes
func (m *ConfirmModel) Confirmed() bool {
	return m.answered && m.answer
}

// Answered reports whether the user made a choice
func (m *ConfirmModel) Answered() bool {
	return m.answered
}

// View renders the question and the Yes/No pills
func (m *ConfirmModel) View() string {
	if m.answered {
		return ""
	}

	yesStyle := lipgloss.NewStyle().Padding(0, 1)
	noStyle := lipgloss.NewStyle().Padding(0, 1)

	if m.yes {
		yesStyle = yesStyle.Background(ColorOrange).Foreground(lipgloss.Color("#000")).Bold(true)
		noStyle = noStyle.Foreground(ColorGray)
	} else {
		yesStyle = yesStyle.Foreground(ColorGray)
		noStyle = noStyle.Background(ColorOrange).Foreground(lipgloss.Color("#000")).Bold(true)
	}

	question := TitleStyle.Render(m.prompt)
	pills := yesStyle.Render("Yes") + " " + noStyle.Render("No")
	help := RenderHelpFooter("y/n: answer • ←/→: choose • enter: confirm • esc: no", 0)

	return lipgloss.JoinVertical(lipgloss.Left, question, pills, help) + "\n"
}
