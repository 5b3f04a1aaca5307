package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ErrorModal is a standalone modal for errors that happen before a run can
// start (bad settings, missing API key).
type ErrorModal struct {
	title   string
	message string
	width   int
	height  int
}

func NewErrorModal(title, message string) ErrorModal {
	return ErrorModal{
		title:   title,
		message: message,
	}
}

func (m ErrorModal) Init() tea.Cmd {
	return nil
}

func (m ErrorModal) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc", "q", "ctrl+c":
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m ErrorModal) View() string {
	if m.width < 20 || m.height < 10 {
		return "Terminal too small"
	}

	modalWidth := 60
	if m.width < modalWidth+10 {
		modalWidth = m.width - 10
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		renderModal(m.title, m.message, "Press Enter to quit", modalWidth))
}

// renderModal draws the borderless three-section modal: title, message
// (top border) and footer (top border).
func renderModal(title, message, footer string, modalWidth int) string {
	// Centered by hand; lipgloss miscounts some emoji widths.
	titleWidth := runewidth.StringWidth(title)
	leftPad := (modalWidth - titleWidth) / 2
	if leftPad < 0 {
		leftPad = 0
	}
	rightPad := modalWidth - titleWidth - leftPad
	if rightPad < 0 {
		rightPad = 0
	}

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Foreground(dangerColor).
		Render(strings.Repeat(" ", leftPad) + title + strings.Repeat(" ", rightPad))

	messageStyle := lipgloss.NewStyle().
		Width(modalWidth).
		Align(lipgloss.Center)

	var messageLines []string
	messageLines = append(messageLines, strings.Repeat(" ", modalWidth))
	for _, line := range strings.Split(message, "\n") {
		messageLines = append(messageLines, messageStyle.Render(line))
	}
	messageLines = append(messageLines, strings.Repeat(" ", modalWidth))

	messageSection := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(strings.Join(messageLines, "\n"))

	footerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footer)

	return strings.Join([]string{titleSection, messageSection, footerSection}, "\n")
}
