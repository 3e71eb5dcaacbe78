package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	colorPrimary   = lipgloss.Color("12")  // bright blue
	colorSecondary = lipgloss.Color("10")  // bright green
	colorDim       = lipgloss.Color("240") // gray
	colorHighlight = lipgloss.Color("11")  // bright yellow
	colorBorder    = lipgloss.Color("238") // dark gray
	colorNight     = lipgloss.Color("61")  // muted purple
	colorError     = lipgloss.Color("9")   // bright red

	// Input area
	styleInput = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	// Row text
	styleRowSelected = lipgloss.NewStyle().
				Foreground(colorHighlight).
				Bold(true)

	styleRowNormal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	styleHomeMark = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	styleClock = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	styleClockIdle = lipgloss.NewStyle().
			Foreground(colorDim)

	styleOffset = lipgloss.NewStyle().
			Foreground(colorPrimary)

	styleStale = lipgloss.NewStyle().
			Foreground(colorError)

	// Hour cells
	styleCellDay = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	styleCellNight = lipgloss.NewStyle().
			Foreground(colorNight)

	styleCellNow = lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true).
			Underline(true)

	// Suggestions
	styleSuggest = lipgloss.NewStyle().
			Foreground(colorDim)

	styleSuggestSel = lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true)

	// Chrome
	stylePanelBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder)

	styleStatusBar = lipgloss.NewStyle().
			Foreground(colorDim).
			Padding(0, 1)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)

	styleTitle = lipgloss.NewStyle().
			Foreground(colorDim).
			Bold(true)
)
