package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"tzsched/internal/table"
)

// linesPerRow is the number of terminal lines each zone row occupies:
// one for the zone summary, one for the 24 hour cells.
const linesPerRow = 2

const nameColWidth = 26

// renderTable renders the zone rows with their hour cells.
func (m model) renderTable(width, height int) string {
	rows := m.coll.Rows()
	if len(rows) == 0 {
		return lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No zones yet. Type a city name and press enter.")
	}

	var lines []string
	for i, r := range rows {
		if len(lines)+linesPerRow > height {
			break
		}
		lines = append(lines, formatRowLines(r, width, i == m.cursor)...)
	}

	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

// formatRowLines formats one zone as two lines:
//
//	line 1: [>] [*] name  offset  live clock  transition/stale note
//	line 2:     hour cells for the fetched day
func formatRowLines(r *table.Row, width int, selected bool) []string {
	marker := "  "
	if selected {
		marker = styleRowSelected.Render("> ")
	}

	home := "  "
	if r.Home {
		home = styleHomeMark.Render("* ")
	}

	name := r.Zone.FullName
	if runewidth.StringWidth(name) > nameColWidth {
		name = runewidth.Truncate(name, nameColWidth, "…")
	}
	name = runewidth.FillRight(name, nameColWidth)
	if selected {
		name = styleRowSelected.Render(name)
	} else {
		name = styleRowNormal.Render(name)
	}

	offset := styleOffset.Render(runewidth.FillRight(describeOffset(r), 22))

	clock := "     "
	if r.Clock != nil {
		hm := fmt.Sprintf("%02d:%02d", r.Clock.Hour, r.Clock.Minute)
		if r.Clock.Active {
			clock = styleClock.Render(hm)
		} else {
			clock = styleClockIdle.Render(hm)
		}
	}

	note := ""
	switch {
	case r.FetchErr != nil:
		note = styleStale.Render("  stale")
	case r.Transition != nil:
		note = styleStatusBar.Render("  " + describeTransition(r.Transition))
	}

	line1 := marker + home + name + offset + clock + note
	line2 := "    " + formatCells(r)
	return []string{line1, line2}
}

// formatCells renders the 24 slot hours, dimming night hours,
// highlighting the current hour while the clock is live, and marking
// midnight boundaries with a separator.
func formatCells(r *table.Row) string {
	var b strings.Builder
	for i, cell := range r.Cells {
		if i > 0 {
			// mark midnight boundaries between cells
			if cell.Slot.Hour == 0 {
				b.WriteString(styleStatusBar.Render("|"))
			} else {
				b.WriteString(" ")
			}
		}
		label := fmt.Sprintf("%02d", cell.Slot.Hour)
		switch {
		case r.Clock != nil && r.Clock.Active && cell.Slot.Hour == r.Clock.Hour:
			b.WriteString(styleCellNow.Render(label))
		case cell.Slot.Hour >= 8 && cell.Slot.Hour < 20:
			b.WriteString(styleCellDay.Render(label))
		default:
			b.WriteString(styleCellNight.Render(label))
		}
	}
	return b.String()
}

// describeOffset renders a row's mean offset relative to home:
// "Your home", "+2 hours from home", "-5.5 hours from home".
func describeOffset(r *table.Row) string {
	if r.Offsets == nil {
		return ""
	}
	hours := r.Offsets.Mean / 3600
	if hours == 0 {
		return "Your home"
	}
	return fmt.Sprintf("%s hours from home", formatHours(hours))
}

// describeTransition renders the next scheduled offset change:
// "CET to CEST (+1 hour) on March 29, 2026 03:00".
func describeTransition(ti *table.TransitionInfo) string {
	hours := float64(ti.ToOffset-ti.FromOffset) / 3600
	unit := "hours"
	if hours == 1 || hours == -1 {
		unit = "hour"
	}
	return fmt.Sprintf("%s to %s (%s %s) on %s",
		ti.FromName, ti.ToName, formatHours(hours), unit, ti.Activates)
}

// formatHours renders a signed hour count, dropping a trailing ".0".
func formatHours(hours float64) string {
	s := fmt.Sprintf("%+.1f", hours)
	return strings.TrimSuffix(s, ".0")
}
