// Package tui is the interactive front end over the row collection: a
// zone input with debounced typeahead, the world-time table itself, and
// the once-per-second clock tick. All collection mutations run as
// commands off the update loop; results are re-checked against current
// state when they arrive, so stale responses are dropped instead of
// clobbering newer edits.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tzsched/internal/civil"
	"tzsched/internal/session"
	"tzsched/internal/table"
)

const (
	debounceDelay = 200 * time.Millisecond
	suggestLimit  = 10
)

// message types

type tickMsg time.Time

type addResultMsg struct {
	query string
	err   error
}

type opDoneMsg struct{}

type reconcileDoneMsg struct {
	err error
}

type debounceTickMsg struct {
	query string
}

type suggestMsg struct {
	query string
	zones []table.Zone
}

// model

type model struct {
	svc  table.FetchService
	coll *table.Collection

	zoneInput   textinput.Model
	suggestions []table.Zone
	sugCursor   int

	dateKey string
	cursor  int
	token   string
	status  string
	pending int // in-flight fetch operations

	width    int
	height   int
	ready    bool
	quitting bool
}

func initialModel(svc table.FetchService, coll *table.Collection) model {
	ti := textinput.New()
	ti.Placeholder = "Add a city..."
	ti.Focus()
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.TextStyle = styleInput
	ti.CharLimit = 128

	return model{
		svc:       svc,
		coll:      coll,
		zoneInput: ti,
		dateKey:   coll.Date(),
		sugCursor: -1,
		token:     session.EncodeCollection(coll),
	}
}

// Run starts the TUI and blocks until it exits. token, when non-empty,
// is reconciled into the collection on startup.
func Run(svc table.FetchService, coll *table.Collection, token string) error {
	m := initialModel(svc, coll)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if token != "" {
		entries := session.Decode(token)
		go func() {
			err := session.Reconcile(context.Background(), coll, entries)
			p.Send(reconcileDoneMsg{err: err})
		}()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// Init starts the clock.
func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tickCmd())
}

// Update handles messages.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Enter):
			query := strings.TrimSpace(m.zoneInput.Value())
			if m.sugCursor >= 0 && m.sugCursor < len(m.suggestions) {
				query = m.suggestions[m.sugCursor].Key
			}
			if query == "" {
				return m, nil
			}
			m.zoneInput.SetValue("")
			m.suggestions = nil
			m.sugCursor = -1
			m.status = ""
			m.pending++
			return m, m.addZoneCmd(query)

		case key.Matches(msg, keys.NextSug):
			if len(m.suggestions) > 0 {
				m.sugCursor = (m.sugCursor + 1) % len(m.suggestions)
			}
			return m, nil

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, keys.Down):
			if m.cursor < m.coll.Len()-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, keys.RemoveRow):
			if r := m.selectedRow(); r != nil {
				m.pending++
				cmds = append(cmds, m.removeCmd(r.Key))
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.SetHome):
			if r := m.selectedRow(); r != nil && !r.Home {
				m.pending++
				cmds = append(cmds, m.setHomeCmd(r.Key))
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.SortOffset):
			m.coll.SortByOffset()
			m.token = session.EncodeCollection(m.coll)
			return m, nil

		case key.Matches(msg, keys.SortName):
			m.coll.SortByName()
			m.token = session.EncodeCollection(m.coll)
			return m, nil

		case key.Matches(msg, keys.PrevDay):
			return m.stepDate(-1)

		case key.Matches(msg, keys.NextDay):
			return m.stepDate(1)

		case key.Matches(msg, keys.Today):
			today := civil.Now().DateKey()
			if today == m.dateKey {
				return m, nil
			}
			m.dateKey = today
			m.pending++
			return m, m.changeDateCmd(today)

		case key.Matches(msg, keys.CopyLink):
			if m.token != "" {
				if err := clipboard.WriteAll(m.token); err != nil {
					m.status = "link token: " + m.token
				} else {
					m.status = "link token copied"
				}
			}
			return m, nil
		}

		// Pass remaining keys to the zone input
		var tiCmd tea.Cmd
		prev := m.zoneInput.Value()
		m.zoneInput, tiCmd = m.zoneInput.Update(msg)
		cmds = append(cmds, tiCmd)

		if q := m.zoneInput.Value(); q != prev {
			m.sugCursor = -1
			if strings.TrimSpace(q) == "" {
				m.suggestions = nil
			} else {
				cmds = append(cmds, scheduleDebouncedSuggest(q))
			}
		}
		return m, tea.Batch(cmds...)

	case debounceTickMsg:
		// Only fire if the input hasn't changed since the debounce was scheduled
		if msg.query == m.zoneInput.Value() {
			cmds = append(cmds, m.suggestCmd(msg.query))
		}
		return m, tea.Batch(cmds...)

	case suggestMsg:
		if msg.query != m.zoneInput.Value() {
			return m, nil // stale response
		}
		m.suggestions = msg.zones
		m.sugCursor = -1
		return m, nil

	case addResultMsg:
		m.pending--
		switch {
		case msg.err == nil:
			m.status = ""
		case msg.err == table.ErrAlreadyPresent:
			m.status = fmt.Sprintf("%s is already in the table", msg.query)
		case msg.err == table.ErrZoneNotFound:
			m.status = fmt.Sprintf("no zone found for %q", msg.query)
		default:
			m.status = "lookup failed: " + msg.err.Error()
		}
		m.token = session.EncodeCollection(m.coll)
		m.clampCursor()
		return m, nil

	case opDoneMsg:
		m.pending--
		m.token = session.EncodeCollection(m.coll)
		m.clampCursor()
		return m, nil

	case reconcileDoneMsg:
		if msg.err != nil {
			m.status = "restore failed: " + msg.err.Error()
		}
		m.token = session.EncodeCollection(m.coll)
		return m, nil

	case tickMsg:
		now := time.Time(msg)
		isToday := m.dateKey == civil.FromTime(now).DateKey()
		m.coll.TickClocks(now, isToday)
		return m, tickCmd()
	}

	return m, tea.Batch(cmds...)
}

func (m model) stepDate(days int) (tea.Model, tea.Cmd) {
	year, month, day, err := civil.ParseDateKey(m.dateKey)
	if err != nil {
		return m, nil
	}
	next := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, days)
	m.dateKey = civil.FromTime(next).DateKey()
	m.pending++
	return m, m.changeDateCmd(m.dateKey)
}

func (m model) selectedRow() *table.Row {
	rows := m.coll.Rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return nil
	}
	return rows[m.cursor]
}

func (m *model) clampCursor() {
	if n := m.coll.Len(); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// commands

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) addZoneCmd(query string) tea.Cmd {
	coll := m.coll
	return func() tea.Msg {
		_, err := coll.AddByKey(context.Background(), query)
		return addResultMsg{query: query, err: err}
	}
}

func (m model) removeCmd(key string) tea.Cmd {
	coll := m.coll
	return func() tea.Msg {
		coll.Remove(context.Background(), key)
		return opDoneMsg{}
	}
}

func (m model) setHomeCmd(key string) tea.Cmd {
	coll := m.coll
	return func() tea.Msg {
		coll.SetHome(context.Background(), key)
		return opDoneMsg{}
	}
}

func (m model) changeDateCmd(dateKey string) tea.Cmd {
	coll := m.coll
	return func() tea.Msg {
		coll.ChangeDate(context.Background(), dateKey)
		return opDoneMsg{}
	}
}

func scheduleDebouncedSuggest(query string) tea.Cmd {
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceTickMsg{query: query}
	})
}

func (m model) suggestCmd(query string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		zones, err := svc.ResolveZoneSuggestions(context.Background(), query, suggestLimit)
		if err != nil {
			zones = nil
		}
		return suggestMsg{query: query, zones: zones}
	}
}

// View renders the full TUI.
func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	header := m.headerLine()
	inputRow := m.zoneInput.View()
	suggestRow := m.suggestLine()

	tableContent := m.renderTable(m.tableWidth(), m.tableHeight())
	tablePanel := stylePanelBorder.
		Width(m.tableWidth()).
		Render(tableContent)

	status := m.statusBar()

	return lipgloss.JoinVertical(lipgloss.Left,
		header, inputRow, suggestRow, tablePanel, status)
}

func (m model) headerLine() string {
	dateLabel := m.dateKey
	if year, month, day, err := civil.ParseDateKey(m.dateKey); err == nil {
		dt := civil.DateTime{Year: year, Month: month, Day: day}
		dateLabel = fmt.Sprintf("%s %d, %d", dt.MonthName(), dt.Day, dt.Year)
	}
	if m.dateKey == civil.Now().DateKey() {
		dateLabel += " (today)"
	}
	if m.pending > 0 {
		dateLabel += "  fetching..."
	}
	return styleTitle.Render("tzsched  " + dateLabel)
}

func (m model) suggestLine() string {
	if len(m.suggestions) == 0 {
		if m.status != "" {
			return styleError.Render("  " + m.status)
		}
		return ""
	}
	parts := make([]string, 0, len(m.suggestions))
	for i, z := range m.suggestions {
		if i == m.sugCursor {
			parts = append(parts, styleSuggestSel.Render(z.FullName))
		} else {
			parts = append(parts, styleSuggest.Render(z.FullName))
		}
	}
	return "  " + strings.Join(parts, styleSuggest.Render(" | "))
}

func (m model) tableWidth() int {
	if m.width <= 0 {
		return 100
	}
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	return w
}

func (m model) tableHeight() int {
	if m.height <= 0 {
		return 20
	}
	// header (1) + input (1) + suggestions (1) + borders (2) + status (1)
	h := m.height - 6
	if h < 4 {
		h = 4
	}
	return h
}

func (m model) statusBar() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%d zones", m.coll.Len()))
	if m.token != "" {
		parts = append(parts, "tz="+m.token)
	}
	parts = append(parts, "C-g home | C-d remove | C-o/C-n sort | arrows day/row | C-y link | esc quit")
	return styleStatusBar.Render(strings.Join(parts, "  ·  "))
}
