package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"court-booking-tui/booking"
	"court-booking-tui/model"
	"court-booking-tui/service"
	"court-booking-tui/store"
)

type appState int

const (
	stateLoading appState = iota
	stateBoard
	stateBookingForm
	stateBookings
	stateManageCourts
	stateNotice
)

type appModel struct {
	api    booking.API
	apiURL string
	log    zerolog.Logger
	now    func() time.Time

	state     appState
	lastState appState

	noticeText  string
	noticeError bool

	width  int
	height int

	board      booking.Board
	loading    bool
	draft      booking.Draft
	submitting bool

	cursorCourt int
	cursorSlot  int

	hiddenCourts  map[int]bool
	recentPlayers []string
	recentIndex   int

	nameInput   textinput.Model
	bookingList list.Model
	courtPref   list.Model
	spinner     spinner.Model
}

type loadedMsg struct {
	board booking.Board
	err   error
}

type bookedMsg struct {
	result model.BookingResult
	name   string
	err    error
}

// New builds the booking view for client. Logs go to log; the terminal belongs to the UI.
func New(client *service.Client, log zerolog.Logger) tea.Model {
	return newModel(client, client.BaseURL(), log, time.Now)
}

func newModel(api booking.API, apiURL string, log zerolog.Logger, now func() time.Time) appModel {
	m := appModel{
		api:          api,
		apiURL:       apiURL,
		log:          log,
		now:          now,
		state:        stateLoading,
		loading:      true,
		hiddenCourts: make(map[int]bool),
	}

	m.bookingList = newList("Bookings")
	m.courtPref = newList("Visible Courts")

	ti := textinput.New()
	ti.Placeholder = "Your name"
	ti.CharLimit = 100
	ti.Prompt = "› "
	m.nameInput = ti

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	m.spinner = sp

	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.spinner.Tick)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		if m.handleFilterInput(msg) {
			return m, nil
		}
		var (
			cmd     tea.Cmd
			handled bool
		)
		m, cmd, handled = m.handleKey(msg)
		if handled {
			return m, cmd
		}
		// fallthrough to component update
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.loading || m.submitting {
			return m, cmd
		}
		return m, nil

	case loadedMsg:
		return m.applyLoad(msg)

	case bookedMsg:
		return m.applyBooking(msg)
	}

	var cmd tea.Cmd
	switch m.state {
	case stateBookingForm:
		m.nameInput, cmd = m.nameInput.Update(msg)
		m.draft.PlayerName = m.nameInput.Value()
	case stateBookings:
		m.bookingList, cmd = m.bookingList.Update(msg)
	case stateManageCourts:
		m.courtPref, cmd = m.courtPref.Update(msg)
	}
	return m, cmd
}

func (m appModel) applyLoad(msg loadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	m.board = msg.board

	hidden, err := store.LoadHiddenCourts(m.apiURL)
	if err != nil {
		m.log.Warn().Err(err).Msg("could not read court visibility")
	} else {
		m.hiddenCourts = hidden
	}
	m.refreshLists()
	m.clampCursor()

	if m.state == stateLoading {
		m.state = stateBoard
	}

	if msg.err != nil {
		m.log.Error().Err(msg.err).
			Bool("partial", errors.Is(msg.err, booking.ErrPartialLoad)).
			Msg("failed to load courts and bookings")
		text := booking.LoadMessage(msg.err)
		if m.state == stateNotice {
			// A booking confirmation is on screen; keep it and add the failure.
			m.noticeText = m.noticeText + "\n\n" + text
			m.noticeError = true
			return m, nil
		}
		return m.showNotice(text, true, m.state), nil
	}

	m.log.Debug().Int("courts", len(m.board.Courts)).Int("bookings", len(m.board.Bookings)).Msg("board loaded")
	return m, nil
}

func (m appModel) applyBooking(msg bookedMsg) (tea.Model, tea.Cmd) {
	m.submitting = false
	if msg.err != nil {
		m.log.Warn().Err(msg.err).
			Int("court_id", m.draft.Court.ID).
			Str("time", m.draft.Time).
			Msg("booking rejected")
		m = m.showNotice(booking.SubmitMessage(msg.err), true, stateBookingForm)
		// A 2xx reply that could not be read may still have created the booking.
		var decodeErr *service.DecodeError
		if errors.As(msg.err, &decodeErr) && !m.loading {
			m.loading = true
			return m, tea.Batch(m.loadCmd(), m.spinner.Tick)
		}
		return m, nil
	}

	m.log.Info().
		Int("court_id", m.draft.Court.ID).
		Str("time", m.draft.Time).
		Str("player", msg.name).
		Msg("booking confirmed")
	if err := store.RememberPlayer(msg.name); err != nil {
		m.log.Warn().Err(err).Msg("could not remember player name")
	}

	m.closeForm()
	m = m.showNotice(msg.result.Message, false, stateBoard)
	m.loading = true
	return m, tea.Batch(m.loadCmd(), m.spinner.Tick)
}

func (m appModel) handleKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit, true
	}

	switch m.state {
	case stateNotice:
		m.state = m.lastState
		m.noticeText = ""
		m.noticeError = false
		if m.state == stateBookingForm {
			return m, m.nameInput.Focus(), true
		}
		return m, nil, true
	case stateBookingForm:
		return m.handleFormKey(msg)
	case stateLoading:
		if msg.String() == "q" {
			return m, tea.Quit, true
		}
		return m, nil, true
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit, true
	case "esc":
		if listPtr := m.activeList(); listPtr != nil {
			if listPtr.SettingFilter() || listPtr.IsFiltered() {
				listPtr.ResetFilter()
				return m, nil, true
			}
		}
		return m.goBack(), nil, true
	case "r", "ctrl+r":
		if m.state == stateBoard || m.state == stateBookings {
			return m.reload()
		}
	case "b":
		if m.state == stateBoard {
			m.state = stateBookings
			return m, nil, true
		}
		if m.state == stateBookings {
			m.state = stateBoard
			return m, nil, true
		}
	case "ctrl+t":
		if m.state == stateBoard {
			m.refreshLists()
			m.state = stateManageCourts
			return m, nil, true
		}
	case "x", "enter":
		if m.state == stateManageCourts {
			return m.toggleCourtVisibility()
		}
	}

	if m.state == stateBoard {
		switch msg.String() {
		case "up", "k":
			m.moveCursor(-1, 0)
			return m, nil, true
		case "down", "j":
			m.moveCursor(1, 0)
			return m, nil, true
		case "left", "h":
			m.moveCursor(0, -1)
			return m, nil, true
		case "right", "l":
			m.moveCursor(0, 1)
			return m, nil, true
		case "enter", " ":
			return m.startBookingAtCursor()
		}
	}
	return m, nil, false
}

func (m appModel) handleFormKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "esc":
		// The pending reply still refers to this draft.
		if m.submitting {
			return m, nil, true
		}
		m.closeForm()
		m.state = stateBoard
		return m, nil, true
	case "enter":
		return m.makeBooking()
	case "ctrl+r":
		if len(m.recentPlayers) == 0 {
			return m, nil, true
		}
		name := m.recentPlayers[m.recentIndex%len(m.recentPlayers)]
		m.recentIndex++
		m.nameInput.SetValue(name)
		m.nameInput.CursorEnd()
		m.draft.PlayerName = name
		return m, nil, true
	}
	return m, nil, false
}

func (m appModel) reload() (appModel, tea.Cmd, bool) {
	if m.loading {
		return m, nil, true
	}
	m.loading = true
	return m, tea.Batch(m.loadCmd(), m.spinner.Tick), true
}

func (m appModel) startBookingAtCursor() (appModel, tea.Cmd, bool) {
	courts := m.visibleCourts()
	if len(courts) == 0 {
		return m, nil, true
	}
	court := courts[m.cursorCourt]
	slot := model.TimeSlots[m.cursorSlot]

	draft, err := booking.Start(m.board, court, slot)
	if err != nil {
		// Full slots are disabled.
		return m, nil, true
	}
	m.draft = draft
	m.nameInput.Reset()
	m.recentIndex = 0
	players, err := store.LoadRecentPlayers()
	if err != nil {
		m.log.Warn().Err(err).Msg("could not read player history")
	}
	m.recentPlayers = players
	m.state = stateBookingForm
	return m, m.nameInput.Focus(), true
}

func (m appModel) makeBooking() (appModel, tea.Cmd, bool) {
	if m.submitting {
		return m, nil, true
	}
	m.draft.PlayerName = m.nameInput.Value()
	if _, err := m.draft.Request(m.now()); err != nil {
		m.log.Info().Err(err).Msg("booking form incomplete")
		return m.showNotice(booking.SubmitMessage(err), true, stateBookingForm), nil, true
	}
	m.submitting = true
	return m, tea.Batch(m.submitCmd(m.draft), m.spinner.Tick), true
}

func (m *appModel) closeForm() {
	m.draft = booking.Draft{}
	m.nameInput.Reset()
	m.nameInput.Blur()
	m.recentIndex = 0
}

func (m appModel) showNotice(text string, isError bool, returnState appState) appModel {
	if strings.TrimSpace(text) == "" {
		text = "Done"
	}
	m.noticeText = text
	m.noticeError = isError
	m.lastState = returnState
	m.state = stateNotice
	m.nameInput.Blur()
	return m
}

func (m appModel) goBack() appModel {
	switch m.state {
	case stateBookings, stateManageCourts:
		m.state = stateBoard
	}
	return m
}

func (m appModel) toggleCourtVisibility() (appModel, tea.Cmd, bool) {
	item, ok := m.courtPref.SelectedItem().(courtVisibilityItem)
	if !ok {
		return m, nil, true
	}
	hidden := !m.hiddenCourts[item.court.ID]
	if err := store.SetCourtHidden(m.apiURL, item.court.ID, hidden); err != nil {
		m.log.Error().Err(err).Int("court_id", item.court.ID).Msg("could not save court visibility")
		return m.showNotice("Could not save court visibility", true, stateManageCourts), nil, true
	}
	if hidden {
		m.hiddenCourts[item.court.ID] = true
	} else {
		delete(m.hiddenCourts, item.court.ID)
	}
	index := m.courtPref.Index()
	m.refreshLists()
	m.courtPref.Select(index)
	m.clampCursor()
	return m, nil, true
}

func (m *appModel) moveCursor(dCourt int, dSlot int) {
	courts := m.visibleCourts()
	if len(courts) == 0 {
		return
	}
	m.cursorCourt = clamp(m.cursorCourt+dCourt, 0, len(courts)-1)
	m.cursorSlot = clamp(m.cursorSlot+dSlot, 0, len(model.TimeSlots)-1)
}

func (m *appModel) clampCursor() {
	courts := m.visibleCourts()
	if len(courts) == 0 {
		m.cursorCourt = 0
	} else {
		m.cursorCourt = clamp(m.cursorCourt, 0, len(courts)-1)
	}
	m.cursorSlot = clamp(m.cursorSlot, 0, len(model.TimeSlots)-1)
}

func (m appModel) visibleCourts() []model.Court {
	visible := make([]model.Court, 0, len(m.board.Courts))
	for _, court := range m.board.Courts {
		if m.hiddenCourts[court.ID] {
			continue
		}
		visible = append(visible, court)
	}
	return visible
}

func (m *appModel) refreshLists() {
	m.bookingList.SetItems(buildBookingItems(m.board.Bookings))
	m.courtPref.SetItems(buildCourtVisibilityItems(m.board.Courts, m.hiddenCourts))
}

func (m *appModel) handleFilterInput(msg tea.KeyMsg) bool {
	listPtr := m.activeList()
	if listPtr == nil {
		return false
	}
	if !listPtr.FilteringEnabled() {
		return false
	}
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return false
		}
		// Single letter shortcuts stay commands until a filter is being typed.
		if listPtr.FilterValue() == "" && isShortcut(m.state, string(msg.Runes)) {
			return false
		}
		m.appendFilter(listPtr, string(msg.Runes))
		return true
	case tea.KeySpace:
		if listPtr.FilterValue() == "" {
			return false
		}
		m.appendFilter(listPtr, " ")
		return true
	case tea.KeyBackspace, tea.KeyDelete:
		if listPtr.FilterValue() == "" {
			return false
		}
		m.popFilter(listPtr)
		return true
	default:
		return false
	}
}

func isShortcut(state appState, key string) bool {
	switch state {
	case stateBookings:
		return key == "q" || key == "b" || key == "r"
	case stateManageCourts:
		return key == "q" || key == "x"
	}
	return false
}

func (m *appModel) appendFilter(listPtr *list.Model, value string) {
	if value == "" {
		return
	}
	current := listPtr.FilterValue()
	listPtr.SetFilterText(current + value)
}

func (m *appModel) popFilter(listPtr *list.Model) {
	value := listPtr.FilterValue()
	if value == "" {
		return
	}
	value = trimLastRune(value)
	if value == "" {
		listPtr.ResetFilter()
		return
	}
	listPtr.SetFilterText(value)
}

func trimLastRune(value string) string {
	runes := []rune(value)
	if len(runes) <= 1 {
		return ""
	}
	return string(runes[:len(runes)-1])
}

func (m *appModel) activeList() *list.Model {
	switch m.state {
	case stateBookings:
		return &m.bookingList
	case stateManageCourts:
		return &m.courtPref
	default:
		return nil
	}
}

func (m *appModel) resizeLists() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 6
	if h < 6 {
		h = 6
	}
	m.bookingList.SetSize(m.width, h)
	m.courtPref.SetSize(m.width, h)
	w := m.width - 10
	if w > 60 {
		w = 60
	}
	if w > 10 {
		m.nameInput.Width = w
	}
}

func (m appModel) loadCmd() tea.Cmd {
	api := m.api
	prev := m.board
	return func() tea.Msg {
		ctx := context.Background()
		board, err := booking.Load(ctx, api, prev)
		return loadedMsg{board: board, err: err}
	}
}

func (m appModel) submitCmd(draft booking.Draft) tea.Cmd {
	api := m.api
	now := m.now()
	return func() tea.Msg {
		ctx := context.Background()
		result, err := booking.Submit(ctx, api, draft, now)
		return bookedMsg{result: result, name: strings.TrimSpace(draft.PlayerName), err: err}
	}
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.Filter = caseInsensitiveFilter
	l.SetFilteringEnabled(true)
	l.SetShowFilter(true)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return l
}

func caseInsensitiveFilter(term string, targets []string) []list.Rank {
	term = strings.ToLower(term)
	lower := make([]string, len(targets))
	for i, t := range targets {
		lower[i] = strings.ToLower(t)
	}
	return list.DefaultFilter(term, lower)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
