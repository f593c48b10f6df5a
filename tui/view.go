package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"court-booking-tui/booking"
	"court-booking-tui/model"
)

const slotCellWidth = 7

var (
	openStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Width(slotCellWidth).
			Align(lipgloss.Center)
	halfStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("229")).
			Width(slotCellWidth).
			Align(lipgloss.Center)
	fullStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Faint(true).
			Strikethrough(true).
			Width(slotCellWidth).
			Align(lipgloss.Center)
	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("111")).
			Padding(0, 1)
)

func (m appModel) View() string {
	header := m.headerView()
	switch m.state {
	case stateLoading:
		return header + "\n\n" + m.loadingView()
	case stateBoard:
		return header + "\n\n" + m.boardView()
	case stateBookingForm:
		return header + "\n\n" + m.formView()
	case stateBookings:
		if len(m.board.Bookings) == 0 {
			return header + "\n\n" + hint("No bookings yet.")
		}
		return header + "\n\n" + m.bookingList.View()
	case stateManageCourts:
		return header + "\n\n" + m.courtPref.View()
	case stateNotice:
		return header + "\n\n" + m.noticeView()
	default:
		return header
	}
}

func (m appModel) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Render("Tennis Court Booking")
	sub := []string{"Book a court and find an opponent"}
	if m.apiURL != "" {
		sub = append(sub, "Server: "+m.apiURL)
	}
	if hidden := len(m.hiddenCourts); hidden > 0 {
		sub = append(sub, fmt.Sprintf("%d hidden", hidden))
	}
	if m.loading && m.state != stateLoading {
		sub = append(sub, m.spinner.View()+" refreshing")
	}
	meta := "\n" + lipgloss.NewStyle().Faint(true).Render(strings.Join(sub, " • "))

	hints := "ctrl+c quit"
	switch m.state {
	case stateBoard:
		hints = "q quit • arrows move • enter book • b bookings • r reload • ctrl+t manage courts"
	case stateBookingForm:
		hints = "ctrl+c quit • enter confirm • esc cancel • ctrl+r recent names"
	case stateBookings:
		hints = "q quit • esc/b back • type to filter • r reload"
	case stateManageCourts:
		hints = "q quit • esc back • type to filter • enter/x toggle court visibility"
	case stateNotice:
		hints = "press any key to continue"
	}
	filterLine := ""
	if listPtr := m.activeList(); listPtr != nil {
		if filter := listPtr.FilterValue(); filter != "" {
			filterLine = "\n" + hint(fmt.Sprintf("Filter: %s", filter))
		}
	}
	return title + meta + filterLine + "\n" + hint(hints)
}

func (m appModel) loadingView() string {
	return fmt.Sprintf("%s Loading...\n\n%s", m.spinner.View(), hint("Fetching courts and bookings"))
}

func (m appModel) boardView() string {
	courts := m.visibleCourts()
	if len(courts) == 0 {
		if len(m.board.Courts) > 0 {
			return hint("All courts are hidden. Press ctrl+t to show them again.") + "\n\n" + legendView()
		}
		return hint("No courts available.") + "\n\n" + legendView()
	}

	perRow := len(model.TimeSlots)
	if m.width > 0 {
		perRow = max(1, (m.width-4)/slotCellWidth)
		perRow = min(perRow, len(model.TimeSlots))
	}

	cards := make([]string, 0, len(courts))
	for ci, court := range courts {
		cards = append(cards, m.courtCard(court, ci, perRow))
	}
	return strings.Join(cards, "\n") + "\n" + legendView()
}

func (m appModel) courtCard(court model.Court, courtIndex int, perRow int) string {
	title := lipgloss.NewStyle().Bold(true).Render(court.Name)
	meta := []string{}
	if court.Type != "" {
		meta = append(meta, badgeStyle.Render(court.Type))
	}
	if court.Location != "" {
		meta = append(meta, hint(court.Location))
	}
	head := title
	if len(meta) > 0 {
		head += "  " + strings.Join(meta, " ")
	}

	var rows []string
	var row []string
	for si, slot := range model.TimeSlots {
		selected := courtIndex == m.cursorCourt && si == m.cursorSlot
		row = append(row, m.slotCell(court.ID, slot, selected))
		if len(row) == perRow {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	border := lipgloss.Color("240")
	if courtIndex == m.cursorCourt {
		border = lipgloss.Color("2")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Render(head + "\n" + strings.Join(rows, "\n"))
}

func (m appModel) slotCell(courtID int, slot string, selected bool) string {
	info, hasBooking := m.board.BookingInfo(courtID, slot)
	occupancy := ""
	if hasBooking {
		occupancy = fmt.Sprintf("%d/%d", len(info.Players), model.MaxPlayers)
	}

	var style lipgloss.Style
	switch m.board.SlotState(courtID, slot) {
	case booking.SlotFull:
		style = fullStyle
	case booking.SlotHalfFilled:
		style = halfStyle
	default:
		style = openStyle
	}
	if selected {
		style = style.Bold(true).Reverse(true)
	}
	return style.Render(slot + "\n" + occupancy)
}

func legendView() string {
	items := []string{
		openStyle.UnsetWidth().Render("08:00") + " available",
		halfStyle.UnsetWidth().Render("08:00") + " 1 player (join as opponent)",
		fullStyle.UnsetWidth().Render("08:00") + " taken (2 players)",
	}
	return hint("Legend: ") + strings.Join(items, "   ")
}

func (m appModel) formView() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")).Render("Make a booking")
	desc := fmt.Sprintf("%s - %s", m.draft.Court.Name, m.draft.Time)
	if opponent, ok := m.board.Opponent(m.draft.Court.ID, m.draft.Time); ok {
		desc += fmt.Sprintf(" (Opponent: %s)", opponent)
	}

	lines := []string{
		title,
		hint(desc),
		"",
		"Your name",
		m.nameInput.View(),
	}
	if len(m.recentPlayers) > 0 {
		lines = append(lines, "", hint("Recent: "+strings.Join(m.recentPlayers, ", ")))
	}
	if m.submitting {
		lines = append(lines, "", m.spinner.View()+" Sending booking...")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("2")).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}

func (m appModel) noticeView() string {
	color := lipgloss.Color("2")
	label := "OK"
	if m.noticeError {
		color = lipgloss.Color("1")
		label = "Error"
	}
	chip := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(color).
		Padding(0, 2).
		Render(label)
	body := lipgloss.NewStyle().Foreground(color).Bold(true).Render(m.noticeText)

	panelStyle := lipgloss.NewStyle().
		Padding(1, 3).
		Border(lipgloss.NormalBorder()).
		BorderForeground(color)
	if m.width > 40 {
		panelStyle = panelStyle.Width(min(m.width-8, 72))
	}
	panel := panelStyle.Render(chip + "\n\n" + body + "\n\n" + hint("Press any key to continue."))
	if m.width > 0 {
		panel = lipgloss.PlaceHorizontal(m.width, lipgloss.Center, panel)
	}
	return panel
}

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}

type bookingItem struct {
	booking model.Booking
}

func (b bookingItem) Title() string {
	parts := []string{b.booking.CourtName, b.booking.Time}
	if b.booking.Date != "" {
		parts = append(parts, b.booking.Date)
	}
	return strings.Join(parts, " • ")
}

func (b bookingItem) Description() string {
	status := "waiting for opponent"
	if b.booking.Full() {
		status = "match complete"
	}
	return fmt.Sprintf("%s • %s", strings.Join(b.booking.Players, " vs "), status)
}

func (b bookingItem) FilterValue() string {
	return strings.ToLower(strings.Join(append([]string{b.booking.CourtName, b.booking.Time, b.booking.Date}, b.booking.Players...), " "))
}

func buildBookingItems(bookings []model.Booking) []list.Item {
	items := make([]list.Item, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, bookingItem{booking: b})
	}
	return items
}

type courtVisibilityItem struct {
	court  model.Court
	hidden bool
}

func (c courtVisibilityItem) Title() string {
	if c.hidden {
		return "[ ] " + c.court.Name
	}
	return "[x] " + c.court.Name
}

func (c courtVisibilityItem) Description() string {
	parts := []string{}
	if c.court.Type != "" {
		parts = append(parts, c.court.Type)
	}
	if c.court.Location != "" {
		parts = append(parts, c.court.Location)
	}
	if c.hidden {
		parts = append(parts, "hidden")
	} else {
		parts = append(parts, "visible")
	}
	return strings.Join(parts, " • ")
}

func (c courtVisibilityItem) FilterValue() string {
	return strings.ToLower(strings.Join([]string{c.court.Name, c.court.Type, c.court.Location}, " "))
}

func buildCourtVisibilityItems(courts []model.Court, hidden map[int]bool) []list.Item {
	items := make([]list.Item, 0, len(courts))
	for _, court := range courts {
		items = append(items, courtVisibilityItem{court: court, hidden: hidden[court.ID]})
	}
	return items
}
