package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"court-booking-tui/booking"
	"court-booking-tui/model"
	"court-booking-tui/service"
)

func newAvailabilityCmd(opts *options) *cobra.Command {
	var (
		courtID int
		date    string
	)
	c := &cobra.Command{
		Use:   "availability",
		Short: "Show the hourly slots of one court",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = booking.FormatDate(now())
			}
			if _, err := time.Parse(booking.DateLayout, date); err != nil {
				return fmt.Errorf("invalid --date %q, expected DD/MM/YYYY", date)
			}

			log := opts.consoleLogger(cmd)
			client := opts.newClient(log)
			court, err := client.GetCourt(cmd.Context(), courtID)
			if service.IsNotFound(err) {
				return fmt.Errorf("court %d not found", courtID)
			}
			if err != nil {
				log.Error().Err(err).Int("court_id", courtID).Msg("failed to load court")
				return fmt.Errorf("load court: %w", err)
			}
			slots, err := client.GetAvailability(cmd.Context(), courtID, date)
			if err != nil {
				log.Error().Err(err).Int("court_id", courtID).Msg("failed to load availability")
				return fmt.Errorf("load availability: %w", err)
			}
			renderAvailability(cmd.OutOrStdout(), court, date, slots)
			return nil
		},
	}
	c.Flags().IntVar(&courtID, "court", 0, "court ID")
	c.Flags().StringVar(&date, "date", "", "day to check as DD/MM/YYYY (default today)")
	_ = c.MarkFlagRequired("court")
	return c
}

func availabilityState(slot model.SlotAvailability, found bool) booking.SlotState {
	switch {
	case !found || slot.PlayersCount == 0:
		return booking.SlotOpen
	case slot.PlayersCount >= model.MaxPlayers || !slot.Available:
		return booking.SlotFull
	default:
		return booking.SlotHalfFilled
	}
}

func renderAvailability(out io.Writer, court model.Court, date string, slots map[string]model.SlotAvailability) {
	fmt.Fprintf(out, "%s - %s\n", court.Name, date)
	t := newTable(out, table.Row{"Time", "State", "Players"})
	for _, slot := range model.TimeSlots {
		info, found := slots[slot]
		state := availabilityState(info, found)
		players := strings.Join(info.Players, " vs ")
		if state != booking.SlotOpen {
			players = fmt.Sprintf("%s (%d/%d)", players, info.PlayersCount, model.MaxPlayers)
		}
		t.AppendRow(table.Row{slot, state.String(), players})
	}
	t.Render()
}
