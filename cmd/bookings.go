package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"court-booking-tui/model"
)

func newBookingsCmd(opts *options) *cobra.Command {
	var waiting bool
	c := &cobra.Command{
		Use:   "bookings",
		Short: "List active bookings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := opts.consoleLogger(cmd)
			bookings, err := opts.newClient(log).GetBookings(cmd.Context())
			if err != nil {
				log.Error().Err(err).Msg("failed to load bookings")
				return fmt.Errorf("load bookings: %w", err)
			}
			if waiting {
				open := bookings[:0]
				for _, b := range bookings {
					if !b.Full() {
						open = append(open, b)
					}
				}
				bookings = open
			}
			renderBookings(cmd.OutOrStdout(), bookings)
			return nil
		},
	}
	c.Flags().BoolVar(&waiting, "waiting", false, "only show bookings still waiting for an opponent")
	return c
}

func renderBookings(out io.Writer, bookings []model.Booking) {
	if len(bookings) == 0 {
		fmt.Fprintln(out, "No bookings yet.")
		return
	}
	rowConfigAutoMerge := table.RowConfig{AutoMerge: true}
	t := newTable(out, table.Row{"Court", "Date", "Time", "Players", "Status"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true, WidthMax: 20},
		{Number: 2, AutoMerge: true},
	})
	for _, b := range bookings {
		status := "waiting for opponent"
		if b.Full() {
			status = "match complete"
		}
		t.AppendRow(table.Row{b.CourtName, b.Date, b.Time, strings.Join(b.Players, " vs "), status}, rowConfigAutoMerge)
	}
	t.Render()
}
