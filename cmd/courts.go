package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"court-booking-tui/model"
	"court-booking-tui/store"
)

func newCourtsCmd(opts *options) *cobra.Command {
	var offline bool
	c := &cobra.Command{
		Use:   "courts",
		Short: "List courts",
		Long:  `List every court known to the server. With --offline the last list fetched in the past 24h is shown instead.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := opts.consoleLogger(cmd)

			if offline {
				courts, fresh, err := store.LoadCourtCache(opts.cfg.APIURL)
				if err != nil {
					return fmt.Errorf("read court cache: %w", err)
				}
				if !fresh {
					return errors.New("no recent court list cached for this server, run without --offline first")
				}
				renderCourts(cmd.OutOrStdout(), courts)
				return nil
			}

			courts, err := opts.newClient(log).GetCourts(cmd.Context())
			if err != nil {
				log.Error().Err(err).Msg("failed to load courts")
				return fmt.Errorf("load courts: %w", err)
			}
			if err := store.SaveCourtCache(opts.cfg.APIURL, courts); err != nil {
				log.Warn().Err(err).Msg("could not cache courts")
			}
			renderCourts(cmd.OutOrStdout(), courts)
			return nil
		},
	}
	c.Flags().BoolVar(&offline, "offline", false, "show the cached court list without calling the server")
	return c
}

func renderCourts(out io.Writer, courts []model.Court) {
	if len(courts) == 0 {
		fmt.Fprintln(out, "No courts available.")
		return
	}
	t := newTable(out, table.Row{"ID", "Court", "Type", "Location"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 30},
	})
	for _, court := range courts {
		t.AppendRow(table.Row{court.ID, court.Name, court.Type, court.Location})
	}
	t.Render()
}
