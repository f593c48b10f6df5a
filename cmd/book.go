package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"court-booking-tui/booking"
	"court-booking-tui/model"
	"court-booking-tui/store"
)

// promptName asks for the player name when --name is omitted. Swapped in tests.
var promptName = func() (string, error) {
	prompt := promptui.Prompt{
		Label: "Your name",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("name is required")
			}
			return nil
		},
	}
	return prompt.Run()
}

func newBookCmd(opts *options) *cobra.Command {
	var (
		courtID int
		slot    string
		name    string
	)
	c := &cobra.Command{
		Use:   "book",
		Short: "Book a slot or join one as the opponent",
		Long: `Claim an hour on a court for today. If someone already holds the slot
you are booked as their opponent; full slots are refused.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !model.IsTimeSlot(slot) {
				return fmt.Errorf("invalid --time %q, expected one of %s", slot, strings.Join(model.TimeSlots, ", "))
			}

			log := opts.consoleLogger(cmd)
			client := opts.newClient(log)
			board, err := booking.Load(cmd.Context(), client, booking.Board{})
			if err != nil {
				if !errors.Is(err, booking.ErrPartialLoad) {
					log.Error().Err(err).Msg("failed to load courts")
					return errors.New(booking.LoadMessage(err))
				}
				log.Warn().Err(err).Msg("bookings unavailable, the server will check the slot")
			}
			court, ok := board.Court(courtID)
			if !ok {
				return fmt.Errorf("court %d not found", courtID)
			}
			draft, err := booking.Start(board, court, slot)
			if err != nil {
				return errors.New(booking.SubmitMessage(err))
			}

			if strings.TrimSpace(name) == "" {
				if name, err = promptName(); err != nil {
					return fmt.Errorf("read name: %w", err)
				}
			}
			draft.PlayerName = name

			result, err := booking.Submit(cmd.Context(), client, draft, now())
			if err != nil {
				log.Warn().Err(err).Int("court_id", courtID).Str("time", slot).Msg("booking not created")
				return errors.New(booking.SubmitMessage(err))
			}
			if err := store.RememberPlayer(draft.PlayerName); err != nil {
				log.Warn().Err(err).Msg("could not save player name")
			}
			log.Info().Int("court_id", courtID).Str("time", slot).Msg("booking created")
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}
	c.Flags().IntVar(&courtID, "court", 0, "court ID")
	c.Flags().StringVar(&slot, "time", "", "hour to book, e.g. 08:00")
	c.Flags().StringVar(&name, "name", "", "player name (prompted when omitted)")
	_ = c.MarkFlagRequired("court")
	_ = c.MarkFlagRequired("time")
	return c
}
