// Package cmd wires configuration, logging and the API client into the
// interactive TUI and the scriptable subcommands.
package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"court-booking-tui/config"
	"court-booking-tui/logging"
	"court-booking-tui/service"
	"court-booking-tui/tui"
)

// Swapped in tests.
var now = time.Now

type buildInfo struct {
	Version string
	Commit  string
}

type options struct {
	envFile string
	apiURL  string
	cfg     *config.Config
}

// Execute runs the root command and exits non-zero on failure.
func Execute(version, commit string) {
	if err := newRootCmd(buildInfo{Version: version, Commit: commit}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(build buildInfo) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Tennis court booking from the terminal",
		Long: `Browse courts, see which hours are open or waiting for an opponent
and book a slot. Without a subcommand the interactive board is started.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file with COURT_* settings (ignored when missing)")
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "API root, overrides COURT_API_URL")

	root.AddCommand(
		newCourtsCmd(opts),
		newBookingsCmd(opts),
		newAvailabilityCmd(opts),
		newBookCmd(opts),
		newVersionCmd(build),
	)
	return root
}

func (o *options) load() error {
	cfg, err := config.LoadWithFile(o.envFile)
	if err != nil {
		return err
	}
	if o.apiURL != "" {
		cfg.APIURL = strings.TrimRight(strings.TrimSpace(o.apiURL), "/")
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	o.cfg = cfg
	return nil
}

func (o *options) consoleLogger(cmd *cobra.Command) zerolog.Logger {
	return logging.NewConsole(cmd.ErrOrStderr(), o.cfg.LogLevel)
}

func (o *options) newClient(log zerolog.Logger) *service.Client {
	return service.NewClient(
		&http.Client{Timeout: o.cfg.HTTPTimeout},
		service.WithBaseURL(o.cfg.APIURL),
		service.WithMaxAttempts(o.cfg.MaxAttempts),
		service.WithLogger(log),
	)
}

// runTUI logs to a file since the program owns the terminal.
func runTUI(cmd *cobra.Command, opts *options) error {
	log, file, err := logging.NewFile(opts.cfg.LogFile, opts.cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "logging disabled: %v\n", err)
		log = zerolog.Nop()
	} else {
		defer file.Close()
	}
	log.Info().Str("api_url", opts.cfg.APIURL).Msg("starting board")

	client := opts.newClient(log)
	if _, err := tea.NewProgram(tui.New(client, log), tea.WithAltScreen()).Run(); err != nil {
		log.Error().Err(err).Msg("program exited with error")
		return err
	}
	return nil
}

func newTable(out io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(header)
	t.Style().Options.SeparateRows = true
	return t
}
