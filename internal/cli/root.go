// Package cli implements ticketctl, the command line front end for ticket
// workbooks and the ticket store.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ticketsheet/internal/config"
	"github.com/JonMunkholm/ticketsheet/internal/core"
	"github.com/JonMunkholm/ticketsheet/internal/logging"
	"github.com/JonMunkholm/ticketsheet/internal/store"
	"github.com/JonMunkholm/ticketsheet/internal/workbook"
)

// RootCmd returns the ticketctl root command with all subcommands attached.
func RootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "ticketctl",
		Short: "Normalize, deduplicate and store ticket spreadsheets",
		Long: `ticketctl reads ticket exports (.xlsx, .xls, .csv), removes duplicate
ticket numbers, sorts sheets, saves canonical tickets to the store and
lists stored tickets.

Store settings come from the environment (and .env), exactly as for the
server: STORE_DRIVER, DATABASE_URL, SQLITE_PATH, STORE_TABLE.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Logs go to stderr so command output stays clean.
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), logLevel, "text"))
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	root.AddCommand(InspectCmd())
	root.AddCommand(DedupeCmd())
	root.AddCommand(SortCmd())
	root.AddCommand(ImportCmd())
	root.AddCommand(ListCmd())
	return root
}

// Describe renders err for the terminal with its support code.
func Describe(err error) string {
	if core.IsUserFacing(err) {
		return color.New(color.FgRed).Sprint("error: ") + core.FormatUserError(err) + "\n  " + err.Error()
	}
	return color.New(color.FgRed).Sprint("error: ") + err.Error()
}

// loadSheet reads path and selects sheet, or the first sheet when empty.
func loadSheet(ctx context.Context, path, sheet string) (*core.Session, error) {
	wb, err := workbook.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	sess, err := core.NewSession(path, wb)
	if err != nil {
		return nil, err
	}
	if sheet != "" {
		if err := sess.SelectSheet(sheet); err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet, err)
		}
	}
	return sess, nil
}

// openService loads the environment configuration and connects the store.
func openService(ctx context.Context) (*core.Service, func(), error) {
	if err := godotenv.Overload(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	records, closeStore, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	svc := core.NewService(records, workbook.Decode, core.ServiceOptions{
		MaxConcurrentSaves: 1,
		SaveTimeout:        cfg.Upload.Timeout,
	})
	return svc, closeStore, nil
}

// resolveColumn accepts a 1-based column number, a header label or a field name.
func resolveColumn(sheet core.RawSheet, spec string) (int, error) {
	spec = strings.TrimSpace(spec)
	if n, err := strconv.Atoi(spec); err == nil {
		return n - 1, nil
	}
	for i, label := range sheet.Columns() {
		if core.NormalizeHeader(label) == core.NormalizeHeader(spec) {
			return i, nil
		}
	}
	if f, ok := core.ParseField(spec); ok {
		if col := core.MapHeader(sheet.Header()).Column(f); col >= 0 {
			return col, nil
		}
		return 0, &core.MissingColumnError{Field: f, Sheet: sheet.Name}
	}
	return 0, &core.MissingColumnError{Field: core.Field(spec), Sheet: sheet.Name}
}

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", color.New(color.FgGreen).Sprint("✓"), fmt.Sprintf(format, args...))
}
