package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ticketsheet/internal/core"
	"github.com/JonMunkholm/ticketsheet/internal/workbook"
)

// InspectCmd returns the inspect command
func InspectCmd() *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show sheets, columns and row count of a workbook",
		Long: `Show the sheets of a workbook, the columns of the selected sheet with
the ticket field each one maps to, and the number of data rows.

Examples:
  ticketctl inspect tickets.xlsx
  ticketctl inspect tickets.xlsx --sheet March`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := loadSheet(cmd.Context(), args[0], sheet)
			if err != nil {
				return err
			}

			sum := sess.Summary()
			out := cmd.OutOrStdout()
			bold := color.New(color.Bold)

			fmt.Fprintf(out, "%s %s\n", bold.Sprint("File:"), sum.FileName)
			fmt.Fprintf(out, "%s\n", bold.Sprint("Sheets:"))
			for _, name := range sum.Sheets {
				marker := ""
				if name == sum.Selected {
					marker = color.New(color.FgHiMagenta).Sprint(" ← selected")
				}
				fmt.Fprintf(out, "  %s%s\n", name, marker)
			}

			mapping := core.MapHeader(sess.Sheet().Header())
			fmt.Fprintf(out, "%s\n", bold.Sprint("Columns:"))
			for i, label := range sum.Columns {
				field := color.New(color.FgYellow).Sprint("(ignored)")
				if i < len(mapping) && mapping[i] != "" {
					field = color.New(color.FgCyan).Sprint(string(mapping[i]))
				}
				fmt.Fprintf(out, "  %2d. %-28s %s\n", i+1, label, field)
			}
			if mapping.Column(core.ConflictKey) < 0 {
				fmt.Fprintf(out, "%s no %s column; dedupe and save keys are unavailable\n",
					color.New(color.FgYellow).Sprint("!"), core.ConflictKey.Label())
			}

			fmt.Fprintf(out, "%s %d\n", bold.Sprint("Rows:"), sum.RowCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to inspect (default: first sheet)")
	return cmd
}

// DedupeCmd returns the dedupe command
func DedupeCmd() *cobra.Command {
	var sheet, output string

	cmd := &cobra.Command{
		Use:   "dedupe FILE",
		Short: "Remove rows with duplicate ticket numbers",
		Long: `Keep the first row for each ticket number and write the result.
Rows without a ticket number are always kept. Date columns are rewritten
in canonical form.

Examples:
  ticketctl dedupe tickets.xlsx -o clean.xlsx
  ticketctl dedupe export.csv -o clean.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := loadSheet(cmd.Context(), args[0], sheet)
			if err != nil {
				return err
			}
			res, err := sess.Dedupe()
			if err != nil {
				return err
			}
			if err := workbook.WriteFile(output, sess.Sheet()); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Removed %d duplicate rows by %q, %d rows written to %s",
				res.Removed, res.KeyLabel, sess.RowCount(), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to dedupe (default: first sheet)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, .xlsx or .csv (required)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// SortCmd returns the sort command
func SortCmd() *cobra.Command {
	var (
		sheet, output, column string
		desc                  bool
	)

	cmd := &cobra.Command{
		Use:   "sort FILE",
		Short: "Sort a sheet by one column",
		Long: `Sort the data rows of a sheet by one column, keeping the header first.
Numbers compare numerically, dates chronologically and everything else
as case-insensitive text. Equal values keep their original order.

The column is a 1-based number, a header label or a ticket field name.

Examples:
  ticketctl sort tickets.xlsx --column 3 -o sorted.xlsx
  ticketctl sort tickets.xlsx --column "Added Date" --desc -o sorted.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := loadSheet(cmd.Context(), args[0], sheet)
			if err != nil {
				return err
			}
			col, err := resolveColumn(sess.Sheet(), column)
			if err != nil {
				return err
			}
			dir := core.Asc
			if desc {
				dir = core.Desc
			}
			res, err := sess.Sort(col, dir)
			if err != nil {
				return err
			}
			if err := workbook.WriteFile(output, sess.Sheet()); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Sorted by %q (%s), written to %s",
				strings.TrimSpace(res.Label), res.Dir, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to sort (default: first sheet)")
	cmd.Flags().StringVar(&column, "column", "", "Column number, header label or field name (required)")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, .xlsx or .csv (required)")
	_ = cmd.MarkFlagRequired("column")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
