package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ticketsheet/internal/core"
)

// listColumns are the fields shown by list, in order.
var listColumns = []core.Field{
	core.FieldTicketNumber,
	core.FieldOwner,
	core.FieldAdded,
	core.FieldCurrStatDate,
	core.FieldPriority,
	core.FieldContactName,
	core.FieldPendingReason,
}

// ImportCmd returns the import command
func ImportCmd() *cobra.Command {
	var (
		sheet  string
		dedupe bool
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Save the tickets of a workbook to the store",
		Long: `Normalize the rows of one sheet into tickets and upsert them by ticket
number. Saves run in chunks of 1000; if a chunk fails, the tickets of earlier
chunks stay saved and the count is reported.

Examples:
  ticketctl import tickets.xlsx
  ticketctl import tickets.xlsx --sheet March --dedupe`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			svc, closeStore, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			res, err := svc.Import(cmd.Context(), args[0], data, sheet, dedupe)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Saved %d tickets in %d chunks", res.Saved, res.Chunks)
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to import (default: first sheet)")
	cmd.Flags().BoolVar(&dedupe, "dedupe", false, "Remove duplicate ticket numbers before saving")
	return cmd
}

// ListCmd returns the list command
func ListCmd() *cobra.Command {
	var (
		filter    core.FilterSpec
		dateField string
		sortField string
		desc      bool
		page      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored tickets",
		Long: `List stored tickets, 20 per page, sorted by ticket number unless --sort
is given. Filters combine: --owner matches exactly, --month and --day match
the month/day of the date field, --q searches ticket number, request id and
contact name.

Examples:
  ticketctl list
  ticketctl list --owner alice --month 3 --sort added --desc
  ticketctl list --q 12345 --page 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view := core.NewViewState()

			if dateField != "" {
				f, ok := core.ParseField(dateField)
				if !ok {
					return &core.MissingColumnError{Field: core.Field(dateField)}
				}
				filter.DateField = f
			}
			if err := view.SetFilter(filter); err != nil {
				return err
			}

			if sortField != "" {
				f, ok := core.ParseField(sortField)
				if !ok {
					return &core.MissingColumnError{Field: core.Field(sortField)}
				}
				if err := view.SetSort(core.SortSpec{Field: f, Dir: core.Asc}); err != nil {
					return err
				}
			}
			if desc {
				view.Sort.Dir = core.Desc
			}
			view.SetPage(page)

			svc, closeStore, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			p, err := svc.List(cmd.Context(), view)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for i, f := range listColumns {
				if i > 0 {
					fmt.Fprint(w, "\t")
				}
				fmt.Fprint(w, f.Label())
			}
			fmt.Fprintln(w)
			for _, rec := range p.Items {
				for i, f := range listColumns {
					if i > 0 {
						fmt.Fprint(w, "\t")
					}
					fmt.Fprint(w, rec.Get(f).String())
				}
				fmt.Fprintln(w)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(out, color.New(color.Faint).Sprintf("page %d of %d, %d tickets, sorted by %s %s",
				p.PageNumber, p.TotalPages, p.TotalItems, view.Sort.Field.Label(), view.Sort.Dir))
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Owner, "owner", "", "Only tickets with this owner")
	cmd.Flags().IntVar(&filter.Month, "month", 0, "Only tickets whose date falls in this month (1-12)")
	cmd.Flags().IntVar(&filter.Day, "day", 0, "Only tickets whose date falls on this day of month (1-31)")
	cmd.Flags().StringVar(&dateField, "date-field", "", "Date field for --month/--day: added, curr_stat_date, work_date (default: added)")
	cmd.Flags().StringVar(&filter.Search, "q", "", "Search ticket number, request id and contact name")
	cmd.Flags().StringVar(&sortField, "sort", "", "Sort field (default: ticket_number)")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	return cmd
}
