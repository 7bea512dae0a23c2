// Package dashboard renders the summary for a date range.
package dashboard

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"financemonkey/fm-cli/cmd/root"
	"financemonkey/fm-cli/internal/dateutils"
	"financemonkey/fm-cli/internal/guard"
	"financemonkey/fm-cli/internal/models"
	"financemonkey/fm-cli/internal/view"
)

// NewCommand builds the dashboard command.
func NewCommand() *cobra.Command {
	var from, to, month string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show income, expenses and balance for a date range",
		Long: `Show the dashboard summary. The range defaults to the first day of last
month through today. --month selects a whole calendar month; --from and
--to override either end.`,
		Annotations: root.Annotate(guard.RouteDashboard),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			dash := app.Container.GetStores().Dashboard
			r := dash.State().DateRange
			if month != "" {
				start, end, err := dateutils.MonthRange(month)
				if err != nil {
					return err
				}
				r = models.DateRange{StartDate: start, EndDate: end}
			}
			if from != "" {
				r.StartDate = from
			}
			if to != "" {
				r.EndDate = to
			}
			if err := dash.SetDateRange(r); err != nil {
				return err
			}
			return Show(cmd, app)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&month, "month", "m", "", "Calendar month (YYYY-MM)")
	return cmd
}

// Show fetches and prints the summary for the selected range. Auth
// commands call it when a signed-in user asks for a login page.
// A summary held for another range is never shown in its place.
func Show(cmd *cobra.Command, app *root.App) error {
	dash := app.Container.GetStores().Dashboard
	r := dash.State().DateRange
	cached := dash.State().HasSummaryFor(r)
	err := app.Load(cmd.Context(), cached, func(ctx context.Context) error {
		return dash.FetchSummary(ctx, r)
	})
	if err != nil {
		return err
	}
	if app.Offline && !cached {
		return nil
	}

	st := dash.State()
	if st.Summary == nil {
		app.Printer.Message("No summary available.")
		return nil
	}
	return Print(app.Printer, st.SummaryRange, *st.Summary)
}

// Print renders summary. Structured formats print the summary as
// received; the table format adds the breakdowns.
func Print(p *view.Printer, r models.DateRange, s models.DashboardSummary) error {
	pairs := []view.KeyValueRow{
		{Key: "Period", Value: fmt.Sprintf("%s to %s", r.StartDate, r.EndDate)},
		{Key: "Transactions", Value: fmt.Sprint(s.TotalTransactions)},
		{Key: "Income", Value: s.TotalIncome.StringFixed(2)},
		{Key: "Expenses", Value: s.TotalExpense.StringFixed(2)},
		{Key: "Balance", Value: s.Balance.StringFixed(2)},
	}
	if err := p.PrintObject(s, pairs); err != nil {
		return err
	}
	if p.Format != view.FormatTable {
		return nil
	}

	if len(s.TransactionsByCategory) > 0 {
		p.Message("\nBy category")
		if err := view.PrintList(p, nil, s.TransactionsByCategory, view.Table[models.CategoryTotal]{
			Headers: []string{"CATEGORY", "AMOUNT"},
			Cells: func(c models.CategoryTotal) []string {
				return []string{c.CategoryName, c.Amount.StringFixed(2)}
			},
		}); err != nil {
			return err
		}
	}
	if len(s.TransactionsByMonth) > 0 {
		p.Message("\nBy month")
		if err := view.PrintList(p, nil, s.TransactionsByMonth, view.Table[models.MonthTotal]{
			Headers: []string{"MONTH", "INCOME", "EXPENSE"},
			Cells: func(m models.MonthTotal) []string {
				return []string{m.Month, m.Income.StringFixed(2), m.Expense.StringFixed(2)}
			},
		}); err != nil {
			return err
		}
	}
	if len(s.RecentTransactions) > 0 {
		p.Message("\nRecent transactions")
		if err := view.PrintList(p, nil, s.RecentTransactions, view.Table[models.RecentTransaction]{
			Headers: []string{"DATE", "VENDOR", "CATEGORY", "AMOUNT"},
			Cells: func(t models.RecentTransaction) []string {
				return []string{models.Transaction{TransactionDate: t.TransactionDate}.Date(), t.Vendor, t.CategoryName, t.Amount.StringFixed(2)}
			},
		}); err != nil {
			return err
		}
	}
	if len(s.RecurringPayments) > 0 {
		p.Message("\nRecurring payments")
		if err := view.PrintList(p, nil, s.RecurringPayments, view.Table[models.RecurringPayment]{
			Headers: []string{"VENDOR", "PATTERN", "NEXT DUE", "AMOUNT"},
			Cells: func(r models.RecurringPayment) []string {
				return []string{r.Vendor, string(r.RecurrencePattern), r.NextDueDate, r.Amount.StringFixed(2)}
			},
		}); err != nil {
			return err
		}
	}
	return nil
}
