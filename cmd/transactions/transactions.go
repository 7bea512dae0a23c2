// Package transactions contains the transaction commands.
package transactions

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"financemonkey/fm-cli/cmd/root"
	"financemonkey/fm-cli/internal/forms"
	"financemonkey/fm-cli/internal/guard"
	"financemonkey/fm-cli/internal/models"
	"financemonkey/fm-cli/internal/store"
	"financemonkey/fm-cli/internal/view"
)

// NewCommand builds the transactions command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "transactions",
		Aliases:     []string{"tx"},
		Short:       "List, add, edit, delete, export and import transactions",
		Annotations: root.Annotate(guard.RouteTransactions),
	}
	cmd.AddCommand(
		newListCommand(),
		newAddCommand(),
		newEditCommand(),
		newDeleteCommand(),
		newExportCommand(),
		newImportCommand(),
	)
	return cmd
}

var transactionTable = view.Table[view.TransactionRow]{
	Headers: []string{"ID", "DATE", "VENDOR", "DESCRIPTION", "CATEGORY", "AMOUNT", "RECURRING"},
	Cells: func(r view.TransactionRow) []string {
		recurring := ""
		if r.Recurring {
			recurring = r.RecurrencePattern
		}
		return []string{r.ID, r.Date, r.Vendor, r.Description, r.Category, r.Amount + " " + r.Currency, recurring}
	},
}

// load refreshes the cached transactions.
func load(cmd *cobra.Command, app *root.App) (*store.Transactions, error) {
	txs := app.Container.GetStores().Transactions
	st := txs.State()
	err := app.Load(cmd.Context(), st.Fetched || st.FromSnapshot, txs.FetchAll)
	if err != nil {
		return nil, root.Failed(txs.State().Error, err)
	}
	return txs, nil
}

func newListCommand() *cobra.Command {
	var (
		search  string
		kind    string
		page    int
		perPage int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Long:  `List transactions, newest first as the server returns them. Search matches vendor, description and category.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			filter, ok := view.ParseTypeFilter(kind)
			if !ok {
				return fmt.Errorf("invalid --type %q (must be all, income or expense)", kind)
			}
			txs, err := load(cmd, app)
			if err != nil {
				return err
			}

			items := view.FilterTransactions(txs.Items(), search, filter)
			if perPage == 0 {
				perPage = app.Config.Output.PerPage
			}
			p := view.Paginate(items, page, perPage)

			table := transactionTable
			footer := []string{fmt.Sprintf("Page %d of %d (%d transactions)", p.Number, p.Pages, p.Total)}
			for _, total := range models.SumTransactions(items).Sorted() {
				footer = append(footer, "Total "+total.String())
			}
			table.Footer = strings.Join(footer, "\n")
			return view.PrintList(app.Printer, p.Items, view.NewTransactionRows(p.Items), table)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search vendor, description and category")
	cmd.Flags().StringVarP(&kind, "type", "t", "all", "Filter by type: all, income or expense")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "Transactions per page (default from config)")
	return cmd
}

// formFlags binds the transaction form to flags.
func formFlags(flags *pflag.FlagSet, form *forms.TransactionForm) {
	flags.StringVar((*string)(&form.Kind), "type", string(forms.Expense), "income or expense")
	flags.StringVarP(&form.Amount, "amount", "a", "", "Amount, without sign")
	flags.StringVar(&form.Currency, "currency", "", "Currency code (default "+models.DefaultCurrency+")")
	flags.StringVarP(&form.Vendor, "vendor", "v", "", "Vendor or payer")
	flags.StringVarP(&form.Description, "description", "d", "", "Description")
	flags.StringVar(&form.TransactionDate, "date", "", "Date (YYYY-MM-DD)")
	flags.BoolVar(&form.Recurring, "recurring", false, "Mark as recurring")
	flags.StringVar(&form.RecurrencePattern, "pattern", "", "Recurrence: DAILY, WEEKLY, BIWEEKLY, MONTHLY, QUARTERLY or YEARLY")
	flags.StringVar(&form.CategoryID, "category", "", "Category id")
}

func printTransaction(app *root.App, t models.Transaction, verb string) error {
	if app.Printer.Format != view.FormatTable {
		return view.PrintList(app.Printer, t, view.NewTransactionRows([]models.Transaction{t}), transactionTable)
	}
	app.Printer.Message("%s transaction %s: %s %s on %s.", verb, t.ID, t.Vendor, t.Money(), t.Date())
	return nil
}

func newAddCommand() *cobra.Command {
	var form forms.TransactionForm
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			t, err := form.ToTransaction()
			if err != nil {
				return err
			}
			if err := app.RequireOnline(cmd); err != nil {
				return err
			}

			txs := app.Container.GetStores().Transactions
			created, err := txs.Create(cmd.Context(), t)
			if err != nil {
				return root.Failed(txs.State().Error, err)
			}
			return printTransaction(app, created, "Added")
		},
	}
	formFlags(cmd.Flags(), &form)
	return cmd
}

func newEditCommand() *cobra.Command {
	var changes forms.TransactionForm
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a transaction; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			if err := app.RequireOnline(cmd); err != nil {
				return err
			}
			txs := app.Container.GetStores().Transactions
			current, err := txs.Get(cmd.Context(), args[0])
			if err != nil {
				return root.Failed(txs.State().Error, err)
			}

			form := forms.TransactionFormFrom(current)
			merge(cmd.Flags(), &form, changes)
			t, err := form.ToTransaction()
			if err != nil {
				return err
			}
			t.CategoryName = current.CategoryName
			t.Status = current.Status

			updated, err := txs.Update(cmd.Context(), t)
			if err != nil {
				return root.Failed(txs.State().Error, err)
			}
			return printTransaction(app, updated, "Updated")
		},
	}
	formFlags(cmd.Flags(), &changes)
	return cmd
}

// merge copies the flags the user set from changes into form.
func merge(flags *pflag.FlagSet, form *forms.TransactionForm, changes forms.TransactionForm) {
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("type", func() { form.Kind = changes.Kind })
	set("amount", func() { form.Amount = changes.Amount })
	set("currency", func() { form.Currency = changes.Currency })
	set("vendor", func() { form.Vendor = changes.Vendor })
	set("description", func() { form.Description = changes.Description })
	set("date", func() { form.TransactionDate = changes.TransactionDate })
	set("recurring", func() { form.Recurring = changes.Recurring })
	set("pattern", func() { form.RecurrencePattern = changes.RecurrencePattern })
	set("category", func() { form.CategoryID = changes.CategoryID })
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			if err := app.RequireOnline(cmd); err != nil {
				return err
			}
			txs := app.Container.GetStores().Transactions
			if err := txs.Delete(cmd.Context(), args[0]); err != nil {
				return root.Failed(txs.State().Error, err)
			}
			app.Printer.Message("Deleted transaction %s.", args[0])
			return nil
		},
	}
}
