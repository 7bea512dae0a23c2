package transactions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"financemonkey/fm-cli/cmd/root"
	"financemonkey/fm-cli/internal/apierror"
	"financemonkey/fm-cli/internal/currencyutils"
	"financemonkey/fm-cli/internal/dateutils"
	"financemonkey/fm-cli/internal/forms"
	"financemonkey/fm-cli/internal/logging"
	"financemonkey/fm-cli/internal/models"
	"financemonkey/fm-cli/internal/validation"
	"financemonkey/fm-cli/internal/view"
)

func newExportCommand() *cobra.Command {
	var (
		file   string
		search string
		kind   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions to CSV",
		Long:  `Export the filtered transactions to a CSV file, or to standard output when --file is not given. The delimiter comes from csv.delimiter.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			filter, ok := view.ParseTypeFilter(kind)
			if !ok {
				return fmt.Errorf("invalid --type %q (must be all, income or expense)", kind)
			}
			if file != "" {
				if err := validation.OutputPath(file); err != nil {
					return err
				}
			}
			txs, err := load(cmd, app)
			if err != nil {
				return err
			}

			rows := view.NewTransactionRows(view.FilterTransactions(txs.Items(), search, filter))
			delimiter := app.Config.Delimiter()
			if file == "" {
				return view.WriteCSV(cmd.OutOrStdout(), rows, delimiter)
			}
			if err := view.WriteCSVFile(file, rows, delimiter); err != nil {
				return err
			}
			app.Log.Info("Exported transactions", logging.F(logging.FieldFile, file), logging.F(logging.FieldCount, len(rows)))
			app.Printer.Message("Exported %d transactions to %s.", len(rows), file)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Output CSV file")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search vendor, description and category")
	cmd.Flags().StringVarP(&kind, "type", "t", "all", "Filter by type: all, income or expense")
	return cmd
}

// rowForm turns an exported row back into form input. The Type column
// wins; without it the sign of Amount decides. Localized amounts and
// dates are normalized; values that cannot be read are passed through
// for the form to reject.
func rowForm(r view.TransactionRow) forms.TransactionForm {
	amount := strings.TrimSpace(r.Amount)
	negative := strings.HasPrefix(amount, "-")
	if d, err := currencyutils.ParseAmount(amount); err == nil {
		negative = currencyutils.IsNegative(d)
		amount = d.Abs().String()
	}
	date := strings.TrimSpace(r.Date)
	if iso, err := dateutils.Normalize(date); err == nil {
		date = iso
	}

	kind := forms.TransactionKind(strings.ToLower(strings.TrimSpace(r.Type)))
	if kind == "" {
		kind = forms.Income
		if negative {
			kind = forms.Expense
		}
	}
	return forms.TransactionForm{
		Kind:              kind,
		Amount:            strings.TrimPrefix(amount, "-"),
		Currency:          r.Currency,
		Vendor:            r.Vendor,
		Description:       r.Description,
		TransactionDate:   date,
		Recurring:         r.Recurring,
		RecurrencePattern: r.RecurrencePattern,
	}
}

// categoryIDs maps lower-cased category names to ids.
func categoryIDs(categories []models.Category) map[string]string {
	ids := make(map[string]string, len(categories))
	for _, c := range categories {
		ids[strings.ToLower(c.Name)] = c.ID
	}
	return ids
}

func newImportCommand() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Create transactions from a CSV file",
		Long: `Create one transaction per row of a CSV file in the export format. Every
row is validated before anything is sent; the Category column is matched
against category names. Row IDs are ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			if err := app.RequireOnline(cmd); err != nil {
				return err
			}
			if err := validation.InputFile(args[0]); err != nil {
				return err
			}
			rows, err := view.ReadCSVFile[view.TransactionRow](args[0], app.Config.Delimiter())
			if err != nil {
				return err
			}

			categories := app.Container.GetStores().Categories
			if err := categories.FetchAll(cmd.Context()); err != nil {
				return root.Failed(categories.State().Error, err)
			}
			ids := categoryIDs(categories.Items())

			records := make([]models.Transaction, 0, len(rows))
			invalid := apierror.FieldErrors{}
			for i, row := range rows {
				line := strconv.Itoa(i + 2)
				form := rowForm(row)
				if name := strings.TrimSpace(row.Category); name != "" {
					id, ok := ids[strings.ToLower(name)]
					if !ok {
						invalid["row "+line] = fmt.Sprintf("unknown category %q", name)
						continue
					}
					form.CategoryID = id
				}
				t, err := form.ToTransaction()
				if err != nil {
					invalid["row "+line] = err.Error()
					continue
				}
				records = append(records, t)
			}
			if len(invalid) > 0 {
				return &apierror.ValidationError{Form: "import file " + args[0], Fields: invalid}
			}
			if dryRun {
				app.Printer.Message("%d transactions are valid; nothing was sent.", len(records))
				return nil
			}

			txs := app.Container.GetStores().Transactions
			for i, t := range records {
				if _, err := txs.Create(cmd.Context(), t); err != nil {
					return fmt.Errorf("imported %d of %d transactions: %w", i, len(records), root.Failed(txs.State().Error, err))
				}
			}
			app.Printer.Message("Imported %d transactions.", len(records))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the file without creating anything")
	return cmd
}
