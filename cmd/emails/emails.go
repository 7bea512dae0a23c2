// Package emails contains the email account commands.
package emails

import (
	"fmt"

	"github.com/spf13/cobra"

	"financemonkey/fm-cli/cmd/root"
	"financemonkey/fm-cli/internal/forms"
	"financemonkey/fm-cli/internal/guard"
	"financemonkey/fm-cli/internal/logging"
	"financemonkey/fm-cli/internal/models"
	"financemonkey/fm-cli/internal/store"
	"financemonkey/fm-cli/internal/view"
)

// NewCommand builds the emails command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "emails",
		Short:       "Manage the mailboxes scanned for receipts",
		Annotations: root.Annotate(guard.RouteEmailAccounts),
	}
	cmd.AddCommand(newListCommand(), newConnectCommand(), newDisconnectCommand(), newSyncCommand())
	return cmd
}

var accountTable = view.Table[view.EmailAccountRow]{
	Headers: []string{"ID", "EMAIL", "PROVIDER", "STATUS", "LAST SYNCED", "DESCRIPTION"},
	Cells: func(r view.EmailAccountRow) []string {
		return []string{r.ID, r.Email, r.Provider, r.Status, r.LastSynced, r.Description}
	},
}

func load(cmd *cobra.Command, app *root.App) (*store.EmailAccounts, error) {
	accounts := app.Container.GetStores().EmailAccounts
	st := accounts.State()
	if err := app.Load(cmd.Context(), st.Fetched || st.FromSnapshot, accounts.FetchAll); err != nil {
		return nil, root.Failed(accounts.State().Error, err)
	}
	return accounts, nil
}

func newListCommand() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List connected email accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			accounts, err := load(cmd, app)
			if err != nil {
				return err
			}
			items := view.FilterEmailAccounts(accounts.Items(), search)
			table := accountTable
			table.Footer = fmt.Sprintf("%d email accounts", len(items))
			return view.PrintList(app.Printer, items, view.NewEmailAccountRows(items), table)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search email, provider and description")
	return cmd
}

func newConnectCommand() *cobra.Command {
	var form forms.EmailAccountForm
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect a mailbox",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			in, err := form.ToInput()
			if err != nil {
				return err
			}
			if err := app.RequireOnline(cmd); err != nil {
				return err
			}

			accounts := app.Container.GetStores().EmailAccounts
			defer accounts.ResetConnectionStatus()
			created, err := accounts.Connect(cmd.Context(), in)
			app.Log.Debug("Connection finished", logging.F(logging.FieldStatus, string(accounts.ConnectionStatus())))
			if err != nil {
				return root.Failed(accounts.State().Error, err)
			}
			if app.Printer.Format != view.FormatTable {
				return view.PrintList(app.Printer, created, view.NewEmailAccountRows([]models.EmailAccount{created}), accountTable)
			}
			app.Printer.Message("Connected %s (%s) as %s.", created.Email, created.Provider, created.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&form.Email, "email", "e", "", "Mailbox address")
	cmd.Flags().StringVarP(&form.Provider, "provider", "p", "", "GMAIL, OUTLOOK, YAHOO or OTHER")
	cmd.Flags().StringVarP(&form.Description, "description", "d", "", "Description")
	return cmd
}

func newDisconnectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect <id>",
		Short: "Stop scanning a mailbox; the account stays listed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			if err := app.RequireOnline(cmd); err != nil {
				return err
			}
			accounts := app.Container.GetStores().EmailAccounts
			if err := accounts.Disconnect(cmd.Context(), args[0]); err != nil {
				return root.Failed(accounts.State().Error, err)
			}
			app.Printer.Message("Disconnected email account %s.", args[0])
			return nil
		},
	}
}

func newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync <id>",
		Short: "Scan a mailbox for new receipts now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			if err := app.RequireOnline(cmd); err != nil {
				return err
			}
			accounts, err := load(cmd, app)
			if err != nil {
				return err
			}
			if err := accounts.Sync(cmd.Context(), args[0]); err != nil {
				return root.Failed(accounts.State().Error, err)
			}
			app.Printer.Message("Fetched new emails for account %s.", args[0])
			return nil
		},
	}
}
