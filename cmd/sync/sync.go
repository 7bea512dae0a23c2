// Package sync refreshes every cached resource at once.
package sync

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"financemonkey/fm-cli/cmd/root"
	"financemonkey/fm-cli/internal/guard"
	"financemonkey/fm-cli/internal/view"
)

// NewCommand builds the sync command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "sync",
		Short:       "Refresh transactions, categories, email accounts and the dashboard",
		Long:        `Fetch every resource in parallel and save the result for --offline use. All fetches run to completion; the first failure is reported.`,
		Annotations: root.Annotate(guard.RouteDashboard),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			if err := app.RequireOnline(cmd); err != nil {
				return err
			}
			stores := app.Container.GetStores()
			dateRange := stores.Dashboard.State().DateRange

			// A plain group: every fetch runs to completion.
			var g errgroup.Group
			ctx := cmd.Context()
			g.Go(func() error { return stores.Transactions.FetchAll(ctx) })
			g.Go(func() error { return stores.Categories.FetchAll(ctx) })
			g.Go(func() error { return stores.EmailAccounts.FetchAll(ctx) })
			g.Go(func() error { return stores.Dashboard.FetchSummary(ctx, dateRange) })
			err := g.Wait()

			st := stores.Tree.GetState()
			rows := []view.KeyValueRow{
				{Key: "Transactions", Value: result(len(st.Transactions.Items), st.Transactions.Error)},
				{Key: "Categories", Value: result(len(st.Categories.Items), st.Categories.Error)},
				{Key: "Email accounts", Value: result(len(st.EmailAccounts.Items), st.EmailAccounts.Error)},
				{Key: "Dashboard", Value: summaryResult(st.Dashboard.Summary != nil, st.Dashboard.Error)},
			}
			if perr := app.Printer.PrintObject(syncView{
				Transactions:  len(st.Transactions.Items),
				Categories:    len(st.Categories.Items),
				EmailAccounts: len(st.EmailAccounts.Items),
				Summary:       st.Dashboard.Summary != nil,
			}, rows); perr != nil {
				return perr
			}
			if err != nil {
				return fmt.Errorf("sync incomplete: %w", err)
			}
			return nil
		},
	}
}

type syncView struct {
	Transactions  int  `json:"transactions" yaml:"transactions"`
	Categories    int  `json:"categories" yaml:"categories"`
	EmailAccounts int  `json:"emailAccounts" yaml:"email_accounts"`
	Summary       bool `json:"summary" yaml:"summary"`
}

func result(count int, errMsg string) string {
	if errMsg != "" {
		return "failed: " + errMsg
	}
	return fmt.Sprintf("%d", count)
}

func summaryResult(ok bool, errMsg string) string {
	switch {
	case errMsg != "":
		return "failed: " + errMsg
	case ok:
		return "updated"
	default:
		return "-"
	}
}

