package main

import (
	"os"

	"github.com/spf13/cobra"

	"financemonkey/fm-cli/cmd/auth"
	"financemonkey/fm-cli/cmd/categories"
	"financemonkey/fm-cli/cmd/dashboard"
	"financemonkey/fm-cli/cmd/drive"
	"financemonkey/fm-cli/cmd/emails"
	"financemonkey/fm-cli/cmd/root"
	synccmd "financemonkey/fm-cli/cmd/sync"
	"financemonkey/fm-cli/cmd/transactions"
	"financemonkey/fm-cli/internal/config"
)

func init() {
	// Load .env before anything logs, then apply LOG_LEVEL to the global
	// logger; the configured level replaces it once the config is read.
	config.LoadEnv()
	config.ConfigureLogLevel()
}

func newRootCommand() *cobra.Command {
	cmd := root.NewCommand()
	cmd.AddCommand(
		auth.NewCommand(),
		dashboard.NewCommand(),
		transactions.NewCommand(),
		categories.NewCommand(),
		emails.NewCommand(),
		drive.NewCommand(),
		synccmd.NewCommand(),
	)
	return cmd
}

func main() {
	if err := root.Execute(newRootCommand()); err != nil {
		root.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
