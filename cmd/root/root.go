// Package root contains the root command for the application
package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"financemonkey/fm-cli/internal/apierror"
	"financemonkey/fm-cli/internal/config"
	"financemonkey/fm-cli/internal/container"
	"financemonkey/fm-cli/internal/guard"
	"financemonkey/fm-cli/internal/logging"
	"financemonkey/fm-cli/internal/view"
)

// RouteAnnotation names the route a command renders. Commands without
// one inherit their parent's; the root itself is public.
const RouteAnnotation = "route"

// ErrLoginRequired is returned when a protected command runs without a
// session.
var ErrLoginRequired = fmt.Errorf("%w: run `fm-cli auth login` first", apierror.ErrNotAuthenticated)

// App is the per-invocation context handed to every command.
type App struct {
	Container *container.Container
	Config    *config.Config
	Printer   *view.Printer
	Log       logging.Logger

	// Offline commands render the snapshot and make no request.
	Offline bool
	// Decision is the guard's verdict for the command's route.
	Decision guard.Decision
}

type appKey struct{}

// FromCommand returns the App set up by the root pre-run hook.
func FromCommand(cmd *cobra.Command) *App {
	if cmd == nil || cmd.Context() == nil {
		return nil
	}
	app, _ := cmd.Context().Value(appKey{}).(*App)
	return app
}

// Close releases the container.
func (a *App) Close() error {
	if a == nil || a.Container == nil {
		return nil
	}
	return a.Container.Close()
}

// Route returns the route the command renders.
func Route(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if route, ok := c.Annotations[RouteAnnotation]; ok {
			return route
		}
	}
	return guard.RouteRoot
}

// Annotate returns the annotation map declaring route.
func Annotate(route string) map[string]string {
	return map[string]string{RouteAnnotation: route}
}

type options struct {
	configFile string
	output     string
	logLevel   string
	offline    bool
}

// NewCommand builds the root command. Subcommands are added by main.
func NewCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   config.AppName,
		Short: "A terminal client for the Finance Monkey personal finance API.",
		Long: `fm-cli is a terminal client for Finance Monkey. It signs in to the API,
keeps the session on disk, and lets you browse and edit transactions,
categories, email accounts and the dashboard summary.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Config file (default $HOME/.fm-cli/config.yaml)")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "", "Output format: table, json, yaml or csv")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn or error")
	cmd.PersistentFlags().BoolVar(&opts.offline, "offline", false, "Show the last saved data without contacting the API")
	return cmd
}

func (o *options) setup(cmd *cobra.Command) error {
	config.LoadEnv()

	cfg, err := config.InitializeConfig(o.configFile)
	if err != nil {
		return err
	}
	if o.output != "" {
		cfg.Output.Format = o.output
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	format, err := view.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	config.ConfigureLoggingFromConfig(cfg)

	c, err := container.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	route := Route(cmd)
	decision := guard.Decide(c.GetSession().Token() != "", route)
	log := c.GetLogger().WithField(logging.FieldRoute, route)
	log.Debug("Route guard", logging.F(logging.FieldAction, decision.String()))

	if decision == guard.RedirectToLogin {
		c.GetNavigator().Navigate(guard.RouteLogin)
		_ = c.Close()
		return ErrLoginRequired
	}

	app := &App{
		Container: c,
		Config:    cfg,
		Printer:   view.NewPrinter(cmd.OutOrStdout(), format, cfg.Delimiter()),
		Log:       log,
		Offline:   o.offline,
		Decision:  decision,
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appKey{}, app))
	return nil
}

// Execute runs cmd and releases the App of whichever command ran.
func Execute(cmd *cobra.Command) error {
	ran, err := cmd.ExecuteC()
	if cerr := FromCommand(ran).Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// PrintError writes err for the user. Validation failures list every
// field; an expired session points at the login command.
func PrintError(w io.Writer, err error) {
	var validation *apierror.ValidationError
	switch {
	case errors.As(err, &validation):
		fmt.Fprintf(w, "Error: invalid %s\n", validation.Form)
		for _, field := range validation.Fields.Fields() {
			fmt.Fprintf(w, "  %s: %s\n", field, validation.Fields[field])
		}
	case errors.Is(err, apierror.ErrSessionExpired):
		fmt.Fprintf(w, "Error: %s\nRun `%s auth login` to sign in again.\n", apierror.ErrSessionExpired, config.AppName)
	default:
		fmt.Fprintf(w, "Error: %s\n", strings.TrimSpace(err.Error()))
	}
}
