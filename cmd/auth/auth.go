// Package auth contains the sign-in, sign-up and session commands.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"financemonkey/fm-cli/cmd/dashboard"
	"financemonkey/fm-cli/cmd/root"
	"financemonkey/fm-cli/internal/apierror"
	"financemonkey/fm-cli/internal/forms"
	"financemonkey/fm-cli/internal/guard"
	"financemonkey/fm-cli/internal/view"
)

// NewCommand builds the auth command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in, sign up and inspect the session",
	}
	cmd.AddCommand(newLoginCommand(), newRegisterCommand(), newGoogleCommand(), newLogoutCommand(), newStatusCommand())
	return cmd
}

// redirected reports whether the guard sent a signed-in user from an
// auth page to the dashboard, and shows it if so.
func redirected(cmd *cobra.Command, app *root.App) (bool, error) {
	if app.Decision != guard.RedirectToDashboard {
		return false, nil
	}
	if user := app.Container.GetSession().User(); user != nil {
		app.Printer.Message("Already signed in as %s.", user.Email)
	}
	return true, dashboard.Show(cmd, app)
}

func newLoginCommand() *cobra.Command {
	var form forms.LoginForm
	cmd := &cobra.Command{
		Use:         "login",
		Short:       "Sign in with email and password",
		Long:        `Sign in with email and password. The password is read from standard input when --password is not given.`,
		Annotations: root.Annotate(guard.RouteLogin),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			if done, err := redirected(cmd, app); done {
				return err
			}
			if err := app.RequireOnline(cmd); err != nil {
				return err
			}

			if form.Password == "" {
				password, err := root.NewPrompter(cmd).Secret("Password: ")
				if err != nil {
					return err
				}
				form.Password = password
			}
			creds, err := form.ToCredentials()
			if err != nil {
				return err
			}

			auth := app.Container.GetStores().Auth
			if err := auth.Login(cmd.Context(), creds); err != nil {
				return root.Failed(auth.State().Error, err)
			}
			app.Printer.Message("Signed in as %s.", auth.State().User.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&form.Email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "Account password")
	return cmd
}

func newRegisterCommand() *cobra.Command {
	var form forms.RegisterForm
	cmd := &cobra.Command{
		Use:         "register",
		Short:       "Create an account",
		Long:        `Create an account. Registration does not sign you in; run auth login afterwards.`,
		Annotations: root.Annotate(guard.RouteRegister),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			if done, err := redirected(cmd, app); done {
				return err
			}
			if err := app.RequireOnline(cmd); err != nil {
				return err
			}

			prompt := root.NewPrompter(cmd)
			if form.Password == "" {
				password, err := prompt.Secret("Password: ")
				if err != nil {
					return err
				}
				form.Password = password
			}
			if form.ConfirmPassword == "" {
				confirm, err := prompt.Secret("Confirm password: ")
				if err != nil {
					return err
				}
				form.ConfirmPassword = confirm
			}
			reg, err := form.ToRegistration()
			if err != nil {
				return err
			}

			auth := app.Container.GetStores().Auth
			if err := auth.Register(cmd.Context(), reg); err != nil {
				return root.Failed(auth.State().Error, err)
			}
			app.Printer.Message("Registration successful. Sign in with `fm-cli auth login --email %s`.", reg.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&form.Name, "name", "n", "", "Full name")
	cmd.Flags().StringVarP(&form.Email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "Password, at least 8 characters")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm-password", "", "Password again")
	return cmd
}

func newGoogleCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "google",
		Short:       "Sign in with a Google account",
		Long:        `Open the Google consent page, wait for the browser to return to a local port, and sign in with the verified Google profile.`,
		Annotations: root.Annotate(guard.RouteLogin),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			if done, err := redirected(cmd, app); done {
				return err
			}
			if err := app.RequireOnline(cmd); err != nil {
				return err
			}

			flow, err := app.Container.GoogleFlow(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			profile, err := flow.SignIn(cmd.Context())
			if err != nil {
				return err
			}

			auth := app.Container.GetStores().Auth
			if err := auth.GoogleLogin(cmd.Context(), profile); err != nil {
				return root.Failed(auth.State().Error, err)
			}
			app.Printer.Message("Signed in as %s.", profile.Email)
			return nil
		},
	}
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "logout",
		Short:       "Sign out and forget the saved session and data",
		Annotations: root.Annotate(guard.RouteRoot),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			if !app.Container.GetSession().IsAuthenticated() {
				app.Printer.Message("Not signed in.")
				return nil
			}
			if err := app.Container.GetStores().Auth.Logout(); err != nil {
				return fmt.Errorf("failed to clear session: %w", err)
			}
			app.Printer.Message("Signed out.")
			return nil
		},
	}
}

// statusView is the structured form of auth status.
type statusView struct {
	Authenticated bool       `json:"authenticated" yaml:"authenticated"`
	Email         string     `json:"email,omitempty" yaml:"email,omitempty"`
	Name          string     `json:"name,omitempty" yaml:"name,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty" yaml:"expires_at,omitempty"`
	Expired       bool       `json:"expired,omitempty" yaml:"expired,omitempty"`
	SavedAt       *time.Time `json:"snapshotSavedAt,omitempty" yaml:"snapshot_saved_at,omitempty"`
	APIURL        string     `json:"apiUrl" yaml:"api_url"`
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "status",
		Short:       "Show who is signed in",
		Annotations: root.Annotate(guard.RouteRoot),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			sess := app.Container.GetSession()
			out := statusView{
				Authenticated: sess.IsAuthenticated(),
				APIURL:        app.Container.GetGateway().BaseURL(),
			}
			if user := sess.User(); user != nil {
				out.Email = user.Email
				out.Name = user.Name
			}
			if claims, err := sess.Claims(); err == nil && claims.ExpiresAt != nil {
				out.ExpiresAt = claims.ExpiresAt
				out.Expired = claims.Expired(app.Container.Now())
			} else if err != nil && !errors.Is(err, apierror.ErrNotAuthenticated) {
				app.Log.WithError(err).Debug("Token is not a readable JWT")
			}
			if snap := app.Container.GetSnapshot(); snap != nil && out.Authenticated {
				if savedAt, ok, err := snap.SavedAt(cmd.Context()); err == nil && ok {
					out.SavedAt = &savedAt
				}
			}

			pairs := []view.KeyValueRow{{Key: "API", Value: out.APIURL}}
			if !out.Authenticated {
				pairs = append(pairs, view.KeyValueRow{Key: "Signed in", Value: "no"})
			} else {
				pairs = append(pairs,
					view.KeyValueRow{Key: "Signed in", Value: "yes"},
					view.KeyValueRow{Key: "User", Value: fmt.Sprintf("%s <%s>", out.Name, out.Email)},
					view.KeyValueRow{Key: "Token expires", Value: view.FormatTime(out.ExpiresAt)},
					view.KeyValueRow{Key: "Saved data", Value: view.FormatTime(out.SavedAt)},
				)
				if out.Expired {
					pairs = append(pairs, view.KeyValueRow{Key: "Note", Value: "token expired; it is refreshed on the next request"})
				}
			}
			return app.Printer.PrintObject(out, pairs)
		},
	}
}
