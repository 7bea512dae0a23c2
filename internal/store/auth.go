package store

import (
	"context"

	"github.com/google/uuid"

	"financemonkey/fm-cli/internal/apierror"
	"financemonkey/fm-cli/internal/gateway"
	"financemonkey/fm-cli/internal/logging"
	"financemonkey/fm-cli/internal/models"
	"financemonkey/fm-cli/internal/session"
	"financemonkey/fm-cli/internal/state"
)

// AuthAPI is the anonymous part of the API.
type AuthAPI interface {
	Login(ctx context.Context, creds models.Credentials) (models.AuthResponse, error)
	Register(ctx context.Context, reg models.Registration) error
	GoogleLogin(ctx context.Context, profile models.GoogleProfile) (models.AuthResponse, error)
}

// Session is the session service as seen by the auth store.
type Session interface {
	Login(resp models.AuthResponse) error
	Logout() error
	Status() session.Status
	OnChange(fn func(session.Status)) (unsubscribe func())
}

// Auth drives login, registration and logout. The auth slot mirrors the
// session service and never holds the token.
type Auth struct {
	tree        *state.Tree
	api         AuthAPI
	session     Session
	logger      logging.Logger
	unsubscribe func()
}

// NewAuth builds the store and starts mirroring the session.
func NewAuth(tree *state.Tree, authAPI AuthAPI, sess Session, logger logging.Logger) *Auth {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	a := &Auth{tree: tree, api: authAPI, session: sess, logger: logger.WithField(logging.FieldStore, "auth")}
	a.mirror(sess.Status())
	a.unsubscribe = sess.OnChange(a.mirror)
	return a
}

// Close stops mirroring the session.
func (a *Auth) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

func (a *Auth) mirror(st session.Status) {
	a.tree.Dispatch(state.NewAction("auth/sessionChanged", func(s state.State) state.State {
		s.Auth.Authenticated = st.Authenticated
		s.Auth.User = st.User
		return s
	}))
}

// State returns the auth slot.
func (a *Auth) State() state.AuthState {
	return a.tree.GetState().Auth
}

func (a *Auth) track(ctx context.Context, verb, fallback string, call func(context.Context) error, onSuccess func(state.State) state.State) error {
	o := op{id: uuid.NewString(), seq: a.tree.NextSeq()}
	a.tree.Dispatch(state.NewAction("auth/"+verb+"/pending", func(s state.State) state.State {
		s.Auth.Ops = s.Auth.Ops.Begin(o.id, o.seq)
		return s
	}))

	if err := call(gateway.WithOperationID(ctx, o.id)); err != nil {
		msg := apierror.Message(err, fallback)
		a.tree.Dispatch(state.NewAction("auth/"+verb+"/rejected", func(s state.State) state.State {
			s.Auth.Ops = s.Auth.Ops.Settle(o.id, o.seq, msg)
			return s
		}))
		a.logger.WithError(err).Warn(fallback)
		return err
	}

	a.tree.Dispatch(state.NewAction("auth/"+verb+"/fulfilled", func(s state.State) state.State {
		s.Auth.Ops = s.Auth.Ops.Settle(o.id, o.seq, "")
		if onSuccess != nil {
			s = onSuccess(s)
		}
		return s
	}))
	return nil
}

// Login exchanges credentials and starts a session.
func (a *Auth) Login(ctx context.Context, creds models.Credentials) error {
	return a.track(ctx, "login", "Login failed", func(ctx context.Context) error {
		resp, err := a.api.Login(ctx, creds)
		if err != nil {
			return err
		}
		return a.session.Login(resp)
	}, nil)
}

// Register creates an account without logging in.
func (a *Auth) Register(ctx context.Context, reg models.Registration) error {
	return a.track(ctx, "register", "Registration failed", func(ctx context.Context) error {
		return a.api.Register(ctx, reg)
	}, func(s state.State) state.State {
		s.Auth.Registered = true
		return s
	})
}

// GoogleLogin exchanges a verified Google profile for a session.
func (a *Auth) GoogleLogin(ctx context.Context, profile models.GoogleProfile) error {
	return a.track(ctx, "google", "Google login failed", func(ctx context.Context) error {
		resp, err := a.api.GoogleLogin(ctx, profile)
		if err != nil {
			return err
		}
		return a.session.Login(resp)
	}, nil)
}

// Logout ends the session.
func (a *Auth) Logout() error {
	err := a.session.Logout()
	a.tree.Dispatch(state.NewAction("auth/logout", func(s state.State) state.State {
		s.Auth.Ops = s.Auth.Ops.ClearError()
		s.Auth.Registered = false
		return s
	}))
	return err
}

// ClearError drops the auth error.
func (a *Auth) ClearError() {
	a.tree.Dispatch(state.NewAction("auth/clearError", func(s state.State) state.State {
		s.Auth.Ops = s.Auth.Ops.ClearError()
		return s
	}))
}
