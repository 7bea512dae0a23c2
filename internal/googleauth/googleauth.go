// Package googleauth runs the installed-app Google sign-in: a browser
// consent with a loopback redirect, then a userinfo lookup that yields
// the profile the API exchanges for a session.
package googleauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"financemonkey/fm-cli/internal/logging"
	"financemonkey/fm-cli/internal/models"
)

const (
	callbackPath   = "/callback"
	defaultTimeout = 5 * time.Minute
)

// ErrNotConfigured is returned when no OAuth client is configured.
var ErrNotConfigured = errors.New("google sign-in is not configured: set google.client_id and google.client_secret")

// Config holds the OAuth client registration.
type Config struct {
	ClientID     string
	ClientSecret string
	// RedirectPort is the loopback port registered with the client. Zero
	// picks a free port.
	RedirectPort int
	// Timeout bounds the wait for the browser consent.
	Timeout time.Duration

	// Endpoint and UserinfoURL override Google's endpoints.
	Endpoint    oauth2.Endpoint
	UserinfoURL string
}

// Flow performs the sign-in.
type Flow struct {
	cfg    Config
	out    io.Writer
	logger logging.Logger

	// OpenURL is called with the consent URL once the loopback listener
	// is up. The default prints it to out.
	OpenURL func(url string) error
}

// NewFlow validates cfg.
func NewFlow(cfg Config, out io.Writer, logger logging.Logger) (*Flow, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Endpoint.TokenURL == "" {
		cfg.Endpoint = google.Endpoint
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	f := &Flow{cfg: cfg, out: out, logger: logger}
	f.OpenURL = func(url string) error {
		_, err := fmt.Fprintf(f.out, "Open this URL to sign in with Google:\n%s\n", url)
		return err
	}
	return f, nil
}

func (f *Flow) oauthConfig(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     f.cfg.ClientID,
		ClientSecret: f.cfg.ClientSecret,
		Endpoint:     f.cfg.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{oauth2api.OpenIDScope, oauth2api.UserinfoEmailScope, oauth2api.UserinfoProfileScope},
	}
}

type callback struct {
	code string
	err  error
}

// SignIn runs the consent flow and returns the verified profile.
func (f *Flow) SignIn(ctx context.Context) (models.GoogleProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	listener, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(f.cfg.RedirectPort)))
	if err != nil {
		return models.GoogleProfile{}, fmt.Errorf("start loopback listener: %w", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	conf := f.oauthConfig(fmt.Sprintf("http://localhost:%d%s", port, callbackPath))

	state := uuid.NewString()
	results := make(chan callback, 1)
	srv := &http.Server{Handler: callbackRouter(state, results), ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = srv.Serve(listener) }()
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := f.OpenURL(conf.AuthCodeURL(state, oauth2.AccessTypeOnline)); err != nil {
		return models.GoogleProfile{}, err
	}
	f.logger.Debug("Waiting for Google consent", logging.F("port", port))

	var cb callback
	select {
	case cb = <-results:
	case <-ctx.Done():
		return models.GoogleProfile{}, fmt.Errorf("waiting for google consent: %w", ctx.Err())
	}
	if cb.err != nil {
		return models.GoogleProfile{}, cb.err
	}

	tok, err := conf.Exchange(ctx, cb.code)
	if err != nil {
		return models.GoogleProfile{}, fmt.Errorf("token exchange: %w", err)
	}
	return f.profile(ctx, conf, tok)
}

func callbackRouter(state string, results chan<- callback) http.Handler {
	r := chi.NewRouter()
	r.Get(callbackPath, func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		var cb callback
		switch {
		case q.Get("error") != "":
			cb.err = fmt.Errorf("google sign-in was refused: %s", q.Get("error"))
		case q.Get("state") != state:
			cb.err = errors.New("google sign-in state mismatch")
		case q.Get("code") == "":
			cb.err = errors.New("google sign-in returned no code")
		default:
			cb.code = q.Get("code")
		}
		if cb.err != nil {
			http.Error(w, cb.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "You may close this window and return to the terminal.")
		}
		select {
		case results <- cb:
		default:
		}
	})
	return r
}

func (f *Flow) profile(ctx context.Context, conf *oauth2.Config, tok *oauth2.Token) (models.GoogleProfile, error) {
	opts := []option.ClientOption{option.WithHTTPClient(conf.Client(ctx, tok))}
	if f.cfg.UserinfoURL != "" {
		opts = append(opts, option.WithEndpoint(f.cfg.UserinfoURL))
	}
	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return models.GoogleProfile{}, fmt.Errorf("create userinfo client: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return models.GoogleProfile{}, fmt.Errorf("read google profile: %w", err)
	}
	if info.VerifiedEmail != nil && !*info.VerifiedEmail {
		return models.GoogleProfile{}, fmt.Errorf("google account %s has no verified email", info.Email)
	}
	if info.Email == "" || info.Id == "" {
		return models.GoogleProfile{}, errors.New("google profile is missing email or id")
	}
	return models.GoogleProfile{Email: info.Email, Name: info.Name, GoogleID: info.Id}, nil
}
