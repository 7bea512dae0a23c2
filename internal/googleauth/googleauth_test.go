package googleauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"financemonkey/fm-cli/internal/logging"
)

type fakeGoogle struct {
	*httptest.Server
	verified bool
	codes    []string
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	t.Helper()
	g := &fakeGoogle{verified: true}
	r := chi.NewRouter()
	r.Post("/token", func(w http.ResponseWriter, req *http.Request) {
		require.NoError(t, req.ParseForm())
		g.codes = append(g.codes, req.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "google-access",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	r.Get("/oauth2/v2/userinfo", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "Bearer google-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":             "g-123",
			"email":          "ada@gmail.com",
			"name":           "Ada Lovelace",
			"verified_email": g.verified,
		})
	})
	g.Server = httptest.NewServer(r)
	t.Cleanup(g.Close)
	return g
}

func (g *fakeGoogle) config() Config {
	return Config{
		ClientID:     "client",
		ClientSecret: "secret",
		Timeout:      5 * time.Second,
		Endpoint:     oauth2.Endpoint{AuthURL: g.URL + "/auth", TokenURL: g.URL + "/token"},
		UserinfoURL:  g.URL + "/",
	}
}

// consent plays the browser: it follows the consent URL straight to the
// loopback redirect with the given query.
func consent(t *testing.T, query func(state string) url.Values) func(string) error {
	return func(authURL string) error {
		u, err := url.Parse(authURL)
		require.NoError(t, err)
		redirect := u.Query().Get("redirect_uri")
		go func() {
			resp, err := http.Get(redirect + "?" + query(u.Query().Get("state")).Encode())
			if err == nil {
				resp.Body.Close()
			}
		}()
		return nil
	}
}

func TestNewFlowRequiresClient(t *testing.T) {
	_, err := NewFlow(Config{ClientID: "only-id"}, nil, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSignIn(t *testing.T) {
	g := newFakeGoogle(t)
	flow, err := NewFlow(g.config(), nil, logging.NewDiscardLogger())
	require.NoError(t, err)
	flow.OpenURL = consent(t, func(state string) url.Values {
		return url.Values{"code": {"auth-code"}, "state": {state}}
	})

	profile, err := flow.SignIn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ada@gmail.com", profile.Email)
	assert.Equal(t, "Ada Lovelace", profile.Name)
	assert.Equal(t, "g-123", profile.GoogleID)
	assert.Equal(t, []string{"auth-code"}, g.codes)
}

func TestSignInFailures(t *testing.T) {
	tests := []struct {
		name     string
		query    func(state string) url.Values
		verified bool
		wantErr  string
	}{
		{
			name:     "consent refused",
			query:    func(string) url.Values { return url.Values{"error": {"access_denied"}} },
			verified: true,
			wantErr:  "refused: access_denied",
		},
		{
			name:     "state mismatch",
			query:    func(string) url.Values { return url.Values{"code": {"c"}, "state": {"forged"}} },
			verified: true,
			wantErr:  "state mismatch",
		},
		{
			name:     "unverified email",
			query:    func(state string) url.Values { return url.Values{"code": {"c"}, "state": {state}} },
			verified: false,
			wantErr:  "no verified email",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newFakeGoogle(t)
			g.verified = tt.verified
			flow, err := NewFlow(g.config(), nil, nil)
			require.NoError(t, err)
			flow.OpenURL = consent(t, tt.query)

			_, err = flow.SignIn(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSignInTimeout(t *testing.T) {
	g := newFakeGoogle(t)
	cfg := g.config()
	cfg.Timeout = 50 * time.Millisecond
	flow, err := NewFlow(cfg, nil, nil)
	require.NoError(t, err)
	flow.OpenURL = func(string) error { return nil }

	_, err = flow.SignIn(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
