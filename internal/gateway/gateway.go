// Package gateway is the single HTTP entry point to the Finance Monkey API.
// It attaches the bearer token, and on a 401 performs at most one token
// refresh before replaying the request once.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"financemonkey/fm-cli/internal/apierror"
	"financemonkey/fm-cli/internal/logging"
	"financemonkey/fm-cli/internal/models"
)

// RefreshPath is the token rotation endpoint.
const RefreshPath = "/auth/refresh-token"

// LoginRoute is where an unrecoverable 401 sends the user.
const LoginRoute = "/login"

// Session is the view of the session service the gateway needs. The
// gateway never stores a token of its own.
type Session interface {
	Token() string
	RefreshToken() string
	Refresh(ctx context.Context) error
	Logout() error
}

// Navigator receives forced navigations.
type Navigator interface {
	Navigate(route string)
}

// Request describes one API call. Path is relative to the base URL.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        interface{}
	OperationID string

	// Anonymous requests carry no bearer token and are never refreshed.
	Anonymous bool
}

// Response is a fully read API response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v interface{}) error {
	if v == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Config carries the transport settings.
type Config struct {
	BaseURL string
	// Timeout of zero defers to the transport.
	Timeout time.Duration
	// HTTPClient overrides the default client; its Jar is kept if set.
	HTTPClient *http.Client
}

// Gateway sends requests on behalf of the stores.
type Gateway struct {
	baseURL   *url.URL
	client    *http.Client
	session   Session
	navigator Navigator
	logger    logging.Logger
}

// New builds a gateway. The navigator may be nil.
func New(cfg Config, session Session, navigator Navigator, logger logging.Logger) (*Gateway, error) {
	if session == nil {
		return nil, errors.New("gateway requires a session")
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", cfg.BaseURL)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if client.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		client.Jar = jar
	}

	return &Gateway{
		baseURL:   base,
		client:    client,
		session:   session,
		navigator: navigator,
		logger:    logger,
	}, nil
}

// BaseURL returns the API root.
func (g *Gateway) BaseURL() string { return g.baseURL.String() }

// Send performs req. Non-2xx statuses come back as *apierror.HTTPError,
// network failures as *apierror.TransportError, and a 401 that could not
// be recovered as apierror.ErrSessionExpired after the session was cleared.
func (g *Gateway) Send(ctx context.Context, req *Request) (*Response, error) {
	if req.OperationID == "" {
		req.OperationID = OperationID(ctx)
	}
	if req.OperationID == "" {
		req.OperationID = uuid.NewString()
	}

	resp, sentToken, err := g.do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusUnauthorized || req.Anonymous {
		return resp, g.check(req, resp)
	}

	if g.session.RefreshToken() == "" {
		g.expire("no refresh token")
		return nil, apierror.ErrSessionExpired
	}

	// Another request may already have rotated the token while this one was
	// in flight; then the replay alone is enough.
	if g.session.Token() == sentToken {
		if err := g.session.Refresh(ctx); err != nil {
			g.expire(err.Error())
			return nil, fmt.Errorf("%w: %w", apierror.ErrSessionExpired, err)
		}
	}

	g.logger.Debug("Replaying request after token refresh",
		logging.F(logging.FieldMethod, req.Method),
		logging.F(logging.FieldPath, req.Path),
		logging.F(logging.FieldOperationID, req.OperationID))

	resp, _, err = g.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp, g.check(req, resp)
}

// RefreshTokens calls the rotation endpoint directly, bypassing 401
// handling. It implements session.Refresher.
func (g *Gateway) RefreshTokens(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	req := &Request{
		Method:      http.MethodPost,
		Path:        RefreshPath,
		Body:        map[string]string{"refreshToken": refreshToken},
		OperationID: uuid.NewString(),
		Anonymous:   true,
	}
	resp, _, err := g.do(ctx, req)
	if err != nil {
		return models.TokenPair{}, err
	}
	if err := g.check(req, resp); err != nil {
		return models.TokenPair{}, err
	}

	var pair models.TokenPair
	if err := resp.Decode(&pair); err != nil {
		return models.TokenPair{}, err
	}
	return pair, nil
}

func (g *Gateway) expire(reason string) {
	g.logger.Warn("Session expired, clearing credentials", logging.F("reason", reason))
	if err := g.session.Logout(); err != nil {
		g.logger.WithError(err).Error("Failed to clear session")
	}
	if g.navigator != nil {
		g.navigator.Navigate(LoginRoute)
	}
}

// do sends one attempt and returns the token it carried.
func (g *Gateway) do(ctx context.Context, req *Request) (*Response, string, error) {
	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode %s %s body: %w", req.Method, req.Path, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, g.url(req), body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build %s %s: %w", req.Method, req.Path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", req.OperationID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	var token string
	if !req.Anonymous {
		token = g.session.Token()
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, token, &apierror.TransportError{Method: req.Method, Path: req.Path, Err: err}
	}
	defer func() {
		if cerr := httpResp.Body.Close(); cerr != nil {
			g.logger.WithError(cerr).Warn("Failed to close response body")
		}
	}()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, token, &apierror.TransportError{Method: req.Method, Path: req.Path, Err: err}
	}

	g.logger.Debug("API call",
		logging.F(logging.FieldMethod, req.Method),
		logging.F(logging.FieldPath, req.Path),
		logging.F(logging.FieldStatus, httpResp.StatusCode),
		logging.F(logging.FieldOperationID, req.OperationID),
		logging.F(logging.FieldDuration, time.Since(start).String()))

	return &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: data}, token, nil
}

func (g *Gateway) url(req *Request) string {
	u := *g.baseURL
	u.Path = g.baseURL.Path + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}
	return u.String()
}

func (g *Gateway) check(req *Request, resp *Response) error {
	if resp.Status >= 200 && resp.Status < 300 {
		return nil
	}
	return &apierror.HTTPError{
		Method:  req.Method,
		Path:    req.Path,
		Status:  resp.Status,
		Message: serverMessage(resp.Body),
	}
}

// serverMessage extracts the message of a structured error body.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
