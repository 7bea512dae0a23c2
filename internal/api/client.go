// Package api maps the Finance Monkey REST endpoints onto typed Go calls.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"financemonkey/fm-cli/internal/gateway"
	"financemonkey/fm-cli/internal/models"
)

// Sender is satisfied by *gateway.Gateway.
type Sender interface {
	Send(ctx context.Context, req *gateway.Request) (*gateway.Response, error)
}

// Client is the typed facade over the gateway.
type Client struct {
	sender Sender
}

// NewClient wraps sender.
func NewClient(sender Sender) *Client {
	return &Client{sender: sender}
}

// call sends one JSON request and decodes the response into out.
func (c *Client) call(ctx context.Context, req *gateway.Request, out interface{}) error {
	resp, err := c.sender.Send(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.call(ctx, &gateway.Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.call(ctx, &gateway.Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) put(ctx context.Context, path string, body, out interface{}) error {
	return c.call(ctx, &gateway.Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.call(ctx, &gateway.Request{Method: http.MethodDelete, Path: path}, nil)
}

func (c *Client) anonymous(ctx context.Context, path string, body, out interface{}) error {
	return c.call(ctx, &gateway.Request{Method: http.MethodPost, Path: path, Body: body, Anonymous: true}, out)
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.anonymous(ctx, "/auth/login", creds, &resp)
	return resp, err
}

// Register creates an account. It does not start a session.
func (c *Client) Register(ctx context.Context, reg models.Registration) error {
	var ignored json.RawMessage
	return c.anonymous(ctx, "/auth/register", reg, &ignored)
}

// GoogleLogin exchanges a verified Google profile for a session.
func (c *Client) GoogleLogin(ctx context.Context, profile models.GoogleProfile) (models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.anonymous(ctx, "/auth/google", profile, &resp)
	return resp, err
}

// DashboardSummary reads the aggregate for r.
func (c *Client) DashboardSummary(ctx context.Context, r models.DateRange) (models.DashboardSummary, error) {
	query := url.Values{}
	query.Set("startDate", r.StartDate)
	query.Set("endDate", r.EndDate)

	var summary models.DashboardSummary
	err := c.get(ctx, "/dashboard/summary", query, &summary)
	return summary, err
}
