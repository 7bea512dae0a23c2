package api

import (
	"context"
	"net/url"

	"financemonkey/fm-cli/internal/models"
)

// EmailAccounts lists the connected mailboxes.
func (c *Client) EmailAccounts(ctx context.Context) ([]models.EmailAccount, error) {
	var out []models.EmailAccount
	if err := c.get(ctx, "/emails/accounts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ConnectEmail registers a mailbox and returns the server record.
func (c *Client) ConnectEmail(ctx context.Context, in models.EmailAccountInput) (models.EmailAccount, error) {
	var out models.EmailAccount
	err := c.post(ctx, "/emails/connect", in, &out)
	return record(out, "/emails/connect", err)
}

// DisconnectEmail revokes access to a mailbox. The server keeps the record.
func (c *Client) DisconnectEmail(ctx context.Context, id string) error {
	return c.post(ctx, "/emails/disconnect/"+url.PathEscape(id), nil, nil)
}

// FetchEmails asks the server to scan a mailbox now.
func (c *Client) FetchEmails(ctx context.Context, id string) error {
	return c.post(ctx, "/emails/fetch/"+url.PathEscape(id), nil, nil)
}
