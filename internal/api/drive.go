package api

import (
	"context"

	"financemonkey/fm-cli/internal/models"
)

// DriveStatus reports whether Google Drive export is set up.
func (c *Client) DriveStatus(ctx context.Context) (models.DriveStatus, error) {
	var out models.DriveStatus
	err := c.get(ctx, "/drive/status", nil, &out)
	return out, err
}

// DriveFiles lists the export folder.
func (c *Client) DriveFiles(ctx context.Context) ([]models.DriveFile, error) {
	var out models.DriveFileList
	if err := c.get(ctx, "/drive/files", nil, &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

// DriveExport triggers a server-side export.
func (c *Client) DriveExport(ctx context.Context) (models.DriveExportResult, error) {
	var out models.DriveExportResult
	err := c.post(ctx, "/drive/export", nil, &out)
	return out, err
}
