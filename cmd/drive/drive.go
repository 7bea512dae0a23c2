// Package drive contains the Google Drive export commands shown on the
// settings page.
package drive

import (
	"fmt"

	"github.com/spf13/cobra"

	"financemonkey/fm-cli/cmd/root"
	"financemonkey/fm-cli/internal/apierror"
	"financemonkey/fm-cli/internal/guard"
	"financemonkey/fm-cli/internal/view"
)

// NewCommand builds the drive command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "drive",
		Short:       "Inspect and trigger the Google Drive export",
		Annotations: root.Annotate(guard.RouteSettings),
	}
	cmd.AddCommand(newStatusCommand(), newFilesCommand(), newExportCommand())
	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether Google Drive is connected",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			if err := app.RequireOnline(cmd); err != nil {
				return err
			}
			status, err := app.Container.GetClient().DriveStatus(cmd.Context())
			if err != nil {
				return root.Failed(apierror.Message(err, "Failed to check Google Drive status"), err)
			}
			connected := "no"
			if status.Connected {
				connected = "yes"
			}
			return app.Printer.PrintObject(status, []view.KeyValueRow{
				{Key: "Connected", Value: connected},
				{Key: "Folder", Value: status.FolderName},
			})
		},
	}
}

func newFilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List the files in the export folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			if err := app.RequireOnline(cmd); err != nil {
				return err
			}
			files, err := app.Container.GetClient().DriveFiles(cmd.Context())
			if err != nil {
				return root.Failed(apierror.Message(err, "Failed to list Google Drive files"), err)
			}
			return view.PrintList(app.Printer, files, view.NewDriveFileRows(files), view.Table[view.DriveFileRow]{
				Headers: []string{"ID", "NAME", "KIND", "MODIFIED"},
				Cells: func(r view.DriveFileRow) []string {
					return []string{r.ID, r.Name, r.Kind, r.Modified}
				},
				Footer: fmt.Sprintf("%d files", len(files)),
			})
		},
	}
}

func newExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export all transactions to Google Drive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			if err := app.RequireOnline(cmd); err != nil {
				return err
			}
			result, err := app.Container.GetClient().DriveExport(cmd.Context())
			if err != nil {
				return root.Failed(apierror.Message(err, "Failed to export to Google Drive"), err)
			}
			if app.Printer.Format != view.FormatTable {
				return app.Printer.PrintObject(result, []view.KeyValueRow{
					{Key: "Status", Value: result.Status},
					{Key: "File", Value: result.FileID},
				})
			}
			msg := result.Message
			if msg == "" {
				msg = "Export finished."
			}
			app.Printer.Message("%s", msg)
			if result.FileID != "" {
				app.Printer.Message("File id: %s", result.FileID)
			}
			return nil
		},
	}
}
