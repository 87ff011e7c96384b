package commands

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/carepoint-health/carepoint-client/internal/constants"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

// NewRecordsCommand creates the health records command group.
func NewRecordsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "records",
		Aliases: []string{"record", "rec"},
		Short:   "Manage health records",
		Long:    "List, upload, and delete health records such as lab results",
	}

	cmd.AddCommand(newRecordsListCommand())
	cmd.AddCommand(newRecordsUploadCommand())
	cmd.AddCommand(newRecordsDeleteCommand())

	return cmd
}

func newRecordsListCommand() *cobra.Command {
	var filter carepoint.HealthRecordFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List health records",
		Long:  "List health records, optionally filtered by type or a search term",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client carepoint.Client) error {
				if err := requireSession(ctx, client); err != nil {
					return err
				}

				records, err := client.HealthRecords().List(ctx, &filter)
				if err != nil {
					return err
				}

				return render(cmd, records, func(table *tablewriter.Table) {
					for _, record := range records {
						_ = table.Append(record.ID, record.Title, record.Type, record.Date,
							valueOr(record.FileName, constants.NotAvailable))
					}
				}, "ID", "Title", "Type", "Date", "File")
			})
		},
	}

	cmd.Flags().StringVar(&filter.Type, "type", "", "record type")
	cmd.Flags().StringVar(&filter.Search, "search", "", "search term")

	return cmd
}

func newRecordsUploadCommand() *cobra.Command {
	var request carepoint.HealthRecordRequest

	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a health record",
		Long:  "Upload a document or image as a new health record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			if !info.Mode().IsRegular() {
				return fmt.Errorf("%w: %s", constants.ErrNotRegularFile, path)
			}

			file, err := os.Open(path) //nolint:gosec // user-supplied upload path
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}

			defer func() { _ = file.Close() }()

			if request.Title == "" {
				request.Title = filepath.Base(path)
			}

			attachment := &carepoint.Attachment{
				Name:        filepath.Base(path),
				ContentType: mime.TypeByExtension(filepath.Ext(path)),
				Reader:      file,
			}

			return withClient(cmd, func(ctx context.Context, client carepoint.Client) error {
				record, err := client.HealthRecords().Create(ctx, &request, attachment)
				if err != nil {
					return err
				}

				printf(cmd, "Uploaded health record %s (%s)\n", record.Title, record.ID)

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&request.Title, "title", "", "record title (defaults to the file name)")
	cmd.Flags().StringVar(&request.Type, "type", "", "record type")
	cmd.Flags().StringVar(&request.Date, "date", "", "record date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&request.Description, "description", "", "description")
	cmd.Flags().StringVar(&request.Notes, "notes", "", "notes")

	return cmd
}

func newRecordsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete RECORD_ID",
		Short: "Delete a health record",
		Long:  "Delete a health record and its attached file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client carepoint.Client) error {
				if err := client.HealthRecords().Delete(ctx, args[0]); err != nil {
					return err
				}

				printf(cmd, "Deleted health record %s\n", args[0])

				return nil
			})
		},
	}
}
