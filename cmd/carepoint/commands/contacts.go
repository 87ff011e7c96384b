package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/carepoint-health/carepoint-client/internal/constants"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

// NewContactsCommand creates the emergency contacts command group.
func NewContactsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contacts",
		Aliases: []string{"contact"},
		Short:   "Manage emergency contacts",
		Long:    "List emergency contacts and choose the primary one",
	}

	cmd.AddCommand(newContactsListCommand())
	cmd.AddCommand(newContactsPrimaryCommand())
	cmd.AddCommand(newContactsSetPrimaryCommand())

	return cmd
}

func newContactsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List emergency contacts",
		Long:  "List emergency contacts and the remaining slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client carepoint.Client) error {
				if err := requireSession(ctx, client); err != nil {
					return err
				}

				list, err := client.EmergencyContacts().List(ctx)
				if err != nil {
					return err
				}

				err = render(cmd, list, func(table *tablewriter.Table) {
					for _, contact := range list.Contacts {
						_ = table.Append(strconv.Itoa(contact.ID), contact.Name,
							valueOr(contact.DisplayRelationship, contact.Relationship),
							contact.PhoneNumber, yesNo(contact.IsPrimary))
					}
				}, "ID", "Name", "Relationship", "Phone", "Primary")
				if err != nil {
					return err
				}

				if isTableOutput() && list.Metadata.MaxContacts > 0 {
					printf(cmd, "%d of %d contacts used\n", list.Metadata.TotalContacts, list.Metadata.MaxContacts)
				}

				return nil
			})
		},
	}
}

func newContactsPrimaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "primary",
		Short: "Show the primary contact",
		Long:  "Display the primary emergency contact",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client carepoint.Client) error {
				if err := requireSession(ctx, client); err != nil {
					return err
				}

				contact, err := client.EmergencyContacts().Primary(ctx)
				if err != nil {
					return err
				}

				if contact == nil {
					printf(cmd, "No primary contact set\n")

					return nil
				}

				return render(cmd, contact, func(table *tablewriter.Table) {
					_ = table.Append("Name", contact.Name)
					_ = table.Append("Relationship", valueOr(contact.DisplayRelationship, constants.NotAvailable))
					_ = table.Append("Phone", contact.PhoneNumber)
					_ = table.Append("Email", valueOr(contact.Email, constants.NotAvailable))
				}, "Property", "Value")
			})
		},
	}
}

func newContactsSetPrimaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-primary CONTACT_ID",
		Short: "Set the primary contact",
		Long:  "Make an emergency contact the primary one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: %s", constants.ErrIDRequired, args[0])
			}

			return withClient(cmd, func(ctx context.Context, client carepoint.Client) error {
				resp, err := client.EmergencyContacts().SetPrimary(ctx, id)
				if err != nil {
					return err
				}

				printf(cmd, "%s\n", valueOr(resp.Message, "Primary contact updated"))

				return nil
			})
		},
	}
}
