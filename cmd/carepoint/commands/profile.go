package commands

import (
	"context"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/carepoint-health/carepoint-client/internal/constants"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

// NewProfileCommand creates the profile command group.
func NewProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show and update your profile",
		Long:  "Display the signed-in user's profile, or update its fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client carepoint.Client) error {
				if err := requireSession(ctx, client); err != nil {
					return err
				}

				user, err := client.Auth().Profile(ctx)
				if err != nil {
					return err
				}

				if user == nil {
					return constants.ErrNotLoggedIn
				}

				return renderUser(cmd, user)
			})
		},
	}

	cmd.AddCommand(newProfileUpdateCommand())

	return cmd
}

func newProfileUpdateCommand() *cobra.Command {
	var request carepoint.UpdateProfileRequest

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update your profile",
		Long:  "Change profile fields; omitted flags are left unchanged",
		RunE: func(cmd *cobra.Command, args []string) error {
			if request == (carepoint.UpdateProfileRequest{}) {
				return constants.ErrNothingToUpdate
			}

			return withClient(cmd, func(ctx context.Context, client carepoint.Client) error {
				user, err := client.Auth().UpdateProfile(ctx, &request)
				if err != nil {
					return err
				}

				if user == nil {
					printf(cmd, "Profile updated\n")

					return nil
				}

				return renderUser(cmd, user)
			})
		},
	}

	cmd.Flags().StringVar(&request.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&request.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&request.Mobile, "mobile", "", "mobile number")
	cmd.Flags().StringVar(&request.DateOfBirth, "date-of-birth", "", "date of birth (YYYY-MM-DD)")
	cmd.Flags().StringVar(&request.Gender, "gender", "", "gender")
	cmd.Flags().StringVar(&request.BloodType, "blood-type", "", "blood type")

	return cmd
}

func renderUser(cmd *cobra.Command, user *carepoint.User) error {
	return render(cmd, user, func(table *tablewriter.Table) {
		_ = table.Append("Name", valueOr(user.FullName(), constants.NotAvailable))
		_ = table.Append("Email", user.Email)
		_ = table.Append("Mobile", valueOr(user.Mobile, constants.NotAvailable))
		_ = table.Append("Date of Birth", valueOr(user.DateOfBirth, constants.NotAvailable))
		_ = table.Append("Blood Type", valueOr(user.BloodType, constants.NotAvailable))
		_ = table.Append("Email Verified", yesNo(user.IsEmailVerified))
	}, "Property", "Value")
}
