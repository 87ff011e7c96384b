package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

// NewMedicationsCommand creates the medications command group.
func NewMedicationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "medications",
		Aliases: []string{"meds", "med"},
		Short:   "Manage medications",
		Long:    "List, add, and delete medications and record doses",
	}

	cmd.AddCommand(newMedicationsListCommand())
	cmd.AddCommand(newMedicationsTodayCommand())
	cmd.AddCommand(newMedicationsAddCommand())
	cmd.AddCommand(newMedicationsDeleteCommand())
	cmd.AddCommand(newMedicationsTakenCommand())

	return cmd
}

func newMedicationsListCommand() *cobra.Command {
	var (
		activeOnly bool
		date       string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List medications",
		Long:  "List all medications, optionally only active ones or those scheduled on a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := &carepoint.MedicationFilter{Date: date}
			if activeOnly {
				filter.IsActive = &activeOnly
			}

			return withClient(cmd, func(ctx context.Context, client carepoint.Client) error {
				if err := requireSession(ctx, client); err != nil {
					return err
				}

				medications, err := client.Medications().List(ctx, filter)
				if err != nil {
					return err
				}

				return render(cmd, medications, func(table *tablewriter.Table) {
					for _, med := range medications {
						_ = table.Append(med.ID, med.Name, med.MedicationType, med.DosageDisplay,
							med.Frequency, strings.Join(med.Time, ", "), yesNo(med.IsActive))
					}
				}, "ID", "Name", "Type", "Dosage", "Frequency", "Times", "Active")
			})
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "only active medications")
	cmd.Flags().StringVar(&date, "date", "", "only medications scheduled on this date (YYYY-MM-DD)")

	return cmd
}

func newMedicationsTodayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's medications",
		Long:  "Show the medications scheduled for today and whether each was taken",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client carepoint.Client) error {
				if err := requireSession(ctx, client); err != nil {
					return err
				}

				today, err := client.Medications().Today(ctx)
				if err != nil {
					return err
				}

				return render(cmd, today, func(table *tablewriter.Table) {
					for _, med := range today {
						_ = table.Append(med.ID, med.Name, med.Dosage, strings.Join(med.Time, ", "), yesNo(med.Taken))
					}
				}, "ID", "Name", "Dosage", "Times", "Taken")
			})
		},
	}
}

func newMedicationsAddCommand() *cobra.Command {
	var (
		request carepoint.MedicationRequest
		times   []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a medication",
		Long:  "Create a medication with its dosage, frequency, and reminder times",
		RunE: func(cmd *cobra.Command, args []string) error {
			if request.Name == "" {
				return fmt.Errorf("--name is required")
			}

			if len(times) > 0 {
				enabled := true
				request.ReminderEnabled = &enabled
				request.ReminderTimes = times
			}

			return withClient(cmd, func(ctx context.Context, client carepoint.Client) error {
				med, err := client.Medications().Create(ctx, &request)
				if err != nil {
					return err
				}

				printf(cmd, "Created medication %s (%s)\n", med.Name, med.ID)

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&request.Name, "name", "", "medication name")
	cmd.Flags().StringVar(&request.MedicationType, "type", "", "medication type (e.g. tablet, liquid)")
	cmd.Flags().Float64Var(&request.DosageAmount, "dosage-amount", 0, "dosage amount")
	cmd.Flags().StringVar(&request.DosageUnit, "dosage-unit", "", "dosage unit (e.g. mg)")
	cmd.Flags().StringVar(&request.Frequency, "frequency", "", "dosing frequency (e.g. daily)")
	cmd.Flags().StringVar(&request.StartDate, "start-date", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&request.EndDate, "end-date", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&times, "time", nil, "reminder time HH:MM (repeatable)")
	cmd.Flags().StringVar(&request.Notes, "notes", "", "notes")

	return cmd
}

func newMedicationsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete MEDICATION_ID",
		Short: "Delete a medication",
		Long:  "Delete a medication and its reminder schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client carepoint.Client) error {
				if err := client.Medications().Delete(ctx, args[0]); err != nil {
					return err
				}

				printf(cmd, "Deleted medication %s\n", args[0])

				return nil
			})
		},
	}
}

func newMedicationsTakenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "taken MEDICATION_ID",
		Short: "Toggle today's dose",
		Long:  "Mark today's dose of a medication as taken, or undo it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client carepoint.Client) error {
				record, err := client.Medications().ToggleTaken(ctx, args[0])
				if err != nil {
					return err
				}

				state := "not taken"
				if record.Taken {
					state = "taken"
				}

				printf(cmd, "Medication %s marked %s for %s\n", args[0], state, record.Date)

				return nil
			})
		},
	}
}
