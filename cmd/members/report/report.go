package report

import (
	"fmt"
	"strings"

	"github.com/caarlos0/tablewriter"
	"github.com/dustin/go-humanize"
	"github.com/softmembers/soft-members/cmd"
	"github.com/softmembers/soft-members/pkg/backend"
	"github.com/softmembers/soft-members/pkg/db/models"
	"github.com/spf13/cobra"
)

var (
	org  string
	days int

	// Command is the report command.
	Command = &cobra.Command{
		Use:   "report",
		Short: "Print membership reports",
	}

	expiringCmd = &cobra.Command{
		Use:                "expiring",
		Short:              "List active memberships ending soon",
		Args:               cobra.NoArgs,
		PersistentPreRunE:  cmd.InitMigratedBackendContext,
		PersistentPostRunE: cmd.CloseDBContext,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			var window *int
			if cmd.Flags().Changed("days") {
				window = &days
			}

			o, err := be.ResolveOrganization(ctx, org)
			if err != nil {
				return err
			}

			ms, err := be.ExpiringMembershipsForOrganization(ctx, o.ID, window)
			if err != nil {
				return err
			}

			return tablewriter.Render(
				cmd.OutOrStdout(),
				ms,
				[]string{"Member", "Email", "Type", "Ends", "In"},
				func(m models.MembershipDetail) ([]string, error) {
					ends, in := "-", "-"
					if m.EndDate != nil {
						t, err := backend.ParseDate(*m.EndDate)
						if err != nil {
							return nil, fmt.Errorf("membership %s: %w", m.ID, err)
						}
						ends = *m.EndDate
						in = humanize.Time(t)
					}

					return []string{
						strings.TrimSpace(m.FirstName + " " + m.LastName),
						m.Email,
						m.MembershipTypeName,
						ends,
						in,
					}, nil
				},
			)
		},
	}
)

func init() {
	expiringCmd.Flags().StringVarP(&org, "org", "o", "", "organization slug or id (defaults to the configured default organization)")
	expiringCmd.Flags().IntVarP(&days, "days", "d", 0, "report window in days, 0 is today only (defaults to memberships.expiring_days)")
	Command.AddCommand(expiringCmd)
}
