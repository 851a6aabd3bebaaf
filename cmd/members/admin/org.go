package admin

import (
	"github.com/caarlos0/tablewriter"
	"github.com/dustin/go-humanize"
	"github.com/softmembers/soft-members/cmd"
	"github.com/softmembers/soft-members/pkg/backend"
	"github.com/softmembers/soft-members/pkg/db/models"
	"github.com/spf13/cobra"
)

func orgCommand() *cobra.Command {
	orgCmd := &cobra.Command{
		Use:     "org",
		Aliases: []string{"organization", "orgs"},
		Short:   "Manage organizations",
	}

	createCmd := &cobra.Command{
		Use:                "create NAME SLUG",
		Short:              "Create an organization",
		Args:               cobra.ExactArgs(2),
		PersistentPreRunE:  cmd.InitMigratedBackendContext,
		PersistentPostRunE: cmd.CloseDBContext,
		RunE: func(cmd *cobra.Command, args []string) error {
			be := backend.FromContext(cmd.Context())
			org, err := be.CreateOrganization(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			cmd.Printf("Created organization %s (%s)\n", org.Slug, org.ID)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:                "list",
		Aliases:            []string{"ls"},
		Short:              "List organizations",
		Args:               cobra.NoArgs,
		PersistentPreRunE:  cmd.InitMigratedBackendContext,
		PersistentPostRunE: cmd.CloseDBContext,
		RunE: func(cmd *cobra.Command, _ []string) error {
			be := backend.FromContext(cmd.Context())
			orgs, err := be.Organizations(cmd.Context())
			if err != nil {
				return err
			}

			return tablewriter.Render(
				cmd.OutOrStdout(),
				orgs,
				[]string{"ID", "Slug", "Name", "Created"},
				func(o models.Organization) ([]string, error) {
					return []string{
						o.ID,
						o.Slug,
						o.Name,
						humanize.Time(o.CreatedAt),
					}, nil
				},
			)
		},
	}

	orgCmd.AddCommand(createCmd, listCmd)

	return orgCmd
}
