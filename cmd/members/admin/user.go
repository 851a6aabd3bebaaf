package admin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/caarlos0/tablewriter"
	"github.com/softmembers/soft-members/cmd"
	"github.com/softmembers/soft-members/pkg/access"
	"github.com/softmembers/soft-members/pkg/backend"
	"github.com/softmembers/soft-members/pkg/db/models"
	"github.com/softmembers/soft-members/pkg/proto"
	"github.com/spf13/cobra"
)

func userCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:     "user",
		Aliases: []string{"users"},
		Short:   "Manage users",
	}

	var org, role, password, firstName, lastName string
	createCmd := &cobra.Command{
		Use:                "create EMAIL",
		Short:              "Create an active user",
		Long:               "Create an active user without going through registration. This is how the first administrators are seeded.",
		Args:               cobra.ExactArgs(1),
		PersistentPreRunE:  cmd.InitMigratedBackendContext,
		PersistentPostRunE: cmd.CloseDBContext,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			r := access.ParseRole(role)
			if r < 0 {
				return fmt.Errorf("%w: %q", access.ErrInvalidRole, role)
			}

			o, err := be.ResolveOrganization(ctx, org)
			if err != nil {
				return err
			}

			u, err := be.CreateUser(ctx, backend.UserOptions{
				OrganizationID: o.ID,
				Email:          args[0],
				Password:       password,
				FirstName:      firstName,
				LastName:       lastName,
				Role:           r,
			})
			if err != nil {
				return err
			}

			cmd.Printf("Created %s %s in %s (%s)\n", u.Role(), u.Email(), o.Slug, u.ID())
			return nil
		},
	}

	createCmd.Flags().StringVarP(&org, "org", "o", "", "organization slug or id (defaults to the configured default organization)")
	createCmd.Flags().StringVarP(&role, "role", "r", access.AdminRole.String(), "user role: member, admin or super_admin")
	createCmd.Flags().StringVarP(&password, "password", "p", "", "user password")
	createCmd.Flags().StringVar(&firstName, "first-name", "", "user first name")
	createCmd.Flags().StringVar(&lastName, "last-name", "", "user last name")
	createCmd.MarkFlagRequired("password") // nolint: errcheck

	statusCmd := &cobra.Command{
		Use:                "status EMAIL STATUS",
		Short:              "Set the account status of a user",
		Long:               "Set the account status of a user to pending, active or suspended. Only active users can log in.",
		Args:               cobra.ExactArgs(2),
		PersistentPreRunE:  cmd.InitMigratedBackendContext,
		PersistentPostRunE: cmd.CloseDBContext,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			u, err := be.UserByEmail(ctx, args[0])
			if err != nil {
				return err
			}

			u, err = be.SetUserStatus(ctx, u.ID(), models.UserStatus(args[1]))
			if err != nil {
				return err
			}

			cmd.Printf("Set %s to %s\n", u.Email(), args[1])
			return nil
		},
	}

	var listOrg string
	listCmd := &cobra.Command{
		Use:                "list",
		Aliases:            []string{"ls"},
		Short:              "List the users of an organization",
		Args:               cobra.NoArgs,
		PersistentPreRunE:  cmd.InitMigratedBackendContext,
		PersistentPostRunE: cmd.CloseDBContext,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			o, err := be.ResolveOrganization(ctx, listOrg)
			if err != nil {
				return err
			}

			users, err := be.Users(ctx, o.ID)
			if err != nil {
				return err
			}

			return tablewriter.Render(
				cmd.OutOrStdout(),
				users,
				[]string{"ID", "Email", "Name", "Role", "Active"},
				func(u proto.User) ([]string, error) {
					return []string{
						u.ID(),
						u.Email(),
						strings.TrimSpace(u.FirstName() + " " + u.LastName()),
						u.Role().String(),
						strconv.FormatBool(u.IsActive()),
					}, nil
				},
			)
		},
	}

	listCmd.Flags().StringVarP(&listOrg, "org", "o", "", "organization slug or id (defaults to the configured default organization)")

	userCmd.AddCommand(createCmd, statusCmd, listCmd)

	return userCmd
}
