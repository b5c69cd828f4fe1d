package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eventboard/server/internal/domain/users"
	"github.com/eventboard/server/internal/storage/postgres"
)

func newUsersCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage login accounts",
	}
	cmd.AddCommand(newUsersCreateCommand(global))
	return cmd
}

func newUsersCreateCommand(global *globalOptions) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a login account",
		Long: `Create a login account with a bcrypt-hashed password.

Example:
  server users create --username editor --password 's3cret'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(username) == "" || password == "" {
				return errors.New("--username and --password are required")
			}

			cfg, err := global.loadConfig()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}

			ctx := cmd.Context()
			pool, err := openPool(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			repo, err := postgres.NewRepository(pool)
			if err != nil {
				return err
			}

			// Account creation never issues tokens.
			user, err := users.NewService(repo.Users(), nil).Create(ctx, username, password)
			if errors.Is(err, users.ErrUsernameTaken) {
				return fmt.Errorf("username %q already exists", strings.TrimSpace(username))
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	return cmd
}
