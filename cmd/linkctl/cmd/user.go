package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/templui/securedocs/internal/model"
	"github.com/templui/securedocs/internal/repository"
	"github.com/templui/securedocs/internal/service"
)

func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	cmd.AddCommand(userCreateCmd())
	return cmd
}

func userCreateCmd() *cobra.Command {
	var (
		email string
		role  string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a password account (password read from LINKCTL_PASSWORD)",
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv("LINKCTL_PASSWORD")
			if password == "" {
				return fmt.Errorf("LINKCTL_PASSWORD is not set")
			}

			cfg, database, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close()

			auth := service.NewAuthService(
				repository.NewUserRepository(database),
				cfg.JWTSecret,
				cfg.IsProduction(),
				cfg.JWTExpiry,
			)

			user, err := auth.Register(email, password, model.Role(role))
			if err != nil {
				return fmt.Errorf("creating user: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s user %s (%s)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&role, "role", string(model.RoleSubscriber), "guest, subscriber, author, editor or administrator")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
