package main

import (
	"context"
	"fmt"
	"log/slog"

	"photo_studio/internal/config"
	"photo_studio/internal/repository"
	userservice "photo_studio/internal/services/user_service"
	"photo_studio/internal/transport/http/dto"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustLoad(configPath)
		log := setupLogger(cfg.Env)

		repo, err := repository.NewRepository(cmd.Context(), cfg.DSN)
		if err != nil {
			return err
		}
		defer repo.Close()

		if err := repo.Migrate(cmd.Context()); err != nil {
			return err
		}

		log.Info("schema is up to date")

		return nil
	},
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account, typically the first superadmin",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		role, _ := cmd.Flags().GetString("role")

		cfg := config.MustLoad(configPath)
		log := setupLogger(cfg.Env)

		return createAdmin(cmd.Context(), log, cfg, dto.CreateUserRequest{
			Username: username,
			Password: password,
			Role:     role,
		})
	},
}

func init() {
	adminCreateCmd.Flags().String("username", "", "login name")
	adminCreateCmd.Flags().String("password", "", "password, at least 8 characters")
	adminCreateCmd.Flags().String("role", "superadmin", "admin or superadmin")
	_ = adminCreateCmd.MarkFlagRequired("username")
	_ = adminCreateCmd.MarkFlagRequired("password")

	adminCmd.AddCommand(adminCreateCmd)
}

func createAdmin(ctx context.Context, log *slog.Logger, cfg *config.Config, req dto.CreateUserRequest) error {
	repo, err := repository.NewRepository(ctx, cfg.DSN)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.Migrate(ctx); err != nil {
		return err
	}

	user, err := userservice.NewUserService(log, repo.User).Create(ctx, req)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	log.Info("admin created", slog.String("username", user.Username), slog.String("role", string(user.Role)))

	return nil
}
