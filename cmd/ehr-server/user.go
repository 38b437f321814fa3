package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clinicworks/ehr-system/internal/core/domain"
	"github.com/clinicworks/ehr-system/internal/core/service"
	"github.com/clinicworks/ehr-system/internal/pkg/config"
	"github.com/clinicworks/ehr-system/pkg/logger"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage staff accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Provision a staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			role, _ := cmd.Flags().GetString("role")

			ctx := cmd.Context()
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "ehr-cli"})

			store, err := openStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			auth := service.NewAuthService(store.Users, service.NewTokenCodec(cfg.JWTSecret), log)
			user, err := auth.CreateUser(ctx, username, password, domain.Role(role))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created user %q (id %d, role %s).\n", user.Username, user.ID, user.Role)
			return nil
		},
	}
	createCmd.Flags().String("username", "", "Login name (unique)")
	createCmd.Flags().String("password", "", "Initial password (min 8 characters)")
	createCmd.Flags().String("role", "", "One of doctor, nurse, admin")
	_ = createCmd.MarkFlagRequired("username")
	_ = createCmd.MarkFlagRequired("password")
	_ = createCmd.MarkFlagRequired("role")

	cmd.AddCommand(createCmd)
	return cmd
}
