package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harentsoaR/physiocare-api/internal/services"
	"github.com/harentsoaR/physiocare-api/internal/utils"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage login accounts",
	}

	var in services.UserInput
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a login account",
		Example: "  physiocare-api user add --login physio --password physio123 --role physio --subject 65f0c0ffee0000000000abcd\n" +
			"  physiocare-api user add --login admin --password admin1234 --role admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			ctx := logger.WithContext(context.Background())

			client, _, st, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer client.Disconnect(context.Background())

			auth := services.NewAuthService(st, utils.NewTokenService(cfg.JWTSecret, cfg.TokenTTL), nil)
			user, err := auth.CreateUser(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s user %q (%s)\n", user.Role, user.Login, user.ID.Hex())
			return nil
		},
	}
	addCmd.Flags().StringVar(&in.Login, "login", "", "login name (at least 4 characters)")
	addCmd.Flags().StringVar(&in.Password, "password", "", "plain password (at least 7 characters)")
	addCmd.Flags().StringVar(&in.Role, "role", "", "admin, physio or patient")
	addCmd.Flags().StringVar(&in.SubjectID, "subject", "", "id of the physio or patient the account belongs to")
	_ = addCmd.MarkFlagRequired("login")
	_ = addCmd.MarkFlagRequired("password")
	_ = addCmd.MarkFlagRequired("role")

	var login string
	deleteCmd := &cobra.Command{
		Use:     "delete",
		Short:   "Delete a login account",
		Example: "  physiocare-api user delete --login physio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			ctx := logger.WithContext(context.Background())

			client, _, st, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer client.Disconnect(context.Background())

			auth := services.NewAuthService(st, utils.NewTokenService(cfg.JWTSecret, cfg.TokenTTL), nil)
			user, err := auth.DeleteUser(ctx, login)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s user %q (%s)\n", user.Role, user.Login, user.ID.Hex())
			return nil
		},
	}
	deleteCmd.Flags().StringVar(&login, "login", "", "login name of the account to delete")
	_ = deleteCmd.MarkFlagRequired("login")

	cmd.AddCommand(addCmd, deleteCmd)
	return cmd
}
