package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/harentsoaR/physiocare-api/internal/seed"
	"github.com/harentsoaR/physiocare-api/internal/services"
	"github.com/harentsoaR/physiocare-api/internal/store/mongostore"
	"github.com/harentsoaR/physiocare-api/internal/utils"
)

func seedCmd() *cobra.Command {
	var keep bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo patients, physios, records and accounts",
		Long: "seed drops the users, patients, physios and records collections and " +
			"loads the demo clinic. Use --keep to add to existing data instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			ctx := logger.WithContext(context.Background())

			client, db, st, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer client.Disconnect(context.Background())

			if !keep {
				if err := mongostore.Drop(ctx, db); err != nil {
					return err
				}
				if err := mongostore.EnsureIndexes(ctx, db); err != nil {
					return err
				}
				logger.Info().Msg("dropped existing collections")
			}

			auth := services.NewAuthService(st, utils.NewTokenService(cfg.JWTSecret, cfg.TokenTTL), nil)
			sum, err := seed.Load(ctx, st, auth)
			if err != nil {
				logger.Error().Err(err).Msg("seeding failed")
				return err
			}
			logger.Info().
				Int("patients", sum.Patients).
				Int("physios", sum.Physios).
				Int("records", sum.Records).
				Int("users", sum.Users).
				Msg("demo data loaded")
			return nil
		},
	}
	cmd.Flags().BoolVar(&keep, "keep", false, "keep existing documents instead of dropping the collections first")
	return cmd
}
