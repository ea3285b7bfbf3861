package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/harentsoaR/physiocare-api/internal/config"
	"github.com/harentsoaR/physiocare-api/internal/handlers"
	"github.com/harentsoaR/physiocare-api/internal/logging"
	"github.com/harentsoaR/physiocare-api/internal/middleware"
	"github.com/harentsoaR/physiocare-api/internal/revocation"
	"github.com/harentsoaR/physiocare-api/internal/services"
	"github.com/harentsoaR/physiocare-api/internal/store"
	"github.com/harentsoaR/physiocare-api/internal/store/mongostore"
	"github.com/harentsoaR/physiocare-api/internal/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "physiocare-api",
		Short:        "PhysioCare clinic API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(userCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// setup loads the configuration and the logger shared by every command.
func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.DotenvMissing() {
		logger.Info().Msg("No .env file found, relying on environment variables.")
	}
	return cfg, logger, nil
}

// openStore connects to MongoDB, makes sure the indexes exist and returns the
// client (for Disconnect) together with the store.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*mongo.Client, *mongo.Database, *store.Store, error) {
	client, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoTimeout)
	if err != nil {
		return nil, nil, nil, err
	}
	db := client.Database(cfg.MongoDatabase)
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, nil, err
	}
	logger.Info().Str("database", cfg.MongoDatabase).Msg("connected to MongoDB")
	return client, db, mongostore.New(db), nil
}

type mongoPinger struct {
	client *mongo.Client
}

func (p mongoPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}

func ginMode(mode string) string {
	switch mode {
	case gin.DebugMode, gin.TestMode:
		return mode
	default:
		return gin.ReleaseMode
	}
}

func runServer() error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}
	gin.SetMode(ginMode(cfg.GinMode))

	ctx := logger.WithContext(context.Background())
	client, _, st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open the database")
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("disconnecting from MongoDB")
		}
	}()

	// Left nil without redis: logout then cannot revoke tokens.
	var revoker revocation.Revoker
	if cfg.RedisAddr != "" {
		rc, err := revocation.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Error().Err(err).Msg("failed to connect to Redis")
			return err
		}
		defer rc.Close()
		revoker = revocation.NewRedisRevoker(rc)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("token revocation enabled")
	} else {
		logger.Warn().Msg("REDIS_ADDR not set, logged out tokens stay valid until they expire")
	}

	tokens := utils.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	notifier := services.NewNotificationService(services.SMTPSettings{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.EmailUser,
		Password: cfg.EmailPass,
	})

	h := handlers.NewHandler(
		services.NewPatientService(st),
		services.NewPhysioService(st),
		services.NewRecordService(st, notifier),
		services.NewAuthService(st, tokens, revoker),
		mongoPinger{client: client},
	)
	router := handlers.NewRouter(h, handlers.RouterConfig{
		BasePath:    cfg.BasePath,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
		Auth:        middleware.AuthMiddleware(tokens, revoker),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Str("base_path", cfg.BasePath).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error().Err(err).Msg("server failed")
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
