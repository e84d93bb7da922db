package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"devmatch-service/internal/auth"
	"devmatch-service/internal/config"
	"devmatch-service/internal/db"
	"devmatch-service/internal/logger"
)

var (
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE:  runServe,
	}
	migrateOnStart bool

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE:  runMigrate,
	}

	tokenCmd = &cobra.Command{
		Use:   "token [user-id]",
		Short: "Issue a bearer token for local testing",
		Long:  `Signs a token with JWT_SECRET. Refused when ENV is production.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runToken,
	}
	tokenTTL time.Duration
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&migrateOnStart, "migrate", false, "Apply database migrations before serving")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (defaults to JWT_TTL)")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.Server.Env, cfg.Logging.Level)

	database, err := db.Connect(cmd.Context(), cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close()

	return db.Migrate(cmd.Context(), database)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.IsProduction() {
		return fmt.Errorf("token issuing is disabled in production")
	}
	if _, err := uuid.Parse(args[0]); err != nil {
		return fmt.Errorf("user id must be a uuid: %w", err)
	}

	ttl := tokenLifetime(cmd.Flags().Changed("ttl"), tokenTTL, cfg.JWT.TTL)
	token, err := auth.NewJWTValidator(cfg.JWT.Secret).Issue(args[0], ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

// tokenLifetime prefers an explicit --ttl over the configured JWT_TTL.
func tokenLifetime(flagSet bool, flagTTL, configTTL time.Duration) time.Duration {
	if flagSet && flagTTL > 0 {
		return flagTTL
	}
	return configTTL
}

func withTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}
