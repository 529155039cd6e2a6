package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	jurisdictionstore "depositguard/internal/jurisdiction/store"
	jwttoken "depositguard/internal/jwt_token"
	"depositguard/internal/platform/config"
	"depositguard/internal/platform/logger"
	"depositguard/internal/platform/postgres"
	id "depositguard/pkg/domain"
)

type rootOptions struct {
	configFile string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "depositguard",
		Short:         "Security-deposit compliance engine",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configFile)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.logger = logger.New(cfg.Log.Level, cfg.Log.Format)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (YAML); DEPOSITGUARD_* variables override it")

	root.AddCommand(newServeCmd(opts), newMigrateCmd(opts), newSeedCmd(opts), newTokenCmd(opts))
	return root
}

func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("postgres.dsn is required for this command")
	}
	return postgres.Open(ctx, cfg.Postgres)
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := openDB(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := postgres.Migrate(ctx, db); err != nil {
				return err
			}
			opts.logger.InfoContext(ctx, "schema applied")
			return nil
		},
	}
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load jurisdictions and rule sets into Postgres",
		Long: `Loads the embedded jurisdiction seed (or --file) into Postgres.
Rule sets already referenced by a case are locked and left untouched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := openDB(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := postgres.Migrate(ctx, db); err != nil {
				return err
			}
			report, err := seedInto(ctx, jurisdictionstore.NewPostgres(db), file)
			if err != nil {
				return err
			}
			opts.logger.InfoContext(ctx, "seed complete",
				"jurisdictions", report.Jurisdictions,
				"inserted", report.Inserted,
				"updated", report.Updated,
				"skipped", report.Skipped,
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "seed YAML to load instead of the embedded one")
	return cmd
}

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var (
		user string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			uid, err := id.ParseUserID(user)
			if err != nil {
				return err
			}
			svc := jwttoken.NewJWTService(opts.cfg.Auth.JWTSigningKey, opts.cfg.Auth.Issuer)
			token, err := svc.GenerateAccessToken(uid, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id (UUID) to put in the subject claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
