// Command ranking-engine recomputes rankings, series standings and club
// points, and serves them over HTTP.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/ranking-engine/internal/config"
	"github.com/yourusername/ranking-engine/internal/database"
	"github.com/yourusername/ranking-engine/internal/logger"
	"github.com/yourusername/ranking-engine/internal/repository"
	"github.com/yourusername/ranking-engine/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	envFile    string
)

// app holds the wired dependencies of a single command run.
type app struct {
	cfg       *config.Config
	logger    *logrus.Logger
	db        *database.DB
	tables    *config.TablesProvider
	clock     service.Clock
	ranking   *service.RankingService
	standings *service.StandingsService
	clubs     *service.ClubService
	classes   *service.ClassService
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to an optional .env file")

	rootCmd.AddCommand(newRankingCmd(), newStandingsCmd(), newClubsCmd(), newClassifyCmd(), newServeCmd(), newVersionCmd())
}

var rootCmd = &cobra.Command{
	Use:           "ranking-engine",
	Short:         "Compute rankings, series standings and club points",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig(ctx context.Context) (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	secrets, err := config.SecretsSettingsFromEnv()
	if err != nil {
		return nil, err
	}
	if secrets.Enabled {
		if err := config.LoadSecretsFromAWS(ctx, cfg, secrets.Region, secrets.SecretName); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.ValidateEnvironment(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", cfg.App.Environment, err)
	}
	return cfg, nil
}

// setup loads configuration and scoring tables, connects to the database
// and wires the services.
func setup(ctx context.Context) (*app, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	baseLogger := logger.NewLoggerWithOutput(cfg.App.LogLevel, cfg.App.Environment, os.Stderr)

	tables, err := config.LoadTables(cfg.Scoring.TablesPath)
	if err != nil {
		return nil, err
	}
	baseLogger.WithFields(logrus.Fields{
		"path":    cfg.Scoring.TablesPath,
		"version": tables.Version,
	}).Info("Scoring tables loaded")

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	provider := config.NewTablesProvider(tables)
	loc := cfg.Location()
	clock := service.Clock(func() time.Time { return time.Now().In(loc) })

	standings := service.NewStandingsService(repos, db, provider, cfg.StandingsTTL(), cfg.CacheCleanupInterval(), baseLogger)
	return &app{
		cfg:       cfg,
		logger:    baseLogger,
		clock:     clock,
		db:        db,
		tables:    provider,
		ranking:   service.NewRankingService(repos, db, provider, clock, baseLogger).WithInvalidator(standings),
		standings: standings,
		clubs:     service.NewClubService(repos, db, provider, clock, baseLogger).WithInvalidator(standings),
		classes:   service.NewClassService(repos, provider),
	}, nil
}

func (a *app) Close() {
	a.db.Close()
}

// runWithApp wires the app for the duration of fn and cancels on SIGINT or
// SIGTERM.
func runWithApp(fn func(ctx context.Context, a *app) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ranking-engine %s (%s)\n", Version, GitCommit)
		},
	}
}
