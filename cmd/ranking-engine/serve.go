package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/ranking-engine/internal/api"
	"github.com/yourusername/ranking-engine/internal/config"
	"github.com/yourusername/ranking-engine/internal/health"
	"github.com/yourusername/ranking-engine/internal/logger"
	"github.com/yourusername/ranking-engine/internal/metrics"
	"github.com/yourusername/ranking-engine/internal/scheduler"
	"github.com/yourusername/ranking-engine/internal/scoring"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the nightly scheduler and the HTTP read API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(serve)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	log := a.logger
	loc := a.cfg.Location()

	sched := scheduler.NewScheduler(a.ranking, scheduler.Options{
		Disciplines: a.cfg.Ranking.Disciplines,
		Schedule:    a.cfg.Ranking.SnapshotSchedule,
		Snapshot:    a.cfg.Ranking.SnapshotEnabled,
		Timeout:     a.cfg.RecomputeTimeout(),
		Location:    loc,
	}, log)
	if err := sched.ScheduleRankingJobs(); err != nil {
		return fmt.Errorf("failed to schedule ranking jobs: %w", err)
	}

	srvCfg := health.Config{
		ServiceName:   a.cfg.App.Name,
		Version:       Version,
		Port:          a.cfg.Metrics.Port,
		Logger:        log,
		DB:            a.db,
		TablesVersion: func() string { return a.tables.Current().Version },
		API:           api.NewHandler(a.ranking, a.standings, a.clubs, a.classes, a.clock, log).Routes(),
	}
	if a.cfg.Metrics.Enabled {
		metrics.InitRegistry()
		srvCfg.Metrics = metrics.Handler()
		srvCfg.MetricsPath = a.cfg.Metrics.Path
	}
	srv := health.NewServer(srvCfg)
	if err := srv.Start(ctx); err != nil {
		return err
	}

	if a.cfg.Scoring.Watch {
		go watchTables(ctx, a, log)
	}

	if err := sched.Start(); err != nil {
		return err
	}
	srv.SetReady(true)
	log.WithField("next_run", sched.NextRun()).Info("Ranking engine running")

	<-ctx.Done()
	log.Info("Shutting down")
	srv.SetReady(false)
	sched.Stop()
	if err := srv.Shutdown(); err != nil {
		log.WithError(err).Warn("HTTP server shutdown failed")
	}
	return nil
}

// watchTables keeps the scoring tables in sync with the file on disk.
// Cached standings computed with older tables are dropped on reload.
func watchTables(ctx context.Context, a *app, log *logrus.Logger) {
	audit := logger.NewAuditLogger(log)
	path := a.cfg.Scoring.TablesPath
	previous := a.tables.Current().Version

	onReload := func(tables *scoring.Tables) {
		audit.LogTablesReloaded(path, previous, tables.Version)
		previous = tables.Version
		metrics.RecordTablesReload(nil)
		a.standings.Flush()
	}
	onError := func(err error) {
		audit.LogTablesRejected(path, err)
		metrics.RecordTablesReload(err)
	}

	if err := config.WatchTables(ctx, path, a.tables, onReload, onError); err != nil {
		log.WithError(err).Error("Scoring tables watcher stopped")
	}
}
