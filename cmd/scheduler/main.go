package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/segyhp/savings-ledger/internal/app"
	"github.com/segyhp/savings-ledger/internal/config"
	"github.com/segyhp/savings-ledger/internal/domain"
	"github.com/segyhp/savings-ledger/internal/service"
	"github.com/segyhp/savings-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format).With(slog.String("component", "scheduler"))
	slog.SetDefault(log)

	if cfg.Database.Backend == config.BackendMemory {
		log.Warn("memory backend is private to this process, the audit will only ever see an empty ledger")
	}

	storage, err := app.OpenStorage(cfg)
	if err != nil {
		log.Error("failed to initialize storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer storage.Close()

	summaryCache := app.OpenSummaryCache(cfg)
	defer summaryCache.Close()

	services := app.NewServices(cfg, storage, summaryCache, log)

	cronLogger := newCronLogger(log)
	c := cron.New(
		cron.WithLocation(cfg.GetSchedulerLocation()),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	if err := setupCronJobs(c, cfg, services.Meetings, log); err != nil {
		log.Error("failed to schedule jobs", slog.Any("error", err))
		os.Exit(1)
	}

	c.Start()
	log.Info("scheduler started",
		slog.String("audit_schedule", cfg.Scheduler.AuditSchedule),
		slog.Bool("audit_repair", cfg.Scheduler.AuditRepair),
		slog.String("timezone", cfg.Scheduler.Timezone))

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down scheduler")
	<-c.Stop().Done()
	log.Info("scheduler stopped")
}

// auditor is the part of MeetingService the audit job needs
type auditor interface {
	Audit(ctx context.Context, repair bool) ([]domain.SummaryDrift, error)
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, meetings auditor, log *slog.Logger) error {
	_, err := c.AddFunc(cfg.Scheduler.AuditSchedule, func() {
		runAudit(meetings, cfg.Scheduler.AuditRepair, log)
	})
	return err
}

// runAudit compares stored meeting summaries with their child records
func runAudit(meetings auditor, repair bool, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	started := time.Now()
	drifts, err := meetings.Audit(ctx, repair)
	if err != nil {
		log.Error("meeting summary audit failed", slog.Any("error", err))
		return
	}

	repaired := 0
	for _, d := range drifts {
		if d.Repaired {
			repaired++
		}
	}

	log.Info("meeting summary audit completed",
		slog.Int("drifted", len(drifts)),
		slog.Int("repaired", repaired),
		slog.Duration("took", time.Since(started)))
}

var _ auditor = (*service.MeetingService)(nil)
