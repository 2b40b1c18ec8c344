package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go-leave/internal/audit"
	"go-leave/internal/balance"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/messaging/kafka/producer"
	"go-leave/internal/shared/connection"
	"go-leave/internal/shared/lock"
	"go-leave/internal/user"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// YearlyResetRunner is satisfied by *balance.YearlyReset.
type YearlyResetRunner interface {
	Run(ctx context.Context) (balance.ResetSummary, error)
}

// ScheduleYearlyReset registers the balance reset sweep on c. Runs do not
// overlap: a tick that fires while the previous sweep is still going is
// skipped.
func ScheduleYearlyReset(ctx context.Context, c *cron.Cron, spec string, reset YearlyResetRunner, logger *zap.Logger) (cron.EntryID, error) {
	log := logger.Named("balance.reset.schedule")
	job := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		log.Info("yearly balance reset started")
		summary, err := reset.Run(ctx)
		if err != nil {
			log.Error("yearly balance reset failed", zap.Error(err))
			return
		}
		log.Info("yearly balance reset finished",
			zap.Int("closed_year", summary.ClosedYear),
			zap.Int("users", summary.Users),
			zap.Int("failed", summary.Failed),
			zap.Int("days_expired", summary.DaysExpired),
		)
	}))
	return c.AddJob(spec, job)
}

func RunWorker(cfg *Config) error {
	logger := zap.L().Named("app.worker")

	if cfg.KafkaBroker == "" {
		return errors.New("KAFKA_BROKER is required")
	}

	db, err := connection.ConnectGORMWithRetry(cfg.Postgres(), cfg.ConnectRetries)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.ConnectRetries)
	if err != nil {
		return err
	}
	defer rdb.Close()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, cfg.ConnectRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(db)
	ledger := balance.NewLedger(db, balance.NewRepository(db), cfg.Allowances(), logger)
	reset := balance.NewYearlyReset(
		db,
		user.NewRepository(db),
		ledger,
		lock.NewRedisLocker(rdb, lock.DefaultOptions(), logger),
		audit.NewRecorder(audit.NewRepository(db), logger),
		balance.ResetOptions{Concurrency: cfg.ResetConcurrency},
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := cron.New()
	if _, err := ScheduleYearlyReset(ctx, scheduler, cfg.ResetSchedule, reset, logger); err != nil {
		return err
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		cfg.OutboxPollInterval,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}
