package consumer

import (
	"context"
	"encoding/json"
	"errors"

	"go-leave/internal/events"
	"go-leave/internal/shared/apperror"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is satisfied by *kafkago.Reader.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// BalanceSeeder is satisfied by balance.Service.
type BalanceSeeder interface {
	EnsureYear(ctx context.Context, userID string, year int) error
}

// ConsumeUserLifecycle seeds leave balances for newly created users. A
// message whose handling fails with a retryable error is left uncommitted.
func ConsumeUserLifecycle(
	ctx context.Context,
	reader MessageReader,
	seeder BalanceSeeder,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.user_lifecycle")
	log.Info("user lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("user lifecycle consumer stopped")
				return
			}
			log.Error("fetch user lifecycle message failed", zap.Error(err))
			continue
		}

		if err := HandleUserLifecycle(ctx, msg, seeder, log); err != nil {
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit user lifecycle message failed", zap.Error(err))
		}
	}
}

// HandleUserLifecycle returns an error only when the message should be
// redelivered.
func HandleUserLifecycle(ctx context.Context, msg kafkago.Message, seeder BalanceSeeder, log *zap.Logger) error {
	var event events.UserCreatedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode user lifecycle event failed", zap.Error(err))
		return nil
	}
	if event.EventType != events.UserCreated {
		log.Debug("ignoring user lifecycle event", zap.String("event_type", event.EventType))
		return nil
	}

	year := 0
	if !event.OccurredAt.IsZero() {
		year = event.OccurredAt.UTC().Year()
	}

	if err := seeder.EnsureYear(ctx, event.UserID, year); err != nil {
		if errors.Is(err, apperror.ErrUnavailable) {
			log.Error("seed balances failed, will retry",
				zap.String("user_id", event.UserID),
				zap.Error(err),
			)
			return err
		}
		log.Warn("seed balances rejected, skipping",
			zap.String("user_id", event.UserID),
			zap.Error(err),
		)
		return nil
	}

	log.Info("leave balances seeded from user_created event", zap.String("user_id", event.UserID))
	return nil
}
