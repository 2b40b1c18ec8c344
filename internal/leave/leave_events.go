package leave

import (
	"context"
	"time"

	"go-leave/internal/events"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// eventOutbox stages lifecycle events in the transaction that performs the
// mutation, so an event exists if and only if the change committed.
type eventOutbox struct {
	repo kafka.OutboxRepository
}

func (o eventOutbox) enqueue(ctx context.Context, tx *gorm.DB, eventType string, l *Leave, actorID uuid.UUID, at time.Time) error {
	payload := events.LeaveEvent{
		EventType:  eventType,
		LeaveID:    l.ID.String(),
		UserID:     l.UserID.String(),
		ActorID:    actorID.String(),
		LeaveType:  string(l.LeaveType),
		FromDate:   l.FromDate.Format(dateLayout),
		ToDate:     l.ToDate.Format(dateLayout),
		Days:       l.Days,
		Status:     string(l.Status),
		OccurredAt: at,
	}

	ev, err := kafka.NewOutboxEvent(
		events.LeaveLifecycleTopic,
		eventType,
		"leave",
		l.ID.String(),
		contextutil.GetRequestID(ctx),
		payload,
	)
	if err != nil {
		return err
	}
	return apperror.FromRepository(o.repo.WithTx(tx).Create(ctx, ev), nil)
}
