package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const recordTimeout = 3 * time.Second

// Entry describes one audited action. ActionBy is uuid.Nil for system jobs.
type Entry struct {
	ActionBy     uuid.UUID
	ActionType   string
	ActionTarget string
	Details      string
	Metadata     map[string]any
}

// Recorder writes audit entries. Failures never reach the caller: the
// audited operation has already committed when Record runs.
//
//go:generate mockgen -source=audit_recorder.go -destination=mock/audit_recorder_mock.go -package=mock
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

type dbRecorder struct {
	repo   Repository
	logger *zap.Logger
}

func NewRecorder(repo Repository, logger ...*zap.Logger) Recorder {
	l := zap.L().Named("audit.recorder")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit.recorder")
	}
	return &dbRecorder{repo: repo, logger: l}
}

func (r *dbRecorder) Record(ctx context.Context, entry Entry) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	meta := "{}"
	if len(entry.Metadata) > 0 {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			r.logger.Warn("audit metadata not serializable",
				zap.String("action_type", entry.ActionType),
				zap.Error(err),
			)
		} else {
			meta = string(raw)
		}
	}

	log := &Log{
		ID:           uuid.New(),
		ActionBy:     entry.ActionBy,
		ActionType:   entry.ActionType,
		ActionTarget: entry.ActionTarget,
		Details:      entry.Details,
		Metadata:     meta,
	}
	if err := r.repo.Create(ctx, log); err != nil {
		r.logger.Error("failed to write audit log",
			zap.String("action_type", entry.ActionType),
			zap.String("action_target", entry.ActionTarget),
			zap.Error(err),
		)
		return
	}

	r.logger.Debug("audit log written",
		zap.String("id", log.ID.String()),
		zap.String("action_type", entry.ActionType),
	)
}

// LogRecorder only emits structured log lines. Used where no database is
// wired, such as process shutdown.
type LogRecorder struct {
	logger *zap.Logger
}

func NewLogRecorder(logger ...*zap.Logger) *LogRecorder {
	l := zap.L().Named("audit")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit")
	}
	return &LogRecorder{logger: l}
}

func (l *LogRecorder) Record(ctx context.Context, entry Entry) {
	l.logger.Info("audit event",
		zap.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
		zap.String("action_by", entry.ActionBy.String()),
		zap.String("action_type", entry.ActionType),
		zap.String("action_target", entry.ActionTarget),
		zap.String("details", entry.Details),
		zap.Any("metadata", entry.Metadata),
	)
}
