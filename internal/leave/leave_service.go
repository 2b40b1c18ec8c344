package leave

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-leave/internal/audit"
	"go-leave/internal/balance"
	balanceerrors "go-leave/internal/balance/errors"
	"go-leave/internal/events"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/lock"
	"go-leave/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultMaxLeaveDays = 30

type Options struct {
	Now          func() time.Time
	MaxLeaveDays int
	TeamCapacity int
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.MaxLeaveDays <= 0 {
		o.MaxLeaveDays = defaultMaxLeaveDays
	}
	if o.TeamCapacity <= 0 {
		o.TeamCapacity = defaultTeamCapacity
	}
	return o
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Apply(ctx context.Context, userID, role string, req ApplyLeaveRequest) (ApplyLeaveResponse, error)
	Cancel(ctx context.Context, userID, leaveID string) (CancelLeaveResponse, error)
	History(ctx context.Context, userID string, q HistoryQuery) ([]LeaveResponse, error)
}

type service struct {
	db       *gorm.DB
	repo     Repository
	ledger   balance.Ledger
	outbox   eventOutbox
	locker   lock.Locker
	recorder audit.Recorder
	opts     Options
	logger   *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	ledger balance.Ledger,
	outbox kafka.OutboxRepository,
	locker lock.Locker,
	recorder audit.Recorder,
	opts Options,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		ledger:   ledger,
		outbox:   eventOutbox{repo: outbox},
		locker:   locker,
		recorder: recorder,
		opts:     opts.withDefaults(),
		logger:   l,
	}
}

func (s *service) log(ctx context.Context) *zap.Logger {
	return contextutil.GetLogger(ctx, s.logger)
}

func (s *service) Apply(ctx context.Context, userID, role string, req ApplyLeaveRequest) (ApplyLeaveResponse, error) {
	logger := s.log(ctx)
	logger.Debug("apply leave requested",
		zap.String("user_id", userID),
		zap.String("from_date", req.FromDate),
		zap.String("to_date", req.ToDate),
		zap.String("leave_type", req.LeaveType),
	)

	uid, err := uuid.Parse(userID)
	if err != nil {
		return ApplyLeaveResponse{}, leaveerrors.ErrInvalidUserID
	}
	from, to, err := s.validateRange(req.FromDate, req.ToDate, user.Role(role))
	if err != nil {
		logger.Warn("apply leave validation failed", zap.String("user_id", userID), zap.Error(err))
		return ApplyLeaveResponse{}, err
	}
	t, ok := balance.ParseLeaveType(req.LeaveType)
	if !ok {
		return ApplyLeaveResponse{}, leaveerrors.ErrInvalidLeaveType
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return ApplyLeaveResponse{}, leaveerrors.ErrReasonRequired
	}

	days := DaysBetween(from, to)
	l := &Leave{
		ID:           uuid.New(),
		UserID:       uid,
		LeaveType:    t,
		FromDate:     from,
		ToDate:       to,
		Days:         days,
		ReservedDays: days,
		Reason:       reason,
		Status:       StatusPending,
	}

	var remaining int
	err = s.locker.WithLock(ctx, lock.UserKey(userID), func(ctx context.Context) error {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			if err := NewOverlapDetector(repo).Check(ctx, uid, from, to); err != nil {
				return err
			}

			var err error
			remaining, err = s.ledger.WithTx(tx).Deduct(ctx, uid, t, l.Year(), days, balance.Movement{
				Reason:  balance.ReasonReserve,
				LeaveID: &l.ID,
				ActorID: &uid,
			})
			if err != nil {
				return err
			}

			if err := repo.Create(ctx, l); err != nil {
				logger.Error("apply leave persist failed", zap.String("leave_id", l.ID.String()), zap.Error(err))
				return apperror.FromRepository(err, nil)
			}
			return s.outbox.enqueue(ctx, tx, events.LeaveApplied, l, uid, s.opts.Now().UTC())
		})
		return apperror.FromRepository(err, nil)
	})
	if err != nil {
		logger.Warn("apply leave rejected", zap.String("user_id", userID), zap.Error(err))
		return ApplyLeaveResponse{}, err
	}

	s.recorder.Record(ctx, audit.Entry{
		ActionBy:     uid,
		ActionType:   audit.ActionLeaveApply,
		ActionTarget: "leave_" + l.ID.String(),
		Details:      fmt.Sprintf("applied for %d day(s) of %s leave from %s to %s", days, t, req.FromDate, req.ToDate),
		Metadata: map[string]any{
			"leaveId":  l.ID.String(),
			"userId":   userID,
			"days":     days,
			"type":     string(t),
			"fromDate": req.FromDate,
			"toDate":   req.ToDate,
		},
	})

	logger.Info("apply leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("user_id", userID),
		zap.Int("days", days),
		zap.Int("remaining_balance", remaining),
	)

	return ApplyLeaveResponse{Leave: mapToResponse(*l), RemainingBalance: remaining}, nil
}

// validateRange parses the requested dates. Only admins may start a leave in
// the past.
func (s *service) validateRange(fromRaw, toRaw string, role user.Role) (time.Time, time.Time, error) {
	from, ok := parseDate(fromRaw)
	if !ok {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	to, ok := parseDate(toRaw)
	if !ok {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	if role != user.RoleAdmin && from.Before(dateOf(s.opts.Now())) {
		return time.Time{}, time.Time{}, leaveerrors.ErrBackdatedLeave
	}
	return from, to, nil
}

func (s *service) Cancel(ctx context.Context, userID, leaveID string) (CancelLeaveResponse, error) {
	logger := s.log(ctx)
	logger.Debug("cancel leave requested", zap.String("user_id", userID), zap.String("leave_id", leaveID))

	uid, err := uuid.Parse(userID)
	if err != nil {
		return CancelLeaveResponse{}, leaveerrors.ErrInvalidUserID
	}
	lid, err := uuid.Parse(leaveID)
	if err != nil {
		return CancelLeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	var (
		l         *Leave
		restored  int
		remaining int
	)
	err = s.locker.WithLock(ctx, lock.UserKey(userID), func(ctx context.Context) error {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			var err error
			l, err = repo.FindOwned(ctx, uid, lid)
			if err != nil {
				return apperror.FromRepository(err, leaveerrors.ErrLeaveNotFound)
			}
			if l.Status != StatusPending {
				return leaveerrors.ErrInvalidState.WithDetails(leaveerrors.StateDetails{Status: string(l.Status)})
			}

			voided, err := repo.VoidPending(ctx, lid)
			if err != nil {
				return apperror.FromRepository(err, nil)
			}
			if !voided {
				return leaveerrors.ErrInvalidState.WithDetails(leaveerrors.StateDetails{Status: string(l.Status)})
			}

			if l.ReservedDays > 0 {
				remaining, err = s.ledger.WithTx(tx).Restore(ctx, uid, l.LeaveType, l.Year(), l.ReservedDays, balance.Movement{
					Reason:  balance.ReasonRelease,
					LeaveID: &l.ID,
					ActorID: &uid,
				})
				switch {
				case errors.Is(err, balanceerrors.ErrYearClosed):
					// the reserved days expired with the year
					remaining = 0
				case err != nil:
					return err
				default:
					restored = l.ReservedDays
				}
			}
			return s.outbox.enqueue(ctx, tx, events.LeaveCancelled, l, uid, s.opts.Now().UTC())
		})
		return apperror.FromRepository(err, nil)
	})
	if err != nil {
		logger.Warn("cancel leave rejected", zap.String("leave_id", leaveID), zap.Error(err))
		return CancelLeaveResponse{}, err
	}

	s.recorder.Record(ctx, audit.Entry{
		ActionBy:     uid,
		ActionType:   audit.ActionLeaveCancel,
		ActionTarget: "leave_" + leaveID,
		Details:      fmt.Sprintf("cancelled %s leave from %s to %s", l.LeaveType, l.FromDate.Format(dateLayout), l.ToDate.Format(dateLayout)),
		Metadata: map[string]any{
			"leaveId":  leaveID,
			"userId":   userID,
			"days":     l.Days,
			"type":     string(l.LeaveType),
			"restored": restored,
		},
	})

	logger.Info("cancel leave success",
		zap.String("leave_id", leaveID),
		zap.Int("restored_days", restored),
	)

	l.ReservedDays = 0
	return CancelLeaveResponse{
		Leave:            mapToResponse(*l),
		RestoredDays:     restored,
		RemainingBalance: remaining,
	}, nil
}

func (s *service) History(ctx context.Context, userID string, q HistoryQuery) ([]LeaveResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, leaveerrors.ErrInvalidUserID
	}

	f := HistoryFilter{Year: q.Year}
	if q.Year < 0 {
		return nil, leaveerrors.ErrInvalidYear
	}
	if q.Status != "" {
		st, ok := ParseStatus(q.Status)
		if !ok {
			return nil, leaveerrors.ErrInvalidStatus
		}
		f.Status = st
	}
	if q.LeaveType != "" {
		t, ok := balance.ParseLeaveType(q.LeaveType)
		if !ok {
			return nil, leaveerrors.ErrInvalidLeaveType
		}
		f.LeaveType = t
	}

	leaves, err := s.repo.ListByUser(ctx, uid, f)
	if err != nil {
		s.log(ctx).Error("list leave history failed", zap.String("user_id", userID), zap.Error(err))
		return nil, apperror.FromRepository(err, nil)
	}
	return mapToListResponse(leaves), nil
}
