package leave

import (
	"context"
	"errors"
	"fmt"

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

// ApprovalWorkflow moves pending requests to a final decision and commits or
// releases the days reserved for them.
//
//go:generate mockgen -source=leave_approval.go -destination=mock/leave_approval_mock.go -package=mock
type ApprovalWorkflow interface {
	Decide(ctx context.Context, managerID, leaveID string, req DecisionRequest) (LeaveResponse, error)
	Override(ctx context.Context, adminID, leaveID string, req DecisionRequest) (LeaveResponse, error)
}

type workflow struct {
	db       *gorm.DB
	repo     Repository
	users    user.Repository
	ledger   balance.Ledger
	outbox   eventOutbox
	locker   lock.Locker
	recorder audit.Recorder
	opts     Options
	logger   *zap.Logger
}

func NewApprovalWorkflow(
	db *gorm.DB,
	repo Repository,
	users user.Repository,
	ledger balance.Ledger,
	outbox kafka.OutboxRepository,
	locker lock.Locker,
	recorder audit.Recorder,
	opts Options,
	logger ...*zap.Logger,
) ApprovalWorkflow {
	l := zap.L().Named("leave.approval")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.approval")
	}
	return &workflow{
		db:       db,
		repo:     repo,
		users:    users,
		ledger:   ledger,
		outbox:   eventOutbox{repo: outbox},
		locker:   locker,
		recorder: recorder,
		opts:     opts.withDefaults(),
		logger:   l,
	}
}

func (w *workflow) log(ctx context.Context) *zap.Logger {
	return contextutil.GetLogger(ctx, w.logger)
}

// decision is one call to Decide or Override after input validation.
type decision struct {
	actorID  uuid.UUID
	leaveID  uuid.UUID
	target   Status
	comment  *string
	reversal bool
}

func (w *workflow) Decide(ctx context.Context, managerID, leaveID string, req DecisionRequest) (LeaveResponse, error) {
	w.log(ctx).Debug("decide leave requested",
		zap.String("manager_id", managerID),
		zap.String("leave_id", leaveID),
		zap.String("decision", req.Status),
	)

	d, err := parseDecision(managerID, leaveID, req)
	if err != nil {
		return LeaveResponse{}, err
	}

	l, err := w.repo.FindByID(ctx, d.leaveID)
	if err != nil {
		return LeaveResponse{}, apperror.FromRepository(err, leaveerrors.ErrLeaveNotFound)
	}
	if l.User == nil || !l.User.ReportsTo(d.actorID) {
		w.log(ctx).Warn("decide leave outside team",
			zap.String("manager_id", managerID),
			zap.String("leave_id", leaveID),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}

	return w.apply(ctx, d, l)
}

// Override lets an administrator decide any request, including rejecting one
// that was already approved.
func (w *workflow) Override(ctx context.Context, adminID, leaveID string, req DecisionRequest) (LeaveResponse, error) {
	w.log(ctx).Debug("override leave requested",
		zap.String("admin_id", adminID),
		zap.String("leave_id", leaveID),
		zap.String("decision", req.Status),
	)

	d, err := parseDecision(adminID, leaveID, req)
	if err != nil {
		return LeaveResponse{}, err
	}
	d.reversal = true

	admin, err := w.users.FindByID(ctx, adminID)
	if err != nil {
		return LeaveResponse{}, apperror.FromRepository(err, leaveerrors.ErrAdminRequired)
	}
	if !admin.IsAdmin() {
		return LeaveResponse{}, leaveerrors.ErrAdminRequired
	}

	l, err := w.repo.FindByID(ctx, d.leaveID)
	if err != nil {
		return LeaveResponse{}, apperror.FromRepository(err, leaveerrors.ErrLeaveNotFound)
	}
	return w.apply(ctx, d, l)
}

func parseDecision(actorID, leaveID string, req DecisionRequest) (decision, error) {
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return decision{}, leaveerrors.ErrInvalidUserID
	}
	lid, err := uuid.Parse(leaveID)
	if err != nil {
		return decision{}, leaveerrors.ErrInvalidLeaveID
	}
	target, ok := ParseDecision(req.Status)
	if !ok {
		return decision{}, leaveerrors.ErrInvalidDecision
	}
	return decision{actorID: actor, leaveID: lid, target: target, comment: req.Comment}, nil
}

// apply runs the decision under the owner's team lock and then the owner's
// user lock. Everything is re-read inside the transaction.
func (w *workflow) apply(ctx context.Context, d decision, snapshot *Leave) (LeaveResponse, error) {
	logger := w.log(ctx)

	var managerID *uuid.UUID
	if snapshot.User != nil {
		managerID = snapshot.User.ManagerID
	}

	var (
		updated *Leave
		prior   Status
	)
	critical := func(ctx context.Context) error {
		err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			updated, prior, err = w.decideTx(ctx, tx, d, managerID)
			return err
		})
		return apperror.FromRepository(err, nil)
	}

	userLocked := func(ctx context.Context) error {
		return w.locker.WithLock(ctx, lock.UserKey(snapshot.UserID.String()), critical)
	}

	var err error
	if managerID != nil {
		err = w.locker.WithLock(ctx, lock.TeamKey(managerID.String()), userLocked)
	} else {
		err = userLocked(ctx)
	}
	if err != nil {
		logger.Warn("decide leave rejected",
			zap.String("leave_id", d.leaveID.String()),
			zap.String("decision", string(d.target)),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	w.record(ctx, d, updated, prior)

	logger.Info("decide leave success",
		zap.String("leave_id", updated.ID.String()),
		zap.String("from_status", string(prior)),
		zap.String("status", string(updated.Status)),
	)
	return mapToResponse(*updated), nil
}

func (w *workflow) decideTx(ctx context.Context, tx *gorm.DB, d decision, managerID *uuid.UUID) (*Leave, Status, error) {
	repo := w.repo.WithTx(tx)
	ledger := w.ledger.WithTx(tx)

	l, err := repo.FindByID(ctx, d.leaveID)
	if err != nil {
		return nil, "", apperror.FromRepository(err, leaveerrors.ErrLeaveNotFound)
	}
	prior := l.Status
	if err := Transition(prior, d.target, d.reversal); err != nil {
		return nil, "", err
	}

	days := DaysBetween(l.FromDate, l.ToDate)
	year := l.Year()
	reserved := l.ReservedDays
	mv := balance.Movement{LeaveID: &l.ID, ActorID: &d.actorID}

	switch {
	case d.target == StatusApproved:
		if days > w.opts.MaxLeaveDays {
			return nil, "", leaveerrors.ErrExceedsMaxDuration.WithDetails(leaveerrors.DurationDetails{
				Days: days,
				Max:  w.opts.MaxLeaveDays,
			})
		}
		if _, err := ledger.Lookup(ctx, l.UserID, l.LeaveType, year); err != nil {
			return nil, "", err
		}
		if short := days - reserved; short > 0 {
			mv.Reason = balance.ReasonCommit
			if _, err := ledger.Deduct(ctx, l.UserID, l.LeaveType, year, short, mv); err != nil {
				return nil, "", err
			}
			reserved = days
		}
		if managerID != nil {
			guard := NewCapacityGuard(repo, w.opts.TeamCapacity)
			if err := guard.Check(ctx, *managerID, l.FromDate, l.ToDate, l.ID); err != nil {
				return nil, "", err
			}
		}

	case reserved > 0:
		mv.Reason = balance.ReasonRelease
		if prior == StatusApproved {
			mv.Reason = balance.ReasonReversal
		}
		if _, err := ledger.Restore(ctx, l.UserID, l.LeaveType, year, reserved, mv); err != nil && !errors.Is(err, balanceerrors.ErrYearClosed) {
			return nil, "", err
		}
		reserved = 0
	}

	now := w.opts.Now().UTC()
	ok, err := repo.UpdateDecision(ctx, l.ID, prior, DecisionUpdate{
		Status:         d.target,
		ManagerComment: d.comment,
		ProcessedBy:    d.actorID,
		ProcessedAt:    now,
		ReservedDays:   reserved,
	})
	if err != nil {
		return nil, "", apperror.FromRepository(err, nil)
	}
	if !ok {
		return nil, "", leaveerrors.ErrInvalidState.WithDetails(leaveerrors.StateDetails{
			Status: string(prior),
			Target: string(d.target),
		})
	}

	l.Status = d.target
	l.ManagerComment = d.comment
	l.ProcessedBy = &d.actorID
	l.ProcessedAt = &now
	l.ReservedDays = reserved

	eventType := events.LeaveApproved
	switch {
	case prior == StatusApproved:
		eventType = events.LeaveReversed
	case d.target == StatusRejected:
		eventType = events.LeaveRejected
	}
	if err := w.outbox.enqueue(ctx, tx, eventType, l, d.actorID, now); err != nil {
		return nil, "", err
	}
	return l, prior, nil
}

func (w *workflow) record(ctx context.Context, d decision, l *Leave, prior Status) {
	actionType := audit.ActionLeaveApprove
	switch {
	case prior == StatusApproved:
		actionType = audit.ActionLeaveReverse
	case l.Status == StatusRejected:
		actionType = audit.ActionLeaveReject
	}

	name := l.UserID.String()
	if l.User != nil {
		name = l.User.Name
	}

	w.recorder.Record(ctx, audit.Entry{
		ActionBy:     d.actorID,
		ActionType:   actionType,
		ActionTarget: "leave_" + l.ID.String(),
		Details:      fmt.Sprintf("%s leave request for %s", l.Status, name),
		Metadata: map[string]any{
			"leaveId": l.ID.String(),
			"userId":  l.UserID.String(),
			"days":    l.Days,
			"type":    string(l.LeaveType),
		},
	})
}
