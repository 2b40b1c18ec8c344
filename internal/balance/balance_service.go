package balance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-leave/internal/audit"
	balanceerrors "go-leave/internal/balance/errors"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/lock"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=balance_service.go -destination=mock/balance_service_mock.go -package=mock
type Service interface {
	GetBalances(ctx context.Context, userID string) (BalancesResponse, error)
	SetBalance(ctx context.Context, actorID, userID string, req SetBalanceRequest) (BalanceResponse, error)
	ListEntries(ctx context.Context, userID string, year int) ([]EntryResponse, error)
	EnsureYear(ctx context.Context, userID string, year int) error
}

type Options struct {
	Now           func() time.Time
	EnsureRetries int
	RetryDelay    time.Duration
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.EnsureRetries < 1 {
		o.EnsureRetries = 3
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 200 * time.Millisecond
	}
	return o
}

type service struct {
	ledger   Ledger
	locker   lock.Locker
	recorder audit.Recorder
	opts     Options
	logger   *zap.Logger
}

func NewService(ledger Ledger, locker lock.Locker, recorder audit.Recorder, opts Options, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{
		ledger:   ledger,
		locker:   locker,
		recorder: recorder,
		opts:     opts.withDefaults(),
		logger:   l,
	}
}

func (s *service) log(ctx context.Context) *zap.Logger {
	return contextutil.GetLogger(ctx, s.logger)
}

// GetBalances seeds the current year and returns the previous, current and
// next year.
func (s *service) GetBalances(ctx context.Context, userID string) (BalancesResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, balanceerrors.ErrInvalidUserID
	}

	year := s.opts.Now().Year()
	s.log(ctx).Debug("get balances", zap.String("user_id", userID), zap.Int("year", year))

	if err := s.ledger.Ensure(ctx, uid, year); err != nil {
		return nil, err
	}

	rows, err := s.ledger.List(ctx, uid, year-1, year+1)
	if err != nil {
		return nil, err
	}

	resp := BalancesResponse{}
	for _, b := range rows {
		if resp[b.Year] == nil {
			resp[b.Year] = map[string]int{}
		}
		resp[b.Year][string(b.LeaveType)] = b.Balance
	}
	return resp, nil
}

func (s *service) SetBalance(ctx context.Context, actorID, userID string, req SetBalanceRequest) (BalanceResponse, error) {
	logger := s.log(ctx)

	uid, err := uuid.Parse(userID)
	if err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidUserID
	}
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidUserID
	}
	t, ok := ParseLeaveType(req.LeaveType)
	if !ok {
		return BalanceResponse{}, balanceerrors.ErrInvalidLeaveType
	}
	if req.Balance == nil {
		return BalanceResponse{}, apperror.RequiredField("balance")
	}
	if *req.Balance < 0 {
		return BalanceResponse{}, balanceerrors.ErrInvalidBalance
	}

	year := req.Year
	if year == 0 {
		year = s.opts.Now().Year()
	}
	if year < 0 {
		return BalanceResponse{}, balanceerrors.ErrInvalidYear
	}

	logger.Debug("set balance",
		zap.String("actor_id", actorID),
		zap.String("user_id", userID),
		zap.String("leave_type", string(t)),
		zap.Int("year", year),
		zap.Int("balance", *req.Balance),
	)

	var previous int
	err = s.locker.WithLock(ctx, lock.UserKey(userID), func(ctx context.Context) error {
		var err error
		previous, err = s.ledger.Set(ctx, uid, t, year, *req.Balance, Movement{
			Reason:  ReasonAdminSet,
			ActorID: &actor,
		})
		return err
	})
	if err != nil {
		logger.Warn("set balance failed", zap.String("user_id", userID), zap.Error(err))
		return BalanceResponse{}, err
	}

	s.recorder.Record(ctx, audit.Entry{
		ActionBy:     actor,
		ActionType:   audit.ActionBalanceUpdate,
		ActionTarget: "user_" + userID,
		Details:      fmt.Sprintf("%s %d balance set from %d to %d", t, year, previous, *req.Balance),
		Metadata: map[string]any{
			"leave_type": string(t),
			"year":       year,
			"previous":   previous,
			"balance":    *req.Balance,
		},
	})

	logger.Info("balance updated",
		zap.String("user_id", userID),
		zap.String("leave_type", string(t)),
		zap.Int("year", year),
		zap.Int("previous", previous),
		zap.Int("balance", *req.Balance),
	)

	return BalanceResponse{
		UserID:    userID,
		LeaveType: string(t),
		Year:      year,
		Previous:  previous,
		Balance:   *req.Balance,
	}, nil
}

func (s *service) ListEntries(ctx context.Context, userID string, year int) ([]EntryResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, balanceerrors.ErrInvalidUserID
	}

	entries, err := s.ledger.Entries(ctx, uid, year)
	if err != nil {
		return nil, err
	}

	resp := make([]EntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = mapEntryToResponse(e)
	}
	return resp, nil
}

// EnsureYear seeds a user's balances, retrying storage outages. Used when a
// user is provisioned.
func (s *service) EnsureYear(ctx context.Context, userID string, year int) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return balanceerrors.ErrInvalidUserID
	}
	if year == 0 {
		year = s.opts.Now().Year()
	}

	for attempt := 1; ; attempt++ {
		err = s.ledger.Ensure(ctx, uid, year)
		if err == nil || !errors.Is(err, apperror.ErrUnavailable) || attempt >= s.opts.EnsureRetries {
			break
		}

		s.log(ctx).Warn("ensure balances failed, retrying",
			zap.String("user_id", userID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * s.opts.RetryDelay):
		}
	}
	return err
}
