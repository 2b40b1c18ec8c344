package balance

import (
	"context"
	"errors"

	balanceerrors "go-leave/internal/balance/errors"
	"go-leave/internal/shared/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Ledger owns every change to leave balances. Each mutating call is atomic:
// it runs inside the transaction bound with WithTx, or in its own one.
// Every change appends a journal Entry in the same transaction.
type Ledger interface {
	WithTx(tx *gorm.DB) Ledger
	Ensure(ctx context.Context, userID uuid.UUID, year int) error
	Get(ctx context.Context, userID uuid.UUID, t LeaveType, year int) (int, error)
	Lookup(ctx context.Context, userID uuid.UUID, t LeaveType, year int) (int, error)
	Deduct(ctx context.Context, userID uuid.UUID, t LeaveType, year, amount int, mv Movement) (int, error)
	Restore(ctx context.Context, userID uuid.UUID, t LeaveType, year, amount int, mv Movement) (int, error)
	Set(ctx context.Context, userID uuid.UUID, t LeaveType, year, value int, mv Movement) (int, error)
	Expire(ctx context.Context, userID uuid.UUID, year int, mv Movement) (int, error)
	List(ctx context.Context, userID uuid.UUID, fromYear, toYear int) ([]LeaveBalance, error)
	Entries(ctx context.Context, userID uuid.UUID, year int) ([]Entry, error)
}

type ledger struct {
	db         *gorm.DB
	tx         *gorm.DB
	repo       Repository
	allowances Allowances
	logger     *zap.Logger
}

func NewLedger(db *gorm.DB, repo Repository, allowances Allowances, logger ...*zap.Logger) Ledger {
	l := zap.L().Named("balance.ledger")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.ledger")
	}
	if allowances == nil {
		allowances = DefaultAllowances()
	}
	return &ledger{db: db, repo: repo, allowances: allowances, logger: l}
}

func (l *ledger) WithTx(tx *gorm.DB) Ledger {
	cp := *l
	cp.tx = tx
	cp.repo = l.repo.WithTx(tx)
	return &cp
}

func (l *ledger) atomically(ctx context.Context, fn func(repo Repository) error) error {
	if l.tx != nil {
		return fn(l.repo)
	}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(l.repo.WithTx(tx))
	})
	return apperror.FromRepository(err, nil)
}

func (l *ledger) Ensure(ctx context.Context, userID uuid.UUID, year int) error {
	return l.atomically(ctx, func(repo Repository) error {
		return l.ensure(ctx, repo, userID, year)
	})
}

func (l *ledger) ensure(ctx context.Context, repo Repository, userID uuid.UUID, year int) error {
	for _, t := range LeaveTypes {
		days := l.allowances[t]
		inserted, err := repo.InsertIfAbsent(ctx, &LeaveBalance{
			ID:        uuid.New(),
			UserID:    userID,
			LeaveType: t,
			Year:      year,
			Balance:   days,
		})
		if err != nil {
			l.logger.Error("failed to seed balance",
				zap.String("user_id", userID.String()),
				zap.String("leave_type", string(t)),
				zap.Int("year", year),
				zap.Error(err),
			)
			return apperror.FromRepository(err, nil)
		}
		if !inserted {
			continue
		}
		if err := l.journal(ctx, repo, userID, t, year, days, days, Movement{Reason: ReasonSeed}); err != nil {
			return err
		}
	}
	return nil
}

func (l *ledger) Get(ctx context.Context, userID uuid.UUID, t LeaveType, year int) (int, error) {
	var days int
	err := l.atomically(ctx, func(repo Repository) error {
		if err := l.ensure(ctx, repo, userID, year); err != nil {
			return err
		}
		b, err := repo.Find(ctx, userID, t, year, false)
		if err != nil {
			return apperror.FromRepository(err, balanceerrors.ErrBalanceRecordMissing)
		}
		days = b.Balance
		return nil
	})
	return days, err
}

// Lookup reads a balance without seeding it. A missing row is
// ErrBalanceRecordMissing.
func (l *ledger) Lookup(ctx context.Context, userID uuid.UUID, t LeaveType, year int) (int, error) {
	b, err := l.repo.Find(ctx, userID, t, year, l.tx != nil)
	if err != nil {
		return 0, apperror.FromRepository(err, balanceerrors.ErrBalanceRecordMissing)
	}
	return b.Balance, nil
}

func (l *ledger) Deduct(ctx context.Context, userID uuid.UUID, t LeaveType, year, amount int, mv Movement) (int, error) {
	if amount <= 0 {
		return 0, balanceerrors.ErrInvalidAmount
	}

	var after int
	err := l.atomically(ctx, func(repo Repository) error {
		if err := l.ensure(ctx, repo, userID, year); err != nil {
			return err
		}

		bal, ok, err := repo.Decrement(ctx, userID, t, year, amount)
		if err != nil {
			l.logger.Error("failed to deduct balance", zap.String("user_id", userID.String()), zap.Error(err))
			return apperror.FromRepository(err, nil)
		}
		if !ok {
			current, err := repo.Find(ctx, userID, t, year, false)
			if err != nil {
				return apperror.FromRepository(err, balanceerrors.ErrBalanceRecordMissing)
			}
			l.logger.Warn("insufficient balance",
				zap.String("user_id", userID.String()),
				zap.String("leave_type", string(t)),
				zap.Int("year", year),
				zap.Int("requested", amount),
				zap.Int("available", current.Balance),
			)
			return balanceerrors.ErrInsufficientBalance.WithDetails(balanceerrors.InsufficientDetails{
				LeaveType: string(t),
				Year:      year,
				Requested: amount,
				Available: current.Balance,
			})
		}

		after = bal
		return l.journal(ctx, repo, userID, t, year, -amount, bal, mv)
	})
	return after, err
}

func (l *ledger) Restore(ctx context.Context, userID uuid.UUID, t LeaveType, year, amount int, mv Movement) (int, error) {
	if amount <= 0 {
		return 0, balanceerrors.ErrInvalidAmount
	}

	var after int
	err := l.atomically(ctx, func(repo Repository) error {
		closed, err := l.closed(ctx, repo, userID, year)
		if err != nil {
			return err
		}
		if closed {
			l.logger.Warn("restore into closed year skipped",
				zap.String("user_id", userID.String()),
				zap.String("leave_type", string(t)),
				zap.Int("year", year),
				zap.Int("amount", amount),
			)
			return balanceerrors.ErrYearClosed
		}
		if err := l.ensure(ctx, repo, userID, year); err != nil {
			return err
		}

		bal, ok, err := repo.Increment(ctx, userID, t, year, amount)
		if err != nil {
			l.logger.Error("failed to restore balance", zap.String("user_id", userID.String()), zap.Error(err))
			return apperror.FromRepository(err, nil)
		}
		if !ok {
			return balanceerrors.ErrBalanceRecordMissing
		}

		after = bal
		return l.journal(ctx, repo, userID, t, year, amount, bal, mv)
	})
	return after, err
}

// Set overwrites a balance, creating the row when absent, and returns the
// previous value (zero when the row did not exist).
func (l *ledger) Set(ctx context.Context, userID uuid.UUID, t LeaveType, year, value int, mv Movement) (int, error) {
	if value < 0 {
		return 0, balanceerrors.ErrInvalidBalance
	}

	var previous int
	err := l.atomically(ctx, func(repo Repository) error {
		current, err := repo.Find(ctx, userID, t, year, true)
		switch {
		case err == nil:
			previous = current.Balance
		case errors.Is(err, gorm.ErrRecordNotFound):
			previous = 0
		default:
			return apperror.FromRepository(err, nil)
		}

		if err := repo.SetValue(ctx, userID, t, year, value); err != nil {
			l.logger.Error("failed to set balance", zap.String("user_id", userID.String()), zap.Error(err))
			return apperror.FromRepository(err, nil)
		}
		return l.journal(ctx, repo, userID, t, year, value-previous, value, mv)
	})
	return previous, err
}

// Expire zeroes every balance the user holds for year and returns the total
// days removed. The first run journals every row, empty ones included, so the
// year reads as closed and later restores into it are refused.
func (l *ledger) Expire(ctx context.Context, userID uuid.UUID, year int, mv Movement) (int, error) {
	var expired int
	err := l.atomically(ctx, func(repo Repository) error {
		rows, err := repo.ListByUser(ctx, userID, year, year)
		if err != nil {
			return apperror.FromRepository(err, nil)
		}
		closed, err := l.closed(ctx, repo, userID, year)
		if err != nil {
			return err
		}
		for _, b := range rows {
			if b.Balance == 0 {
				if closed {
					continue
				}
				if err := l.journal(ctx, repo, userID, b.LeaveType, year, 0, 0, mv); err != nil {
					return err
				}
				continue
			}
			if err := repo.SetValue(ctx, userID, b.LeaveType, year, 0); err != nil {
				return apperror.FromRepository(err, nil)
			}
			if err := l.journal(ctx, repo, userID, b.LeaveType, year, -b.Balance, 0, mv); err != nil {
				return err
			}
			expired += b.Balance
		}
		return nil
	})
	return expired, err
}

func (l *ledger) List(ctx context.Context, userID uuid.UUID, fromYear, toYear int) ([]LeaveBalance, error) {
	rows, err := l.repo.ListByUser(ctx, userID, fromYear, toYear)
	if err != nil {
		return nil, apperror.FromRepository(err, nil)
	}
	return rows, nil
}

func (l *ledger) Entries(ctx context.Context, userID uuid.UUID, year int) ([]Entry, error) {
	rows, err := l.repo.ListEntries(ctx, userID, year)
	if err != nil {
		return nil, apperror.FromRepository(err, nil)
	}
	return rows, nil
}

// closed reports whether the yearly reset has already expired year.
func (l *ledger) closed(ctx context.Context, repo Repository, userID uuid.UUID, year int) (bool, error) {
	entries, err := repo.ListEntries(ctx, userID, year)
	if err != nil {
		return false, apperror.FromRepository(err, nil)
	}
	for _, e := range entries {
		if e.Reason == ReasonYearReset {
			return true, nil
		}
	}
	return false, nil
}

func (l *ledger) journal(ctx context.Context, repo Repository, userID uuid.UUID, t LeaveType, year, delta, after int, mv Movement) error {
	err := repo.AppendEntry(ctx, &Entry{
		ID:           uuid.New(),
		UserID:       userID,
		LeaveType:    t,
		Year:         year,
		Delta:        delta,
		BalanceAfter: after,
		Reason:       mv.Reason,
		LeaveID:      mv.LeaveID,
		ActorID:      mv.ActorID,
	})
	if err != nil {
		l.logger.Error("failed to append balance entry",
			zap.String("user_id", userID.String()),
			zap.String("reason", string(mv.Reason)),
			zap.Error(err),
		)
		return apperror.FromRepository(err, nil)
	}
	return nil
}
