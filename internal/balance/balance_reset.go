package balance

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go-leave/internal/audit"
	"go-leave/internal/shared/lock"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// UserLister pages through user ids. Satisfied by user.Repository.
type UserLister interface {
	ListIDs(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error)
}

type ResetSummary struct {
	ClosedYear  int `json:"closed_year"`
	OpenedYear  int `json:"opened_year"`
	Users       int `json:"users"`
	Failed      int `json:"failed"`
	DaysExpired int `json:"days_expired"`
}

type ResetOptions struct {
	Now         func() time.Time
	BatchSize   int
	Concurrency int
}

// YearlyReset closes out the previous year's balances and seeds the current
// year for every user. Unused days do not carry over.
type YearlyReset struct {
	db       *gorm.DB
	users    UserLister
	ledger   Ledger
	locker   lock.Locker
	recorder audit.Recorder
	opts     ResetOptions
	logger   *zap.Logger
}

func NewYearlyReset(
	db *gorm.DB,
	users UserLister,
	ledger Ledger,
	locker lock.Locker,
	recorder audit.Recorder,
	opts ResetOptions,
	logger ...*zap.Logger,
) *YearlyReset {
	l := zap.L().Named("balance.reset")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.reset")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = 200
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 4
	}
	return &YearlyReset{
		db:       db,
		users:    users,
		ledger:   ledger,
		locker:   locker,
		recorder: recorder,
		opts:     opts,
		logger:   l,
	}
}

// Run is safe to repeat: an already expired year has nothing left to zero
// and seeding is idempotent.
func (r *YearlyReset) Run(ctx context.Context) (ResetSummary, error) {
	year := r.opts.Now().Year()
	summary := ResetSummary{ClosedYear: year - 1, OpenedYear: year}

	var users, failed, expired int64
	after := uuid.Nil

	r.logger.Info("yearly balance reset started", zap.Int("closed_year", year-1), zap.Int("opened_year", year))

	for {
		ids, err := r.users.ListIDs(ctx, after, r.opts.BatchSize)
		if err != nil {
			r.logger.Error("failed to list users", zap.Error(err))
			return summary, err
		}
		if len(ids) == 0 {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.opts.Concurrency)
		for _, id := range ids {
			g.Go(func() error {
				n, err := r.resetUser(gctx, id, year)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					r.logger.Error("yearly reset failed for user",
						zap.String("user_id", id.String()),
						zap.Error(err),
					)
					return nil
				}
				atomic.AddInt64(&users, 1)
				atomic.AddInt64(&expired, int64(n))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return summary, err
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		after = ids[len(ids)-1]
		if len(ids) < r.opts.BatchSize {
			break
		}
	}

	summary.Users = int(users)
	summary.Failed = int(failed)
	summary.DaysExpired = int(expired)

	r.recorder.Record(ctx, audit.Entry{
		ActionBy:     uuid.Nil,
		ActionType:   audit.ActionBalanceYearReset,
		ActionTarget: fmt.Sprintf("year_%d", year-1),
		Details:      fmt.Sprintf("closed %d, opened %d", year-1, year),
		Metadata: map[string]any{
			"users":        summary.Users,
			"failed":       summary.Failed,
			"days_expired": summary.DaysExpired,
		},
	})

	r.logger.Info("yearly balance reset finished",
		zap.Int("users", summary.Users),
		zap.Int("failed", summary.Failed),
		zap.Int("days_expired", summary.DaysExpired),
	)
	return summary, nil
}

func (r *YearlyReset) resetUser(ctx context.Context, userID uuid.UUID, year int) (int, error) {
	var expired int
	err := r.locker.WithLock(ctx, lock.UserKey(userID.String()), func(ctx context.Context) error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			l := r.ledger.WithTx(tx)

			n, err := l.Expire(ctx, userID, year-1, Movement{Reason: ReasonYearReset})
			if err != nil {
				return err
			}
			expired = n
			return l.Ensure(ctx, userID, year)
		})
	})
	return expired, err
}
