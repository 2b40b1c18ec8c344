package balance_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"go-leave/internal/audit"
	auditmock "go-leave/internal/audit/mock"
	"go-leave/internal/balance"
	"go-leave/internal/shared/lock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type staticUsers struct {
	ids []uuid.UUID
	err error
}

func (s *staticUsers) ListIDs(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []uuid.UUID
	for _, id := range s.ids {
		if after != uuid.Nil && id.String() <= after.String() {
			continue
		}
		out = append(out, id)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func sortedIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func TestYearlyReset_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("success expires previous year and seeds current", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger, db := newLedger(t)
		users := &staticUsers{ids: sortedIDs(5)}
		recorder := auditmock.NewMockRecorder(ctrl)

		for _, id := range users.ids {
			require.NoError(t, ledger.Ensure(ctx, id, testYear-1))
		}
		_, err := ledger.Deduct(ctx, users.ids[0], balance.TypeCasual, testYear-1, 2, balance.Movement{Reason: balance.ReasonCommit})
		require.NoError(t, err)

		recorder.EXPECT().
			Record(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, e audit.Entry) {
				assert.Equal(t, audit.ActionBalanceYearReset, e.ActionType)
				assert.Equal(t, uuid.Nil, e.ActionBy)
			})

		reset := balance.NewYearlyReset(db, users, ledger, lock.NewLocalLocker(), recorder, balance.ResetOptions{
			Now:         fixedNow,
			BatchSize:   2,
			Concurrency: 3,
		}, zap.NewNop())

		summary, err := reset.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, testYear-1, summary.ClosedYear)
		assert.Equal(t, testYear, summary.OpenedYear)
		assert.Equal(t, 5, summary.Users)
		assert.Equal(t, 0, summary.Failed)
		assert.Equal(t, 5*37-2, summary.DaysExpired)

		for _, id := range users.ids {
			prev, err := ledger.List(ctx, id, testYear-1, testYear-1)
			require.NoError(t, err)
			for _, b := range prev {
				assert.Equal(t, 0, b.Balance)
			}
			cur, err := ledger.Lookup(ctx, id, balance.TypeAnnual, testYear)
			require.NoError(t, err)
			assert.Equal(t, 15, cur)
		}
	})

	t.Run("success rerun expires nothing", func(t *testing.T) {
		ledger, db := newLedger(t)
		users := &staticUsers{ids: sortedIDs(2)}
		reset := balance.NewYearlyReset(db, users, ledger, lock.NewLocalLocker(), audit.NewLogRecorder(zap.NewNop()),
			balance.ResetOptions{Now: fixedNow}, zap.NewNop())

		for _, id := range users.ids {
			require.NoError(t, ledger.Ensure(ctx, id, testYear-1))
		}

		first, err := reset.Run(ctx)
		require.NoError(t, err)
		second, err := reset.Run(ctx)
		require.NoError(t, err)

		assert.Equal(t, 74, first.DaysExpired)
		assert.Equal(t, 0, second.DaysExpired)
		assert.Equal(t, 2, second.Users)
	})

	t.Run("negative user listing fails", func(t *testing.T) {
		ledger, db := newLedger(t)
		users := &staticUsers{err: errors.New("db down")}
		reset := balance.NewYearlyReset(db, users, ledger, lock.NewLocalLocker(), audit.NewLogRecorder(zap.NewNop()),
			balance.ResetOptions{Now: fixedNow}, zap.NewNop())

		_, err := reset.Run(ctx)
		assert.Error(t, err)
	})
}
