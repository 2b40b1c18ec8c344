package leave

import (
	"context"
	"time"

	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/shared/apperror"

	"github.com/google/uuid"
)

const defaultTeamCapacity = 3

// CapacityGuard caps how many of a manager's direct reports may be on
// approved leave at the same time.
type CapacityGuard struct {
	repo Repository
	max  int
}

func NewCapacityGuard(repo Repository, max int) CapacityGuard {
	if max <= 0 {
		max = defaultTeamCapacity
	}
	return CapacityGuard{repo: repo, max: max}
}

func (g CapacityGuard) Check(ctx context.Context, managerID uuid.UUID, from, to time.Time, excludeID uuid.UUID) error {
	n, err := g.repo.CountTeamApproved(ctx, managerID, dateOf(from), dateOf(to), excludeID)
	if err != nil {
		return apperror.FromRepository(err, nil)
	}
	if int(n) >= g.max {
		return leaveerrors.ErrTeamCapacityExceeded.WithDetails(leaveerrors.CapacityDetails{
			Current: int(n),
			Max:     g.max,
		})
	}
	return nil
}
