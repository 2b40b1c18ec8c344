package leave

import (
	"context"
	"time"

	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/shared/apperror"

	"github.com/google/uuid"
)

// OverlapDetector finds live requests of the same user that intersect a
// date range. Rejected and cancelled requests never conflict.
type OverlapDetector struct {
	repo Repository
}

func NewOverlapDetector(repo Repository) OverlapDetector {
	return OverlapDetector{repo: repo}
}

func (d OverlapDetector) FindConflict(ctx context.Context, userID uuid.UUID, from, to time.Time) (*Leave, error) {
	l, err := d.repo.FindFirstOverlap(ctx, userID, dateOf(from), dateOf(to))
	if err != nil {
		return nil, apperror.FromRepository(err, nil)
	}
	return l, nil
}

// Check is FindConflict surfaced as ErrOverlapConflict.
func (d OverlapDetector) Check(ctx context.Context, userID uuid.UUID, from, to time.Time) error {
	conflict, err := d.FindConflict(ctx, userID, from, to)
	if err != nil {
		return err
	}
	if conflict == nil {
		return nil
	}
	return leaveerrors.ErrOverlapConflict.WithDetails(leaveerrors.OverlapDetails{
		ConflictingID: conflict.ID.String(),
		FromDate:      conflict.FromDate.Format(dateLayout),
		ToDate:        conflict.ToDate.Format(dateLayout),
	})
}
