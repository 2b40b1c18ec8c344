package leave

import (
	"context"
	"errors"
	"time"

	"go-leave/internal/balance"
	"go-leave/internal/team"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HistoryFilter struct {
	Year      int
	Status    Status
	LeaveType balance.LeaveType
}

type TeamFilter struct {
	Status Status
	From   time.Time
	To     time.Time
	Page   int
	Limit  int
}

// DecisionUpdate is written by UpdateDecision.
type DecisionUpdate struct {
	Status         Status
	ManagerComment *string
	ProcessedBy    uuid.UUID
	ProcessedAt    time.Time
	ReservedDays   int
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, l *Leave) error
	FindByID(ctx context.Context, id uuid.UUID) (*Leave, error)
	FindOwned(ctx context.Context, userID, id uuid.UUID) (*Leave, error)
	FindFirstOverlap(ctx context.Context, userID uuid.UUID, from, to time.Time) (*Leave, error)
	UpdateDecision(ctx context.Context, id uuid.UUID, from Status, d DecisionUpdate) (bool, error)
	VoidPending(ctx context.Context, id uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, f HistoryFilter) ([]Leave, error)
	ListTeam(ctx context.Context, managerID uuid.UUID, f TeamFilter) ([]Leave, int64, error)
	FindTeamLeave(ctx context.Context, managerID, id uuid.UUID) (*Leave, error)
	CountTeamApproved(ctx context.Context, managerID uuid.UUID, from, to time.Time, excludeID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return r.db.WithContext(ctx).Omit("User").Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Leave, error) {
	var l Leave
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindOwned(ctx context.Context, userID, id uuid.UUID) (*Leave, error) {
	var l Leave
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// FindFirstOverlap returns the earliest live request of the user whose closed
// range intersects [from, to], or nil.
func (r *repository) FindFirstOverlap(ctx context.Context, userID uuid.UUID, from, to time.Time) (*Leave, error) {
	var l Leave
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("status IN ?", []Status{StatusPending, StatusApproved}).
		Where("from_date <= ? AND to_date >= ?", to, from).
		Order("from_date ASC").
		First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateDecision writes a decision only while the request is still in status
// from. It reports false when another writer got there first.
func (r *repository) UpdateDecision(ctx context.Context, id uuid.UUID, from Status, d DecisionUpdate) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Leave{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":          d.Status,
			"manager_comment": d.ManagerComment,
			"processed_by":    d.ProcessedBy,
			"processed_at":    d.ProcessedAt,
			"reserved_days":   d.ReservedDays,
		})
	return res.RowsAffected == 1, res.Error
}

// VoidPending soft deletes a request that is still pending.
func (r *repository) VoidPending(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, StatusPending).
		Delete(&Leave{})
	return res.RowsAffected == 1, res.Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, f HistoryFilter) ([]Leave, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if f.Year > 0 {
		start := time.Date(f.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(f.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
		q = q.Where("(from_date BETWEEN ? AND ?) OR (to_date BETWEEN ? AND ?)", start, end, start, end)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.LeaveType != "" {
		q = q.Where("leave_type = ?", f.LeaveType)
	}

	var leaves []Leave
	err := q.Order("from_date DESC").Find(&leaves).Error
	return leaves, err
}

func (r *repository) teamLeaves(ctx context.Context, managerID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&Leave{}).
		Scopes(team.Scope(Leave{}.TableName(), managerID))
}

func (r *repository) ListTeam(ctx context.Context, managerID uuid.UUID, f TeamFilter) ([]Leave, int64, error) {
	scoped := func() *gorm.DB {
		q := r.teamLeaves(ctx, managerID)
		if f.Status != "" {
			q = q.Where("leaves.status = ?", f.Status)
		}
		if !f.From.IsZero() && !f.To.IsZero() {
			q = q.Where("leaves.from_date <= ? AND leaves.to_date >= ?", f.To, f.From)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := scoped().Preload("User").Order("leaves.from_date ASC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset((f.Page - 1) * f.Limit)
	}

	var leaves []Leave
	if err := q.Find(&leaves).Error; err != nil {
		return nil, 0, err
	}
	return leaves, total, nil
}

func (r *repository) FindTeamLeave(ctx context.Context, managerID, id uuid.UUID) (*Leave, error) {
	var l Leave
	err := r.teamLeaves(ctx, managerID).
		Preload("User").
		Where("leaves.id = ?", id).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CountTeamApproved counts approved requests of the manager's direct reports
// that intersect [from, to], ignoring excludeID.
func (r *repository) CountTeamApproved(ctx context.Context, managerID uuid.UUID, from, to time.Time, excludeID uuid.UUID) (int64, error) {
	var n int64
	err := r.teamLeaves(ctx, managerID).
		Where("leaves.status = ?", StatusApproved).
		Where("leaves.from_date <= ? AND leaves.to_date >= ?", to, from).
		Where("leaves.id <> ?", excludeID).
		Count(&n).Error
	return n, err
}
