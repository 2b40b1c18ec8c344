package balance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	InsertIfAbsent(ctx context.Context, b *LeaveBalance) (bool, error)
	Find(ctx context.Context, userID uuid.UUID, t LeaveType, year int, forUpdate bool) (*LeaveBalance, error)
	ListByUser(ctx context.Context, userID uuid.UUID, fromYear, toYear int) ([]LeaveBalance, error)
	Decrement(ctx context.Context, userID uuid.UUID, t LeaveType, year, amount int) (int, bool, error)
	Increment(ctx context.Context, userID uuid.UUID, t LeaveType, year, amount int) (int, bool, error)
	SetValue(ctx context.Context, userID uuid.UUID, t LeaveType, year, value int) error
	AppendEntry(ctx context.Context, e *Entry) error
	ListEntries(ctx context.Context, userID uuid.UUID, year int) ([]Entry, error)
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

// InsertIfAbsent reports whether the row was created. An existing row for the
// same key is left untouched.
func (r *repository) InsertIfAbsent(ctx context.Context, b *LeaveBalance) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(b)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) Find(ctx context.Context, userID uuid.UUID, t LeaveType, year int, forUpdate bool) (*LeaveBalance, error) {
	q := r.db.WithContext(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var b LeaveBalance
	err := q.Where("user_id = ? AND leave_type = ? AND year = ?", userID, t, year).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, fromYear, toYear int) ([]LeaveBalance, error) {
	var out []LeaveBalance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND year BETWEEN ? AND ?", userID, fromYear, toYear).
		Order("year DESC").
		Order("leave_type ASC").
		Find(&out).Error
	return out, err
}

// Decrement subtracts amount only when the row holds at least amount, in a
// single statement. ok is false when no row qualified.
func (r *repository) Decrement(ctx context.Context, userID uuid.UUID, t LeaveType, year, amount int) (int, bool, error) {
	var after []int
	err := r.db.WithContext(ctx).Raw(`
		UPDATE leave_balances
		SET balance = balance - ?, updated_at = ?
		WHERE user_id = ? AND leave_type = ? AND year = ? AND balance >= ?
		RETURNING balance
	`, amount, time.Now().UTC(), userID, t, year, amount).Scan(&after).Error
	if err != nil || len(after) == 0 {
		return 0, false, err
	}
	return after[0], true, nil
}

func (r *repository) Increment(ctx context.Context, userID uuid.UUID, t LeaveType, year, amount int) (int, bool, error) {
	var after []int
	err := r.db.WithContext(ctx).Raw(`
		UPDATE leave_balances
		SET balance = balance + ?, updated_at = ?
		WHERE user_id = ? AND leave_type = ? AND year = ?
		RETURNING balance
	`, amount, time.Now().UTC(), userID, t, year).Scan(&after).Error
	if err != nil || len(after) == 0 {
		return 0, false, err
	}
	return after[0], true, nil
}

func (r *repository) SetValue(ctx context.Context, userID uuid.UUID, t LeaveType, year, value int) error {
	b := &LeaveBalance{
		ID:        uuid.New(),
		UserID:    userID,
		LeaveType: t,
		Year:      year,
		Balance:   value,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "leave_type"}, {Name: "year"}},
			DoUpdates: clause.AssignmentColumns([]string{"balance", "updated_at"}),
		}).
		Create(b).Error
}

func (r *repository) AppendEntry(ctx context.Context, e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) ListEntries(ctx context.Context, userID uuid.UUID, year int) ([]Entry, error) {
	var out []Entry
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if year > 0 {
		q = q.Where("year = ?", year)
	}
	err := q.Order("created_at ASC").Find(&out).Error
	return out, err
}
