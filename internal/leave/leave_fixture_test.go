package leave_test

import (
	"context"
	"testing"
	"time"

	"go-leave/internal/audit"
	auditmock "go-leave/internal/audit/mock"
	"go-leave/internal/balance"
	"go-leave/internal/leave"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/lock"
	"go-leave/internal/shared/testdb"
	"go-leave/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testYear = 2025

func fixedNow() time.Time {
	return time.Date(testYear, time.February, 1, 9, 0, 0, 0, time.UTC)
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

type leaveFixture struct {
	db       *gorm.DB
	repo     leave.Repository
	ledger   balance.Ledger
	outbox   kafka.OutboxRepository
	recorder *auditmock.MockRecorder
	service  leave.Service
	workflow leave.ApprovalWorkflow
	team     leave.TeamService
}

func setupLeaveTest(t *testing.T, opts ...leave.Options) *leaveFixture {
	t.Helper()
	db := testdb.New(t,
		&user.User{},
		&leave.Leave{},
		&balance.LeaveBalance{},
		&balance.Entry{},
		&kafka.OutboxEvent{},
	)

	o := leave.Options{Now: fixedNow}
	if len(opts) > 0 {
		o = opts[0]
		if o.Now == nil {
			o.Now = fixedNow
		}
	}

	ctrl := gomock.NewController(t)
	f := &leaveFixture{
		db:       db,
		repo:     leave.NewRepository(db),
		ledger:   balance.NewLedger(db, balance.NewRepository(db), balance.DefaultAllowances(), zap.NewNop()),
		outbox:   kafka.NewOutboxRepository(db),
		recorder: auditmock.NewMockRecorder(ctrl),
	}
	users := user.NewRepository(db)
	locker := lock.NewLocalLocker()

	f.service = leave.NewService(db, f.repo, f.ledger, f.outbox, locker, f.recorder, o, zap.NewNop())
	f.workflow = leave.NewApprovalWorkflow(db, f.repo, users, f.ledger, f.outbox, locker, f.recorder, o, zap.NewNop())
	f.team = leave.NewTeamService(f.repo, users, zap.NewNop())
	return f
}

func (f *leaveFixture) seedUser(t *testing.T, name string, role user.Role, managerID *uuid.UUID) user.User {
	t.Helper()
	id := uuid.New()
	u := user.User{
		ID:        id,
		Name:      name,
		Email:     id.String() + "@example.com",
		Role:      role,
		ManagerID: managerID,
	}
	require.NoError(t, f.db.Create(&u).Error)
	return u
}

// seedTeam creates a manager with n direct reports.
func (f *leaveFixture) seedTeam(t *testing.T, n int) (user.User, []user.User) {
	t.Helper()
	manager := f.seedUser(t, "Manager", user.RoleManager, nil)
	reports := make([]user.User, n)
	for i := range reports {
		reports[i] = f.seedUser(t, "Report", user.RoleEmployee, &manager.ID)
	}
	return manager, reports
}

// actionMatcher matches an audit.Entry by its ActionType.
type actionMatcher string

func (m actionMatcher) Matches(x any) bool {
	e, ok := x.(audit.Entry)
	return ok && e.ActionType == string(m)
}

func (m actionMatcher) String() string {
	return "audit entry with action " + string(m)
}

// expectAudit accepts n audit records of actionType, in any order relative
// to other action types.
func (f *leaveFixture) expectAudit(t *testing.T, actionType string, n int) {
	t.Helper()
	f.recorder.EXPECT().
		Record(gomock.Any(), actionMatcher(actionType)).
		Times(n)
}

// insertLeave stores a request directly, bypassing the ledger.
func (f *leaveFixture) insertLeave(t *testing.T, userID uuid.UUID, lt balance.LeaveType, from, to string, status leave.Status, reserved int) leave.Leave {
	t.Helper()
	l := leave.Leave{
		ID:           uuid.New(),
		UserID:       userID,
		LeaveType:    lt,
		FromDate:     day(from),
		ToDate:       day(to),
		Days:         leave.DaysBetween(day(from), day(to)),
		ReservedDays: reserved,
		Reason:       "seeded",
		Status:       status,
	}
	require.NoError(t, f.repo.Create(context.Background(), &l))
	return l
}

func (f *leaveFixture) balanceOf(t *testing.T, userID uuid.UUID, lt balance.LeaveType, year int) int {
	t.Helper()
	v, err := f.ledger.Lookup(context.Background(), userID, lt, year)
	require.NoError(t, err)
	return v
}

func (f *leaveFixture) outboxTypes(t *testing.T) []string {
	t.Helper()
	var types []string
	require.NoError(t, f.db.Model(&kafka.OutboxEvent{}).Order("created_at ASC").Pluck("event_type", &types).Error)
	return types
}

func (f *leaveFixture) statusOf(t *testing.T, id uuid.UUID) leave.Status {
	t.Helper()
	l, err := f.repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return l.Status
}
