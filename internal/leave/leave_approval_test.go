package leave_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go-leave/internal/audit"
	"go-leave/internal/balance"
	balanceerrors "go-leave/internal/balance/errors"
	"go-leave/internal/events"
	"go-leave/internal/leave"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approve() leave.DecisionRequest {
	return leave.DecisionRequest{Status: "approved"}
}

func reject(comment string) leave.DecisionRequest {
	return leave.DecisionRequest{Status: "rejected", Comment: &comment}
}

func detailsOf(t *testing.T, err error) any {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	return appErr.Details
}

func TestApprovalWorkflow_Decide(t *testing.T) {
	ctx := context.Background()

	t.Run("success approve commits reservation", func(t *testing.T) {
		f := setupLeaveTest(t)
		manager, reports := f.seedTeam(t, 1)
		emp := reports[0]
		f.expectAudit(t, audit.ActionLeaveApply, 1)
		applied, err := f.service.Apply(ctx, emp.ID.String(), "employee", applyReq("2025-03-10", "2025-03-12", "casual"))
		require.NoError(t, err)

		f.expectAudit(t, audit.ActionLeaveApprove, 1)
		resp, err := f.workflow.Decide(ctx, manager.ID.String(), applied.Leave.ID, approve())
		require.NoError(t, err)

		assert.Equal(t, "approved", resp.Status)
		require.NotNil(t, resp.ProcessedBy)
		assert.Equal(t, manager.ID.String(), *resp.ProcessedBy)
		assert.NotNil(t, resp.ProcessedAt)
		assert.Equal(t, 9, f.balanceOf(t, emp.ID, balance.TypeCasual, testYear))
		assert.ElementsMatch(t, []string{events.LeaveApplied, events.LeaveApproved}, f.outboxTypes(t))
	})

	t.Run("success reject pending releases reservation", func(t *testing.T) {
		f := setupLeaveTest(t)
		manager, reports := f.seedTeam(t, 1)
		emp := reports[0]
		f.expectAudit(t, audit.ActionLeaveApply, 1)
		applied, err := f.service.Apply(ctx, emp.ID.String(), "employee", applyReq("2025-03-10", "2025-03-12", "annual"))
		require.NoError(t, err)

		f.expectAudit(t, audit.ActionLeaveReject, 1)
		resp, err := f.workflow.Decide(ctx, manager.ID.String(), applied.Leave.ID, reject("busy quarter"))
		require.NoError(t, err)

		assert.Equal(t, "rejected", resp.Status)
		require.NotNil(t, resp.ManagerComment)
		assert.Equal(t, "busy quarter", *resp.ManagerComment)
		assert.Equal(t, 0, resp.ReservedDays)
		assert.Equal(t, 15, f.balanceOf(t, emp.ID, balance.TypeAnnual, testYear))
		assert.ElementsMatch(t, []string{events.LeaveApplied, events.LeaveRejected}, f.outboxTypes(t))
	})

	t.Run("success reject after yearly reset restores nothing", func(t *testing.T) {
		f := setupLeaveTest(t)
		manager, reports := f.seedTeam(t, 1)
		emp := reports[0]
		require.NoError(t, f.ledger.Ensure(ctx, emp.ID, testYear))
		_, err := f.ledger.Expire(ctx, emp.ID, testYear, balance.Movement{Reason: balance.ReasonYearReset})
		require.NoError(t, err)
		l := f.insertLeave(t, emp.ID, balance.TypeAnnual, "2025-12-29", "2025-12-30", leave.StatusPending, 2)

		f.expectAudit(t, audit.ActionLeaveReject, 1)
		resp, err := f.workflow.Decide(ctx, manager.ID.String(), l.ID.String(), reject("year closed"))
		require.NoError(t, err)

		assert.Equal(t, "rejected", resp.Status)
		assert.Equal(t, 0, resp.ReservedDays)
		assert.Equal(t, 0, f.balanceOf(t, emp.ID, balance.TypeAnnual, testYear))
	})

	t.Run("negative manager of another team", func(t *testing.T) {
		f := setupLeaveTest(t)
		_, reports := f.seedTeam(t, 1)
		stranger := f.seedUser(t, "Other", user.RoleManager, nil)
		l := f.insertLeave(t, reports[0].ID, balance.TypeCasual, "2025-03-10", "2025-03-10", leave.StatusPending, 1)

		_, err := f.workflow.Decide(ctx, stranger.ID.String(), l.ID.String(), approve())
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
		assert.Equal(t, leave.StatusPending, f.statusOf(t, l.ID))
	})

	t.Run("negative already decided", func(t *testing.T) {
		f := setupLeaveTest(t)
		manager, reports := f.seedTeam(t, 1)
		l := f.insertLeave(t, reports[0].ID, balance.TypeCasual, "2025-03-10", "2025-03-10", leave.StatusRejected, 0)

		_, err := f.workflow.Decide(ctx, manager.ID.String(), l.ID.String(), approve())
		require.ErrorIs(t, err, leaveerrors.ErrInvalidState)
		assert.Equal(t, leaveerrors.StateDetails{Status: "rejected", Target: "approved"}, detailsOf(t, err))
	})

	t.Run("negative manager cannot reverse an approval", func(t *testing.T) {
		f := setupLeaveTest(t)
		manager, reports := f.seedTeam(t, 1)
		require.NoError(t, f.ledger.Ensure(ctx, reports[0].ID, testYear))
		l := f.insertLeave(t, reports[0].ID, balance.TypeCasual, "2025-03-10", "2025-03-10", leave.StatusApproved, 1)

		_, err := f.workflow.Decide(ctx, manager.ID.String(), l.ID.String(), reject("changed my mind"))
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidState)
		assert.Equal(t, 12, f.balanceOf(t, reports[0].ID, balance.TypeCasual, testYear))
	})

	t.Run("negative exceeds max duration", func(t *testing.T) {
		f := setupLeaveTest(t, leave.Options{MaxLeaveDays: 2})
		manager, reports := f.seedTeam(t, 1)
		f.expectAudit(t, audit.ActionLeaveApply, 1)
		applied, err := f.service.Apply(ctx, reports[0].ID.String(), "employee", applyReq("2025-03-10", "2025-03-12", "annual"))
		require.NoError(t, err)

		_, err = f.workflow.Decide(ctx, manager.ID.String(), applied.Leave.ID, approve())
		require.ErrorIs(t, err, leaveerrors.ErrExceedsMaxDuration)
		assert.Equal(t, leaveerrors.DurationDetails{Days: 3, Max: 2}, detailsOf(t, err))
	})

	t.Run("negative balance record missing", func(t *testing.T) {
		f := setupLeaveTest(t)
		manager, reports := f.seedTeam(t, 1)
		l := f.insertLeave(t, reports[0].ID, balance.TypeSick, "2025-03-10", "2025-03-11", leave.StatusPending, 0)

		_, err := f.workflow.Decide(ctx, manager.ID.String(), l.ID.String(), approve())
		assert.ErrorIs(t, err, balanceerrors.ErrBalanceRecordMissing)
		assert.Equal(t, leave.StatusPending, f.statusOf(t, l.ID))
	})

	t.Run("negative five days against balance of three", func(t *testing.T) {
		f := setupLeaveTest(t)
		manager, reports := f.seedTeam(t, 1)
		emp := reports[0]
		_, err := f.ledger.Set(ctx, emp.ID, balance.TypeCasual, testYear, 3, balance.Movement{Reason: balance.ReasonAdminSet})
		require.NoError(t, err)
		l := f.insertLeave(t, emp.ID, balance.TypeCasual, "2025-03-10", "2025-03-14", leave.StatusPending, 0)

		_, err = f.workflow.Decide(ctx, manager.ID.String(), l.ID.String(), approve())
		require.ErrorIs(t, err, balanceerrors.ErrInsufficientBalance)
		assert.Equal(t, balanceerrors.InsufficientDetails{
			LeaveType: "casual",
			Year:      testYear,
			Requested: 5,
			Available: 3,
		}, detailsOf(t, err))

		assert.Equal(t, 3, f.balanceOf(t, emp.ID, balance.TypeCasual, testYear))
		assert.Equal(t, leave.StatusPending, f.statusOf(t, l.ID))
	})

	t.Run("negative team capacity reached", func(t *testing.T) {
		f := setupLeaveTest(t)
		manager, reports := f.seedTeam(t, 4)
		f.insertLeave(t, reports[0].ID, balance.TypeCasual, "2025-03-08", "2025-03-10", leave.StatusApproved, 3)
		f.insertLeave(t, reports[1].ID, balance.TypeSick, "2025-03-12", "2025-03-12", leave.StatusApproved, 1)
		f.insertLeave(t, reports[2].ID, balance.TypeAnnual, "2025-03-01", "2025-03-31", leave.StatusApproved, 31)
		f.insertLeave(t, reports[1].ID, balance.TypeCasual, "2025-04-01", "2025-04-02", leave.StatusApproved, 2)

		f.expectAudit(t, audit.ActionLeaveApply, 1)
		applied, err := f.service.Apply(ctx, reports[3].ID.String(), "employee", applyReq("2025-03-10", "2025-03-12", "casual"))
		require.NoError(t, err)

		_, err = f.workflow.Decide(ctx, manager.ID.String(), applied.Leave.ID, approve())
		require.ErrorIs(t, err, leaveerrors.ErrTeamCapacityExceeded)
		assert.Equal(t, leaveerrors.CapacityDetails{Current: 3, Max: 3}, detailsOf(t, err))

		id, _ := uuid.Parse(applied.Leave.ID)
		assert.Equal(t, leave.StatusPending, f.statusOf(t, id))
		assert.Equal(t, 9, f.balanceOf(t, reports[3].ID, balance.TypeCasual, testYear))
	})

	t.Run("success capacity ignores other teams", func(t *testing.T) {
		f := setupLeaveTest(t)
		manager, reports := f.seedTeam(t, 1)
		_, others := f.seedTeam(t, 3)
		for _, o := range others {
			f.insertLeave(t, o.ID, balance.TypeCasual, "2025-03-10", "2025-03-10", leave.StatusApproved, 1)
		}

		f.expectAudit(t, audit.ActionLeaveApply, 1)
		applied, err := f.service.Apply(ctx, reports[0].ID.String(), "employee", applyReq("2025-03-10", "2025-03-10", "casual"))
		require.NoError(t, err)

		f.expectAudit(t, audit.ActionLeaveApprove, 1)
		_, err = f.workflow.Decide(ctx, manager.ID.String(), applied.Leave.ID, approve())
		assert.NoError(t, err)
	})

	t.Run("negative invalid decision", func(t *testing.T) {
		f := setupLeaveTest(t)
		_, err := f.workflow.Decide(ctx, uuid.NewString(), uuid.NewString(), leave.DecisionRequest{Status: "pending"})
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDecision)
	})
}

func TestApprovalWorkflow_ConcurrentApprove(t *testing.T) {
	ctx := context.Background()
	f := setupLeaveTest(t)
	manager, reports := f.seedTeam(t, 1)
	emp := reports[0]

	f.expectAudit(t, audit.ActionLeaveApply, 1)
	applied, err := f.service.Apply(ctx, emp.ID.String(), "employee", applyReq("2025-03-10", "2025-03-12", "casual"))
	require.NoError(t, err)

	f.expectAudit(t, audit.ActionLeaveApprove, 1)

	const callers = 2
	errs := make([]error, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := range callers {
		go func() {
			defer wg.Done()
			_, errs[i] = f.workflow.Decide(ctx, manager.ID.String(), applied.Leave.ID, approve())
		}()
	}
	wg.Wait()

	var ok, invalid int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, leaveerrors.ErrInvalidState):
			invalid++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, invalid)

	assert.Equal(t, 9, f.balanceOf(t, emp.ID, balance.TypeCasual, testYear))

	entries, err := f.ledger.Entries(ctx, emp.ID, testYear)
	require.NoError(t, err)
	var debits int
	for _, e := range entries {
		if e.LeaveID != nil && e.LeaveID.String() == applied.Leave.ID && e.Delta < 0 {
			debits++
		}
	}
	assert.Equal(t, 1, debits)

	id, _ := uuid.Parse(applied.Leave.ID)
	assert.Equal(t, leave.StatusApproved, f.statusOf(t, id))
}

func TestApprovalWorkflow_Override(t *testing.T) {
	ctx := context.Background()

	t.Run("success admin reverses approval", func(t *testing.T) {
		f := setupLeaveTest(t)
		manager, reports := f.seedTeam(t, 1)
		admin := f.seedUser(t, "Root", user.RoleAdmin, nil)
		emp := reports[0]

		f.expectAudit(t, audit.ActionLeaveApply, 1)
		applied, err := f.service.Apply(ctx, emp.ID.String(), "employee", applyReq("2025-03-10", "2025-03-12", "casual"))
		require.NoError(t, err)
		f.expectAudit(t, audit.ActionLeaveApprove, 1)
		_, err = f.workflow.Decide(ctx, manager.ID.String(), applied.Leave.ID, approve())
		require.NoError(t, err)
		require.Equal(t, 9, f.balanceOf(t, emp.ID, balance.TypeCasual, testYear))

		f.expectAudit(t, audit.ActionLeaveReverse, 1)
		resp, err := f.workflow.Override(ctx, admin.ID.String(), applied.Leave.ID, reject("project moved"))
		require.NoError(t, err)

		assert.Equal(t, "rejected", resp.Status)
		assert.Equal(t, 12, f.balanceOf(t, emp.ID, balance.TypeCasual, testYear))
		assert.ElementsMatch(t,
			[]string{events.LeaveApplied, events.LeaveApproved, events.LeaveReversed},
			f.outboxTypes(t),
		)

		entries, err := f.ledger.Entries(ctx, emp.ID, testYear)
		require.NoError(t, err)
		var reversal []balance.Entry
		for _, e := range entries {
			if e.Reason == balance.ReasonReversal {
				reversal = append(reversal, e)
			}
		}
		require.Len(t, reversal, 1)
		assert.Equal(t, 3, reversal[0].Delta)
	})

	t.Run("success admin decides any pending request", func(t *testing.T) {
		f := setupLeaveTest(t)
		admin := f.seedUser(t, "Root", user.RoleAdmin, nil)
		loner := f.seedUser(t, "Solo", user.RoleEmployee, nil)

		f.expectAudit(t, audit.ActionLeaveApply, 1)
		applied, err := f.service.Apply(ctx, loner.ID.String(), "employee", applyReq("2025-03-10", "2025-03-10", "sick"))
		require.NoError(t, err)

		f.expectAudit(t, audit.ActionLeaveApprove, 1)
		resp, err := f.workflow.Override(ctx, admin.ID.String(), applied.Leave.ID, approve())
		require.NoError(t, err)
		assert.Equal(t, "approved", resp.Status)
	})

	t.Run("negative non admin", func(t *testing.T) {
		f := setupLeaveTest(t)
		manager, reports := f.seedTeam(t, 1)
		l := f.insertLeave(t, reports[0].ID, balance.TypeCasual, "2025-03-10", "2025-03-10", leave.StatusApproved, 1)

		_, err := f.workflow.Override(ctx, manager.ID.String(), l.ID.String(), reject("no"))
		assert.ErrorIs(t, err, leaveerrors.ErrAdminRequired)
		assert.Equal(t, leave.StatusApproved, f.statusOf(t, l.ID))
	})

	t.Run("negative unknown leave", func(t *testing.T) {
		f := setupLeaveTest(t)
		admin := f.seedUser(t, "Root", user.RoleAdmin, nil)

		_, err := f.workflow.Override(ctx, admin.ID.String(), uuid.NewString(), approve())
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})
}
