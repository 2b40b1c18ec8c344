package leave

import (
	"context"
	"fmt"
	"time"

	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultTeamPageSize = 10
	maxTeamPageSize     = 100
)

// TeamService is the manager's read side over their direct reports' leave.
//
//go:generate mockgen -source=leave_team.go -destination=mock/leave_team_mock.go -package=mock
type TeamService interface {
	ListLeaves(ctx context.Context, managerID string, q TeamLeavesQuery) ([]TeamLeaveResponse, int64, error)
	Calendar(ctx context.Context, managerID string, q CalendarQuery) (CalendarResponse, error)
	GetLeave(ctx context.Context, managerID, leaveID string) (TeamLeaveResponse, error)
}

type teamService struct {
	repo   Repository
	users  user.Repository
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewTeamService(repo Repository, users user.Repository, logger ...*zap.Logger) TeamService {
	l := zap.L().Named("leave.team")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.team")
	}
	return &teamService{repo: repo, users: users, sf: &singleflight.Group{}, logger: l}
}

// paged applies the default page and page size.
func (q TeamLeavesQuery) paged() TeamLeavesQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultTeamPageSize
	}
	if q.Limit > maxTeamPageSize {
		q.Limit = maxTeamPageSize
	}
	return q
}

// ListLeaves returns one page of team requests and the total count. A month
// filter selects requests that overlap that month.
func (s *teamService) ListLeaves(ctx context.Context, managerID string, q TeamLeavesQuery) ([]TeamLeaveResponse, int64, error) {
	mid, err := uuid.Parse(managerID)
	if err != nil {
		return nil, 0, leaveerrors.ErrInvalidUserID
	}

	q = q.paged()
	f := TeamFilter{Page: q.Page, Limit: q.Limit}

	if q.Status != "" && q.Status != "all" {
		st, ok := ParseStatus(q.Status)
		if !ok {
			return nil, 0, leaveerrors.ErrInvalidStatus
		}
		f.Status = st
	}

	switch {
	case q.Month != 0:
		if q.Month < 1 || q.Month > 12 || q.Year <= 0 {
			return nil, 0, leaveerrors.ErrInvalidMonth
		}
		f.From, f.To = monthRange(q.Year, q.Month)
	case q.Year < 0:
		return nil, 0, leaveerrors.ErrInvalidYear
	case q.Year > 0:
		f.From = time.Date(q.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		f.To = time.Date(q.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
	}

	leaves, total, err := s.repo.ListTeam(ctx, mid, f)
	if err != nil {
		s.logger.Error("list team leaves failed", zap.String("manager_id", managerID), zap.Error(err))
		return nil, 0, apperror.FromRepository(err, nil)
	}

	resp := make([]TeamLeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToTeamResponse(l)
	}
	return resp, total, nil
}

// Calendar lists the team and its approved leave overlapping one month.
func (s *teamService) Calendar(ctx context.Context, managerID string, q CalendarQuery) (CalendarResponse, error) {
	mid, err := uuid.Parse(managerID)
	if err != nil {
		return CalendarResponse{}, leaveerrors.ErrInvalidUserID
	}
	if q.Month < 1 || q.Month > 12 || q.Year <= 0 {
		return CalendarResponse{}, leaveerrors.ErrInvalidMonth
	}

	// Concurrent requests for the same team month share one load.
	key := fmt.Sprintf("calendar:%s:%d-%02d", mid, q.Year, q.Month)
	v, err, _ := s.sf.Do(key, func() (any, error) {
		return s.loadCalendar(ctx, mid, q)
	})
	if err != nil {
		return CalendarResponse{}, err
	}
	return v.(CalendarResponse), nil
}

func (s *teamService) loadCalendar(ctx context.Context, mid uuid.UUID, q CalendarQuery) (CalendarResponse, error) {
	members, err := s.users.FindReports(ctx, mid.String())
	if err != nil {
		return CalendarResponse{}, apperror.FromRepository(err, nil)
	}

	resp := CalendarResponse{
		Month:   q.Month,
		Year:    q.Year,
		Members: make([]CalendarMember, len(members)),
		Leaves:  []CalendarEntry{},
	}
	for i, m := range members {
		resp.Members[i] = CalendarMember{ID: m.ID.String(), Name: m.Name, Email: m.Email}
	}
	if len(members) == 0 {
		return resp, nil
	}

	from, to := monthRange(q.Year, q.Month)
	leaves, _, err := s.repo.ListTeam(ctx, mid, TeamFilter{Status: StatusApproved, From: from, To: to})
	if err != nil {
		s.logger.Error("list team calendar failed", zap.String("manager_id", mid.String()), zap.Error(err))
		return CalendarResponse{}, apperror.FromRepository(err, nil)
	}

	for _, l := range leaves {
		resp.Leaves = append(resp.Leaves, mapToCalendarEntry(l))
	}
	return resp, nil
}

func (s *teamService) GetLeave(ctx context.Context, managerID, leaveID string) (TeamLeaveResponse, error) {
	mid, err := uuid.Parse(managerID)
	if err != nil {
		return TeamLeaveResponse{}, leaveerrors.ErrInvalidUserID
	}
	lid, err := uuid.Parse(leaveID)
	if err != nil {
		return TeamLeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	l, err := s.repo.FindTeamLeave(ctx, mid, lid)
	if err != nil {
		return TeamLeaveResponse{}, apperror.FromRepository(err, leaveerrors.ErrLeaveNotFound)
	}
	return mapToTeamResponse(*l), nil
}

func monthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

func mapToCalendarEntry(l Leave) CalendarEntry {
	name := ""
	if l.User != nil {
		name = l.User.Name
	}
	plural := ""
	if l.Days > 1 {
		plural = "s"
	}
	return CalendarEntry{
		ID:             l.ID.String(),
		Title:          fmt.Sprintf("%s - %s (%d day%s)", name, l.LeaveType, l.Days, plural),
		Start:          l.FromDate.Format(dateLayout),
		End:            l.ToDate.Format(dateLayout),
		Days:           l.Days,
		LeaveType:      string(l.LeaveType),
		UserID:         l.UserID.String(),
		UserName:       name,
		Reason:         l.Reason,
		ManagerComment: l.ManagerComment,
	}
}
