package leave

import "time"

type ApplyLeaveRequest struct {
	FromDate  string `json:"from_date" binding:"required"`
	ToDate    string `json:"to_date" binding:"required"`
	LeaveType string `json:"leave_type" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

type DecisionRequest struct {
	Status  string  `json:"status" binding:"required,oneof=approved rejected"`
	Comment *string `json:"comment"`
}

type HistoryQuery struct {
	Year      int    `form:"year"`
	Status    string `form:"status"`
	LeaveType string `form:"type"`
}

type TeamLeavesQuery struct {
	Status string `form:"status"`
	Month  int    `form:"month"`
	Year   int    `form:"year"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

type CalendarQuery struct {
	Month int `form:"month" binding:"required"`
	Year  int `form:"year" binding:"required"`
}

type LeaveResponse struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	LeaveType      string  `json:"leave_type"`
	FromDate       string  `json:"from_date"`
	ToDate         string  `json:"to_date"`
	Days           int     `json:"days"`
	ReservedDays   int     `json:"reserved_days"`
	Reason         string  `json:"reason"`
	Status         string  `json:"status"`
	ManagerComment *string `json:"manager_comment,omitempty"`
	ProcessedBy    *string `json:"processed_by,omitempty"`
	ProcessedAt    *string `json:"processed_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

type ApplyLeaveResponse struct {
	Leave            LeaveResponse `json:"leave"`
	RemainingBalance int           `json:"remaining_balance"`
}

type CancelLeaveResponse struct {
	Leave            LeaveResponse `json:"leave"`
	RestoredDays     int           `json:"restored_days"`
	RemainingBalance int           `json:"remaining_balance"`
}

type TeamLeaveResponse struct {
	LeaveResponse
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

type CalendarMember struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CalendarEntry struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Start          string  `json:"start"`
	End            string  `json:"end"`
	Days           int     `json:"days"`
	LeaveType      string  `json:"leave_type"`
	UserID         string  `json:"user_id"`
	UserName       string  `json:"user_name"`
	Reason         string  `json:"reason"`
	ManagerComment *string `json:"manager_comment,omitempty"`
}

type CalendarResponse struct {
	Month   int              `json:"month"`
	Year    int              `json:"year"`
	Members []CalendarMember `json:"team_members"`
	Leaves  []CalendarEntry  `json:"leaves"`
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:             l.ID.String(),
		UserID:         l.UserID.String(),
		LeaveType:      string(l.LeaveType),
		FromDate:       l.FromDate.Format(dateLayout),
		ToDate:         l.ToDate.Format(dateLayout),
		Days:           l.Days,
		ReservedDays:   l.ReservedDays,
		Reason:         l.Reason,
		Status:         string(l.Status),
		ManagerComment: l.ManagerComment,
		CreatedAt:      l.CreatedAt.UTC().Format(time.RFC3339),
	}
	if l.ProcessedBy != nil {
		v := l.ProcessedBy.String()
		resp.ProcessedBy = &v
	}
	if l.ProcessedAt != nil {
		v := l.ProcessedAt.UTC().Format(time.RFC3339)
		resp.ProcessedAt = &v
	}
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}

func mapToTeamResponse(l Leave) TeamLeaveResponse {
	resp := TeamLeaveResponse{LeaveResponse: mapToResponse(l)}
	if l.User != nil {
		resp.UserName = l.User.Name
		resp.UserEmail = l.User.Email
	}
	return resp
}
