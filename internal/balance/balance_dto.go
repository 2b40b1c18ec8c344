package balance

// BalancesResponse maps year to leave type to remaining days.
type BalancesResponse map[int]map[string]int

type SetBalanceRequest struct {
	LeaveType string `json:"leave_type" binding:"required"`
	Year      int    `json:"year"`
	Balance   *int   `json:"balance" binding:"required"`
}

type BalanceResponse struct {
	UserID    string `json:"user_id"`
	LeaveType string `json:"leave_type"`
	Year      int    `json:"year"`
	Previous  int    `json:"previous"`
	Balance   int    `json:"balance"`
}

type EntryResponse struct {
	ID           string `json:"id"`
	LeaveType    string `json:"leave_type"`
	Year         int    `json:"year"`
	Delta        int    `json:"delta"`
	BalanceAfter int    `json:"balance_after"`
	Reason       string `json:"reason"`
	LeaveID      string `json:"leave_id,omitempty"`
	ActorID      string `json:"actor_id,omitempty"`
	CreatedAt    string `json:"created_at"`
}

func mapEntryToResponse(e Entry) EntryResponse {
	resp := EntryResponse{
		ID:           e.ID.String(),
		LeaveType:    string(e.LeaveType),
		Year:         e.Year,
		Delta:        e.Delta,
		BalanceAfter: e.BalanceAfter,
		Reason:       string(e.Reason),
		CreatedAt:    e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if e.LeaveID != nil {
		resp.LeaveID = e.LeaveID.String()
	}
	if e.ActorID != nil {
		resp.ActorID = e.ActorID.String()
	}
	return resp
}
