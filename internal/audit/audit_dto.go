package audit

import "encoding/json"

type LogResponse struct {
	ID           string          `json:"id"`
	ActionBy     string          `json:"action_by"`
	ActionType   string          `json:"action_type"`
	ActionTarget string          `json:"action_target"`
	Details      string          `json:"details,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	CreatedAt    string          `json:"created_at"`
}

func mapToResponse(l Log) LogResponse {
	resp := LogResponse{
		ID:           l.ID.String(),
		ActionBy:     l.ActionBy.String(),
		ActionType:   l.ActionType,
		ActionTarget: l.ActionTarget,
		Details:      l.Details,
		CreatedAt:    l.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if json.Valid([]byte(l.Metadata)) {
		resp.Metadata = json.RawMessage(l.Metadata)
	}
	return resp
}
