package user

type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	ManagerID string `json:"manager_id,omitempty"`
}

func mapToResponse(u User) UserResponse {
	resp := UserResponse{
		ID:    u.ID.String(),
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
	if u.ManagerID != nil {
		resp.ManagerID = u.ManagerID.String()
	}
	return resp
}
