package domain

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanManage reports whether the actor may cancel the given reservation.
func (a Actor) CanManage(r Reservation) bool {
	return a.IsAdmin() || (a.UserID != "" && a.UserID == r.UserID)
}
