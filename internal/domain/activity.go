package domain

import "time"

type ActivityAction string

const (
	ActionReservationCreate ActivityAction = "reservation_create"
	ActionReservationCancel ActivityAction = "reservation_cancel"
)

// ActivityEntry is one row of the audit trail.
type ActivityEntry struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Action    ActivityAction    `json:"action_type"`
	TargetID  string            `json:"target_id"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
