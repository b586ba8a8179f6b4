package domain

import "time"

type ResourceType string

const (
	ResourceRoom      ResourceType = "room"
	ResourceEquipment ResourceType = "equipment"
)

// Resource is a bookable room or piece of equipment. Capacity is the number of
// reservations allowed to overlap at any single instant.
type Resource struct {
	ID          string       `json:"id"`
	Name        string       `json:"name" validate:"required"`
	Type        ResourceType `json:"type" validate:"required"`
	Description string       `json:"description,omitempty"`
	Capacity    int          `json:"capacity" validate:"required,gte=1"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// EffectiveCapacity treats a missing or non-positive capacity as 1.
func (r Resource) EffectiveCapacity() int {
	if r.Capacity < 1 {
		return 1
	}
	return r.Capacity
}
