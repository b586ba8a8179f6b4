package booking

import "time"

type CreateReservationInput struct {
	ResourceID   string
	Start        time.Time
	End          time.Time
	Title        string
	Description  string
	BookerName   string
	LinkedTaskID string
}

type CreateReservationRequest struct {
	StartTime    time.Time `json:"start_time" binding:"required"`
	EndTime      time.Time `json:"end_time" binding:"required"`
	Title        string    `json:"title" binding:"required"`
	Description  string    `json:"description"`
	BookerName   string    `json:"booker_name"`
	LinkedTaskID string    `json:"linked_task_id"`
}

func (r CreateReservationRequest) toInput(resourceID string) CreateReservationInput {
	return CreateReservationInput{
		ResourceID:   resourceID,
		Start:        r.StartTime,
		End:          r.EndTime,
		Title:        r.Title,
		Description:  r.Description,
		BookerName:   r.BookerName,
		LinkedTaskID: r.LinkedTaskID,
	}
}
