package admin

type Stats struct {
	Resources             int   `json:"resources"`
	TotalCapacity         int   `json:"total_capacity"`
	ConfirmedReservations int64 `json:"confirmed_reservations"`
	CancelledReservations int64 `json:"cancelled_reservations"`
	UpcomingReservations  int64 `json:"upcoming_reservations"`
}
