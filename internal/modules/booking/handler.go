package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"deptbook/internal/middleware"
	"deptbook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resources/status", h.Dashboard)
	rg.GET("/resources/:id/status", h.GetStatus)
	rg.GET("/resources/:id/timeline", h.GetTimeline)
	rg.GET("/resources/:id/calendar.ics", h.GetCalendar)
	rg.GET("/resources/:id/reservations", h.ListReservations)
	rg.POST("/resources/:id/reservations", h.CreateReservation)

	rg.GET("/reservations/me", h.ListMyReservations)
	rg.GET("/reservations/:id", h.GetReservation)
	rg.DELETE("/reservations/:id", h.CancelReservation)
}

func (h *Handler) CreateReservation(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	r, err := h.service.CreateReservation(c.Request.Context(), actor, req.toInput(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"reservation": r})
}

func (h *Handler) CancelReservation(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	r, err := h.service.CancelReservation(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservation": r})
}

func (h *Handler) GetReservation(c *gin.Context) {
	r, err := h.service.GetReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservation": r})
}

func (h *Handler) ListReservations(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}
	includeCancelled, _ := strconv.ParseBool(c.Query("include_cancelled"))

	list, err := h.service.ListReservations(c.Request.Context(), c.Param("id"), from, to, includeCancelled)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservations": list})
}

func (h *Handler) ListMyReservations(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}

	list, err := h.service.ListMyReservations(c.Request.Context(), actor, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservations": list})
}

func (h *Handler) GetStatus(c *gin.Context) {
	at, ok := parseTimeQuery(c, "at")
	if !ok {
		return
	}

	snap, err := h.service.GetStatus(c.Request.Context(), c.Param("id"), at)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

func (h *Handler) Dashboard(c *gin.Context) {
	at, ok := parseTimeQuery(c, "at")
	if !ok {
		return
	}

	list, err := h.service.Dashboard(c.Request.Context(), at)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"resources": list})
}

func (h *Handler) GetTimeline(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = h.service.now().In(h.service.opts.Location).Format("2006-01-02")
	}

	tl, err := h.service.DayTimeline(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, tl)
}

func (h *Handler) GetCalendar(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}

	body, err := h.service.CalendarFeed(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

func respondError(c *gin.Context, err error) {
	var (
		verr *ValidationError
		cerr *ConflictError
	)
	switch {
	case errors.As(err, &verr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), gin.H{"field": verr.Field})
	case errors.As(err, &cerr):
		response.ErrorWithDetails(c, http.StatusConflict, "RESERVATION_CONFLICT", "Resource is fully booked for part of the requested time", cerr)
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only the owner or an admin may do this")
	case errors.Is(err, ErrRetryExhausted):
		response.Error(c, http.StatusServiceUnavailable, "RETRY_EXHAUSTED", "The resource is busy, please try again")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func parseWindow(c *gin.Context) (time.Time, time.Time, bool) {
	from, ok := parseTimeQuery(c, "from")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to, ok := parseTimeQuery(c, "to")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func parseTimeQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid time, expected RFC3339", gin.H{"field": name})
		return time.Time{}, false
	}
	return t, true
}
