package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finplan/internal/models"
	"finplan/internal/repository"
)

// CalendarHandler handles calendar event HTTP requests
type CalendarHandler struct {
	events *repository.EventRepository
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(events *repository.EventRepository) *CalendarHandler {
	return &CalendarHandler{events: events}
}

// eventRequest accepts both the FullCalendar field names (start, end, allDay)
// and the snake_case variants some clients send.
type eventRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Start       string  `json:"start"`
	StartDate   string  `json:"start_date"`
	End         *string `json:"end"`
	EndDate     *string `json:"end_date"`
	AllDay      bool    `json:"allDay"`
	AllDaySnake *bool   `json:"all_day"`
	Color       string  `json:"color"`
}

func (req *eventRequest) normalize() {
	if req.Start == "" {
		req.Start = req.StartDate
	}
	if req.End == nil {
		req.End = req.EndDate
	}
	if req.AllDaySnake != nil {
		req.AllDay = *req.AllDaySnake
	}
}

// List handles GET /api/calendar/events with optional start/end range params
func (h *CalendarHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	var from, to *time.Time
	if v := r.URL.Query().Get("start"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid start date", "", nil)
			return
		}
		from = &t
	}
	if v := r.URL.Query().Get("end"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid end date", "", nil)
			return
		}
		to = &t
	}

	events, err := h.events.ListEvents(identity.UserID, from, to)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to list events", err)
		return
	}

	respondJSON(w, http.StatusOK, newCalendarEventViews(events))
}

// Create handles POST /api/calendar/events
func (h *CalendarHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}
	req.normalize()

	if strings.TrimSpace(req.Title) == "" {
		respondError(w, http.StatusBadRequest, "Title is required", "", nil)
		return
	}
	start, err := parseDate(req.Start)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid start date", "", nil)
		return
	}

	event := &models.CalendarEvent{
		UserID:      identity.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		StartDate:   start,
		AllDay:      req.AllDay,
		Color:       req.Color,
	}
	if req.End != nil && *req.End != "" {
		end, err := parseDate(*req.End)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid end date", "", nil)
			return
		}
		if end.Before(start) {
			respondError(w, http.StatusBadRequest, "End date must not precede start date", "", nil)
			return
		}
		event.EndDate = &end
	}

	created, err := h.events.CreateEvent(event)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to create event", err)
		return
	}

	respondJSON(w, http.StatusCreated, newCalendarEventView(*created))
}

// Update handles PUT /api/calendar/events/{id}
func (h *CalendarHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	eventID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, ErrNotFound, "", nil)
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Start       *string `json:"start"`
		StartDate   *string `json:"start_date"`
		End         *string `json:"end"`
		EndDate     *string `json:"end_date"`
		AllDay      *bool   `json:"allDay"`
		AllDaySnake *bool   `json:"all_day"`
		Color       *string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}
	if req.Start == nil {
		req.Start = req.StartDate
	}
	if req.End == nil {
		req.End = req.EndDate
	}
	if req.AllDay == nil {
		req.AllDay = req.AllDaySnake
	}

	update := models.CalendarEventUpdate{
		Title:       req.Title,
		Description: req.Description,
		AllDay:      req.AllDay,
		Color:       req.Color,
	}
	if req.Start != nil {
		start, err := parseDate(*req.Start)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid start date", "", nil)
			return
		}
		update.StartDate = &start
	}
	if req.End != nil {
		end, err := parseDate(*req.End)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid end date", "", nil)
			return
		}
		update.EndDate = &end
	}

	event, err := h.events.UpdateEvent(identity.UserID, eventID, update)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to update event", err)
		return
	}
	if event == nil {
		respondError(w, http.StatusNotFound, ErrNotFound, "", nil)
		return
	}

	respondJSON(w, http.StatusOK, newCalendarEventView(*event))
}

// Delete handles DELETE /api/calendar/events/{id}
func (h *CalendarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	eventID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, ErrNotFound, "", nil)
		return
	}

	deleted, err := h.events.DeleteEvent(identity.UserID, eventID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to delete event", err)
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, ErrNotFound, "", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"message": "Event deleted", "id": eventID})
}

// pathID parses the {id} path segment
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// parseDate accepts RFC 3339 timestamps and bare dates
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
