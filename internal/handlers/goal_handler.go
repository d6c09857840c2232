package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"finplan/internal/models"
	"finplan/internal/repository"
)

// GoalHandler handles financial goal HTTP requests
type GoalHandler struct {
	goals *repository.GoalRepository
}

// NewGoalHandler creates a new goal handler
func NewGoalHandler(goals *repository.GoalRepository) *GoalHandler {
	return &GoalHandler{goals: goals}
}

var goalPriorities = map[string]bool{"low": true, "medium": true, "high": true}
var goalStatuses = map[string]bool{"active": true, "completed": true, "paused": true}

// List handles GET /api/goals
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	goals, err := h.goals.ListGoals(identity.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to list goals", err)
		return
	}
	if goals == nil {
		goals = []models.Goal{}
	}

	respondJSON(w, http.StatusOK, goals)
}

// Create handles POST /api/goals
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	var req struct {
		Title        string  `json:"title"`
		TargetAmount float64 `json:"target_amount"`
		TargetDate   *string `json:"target_date"`
		Description  string  `json:"description"`
		Priority     string  `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		respondError(w, http.StatusBadRequest, "Title is required", "", nil)
		return
	}
	if req.TargetAmount <= 0 {
		respondError(w, http.StatusBadRequest, "Target amount must be positive", "", nil)
		return
	}
	if req.Priority == "" {
		req.Priority = "medium"
	}
	if !goalPriorities[req.Priority] {
		respondError(w, http.StatusBadRequest, "Invalid priority", "", nil)
		return
	}

	goal := &models.Goal{
		UserID:       identity.UserID,
		Title:        strings.TrimSpace(req.Title),
		TargetAmount: req.TargetAmount,
		Description:  strings.TrimSpace(req.Description),
		Priority:     req.Priority,
	}
	if req.TargetDate != nil && *req.TargetDate != "" {
		targetDate, err := parseDate(*req.TargetDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid target date", "", nil)
			return
		}
		goal.TargetDate = &targetDate
	}

	created, err := h.goals.CreateGoal(goal)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to create goal", err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/goals/{id}
func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	goalID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, ErrNotFound, "", nil)
		return
	}

	var req struct {
		Title         *string  `json:"title"`
		TargetAmount  *float64 `json:"target_amount"`
		CurrentAmount *float64 `json:"current_amount"`
		TargetDate    *string  `json:"target_date"`
		Description   *string  `json:"description"`
		Priority      *string  `json:"priority"`
		Status        *string  `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	if req.TargetAmount != nil && *req.TargetAmount <= 0 {
		respondError(w, http.StatusBadRequest, "Target amount must be positive", "", nil)
		return
	}
	if req.CurrentAmount != nil && *req.CurrentAmount < 0 {
		respondError(w, http.StatusBadRequest, "Current amount must not be negative", "", nil)
		return
	}
	if req.Priority != nil && !goalPriorities[*req.Priority] {
		respondError(w, http.StatusBadRequest, "Invalid priority", "", nil)
		return
	}
	if req.Status != nil && !goalStatuses[*req.Status] {
		respondError(w, http.StatusBadRequest, "Invalid status", "", nil)
		return
	}

	update := models.GoalUpdate{
		Title:         req.Title,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Description:   req.Description,
		Priority:      req.Priority,
		Status:        req.Status,
	}
	if req.TargetDate != nil && *req.TargetDate != "" {
		targetDate, err := parseDate(*req.TargetDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid target date", "", nil)
			return
		}
		update.TargetDate = &targetDate
	}

	goal, err := h.goals.UpdateGoal(identity.UserID, goalID, update)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to update goal", err)
		return
	}
	if goal == nil {
		respondError(w, http.StatusNotFound, ErrNotFound, "", nil)
		return
	}

	respondJSON(w, http.StatusOK, goal)
}

// Delete handles DELETE /api/goals/{id}
func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	goalID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, ErrNotFound, "", nil)
		return
	}

	deleted, err := h.goals.DeleteGoal(identity.UserID, goalID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to delete goal", err)
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, ErrNotFound, "", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Goal deleted"})
}
