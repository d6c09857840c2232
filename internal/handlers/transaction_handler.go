package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"finplan/internal/models"
	"finplan/internal/repository"
)

// TransactionHandler handles transaction, tag and statistics HTTP requests
type TransactionHandler struct {
	transactions *repository.TransactionRepository
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactions *repository.TransactionRepository) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

const defaultTagColor = "#3B82F6"

// List handles GET /api/transactions with optional filter params
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	filter, err := parseTransactionFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	transactions, err := h.transactions.ListTransactions(identity.UserID, filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to list transactions", err)
		return
	}

	respondJSON(w, http.StatusOK, newTransactionViews(transactions))
}

// Create handles POST /api/transactions
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	var req struct {
		Type        string  `json:"type"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		Description string  `json:"description"`
		Date        string  `json:"date"`
		TagIDs      []int64 `json:"tag_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	if req.Type != models.TransactionIncome && req.Type != models.TransactionExpense {
		respondError(w, http.StatusBadRequest, "Type must be income or expense", "", nil)
		return
	}
	if req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "Amount must be positive", "", nil)
		return
	}
	if strings.TrimSpace(req.Category) == "" {
		respondError(w, http.StatusBadRequest, "Category is required", "", nil)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date", "", nil)
		return
	}

	txn := &models.Transaction{
		UserID:      identity.UserID,
		Type:        req.Type,
		Amount:      req.Amount,
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		Date:        date,
	}

	created, err := h.transactions.CreateTransaction(txn, req.TagIDs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to create transaction", err)
		return
	}

	respondJSON(w, http.StatusCreated, newTransactionView(*created))
}

// Update handles PUT /api/transactions/{id}
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	transactionID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, ErrNotFound, "", nil)
		return
	}

	var req struct {
		Amount      *float64 `json:"amount"`
		Category    *string  `json:"category"`
		Description *string  `json:"description"`
		Date        *string  `json:"date"`
		TagIDs      []int64  `json:"tag_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	if req.Amount != nil && *req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "Amount must be positive", "", nil)
		return
	}

	update := models.TransactionUpdate{
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		TagIDs:      req.TagIDs,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid date", "", nil)
			return
		}
		update.Date = &date
	}

	txn, err := h.transactions.UpdateTransaction(identity.UserID, transactionID, update)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to update transaction", err)
		return
	}
	if txn == nil {
		respondError(w, http.StatusNotFound, ErrNotFound, "", nil)
		return
	}

	respondJSON(w, http.StatusOK, newTransactionView(*txn))
}

// Delete handles DELETE /api/transactions/{id}
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	transactionID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, ErrNotFound, "", nil)
		return
	}

	deleted, err := h.transactions.DeleteTransaction(identity.UserID, transactionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to delete transaction", err)
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, ErrNotFound, "", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted"})
}

// ListTags handles GET /api/tags
func (h *TransactionHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	tags, err := h.transactions.ListTags(identity.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to list tags", err)
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}

	respondJSON(w, http.StatusOK, tags)
}

// CreateTag handles POST /api/tags
func (h *TransactionHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(w, http.StatusBadRequest, "Name is required", "", nil)
		return
	}
	color := req.Color
	if color == "" {
		color = defaultTagColor
	}

	tag, err := h.transactions.CreateTag(identity.UserID, name, color)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateTag) {
			respondError(w, http.StatusConflict, "Tag already exists", "", nil)
		} else {
			respondError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to create tag", err)
		}
		return
	}

	respondJSON(w, http.StatusCreated, tag)
}

// Statistics handles GET /api/statistics with optional from/to range params
func (h *TransactionHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	var from, to *time.Time
	if v := rangeParam(r.URL.Query(), "from", "date_from"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid from date", "", nil)
			return
		}
		from = &t
	}
	if v := rangeParam(r.URL.Query(), "to", "date_to"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid to date", "", nil)
			return
		}
		to = &t
	}

	stats, err := h.transactions.GetStatistics(identity.UserID, from, to)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to compute statistics", err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

const defaultTransactionLimit = 50

// rangeParam reads a date range bound, accepting both the short and the
// snake_case parameter names.
func rangeParam(query url.Values, short, long string) string {
	if v := query.Get(short); v != "" {
		return v
	}
	return query.Get(long)
}

func parseTransactionFilter(r *http.Request) (models.TransactionFilter, error) {
	filter := models.TransactionFilter{Limit: defaultTransactionLimit}
	query := r.URL.Query()

	filter.Tag = query.Get("tag")
	if t := query.Get("type"); t != "" {
		if t != models.TransactionIncome && t != models.TransactionExpense {
			return filter, errors.New("Type must be income or expense")
		}
		filter.Type = t
	}
	if v := rangeParam(query, "from", "date_from"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return filter, errors.New("Invalid from date")
		}
		filter.DateFrom = &t
	}
	if v := rangeParam(query, "to", "date_to"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return filter, errors.New("Invalid to date")
		}
		filter.DateTo = &t
	}
	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return filter, errors.New("Invalid limit")
		}
		filter.Limit = limit
	}
	if v := query.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, errors.New("Invalid offset")
		}
		filter.Offset = offset
	}

	return filter, nil
}
