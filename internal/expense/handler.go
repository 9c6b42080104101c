package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rmarquis/divvyup/internal/expense/split"
	"github.com/rmarquis/divvyup/internal/money"
	"github.com/rmarquis/divvyup/pkg/middleware"
	"github.com/rmarquis/divvyup/pkg/response"
)

// Handler handles HTTP requests for expense operations.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// NewHandler creates a new expense handler. The validator is injected so all
// handlers share one instance of its compiled struct caches.
func NewHandler(service *Service, validate *validator.Validate) *Handler {
	return &Handler{service: service, validate: validate}
}

// Routes returns the router for expense endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/split-types", h.ListSplitTypes)
	r.Get("/{id}", h.GetByID)
	r.Delete("/{id}", h.Delete)
	r.Patch("/{id}/description", h.UpdateDescription)
	r.Patch("/{id}/status", h.OverrideStatus)
	r.Post("/{id}/payments", h.RecordPayment)

	// Group-based listing
	r.Get("/group/{groupId}", h.ListByGroup)

	return r
}

// Create handles POST /expenses
// @Summary      Create a new expense
// @Description  Create an expense with automatic share calculation using the EQUAL, EXACT, or PERCENTAGE strategy
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body CreateExpenseRequest true "Expense creation request"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	payerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.service.CreateExpense(r.Context(), payerID, &req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, ToResponse(result))
}

// GetByID handles GET /expenses/{id}
// @Summary      Get an expense
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetExpense(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, ToResponse(result))
}

// ListByGroup handles GET /expenses/group/{groupId}
// @Summary      List a group's expenses
// @Tags         expenses
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        page query int false "Page number"
// @Param        per_page query int false "Page size"
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Router       /expenses/group/{groupId} [get]
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	page, perPage = NormalizePagination(page, perPage)

	expenses, total, err := h.service.ListExpensesByGroup(r.Context(), groupID, page, perPage)
	if err != nil {
		h.respondError(w, err)
		return
	}

	out := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = ToResponse(e)
	}

	response.JSONWithMeta(w, http.StatusOK, out, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	})
}

// UpdateDescription handles PATCH /expenses/{id}/description
// @Summary      Update an expense's description
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path string true "Expense ID"
// @Param        request body UpdateDescriptionRequest true "New description"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id}/description [patch]
func (h *Handler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	var req UpdateDescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.service.UpdateDescription(r.Context(), chi.URLParam(r, "id"), req.Description)
	if err != nil {
		h.respondError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, ToResponse(result))
}

// RecordPayment handles POST /expenses/{id}/payments
// @Summary      Record a participant payment
// @Description  Set a participant's running paid total; the settlement status is recomputed
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path string true "Expense ID"
// @Param        request body RecordPaymentRequest true "Payment"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id}/payments [post]
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.service.RecordPayment(r.Context(), chi.URLParam(r, "id"), req.UserID, req.PaidAmount)
	if err != nil {
		h.respondError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, ToResponse(result))
}

// OverrideStatus handles PATCH /expenses/{id}/status
// @Summary      Override an expense's status
// @Description  Administrative correction bypassing the payment-driven recompute
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path string true "Expense ID"
// @Param        request body OverrideStatusRequest true "New status"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id}/status [patch]
func (h *Handler) OverrideStatus(w http.ResponseWriter, r *http.Request) {
	var req OverrideStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.service.OverrideStatus(r.Context(), chi.URLParam(r, "id"), Status(req.Status))
	if err != nil {
		h.respondError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, ToResponse(result))
}

// Delete handles DELETE /expenses/{id}
// @Summary      Delete an expense
// @Description  Only the payer can delete, and only while no payments are recorded
// @Tags         expenses
// @Param        id path string true "Expense ID"
// @Success      204
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.service.DeleteExpense(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		h.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListSplitTypes handles GET /expenses/split-types
// @Summary      List supported split types
// @Tags         expenses
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]string}
// @Router       /expenses/split-types [get]
func (h *Handler) ListSplitTypes(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.service.SupportedSplitTypes())
}

// respondError maps service and domain errors onto HTTP responses.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrExpenseNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotPayer):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrCannotDeleteExpense), errors.Is(err, ErrOwedSumInvariant):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrInvalidStatus),
		errors.Is(err, split.ErrUnsupportedSplitType),
		errors.Is(err, split.ErrNoParticipants),
		errors.Is(err, split.ErrAmountSumMismatch),
		errors.Is(err, split.ErrPercentageSumMismatch),
		errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, money.ErrInvalidCurrency):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, "Something went wrong")
	}
}
