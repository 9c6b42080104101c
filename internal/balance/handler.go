package balance

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rmarquis/divvyup/internal/money"
	"github.com/rmarquis/divvyup/pkg/middleware"
	"github.com/rmarquis/divvyup/pkg/response"
)

// Handler handles HTTP requests for balance queries.
type Handler struct {
	service *Service
}

// NewHandler creates a new balance handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for balance endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/with/{userId}", h.NetWithUser)
	return r
}

// NetResponse is the exposed form of a net balance.
type NetResponse struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Formatted string  `json:"formatted"`
	Debtor    string  `json:"debtor,omitempty"`
	Creditor  string  `json:"creditor,omitempty"`
}

// NetWithUser handles GET /balances/with/{userId}
// @Summary      Net balance with another user
// @Description  Outstanding amount between the authenticated user and another user, netted across all expenses either of them paid
// @Tags         balances
// @Produce      json
// @Param        userId path string true "Other user ID"
// @Param        currency query string false "Currency code (default USD)"
// @Success      200 {object} response.APIResponse{data=NetResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /balances/with/{userId} [get]
func (h *Handler) NetWithUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	otherID := chi.URLParam(r, "userId")
	currencyCode := r.URL.Query().Get("currency")
	if currencyCode == "" {
		currencyCode = "USD"
	}

	net, err := h.service.NetBetween(r.Context(), userID, otherID, currencyCode)
	if err != nil {
		if errors.Is(err, money.ErrInvalidCurrency) || errors.Is(err, money.ErrCurrencyMismatch) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Something went wrong")
		return
	}

	response.JSON(w, http.StatusOK, &NetResponse{
		Amount:    net.Amount.Amount(),
		Currency:  net.Amount.Currency(),
		Formatted: net.Amount.Format(),
		Debtor:    net.Debtor,
		Creditor:  net.Creditor,
	})
}
