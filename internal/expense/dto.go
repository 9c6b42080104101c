package expense

import (
	"time"

	"github.com/rmarquis/divvyup/internal/expense/split"
)

// ParticipantInput is one participant in an expense-creation request.
type ParticipantInput struct {
	UserID     string   `json:"user_id" validate:"required"`
	Amount     *float64 `json:"amount,omitempty" validate:"omitempty,gte=0"`
	Percentage *float64 `json:"percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// ToInput converts to the split package's input type.
func (p *ParticipantInput) ToInput() split.Input {
	return split.Input{
		UserID:     p.UserID,
		Amount:     p.Amount,
		Percentage: p.Percentage,
	}
}

// CreateExpenseRequest represents the request to create an expense.
type CreateExpenseRequest struct {
	Description  string              `json:"description" validate:"required,min=1,max=255"`
	Amount       float64             `json:"amount" validate:"required,gt=0"`
	Currency     string              `json:"currency" validate:"required,len=3"`
	GroupID      string              `json:"group_id,omitempty"`
	SplitType    string              `json:"split_type" validate:"required"`
	Participants []*ParticipantInput `json:"participants" validate:"required,min=1,dive"`
}

// UpdateDescriptionRequest represents the request to update a description.
type UpdateDescriptionRequest struct {
	Description string `json:"description" validate:"required,min=1,max=255"`
}

// RecordPaymentRequest represents the request to record a participant's
// running paid total.
type RecordPaymentRequest struct {
	UserID     string  `json:"user_id" validate:"required"`
	PaidAmount float64 `json:"paid_amount" validate:"gte=0"`
}

// OverrideStatusRequest represents an administrative status correction.
type OverrideStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING PARTIALLY_SETTLED SETTLED"`
}

// ParticipantResponse is the exposed form of an allocated share.
type ParticipantResponse struct {
	UserID     string   `json:"user_id"`
	Amount     *float64 `json:"amount,omitempty"`
	Percentage *float64 `json:"percentage,omitempty"`
	PaidAmount float64  `json:"paid_amount"`
	OwesAmount float64  `json:"owes_amount"`
}

// ExpenseResponse is the exposed form of an expense.
type ExpenseResponse struct {
	ID           string                 `json:"id"`
	Description  string                 `json:"description"`
	Amount       float64                `json:"amount"`
	Currency     string                 `json:"currency"`
	PaidBy       string                 `json:"paid_by"`
	GroupID      string                 `json:"group_id,omitempty"`
	SplitType    string                 `json:"split_type"`
	Status       string                 `json:"status"`
	Participants []*ParticipantResponse `json:"participants"`
	CreatedAt    string                 `json:"created_at"`
	UpdatedAt    string                 `json:"updated_at"`
}

// ToResponse converts an Expense aggregate to its response DTO.
func ToResponse(e *Expense) *ExpenseResponse {
	participants := e.Participants()
	out := make([]*ParticipantResponse, len(participants))
	for i, p := range participants {
		out[i] = &ParticipantResponse{
			UserID:     p.UserID,
			Amount:     p.Amount,
			Percentage: p.Percentage,
			PaidAmount: p.PaidAmount,
			OwesAmount: p.OwesAmount,
		}
	}

	return &ExpenseResponse{
		ID:           e.ID(),
		Description:  e.Description(),
		Amount:       e.Amount(),
		Currency:     e.Currency(),
		PaidBy:       e.PaidBy(),
		GroupID:      e.GroupID(),
		SplitType:    string(e.SplitType()),
		Status:       string(e.Status()),
		Participants: out,
		CreatedAt:    e.CreatedAt().Format(time.RFC3339),
		UpdatedAt:    e.UpdatedAt().Format(time.RFC3339),
	}
}
