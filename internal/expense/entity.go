package expense

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/rmarquis/divvyup/internal/expense/split"
)

// Status summarizes whether participants have paid their owed shares. It is
// always derived from the participants' paid amounts; the only way to set it
// independently is the explicit OverrideStatus escape hatch.
type Status string

const (
	StatusPending          Status = "PENDING"
	StatusPartiallySettled Status = "PARTIALLY_SETTLED"
	StatusSettled          Status = "SETTLED"
)

// IsValid checks if the status is one of the known tags.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPartiallySettled, StatusSettled:
		return true
	default:
		return false
	}
}

// Expense is the aggregate owning a set of participant allocations. Mutation
// goes through its methods so the derived status and updatedAt stay
// consistent; it holds only weak references to users and groups.
type Expense struct {
	id           string
	description  string
	amount       float64
	currency     string
	paidBy       string
	groupID      string
	splitType    split.SplitType
	status       Status
	participants []split.Participant
	createdAt    time.Time
	updatedAt    time.Time
}

// NewExpenseParams carries the construction inputs for an Expense. ID,
// CreatedAt and UpdatedAt are optional; zero values are filled in.
type NewExpenseParams struct {
	ID           string
	Description  string
	Amount       float64
	Currency     string
	PaidBy       string
	GroupID      string
	SplitType    split.SplitType
	Participants []split.Participant
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewExpense builds an aggregate from already-calculated participant shares.
// The initial status is computed from the participants' paid amounts, which
// are normally all zero.
func NewExpense(params NewExpenseParams) *Expense {
	id := params.ID
	if id == "" {
		id = uuid.NewString()
	}

	now := time.Now().UTC()
	createdAt := params.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := params.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}

	e := &Expense{
		id:           id,
		description:  params.Description,
		amount:       params.Amount,
		currency:     params.Currency,
		paidBy:       params.PaidBy,
		groupID:      params.GroupID,
		splitType:    params.SplitType,
		participants: append([]split.Participant(nil), params.Participants...),
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
	e.status = e.computeStatus()
	return e
}

// Reconstruct rehydrates an Expense from a stored snapshot. The stored
// status is trusted as-is; use NewExpense for fresh aggregates.
func Reconstruct(snap Snapshot) *Expense {
	return &Expense{
		id:           snap.ID,
		description:  snap.Description,
		amount:       snap.Amount,
		currency:     snap.Currency,
		paidBy:       snap.PaidBy,
		groupID:      snap.GroupID,
		splitType:    snap.SplitType,
		status:       snap.Status,
		participants: append([]split.Participant(nil), snap.Participants...),
		createdAt:    snap.CreatedAt,
		updatedAt:    snap.UpdatedAt,
	}
}

func (e *Expense) ID() string                 { return e.id }
func (e *Expense) Description() string        { return e.description }
func (e *Expense) Amount() float64            { return e.amount }
func (e *Expense) Currency() string           { return e.currency }
func (e *Expense) PaidBy() string             { return e.paidBy }
func (e *Expense) GroupID() string            { return e.groupID }
func (e *Expense) SplitType() split.SplitType { return e.splitType }
func (e *Expense) Status() Status             { return e.status }
func (e *Expense) CreatedAt() time.Time       { return e.createdAt }
func (e *Expense) UpdatedAt() time.Time       { return e.updatedAt }

// Participants returns a copy of the allocation list; mutation goes through
// UpdateParticipantPayment only.
func (e *Expense) Participants() []split.Participant {
	return append([]split.Participant(nil), e.participants...)
}

// UpdateDescription replaces the description text.
func (e *Expense) UpdateDescription(description string) {
	e.description = description
	e.touch()
}

// OverrideStatus sets the status directly, bypassing recomputation. Meant
// for administrative correction, not the normal payment path.
func (e *Expense) OverrideStatus(status Status) {
	e.status = status
	e.touch()
}

// UpdateParticipantPayment sets a participant's running paid total and
// recomputes the settlement status. An unknown userID is silently ignored.
func (e *Expense) UpdateParticipantPayment(userID string, paidAmount float64) {
	for i := range e.participants {
		if e.participants[i].UserID == userID {
			e.participants[i].PaidAmount = paidAmount
			e.status = e.computeStatus()
			e.touch()
			return
		}
	}
}

// HasPayments reports whether any participant has recorded a payment.
func (e *Expense) HasPayments() bool {
	for _, p := range e.participants {
		if p.PaidAmount > 0 {
			return true
		}
	}
	return false
}

func (e *Expense) computeStatus() Status {
	var totalPaid, totalOwed float64
	for _, p := range e.participants {
		totalPaid += p.PaidAmount
		totalOwed += p.OwesAmount
	}

	switch {
	case totalPaid == 0:
		return StatusPending
	case totalPaid >= totalOwed:
		return StatusSettled
	default:
		return StatusPartiallySettled
	}
}

func (e *Expense) touch() {
	e.updatedAt = time.Now().UTC()
}

// Snapshot is the full serialized state of an Expense, including the
// derived status.
type Snapshot struct {
	ID           string              `json:"id"`
	Description  string              `json:"description"`
	Amount       float64             `json:"amount"`
	Currency     string              `json:"currency"`
	PaidBy       string              `json:"paid_by"`
	GroupID      string              `json:"group_id,omitempty"`
	SplitType    split.SplitType     `json:"split_type"`
	Status       Status              `json:"status"`
	Participants []split.Participant `json:"participants"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Snapshot exposes the aggregate's state for serialization and persistence.
func (e *Expense) Snapshot() Snapshot {
	return Snapshot{
		ID:           e.id,
		Description:  e.description,
		Amount:       e.amount,
		Currency:     e.currency,
		PaidBy:       e.paidBy,
		GroupID:      e.groupID,
		SplitType:    e.splitType,
		Status:       e.status,
		Participants: e.Participants(),
		CreatedAt:    e.createdAt,
		UpdatedAt:    e.updatedAt,
	}
}

// MarshalJSON serializes the snapshot form.
func (e *Expense) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Snapshot())
}
