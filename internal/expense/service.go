package expense

import (
	"context"
	"errors"
	"fmt"

	"github.com/rmarquis/divvyup/internal/expense/split"
	"github.com/rmarquis/divvyup/internal/money"
)

// Common errors
var (
	ErrExpenseNotFound     = errors.New("expense not found")
	ErrNotPayer            = errors.New("only the payer can perform this action")
	ErrCannotDeleteExpense = errors.New("cannot delete an expense with recorded payments")
	ErrInvalidStatus       = errors.New("invalid expense status")
)

// Store is the persistence boundary the service depends on.
type Store interface {
	CreateExpense(ctx context.Context, e *Expense) error
	GetExpenseByID(ctx context.Context, id string) (*Expense, error)
	ListExpensesByGroup(ctx context.Context, groupID string, limit, offset int) ([]*Expense, int, error)
	UpdateExpense(ctx context.Context, e *Expense) error
	DeleteExpense(ctx context.Context, id string) error
}

// Service handles expense business logic.
type Service struct {
	store        Store
	splitFactory *split.Factory
}

// NewService creates a new expense service with dependencies injected.
func NewService(store Store, splitFactory *split.Factory) *Service {
	return &Service{
		store:        store,
		splitFactory: splitFactory,
	}
}

// CreateExpense validates the monetary inputs, calculates participant shares
// with the requested strategy, and persists the resulting aggregate.
func (s *Service) CreateExpense(ctx context.Context, payerID string, req *CreateExpenseRequest) (*Expense, error) {
	// Money construction validates amount and currency in one place.
	total, err := money.New(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}

	strategy, err := s.splitFactory.CreateFromString(req.SplitType)
	if err != nil {
		return nil, err
	}

	inputs := make([]split.Input, len(req.Participants))
	for i, p := range req.Participants {
		inputs[i] = p.ToInput()
	}

	participants, err := strategy.CalculateSplits(total.Amount(), inputs)
	if err != nil {
		return nil, err
	}

	e := NewExpense(NewExpenseParams{
		Description:  req.Description,
		Amount:       total.Amount(),
		Currency:     total.Currency(),
		PaidBy:       payerID,
		GroupID:      req.GroupID,
		SplitType:    strategy.Type(),
		Participants: participants,
	})

	if err := s.store.CreateExpense(ctx, e); err != nil {
		return nil, fmt.Errorf("persisting expense: %w", err)
	}
	return e, nil
}

// GetExpense retrieves a single expense by id.
func (s *Service) GetExpense(ctx context.Context, id string) (*Expense, error) {
	e, err := s.store.GetExpenseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}
	return e, nil
}

// NormalizePagination clamps raw paging inputs to the effective values the
// listing queries run with, so callers building pagination metadata share
// one definition.
func NormalizePagination(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}

// ListExpensesByGroup retrieves a page of a group's expenses plus the total
// count.
func (s *Service) ListExpensesByGroup(ctx context.Context, groupID string, page, perPage int) ([]*Expense, int, error) {
	page, perPage = NormalizePagination(page, perPage)

	offset := (page - 1) * perPage
	return s.store.ListExpensesByGroup(ctx, groupID, perPage, offset)
}

// UpdateDescription replaces an expense's description.
func (s *Service) UpdateDescription(ctx context.Context, id, description string) (*Expense, error) {
	e, err := s.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}

	e.UpdateDescription(description)

	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// RecordPayment sets a participant's running paid total and persists the
// recomputed status. The paid amount is validated as money in the expense's
// currency. Unknown participant ids leave the expense untouched.
func (s *Service) RecordPayment(ctx context.Context, id, userID string, paidAmount float64) (*Expense, error) {
	e, err := s.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := money.New(paidAmount, e.Currency()); err != nil {
		return nil, err
	}

	e.UpdateParticipantPayment(userID, paidAmount)

	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// OverrideStatus applies an administrative status correction, bypassing the
// payment-driven recompute.
func (s *Service) OverrideStatus(ctx context.Context, id string, status Status) (*Expense, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	e, err := s.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}

	e.OverrideStatus(status)

	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteExpense removes an expense. Only the payer may delete, and only
// while no payments have been recorded.
func (s *Service) DeleteExpense(ctx context.Context, id, userID string) error {
	e, err := s.GetExpense(ctx, id)
	if err != nil {
		return err
	}

	if e.PaidBy() != userID {
		return ErrNotPayer
	}
	if e.HasPayments() {
		return ErrCannotDeleteExpense
	}

	return s.store.DeleteExpense(ctx, id)
}

// SupportedSplitTypes exposes the registered strategy tags for caller
// validation.
func (s *Service) SupportedSplitTypes() []split.SplitType {
	return s.splitFactory.SupportedTypes()
}
