package balance

import (
	"context"

	"github.com/rmarquis/divvyup/internal/expense"
)

// ExpenseSource supplies the expenses a balance is derived from.
type ExpenseSource interface {
	ListExpensesByPayer(ctx context.Context, payerID string) ([]*expense.Expense, error)
}

// Service resolves net balances between users from persisted expenses.
type Service struct {
	source ExpenseSource
}

// NewService creates a balance service backed by the given expense source.
func NewService(source ExpenseSource) *Service {
	return &Service{source: source}
}

// NetBetween loads both users' paid expenses and nets their mutual debts in
// the requested currency.
func (s *Service) NetBetween(ctx context.Context, a, b, currencyCode string) (Net, error) {
	paidByA, err := s.source.ListExpensesByPayer(ctx, a)
	if err != nil {
		return Net{}, err
	}
	paidByB, err := s.source.ListExpensesByPayer(ctx, b)
	if err != nil {
		return Net{}, err
	}

	return NetBetween(append(paidByA, paidByB...), a, b, currencyCode)
}
