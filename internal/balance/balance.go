// Package balance derives settlement positions from expenses. It is a pure
// computation layer: callers load the relevant expenses and the functions
// here fold them into Money totals.
package balance

import (
	"github.com/rmarquis/divvyup/internal/expense"
	"github.com/rmarquis/divvyup/internal/money"
)

// Net is the outstanding balance between two users in one currency. When the
// pair is square, Amount is zero and Debtor/Creditor are empty.
type Net struct {
	Amount   money.Money `json:"amount"`
	Debtor   string      `json:"debtor,omitempty"`
	Creditor string      `json:"creditor,omitempty"`
}

// OwedTo sums what debtor still owes creditor across the given expenses:
// for every expense the creditor paid, the debtor's share minus what they
// have already paid toward it. Expenses in other currencies than
// currencyCode make the fold fail with ErrCurrencyMismatch.
func OwedTo(expenses []*expense.Expense, debtor, creditor, currencyCode string) (money.Money, error) {
	total, err := money.New(0, currencyCode)
	if err != nil {
		return money.Money{}, err
	}

	for _, e := range expenses {
		if e.PaidBy() != creditor {
			continue
		}
		for _, p := range e.Participants() {
			if p.UserID != debtor {
				continue
			}
			outstanding := p.Outstanding()
			if outstanding == 0 {
				continue
			}
			share, err := money.New(outstanding, e.Currency())
			if err != nil {
				return money.Money{}, err
			}
			total, err = total.Add(share)
			if err != nil {
				return money.Money{}, err
			}
		}
	}
	return total, nil
}

// NetBetween nets the two debt directions between users a and b.
func NetBetween(expenses []*expense.Expense, a, b, currencyCode string) (Net, error) {
	aOwes, err := OwedTo(expenses, a, b, currencyCode)
	if err != nil {
		return Net{}, err
	}
	bOwes, err := OwedTo(expenses, b, a, currencyCode)
	if err != nil {
		return Net{}, err
	}

	aIsDebtor, err := aOwes.GreaterThan(bOwes)
	if err != nil {
		return Net{}, err
	}

	if aIsDebtor {
		amount, err := aOwes.Subtract(bOwes)
		if err != nil {
			return Net{}, err
		}
		return Net{Amount: amount, Debtor: a, Creditor: b}, nil
	}

	amount, err := bOwes.Subtract(aOwes)
	if err != nil {
		return Net{}, err
	}
	if amount.Amount() == 0 {
		return Net{Amount: amount}, nil
	}
	return Net{Amount: amount, Debtor: b, Creditor: a}, nil
}
