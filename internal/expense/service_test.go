package expense

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarquis/divvyup/internal/expense/split"
	"github.com/rmarquis/divvyup/internal/money"
)

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	expenses map[string]Snapshot
}

func newFakeStore() *fakeStore {
	return &fakeStore{expenses: make(map[string]Snapshot)}
}

func (f *fakeStore) CreateExpense(_ context.Context, e *Expense) error {
	f.expenses[e.ID()] = e.Snapshot()
	return nil
}

func (f *fakeStore) GetExpenseByID(_ context.Context, id string) (*Expense, error) {
	snap, ok := f.expenses[id]
	if !ok {
		return nil, nil
	}
	return Reconstruct(snap), nil
}

func (f *fakeStore) ListExpensesByGroup(_ context.Context, groupID string, limit, offset int) ([]*Expense, int, error) {
	var out []*Expense
	for _, snap := range f.expenses {
		if snap.GroupID == groupID {
			out = append(out, Reconstruct(snap))
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) UpdateExpense(_ context.Context, e *Expense) error {
	if _, ok := f.expenses[e.ID()]; !ok {
		return ErrExpenseNotFound
	}
	f.expenses[e.ID()] = e.Snapshot()
	return nil
}

func (f *fakeStore) DeleteExpense(_ context.Context, id string) error {
	if _, ok := f.expenses[id]; !ok {
		return ErrExpenseNotFound
	}
	delete(f.expenses, id)
	return nil
}

func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	return NewService(store, split.NewFactory()), store
}

func TestService_CreateExpense_Equal(t *testing.T) {
	svc, store := newTestService()

	e, err := svc.CreateExpense(context.Background(), "payer", &CreateExpenseRequest{
		Description:  "groceries",
		Amount:       90,
		Currency:     "usd",
		GroupID:      "g1",
		SplitType:    "EQUAL",
		Participants: []*ParticipantInput{{UserID: "a"}, {UserID: "b"}, {UserID: "c"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "payer", e.PaidBy())
	assert.Equal(t, "USD", e.Currency(), "currency is normalized through Money")
	assert.Equal(t, split.SplitTypeEqual, e.SplitType())
	assert.Equal(t, StatusPending, e.Status())

	participants := e.Participants()
	require.Len(t, participants, 3)
	for _, p := range participants {
		assert.Equal(t, 30.0, p.OwesAmount)
	}

	_, ok := store.expenses[e.ID()]
	assert.True(t, ok, "expense should be persisted")
}

func TestService_CreateExpense_Exact(t *testing.T) {
	svc, _ := newTestService()

	amount30, amount70 := 30.0, 70.0
	e, err := svc.CreateExpense(context.Background(), "payer", &CreateExpenseRequest{
		Description: "rent",
		Amount:      100,
		Currency:    "USD",
		SplitType:   "EXACT",
		Participants: []*ParticipantInput{
			{UserID: "a", Amount: &amount30},
			{UserID: "b", Amount: &amount70},
		},
	})
	require.NoError(t, err)

	participants := e.Participants()
	assert.Equal(t, 30.0, participants[0].OwesAmount)
	assert.Equal(t, 70.0, participants[1].OwesAmount)
}

func TestService_CreateExpense_Errors(t *testing.T) {
	svc, _ := newTestService()
	amount := 30.0

	tests := []struct {
		name    string
		req     *CreateExpenseRequest
		wantErr error
	}{
		{
			name: "unknown split type",
			req: &CreateExpenseRequest{
				Amount: 100, Currency: "USD", SplitType: "SHARES",
				Participants: []*ParticipantInput{{UserID: "a"}},
			},
			wantErr: split.ErrUnsupportedSplitType,
		},
		{
			name: "invalid currency",
			req: &CreateExpenseRequest{
				Amount: 100, Currency: "DOLLARS", SplitType: "EQUAL",
				Participants: []*ParticipantInput{{UserID: "a"}},
			},
			wantErr: money.ErrInvalidCurrency,
		},
		{
			name: "negative amount",
			req: &CreateExpenseRequest{
				Amount: -5, Currency: "USD", SplitType: "EQUAL",
				Participants: []*ParticipantInput{{UserID: "a"}},
			},
			wantErr: money.ErrInvalidAmount,
		},
		{
			name: "exact amounts off",
			req: &CreateExpenseRequest{
				Amount: 100, Currency: "USD", SplitType: "EXACT",
				Participants: []*ParticipantInput{{UserID: "a", Amount: &amount}},
			},
			wantErr: split.ErrAmountSumMismatch,
		},
		{
			name: "equal with no participants",
			req: &CreateExpenseRequest{
				Amount: 100, Currency: "USD", SplitType: "EQUAL",
			},
			wantErr: split.ErrNoParticipants,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateExpense(context.Background(), "payer", tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_GetExpense_NotFound(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.GetExpense(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrExpenseNotFound)
}

func TestService_RecordPayment(t *testing.T) {
	svc, store := newTestService()

	e, err := svc.CreateExpense(context.Background(), "payer", &CreateExpenseRequest{
		Description:  "hotel",
		Amount:       100,
		Currency:     "USD",
		SplitType:    "EQUAL",
		Participants: []*ParticipantInput{{UserID: "a"}, {UserID: "b"}},
	})
	require.NoError(t, err)

	updated, err := svc.RecordPayment(context.Background(), e.ID(), "a", 50)
	require.NoError(t, err)
	assert.Equal(t, StatusPartiallySettled, updated.Status())

	updated, err = svc.RecordPayment(context.Background(), e.ID(), "b", 50)
	require.NoError(t, err)
	assert.Equal(t, StatusSettled, updated.Status())

	// the new status is what got persisted
	assert.Equal(t, StatusSettled, store.expenses[e.ID()].Status)
}

func TestService_RecordPayment_RejectsNegative(t *testing.T) {
	svc, _ := newTestService()

	e, err := svc.CreateExpense(context.Background(), "payer", &CreateExpenseRequest{
		Amount: 100, Currency: "USD", SplitType: "EQUAL",
		Participants: []*ParticipantInput{{UserID: "a"}},
	})
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), e.ID(), "a", -1)
	assert.ErrorIs(t, err, money.ErrInvalidAmount)
}

func TestService_OverrideStatus(t *testing.T) {
	svc, _ := newTestService()

	e, err := svc.CreateExpense(context.Background(), "payer", &CreateExpenseRequest{
		Amount: 100, Currency: "USD", SplitType: "EQUAL",
		Participants: []*ParticipantInput{{UserID: "a"}},
	})
	require.NoError(t, err)

	updated, err := svc.OverrideStatus(context.Background(), e.ID(), StatusSettled)
	require.NoError(t, err)
	assert.Equal(t, StatusSettled, updated.Status())

	_, err = svc.OverrideStatus(context.Background(), e.ID(), Status("PAID"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestService_DeleteExpense(t *testing.T) {
	svc, store := newTestService()

	e, err := svc.CreateExpense(context.Background(), "payer", &CreateExpenseRequest{
		Amount: 100, Currency: "USD", SplitType: "EQUAL",
		Participants: []*ParticipantInput{{UserID: "a"}, {UserID: "b"}},
	})
	require.NoError(t, err)

	// not the payer
	err = svc.DeleteExpense(context.Background(), e.ID(), "a")
	assert.ErrorIs(t, err, ErrNotPayer)

	// payments block deletion
	_, err = svc.RecordPayment(context.Background(), e.ID(), "a", 10)
	require.NoError(t, err)
	err = svc.DeleteExpense(context.Background(), e.ID(), "payer")
	assert.ErrorIs(t, err, ErrCannotDeleteExpense)

	// clearing the payment unblocks it
	_, err = svc.RecordPayment(context.Background(), e.ID(), "a", 0)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteExpense(context.Background(), e.ID(), "payer"))

	_, ok := store.expenses[e.ID()]
	assert.False(t, ok)
}

func TestNormalizePagination(t *testing.T) {
	tests := []struct {
		name        string
		page        int
		perPage     int
		wantPage    int
		wantPerPage int
	}{
		{"valid values pass through", 3, 50, 3, 50},
		{"zero page clamps to first", 0, 50, 1, 50},
		{"negative page clamps to first", -2, 50, 1, 50},
		{"zero per-page gets the default", 1, 0, 1, 20},
		{"oversized per-page gets the default", 1, 500, 1, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, perPage := NormalizePagination(tt.page, tt.perPage)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPerPage, perPage)
		})
	}
}

func TestService_SupportedSplitTypes(t *testing.T) {
	svc, _ := newTestService()
	assert.Equal(t,
		[]split.SplitType{split.SplitTypeEqual, split.SplitTypeExact, split.SplitTypePercentage},
		svc.SupportedSplitTypes(),
	)
}
