package expense

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/lib/pq"

	"github.com/rmarquis/divvyup/internal/expense/split"
)

// ErrOwedSumInvariant is returned when an expense's participant shares do
// not add up to its total. The strategies guarantee the invariant at
// calculation time; the repository re-checks it before every write as a
// safety net against strategy bugs or tampered payloads.
var ErrOwedSumInvariant = errors.New("participants' owed amounts do not sum to the expense total")

// owedSumTolerance matches the split package's rounding residue allowance,
// scaled per participant for the percentage strategy's independent rounding.
const owedSumTolerance = 0.01

// Repository persists expenses and their participant shares in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func checkOwedSum(e *Expense) error {
	participants := e.Participants()
	var owed float64
	for _, p := range participants {
		if p.OwesAmount < 0 {
			return fmt.Errorf("%w: negative share for %s", ErrOwedSumInvariant, p.UserID)
		}
		owed += p.OwesAmount
	}

	tolerance := owedSumTolerance * float64(max(len(participants), 1))
	if math.Abs(owed-e.Amount()) > tolerance {
		return fmt.Errorf("%w: owed %.4f, total %.2f", ErrOwedSumInvariant, owed, e.Amount())
	}
	return nil
}

// CreateExpense inserts an expense and its participants in one transaction.
func (r *Repository) CreateExpense(ctx context.Context, e *Expense) error {
	if err := checkOwedSum(e); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	snap := e.Snapshot()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO expenses (id, description, amount, currency, paid_by, group_id, split_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10)
	`,
		snap.ID,
		snap.Description,
		snap.Amount,
		snap.Currency,
		snap.PaidBy,
		snap.GroupID,
		snap.SplitType,
		snap.Status,
		snap.CreatedAt,
		snap.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	if err := insertParticipants(ctx, tx, snap); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit expense: %w", err)
	}
	return nil
}

func insertParticipants(ctx context.Context, tx *sql.Tx, snap Snapshot) error {
	for i, p := range snap.Participants {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO expense_participants (expense_id, ordinal, user_id, amount, percentage, paid_amount, owes_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			snap.ID,
			i,
			p.UserID,
			p.Amount,
			p.Percentage,
			p.PaidAmount,
			p.OwesAmount,
		)
		if err != nil {
			return fmt.Errorf("failed to create participant %s: %w", p.UserID, err)
		}
	}
	return nil
}

// GetExpenseByID retrieves an expense with its participants. Returns
// (nil, nil) when no row matches.
func (r *Repository) GetExpenseByID(ctx context.Context, id string) (*Expense, error) {
	var snap Snapshot
	var groupID sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, description, amount, currency, paid_by, group_id, split_type, status, created_at, updated_at
		FROM expenses
		WHERE id = $1
	`, id).Scan(
		&snap.ID,
		&snap.Description,
		&snap.Amount,
		&snap.Currency,
		&snap.PaidBy,
		&groupID,
		&snap.SplitType,
		&snap.Status,
		&snap.CreatedAt,
		&snap.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	snap.GroupID = groupID.String

	byExpense, err := r.participantsByExpense(ctx, []string{snap.ID})
	if err != nil {
		return nil, err
	}
	snap.Participants = byExpense[snap.ID]

	return Reconstruct(snap), nil
}

// ListExpensesByGroup retrieves a page of a group's expenses, newest first,
// plus the total count.
func (r *Repository) ListExpensesByGroup(ctx context.Context, groupID string, limit, offset int) ([]*Expense, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE group_id = $1`, groupID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, amount, currency, paid_by, group_id, split_type, status, created_at, updated_at
		FROM expenses
		WHERE group_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, groupID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses, err := r.scanExpenses(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}

// ListExpensesByPayer retrieves every expense a user paid for.
func (r *Repository) ListExpensesByPayer(ctx context.Context, payerID string) ([]*Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, amount, currency, paid_by, group_id, split_type, status, created_at, updated_at
		FROM expenses
		WHERE paid_by = $1
		ORDER BY created_at DESC
	`, payerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by payer: %w", err)
	}
	defer rows.Close()

	return r.scanExpenses(ctx, rows)
}

func (r *Repository) scanExpenses(ctx context.Context, rows *sql.Rows) ([]*Expense, error) {
	var snaps []Snapshot
	var ids []string
	for rows.Next() {
		var snap Snapshot
		var groupID sql.NullString
		err := rows.Scan(
			&snap.ID,
			&snap.Description,
			&snap.Amount,
			&snap.Currency,
			&snap.PaidBy,
			&groupID,
			&snap.SplitType,
			&snap.Status,
			&snap.CreatedAt,
			&snap.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		snap.GroupID = groupID.String
		snaps = append(snaps, snap)
		ids = append(ids, snap.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	byExpense, err := r.participantsByExpense(ctx, ids)
	if err != nil {
		return nil, err
	}

	expenses := make([]*Expense, len(snaps))
	for i, snap := range snaps {
		snap.Participants = byExpense[snap.ID]
		expenses[i] = Reconstruct(snap)
	}
	return expenses, nil
}

// participantsByExpense fetches participant rows for a batch of expenses in
// one query and groups them by expense id, preserving insertion order.
func (r *Repository) participantsByExpense(ctx context.Context, ids []string) (map[string][]split.Participant, error) {
	if len(ids) == 0 {
		return map[string][]split.Participant{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT expense_id, user_id, amount, percentage, paid_amount, owes_amount
		FROM expense_participants
		WHERE expense_id = ANY($1)
		ORDER BY ordinal
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	byExpense := make(map[string][]split.Participant)
	for rows.Next() {
		var expenseID string
		var p split.Participant
		if err := rows.Scan(&expenseID, &p.UserID, &p.Amount, &p.Percentage, &p.PaidAmount, &p.OwesAmount); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		byExpense[expenseID] = append(byExpense[expenseID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return byExpense, nil
}

// UpdateExpense rewrites an expense and its participants, re-checking the
// owed-sum invariant first.
func (r *Repository) UpdateExpense(ctx context.Context, e *Expense) error {
	if err := checkOwedSum(e); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	snap := e.Snapshot()

	result, err := tx.ExecContext(ctx, `
		UPDATE expenses
		SET description = $2, amount = $3, currency = $4, status = $5, updated_at = $6
		WHERE id = $1
	`,
		snap.ID,
		snap.Description,
		snap.Amount,
		snap.Currency,
		snap.Status,
		snap.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrExpenseNotFound
	}

	// Rewrite the participant rows wholesale; the set is small and fixed at
	// split time, only paid_amount ever changes.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM expense_participants WHERE expense_id = $1`, snap.ID,
	); err != nil {
		return fmt.Errorf("failed to clear participants: %w", err)
	}
	if err := insertParticipants(ctx, tx, snap); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit expense update: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense; participant rows cascade.
func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrExpenseNotFound
	}
	return nil
}
