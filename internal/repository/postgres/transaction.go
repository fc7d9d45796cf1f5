package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type transactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, owner_id, car_id, contract_id, ticket_id, payment_id, payment_intent,
		payment_type, amount, vat, is_completed, title, description, category, employee_name,
		period_from, period_to, serial_number, created_at, updated_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	trx := &domain.Transaction{}
	var periodFrom, periodTo string

	err := row.Scan(
		&trx.ID,
		&trx.OwnerID,
		&trx.CarID,
		&trx.ContractID,
		&trx.TicketID,
		&trx.PaymentID,
		&trx.PaymentIntent,
		&trx.Type,
		&trx.Amount,
		&trx.VAT,
		&trx.IsCompleted,
		&trx.Title,
		&trx.Description,
		&trx.Category,
		&trx.EmployeeName,
		&periodFrom,
		&periodTo,
		&trx.SerialNumber,
		&trx.CreatedAt,
		&trx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if periodFrom != "" || periodTo != "" {
		trx.Period = &domain.SalaryPeriod{From: periodFrom, To: periodTo}
	}

	return trx, nil
}

func insertTransaction(ctx context.Context, db executor, trx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20)
	`

	if trx.ID == uuid.Nil {
		trx.ID = uuid.New()
	}
	trx.CreatedAt = time.Now()
	trx.UpdatedAt = time.Now()

	var periodFrom, periodTo string
	if trx.Period != nil {
		periodFrom = trx.Period.From
		periodTo = trx.Period.To
	}

	_, err := db.Exec(ctx, query,
		trx.ID,
		trx.OwnerID,
		trx.CarID,
		trx.ContractID,
		trx.TicketID,
		trx.PaymentID,
		trx.PaymentIntent,
		trx.Type,
		trx.Amount,
		trx.VAT,
		trx.IsCompleted,
		trx.Title,
		trx.Description,
		trx.Category,
		trx.EmployeeName,
		periodFrom,
		periodTo,
		trx.SerialNumber,
		trx.CreatedAt,
		trx.UpdatedAt,
	)

	return err
}

func (r *transactionRepository) Create(ctx context.Context, trx *domain.Transaction) error {
	return insertTransaction(ctx, r.db, trx)
}

func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	trx, err := scanTransaction(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}

	return trx, nil
}

func (r *transactionRepository) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE payment_id = $1`

	trx, err := scanTransaction(r.db.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}

	return trx, nil
}

func (r *transactionRepository) ListByContract(ctx context.Context, contractID uuid.UUID, onlyCompleted bool) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE contract_id = $1 AND ($2 = FALSE OR is_completed)
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, contractID, onlyCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		trx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, trx)
	}

	return transactions, rows.Err()
}

func paymentTypeStrings(types []domain.PaymentType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func (r *transactionRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, filter repository.TransactionFilter) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE owner_id = $1`
	args := []any{ownerID}

	if len(filter.Types) > 0 {
		args = append(args, paymentTypeStrings(filter.Types))
		query += fmt.Sprintf(" AND payment_type = ANY($%d)", len(args))
	}
	if len(filter.ExcludeTypes) > 0 {
		args = append(args, paymentTypeStrings(filter.ExcludeTypes))
		query += fmt.Sprintf(" AND payment_type <> ALL($%d)", len(args))
	}
	if filter.CarID != nil {
		args = append(args, *filter.CarID)
		query += fmt.Sprintf(" AND car_id = $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	if filter.OnlyComplete {
		query += " AND is_completed"
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		trx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, trx)
	}

	return transactions, rows.Err()
}

// SumByContract считает сумму платежей по договору. Выдачи денег
// (возвраты и снятия) входят с отрицательным знаком, иначе возврат
// увеличивал бы кэш paid вместо уменьшения.
func (r *transactionRepository) SumByContract(ctx context.Context, contractID uuid.UUID) (int64, error) {
	query := `
		SELECT COALESCE(SUM(CASE
			WHEN payment_type IN ('refund', 'withdraw', 'withdraw_bank', 'ticket_refund') THEN -amount
			ELSE amount
		END), 0)
		FROM transactions
		WHERE contract_id = $1 AND is_completed
	`

	var sum int64
	if err := r.db.QueryRow(ctx, query, contractID).Scan(&sum); err != nil {
		return 0, err
	}

	return sum, nil
}

func (r *transactionRepository) SumByOwner(ctx context.Context, ownerID uuid.UUID, types []domain.PaymentType) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE owner_id = $1 AND payment_type = ANY($2) AND is_completed
	`

	var sum int64
	if err := r.db.QueryRow(ctx, query, ownerID, paymentTypeStrings(types)).Scan(&sum); err != nil {
		return 0, err
	}

	return sum, nil
}

func (r *transactionRepository) SumExpensesByCategory(ctx context.Context, ownerID uuid.UUID, category domain.ExpenseCategory) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE owner_id = $1 AND payment_type = $2 AND category = $3
	`

	var sum int64
	if err := r.db.QueryRow(ctx, query, ownerID, domain.PaymentExpense, category).Scan(&sum); err != nil {
		return 0, err
	}

	return sum, nil
}

func (r *transactionRepository) Complete(ctx context.Context, paymentID, paymentIntent string) error {
	query := `
		UPDATE transactions
		SET is_completed = TRUE, payment_intent = $2, updated_at = $3
		WHERE payment_id = $1
	`

	result, err := r.db.Exec(ctx, query, paymentID, paymentIntent, time.Now())
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

func (r *transactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM transactions WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}
