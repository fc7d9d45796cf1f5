package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// executor покрывает pgxpool.Pool и pgx.Tx: вставки договоров и
// транзакций выполняются как напрямую, так и внутри транзакции БД
type executor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type contractRepository struct {
	db *pgxpool.Pool
}

func NewContractRepository(db *pgxpool.Pool) repository.ContractRepository {
	return &contractRepository{db: db}
}

const contractColumns = `id, owner_id, car_id, member_id, ticket_id, client, pick_up, drop_out,
		modified_drop_out, allowed_km, id_document_url, status, package_days, package_price,
		start_mileage, end_mileage, total_amount, paid, balance, serial_number, created_at, updated_at`

func scanContract(row pgx.Row) (*domain.Contract, error) {
	contract := &domain.Contract{}
	err := row.Scan(
		&contract.ID,
		&contract.OwnerID,
		&contract.CarID,
		&contract.MemberID,
		&contract.TicketID,
		&contract.Client,
		&contract.Rent.PickUp,
		&contract.Rent.DropOut,
		&contract.Rent.ModifiedDropOut,
		&contract.Rent.AllowedKm,
		&contract.IDDocumentURL,
		&contract.Status,
		&contract.Package.Days,
		&contract.Package.Price,
		&contract.StartMileageReading,
		&contract.EndMileageReading,
		&contract.TotalAmount,
		&contract.Paid,
		&contract.Balance,
		&contract.SerialNumber,
		&contract.CreatedAt,
		&contract.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return contract, nil
}

func insertContract(ctx context.Context, db executor, contract *domain.Contract) error {
	query := `
		INSERT INTO contracts (` + contractColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22)
	`

	if contract.ID == uuid.Nil {
		contract.ID = uuid.New()
	}
	contract.CreatedAt = time.Now()
	contract.UpdatedAt = time.Now()

	_, err := db.Exec(ctx, query,
		contract.ID,
		contract.OwnerID,
		contract.CarID,
		contract.MemberID,
		contract.TicketID,
		contract.Client,
		contract.Rent.PickUp,
		contract.Rent.DropOut,
		contract.Rent.ModifiedDropOut,
		contract.Rent.AllowedKm,
		contract.IDDocumentURL,
		contract.Status,
		contract.Package.Days,
		contract.Package.Price,
		contract.StartMileageReading,
		contract.EndMileageReading,
		contract.TotalAmount,
		contract.Paid,
		contract.Balance,
		contract.SerialNumber,
		contract.CreatedAt,
		contract.UpdatedAt,
	)

	return err
}

func (r *contractRepository) Create(ctx context.Context, contract *domain.Contract) error {
	return insertContract(ctx, r.db, contract)
}

func (r *contractRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE id = $1`

	contract, err := scanContract(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrContractNotFound
		}
		return nil, err
	}

	return contract, nil
}

func (r *contractRepository) GetByPassport(ctx context.Context, ownerID uuid.UUID, passportID string) (*domain.Contract, error) {
	query := `
		SELECT ` + contractColumns + `
		FROM contracts
		WHERE owner_id = $1 AND client->'passport'->>'id_no' = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	contract, err := scanContract(r.db.QueryRow(ctx, query, ownerID, passportID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrContractNotFound
		}
		return nil, err
	}

	return contract, nil
}

func (r *contractRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []*domain.Contract
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, contract)
	}

	return contracts, rows.Err()
}

func (r *contractRepository) Update(ctx context.Context, contract *domain.Contract) error {
	query := `
		UPDATE contracts
		SET client = $3, pick_up = $4, drop_out = $5, modified_drop_out = $6, allowed_km = $7,
		    id_document_url = $8, package_days = $9, package_price = $10, start_mileage = $11,
		    end_mileage = $12, total_amount = $13, paid = $14, balance = $15, updated_at = $16
		WHERE id = $1 AND owner_id = $2
	`

	contract.UpdatedAt = time.Now()

	result, err := r.db.Exec(ctx, query,
		contract.ID,
		contract.OwnerID,
		contract.Client,
		contract.Rent.PickUp,
		contract.Rent.DropOut,
		contract.Rent.ModifiedDropOut,
		contract.Rent.AllowedKm,
		contract.IDDocumentURL,
		contract.Package.Days,
		contract.Package.Price,
		contract.StartMileageReading,
		contract.EndMileageReading,
		contract.TotalAmount,
		contract.Paid,
		contract.Balance,
		contract.UpdatedAt,
	)

	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrContractNotFound
	}

	return nil
}

func (r *contractRepository) SetStatus(ctx context.Context, id, ownerID uuid.UUID, from, to domain.ContractStatus) error {
	// Условный переход: проигравший из двух параллельных запросов
	// не находит строку в исходном статусе
	query := `
		UPDATE contracts
		SET status = $4, updated_at = $5
		WHERE id = $1 AND owner_id = $2 AND status = $3
	`

	result, err := r.db.Exec(ctx, query, id, ownerID, from, to, time.Now())
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrContractNotFound
	}

	return nil
}

func (r *contractRepository) UpdateBalance(ctx context.Context, id uuid.UUID, totalAmount, paid, balance int64) error {
	query := `
		UPDATE contracts
		SET total_amount = $2, paid = $3, balance = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, totalAmount, paid, balance, time.Now())
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrContractNotFound
	}

	return nil
}

func (r *contractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM contracts WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrContractNotFound
	}

	return nil
}

func (r *contractRepository) CreateBatch(ctx context.Context, contracts []*domain.Contract, transactions []*domain.Transaction) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, contract := range contracts {
		if err := insertContract(ctx, tx, contract); err != nil {
			return err
		}
	}

	for _, trx := range transactions {
		if err := insertTransaction(ctx, tx, trx); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
