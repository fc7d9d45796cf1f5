package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ownerRepository struct {
	db *pgxpool.Pool
}

func NewOwnerRepository(db *pgxpool.Pool) repository.OwnerRepository {
	return &ownerRepository{db: db}
}

const ownerColumns = `id, first_name, last_name, email, password_hash, phone_number, acc_type,
		corporation_name, address, currency, payment, is_active, created_at, updated_at`

func scanOwner(row pgx.Row) (*domain.Owner, error) {
	owner := &domain.Owner{}
	err := row.Scan(
		&owner.ID,
		&owner.FirstName,
		&owner.LastName,
		&owner.Email,
		&owner.PasswordHash,
		&owner.PhoneNumber,
		&owner.AccountType,
		&owner.CorporationName,
		&owner.Address,
		&owner.Currency,
		&owner.Payment,
		&owner.IsActive,
		&owner.CreatedAt,
		&owner.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return owner, nil
}

func (r *ownerRepository) Create(ctx context.Context, owner *domain.Owner) error {
	query := `
		INSERT INTO owners (` + ownerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	owner.ID = uuid.New()
	owner.CreatedAt = time.Now()
	owner.UpdatedAt = time.Now()

	_, err := r.db.Exec(ctx, query,
		owner.ID,
		owner.FirstName,
		owner.LastName,
		owner.Email,
		owner.PasswordHash,
		owner.PhoneNumber,
		owner.AccountType,
		owner.CorporationName,
		owner.Address,
		owner.Currency,
		owner.Payment,
		owner.IsActive,
		owner.CreatedAt,
		owner.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return err
	}

	return nil
}

func (r *ownerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Owner, error) {
	query := `SELECT ` + ownerColumns + ` FROM owners WHERE id = $1`

	owner, err := scanOwner(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOwnerNotFound
		}
		return nil, err
	}

	return owner, nil
}

func (r *ownerRepository) GetByEmail(ctx context.Context, email string) (*domain.Owner, error) {
	query := `SELECT ` + ownerColumns + ` FROM owners WHERE email = $1`

	owner, err := scanOwner(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOwnerNotFound
		}
		return nil, err
	}

	return owner, nil
}

func (r *ownerRepository) Update(ctx context.Context, owner *domain.Owner) error {
	query := `
		UPDATE owners
		SET first_name = $2, last_name = $3, email = $4, phone_number = $5,
		    acc_type = $6, corporation_name = $7, address = $8, currency = $9,
		    is_active = $10, updated_at = $11
		WHERE id = $1
	`

	owner.UpdatedAt = time.Now()

	result, err := r.db.Exec(ctx, query,
		owner.ID,
		owner.FirstName,
		owner.LastName,
		owner.Email,
		owner.PhoneNumber,
		owner.AccountType,
		owner.CorporationName,
		owner.Address,
		owner.Currency,
		owner.IsActive,
		owner.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrOwnerNotFound
	}

	return nil
}

func (r *ownerRepository) UpdatePaymentCredentials(ctx context.Context, id uuid.UUID, creds *domain.PaymentCredentials) error {
	query := `
		UPDATE owners
		SET payment = $2, updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, creds, time.Now())
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrOwnerNotFound
	}

	return nil
}
