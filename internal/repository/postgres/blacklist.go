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

type blacklistRepository struct {
	db *pgxpool.Pool
}

func NewBlacklistRepository(db *pgxpool.Pool) repository.BlacklistRepository {
	return &blacklistRepository{db: db}
}

const blacklistColumns = `id, contract_id, owner_id, passport_id, reason, created_at`

func scanBlacklistEntry(row pgx.Row) (*domain.BlacklistEntry, error) {
	entry := &domain.BlacklistEntry{}
	err := row.Scan(
		&entry.ID,
		&entry.ContractID,
		&entry.OwnerID,
		&entry.PassportID,
		&entry.Reason,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *blacklistRepository) Create(ctx context.Context, entry *domain.BlacklistEntry) error {
	query := `
		INSERT INTO blacklist (` + blacklistColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.ContractID,
		entry.OwnerID,
		entry.PassportID,
		entry.Reason,
		entry.CreatedAt,
	)

	return err
}

func (r *blacklistRepository) GetByPassport(ctx context.Context, ownerID uuid.UUID, passportID string) (*domain.BlacklistEntry, error) {
	query := `
		SELECT ` + blacklistColumns + `
		FROM blacklist
		WHERE owner_id = $1 AND passport_id = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	entry, err := scanBlacklistEntry(r.db.QueryRow(ctx, query, ownerID, passportID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return entry, nil
}

func (r *blacklistRepository) DeleteByPassport(ctx context.Context, ownerID uuid.UUID, passportID string) (int64, error) {
	query := `DELETE FROM blacklist WHERE owner_id = $1 AND passport_id = $2`

	result, err := r.db.Exec(ctx, query, ownerID, passportID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}

func (r *blacklistRepository) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.BlacklistEntry, error) {
	query := `SELECT ` + blacklistColumns + ` FROM blacklist WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.BlacklistEntry
	for rows.Next() {
		entry, err := scanBlacklistEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
