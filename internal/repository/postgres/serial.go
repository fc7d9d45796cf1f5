package postgres

import (
	"context"

	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type serialRepository struct {
	db *pgxpool.Pool
}

func NewSerialRepository(db *pgxpool.Pool) repository.SerialRepository {
	return &serialRepository{db: db}
}

func (r *serialRepository) Next(ctx context.Context, ownerID uuid.UUID, scope domain.SerialScope) (int64, error) {
	// Атомарный инкремент счетчика: два параллельных вызова
	// сериализуются на строке (owner_id, scope) и получают разные значения
	query := `
		INSERT INTO serial_counters (owner_id, scope, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (owner_id, scope)
		DO UPDATE SET value = serial_counters.value + 1
		RETURNING value
	`

	var value int64
	if err := r.db.QueryRow(ctx, query, ownerID, scope).Scan(&value); err != nil {
		return 0, err
	}

	return value, nil
}
