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

type ticketRepository struct {
	db *pgxpool.Pool
}

func NewTicketRepository(db *pgxpool.Pool) repository.TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, owner_id, car_id, token_id, transaction_id, contract_id, pick_up, drop_off,
		driver_info, is_completed, is_deleted, deleted_at, created_at, updated_at`

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	ticket := &domain.Ticket{}
	err := row.Scan(
		&ticket.ID,
		&ticket.OwnerID,
		&ticket.CarID,
		&ticket.TokenID,
		&ticket.TransactionID,
		&ticket.ContractID,
		&ticket.PickUp,
		&ticket.DropOff,
		&ticket.DriverInfo,
		&ticket.IsCompleted,
		&ticket.IsDeleted,
		&ticket.DeletedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	query := `
		INSERT INTO tickets (` + ticketColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = time.Now()

	_, err := r.db.Exec(ctx, query,
		ticket.ID,
		ticket.OwnerID,
		ticket.CarID,
		ticket.TokenID,
		ticket.TransactionID,
		ticket.ContractID,
		ticket.PickUp,
		ticket.DropOff,
		ticket.DriverInfo,
		ticket.IsCompleted,
		ticket.IsDeleted,
		ticket.DeletedAt,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)

	return err
}

func (r *ticketRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1 AND owner_id = $2 AND NOT is_deleted`

	ticket, err := scanTicket(r.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}

	return ticket, nil
}

func (r *ticketRepository) GetByToken(ctx context.Context, tokenID string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE token_id = $1 AND NOT is_deleted`

	ticket, err := scanTicket(r.db.QueryRow(ctx, query, tokenID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}

	return ticket, nil
}

func (r *ticketRepository) GetByContract(ctx context.Context, contractID uuid.UUID) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE contract_id = $1 AND NOT is_deleted`

	ticket, err := scanTicket(r.db.QueryRow(ctx, query, contractID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}

	return ticket, nil
}

func (r *ticketRepository) GetByTransaction(ctx context.Context, transactionID uuid.UUID) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE transaction_id = $1 AND NOT is_deleted`

	ticket, err := scanTicket(r.db.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}

	return ticket, nil
}

func (r *ticketRepository) ListOpen(ctx context.Context, ownerID uuid.UUID) ([]*domain.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE owner_id = $1 AND is_completed AND contract_id IS NULL AND NOT is_deleted
		ORDER BY pick_up
	`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	return tickets, rows.Err()
}

func (r *ticketRepository) HasBookingOverlap(ctx context.Context, carID uuid.UUID, from, to time.Time) (bool, error) {
	// Учитываются только оплаченные брони без договора: привязанная
	// к договору бронь уже отражена статусом rented самого автомобиля
	query := `
		SELECT EXISTS(
			SELECT 1 FROM tickets
			WHERE car_id = $1 AND is_completed AND contract_id IS NULL AND NOT is_deleted
			  AND pick_up < $3 AND drop_off > $2
		)
	`

	var overlap bool
	if err := r.db.QueryRow(ctx, query, carID, from, to).Scan(&overlap); err != nil {
		return false, err
	}

	return overlap, nil
}

func (r *ticketRepository) LinkContract(ctx context.Context, ticketID, contractID uuid.UUID) error {
	query := `
		UPDATE tickets
		SET contract_id = $2, updated_at = $3
		WHERE id = $1 AND NOT is_deleted
	`

	result, err := r.db.Exec(ctx, query, ticketID, contractID, time.Now())
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}

	return nil
}

func (r *ticketRepository) MarkCompleted(ctx context.Context, transactionID uuid.UUID) error {
	query := `
		UPDATE tickets
		SET is_completed = TRUE, updated_at = $2
		WHERE transaction_id = $1 AND NOT is_deleted
	`

	result, err := r.db.Exec(ctx, query, transactionID, time.Now())
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}

	return nil
}

func (r *ticketRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE tickets
		SET is_deleted = TRUE, deleted_at = $2, updated_at = $2
		WHERE id = $1 AND NOT is_deleted
	`

	result, err := r.db.Exec(ctx, query, id, time.Now())
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}

	return nil
}
