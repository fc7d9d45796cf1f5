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

type memberRepository struct {
	db *pgxpool.Pool
}

func NewMemberRepository(db *pgxpool.Pool) repository.MemberRepository {
	return &memberRepository{db: db}
}

const memberColumns = `id, owner_id, name, username, password_hash, phone_number, permissions, created_at, updated_at`

func scanMember(row pgx.Row) (*domain.Member, error) {
	member := &domain.Member{}
	err := row.Scan(
		&member.ID,
		&member.OwnerID,
		&member.Name,
		&member.Username,
		&member.PasswordHash,
		&member.PhoneNumber,
		&member.Permissions,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	query := `
		INSERT INTO members (` + memberColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	member.ID = uuid.New()
	member.CreatedAt = time.Now()
	member.UpdatedAt = time.Now()

	_, err := r.db.Exec(ctx, query,
		member.ID,
		member.OwnerID,
		member.Name,
		member.Username,
		member.PasswordHash,
		member.PhoneNumber,
		member.Permissions,
		member.CreatedAt,
		member.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUsernameTaken
		}
		return err
	}

	return nil
}

func (r *memberRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1 AND owner_id = $2`

	member, err := scanMember(r.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}

	return member, nil
}

func (r *memberRepository) GetByUsername(ctx context.Context, username string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE username = $1`

	member, err := scanMember(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}

	return member, nil
}

func (r *memberRepository) IsUsernameTaken(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM members WHERE username = $1 AND id <> $2)`

	var taken bool
	if err := r.db.QueryRow(ctx, query, username, excludeID).Scan(&taken); err != nil {
		return false, err
	}

	return taken, nil
}

func (r *memberRepository) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*domain.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

func (r *memberRepository) Update(ctx context.Context, member *domain.Member) error {
	query := `
		UPDATE members
		SET name = $3, username = $4, password_hash = $5, phone_number = $6,
		    permissions = $7, updated_at = $8
		WHERE id = $1 AND owner_id = $2
	`

	member.UpdatedAt = time.Now()

	result, err := r.db.Exec(ctx, query,
		member.ID,
		member.OwnerID,
		member.Name,
		member.Username,
		member.PasswordHash,
		member.PhoneNumber,
		member.Permissions,
		member.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUsernameTaken
		}
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrMemberNotFound
	}

	return nil
}

func (r *memberRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) (int64, error) {
	query := `DELETE FROM members WHERE id = $1 AND owner_id = $2`

	result, err := r.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}
