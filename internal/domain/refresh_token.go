package domain

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken представляет refresh токен в системе
type RefreshToken struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	OwnerID   uuid.UUID  `json:"owner_id" db:"owner_id"`
	MemberID  *uuid.UUID `json:"member_id,omitempty" db:"member_id"` // заполнен для сессий субаккаунтов
	TokenHash string     `json:"-" db:"token_hash"`                  // Не отдаем клиенту
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
}

// IsValid проверяет, действителен ли refresh token
func (rt *RefreshToken) IsValid() bool {
	if rt.RevokedAt != nil {
		return false
	}
	return time.Now().Before(rt.ExpiresAt)
}

// Revoke отзывает refresh token
func (rt *RefreshToken) Revoke() {
	now := time.Now()
	rt.RevokedAt = &now
}
