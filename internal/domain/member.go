package domain

import (
	"time"

	"github.com/google/uuid"
)

// Permission - именованное разрешение субаккаунта
type Permission struct {
	Name   string `json:"name"`
	Status bool   `json:"status"`
}

// Member - субаккаунт под владельцем. Аутентифицируется самостоятельно,
// но не владеет договорами напрямую: договор лишь фиксирует, какой
// member его создал.
type Member struct {
	ID           uuid.UUID    `json:"id"`
	OwnerID      uuid.UUID    `json:"owner_id"`
	Name         string       `json:"name"`
	Username     string       `json:"username"` // уникальный логин
	PasswordHash string       `json:"-"`
	PhoneNumber  string       `json:"phone_number"`
	Permissions  []Permission `json:"permissions"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// HasPermission проверяет, включено ли разрешение с указанным именем
func (m *Member) HasPermission(name string) bool {
	for _, p := range m.Permissions {
		if p.Name == name {
			return p.Status
		}
	}
	return false
}

// Validate проверяет корректность данных субаккаунта
func (m *Member) Validate() error {
	if m.OwnerID == uuid.Nil {
		return ErrInvalidMemberData
	}
	if m.Username == "" || m.PhoneNumber == "" {
		return ErrInvalidMemberData
	}
	return nil
}
