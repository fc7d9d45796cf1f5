package domain

import (
	"time"

	"github.com/google/uuid"
)

// BlacklistEntry - запись о блокировке клиента по номеру паспорта.
// Наличие записи блокирует создание новых договоров для этого паспорта
// у данного владельца, если явно не передан флаг override.
type BlacklistEntry struct {
	ID         uuid.UUID `json:"id"`
	ContractID uuid.UUID `json:"contract_id"` // договор, по которому клиент заблокирован
	OwnerID    uuid.UUID `json:"blocked_by"`
	PassportID string    `json:"passport_id"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate проверяет корректность записи
func (b *BlacklistEntry) Validate() error {
	if b.PassportID == "" {
		return ErrInvalidBlacklistData
	}
	if b.OwnerID == uuid.Nil || b.ContractID == uuid.Nil {
		return ErrInvalidBlacklistData
	}
	return nil
}
