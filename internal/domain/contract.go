package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContractStatus представляет состояние договора аренды.
// Допустимые переходы: active → ended (штатное завершение),
// active → terminated (отмена). Из терминальных статусов выхода нет.
type ContractStatus string

const (
	ContractActive     ContractStatus = "active"
	ContractEnded      ContractStatus = "ended"
	ContractTerminated ContractStatus = "terminated"
)

// RentPeriod - срок аренды по договору
type RentPeriod struct {
	PickUp          time.Time  `json:"pick_up"`
	DropOut         time.Time  `json:"drop_out"`
	ModifiedDropOut *time.Time `json:"modified_drop_out,omitempty"`
	AllowedKm       int64      `json:"allowed_km,omitempty"`
}

// Contract - договор аренды между владельцем и клиентом.
// Снимок клиента встроен в договор и не является ссылкой.
// serialNumber присваивается один раз при создании и никогда
// не пересчитывается.
type Contract struct {
	ID                  uuid.UUID      `json:"id"`
	OwnerID             uuid.UUID      `json:"owner_id"`
	CarID               uuid.UUID      `json:"car_id"`
	MemberID            *uuid.UUID     `json:"member_id,omitempty"` // субаккаунт, создавший договор
	TicketID            *uuid.UUID     `json:"ticket_id,omitempty"` // если договор создан из онлайн-брони
	Client              Client         `json:"client"`
	Rent                RentPeriod     `json:"rent"`
	IDDocumentURL       string         `json:"id_url,omitempty"`
	Status              ContractStatus `json:"status"`
	Package             RentPackage    `json:"package"`
	StartMileageReading int64          `json:"start_mileage_reading"`
	EndMileageReading   int64          `json:"end_mileage_reading,omitempty"`

	// Кэш баланса: всегда выводится из суммы транзакций договора,
	// самостоятельной достоверностью не обладает.
	TotalAmount int64 `json:"total_amount"`
	Paid        int64 `json:"paid"`
	Balance     int64 `json:"balance"`

	SerialNumber string    `json:"serial_number"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Связанные данные (не хранятся в строке договора)
	Car    *Vehicle `json:"car,omitempty"`
	Ticket *Ticket  `json:"ticket,omitempty"`
}

// IsActive проверяет, действует ли договор
func (c *Contract) IsActive() bool {
	return c.Status == ContractActive
}

// Validate проверяет корректность данных договора
func (c *Contract) Validate() error {
	if c.OwnerID == uuid.Nil || c.CarID == uuid.Nil {
		return ErrInvalidContractData
	}
	switch c.Status {
	case ContractActive, ContractEnded, ContractTerminated:
	default:
		return ErrInvalidContractData
	}
	return nil
}
