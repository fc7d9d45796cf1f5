package domain

import (
	"time"

	"github.com/google/uuid"
)

// DriverContact - контактные данные водителя по брони
type DriverContact struct {
	CountryCode string `json:"country_code"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

// DriverInfo - снимок данных водителя, оформившего онлайн-бронь
type DriverInfo struct {
	FirstName      string        `json:"first_name"`
	LastName       string        `json:"last_name"`
	LicenseCountry string        `json:"license_country"`
	Address        Address       `json:"address"`
	Contact        DriverContact `json:"contact_details"`
}

// Ticket - онлайн-бронь автомобиля. Существует независимо от договора,
// пока из нее не создан договор. token_id - единственный секрет,
// необходимый клиенту для самостоятельной отмены по ссылке из письма.
type Ticket struct {
	ID            uuid.UUID  `json:"id"`
	OwnerID       uuid.UUID  `json:"owner_id"`
	CarID         uuid.UUID  `json:"car_id"`
	TokenID       string     `json:"token_id,omitempty"`
	TransactionID *uuid.UUID `json:"transaction_id,omitempty"`
	ContractID    *uuid.UUID `json:"contract_id,omitempty"`
	PickUp        time.Time  `json:"pick_up"`
	DropOff       time.Time  `json:"drop_off"`
	DriverInfo    DriverInfo `json:"driver_info"`
	IsCompleted   bool       `json:"is_payment_completed"`
	IsDeleted     bool       `json:"is_deleted"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Validate проверяет корректность брони
func (t *Ticket) Validate() error {
	if t.OwnerID == uuid.Nil || t.CarID == uuid.Nil {
		return ErrInvalidTicketData
	}
	if t.PickUp.IsZero() || t.DropOff.IsZero() || !t.DropOff.After(t.PickUp) {
		return ErrInvalidTicketData
	}
	if t.DriverInfo.FirstName == "" || t.DriverInfo.Contact.Email == "" {
		return ErrInvalidTicketData
	}
	return nil
}
