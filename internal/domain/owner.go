package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AccountType представляет тип аккаунта владельца
type AccountType string

const (
	AccountIndividual  AccountType = "individual"
	AccountDealer      AccountType = "dealer"
	AccountAdmin       AccountType = "admin"
	AccountCorporation AccountType = "corporation"
)

// Address - почтовый адрес владельца
type Address struct {
	Line1   string `json:"line1,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	Zip     string `json:"zip,omitempty"`
}

// PaymentCredentials - ключи платежного провайдера владельца.
// Заполнены только если владелец подключил онлайн-платежи.
type PaymentCredentials struct {
	APIKey        string `json:"api_key,omitempty"`
	SecretKey     string `json:"-"`
	WebhookSecret string `json:"-"`
}

// Owner - арендодатель (tenant). Все автомобили, договоры и транзакции
// принадлежат ровно одному владельцу.
type Owner struct {
	ID              uuid.UUID           `json:"id"`
	FirstName       string              `json:"first_name"`
	LastName        string              `json:"last_name"`
	Email           string              `json:"email"`
	PasswordHash    string              `json:"-"`
	PhoneNumber     string              `json:"phone_number"`
	AccountType     AccountType         `json:"acc_type"`
	CorporationName string              `json:"corporation_name,omitempty"`
	Address         Address             `json:"address"`
	Currency        string              `json:"currency"` // ISO 4217 код валюты
	Payment         *PaymentCredentials `json:"payment,omitempty"`
	IsActive        bool                `json:"is_active"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// DisplayName возвращает имя для писем и документов:
// название корпорации, если оно есть, иначе имя и фамилию.
func (o *Owner) DisplayName() string {
	if o.CorporationName != "" {
		return o.CorporationName
	}
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}

// PaymentEnabled проверяет, подключены ли онлайн-платежи
func (o *Owner) PaymentEnabled() bool {
	return o.Payment != nil && o.Payment.APIKey != ""
}

// Validate проверяет корректность данных владельца
func (o *Owner) Validate() error {
	if o.Email == "" || !strings.Contains(o.Email, "@") {
		return ErrInvalidEmail
	}
	if o.PhoneNumber == "" {
		return ErrInvalidOwnerData
	}
	switch o.AccountType {
	case AccountIndividual, AccountDealer, AccountAdmin, AccountCorporation:
	default:
		return ErrInvalidOwnerData
	}
	return nil
}
