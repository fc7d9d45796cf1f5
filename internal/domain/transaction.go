package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentType представляет тип движения денег
type PaymentType string

const (
	PaymentTicket       PaymentType = "ticket"
	PaymentTicketRefund PaymentType = "ticket_refund"
	PaymentOnline       PaymentType = "online"
	PaymentCash         PaymentType = "cash"
	PaymentBank         PaymentType = "bank"
	PaymentExpense      PaymentType = "expense"
	PaymentWithdraw     PaymentType = "withdraw"
	PaymentWithdrawBank PaymentType = "withdraw_bank"
	PaymentRefund       PaymentType = "refund"
)

// ExpenseCategory - категория расхода. Отчет по капиталу агрегирует
// расходы по этим категориям, а не по свободному тексту заголовка.
type ExpenseCategory string

const (
	ExpenseUtilities   ExpenseCategory = "utilities"
	ExpenseAdditional  ExpenseCategory = "additional"
	ExpenseMaintenance ExpenseCategory = "maintenance"
	ExpenseSalary      ExpenseCategory = "salary"
	ExpenseTax         ExpenseCategory = "tax"
	ExpenseOther       ExpenseCategory = "other"
)

// IsOutflow сообщает, является ли тип движения выдачей денег.
// Такие транзакции уменьшают сумму платежей по договору.
func (t PaymentType) IsOutflow() bool {
	switch t {
	case PaymentRefund, PaymentWithdraw, PaymentWithdrawBank, PaymentTicketRefund:
		return true
	}
	return false
}

// Valid проверяет, что категория расхода из допустимого словаря
func (c ExpenseCategory) Valid() bool {
	switch c {
	case ExpenseUtilities, ExpenseAdditional, ExpenseMaintenance, ExpenseSalary, ExpenseTax, ExpenseOther:
		return true
	}
	return false
}

// SalaryPeriod - период, за который выплачена зарплата
type SalaryPeriod struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Transaction - запись о движении денег (ledger entry).
// Каждый платеж, возврат, расход и снятие в системе представлены
// ровно одной транзакцией. Сумма после создания неизменяема: при
// асинхронном подтверждении платежа обновляются только флаг
// isPaymentCompleted и ссылки провайдера.
type Transaction struct {
	ID            uuid.UUID   `json:"id"`
	OwnerID       uuid.UUID   `json:"owner_id"`
	CarID         *uuid.UUID  `json:"car_id,omitempty"`
	ContractID    *uuid.UUID  `json:"contract_id,omitempty"`
	TicketID      *uuid.UUID  `json:"ticket_id,omitempty"`
	PaymentID     string      `json:"payment_id,omitempty"`     // внешняя ссылка провайдера
	PaymentIntent string      `json:"payment_intent,omitempty"` // для возвратов по ссылкам
	Type          PaymentType `json:"payment_type"`
	Amount        int64       `json:"amount"` // в минорных единицах валюты
	VAT           int64       `json:"vat,omitempty"`
	IsCompleted   bool        `json:"is_payment_completed"`
	Title         string      `json:"title,omitempty"`
	Description   string      `json:"description,omitempty"`

	// Детали расходных транзакций
	Category ExpenseCategory `json:"category,omitempty"`

	// Детали зарплатных выплат
	EmployeeName string        `json:"name,omitempty"`
	Period       *SalaryPeriod `json:"date,omitempty"`

	SerialNumber string    `json:"serial_number"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SignedAmount возвращает сумму со знаком движения: выдачи отрицательны
func (t *Transaction) SignedAmount() int64 {
	if t.Type.IsOutflow() {
		return -t.Amount
	}
	return t.Amount
}

// Validate проверяет корректность транзакции
func (t *Transaction) Validate() error {
	if t.OwnerID == uuid.Nil {
		return ErrInvalidOwnerData
	}
	switch t.Type {
	case PaymentTicket, PaymentTicketRefund, PaymentOnline, PaymentCash,
		PaymentBank, PaymentExpense, PaymentWithdraw, PaymentWithdrawBank, PaymentRefund:
	default:
		return ErrInvalidPaymentType
	}
	if t.Type == PaymentExpense && !t.Category.Valid() {
		return ErrInvalidPaymentType
	}
	return nil
}
