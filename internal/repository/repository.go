package repository

import (
	"context"
	"time"

	"github.com/frontandrew/rental/internal/domain"
	"github.com/google/uuid"
)

// OwnerRepository определяет методы для работы с владельцами (tenants)
type OwnerRepository interface {
	// Create создает нового владельца
	Create(ctx context.Context, owner *domain.Owner) error

	// GetByID возвращает владельца по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Owner, error)

	// GetByEmail возвращает владельца по email
	GetByEmail(ctx context.Context, email string) (*domain.Owner, error)

	// Update обновляет данные владельца
	Update(ctx context.Context, owner *domain.Owner) error

	// UpdatePaymentCredentials сохраняет ключи платежного провайдера
	UpdatePaymentCredentials(ctx context.Context, id uuid.UUID, creds *domain.PaymentCredentials) error
}

// MemberRepository определяет методы для работы с субаккаунтами
type MemberRepository interface {
	// Create создает новый субаккаунт
	Create(ctx context.Context, member *domain.Member) error

	// GetByID возвращает субаккаунт владельца по ID
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Member, error)

	// GetByUsername возвращает субаккаунт по логину
	GetByUsername(ctx context.Context, username string) (*domain.Member, error)

	// IsUsernameTaken проверяет занятость логина, исключая указанный ID
	IsUsernameTaken(ctx context.Context, username string, excludeID uuid.UUID) (bool, error)

	// List возвращает все субаккаунты владельца
	List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Member, error)

	// Update обновляет данные субаккаунта
	Update(ctx context.Context, member *domain.Member) error

	// Delete удаляет субаккаунт; возвращает число удаленных записей
	Delete(ctx context.Context, ownerID, id uuid.UUID) (int64, error)
}

// VehicleRepository определяет методы для работы с автомобилями
type VehicleRepository interface {
	// Create создает новый автомобиль
	Create(ctx context.Context, vehicle *domain.Vehicle) error

	// GetByID возвращает автомобиль по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Vehicle, error)

	// IsPlateTaken проверяет занятость номера, исключая указанный ID
	IsPlateTaken(ctx context.Context, plate string, excludeID uuid.UUID) (bool, error)

	// ListByOwner возвращает все автомобили владельца
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Vehicle, error)

	// ListAvailable возвращает доступные автомобили владельца с указанной
	// видимостью; ownerID == uuid.Nil снимает фильтр по владельцу
	ListAvailable(ctx context.Context, ownerID uuid.UUID, visibility []domain.VehicleVisibility) ([]*domain.Vehicle, error)

	// Update обновляет данные автомобиля
	Update(ctx context.Context, vehicle *domain.Vehicle) error

	// Delete удаляет автомобиль
	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	// MarkRented переводит автомобиль available → rented и фиксирует
	// начальный пробег. Условная запись: если автомобиль не available,
	// возвращает domain.ErrVehicleRented
	MarkRented(ctx context.Context, id uuid.UUID, startMileage int64) error

	// Release переводит автомобиль в available с конечным пробегом;
	// oilChange дополнительно обновляет lastOilCheck и ставит пометку
	// о замене масла
	Release(ctx context.Context, id uuid.UUID, endMileage int64, oilChange bool) error
}

// ContractRepository определяет методы для работы с договорами аренды
type ContractRepository interface {
	// Create создает новый договор
	Create(ctx context.Context, contract *domain.Contract) error

	// GetByID возвращает договор по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error)

	// GetByPassport возвращает договор владельца по номеру паспорта клиента
	GetByPassport(ctx context.Context, ownerID uuid.UUID, passportID string) (*domain.Contract, error)

	// ListByOwner возвращает все договоры владельца
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Contract, error)

	// Update обновляет данные договора
	Update(ctx context.Context, contract *domain.Contract) error

	// SetStatus выполняет условный переход статуса договора в пределах
	// владельца; если активной записи с ожидаемым статусом нет,
	// возвращает domain.ErrContractNotFound
	SetStatus(ctx context.Context, id, ownerID uuid.UUID, from, to domain.ContractStatus) error

	// UpdateBalance обновляет кэш баланса договора
	UpdateBalance(ctx context.Context, id uuid.UUID, totalAmount, paid, balance int64) error

	// Delete удаляет договор (используется компенсацией при неудачном создании)
	Delete(ctx context.Context, id uuid.UUID) error

	// CreateBatch вставляет договоры и их транзакции в одной транзакции
	// БД; любая ошибка откатывает весь пакет
	CreateBatch(ctx context.Context, contracts []*domain.Contract, transactions []*domain.Transaction) error
}

// TransactionFilter - фильтр выборки транзакций владельца
type TransactionFilter struct {
	Types        []domain.PaymentType
	ExcludeTypes []domain.PaymentType
	CarID        *uuid.UUID
	Category     domain.ExpenseCategory
	From         *time.Time
	To           *time.Time
	OnlyComplete bool
}

// TransactionRepository определяет методы для работы с транзакциями (ledger)
type TransactionRepository interface {
	// Create создает новую транзакцию
	Create(ctx context.Context, tx *domain.Transaction) error

	// GetByID возвращает транзакцию по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)

	// GetByPaymentID возвращает транзакцию по внешнему платежному ID
	GetByPaymentID(ctx context.Context, paymentID string) (*domain.Transaction, error)

	// ListByContract возвращает транзакции договора
	ListByContract(ctx context.Context, contractID uuid.UUID, onlyCompleted bool) ([]*domain.Transaction, error)

	// ListByOwner возвращает транзакции владельца по фильтру
	ListByOwner(ctx context.Context, ownerID uuid.UUID, filter TransactionFilter) ([]*domain.Transaction, error)

	// SumByContract возвращает сумму подтвержденных транзакций договора
	SumByContract(ctx context.Context, contractID uuid.UUID) (int64, error)

	// SumByOwner возвращает сумму транзакций владельца указанных типов
	SumByOwner(ctx context.Context, ownerID uuid.UUID, types []domain.PaymentType) (int64, error)

	// SumExpensesByCategory возвращает сумму расходов владельца по категории
	SumExpensesByCategory(ctx context.Context, ownerID uuid.UUID, category domain.ExpenseCategory) (int64, error)

	// Complete помечает транзакцию завершенной по внешнему платежному ID
	// и сохраняет payment intent провайдера (может быть пустым)
	Complete(ctx context.Context, paymentID, paymentIntent string) error

	// Delete удаляет транзакцию (используется компенсацией при неудачном
	// создании договора)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TicketRepository определяет методы для работы с онлайн-бронями
type TicketRepository interface {
	// Create создает новую бронь
	Create(ctx context.Context, ticket *domain.Ticket) error

	// GetByID возвращает неудаленную бронь владельца по ID
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Ticket, error)

	// GetByToken возвращает неудаленную бронь по токену отмены
	GetByToken(ctx context.Context, tokenID string) (*domain.Ticket, error)

	// GetByContract возвращает неудаленную бронь, привязанную к договору
	GetByContract(ctx context.Context, contractID uuid.UUID) (*domain.Ticket, error)

	// GetByTransaction возвращает неудаленную бронь по ID ее транзакции
	GetByTransaction(ctx context.Context, transactionID uuid.UUID) (*domain.Ticket, error)

	// ListOpen возвращает оплаченные брони владельца без договора
	ListOpen(ctx context.Context, ownerID uuid.UUID) ([]*domain.Ticket, error)

	// HasBookingOverlap проверяет, есть ли у автомобиля оплаченная бронь,
	// пересекающаяся с указанным окном
	HasBookingOverlap(ctx context.Context, carID uuid.UUID, from, to time.Time) (bool, error)

	// LinkContract привязывает бронь к созданному из нее договору
	LinkContract(ctx context.Context, ticketID, contractID uuid.UUID) error

	// MarkCompleted помечает бронь оплаченной по ID ее транзакции
	MarkCompleted(ctx context.Context, transactionID uuid.UUID) error

	// SoftDelete помечает бронь удаленной
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// BlacklistRepository определяет методы для работы с черным списком клиентов
type BlacklistRepository interface {
	// Create создает новую запись в черном списке
	Create(ctx context.Context, entry *domain.BlacklistEntry) error

	// GetByPassport возвращает запись владельца по номеру паспорта
	// или domain.ErrNotFound
	GetByPassport(ctx context.Context, ownerID uuid.UUID, passportID string) (*domain.BlacklistEntry, error)

	// DeleteByPassport удаляет записи владельца по номеру паспорта;
	// возвращает число удаленных записей (0 - валидный результат)
	DeleteByPassport(ctx context.Context, ownerID uuid.UUID, passportID string) (int64, error)

	// List возвращает все записи владельца
	List(ctx context.Context, ownerID uuid.UUID) ([]*domain.BlacklistEntry, error)
}

// SerialRepository выдает последовательные серийные номера,
// атомарно инкрементируя счетчик (owner, scope)
type SerialRepository interface {
	// Next возвращает следующее значение счетчика
	Next(ctx context.Context, ownerID uuid.UUID, scope domain.SerialScope) (int64, error)
}

// RefreshTokenRepository определяет методы для работы с refresh токенами
type RefreshTokenRepository interface {
	// Create сохраняет новый refresh token
	Create(ctx context.Context, token *domain.RefreshToken) error

	// GetByTokenHash возвращает refresh token по хешу
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)

	// Revoke отзывает refresh token
	Revoke(ctx context.Context, tokenHash string) error

	// RevokeAllOwnerTokens отзывает все токены владельца
	RevokeAllOwnerTokens(ctx context.Context, ownerID uuid.UUID) error

	// DeleteExpired удаляет истекшие токены
	DeleteExpired(ctx context.Context) error
}
