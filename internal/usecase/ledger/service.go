package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/pkg/logger"
	"github.com/frontandrew/rental/internal/repository"
	"github.com/google/uuid"
)

// AddExpenseRequest - запрос на создание расходной записи
type AddExpenseRequest struct {
	Amount       int64                  `json:"amount"`
	Category     domain.ExpenseCategory `json:"category"`
	Title        string                 `json:"title,omitempty"`
	Description  string                 `json:"description,omitempty"`
	CarID        *uuid.UUID             `json:"car_id,omitempty"`
	EmployeeName string                 `json:"name,omitempty"`
	Period       *domain.SalaryPeriod   `json:"date,omitempty"`
}

// AddWithdrawalRequest - запрос на снятие средств
type AddWithdrawalRequest struct {
	Amount      int64  `json:"amount"`
	FromBank    bool   `json:"from_bank"`
	Description string `json:"description,omitempty"`
}

// CarEarnings - заработок автомобиля за период
type CarEarnings struct {
	CarID        uuid.UUID             `json:"car_id"`
	Total        int64                 `json:"total"`
	Transactions []*domain.Transaction `json:"transactions"`
}

// CapitalSummary - сводка по капиталу владельца
type CapitalSummary struct {
	FleetValue int64                            `json:"fleet_value"`
	Earnings   int64                            `json:"earnings"`
	Expenses   map[domain.ExpenseCategory]int64 `json:"expenses"`
}

// Service содержит бизнес-логику кассовой книги: расходы, снятия
// и отчетность по движению денег
type Service struct {
	transactionRepo repository.TransactionRepository
	vehicleRepo     repository.VehicleRepository
	serialRepo      repository.SerialRepository
	logger          logger.Logger
}

// NewService создает новый экземпляр LedgerService
func NewService(
	transactionRepo repository.TransactionRepository,
	vehicleRepo repository.VehicleRepository,
	serialRepo repository.SerialRepository,
	logger logger.Logger,
) *Service {
	return &Service{
		transactionRepo: transactionRepo,
		vehicleRepo:     vehicleRepo,
		serialRepo:      serialRepo,
		logger:          logger,
	}
}

func (s *Service) nextSerial(ctx context.Context, ownerID uuid.UUID) (string, error) {
	n, err := s.serialRepo.Next(ctx, ownerID, domain.SerialScopeTransaction)
	if err != nil {
		return "", fmt.Errorf("failed to get next serial: %w", err)
	}
	return domain.FormatSerial(n), nil
}

// AddExpense создает расходную запись с типизированной категорией
func (s *Service) AddExpense(ctx context.Context, ownerID uuid.UUID, req *AddExpenseRequest) (*domain.Transaction, error) {
	if req.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if !req.Category.Valid() {
		return nil, domain.ErrInvalidPaymentType
	}

	serial, err := s.nextSerial(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	trx := &domain.Transaction{
		OwnerID:      ownerID,
		CarID:        req.CarID,
		Type:         domain.PaymentExpense,
		Amount:       req.Amount,
		IsCompleted:  true,
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		EmployeeName: req.EmployeeName,
		Period:       req.Period,
		SerialNumber: serial,
	}
	if err := trx.Validate(); err != nil {
		return nil, err
	}

	if err := s.transactionRepo.Create(ctx, trx); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.logger.Info("Expense recorded", map[string]interface{}{
		"owner_id": ownerID,
		"category": req.Category,
		"amount":   req.Amount,
	})

	return trx, nil
}

// AddWithdrawal фиксирует снятие средств из кассы или с банковского счета
func (s *Service) AddWithdrawal(ctx context.Context, ownerID uuid.UUID, req *AddWithdrawalRequest) (*domain.Transaction, error) {
	if req.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	paymentType := domain.PaymentWithdraw
	if req.FromBank {
		paymentType = domain.PaymentWithdrawBank
	}

	serial, err := s.nextSerial(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	trx := &domain.Transaction{
		OwnerID:      ownerID,
		Type:         paymentType,
		Amount:       req.Amount,
		IsCompleted:  true,
		Description:  req.Description,
		SerialNumber: serial,
	}

	if err := s.transactionRepo.Create(ctx, trx); err != nil {
		return nil, fmt.Errorf("failed to create withdrawal: %w", err)
	}

	return trx, nil
}

// ListExpenses возвращает расходы владельца, при необходимости
// отфильтрованные по категории
func (s *Service) ListExpenses(ctx context.Context, ownerID uuid.UUID, category domain.ExpenseCategory) ([]*domain.Transaction, error) {
	return s.transactionRepo.ListByOwner(ctx, ownerID, repository.TransactionFilter{
		Types:    []domain.PaymentType{domain.PaymentExpense},
		Category: category,
	})
}

// ListWithdrawals возвращает снятия средств владельца
func (s *Service) ListWithdrawals(ctx context.Context, ownerID uuid.UUID) ([]*domain.Transaction, error) {
	return s.transactionRepo.ListByOwner(ctx, ownerID, repository.TransactionFilter{
		Types: []domain.PaymentType{domain.PaymentWithdraw, domain.PaymentWithdrawBank},
	})
}

// ListPayments возвращает входящие платежи владельца. Транзакции броней
// не включаются: до конвертации в договор это не выручка.
func (s *Service) ListPayments(ctx context.Context, ownerID uuid.UUID) ([]*domain.Transaction, error) {
	return s.transactionRepo.ListByOwner(ctx, ownerID, repository.TransactionFilter{
		ExcludeTypes: []domain.PaymentType{domain.PaymentTicket, domain.PaymentTicketRefund},
		OnlyComplete: true,
	})
}

// CarEarnings возвращает завершенные транзакции автомобиля за период
func (s *Service) CarEarnings(ctx context.Context, ownerID, carID uuid.UUID, from, to time.Time) (*CarEarnings, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if vehicle.OwnerID != ownerID {
		return nil, domain.ErrNotOwner
	}

	filter := repository.TransactionFilter{
		Types:        []domain.PaymentType{domain.PaymentOnline, domain.PaymentCash, domain.PaymentBank},
		CarID:        &carID,
		OnlyComplete: true,
	}
	if !from.IsZero() {
		filter.From = &from
	}
	if !to.IsZero() {
		filter.To = &to
	}

	transactions, err := s.transactionRepo.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	earnings := &CarEarnings{CarID: carID, Transactions: transactions}
	for _, trx := range transactions {
		earnings.Total += trx.Amount
	}

	return earnings, nil
}

// CapitalSummary возвращает сводку: стоимость парка, выручка
// и расходы по категориям
func (s *Service) CapitalSummary(ctx context.Context, ownerID uuid.UUID) (*CapitalSummary, error) {
	vehicles, err := s.vehicleRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}

	summary := &CapitalSummary{
		Expenses: make(map[domain.ExpenseCategory]int64),
	}
	for _, v := range vehicles {
		summary.FleetValue += v.Price
	}

	earnings, err := s.transactionRepo.SumByOwner(ctx, ownerID, []domain.PaymentType{
		domain.PaymentOnline, domain.PaymentCash, domain.PaymentBank,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sum earnings: %w", err)
	}
	summary.Earnings = earnings

	for _, category := range []domain.ExpenseCategory{
		domain.ExpenseUtilities, domain.ExpenseAdditional, domain.ExpenseMaintenance,
		domain.ExpenseSalary, domain.ExpenseTax, domain.ExpenseOther,
	} {
		sum, err := s.transactionRepo.SumExpensesByCategory(ctx, ownerID, category)
		if err != nil {
			return nil, fmt.Errorf("failed to sum expenses: %w", err)
		}
		if sum != 0 {
			summary.Expenses[category] = sum
		}
	}

	return summary, nil
}
