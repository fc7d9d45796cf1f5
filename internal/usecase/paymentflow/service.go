package paymentflow

import (
	"context"
	"fmt"

	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/infrastructure/payment"
	"github.com/frontandrew/rental/internal/pkg/logger"
	"github.com/frontandrew/rental/internal/repository"
	"github.com/frontandrew/rental/internal/usecase/ticket"
	"github.com/google/uuid"
)

// PaymentLink - созданная платежная ссылка
type PaymentLink struct {
	Transaction *domain.Transaction `json:"transaction"`
	URL         string              `json:"url"`
}

// Status - состояние платежа для опроса с фронта
type Status struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	IsCompleted   bool      `json:"is_payment_completed"`
}

// Service связывает платежного провайдера с ledger: выдача платежных
// ссылок по договорам, обработка webhook и опрос статуса
type Service struct {
	transactionRepo repository.TransactionRepository
	contractRepo    repository.ContractRepository
	ownerRepo       repository.OwnerRepository
	serialRepo      repository.SerialRepository
	provider        payment.Provider
	tickets         *ticket.Service
	publicURL       string
	logger          logger.Logger
}

// NewService создает новый экземпляр PaymentFlowService
func NewService(
	transactionRepo repository.TransactionRepository,
	contractRepo repository.ContractRepository,
	ownerRepo repository.OwnerRepository,
	serialRepo repository.SerialRepository,
	provider payment.Provider,
	tickets *ticket.Service,
	publicURL string,
	logger logger.Logger,
) *Service {
	return &Service{
		transactionRepo: transactionRepo,
		contractRepo:    contractRepo,
		ownerRepo:       ownerRepo,
		serialRepo:      serialRepo,
		provider:        provider,
		tickets:         tickets,
		publicURL:       publicURL,
		logger:          logger,
	}
}

// CreatePaymentLink создает платеж у провайдера и незавершенную online
// транзакцию по договору. Транзакция завершится webhook-ом об оплате.
func (s *Service) CreatePaymentLink(ctx context.Context, ownerID, contractID uuid.UUID, amount int64) (*PaymentLink, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	contract, err := s.contractRepo.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract.OwnerID != ownerID {
		return nil, domain.ErrContractNotFound
	}
	if !contract.IsActive() {
		return nil, domain.ErrContractNotActive
	}

	owner, err := s.ownerRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !owner.PaymentEnabled() {
		return nil, domain.ErrInvalidPaymentType
	}

	charge, err := s.provider.CreateCharge(ctx, owner.Payment, payment.ChargeParams{
		Amount:      amount,
		Currency:    owner.Currency,
		Description: "Rental contract " + contract.SerialNumber,
		Email:       contract.Client.Email,
		CallbackURL: s.publicURL + "/api/v1/public/payments/webhook",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create charge: %w", err)
	}

	serialNum, err := s.serialRepo.Next(ctx, ownerID, domain.SerialScopeTransaction)
	if err != nil {
		return nil, fmt.Errorf("failed to get next serial: %w", err)
	}

	trx := &domain.Transaction{
		OwnerID:      ownerID,
		CarID:        &contract.CarID,
		ContractID:   &contract.ID,
		PaymentID:    charge.ID,
		Type:         domain.PaymentOnline,
		Amount:       amount,
		Description:  "Payment link",
		SerialNumber: domain.FormatSerial(serialNum),
	}
	if err := s.transactionRepo.Create(ctx, trx); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.logger.Info("Payment link created", map[string]interface{}{
		"contract_id":    contractID,
		"transaction_id": trx.ID,
		"amount":         amount,
	})

	return &PaymentLink{Transaction: trx, URL: charge.RedirectURL}, nil
}

// HandlePaymentSucceeded обрабатывает уведомление провайдера об
// успешной оплате. Для online платежа завершает транзакцию и обновляет
// баланс договора, для оплаты брони дополнительно подтверждает бронь.
func (s *Service) HandlePaymentSucceeded(ctx context.Context, paymentID, paymentIntent string) error {
	trx, err := s.transactionRepo.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return err
	}

	// Повторная доставка webhook безвредна
	if !trx.IsCompleted {
		if err := s.transactionRepo.Complete(ctx, paymentID, paymentIntent); err != nil {
			return err
		}
	}

	switch trx.Type {
	case domain.PaymentOnline:
		if trx.ContractID != nil {
			if err := s.refreshContractBalance(ctx, *trx.ContractID); err != nil {
				s.logger.Error("Failed to refresh contract balance", map[string]interface{}{
					"contract_id": *trx.ContractID,
					"error":       err.Error(),
				})
			}
		}
	case domain.PaymentTicket:
		if err := s.tickets.ConfirmPaid(ctx, trx); err != nil {
			return err
		}
	}

	s.logger.Info("Payment completed", map[string]interface{}{
		"payment_id":     paymentID,
		"transaction_id": trx.ID,
		"payment_type":   trx.Type,
	})

	return nil
}

func (s *Service) refreshContractBalance(ctx context.Context, contractID uuid.UUID) error {
	contract, err := s.contractRepo.GetByID(ctx, contractID)
	if err != nil {
		return err
	}

	paid, err := s.transactionRepo.SumByContract(ctx, contractID)
	if err != nil {
		return err
	}

	return s.contractRepo.UpdateBalance(ctx, contractID, contract.TotalAmount, paid, contract.TotalAmount-paid)
}

// PaymentStatus возвращает состояние платежа для опроса с фронта
func (s *Service) PaymentStatus(ctx context.Context, ownerID, transactionID uuid.UUID) (*Status, error) {
	trx, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if trx.OwnerID != ownerID {
		return nil, domain.ErrTransactionNotFound
	}

	return &Status{
		TransactionID: trx.ID,
		IsCompleted:   trx.IsCompleted,
	}, nil
}
