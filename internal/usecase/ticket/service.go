package ticket

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/infrastructure/mailer"
	"github.com/frontandrew/rental/internal/infrastructure/payment"
	"github.com/frontandrew/rental/internal/pkg/logger"
	"github.com/frontandrew/rental/internal/repository"
	"github.com/google/uuid"
)

// Исходы операций с бронями
const (
	CaseCreated        = "created"
	CaseProviderFailed = "provider_failed"
	CaseCancelled      = "cancelled"
	CaseRefundFailed   = "refund_failed"
)

// CreateTicketRequest - запрос на онлайн-бронирование автомобиля
type CreateTicketRequest struct {
	OwnerID    uuid.UUID         `json:"owner_id"`
	CarID      uuid.UUID         `json:"car_id"`
	PickUp     time.Time         `json:"pick_up"`
	DropOff    time.Time         `json:"drop_off"`
	DriverInfo domain.DriverInfo `json:"driver_info"`
	Amount     int64             `json:"amount"`
}

// CreateResult - результат бронирования. При недоступном провайдере
// бронь не создается и исход provider_failed возвращается клиенту.
type CreateResult struct {
	Case       string         `json:"case"`
	Ticket     *domain.Ticket `json:"ticket,omitempty"`
	PaymentURL string         `json:"payment_url,omitempty"`
}

// CancelResult - результат отмены брони
type CancelResult struct {
	Case     string         `json:"case"`
	Ticket   *domain.Ticket `json:"ticket,omitempty"`
	Refunded int64          `json:"refunded"`
}

// Config - настройки бронирования
type Config struct {
	// Публичный URL сервиса для ссылок отмены в письмах
	PublicURL string

	// Удалять ли бронь, если провайдер не смог вернуть деньги
	DeleteOnRefundFailure bool
}

// Service содержит бизнес-логику онлайн-броней
type Service struct {
	ticketRepo      repository.TicketRepository
	transactionRepo repository.TransactionRepository
	vehicleRepo     repository.VehicleRepository
	ownerRepo       repository.OwnerRepository
	serialRepo      repository.SerialRepository
	provider        payment.Provider
	mailer          mailer.Sender
	cfg             Config
	logger          logger.Logger
}

// NewService создает новый экземпляр TicketService
func NewService(
	ticketRepo repository.TicketRepository,
	transactionRepo repository.TransactionRepository,
	vehicleRepo repository.VehicleRepository,
	ownerRepo repository.OwnerRepository,
	serialRepo repository.SerialRepository,
	provider payment.Provider,
	mailSender mailer.Sender,
	cfg Config,
	logger logger.Logger,
) *Service {
	return &Service{
		ticketRepo:      ticketRepo,
		transactionRepo: transactionRepo,
		vehicleRepo:     vehicleRepo,
		ownerRepo:       ownerRepo,
		serialRepo:      serialRepo,
		provider:        provider,
		mailer:          mailSender,
		cfg:             cfg,
		logger:          logger,
	}
}

// bookingToken формирует токен отмены брони. Токен - единственный
// секрет клиента, входы делают его неугадываемым.
func bookingToken(carID, transactionID uuid.UUID, at time.Time) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%d:%s:%s", at.UnixNano(), carID, transactionID)))
	return hex.EncodeToString(hash[:])
}

// cancelURL возвращает ссылку самостоятельной отмены брони
func (s *Service) cancelURL(token string) string {
	return s.cfg.PublicURL + "/api/v1/public/tickets/cancel/" + token
}

// CreateTicket бронирует автомобиль. Платная бронь создает
// незавершенную транзакцию и платеж у провайдера; бесплатная
// подтверждается сразу.
func (s *Service) CreateTicket(ctx context.Context, req *CreateTicketRequest) (*CreateResult, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, req.CarID)
	if err != nil {
		return nil, err
	}
	if vehicle.OwnerID != req.OwnerID {
		return nil, domain.ErrNotOwner
	}

	overlap, err := s.ticketRepo.HasBookingOverlap(ctx, req.CarID, req.PickUp, req.DropOff)
	if err != nil {
		return nil, fmt.Errorf("failed to check bookings: %w", err)
	}
	if overlap {
		return nil, domain.ErrVehicleRented
	}

	owner, err := s.ownerRepo.GetByID(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}

	serialNum, err := s.serialRepo.Next(ctx, req.OwnerID, domain.SerialScopeTransaction)
	if err != nil {
		return nil, fmt.Errorf("failed to get next serial: %w", err)
	}

	trx := &domain.Transaction{
		ID:           uuid.New(),
		OwnerID:      req.OwnerID,
		CarID:        &req.CarID,
		Type:         domain.PaymentTicket,
		Amount:       req.Amount,
		IsCompleted:  req.Amount == 0, // бесплатная бронь подтверждается без оплаты
		Description:  "Online booking",
		SerialNumber: domain.FormatSerial(serialNum),
	}
	if err := trx.Validate(); err != nil {
		return nil, err
	}

	var paymentURL string
	if req.Amount > 0 {
		if !owner.PaymentEnabled() {
			return nil, domain.ErrInvalidPaymentType
		}

		charge, err := s.provider.CreateCharge(ctx, owner.Payment, payment.ChargeParams{
			Amount:      req.Amount,
			Currency:    owner.Currency,
			Description: fmt.Sprintf("Booking %s %s", vehicle.Model, vehicle.Plate),
			Email:       req.DriverInfo.Contact.Email,
			CallbackURL: s.cfg.PublicURL + "/api/v1/public/payments/webhook",
		})
		if err != nil {
			s.logger.Error("Provider charge failed", map[string]interface{}{
				"owner_id": req.OwnerID,
				"car_id":   req.CarID,
				"error":    err.Error(),
			})
			return &CreateResult{Case: CaseProviderFailed}, nil
		}

		trx.PaymentID = charge.ID
		paymentURL = charge.RedirectURL
	}

	if err := s.transactionRepo.Create(ctx, trx); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	ticket := &domain.Ticket{
		OwnerID:       req.OwnerID,
		CarID:         req.CarID,
		TokenID:       bookingToken(req.CarID, trx.ID, time.Now()),
		TransactionID: &trx.ID,
		PickUp:        req.PickUp,
		DropOff:       req.DropOff,
		DriverInfo:    req.DriverInfo,
		IsCompleted:   req.Amount == 0,
	}
	if err := ticket.Validate(); err != nil {
		return nil, err
	}

	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		// Осиротевшую транзакцию убираем сразу
		if delErr := s.transactionRepo.Delete(ctx, trx.ID); delErr != nil {
			s.logger.Error("Failed to delete orphan transaction", map[string]interface{}{
				"transaction_id": trx.ID,
				"error":          delErr.Error(),
			})
		}
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	// Бесплатная бронь подтверждается письмом сразу, платная - после
	// оплаты через webhook
	if req.Amount == 0 {
		s.sendConfirmation(ctx, owner, vehicle, ticket, 0)
	}

	s.logger.Info("Ticket created", map[string]interface{}{
		"ticket_id": ticket.ID,
		"car_id":    req.CarID,
		"amount":    req.Amount,
	})

	return &CreateResult{Case: CaseCreated, Ticket: ticket, PaymentURL: paymentURL}, nil
}

// sendConfirmation отправляет подтверждение брони со ссылкой отмены
func (s *Service) sendConfirmation(ctx context.Context, owner *domain.Owner, vehicle *domain.Vehicle, ticket *domain.Ticket, amount int64) {
	s.mailer.SendBookingConfirmation(ctx, mailer.BookingMail{
		To:           ticket.DriverInfo.Contact.Email,
		DriverName:   ticket.DriverInfo.FirstName + " " + ticket.DriverInfo.LastName,
		CompanyName:  owner.DisplayName(),
		VehicleModel: vehicle.Model,
		VehiclePlate: vehicle.Plate,
		PickUp:       ticket.PickUp.Format(time.RFC1123),
		DropOff:      ticket.DropOff.Format(time.RFC1123),
		Amount:       formatAmount(amount, owner.Currency),
		CancelURL:    s.cancelURL(ticket.TokenID),
	})
}

// formatAmount переводит минорные единицы в строку для письма
func formatAmount(amount int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", amount/100, amount%100, currency)
}

// ConfirmPaid помечает бронь оплаченной и отправляет подтверждение.
// Вызывается из обработки платежного webhook.
func (s *Service) ConfirmPaid(ctx context.Context, trx *domain.Transaction) error {
	if err := s.ticketRepo.MarkCompleted(ctx, trx.ID); err != nil {
		return err
	}

	// Письмо вторично, его неудача подтверждение не отменяет
	owner, err := s.ownerRepo.GetByID(ctx, trx.OwnerID)
	if err != nil {
		s.logger.Error("Failed to load owner for confirmation mail", map[string]interface{}{
			"owner_id": trx.OwnerID,
			"error":    err.Error(),
		})
		return nil
	}

	if trx.CarID == nil {
		return nil
	}
	vehicle, err := s.vehicleRepo.GetByID(ctx, *trx.CarID)
	if err != nil {
		return nil
	}

	ticket, err := s.ticketRepo.GetByTransaction(ctx, trx.ID)
	if err != nil {
		return nil
	}
	s.sendConfirmation(ctx, owner, vehicle, ticket, trx.Amount)

	return nil
}

// ListOpen возвращает оплаченные брони владельца без договора
func (s *Service) ListOpen(ctx context.Context, ownerID uuid.UUID) ([]*domain.Ticket, error) {
	return s.ticketRepo.ListOpen(ctx, ownerID)
}

// GetTicket возвращает бронь владельца
func (s *Service) GetTicket(ctx context.Context, ownerID, ticketID uuid.UUID) (*domain.Ticket, error) {
	return s.ticketRepo.GetByID(ctx, ownerID, ticketID)
}

// CancelByOwner отменяет бронь из кабинета владельца
func (s *Service) CancelByOwner(ctx context.Context, ownerID, ticketID uuid.UUID) (*CancelResult, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ownerID, ticketID)
	if err != nil {
		return nil, err
	}

	return s.cancel(ctx, ticket)
}

// CancelByToken отменяет бронь по ссылке из письма клиента
func (s *Service) CancelByToken(ctx context.Context, token string) (*CancelResult, error) {
	ticket, err := s.ticketRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	return s.cancel(ctx, ticket)
}

// cancel выполняет отмену: возврат средств через провайдера,
// ticket_refund транзакция и мягкое удаление брони
func (s *Service) cancel(ctx context.Context, ticket *domain.Ticket) (*CancelResult, error) {
	owner, err := s.ownerRepo.GetByID(ctx, ticket.OwnerID)
	if err != nil {
		return nil, err
	}

	var trx *domain.Transaction
	if ticket.TransactionID != nil {
		trx, err = s.transactionRepo.GetByID(ctx, *ticket.TransactionID)
		if err != nil && !errors.Is(err, domain.ErrTransactionNotFound) {
			return nil, err
		}
	}

	refunded := int64(0)
	if trx != nil && trx.Amount > 0 && trx.IsCompleted {
		if err := s.provider.Refund(ctx, owner.Payment, trx.PaymentID, trx.Amount, owner.Currency); err != nil {
			s.logger.Error("Booking refund failed", map[string]interface{}{
				"ticket_id": ticket.ID,
				"error":     err.Error(),
			})

			// По умолчанию бронь сохраняется, чтобы возврат можно
			// было повторить вручную
			if s.cfg.DeleteOnRefundFailure {
				if err := s.ticketRepo.SoftDelete(ctx, ticket.ID); err != nil {
					return nil, err
				}
			}
			return &CancelResult{Case: CaseRefundFailed, Ticket: ticket}, nil
		}

		serialNum, err := s.serialRepo.Next(ctx, ticket.OwnerID, domain.SerialScopeTransaction)
		if err != nil {
			return nil, fmt.Errorf("failed to get next serial: %w", err)
		}

		refund := &domain.Transaction{
			OwnerID:      ticket.OwnerID,
			CarID:        &ticket.CarID,
			TicketID:     &ticket.ID,
			Type:         domain.PaymentTicketRefund,
			Amount:       trx.Amount,
			IsCompleted:  true,
			Description:  "Booking cancellation refund",
			SerialNumber: domain.FormatSerial(serialNum),
		}
		if err := s.transactionRepo.Create(ctx, refund); err != nil {
			return nil, fmt.Errorf("failed to create refund transaction: %w", err)
		}
		refunded = trx.Amount
	}

	if err := s.ticketRepo.SoftDelete(ctx, ticket.ID); err != nil {
		return nil, err
	}

	s.notifyCancelled(ctx, owner, ticket, refunded)

	s.logger.Info("Ticket cancelled", map[string]interface{}{
		"ticket_id": ticket.ID,
		"refunded":  refunded,
	})

	return &CancelResult{Case: CaseCancelled, Ticket: ticket, Refunded: refunded}, nil
}

func (s *Service) notifyCancelled(ctx context.Context, owner *domain.Owner, ticket *domain.Ticket, refunded int64) {
	vehicleModel, vehiclePlate := "", ""
	if vehicle, err := s.vehicleRepo.GetByID(ctx, ticket.CarID); err == nil {
		vehicleModel, vehiclePlate = vehicle.Model, vehicle.Plate
	}

	s.mailer.SendBookingCancelled(ctx, mailer.BookingMail{
		To:           ticket.DriverInfo.Contact.Email,
		DriverName:   ticket.DriverInfo.FirstName + " " + ticket.DriverInfo.LastName,
		CompanyName:  owner.DisplayName(),
		VehicleModel: vehicleModel,
		VehiclePlate: vehiclePlate,
		PickUp:       ticket.PickUp.Format(time.RFC1123),
		DropOff:      ticket.DropOff.Format(time.RFC1123),
		Amount:       formatAmount(refunded, owner.Currency),
		Refunded:     refunded > 0,
	})
}
