package contract

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/infrastructure/payment"
	"github.com/frontandrew/rental/internal/pkg/logger"
	"github.com/frontandrew/rental/internal/repository"
	"github.com/google/uuid"
)

// Исходы операций с договором
const (
	CaseCreated      = "created"
	CaseBlacklisted  = "blacklisted"
	CaseCancelled    = "cancelled"
	CaseBookedOnline = "booked_online"
)

// CreateContractRequest - запрос на создание договора
type CreateContractRequest struct {
	OwnerID           uuid.UUID          `json:"owner_id"`
	MemberID          *uuid.UUID         `json:"member_id,omitempty"`
	CarID             uuid.UUID          `json:"car_id"`
	TicketID          *uuid.UUID         `json:"ticket_id,omitempty"`
	Client            domain.Client      `json:"client"`
	Rent              domain.RentPeriod  `json:"rent"`
	Package           domain.RentPackage `json:"package"`
	IDDocumentURL     string             `json:"id_url,omitempty"`
	StartMileage      int64              `json:"start_mileage_reading"`
	TotalAmount       int64              `json:"total_amount"`
	Amount            int64              `json:"amount"` // первый платеж при заключении
	PaymentType       domain.PaymentType `json:"payment_type,omitempty"`
	OverrideBlacklist bool               `json:"override_blacklist,omitempty"`
}

// CreateResult - результат создания договора. Блокировка клиента
// по черному списку - бизнес-исход, а не ошибка.
type CreateResult struct {
	Case      string                 `json:"case"`
	Contract  *domain.Contract       `json:"contract,omitempty"`
	Blacklist *domain.BlacklistEntry `json:"blacklist,omitempty"`
}

// EditContractRequest - запрос на частичное изменение договора.
// CarID, если передан, должен совпадать с автомобилем договора:
// правка по чужой паре (договор, автомобиль) не проходит.
type EditContractRequest struct {
	CarID           uuid.UUID           `json:"car_id,omitempty"`
	Client          *domain.Client      `json:"client,omitempty"`
	Rent            *domain.RentPeriod  `json:"rent,omitempty"`
	Package         *domain.RentPackage `json:"package,omitempty"`
	IDDocumentURL   *string             `json:"id_url,omitempty"`
	AllowedKm       *int64              `json:"allowed_km,omitempty"`
	ModifiedDropOut *time.Time          `json:"modified_drop_out,omitempty"`
	TotalAmount     *int64              `json:"total_amount,omitempty"`
}

// EndContractRequest - запрос на завершение договора
type EndContractRequest struct {
	EndMileage       int64              `json:"end_mileage_reading"`
	SettlementAmount int64              `json:"settlement_amount"` // отрицательное значение - возврат клиенту
	PaymentType      domain.PaymentType `json:"payment_type,omitempty"`
}

// CancelResult - результат отмены договора с разбивкой возвратов:
// успешные онлайн-возвраты уходят в банк, наличные выдаются из кассы
type CancelResult struct {
	Case          string           `json:"case"`
	Contract      *domain.Contract `json:"contract,omitempty"`
	BankTotal     int64            `json:"bank_total"`
	CashTotal     int64            `json:"cash_total"`
	FailedRefunds int              `json:"failed_refunds"`
}

// CashReceiptRequest - запрос на внесение платежа по договору
type CashReceiptRequest struct {
	Amount      int64              `json:"amount"`
	PaymentType domain.PaymentType `json:"payment_type"`
	Description string             `json:"description,omitempty"`
	TotalAmount *int64             `json:"total_amount,omitempty"`
}

// ImportContract - договор для массового импорта истории
type ImportContract struct {
	CarID        uuid.UUID          `json:"car_id"`
	Client       domain.Client      `json:"client"`
	Rent         domain.RentPeriod  `json:"rent"`
	Package      domain.RentPackage `json:"package"`
	StartMileage int64              `json:"start_mileage_reading"`
	EndMileage   int64              `json:"end_mileage_reading"`
	TotalAmount  int64              `json:"total_amount"`
	Paid         int64              `json:"paid"`
	PaymentType  domain.PaymentType `json:"payment_type,omitempty"`
}

// ContractDetail - договор с транзакциями и суммой платежей
type ContractDetail struct {
	Contract     *domain.Contract      `json:"contract"`
	Transactions []*domain.Transaction `json:"transactions"`
	PaidTotal    int64                 `json:"paid_total"`
}

// Service содержит бизнес-логику договоров аренды
type Service struct {
	contractRepo    repository.ContractRepository
	transactionRepo repository.TransactionRepository
	ticketRepo      repository.TicketRepository
	blacklistRepo   repository.BlacklistRepository
	vehicleRepo     repository.VehicleRepository
	serialRepo      repository.SerialRepository
	ownerRepo       repository.OwnerRepository
	provider        payment.Provider
	oilThresholdKm  int64
	logger          logger.Logger
}

// NewService создает новый экземпляр ContractService
func NewService(
	contractRepo repository.ContractRepository,
	transactionRepo repository.TransactionRepository,
	ticketRepo repository.TicketRepository,
	blacklistRepo repository.BlacklistRepository,
	vehicleRepo repository.VehicleRepository,
	serialRepo repository.SerialRepository,
	ownerRepo repository.OwnerRepository,
	provider payment.Provider,
	oilThresholdKm int64,
	logger logger.Logger,
) *Service {
	return &Service{
		contractRepo:    contractRepo,
		transactionRepo: transactionRepo,
		ticketRepo:      ticketRepo,
		blacklistRepo:   blacklistRepo,
		vehicleRepo:     vehicleRepo,
		serialRepo:      serialRepo,
		ownerRepo:       ownerRepo,
		provider:        provider,
		oilThresholdKm:  oilThresholdKm,
		logger:          logger,
	}
}

// nextSerial выдает следующий серийный номер в области владельца
func (s *Service) nextSerial(ctx context.Context, ownerID uuid.UUID, scope domain.SerialScope) (string, error) {
	n, err := s.serialRepo.Next(ctx, ownerID, scope)
	if err != nil {
		return "", fmt.Errorf("failed to get next serial: %w", err)
	}
	return domain.FormatSerial(n), nil
}

// CreateContract заключает договор аренды. Эффекты создаются по шагам:
// договор, кассовая транзакция, перевод автомобиля в rented, привязка
// брони. Неудача любого шага компенсирует уже созданные эффекты.
func (s *Service) CreateContract(ctx context.Context, req *CreateContractRequest) (*CreateResult, error) {
	s.logger.Info("Creating contract", map[string]interface{}{
		"owner_id": req.OwnerID,
		"car_id":   req.CarID,
	})

	vehicle, err := s.vehicleRepo.GetByID(ctx, req.CarID)
	if err != nil {
		return nil, err
	}
	if vehicle.OwnerID != req.OwnerID {
		return nil, domain.ErrNotOwner
	}
	if vehicle.Status != domain.VehicleAvailable {
		return nil, domain.ErrVehicleRented
	}

	// Проверка черного списка до любых побочных эффектов
	if !req.OverrideBlacklist && req.Client.Passport.IDNo != "" {
		entry, err := s.blacklistRepo.GetByPassport(ctx, req.OwnerID, req.Client.Passport.IDNo)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("failed to check blacklist: %w", err)
		}
		if entry != nil {
			s.logger.Warn("Client is blacklisted", map[string]interface{}{
				"owner_id":    req.OwnerID,
				"passport_id": req.Client.Passport.IDNo,
			})
			return &CreateResult{Case: CaseBlacklisted, Blacklist: entry}, nil
		}
	}

	serial, err := s.nextSerial(ctx, req.OwnerID, domain.SerialScopeContract)
	if err != nil {
		return nil, err
	}

	startMileage := req.StartMileage
	if startMileage == 0 {
		startMileage = vehicle.Mileage
	}

	paid := int64(0)
	if req.Amount > 0 && (req.PaymentType == domain.PaymentCash || req.PaymentType == domain.PaymentBank) {
		paid = req.Amount
	}

	contract := &domain.Contract{
		OwnerID:             req.OwnerID,
		CarID:               req.CarID,
		MemberID:            req.MemberID,
		TicketID:            req.TicketID,
		Client:              req.Client,
		Rent:                req.Rent,
		IDDocumentURL:       req.IDDocumentURL,
		Status:              domain.ContractActive,
		Package:             req.Package,
		StartMileageReading: startMileage,
		TotalAmount:         req.TotalAmount,
		Paid:                paid,
		Balance:             req.TotalAmount - paid,
		SerialNumber:        serial,
	}

	if err := contract.Validate(); err != nil {
		return nil, err
	}

	if err := s.contractRepo.Create(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to create contract: %w", err)
	}

	// Первый платеж наличными или банком фиксируется сразу завершенной
	// транзакцией; онлайн-оплата идет через платежную ссылку отдельно
	var trx *domain.Transaction
	if paid > 0 {
		trx, err = s.appendEntry(ctx, contract, req.PaymentType, req.Amount, 0, "")
		if err != nil {
			s.compensateCreate(ctx, contract, nil, false)
			return nil, err
		}
	}

	if err := s.vehicleRepo.MarkRented(ctx, req.CarID, startMileage); err != nil {
		s.compensateCreate(ctx, contract, trx, false)
		return nil, err
	}

	if req.TicketID != nil {
		if err := s.ticketRepo.LinkContract(ctx, *req.TicketID, contract.ID); err != nil {
			s.compensateCreate(ctx, contract, trx, true)
			return nil, fmt.Errorf("failed to link ticket: %w", err)
		}
	}

	s.logger.Info("Contract created", map[string]interface{}{
		"contract_id":   contract.ID,
		"serial_number": contract.SerialNumber,
	})

	return &CreateResult{Case: CaseCreated, Contract: contract}, nil
}

// compensateCreate откатывает эффекты неудачного создания договора.
// Ошибки компенсации только логируются: исходная ошибка важнее.
func (s *Service) compensateCreate(ctx context.Context, contract *domain.Contract, trx *domain.Transaction, revertVehicle bool) {
	if revertVehicle {
		if err := s.vehicleRepo.Release(ctx, contract.CarID, contract.StartMileageReading, false); err != nil {
			s.logger.Error("Compensation failed: release vehicle", map[string]interface{}{
				"contract_id": contract.ID,
				"car_id":      contract.CarID,
				"error":       err.Error(),
			})
		}
	}
	if trx != nil {
		if err := s.transactionRepo.Delete(ctx, trx.ID); err != nil {
			s.logger.Error("Compensation failed: delete transaction", map[string]interface{}{
				"transaction_id": trx.ID,
				"error":          err.Error(),
			})
		}
	}
	if err := s.contractRepo.Delete(ctx, contract.ID); err != nil {
		s.logger.Error("Compensation failed: delete contract", map[string]interface{}{
			"contract_id": contract.ID,
			"error":       err.Error(),
		})
	}
}

// appendEntry создает завершенную транзакцию по договору
func (s *Service) appendEntry(ctx context.Context, contract *domain.Contract, paymentType domain.PaymentType, amount, vat int64, description string) (*domain.Transaction, error) {
	serial, err := s.nextSerial(ctx, contract.OwnerID, domain.SerialScopeTransaction)
	if err != nil {
		return nil, err
	}

	trx := &domain.Transaction{
		OwnerID:      contract.OwnerID,
		CarID:        &contract.CarID,
		ContractID:   &contract.ID,
		Type:         paymentType,
		Amount:       amount,
		VAT:          vat,
		IsCompleted:  true,
		Description:  description,
		SerialNumber: serial,
	}

	if err := trx.Validate(); err != nil {
		return nil, err
	}

	if err := s.transactionRepo.Create(ctx, trx); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	return trx, nil
}

// getOwned возвращает договор владельца или ErrContractNotFound:
// чужие договоры неотличимы от несуществующих
func (s *Service) getOwned(ctx context.Context, ownerID, contractID uuid.UUID) (*domain.Contract, error) {
	contract, err := s.contractRepo.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract.OwnerID != ownerID {
		return nil, domain.ErrContractNotFound
	}
	return contract, nil
}

// GetContract возвращает договор с транзакциями и суммой платежей
func (s *Service) GetContract(ctx context.Context, ownerID, contractID uuid.UUID) (*ContractDetail, error) {
	contract, err := s.getOwned(ctx, ownerID, contractID)
	if err != nil {
		return nil, err
	}

	transactions, err := s.ListPayments(ctx, ownerID, contractID)
	if err != nil {
		return nil, err
	}

	var paidTotal int64
	for _, trx := range transactions {
		paidTotal += trx.SignedAmount()
	}

	if car, err := s.vehicleRepo.GetByID(ctx, contract.CarID); err == nil {
		contract.Car = car
	}

	return &ContractDetail{
		Contract:     contract,
		Transactions: transactions,
		PaidTotal:    paidTotal,
	}, nil
}

// ListContracts возвращает все договоры владельца
func (s *Service) ListContracts(ctx context.Context, ownerID uuid.UUID) ([]*domain.Contract, error) {
	return s.contractRepo.ListByOwner(ctx, ownerID)
}

// EditContract частично обновляет договор. Запись обновляется только
// когда переданные поля действительно отличаются от текущих: повтор
// тех же значений - ErrNoChanges без записи в БД.
func (s *Service) EditContract(ctx context.Context, ownerID, contractID uuid.UUID, req *EditContractRequest) (*domain.Contract, error) {
	contract, err := s.getOwned(ctx, ownerID, contractID)
	if err != nil {
		return nil, err
	}
	if req.CarID != uuid.Nil && req.CarID != contract.CarID {
		return nil, domain.ErrContractNotFound
	}

	changed := false

	if req.Client != nil && !reflect.DeepEqual(*req.Client, contract.Client) {
		contract.Client = *req.Client
		changed = true
	}
	if req.Rent != nil && !reflect.DeepEqual(*req.Rent, contract.Rent) {
		contract.Rent = *req.Rent
		changed = true
	}
	if req.ModifiedDropOut != nil &&
		(contract.Rent.ModifiedDropOut == nil || !contract.Rent.ModifiedDropOut.Equal(*req.ModifiedDropOut)) {
		contract.Rent.ModifiedDropOut = req.ModifiedDropOut
		changed = true
	}
	if req.Package != nil && *req.Package != contract.Package {
		contract.Package = *req.Package
		changed = true
	}
	if req.IDDocumentURL != nil && *req.IDDocumentURL != contract.IDDocumentURL {
		contract.IDDocumentURL = *req.IDDocumentURL
		changed = true
	}
	if req.AllowedKm != nil && *req.AllowedKm != contract.Rent.AllowedKm {
		contract.Rent.AllowedKm = *req.AllowedKm
		changed = true
	}
	if req.TotalAmount != nil && *req.TotalAmount != contract.TotalAmount {
		contract.TotalAmount = *req.TotalAmount
		contract.Balance = contract.TotalAmount - contract.Paid
		changed = true
	}

	if !changed {
		return nil, domain.ErrNoChanges
	}

	if err := s.contractRepo.Update(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to update contract: %w", err)
	}

	return contract, nil
}

// EndContract штатно завершает договор: фиксирует расчет, переводит
// статус в ended и возвращает автомобиль в парк
func (s *Service) EndContract(ctx context.Context, ownerID, contractID uuid.UUID, req *EndContractRequest) (*domain.Contract, error) {
	contract, err := s.getOwned(ctx, ownerID, contractID)
	if err != nil {
		return nil, err
	}

	// Условный переход: если договор уже не active, его нет
	if err := s.contractRepo.SetStatus(ctx, contractID, ownerID, domain.ContractActive, domain.ContractEnded); err != nil {
		return nil, err
	}

	// Итоговый расчет: клиент доплачивает или получает возврат
	if req.SettlementAmount > 0 {
		paymentType := req.PaymentType
		if paymentType == "" {
			paymentType = domain.PaymentCash
		}
		if _, err := s.appendEntry(ctx, contract, paymentType, req.SettlementAmount, 0, "Final settlement"); err != nil {
			return nil, err
		}
	} else if req.SettlementAmount < 0 {
		if _, err := s.appendEntry(ctx, contract, domain.PaymentRefund, -req.SettlementAmount, 0, "Final settlement refund"); err != nil {
			return nil, err
		}
	}

	contract.Status = domain.ContractEnded
	contract.EndMileageReading = req.EndMileage

	paid, err := s.transactionRepo.SumByContract(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum transactions: %w", err)
	}
	contract.Paid = paid
	contract.Balance = contract.TotalAmount - paid

	if err := s.contractRepo.Update(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to update contract: %w", err)
	}

	if err := s.releaseVehicle(ctx, contract.CarID, req.EndMileage); err != nil {
		return nil, err
	}

	s.logger.Info("Contract ended", map[string]interface{}{
		"contract_id": contractID,
		"end_mileage": req.EndMileage,
	})

	return contract, nil
}

// releaseVehicle возвращает автомобиль в available с проверкой
// порога замены масла
func (s *Service) releaseVehicle(ctx context.Context, carID uuid.UUID, endMileage int64) error {
	vehicle, err := s.vehicleRepo.GetByID(ctx, carID)
	if err != nil {
		return err
	}

	oilChange := vehicle.OilChangeDue(endMileage, s.oilThresholdKm)
	if err := s.vehicleRepo.Release(ctx, carID, endMileage, oilChange); err != nil {
		return fmt.Errorf("failed to release vehicle: %w", err)
	}

	return nil
}

// CancelContract расторгает договор с возвратом платежей клиенту.
// Онлайн-платежи возвращаются через провайдера, наличные и банковские
// оформляются снятием из кассы. Договор с активной онлайн-бронью
// расторгать нельзя - сначала отменяется бронь.
func (s *Service) CancelContract(ctx context.Context, ownerID, contractID uuid.UUID) (*CancelResult, error) {
	contract, err := s.getOwned(ctx, ownerID, contractID)
	if err != nil {
		return nil, err
	}

	if contract.TicketID != nil {
		ticket, err := s.ticketRepo.GetByContract(ctx, contractID)
		if err != nil && !errors.Is(err, domain.ErrTicketNotFound) {
			return nil, fmt.Errorf("failed to check ticket: %w", err)
		}
		if ticket != nil {
			return &CancelResult{Case: CaseBookedOnline, Contract: contract}, nil
		}
	}

	if err := s.contractRepo.SetStatus(ctx, contractID, ownerID, domain.ContractActive, domain.ContractTerminated); err != nil {
		return nil, err
	}

	entries, err := s.transactionRepo.ListByContract(ctx, contractID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	owner, err := s.ownerRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result := &CancelResult{Case: CaseCancelled}

	for _, entry := range entries {
		switch entry.Type {
		case domain.PaymentOnline:
			// Возврат через провайдера; при неудаче деньги выдаются
			// наличными и фиксируются снятием из кассы
			err := s.provider.Refund(ctx, owner.Payment, entry.PaymentID, entry.Amount, owner.Currency)
			if err != nil {
				s.logger.Error("Provider refund failed", map[string]interface{}{
					"contract_id":    contractID,
					"transaction_id": entry.ID,
					"error":          err.Error(),
				})
				if _, err := s.appendEntry(ctx, contract, domain.PaymentWithdraw, entry.Amount, entry.VAT, "Cancellation payout"); err != nil {
					return nil, err
				}
				result.CashTotal += entry.Amount
				result.FailedRefunds++
				continue
			}

			if _, err := s.appendEntry(ctx, contract, domain.PaymentRefund, entry.Amount, entry.VAT, "Cancellation refund"); err != nil {
				return nil, err
			}
			result.BankTotal += entry.Amount

		case domain.PaymentCash, domain.PaymentBank:
			if _, err := s.appendEntry(ctx, contract, domain.PaymentWithdraw, entry.Amount, entry.VAT, "Cancellation payout"); err != nil {
				return nil, err
			}
			result.CashTotal += entry.Amount
		}
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, contract.CarID)
	if err != nil {
		return nil, err
	}
	if err := s.vehicleRepo.Release(ctx, contract.CarID, vehicle.Mileage, false); err != nil {
		return nil, fmt.Errorf("failed to release vehicle: %w", err)
	}

	contract.Status = domain.ContractTerminated
	result.Contract = contract

	s.logger.Info("Contract cancelled", map[string]interface{}{
		"contract_id":    contractID,
		"bank_total":     result.BankTotal,
		"cash_total":     result.CashTotal,
		"failed_refunds": result.FailedRefunds,
	})

	return result, nil
}

// CashReceipt вносит платеж по действующему договору
func (s *Service) CashReceipt(ctx context.Context, ownerID, contractID uuid.UUID, req *CashReceiptRequest) (*domain.Transaction, error) {
	contract, err := s.getOwned(ctx, ownerID, contractID)
	if err != nil {
		return nil, err
	}
	if !contract.IsActive() {
		return nil, domain.ErrContractNotActive
	}

	if req.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if req.PaymentType != domain.PaymentCash && req.PaymentType != domain.PaymentBank {
		return nil, domain.ErrInvalidPaymentType
	}

	trx, err := s.appendEntry(ctx, contract, req.PaymentType, req.Amount, 0, req.Description)
	if err != nil {
		return nil, err
	}

	if req.TotalAmount != nil {
		contract.TotalAmount = *req.TotalAmount
	}

	paid, err := s.transactionRepo.SumByContract(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum transactions: %w", err)
	}

	if err := s.contractRepo.UpdateBalance(ctx, contractID, contract.TotalAmount, paid, contract.TotalAmount-paid); err != nil {
		return nil, err
	}

	return trx, nil
}

// ListPayments возвращает завершенные платежи по договору, включая
// транзакцию брони, из которой договор был создан
func (s *Service) ListPayments(ctx context.Context, ownerID, contractID uuid.UUID) ([]*domain.Transaction, error) {
	contract, err := s.getOwned(ctx, ownerID, contractID)
	if err != nil {
		return nil, err
	}

	transactions, err := s.transactionRepo.ListByContract(ctx, contractID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	if contract.TicketID != nil {
		ticket, err := s.ticketRepo.GetByContract(ctx, contractID)
		if err == nil && ticket.TransactionID != nil {
			ticketTrx, err := s.transactionRepo.GetByID(ctx, *ticket.TransactionID)
			if err == nil && ticketTrx.IsCompleted {
				transactions = append(transactions, ticketTrx)
			}
		} else if err != nil && !errors.Is(err, domain.ErrTicketNotFound) {
			return nil, fmt.Errorf("failed to load ticket: %w", err)
		}
	}

	return transactions, nil
}

// ImportContracts массово импортирует завершенные договоры с их
// платежами. Неизвестный или чужой автомобиль отклоняет весь пакет.
func (s *Service) ImportContracts(ctx context.Context, ownerID uuid.UUID, items []ImportContract) ([]*domain.Contract, error) {
	if len(items) == 0 {
		return nil, domain.ErrBadRequest
	}

	contracts := make([]*domain.Contract, 0, len(items))
	transactions := make([]*domain.Transaction, 0, len(items))

	for _, item := range items {
		vehicle, err := s.vehicleRepo.GetByID(ctx, item.CarID)
		if err != nil {
			return nil, err
		}
		if vehicle.OwnerID != ownerID {
			return nil, domain.ErrNotOwner
		}

		serial, err := s.nextSerial(ctx, ownerID, domain.SerialScopeContract)
		if err != nil {
			return nil, err
		}

		contract := &domain.Contract{
			ID:                  uuid.New(),
			OwnerID:             ownerID,
			CarID:               item.CarID,
			Client:              item.Client,
			Rent:                item.Rent,
			Status:              domain.ContractEnded,
			Package:             item.Package,
			StartMileageReading: item.StartMileage,
			EndMileageReading:   item.EndMileage,
			TotalAmount:         item.TotalAmount,
			Paid:                item.Paid,
			Balance:             item.TotalAmount - item.Paid,
			SerialNumber:        serial,
		}
		if err := contract.Validate(); err != nil {
			return nil, err
		}
		contracts = append(contracts, contract)

		if item.Paid > 0 {
			paymentType := item.PaymentType
			if paymentType == "" {
				paymentType = domain.PaymentCash
			}

			trxSerial, err := s.nextSerial(ctx, ownerID, domain.SerialScopeTransaction)
			if err != nil {
				return nil, err
			}

			trx := &domain.Transaction{
				OwnerID:      ownerID,
				CarID:        &contract.CarID,
				ContractID:   &contract.ID,
				Type:         paymentType,
				Amount:       item.Paid,
				IsCompleted:  true,
				Description:  "Imported payment",
				SerialNumber: trxSerial,
			}
			if err := trx.Validate(); err != nil {
				return nil, err
			}
			transactions = append(transactions, trx)
		}
	}

	if err := s.contractRepo.CreateBatch(ctx, contracts, transactions); err != nil {
		return nil, fmt.Errorf("failed to import contracts: %w", err)
	}

	s.logger.Info("Contracts imported", map[string]interface{}{
		"owner_id": ownerID,
		"count":    len(contracts),
	})

	return contracts, nil
}
