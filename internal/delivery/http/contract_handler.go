package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/frontandrew/rental/internal/delivery/http/middleware"
	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/pkg/logger"
	"github.com/frontandrew/rental/internal/usecase/contract"
	"github.com/google/uuid"
)

// ContractService определяет интерфейс для сервиса договоров
type ContractService interface {
	CreateContract(ctx context.Context, req *contract.CreateContractRequest) (*contract.CreateResult, error)
	GetContract(ctx context.Context, ownerID, contractID uuid.UUID) (*contract.ContractDetail, error)
	ListContracts(ctx context.Context, ownerID uuid.UUID) ([]*domain.Contract, error)
	EditContract(ctx context.Context, ownerID, contractID uuid.UUID, req *contract.EditContractRequest) (*domain.Contract, error)
	EndContract(ctx context.Context, ownerID, contractID uuid.UUID, req *contract.EndContractRequest) (*domain.Contract, error)
	CancelContract(ctx context.Context, ownerID, contractID uuid.UUID) (*contract.CancelResult, error)
	CashReceipt(ctx context.Context, ownerID, contractID uuid.UUID, req *contract.CashReceiptRequest) (*domain.Transaction, error)
	ListPayments(ctx context.Context, ownerID, contractID uuid.UUID) ([]*domain.Transaction, error)
	ImportContracts(ctx context.Context, ownerID uuid.UUID, items []contract.ImportContract) ([]*domain.Contract, error)
}

// ContractHandler обрабатывает запросы связанные с договорами аренды
type ContractHandler struct {
	contractService ContractService
	logger          logger.Logger
}

// NewContractHandler создает новый handler
func NewContractHandler(contractService ContractService, logger logger.Logger) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
		logger:          logger,
	}
}

// CreateContract заключает договор аренды. Клиент из черного списка -
// не ошибка: возвращается исход blacklisted с записью списка.
// POST /api/v1/contracts
func (h *ContractHandler) CreateContract(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req contract.CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.OwnerID = claims.OwnerID
	req.MemberID = claims.MemberID

	result, err := h.contractService.CreateContract(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrVehicleNotFound), errors.Is(err, domain.ErrNotOwner):
			respondError(w, http.StatusNotFound, "Vehicle not found")
		case errors.Is(err, domain.ErrVehicleRented):
			respondError(w, http.StatusConflict, "Vehicle is rented")
		case errors.Is(err, domain.ErrTicketNotFound):
			respondError(w, http.StatusNotFound, "Ticket not found")
		case errors.Is(err, domain.ErrInvalidContractData), errors.Is(err, domain.ErrInvalidPaymentType):
			respondError(w, http.StatusBadRequest, "Invalid contract data")
		default:
			h.logger.Error("Failed to create contract", map[string]interface{}{
				"error": err.Error(),
			})
			respondError(w, http.StatusInternalServerError, "Failed to create contract")
		}
		return
	}

	respondData(w, http.StatusCreated, result)
}

// ListContracts возвращает все договоры владельца
// GET /api/v1/contracts
func (h *ContractHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	contracts, err := h.contractService.ListContracts(r.Context(), claims.OwnerID)
	if err != nil {
		h.logger.Error("Failed to list contracts", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to list contracts")
		return
	}

	respondData(w, http.StatusOK, contracts)
}

// GetContract возвращает договор с его транзакциями
// GET /api/v1/contracts/{id}
func (h *ContractHandler) GetContract(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	contractID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid contract ID")
		return
	}

	detail, err := h.contractService.GetContract(r.Context(), claims.OwnerID, contractID)
	if err != nil {
		if errors.Is(err, domain.ErrContractNotFound) {
			respondError(w, http.StatusNotFound, "Contract not found")
			return
		}
		h.logger.Error("Failed to get contract", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to get contract")
		return
	}

	respondData(w, http.StatusOK, detail)
}

// EditContract частично изменяет договор
// PATCH /api/v1/contracts/{id}
func (h *ContractHandler) EditContract(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	contractID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid contract ID")
		return
	}

	var req contract.EditContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.contractService.EditContract(r.Context(), claims.OwnerID, contractID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrContractNotFound):
			respondError(w, http.StatusNotFound, "Contract not found")
		case errors.Is(err, domain.ErrContractNotActive):
			respondError(w, http.StatusConflict, "Contract is not active")
		case errors.Is(err, domain.ErrInvalidContractData):
			respondError(w, http.StatusBadRequest, "Invalid contract data")
		default:
			h.logger.Error("Failed to edit contract", map[string]interface{}{
				"error": err.Error(),
			})
			respondError(w, http.StatusInternalServerError, "Failed to edit contract")
		}
		return
	}

	respondData(w, http.StatusOK, updated)
}

// EndContract завершает договор с финальным расчетом
// POST /api/v1/contracts/{id}/end
func (h *ContractHandler) EndContract(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	contractID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid contract ID")
		return
	}

	var req contract.EndContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ended, err := h.contractService.EndContract(r.Context(), claims.OwnerID, contractID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrContractNotFound):
			respondError(w, http.StatusNotFound, "Contract not found")
		case errors.Is(err, domain.ErrInvalidPaymentType), errors.Is(err, domain.ErrInvalidContractData):
			respondError(w, http.StatusBadRequest, "Invalid settlement data")
		default:
			h.logger.Error("Failed to end contract", map[string]interface{}{
				"error": err.Error(),
			})
			respondError(w, http.StatusInternalServerError, "Failed to end contract")
		}
		return
	}

	respondData(w, http.StatusOK, ended)
}

// CancelContract расторгает договор с возвратом платежей
// POST /api/v1/contracts/{id}/cancel
func (h *ContractHandler) CancelContract(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	contractID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid contract ID")
		return
	}

	result, err := h.contractService.CancelContract(r.Context(), claims.OwnerID, contractID)
	if err != nil {
		if errors.Is(err, domain.ErrContractNotFound) {
			respondError(w, http.StatusNotFound, "Contract not found")
			return
		}
		h.logger.Error("Failed to cancel contract", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to cancel contract")
		return
	}

	respondData(w, http.StatusOK, result)
}

// CashReceipt вносит платеж по активному договору
// POST /api/v1/contracts/{id}/payments
func (h *ContractHandler) CashReceipt(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	contractID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid contract ID")
		return
	}

	var req contract.CashReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	trx, err := h.contractService.CashReceipt(r.Context(), claims.OwnerID, contractID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrContractNotFound):
			respondError(w, http.StatusNotFound, "Contract not found")
		case errors.Is(err, domain.ErrContractNotActive):
			respondError(w, http.StatusConflict, "Contract is not active")
		case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidPaymentType):
			respondError(w, http.StatusBadRequest, "Invalid payment data")
		default:
			h.logger.Error("Failed to add payment", map[string]interface{}{
				"error": err.Error(),
			})
			respondError(w, http.StatusInternalServerError, "Failed to add payment")
		}
		return
	}

	respondData(w, http.StatusCreated, trx)
}

// ListPayments возвращает подтвержденные платежи договора
// GET /api/v1/contracts/{id}/payments
func (h *ContractHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	contractID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid contract ID")
		return
	}

	payments, err := h.contractService.ListPayments(r.Context(), claims.OwnerID, contractID)
	if err != nil {
		if errors.Is(err, domain.ErrContractNotFound) {
			respondError(w, http.StatusNotFound, "Contract not found")
			return
		}
		h.logger.Error("Failed to list payments", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to list payments")
		return
	}

	respondData(w, http.StatusOK, payments)
}

// ImportContracts выполняет массовый импорт истории договоров
// POST /api/v1/contracts/import
func (h *ContractHandler) ImportContracts(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var items []contract.ImportContract
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	contracts, err := h.contractService.ImportContracts(r.Context(), claims.OwnerID, items)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBadRequest):
			respondError(w, http.StatusBadRequest, "Empty import")
		case errors.Is(err, domain.ErrVehicleNotFound), errors.Is(err, domain.ErrNotOwner):
			respondError(w, http.StatusNotFound, "Vehicle not found")
		default:
			h.logger.Error("Failed to import contracts", map[string]interface{}{
				"error": err.Error(),
			})
			respondError(w, http.StatusInternalServerError, "Failed to import contracts")
		}
		return
	}

	respondData(w, http.StatusCreated, contracts)
}
