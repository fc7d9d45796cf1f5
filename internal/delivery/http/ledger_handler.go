package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/frontandrew/rental/internal/delivery/http/middleware"
	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/pkg/logger"
	"github.com/frontandrew/rental/internal/usecase/ledger"
	"github.com/google/uuid"
)

// LedgerService определяет интерфейс для сервиса кассовой книги
type LedgerService interface {
	AddExpense(ctx context.Context, ownerID uuid.UUID, req *ledger.AddExpenseRequest) (*domain.Transaction, error)
	AddWithdrawal(ctx context.Context, ownerID uuid.UUID, req *ledger.AddWithdrawalRequest) (*domain.Transaction, error)
	ListExpenses(ctx context.Context, ownerID uuid.UUID, category domain.ExpenseCategory) ([]*domain.Transaction, error)
	ListWithdrawals(ctx context.Context, ownerID uuid.UUID) ([]*domain.Transaction, error)
	ListPayments(ctx context.Context, ownerID uuid.UUID) ([]*domain.Transaction, error)
	CarEarnings(ctx context.Context, ownerID, carID uuid.UUID, from, to time.Time) (*ledger.CarEarnings, error)
	CapitalSummary(ctx context.Context, ownerID uuid.UUID) (*ledger.CapitalSummary, error)
}

// LedgerHandler обрабатывает запросы кассовой книги
type LedgerHandler struct {
	ledgerService LedgerService
	logger        logger.Logger
}

// NewLedgerHandler создает новый handler
func NewLedgerHandler(ledgerService LedgerService, logger logger.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// AddExpense создает расходную запись
// POST /api/v1/ledger/expenses
func (h *LedgerHandler) AddExpense(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ledger.AddExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	trx, err := h.ledgerService.AddExpense(r.Context(), claims.OwnerID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			respondError(w, http.StatusBadRequest, "Amount must be positive")
		case errors.Is(err, domain.ErrInvalidPaymentType):
			respondError(w, http.StatusBadRequest, "Invalid expense category")
		default:
			h.logger.Error("Failed to add expense", map[string]interface{}{
				"error": err.Error(),
			})
			respondError(w, http.StatusInternalServerError, "Failed to add expense")
		}
		return
	}

	respondData(w, http.StatusCreated, trx)
}

// ListExpenses возвращает расходы владельца
// GET /api/v1/ledger/expenses?category=...
func (h *LedgerHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	category := domain.ExpenseCategory(r.URL.Query().Get("category"))
	expenses, err := h.ledgerService.ListExpenses(r.Context(), claims.OwnerID, category)
	if err != nil {
		h.logger.Error("Failed to list expenses", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to list expenses")
		return
	}

	respondData(w, http.StatusOK, expenses)
}

// AddWithdrawal фиксирует снятие средств
// POST /api/v1/ledger/withdrawals
func (h *LedgerHandler) AddWithdrawal(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ledger.AddWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	trx, err := h.ledgerService.AddWithdrawal(r.Context(), claims.OwnerID, &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			respondError(w, http.StatusBadRequest, "Amount must be positive")
			return
		}
		h.logger.Error("Failed to add withdrawal", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to add withdrawal")
		return
	}

	respondData(w, http.StatusCreated, trx)
}

// ListWithdrawals возвращает снятия средств владельца
// GET /api/v1/ledger/withdrawals
func (h *LedgerHandler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	withdrawals, err := h.ledgerService.ListWithdrawals(r.Context(), claims.OwnerID)
	if err != nil {
		h.logger.Error("Failed to list withdrawals", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to list withdrawals")
		return
	}

	respondData(w, http.StatusOK, withdrawals)
}

// ListPayments возвращает входящие платежи владельца
// GET /api/v1/ledger/payments
func (h *LedgerHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	payments, err := h.ledgerService.ListPayments(r.Context(), claims.OwnerID)
	if err != nil {
		h.logger.Error("Failed to list payments", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to list payments")
		return
	}

	respondData(w, http.StatusOK, payments)
}

// CarEarnings возвращает заработок автомобиля за период
// GET /api/v1/ledger/earnings/{carID}?from=...&to=...
func (h *LedgerHandler) CarEarnings(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	carID, err := parseUUIDParam(r, "carID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid car ID")
		return
	}

	from, to, err := parseTimeWindow(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid time window")
		return
	}

	earnings, err := h.ledgerService.CarEarnings(r.Context(), claims.OwnerID, carID, from, to)
	if err != nil {
		if errors.Is(err, domain.ErrVehicleNotFound) || errors.Is(err, domain.ErrNotOwner) {
			respondError(w, http.StatusNotFound, "Vehicle not found")
			return
		}
		h.logger.Error("Failed to get car earnings", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to get earnings")
		return
	}

	respondData(w, http.StatusOK, earnings)
}

// CapitalSummary возвращает сводку по капиталу владельца
// GET /api/v1/ledger/capital
func (h *LedgerHandler) CapitalSummary(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	summary, err := h.ledgerService.CapitalSummary(r.Context(), claims.OwnerID)
	if err != nil {
		h.logger.Error("Failed to get capital summary", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to get capital summary")
		return
	}

	respondData(w, http.StatusOK, summary)
}
