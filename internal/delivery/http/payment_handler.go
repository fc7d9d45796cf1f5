package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/frontandrew/rental/internal/delivery/http/middleware"
	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/pkg/logger"
	"github.com/frontandrew/rental/internal/usecase/paymentflow"
	"github.com/google/uuid"
)

// PaymentService определяет интерфейс для сервиса платежей
type PaymentService interface {
	CreatePaymentLink(ctx context.Context, ownerID, contractID uuid.UUID, amount int64) (*paymentflow.PaymentLink, error)
	HandlePaymentSucceeded(ctx context.Context, paymentID, paymentIntent string) error
	PaymentStatus(ctx context.Context, ownerID, transactionID uuid.UUID) (*paymentflow.Status, error)
}

// PaymentHandler обрабатывает запросы платежных ссылок и webhook провайдера
type PaymentHandler struct {
	paymentService PaymentService
	logger         logger.Logger
}

// NewPaymentHandler создает новый handler
func NewPaymentHandler(paymentService PaymentService, logger logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// paymentLinkRequest - тело запроса на платежную ссылку
type paymentLinkRequest struct {
	Amount int64 `json:"amount"`
}

// CreatePaymentLink создает платежную ссылку по активному договору
// POST /api/v1/contracts/{id}/payment-link
func (h *PaymentHandler) CreatePaymentLink(w http.ResponseWriter, r *http.Request) {
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

	var req paymentLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	link, err := h.paymentService.CreatePaymentLink(r.Context(), claims.OwnerID, contractID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrContractNotFound):
			respondError(w, http.StatusNotFound, "Contract not found")
		case errors.Is(err, domain.ErrContractNotActive):
			respondError(w, http.StatusConflict, "Contract is not active")
		case errors.Is(err, domain.ErrInvalidAmount):
			respondError(w, http.StatusBadRequest, "Amount must be positive")
		case errors.Is(err, domain.ErrInvalidPaymentType):
			respondError(w, http.StatusConflict, "Online payments are not enabled")
		default:
			h.logger.Error("Failed to create payment link", map[string]interface{}{
				"error": err.Error(),
			})
			respondError(w, http.StatusInternalServerError, "Failed to create payment link")
		}
		return
	}

	respondData(w, http.StatusCreated, link)
}

// webhookPayload - уведомление платежного провайдера
type webhookPayload struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PaymentIntent string `json:"payment_intent,omitempty"`
}

// Webhook обрабатывает уведомление провайдера об изменении платежа.
// Провайдер ретраит доставку, поэтому ответ всегда 200 для известных
// платежей и идемпотентен при повторах.
// POST /api/v1/public/payments/webhook
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ID == "" {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	// Интересуют только успешные оплаты
	if !strings.EqualFold(payload.Status, "CAPTURED") {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	if err := h.paymentService.HandlePaymentSucceeded(r.Context(), payload.ID, payload.PaymentIntent); err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			respondError(w, http.StatusNotFound, "Unknown payment")
			return
		}
		h.logger.Error("Failed to process payment webhook", map[string]interface{}{
			"payment_id": payload.ID,
			"error":      err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to process webhook")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}

// PaymentStatus возвращает состояние платежа для опроса с фронта
// GET /api/v1/payments/{id}/status
func (h *PaymentHandler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	transactionID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	status, err := h.paymentService.PaymentStatus(r.Context(), claims.OwnerID, transactionID)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			respondError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		h.logger.Error("Failed to get payment status", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to get payment status")
		return
	}

	respondData(w, http.StatusOK, status)
}
