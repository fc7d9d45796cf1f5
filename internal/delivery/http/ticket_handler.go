package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/frontandrew/rental/internal/delivery/http/middleware"
	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/pkg/logger"
	"github.com/frontandrew/rental/internal/usecase/ticket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// TicketService определяет интерфейс для сервиса онлайн-броней
type TicketService interface {
	CreateTicket(ctx context.Context, req *ticket.CreateTicketRequest) (*ticket.CreateResult, error)
	GetTicket(ctx context.Context, ownerID, ticketID uuid.UUID) (*domain.Ticket, error)
	ListOpen(ctx context.Context, ownerID uuid.UUID) ([]*domain.Ticket, error)
	CancelByOwner(ctx context.Context, ownerID, ticketID uuid.UUID) (*ticket.CancelResult, error)
	CancelByToken(ctx context.Context, token string) (*ticket.CancelResult, error)
}

// TicketHandler обрабатывает запросы связанные с онлайн-бронями
type TicketHandler struct {
	ticketService TicketService
	logger        logger.Logger
}

// NewTicketHandler создает новый handler
func NewTicketHandler(ticketService TicketService, logger logger.Logger) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
		logger:        logger,
	}
}

// CreateTicket бронирует автомобиль онлайн. Публичный endpoint:
// вызывается с витрины без аутентификации.
// POST /api/v1/public/tickets
func (h *TicketHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var req ticket.CreateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.ticketService.CreateTicket(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrVehicleNotFound), errors.Is(err, domain.ErrNotOwner):
			respondError(w, http.StatusNotFound, "Vehicle not found")
		case errors.Is(err, domain.ErrVehicleRented):
			respondError(w, http.StatusConflict, "Vehicle is not available for these dates")
		case errors.Is(err, domain.ErrInvalidTicketData), errors.Is(err, domain.ErrInvalidAmount):
			respondError(w, http.StatusBadRequest, "Invalid booking data")
		case errors.Is(err, domain.ErrInvalidPaymentType):
			respondError(w, http.StatusConflict, "Online payments are not enabled")
		default:
			h.logger.Error("Failed to create ticket", map[string]interface{}{
				"error": err.Error(),
			})
			respondError(w, http.StatusInternalServerError, "Failed to create booking")
		}
		return
	}

	respondData(w, http.StatusCreated, result)
}

// ListOpenTickets возвращает оплаченные брони владельца без договора
// GET /api/v1/tickets
func (h *TicketHandler) ListOpenTickets(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	tickets, err := h.ticketService.ListOpen(r.Context(), claims.OwnerID)
	if err != nil {
		h.logger.Error("Failed to list tickets", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to list tickets")
		return
	}

	respondData(w, http.StatusOK, tickets)
}

// GetTicket возвращает бронь владельца по ID
// GET /api/v1/tickets/{id}
func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ticketID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid ticket ID")
		return
	}

	t, err := h.ticketService.GetTicket(r.Context(), claims.OwnerID, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			respondError(w, http.StatusNotFound, "Ticket not found")
			return
		}
		h.logger.Error("Failed to get ticket", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to get ticket")
		return
	}

	respondData(w, http.StatusOK, t)
}

// CancelTicket отменяет бронь со стороны владельца
// DELETE /api/v1/tickets/{id}
func (h *TicketHandler) CancelTicket(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ticketID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid ticket ID")
		return
	}

	result, err := h.ticketService.CancelByOwner(r.Context(), claims.OwnerID, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			respondError(w, http.StatusNotFound, "Ticket not found")
			return
		}
		h.logger.Error("Failed to cancel ticket", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to cancel ticket")
		return
	}

	respondData(w, http.StatusOK, result)
}

// CancelByToken отменяет бронь по ссылке из письма клиента.
// Возвращает HTML страницу с результатом.
// GET /api/v1/public/tickets/cancel/{token}
func (h *TicketHandler) CancelByToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		respondCancelPage(w, http.StatusBadRequest, "Invalid cancellation link")
		return
	}

	result, err := h.ticketService.CancelByToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			respondCancelPage(w, http.StatusNotFound, "Booking not found or already cancelled")
			return
		}
		h.logger.Error("Failed to cancel ticket by token", map[string]interface{}{
			"error": err.Error(),
		})
		respondCancelPage(w, http.StatusInternalServerError, "Failed to cancel booking, please contact the rental office")
		return
	}

	switch result.Case {
	case ticket.CaseRefundFailed:
		respondCancelPage(w, http.StatusOK, "Booking cancelled. The refund could not be processed automatically, the rental office will contact you.")
	default:
		respondCancelPage(w, http.StatusOK, "Your booking has been cancelled. The refund will arrive within a few business days.")
	}
}

// respondCancelPage отправляет минимальную HTML страницу: по ссылке из
// письма приходят браузером, а не API клиентом
func respondCancelPage(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>Booking cancellation</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4rem;">
<h2>%s</h2>
</body>
</html>`, message)
}
