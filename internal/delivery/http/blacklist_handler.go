package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/frontandrew/rental/internal/delivery/http/middleware"
	"github.com/frontandrew/rental/internal/pkg/logger"
	"github.com/frontandrew/rental/internal/usecase/blacklist"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// BlacklistService определяет интерфейс для сервиса черного списка
type BlacklistService interface {
	Add(ctx context.Context, ownerID uuid.UUID, passportID, reason string) (*blacklist.AddResult, error)
	Remove(ctx context.Context, ownerID uuid.UUID, passportID string) (int64, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]*blacklist.ListItem, error)
}

// BlacklistHandler обрабатывает запросы черного списка клиентов
type BlacklistHandler struct {
	blacklistService BlacklistService
	logger           logger.Logger
}

// NewBlacklistHandler создает новый handler
func NewBlacklistHandler(blacklistService BlacklistService, logger logger.Logger) *BlacklistHandler {
	return &BlacklistHandler{
		blacklistService: blacklistService,
		logger:           logger,
	}
}

// addRequest - тело запроса на добавление в черный список
type addRequest struct {
	PassportID string `json:"id_no"`
	Reason     string `json:"reason,omitempty"`
}

// Add добавляет клиента в черный список. Клиент без договоров -
// исход not_found, а не ошибка.
// POST /api/v1/blacklist
func (h *BlacklistHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PassportID == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.blacklistService.Add(r.Context(), claims.OwnerID, req.PassportID, req.Reason)
	if err != nil {
		h.logger.Error("Failed to add to blacklist", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to add to blacklist")
		return
	}

	respondData(w, http.StatusCreated, result)
}

// Remove удаляет клиента из черного списка
// DELETE /api/v1/blacklist/{passportID}
func (h *BlacklistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	passportID := chi.URLParam(r, "passportID")
	if passportID == "" {
		respondError(w, http.StatusBadRequest, "Invalid passport ID")
		return
	}

	removed, err := h.blacklistService.Remove(r.Context(), claims.OwnerID, passportID)
	if err != nil {
		h.logger.Error("Failed to remove from blacklist", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to remove from blacklist")
		return
	}

	respondData(w, http.StatusOK, map[string]int64{"removed": removed})
}

// List возвращает черный список владельца с данными клиентов
// GET /api/v1/blacklist
func (h *BlacklistHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	items, err := h.blacklistService.List(r.Context(), claims.OwnerID)
	if err != nil {
		h.logger.Error("Failed to list blacklist", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to list blacklist")
		return
	}

	respondData(w, http.StatusOK, items)
}
