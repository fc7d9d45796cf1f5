package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/frontandrew/rental/internal/delivery/http/middleware"
	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/pkg/logger"
	"github.com/frontandrew/rental/internal/usecase/member"
	"github.com/google/uuid"
)

// MemberService определяет интерфейс для сервиса субаккаунтов
type MemberService interface {
	CreateMember(ctx context.Context, ownerID uuid.UUID, req *member.CreateMemberRequest) (*domain.Member, error)
	GetMember(ctx context.Context, ownerID, memberID uuid.UUID) (*domain.Member, error)
	ListMembers(ctx context.Context, ownerID uuid.UUID) ([]*domain.Member, error)
	UpdateMember(ctx context.Context, ownerID, memberID uuid.UUID, req *member.UpdateMemberRequest) (*domain.Member, error)
	DeleteMember(ctx context.Context, ownerID, memberID uuid.UUID) error
}

// MemberHandler обрабатывает запросы связанные с субаккаунтами
type MemberHandler struct {
	memberService MemberService
	logger        logger.Logger
}

// NewMemberHandler создает новый handler
func NewMemberHandler(memberService MemberService, logger logger.Logger) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
		logger:        logger,
	}
}

// CreateMember создает субаккаунт
// POST /api/v1/members
func (h *MemberHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req member.CreateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	m, err := h.memberService.CreateMember(r.Context(), claims.OwnerID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUsernameTaken):
			respondError(w, http.StatusConflict, "Username already taken")
		case errors.Is(err, domain.ErrInvalidPassword), errors.Is(err, domain.ErrInvalidMemberData):
			respondError(w, http.StatusBadRequest, "Invalid member data")
		default:
			h.logger.Error("Failed to create member", map[string]interface{}{
				"error": err.Error(),
			})
			respondError(w, http.StatusInternalServerError, "Failed to create member")
		}
		return
	}

	respondData(w, http.StatusCreated, m)
}

// ListMembers возвращает все субаккаунты владельца
// GET /api/v1/members
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	members, err := h.memberService.ListMembers(r.Context(), claims.OwnerID)
	if err != nil {
		h.logger.Error("Failed to list members", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to list members")
		return
	}

	respondData(w, http.StatusOK, members)
}

// GetMember возвращает субаккаунт по ID
// GET /api/v1/members/{id}
func (h *MemberHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	memberID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid member ID")
		return
	}

	m, err := h.memberService.GetMember(r.Context(), claims.OwnerID, memberID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			respondError(w, http.StatusNotFound, "Member not found")
			return
		}
		h.logger.Error("Failed to get member", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to get member")
		return
	}

	respondData(w, http.StatusOK, m)
}

// UpdateMember частично обновляет субаккаунт
// PATCH /api/v1/members/{id}
func (h *MemberHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	memberID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid member ID")
		return
	}

	var req member.UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	m, err := h.memberService.UpdateMember(r.Context(), claims.OwnerID, memberID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMemberNotFound):
			respondError(w, http.StatusNotFound, "Member not found")
		case errors.Is(err, domain.ErrUsernameTaken):
			respondError(w, http.StatusConflict, "Username already taken")
		case errors.Is(err, domain.ErrInvalidMemberData):
			respondError(w, http.StatusBadRequest, "Invalid member data")
		default:
			h.logger.Error("Failed to update member", map[string]interface{}{
				"error": err.Error(),
			})
			respondError(w, http.StatusInternalServerError, "Failed to update member")
		}
		return
	}

	respondData(w, http.StatusOK, m)
}

// DeleteMember удаляет субаккаунт
// DELETE /api/v1/members/{id}
func (h *MemberHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	memberID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid member ID")
		return
	}

	if err := h.memberService.DeleteMember(r.Context(), claims.OwnerID, memberID); err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			respondError(w, http.StatusNotFound, "Member not found")
			return
		}
		h.logger.Error("Failed to delete member", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to delete member")
		return
	}

	respondData(w, http.StatusOK, map[string]string{"status": "deleted"})
}
