package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/frontandrew/rental/internal/delivery/http/middleware"
	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/pkg/jwt"
	"github.com/frontandrew/rental/internal/pkg/logger"
	"github.com/frontandrew/rental/internal/usecase/auth"
	"github.com/google/uuid"
)

// AuthService определяет интерфейс для сервиса аутентификации
type AuthService interface {
	Register(ctx context.Context, req *auth.RegisterRequest) (*auth.AuthResponse, error)
	Login(ctx context.Context, req *auth.LoginRequest) (*auth.AuthResponse, error)
	LoginMember(ctx context.Context, req *auth.MemberLoginRequest) (*auth.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	GetOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Owner, error)
	SetPaymentCredentials(ctx context.Context, ownerID uuid.UUID, creds *domain.PaymentCredentials) error
}

// AuthHandler обрабатывает запросы аутентификации
type AuthHandler struct {
	authService AuthService
	logger      logger.Logger
}

// NewAuthHandler создает новый handler
func NewAuthHandler(authService AuthService, logger logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// refreshRequest - тело запросов refresh и logout
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register регистрирует нового владельца
// POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			respondError(w, http.StatusConflict, "Email already taken")
		case errors.Is(err, domain.ErrInvalidPassword):
			respondError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		case errors.Is(err, domain.ErrInvalidEmail), errors.Is(err, domain.ErrInvalidOwnerData):
			respondError(w, http.StatusBadRequest, "Invalid owner data")
		default:
			h.logger.Error("Failed to register owner", map[string]interface{}{
				"error": err.Error(),
			})
			respondError(w, http.StatusInternalServerError, "Failed to register")
		}
		return
	}

	respondData(w, http.StatusCreated, resp)
}

// Login аутентифицирует владельца
// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, domain.ErrOwnerInactive):
			respondError(w, http.StatusForbidden, "Account is inactive")
		default:
			h.logger.Error("Failed to login owner", map[string]interface{}{
				"error": err.Error(),
			})
			respondError(w, http.StatusInternalServerError, "Failed to login")
		}
		return
	}

	respondData(w, http.StatusOK, resp)
}

// LoginMember аутентифицирует субаккаунт
// POST /api/v1/auth/login/member
func (h *AuthHandler) LoginMember(w http.ResponseWriter, r *http.Request) {
	var req auth.MemberLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.authService.LoginMember(r.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.logger.Error("Failed to login member", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to login")
		return
	}

	respondData(w, http.StatusOK, resp)
}

// Refresh обменивает refresh токен на новую пару токенов
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tokens, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			respondError(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		h.logger.Error("Failed to refresh tokens", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to refresh tokens")
		return
	}

	respondData(w, http.StatusOK, tokens)
}

// Logout отзывает refresh токен сессии
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	respondData(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// GetMe возвращает профиль владельца текущей сессии
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	owner, err := h.authService.GetOwner(r.Context(), claims.OwnerID)
	if err != nil {
		if errors.Is(err, domain.ErrOwnerNotFound) {
			respondError(w, http.StatusNotFound, "Owner not found")
			return
		}
		h.logger.Error("Failed to get owner", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to get owner")
		return
	}

	respondData(w, http.StatusOK, owner)
}

// SetPaymentCredentials сохраняет ключи платежного провайдера владельца
// PUT /api/v1/auth/payment-credentials
func (h *AuthHandler) SetPaymentCredentials(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var creds domain.PaymentCredentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.authService.SetPaymentCredentials(r.Context(), claims.OwnerID, &creds); err != nil {
		if errors.Is(err, domain.ErrBadRequest) {
			respondError(w, http.StatusBadRequest, "API key and secret key are required")
			return
		}
		h.logger.Error("Failed to set payment credentials", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to save credentials")
		return
	}

	respondData(w, http.StatusOK, map[string]string{"status": "saved"})
}
