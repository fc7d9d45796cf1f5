package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/pkg/hash"
	"github.com/frontandrew/rental/internal/pkg/jwt"
	"github.com/frontandrew/rental/internal/pkg/logger"
	"github.com/frontandrew/rental/internal/repository"
	"github.com/google/uuid"
)

// RegisterRequest - запрос на регистрацию владельца
type RegisterRequest struct {
	FirstName       string             `json:"first_name"`
	LastName        string             `json:"last_name"`
	Email           string             `json:"email"`
	Password        string             `json:"password"`
	PhoneNumber     string             `json:"phone_number"`
	AccountType     domain.AccountType `json:"acc_type"`
	CorporationName string             `json:"corporation_name,omitempty"`
	Address         domain.Address     `json:"address"`
	Currency        string             `json:"currency,omitempty"`
}

// LoginRequest - запрос на вход владельца
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MemberLoginRequest - запрос на вход субаккаунта
type MemberLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse - ответ с токенами и данными аккаунта
type AuthResponse struct {
	Owner  *domain.Owner  `json:"owner,omitempty"`
	Member *domain.Member `json:"member,omitempty"`
	Tokens *jwt.TokenPair `json:"tokens"`
}

// Service содержит бизнес-логику аутентификации
type Service struct {
	ownerRepo        repository.OwnerRepository
	memberRepo       repository.MemberRepository
	refreshTokenRepo repository.RefreshTokenRepository
	tokenService     *jwt.TokenService
	logger           logger.Logger
}

// NewService создает новый экземпляр AuthService
func NewService(
	ownerRepo repository.OwnerRepository,
	memberRepo repository.MemberRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	tokenService *jwt.TokenService,
	logger logger.Logger,
) *Service {
	return &Service{
		ownerRepo:        ownerRepo,
		memberRepo:       memberRepo,
		refreshTokenRepo: refreshTokenRepo,
		tokenService:     tokenService,
		logger:           logger,
	}
}

// Register регистрирует нового владельца
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if !hash.ValidPassword(req.Password) {
		return nil, domain.ErrInvalidPassword
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	owner := &domain.Owner{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		PasswordHash:    passwordHash,
		PhoneNumber:     req.PhoneNumber,
		AccountType:     req.AccountType,
		CorporationName: req.CorporationName,
		Address:         req.Address,
		Currency:        currency,
		IsActive:        true,
	}

	if err := owner.Validate(); err != nil {
		return nil, err
	}

	if err := s.ownerRepo.Create(ctx, owner); err != nil {
		return nil, err
	}

	s.logger.Info("Owner registered", map[string]interface{}{
		"owner_id": owner.ID,
		"email":    owner.Email,
	})

	tokens, err := s.issueTokens(ctx, owner.ID, nil)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Owner: owner, Tokens: tokens}, nil
}

// Login аутентифицирует владельца по email и паролю
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	owner, err := s.ownerRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Не раскрываем, существует ли email
		return nil, domain.ErrInvalidCredentials
	}

	if !hash.CheckPassword(owner.PasswordHash, req.Password) {
		s.logger.Warn("Failed login attempt", map[string]interface{}{
			"email": req.Email,
		})
		return nil, domain.ErrInvalidCredentials
	}

	if !owner.IsActive {
		return nil, domain.ErrOwnerInactive
	}

	tokens, err := s.issueTokens(ctx, owner.ID, nil)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Owner: owner, Tokens: tokens}, nil
}

// LoginMember аутентифицирует субаккаунт по логину и паролю
func (s *Service) LoginMember(ctx context.Context, req *MemberLoginRequest) (*AuthResponse, error) {
	member, err := s.memberRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !hash.CheckPassword(member.PasswordHash, req.Password) {
		s.logger.Warn("Failed member login attempt", map[string]interface{}{
			"username": req.Username,
		})
		return nil, domain.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, member.OwnerID, &member.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Member: member, Tokens: tokens}, nil
}

// issueTokens генерирует пару токенов и сохраняет хеш refresh токена
func (s *Service) issueTokens(ctx context.Context, ownerID uuid.UUID, memberID *uuid.UUID) (*jwt.TokenPair, error) {
	tokens, err := s.tokenService.GenerateTokenPair(ownerID, memberID)
	if err != nil {
		return nil, err
	}

	refreshToken := &domain.RefreshToken{
		OwnerID:   ownerID,
		MemberID:  memberID,
		TokenHash: jwt.HashToken(tokens.RefreshToken),
		ExpiresAt: time.Now().Add(s.tokenService.RefreshExpiry()),
		CreatedAt: time.Now(),
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return tokens, nil
}

// Refresh обменивает refresh токен на новую пару токенов.
// Использованный токен отзывается (rotation).
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := s.tokenService.ValidateToken(refreshToken)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	stored, err := s.refreshTokenRepo.GetByTokenHash(ctx, jwt.HashToken(refreshToken))
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if !stored.IsValid() {
		return nil, domain.ErrInvalidToken
	}

	if err := s.refreshTokenRepo.Revoke(ctx, stored.TokenHash); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, claims.OwnerID, claims.MemberID)
}

// Logout отзывает refresh токен сессии
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.Revoke(ctx, jwt.HashToken(refreshToken)); err != nil {
		return domain.ErrInvalidToken
	}
	return nil
}

// GetOwner возвращает профиль владельца
func (s *Service) GetOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Owner, error) {
	return s.ownerRepo.GetByID(ctx, ownerID)
}

// SetPaymentCredentials сохраняет ключи платежного провайдера владельца.
// Смена ключей отзывает все выданные сессии.
func (s *Service) SetPaymentCredentials(ctx context.Context, ownerID uuid.UUID, creds *domain.PaymentCredentials) error {
	if creds == nil || creds.APIKey == "" || creds.SecretKey == "" {
		return domain.ErrBadRequest
	}

	if err := s.ownerRepo.UpdatePaymentCredentials(ctx, ownerID, creds); err != nil {
		return err
	}

	if err := s.refreshTokenRepo.RevokeAllOwnerTokens(ctx, ownerID); err != nil {
		s.logger.Error("Failed to revoke owner tokens", map[string]interface{}{
			"owner_id": ownerID,
			"error":    err.Error(),
		})
	}

	return nil
}
