package member

import (
	"context"
	"fmt"

	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/pkg/hash"
	"github.com/frontandrew/rental/internal/pkg/logger"
	"github.com/frontandrew/rental/internal/repository"
	"github.com/google/uuid"
)

// CreateMemberRequest - запрос на создание субаккаунта
type CreateMemberRequest struct {
	Name        string              `json:"name,omitempty"`
	Username    string              `json:"username"`
	Password    string              `json:"password"`
	PhoneNumber string              `json:"phone_number"`
	Permissions []domain.Permission `json:"permissions,omitempty"`
}

// UpdateMemberRequest - запрос на частичное обновление субаккаунта
type UpdateMemberRequest struct {
	Name        *string             `json:"name,omitempty"`
	Username    *string             `json:"username,omitempty"`
	Password    *string             `json:"password,omitempty"`
	PhoneNumber *string             `json:"phone_number,omitempty"`
	Permissions []domain.Permission `json:"permissions,omitempty"`
}

// Service содержит бизнес-логику субаккаунтов
type Service struct {
	memberRepo repository.MemberRepository
	logger     logger.Logger
}

// NewService создает новый экземпляр MemberService
func NewService(memberRepo repository.MemberRepository, logger logger.Logger) *Service {
	return &Service{
		memberRepo: memberRepo,
		logger:     logger,
	}
}

// CreateMember создает субаккаунт под владельцем
func (s *Service) CreateMember(ctx context.Context, ownerID uuid.UUID, req *CreateMemberRequest) (*domain.Member, error) {
	if !hash.ValidPassword(req.Password) {
		return nil, domain.ErrInvalidPassword
	}

	taken, err := s.memberRepo.IsUsernameTaken(ctx, req.Username, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, domain.ErrUsernameTaken
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	member := &domain.Member{
		OwnerID:      ownerID,
		Name:         req.Name,
		Username:     req.Username,
		PasswordHash: passwordHash,
		PhoneNumber:  req.PhoneNumber,
		Permissions:  req.Permissions,
	}

	if err := member.Validate(); err != nil {
		return nil, err
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	s.logger.Info("Member created", map[string]interface{}{
		"member_id": member.ID,
		"owner_id":  ownerID,
		"username":  member.Username,
	})

	return member, nil
}

// GetMember возвращает субаккаунт владельца
func (s *Service) GetMember(ctx context.Context, ownerID, memberID uuid.UUID) (*domain.Member, error) {
	return s.memberRepo.GetByID(ctx, ownerID, memberID)
}

// ListMembers возвращает все субаккаунты владельца
func (s *Service) ListMembers(ctx context.Context, ownerID uuid.UUID) ([]*domain.Member, error) {
	return s.memberRepo.List(ctx, ownerID)
}

// UpdateMember частично обновляет субаккаунт
func (s *Service) UpdateMember(ctx context.Context, ownerID, memberID uuid.UUID, req *UpdateMemberRequest) (*domain.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, ownerID, memberID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil && *req.Username != member.Username {
		taken, err := s.memberRepo.IsUsernameTaken(ctx, *req.Username, member.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			return nil, domain.ErrUsernameTaken
		}
		member.Username = *req.Username
	}

	if req.Name != nil {
		member.Name = *req.Name
	}
	if req.PhoneNumber != nil {
		member.PhoneNumber = *req.PhoneNumber
	}
	if req.Permissions != nil {
		member.Permissions = req.Permissions
	}
	if req.Password != nil {
		if !hash.ValidPassword(*req.Password) {
			return nil, domain.ErrInvalidPassword
		}
		passwordHash, err := hash.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		member.PasswordHash = passwordHash
	}

	if err := member.Validate(); err != nil {
		return nil, err
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	return member, nil
}

// DeleteMember удаляет субаккаунт владельца
func (s *Service) DeleteMember(ctx context.Context, ownerID, memberID uuid.UUID) error {
	deleted, err := s.memberRepo.Delete(ctx, ownerID, memberID)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	if deleted == 0 {
		return domain.ErrMemberNotFound
	}

	s.logger.Info("Member deleted", map[string]interface{}{
		"member_id": memberID,
		"owner_id":  ownerID,
	})

	return nil
}
