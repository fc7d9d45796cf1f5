package blacklist

import (
	"context"
	"errors"
	"fmt"

	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/pkg/logger"
	"github.com/frontandrew/rental/internal/repository"
	"github.com/google/uuid"
)

// Исходы добавления в черный список
const (
	CaseAdded    = "added"
	CaseNotFound = "not_found"
)

// AddResult - результат добавления в черный список.
// Отсутствие договора с указанным паспортом - штатный исход,
// а не ошибка: фронт показывает его отдельным сообщением.
type AddResult struct {
	Case  string                 `json:"case"`
	Entry *domain.BlacklistEntry `json:"entry,omitempty"`
}

// ListItem - запись черного списка с данными договора для админки
type ListItem struct {
	Entry          *domain.BlacklistEntry `json:"entry"`
	ClientName     string                 `json:"client_name,omitempty"`
	ContractSerial string                 `json:"contract_serial,omitempty"`
}

// Service содержит бизнес-логику черного списка клиентов
type Service struct {
	blacklistRepo repository.BlacklistRepository
	contractRepo  repository.ContractRepository
	logger        logger.Logger
}

// NewService создает новый экземпляр BlacklistService
func NewService(
	blacklistRepo repository.BlacklistRepository,
	contractRepo repository.ContractRepository,
	logger logger.Logger,
) *Service {
	return &Service{
		blacklistRepo: blacklistRepo,
		contractRepo:  contractRepo,
		logger:        logger,
	}
}

// Check возвращает запись черного списка по паспорту или nil
func (s *Service) Check(ctx context.Context, ownerID uuid.UUID, passportID string) (*domain.BlacklistEntry, error) {
	entry, err := s.blacklistRepo.GetByPassport(ctx, ownerID, passportID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check blacklist: %w", err)
	}

	return entry, nil
}

// Add блокирует клиента по номеру паспорта. Запись привязывается
// к последнему договору владельца с этим паспортом: без договора
// блокировать некого, возвращается исход not_found.
func (s *Service) Add(ctx context.Context, ownerID uuid.UUID, passportID, reason string) (*AddResult, error) {
	contract, err := s.contractRepo.GetByPassport(ctx, ownerID, passportID)
	if err != nil {
		if errors.Is(err, domain.ErrContractNotFound) {
			return &AddResult{Case: CaseNotFound}, nil
		}
		return nil, fmt.Errorf("failed to find contract: %w", err)
	}

	entry := &domain.BlacklistEntry{
		ContractID: contract.ID,
		OwnerID:    ownerID,
		PassportID: passportID,
		Reason:     reason,
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := s.blacklistRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create blacklist entry: %w", err)
	}

	s.logger.Info("Client blacklisted", map[string]interface{}{
		"owner_id":    ownerID,
		"passport_id": passportID,
		"contract_id": contract.ID,
	})

	return &AddResult{Case: CaseAdded, Entry: entry}, nil
}

// Remove снимает блокировку по номеру паспорта.
// Возвращает число удаленных записей, 0 - валидный результат.
func (s *Service) Remove(ctx context.Context, ownerID uuid.UUID, passportID string) (int64, error) {
	removed, err := s.blacklistRepo.DeleteByPassport(ctx, ownerID, passportID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove from blacklist: %w", err)
	}

	if removed > 0 {
		s.logger.Info("Client removed from blacklist", map[string]interface{}{
			"owner_id":    ownerID,
			"passport_id": passportID,
			"removed":     removed,
		})
	}

	return removed, nil
}

// List возвращает черный список владельца с данными клиентов
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]*ListItem, error) {
	entries, err := s.blacklistRepo.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blacklist: %w", err)
	}

	items := make([]*ListItem, 0, len(entries))
	for _, entry := range entries {
		item := &ListItem{Entry: entry}

		// Договор мог быть удален, запись показываем и без него
		contract, err := s.contractRepo.GetByID(ctx, entry.ContractID)
		if err == nil {
			item.ClientName = contract.Client.FullName()
			item.ContractSerial = contract.SerialNumber
		} else if !errors.Is(err, domain.ErrContractNotFound) {
			return nil, fmt.Errorf("failed to load contract: %w", err)
		}

		items = append(items, item)
	}

	return items, nil
}
