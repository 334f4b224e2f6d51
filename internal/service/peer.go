package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"katalogtoko/backend/internal/domain"
	"katalogtoko/backend/internal/store"
	"katalogtoko/backend/internal/xid"
)

// POS configurations and banks are single-level peer aggregates: they share
// the minted-id uniqueness pattern with the catalog but carry no derived
// fields.

func (s *Service) CreatePosConfig(ctx context.Context, req domain.PosConfigCreateRequest) (domain.PosConfig, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.PosConfig{}, fmt.Errorf("admin role required")
	}

	req.PosName = strings.TrimSpace(req.PosName)
	req.BranchCode = strings.TrimSpace(req.BranchCode)
	if req.PosName == "" || req.BranchCode == "" {
		return domain.PosConfig{}, fmt.Errorf("%w: pos name and branch code required", store.ErrValidation)
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status == "" {
		status = domain.PosStatusActive
	}
	if status != domain.PosStatusActive && status != domain.PosStatusSuspended && status != domain.PosStatusRetired {
		return domain.PosConfig{}, fmt.Errorf("%w: unknown pos status %q", store.ErrValidation, status)
	}

	validFrom, err := parseDate(req.ValidFrom)
	if err != nil {
		return domain.PosConfig{}, err
	}
	validUntil, err := parseDate(req.ValidUntil)
	if err != nil {
		return domain.PosConfig{}, err
	}
	if !validUntil.After(validFrom) {
		return domain.PosConfig{}, fmt.Errorf("%w: validity window is inverted", store.ErrValidation)
	}

	cfg := domain.PosConfig{
		PosName:    req.PosName,
		BranchCode: req.BranchCode,
		Status:     status,
		Authority:  strings.TrimSpace(req.Authority),
		ValidFrom:  validFrom,
		ValidUntil: validUntil,
		CreatedAt:  time.Now().UTC(),
	}

	var created *domain.PosConfig
	var lastErr error
	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		cfg.PosID = xid.New(xid.PosPrefix)
		created, lastErr = s.repo.CreatePosConfig(ctx, cfg)
		if lastErr == nil {
			break
		}
		if !errors.Is(lastErr, store.ErrDuplicateID) {
			return domain.PosConfig{}, lastErr
		}
	}
	if created == nil {
		return domain.PosConfig{}, fmt.Errorf("%w: %v", store.ErrCollisionExhausted, lastErr)
	}

	s.logAudit(ctx, req.BranchCode, "pos_config_create", "pos_config", created.PosID, fmt.Sprintf("name=%s,status=%s", created.PosName, created.Status))
	return *created, nil
}

func (s *Service) GetPosConfig(ctx context.Context, posID string) (domain.PosConfig, error) {
	posID = strings.TrimSpace(posID)
	if posID == "" {
		return domain.PosConfig{}, fmt.Errorf("%w: pos id required", store.ErrValidation)
	}

	cfg, err := s.repo.GetPosConfig(ctx, posID)
	if err != nil {
		return domain.PosConfig{}, err
	}
	return *cfg, nil
}

func (s *Service) ListPosConfigs(ctx context.Context) ([]domain.PosConfig, error) {
	return s.repo.ListPosConfigs(ctx)
}

func (s *Service) DeletePosConfig(ctx context.Context, posID string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return fmt.Errorf("admin role required")
	}

	posID = strings.TrimSpace(posID)
	if posID == "" {
		return fmt.Errorf("%w: pos id required", store.ErrValidation)
	}
	if err := s.repo.DeletePosConfig(ctx, posID); err != nil {
		return err
	}

	s.logAudit(ctx, s.defaultBranch, "pos_config_delete", "pos_config", posID, "")
	return nil
}

func (s *Service) CreateBank(ctx context.Context, req domain.BankCreateRequest) (domain.Bank, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Bank{}, fmt.Errorf("admin role required")
	}

	req.BankName = strings.TrimSpace(req.BankName)
	req.AccountNumber = strings.TrimSpace(req.AccountNumber)
	if req.BankName == "" || req.AccountNumber == "" {
		return domain.Bank{}, fmt.Errorf("%w: bank name and account number required", store.ErrValidation)
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status == "" {
		status = domain.BankStatusActive
	}
	if status != domain.BankStatusActive && status != domain.BankStatusInactive {
		return domain.Bank{}, fmt.Errorf("%w: unknown bank status %q", store.ErrValidation, status)
	}

	bank := domain.Bank{
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		AccountHolder: strings.TrimSpace(req.AccountHolder),
		Status:        status,
		CreatedAt:     time.Now().UTC(),
	}

	var created *domain.Bank
	var lastErr error
	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		bank.BankID = xid.New(xid.BankPrefix)
		created, lastErr = s.repo.CreateBank(ctx, bank)
		if lastErr == nil {
			break
		}
		if !errors.Is(lastErr, store.ErrDuplicateID) {
			return domain.Bank{}, lastErr
		}
	}
	if created == nil {
		return domain.Bank{}, fmt.Errorf("%w: %v", store.ErrCollisionExhausted, lastErr)
	}

	s.logAudit(ctx, s.defaultBranch, "bank_create", "bank", created.BankID, fmt.Sprintf("name=%s", created.BankName))
	return *created, nil
}

func (s *Service) GetBank(ctx context.Context, bankID string) (domain.Bank, error) {
	bankID = strings.TrimSpace(bankID)
	if bankID == "" {
		return domain.Bank{}, fmt.Errorf("%w: bank id required", store.ErrValidation)
	}

	bank, err := s.repo.GetBank(ctx, bankID)
	if err != nil {
		return domain.Bank{}, err
	}
	return *bank, nil
}

func (s *Service) ListBanks(ctx context.Context) ([]domain.Bank, error) {
	return s.repo.ListBanks(ctx)
}

func (s *Service) DeleteBank(ctx context.Context, bankID string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return fmt.Errorf("admin role required")
	}

	bankID = strings.TrimSpace(bankID)
	if bankID == "" {
		return fmt.Errorf("%w: bank id required", store.ErrValidation)
	}
	if err := s.repo.DeleteBank(ctx, bankID); err != nil {
		return err
	}

	s.logAudit(ctx, s.defaultBranch, "bank_delete", "bank", bankID, "")
	return nil
}

func parseDate(raw string) (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", store.ErrValidation, raw)
	}
	return parsed.UTC(), nil
}
