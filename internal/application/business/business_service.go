// Package business handles onboarding, business profiles and owner settings.
package business

import (
	"context"
	"errors"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/application/event"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/business"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service manages businesses and settings
type Service struct {
	businessRepo   business.BusinessRepository
	settingsRepo   business.SettingsRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a new business Service
func NewService(businessRepo business.BusinessRepository, settingsRepo business.SettingsRepository, logger *zap.Logger) *Service {
	return &Service{businessRepo: businessRepo, settingsRepo: settingsRepo, logger: logger}
}

// SetEventPublisher sets the event publisher
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Onboarding reports whether the owner has any business yet
func (s *Service) Onboarding(ctx context.Context, ownerID uuid.UUID) (*OnboardingResponse, error) {
	count, err := s.businessRepo.Count(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &OnboardingResponse{NeedsOnboarding: count == 0, BusinessCount: count}, nil
}

// Create creates a business
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, req BusinessRequest) (*BusinessResponse, error) {
	b, err := business.NewBusiness(ownerID, req.profile())
	if err != nil {
		return nil, err
	}
	if err := s.businessRepo.Save(ctx, b); err != nil {
		return nil, err
	}
	event.Dispatch(ctx, s.eventPublisher, s.logger, b)

	logger.Or(ctx, s.logger).Info("Business created",
		zap.String("business_id", b.ID.String()),
		zap.String("currency", string(b.Currency)),
	)
	resp := ToBusinessResponse(b)
	return &resp, nil
}

// List lists the owner's businesses
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]BusinessResponse, error) {
	businesses, err := s.businessRepo.FindAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]BusinessResponse, len(businesses))
	for i := range businesses {
		out[i] = ToBusinessResponse(&businesses[i])
	}
	return out, nil
}

// GetByID retrieves a business
func (s *Service) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*BusinessResponse, error) {
	b, err := s.businessRepo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	resp := ToBusinessResponse(b)
	return &resp, nil
}

// Update replaces a business profile
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, req BusinessRequest) (*BusinessResponse, error) {
	b, err := s.businessRepo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := b.Update(req.profile()); err != nil {
		return nil, err
	}
	if err := s.businessRepo.Save(ctx, b); err != nil {
		return nil, err
	}
	event.Dispatch(ctx, s.eventPublisher, s.logger, b)

	resp := ToBusinessResponse(b)
	return &resp, nil
}

// GetSettings returns the owner's settings, or defaults when none were saved
func (s *Service) GetSettings(ctx context.Context, ownerID uuid.UUID) (*SettingsResponse, error) {
	settings, err := s.loadSettings(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	resp := ToSettingsResponse(settings)
	return &resp, nil
}

// SetTheme changes the UI theme
func (s *Service) SetTheme(ctx context.Context, ownerID uuid.UUID, req SetThemeRequest) (*SettingsResponse, error) {
	return s.mutateSettings(ctx, ownerID, func(settings *business.Settings) error {
		return settings.SetTheme(business.Theme(req.Theme))
	})
}

// EnablePIN turns on the app lock
func (s *Service) EnablePIN(ctx context.Context, ownerID uuid.UUID, req PINRequest) (*SettingsResponse, error) {
	return s.mutateSettings(ctx, ownerID, func(settings *business.Settings) error {
		return settings.EnablePIN(req.PIN)
	})
}

// DisablePIN turns off the app lock
func (s *Service) DisablePIN(ctx context.Context, ownerID uuid.UUID) (*SettingsResponse, error) {
	return s.mutateSettings(ctx, ownerID, func(settings *business.Settings) error {
		settings.DisablePIN()
		return nil
	})
}

// VerifyPIN checks a PIN against the stored hash
func (s *Service) VerifyPIN(ctx context.Context, ownerID uuid.UUID, req PINRequest) (*PINVerificationResponse, error) {
	settings, err := s.loadSettings(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	valid := settings.VerifyPIN(req.PIN)
	if !valid {
		logger.Or(ctx, s.logger).Info("PIN verification failed", zap.String("owner_id", ownerID.String()))
	}
	return &PINVerificationResponse{Valid: valid}, nil
}

func (s *Service) mutateSettings(ctx context.Context, ownerID uuid.UUID, fn func(*business.Settings) error) (*SettingsResponse, error) {
	settings, err := s.loadSettings(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := fn(settings); err != nil {
		return nil, err
	}
	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, err
	}
	resp := ToSettingsResponse(settings)
	return &resp, nil
}

func (s *Service) loadSettings(ctx context.Context, ownerID uuid.UUID) (*business.Settings, error) {
	settings, err := s.settingsRepo.FindByOwner(ctx, ownerID)
	if errors.Is(err, shared.ErrNotFound) {
		return business.NewSettings(ownerID), nil
	}
	return settings, err
}
