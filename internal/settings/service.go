package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-billing/internal/common"
)

// Service reads and writes account settings documents. Reads merge the
// stored document over named defaults, leaf values from the store
// winning; the merged result is assembled per request so defaults can
// change between releases without a data migration.
type Service struct {
	store    Store
	cache    *Cache
	validate *validator.Validate
}

// NewService constructs a settings service.
func NewService(store Store, cache *Cache) (*Service, error) {
	if store == nil {
		return nil, errors.New("settings: store is required")
	}
	return &Service{
		store:    store,
		cache:    cache,
		validate: validator.New(),
	}, nil
}

func companyCacheKey(userID string) string { return "settings:company:" + userID }
func printerCacheKey(userID string) string { return "settings:printer:" + userID }

// Company returns the stored company profile, or an empty profile when
// none was saved yet.
func (s *Service) Company(ctx context.Context, userID string) (CompanyProfile, error) {
	var profile CompanyProfile
	if hit, err := s.cache.GetJSON(ctx, companyCacheKey(userID), &profile); err == nil && hit {
		return profile, nil
	}

	raw, err := s.store.CompanyRaw(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return CompanyProfile{}, nil
	}
	if err != nil {
		return CompanyProfile{}, err
	}
	if err := json.Unmarshal(raw, &profile); err != nil {
		return CompanyProfile{}, fmt.Errorf("decode company profile: %w", err)
	}
	_ = s.cache.SetJSON(ctx, companyCacheKey(userID), profile)
	return profile, nil
}

// SaveCompany validates and persists the company profile.
func (s *Service) SaveCompany(ctx context.Context, userID string, profile CompanyProfile) error {
	if err := s.validate.Struct(profile); err != nil {
		return common.NewAppError("VALIDATION_ERROR", "invalid company profile", http.StatusBadRequest, err)
	}
	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode company profile: %w", err)
	}
	if err := s.store.SaveCompany(ctx, userID, doc); err != nil {
		return err
	}
	return s.cache.Del(ctx, companyCacheKey(userID))
}

// Printer returns the account's printer settings merged over defaults.
// Keys present in the stored document win, including explicit false
// visibility flags; absent keys keep their default.
func (s *Service) Printer(ctx context.Context, userID string) (PrinterSettings, error) {
	merged := DefaultPrinterSettings()
	if hit, err := s.cache.GetJSON(ctx, printerCacheKey(userID), &merged); err == nil && hit {
		return merged, nil
	}

	raw, err := s.store.PrinterRaw(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return merged, nil
	}
	if err != nil {
		return PrinterSettings{}, err
	}
	if err := json.Unmarshal(raw, &merged); err != nil {
		return PrinterSettings{}, fmt.Errorf("decode printer settings: %w", err)
	}
	merged.Normalize()
	_ = s.cache.SetJSON(ctx, printerCacheKey(userID), merged)
	return merged, nil
}

// SavePrinter validates, normalizes, and persists printer settings.
func (s *Service) SavePrinter(ctx context.Context, userID string, settings PrinterSettings) (PrinterSettings, error) {
	if err := s.validate.Struct(settings); err != nil {
		return PrinterSettings{}, common.NewAppError("VALIDATION_ERROR", "invalid printer settings", http.StatusBadRequest, err)
	}
	settings.Normalize()
	doc, err := json.Marshal(settings)
	if err != nil {
		return PrinterSettings{}, fmt.Errorf("encode printer settings: %w", err)
	}
	if err := s.store.SavePrinter(ctx, userID, doc); err != nil {
		return PrinterSettings{}, err
	}
	if err := s.cache.Del(ctx, printerCacheKey(userID)); err != nil {
		return PrinterSettings{}, err
	}
	return settings, nil
}
