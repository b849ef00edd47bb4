package service

import (
	"context"
	"strings"

	"labtrack-data/internal/domain"
	"labtrack-data/internal/repository"

	"go.uber.org/zap"
)

// CatalogService manages the practice and doctor catalogs.
type CatalogService struct {
	practices repository.PracticesRepository
	doctors   repository.DoctorsRepository
	logger    *zap.Logger
}

func NewCatalogService(
	practices repository.PracticesRepository,
	doctors repository.DoctorsRepository,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		practices: practices,
		doctors:   doctors,
		logger:    logger,
	}
}

// SplitNameList parses a comma-separated name list: items are trimmed and
// blank items dropped, so "A, B ,C" yields ["A" "B" "C"].
func SplitNameList(raw string) []string {
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (s *CatalogService) ListPractices(ctx context.Context) ([]*domain.Practice, error) {
	return s.practices.ListPractices(ctx)
}

func (s *CatalogService) ListDoctors(ctx context.Context) ([]*domain.Doctor, error) {
	return s.doctors.ListDoctors(ctx)
}

// AddPractices bulk-creates practices from a comma-separated list,
// all-or-nothing.
func (s *CatalogService) AddPractices(ctx context.Context, namesCSV string) ([]string, error) {
	names := SplitNameList(namesCSV)
	if len(names) == 0 {
		return nil, NewValidationError("practice_names", "at least one practice name is required")
	}
	if err := s.practices.CreatePractices(ctx, names); err != nil {
		return nil, err
	}
	s.logger.Info("Practices added",
		zap.Int("count", len(names)),
		zap.Strings("names", names),
	)
	return names, nil
}

// AddDoctors bulk-creates doctors scoped to one practice, all-or-nothing.
// The practice must exist.
func (s *CatalogService) AddDoctors(ctx context.Context, practiceID int64, namesCSV string) ([]string, error) {
	names := SplitNameList(namesCSV)
	if len(names) == 0 {
		return nil, NewValidationError("doctor_names", "at least one doctor name is required")
	}
	if _, err := s.practices.GetPractice(ctx, practiceID); err != nil {
		return nil, err
	}
	if err := s.doctors.CreateDoctors(ctx, practiceID, names); err != nil {
		return nil, err
	}
	s.logger.Info("Doctors added",
		zap.Int64("practice_id", practiceID),
		zap.Int("count", len(names)),
		zap.Strings("names", names),
	)
	return names, nil
}
