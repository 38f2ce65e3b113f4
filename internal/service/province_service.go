package service

import (
	"context"
	"strings"

	"peymonak_backend/internal/reference"
	"peymonak_backend/internal/repository"
	"peymonak_backend/internal/util"
	"peymonak_backend/pkg/logger"
	"peymonak_backend/pkg/monitoring"

	"go.uber.org/zap"
)

type ProvinceService struct {
	Visits  *repository.ProvinceRepository
	Catalog reference.Lookup
}

func NewProvinceService(visits *repository.ProvinceRepository, catalog reference.Lookup) *ProvinceService {
	return &ProvinceService{Visits: visits, Catalog: catalog}
}

type ProvinceCheckResult struct {
	Valid    bool   `json:"valid"`
	Province string `json:"province"`
}

// CheckProvince reports whether name is a known province and counts the
// visit when it is. A failing counter is logged; the check still succeeds.
func (s *ProvinceService) CheckProvince(ctx context.Context, name string) (*ProvinceCheckResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, util.FieldError("name", "province name is required")
	}

	if !s.Catalog.IsProvince(name) {
		return &ProvinceCheckResult{Valid: false, Province: name}, nil
	}

	if err := s.Visits.IncrementVisit(ctx, name); err != nil {
		logger.Log.Error("Failed to record province visit", zap.String("province", name), zap.Error(err))
	} else {
		monitoring.ProvinceVisits.Inc()
	}
	return &ProvinceCheckResult{Valid: true, Province: name}, nil
}

// SuggestProvinces returns the provinces containing q, in catalog order.
func (s *ProvinceService) SuggestProvinces(q string) []string {
	q = strings.TrimSpace(q)
	out := []string{}
	for _, p := range s.Catalog.Provinces() {
		if strings.Contains(p, q) {
			out = append(out, p)
		}
	}
	return out
}
