package catalog

import (
	"context"

	"github.com/Domenick1991/carebooking/internal/domain"
	"github.com/Domenick1991/carebooking/internal/hospitalapi"
	"go.uber.org/zap"
)

type CatalogUseCase interface {
	Hospitals(ctx context.Context, page hospitalapi.PageRequest) (domain.Page[domain.Hospital], error)
	Departments(ctx context.Context, hospitalID string, page hospitalapi.PageRequest) (domain.Page[domain.Department], error)
	Doctors(ctx context.Context, departmentID, hospitalID string, page hospitalapi.PageRequest) (domain.Page[domain.Doctor], error)
}

// Source is the remote API side of the catalog.
type Source interface {
	ListHospitals(ctx context.Context, page hospitalapi.PageRequest) (domain.Page[domain.Hospital], error)
	ListDepartments(ctx context.Context, hospitalID string, page hospitalapi.PageRequest) (domain.Page[domain.Department], error)
	ListDoctors(ctx context.Context, departmentID, hospitalID string, page hospitalapi.PageRequest) (domain.Page[domain.Doctor], error)
}

type Cache interface {
	GetHospitals(ctx context.Context, page, pageSize int) (domain.Page[domain.Hospital], bool, error)
	SetHospitals(ctx context.Context, page, pageSize int, p domain.Page[domain.Hospital]) error
	GetDepartments(ctx context.Context, hospitalID string, page, pageSize int) (domain.Page[domain.Department], bool, error)
	SetDepartments(ctx context.Context, hospitalID string, page, pageSize int, p domain.Page[domain.Department]) error
	GetDoctors(ctx context.Context, departmentID, hospitalID string, page, pageSize int) (domain.Page[domain.Doctor], bool, error)
	SetDoctors(ctx context.Context, departmentID, hospitalID string, page, pageSize int, p domain.Page[domain.Doctor]) error
}

// CatalogService reads through the cache. Cache failures fall back to the source.
type CatalogService struct {
	source Source
	cache  Cache
	logger *zap.Logger
}

func NewCatalogService(source Source, cache Cache, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{source: source, cache: cache, logger: logger}
}

func (s *CatalogService) Hospitals(ctx context.Context, page hospitalapi.PageRequest) (domain.Page[domain.Hospital], error) {
	if s.cache != nil {
		if cached, ok, err := s.cache.GetHospitals(ctx, page.Page, page.PageSize); err == nil && ok {
			return cached, nil
		} else if err != nil {
			s.logger.Debug("catalog cache read failed", zap.String("kind", "hospitals"), zap.Error(err))
		}
	}

	out, err := s.source.ListHospitals(ctx, page)
	if err != nil {
		return out, &domain.ExternalCallError{Op: "list hospitals", Err: err}
	}
	if s.cache != nil {
		if err := s.cache.SetHospitals(ctx, page.Page, page.PageSize, out); err != nil {
			s.logger.Debug("catalog cache write failed", zap.String("kind", "hospitals"), zap.Error(err))
		}
	}
	return out, nil
}

func (s *CatalogService) Departments(ctx context.Context, hospitalID string, page hospitalapi.PageRequest) (domain.Page[domain.Department], error) {
	if s.cache != nil {
		if cached, ok, err := s.cache.GetDepartments(ctx, hospitalID, page.Page, page.PageSize); err == nil && ok {
			return cached, nil
		} else if err != nil {
			s.logger.Debug("catalog cache read failed", zap.String("kind", "departments"), zap.Error(err))
		}
	}

	out, err := s.source.ListDepartments(ctx, hospitalID, page)
	if err != nil {
		return out, &domain.ExternalCallError{Op: "list departments", Err: err}
	}
	if s.cache != nil {
		if err := s.cache.SetDepartments(ctx, hospitalID, page.Page, page.PageSize, out); err != nil {
			s.logger.Debug("catalog cache write failed", zap.String("kind", "departments"), zap.Error(err))
		}
	}
	return out, nil
}

func (s *CatalogService) Doctors(ctx context.Context, departmentID, hospitalID string, page hospitalapi.PageRequest) (domain.Page[domain.Doctor], error) {
	if s.cache != nil {
		if cached, ok, err := s.cache.GetDoctors(ctx, departmentID, hospitalID, page.Page, page.PageSize); err == nil && ok {
			return cached, nil
		} else if err != nil {
			s.logger.Debug("catalog cache read failed", zap.String("kind", "doctors"), zap.Error(err))
		}
	}

	out, err := s.source.ListDoctors(ctx, departmentID, hospitalID, page)
	if err != nil {
		return out, &domain.ExternalCallError{Op: "list doctors", Err: err}
	}
	if s.cache != nil {
		if err := s.cache.SetDoctors(ctx, departmentID, hospitalID, page.Page, page.PageSize, out); err != nil {
			s.logger.Debug("catalog cache write failed", zap.String("kind", "doctors"), zap.Error(err))
		}
	}
	return out, nil
}

var _ CatalogUseCase = (*CatalogService)(nil)
