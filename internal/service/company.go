package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"companyapi/internal/model"
	"companyapi/internal/repository"
)

// ErrIDRequired is returned when a lookup or delete is called with an empty id.
var ErrIDRequired = errors.New("missing id")

// CompanyService defines the use cases for handling companies.
type CompanyService interface {
	// List returns every company.
	List(ctx context.Context) ([]model.Company, error)

	// Get returns a single company by its ID.
	Get(ctx context.Context, id string) (*model.Company, error)

	// Create stores a new company; the repository assigns its ID.
	Create(ctx context.Context, in model.CompanyInput) (*model.Company, error)

	// Delete removes a company by ID.
	Delete(ctx context.Context, id string) error
}

type companyService struct {
	repo repository.CompanyRepository
	log  *zap.Logger
}

// NewCompanyService constructs a new CompanyService.
func NewCompanyService(repo repository.CompanyRepository, log *zap.Logger) CompanyService {
	if log == nil {
		log = zap.NewNop()
	}
	return &companyService{repo: repo, log: log.With(zap.String("component", "company_service"))}
}

func (s *companyService) List(ctx context.Context) ([]model.Company, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Company{}
	}
	return items, nil
}

func (s *companyService) Get(ctx context.Context, id string) (*model.Company, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	return s.repo.FindByID(ctx, id)
}

func (s *companyService) Create(ctx context.Context, in model.CompanyInput) (*model.Company, error) {
	c, err := s.repo.Create(ctx, in)
	if err != nil {
		s.log.Warn("company create failed", zap.Error(err))
		return nil, err
	}
	s.log.Debug("company created", zap.String("id", c.ID), zap.String("name", c.Name))
	return c, nil
}

func (s *companyService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, repository.ErrNotFound) && !errors.Is(err, repository.ErrInvalidID) {
			s.log.Warn("company delete failed", zap.String("id", id), zap.Error(err))
		}
		return err
	}
	s.log.Debug("company deleted", zap.String("id", id))
	return nil
}
