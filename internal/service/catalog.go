package service

import (
	"context"

	"helperhive/internal/apperr"
	"helperhive/internal/domain"
	"helperhive/internal/models"
	"helperhive/internal/repository"
	"helperhive/internal/search"
)

// CatalogService serves the service catalog and the nearby provider search.
type CatalogService struct {
	serviceRepo  *repository.ServiceRepository
	searchClient *search.ElasticsearchClient
	currency     string
}

func NewCatalogService(repos *repository.Repositories, searchClient *search.ElasticsearchClient, currency string) *CatalogService {
	return &CatalogService{
		serviceRepo:  repos.Services,
		searchClient: searchClient,
		currency:     currency,
	}
}

func (s *CatalogService) Create(ctx context.Context, req *models.CreateServiceRequest) (*models.Service, error) {
	if req.DurationMax < req.DurationMin {
		return nil, apperr.Validation("duration_max must not be below duration_min")
	}

	svc := &models.Service{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Icon:        req.Icon,
		BasePrice:   req.BasePrice,
		PricingType: req.PricingType,
		Currency:    s.currency,
		DurationMin: req.DurationMin,
		DurationMax: req.DurationMax,
	}

	if err := s.serviceRepo.Create(ctx, svc); err != nil {
		return nil, apperr.Internal(err)
	}
	return svc, nil
}

func (s *CatalogService) List(ctx context.Context, category string) ([]models.Service, error) {
	services, err := s.serviceRepo.List(ctx, category, true)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return services, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.serviceRepo.Categories(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return categories, nil
}

// ServiceDetail is one catalog entry with its optional add-ons.
type ServiceDetail struct {
	Service *models.Service `json:"service"`
	AddOns  []domain.AddOn  `json:"add_ons"`
}

func (s *CatalogService) Get(ctx context.Context, id int64) (*ServiceDetail, error) {
	svc, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if svc == nil {
		return nil, apperr.NotFound("service not found")
	}

	addOns, err := s.serviceRepo.GetAddOns(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &ServiceDetail{Service: svc, AddOns: addOns}, nil
}

func (s *CatalogService) SetActive(ctx context.Context, id int64, active bool) error {
	svc, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if svc == nil {
		return apperr.NotFound("service not found")
	}
	if err := s.serviceRepo.SetActive(ctx, id, active); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Nearby runs the geo search for approved available providers.
func (s *CatalogService) Nearby(ctx context.Context, req *models.NearbyProvidersRequest) ([]models.ProviderDocument, error) {
	providers, err := s.searchClient.NearbyProviders(ctx, req, 20)
	if err != nil {
		return nil, apperr.External("provider search unavailable", err)
	}
	return providers, nil
}
