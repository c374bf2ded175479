package service

import (
	"context"
	"time"

	"helperhive/internal/apperr"
	"helperhive/internal/cache"
	"helperhive/internal/logger"
	"helperhive/internal/messaging"
	"helperhive/internal/models"
	"helperhive/internal/repository"
	"helperhive/internal/search"
)

const presenceTTL = 5 * time.Minute

type UserService struct {
	userRepo     *repository.UserRepository
	serviceRepo  *repository.ServiceRepository
	cacheClient  *cache.Client
	searchClient *search.ElasticsearchClient
	natsClient   *messaging.NATSClient
}

func NewUserService(repos *repository.Repositories, cacheClient *cache.Client, searchClient *search.ElasticsearchClient, natsClient *messaging.NATSClient) *UserService {
	return &UserService{
		userRepo:     repos.Users,
		serviceRepo:  repos.Services,
		cacheClient:  cacheClient,
		searchClient: searchClient,
		natsClient:   natsClient,
	}
}

// Profile bundles the account with the provider sub-record when one exists.
type Profile struct {
	User     *models.User            `json:"user"`
	Provider *models.ProviderProfile `json:"provider,omitempty"`
}

func (s *UserService) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}

	profile := &Profile{User: user}
	if user.Role == models.RoleProvider {
		provider, err := s.userRepo.GetProviderProfile(ctx, userID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		profile.Provider = provider
	}

	return profile, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *models.UpdateProfileRequest) (*Profile, error) {
	if err := s.userRepo.UpdateProfile(ctx, userID, req); err != nil {
		return nil, apperr.Internal(err)
	}
	return s.GetProfile(ctx, userID)
}

func (s *UserService) UpdateLocation(ctx context.Context, userID int64, req *models.UpdateLocationRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return apperr.Internal(err)
	}
	if user == nil {
		return apperr.NotFound("user not found")
	}

	if err := s.userRepo.UpdateLocation(ctx, userID, req.Longitude, req.Latitude); err != nil {
		return apperr.Internal(err)
	}

	if user.Role == models.RoleProvider {
		s.reindexProvider(ctx, userID)
	}
	return nil
}

func (s *UserService) UpdateProviderProfile(ctx context.Context, userID int64, req *models.UpdateProviderProfileRequest) (*Profile, error) {
	profile, err := s.userRepo.GetProviderProfile(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if profile == nil {
		return nil, apperr.NotFound("provider profile not found")
	}

	if err := s.userRepo.UpdateProviderProfile(ctx, userID, req); err != nil {
		return nil, apperr.Internal(err)
	}

	if req.ServiceIDs != nil {
		for _, sid := range req.ServiceIDs {
			svc, err := s.serviceRepo.GetByID(ctx, sid)
			if err != nil {
				return nil, apperr.Internal(err)
			}
			if svc == nil || !svc.IsActive {
				return nil, apperr.Validation("unknown or inactive service in service_ids")
			}
		}
		if err := s.userRepo.SetProviderServices(ctx, userID, req.ServiceIDs); err != nil {
			return nil, apperr.Internal(err)
		}
	}

	s.reindexProvider(ctx, userID)
	return s.GetProfile(ctx, userID)
}

func (s *UserService) UpdateAvailability(ctx context.Context, userID int64, req *models.UpdateAvailabilityRequest) error {
	if err := s.userRepo.SetProviderAvailability(ctx, userID, req.IsAvailable, req.IsOnline); err != nil {
		return apperr.Internal(err)
	}

	if req.IsOnline != nil {
		var err error
		if *req.IsOnline {
			err = s.cacheClient.MarkProviderOnline(ctx, userID, presenceTTL)
		} else {
			err = s.cacheClient.MarkProviderOffline(ctx, userID)
		}
		if err != nil {
			logger.WithContext(ctx).Error("Failed to update presence", "error", err, "user_id", userID)
		}
	}

	s.reindexProvider(ctx, userID)
	return nil
}

// ReindexProvider rebuilds and upserts the search document for one provider.
func (s *UserService) ReindexProvider(ctx context.Context, providerID int64) error {
	doc, err := s.BuildProviderDocument(ctx, providerID)
	if err != nil {
		return err
	}
	if doc == nil {
		return s.searchClient.DeleteProvider(ctx, providerID)
	}
	return s.searchClient.IndexProvider(ctx, doc)
}

// reindexProvider is the fire-and-forget variant used on profile updates.
func (s *UserService) reindexProvider(ctx context.Context, providerID int64) {
	if err := s.ReindexProvider(ctx, providerID); err != nil {
		logger.WithContext(ctx).Error("Failed to reindex provider",
			"error", err, "provider_id", providerID)
	}
}

// BuildProviderDocument assembles the search document. A nil result means
// the provider should not be indexed at all.
func (s *UserService) BuildProviderDocument(ctx context.Context, providerID int64) (*models.ProviderDocument, error) {
	user, err := s.userRepo.GetByID(ctx, providerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil || user.Role != models.RoleProvider || !user.IsActive || user.IsSuspended {
		return nil, nil
	}

	profile, err := s.userRepo.GetProviderProfile(ctx, providerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if profile == nil {
		return nil, nil
	}

	serviceIDs, err := s.userRepo.GetProviderServiceIDs(ctx, providerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	categories, err := s.serviceRepo.CategoriesForServiceIDs(ctx, serviceIDs)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &models.ProviderDocument{
		ID:            user.ID,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Bio:           profile.Bio,
		ServiceIDs:    serviceIDs,
		Categories:    categories,
		RatingAverage: profile.RatingAverage,
		RatingCount:   profile.RatingCount,
		IsAvailable:   profile.IsAvailable,
		Approved:      profile.BackgroundCheckStatus == models.BackgroundCheckApproved,
		Location:      models.GeoPoint{Lon: user.Longitude, Lat: user.Latitude},
		UpdatedAt:     time.Now(),
	}, nil
}
