package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"helperhive/internal/apperr"
	"helperhive/internal/auth"
	"helperhive/internal/cache"
	"helperhive/internal/config"
	"helperhive/internal/logger"
	"helperhive/internal/messaging"
	"helperhive/internal/models"
	"helperhive/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	cfg         *config.Config
	userRepo    *repository.UserRepository
	cacheClient *cache.Client
	natsClient  *messaging.NATSClient
}

func NewAuthService(cfg *config.Config, repos *repository.Repositories, cacheClient *cache.Client, natsClient *messaging.NATSClient) *AuthService {
	return &AuthService{
		cfg:         cfg,
		userRepo:    repos.Users,
		cacheClient: cacheClient,
		natsClient:  natsClient,
	}
}

// Register creates the account, provisions the provider profile when the
// role asks for one, and queues the phone verification code.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if existing != nil {
		return nil, apperr.Validation("email is already registered")
	}

	existing, err = s.userRepo.GetByPhone(ctx, req.Phone)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if existing != nil {
		return nil, apperr.Validation("phone number is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         req.Role,
		Country:      "South Africa",
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperr.Internal(err)
	}

	if user.Role == models.RoleProvider {
		if err := s.userRepo.CreateProviderProfile(ctx, user.ID); err != nil {
			return nil, apperr.Internal(err)
		}
	}

	if err := s.sendOTP(ctx, user.Phone); err != nil {
		logger.WithContext(ctx).Error("Failed to queue verification code",
			"error", err, "user_id", user.ID)
	}

	token, err := auth.GenerateToken(s.cfg.Auth.JWTSecret, s.cfg.Auth.TokenTTL, user.ID, user.Role)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &models.AuthResponse{Token: token, User: user}, nil
}

func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	if !user.IsActive || user.IsSuspended {
		return nil, apperr.Forbidden("account disabled")
	}

	if err := s.userRepo.TouchLastActive(ctx, user.ID); err != nil {
		logger.WithContext(ctx).Error("Failed to update last active", "error", err, "user_id", user.ID)
	}

	token, err := auth.GenerateToken(s.cfg.Auth.JWTSecret, s.cfg.Auth.TokenTTL, user.ID, user.Role)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &models.AuthResponse{Token: token, User: user}, nil
}

// VerifyPhone checks the code against the cached one. Codes are single-use.
func (s *AuthService) VerifyPhone(ctx context.Context, req *models.VerifyPhoneRequest) error {
	stored, err := s.cacheClient.GetOTP(ctx, req.Phone)
	if err != nil {
		return apperr.Internal(err)
	}
	if stored == "" || stored != req.Code {
		return apperr.Validation("invalid or expired verification code")
	}

	user, err := s.userRepo.GetByPhone(ctx, req.Phone)
	if err != nil {
		return apperr.Internal(err)
	}
	if user == nil {
		return apperr.NotFound("account not found")
	}

	if err := s.userRepo.MarkPhoneVerified(ctx, user.ID); err != nil {
		return apperr.Internal(err)
	}

	if err := s.cacheClient.DeleteOTP(ctx, req.Phone); err != nil {
		logger.WithContext(ctx).Error("Failed to delete used OTP", "error", err)
	}

	return nil
}

func (s *AuthService) ResendOTP(ctx context.Context, req *models.ResendOTPRequest) error {
	user, err := s.userRepo.GetByPhone(ctx, req.Phone)
	if err != nil {
		return apperr.Internal(err)
	}
	if user == nil {
		return apperr.NotFound("account not found")
	}
	if user.PhoneVerified {
		return apperr.StateConflict("phone is already verified")
	}

	if err := s.sendOTP(ctx, req.Phone); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *AuthService) sendOTP(ctx context.Context, phone string) error {
	code, err := generateOTP()
	if err != nil {
		return err
	}

	if err := s.cacheClient.SetOTP(ctx, phone, code, s.cfg.Auth.OTPTTL); err != nil {
		return err
	}

	task := models.NotificationTask{
		TaskID:    uuid.New().String(),
		Channel:   "sms",
		Recipient: phone,
		Template:  "otp",
		Params:    map[string]string{"code": code},
		Timestamp: time.Now(),
	}
	return s.natsClient.Publish(models.EventNotificationSend, task)
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
