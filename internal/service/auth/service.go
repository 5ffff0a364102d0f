package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"customer-api/internal/domain"
	"customer-api/internal/events"
	"customer-api/internal/metrics"
	tokenrepo "customer-api/internal/repository/token"
	userrepo "customer-api/internal/repository/user"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service handles login, logout and bearer token verification.
type Service struct {
	users     userrepo.Repository
	tokens    *tokenManager
	tokenRepo tokenrepo.Repository
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func New(users userrepo.Repository, tokens tokenrepo.Repository, publisher events.Publisher, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		users:     users,
		tokens:    newTokenManager(tokens),
		tokenRepo: tokens,
		publisher: publisher,
		metrics:   m,
		logger:    logger.Named("auth_service"),
	}
}

type LoginInput struct {
	Username   string
	Password   string
	DeviceName string
	IP         string
}

type LoginResult struct {
	User        *domain.User
	AccessToken string
	TokenType   string
}

// Login checks credentials and issues a token for the device. An unknown
// username and a wrong password fail identically.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	device := strings.TrimSpace(in.DeviceName)
	if device == "" {
		device = domain.DefaultDeviceName
	}

	u, err := s.users.FindByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.metrics.IncLogin(false)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		s.metrics.IncLogin(false)
		return nil, domain.ErrInvalidCredentials
	}

	plain, _, err := s.tokens.Issue(ctx, u.ID, device)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.metrics.IncLogin(true)
	s.logger.Info("user logged in", zap.String("user_uuid", u.UUID), zap.String("device", device))

	events.Emit(ctx, s.publisher, s.logger, events.UserLoggedIn, events.UserLoggedInPayload{
		UserUUID:   u.UUID,
		Username:   u.Username,
		DeviceName: device,
		IP:         in.IP,
	})

	return &LoginResult{
		User:        u,
		AccessToken: plain,
		TokenType:   domain.TokenTypeBearer,
	}, nil
}

// Logout revokes the current token, or every token of the user when
// allDevices is set. Revoking nothing is not an error.
func (s *Service) Logout(ctx context.Context, u *domain.User, current *domain.AccessToken, allDevices bool) error {
	if allDevices {
		n, err := s.tokenRepo.DeleteAllForUser(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("revoke all tokens: %w", err)
		}
		s.logger.Info("user logged out of all devices", zap.String("user_uuid", u.UUID), zap.Int64("revoked", n))
	} else if current != nil {
		if err := s.tokenRepo.Delete(ctx, current.ID); err != nil {
			return fmt.Errorf("revoke token: %w", err)
		}
	}

	events.Emit(ctx, s.publisher, s.logger, events.UserLoggedOut, events.UserLoggedOutPayload{
		UserUUID:   u.UUID,
		AllDevices: allDevices,
	})
	return nil
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, plain string) (*domain.User, *domain.AccessToken, error) {
	t, ok, err := s.tokens.Lookup(ctx, plain)
	if err != nil {
		return nil, nil, fmt.Errorf("lookup token: %w", err)
	}
	if !ok {
		return nil, nil, domain.ErrUnauthenticated
	}
	u, err := s.users.FindByID(ctx, t.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrUnauthenticated
		}
		return nil, nil, fmt.Errorf("find token owner: %w", err)
	}
	if err := s.tokenRepo.Touch(ctx, t.ID); err != nil {
		s.logger.Warn("touch token failed", zap.Int64("token_id", t.ID), zap.Error(err))
	}
	return u, t, nil
}

func (s *Service) FindByUUID(ctx context.Context, uuid string) (*domain.User, error) {
	return s.find(s.users.FindByUUID(ctx, uuid))
}

func (s *Service) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.find(s.users.FindByUsername(ctx, username))
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.find(s.users.FindByEmail(ctx, email))
}

func (s *Service) find(u *domain.User, err error) (*domain.User, error) {
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// HashPassword returns the bcrypt hash stored for new users.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
