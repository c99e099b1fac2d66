package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nucmed/petplan/internal/model"
	"github.com/nucmed/petplan/internal/repository"
	"github.com/nucmed/petplan/pkg/auth"
	"github.com/nucmed/petplan/pkg/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

// Seeder populates a new user's catalog; the catalog service implements it.
type Seeder interface {
	SeedDefaults(ctx context.Context, userID string) error
}

type Service struct {
	users  repository.UserRepository
	jwtSvc auth.JWTService
	hasher security.PasswordHasher
	seeder Seeder
	expiry time.Duration
}

func NewService(users repository.UserRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher, seeder Seeder, expiry time.Duration) *Service {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &Service{users: users, jwtSvc: jwtSvc, hasher: hasher, seeder: seeder, expiry: expiry}
}

// Register creates an account and seeds its default catalog.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
		CurrentSet:   "default",
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.seeder != nil {
		if err := s.seeder.SeedDefaults(ctx, user.ID.String()); err != nil {
			return nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &model.TokenResponse{
		Token:     token,
		ExpiresIn: int64(s.expiry.Seconds()),
	}, nil
}

func (s *Service) ValidateToken(token string) (*model.TokenClaims, error) {
	return s.jwtSvc.ValidateToken(token)
}
