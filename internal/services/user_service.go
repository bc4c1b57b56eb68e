package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"assistant-chat/config"
	"assistant-chat/internal/domain"
	"assistant-chat/internal/repository"
	assistant_errors "assistant-chat/pkg/errors"
)

type UserService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	accessTTL time.Duration
}

func NewUserService(userRepo repository.UserRepository, cfg *config.Config) *UserService {
	return &UserService{
		userRepo:  userRepo,
		jwtSecret: []byte(cfg.JWTSecret),
		accessTTL: time.Duration(cfg.JWTExpiryMin) * time.Minute,
	}
}

type RegisterInput struct {
	Username string
	Password string
	Email    string
}

type LoginInput struct {
	Username string
	Password string
}

type UserInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type AuthResponse struct {
	User        UserInfo `json:"user"`
	AccessToken string   `json:"access_token,omitempty"`
	ExpiresIn   int64    `json:"expires_in,omitempty"`
}

type AccessClaims struct {
	UserID string `json:"sub"`
	jwt.RegisteredClaims
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (AuthResponse, error) {
	if err := validateRegister(in); err != nil {
		return AuthResponse{}, err
	}

	if _, err := s.userRepo.GetByUsername(ctx, in.Username); !errors.Is(err, assistant_errors.ErrNotFound) {
		if err == nil {
			return AuthResponse{}, assistant_errors.ErrAlreadyExists
		}
		return AuthResponse{}, err
	}
	if _, err := s.userRepo.GetByEmail(ctx, in.Email); !errors.Is(err, assistant_errors.ErrNotFound) {
		if err == nil {
			return AuthResponse{}, assistant_errors.ErrAlreadyExists
		}
		return AuthResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, err
	}

	newUser := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return AuthResponse{}, err
	}

	return s.authResponse(*newUser)
}

func (s *UserService) Login(ctx context.Context, in LoginInput) (AuthResponse, error) {
	u, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, assistant_errors.ErrNotFound) {
			return AuthResponse{}, assistant_errors.ErrUnauthorized
		}
		return AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return AuthResponse{}, assistant_errors.ErrUnauthorized
	}

	return s.authResponse(u)
}

func (s *UserService) GetByID(ctx context.Context, id int64) (domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ParseAccessToken verifies the JWT and returns the user id it carries.
func (s *UserService) ParseAccessToken(token string) (int64, error) {
	if token == "" {
		return 0, assistant_errors.ErrUnauthorized
	}
	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, assistant_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, assistant_errors.ErrUnauthorized
	}
	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return 0, assistant_errors.ErrUnauthorized
	}
	return userID, nil
}

func (s *UserService) authResponse(u domain.User) (AuthResponse, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: strconv.FormatInt(u.ID, 10),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{
		User: UserInfo{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
		},
		AccessToken: token,
		ExpiresIn:   int64(s.accessTTL.Seconds()),
	}, nil
}

func validateRegister(in RegisterInput) error {
	if strings.TrimSpace(in.Username) == "" {
		return assistant_errors.ErrInvalidInput
	}
	if len(in.Password) < 6 {
		return assistant_errors.ErrInvalidInput
	}
	if !strings.Contains(in.Email, "@") {
		return assistant_errors.ErrInvalidInput
	}
	return nil
}
