package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/examdesk/examdesk-api/internal/models"
	"github.com/examdesk/examdesk-api/pkg/config"
	appErrors "github.com/examdesk/examdesk-api/pkg/errors"
)

// UserReader is the account lookup surface the auth service depends on.
type UserReader interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
}

// AuthService authenticates operators and issues/validates JWTs.
type AuthService struct {
	users    UserReader
	cfg      config.JWTConfig
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService constructs the service.
func NewAuthService(users UserReader, cfg config.JWTConfig, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:    users,
		cfg:      cfg,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// Login verifies credentials and returns an access token. Invalid email and
// invalid password produce the same error.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login request")
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, appErrors.ErrUserNotFound) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active {
		return nil, appErrors.ErrInactiveAccount
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	token, expiresIn, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("last login update failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		IssuedAt:    s.now().UTC(),
		User: models.UserInfo{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     user.Role,
		},
	}, nil
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErrors.ErrUnauthorized
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.ErrUnauthorized
	}
	return claims, nil
}

func (s *AuthService) issueToken(user *models.User) (string, int64, error) {
	now := s.now().UTC()
	expiry := now.Add(s.cfg.Expiration)
	claims := models.JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.cfg.Issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sign token")
	}
	return signed, int64(s.cfg.Expiration.Seconds()), nil
}
