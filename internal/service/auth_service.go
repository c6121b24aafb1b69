package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/enroll-admin-api/internal/models"
	"github.com/noah-isme/enroll-admin-api/internal/repository"
	"github.com/noah-isme/enroll-admin-api/internal/validation"
	"github.com/noah-isme/enroll-admin-api/pkg/config"
	appErrors "github.com/noah-isme/enroll-admin-api/pkg/errors"
)

// AuthService authenticates principals against the users projection and
// issues JWT access tokens for the admin console.
type AuthService struct {
	store     *repository.Store
	validator *validator.Validate
	logger    *zap.Logger
	jwt       config.JWTConfig
}

// NewAuthService constructs an AuthService.
func NewAuthService(store *repository.Store, v *validator.Validate, logger *zap.Logger, jwtCfg config.JWTConfig) *AuthService {
	if v == nil {
		v = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{store: store, validator: v, logger: logger, jwt: jwtCfg}
}

// EnsureAdmin seeds the bootstrap admin into the users projection when no
// admin exists yet. The password is stored bcrypt hashed.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	for _, u := range s.store.Users.All() {
		if u.Role == models.RoleAdmin {
			return nil
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash admin password")
	}

	tx := s.store.Begin()
	s.store.Users.Insert(models.User{
		FullName: "Administrator",
		Email:    strings.ToLower(email),
		Password: string(hash),
		Role:     models.RoleAdmin,
	})
	if err := tx.Commit(ctx, repository.KeyUsers); err != nil {
		return err
	}

	s.logger.Info("bootstrap admin created", zap.String("email", email))
	return nil
}

// Login verifies credentials and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, ok := s.store.Users.Find(func(u models.User) bool {
		return strings.EqualFold(u.Email, email)
	})
	if !ok {
		return nil, appErrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.logger.Warn("failed login attempt", zap.String("email", email))
		return nil, appErrors.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	return &models.LoginResponse{
		AccessToken: token,
		Email:       user.Email,
		Role:        user.Role,
		FullName:    user.FullName,
	}, nil
}

// ValidateToken parses and verifies an access token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErrors.ErrUnauthorized
		}
		return []byte(s.jwt.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

func (s *AuthService) issueToken(user models.User) (string, error) {
	now := time.Now()
	claims := models.Claims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			Issuer:    s.jwt.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwt.Expiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwt.Secret))
}
