package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"telecare/internal/core/domain"
	"telecare/internal/core/ports"
	apperrors "telecare/pkg/errors"
	"telecare/pkg/utils"
	"telecare/pkg/validation"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Claims carried in access tokens.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type SignupInput struct {
	FullName    string
	Email       string
	Password    string
	Gender      string
	PhoneNumber string
}

// AuthService handles patient signup, login, and token validation. Passwords
// are stored as bcrypt hashes; sessions are stateless JWTs.
type AuthService struct {
	users     ports.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *zap.SugaredLogger
}

func NewAuthService(users ports.UserRepository, jwtSecret string, tokenTTL time.Duration, logger *zap.SugaredLogger) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*domain.User, string, error) {
	if err := validation.ValidateFullName(input.FullName); err != nil {
		return nil, "", apperrors.NewInvalidInputError(err.Error())
	}
	if err := validation.ValidateEmail(input.Email); err != nil {
		return nil, "", apperrors.NewInvalidInputError(err.Error())
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return nil, "", apperrors.NewInvalidInputError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to hash password", 500)
	}

	now := time.Now()
	user := &domain.User{
		ID:           domain.UserID(utils.GenerateUserID()),
		FullName:     utils.SanitizeString(input.FullName),
		Email:        utils.NormalizeEmail(input.Email),
		PasswordHash: string(hash),
		Gender:       input.Gender,
		PhoneNumber:  input.PhoneNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, "", apperrors.NewConflictError("email already registered")
		}
		return nil, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Infow("user signed up", "user_id", user.ID, "email", utils.MaskSensitive(user.Email, 3))
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", apperrors.NewUnauthorizedError("invalid email or password")
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperrors.NewUnauthorizedError("invalid email or password")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Infow("user logged in", "user_id", user.ID)
	return user, token, nil
}

func (s *AuthService) GetProfile(ctx context.Context, id domain.UserID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user")
		}
		return nil, err
	}
	return user, nil
}

type UpdateProfileInput struct {
	FullName          string
	PhoneNumber       string
	PreferredLanguage string
	ProfileImageURL   string
}

func (s *AuthService) UpdateProfile(ctx context.Context, id domain.UserID, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user")
		}
		return nil, err
	}

	if input.FullName != "" {
		if err := validation.ValidateFullName(input.FullName); err != nil {
			return nil, apperrors.NewInvalidInputError(err.Error())
		}
		user.FullName = utils.SanitizeString(input.FullName)
	}
	if input.PhoneNumber != "" {
		user.PhoneNumber = input.PhoneNumber
	}
	if input.PreferredLanguage != "" {
		user.PreferredLanguage = input.PreferredLanguage
	}
	if input.ProfileImageURL != "" {
		user.ProfileImageURL = input.ProfileImageURL
	}
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ValidateToken parses and verifies an access token and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid or expired token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.NewUnauthorizedError("invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) issueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: string(user.ID),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			Issuer:    "telecare",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to sign token", 500)
	}
	return signed, nil
}
