package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"reviewhub/internal/cache"
	"reviewhub/internal/config"
	"reviewhub/internal/http-api/access"
	"reviewhub/internal/http-api/middleware/auth"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/mailer"
)

type AuthService interface {
	Signup(ctx context.Context, username, email string) error
	Token(ctx context.Context, username, confirmationCode string) (token string, expiresIn int64, err error)
	ValidateToken(tokenString string) (access.Actor, error)
}

type authService struct {
	userRepo       repository.UserRepository
	codes          cache.CodeStore
	mail           mailer.Mailer
	jwtSecret      string
	accessTokenTTL time.Duration
	codeTTL        time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	codes cache.CodeStore,
	mail mailer.Mailer,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:       userRepo,
		codes:          codes,
		mail:           mail,
		jwtSecret:      cfg.JWTSecret,
		accessTokenTTL: cfg.AccessTokenTTL,
		codeTTL:        cfg.ConfirmationCodeTTL,
	}
}

// Signup issues a confirmation code for the given identity. Repeating a
// signup for an existing (username, email) pair just issues a fresh
// code; a username or email taken by a different pair is a conflict.
func (s *authService) Signup(ctx context.Context, username, email string) error {
	if err := validateUsername(username); err != nil {
		return err
	}

	user, err := s.userRepo.FindByUsername(username)
	switch {
	case err == nil:
		if user.Email != email {
			return ErrNameInUse
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if _, err := s.userRepo.FindByEmail(email); err == nil {
			return ErrEmailInUse
		}
		user = &models.User{
			Username: username,
			Email:    email,
			Role:     access.RoleUser,
		}
		if err := s.userRepo.Create(user); err != nil {
			return err
		}
	default:
		return err
	}

	code := uuid.New().String()
	codeHash, err := auth.HashCode(code)
	if err != nil {
		return err
	}
	if err := s.codes.Set(ctx, username, codeHash, s.codeTTL); err != nil {
		return err
	}

	return s.mail.SendConfirmationCode(ctx, user.Email, code)
}

// Token exchanges a confirmation code for a bearer token
func (s *authService) Token(ctx context.Context, username, confirmationCode string) (string, int64, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", 0, ErrNotFound
		}
		return "", 0, err
	}

	codeHash, err := s.codes.Get(ctx, username)
	if err != nil {
		if errors.Is(err, cache.ErrCodeNotFound) {
			return "", 0, ErrInvalidCode
		}
		return "", 0, err
	}
	if err := auth.VerifyCode(codeHash, confirmationCode); err != nil {
		return "", 0, ErrInvalidCode
	}

	// One-shot: a consumed code cannot be replayed.
	if err := s.codes.Delete(ctx, username); err != nil {
		return "", 0, err
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return "", 0, err
	}
	return token, int64(s.accessTokenTTL.Seconds()), nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":   user.ID,
		"username":  user.Username,
		"role":      string(user.Role),
		"superuser": user.Superuser,
		"exp":       time.Now().Add(s.accessTokenTTL).Unix(),
		"iat":       time.Now().Unix(),
		"type":      "access",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken parses a bearer token and rebuilds the actor it was
// issued for.
func (s *authService) ValidateToken(tokenString string) (access.Actor, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return access.Anonymous, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return access.Anonymous, ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	superuser, _ := claims["superuser"].(bool)
	if userID == "" || !access.Role(role).Valid() {
		return access.Anonymous, ErrInvalidToken
	}

	return access.Actor{
		ID:            userID,
		Role:          access.Role(role),
		Superuser:     superuser,
		Authenticated: true,
	}, nil
}
