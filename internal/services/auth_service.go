package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/internal/repositories"
	"github.com/anonto42/spire/backend/pkg/logger"
)

// IDTokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type AuthConfig struct {
	Secret     string
	TTL        time.Duration
	BcryptCost int
}

// AuthService issues and verifies the API's own JWTs. Firebase is only used to exchange a
// Firebase ID token for one of them.
type AuthService struct {
	db        *gorm.DB
	users     repositories.UserRepository
	blacklist repositories.TokenBlacklist
	firebase  IDTokenVerifier
	cfg       AuthConfig
	now       func() time.Time
}

// NewAuthService creates an AuthService. firebase may be nil, which disables FirebaseLogin.
func NewAuthService(db *gorm.DB, users repositories.UserRepository, blacklist repositories.TokenBlacklist, firebase IDTokenVerifier, cfg AuthConfig) *AuthService {
	if cfg.TTL <= 0 {
		cfg.TTL = 72 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		db:        db,
		users:     users,
		blacklist: blacklist,
		firebase:  firebase,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Register creates a password account and signs the user in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, models.TokenResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, models.TokenResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:    strings.ToLower(req.Email),
		Username: req.Username,
		Password: string(hashed),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := s.users.WithTx(tx).Create(ctx, user)
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return fmt.Errorf("email or username %w", ErrAlreadyExists)
		}
		return err
	})
	if err != nil {
		return nil, models.TokenResponse{}, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, models.TokenResponse{}, err
	}
	return user, token, nil
}

// Login checks an email and password pair.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (models.TokenResponse, error) {
	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		user, err = s.users.WithTx(tx).GetByEmail(ctx, req.Email)
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	})
	if err != nil {
		return models.TokenResponse{}, err
	}

	if user.Password == "" {
		return models.TokenResponse{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return models.TokenResponse{}, ErrInvalidCredentials
	}
	return s.issueToken(user)
}

// FirebaseLogin verifies a Firebase ID token, links or creates the matching local user and
// issues a local JWT.
func (s *AuthService) FirebaseLogin(ctx context.Context, idToken string) (*models.User, models.TokenResponse, error) {
	if s.firebase == nil {
		return nil, models.TokenResponse{}, fmt.Errorf("firebase login %w", ErrUnavailable)
	}

	token, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		logger.Ctx(ctx).Debug().Err(err).Msg("firebase id token rejected")
		return nil, models.TokenResponse{}, ErrInvalidCredentials
	}
	email, _ := token.Claims["email"].(string)
	if email == "" {
		return nil, models.TokenResponse{}, badRequest("firebase account has no email")
	}
	email = strings.ToLower(email)
	uid := token.UID

	var user *models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		var err error
		user, err = users.GetByFirebaseUID(ctx, uid)
		if err == nil || !errors.Is(err, repositories.ErrNotFound) {
			return err
		}

		user, err = users.GetByEmail(ctx, email)
		switch {
		case err == nil:
			// existing password account signing in with Firebase for the first time
			user.FirebaseUID = &uid
			return tx.Model(user).Update("firebase_uid", uid).Error
		case !errors.Is(err, repositories.ErrNotFound):
			return err
		}

		user = &models.User{
			Email:       email,
			Username:    usernameFromEmail(email),
			FirebaseUID: &uid,
		}
		if err := users.Create(ctx, user); err != nil {
			if errors.Is(err, repositories.ErrAlreadyExists) {
				return fmt.Errorf("account %w", ErrAlreadyExists)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, models.TokenResponse{}, err
	}

	resp, err := s.issueToken(user)
	if err != nil {
		return nil, models.TokenResponse{}, err
	}
	return user, resp, nil
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// usernameFromEmail derives a username from the local part of email plus a random suffix.
func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	base := nonAlnum.ReplaceAllString(strings.ToLower(local), "")
	if len(base) > 20 {
		base = base[:20]
	}
	if base == "" {
		base = "user"
	}
	return base + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

// Logout revokes the token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *models.JwtCustomClaims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if err := s.blacklist.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// ParseToken validates a bearer token and returns its claims and the caller id.
func (s *AuthService) ParseToken(ctx context.Context, tokenString string) (*models.JwtCustomClaims, uuid.UUID, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, uuid.Nil, ErrInvalidCredentials
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, uuid.Nil, ErrInvalidCredentials
	}

	if claims.ID != "" {
		revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			logger.Ctx(ctx).Error().Err(err).Msg("token blacklist lookup failed")
			return nil, uuid.Nil, fmt.Errorf("token verification %w", ErrUnavailable)
		}
		if revoked {
			return nil, uuid.Nil, ErrInvalidCredentials
		}
	}
	return claims, userID, nil
}

func (s *AuthService) issueToken(user *models.User) (models.TokenResponse, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.TTL)
	claims := &models.JwtCustomClaims{
		UserID: user.ID.String(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return models.TokenResponse{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return models.TokenResponse{Token: signed, ExpiresAt: expiresAt.UTC()}, nil
}
