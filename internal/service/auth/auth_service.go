package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/railbooking/railbooking/internal/domain"
	"github.com/railbooking/railbooking/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const maxPasswordBytes = 72

type AuthUseCase interface {
	Register(ctx context.Context, input RegisterInput) (int64, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
}

type RegisterInput struct {
	Username  string
	Password  string
	FirstName *string
	LastName  *string
	MobileNo  *string
}

type LoginResult struct {
	Token string
	User  domain.User
}

// Claims is the signed token body.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type AuthService struct {
	users      repository.UserRepository
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time
	logger     *slog.Logger
}

type AuthServiceOption func(*AuthService)

func WithTokenTTL(ttl time.Duration) AuthServiceOption {
	return func(s *AuthService) {
		s.tokenTTL = ttl
	}
}

func WithBcryptCost(cost int) AuthServiceOption {
	return func(s *AuthService) {
		s.bcryptCost = cost
	}
}

func WithClock(now func() time.Time) AuthServiceOption {
	return func(s *AuthService) {
		s.now = now
	}
}

func NewAuthService(users repository.UserRepository, secret string, logger *slog.Logger, opts ...AuthServiceOption) *AuthService {
	s := &AuthService{
		users:      users,
		secret:     []byte(secret),
		tokenTTL:   8 * time.Hour,
		bcryptCost: 10,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (int64, error) {
	if strings.TrimSpace(input.Username) == "" || input.Password == "" {
		return 0, fmt.Errorf("%w: username/password required", domain.ErrValidation)
	}
	// bcrypt only hashes the first 72 bytes and refuses anything longer.
	if len(input.Password) > maxPasswordBytes {
		return 0, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, maxPasswordBytes)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     input.Username,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		MobileNo:     domain.NilIfBlank(input.MobileNo),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return user.ID, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: *user}, nil
}

func (s *AuthService) issue(user *domain.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) Authenticate(_ context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	// The parser's own expiry check uses the wall clock; recheck against
	// the injected one so tests can move time.
	if claims.ExpiresAt == nil || !s.now().Before(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("%w: token expired", domain.ErrUnauthorized)
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: token has no user", domain.ErrUnauthorized)
	}
	return &domain.Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

var _ AuthUseCase = (*AuthService)(nil)
