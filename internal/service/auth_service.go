package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
)

const minPasswordLength = 8

// ProfileUpdate changes the caller's own account. A new password replaces the hash.
type ProfileUpdate struct {
	Name     domain.Optional[string]
	Email    domain.Optional[string]
	Password domain.Optional[string]
}

// --- Service Interface ---
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (token string, account *domain.Account, err error)
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	UpdateProfile(ctx context.Context, accountID string, upd ProfileUpdate) (*domain.Account, error)
	DeleteAccount(ctx context.Context, accountID string) error
	// ParseToken validates a bearer token and returns the account ID it was issued for.
	ParseToken(token string) (string, error)
}

// --- Service Implementation ---

// authService implements the AuthService interface.
type authService struct {
	accounts      repository.AccountRepository
	jwtSecret     string
	jwtExpiration time.Duration
	logger        *slog.Logger
}

// NewAuthService creates a new instance of authService.
func NewAuthService(accounts repository.AccountRepository, jwtSecret string, jwtExpiration time.Duration, logger *slog.Logger) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		accounts:      accounts,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		logger:        logger.With(slog.String("component", "auth_service")),
	}
}

func validateEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// Register handles new account registration.
func (s *authService) Register(ctx context.Context, name, email, password string) (*domain.Account, error) {
	email = domain.NormalizeEmail(email)

	var details []string
	if name == "" {
		details = append(details, "name: is required")
	}
	if !validateEmail(email) {
		details = append(details, "email: must be a valid email address")
	}
	if len(password) < minPasswordLength {
		details = append(details, fmt.Sprintf("password: must be at least %d characters", minPasswordLength))
	}
	if err := validationError(details); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &domain.Account{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	// The unique email constraint settles concurrent registrations.
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, mapRepoError(err, nil, ErrEmailTaken)
	}
	return account, nil
}

// Login handles authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	if email == "" || password == "" {
		return "", nil, &ValidationError{Details: []string{"email and password are required"}}
	}

	account, err := s.accounts.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err := s.generateJWT(account)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("account_id", account.ID), slog.String("error", err.Error()))
		return "", nil, ErrTokenGeneration
	}
	return token, account, nil
}

func (s *authService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, mapRepoError(err, ErrAccountNotFound, nil)
	}
	return account, nil
}

func (s *authService) UpdateProfile(ctx context.Context, accountID string, upd ProfileUpdate) (*domain.Account, error) {
	var details []string
	if upd.Name.Set && (upd.Name.Null || upd.Name.Value == "") {
		details = append(details, "name: cannot be empty")
	}
	if upd.Email.Set && (upd.Email.Null || !validateEmail(domain.NormalizeEmail(upd.Email.Value))) {
		details = append(details, "email: must be a valid email address")
	}
	if upd.Password.Set && (upd.Password.Null || len(upd.Password.Value) < minPasswordLength) {
		details = append(details, fmt.Sprintf("password: must be at least %d characters", minPasswordLength))
	}
	if err := validationError(details); err != nil {
		return nil, err
	}

	patch := domain.AccountPatch{Name: upd.Name, Email: upd.Email}
	if upd.Password.Present() {
		hashed, err := bcrypt.GenerateFromPassword([]byte(upd.Password.Value), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		patch.PasswordHash = domain.Some(string(hashed))
	}
	if patch.IsEmpty() {
		return s.GetAccount(ctx, accountID)
	}

	account, err := s.accounts.Update(ctx, accountID, patch)
	if err != nil {
		return nil, mapRepoError(err, ErrAccountNotFound, ErrEmailTaken)
	}
	return account, nil
}

// DeleteAccount removes the account with its gym logs and plans.
func (s *authService) DeleteAccount(ctx context.Context, accountID string) error {
	if err := s.accounts.Delete(ctx, accountID); err != nil {
		return mapRepoError(err, ErrAccountNotFound, nil)
	}
	s.logger.Info("account deleted", slog.String("account_id", accountID))
	return nil
}

// --- JWT Helper ---

// TokenClaims defines the structure of the JWT payload.
type TokenClaims struct {
	AccountID string `json:"uid"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given account.
func (s *authService) generateJWT(account *domain.Account) (string, error) {
	now := time.Now()
	claims := &TokenClaims{
		AccountID: account.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "gym-tracker",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ParseToken(tokenString string) (string, error) {
	return ParseToken(tokenString, s.jwtSecret)
}

// ParseToken verifies an HS256 token signed with secret and returns its account ID.
func ParseToken(tokenString, secret string) (string, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: invalid or expired token", ErrUnauthorized)
	}
	if claims.AccountID == "" {
		return "", fmt.Errorf("%w: token has no account id", ErrUnauthorized)
	}
	return claims.AccountID, nil
}
