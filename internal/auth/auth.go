// Package auth issues and verifies session tokens for email/password accounts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/oggyb/crush-radar/internal/config"
	"github.com/oggyb/crush-radar/internal/db"
	"github.com/oggyb/crush-radar/internal/logger"
	"github.com/oggyb/crush-radar/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidInput       = errors.New("invalid input")
)

const (
	MinPasswordLen = 6
	// bcrypt ignores input past 72 bytes
	maxPasswordLen = 72
	leeway         = 5 * time.Second
)

// Accounts persists credentials.
type Accounts interface {
	Create(ctx context.Context, a *db.Account) error
	GetByEmail(ctx context.Context, email string) (*db.Account, error)
	TouchLogin(ctx context.Context, id string, at time.Time) error
}

// Revocations remembers signed-out token IDs until they would expire anyway.
type Revocations interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Identity is the authenticated caller.
type Identity struct {
	ID    string
	Email string
}

// Session is what sign-up and sign-in hand back to the client.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Identity  Identity
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Service struct {
	accounts Accounts
	revoked  Revocations
	secret   []byte
	issuer   string
	ttl      time.Duration
	now      func() time.Time
	log      *slog.Logger
}

// NewService wires the auth service. revoked may be nil, in which case
// SignOut is a no-op on the server side.
func NewService(accounts Accounts, revoked Revocations, cfg config.AuthConfig, log *slog.Logger) *Service {
	log = logger.OrDiscard(log)
	ttl := cfg.AccessTokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		accounts: accounts,
		revoked:  revoked,
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.Issuer,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log,
	}
}

// WithClock replaces the time source. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SignUp creates an account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acc := &db.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.accounts.Create(ctx, acc); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		s.log.Error("create account failed", "email", email, "err", err)
		return nil, err
	}

	s.log.Info("account created", "id", acc.ID)
	return s.issue(Identity{ID: acc.ID, Email: acc.Email})
}

// SignIn checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	acc, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.accounts.TouchLogin(ctx, acc.ID, s.now()); err != nil {
		s.log.Warn("touch login failed", "id", acc.ID, "err", err)
	}
	return s.issue(Identity{ID: acc.ID, Email: acc.Email})
}

// SignOut revokes token for the rest of its lifetime. An already invalid
// token is reported as ErrInvalidToken.
func (s *Service) SignOut(ctx context.Context, token string) error {
	c, err := s.parse(token)
	if err != nil {
		return err
	}
	if s.revoked == nil {
		return nil
	}
	ttl := c.ExpiresAt.Time.Sub(s.now()) + leeway
	return s.revoked.Revoke(ctx, c.ID, ttl)
}

// Verify returns the identity behind a valid, unrevoked token.
func (s *Service) Verify(ctx context.Context, token string) (Identity, error) {
	c, err := s.parse(token)
	if err != nil {
		return Identity{}, err
	}
	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, c.ID)
		if err != nil {
			return Identity{}, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return Identity{}, ErrInvalidToken
		}
	}
	return Identity{ID: c.Subject, Email: c.Email}, nil
}

func (s *Service) issue(id Identity) (*Session, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	c := claims{
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Token: signed, ExpiresAt: exp, Identity: id}, nil
}

func (s *Service) parse(token string) (*claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || c.Subject == "" || c.ID == "" {
		return nil, ErrInvalidToken
	}
	return &c, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}
	return email, nil
}

func checkPassword(p string) error {
	if len(p) < MinPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLen)
	}
	if len(p) > maxPasswordLen {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, maxPasswordLen)
	}
	return nil
}
