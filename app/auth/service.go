// Package auth registers and signs in admin users. Registration is gated by
// invitation codes; sessions are signed tokens carried in a cookie.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lysyi3m/radio-site/app/apperr"
	"github.com/lysyi3m/radio-site/app/invites"
	"github.com/lysyi3m/radio-site/app/store"
	"github.com/lysyi3m/radio-site/app/validation"
)

const CollectionAdminUsers = "adminUsers"

const MinPasswordLength = 8

// User is stored under its lower-cased email, which keeps emails unique.
type User struct {
	ID           string    `json:"id,omitempty" firestore:"-"`
	Email        string    `json:"email" firestore:"email"`
	PasswordHash string    `json:"passwordHash" firestore:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
}

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Service struct {
	store            store.Store
	invites          *invites.Service
	tokens           *TokenManager
	limiter          *LoginLimiter
	registrationOpen func(ctx context.Context) bool
	bcryptCost       int
	now              func() time.Time
}

type Option func(*Service)

// WithRegistrationGate makes Register consult open before anything else.
func WithRegistrationGate(open func(ctx context.Context) bool) Option {
	return func(s *Service) { s.registrationOpen = open }
}

func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func NewService(st store.Store, inv *invites.Service, tokens *TokenManager, limiter *LoginLimiter, opts ...Option) *Service {
	s := &Service{
		store:            st,
		invites:          inv,
		tokens:           tokens,
		limiter:          limiter,
		registrationOpen: func(context.Context) bool { return true },
		bcryptCost:       bcrypt.DefaultCost,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Tokens() *TokenManager {
	return s.tokens
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkCredentials(email, password string) error {
	if err := validation.Struct(&credentials{Email: email, Password: password}); err != nil {
		return err
	}
	if len(password) < MinPasswordLength {
		return apperr.NewAuthError(apperr.AuthWeakPassword, nil)
	}
	return nil
}

// Register creates an admin account, consuming inviteCode. If the account
// cannot be created the code is released again.
func (s *Service) Register(ctx context.Context, email, password, inviteCode string) (*User, error) {
	if !s.registrationOpen(ctx) {
		return nil, apperr.NewAuthError(apperr.AuthRegistrationOff, nil)
	}

	email = normalizeEmail(email)
	if err := checkCredentials(email, password); err != nil {
		return nil, err
	}

	if _, err := s.invites.Validate(ctx, inviteCode); err != nil {
		return nil, err
	}
	if _, err := s.invites.Redeem(ctx, inviteCode, email); err != nil {
		return nil, err
	}

	user, err := s.CreateUser(ctx, email, password)
	if err != nil {
		if relErr := s.invites.Release(ctx, inviteCode, email); relErr != nil {
			slog.Error("Failed to release invitation code", "email", email, "error", relErr)
		}
		return nil, err
	}

	slog.Info("Admin registered", "email", email)
	return user, nil
}

// CreateUser stores a new admin without an invitation code.
func (s *Service) CreateUser(ctx context.Context, email, password string) (*User, error) {
	email = normalizeEmail(email)
	if err := checkCredentials(email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC().Truncate(time.Second),
	}

	var inUse error
	err = s.store.Transact(ctx, CollectionAdminUsers, email, func(cur store.Snapshot) (any, error) {
		if cur != nil {
			inUse = apperr.NewAuthError(apperr.AuthEmailInUse, nil)
			return nil, inUse
		}
		return user, nil
	})
	if err != nil {
		if inUse != nil && errors.Is(err, inUse) {
			return nil, err
		}
		return nil, apperr.Persistence("create", CollectionAdminUsers, err)
	}

	user.ID = email
	return user, nil
}

func (s *Service) user(ctx context.Context, email string) (*User, error) {
	snap, err := s.store.Get(ctx, CollectionAdminUsers, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NewAuthError(apperr.AuthUserNotFound, nil)
	}
	if err != nil {
		return nil, apperr.Persistence("get", CollectionAdminUsers, err)
	}

	var u User
	if err := snap.DataTo(&u); err != nil {
		return nil, apperr.Persistence("decode", CollectionAdminUsers, err)
	}
	u.ID = snap.ID()
	return &u, nil
}

// Login checks the password and returns a signed session token.
func (s *Service) Login(ctx context.Context, email, password, clientIP string) (string, *User, error) {
	if s.limiter != nil && !s.limiter.Allow(clientIP) {
		slog.Warn("Login throttled", "ip", clientIP)
		return "", nil, apperr.NewAuthError(apperr.AuthTooManyRequests, nil)
	}

	email = normalizeEmail(email)
	u, err := s.user(ctx, email)
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperr.NewAuthError(apperr.AuthWrongPassword, nil)
	}

	token, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return "", nil, err
	}

	if s.limiter != nil {
		s.limiter.Reset(clientIP)
	}
	slog.Info("Admin signed in", "email", u.Email)
	return token, u, nil
}

// Authenticate resolves a session token to its claims.
func (s *Service) Authenticate(token string) (*Claims, error) {
	if token == "" {
		return nil, apperr.NewAuthError(apperr.AuthUnauthenticated, nil)
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperr.NewAuthError(apperr.AuthUnauthenticated, err)
	}
	return claims, nil
}
