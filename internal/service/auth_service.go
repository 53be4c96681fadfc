package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/spec-kit/todo-service/internal/auth"
	"github.com/spec-kit/todo-service/internal/domain"
	"github.com/spec-kit/todo-service/internal/events"
	"github.com/spec-kit/todo-service/internal/ratelimit"
	"github.com/spec-kit/todo-service/internal/repository"
	apperrors "github.com/spec-kit/todo-service/pkg/util/errorutil"
)

const (
	maxEmailLength    = 254
	maxPasswordLength = 72 // bcrypt ignores anything beyond this
	uniqueViolation   = "23505"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(subject int64, email string) (string, time.Time)
}

// LoginThrottle limits repeated failed logins for one email.
type LoginThrottle interface {
	Check(ctx context.Context, email string) error
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// AuthResult is returned by successful registration and login.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokens     TokenIssuer
	hasher     auth.PasswordHasher
	throttle   LoginThrottle
	dispatcher events.Dispatcher
	logger     *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     TokenIssuer
	Hasher     auth.PasswordHasher
	Throttle   LoginThrottle
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.Tokens,
		hasher:     deps.Hasher,
		throttle:   deps.Throttle,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// RegisterUser creates an account and signs a token for it.
func (s *AuthService) RegisterUser(ctx context.Context, email, password string) (*AuthResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflict(apperrors.CodeEmailInUse, "email already in use")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, apperrors.NewConflict(apperrors.CodeEmailInUse, "email already in use")
		}
		return nil, err
	}

	s.publish(ctx, events.EventUserRegistered, user.ID, nil)
	return s.issue(user), nil
}

// LoginUser authenticates by email and password.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password required", nil)
	}

	if err := s.checkThrottle(ctx, email); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		// Spend the same bcrypt work as a real comparison.
		_ = s.hasher.Compare(s.dummy(), password)
		return nil, s.failLogin(ctx, email)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, apperrors.NewInternalError(err)
		}
		return nil, s.failLogin(ctx, email)
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.logger.Warn("login throttle reset failed", zap.Error(err))
		}
	}

	s.publish(ctx, events.EventUserLoggedIn, user.ID, nil)
	return s.issue(user), nil
}

func (s *AuthService) issue(user *domain.User) *AuthResult {
	token, exp := s.tokens.Issue(user.ID, user.Email)
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}
}

func (s *AuthService) checkThrottle(ctx context.Context, email string) error {
	if s.throttle == nil {
		return nil
	}
	err := s.throttle.Check(ctx, email)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ratelimit.ErrRateLimited):
		return apperrors.NewTooManyRequests("too many failed login attempts")
	default:
		s.logger.Warn("login throttle unavailable", zap.Error(err))
		return nil
	}
}

func (s *AuthService) failLogin(ctx context.Context, email string) error {
	if s.throttle != nil {
		if err := s.throttle.RecordFailure(ctx, email); err != nil {
			s.logger.Warn("login throttle update failed", zap.Error(err))
		}
	}
	return apperrors.NewUnauthorized(apperrors.CodeBadCredentials, nil)
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.logger.Error("dummy hash", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, userID int64, payload interface{}) {
	publish(ctx, s.dispatcher, s.logger, eventType, userID, payload)
}

func publish(ctx context.Context, d events.Dispatcher, logger *zap.Logger, eventType events.EventType, userID int64, payload interface{}) {
	if d == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	if err := d.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", apperrors.NewValidationError("email required", map[string]any{"field": "email"})
	}
	if len(email) > maxEmailLength {
		return "", apperrors.NewValidationError("email too long", map[string]any{"field": "email"})
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperrors.NewValidationError("invalid email", map[string]any{"field": "email"})
	}
	return email, nil
}

func validatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return apperrors.NewValidationError("password required", map[string]any{"field": "password"})
	}
	if len(password) > maxPasswordLength {
		return apperrors.NewValidationError("password too long", map[string]any{"field": "password"})
	}
	return nil
}
