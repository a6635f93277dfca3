package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/example/service-order-scheduler/internal/password"
	"github.com/example/service-order-scheduler/internal/scheduler"
)

// SessionRepository captures the persistence interactions for issued sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// CollaboratorDirectory checks employee credentials and resolves the employee behind a username.
type CollaboratorDirectory interface {
	Login(ctx context.Context, username, password string) error
	GetEmployeeByUsername(ctx context.Context, username string) (scheduler.Employee, error)
}

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AdminCredentials is the configured administrator account.
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

// AuthService issues and validates the explicit admin and collaborator sessions.
type AuthService struct {
	admin          AdminCredentials
	directory      CollaboratorDirectory
	sessions       SessionRepository
	verifyPassword PasswordVerifier
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(admin AdminCredentials, directory CollaboratorDirectory, sessions SessionRepository, verify PasswordVerifier, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(admin, directory, sessions, verify, tokenGenerator, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(admin AdminCredentials, directory CollaboratorDirectory, sessions SessionRepository, verify PasswordVerifier, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = password.Verify
	}
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	return &AuthService{
		admin:          admin,
		directory:      directory,
		sessions:       sessions,
		verifyPassword: verify,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// AuthenticateAdmin checks the configured administrator credentials and issues a session.
func (s *AuthService) AuthenticateAdmin(ctx context.Context, params AdminLoginParams) (session Session, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	logger := s.loggerWith(ctx, "AuthenticateAdmin", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "admin authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("session_id", session.ID).InfoContext(ctx, "admin authenticated")
	}()

	if email == "" || params.Password == "" || s.admin.PasswordHash == "" || email != s.admin.Email {
		err = ErrInvalidCredentials
		return
	}
	if verr := s.verifyPassword(s.admin.PasswordHash, params.Password); verr != nil {
		err = ErrInvalidCredentials
		return
	}

	session, err = s.issue(ctx, Principal{UserID: "admin:" + email, Role: RoleAdmin, DisplayName: email})
	return
}

// AuthenticateCollaborator delegates the credential check to the backend and issues a
// session bound to the resolved employee.
func (s *AuthService) AuthenticateCollaborator(ctx context.Context, params CollaboratorLoginParams) (session Session, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.directory == nil {
		err = fmt.Errorf("collaborator directory not configured")
		return
	}

	username := strings.TrimSpace(params.Username)
	logger := s.loggerWith(ctx, "AuthenticateCollaborator", "username", username)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "collaborator authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"session_id", session.ID,
			"employee_id", session.Principal.EmployeeID,
		).InfoContext(ctx, "collaborator authenticated")
	}()

	if username == "" || params.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	if err = s.directory.Login(ctx, username, params.Password); err != nil {
		if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	var employee scheduler.Employee
	employee, err = s.directory.GetEmployeeByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	session, err = s.issue(ctx, Principal{
		UserID:      "employee:" + strconv.Itoa(employee.ID),
		EmployeeID:  employee.ID,
		Role:        RoleCollaborator,
		DisplayName: employee.Name,
	})
	return
}

func (s *AuthService) issue(ctx context.Context, principal Principal) (Session, error) {
	now := s.now()
	id := s.tokenGenerator()
	token := s.tokenGenerator()
	if token == "" {
		token = id
	}

	session := Session{
		ID:        id,
		Token:     token,
		Principal: principal,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if s.sessions == nil {
		return session, nil
	}
	if err := s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
		return Session{}, err
	}
	return s.sessions.CreateSession(ctx, session)
}

// ValidateSession verifies that the token corresponds to an active session and returns its principal.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "ValidateSession", "token_provided", trimmed != "")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "session validation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("principal_id", principal.UserID).DebugContext(ctx, "session validated")
	}()

	if trimmed == "" {
		err = ErrUnauthorized
		return
	}

	var session Session
	session, err = s.sessions.GetSession(ctx, trimmed)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}

	if session.RevokedAt != nil && !session.RevokedAt.IsZero() {
		err = ErrSessionRevoked
		return
	}
	if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(s.now()) {
		err = ErrSessionExpired
		return
	}

	principal = session.Principal
	return
}

// Logout revokes the session token. Revoked tokens fail validation from then on.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "Logout")

	if _, err := s.sessions.RevokeSession(ctx, trimmed, s.now()); err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrUnauthorized
		}
		logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if err := s.sessions.DeleteExpiredSessions(ctx, s.now()); err != nil {
		logger.ErrorContext(ctx, "failed to prune expired sessions", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "session revoked")
	return nil
}
