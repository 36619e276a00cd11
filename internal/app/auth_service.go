// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"babytracker/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates that the provided username or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrUserNotFound indicates that the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken indicates that registration used an existing username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidRegistration indicates a blank username or password.
	ErrInvalidRegistration = errors.New("username and password are required")
)

const defaultSessionTTL = 24 * time.Hour

// AuthService handles authentication and session management.
type AuthService struct {
	users      domain.UserRepository
	sessions   domain.SessionRepository
	babies     domain.BabyRepository
	sessionTTL time.Duration
	bcryptCost int
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository, babies domain.BabyRepository) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		babies:     babies,
		sessionTTL: defaultSessionTTL,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// WithSessionTTL sets how long new sessions stay valid.
func (s *AuthService) WithSessionTTL(d time.Duration) *AuthService {
	if d > 0 {
		s.sessionTTL = d
	}
	return s
}

// WithBcryptCost sets the cost used to hash new passwords.
func (s *AuthService) WithBcryptCost(cost int) *AuthService {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		s.bcryptCost = cost
	}
	return s
}

// SessionTTL returns the lifetime of new sessions.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Login authenticates a user and creates a session.
func (s *AuthService) Login(ctx context.Context, username, password, userAgent, ip string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil || user == nil || user.PasswordHash == "" {
		return "", ErrInvalidCredentials
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.startSession(ctx, user.ID, userAgent, ip)
}

// Register creates a caregiver account with its default baby profile and
// logs it in.
func (s *AuthService) Register(ctx context.Context, username, password, userAgent, ip string) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, "", ErrInvalidRegistration
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	user, err := s.provision(ctx, username, string(hash))
	if err != nil {
		return nil, "", err
	}

	token, err := s.startSession(ctx, user.ID, userAgent, ip)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout invalidates a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// ValidateSession checks if a session token is valid and matches the user agent.
func (s *AuthService) ValidateSession(ctx context.Context, token, userAgent string) (*domain.User, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil || session == nil {
		return nil, ErrSessionNotFound
	}

	if time.Now().After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	if session.UserAgent != userAgent {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil || user == nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}

// CreateInitialUser creates the first user if no users exist.
func (s *AuthService) CreateInitialUser(ctx context.Context, username, password string) error {
	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}

	if count > 0 {
		return errors.New("users already exist")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return err
	}

	_, err = s.provision(ctx, username, string(hash))
	return err
}

// ValidateForwardAuth validates a request from Authelia forward auth.
// It checks for the Remote-User header set by Authelia.
func (s *AuthService) ValidateForwardAuth(ctx context.Context, remoteUser string) (*domain.User, error) {
	if remoteUser == "" {
		return nil, errors.New("no remote user header")
	}

	user, err := s.users.GetByUsername(ctx, remoteUser)
	if err != nil || user == nil {
		// Auto-create user from SSO if they don't exist
		user, err = s.provision(ctx, remoteUser, "")
		if err != nil {
			return nil, err
		}
	}

	return user, nil
}

// LoginWithUser creates a session for an already authenticated user (e.g. via SSO).
func (s *AuthService) LoginWithUser(ctx context.Context, username, userAgent, ip string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil || user == nil {
		// Auto-provision with an empty password hash; SSO users cannot use Login.
		user, err = s.provision(ctx, username, "")
		if err != nil {
			// Creation can race with another login (unique constraint); look again.
			user, err = s.users.GetByUsername(ctx, username)
			if err != nil || user == nil {
				return "", fmt.Errorf("provision %q: %w", username, ErrUserNotFound)
			}
		}
	}

	return s.startSession(ctx, user.ID, userAgent, ip)
}

// provision creates a user together with its default baby profile.
func (s *AuthService) provision(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	user, err := s.users.Create(ctx, username, passwordHash)
	if err != nil {
		return nil, err
	}
	if _, err := s.babies.CreateBaby(ctx, user.ID, domain.DefaultBabyName); err != nil {
		// An account without a baby can never log events; free the username.
		if derr := s.users.Delete(ctx, user.ID); derr != nil {
			return nil, fmt.Errorf("create baby for %q: %w (rollback: %v)", username, err, derr)
		}
		return nil, fmt.Errorf("create baby for %q: %w", username, err)
	}
	return user, nil
}

func (s *AuthService) startSession(ctx context.Context, userID int64, userAgent, ip string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(s.sessionTTL)
	if err := s.sessions.Create(ctx, userID, token, userAgent, ip, expiresAt); err != nil {
		return "", err
	}
	return token, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
