package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"babytracker/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	password := "testpass123"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)

	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{
				ID:           1,
				Username:     "testuser",
				PasswordHash: string(hash),
			}, nil
		},
	}

	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
			if userID != 1 {
				t.Errorf("expected userID 1, got %d", userID)
			}
			if token == "" {
				t.Error("token should not be empty")
			}
			if userAgent != "ua" {
				t.Errorf("expected user agent ua, got %q", userAgent)
			}
			return nil
		},
	}

	svc := NewAuthService(users, sessions, &mockBabyRepo{})
	token, err := svc.Login(ctx, "testuser", password, "ua", "127.0.0.1")

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == "" {
		t.Error("expected token, got empty string")
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)

	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{
				ID:           1,
				Username:     "testuser",
				PasswordHash: string(hash),
			}, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{}, &mockBabyRepo{})

	_, err := svc.Login(ctx, "testuser", "wrongpass", "ua", "")
	if err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_SSOUserHasNoPassword(t *testing.T) {
	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{ID: 1, Username: username}, nil
		},
	}
	svc := NewAuthService(users, &mockSessionRepo{}, &mockBabyRepo{})

	if _, err := svc.Login(context.Background(), "sso", "", "ua", ""); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	var babyFor int64
	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return nil, nil
		},
		createFn: func(ctx context.Context, username, passwordHash string) (*domain.User, error) {
			if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte("secret")) != nil {
				t.Error("password hash does not match")
			}
			return &domain.User{ID: 7, Username: username}, nil
		},
	}
	babies := &mockBabyRepo{
		createFn: func(ctx context.Context, userID int64, name string) (*domain.Baby, error) {
			babyFor = userID
			if name != domain.DefaultBabyName {
				t.Errorf("expected default baby name, got %q", name)
			}
			return &domain.Baby{ID: 1, UserID: userID, Name: name}, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{}, babies).WithBcryptCost(bcrypt.MinCost)
	user, token, err := svc.Register(ctx, " parent ", "secret", "ua", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Username != "parent" {
		t.Errorf("expected trimmed username, got %q", user.Username)
	}
	if token == "" {
		t.Error("expected token")
	}
	if babyFor != 7 {
		t.Errorf("expected baby for user 7, got %d", babyFor)
	}
}

func TestAuthService_Register_Rejects(t *testing.T) {
	ctx := context.Background()
	taken := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{ID: 1, Username: username}, nil
		},
	}
	svc := NewAuthService(taken, &mockSessionRepo{}, &mockBabyRepo{})

	if _, _, err := svc.Register(ctx, "parent", "secret", "ua", ""); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
	if _, _, err := svc.Register(ctx, "  ", "secret", "ua", ""); !errors.Is(err, ErrInvalidRegistration) {
		t.Errorf("expected ErrInvalidRegistration, got %v", err)
	}
	if _, _, err := svc.Register(ctx, "parent", "", "ua", ""); !errors.Is(err, ErrInvalidRegistration) {
		t.Errorf("expected ErrInvalidRegistration, got %v", err)
	}
}

func TestAuthService_ValidateSession_Valid(t *testing.T) {
	ctx := context.Background()
	token := "validtoken"

	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, tok string) (*domain.Session, error) {
			return &domain.Session{
				Token:     token,
				UserID:    1,
				UserAgent: "ua",
				ExpiresAt: time.Now().Add(1 * time.Hour),
			}, nil
		},
	}

	users := &mockUserRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.User, error) {
			return &domain.User{
				ID:       1,
				Username: "testuser",
			}, nil
		},
	}

	svc := NewAuthService(users, sessions, &mockBabyRepo{})
	user, err := svc.ValidateSession(ctx, token, "ua")

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Username != "testuser" {
		t.Errorf("expected username 'testuser', got %s", user.Username)
	}
}

func TestAuthService_ValidateSession_Missing(t *testing.T) {
	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, tok string) (*domain.Session, error) {
			return nil, nil
		},
	}
	svc := NewAuthService(&mockUserRepo{}, sessions, &mockBabyRepo{})

	if _, err := svc.ValidateSession(context.Background(), "nope", "ua"); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAuthService_ValidateSession_Expired(t *testing.T) {
	ctx := context.Background()
	token := "expiredtoken"

	deleted := false
	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, tok string) (*domain.Session, error) {
			return &domain.Session{
				Token:     token,
				UserID:    1,
				UserAgent: "ua",
				ExpiresAt: time.Now().Add(-1 * time.Hour),
			}, nil
		},
		deleteFn: func(ctx context.Context, tok string) error {
			deleted = true
			return nil
		},
	}

	svc := NewAuthService(&mockUserRepo{}, sessions, &mockBabyRepo{})

	_, err := svc.ValidateSession(ctx, token, "ua")
	if err != ErrSessionExpired {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
	if !deleted {
		t.Error("expected session to be deleted")
	}
}

func TestAuthService_ValidateSession_UserAgentMismatch(t *testing.T) {
	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, tok string) (*domain.Session, error) {
			return &domain.Session{Token: tok, UserID: 1, UserAgent: "phone", ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
	svc := NewAuthService(&mockUserRepo{}, sessions, &mockBabyRepo{})

	if _, err := svc.ValidateSession(context.Background(), "tok", "laptop"); err != ErrSessionExpired {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
}

func TestAuthService_CreateInitialUser_Success(t *testing.T) {
	ctx := context.Background()

	users := &mockUserRepo{
		countFn: func(ctx context.Context) (int, error) {
			return 0, nil
		},
		createFn: func(ctx context.Context, username, passwordHash string) (*domain.User, error) {
			if username != "admin" {
				t.Errorf("expected username 'admin', got %s", username)
			}
			if passwordHash == "" {
				t.Error("password hash should not be empty")
			}
			return &domain.User{ID: 1, Username: username}, nil
		},
	}

	babyCreated := false
	babies := &mockBabyRepo{
		createFn: func(ctx context.Context, userID int64, name string) (*domain.Baby, error) {
			babyCreated = true
			return &domain.Baby{ID: 1, UserID: userID, Name: name}, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{}, babies).WithBcryptCost(bcrypt.MinCost)

	err := svc.CreateInitialUser(ctx, "admin", "password123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !babyCreated {
		t.Error("expected default baby to be created")
	}
}

func TestAuthService_CreateInitialUser_UsersExist(t *testing.T) {
	ctx := context.Background()

	users := &mockUserRepo{
		countFn: func(ctx context.Context) (int, error) {
			return 1, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{}, &mockBabyRepo{})

	err := svc.CreateInitialUser(ctx, "admin", "password123")
	if err == nil {
		t.Error("expected error when users exist")
	}
}

func TestAuthService_ValidateForwardAuth_ExistingUser(t *testing.T) {
	ctx := context.Background()

	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{
				ID:       1,
				Username: "ssouser",
			}, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{}, &mockBabyRepo{})

	user, err := svc.ValidateForwardAuth(ctx, "ssouser")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Username != "ssouser" {
		t.Errorf("expected username 'ssouser', got %s", user.Username)
	}
}

func TestAuthService_ValidateForwardAuth_NewUser(t *testing.T) {
	ctx := context.Background()

	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return nil, nil
		},
		createFn: func(ctx context.Context, username, passwordHash string) (*domain.User, error) {
			return &domain.User{
				ID:       2,
				Username: username,
			}, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{}, &mockBabyRepo{})

	user, err := svc.ValidateForwardAuth(ctx, "newssouser")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Username != "newssouser" {
		t.Errorf("expected username 'newssouser', got %s", user.Username)
	}

	if _, err := svc.ValidateForwardAuth(ctx, ""); err == nil {
		t.Error("expected error for empty remote user")
	}
}

func TestAuthService_LoginWithUser_Provisions(t *testing.T) {
	created := false
	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return nil, nil
		},
		createFn: func(ctx context.Context, username, passwordHash string) (*domain.User, error) {
			created = true
			if passwordHash != "" {
				t.Error("SSO users should not get a password hash")
			}
			return &domain.User{ID: 3, Username: username}, nil
		},
	}
	svc := NewAuthService(users, &mockSessionRepo{}, &mockBabyRepo{}).WithSessionTTL(time.Hour)

	token, err := svc.LoginWithUser(context.Background(), "sso@example.com", "ua", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == "" || !created {
		t.Errorf("expected provisioned user and token, created=%v", created)
	}
	if svc.SessionTTL() != time.Hour {
		t.Errorf("expected 1h TTL, got %v", svc.SessionTTL())
	}
}

func TestConstantTimeCompare(t *testing.T) {
	if !ConstantTimeCompare("abc", "abc") {
		t.Error("expected equal strings to match")
	}
	if ConstantTimeCompare("abc", "abd") {
		t.Error("expected different strings not to match")
	}
}

func TestAuthService_Register_RollsBackWhenBabyFails(t *testing.T) {
	var deleted int64
	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return nil, nil
		},
		createFn: func(ctx context.Context, username, passwordHash string) (*domain.User, error) {
			return &domain.User{ID: 7, Username: username}, nil
		},
		deleteFn: func(ctx context.Context, id int64) error {
			deleted = id
			return nil
		},
	}
	babies := &mockBabyRepo{
		createFn: func(ctx context.Context, userID int64, name string) (*domain.Baby, error) {
			return nil, errors.New("db down")
		},
	}
	sessionCreated := false
	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
			sessionCreated = true
			return nil
		},
	}

	svc := NewAuthService(users, sessions, babies).WithBcryptCost(bcrypt.MinCost)
	if _, _, err := svc.Register(context.Background(), "parent", "secret", "ua", ""); err == nil {
		t.Fatal("expected error when the baby cannot be created")
	}
	if deleted != 7 {
		t.Errorf("expected user 7 to be removed, got %d", deleted)
	}
	if sessionCreated {
		t.Error("no session should be started")
	}
}

func TestAuthService_LoginWithUser_RollsBackWhenBabyFails(t *testing.T) {
	deleted := false
	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return nil, nil
		},
		deleteFn: func(ctx context.Context, id int64) error {
			deleted = true
			return nil
		},
	}
	babies := &mockBabyRepo{
		createFn: func(ctx context.Context, userID int64, name string) (*domain.Baby, error) {
			return nil, errors.New("db down")
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{}, babies)
	if _, err := svc.LoginWithUser(context.Background(), "sso@example.com", "ua", ""); err == nil {
		t.Fatal("expected error")
	}
	if !deleted {
		t.Error("expected provisioned user to be removed")
	}
}
