package app

import (
	"context"
	"errors"
	"time"

	"babytracker/internal/domain"
)

type mockUserRepo struct {
	getByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	getByIDFn       func(ctx context.Context, id int64) (*domain.User, error)
	createFn        func(ctx context.Context, username, passwordHash string) (*domain.User, error)
	countFn         func(ctx context.Context) (int, error)
	deleteFn        func(ctx context.Context, id int64) error
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, errors.New("not found")
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, errors.New("not found")
}

func (m *mockUserRepo) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, username, passwordHash)
	}
	return &domain.User{ID: 1, Username: username, PasswordHash: passwordHash}, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error
	getByTokenFn    func(ctx context.Context, token string) (*domain.Session, error)
	deleteFn        func(ctx context.Context, token string) error
	deleteExpiredFn func(ctx context.Context) error
}

func (m *mockSessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	if m.createFn != nil {
		return m.createFn(ctx, userID, token, userAgent, ip, expiresAt)
	}
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, errors.New("not found")
}

func (m *mockSessionRepo) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) error {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return nil
}

type mockBabyRepo struct {
	createFn func(ctx context.Context, userID int64, name string) (*domain.Baby, error)
	getFn    func(ctx context.Context, userID int64) (*domain.Baby, error)
}

func (m *mockBabyRepo) CreateBaby(ctx context.Context, userID int64, name string) (*domain.Baby, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, name)
	}
	return &domain.Baby{ID: 100 + userID, UserID: userID, Name: name}, nil
}

func (m *mockBabyRepo) GetBabyByUserID(ctx context.Context, userID int64) (*domain.Baby, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return &domain.Baby{ID: 100 + userID, UserID: userID, Name: domain.DefaultBabyName}, nil
}

type mockEventRepo struct {
	saveFn   func(ctx context.Context, babyID int64, category domain.Category, data string, ts time.Time) (*domain.Event, error)
	getFn    func(ctx context.Context, id int64) (*domain.Event, error)
	updateFn func(ctx context.Context, e *domain.Event) error
	listFn   func(ctx context.Context, userID int64, limit int) ([]domain.Event, error)
	sinceFn  func(ctx context.Context, userID int64, since time.Time) ([]domain.Event, error)
}

func (m *mockEventRepo) SaveEvent(ctx context.Context, babyID int64, category domain.Category, data string, ts time.Time) (*domain.Event, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, babyID, category, data, ts)
	}
	return &domain.Event{ID: 1, BabyID: babyID, Category: category, Data: data, Timestamp: ts}, nil
}

func (m *mockEventRepo) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockEventRepo) UpdateEvent(ctx context.Context, e *domain.Event) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, e)
	}
	return nil
}

func (m *mockEventRepo) ListEventsByOwner(ctx context.Context, userID int64, limit int) ([]domain.Event, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockEventRepo) EventsSince(ctx context.Context, userID int64, since time.Time) ([]domain.Event, error) {
	if m.sinceFn != nil {
		return m.sinceFn(ctx, userID, since)
	}
	return nil, nil
}

type mockVoiceRepo struct {
	created   []string
	processed []int64
	createErr error
}

func (m *mockVoiceRepo) CreateVoiceCommand(ctx context.Context, userID int64, command string, ts time.Time) (*domain.VoiceCommand, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, command)
	return &domain.VoiceCommand{ID: int64(len(m.created)), UserID: userID, Command: command, Timestamp: ts}, nil
}

func (m *mockVoiceRepo) MarkVoiceCommandProcessed(ctx context.Context, id int64) error {
	m.processed = append(m.processed, id)
	return nil
}
