// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"babytracker/internal/domain"
)

// DB implements an in-memory database storage. Every record kind draws its
// id from one shared counter.
type DB struct {
	mu            sync.Mutex
	users         map[int64]*domain.User
	babies        map[int64]*domain.Baby
	events        map[int64]*domain.Event
	voiceCommands map[int64]*domain.VoiceCommand
	sessions      map[string]*domain.Session

	currentID int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		users:         make(map[int64]*domain.User),
		babies:        make(map[int64]*domain.Baby),
		events:        make(map[int64]*domain.Event),
		voiceCommands: make(map[int64]*domain.VoiceCommand),
		sessions:      make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.BabyRepository = (*DB)(nil)
var _ domain.EventRepository = (*DB)(nil)
var _ domain.VoiceCommandRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

func (db *DB) nextID() int64 {
	db.currentID++
	return db.currentID
}

// --- BabyRepository ---

// CreateBaby adds a baby profile for a user.
func (db *DB) CreateBaby(ctx context.Context, userID int64, name string) (*domain.Baby, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	b := &domain.Baby{ID: db.nextID(), UserID: userID, Name: name}
	db.babies[b.ID] = b
	ret := *b
	return &ret, nil
}

// GetBabyByUserID returns the user's baby, or nil if none exists.
func (db *DB) GetBabyByUserID(ctx context.Context, userID int64) (*domain.Baby, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	b := db.babyForUser(userID)
	if b == nil {
		return nil, nil
	}
	ret := *b
	return &ret, nil
}

// babyForUser returns the lowest-id baby of the user. Caller holds mu.
func (db *DB) babyForUser(userID int64) *domain.Baby {
	var found *domain.Baby
	for _, b := range db.babies {
		if b.UserID == userID && (found == nil || b.ID < found.ID) {
			found = b
		}
	}
	return found
}

// --- EventRepository ---

// SaveEvent stores a new event.
func (db *DB) SaveEvent(ctx context.Context, babyID int64, category domain.Category, data string, timestamp time.Time) (*domain.Event, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	e := &domain.Event{
		ID:        db.nextID(),
		BabyID:    babyID,
		Category:  category,
		Data:      data,
		Timestamp: timestamp.UTC(),
	}
	db.events[e.ID] = e
	ret := *e
	return &ret, nil
}

// GetEvent returns an event by ID, or nil if not found.
func (db *DB) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	e, ok := db.events[id]
	if !ok {
		return nil, nil
	}
	ret := *e
	return &ret, nil
}

// UpdateEvent replaces the category and data of an existing event.
func (db *DB) UpdateEvent(ctx context.Context, e *domain.Event) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	cur, ok := db.events[e.ID]
	if !ok {
		return errors.New("event not found")
	}
	cur.Category = e.Category
	cur.Data = e.Data
	return nil
}

// ListEventsByOwner lists the most recent events of the user's baby.
func (db *DB) ListEventsByOwner(ctx context.Context, userID int64, limit int) ([]domain.Event, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := db.eventsForUser(userID, time.Time{})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// EventsSince lists the events of the user's baby recorded at or after since.
func (db *DB) EventsSince(ctx context.Context, userID int64, since time.Time) ([]domain.Event, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.eventsForUser(userID, since), nil
}

// eventsForUser copies matching events sorted newest first. Caller holds mu.
func (db *DB) eventsForUser(userID int64, since time.Time) []domain.Event {
	b := db.babyForUser(userID)
	if b == nil {
		return []domain.Event{}
	}
	result := make([]domain.Event, 0)
	for _, e := range db.events {
		if e.BabyID == b.ID && !e.Timestamp.Before(since) {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].ID > result[j].ID
		}
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result
}

// --- VoiceCommandRepository ---

// CreateVoiceCommand records a received utterance as unprocessed.
func (db *DB) CreateVoiceCommand(ctx context.Context, userID int64, command string, timestamp time.Time) (*domain.VoiceCommand, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	vc := &domain.VoiceCommand{
		ID:        db.nextID(),
		UserID:    userID,
		Command:   command,
		Timestamp: timestamp.UTC(),
	}
	db.voiceCommands[vc.ID] = vc
	ret := *vc
	return &ret, nil
}

// MarkVoiceCommandProcessed flags a voice command as having produced an event.
func (db *DB) MarkVoiceCommandProcessed(ctx context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	vc, ok := db.voiceCommands[id]
	if !ok {
		return errors.New("voice command not found")
	}
	vc.Processed = true
	return nil
}

// VoiceCommands returns the recorded commands of a user in arrival order.
func (db *DB) VoiceCommands(userID int64) []domain.VoiceCommand {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.VoiceCommand, 0)
	for _, vc := range db.voiceCommands {
		if vc.UserID == userID {
			out = append(out, *vc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			ret := *u
			return &ret, nil
		}
	}
	// Return nil if not found
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if u, ok := db.users[id]; ok {
		ret := *u
		return &ret, nil
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, errors.New("user already exists")
		}
	}

	u := &domain.User{
		ID:           db.nextID(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users[u.ID] = u
	ret := *u
	return &ret, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// Delete removes a user with its babies, their events, and the user's
// sessions and voice commands.
func (db *DB) Delete(ctx context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.users, id)
	for bid, b := range db.babies {
		if b.UserID != id {
			continue
		}
		for eid, e := range db.events {
			if e.BabyID == bid {
				delete(db.events, eid)
			}
		}
		delete(db.babies, bid)
	}
	for vid, vc := range db.voiceCommands {
		if vc.UserID == id {
			delete(db.voiceCommands, vid)
		}
	}
	for tok, s := range db.sessions {
		if s.UserID == id {
			delete(db.sessions, tok)
		}
	}
	return nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		if time.Now().After(s.ExpiresAt) {
			delete(r.db.sessions, token)
			return nil, nil
		}
		return s, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
