package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"babytracker/internal/domain"
	"babytracker/internal/interpreter"
)

func newTestVoiceService(t *testing.T, events *mockEventRepo, babies *mockBabyRepo) (*VoiceService, *mockVoiceRepo, *observer.ObservedLogs) {
	t.Helper()
	fixed := time.Date(2024, 3, 1, 2, 15, 0, 0, time.UTC)
	core, logs := observer.New(zap.DebugLevel)
	commands := &mockVoiceRepo{}
	svc := NewVoiceService(commands, events, babies, interpreter.NewWithClock(func() time.Time { return fixed }), zap.New(core))
	svc.now = func() time.Time { return fixed }
	return svc, commands, logs
}

func TestVoiceService_Process_Feeding(t *testing.T) {
	var saved string
	events := &mockEventRepo{
		saveFn: func(ctx context.Context, babyID int64, c domain.Category, data string, ts time.Time) (*domain.Event, error) {
			saved = data
			return &domain.Event{ID: 11, BabyID: babyID, Category: c, Data: data, Timestamp: ts}, nil
		},
	}
	svc, commands, logs := newTestVoiceService(t, events, &mockBabyRepo{})

	out, err := svc.Process(context.Background(), 1, "Feeding 4 oz formula")
	require.NoError(t, err)
	assert.Equal(t, "Logged feeding event successfully", out.Message)
	assert.Equal(t, domain.CategoryFeeding, out.Event.Category)
	assert.JSONEq(t, `{"type":"formula","amount":4}`, saved)

	assert.Equal(t, []string{"Feeding 4 oz formula"}, commands.created)
	assert.Equal(t, []int64{1}, commands.processed)
	assert.Equal(t, 1, logs.FilterMessage("voice command logged event").Len())
}

func TestVoiceService_Process_Sleep(t *testing.T) {
	var saved string
	events := &mockEventRepo{
		saveFn: func(ctx context.Context, babyID int64, c domain.Category, data string, ts time.Time) (*domain.Event, error) {
			saved = data
			return &domain.Event{ID: 12, BabyID: babyID, Category: c, Data: data, Timestamp: ts}, nil
		},
	}
	svc, _, _ := newTestVoiceService(t, events, &mockBabyRepo{})

	out, err := svc.Process(context.Background(), 1, "baby woke up from sleep")
	require.NoError(t, err)
	assert.Equal(t, "Logged sleep event successfully", out.Message)

	var p domain.SleepPayload
	require.NoError(t, json.Unmarshal([]byte(saved), &p))
	require.NotNil(t, p.EndTime)
	assert.True(t, p.StartTime.Equal(*p.EndTime))
}

func TestVoiceService_Process_Rejected(t *testing.T) {
	saveCalled := false
	events := &mockEventRepo{
		saveFn: func(ctx context.Context, babyID int64, c domain.Category, data string, ts time.Time) (*domain.Event, error) {
			saveCalled = true
			return nil, nil
		},
	}
	svc, commands, logs := newTestVoiceService(t, events, &mockBabyRepo{})

	for _, cmd := range []string{"", "   ", "bath time"} {
		_, err := svc.Process(context.Background(), 1, cmd)
		require.Error(t, err)
		assert.True(t, interpreter.Rejected(err))
		assert.Equal(t, interpreter.RejectionMessage, err.Error())
	}

	assert.False(t, saveCalled)
	assert.Len(t, commands.created, 3)
	assert.Empty(t, commands.processed)
	assert.Equal(t, 3, logs.FilterMessage("voice command not understood").Len())
}

func TestVoiceService_Process_NoBaby(t *testing.T) {
	babies := &mockBabyRepo{
		getFn: func(ctx context.Context, userID int64) (*domain.Baby, error) { return nil, nil },
	}
	svc, commands, _ := newTestVoiceService(t, &mockEventRepo{}, babies)

	_, err := svc.Process(context.Background(), 1, "diaper")
	assert.ErrorIs(t, err, ErrNoBaby)
	assert.Empty(t, commands.created)
}

func TestVoiceService_Process_StorageErrors(t *testing.T) {
	events := &mockEventRepo{
		saveFn: func(ctx context.Context, babyID int64, c domain.Category, data string, ts time.Time) (*domain.Event, error) {
			return nil, errors.New("disk full")
		},
	}
	svc, commands, _ := newTestVoiceService(t, events, &mockBabyRepo{})

	_, err := svc.Process(context.Background(), 1, "dirty diaper")
	assert.EqualError(t, err, "disk full")
	assert.Empty(t, commands.processed)

	commands.createErr = errors.New("db down")
	_, err = svc.Process(context.Background(), 1, "dirty diaper")
	assert.ErrorContains(t, err, "record voice command")
}
