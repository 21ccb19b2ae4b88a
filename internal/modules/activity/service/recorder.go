package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"signal_server/internal/models"
	"signal_server/pkg/logger"
)

// Recorder — append-only журнал доменных событий.
// userID == nil для системных событий.
type Recorder interface {
	Record(ctx context.Context, userID *int64, action string, details map[string]any) error
}

// Memory keeps entries in a slice, newest last. Used in tests and when
// running without a database.
type Memory struct {
	mu      sync.Mutex
	entries []models.ActivityEntry
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Record(_ context.Context, userID *int64, action string, details map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, models.ActivityEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
	logger.Info("activity logged: [%s] user=%v details=%v", action, userID, details)
	return nil
}

// Entries returns a copy of everything recorded so far.
func (m *Memory) Entries() []models.ActivityEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.ActivityEntry, len(m.entries))
	copy(out, m.entries)
	return out
}
