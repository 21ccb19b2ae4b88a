package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"signal_server/internal/models"
)

// ErrNotFound возвращается для неизвестного id ордера.
var ErrNotFound = errors.New("order not found")

// Store is the durable record store for orders. Concurrent updates to the
// same id are serialized by the implementation; the lifecycle engine is the
// only writer, so writers for different ids never contend.
type Store interface {
	Create(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error
	SetBrokerOrderID(ctx context.Context, id, brokerOrderID string) error
}

// Memory держит ордера в map под RWMutex. Используется в тестах
// и при запуске без DSN.
type Memory struct {
	mu   sync.RWMutex
	data map[string]*models.Order
}

func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]*models.Order),
	}
}

func (m *Memory) Create(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *order
	m.data[order.ID] = &cp
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	order, ok := m.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *order
	return &cp, nil
}

func (m *Memory) ListByUser(_ context.Context, userID int64) ([]*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*models.Order
	for _, order := range m.data {
		if order.UserID == userID {
			cp := *order
			out = append(out, &cp)
		}
	}
	// newest first, как в выдаче ордеров
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) UpdateStatus(_ context.Context, id string, status models.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.data[id]
	if !ok {
		return ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *Memory) SetBrokerOrderID(_ context.Context, id, brokerOrderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.data[id]
	if !ok {
		return ErrNotFound
	}
	order.BrokerOrderID = brokerOrderID
	order.UpdatedAt = time.Now().UTC()
	return nil
}
