package service

import (
	"context"
	"sync"

	"signal_server/internal/models"
)

// Memory store для тестов и запуска без БД.
type Memory struct {
	mu       sync.RWMutex
	nextID   int64
	users    map[int64]*models.User
	keys     map[string]int64 // key hash -> user id
	accounts map[string]*models.BrokerAccount
}

func NewMemory() *Memory {
	return &Memory{
		users:    make(map[int64]*models.User),
		keys:     make(map[string]int64),
		accounts: make(map[string]*models.BrokerAccount),
	}
}

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	user.ID = m.nextID
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *Memory) UserByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *Memory) UserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Username == username {
			cp := *user
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) CreateAPIKey(_ context.Context, key *models.APIKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.keys[key.KeyHash] = key.UserID
	return nil
}

func (m *Memory) UserByKeyHash(ctx context.Context, keyHash string) (*models.User, error) {
	m.mu.RLock()
	userID, ok := m.keys[keyHash]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return m.UserByID(ctx, userID)
}

func (m *Memory) CreateBrokerAccount(_ context.Context, account *models.BrokerAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *account
	m.accounts[account.ID] = &cp
	return nil
}

func (m *Memory) BrokerAccountByID(_ context.Context, id string) (*models.BrokerAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *account
	return &cp, nil
}

func (m *Memory) ActiveBrokerAccount(_ context.Context, userID int64) (*models.BrokerAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, account := range m.accounts {
		if account.UserID == userID && account.IsActive {
			cp := *account
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}
