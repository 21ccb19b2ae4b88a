package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"signal_server/internal/models"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrUserExists = errors.New("user already exists")
	ErrBadAPIKey  = errors.New("invalid API key")
)

// Store персистит пользователей, API-ключи и брокерские счета.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByID(ctx context.Context, id int64) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)

	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	UserByKeyHash(ctx context.Context, keyHash string) (*models.User, error)

	CreateBrokerAccount(ctx context.Context, account *models.BrokerAccount) error
	BrokerAccountByID(ctx context.Context, id string) (*models.BrokerAccount, error)
	ActiveBrokerAccount(ctx context.Context, userID int64) (*models.BrokerAccount, error)
}

// Recorder — журнал активности (см. internal/modules/activity).
type Recorder interface {
	Record(ctx context.Context, userID *int64, action string, details map[string]any) error
}

// Accounts — регистрация и аутентификация по API-ключу.
type Accounts struct {
	store    Store
	cipher   *Cipher
	activity Recorder
}

func New(store Store, cipher *Cipher, activity Recorder) *Accounts {
	return &Accounts{
		store:    store,
		cipher:   cipher,
		activity: activity,
	}
}

// Registration is what the caller gets back from Register. RawAPIKey is
// shown exactly once and only its hash is stored.
type Registration struct {
	RawAPIKey     string
	User          *models.User
	BrokerAccount *models.BrokerAccount
}

func (a *Accounts) Register(ctx context.Context, username, brokerName, accountID, brokerAPIKey string) (*Registration, error) {
	if strings.TrimSpace(username) == "" {
		return nil, errors.New("username is required")
	}

	if _, err := a.store.UserByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, username)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		Username:  username,
		CreatedAt: now,
	}
	if err := a.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	rawKey := newRawAPIKey()
	if err := a.store.CreateAPIKey(ctx, &models.APIKey{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		KeyHash:   HashAPIKey(rawKey),
		Label:     "default",
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	encrypted, err := a.cipher.Encrypt(brokerAPIKey)
	if err != nil {
		return nil, err
	}
	account := &models.BrokerAccount{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		BrokerName:      brokerName,
		AccountID:       accountID,
		EncryptedAPIKey: encrypted,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := a.store.CreateBrokerAccount(ctx, account); err != nil {
		return nil, err
	}

	_ = a.activity.Record(ctx, &user.ID, models.ActivityAccountCreated, map[string]any{
		"broker_name": brokerName,
		"account_id":  accountID,
	})

	return &Registration{
		RawAPIKey:     rawKey,
		User:          user,
		BrokerAccount: account,
	}, nil
}

// Authenticate resolves the user behind a raw API key.
func (a *Accounts) Authenticate(ctx context.Context, rawKey string) (*models.User, error) {
	if rawKey == "" {
		return nil, ErrBadAPIKey
	}
	user, err := a.store.UserByKeyHash(ctx, HashAPIKey(rawKey))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrBadAPIKey
	}
	return user, err
}

// UserByID implements the lifecycle engine's resolver.
func (a *Accounts) UserByID(ctx context.Context, id int64) (*models.User, error) {
	return a.store.UserByID(ctx, id)
}

// BrokerAccountByID implements the lifecycle engine's resolver.
func (a *Accounts) BrokerAccountByID(ctx context.Context, id string) (*models.BrokerAccount, error) {
	return a.store.BrokerAccountByID(ctx, id)
}

// ActiveBrokerAccount returns the user's active linked account.
func (a *Accounts) ActiveBrokerAccount(ctx context.Context, userID int64) (*models.BrokerAccount, error) {
	return a.store.ActiveBrokerAccount(ctx, userID)
}

func newRawAPIKey() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
