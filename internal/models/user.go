package models

import "time"

// User — владелец сигналов и ордеров. Аутентификация только по API-ключу.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// APIKey stores only the sha256 hash of an issued key.
// The raw key is shown to the user exactly once at registration.
type APIKey struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	KeyHash   string    `json:"-"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// BrokerAccount is a user's linked (simulated) brokerage account.
// The broker API key is encrypted at rest and never serialized.
type BrokerAccount struct {
	ID              string    `json:"id"`
	UserID          int64     `json:"user_id"`
	BrokerName      string    `json:"broker_name"` // e.g. MetaTrader5, cTrader
	AccountID       string    `json:"account_id"`
	EncryptedAPIKey string    `json:"-"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
