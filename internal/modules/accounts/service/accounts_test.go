package service

import (
	"context"
	"errors"
	"testing"
)

type noopRecorder struct{}

func (noopRecorder) Record(context.Context, *int64, string, map[string]any) error { return nil }

func newAccounts(t *testing.T) *Accounts {
	t.Helper()
	cipher, err := NewCipher("test-passphrase")
	if err != nil {
		t.Fatalf("NewCipher() error = %v", err)
	}
	return New(NewMemory(), cipher, noopRecorder{})
}

func TestAccounts_RegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	accounts := newAccounts(t)

	reg, err := accounts.Register(ctx, "alice", "MetaTrader5", "12345", "broker-secret")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if reg.RawAPIKey == "" {
		t.Fatal("no raw API key issued")
	}
	if reg.User.ID == 0 {
		t.Error("user id not assigned")
	}
	if !reg.BrokerAccount.IsActive {
		t.Error("broker account not active")
	}
	if reg.BrokerAccount.EncryptedAPIKey == "broker-secret" {
		t.Error("broker API key stored in plain text")
	}

	user, err := accounts.Authenticate(ctx, reg.RawAPIKey)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if user.ID != reg.User.ID || user.Username != "alice" {
		t.Errorf("authenticated user = %+v", user)
	}

	if _, err := accounts.Authenticate(ctx, "bogus-key"); !errors.Is(err, ErrBadAPIKey) {
		t.Errorf("Authenticate(bogus) error = %v, want ErrBadAPIKey", err)
	}
}

func TestAccounts_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	accounts := newAccounts(t)

	if _, err := accounts.Register(ctx, "alice", "MetaTrader5", "1", "k1"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	if _, err := accounts.Register(ctx, "alice", "cTrader", "2", "k2"); !errors.Is(err, ErrUserExists) {
		t.Errorf("second Register() error = %v, want ErrUserExists", err)
	}
}

func TestAccounts_ResolverLookups(t *testing.T) {
	ctx := context.Background()
	accounts := newAccounts(t)

	reg, err := accounts.Register(ctx, "bob", "cTrader", "777", "secret")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	user, err := accounts.UserByID(ctx, reg.User.ID)
	if err != nil || user.Username != "bob" {
		t.Errorf("UserByID = %+v, %v", user, err)
	}

	account, err := accounts.BrokerAccountByID(ctx, reg.BrokerAccount.ID)
	if err != nil || account.AccountID != "777" {
		t.Errorf("BrokerAccountByID = %+v, %v", account, err)
	}

	active, err := accounts.ActiveBrokerAccount(ctx, reg.User.ID)
	if err != nil || active.ID != reg.BrokerAccount.ID {
		t.Errorf("ActiveBrokerAccount = %+v, %v", active, err)
	}

	if _, err := accounts.UserByID(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("UserByID(9999) error = %v, want ErrNotFound", err)
	}
}
