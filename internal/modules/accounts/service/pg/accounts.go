package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"signal_server/internal/models"
	"signal_server/internal/modules/accounts/service"
	"signal_server/pkg/db"
)

// Accounts implement db store
type Accounts struct {
	db *db.PgTxManager
}

// New instance
func New(txm *db.PgTxManager) *Accounts {
	return &Accounts{
		db: txm,
	}
}

func (a *Accounts) CreateUser(ctx context.Context, user *models.User) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Accounts.CreateUser: %w", err)
		}
	}()
	return a.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		return tx.QueryRow(ctxTx, `
			INSERT INTO users (username, created_at)
			VALUES ($1,$2) RETURNING id`,
			user.Username, user.CreatedAt,
		).Scan(&user.ID)
	})
}

func (a *Accounts) UserByID(ctx context.Context, id int64) (user *models.User, err error) {
	defer func() {
		if err != nil && !errors.Is(err, service.ErrNotFound) {
			err = fmt.Errorf("Accounts.UserByID: %w", err)
		}
	}()
	err = a.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		user, err = scanUser(tx.QueryRow(ctxTx, `
			SELECT id, username, created_at FROM users WHERE id = $1`, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (a *Accounts) UserByUsername(ctx context.Context, username string) (user *models.User, err error) {
	defer func() {
		if err != nil && !errors.Is(err, service.ErrNotFound) {
			err = fmt.Errorf("Accounts.UserByUsername: %w", err)
		}
	}()
	err = a.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		user, err = scanUser(tx.QueryRow(ctxTx, `
			SELECT id, username, created_at FROM users WHERE username = $1`, username))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (a *Accounts) CreateAPIKey(ctx context.Context, key *models.APIKey) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Accounts.CreateAPIKey: %w", err)
		}
	}()
	return a.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, `
			INSERT INTO api_keys (id, user_id, key_hash, label, created_at)
			VALUES ($1,$2,$3,$4,$5)`,
			key.ID, key.UserID, key.KeyHash, key.Label, key.CreatedAt,
		)
		return err
	})
}

func (a *Accounts) UserByKeyHash(ctx context.Context, keyHash string) (user *models.User, err error) {
	defer func() {
		if err != nil && !errors.Is(err, service.ErrNotFound) {
			err = fmt.Errorf("Accounts.UserByKeyHash: %w", err)
		}
	}()
	err = a.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		user, err = scanUser(tx.QueryRow(ctxTx, `
			SELECT u.id, u.username, u.created_at
			FROM users u JOIN api_keys k ON k.user_id = u.id
			WHERE k.key_hash = $1`, keyHash))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (a *Accounts) CreateBrokerAccount(ctx context.Context, account *models.BrokerAccount) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Accounts.CreateBrokerAccount: %w", err)
		}
	}()
	return a.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, `
			INSERT INTO broker_accounts
				(id, user_id, broker_name, account_id, encrypted_api_key,
				 is_active, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			account.ID, account.UserID, account.BrokerName, account.AccountID,
			account.EncryptedAPIKey, account.IsActive,
			account.CreatedAt, account.UpdatedAt,
		)
		return err
	})
}

func (a *Accounts) BrokerAccountByID(ctx context.Context, id string) (account *models.BrokerAccount, err error) {
	defer func() {
		if err != nil && !errors.Is(err, service.ErrNotFound) {
			err = fmt.Errorf("Accounts.BrokerAccountByID: %w", err)
		}
	}()
	err = a.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		account, err = scanBrokerAccount(tx.QueryRow(ctxTx, `
			SELECT id, user_id, broker_name, account_id, encrypted_api_key,
			       is_active, created_at, updated_at
			FROM broker_accounts WHERE id = $1`, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (a *Accounts) ActiveBrokerAccount(ctx context.Context, userID int64) (account *models.BrokerAccount, err error) {
	defer func() {
		if err != nil && !errors.Is(err, service.ErrNotFound) {
			err = fmt.Errorf("Accounts.ActiveBrokerAccount: %w", err)
		}
	}()
	err = a.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		account, err = scanBrokerAccount(tx.QueryRow(ctxTx, `
			SELECT id, user_id, broker_name, account_id, encrypted_api_key,
			       is_active, created_at, updated_at
			FROM broker_accounts
			WHERE user_id = $1 AND is_active
			ORDER BY created_at DESC LIMIT 1`, userID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanUser(row scannable) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, service.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func scanBrokerAccount(row scannable) (*models.BrokerAccount, error) {
	var account models.BrokerAccount
	err := row.Scan(
		&account.ID, &account.UserID, &account.BrokerName, &account.AccountID,
		&account.EncryptedAPIKey, &account.IsActive,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, service.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}
