package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"signal_server/internal/models"
	"signal_server/internal/modules/orders/service"
	"signal_server/pkg/db"
)

// Orders implement db store
type Orders struct {
	db *db.PgTxManager
}

// New instance
func New(txm *db.PgTxManager) *Orders {
	return &Orders{
		db: txm,
	}
}

func (o *Orders) Create(ctx context.Context, order *models.Order) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Orders.Create: %w", err)
		}
	}()
	return o.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, `
			INSERT INTO orders
				(id, user_id, broker_account_id, action, instrument,
				 entry_price, stop_loss, take_profit, status, broker_order_id,
				 created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			order.ID, order.UserID, order.BrokerAccountID,
			order.Action, order.Instrument,
			order.EntryPrice, order.StopLoss, order.TakeProfit,
			order.Status, order.BrokerOrderID,
			order.CreatedAt, order.UpdatedAt,
		)
		return err
	})
}

func (o *Orders) Get(ctx context.Context, id string) (order *models.Order, err error) {
	defer func() {
		if err != nil && !errors.Is(err, service.ErrNotFound) {
			err = fmt.Errorf("Orders.Get: %w", err)
		}
	}()
	err = o.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctxTx, `
			SELECT id, user_id, broker_account_id, action, instrument,
			       entry_price, stop_loss, take_profit, status, broker_order_id,
			       created_at, updated_at
			FROM orders WHERE id = $1`, id)
		order, err = scanOrder(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (o *Orders) ListByUser(ctx context.Context, userID int64) (orders []*models.Order, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Orders.ListByUser: %w", err)
		}
	}()
	err = o.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		rows, qErr := tx.Query(ctxTx, `
			SELECT id, user_id, broker_account_id, action, instrument,
			       entry_price, stop_loss, take_profit, status, broker_order_id,
			       created_at, updated_at
			FROM orders WHERE user_id = $1
			ORDER BY created_at DESC`, userID)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()

		for rows.Next() {
			order, sErr := scanOrder(rows)
			if sErr != nil {
				return sErr
			}
			orders = append(orders, order)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (o *Orders) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (err error) {
	defer func() {
		if err != nil && !errors.Is(err, service.ErrNotFound) {
			err = fmt.Errorf("Orders.UpdateStatus: %w", err)
		}
	}()
	return o.updateFields(ctx, id,
		`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`, status)
}

func (o *Orders) SetBrokerOrderID(ctx context.Context, id, brokerOrderID string) (err error) {
	defer func() {
		if err != nil && !errors.Is(err, service.ErrNotFound) {
			err = fmt.Errorf("Orders.SetBrokerOrderID: %w", err)
		}
	}()
	return o.updateFields(ctx, id,
		`UPDATE orders SET broker_order_id = $2, updated_at = $3 WHERE id = $1`, brokerOrderID)
}

func (o *Orders) updateFields(ctx context.Context, id, query string, value any) error {
	return o.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctxTx, query, id, value, time.Now().UTC())
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return service.ErrNotFound
		}
		return nil
	})
}

type scannable interface {
	Scan(dest ...any) error
}

func scanOrder(row scannable) (*models.Order, error) {
	var (
		order models.Order
		entry *decimal.Decimal
	)
	err := row.Scan(
		&order.ID, &order.UserID, &order.BrokerAccountID,
		&order.Action, &order.Instrument,
		&entry, &order.StopLoss, &order.TakeProfit,
		&order.Status, &order.BrokerOrderID,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, service.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	order.EntryPrice = entry
	return &order, nil
}
