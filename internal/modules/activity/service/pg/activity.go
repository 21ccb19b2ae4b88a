package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"signal_server/pkg/db"
	"signal_server/pkg/logger"
)

// Activity implement db store
type Activity struct {
	db *db.PgTxManager
}

// New instance
func New(txm *db.PgTxManager) *Activity {
	return &Activity{
		db: txm,
	}
}

func (a *Activity) Record(ctx context.Context, userID *int64, action string, details map[string]any) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Activity.Record: %w", err)
		}
	}()

	if details == nil {
		details = map[string]any{}
	}
	var data []byte
	data, err = sonic.Marshal(details)
	if err != nil {
		return err
	}

	err = a.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, eErr := tx.Exec(ctxTx, `
			INSERT INTO activity_log (id, user_id, action, details, ts)
			VALUES ($1,$2,$3,$4,$5)`,
			uuid.NewString(), userID, action, data, time.Now().UTC(),
		)
		return eErr
	})
	if err != nil {
		return err
	}

	logger.Info("activity logged: [%s] user=%v", action, userID)
	return nil
}
