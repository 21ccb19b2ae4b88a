package postgres

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"signal_server/internal/modules/config"
	"signal_server/pkg/db"
	"signal_server/pkg/logger"
)

// Module поднимает пул соединений. Без DSN возвращает nil-менеджер,
// stores в этом случае работают в памяти.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(ctx context.Context, cfg *config.Config) (*db.PgTxManager, error) {
				if cfg.DB == "" {
					logger.Info("DATABASE_DSN is empty, falling back to in-memory stores")
					return nil, nil
				}

				poolMaster, err := db.NewPool(ctx, db.PoolConfig{
					DSN: cfg.DB,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create poolMaster: %w", err)
				}

				err = poolMaster.Ping(ctx)
				if err != nil {
					return nil, err
				}

				return db.NewPgTxManager(poolMaster), nil
			},
		),
	)
}
