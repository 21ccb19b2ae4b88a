package orders

import (
	"go.uber.org/fx"

	"signal_server/internal/modules/orders/service"
	"signal_server/internal/modules/orders/service/pg"
	"signal_server/pkg/db"
)

func Module() fx.Option {
	return fx.Module("orders",
		// Store: pg если есть пул, иначе память.
		fx.Provide(
			func(txm *db.PgTxManager) service.Store {
				if txm == nil {
					return service.NewMemory()
				}
				return pg.New(txm)
			},
		),
	)
}
