package activity

import (
	"go.uber.org/fx"

	"signal_server/internal/modules/activity/service"
	"signal_server/internal/modules/activity/service/pg"
	"signal_server/pkg/db"
)

func Module() fx.Option {
	return fx.Module("activity",
		fx.Provide(
			func(txm *db.PgTxManager) service.Recorder {
				if txm == nil {
					return service.NewMemory()
				}
				return pg.New(txm)
			},
		),
	)
}
