package accounts

import (
	"go.uber.org/fx"

	"signal_server/internal/modules/accounts/service"
	"signal_server/internal/modules/accounts/service/pg"
	activitysvc "signal_server/internal/modules/activity/service"
	"signal_server/internal/modules/config"
	lifecyclesvc "signal_server/internal/modules/lifecycle/service"
	"signal_server/pkg/db"
)

func Module() fx.Option {
	return fx.Module("accounts",
		fx.Provide(
			func(txm *db.PgTxManager) service.Store {
				if txm == nil {
					return service.NewMemory()
				}
				return pg.New(txm)
			},
			func(cfg *config.Config) (*service.Cipher, error) {
				return service.NewCipher(cfg.EncryptionKey)
			},
			func(store service.Store, cipher *service.Cipher, activity activitysvc.Recorder) *service.Accounts {
				return service.New(store, cipher, activity)
			},
		),
		// Адаптер для движка жизненного цикла.
		fx.Provide(
			func(a *service.Accounts) lifecyclesvc.Resolver {
				return a
			},
		),
	)
}
