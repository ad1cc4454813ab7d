package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	intconfig "ridebooking/internal/config"
	intdb "ridebooking/internal/db"
	"ridebooking/internal/notify"
	"ridebooking/internal/repositories"
	"ridebooking/internal/services"
)

type store struct {
	bookings services.BookingStore
	users    services.UserStore
	ping     func(ctx context.Context) error
	close    func()
}

func openStore(ctx context.Context, env intconfig.Env) (store, error) {
	switch env.StoreDriver {
	case "memory":
		return store{
			bookings: repositories.NewMemoryBookingRepo(),
			users:    repositories.NewMemoryUserRepo(),
			ping:     func(context.Context) error { return nil },
			close:    func() {},
		}, nil
	case "postgres":
		gdb, err := intconfig.ConnectGorm(env.PostgresDSN)
		if err != nil {
			return store{}, err
		}
		if err := repositories.AutoMigrate(gdb); err != nil {
			intconfig.CloseDB()
			return store{}, fmt.Errorf("migrate postgres: %w", err)
		}
		return store{
			bookings: repositories.GormBookingRepo{DB: gdb},
			users:    repositories.GormUserRepo{DB: gdb},
			ping:     intconfig.PingDB,
			close:    intconfig.CloseDB,
		}, nil
	case "", "mysql":
		db, err := intconfig.ConnectDB(env.MySQLDSN)
		if err != nil {
			return store{}, err
		}
		if err := intdb.EnsureSchema(ctx, db); err != nil {
			intconfig.CloseDB()
			return store{}, fmt.Errorf("ensure schema: %w", err)
		}
		return store{
			bookings: repositories.BookingRepo{DB: db},
			users:    repositories.UserRepo{DB: db},
			ping:     intconfig.PingDB,
			close:    intconfig.CloseDB,
		}, nil
	default:
		return store{}, fmt.Errorf("unknown store driver %q", env.StoreDriver)
	}
}

// openRedis returns a client only when something is configured to use it.
func openRedis(env intconfig.Env) redis.UniversalClient {
	if env.SessionStore != "redis" && env.NotifyTransport != notify.TransportRedis {
		return nil
	}
	return repositories.NewRedisClient(env.RedisAddr, env.RedisPassword, env.RedisDB)
}

// startNotifier runs the email worker and returns the notifier used on the
// request path together with its stop function.
func startNotifier(ctx context.Context, env intconfig.Env, rdb redis.UniversalClient, logger *zap.Logger) (services.Notifier, func(), error) {
	if env.NotifyTransport == notify.TransportNone {
		logger.Info("notifications disabled")
		return notify.Nop{}, func() {}, nil
	}

	wlog := notify.NewWatermillLogger(logger)
	transport, err := notify.NewTransport(notify.TransportConfig{
		Kind:         env.NotifyTransport,
		RedisClient:  rdb,
		KafkaBrokers: env.KafkaBrokers,
	}, wlog)
	if err != nil {
		return nil, nil, err
	}

	var sender notify.Sender = notify.LogSender{Logger: logger}
	if env.SMTPEnabled() {
		sender = notify.SMTPSender{
			Host:     env.SMTPServer,
			Port:     env.SMTPPort,
			Username: env.EmailUser,
			Password: env.EmailPassword,
		}
	} else {
		logger.Info("smtp not configured, emails are logged only")
	}

	worker := notify.NewWorker(notify.WorkerConfig{
		CompanyEmail: env.CompanyEmail,
		MaxRetries:   env.NotifyMaxRetries,
	}, sender, logger)
	msgRouter, err := worker.NewRouter(transport, wlog)
	if err != nil {
		_ = transport.Close()
		return nil, nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := msgRouter.Run(runCtx); err != nil {
			logger.Error("notification router stopped", zap.Error(err))
		}
	}()

	select {
	case <-msgRouter.Running():
	case <-done:
		cancel()
		_ = transport.Close()
		return nil, nil, fmt.Errorf("notification router exited before start")
	}

	stop := func() {
		cancel()
		_ = msgRouter.Close()
		<-done
		_ = transport.Close()
	}
	return notify.NewDispatcher(transport.Publisher), stop, nil
}
