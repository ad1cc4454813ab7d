package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	intconfig "ridebooking/internal/config"
	router "ridebooking/internal/http"
	"ridebooking/internal/http/handlers"
	"ridebooking/internal/repositories"
	"ridebooking/internal/services"
	"ridebooking/internal/utils"
)

func main() {
	env := intconfig.LoadEnv()

	logger, err := utils.NewLogger("ride-booking", env.Debug)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	utils.SetLogger(logger)
	defer func() { _ = logger.Sync() }()

	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	ctx := context.Background()

	st, err := openStore(ctx, env)
	if err != nil {
		logger.Fatal("open store", zap.String("driver", env.StoreDriver), zap.Error(err))
	}
	defer st.close()

	redisClient := openRedis(env)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	var sessions services.SessionStore = repositories.NewMemorySessionStore()
	if env.SessionStore == "redis" {
		sessions = repositories.NewRedisSessionStore(redisClient)
	}

	notifier, stopNotifier, err := startNotifier(ctx, env, redisClient, logger)
	if err != nil {
		logger.Fatal("start notifier", zap.String("transport", env.NotifyTransport), zap.Error(err))
	}
	defer stopNotifier()

	r := router.NewRouter(env, router.Deps{
		Bookings: services.BookingService{
			Store:        st.bookings,
			Notifier:     notifier,
			StrictStatus: env.StrictStatus,
		},
		Auth: services.AuthService{
			Users:    st.users,
			Sessions: sessions,
			Config: services.AuthConfig{
				Secret:          []byte(env.SessionSecret),
				TTL:             env.SessionTTL,
				DefaultUsername: env.AdminUsername,
				DefaultPassword: env.AdminPassword,
				DefaultEmail:    env.AdminEmail,
			},
		},
		Docs:   services.DocsService{Bookings: st.bookings},
		System: handlers.SystemHandler{Ping: st.ping},
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", env.AppAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}
