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

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/openddz/ddz-server/internal/auth"
	"github.com/openddz/ddz-server/internal/cache"
	"github.com/openddz/ddz-server/internal/database"
	"github.com/openddz/ddz-server/internal/handlers"
	"github.com/openddz/ddz-server/internal/middleware"
)

func main() {
	auth.Init()
	database.ConnectDB()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if err := cache.ConnectRedis(); err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}

	srv := handlers.NewServer(logger)
	srv.Persist = true

	mux := http.NewServeMux()

	// user endpoints
	mux.Handle("/user/create", middleware.LogMiddleware(logger)(http.HandlerFunc(handlers.CreateUserHandler)))
	mux.Handle("/user/login", middleware.LogMiddleware(logger)(http.HandlerFunc(handlers.LoginHandler)))
	mux.Handle("/user/guest", middleware.LogMiddleware(logger)(http.HandlerFunc(handlers.GuestLoginHandler)))

	// room REST endpoints
	mux.Handle("/api/health", middleware.LogMiddleware(logger)(srv.HealthHandler()))
	mux.Handle("/api/rooms", middleware.LogMiddleware(logger)(srv.RoomsHandler()))
	mux.Handle("/api/rooms/", middleware.LogMiddleware(logger)(srv.RoomsHandler()))

	// room websocket; not wrapped in LogMiddleware because the hijacked
	// connection bypasses the status recorder
	mux.Handle("/ws", srv.RoomWSHandler())

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("Running on %s", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server exited: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Close rooms first so clients get room_closed over their still-open
	// sockets; hijacked websocket connections are not tracked by Shutdown.
	srv.Rooms.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}
