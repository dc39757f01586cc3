package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"note-bookmark-server/internal/config"
	"note-bookmark-server/internal/handler"
	"note-bookmark-server/internal/logger"
	"note-bookmark-server/internal/middleware"
	"note-bookmark-server/internal/repository"
	"note-bookmark-server/internal/service"
	"note-bookmark-server/internal/websocket"
	"note-bookmark-server/pkg/pagetitle"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := kivik.New("couch", cfg.Database.URL)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to CouchDB")
	}

	db, err := repository.Open(ctx, client, cfg.Database.Name)
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.WithError(err).Fatal("Failed to create indexes")
	}

	userRepo := repository.NewUserRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	bookmarkRepo := repository.NewBookmarkRepository(db)

	hub := websocket.NewHub(websocket.Options{
		MaxConnPerUser: cfg.WebSocket.MaxConnPerUser,
		MaxMessageSize: cfg.WebSocket.MaxMessageSize,
		WriteWait:      cfg.WebSocket.WriteWait,
		PongWait:       cfg.WebSocket.PongWait,
		PingPeriod:     cfg.WebSocket.PingPeriod,
	}, log.WithField("component", "websocket"))
	go hub.Shutdown(ctx)

	var fetchOpts []pagetitle.Option
	if cfg.TitleFetch.AllowPrivateNetworks {
		fetchOpts = append(fetchOpts, pagetitle.AllowPrivateNetworks())
	}

	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	noteService := service.NewNoteService(noteRepo, hub)
	bookmarkService := service.NewBookmarkService(
		bookmarkRepo,
		pagetitle.NewFetcher(cfg.TitleFetch.Timeout, fetchOpts...),
		hub,
		log.WithField("component", "bookmarks"),
	)

	handlers := handler.Handlers{
		Auth:      handler.NewAuthHandler(authService, cfg.IsProduction(), log),
		Notes:     handler.NewNoteHandler(noteService, log),
		Bookmarks: handler.NewBookmarkHandler(bookmarkService, log),
		WebSocket: handler.NewWebSocketHandler(
			hub,
			cfg.CORS.Origins(),
			cfg.WebSocket.ReadBufferSize,
			cfg.WebSocket.WriteBufferSize,
			log.WithField("component", "websocket"),
		),
		Health: handler.NewHealthHandler(client),
	}

	var rateLimit mux.MiddlewareFunc
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.TrustProxy, log)
		limiter.StartCleanup(5*time.Minute, ctx.Done())
		rateLimit = limiter.Handler
	}

	router := handler.NewRouter(handlers, middleware.AuthMiddleware(authService, log), rateLimit)

	var h http.Handler = router
	h = middleware.CORSMiddleware(cfg.CORS.Origins())(h)
	h = middleware.LoggerMiddleware(log)(h)
	h = middleware.RecoveryMiddleware(log)(h)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(map[string]interface{}{
			"addr": addr,
			"env":  cfg.Server.Env,
			"db":   cfg.Database.Name,
		}).Info("Starting note-bookmark server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed to start")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	if err := client.Close(); err != nil {
		log.WithError(err).Warn("Failed to close CouchDB client")
	}

	log.Info("Server stopped gracefully")
}
