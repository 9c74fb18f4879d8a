package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/besuhoff/arena-shooter-go/internal/config"
	"github.com/besuhoff/arena-shooter-go/internal/db"
	"github.com/besuhoff/arena-shooter-go/internal/game"
	"github.com/besuhoff/arena-shooter-go/internal/handlers"
	"github.com/besuhoff/arena-shooter-go/internal/server"
)

var (
	host     = flag.String("host", "", "Host to listen on (overrides HOST)")
	port     = flag.String("port", "", "Port to listen on (overrides PORT)")
	certFile = flag.String("cert", "", "TLS certificate file (overrides TLS_CERT)")
	keyFile  = flag.String("key", "", "TLS key file (overrides TLS_KEY)")
	useTLS   = flag.Bool("tls", false, "Enable TLS/HTTPS")
)

var _ game.KillRecorder = (*db.LeaderboardRepository)(nil)

// CORS middleware
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Parse frontend domain from config
		frontendDomain := config.AppConfig.FrontendURL
		if idx := strings.Index(frontendDomain, "://"); idx != -1 {
			if pathIdx := strings.Index(frontendDomain[idx+3:], "/"); pathIdx != -1 {
				frontendDomain = frontendDomain[:idx+3+pathIdx]
			}
		}
		w.Header().Set("Access-Control-Allow-Origin", frontendDomain)
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func applyFlags(cfg *config.Config) {
	if *host != "" {
		cfg.Host = *host
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *certFile != "" {
		cfg.TLSCert = *certFile
	}
	if *keyFile != "" {
		cfg.TLSKey = *keyFile
	}
	if *useTLS {
		cfg.UseTLS = true
	}
}

func main() {
	flag.Parse()

	cfg := config.LoadConfig()
	applyFlags(cfg)

	var gameOpts []game.Option
	var leaderboard *db.LeaderboardRepository
	if cfg.LeaderboardEnabled() {
		if err := db.Connect(cfg.MongoDBURL); err != nil {
			log.Fatal("Failed to connect to MongoDB: ", err)
		}
		defer db.Disconnect()

		leaderboard = db.NewLeaderboardRepository()
		gameOpts = append(gameOpts, game.WithKillRecorder(leaderboard))
	}

	gameServer := server.NewGameServer(gameOpts...)

	api := http.NewServeMux()
	sessionHandler := handlers.NewSessionHandler(gameServer.Engine())
	api.HandleFunc("/api/v1/sessions", corsMiddleware(sessionHandler.HandleListSessions))
	api.HandleFunc("/api/v1/schema", corsMiddleware(handlers.HandleGetSchema))
	if leaderboard != nil {
		leaderboardHandler := handlers.NewLeaderboardHandler(leaderboard)
		api.HandleFunc("/api/v1/leaderboard/global", corsMiddleware(leaderboardHandler.HandleGetGlobalLeaderboard))
		api.HandleFunc("/api/v1/leaderboard/player/", corsMiddleware(leaderboardHandler.HandleGetPlayerStats))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gameServer.HandleWebSocket)
	mux.Handle("/api/", otelhttp.NewHandler(api, "api"))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if cfg.UseTLS && (cfg.TLSCert == "" || cfg.TLSKey == "") {
		log.Fatal("TLS enabled but certificate or key file not provided. Use -cert and -key flags or TLS_CERT and TLS_KEY environment variables.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return gameServer.Run(gctx)
	})

	g.Go(func() error {
		var err error
		if cfg.UseTLS {
			log.Printf("Starting game server with TLS on %s", addr)
			err = httpServer.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			log.Printf("Starting game server on %s", addr)
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Received shutdown signal, shutting down gracefully...")

		// Close websockets before the HTTP server stops accepting
		gameServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		log.Println("HTTP server shut down successfully")
		return nil
	})

	scheme := "ws"
	if cfg.UseTLS {
		scheme = "wss"
	}
	log.Printf("WebSocket (JSON): %s://%s/ws", scheme, addr)
	log.Printf("WebSocket (Binary): %s://%s/ws?protocol=binary", scheme, addr)
	log.Printf("WebSocket (MessagePack): %s://%s/ws?protocol=msgpack", scheme, addr)

	if err := g.Wait(); err != nil {
		log.Printf("Server error: %v", err)
	}

	log.Println("Server stopped")
}
