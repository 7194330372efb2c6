package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tapchess/tapchess/internal/auth"
	"github.com/tapchess/tapchess/internal/config"
	"github.com/tapchess/tapchess/internal/web"
)

func main() {
	// Parse command line flags
	var showHelp bool
	flag.BoolVar(&showHelp, "help", false, "Show help information")
	flag.BoolVar(&showHelp, "h", false, "Show help information")
	flag.Parse()

	if showHelp {
		showHelpMessage()
		return
	}

	// Setup logging
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	if level, err := zerolog.ParseLevel(cfg.Development.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	if cfg.Development.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Create session token issuer
	issuer, err := auth.NewTokenIssuer(cfg.Auth.TokenSecret, time.Duration(cfg.Auth.TokenTTL)*time.Second)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create token issuer")
	}

	// Create WebSocket hub
	hub := web.NewHub()
	go hub.Run()

	// Create service
	service := web.NewService(web.NewRegistry(), issuer, hub, cfg)

	// Setup routes
	router := mux.NewRouter()

	// Add CORS middleware
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// API routes
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", service.HealthHandler).Methods("GET")
	api.HandleFunc("/sessions", service.CreateSessionHandler).Methods("POST")
	api.HandleFunc("/sessions", service.ListSessionsHandler).Methods("GET")
	api.HandleFunc("/sessions/{id}", service.GameStateHandler).Methods("GET")
	api.HandleFunc("/sessions/{id}", service.DeleteSessionHandler).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/state", service.GameStateHandler).Methods("GET")
	api.HandleFunc("/sessions/{id}/moves", service.AttemptMoveHandler).Methods("POST")
	api.HandleFunc("/sessions/{id}/moves", service.MoveHistoryHandler).Methods("GET")
	api.HandleFunc("/sessions/{id}/promotion", service.CompletePromotionHandler).Methods("POST")
	api.HandleFunc("/sessions/{id}/castling", service.ExecuteCastlingHandler).Methods("POST")
	api.HandleFunc("/sessions/{id}/valid-moves", service.ValidMovesHandler).Methods("GET")
	api.HandleFunc("/sessions/{id}/captured", service.CapturedPiecesHandler).Methods("GET")
	api.HandleFunc("/sessions/{id}/navigate", service.NavigateHandler).Methods("POST")
	api.HandleFunc("/sessions/{id}/playback", service.PlaybackHandler).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", service.ResetHandler).Methods("POST")
	api.HandleFunc("/ws", service.WebSocketHandler(hub)).Methods("GET")

	// Serve static files
	router.PathPrefix("/").Handler(http.FileServer(http.Dir("./web/static/")))

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func showHelpMessage() {
	fmt.Println(`TapChess Session Service

DESCRIPTION:
    Rules and session service for the TapChess variant chess board.
    Hosts in-memory game sessions, validates moves under the variant
    rules (corner-landing queenside castling, inventory-restricted
    promotion), and provides history navigation with stepped playback.
    Provides REST API endpoints plus a WebSocket feed for spectators.

USAGE:
    tapchessd [OPTIONS]

OPTIONS:
    -h, --help    Show this help message

CONFIGURATION:
    The service is configured via config.yaml in the current directory.

    Example config.yaml:
        server:
          host: localhost
          port: 8080

        auth:
          token_secret: "change-me"
          token_ttl: 86400        # Seconds

        playback:
          step_interval_ms: 1000  # Autoplay step rate

        development:
          debug: true
          log_level: debug

API ENDPOINTS:
    GET    /api/health                      - Service health check
    POST   /api/sessions                    - Start a new game session
    GET    /api/sessions                    - List live sessions
    DELETE /api/sessions/{id}               - Tear a session down
    GET    /api/sessions/{id}/state         - Full board snapshot
    POST   /api/sessions/{id}/moves         - Attempt a move
    GET    /api/sessions/{id}/moves         - Move history and cursor
    POST   /api/sessions/{id}/promotion     - Complete a pending promotion
    POST   /api/sessions/{id}/castling      - Confirm an offered castling
    GET    /api/sessions/{id}/valid-moves   - Legal destinations for a piece
    GET    /api/sessions/{id}/captured      - Both capture pools
    POST   /api/sessions/{id}/navigate      - Move the history cursor
    POST   /api/sessions/{id}/playback      - Start/stop/pause autoplay
    POST   /api/sessions/{id}/reset         - Wipe back to a fresh game
    GET    /api/ws?sessionId={id}           - WebSocket update feed

BEHAVIOR:
    - Every move request returns an outcome; rejected moves change nothing
    - Castling and promotion are two-phase: offer, then confirmation
    - Committing a move from a rewound cursor discards the later moves
    - Mutating requests need the bearer token minted at session creation
    - Graceful shutdown on SIGINT/SIGTERM

EXAMPLES:
    # Start with default configuration
    tapchessd

    # Create a session via API
    curl -X POST http://localhost:8080/api/sessions

    # Attempt the king's pawn opening
    curl -X POST http://localhost:8080/api/sessions/{id}/moves \
      -H "Content-Type: application/json" \
      -H "Authorization: Bearer {token}" \
      -d '{"from": {"row": 6, "col": 4}, "to": {"row": 4, "col": 4}}'

SEE ALSO:
    config.yaml(5)

    Documentation: docs/
    Repository: https://github.com/tapchess/tapchess`)
}
