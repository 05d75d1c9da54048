package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lobbygames/majority-backend/internal/entity"
	"github.com/lobbygames/majority-backend/internal/majority"
	"github.com/lobbygames/majority-backend/internal/session"
)

const shutdownTimeout = 5 * time.Second

type gameManager interface {
	CreateLobby(hostNick, format string) (*entity.JoinTicket, error)
	ListLobbies() []entity.LobbySummary
	LobbyState(code, playerID string) (*entity.LobbyState, error)
	JoinLobby(code, nick string) (*entity.JoinTicket, error)
	LeaveLobby(code, playerID string) error
	StartGame(code, playerID string) error
	GameState(code, playerID string) (*majority.State, error)
	MakeTurn(ctx context.Context, code, playerID string, row, col int) (*session.MoveOutcome, error)
	RecentMatches(ctx context.Context, limit int) ([]entity.MatchRecord, error)
}

type Server struct {
	logger *slog.Logger
	game   gameManager
}

func New(logger *slog.Logger, game gameManager) *Server {
	return &Server{
		logger: logger.With("component", "rest"),
		game:   game,
	}
}

// Routes - builds the HTTP API.
func (that *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/ping", that.handlePing)

	r.Route("/api", func(r chi.Router) {
		r.Get("/lobbies", that.handleListLobbies)
		r.Post("/lobbies", that.handleCreateLobby)

		r.Route("/lobbies/{code}", func(r chi.Router) {
			r.Get("/", that.handleLobbyState)
			r.Post("/join", that.handleJoinLobby)
			r.Post("/leave", that.handleLeaveLobby)
			r.Post("/start", that.handleStartLobby)
		})

		r.Route("/game/{code}", func(r chi.Router) {
			r.Get("/", that.handleGameState)
			r.Post("/move", that.handleMove)
		})

		r.Get("/matches", that.handleRecentMatches)
	})

	return r
}

// Start - serves the API until the context is canceled, then shuts down
// gracefully.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}

		return nil
	}
}
