package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/tapchess/tapchess/internal/auth"
	"github.com/tapchess/tapchess/internal/config"
	"github.com/tapchess/tapchess/internal/engine"
)

type Service struct {
	registry *Registry
	issuer   *auth.TokenIssuer
	hub      *Hub
	config   *config.Config
}

func NewService(registry *Registry, issuer *auth.TokenIssuer, hub *Hub, config *config.Config) *Service {
	return &Service{
		registry: registry,
		issuer:   issuer,
		hub:      hub,
		config:   config,
	}
}

// GameState is the full session snapshot returned by state queries and
// pushed over the WebSocket after every change
type GameState struct {
	SessionID        string           `json:"sessionId,omitempty"`
	Board            [][]engine.Piece `json:"board"`
	SideToMove       engine.Side      `json:"sideToMove"`
	CurrentMoveIndex int              `json:"currentMoveIndex"`
	TotalMoves       int              `json:"totalMoves"`
	CapturedByWhite  []engine.Piece   `json:"capturedByWhite"`
	CapturedByBlack  []engine.Piece   `json:"capturedByBlack"`
	Paused           bool             `json:"paused"`
	AutoPlaying      bool             `json:"autoPlaying"`
}

// snapshotLocked builds a GameState. Callers must hold the session lock.
func snapshotLocked(g *engine.Game) GameState {
	board := make([][]engine.Piece, 8)
	for row := 0; row < 8; row++ {
		board[row] = make([]engine.Piece, 8)
		for col := 0; col < 8; col++ {
			board[row][col] = g.PieceAt(engine.Square{Row: row, Col: col})
		}
	}
	return GameState{
		Board:            board,
		SideToMove:       g.SideToMove(),
		CurrentMoveIndex: g.CurrentMoveIndex(),
		TotalMoves:       g.TotalMoves(),
		CapturedByWhite:  g.CapturedPieces(engine.White),
		CapturedByBlack:  g.CapturedPieces(engine.Black),
		Paused:           g.IsPaused(),
		AutoPlaying:      g.IsAutoPlaying(),
	}
}

func (s *Service) session(w http.ResponseWriter, r *http.Request) *Session {
	vars := mux.Vars(r)
	session := s.registry.Get(vars["id"])
	if session == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return nil
	}
	return session
}

// authorizeSession checks the bearer token against the session ID
func (s *Service) authorizeSession(r *http.Request, sessionID string) error {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return fmt.Errorf("missing bearer token")
	}
	subject, err := s.issuer.VerifySessionToken(strings.TrimPrefix(header, prefix))
	if err != nil {
		return err
	}
	if subject != sessionID {
		return fmt.Errorf("token was not issued for this session")
	}
	return nil
}

func (s *Service) authorizedSession(w http.ResponseWriter, r *http.Request) *Session {
	session := s.session(w, r)
	if session == nil {
		return nil
	}
	if err := s.authorizeSession(r, session.ID); err != nil {
		log.Warn().Err(err).Str("sessionID", session.ID).Msg("Rejected unauthorized request")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil
	}
	return session
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":   "ok",
		"sessions": s.registry.Len(),
	})
}

// CreateSessionHandler starts a new game and returns its session token
func (s *Service) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	session, err := s.registry.Create()
	if err != nil {
		log.Error().Err(err).Msg("Failed to create session")
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	token, err := s.issuer.IssueSessionToken(session.ID)
	if err != nil {
		log.Error().Err(err).Str("sessionID", session.ID).Msg("Failed to issue session token")
		s.registry.Delete(session.ID)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	var state GameState
	session.WithGame(func(g *engine.Game) {
		state = snapshotLocked(g)
	})
	state.SessionID = session.ID

	log.Info().Str("sessionID", session.ID).Msg("Session created")

	writeJSON(w, map[string]interface{}{
		"sessionId": session.ID,
		"token":     token,
		"state":     state,
	})
}

// GameStateHandler returns the current snapshot of a session
func (s *Service) GameStateHandler(w http.ResponseWriter, r *http.Request) {
	session := s.session(w, r)
	if session == nil {
		return
	}

	var state GameState
	session.WithGame(func(g *engine.Game) {
		state = snapshotLocked(g)
	})
	state.SessionID = session.ID

	writeJSON(w, state)
}

type moveRequest struct {
	From engine.Square `json:"from"`
	To   engine.Square `json:"to"`
}

// AttemptMoveHandler submits a move. The response outcome tells the
// client whether the move landed, was rejected, or needs a follow-up
// promotion or castling call.
func (s *Service) AttemptMoveHandler(w http.ResponseWriter, r *http.Request) {
	session := s.authorizedSession(w, r)
	if session == nil {
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var result engine.MoveResult
	var state GameState
	session.WithGame(func(g *engine.Game) {
		result = g.AttemptMove(req.From, req.To)
		state = snapshotLocked(g)
	})

	log.Info().
		Str("sessionID", session.ID).
		Str("from", req.From.String()).
		Str("to", req.To.String()).
		Str("outcome", string(result.Outcome)).
		Msg("Move attempted")

	if result.Outcome == engine.OutcomeMoved {
		s.broadcastState(session.ID, "move", state)
	}

	writeJSON(w, result)
}

type promotionRequest struct {
	From engine.Square    `json:"from"`
	To   engine.Square    `json:"to"`
	Kind engine.PieceKind `json:"kind"`
}

// CompletePromotionHandler finishes a pawn move the engine flagged as
// needing a promotion choice
func (s *Service) CompletePromotionHandler(w http.ResponseWriter, r *http.Request) {
	session := s.authorizedSession(w, r)
	if session == nil {
		return
	}

	var req promotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var result engine.MoveResult
	var state GameState
	session.WithGame(func(g *engine.Game) {
		result = g.CompletePromotion(req.From, req.To, req.Kind)
		state = snapshotLocked(g)
	})

	log.Info().
		Str("sessionID", session.ID).
		Str("kind", string(req.Kind)).
		Str("outcome", string(result.Outcome)).
		Msg("Promotion completed")

	if result.Outcome == engine.OutcomeMoved {
		s.broadcastState(session.ID, "move", state)
	}

	writeJSON(w, result)
}

type castlingRequest struct {
	From     engine.Square `json:"from"`
	To       engine.Square `json:"to"`
	Kingside bool          `json:"kingside"`
}

// ExecuteCastlingHandler confirms a castling move the engine offered
func (s *Service) ExecuteCastlingHandler(w http.ResponseWriter, r *http.Request) {
	session := s.authorizedSession(w, r)
	if session == nil {
		return
	}

	var req castlingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var result engine.MoveResult
	var state GameState
	session.WithGame(func(g *engine.Game) {
		result = g.ExecuteCastling(req.From, req.To, req.Kingside)
		state = snapshotLocked(g)
	})

	log.Info().
		Str("sessionID", session.ID).
		Bool("kingside", req.Kingside).
		Str("outcome", string(result.Outcome)).
		Msg("Castling executed")

	if result.Outcome == engine.OutcomeMoved {
		s.broadcastState(session.ID, "move", state)
	}

	writeJSON(w, result)
}

// ValidMovesHandler returns the legal destinations for the piece on a
// square, castling destinations included
func (s *Service) ValidMovesHandler(w http.ResponseWriter, r *http.Request) {
	session := s.session(w, r)
	if session == nil {
		return
	}

	row, errRow := strconv.Atoi(r.URL.Query().Get("row"))
	col, errCol := strconv.Atoi(r.URL.Query().Get("col"))
	if errRow != nil || errCol != nil {
		http.Error(w, "row and col query parameters are required", http.StatusBadRequest)
		return
	}

	var moves []engine.Square
	session.WithGame(func(g *engine.Game) {
		moves = g.ValidMovesForPiece(engine.Square{Row: row, Col: col})
	})
	if moves == nil {
		moves = []engine.Square{}
	}

	writeJSON(w, map[string]interface{}{
		"from":  engine.Square{Row: row, Col: col},
		"moves": moves,
	})
}

// CapturedPiecesHandler returns both capture pools
func (s *Service) CapturedPiecesHandler(w http.ResponseWriter, r *http.Request) {
	session := s.session(w, r)
	if session == nil {
		return
	}

	var white, black []engine.Piece
	session.WithGame(func(g *engine.Game) {
		white = g.CapturedPieces(engine.White)
		black = g.CapturedPieces(engine.Black)
	})

	writeJSON(w, map[string]interface{}{
		"white": white,
		"black": black,
	})
}

// MoveHistoryHandler returns the recorded moves and the cursor position
func (s *Service) MoveHistoryHandler(w http.ResponseWriter, r *http.Request) {
	session := s.session(w, r)
	if session == nil {
		return
	}

	var moves []engine.Move
	var cursor int
	session.WithGame(func(g *engine.Game) {
		moves = g.MoveHistory()
		cursor = g.CurrentMoveIndex()
	})

	writeJSON(w, map[string]interface{}{
		"moves":            moves,
		"currentMoveIndex": cursor,
	})
}

type navigateRequest struct {
	Action string `json:"action"` // "first", "previous", "next", "last", "goto"
	Index  int    `json:"index"`
}

// NavigateHandler moves the history cursor without touching the record
func (s *Service) NavigateHandler(w http.ResponseWriter, r *http.Request) {
	session := s.authorizedSession(w, r)
	if session == nil {
		return
	}

	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var moved bool
	var state GameState
	var known bool
	session.WithGame(func(g *engine.Game) {
		known = true
		switch req.Action {
		case "first":
			moved = g.GoToFirstMove()
		case "previous":
			moved = g.GoToPreviousMove()
		case "next":
			moved = g.GoToNextMove()
		case "last":
			moved = g.GoToLastMove()
		case "goto":
			moved = g.GoToMove(req.Index)
		default:
			known = false
		}
		state = snapshotLocked(g)
	})

	if !known {
		http.Error(w, "Unknown navigation action", http.StatusBadRequest)
		return
	}

	log.Info().
		Str("sessionID", session.ID).
		Str("action", req.Action).
		Bool("moved", moved).
		Int("cursor", state.CurrentMoveIndex).
		Msg("History navigation")

	if moved {
		s.broadcastState(session.ID, "navigation", state)
	}

	writeJSON(w, map[string]interface{}{
		"moved": moved,
		"state": state,
	})
}

type playbackRequest struct {
	Action string `json:"action"` // "start", "stop", "pause", "resume"
}

// PlaybackHandler controls the autoplay loop for a session
func (s *Service) PlaybackHandler(w http.ResponseWriter, r *http.Request) {
	session := s.authorizedSession(w, r)
	if session == nil {
		return
	}

	var req playbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	interval := time.Duration(s.config.Playback.StepIntervalMs) * time.Millisecond

	switch req.Action {
	case "start":
		session.StartAutoplay(s.hub, interval)
	case "stop":
		session.StopAutoplay()
	case "pause":
		session.WithGame(func(g *engine.Game) { g.SetPaused(true) })
	case "resume":
		session.WithGame(func(g *engine.Game) { g.SetPaused(false) })
	default:
		http.Error(w, "Unknown playback action", http.StatusBadRequest)
		return
	}

	var state GameState
	session.WithGame(func(g *engine.Game) {
		state = snapshotLocked(g)
	})

	log.Info().
		Str("sessionID", session.ID).
		Str("action", req.Action).
		Msg("Playback control")

	s.broadcastState(session.ID, "playback", state)
	writeJSON(w, state)
}

// ResetHandler wipes the session back to a fresh game
func (s *Service) ResetHandler(w http.ResponseWriter, r *http.Request) {
	session := s.authorizedSession(w, r)
	if session == nil {
		return
	}

	session.StopAutoplay()

	var state GameState
	session.WithGame(func(g *engine.Game) {
		g.Reset()
		state = snapshotLocked(g)
	})

	log.Info().Str("sessionID", session.ID).Msg("Session reset")

	s.broadcastState(session.ID, "reset", state)
	writeJSON(w, state)
}

// DeleteSessionHandler tears a session down
func (s *Service) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	session := s.authorizedSession(w, r)
	if session == nil {
		return
	}

	s.registry.Delete(session.ID)
	log.Info().Str("sessionID", session.ID).Msg("Session deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) broadcastState(sessionID, updateType string, state GameState) {
	state.SessionID = sessionID
	s.hub.BroadcastSessionUpdate(SessionUpdate{
		SessionID: sessionID,
		Type:      updateType,
		Data:      state,
	})
}
