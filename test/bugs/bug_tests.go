package bugs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/tapchess/tapchess/internal/auth"
	"github.com/tapchess/tapchess/internal/config"
	"github.com/tapchess/tapchess/internal/engine"
	"github.com/tapchess/tapchess/internal/web"
)

// Regression tests for bugs found during development. Each test pins
// the behavior that was broken so it cannot quietly come back.

func newRouter(t *testing.T) *mux.Router {
	t.Helper()

	issuer, err := auth.NewTokenIssuer("bug-secret", time.Hour)
	if err != nil {
		t.Fatalf("Failed to create token issuer: %v", err)
	}
	hub := web.NewHub()
	go hub.Run()

	cfg := &config.Config{
		Playback: config.PlaybackConfig{StepIntervalMs: 1000},
	}
	service := web.NewService(web.NewRegistry(), issuer, hub, cfg)

	router := mux.NewRouter()

	// Add CORS middleware (same as in main.go)
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

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sessions", service.CreateSessionHandler).Methods("POST")
	api.HandleFunc("/sessions/{id}/state", service.GameStateHandler).Methods("GET")
	api.HandleFunc("/sessions/{id}/moves", service.AttemptMoveHandler).Methods("POST")
	api.HandleFunc("/sessions/{id}/moves", service.MoveHistoryHandler).Methods("GET")
	api.HandleFunc("/sessions/{id}/castling", service.ExecuteCastlingHandler).Methods("POST")
	api.HandleFunc("/sessions/{id}/valid-moves", service.ValidMovesHandler).Methods("GET")
	api.HandleFunc("/sessions/{id}/navigate", service.NavigateHandler).Methods("POST")

	return router
}

func request(t *testing.T, router *mux.Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func openSession(t *testing.T, router *mux.Router) (string, string) {
	t.Helper()

	w := request(t, router, "POST", "/api/sessions", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to create session: %d", w.Code)
	}
	var resp struct {
		SessionID string `json:"sessionId"`
		Token     string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse session: %v", err)
	}
	return resp.SessionID, resp.Token
}

func sq(row, col int) engine.Square {
	return engine.Square{Row: row, Col: col}
}

func playMoves(t *testing.T, router *mux.Router, sessionID, token string, moves [][2]engine.Square) {
	t.Helper()

	for i, mv := range moves {
		w := request(t, router, "POST", "/api/sessions/"+sessionID+"/moves", token, map[string]engine.Square{"from": mv[0], "to": mv[1]})
		var result engine.MoveResult
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatalf("Move %d: failed to parse result: %v", i, err)
		}
		if result.Outcome != engine.OutcomeMoved {
			t.Fatalf("Move %d: expected moved, got %s", i, result.Outcome)
		}
	}
}

// TestBug1_CORSOptionsRequestHandling tests CORS preflight request handling
func TestBug1_CORSOptionsRequestHandling(t *testing.T) {
	router := newRouter(t)

	req := httptest.NewRequest("OPTIONS", "/api/sessions", nil)
	req.Header.Set("Origin", "http://localhost:8081")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("Expected Access-Control-Allow-Origin: *, got %s", w.Header().Get("Access-Control-Allow-Origin"))
	}
}

// TestBug2_QueensideCastlingLandsKingOnTheCorner pins the queenside
// geometry: the king ends on column 0 and the rook on column 3, not
// the conventional c1 and d1 squares.
func TestBug2_QueensideCastlingLandsKingOnTheCorner(t *testing.T) {
	router := newRouter(t)
	sessionID, token := openSession(t, router)

	// Clear b1, c1 and d1 with mirrored black filler moves
	playMoves(t, router, sessionID, token, [][2]engine.Square{
		{sq(6, 3), sq(4, 3)}, // d4
		{sq(1, 3), sq(3, 3)}, // d5
		{sq(7, 2), sq(5, 4)}, // Be3
		{sq(0, 2), sq(2, 4)}, // Be6
		{sq(7, 3), sq(6, 3)}, // Qd2
		{sq(0, 3), sq(1, 3)}, // Qd7
		{sq(7, 1), sq(5, 2)}, // Nc3
		{sq(0, 1), sq(2, 2)}, // Nc6
	})

	w := request(t, router, "POST", "/api/sessions/"+sessionID+"/moves", token, map[string]engine.Square{"from": sq(7, 4), "to": sq(7, 2)})
	var offer engine.MoveResult
	if err := json.Unmarshal(w.Body.Bytes(), &offer); err != nil {
		t.Fatalf("Failed to parse offer: %v", err)
	}
	if offer.Outcome != engine.OutcomeCastlingConfirmation || offer.Kingside {
		t.Fatalf("Expected a queenside offer, got %+v", offer)
	}

	w = request(t, router, "POST", "/api/sessions/"+sessionID+"/castling", token, map[string]interface{}{
		"from": sq(7, 4), "to": sq(7, 2), "kingside": false,
	})
	var castled engine.MoveResult
	if err := json.Unmarshal(w.Body.Bytes(), &castled); err != nil {
		t.Fatalf("Failed to parse castling result: %v", err)
	}
	if castled.Outcome != engine.OutcomeMoved {
		t.Fatalf("Expected castling to land, got %s", castled.Outcome)
	}

	w = request(t, router, "GET", "/api/sessions/"+sessionID+"/state", "", nil)
	var state web.GameState
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("Failed to parse state: %v", err)
	}
	if state.Board[7][0].Kind != engine.King {
		t.Errorf("Expected the king on a1, got %+v", state.Board[7][0])
	}
	if state.Board[7][3].Kind != engine.Rook {
		t.Errorf("Expected the rook on d1, got %+v", state.Board[7][3])
	}
	if !state.Board[7][2].IsEmpty() || !state.Board[7][4].IsEmpty() {
		t.Error("Expected c1 and e1 left empty")
	}
}

// TestBug3_MoveNumbersRestartAfterTruncation pins the numbering of
// moves committed after a rewind: the discarded branch must not leave
// gaps in MoveNumber.
func TestBug3_MoveNumbersRestartAfterTruncation(t *testing.T) {
	router := newRouter(t)
	sessionID, token := openSession(t, router)

	playMoves(t, router, sessionID, token, [][2]engine.Square{
		{sq(6, 4), sq(4, 4)}, // e4
		{sq(1, 4), sq(3, 4)}, // e5
		{sq(7, 6), sq(5, 5)}, // Nf3
		{sq(0, 1), sq(2, 2)}, // Nc6
	})

	request(t, router, "POST", "/api/sessions/"+sessionID+"/navigate", token, map[string]interface{}{"action": "goto", "index": 0})

	// Black deviates; moves 2-4 of the old line are gone
	playMoves(t, router, sessionID, token, [][2]engine.Square{
		{sq(1, 2), sq(3, 2)}, // c5
	})

	w := request(t, router, "GET", "/api/sessions/"+sessionID+"/moves", "", nil)
	var history struct {
		Moves []engine.Move `json:"moves"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &history); err != nil {
		t.Fatalf("Failed to parse history: %v", err)
	}
	if len(history.Moves) != 2 {
		t.Fatalf("Expected 2 moves after truncation, got %d", len(history.Moves))
	}
	for i, mv := range history.Moves {
		if mv.MoveNumber != i+1 {
			t.Errorf("Move %d: expected MoveNumber %d, got %d", i, i+1, mv.MoveNumber)
		}
	}
}

// TestBug4_ValidMovesQueryNeverMutatesTheGame pins that probing legal
// destinations, including the temporary vacate inside the attack scan,
// leaves the position and the turn untouched.
func TestBug4_ValidMovesQueryNeverMutatesTheGame(t *testing.T) {
	router := newRouter(t)
	sessionID, token := openSession(t, router)

	playMoves(t, router, sessionID, token, [][2]engine.Square{
		{sq(6, 4), sq(4, 4)}, // e4
	})

	w := request(t, router, "GET", "/api/sessions/"+sessionID+"/state", "", nil)
	before := w.Body.String()

	// Probe every square, occupied or not, either side's pieces
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			path := fmt.Sprintf("/api/sessions/%s/valid-moves?row=%d&col=%d", sessionID, row, col)
			w := request(t, router, "GET", path, "", nil)
			if w.Code != http.StatusOK {
				t.Fatalf("Valid moves query failed for %d,%d: %d", row, col, w.Code)
			}
		}
	}

	w = request(t, router, "GET", "/api/sessions/"+sessionID+"/state", "", nil)
	if w.Body.String() != before {
		t.Error("Valid moves queries changed the session state")
	}
}

// TestBug5_NavigationPastTheEndsIsRejected pins cursor clamping: out
// of range targets report moved=false and leave the cursor alone.
func TestBug5_NavigationPastTheEndsIsRejected(t *testing.T) {
	router := newRouter(t)
	sessionID, token := openSession(t, router)

	playMoves(t, router, sessionID, token, [][2]engine.Square{
		{sq(6, 4), sq(4, 4)}, // e4
	})

	for _, index := range []int{1, 5, -2} {
		w := request(t, router, "POST", "/api/sessions/"+sessionID+"/navigate", token, map[string]interface{}{"action": "goto", "index": index})
		var nav struct {
			Moved bool          `json:"moved"`
			State web.GameState `json:"state"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &nav); err != nil {
			t.Fatalf("Failed to parse navigation response: %v", err)
		}
		if nav.Moved {
			t.Errorf("goto %d: expected moved=false", index)
		}
		if nav.State.CurrentMoveIndex != 0 {
			t.Errorf("goto %d: cursor moved to %d", index, nav.State.CurrentMoveIndex)
		}
	}
}
