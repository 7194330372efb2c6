//go:build integration
// +build integration

package integration

import (
	"testing"

	"github.com/tapchess/tapchess/internal/engine"
)

func TestEngineIntegration(t *testing.T) {
	g := engine.NewGame()

	// Test initial position
	if g.SideToMove() != engine.White {
		t.Errorf("Expected white to start, got %s", g.SideToMove())
	}
	if g.TotalMoves() != 0 {
		t.Errorf("Expected empty history, got %d moves", g.TotalMoves())
	}

	// Test a basic game sequence
	moves := [][2]engine.Square{
		{{Row: 6, Col: 4}, {Row: 4, Col: 4}}, // e4
		{{Row: 1, Col: 4}, {Row: 3, Col: 4}}, // e5
		{{Row: 7, Col: 6}, {Row: 5, Col: 5}}, // Nf3
		{{Row: 0, Col: 1}, {Row: 2, Col: 2}}, // Nc6
	}

	for i, move := range moves {
		result := g.AttemptMove(move[0], move[1])
		if result.Outcome != engine.OutcomeMoved {
			t.Fatalf("Move %d failed: %s", i+1, result.Outcome)
		}

		if result.Move.From != move[0] {
			t.Errorf("Expected from %s, got %s", move[0], result.Move.From)
		}
		if result.Move.To != move[1] {
			t.Errorf("Expected to %s, got %s", move[1], result.Move.To)
		}
	}

	// Verify the recorded history
	if g.TotalMoves() != len(moves) {
		t.Errorf("Expected %d recorded moves, got %d", len(moves), g.TotalMoves())
	}
	if g.CurrentMoveIndex() != len(moves)-1 {
		t.Errorf("Expected cursor at %d, got %d", len(moves)-1, g.CurrentMoveIndex())
	}

	// Walk the history backward and forward again
	if !g.GoToFirstMove() {
		t.Fatal("Failed to rewind to the initial position")
	}
	if p := g.PieceAt(engine.Square{Row: 6, Col: 4}); p.Kind != engine.Pawn {
		t.Error("Expected the e2 pawn restored at the initial position")
	}
	if !g.GoToLastMove() {
		t.Fatal("Failed to replay to the final position")
	}
	if p := g.PieceAt(engine.Square{Row: 5, Col: 5}); p.Kind != engine.Knight || p.Side != engine.White {
		t.Error("Expected the white knight back on f3 after replay")
	}

	// Notation stays stable across replay
	history := g.MoveHistory()
	if history[0].Notation() != "e2-e4" {
		t.Errorf("Expected e2-e4, got %s", history[0].Notation())
	}
}
