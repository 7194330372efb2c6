package engine

import (
	"reflect"
	"testing"
)

// promotionGame stages a white pawn on a7 one step from promotion,
// with the black a8 rook out of the way and the given inventory
// already captured by white. Test-only board surgery.
func promotionGame(inventory ...Piece) *Game {
	g := NewGame()
	g.board.Clear(Square{1, 0}) // black a7 pawn
	g.board.Clear(Square{0, 0}) // black a8 rook
	g.board.Set(Square{1, 0}, Piece{Kind: Pawn, Side: White})
	g.captured[White] = inventory
	return g
}

func TestPromotionTwoPhaseFlow(t *testing.T) {
	g := promotionGame(Piece{Kind: Rook, Side: Black})

	result := g.AttemptMove(Square{1, 0}, Square{0, 0})
	if result.Outcome != OutcomePromotionRequired {
		t.Fatalf("expected promotion required, got %s", result.Outcome)
	}
	if g.TotalMoves() != 0 {
		t.Error("promotion request must not mutate history")
	}
	if p := g.PieceAt(Square{1, 0}); p.Kind != Pawn {
		t.Error("promotion request must not move the pawn")
	}

	done := g.CompletePromotion(Square{1, 0}, Square{0, 0}, Rook)
	if done.Outcome != OutcomeMoved {
		t.Fatalf("expected promotion completed, got %s", done.Outcome)
	}
	if p := g.PieceAt(Square{0, 0}); p.Kind != Rook || p.Side != White {
		t.Errorf("expected white rook on a8, got %+v", p)
	}
	if !g.PieceAt(Square{1, 0}).IsEmpty() {
		t.Error("expected a7 cleared")
	}
	if !done.Move.IsPromotion || done.Move.PromotionKind != Rook {
		t.Errorf("expected promotion recorded, got %+v", done.Move)
	}
	if done.Move.Piece.Kind != Rook {
		t.Errorf("move record must carry the post-move identity, got %+v", done.Move.Piece)
	}
	if g.IsWhiteTurn() {
		t.Error("expected turn flipped after promotion")
	}
}

func TestPromotionRestrictedToCapturedInventory(t *testing.T) {
	tests := []struct {
		name      string
		inventory []Piece
		kind      PieceKind
		want      Outcome
	}{
		{
			name:      "kind present in inventory",
			inventory: []Piece{{Kind: Queen, Side: Black}},
			kind:      Queen,
			want:      OutcomeMoved,
		},
		{
			name:      "kind absent from inventory",
			inventory: []Piece{{Kind: Knight, Side: Black}},
			kind:      Queen,
			want:      OutcomeInvalid,
		},
		{
			name: "empty inventory",
			kind: Queen,
			want: OutcomeInvalid,
		},
		{
			name:      "pawn never a promotion target",
			inventory: []Piece{{Kind: Pawn, Side: Black}},
			kind:      Pawn,
			want:      OutcomeInvalid,
		},
		{
			name:      "king never a promotion target",
			inventory: []Piece{{Kind: King, Side: Black}},
			kind:      King,
			want:      OutcomeInvalid,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := promotionGame(tc.inventory...)
			result := g.CompletePromotion(Square{1, 0}, Square{0, 0}, tc.kind)
			if result.Outcome != tc.want {
				t.Errorf("CompletePromotion(%s) = %s, expected %s", tc.kind, result.Outcome, tc.want)
			}
		})
	}
}

func TestPromotionMaterialIsReusable(t *testing.T) {
	g := promotionGame(Piece{Kind: Queen, Side: Black})
	g.board.Clear(Square{1, 1}) // black b7 pawn
	g.board.Clear(Square{0, 1}) // black b8 knight
	g.board.Set(Square{1, 1}, Piece{Kind: Pawn, Side: White})

	if r := g.CompletePromotion(Square{1, 0}, Square{0, 0}, Queen); r.Outcome != OutcomeMoved {
		t.Fatalf("first promotion: expected moved, got %s", r.Outcome)
	}
	mustMove(t, g, Square{1, 7}, Square{2, 7}) // h7-h6

	// The captured queen is still usable: promoting does not consume
	// the inventory entry.
	if r := g.CompletePromotion(Square{1, 1}, Square{0, 1}, Queen); r.Outcome != OutcomeMoved {
		t.Fatalf("second promotion: expected moved, got %s", r.Outcome)
	}
	if got := len(g.CapturedPieces(White)); got != 1 {
		t.Errorf("expected inventory untouched by promotion, got %d entries", got)
	}
}

func TestPromotionWithCapture(t *testing.T) {
	g := promotionGame(Piece{Kind: Knight, Side: Black})
	g.board.Set(Square{0, 1}, Piece{Kind: Knight, Side: Black}) // b8 knight stays

	result := g.AttemptMove(Square{1, 0}, Square{0, 1})
	if result.Outcome != OutcomePromotionRequired {
		t.Fatalf("expected promotion required on capturing advance, got %s", result.Outcome)
	}

	done := g.CompletePromotion(Square{1, 0}, Square{0, 1}, Knight)
	if done.Outcome != OutcomeMoved {
		t.Fatalf("expected promotion completed, got %s", done.Outcome)
	}
	if done.Move.Captured == nil || done.Move.Captured.Kind != Knight {
		t.Errorf("expected capture recorded, got %+v", done.Move.Captured)
	}
	if got := len(g.CapturedPieces(White)); got != 2 {
		t.Errorf("expected displaced knight added to inventory, got %d entries", got)
	}
}

func TestPromotionRejectsIllegalPawnMove(t *testing.T) {
	g := promotionGame(Piece{Kind: Queen, Side: Black})

	// Diagonal onto an empty square is not a pawn move, so neither
	// phase may accept it.
	if r := g.AttemptMove(Square{1, 0}, Square{0, 1}); r.Outcome != OutcomeInvalid {
		t.Errorf("expected invalid diagonal advance, got %s", r.Outcome)
	}
	if r := g.CompletePromotion(Square{1, 0}, Square{0, 1}, Queen); r.Outcome != OutcomeInvalid {
		t.Errorf("expected invalid completion, got %s", r.Outcome)
	}

	// Completion for a square pair that is not a promotion at all.
	if r := g.CompletePromotion(Square{1, 0}, Square{2, 0}, Queen); r.Outcome != OutcomeInvalid {
		t.Errorf("expected non-promotion completion rejected, got %s", r.Outcome)
	}
}

// A full game from the starting position that runs through an
// inventory-building capture, a capturing promotion and kingside
// castling, then checks that replay reproduces the exact final state.
func TestReplayThroughPromotionAndCastling(t *testing.T) {
	g := NewGame()

	mustMove(t, g, Square{6, 4}, Square{4, 4}) // 1. e4
	mustMove(t, g, Square{0, 6}, Square{2, 5}) // 1... Nf6
	mustMove(t, g, Square{7, 3}, Square{5, 5}) // 2. Qf3
	mustMove(t, g, Square{2, 5}, Square{4, 4}) // 2... Nxe4
	mustMove(t, g, Square{5, 5}, Square{4, 4}) // 3. Qxe4, knight into white's inventory
	mustMove(t, g, Square{1, 7}, Square{2, 7}) // 3... h6
	mustMove(t, g, Square{6, 0}, Square{4, 0}) // 4. a4
	mustMove(t, g, Square{2, 7}, Square{3, 7}) // 4... h5
	mustMove(t, g, Square{4, 0}, Square{3, 0}) // 5. a5
	mustMove(t, g, Square{3, 7}, Square{4, 7}) // 5... h4
	mustMove(t, g, Square{3, 0}, Square{2, 0}) // 6. a6
	mustMove(t, g, Square{4, 7}, Square{5, 7}) // 6... h3
	mustMove(t, g, Square{2, 0}, Square{1, 1}) // 7. axb7
	mustMove(t, g, Square{5, 7}, Square{6, 6}) // 7... hxg2

	if r := g.AttemptMove(Square{1, 1}, Square{0, 0}); r.Outcome != OutcomePromotionRequired {
		t.Fatalf("expected promotion required on bxa8, got %s", r.Outcome)
	}
	if r := g.CompletePromotion(Square{1, 1}, Square{0, 0}, Knight); r.Outcome != OutcomeMoved {
		t.Fatalf("promotion failed: %s", r.Outcome) // 8. bxa8=N
	}

	mustMove(t, g, Square{1, 4}, Square{3, 4}) // 8... e5
	mustMove(t, g, Square{7, 6}, Square{5, 5}) // 9. Nf3
	mustMove(t, g, Square{1, 3}, Square{2, 3}) // 9... d6
	mustMove(t, g, Square{7, 5}, Square{6, 6}) // 10. Bxg2
	mustMove(t, g, Square{1, 0}, Square{3, 0}) // 10... a5

	if r := g.AttemptMove(Square{7, 4}, Square{7, 6}); r.Outcome != OutcomeCastlingConfirmation {
		t.Fatalf("expected castling confirmation, got %s", r.Outcome)
	}
	if r := g.ExecuteCastling(Square{7, 4}, Square{7, 6}, true); r.Outcome != OutcomeMoved {
		t.Fatalf("castling failed: %s", r.Outcome) // 11. O-O
	}

	snapshot := captureState(g)
	if !g.GoToFirstMove() || !g.GoToLastMove() {
		t.Fatal("navigation failed")
	}
	if !reflect.DeepEqual(snapshot, captureState(g)) {
		t.Error("replay through promotion and castling diverged from forward state")
	}
}
