package engine

import "fmt"

// Side identifies one of the two players.
type Side string

const (
	White Side = "white"
	Black Side = "black"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == White {
		return Black
	}
	return White
}

// PieceKind identifies a kind of chess piece. The zero value means
// "no piece" and is what Board.Get returns for an empty square.
type PieceKind string

const (
	NoPiece PieceKind = ""
	Pawn    PieceKind = "pawn"
	Rook    PieceKind = "rook"
	Knight  PieceKind = "knight"
	Bishop  PieceKind = "bishop"
	Queen   PieceKind = "queen"
	King    PieceKind = "king"
)

// Piece is an immutable (kind, side) pair. Pieces are replaced, never
// mutated: promotion swaps the pawn for a fresh piece and capture drops
// the old one into the capturer's inventory.
type Piece struct {
	Kind PieceKind `json:"kind"`
	Side Side      `json:"side"`
}

// IsEmpty reports whether the value describes no piece at all.
func (p Piece) IsEmpty() bool {
	return p.Kind == NoPiece
}

// Square addresses a board cell. Row 0 is black's back rank, row 7 is
// white's back rank and column 0 is the "a" file.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Valid reports whether the square lies on the board.
func (sq Square) Valid() bool {
	return sq.Row >= 0 && sq.Row < 8 && sq.Col >= 0 && sq.Col < 8
}

// String renders the square in algebraic form, e.g. "e2".
func (sq Square) String() string {
	if !sq.Valid() {
		return "[invalid square]"
	}
	return fmt.Sprintf("%c%d", 'a'+sq.Col, 8-sq.Row)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
