package engine

// moveRule decides whether a piece may travel from one square to
// another on the given board, looking only at geometry and occupancy.
// Turn ownership and castling are the Game controller's business.
type moveRule func(b *Board, p Piece, from, to Square) bool

var moveRules = map[PieceKind]moveRule{
	Pawn:   pawnRule,
	Rook:   rookRule,
	Knight: knightRule,
	Bishop: bishopRule,
	Queen:  queenRule,
	King:   kingRule,
}

// IsValidMove reports whether the piece may move from one square to
// the other on this board. A destination occupied by a same-side piece
// is always illegal. Two-square king moves are handled by the castling
// flow, never here.
func IsValidMove(b *Board, p Piece, from, to Square) bool {
	if !from.Valid() || !to.Valid() || from == to {
		return false
	}
	if target := b.Get(to); !target.IsEmpty() && target.Side == p.Side {
		return false
	}
	rule, ok := moveRules[p.Kind]
	if !ok {
		return false
	}
	return rule(b, p, from, to)
}

// pawnDirection is the row delta a pawn of the side advances by:
// white marches toward row 0, black toward row 7.
func pawnDirection(s Side) int {
	if s == White {
		return -1
	}
	return 1
}

// pawnStartRow is the rank a pawn double-step may start from.
func pawnStartRow(s Side) int {
	if s == White {
		return 6
	}
	return 1
}

// promotionRow is the far rank a pawn of the side promotes on.
func promotionRow(s Side) int {
	if s == White {
		return 0
	}
	return 7
}

func pawnRule(b *Board, p Piece, from, to Square) bool {
	dir := pawnDirection(p.Side)
	dRow, dCol := to.Row-from.Row, to.Col-from.Col
	target := b.Get(to)

	if dCol == 0 {
		// Straight pushes never capture.
		if !target.IsEmpty() {
			return false
		}
		if dRow == dir {
			return true
		}
		if from.Row == pawnStartRow(p.Side) && dRow == 2*dir {
			return b.Get(Square{Row: from.Row + dir, Col: from.Col}).IsEmpty()
		}
		return false
	}

	// Diagonal single step only onto an opponent piece.
	return abs(dCol) == 1 && dRow == dir && !target.IsEmpty() && target.Side != p.Side
}

func rookRule(b *Board, _ Piece, from, to Square) bool {
	if from.Row != to.Row && from.Col != to.Col {
		return false
	}
	return isPathClear(b, from, to)
}

func knightRule(_ *Board, _ Piece, from, to Square) bool {
	dRow, dCol := abs(to.Row-from.Row), abs(to.Col-from.Col)
	return (dRow == 2 && dCol == 1) || (dRow == 1 && dCol == 2)
}

func bishopRule(b *Board, _ Piece, from, to Square) bool {
	if abs(to.Row-from.Row) != abs(to.Col-from.Col) {
		return false
	}
	return isPathClear(b, from, to)
}

func queenRule(b *Board, p Piece, from, to Square) bool {
	return rookRule(b, p, from, to) || bishopRule(b, p, from, to)
}

func kingRule(_ *Board, _ Piece, from, to Square) bool {
	return abs(to.Row-from.Row) <= 1 && abs(to.Col-from.Col) <= 1
}

// isPathClear walks unit steps from one square toward the other,
// exclusive on both ends, and fails on any occupied or off-board
// intervening square. Off-board can only happen on degenerate deltas.
func isPathClear(b *Board, from, to Square) bool {
	dRow, dCol := sign(to.Row-from.Row), sign(to.Col-from.Col)
	cur := Square{Row: from.Row + dRow, Col: from.Col + dCol}
	for cur != to {
		if !cur.Valid() {
			return false
		}
		if !b.Get(cur).IsEmpty() {
			return false
		}
		cur.Row += dRow
		cur.Col += dCol
	}
	return true
}
