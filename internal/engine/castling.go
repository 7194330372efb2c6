package engine

// Castling geometry. The king starts on column 4; kingside castling
// sends it to column 6 with the rook on 5. Queenside castling in this
// variant sends the king all the way to the rook's corner on column 0,
// with the rook on 3 (not the orthodox columns 2 and 3).
const (
	kingHomeCol       = 4
	kingsideRookCol   = 7
	queensideRookCol  = 0
	kingsideKingDest  = 6
	queensideKingDest = 0
	kingsideRookDest  = 5
	queensideRookDest = 3
)

// homeRow is a side's back rank.
func homeRow(s Side) int {
	if s == White {
		return 7
	}
	return 0
}

// CastlingRights tracks, for one side, whether the king or either rook
// has ever left its origin square. The flags are monotonic: once set
// they stay set until a full game reset, and history replay recomputes
// them from scratch rather than restoring a snapshot.
type CastlingRights struct {
	KingMoved          bool `json:"kingMoved"`
	KingsideRookMoved  bool `json:"kingsideRookMoved"`
	QueensideRookMoved bool `json:"queensideRookMoved"`
}

// recordDeparture sets the flags matching a piece leaving a square.
func (r *CastlingRights) recordDeparture(p Piece, from Square) {
	if from.Row != homeRow(p.Side) {
		return
	}
	switch {
	case p.Kind == King && from.Col == kingHomeCol:
		r.KingMoved = true
	case p.Kind == Rook && from.Col == kingsideRookCol:
		r.KingsideRookMoved = true
	case p.Kind == Rook && from.Col == queensideRookCol:
		r.QueensideRookMoved = true
	}
}

// CanCastle reports castling eligibility for the side on the given
// wing: neither the king nor the wing's rook may have moved, the rook
// must still stand on its corner, every square strictly between them
// must be empty, and neither the king's square nor any square it
// transits (destination included) may be under attack.
func CanCastle(b *Board, rights CastlingRights, side Side, kingside bool) bool {
	if rights.KingMoved {
		return false
	}
	row := homeRow(side)

	rookCol, kingDest := queensideRookCol, queensideKingDest
	if kingside {
		rookCol, kingDest = kingsideRookCol, kingsideKingDest
	}
	if kingside && rights.KingsideRookMoved || !kingside && rights.QueensideRookMoved {
		return false
	}

	rook := b.Get(Square{Row: row, Col: rookCol})
	if rook.Kind != Rook || rook.Side != side {
		return false
	}

	step := sign(rookCol - kingHomeCol)
	for col := kingHomeCol + step; col != rookCol; col += step {
		if !b.Get(Square{Row: row, Col: col}).IsEmpty() {
			return false
		}
	}

	if SquareUnderAttack(b, Square{Row: row, Col: kingHomeCol}, side) {
		return false
	}
	dir := sign(kingDest - kingHomeCol)
	for col := kingHomeCol + dir; ; col += dir {
		if SquareUnderAttack(b, Square{Row: row, Col: col}, side) {
			return false
		}
		if col == kingDest {
			break
		}
	}
	return true
}

// castlingTrigger detects an attempted move that opens the castling
// confirmation flow: a king on its home square heading two squares
// sideways (or straight onto the synthesized destination), or a corner
// rook heading to the square it would occupy after castling.
func castlingTrigger(p Piece, from, to Square) (kingside, ok bool) {
	row := homeRow(p.Side)
	if from.Row != row || to.Row != row {
		return false, false
	}
	switch {
	case p.Kind == King && from.Col == kingHomeCol:
		switch to.Col {
		case kingsideKingDest:
			return true, true
		case queensideKingDest, 2:
			return false, true
		}
	case p.Kind == Rook && from.Col == kingsideRookCol && to.Col == kingsideRookDest:
		return true, true
	case p.Kind == Rook && from.Col == queensideRookCol && to.Col == queensideRookDest:
		return false, true
	}
	return false, false
}
