package engine

// Game is the aggregate root: it owns the board, the move history and
// its cursor, the turn flag, castling rights, captured-piece
// inventories and the playback flags. All state changes go through its
// command methods, and a rejected command leaves every field
// untouched.
//
// A Game is not safe for concurrent use; a host serving several
// sessions must give each Game a single writer.
type Game struct {
	board  *Board
	moves  []Move
	cursor int // index of the last applied move, -1 for the initial position

	whiteTurn bool
	rights    map[Side]*CastlingRights
	captured  map[Side][]Piece

	paused      bool
	autoPlaying bool
}

// NewGame returns a game at the standard starting position with white
// to move.
func NewGame() *Game {
	g := &Game{board: NewBoard()}
	g.Reset()
	return g
}

// Reset reinitializes every piece of state: board, history, cursor,
// turn, castling rights, captured inventories and playback flags.
func (g *Game) Reset() {
	g.board.Reset()
	g.moves = nil
	g.cursor = -1
	g.whiteTurn = true
	g.rights = map[Side]*CastlingRights{White: {}, Black: {}}
	g.captured = map[Side][]Piece{White: nil, Black: nil}
	g.paused = false
	g.autoPlaying = false
}

// SideToMove returns the side whose turn it is.
func (g *Game) SideToMove() Side {
	if g.whiteTurn {
		return White
	}
	return Black
}

// IsWhiteTurn reports whether white is to move.
func (g *Game) IsWhiteTurn() bool { return g.whiteTurn }

// PieceAt returns the piece on the square, or the empty Piece value
// for a vacant or invalid square.
func (g *Game) PieceAt(sq Square) Piece {
	if !sq.Valid() {
		return Piece{}
	}
	return g.board.Get(sq)
}

// CapturedPieces returns, in capture order, the opposing pieces the
// side has taken so far.
func (g *Game) CapturedPieces(side Side) []Piece {
	out := make([]Piece, len(g.captured[side]))
	copy(out, g.captured[side])
	return out
}

// CastlingRightsFor returns the side's current rights flags.
func (g *Game) CastlingRightsFor(side Side) CastlingRights {
	return *g.rights[side]
}

// MoveHistory returns a copy of the full move history, including any
// moves after the cursor that have not been truncated yet.
func (g *Game) MoveHistory() []Move {
	out := make([]Move, len(g.moves))
	copy(out, g.moves)
	return out
}

// CurrentMoveIndex returns the history cursor: the index of the last
// applied move, or -1 at the initial position.
func (g *Game) CurrentMoveIndex() int { return g.cursor }

// TotalMoves returns the number of moves in the history.
func (g *Game) TotalMoves() int { return len(g.moves) }

// IsPaused reports the pause flag. Pausing gates auto-advancing
// playback only; manual commands stay permitted.
func (g *Game) IsPaused() bool { return g.paused }

// SetPaused sets the pause flag.
func (g *Game) SetPaused(paused bool) { g.paused = paused }

// IsAutoPlaying reports whether auto-advancing playback is active.
// Manual move commands are rejected while it is.
func (g *Game) IsAutoPlaying() bool { return g.autoPlaying }

// SetAutoPlaying sets the auto-play flag.
func (g *Game) SetAutoPlaying(auto bool) { g.autoPlaying = auto }

// AttemptMove tries to move whatever stands on from to to. The result
// is one of: the move applied (OutcomeMoved), a castling confirmation
// request, a promotion choice request, or OutcomeInvalid. Only the
// first of these mutates any state.
//
// Dispatch order: castling trigger first, then promotion, then
// ordinary legality; the first matching branch decides.
func (g *Game) AttemptMove(from, to Square) MoveResult {
	if !from.Valid() || !to.Valid() || g.autoPlaying {
		return invalid(from, to)
	}
	piece := g.board.Get(from)
	if piece.IsEmpty() || piece.Side != g.SideToMove() {
		return invalid(from, to)
	}

	if kingside, ok := castlingTrigger(piece, from, to); ok {
		if CanCastle(g.board, *g.rights[piece.Side], piece.Side, kingside) {
			return MoveResult{
				Outcome:  OutcomeCastlingConfirmation,
				From:     from,
				To:       to,
				Piece:    piece,
				Kingside: kingside,
			}
		}
	}

	if !IsValidMove(g.board, piece, from, to) {
		return invalid(from, to)
	}

	if piece.Kind == Pawn && to.Row == promotionRow(piece.Side) {
		return MoveResult{
			Outcome: OutcomePromotionRequired,
			From:    from,
			To:      to,
			Piece:   piece,
		}
	}

	move := g.buildMove(from, to, piece)
	g.commit(move)
	return MoveResult{Outcome: OutcomeMoved, Move: &move, From: from, To: to, Piece: piece}
}

// CompletePromotion finishes a pawn promotion announced by
// AttemptMove. The chosen kind must be drawn from the mover's
// captured-piece inventory, and Pawn and King are never legal choices.
func (g *Game) CompletePromotion(from, to Square, kind PieceKind) MoveResult {
	if !from.Valid() || !to.Valid() || g.autoPlaying {
		return invalid(from, to)
	}
	pawn := g.board.Get(from)
	if pawn.Kind != Pawn || pawn.Side != g.SideToMove() {
		return invalid(from, to)
	}
	if to.Row != promotionRow(pawn.Side) || !IsValidMove(g.board, pawn, from, to) {
		return invalid(from, to)
	}
	if !g.promotionKindAvailable(pawn.Side, kind) {
		return invalid(from, to)
	}

	promoted := Piece{Kind: kind, Side: pawn.Side}
	move := g.buildMove(from, to, promoted)
	move.IsPromotion = true
	move.PromotionKind = kind
	g.commit(move)
	return MoveResult{Outcome: OutcomeMoved, Move: &move, From: from, To: to, Piece: promoted}
}

// promotionKindAvailable reports whether the side may promote to the
// kind. The inventory is not consumed: a captured kind stays available
// for any number of promotions.
func (g *Game) promotionKindAvailable(side Side, kind PieceKind) bool {
	if kind == Pawn || kind == King || kind == NoPiece {
		return false
	}
	for _, p := range g.captured[side] {
		if p.Kind == kind {
			return true
		}
	}
	return false
}

// ExecuteCastling commits a castling move previously announced via a
// castling confirmation result. Declining needs no engine call: the
// confirmation left no state behind.
func (g *Game) ExecuteCastling(from, to Square, kingside bool) MoveResult {
	if !from.Valid() || !to.Valid() || g.autoPlaying {
		return invalid(from, to)
	}
	piece := g.board.Get(from)
	if piece.IsEmpty() || piece.Side != g.SideToMove() {
		return invalid(from, to)
	}
	wing, ok := castlingTrigger(piece, from, to)
	if !ok || wing != kingside {
		return invalid(from, to)
	}
	side := piece.Side
	if !CanCastle(g.board, *g.rights[side], side, kingside) {
		return invalid(from, to)
	}

	row := homeRow(side)
	kingDest := queensideKingDest
	if kingside {
		kingDest = kingsideKingDest
	}
	move := Move{
		From:       Square{Row: row, Col: kingHomeCol},
		To:         Square{Row: row, Col: kingDest},
		Piece:      Piece{Kind: King, Side: side},
		IsCastling: true,
		MoveNumber: g.cursor + 2,
	}
	g.commit(move)
	return MoveResult{Outcome: OutcomeMoved, Move: &move, From: move.From, To: move.To, Piece: move.Piece, Kingside: kingside}
}

// ValidMovesForPiece enumerates every destination the piece on the
// square may move to, with the castling destinations synthesized in
// when the piece is a king or an eligible corner rook. Eligibility is
// computed live, never cached.
func (g *Game) ValidMovesForPiece(sq Square) []Square {
	if !sq.Valid() {
		return nil
	}
	piece := g.board.Get(sq)
	if piece.IsEmpty() {
		return nil
	}

	var dests []Square
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			to := Square{Row: row, Col: col}
			if IsValidMove(g.board, piece, sq, to) {
				dests = append(dests, to)
			}
		}
	}

	row := homeRow(piece.Side)
	appendDest := func(to Square) {
		for _, d := range dests {
			if d == to {
				return
			}
		}
		dests = append(dests, to)
	}
	switch {
	case piece.Kind == King && sq == (Square{Row: row, Col: kingHomeCol}):
		if CanCastle(g.board, *g.rights[piece.Side], piece.Side, true) {
			appendDest(Square{Row: row, Col: kingsideKingDest})
		}
		if CanCastle(g.board, *g.rights[piece.Side], piece.Side, false) {
			appendDest(Square{Row: row, Col: queensideKingDest})
		}
	case piece.Kind == Rook && sq == (Square{Row: row, Col: kingsideRookCol}):
		if CanCastle(g.board, *g.rights[piece.Side], piece.Side, true) {
			appendDest(Square{Row: row, Col: kingsideRookDest})
		}
	case piece.Kind == Rook && sq == (Square{Row: row, Col: queensideRookCol}):
		if CanCastle(g.board, *g.rights[piece.Side], piece.Side, false) {
			appendDest(Square{Row: row, Col: queensideRookDest})
		}
	}
	return dests
}

// GoToMove repositions the cursor to index, where -1 means the initial
// position. The board, captured inventories and castling rights are
// rebuilt by replaying history from scratch, which is guaranteed to
// reproduce the exact state the forward application produced. Returns
// false (and changes nothing) for an out-of-range index.
func (g *Game) GoToMove(index int) bool {
	if index < -1 || index >= len(g.moves) {
		return false
	}
	g.board.Reset()
	g.rights = map[Side]*CastlingRights{White: {}, Black: {}}
	g.captured = map[Side][]Piece{White: nil, Black: nil}
	for i := 0; i <= index; i++ {
		g.applyRecorded(g.moves[i])
	}
	g.cursor = index
	g.whiteTurn = (index+1)%2 == 0
	return true
}

// GoToFirstMove repositions to the initial position.
func (g *Game) GoToFirstMove() bool { return g.GoToMove(-1) }

// GoToLastMove repositions to the end of the history.
func (g *Game) GoToLastMove() bool { return g.GoToMove(len(g.moves) - 1) }

// GoToNextMove advances the cursor by one.
func (g *Game) GoToNextMove() bool { return g.GoToMove(g.cursor + 1) }

// GoToPreviousMove rewinds the cursor by one.
func (g *Game) GoToPreviousMove() bool { return g.GoToMove(g.cursor - 1) }

// buildMove assembles the history record for an ordinary move or a
// promotion landing of the given post-move piece.
func (g *Game) buildMove(from, to Square, piece Piece) Move {
	move := Move{
		From:       from,
		To:         to,
		Piece:      piece,
		MoveNumber: g.cursor + 2,
	}
	if target := g.board.Get(to); !target.IsEmpty() {
		captured := target
		move.Captured = &captured
	}
	return move
}

// commit applies the record to the live state and appends it to the
// history. Appending from a non-final cursor discards the branch after
// the cursor first.
func (g *Game) commit(move Move) {
	if g.cursor < len(g.moves)-1 {
		g.moves = g.moves[:g.cursor+1]
	}
	g.applyRecorded(move)
	g.moves = append(g.moves, move)
	g.cursor = len(g.moves) - 1
	g.whiteTurn = !g.whiteTurn
}

// applyRecorded mutates board, captured inventories and castling
// rights exactly as the record dictates. Forward application and
// history replay share this one code path, which is what makes replay
// bit-identical.
func (g *Game) applyRecorded(m Move) {
	side := m.Piece.Side
	if m.IsCastling {
		row := homeRow(side)
		rookCol, rookDest := queensideRookCol, queensideRookDest
		if m.Kingside() {
			rookCol, rookDest = kingsideRookCol, kingsideRookDest
		}
		g.board.Clear(Square{Row: row, Col: kingHomeCol})
		g.board.Clear(Square{Row: row, Col: rookCol})
		g.board.Set(m.To, m.Piece)
		g.board.Set(Square{Row: row, Col: rookDest}, Piece{Kind: Rook, Side: side})
		g.rights[side].KingMoved = true
		if m.Kingside() {
			g.rights[side].KingsideRookMoved = true
		} else {
			g.rights[side].QueensideRookMoved = true
		}
		return
	}

	if m.Captured != nil {
		g.captured[side] = append(g.captured[side], *m.Captured)
	}
	g.board.Clear(m.From)
	g.board.Set(m.To, m.Piece)
	if m.IsPromotion {
		return
	}
	g.rights[side].recordDeparture(m.Piece, m.From)
}
