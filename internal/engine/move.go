package engine

// Move is a historical record of one applied half-move. Records are
// immutable once appended: time-travel navigation replays them, it
// never edits them. Piece carries the post-move identity, so for a
// promotion it already names the promoted piece.
type Move struct {
	From          Square    `json:"from"`
	To            Square    `json:"to"`
	Piece         Piece     `json:"piece"`
	Captured      *Piece    `json:"captured,omitempty"`
	IsPromotion   bool      `json:"isPromotion,omitempty"`
	PromotionKind PieceKind `json:"promotionKind,omitempty"`
	IsCastling    bool      `json:"isCastling,omitempty"`
	MoveNumber    int       `json:"moveNumber"`
}

// Kingside reports which wing a castling record belongs to, derived
// from the king's recorded destination column.
func (m Move) Kingside() bool {
	return m.IsCastling && m.To.Col == kingsideKingDest
}

// Notation renders the move as a simple algebraic square pair such as
// "e2-e4", or "O-O"/"O-O-O" for castling.
func (m Move) Notation() string {
	if m.IsCastling {
		if m.Kingside() {
			return "O-O"
		}
		return "O-O-O"
	}
	return m.From.String() + "-" + m.To.String()
}
