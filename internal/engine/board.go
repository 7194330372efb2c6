package engine

// Board is an 8x8 grid of optional pieces. It is pure positional
// storage: it carries no move history and enforces no rules. Writes go
// through the Game controller and its replay logic only.
type Board struct {
	squares [8][8]Piece
}

// NewBoard returns a board populated with the standard starting
// arrangement.
func NewBoard() *Board {
	b := &Board{}
	b.Reset()
	return b
}

var backRank = [8]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Reset clears the board and repopulates the standard starting
// arrangement: black on rows 0-1, white on rows 6-7.
func (b *Board) Reset() {
	b.squares = [8][8]Piece{}
	for col := 0; col < 8; col++ {
		b.squares[0][col] = Piece{Kind: backRank[col], Side: Black}
		b.squares[1][col] = Piece{Kind: Pawn, Side: Black}
		b.squares[6][col] = Piece{Kind: Pawn, Side: White}
		b.squares[7][col] = Piece{Kind: backRank[col], Side: White}
	}
}

// Get returns the piece on the square, or the empty Piece value for a
// vacant cell. The square must be valid; see Square.Valid.
func (b *Board) Get(sq Square) Piece {
	return b.squares[sq.Row][sq.Col]
}

// Set writes a piece (or the empty Piece value) directly onto the
// square with no legality check.
func (b *Board) Set(sq Square, p Piece) {
	b.squares[sq.Row][sq.Col] = p
}

// Clear empties the square.
func (b *Board) Clear(sq Square) {
	b.squares[sq.Row][sq.Col] = Piece{}
}
