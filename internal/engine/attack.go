package engine

// SquareUnderAttack reports whether any opposing piece could capture
// onto the square if it belonged to the defending side. It uses plain
// attack geometry rather than full move legality: a pawn attacks only
// diagonally, a king attacks its eight neighbours, and sliders need a
// clear path.
//
// The target square is temporarily vacated so that its current
// occupant cannot block the slide scan against itself; the occupant is
// restored on every path out of the function.
func SquareUnderAttack(b *Board, target Square, defender Side) bool {
	occupant := b.Get(target)
	b.Clear(target)
	defer b.Set(target, occupant)

	attacker := defender.Opponent()
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			from := Square{Row: row, Col: col}
			p := b.Get(from)
			if p.IsEmpty() || p.Side != attacker {
				continue
			}
			if attacks(b, p, from, target) {
				return true
			}
		}
	}
	return false
}

func attacks(b *Board, p Piece, from, to Square) bool {
	dRow, dCol := to.Row-from.Row, to.Col-from.Col
	switch p.Kind {
	case Pawn:
		return dRow == pawnDirection(p.Side) && abs(dCol) == 1
	case Knight:
		return (abs(dRow) == 2 && abs(dCol) == 1) || (abs(dRow) == 1 && abs(dCol) == 2)
	case King:
		return abs(dRow) <= 1 && abs(dCol) <= 1 && (dRow != 0 || dCol != 0)
	case Rook:
		return (dRow == 0 || dCol == 0) && (dRow != 0 || dCol != 0) && isPathClear(b, from, to)
	case Bishop:
		return dRow != 0 && abs(dRow) == abs(dCol) && isPathClear(b, from, to)
	case Queen:
		straight := (dRow == 0 || dCol == 0) && (dRow != 0 || dCol != 0)
		diagonal := dRow != 0 && abs(dRow) == abs(dCol)
		return (straight || diagonal) && isPathClear(b, from, to)
	}
	return false
}
