package engine

import (
	"github.com/hailam/shellchess/internal/rules"
)

// PieceValue is the material value of each piece type in centipawns.
var PieceValue = [6]int{100, 320, 330, 500, 900, 20000}

// Piece-square tables, indexed [row][file]. A White piece on rank r
// (0 = first rank) reads row r; a Black piece reads row 7-r.
// Bishops, rooks and queens have no table.
var pawnTable = [8][8]int{
	{0, 0, 0, 0, 0, 0, 0, 0},
	{50, 50, 50, 50, 50, 50, 50, 50},
	{10, 10, 20, 30, 30, 20, 10, 10},
	{5, 5, 10, 25, 25, 10, 5, 5},
	{0, 0, 0, 20, 20, 0, 0, 0},
	{5, -5, -10, 0, 0, -10, -5, 5},
	{5, 10, 10, -20, -20, 10, 10, 5},
	{0, 0, 0, 0, 0, 0, 0, 0},
}

var knightTable = [8][8]int{
	{-50, -40, -30, -30, -30, -30, -40, -50},
	{-40, -20, 0, 0, 0, 0, -20, -40},
	{-30, 0, 10, 15, 15, 10, 0, -30},
	{-30, 5, 15, 20, 20, 15, 5, -30},
	{-30, 0, 15, 20, 20, 15, 0, -30},
	{-30, 5, 10, 15, 15, 10, 5, -30},
	{-40, -20, 0, 5, 5, 0, -20, -40},
	{-50, -40, -30, -30, -30, -30, -40, -50},
}

var kingTable = [8][8]int{
	{-30, -40, -40, -50, -50, -40, -40, -30},
	{-30, -40, -40, -50, -50, -40, -40, -30},
	{-30, -40, -40, -50, -50, -40, -40, -30},
	{-30, -40, -40, -50, -50, -40, -40, -30},
	{-20, -30, -30, -40, -40, -30, -30, -20},
	{-10, -20, -20, -20, -20, -20, -20, -10},
	{20, 20, 0, 0, 0, 0, 20, 20},
	{20, 30, 10, 0, 0, 10, 30, 20},
}

var pieceTables = [6]*[8][8]int{
	rules.Pawn:   &pawnTable,
	rules.Knight: &knightTable,
	rules.King:   &kingTable,
}

// PieceScore returns the material plus positional value of a single piece
// standing on sq, always as a positive number.
func PieceScore(p rules.Piece, sq rules.Square) int {
	if p.Empty() || int(p.Type) >= len(PieceValue) {
		return 0
	}
	score := PieceValue[p.Type]
	if table := pieceTables[p.Type]; table != nil {
		row := sq.Rank()
		if p.Color == rules.Black {
			row = 7 - row
		}
		score += table[row][sq.File()]
	}
	return score
}

// Evaluate returns the static evaluation of a position from White's
// perspective: positive favors White whoever is to move.
func Evaluate(b rules.Board) int {
	score := 0
	for sq := rules.Square(0); sq < 64; sq++ {
		p := b.PieceAt(sq)
		if p.Empty() {
			continue
		}
		if p.Color == rules.White {
			score += PieceScore(p, sq)
		} else {
			score -= PieceScore(p, sq)
		}
	}
	return score
}
