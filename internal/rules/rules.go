// Package rules defines the contract between the move-selection engine and
// the library that owns chess legality.
//
// The engine never generates moves or detects mate itself. It asks a
// Position for its legal moves, applies and undoes them in place, and reads
// squares to score the result. Implementations live in the dragon and notnil
// subpackages.
package rules

import (
	"errors"
	"strings"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	// ErrInvalidFEN is returned when a backend cannot load a FEN string.
	ErrInvalidFEN = errors.New("invalid FEN")
	// ErrIllegalMove is returned when a move string does not name a legal move.
	ErrIllegalMove = errors.New("illegal move")
)

// Board is the read-only view of a position used by the evaluator.
type Board interface {
	// PieceAt returns the occupant of sq, or NoPiece.
	PieceAt(sq Square) Piece
	// SideToMove returns the color whose turn it is.
	SideToMove() Color
	// InCheck reports whether the side to move is in check.
	InCheck() bool
}

// Position is a mutable game state. Apply and Undo must pair exactly: after
// Apply(m) followed by Undo() the position is identical to what it was.
// Applying a move that is not in LegalMoves is undefined and may panic.
type Position[M comparable] interface {
	Board
	LegalMoves() []M
	Apply(m M)
	Undo()
	IsCapture(m M) bool
}

// Fingerprinter is implemented by positions that can summarize their full
// state (placement, side, castling, en passant) in a hash.
type Fingerprinter interface {
	Fingerprint() uint64
}

// ValidateFEN performs the structural checks shared by both backends before
// handing a string to a parser that does not report errors itself.
func ValidateFEN(fen string) error {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return ErrInvalidFEN
	}
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return ErrInvalidFEN
	}
	kings := map[rune]int{}
	for _, r := range ranks {
		width := 0
		for _, c := range r {
			switch {
			case c >= '1' && c <= '8':
				width += int(c - '0')
			case strings.ContainsRune("pnbrqkPNBRQK", c):
				width++
				if c == 'k' || c == 'K' {
					kings[c]++
				}
			default:
				return ErrInvalidFEN
			}
		}
		if width != 8 {
			return ErrInvalidFEN
		}
	}
	if kings['k'] != 1 || kings['K'] != 1 {
		return ErrInvalidFEN
	}
	if fields[1] != "w" && fields[1] != "b" {
		return ErrInvalidFEN
	}
	return nil
}

// Perft counts leaf nodes of the legal move tree to the given depth.
func Perft[M comparable](pos Position[M], depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := pos.LegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		pos.Apply(m)
		nodes += Perft(pos, depth-1)
		pos.Undo()
	}
	return nodes
}

// Draw renders the board as ASCII with rank 8 at the top.
func Draw(b Board) string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte(byte('1' + rank))
		sb.WriteString(" ")
		for file := 0; file < 8; file++ {
			sb.WriteByte(' ')
			sb.WriteByte(b.PieceAt(NewSquare(file, rank)).Char())
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("   a b c d e f g h\n")
	return sb.String()
}
