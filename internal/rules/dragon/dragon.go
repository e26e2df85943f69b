// Package dragon adapts github.com/dylhunn/dragontoothmg to rules.Position.
//
// dragontoothmg applies moves in place and hands back a closure that reverts
// them, which maps directly onto the Apply/Undo pairing the engine needs.
package dragon

import (
	"fmt"
	"math/bits"

	"github.com/cespare/xxhash/v2"
	"github.com/dylhunn/dragontoothmg"

	"github.com/hailam/shellchess/internal/rules"
)

// Move is the backend's packed move.
type Move = dragontoothmg.Move

// Position wraps a dragontoothmg board with an undo stack.
type Position struct {
	board   dragontoothmg.Board
	unapply []func()
}

var _ rules.Position[Move] = (*Position)(nil)

// New returns the standard starting position.
func New() *Position {
	return &Position{board: dragontoothmg.ParseFen(dragontoothmg.Startpos)}
}

// FromFEN loads a position. dragontoothmg panics on malformed input, so the
// string is validated first and any remaining panic is turned into an error.
func FromFEN(fen string) (p *Position, err error) {
	if err := rules.ValidateFEN(fen); err != nil {
		return nil, fmt.Errorf("%w: %q", err, fen)
	}
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("%w: %q: %v", rules.ErrInvalidFEN, fen, r)
		}
	}()
	return &Position{board: dragontoothmg.ParseFen(fen)}, nil
}

// LegalMoves returns all legal moves in generator order.
func (p *Position) LegalMoves() []Move {
	return p.board.GenerateLegalMoves()
}

// Apply plays m and remembers how to revert it.
func (p *Position) Apply(m Move) {
	p.unapply = append(p.unapply, p.board.Apply(m))
}

// Undo reverts the most recent Apply. It panics when nothing was applied.
func (p *Position) Undo() {
	n := len(p.unapply) - 1
	if n < 0 {
		panic("dragon: Undo without Apply")
	}
	undo := p.unapply[n]
	p.unapply = p.unapply[:n]
	undo()
}

// Depth returns the number of moves applied and not yet undone.
func (p *Position) Depth() int {
	return len(p.unapply)
}

// IsCapture reports whether m takes a piece, en passant included.
func (p *Position) IsCapture(m Move) bool {
	us, them := &p.board.White, &p.board.Black
	if !p.board.Wtomove {
		us, them = them, us
	}
	to := uint64(1) << m.To()
	if them.All&to != 0 {
		return true
	}
	// A pawn that changes file without landing on a piece took en passant.
	from := uint64(1) << m.From()
	return us.Pawns&from != 0 && m.From()&7 != m.To()&7
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool {
	return p.board.OurKingInCheck()
}

// SideToMove returns the color whose turn it is.
func (p *Position) SideToMove() rules.Color {
	if p.board.Wtomove {
		return rules.White
	}
	return rules.Black
}

// PieceAt returns the occupant of sq.
func (p *Position) PieceAt(sq rules.Square) rules.Piece {
	mask := uint64(1) << uint(sq)
	if t, ok := pieceIn(&p.board.White, mask); ok {
		return rules.Piece{Type: t, Color: rules.White}
	}
	if t, ok := pieceIn(&p.board.Black, mask); ok {
		return rules.Piece{Type: t, Color: rules.Black}
	}
	return rules.NoPiece
}

func pieceIn(bb *dragontoothmg.Bitboards, mask uint64) (rules.PieceType, bool) {
	if bb.All&mask == 0 {
		return rules.NoPieceType, false
	}
	switch {
	case bb.Pawns&mask != 0:
		return rules.Pawn, true
	case bb.Knights&mask != 0:
		return rules.Knight, true
	case bb.Bishops&mask != 0:
		return rules.Bishop, true
	case bb.Rooks&mask != 0:
		return rules.Rook, true
	case bb.Queens&mask != 0:
		return rules.Queen, true
	case bb.Kings&mask != 0:
		return rules.King, true
	}
	return rules.NoPieceType, false
}

// PieceCount returns the number of pieces of both colors.
func (p *Position) PieceCount() int {
	return bits.OnesCount64(p.board.White.All | p.board.Black.All)
}

// FEN returns the position in Forsyth-Edwards notation.
func (p *Position) FEN() string {
	return p.board.ToFen()
}

// Fingerprint hashes the full FEN, so castling rights and the en passant
// square take part along with placement.
func (p *Position) Fingerprint() uint64 {
	return xxhash.Sum64String(p.board.ToFen())
}

// MoveString returns m in UCI long algebraic form.
func MoveString(m Move) string {
	return m.String()
}

// ParseMove finds the legal move written as s in UCI form.
func (p *Position) ParseMove(s string) (Move, error) {
	for _, m := range p.board.GenerateLegalMoves() {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", rules.ErrIllegalMove, s)
}

// PlayMoves applies a sequence of UCI moves permanently. On error the moves
// already applied remain applied.
func (p *Position) PlayMoves(moves []string) error {
	for _, s := range moves {
		m, err := p.ParseMove(s)
		if err != nil {
			return err
		}
		p.board.Apply(m)
	}
	return nil
}
