// Package notnil adapts github.com/notnil/chess positions to rules.Position.
//
// notnil positions are immutable: Update returns a successor. Apply pushes
// the successor on a stack and Undo pops it, so the root position is never
// touched while the engine searches.
package notnil

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/dylhunn/dragontoothmg"
	"github.com/notnil/chess"

	"github.com/hailam/shellchess/internal/rules"
)

// Move is a notnil move pointer. Pointers from the same LegalMoves call are
// comparable; do not mix moves from different calls.
type Move = *chess.Move

type frame struct {
	pos  *chess.Position
	last *chess.Move
}

// Position is a stack of notnil positions rooted at a game position.
type Position struct {
	stack []frame
}

var _ rules.Position[Move] = (*Position)(nil)

// FromGame roots a search position at the game's current position.
func FromGame(g *chess.Game) *Position {
	var last *chess.Move
	if moves := g.Moves(); len(moves) > 0 {
		last = moves[len(moves)-1]
	}
	return &Position{stack: []frame{{pos: g.Position(), last: last}}}
}

// FromFEN loads a position from a FEN string.
func FromFEN(fen string) (*Position, error) {
	if err := rules.ValidateFEN(fen); err != nil {
		return nil, fmt.Errorf("%w: %q", err, fen)
	}
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rules.ErrInvalidFEN, err)
	}
	return FromGame(chess.NewGame(opt)), nil
}

func (p *Position) top() *frame {
	return &p.stack[len(p.stack)-1]
}

// Current returns the notnil position at the top of the stack.
func (p *Position) Current() *chess.Position {
	return p.top().pos
}

// LegalMoves returns the legal moves of the current position.
func (p *Position) LegalMoves() []Move {
	return p.top().pos.ValidMoves()
}

// Apply pushes the position reached by m.
func (p *Position) Apply(m Move) {
	p.stack = append(p.stack, frame{pos: p.top().pos.Update(m), last: m})
}

// Undo pops the last applied move. The root cannot be popped.
func (p *Position) Undo() {
	if len(p.stack) == 1 {
		panic("notnil: Undo without Apply")
	}
	p.stack = p.stack[:len(p.stack)-1]
}

// Depth returns the number of moves applied and not yet undone.
func (p *Position) Depth() int {
	return len(p.stack) - 1
}

// IsCapture reports whether m takes a piece, en passant included.
func (p *Position) IsCapture(m Move) bool {
	return m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant)
}

// InCheck reports whether the side to move is in check. notnil keeps the
// flag private, so it is read from the status when no move exists, from the
// tag of the move that led here otherwise, and from a dragontoothmg parse of
// the FEN for a root position loaded without history.
func (p *Position) InCheck() bool {
	f := p.top()
	if len(f.pos.ValidMoves()) == 0 {
		return f.pos.Status() == chess.Checkmate
	}
	if f.last != nil {
		return f.last.HasTag(chess.Check)
	}
	b := dragontoothmg.ParseFen(f.pos.String())
	return b.OurKingInCheck()
}

// SideToMove returns the color whose turn it is.
func (p *Position) SideToMove() rules.Color {
	return color(p.top().pos.Turn())
}

// PieceAt returns the occupant of sq.
func (p *Position) PieceAt(sq rules.Square) rules.Piece {
	pc := p.top().pos.Board().Piece(chess.Square(sq))
	if pc == chess.NoPiece {
		return rules.NoPiece
	}
	return rules.Piece{Type: pieceType(pc.Type()), Color: color(pc.Color())}
}

// FEN returns the current position in Forsyth-Edwards notation.
func (p *Position) FEN() string {
	return p.top().pos.String()
}

// Fingerprint hashes the current FEN.
func (p *Position) Fingerprint() uint64 {
	return xxhash.Sum64String(p.top().pos.String())
}

func color(c chess.Color) rules.Color {
	switch c {
	case chess.White:
		return rules.White
	case chess.Black:
		return rules.Black
	}
	return rules.NoColor
}

// ChessColor converts a rules color to a notnil color.
func ChessColor(c rules.Color) chess.Color {
	switch c {
	case rules.White:
		return chess.White
	case rules.Black:
		return chess.Black
	}
	return chess.NoColor
}

func pieceType(t chess.PieceType) rules.PieceType {
	switch t {
	case chess.Pawn:
		return rules.Pawn
	case chess.Knight:
		return rules.Knight
	case chess.Bishop:
		return rules.Bishop
	case chess.Rook:
		return rules.Rook
	case chess.Queen:
		return rules.Queen
	case chess.King:
		return rules.King
	}
	return rules.NoPieceType
}

// FindMove resolves text against the legal moves of pos. Both SAN ("Nf3",
// "exd5", "O-O") and UCI ("g1f3") are accepted. The returned pointer is one
// of pos.ValidMoves(), so it carries the position's move tags.
func FindMove(pos *chess.Position, text string) (*chess.Move, error) {
	san := chess.AlgebraicNotation{}
	for _, m := range pos.ValidMoves() {
		if m.String() == text {
			return m, nil
		}
		enc := san.Encode(pos, m)
		if enc == text || trimSuffix(enc) == trimSuffix(text) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", rules.ErrIllegalMove, text)
}

// SAN returns m in standard algebraic notation for pos.
func SAN(pos *chess.Position, m *chess.Move) string {
	return chess.AlgebraicNotation{}.Encode(pos, m)
}

func trimSuffix(s string) string {
	for len(s) > 0 {
		switch s[len(s)-1] {
		case '+', '#', '!', '?':
			s = s[:len(s)-1]
			continue
		}
		break
	}
	return s
}
