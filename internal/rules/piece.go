package rules

// Color represents the color of a piece or player.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// ParseColor accepts "white", "w", "black" and "b" in any case.
func ParseColor(s string) (Color, bool) {
	switch s {
	case "white", "White", "WHITE", "w", "W":
		return White, true
	case "black", "Black", "BLACK", "b", "B":
		return Black, true
	}
	return NoColor, false
}

// PieceType represents the type of a chess piece.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 6
)

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Piece is an occupant of a square. The zero value of Type is a pawn, so an
// empty square is reported as NoPiece rather than Piece{}.
type Piece struct {
	Type  PieceType
	Color Color
}

// NoPiece is the occupant of an empty square.
var NoPiece = Piece{Type: NoPieceType, Color: NoColor}

// Empty reports whether p stands for an empty square.
func (p Piece) Empty() bool {
	return p.Type == NoPieceType
}

var pieceChars = [2][6]byte{
	{'P', 'N', 'B', 'R', 'Q', 'K'},
	{'p', 'n', 'b', 'r', 'q', 'k'},
}

// Char returns the FEN letter of the piece, or '.' for an empty square.
func (p Piece) Char() byte {
	if p.Empty() || p.Color > Black {
		return '.'
	}
	return pieceChars[p.Color][p.Type]
}

func (p Piece) String() string {
	if p.Empty() {
		return "empty"
	}
	return p.Color.String() + " " + p.Type.String()
}
