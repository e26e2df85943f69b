package notnil

import (
	"testing"

	"github.com/matryer/is"
	"github.com/notnil/chess"

	"github.com/hailam/shellchess/internal/rules"
)

func TestPerftMatchesKnownCounts(t *testing.T) {
	is := is.New(t)
	pos, err := FromFEN(rules.StartFEN)
	is.NoErr(err)
	before := pos.Fingerprint()
	is.Equal(rules.Perft[Move](pos, 1), uint64(20))
	is.Equal(rules.Perft[Move](pos, 2), uint64(400))
	is.Equal(pos.Fingerprint(), before)
	is.Equal(pos.Depth(), 0)
}

func TestPieceAtAndSide(t *testing.T) {
	is := is.New(t)
	pos := FromGame(chess.NewGame())
	e1, _ := rules.ParseSquare("e1")
	h8, _ := rules.ParseSquare("h8")
	e4, _ := rules.ParseSquare("e4")
	is.Equal(pos.PieceAt(e1), rules.Piece{Type: rules.King, Color: rules.White})
	is.Equal(pos.PieceAt(h8), rules.Piece{Type: rules.Rook, Color: rules.Black})
	is.Equal(pos.PieceAt(e4), rules.NoPiece)
	is.Equal(pos.SideToMove(), rules.White)
	is.True(!pos.InCheck())
}

func TestApplyUndoKeepsRoot(t *testing.T) {
	is := is.New(t)
	pos := FromGame(chess.NewGame())
	fen := pos.FEN()
	m, err := FindMove(pos.Current(), "e4")
	is.NoErr(err)
	pos.Apply(m)
	is.Equal(pos.SideToMove(), rules.Black)
	is.Equal(pos.Depth(), 1)
	pos.Undo()
	is.Equal(pos.FEN(), fen)

	defer func() {
		is.True(recover() != nil) // popping the root panics
	}()
	pos.Undo()
}

func TestCaptureAndCheckTags(t *testing.T) {
	is := is.New(t)
	pos, err := FromFEN("4k3/8/8/3pP3/8/2N5/8/4K3 w - d6 0 2")
	is.NoErr(err)
	ep, err := FindMove(pos.Current(), "e5d6")
	is.NoErr(err)
	is.True(pos.IsCapture(ep))
	push, err := FindMove(pos.Current(), "e6")
	is.NoErr(err)
	is.True(!pos.IsCapture(push))

	// Rook move that gives check, then InCheck reads the tag.
	pos, err = FromFEN("4k3/8/8/8/8/8/8/R3K3 w Q - 0 1")
	is.NoErr(err)
	check, err := FindMove(pos.Current(), "Ra8+")
	is.NoErr(err)
	pos.Apply(check)
	is.True(pos.InCheck())
	pos.Undo()
	is.True(!pos.InCheck())
}

func TestInCheckFromFENRoot(t *testing.T) {
	is := is.New(t)
	pos, err := FromFEN("4k3/8/8/8/8/8/4r3/4K3 w - - 0 1")
	is.NoErr(err)
	is.True(pos.InCheck())

	mated, err := FromFEN("R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1")
	is.NoErr(err)
	is.Equal(len(mated.LegalMoves()), 0)
	is.True(mated.InCheck())

	stalemate, err := FromFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	is.NoErr(err)
	is.Equal(len(stalemate.LegalMoves()), 0)
	is.True(!stalemate.InCheck())
}

func TestFindMove(t *testing.T) {
	is := is.New(t)
	pos := chess.NewGame().Position()
	for _, text := range []string{"Nf3", "g1f3"} {
		m, err := FindMove(pos, text)
		is.NoErr(err)
		is.Equal(m.String(), "g1f3")
	}
	_, err := FindMove(pos, "Ke2")
	is.True(err != nil)
	is.Equal(SAN(pos, pos.ValidMoves()[0]) != "", true)
}
