package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/shellchess/internal/rules"
	"github.com/hailam/shellchess/internal/rules/dragon"
	"github.com/hailam/shellchess/internal/rules/notnil"
)

const (
	kiwipete   = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	middlegame = "r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4"
	whiteMates = "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"
	blackMates = "r5k1/8/8/8/8/8/5PPP/6K1 b - - 0 1"
	blackMated = "R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1"
	stalemate  = "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"
	onlyMove   = "7k/8/8/8/p7/8/P4q2/7K w - - 0 1"
)

func loadDragon(t *testing.T, fen string) *dragon.Position {
	t.Helper()
	pos, err := dragon.FromFEN(fen)
	require.NoError(t, err)
	return pos
}

// scriptedRand returns fixed draws and records how often Intn was used.
type scriptedRand struct {
	f        float64
	intnCall int
}

func (r *scriptedRand) Float64() float64 { return r.f }
func (r *scriptedRand) Intn(n int) int {
	r.intnCall++
	return n - 1
}

// countingRand forwards to the default source and counts random picks.
type countingRand struct {
	cryptoRand
	picks int
}

func (r *countingRand) Intn(n int) int {
	r.picks++
	return r.cryptoRand.Intn(n)
}

// minimax is the unpruned reference for Search.
func minimax[M comparable](pos rules.Position[M], depth int, maximizing bool) int {
	if depth == 0 {
		return -Evaluate(pos)
	}
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		if pos.InCheck() {
			if maximizing {
				return -MateScore
			}
			return MateScore
		}
		return 0
	}
	best := Infinity
	if maximizing {
		best = -Infinity
	}
	for _, m := range moves {
		pos.Apply(m)
		v := minimax(pos, depth-1, !maximizing)
		pos.Undo()
		if maximizing {
			best = max(best, v)
		} else {
			best = min(best, v)
		}
	}
	return best
}

func mirrorFEN(fen string) string {
	fields := strings.Fields(fen)
	ranks := strings.Split(fields[0], "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	swap := func(s string) string {
		return strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z':
				return r - 'a' + 'A'
			case r >= 'A' && r <= 'Z':
				return r - 'A' + 'a'
			}
			return r
		}, s)
	}
	fields[0] = swap(strings.Join(ranks, "/"))
	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}
	if fields[2] != "-" {
		c := swap(fields[2])
		var upper, lower string
		for _, r := range c {
			if r >= 'A' && r <= 'Z' {
				upper += string(r)
			} else {
				lower += string(r)
			}
		}
		fields[2] = upper + lower
	}
	if fields[3] != "-" {
		rank := fields[3][1]
		fields[3] = fields[3][:1] + string('1'+'8'-rank)
	}
	return strings.Join(fields, " ")
}

func TestPieceScore(t *testing.T) {
	sq := func(s string) rules.Square {
		v, err := rules.ParseSquare(s)
		require.NoError(t, err)
		return v
	}
	tests := []struct {
		piece rules.Piece
		sq    string
		want  int
	}{
		{rules.Piece{Type: rules.Pawn, Color: rules.White}, "e2", 150},
		{rules.Piece{Type: rules.Pawn, Color: rules.Black}, "e7", 150},
		{rules.Piece{Type: rules.Pawn, Color: rules.White}, "d4", 125},
		{rules.Piece{Type: rules.Knight, Color: rules.White}, "b1", 280},
		{rules.Piece{Type: rules.Knight, Color: rules.Black}, "g8", 280},
		{rules.Piece{Type: rules.Bishop, Color: rules.White}, "c1", 330},
		{rules.Piece{Type: rules.Rook, Color: rules.Black}, "a8", 500},
		{rules.Piece{Type: rules.Queen, Color: rules.White}, "d4", 900},
		{rules.Piece{Type: rules.King, Color: rules.White}, "g1", 19960},
		{rules.NoPiece, "e4", 0},
	}
	for _, tt := range tests {
		t.Run(tt.piece.String()+"@"+tt.sq, func(t *testing.T) {
			assert.Equal(t, tt.want, PieceScore(tt.piece, sq(tt.sq)))
		})
	}
}

func TestEvaluate(t *testing.T) {
	assert.Equal(t, 0, Evaluate(dragon.New()), "start position is symmetric")
	assert.Equal(t, 900, Evaluate(loadDragon(t, "4k3/8/8/8/8/8/8/3QK3 w - - 0 1")))
	assert.Equal(t, -900, Evaluate(loadDragon(t, "3qk3/8/8/8/8/8/8/4K3 w - - 0 1")))
	// Side to move does not change the score.
	assert.Equal(t,
		Evaluate(loadDragon(t, "4k3/8/8/8/8/8/8/3QK3 w - - 0 1")),
		Evaluate(loadDragon(t, "4k3/8/8/8/8/8/8/3QK3 b - - 0 1")))
}

func TestEvaluateMirrorSymmetry(t *testing.T) {
	for _, fen := range []string{rules.StartFEN, kiwipete, middlegame, whiteMates, onlyMove} {
		t.Run(fen, func(t *testing.T) {
			pos := loadDragon(t, fen)
			mirrored := loadDragon(t, mirrorFEN(fen))
			assert.Equal(t, Evaluate(pos), -Evaluate(mirrored))
		})
	}
}

func TestSearchMatchesMinimax(t *testing.T) {
	for _, fen := range []string{rules.StartFEN, kiwipete, middlegame, whiteMates} {
		for depth := 1; depth <= 3; depth++ {
			pos := loadDragon(t, fen)
			maximizing := pos.SideToMove() == rules.White
			want := minimax[dragon.Move](pos, depth, maximizing)
			got := Search[dragon.Move](pos, depth, -Infinity, Infinity, maximizing)
			assert.Equal(t, want, got, "%s depth %d", fen, depth)
		}
	}
}

func TestSearchMatchesMinimaxNotnil(t *testing.T) {
	pos, err := notnil.FromFEN(middlegame)
	require.NoError(t, err)
	want := minimax[notnil.Move](pos, 2, true)
	got := Search[notnil.Move](pos, 2, -Infinity, Infinity, true)
	assert.Equal(t, want, got)
}

func TestSearchIsStable(t *testing.T) {
	pos := loadDragon(t, kiwipete)
	fen := pos.FEN()
	fp := pos.Fingerprint()

	var s Searcher[dragon.Move]
	first := s.Search(pos, 3, -Infinity, Infinity, true)
	nodes := s.Nodes()
	assert.Equal(t, fen, pos.FEN())
	assert.Equal(t, fp, pos.Fingerprint())

	s.Reset()
	second := s.Search(pos, 3, -Infinity, Infinity, true)
	assert.Equal(t, first, second)
	assert.Equal(t, nodes, s.Nodes())
	assert.Equal(t, fen, pos.FEN())
	assert.Zero(t, pos.Depth())
}

func TestSearchPrunes(t *testing.T) {
	pos := loadDragon(t, kiwipete)
	var s Searcher[dragon.Move]
	s.Search(pos, 3, -Infinity, Infinity, true)
	var full uint64
	for d := 0; d <= 3; d++ {
		full += rules.Perft[dragon.Move](pos, d)
	}
	assert.Less(t, s.Nodes(), full)
}

func TestSearchTerminal(t *testing.T) {
	mated := loadDragon(t, blackMated)
	assert.Equal(t, MateScore, Search[dragon.Move](mated, 2, -Infinity, Infinity, false))
	assert.Equal(t, -MateScore, Search[dragon.Move](mated, 2, -Infinity, Infinity, true))
	assert.Equal(t, -Evaluate(mated), Search[dragon.Move](mated, 0, -Infinity, Infinity, false),
		"depth 0 scores the leaf before looking for moves")

	stale := loadDragon(t, stalemate)
	assert.Equal(t, 0, Search[dragon.Move](stale, 3, -Infinity, Infinity, false))
}

func TestOrderMoves(t *testing.T) {
	pos := loadDragon(t, kiwipete)
	moves := pos.LegalMoves()
	ordered := OrderMoves[dragon.Move](pos, moves)
	require.Len(t, ordered, len(moves))
	assert.ElementsMatch(t, moves, ordered)

	var wantCaptures, wantQuiets []dragon.Move
	for _, m := range moves {
		if pos.IsCapture(m) {
			wantCaptures = append(wantCaptures, m)
		} else {
			wantQuiets = append(wantQuiets, m)
		}
	}
	require.NotEmpty(t, wantCaptures)
	assert.Equal(t, wantCaptures, ordered[:len(wantCaptures)])
	assert.Equal(t, wantQuiets, ordered[len(wantCaptures):])

	assert.Empty(t, OrderMoves[dragon.Move](pos, nil))
}

func TestSelectMoveNoLegalMoves(t *testing.T) {
	eng := NewEngine[dragon.Move]()
	for _, fen := range []string{blackMated, stalemate} {
		_, ok := eng.SelectMove(loadDragon(t, fen), Hard)
		assert.False(t, ok, fen)
	}
}

func TestSelectMoveSingleLegalMove(t *testing.T) {
	pos := loadDragon(t, onlyMove)
	moves := pos.LegalMoves()
	require.Len(t, moves, 1)

	for _, draw := range []float64{0.0, 0.99} {
		for d := Easy; d <= Grandmaster; d++ {
			eng := NewEngine[dragon.Move]()
			eng.SetRand(&scriptedRand{f: draw})
			m, ok := eng.SelectMove(pos, d)
			require.True(t, ok)
			assert.Equal(t, moves[0], m, "%s draw %.2f", d, draw)
		}
	}
}

func TestSelectMoveEasyRandomBranch(t *testing.T) {
	pos := loadDragon(t, middlegame)
	moves := pos.LegalMoves()

	r := &scriptedRand{f: 0.5}
	eng := NewEngine[dragon.Move]()
	eng.SetRand(r)
	var info SearchInfo
	eng.OnInfo = func(i SearchInfo) { info = i }

	m, ok := eng.SelectMove(pos, Easy)
	require.True(t, ok)
	assert.Equal(t, moves[len(moves)-1], m)
	assert.Equal(t, 1, r.intnCall)
	assert.True(t, info.Random)

	r = &scriptedRand{f: RandomMoveThreshold}
	eng.SetRand(r)
	_, ok = eng.SelectMove(pos, Easy)
	require.True(t, ok)
	assert.Zero(t, r.intnCall, "a draw at the threshold searches")
	assert.False(t, info.Random)
	assert.Equal(t, 1, info.Depth)
}

func TestSelectMoveEasyFrequency(t *testing.T) {
	pos := loadDragon(t, "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	r := &countingRand{}
	eng := NewEngine[dragon.Move]()
	eng.SetRand(r)

	const trials = 2000
	for i := 0; i < trials; i++ {
		_, ok := eng.SelectMove(pos, Easy)
		require.True(t, ok)
	}
	freq := float64(r.picks) / trials
	assert.InDelta(t, 0.8, freq, 0.05)
	t.Logf("random picks: %.3f", freq)
}

func TestSelectMoveDepthOneFollowsLeafSign(t *testing.T) {
	// A root maximizer over negated leaf evaluations picks the move that
	// leaves White's static score lowest; ties go to the earliest move.
	pos := loadDragon(t, rules.StartFEN)
	want, best := dragon.Move(0), Infinity
	for _, m := range OrderMoves[dragon.Move](pos, pos.LegalMoves()) {
		pos.Apply(m)
		score := Evaluate(pos)
		pos.Undo()
		if score < best {
			best, want = score, m
		}
	}

	eng := NewEngine[dragon.Move]()
	eng.SetRand(&scriptedRand{f: 0})
	got, ok := eng.SelectMove(pos, Easy)
	require.True(t, ok)
	assert.Equal(t, dragon.MoveString(want), dragon.MoveString(got))
}

func TestSelectMoveFindsMate(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		mate string
	}{
		{"white back rank", whiteMates, "a1a8"},
		{"black back rank", blackMates, "a8a1"},
	}
	for _, tt := range tests {
		for d := Medium; d <= Grandmaster; d++ {
			t.Run(tt.name+"/"+d.String(), func(t *testing.T) {
				pos := loadDragon(t, tt.fen)
				fen := pos.FEN()
				eng := NewEngine[dragon.Move]()
				eng.VerifyRestore = true
				var info SearchInfo
				eng.OnInfo = func(i SearchInfo) { info = i }

				m, ok := eng.SelectMove(pos, d)
				require.True(t, ok)
				assert.Equal(t, tt.mate, dragon.MoveString(m))
				assert.Equal(t, fen, pos.FEN())
				assert.Equal(t, d.Depth(), info.Depth)
				assert.Greater(t, info.Nodes, uint64(0))
				if pos.SideToMove() == rules.White {
					assert.Equal(t, BlackMated, info.Score)
				} else {
					assert.Equal(t, WhiteMated, info.Score)
				}
			})
		}
	}
}

func TestSelectMoveNotnilBackend(t *testing.T) {
	pos, err := notnil.FromFEN(whiteMates)
	require.NoError(t, err)
	eng := NewEngine[notnil.Move]()
	m, ok := eng.SelectMove(pos, Hard)
	require.True(t, ok)
	assert.Equal(t, "a1a8", m.String())
	assert.Zero(t, pos.Depth())
}

func TestSelectMoveClampsDifficulty(t *testing.T) {
	pos := loadDragon(t, whiteMates)
	eng := NewEngine[dragon.Move]()
	var info SearchInfo
	eng.OnInfo = func(i SearchInfo) { info = i }

	_, ok := eng.SelectMove(pos, Difficulty(9))
	require.True(t, ok)
	assert.Equal(t, Grandmaster, info.Difficulty)
	assert.Equal(t, 4, info.Depth)
}

func TestDifficulty(t *testing.T) {
	for _, s := range []string{"1", "easy", " Easy "} {
		d, err := ParseDifficulty(s)
		require.NoError(t, err, s)
		assert.Equal(t, Easy, d)
	}
	d, err := ParseDifficulty("grandmaster")
	require.NoError(t, err)
	assert.Equal(t, 4, d.Depth())

	_, err = ParseDifficulty("5")
	assert.Error(t, err)
	_, err = ParseDifficulty("impossible")
	assert.Error(t, err)

	assert.Equal(t, Easy, Difficulty(0).Clamp())
	assert.Equal(t, Grandmaster, Difficulty(7).Clamp())
	assert.Equal(t, Hard, Hard.Clamp())
	assert.Equal(t, "medium", Medium.String())
}

func TestScoreToString(t *testing.T) {
	assert.Equal(t, "0.00", ScoreToString(0))
	assert.Equal(t, "1.05", ScoreToString(105))
	assert.Equal(t, "-0.50", ScoreToString(-50))
	assert.Equal(t, "White mates", ScoreToString(BlackMated))
	assert.Equal(t, "Black mates", ScoreToString(WhiteMated))
}
