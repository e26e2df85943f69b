// Package engine selects a move for the side to move of a chess position.
//
// The engine owns no chess rules. It works on any rules.Position, searching
// to a fixed depth given by the difficulty tier with minimax and alpha-beta
// pruning, and scoring leaves with a material and piece-square evaluation.
package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/hailam/shellchess/internal/rules"
)

// SearchInfo contains information about a completed selection.
type SearchInfo struct {
	Difficulty Difficulty
	Depth      int
	Score      int // White's perspective; 0 for a random pick
	Nodes      uint64
	Time       time.Duration
	Random     bool // move was drawn at random instead of searched
}

// Rand is the source of randomness for the Easy tier.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

type cryptoRand struct{}

func (cryptoRand) Float64() float64 { return frand.Float64() }
func (cryptoRand) Intn(n int) int   { return frand.Intn(n) }

// Engine is the chess AI engine. An Engine is not safe for concurrent use;
// give each goroutine its own.
type Engine[M comparable] struct {
	searcher Searcher[M]
	rand     Rand

	// VerifyRestore checks after each selection that the position is
	// unchanged, for positions that implement rules.Fingerprinter.
	VerifyRestore bool

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine that draws Easy-tier randomness from frand.
func NewEngine[M comparable]() *Engine[M] {
	return &Engine[M]{rand: cryptoRand{}}
}

// SetRand replaces the randomness source.
func (e *Engine[M]) SetRand(r Rand) {
	e.rand = r
}

// Nodes returns the node count of the last search.
func (e *Engine[M]) Nodes() uint64 {
	return e.searcher.Nodes()
}

// SelectMove picks a move for the side to move in pos. It returns false when
// the side to move has no legal moves. pos is searched in place and is
// identical to its input state when SelectMove returns.
func (e *Engine[M]) SelectMove(pos rules.Position[M], d Difficulty) (M, bool) {
	var none M

	if !d.Valid() {
		log.Warn().Int("difficulty", int(d)).Str("using", d.Clamp().String()).Msg("difficulty out of range")
		d = d.Clamp()
	}

	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return none, false
	}

	startTime := time.Now()
	e.searcher.Reset()

	if d == Easy && e.rand.Float64() > RandomMoveThreshold {
		move := moves[e.rand.Intn(len(moves))]
		e.report(SearchInfo{Difficulty: d, Depth: 0, Time: time.Since(startTime), Random: true})
		return move, true
	}

	var fp uint64
	fingerprinter, canVerify := pos.(rules.Fingerprinter)
	if e.VerifyRestore && canVerify {
		fp = fingerprinter.Fingerprint()
	}

	depth := d.Depth()
	maximizing := pos.SideToMove() == rules.White
	bestMove, found := none, false
	bestScore := Infinity
	if maximizing {
		bestScore = -Infinity
	}

	for _, m := range OrderMoves(pos, moves) {
		pos.Apply(m)
		score := e.searcher.Search(pos, depth-1, -Infinity, Infinity, pos.SideToMove() == rules.White)
		pos.Undo()

		if (maximizing && score > bestScore) || (!maximizing && score < bestScore) {
			bestScore = score
			bestMove = m
			found = true
		}
	}
	if !found {
		bestMove = moves[0]
	}

	if e.VerifyRestore && canVerify && fingerprinter.Fingerprint() != fp {
		log.Error().Str("difficulty", d.String()).Msg("position changed during search")
	}

	info := SearchInfo{
		Difficulty: d,
		Depth:      depth,
		Score:      bestScore,
		Nodes:      e.searcher.Nodes(),
		Time:       time.Since(startTime),
	}
	log.Debug().
		Str("difficulty", d.String()).
		Int("depth", depth).
		Int("score", bestScore).
		Uint64("nodes", info.Nodes).
		Dur("elapsed", info.Time).
		Msg("move selected")
	e.report(info)

	return bestMove, true
}

func (e *Engine[M]) report(info SearchInfo) {
	if e.OnInfo != nil {
		e.OnInfo(info)
	}
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	switch {
	case score >= MateScore:
		return "White mates"
	case score <= -MateScore:
		return "Black mates"
	}

	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	return fmt.Sprintf("%s%d.%02d", sign, score/100, score%100)
}
