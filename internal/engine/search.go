package engine

import (
	"github.com/hailam/shellchess/internal/rules"
)

// Search constants
const (
	// Infinity bounds the root alpha-beta window.
	Infinity = 1 << 30
	// MateScore is the magnitude of a checkmate score.
	MateScore = 100000
	// BlackMated is the score of a position where Black has been mated.
	BlackMated = MateScore
	// WhiteMated is the score of a position where White has been mated.
	WhiteMated = -MateScore
)

// Searcher runs fixed-depth minimax with alpha-beta pruning over a rules
// position and counts the nodes it visits.
type Searcher[M comparable] struct {
	nodes uint64
}

// Nodes returns the number of positions visited since the last Reset.
func (s *Searcher[M]) Nodes() uint64 {
	return s.nodes
}

// Reset clears the node counter.
func (s *Searcher[M]) Reset() {
	s.nodes = 0
}

// Search returns the minimax value of pos to the given depth. Leaves are
// scored as the negated static evaluation. With no legal moves the value is
// a mate score against the side to move when it is in check, otherwise 0.
//
// Every move applied to pos is undone before Search returns, including on a
// cutoff. A panic from the rules position propagates unchanged.
func (s *Searcher[M]) Search(pos rules.Position[M], depth, alpha, beta int, maximizing bool) int {
	s.nodes++

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

	if maximizing {
		best := -Infinity
		for _, m := range moves {
			pos.Apply(m)
			score := s.Search(pos, depth-1, alpha, beta, false)
			pos.Undo()
			best = max(best, score)
			alpha = max(alpha, score)
			if beta <= alpha {
				break
			}
		}
		return best
	}

	best := Infinity
	for _, m := range moves {
		pos.Apply(m)
		score := s.Search(pos, depth-1, alpha, beta, true)
		pos.Undo()
		best = min(best, score)
		beta = min(beta, score)
		if beta <= alpha {
			break
		}
	}
	return best
}

// Search is a convenience wrapper for a one-off search without node counts.
func Search[M comparable](pos rules.Position[M], depth, alpha, beta int, maximizing bool) int {
	var s Searcher[M]
	return s.Search(pos, depth, alpha, beta, maximizing)
}
