package bench

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
	"lukechampine.com/frand"

	"github.com/hailam/shellchess/internal/engine"
	"github.com/hailam/shellchess/internal/rules/dragon"
)

// NoMove is reported for positions without a legal move.
const NoMove = "0000"

// Result is the outcome of one suite position.
type Result struct {
	Name       string
	Difficulty engine.Difficulty
	Move       string
	Score      int
	Nodes      uint64
	Time       time.Duration
	Random     bool
	// Checked is set when the position had expectations; Passed then says
	// whether the move met them.
	Checked bool
	Passed  bool
}

// Run searches every position of s in order. seed fixes the Easy tier's
// random choices so runs are repeatable.
func Run(ctx context.Context, s Suite, seed []byte) (*Report, error) {
	if len(s) == 0 {
		return nil, ErrEmptySuite
	}
	eng := engine.NewEngine[dragon.Move]()
	eng.SetRand(frand.NewCustom(padSeed(seed), 1024, 12))

	var last engine.SearchInfo
	eng.OnInfo = func(info engine.SearchInfo) { last = info }

	rep := &Report{}
	start := time.Now()
	for _, p := range s {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pos, err := dragon.FromFEN(p.FEN)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name, err)
		}
		d := engine.Difficulty(p.Difficulty)
		if d == 0 {
			d = engine.Medium
		}

		last = engine.SearchInfo{}
		began := time.Now()
		m, ok := eng.SelectMove(pos, d)
		res := Result{
			Name:       p.Name,
			Difficulty: d.Clamp(),
			Move:       NoMove,
			Score:      last.Score,
			Nodes:      last.Nodes,
			Time:       time.Since(began),
			Random:     last.Random,
		}
		if ok {
			res.Move = dragon.MoveString(m)
		}
		if len(p.Expect) > 0 {
			res.Checked = true
			res.Passed = slices.Contains(p.Expect, res.Move)
		}
		rep.Results = append(rep.Results, res)
	}
	rep.Elapsed = time.Since(start)
	return rep, nil
}

// padSeed stretches seed to the 32 bytes frand wants.
func padSeed(seed []byte) []byte {
	out := make([]byte, 32)
	copy(out, seed)
	return out
}

// Report collects the results of a suite run.
type Report struct {
	Results []Result
	Elapsed time.Duration
}

// Failed returns the results whose move missed their expectations.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Checked && !res.Passed {
			out = append(out, res)
		}
	}
	return out
}

// TotalNodes sums the nodes of all searches.
func (r *Report) TotalNodes() uint64 {
	var n uint64
	for _, res := range r.Results {
		n += res.Nodes
	}
	return n
}

// NodeStats returns the mean and standard deviation of nodes over the
// searched (not random, not terminal) positions.
func (r *Report) NodeStats() (mean, stddev float64) {
	var nodes []float64
	for _, res := range r.Results {
		if res.Random || res.Move == NoMove {
			continue
		}
		nodes = append(nodes, float64(res.Nodes))
	}
	switch len(nodes) {
	case 0:
		return 0, 0
	case 1:
		return nodes[0], 0
	}
	return stat.MeanStdDev(nodes, nil)
}

// Write prints one line per position and a summary.
func (r *Report) Write(w io.Writer) error {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "%-26s%-13s%-7s%-9s%12s%10s  %s\n", "Position", "Difficulty", "Move", "Score", "Nodes", "Time", "Check")
	for _, res := range r.Results {
		check := ""
		if res.Checked {
			check = "ok"
			if !res.Passed {
				check = "FAIL"
			}
		}
		if res.Random {
			check = "random"
		}
		p.Fprintf(w, "%-26s%-13s%-7s%-9d%12d%10v  %s\n",
			res.Name, res.Difficulty, res.Move, res.Score, res.Nodes, res.Time.Round(time.Microsecond), check)
	}
	mean, stddev := r.NodeStats()
	total := r.TotalNodes()
	p.Fprintf(w, "\nTotal nodes: %d in %v", total, r.Elapsed.Round(time.Millisecond))
	if r.Elapsed > 0 {
		p.Fprintf(w, " (%d nps)", int64(float64(total)/r.Elapsed.Seconds()))
	}
	p.Fprintf(w, "\nNodes per search: mean %.1f, stddev %.1f\n", mean, stddev)
	_, err := p.Fprintf(w, "Failed: %d\n", len(r.Failed()))
	return err
}
