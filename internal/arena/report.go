package arena

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/hailam/shellchess/internal/engine"
	"github.com/hailam/shellchess/internal/rules"
)

// Report summarizes a match from White's side.
type Report struct {
	White, Black engine.Difficulty
	Games        []GameReport

	WhiteWins int
	BlackWins int
	Draws     int

	MeanPlies   float64
	StdDevPlies float64
	Elapsed     time.Duration
}

func newReport(white, black engine.Difficulty, games []GameReport) *Report {
	r := &Report{White: white, Black: black, Games: games}
	plies := make([]float64, len(games))
	for i, g := range games {
		switch {
		case g.Result.Won(rules.White):
			r.WhiteWins++
		case g.Result.Draw():
			r.Draws++
		default:
			r.BlackWins++
		}
		plies[i] = float64(g.Result.Plies)
	}
	if len(plies) > 1 {
		r.MeanPlies, r.StdDevPlies = stat.MeanStdDev(plies, nil)
	} else if len(plies) == 1 {
		r.MeanPlies = plies[0]
	}
	return r
}

// Score returns White's points per game: a win is 1, a draw 0.5.
func (r *Report) Score() float64 {
	if len(r.Games) == 0 {
		return 0
	}
	return (float64(r.WhiteWins) + 0.5*float64(r.Draws)) / float64(len(r.Games))
}

// Elo estimates White's rating advantage and its margin at the given
// confidence (percent). Both are infinite for a shutout.
func (r *Report) Elo(confidence float64) (diff, margin float64) {
	n := float64(len(r.Games))
	if n == 0 {
		return 0, 0
	}
	score := r.Score()
	diff = eloFromScore(score)

	w, d := float64(r.WhiteWins)/n, float64(r.Draws)/n
	l := 1 - w - d
	variance := w*math.Pow(1-score, 2) + d*math.Pow(0.5-score, 2) + l*math.Pow(score, 2)
	z := zVal(confidence)
	hi := eloFromScore(score + z*math.Sqrt(variance/n))
	lo := eloFromScore(score - z*math.Sqrt(variance/n))
	return diff, (hi - lo) / 2
}

func eloFromScore(score float64) float64 {
	return 400 * math.Log10(score/(1-score))
}

// zVal returns the two-tailed Z-value for a confidence interval in percent.
func zVal(confidenceInterval float64) float64 {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: 1,
	}
	area := (1 + (confidenceInterval / 100)) / 2
	return dist.Quantile(area)
}

// Write prints the summary and a histogram of game lengths.
func (r *Report) Write(w io.Writer) error {
	fmt.Fprintf(w, "%s (White) vs %s (Black), %d games in %v\n",
		r.White, r.Black, len(r.Games), r.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "%-12s%-12s%-12s%-10s\n", "White wins", "Black wins", "Draws", "Score")
	fmt.Fprintf(w, "%-12d%-12d%-12d%-10.3f\n", r.WhiteWins, r.BlackWins, r.Draws, r.Score())
	diff, margin := r.Elo(95)
	if !math.IsInf(diff, 0) && !math.IsNaN(margin) {
		fmt.Fprintf(w, "Elo difference: %.0f +/- %.0f (95%%)\n", diff, margin)
	}
	fmt.Fprintf(w, "Plies: mean %.1f, stddev %.1f\n", r.MeanPlies, r.StdDevPlies)

	plies := make([]float64, len(r.Games))
	for i, g := range r.Games {
		plies[i] = float64(g.Result.Plies)
	}
	// a histogram needs a spread of lengths
	if len(plies) < 2 || floats.Min(plies) == floats.Max(plies) {
		return nil
	}
	fmt.Fprintln(w, "Game length distribution:")
	return histogram.Fprint(w, histogram.Hist(10, plies), histogram.Linear(40))
}
