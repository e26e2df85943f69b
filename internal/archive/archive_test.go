package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestSaveAndRecent(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	a, err := Open(ctx, filepath.Join(t.TempDir(), "games.sqlite"))
	is.NoErr(err)
	defer a.Close()

	base := time.Unix(1_700_000_000, 0)
	games := []Record{
		{PlayedAt: base, White: "you", Black: "shellchess", Result: "1-0", Reason: "checkmate", Difficulty: 1, Plies: 41, Duration: 3 * time.Minute, PGN: "1. e4 *"},
		{PlayedAt: base.Add(time.Hour), White: "shellchess", Black: "you", Result: "1-0", Reason: "checkmate", Difficulty: 3, Plies: 30, Duration: 2 * time.Minute, PGN: "1. d4 *"},
		{PlayedAt: base.Add(2 * time.Hour), White: "you", Black: "shellchess", Result: "1/2-1/2", Reason: "stalemate", Difficulty: 2, Plies: 80, Duration: 5 * time.Minute, PGN: "1. c4 *"},
	}
	for _, g := range games {
		id, err := a.Save(ctx, g)
		is.NoErr(err)
		is.True(id > 0)
	}

	n, err := a.Count(ctx)
	is.NoErr(err)
	is.Equal(n, 3)

	recent, err := a.Recent(ctx, 2)
	is.NoErr(err)
	is.Equal(len(recent), 2)
	is.Equal(recent[0].Result, "1/2-1/2") // newest first
	is.Equal(recent[0].Reason, "stalemate")
	is.Equal(recent[0].Duration, 5*time.Minute)
	is.Equal(recent[0].PlayedAt.Unix(), games[2].PlayedAt.Unix())
	is.Equal(recent[1].Difficulty, 3)

	results, err := a.Results(ctx)
	is.NoErr(err)
	is.Equal(results["1-0"], 2)
	is.Equal(results["1/2-1/2"], 1)
}

func TestInMemory(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	a, err := Open(ctx, ":memory:")
	is.NoErr(err)
	defer a.Close()

	_, err = a.Save(ctx, Record{White: "a", Black: "b", Result: "0-1", Reason: "resignation"})
	is.NoErr(err)
	recent, err := a.Recent(ctx, 10)
	is.NoErr(err)
	is.Equal(len(recent), 1)
	is.True(!recent[0].PlayedAt.IsZero())
}
