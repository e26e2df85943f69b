// shellchess-bench runs the engine over a suite of positions.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"

	"github.com/hailam/shellchess/internal/bench"
	"github.com/hailam/shellchess/internal/config"
)

func main() {
	cfg := config.New()
	if _, err := cfg.Load("shellchess-bench", os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	if err := cfg.Logging(); err != nil {
		log.Fatal().Err(err).Msg("setting up logging")
	}

	suite := bench.DefaultSuite()
	if path := cfg.GetString(config.KeySuite); path != "" {
		var err error
		if suite, err = bench.LoadSuiteFile(path); err != nil {
			log.Fatal().Err(err).Msg("loading suite")
		}
	}

	stop, err := cfg.StartProfile()
	if err != nil {
		log.Fatal().Err(err).Msg("profiling")
	}
	defer stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	rep, err := bench.Run(ctx, suite, []byte("shellchess"))
	if err != nil {
		log.Fatal().Err(err).Msg("bench")
	}
	if err := rep.Write(os.Stdout); err != nil {
		log.Error().Err(err).Msg("writing report")
	}
	if len(rep.Failed()) > 0 {
		stop()
		os.Exit(1)
	}
}
