// shellchess-uci speaks the UCI protocol on stdin/stdout.
package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/hailam/shellchess/internal/config"
	"github.com/hailam/shellchess/internal/engine"
	"github.com/hailam/shellchess/internal/rules/dragon"
	"github.com/hailam/shellchess/internal/uci"
)

func main() {
	cfg := config.New()
	if _, err := cfg.Load("shellchess-uci", os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	if err := cfg.Logging(); err != nil {
		log.Fatal().Err(err).Msg("setting up logging")
	}
	d, err := cfg.Difficulty()
	if err != nil {
		log.Fatal().Err(err).Msg("bad difficulty")
	}

	stop, err := cfg.StartProfile()
	if err != nil {
		log.Fatal().Err(err).Msg("profiling")
	}
	defer stop()

	eng := engine.NewEngine[dragon.Move]()
	eng.VerifyRestore = cfg.GetBool(config.KeyVerifyRestore)

	protocol := uci.New(eng, d, os.Stdin, os.Stdout)
	if err := protocol.Run(); err != nil {
		log.Error().Err(err).Msg("reading commands")
	}
}
