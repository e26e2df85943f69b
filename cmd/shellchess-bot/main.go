// shellchess-bot answers move requests over NATS.
//
//	shellchess-bot              serve moves on the configured subject
//	shellchess-bot ask [FEN]    ask a running bot for a move
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/shellchess/internal/bot"
	"github.com/hailam/shellchess/internal/config"
)

func main() {
	cfg := config.New()
	args, err := cfg.Load("shellchess-bot", os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	if err := cfg.Logging(); err != nil {
		log.Fatal().Err(err).Msg("setting up logging")
	}
	log.Info().Interface("config", cfg.SanitizedSettings()).Msg("starting bot")

	d, err := cfg.Difficulty()
	if err != nil {
		log.Fatal().Err(err).Msg("bad difficulty")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	nc, err := bot.Connect(ctx, cfg.GetString(config.KeyNatsURL), 10)
	if err != nil {
		log.Fatal().Err(err).Msg("nats")
	}
	defer nc.Close()
	subject := cfg.GetString(config.KeyNatsSubject)

	if len(args) > 0 && args[0] == "ask" {
		client := bot.NewClient(nc, subject, 30*time.Second)
		resp, err := client.RequestMove(bot.Request{FEN: strings.Join(args[1:], " "), Difficulty: int(d)})
		if err != nil {
			log.Fatal().Err(err).Msg("request failed")
		}
		if resp.Move == "" {
			fmt.Println("no legal moves")
			return
		}
		fmt.Printf("%s (%s)\n", resp.SAN, resp.Move)
		return
	}

	if err := bot.Serve(ctx, nc, subject, bot.New(d)); err != nil {
		log.Fatal().Err(err).Msg("serving")
	}
}
