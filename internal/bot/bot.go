// Package bot serves engine moves over NATS request/reply.
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/hailam/shellchess/internal/engine"
	"github.com/hailam/shellchess/internal/rules"
	"github.com/hailam/shellchess/internal/rules/notnil"
)

// Request asks for a move in the position FEN. An empty FEN means the
// standard start position and a zero Difficulty the bot's default.
type Request struct {
	FEN        string `json:"fen"`
	Difficulty int    `json:"difficulty"`
}

// Response carries the chosen move, or an error. Move is empty when the
// position has no legal moves.
type Response struct {
	Move  string `json:"move"`
	SAN   string `json:"san,omitempty"`
	Error string `json:"error,omitempty"`
}

// Bot answers move requests. Handle may be called from several goroutines.
type Bot struct {
	mu         sync.Mutex
	eng        *engine.Engine[notnil.Move]
	difficulty engine.Difficulty
}

// New creates a bot playing at difficulty d unless a request asks otherwise.
func New(d engine.Difficulty) *Bot {
	return &Bot{
		eng:        engine.NewEngine[notnil.Move](),
		difficulty: d.Clamp(),
	}
}

func errorResponse(message string, err error) *Response {
	return &Response{Error: fmt.Sprintf("%s: %v", message, err)}
}

// Move picks the engine's answer to req.
func (b *Bot) Move(req Request) *Response {
	fen := req.FEN
	if fen == "" {
		fen = rules.StartFEN
	}
	pos, err := notnil.FromFEN(fen)
	if err != nil {
		return errorResponse("Could not parse position", err)
	}
	d := b.difficulty
	if req.Difficulty != 0 {
		d = engine.Difficulty(req.Difficulty)
	}

	b.mu.Lock()
	m, ok := b.eng.SelectMove(pos, d)
	b.mu.Unlock()
	if !ok {
		log.Info().Str("fen", fen).Msg("no legal moves")
		return &Response{}
	}
	resp := &Response{Move: m.String(), SAN: notnil.SAN(pos.Current(), m)}
	log.Info().Str("move", resp.SAN).Int("difficulty", int(d)).Msg("generated move")
	return resp
}

// Handle decodes a JSON request and returns the JSON reply.
func (b *Bot) Handle(data []byte) []byte {
	var req Request
	var resp *Response
	if err := json.Unmarshal(data, &req); err != nil {
		resp = errorResponse("Could not parse request", err)
	} else {
		resp = b.Move(req)
	}
	out, err := json.Marshal(resp)
	if err != nil {
		// Should never happen, ideally, but we need to do something sensible here.
		return []byte(`{"error":"` + err.Error() + `"}`)
	}
	return out
}

// Connect dials the NATS server, retrying with backoff until ctx ends or
// the attempts run out.
func Connect(ctx context.Context, url string, attempts uint) (*nats.Conn, error) {
	var nc *nats.Conn
	err := retry.Do(
		func() error {
			var err error
			nc, err = nats.Connect(url, nats.Name("shellchess"))
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Err(err).Uint("n", n).Msg("nats-connect-failed-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", url, err)
	}
	return nc, nil
}

// Serve answers requests on subject until ctx is done.
func Serve(ctx context.Context, nc *nats.Conn, subject string, b *Bot) error {
	sub, err := nc.Subscribe(subject, func(m *nats.Msg) {
		log.Info().Msgf("RECV: %d bytes", len(m.Data))
		if err := m.Respond(b.Handle(m.Data)); err != nil {
			log.Err(err).Msg("respond")
		}
	})
	if err != nil {
		return err
	}
	if err := nc.Flush(); err != nil {
		return err
	}
	if err := nc.LastError(); err != nil {
		return err
	}
	log.Info().Msgf("Listening on [%s]", subject)

	<-ctx.Done()
	if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		return err
	}
	return nc.Drain()
}
