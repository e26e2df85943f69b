// Package shell is the interactive terminal front end: the human plays the
// engine by typing moves and commands at a readline prompt.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/hailam/shellchess/internal/archive"
	"github.com/hailam/shellchess/internal/engine"
	"github.com/hailam/shellchess/internal/game"
	"github.com/hailam/shellchess/internal/rules"
	"github.com/hailam/shellchess/internal/rules/notnil"
	"github.com/hailam/shellchess/internal/storage"
)

// ErrExit is returned by Execute when the user asks to leave.
var ErrExit = errors.New("exit")

// Options configures a Controller. Store and Archive may be nil, which
// disables statistics and the game archive.
type Options struct {
	Store         *storage.Storage
	Archive       *archive.Archive
	Out           io.Writer
	VerifyRestore bool
	HistoryFile   string

	// Difficulty and PlayerColor override the saved preferences unless
	// zero.
	Difficulty  engine.Difficulty
	PlayerColor string
}

// Controller owns the current game and answers shell commands.
type Controller struct {
	store   *storage.Storage
	archive *archive.Archive
	out     io.Writer
	prefs   *storage.Preferences
	eng     *engine.Engine[notnil.Move]

	session  *game.Session
	recorded bool
	lastInfo engine.SearchInfo

	historyFile string
}

type shellcmd struct {
	cmd  string // lower-cased, for command lookup
	text string // as typed, for moves
	args []string
}

// New creates a controller, loading saved preferences when a store is
// given.
func New(opts Options) (*Controller, error) {
	c := &Controller{
		store:       opts.Store,
		archive:     opts.Archive,
		out:         opts.Out,
		prefs:       storage.DefaultPreferences(),
		eng:         engine.NewEngine[notnil.Move](),
		historyFile: opts.HistoryFile,
	}
	c.eng.VerifyRestore = opts.VerifyRestore
	c.eng.OnInfo = func(info engine.SearchInfo) { c.lastInfo = info }

	first := false
	if c.store != nil {
		var err error
		if first, err = c.store.IsFirstLaunch(); err != nil {
			return nil, err
		}
		if first {
			c.showMessage(welcome)
			if err := c.store.MarkFirstLaunchComplete(); err != nil {
				return nil, err
			}
		} else {
			prefs, err := c.store.LoadPreferences()
			if err != nil {
				return nil, err
			}
			c.prefs = prefs
		}
	}

	// Explicit settings win over saved preferences.
	if opts.Difficulty != 0 {
		c.prefs.Difficulty = int(opts.Difficulty.Clamp())
	}
	if opts.PlayerColor != "" {
		col, ok := rules.ParseColor(opts.PlayerColor)
		if !ok {
			return nil, fmt.Errorf("unknown color %q", opts.PlayerColor)
		}
		c.prefs.PlayerColor = strings.ToLower(col.String())
	}

	if first {
		if err := c.store.SavePreferences(c.prefs); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Controller) showMessage(msg string) {
	io.WriteString(c.out, msg)
	io.WriteString(c.out, "\n")
}

func (c *Controller) showError(err error) {
	c.showMessage("Error: " + err.Error())
}

func (c *Controller) difficulty() engine.Difficulty {
	return engine.Difficulty(c.prefs.Difficulty).Clamp()
}

func (c *Controller) playerColor() rules.Color {
	col, ok := rules.ParseColor(c.prefs.PlayerColor)
	if !ok || col == rules.NoColor {
		return rules.White
	}
	return col
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return &shellcmd{cmd: strings.ToLower(fields[0]), text: fields[0], args: fields[1:]}, nil
}

// Execute runs one line of input. It returns ErrExit for "exit".
func (c *Controller) Execute(line string) error {
	cmd, err := extractFields(strings.TrimSpace(line))
	if err != nil {
		return err
	}
	if cmd == nil {
		return nil
	}
	return c.dispatch(cmd)
}

// Loop reads commands until exit, end of input or cancellation.
func (c *Controller) Loop(ctx context.Context) error {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32mshellchess>\033[0m ",
		HistoryFile:     c.historyFile,
		AutoComplete:    completer,
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return err
	}
	defer l.Close()
	c.out = l.Stdout()

	if c.session == nil {
		if err := c.newGame(c.playerColor(), c.difficulty()); err != nil {
			return err
		}
	}

	for ctx.Err() == nil {
		line, err := l.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				break
			}
			continue
		} else if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return err
		}

		if err := c.Execute(line); err != nil {
			if errors.Is(err, ErrExit) {
				break
			}
			c.showError(err)
		}
	}
	log.Debug().Msg("exiting readline loop")
	return nil
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

// newGame starts a game and lets the engine open if the human plays Black.
func (c *Controller) newGame(col rules.Color, d engine.Difficulty) error {
	s, err := game.New(game.Options{HumanColor: col, Difficulty: d, Engine: c.eng})
	if err != nil {
		return err
	}
	s.OnPly = c.onPly
	c.session = s
	c.recorded = false

	c.prefs.PlayerColor = strings.ToLower(col.String())
	c.prefs.Difficulty = int(d)
	c.prefs.LastPlayed = time.Now()
	c.savePreferences()

	c.showMessage(fmt.Sprintf("New game: you play %s against %s.", col, d))
	if !s.HumanToMove() {
		if err := c.engineReply(); err != nil {
			return err
		}
	}
	c.showMessage(s.Board())
	return nil
}

func (c *Controller) savePreferences() {
	if c.store == nil {
		return
	}
	if err := c.store.SavePreferences(c.prefs); err != nil {
		log.Error().Err(err).Msg("saving preferences")
	}
}

func (c *Controller) onPly(p game.Ply) {
	log.Info().Str("san", p.SAN).Str("color", p.Color.String()).Msg("MOVE")
	if c.prefs.SoundEnabled && (p.Capture || p.Check) {
		io.WriteString(c.out, "\a")
	}
}

// engineReply asks the engine for a move and prints it.
func (c *Controller) engineReply() error {
	c.showMessage(fmt.Sprintf("Thinking (%s)...", c.session.Difficulty()))
	ply, err := c.session.EngineMove()
	if err != nil {
		return err
	}
	if c.lastInfo.Random {
		c.showMessage(fmt.Sprintf("Engine plays %s (random)", ply.SAN))
		return nil
	}
	c.showMessage(fmt.Sprintf("Engine plays %s (eval %s, %d nodes)",
		ply.SAN, engine.ScoreToString(c.lastInfo.Score), c.eng.Nodes()))
	return nil
}

// afterMove reports check or the end of the game.
func (c *Controller) afterMove() {
	if r, over := c.session.Result(); over {
		c.showMessage(c.session.Board())
		c.showMessage("Game over: " + r.String())
		c.record(r)
		return
	}
	if c.session.InCheck() {
		c.showMessage("Check!")
	}
}

// record stores a finished game once, in the statistics and the archive.
func (c *Controller) record(r game.Result) {
	if c.recorded {
		return
	}
	c.recorded = true
	human := c.session.HumanColor()

	if c.store != nil {
		outcome := storage.Loss
		switch {
		case r.Draw():
			outcome = storage.Draw
		case r.Won(human):
			outcome = storage.Win
		}
		stats, err := c.store.RecordGame(storage.GameResult{
			Outcome:    outcome,
			Moves:      r.Plies,
			Duration:   r.Duration,
			Difficulty: int(c.session.Difficulty()),
		})
		if err != nil {
			log.Error().Err(err).Msg("recording game")
		} else {
			c.showMessage(fmt.Sprintf("You %s. Record: %d-%d-%d", outcomeVerb(outcome), stats.Wins, stats.Losses, stats.Draws))
		}
	}

	if c.archive != nil {
		rec := archive.Record{
			PlayedAt:   time.Now(),
			White:      playerName(rules.White, human, c.session.Difficulty()),
			Black:      playerName(rules.Black, human, c.session.Difficulty()),
			Result:     r.Score(),
			Reason:     string(r.Reason),
			Difficulty: int(c.session.Difficulty()),
			Plies:      r.Plies,
			Duration:   r.Duration,
			PGN:        c.session.PGN(),
		}
		if _, err := c.archive.Save(context.Background(), rec); err != nil {
			log.Error().Err(err).Msg("archiving game")
		}
	}
}

func outcomeVerb(o storage.Outcome) string {
	switch o {
	case storage.Win:
		return "won"
	case storage.Loss:
		return "lost"
	}
	return "drew"
}

func playerName(side, human rules.Color, d engine.Difficulty) string {
	if side == human {
		return "human"
	}
	return "shellchess " + d.String()
}
