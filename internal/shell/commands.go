package shell

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hailam/shellchess/internal/engine"
	"github.com/hailam/shellchess/internal/rules"
)

var errNoGame = errors.New("no game in progress, start one with `new`")
var errNoStore = errors.New("statistics are not available")

func (c *Controller) dispatch(cmd *shellcmd) error {
	switch cmd.cmd {
	case "exit", "quit":
		return ErrExit
	case "help":
		return c.help(cmd)
	case "new":
		return c.newCmd(cmd)
	case "move":
		if len(cmd.args) != 1 {
			return errors.New("usage: move <san or uci>")
		}
		return c.move(cmd.args[0])
	case "board":
		return c.withGame(func() error {
			c.showMessage(c.session.Board())
			c.showMessage(c.session.FEN())
			return nil
		})
	case "moves":
		return c.withGame(func() error {
			c.showMessage(strings.Join(c.session.LegalMoves(), " "))
			return nil
		})
	case "undo":
		return c.withGame(func() error {
			if err := c.session.Undo(); err != nil {
				return err
			}
			c.showMessage(c.session.Board())
			return nil
		})
	case "difficulty":
		return c.setDifficulty(cmd)
	case "sound":
		return c.sound(cmd)
	case "stats":
		return c.stats()
	case "reset-stats":
		if c.store == nil {
			return errNoStore
		}
		if err := c.store.ResetStats(); err != nil {
			return err
		}
		c.showMessage("Statistics cleared.")
		return nil
	case "history":
		return c.withGame(func() error {
			c.showMessage(formatHistory(c.session.History()))
			return nil
		})
	case "pgn":
		return c.withGame(func() error {
			c.showMessage(c.session.PGN())
			return nil
		})
	case "resign":
		return c.withGame(func() error {
			if err := c.session.Resign(); err != nil {
				return err
			}
			c.afterMove()
			return nil
		})
	default:
		if len(cmd.args) == 0 {
			return c.move(cmd.text)
		}
		return fmt.Errorf("unknown command %q, try `help`", cmd.text)
	}
}

func (c *Controller) withGame(f func() error) error {
	if c.session == nil {
		return errNoGame
	}
	return f()
}

// newCmd handles "new [white|black] [1-4]" in either order.
func (c *Controller) newCmd(cmd *shellcmd) error {
	col, d := c.playerColor(), c.difficulty()
	for _, arg := range cmd.args {
		if parsed, ok := rules.ParseColor(arg); ok {
			col = parsed
			continue
		}
		parsed, err := engine.ParseDifficulty(arg)
		if err != nil {
			return fmt.Errorf("usage: new [white|black] [1-4]: %w", err)
		}
		d = parsed
	}
	return c.newGame(col, d)
}

// move plays the human move text and the engine's answer.
func (c *Controller) move(text string) error {
	if c.session == nil {
		return errNoGame
	}
	if _, err := c.session.HumanMove(text); err != nil {
		return err
	}
	if c.session.Over() {
		c.afterMove()
		return nil
	}
	if err := c.engineReply(); err != nil {
		return err
	}
	c.afterMove()
	if !c.session.Over() {
		c.showMessage(c.session.Board())
	}
	return nil
}

func (c *Controller) setDifficulty(cmd *shellcmd) error {
	if len(cmd.args) != 1 {
		c.showMessage("Difficulty: " + c.difficulty().String())
		return nil
	}
	d, err := engine.ParseDifficulty(cmd.args[0])
	if err != nil {
		return err
	}
	c.prefs.Difficulty = int(d)
	c.savePreferences()
	if c.session != nil {
		c.session.SetDifficulty(d)
	}
	c.showMessage("Difficulty set to " + d.String())
	return nil
}

func (c *Controller) sound(cmd *shellcmd) error {
	if len(cmd.args) == 1 {
		switch strings.ToLower(cmd.args[0]) {
		case "on":
			c.prefs.SoundEnabled = true
		case "off":
			c.prefs.SoundEnabled = false
		default:
			return errors.New("usage: sound [on|off]")
		}
		c.savePreferences()
	}
	state := "off"
	if c.prefs.SoundEnabled {
		state = "on"
	}
	c.showMessage("Sound is " + state)
	return nil
}

func (c *Controller) stats() error {
	if c.store == nil {
		return errNoStore
	}
	s, err := c.store.LoadStats()
	if err != nil {
		return err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Games played: %d\n", s.GamesPlayed)
	fmt.Fprintf(&sb, "Wins: %d  Losses: %d  Draws: %d\n", s.Wins, s.Losses, s.Draws)
	fmt.Fprintf(&sb, "Win rate: %.1f%%\n", s.WinRate())
	fmt.Fprintf(&sb, "Average moves: %.1f\n", s.AverageMoves())
	fmt.Fprintf(&sb, "Current streak: %d  Longest win streak: %d\n", s.CurrentStreak, s.LongestWinStreak)
	for d := engine.Easy; d <= engine.Grandmaster; d++ {
		if n := s.DifficultyHistory[int(d)]; n > 0 {
			fmt.Fprintf(&sb, "  %-12s %d\n", d.String(), n)
		}
	}
	c.showMessage(strings.TrimRight(sb.String(), "\n"))
	return nil
}

// formatHistory numbers the moves in pairs: "1. e4 e5".
func formatHistory(sans []string) string {
	if len(sans) == 0 {
		return "(no moves)"
	}
	var lines []string
	for i := 0; i < len(sans); i += 2 {
		line := fmt.Sprintf("%d. %s", i/2+1, sans[i])
		if i+1 < len(sans) {
			line += " " + sans[i+1]
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
