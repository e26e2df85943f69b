package shell

import (
	"github.com/chzyer/readline"
)

const welcome = `Welcome to shellchess!
Type a move in SAN (e4, Nf3, O-O) or UCI (e2e4) to play it.
Type "help" for the list of commands.`

var helpTopics = map[string]string{
	"new":         "new [white|black] [1-4] - start a new game; missing values keep your preferences",
	"move":        "move <m> - play a move in SAN or UCI; a bare move works too",
	"board":       "board - show the board and its FEN",
	"moves":       "moves - list the legal moves",
	"undo":        "undo - take back your last move and the engine's reply",
	"difficulty":  "difficulty [1-4|easy|medium|hard|grandmaster] - show or set the engine strength",
	"sound":       "sound [on|off] - ring the terminal bell on captures and checks",
	"stats":       "stats - show your results",
	"reset-stats": "reset-stats - clear your results",
	"history":     "history - list the moves of this game",
	"pgn":         "pgn - print the game record",
	"resign":      "resign - give up the current game",
	"help":        "help [command] - show help",
	"exit":        "exit - leave shellchess",
}

var helpOrder = []string{
	"new", "move", "board", "moves", "undo", "difficulty", "sound",
	"stats", "reset-stats", "history", "pgn", "resign", "help", "exit",
}

func (c *Controller) help(cmd *shellcmd) error {
	if len(cmd.args) > 0 {
		if text, ok := helpTopics[cmd.args[0]]; ok {
			c.showMessage(text)
			return nil
		}
	}
	for _, name := range helpOrder {
		c.showMessage("  " + helpTopics[name])
	}
	return nil
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("new",
		readline.PcItem("white"),
		readline.PcItem("black"),
	),
	readline.PcItem("move"),
	readline.PcItem("board"),
	readline.PcItem("moves"),
	readline.PcItem("undo"),
	readline.PcItem("difficulty",
		readline.PcItem("easy"),
		readline.PcItem("medium"),
		readline.PcItem("hard"),
		readline.PcItem("grandmaster"),
	),
	readline.PcItem("sound",
		readline.PcItem("on"),
		readline.PcItem("off"),
	),
	readline.PcItem("stats"),
	readline.PcItem("reset-stats"),
	readline.PcItem("history"),
	readline.PcItem("pgn"),
	readline.PcItem("resign"),
	readline.PcItem("help"),
	readline.PcItem("exit"),
)
