// Package uci implements the Universal Chess Interface protocol on top of
// the engine and the dragontoothmg rules backend.
package uci

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/shellchess/internal/engine"
	"github.com/hailam/shellchess/internal/rules"
	"github.com/hailam/shellchess/internal/rules/dragon"
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine     *engine.Engine[dragon.Move]
	position   *dragon.Position
	difficulty engine.Difficulty

	in  io.Reader
	out io.Writer
	mu  sync.Mutex // guards out

	// Search state
	searchDone chan struct{}

	// CPU profiling
	profileFile *os.File
}

// New creates a new UCI protocol handler reading commands from in and
// writing replies to out.
func New(eng *engine.Engine[dragon.Move], d engine.Difficulty, in io.Reader, out io.Writer) *UCI {
	return &UCI{
		engine:     eng,
		position:   dragon.New(),
		difficulty: d.Clamp(),
		in:         in,
		out:        out,
	}
}

func (u *UCI) printf(format string, args ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

// Run processes commands until "quit" or end of input.
func (u *UCI) Run() error {
	scanner := bufio.NewScanner(u.in)
	defer u.wait()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.printf("readyok\n")
		case "ucinewgame":
			u.wait()
			u.position = dragon.New()
		case "position":
			u.wait()
			u.handlePosition(args)
		case "go":
			u.wait()
			u.handleGo(args)
		case "stop":
			// Searches run to their fixed depth; stop waits for the result.
			u.wait()
		case "quit":
			u.handleQuit()
			return nil
		case "setoption":
			u.wait()
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.wait()
			u.printf("%s%s\n", rules.Draw(u.position), u.position.FEN())
		case "perft":
			u.wait()
			u.handlePerft(args)
		default:
			log.Debug().Str("cmd", cmd).Msg("unknown command")
		}
	}
	return scanner.Err()
}

// wait blocks until the running search, if any, has printed its move.
func (u *UCI) wait() {
	if u.searchDone != nil {
		<-u.searchDone
		u.searchDone = nil
	}
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.printf("id name shellchess\n")
	u.printf("id author shellchess developers\n\n")
	u.printf("option name Difficulty type spin default %d min %d max %d\n",
		int(u.difficulty), int(engine.Easy), int(engine.Grandmaster))
	u.printf("option name VerifyRestore type check default %t\n", u.engine.VerifyRestore)
	u.printf("option name CPUProfile type string default <empty>\n")
	u.printf("uciok\n")
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var pos *dragon.Position
	switch args[0] {
	case "startpos":
		pos = dragon.New()
	case "fen":
		fenStr := strings.Join(args[1:movesAt], " ")
		p, err := dragon.FromFEN(fenStr)
		if err != nil {
			u.printf("info string Invalid FEN: %v\n", err)
			return
		}
		pos = p
	default:
		return
	}

	if movesAt < len(args) {
		if err := pos.PlayMoves(args[movesAt+1:]); err != nil {
			u.printf("info string Invalid move: %v\n", err)
			return
		}
	}
	u.position = pos
}

// GoOptions holds parsed "go" command options. Clock fields are parsed so
// that GUIs sending them are accepted; the search depth is fixed by the
// difficulty.
type GoOptions struct {
	Depth    int
	MoveTime time.Duration
	WTime    time.Duration
	BTime    time.Duration
	Infinite bool
}

// parseGoOptions parses "go" command arguments.
func parseGoOptions(args []string) GoOptions {
	opts := GoOptions{}
	ms := func(s string) time.Duration {
		n, _ := strconv.Atoi(s)
		return time.Duration(n) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "movetime":
			if i+1 < len(args) {
				opts.MoveTime = ms(args[i+1])
				i++
			}
		case "wtime":
			if i+1 < len(args) {
				opts.WTime = ms(args[i+1])
				i++
			}
		case "btime":
			if i+1 < len(args) {
				opts.BTime = ms(args[i+1])
				i++
			}
		case "infinite":
			opts.Infinite = true
		}
	}
	return opts
}

// difficultyFor maps a requested depth onto a tier; depth 0 keeps the
// configured tier.
func (u *UCI) difficultyFor(opts GoOptions) engine.Difficulty {
	if opts.Depth > 0 {
		return engine.Difficulty(opts.Depth).Clamp()
	}
	return u.difficulty
}

// handleGo starts a search with the given parameters.
func (u *UCI) handleGo(args []string) {
	d := u.difficultyFor(parseGoOptions(args))
	pos := u.position
	side := pos.SideToMove()

	u.engine.OnInfo = func(info engine.SearchInfo) {
		u.sendInfo(info, side)
	}

	done := make(chan struct{})
	u.searchDone = done
	go func() {
		defer close(done)
		m, ok := u.engine.SelectMove(pos, d)
		if !ok {
			// Only send 0000 for checkmate/stalemate (no legal moves)
			u.printf("bestmove 0000\n")
			return
		}
		u.printf("bestmove %s\n", dragon.MoveString(m))
	}()
}

// sendInfo outputs search info in UCI format. UCI scores are from the
// point of view of the side to move.
func (u *UCI) sendInfo(info engine.SearchInfo, side rules.Color) {
	if info.Random {
		u.printf("info string random move at %s\n", info.Difficulty)
		return
	}
	score := info.Score
	if side == rules.Black {
		score = -score
	}

	parts := []string{
		fmt.Sprintf("depth %d", info.Depth),
		fmt.Sprintf("score cp %d", score),
		fmt.Sprintf("nodes %d", info.Nodes),
		fmt.Sprintf("time %d", info.Time.Milliseconds()),
	}
	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}
	u.printf("info %s\n", strings.Join(parts, " "))
}

// handleQuit stops profiling if active.
func (u *UCI) handleQuit() {
	u.wait()
	u.stopProfile()
}

func (u *UCI) stopProfile() {
	if u.profileFile != nil {
		pprof.StopCPUProfile()
		u.profileFile.Close()
		u.profileFile = nil
		u.printf("info string CPU profile saved\n")
	}
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	switch strings.ToLower(name) {
	case "difficulty":
		d, err := engine.ParseDifficulty(value)
		if err != nil {
			u.printf("info string %v\n", err)
			return
		}
		u.difficulty = d
	case "verifyrestore":
		u.engine.VerifyRestore = strings.ToLower(value) == "true"
	case "cpuprofile":
		u.stopProfile()
		if value != "" && value != "stop" && value != "<empty>" {
			f, err := os.Create(value)
			if err != nil {
				u.printf("info string Failed to create profile: %v\n", err)
				return
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				u.printf("info string Failed to start profile: %v\n", err)
				return
			}
			u.profileFile = f
			u.printf("info string CPU profiling to %s\n", value)
		}
	default:
		u.printf("info string Unknown option: %s\n", name)
	}
}

// handlePerft runs a perft test.
func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		depth, _ = strconv.Atoi(args[0])
	}

	start := time.Now()
	nodes := rules.Perft[dragon.Move](u.position, depth)
	elapsed := time.Since(start)

	u.printf("Nodes: %d\n", nodes)
	u.printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		u.printf("NPS: %.0f\n", nps)
	}
}
