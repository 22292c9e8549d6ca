package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/hailam/nullmove/internal/board"
	"github.com/hailam/nullmove/internal/engine"
	"github.com/hailam/nullmove/internal/storage"
)

// Journal records completed searches.
type Journal interface {
	Record(e storage.Entry) (storage.Entry, error)
}

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine   *engine.Engine
	journal  Journal
	position *board.Position

	// How the position was reached, for the journal and time management
	baseFEN string
	moves   []string

	// Set when the last "position" command failed; "go" is refused until
	// a position is set again.
	positionErr error

	moveTime time.Duration

	in    io.Reader
	out   io.Writer
	outMu sync.Mutex

	// Search state
	searching  bool
	infinite   bool
	cancel     context.CancelFunc
	searchDone chan struct{}
}

// New creates a new UCI protocol handler reading commands from in and
// writing responses to out.
func New(eng *engine.Engine, in io.Reader, out io.Writer) *UCI {
	return &UCI{
		engine:   eng,
		position: board.NewPosition(),
		baseFEN:  board.StartFEN,
		moveTime: 3 * time.Second,
		in:       in,
		out:      out,
	}
}

// SetJournal makes every completed search be recorded in j.
func (u *UCI) SetJournal(j Journal) {
	u.journal = j
}

// SetMoveTime sets the search time used when "go" has no time control.
func (u *UCI) SetMoveTime(d time.Duration) {
	if d > 0 {
		u.moveTime = d
	}
}

// Run reads commands until "quit" or end of input. At end of input a
// search with a deadline or depth limit is allowed to finish; "quit" stops
// it. Either way its bestmove is written before Run returns.
func (u *UCI) Run() error {
	scanner := bufio.NewScanner(u.in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]
		log.Debug().Str("cmd", cmd).Strs("args", args).Msg("uci-command")

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleStop()
			return nil
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.handleDisplay()
		case "perft":
			u.handlePerft(args)
		default:
			u.printf("info string unknown command: %s\n", cmd)
		}
	}

	u.waitSearch()
	return scanner.Err()
}

func (u *UCI) printf(format string, args ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

func (u *UCI) println(line string) {
	u.printf("%s\n", line)
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.println("id name NullMove")
	u.println("id author NullMove Team")
	u.println("")
	u.printf("option name MoveTime type spin default %d min 1 max 3600000\n", u.moveTime.Milliseconds())
	u.println("uciok")
}

// handleNewGame resets the position for a new game.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.position = board.NewPosition()
	u.baseFEN = board.StartFEN
	u.moves = nil
	u.positionErr = nil
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
//
// On any error the previous position is kept for "d", but "go" is refused
// until a valid position is set.
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}
	u.handleStop()

	if err := u.setPosition(args); err != nil {
		u.positionErr = err
		u.printf("info string %v\n", err)
		return
	}
	u.positionErr = nil
}

// setPosition replaces the position only if every part of args is valid.
func (u *UCI) setPosition(args []string) error {
	// Split at the "moves" keyword
	setup, moves := args, []string(nil)
	for i, arg := range args {
		if arg == "moves" {
			setup, moves = args[:i], args[i+1:]
			break
		}
	}
	if len(setup) == 0 {
		return errors.New("invalid position: missing startpos or fen")
	}

	var fen string
	switch setup[0] {
	case "startpos":
		fen = board.StartFEN
	case "fen":
		fen = strings.Join(setup[1:], " ")
	default:
		return fmt.Errorf("invalid position: %s", setup[0])
	}

	pos, err := board.ParseFEN(fen)
	if err != nil {
		return fmt.Errorf("invalid FEN: %w", err)
	}

	for _, moveStr := range moves {
		if err := applyMove(pos, moveStr); err != nil {
			return fmt.Errorf("invalid move %s: %w", moveStr, err)
		}
	}

	u.position = pos
	u.baseFEN = fen
	u.moves = append([]string(nil), moves...)
	return nil
}

// applyMove plays moveStr on pos if it is a legal move there. Castling is
// accepted for both colors even though the engine only generates it for
// white.
func applyMove(pos *board.Position, moveStr string) error {
	m, err := board.ParseMove(moveStr)
	if err != nil {
		return err
	}
	legal, err := pos.IsLegal(m)
	if err != nil {
		return err
	}
	if !legal && !pos.IsCastling(m) {
		return fmt.Errorf("illegal in %s", pos.ToFEN())
	}
	_, err = pos.DoMove(m)
	return err
}

// parseGoOptions parses "go" command arguments.
func parseGoOptions(args []string) engine.UCILimits {
	var opts engine.UCILimits

	ms := func(i int) time.Duration {
		if i+1 >= len(args) {
			return 0
		}
		n, _ := strconv.Atoi(args[i+1])
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
			opts.MoveTime = ms(i)
			i++
		case "infinite":
			opts.Infinite = true
		case "wtime":
			opts.Time[board.White] = ms(i)
			i++
		case "btime":
			opts.Time[board.Black] = ms(i)
			i++
		case "winc":
			opts.Inc[board.White] = ms(i)
			i++
		case "binc":
			opts.Inc[board.Black] = ms(i)
			i++
		case "movestogo":
			if i+1 < len(args) {
				opts.MovesToGo, _ = strconv.Atoi(args[i+1])
				i++
			}
		}
	}

	return opts
}

// handleGo starts a search with the given parameters.
func (u *UCI) handleGo(args []string) {
	u.handleStop()

	if u.positionErr != nil {
		u.printf("info string no valid position: %v\n", u.positionErr)
		u.println("bestmove 0000")
		return
	}

	opts := parseGoOptions(args)
	limits := engine.AllocateTime(opts, u.position.SideToMove, len(u.moves))
	if !opts.Infinite && !opts.HasClock() && limits.Depth == 0 {
		limits.MoveTime = u.moveTime
	}

	u.engine.OnInfo = u.sendInfo

	ctx, cancel := context.WithCancel(context.Background())
	u.searching = true
	u.infinite = limits.MoveTime == 0 && limits.Depth == 0
	u.cancel = cancel
	u.searchDone = make(chan struct{})

	pos := u.position.Copy()
	entry := storage.Entry{
		StartedAt: time.Now(),
		FEN:       u.baseFEN,
		Moves:     append([]string(nil), u.moves...),
	}

	go func() {
		defer close(u.searchDone)
		defer cancel()

		res, err := u.engine.Search(ctx, pos, limits)
		if err != nil {
			log.Error().Err(err).Str("fen", pos.ToFEN()).Msg("search-error")
			u.printf("info string search failed: %v\n", err)
			u.println("bestmove 0000")
			return
		}

		// NoMove prints as 0000: checkmate or stalemate
		u.printf("bestmove %s\n", res.BestMove)
		u.record(pos, entry, res)
	}()
}

// record writes a finished search from pos to the journal, if there is one.
func (u *UCI) record(pos *board.Position, e storage.Entry, res engine.Result) {
	if u.journal == nil {
		return
	}
	e.BestMove = res.BestMove.String()
	e.Depth = res.Depth
	e.Nodes = res.Nodes
	e.Elapsed = res.Time
	e.ScoreCP, e.Mate = centipawns(res.Score)

	pv, err := board.MovesToSAN(pos, res.PV)
	if err != nil {
		log.Warn().Err(err).Str("fen", pos.ToFEN()).Msg("pv-to-san-failed")
	}
	e.PV = pv

	if _, err := u.journal.Record(e); err != nil {
		log.Warn().Err(err).Msg("journal-record-failed")
	}
}

// centipawns converts a score in pawns to UCI centipawns. Infinite scores
// mean a forced king capture and are reported as mate in one.
func centipawns(score float64) (cp, mate int) {
	switch {
	case math.IsInf(score, 1):
		return 0, 1
	case math.IsInf(score, -1):
		return 0, -1
	}
	return int(math.Round(score * 100)), 0
}

// formatScore renders a score as a UCI "score" clause.
func formatScore(score float64) string {
	cp, mate := centipawns(score)
	if mate != 0 {
		return fmt.Sprintf("score mate %d", mate)
	}
	return fmt.Sprintf("score cp %d", cp)
}

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	parts := []string{
		fmt.Sprintf("depth %d", info.Depth),
		formatScore(info.Score),
		fmt.Sprintf("nodes %d", info.Nodes),
		fmt.Sprintf("time %d", info.Time.Milliseconds()),
	}

	// NPS
	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}

	if len(info.PV) > 0 {
		pv := lo.Map(info.PV, func(m board.Move, _ int) string { return m.String() })
		parts = append(parts, "pv "+strings.Join(pv, " "))
	}

	u.printf("info %s\n", strings.Join(parts, " "))
}

// handleStop stops the current search and waits for its bestmove.
func (u *UCI) handleStop() {
	if u.searching {
		u.cancel()
		<-u.searchDone // Wait for search to finish
		u.searching = false
	}
}

// waitSearch waits for a bounded search to finish and stops an unbounded one.
func (u *UCI) waitSearch() {
	if u.searching && !u.infinite {
		<-u.searchDone
		u.searching = false
	}
	u.handleStop()
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value []string
	var field *[]string
	for _, arg := range args {
		switch arg {
		case "name":
			field = &name
		case "value":
			field = &value
		default:
			if field != nil {
				*field = append(*field, arg)
			}
		}
	}

	// Handle options
	switch strings.ToLower(strings.Join(name, " ")) {
	case "movetime":
		ms, err := strconv.Atoi(strings.Join(value, " "))
		if err != nil || ms <= 0 {
			u.printf("info string invalid MoveTime: %s\n", strings.Join(value, " "))
			return
		}
		u.moveTime = time.Duration(ms) * time.Millisecond
	default:
		u.printf("info string unknown option: %s\n", strings.Join(name, " "))
	}
}

// handleDisplay prints the board.
func (u *UCI) handleDisplay() {
	u.printf("%s\nFen: %s\n", u.position, u.position.ToFEN())
}

// handlePerft runs a perft test.
func (u *UCI) handlePerft(args []string) {
	u.handleStop()

	depth := 4
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil || d < 0 {
			u.printf("info string invalid perft depth: %s\n", args[0])
			return
		}
		depth = d
	}

	start := time.Now()
	nodes, err := u.engine.Perft(u.position.Copy(), depth)
	if err != nil {
		u.printf("info string perft failed: %v\n", err)
		return
	}
	elapsed := time.Since(start)

	u.printf("Nodes: %d\n", nodes)
	u.printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		u.printf("NPS: %.0f\n", nps)
	}
}
