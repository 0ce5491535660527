package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/meridianchess/meridian/pkg/common"
)

// Engine runs the actual tree search on its own workers. Search blocks
// until the search ends; the protocol calls it from a goroutine and
// cancels through the context.
type Engine interface {
	Prepare()
	Clear()
	Search(ctx context.Context, sp common.SearchParams) common.SearchInfo
	PonderHit()
	ExportNet(files []string) error
}

// Evaluator scores a single position from the side to move's view, on
// the internal value scale.
type Evaluator interface {
	Evaluate(p *common.Position) int
}

// TablebaseIniter manages endgame tablebase handles. Probing is the
// engine's business; the protocol only triggers (re)initialization.
type TablebaseIniter interface {
	Init(path string) error
	Clear()
}

// commandKind is the closed set of protocol verbs. The first token of a
// line classifies into exactly one kind; dispatch matches exhaustively.
type commandKind int

const (
	cmdUnknown commandKind = iota
	cmdUci
	cmdIsReady
	cmdSetOption
	cmdNewGame
	cmdPosition
	cmdGo
	cmdStop
	cmdQuit
	cmdPonderHit
	cmdBoard
	cmdFlip
	cmdBench
	cmdEval
	cmdCompiler
	cmdExportNet
	cmdHelp
	cmdLicense
	cmdRearrange
)

func classify(token string) commandKind {
	switch token {
	case "uci":
		return cmdUci
	case "isready":
		return cmdIsReady
	case "setoption":
		return cmdSetOption
	case "ucinewgame":
		return cmdNewGame
	case "position":
		return cmdPosition
	case "go":
		return cmdGo
	case "stop":
		return cmdStop
	case "quit":
		return cmdQuit
	case "ponderhit":
		return cmdPonderHit
	case "d":
		return cmdBoard
	case "flip":
		return cmdFlip
	case "bench":
		return cmdBench
	case "eval":
		return cmdEval
	case "compiler":
		return cmdCompiler
	case "export_net":
		return cmdExportNet
	}
	// The rearrangement verb and the help/license aliases are the only
	// case-insensitive commands.
	switch {
	case strings.EqualFold(token, "rearrange"):
		return cmdRearrange
	case strings.EqualFold(token, "help"), strings.EqualFold(token, "--help"):
		return cmdHelp
	case strings.EqualFold(token, "license"), strings.EqualFold(token, "--license"):
		return cmdLicense
	}
	return cmdUnknown
}

// Protocol is the command/response state machine between a controller
// and the engine. It owns the live position and its state stack; the
// engine and evaluator are collaborators.
type Protocol struct {
	name    string
	author  string
	version string

	engine     Engine
	evaluator  Evaluator
	tablebases TablebaseIniter
	logger     *log.Logger
	out        *syncWriter

	options       []Option
	ponderAllowed bool
	chess960      bool
	showWDL       bool
	syzygyPath    string

	pos    common.Position
	states *common.StateStack

	stop       atomic.Bool
	cancel     context.CancelFunc
	searchDone chan struct{}
}

func New(name, author, version string, engine Engine, evaluator Evaluator,
	tablebases TablebaseIniter, engineOptions []Option) *Protocol {
	var pos, err = common.NewPositionFromFEN(common.InitialPositionFen)
	if err != nil {
		panic(err)
	}
	var p = &Protocol{
		name:       name,
		author:     author,
		version:    version,
		engine:     engine,
		evaluator:  evaluator,
		tablebases: tablebases,
		logger:     log.New(os.Stderr, "", log.LstdFlags),
		out:        newSyncWriter(os.Stdout),
		pos:        pos,
	}
	p.states = common.NewStateStack(&p.pos)
	p.options = append(p.options,
		&BoolOption{Name: "Ponder", Value: &p.ponderAllowed},
		&BoolOption{Name: "UCI_Chess960", Value: &p.chess960, OnChange: func() {
			p.pos.Chess960 = p.chess960
		}},
		&BoolOption{Name: "UCI_ShowWDL", Value: &p.showWDL},
		&StringOption{Name: "SyzygyPath", Value: &p.syzygyPath, OnChange: func() {
			if err := p.tablebases.Init(p.syzygyPath); err != nil {
				p.logger.Println(err)
			}
		}},
	)
	p.options = append(p.options, engineOptions...)
	return p
}

// Run drives the command loop. With trailing process arguments the loop
// degenerates to one-shot mode: the arguments become a single synthetic
// command executed exactly once.
func (p *Protocol) Run(args []string) {
	if len(args) > 0 {
		p.dispatch(strings.Join(args, " "))
		p.drain()
		return
	}
	var scanner = bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if quit := p.dispatch(scanner.Text()); quit {
			return
		}
	}
	// End of input terminates like an explicit quit.
	p.stopSearch()
	p.drain()
}

// dispatch tokenizes one command line and routes it. It reports whether
// the loop should terminate.
func (p *Protocol) dispatch(line string) (quit bool) {
	var fields = strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	var kind = classify(fields[0])
	fields = fields[1:]

	var err error
	switch kind {
	case cmdQuit:
		p.stopSearch()
		p.drain()
		return true
	case cmdStop:
		p.stopSearch()
	case cmdPonderHit:
		p.engine.PonderHit()
	case cmdUci:
		p.uciCommand()
	case cmdIsReady:
		p.isReadyCommand()
	case cmdSetOption:
		p.drain()
		err = p.setOptionCommand(fields)
	case cmdNewGame:
		p.drain()
		p.engine.Clear()
		p.tablebases.Clear()
		if p.syzygyPath != "" {
			err = p.tablebases.Init(p.syzygyPath)
		}
	case cmdPosition:
		p.drain()
		err = p.positionCommand(fields)
	case cmdGo:
		p.drain()
		p.goCommand(fields)
	case cmdBoard:
		p.drain()
		p.printBoard(&p.pos)
	case cmdFlip:
		p.drain()
		p.pos = p.pos.Mirror()
	case cmdBench:
		p.drain()
		p.benchCommand(fields)
	case cmdEval:
		p.drain()
		p.evalCommand()
	case cmdCompiler:
		p.out.Printf("compiled with %v %v/%v\n",
			runtime.Version(), runtime.GOOS, runtime.GOARCH)
	case cmdExportNet:
		p.drain()
		err = p.engine.ExportNet(fields)
	case cmdHelp:
		p.helpCommand()
	case cmdLicense:
		p.licenseCommand()
	case cmdRearrange:
		p.drain()
		p.rearrangeCommand(fields)
	case cmdUnknown:
		// Lines starting with '#' are comments in scripted input.
		if !strings.HasPrefix(strings.Fields(line)[0], "#") {
			p.out.Printf("Unknown command: '%v'. Type help for more information.\n", line)
		}
	}
	if err != nil {
		p.logger.Println(err)
	}
	return false
}

func (p *Protocol) uciCommand() {
	p.out.Printf("id name %v %v\n", p.name, p.version)
	p.out.Printf("id author %v\n", p.author)
	for _, option := range p.options {
		p.out.Println(option.UciString())
	}
	p.out.Println("uciok")
}

func (p *Protocol) isReadyCommand() {
	if p.searchDone == nil {
		p.engine.Prepare()
	}
	p.out.Println("readyok")
}

func (p *Protocol) setOptionCommand(fields []string) error {
	var name, value string
	var i = 0
	if i < len(fields) && fields[i] == "name" {
		i++
	}
	for ; i < len(fields) && fields[i] != "value"; i++ {
		if name != "" {
			name += " "
		}
		name += fields[i]
	}
	if i < len(fields) && fields[i] == "value" {
		value = strings.Join(fields[i+1:], " ")
	}
	if name == "" {
		return errors.New("invalid setoption arguments")
	}
	for _, option := range p.options {
		if strings.EqualFold(option.UciName(), name) {
			return option.Set(value)
		}
	}
	return fmt.Errorf("unknown option %v", name)
}

// positionCommand rebuilds the root and replays the move list. Replay
// stops silently at the first token that fails to decode.
func (p *Protocol) positionCommand(fields []string) error {
	if len(fields) == 0 {
		return errors.New("invalid position arguments")
	}
	var fen string
	var movesIndex = -1
	for i, token := range fields {
		if token == "moves" {
			movesIndex = i
			break
		}
	}
	switch fields[0] {
	case "startpos":
		fen = common.InitialPositionFen
	case "fen":
		if movesIndex == -1 {
			fen = strings.Join(fields[1:], " ")
		} else {
			fen = strings.Join(fields[1:movesIndex], " ")
		}
	default:
		return errors.New("invalid position arguments")
	}
	if err := p.states.Rebuild(fen); err != nil {
		return err
	}
	if movesIndex >= 0 {
		for _, token := range fields[movesIndex+1:] {
			var m = common.ParseMoveUCI(&p.pos, token)
			if m == common.MoveEmpty || !p.states.Apply(m) {
				break
			}
		}
	}
	return nil
}

func (p *Protocol) goCommand(fields []string) {
	var limits = parseLimits(fields, &p.pos)
	if limits.Perft > 0 {
		p.perftCommand(limits.Perft)
		return
	}

	p.stop.Store(false)
	var ctx, cancel = context.WithCancel(context.Background())
	p.cancel = cancel
	var done = make(chan struct{})
	p.searchDone = done

	var sp = common.SearchParams{
		Position: p.pos,
		History:  p.states.Keys(),
		Limits:   limits,
		Progress: p.sendSearchInfo,
	}
	var chess960 = p.pos.Chess960

	go func() {
		defer close(done)
		var result = p.engine.Search(ctx, sp)
		p.sendSearchInfo(result)
		if len(result.MainLine) == 0 {
			p.out.Println("bestmove (none)")
			return
		}
		var line = "bestmove " + common.MoveToUCI(result.MainLine[0], chess960)
		if len(result.MainLine) > 1 {
			line += " ponder " + common.MoveToUCI(result.MainLine[1], chess960)
		}
		p.out.Println(line)
	}()
}

// sendSearchInfo formats one "info" line. The whole line is written in a
// single synchronized call so a concurrent search thread can never
// interleave its fields.
func (p *Protocol) sendSearchInfo(si common.SearchInfo) {
	var material = MaterialCount(&p.pos)
	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %v score %v", si.Depth, ScoreString(si.Score, material))
	if p.showWDL {
		var win, draw, loss = WDL(si.Score, material)
		fmt.Fprintf(&sb, " wdl %v %v %v", win, draw, loss)
	}
	var timeMs = si.Time.Milliseconds()
	var nps = si.Nodes * 1000 / (timeMs + 1)
	fmt.Fprintf(&sb, " nodes %v time %v nps %v", si.Nodes, timeMs, nps)
	if len(si.MainLine) != 0 {
		sb.WriteString(" pv")
		for _, move := range si.MainLine {
			sb.WriteString(" ")
			sb.WriteString(common.MoveToUCI(move, p.pos.Chess960))
		}
	}
	p.out.Println(sb.String())
}

func (p *Protocol) perftCommand(depth int) {
	var start = time.Now()
	var total int64
	var buffer [common.MaxMoves]common.Move
	var frame common.StateFrame
	for _, m := range common.GenerateLegalMoves(&p.pos, buffer[:]) {
		p.pos.MakeMove(m, &frame)
		var nodes = common.Perft(&p.pos, depth-1)
		p.pos.UnmakeMove(m, &frame)
		p.out.Printf("%v: %v\n", common.MoveToUCI(m, p.pos.Chess960), nodes)
		total += nodes
	}
	p.out.Printf("\nNodes searched: %v\n", total)
	p.logger.Printf("perft %v in %v", depth, time.Since(start))
}

func (p *Protocol) evalCommand() {
	var v = p.evaluator.Evaluate(&p.pos)
	var material = MaterialCount(&p.pos)
	p.out.Printf("static evaluation: %v (%+.2f pawns, side to move)\n",
		ScoreString(v, material), float64(ToCentipawns(v, material))/100)
}

func (p *Protocol) helpCommand() {
	p.out.Println("")
	p.out.Printf("%v is a chess engine for playing and analysing.\n", p.name)
	p.out.Println("It is normally used with a graphical user interface (GUI) and implements")
	p.out.Println("the Universal Chess Interface (UCI) protocol to communicate with a GUI.")
	p.out.Println("Type uci for identity, position and go to analyse, quit to exit.")
	p.out.Println("")
}

func (p *Protocol) licenseCommand() {
	p.out.Printf("%v is free software distributed under the GNU General Public License\n", p.name)
	p.out.Println("version 3. It comes with ABSOLUTELY NO WARRANTY; see the LICENSE file")
	p.out.Println("shipped with the source code for the full terms.")
}

// stopSearch requests cooperative cancellation. Safe to call from the
// control thread while a search runs on its workers.
func (p *Protocol) stopSearch() {
	p.stop.Store(true)
	if p.cancel != nil {
		p.cancel()
	}
}

// drain blocks until any in-flight search has fully finished. Commands
// that mutate shared structures call this first; exclusivity is by
// turn-taking, not locking, since at most one search is in flight.
func (p *Protocol) drain() {
	if p.searchDone != nil {
		<-p.searchDone
		p.searchDone = nil
		p.cancel = nil
	}
}

// syncWriter serializes whole protocol lines onto the response stream.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newSyncWriter(w io.Writer) *syncWriter {
	return &syncWriter{w: w}
}

func (sw *syncWriter) Println(s string) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	fmt.Fprintln(sw.w, s)
}

func (sw *syncWriter) Printf(format string, args ...interface{}) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	fmt.Fprintf(sw.w, format, args...)
}
