package uci

import (
	"bytes"
	"context"
	"io"
	"log"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridianchess/meridian/pkg/common"
	"github.com/meridianchess/meridian/pkg/eval"
	"github.com/meridianchess/meridian/pkg/tb"
)

type fakeEngine struct {
	result      common.SearchInfo
	waitForStop bool
	prepares    int32
	clears      int32
	ponderHits  int32
	searches    int32
}

func (f *fakeEngine) Prepare() { atomic.AddInt32(&f.prepares, 1) }
func (f *fakeEngine) Clear()   { atomic.AddInt32(&f.clears, 1) }
func (f *fakeEngine) Search(ctx context.Context, sp common.SearchParams) common.SearchInfo {
	atomic.AddInt32(&f.searches, 1)
	if f.waitForStop {
		<-ctx.Done()
	}
	return f.result
}
func (f *fakeEngine) PonderHit()                     { atomic.AddInt32(&f.ponderHits, 1) }
func (f *fakeEngine) ExportNet(files []string) error { return nil }

func newTestProtocol(eng Engine) (*Protocol, *bytes.Buffer) {
	var buf = &bytes.Buffer{}
	var p = New("TestEngine", "tester", "0.0", eng,
		eval.NewEvaluationService(), tb.NewRegistry(), nil)
	p.out = newSyncWriter(buf)
	p.logger = log.New(io.Discard, "", 0)
	return p, buf
}

func TestUciCommand(t *testing.T) {
	var p, buf = newTestProtocol(&fakeEngine{})
	require.False(t, p.dispatch("uci"))
	var out = buf.String()
	require.Contains(t, out, "id name TestEngine 0.0")
	require.Contains(t, out, "id author tester")
	require.Contains(t, out, "option name Ponder type check default false")
	require.Contains(t, out, "option name SyzygyPath type string default <empty>")
	require.True(t, strings.HasSuffix(strings.TrimSpace(out), "uciok"))
}

func TestIsReady(t *testing.T) {
	var eng = &fakeEngine{}
	var p, buf = newTestProtocol(eng)
	p.dispatch("isready")
	require.Equal(t, "readyok\n", buf.String())
	require.Equal(t, int32(1), atomic.LoadInt32(&eng.prepares))
}

func TestPositionCommand(t *testing.T) {
	var p, _ = newTestProtocol(&fakeEngine{})

	p.dispatch("position startpos moves e2e4 e7e5")
	require.Equal(t,
		"rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2",
		p.pos.String())
	require.Len(t, p.states.Keys(), 3)

	var fen = "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1"
	p.dispatch("position fen " + fen)
	require.Equal(t, fen, p.pos.String())

	p.dispatch("position fen " + fen + " moves b4b1")
	require.Equal(t, 1, p.states.Depth())
}

// Replay stops silently at the first token that does not decode to a
// legal move; everything before it stays applied.
func TestPositionCommandTruncatesOnBadMove(t *testing.T) {
	var p, _ = newTestProtocol(&fakeEngine{})
	p.dispatch("position startpos moves e2e4 e9e4 d2d4")
	require.Equal(t, 1, p.states.Depth())
	require.Equal(t,
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		p.pos.String())
}

func TestSetOption(t *testing.T) {
	var p, _ = newTestProtocol(&fakeEngine{})

	p.dispatch("setoption name UCI_ShowWDL value true")
	require.True(t, p.showWDL)

	p.dispatch("setoption name Ponder value true")
	require.True(t, p.ponderAllowed)

	// Option names match case-insensitively.
	p.dispatch("setoption name uci_chess960 value true")
	require.True(t, p.chess960)
	require.True(t, p.pos.Chess960)

	// Unknown options are reported, not fatal.
	p.dispatch("setoption name NoSuchOption value 1")
}

func TestGoBestmove(t *testing.T) {
	var eng = &fakeEngine{
		result: common.SearchInfo{
			Depth: 3,
			Score: 35,
			MainLine: []common.Move{
				common.MakeMove(common.SquareE2, common.SquareE4),
				common.MakeMove(common.SquareE7, common.SquareE5),
			},
		},
	}
	var p, buf = newTestProtocol(eng)
	p.dispatch("go depth 3")
	p.drain()
	var out = buf.String()
	require.Contains(t, out, "info depth 3 score cp ")
	require.Contains(t, out, "bestmove e2e4 ponder e7e5")
}

func TestGoStopInfinite(t *testing.T) {
	var eng = &fakeEngine{
		waitForStop: true,
		result: common.SearchInfo{
			Depth:    1,
			MainLine: []common.Move{common.MakeMove(common.SquareG1, common.SquareF3)},
		},
	}
	var p, buf = newTestProtocol(eng)
	p.dispatch("go infinite")
	p.dispatch("stop")
	p.drain()
	require.Contains(t, buf.String(), "bestmove g1f3")
}

func TestPonderHitForwarded(t *testing.T) {
	var eng = &fakeEngine{}
	var p, _ = newTestProtocol(eng)
	p.dispatch("ponderhit")
	require.Equal(t, int32(1), atomic.LoadInt32(&eng.ponderHits))
}

func TestNewGameClearsEngine(t *testing.T) {
	var eng = &fakeEngine{}
	var p, _ = newTestProtocol(eng)
	p.dispatch("ucinewgame")
	require.Equal(t, int32(1), atomic.LoadInt32(&eng.clears))
}

func TestUnknownCommand(t *testing.T) {
	var p, buf = newTestProtocol(&fakeEngine{})
	p.dispatch("frobnicate the board")
	require.Contains(t, buf.String(),
		"Unknown command: 'frobnicate the board'. Type help for more information.")

	buf.Reset()
	p.dispatch("# just a comment")
	p.dispatch("   ")
	require.Empty(t, buf.String())
}

func TestQuit(t *testing.T) {
	var p, _ = newTestProtocol(&fakeEngine{})
	require.True(t, p.dispatch("quit"))
}

func TestFlip(t *testing.T) {
	var p, _ = newTestProtocol(&fakeEngine{})
	p.dispatch("position fen 4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	p.dispatch("flip")
	require.Equal(t, "4k3/4p3/8/8/8/8/8/4K3 b - - 0 1", p.pos.String())
}

func TestGoPerft(t *testing.T) {
	var p, buf = newTestProtocol(&fakeEngine{})
	p.dispatch("go perft 2")
	var out = buf.String()
	require.Contains(t, out, "e2e4: 20")
	require.Contains(t, out, "Nodes searched: 400")
}

func TestBoardCommand(t *testing.T) {
	var p, buf = newTestProtocol(&fakeEngine{})
	p.dispatch("d")
	var out = buf.String()
	require.Contains(t, out, "Fen: "+common.InitialPositionFen)
	require.Contains(t, out, "Key: ")
	require.Contains(t, out, "Checkers:")
}
