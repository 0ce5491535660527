package engine

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/meridianchess/meridian/pkg/common"
)

// Evaluator scores a position from the side to move's view on the
// internal value scale.
type Evaluator interface {
	Evaluate(p *common.Position) int
}

// Engine owns the search state shared between workers. Hash, Threads
// and MoveOverhead are plain fields so the protocol layer can bind
// options straight to them; Prepare picks up changes before the next
// search.
type Engine struct {
	Hash         int
	Threads      int
	MoveOverhead int

	evaluator  Evaluator
	transTable *transTable
	history    historyTable
	lines      []*searchLine
	historyRep map[uint64]int
	nodes      int64

	tmMu        sync.Mutex
	timeManager *timeManager
}

func NewEngine(evaluator Evaluator) *Engine {
	return &Engine{
		Hash:         16,
		Threads:      common.Min(runtime.NumCPU(), 16),
		MoveOverhead: 10,
		evaluator:    evaluator,
		history:      newHistoryTable(),
	}
}

// Prepare allocates or resizes the shared tables. Called between
// searches, never during one.
func (e *Engine) Prepare() {
	if e.transTable == nil || e.transTable.megabytes != e.Hash {
		e.transTable = newTransTable(e.Hash)
	}
	if len(e.lines) != e.Threads {
		e.lines = make([]*searchLine, e.Threads)
		for i := range e.lines {
			e.lines[i] = newSearchLine(e, i)
		}
	}
}

// Clear drops all learned state, as for a new game.
func (e *Engine) Clear() {
	if e.transTable != nil {
		e.transTable.Clear()
	}
	e.history.Clear()
	for _, line := range e.lines {
		line.clearKillers()
	}
}

// PonderHit arms the clock of a search started in ponder mode. Called
// from the control thread while the search runs.
func (e *Engine) PonderHit() {
	e.tmMu.Lock()
	var tm = e.timeManager
	e.tmMu.Unlock()
	if tm != nil {
		tm.OnPonderHit()
	}
}

// ExportNet exists for protocol completeness. The evaluator is not a
// network, so there is nothing to write.
func (e *Engine) ExportNet(files []string) error {
	return errors.New("no network to export: evaluation is material and piece tables")
}

func (e *Engine) Search(ctx context.Context, sp common.SearchParams) common.SearchInfo {
	var tm, searchCtx, cancel = newTimeManager(ctx, sp.Limits,
		e.MoveOverhead, sp.Position.WhiteMove)
	defer cancel()
	defer tm.Close()
	e.tmMu.Lock()
	e.timeManager = tm
	e.tmMu.Unlock()

	e.Prepare()
	e.history.Clear()
	e.transTable.PrepareNewSearch()
	atomic.StoreInt64(&e.nodes, 0)
	e.historyRep = make(map[uint64]int, len(sp.History))
	for _, key := range sp.History {
		e.historyRep[key]++
	}
	for _, line := range e.lines {
		line.reset(sp.Position, searchCtx)
		line.nodeLimit = int64(sp.Limits.Nodes)
	}

	var result = e.iterateSearch(searchCtx, sp.Limits, sp.Progress)
	result.Time = tm.Elapsed()
	result.Nodes = atomic.LoadInt64(&e.nodes)

	// In infinite and ponder modes the controller owns termination, so
	// hold the result until it says stop.
	if (sp.Limits.Infinite || sp.Limits.Ponder) && searchCtx.Err() == nil {
		<-searchCtx.Done()
	}
	return result
}

// incNodes counts one visited node and polls for cancellation. The poll
// is amortized to keep atomic traffic off the hot path.
func (l *searchLine) incNodes() {
	l.localNodes++
	if l.localNodes&511 == 0 {
		atomic.AddInt64(&l.engine.nodes, 512)
		if l.ctx.Err() != nil {
			panic(errSearchTimeout)
		}
		if l.nodeLimit > 0 && atomic.LoadInt64(&l.engine.nodes) >= l.nodeLimit {
			panic(errSearchTimeout)
		}
	}
}

var errSearchTimeout = errors.New("search timeout")

func recoverFromSearchTimeout() {
	var r = recover()
	if r != nil && r != errSearchTimeout {
		panic(r)
	}
}
