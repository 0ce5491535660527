package engine

import (
	"context"
	"sync"
	"time"

	"github.com/meridianchess/meridian/pkg/common"
)

// timeManager turns the limits of one search into a soft checkpoint and
// a hard deadline. The soft limit is consulted between iterations; the
// hard limit cancels the search context outright.
//
// In ponder mode the clock is not armed until PonderHit: the search
// runs free on the opponent's time and converts to a normal timed
// search the moment the predicted move is played.
type timeManager struct {
	start    time.Time
	softTime time.Duration

	mu       sync.Mutex
	hardTime time.Duration
	armed    bool
	cancel   context.CancelFunc
	timer    *time.Timer
}

func newTimeManager(ctx context.Context, limits common.LimitsType,
	overheadMs int, side bool) (*timeManager, context.Context, context.CancelFunc) {
	var main, increment int
	if side {
		main, increment = limits.WhiteTime, limits.WhiteIncrement
	} else {
		main, increment = limits.BlackTime, limits.BlackIncrement
	}

	var softMs, hardMs int
	if limits.MoveTime > 0 {
		hardMs = limits.MoveTime - overheadMs
	} else if main > 0 {
		softMs, hardMs = timeControlSmart(main, increment, limits.MovesToGo)
		hardMs -= overheadMs
	}

	ctx, cancel := context.WithCancel(ctx)
	var tm = &timeManager{
		start:    time.Now(),
		softTime: time.Duration(softMs) * time.Millisecond,
		hardTime: time.Duration(common.Max(1, hardMs)) * time.Millisecond,
		cancel:   cancel,
	}
	if hardMs > 0 && !limits.Ponder {
		tm.arm()
	}
	return tm, ctx, cancel
}

// arm starts the hard deadline. Idempotent.
func (tm *timeManager) arm() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tm.armed {
		return
	}
	tm.armed = true
	tm.start = time.Now()
	tm.timer = time.AfterFunc(tm.hardTime, tm.cancel)
}

// OnPonderHit converts a pondering search into a timed one.
func (tm *timeManager) OnPonderHit() {
	tm.arm()
}

func (tm *timeManager) Close() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tm.timer != nil {
		tm.timer.Stop()
	}
}

func (tm *timeManager) Elapsed() time.Duration {
	return time.Since(tm.start)
}

func (tm *timeManager) IsSoftTimeout() bool {
	tm.mu.Lock()
	var armed = tm.armed
	tm.mu.Unlock()
	return armed && tm.softTime > 0 && time.Since(tm.start) >= tm.softTime
}

func timeControlSmart(main, inc, moves int) (softLimit, hardLimit int) {
	const (
		movesToGo       = 35
		lastMoveReserve = 300
	)

	if moves == 0 || moves > movesToGo {
		moves = movesToGo
	}

	main = common.Max(1, main-lastMoveReserve)
	var maxLimit = main
	if moves > 1 {
		maxLimit = common.Min(maxLimit, main/2+inc)
	}

	var safeMoves = 1 + float64(moves-1)*1.41
	softLimit = int(float64(main)/safeMoves) + inc
	hardLimit = softLimit * 4

	softLimit = common.Max(1, common.Min(maxLimit, softLimit))
	hardLimit = common.Max(1, common.Min(maxLimit, hardLimit))

	return
}
