package engine

import (
	"sync/atomic"

	"github.com/meridianchess/meridian/pkg/common"
)

// historyTable tracks how often a quiet from-to move raised alpha,
// indexed by side and squares. Shared between workers, hence atomics.
type historyTable []historyEntry

type historyEntry struct {
	success, try int32
}

func newHistoryTable() historyTable {
	return make([]historyEntry, 1<<13)
}

func (ht historyTable) Clear() {
	for i := range ht {
		ht[i] = historyEntry{1, 1}
	}
}

func (ht historyTable) Update(side bool, quietsTried []common.Move, bestMove common.Move, depth int) {
	for _, move := range quietsTried {
		atomic.AddInt32(&ht[sideFromToIndex(side, move)].try, int32(depth))
	}
	atomic.AddInt32(&ht[sideFromToIndex(side, bestMove)].success, int32(depth))
}

func (ht historyTable) Score(side bool, move common.Move) int {
	var entry = ht[sideFromToIndex(side, move)]
	return int((entry.success << 10) / entry.try)
}

func sideFromToIndex(side bool, move common.Move) int {
	var result = (move.From() << 6) | move.To()
	if side {
		result |= 1 << 12
	}
	return result
}
