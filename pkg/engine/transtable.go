package engine

import (
	"sync/atomic"

	"github.com/meridianchess/meridian/pkg/common"
)

const (
	boundLower = 1 << iota
	boundUpper
)

const boundExact = boundLower | boundUpper

// transEntry is 16 bytes. The gate serializes concurrent workers on the
// same slot without a global lock.
type transEntry struct {
	gate     int32
	key32    uint32
	move     common.Move
	score    int16
	depth    int8
	boundGen uint8
}

type transTable struct {
	megabytes  int
	entries    []transEntry
	generation uint8
	mask       uint32
}

func roundPowerOfTwo(size int) int {
	var x = 1
	for (x << 1) <= size {
		x <<= 1
	}
	return x
}

func newTransTable(megabytes int) *transTable {
	var size = roundPowerOfTwo(1024 * 1024 * megabytes / 16)
	return &transTable{
		megabytes: megabytes,
		entries:   make([]transEntry, size),
		mask:      uint32(size - 1),
	}
}

func (tt *transTable) PrepareNewSearch() {
	tt.generation = (tt.generation + 1) & 63
}

func (tt *transTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = transEntry{}
	}
}

func (tt *transTable) Read(key uint64) (depth, score, bound int, move common.Move, ok bool) {
	var entry = &tt.entries[uint32(key)&tt.mask]
	if atomic.CompareAndSwapInt32(&entry.gate, 0, 1) {
		if entry.key32 == uint32(key>>32) {
			entry.boundGen = (entry.boundGen & 3) + (tt.generation << 2)
			score = int(entry.score)
			move = entry.move
			depth = int(entry.depth)
			bound = int(entry.boundGen & 3)
			ok = true
		}
		atomic.StoreInt32(&entry.gate, 0)
	}
	return
}

// Update keeps the deeper entry within a generation and always evicts
// entries from older generations.
func (tt *transTable) Update(key uint64, depth, score, bound int, move common.Move) {
	var entry = &tt.entries[uint32(key)&tt.mask]
	if atomic.CompareAndSwapInt32(&entry.gate, 0, 1) {
		if entry.boundGen>>2 != tt.generation ||
			depth >= int(entry.depth) ||
			entry.key32 == uint32(key>>32) {
			entry.key32 = uint32(key >> 32)
			entry.move = move
			entry.score = int16(score)
			entry.depth = int8(depth)
			entry.boundGen = uint8(bound) + (tt.generation << 2)
		}
		atomic.StoreInt32(&entry.gate, 0)
	}
}
