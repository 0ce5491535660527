package common

import "fmt"

// StateStack owns the undo frames behind the single live position. Frames
// are addressed by depth: frame 0 is the root staged by Rebuild, frame i>0
// belongs to the i-th applied move. Apply and Revert must nest in strict
// LIFO order; violating that is a programming error and panics.
type StateStack struct {
	pos    *Position
	frames []StateFrame
	moves  []Move
	raws   []bool
}

func NewStateStack(pos *Position) *StateStack {
	return &StateStack{
		pos:    pos,
		frames: []StateFrame{{}},
		moves:  []Move{MoveEmpty},
		raws:   []bool{false},
	}
}

func (st *StateStack) Position() *Position {
	return st.pos
}

// Depth is the number of moves currently applied atop the root.
func (st *StateStack) Depth() int {
	return len(st.frames) - 1
}

// Apply pushes a frame and mutates the live position. Returns false and
// leaves everything untouched when the move is illegal.
func (st *StateStack) Apply(m Move) bool {
	st.frames = append(st.frames, StateFrame{})
	if !st.pos.MakeMove(m, &st.frames[len(st.frames)-1]) {
		st.frames = st.frames[:len(st.frames)-1]
		return false
	}
	st.moves = append(st.moves, m)
	st.raws = append(st.raws, false)
	return true
}

// ApplyRaw pushes a frame for a relocation applied without legality
// checking.
func (st *StateStack) ApplyRaw(m Move) {
	st.frames = append(st.frames, StateFrame{})
	st.pos.MakeRawMove(m, &st.frames[len(st.frames)-1])
	st.moves = append(st.moves, m)
	st.raws = append(st.raws, true)
}

// Revert pops the most recent frame and restores the prior state.
func (st *StateStack) Revert(m Move) {
	if len(st.frames) <= 1 {
		panic("revert past the root frame")
	}
	if st.moves[len(st.moves)-1] != m {
		panic(fmt.Sprintf("revert out of order: %v applied, %v reverted",
			st.moves[len(st.moves)-1], m))
	}
	if st.raws[len(st.raws)-1] {
		st.pos.UnmakeRawMove(m, &st.frames[len(st.frames)-1])
	} else {
		st.pos.UnmakeMove(m, &st.frames[len(st.frames)-1])
	}
	st.frames = st.frames[:len(st.frames)-1]
	st.moves = st.moves[:len(st.moves)-1]
	st.raws = st.raws[:len(st.raws)-1]
}

// Rebuild discards all frames and resets the live position from a FEN,
// staging a fresh root frame. The chess960 flag survives the rebuild.
func (st *StateStack) Rebuild(fen string) error {
	var chess960 = st.pos.Chess960
	var p, err = NewPositionFromFEN(fen)
	if err != nil {
		return err
	}
	p.Chess960 = chess960
	*st.pos = p
	st.frames = st.frames[:0]
	st.frames = append(st.frames, StateFrame{})
	st.moves = st.moves[:0]
	st.moves = append(st.moves, MoveEmpty)
	st.raws = st.raws[:0]
	st.raws = append(st.raws, false)
	return nil
}

// Keys returns the zobrist keys of every position from the root to the
// current one, oldest first, current last.
func (st *StateStack) Keys() []uint64 {
	var keys = make([]uint64, 0, len(st.frames))
	for _, frame := range st.frames[1:] {
		keys = append(keys, frame.Key)
	}
	return append(keys, st.pos.Key)
}
