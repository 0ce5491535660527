package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustStack(t *testing.T, fen string) *StateStack {
	t.Helper()
	var p, err = NewPositionFromFEN(fen)
	require.NoError(t, err)
	return NewStateStack(&p)
}

func TestStateStackApplyRevert(t *testing.T) {
	var st = mustStack(t, InitialPositionFen)
	require.Equal(t, 0, st.Depth())

	var e4 = ParseMoveUCI(st.Position(), "e2e4")
	require.True(t, st.Apply(e4))
	var e5 = ParseMoveUCI(st.Position(), "e7e5")
	require.True(t, st.Apply(e5))
	require.Equal(t, 2, st.Depth())
	require.Equal(t,
		"rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2",
		st.Position().String())

	st.Revert(e5)
	st.Revert(e4)
	require.Equal(t, 0, st.Depth())
	require.Equal(t, InitialPositionFen, st.Position().String())
}

func TestStateStackRejectsIllegal(t *testing.T) {
	var st = mustStack(t, "4k3/8/8/8/8/8/4r3/4K3 w - - 0 1")
	var fen = st.Position().String()
	// Kd2 stays on a square the rook attacks.
	require.False(t, st.Apply(MakeMove(SquareE1, SquareD2)))
	require.Equal(t, 0, st.Depth())
	require.Equal(t, fen, st.Position().String())
}

func TestStateStackRevertPanics(t *testing.T) {
	var st = mustStack(t, InitialPositionFen)
	require.PanicsWithValue(t, "revert past the root frame", func() {
		st.Revert(MakeMove(SquareE2, SquareE4))
	})

	var e4 = ParseMoveUCI(st.Position(), "e2e4")
	require.True(t, st.Apply(e4))
	require.Panics(t, func() {
		st.Revert(MakeMove(SquareD2, SquareD4))
	})
}

func TestStateStackRebuild(t *testing.T) {
	var st = mustStack(t, InitialPositionFen)
	st.Position().Chess960 = true
	require.True(t, st.Apply(ParseMoveUCI(st.Position(), "e2e4")))

	require.Error(t, st.Rebuild("garbage"))

	var fen = "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1"
	require.NoError(t, st.Rebuild(fen))
	require.Equal(t, 0, st.Depth())
	require.Equal(t, fen, st.Position().String())
	require.True(t, st.Position().Chess960)
}

func TestStateStackKeys(t *testing.T) {
	var st = mustStack(t, InitialPositionFen)
	var rootKey = st.Position().Key
	require.Equal(t, []uint64{rootKey}, st.Keys())

	require.True(t, st.Apply(ParseMoveUCI(st.Position(), "g1f3")))
	require.True(t, st.Apply(ParseMoveUCI(st.Position(), "g8f6")))
	var keys = st.Keys()
	require.Len(t, keys, 3)
	require.Equal(t, rootKey, keys[0])
	require.Equal(t, st.Position().Key, keys[2])
}

// Consecutive raw relocations by the same side: the second one is made
// with the opponent formally on move, yet the relocated piece must keep
// its own color throughout.
func TestStateStackApplyRawKeepsColors(t *testing.T) {
	var st = mustStack(t, "4k3/8/8/8/8/8/8/RN2K3 w - - 0 1")
	st.ApplyRaw(MakeMove(SquareB1, SquareD4))
	st.ApplyRaw(MakeMove(SquareA1, SquareE4))
	require.Equal(t, "4k3/8/8/8/3NR3/8/8/4K3 w - - 2 2", st.Position().String())

	st.Revert(MakeMove(SquareA1, SquareE4))
	st.Revert(MakeMove(SquareB1, SquareD4))
	require.Equal(t, "4k3/8/8/8/8/8/8/RN2K3 w - - 0 1", st.Position().String())
}

func TestStateStackApplyRaw(t *testing.T) {
	var st = mustStack(t, InitialPositionFen)
	var m = MakeMove(SquareB1, SquareE5)
	st.ApplyRaw(m)
	require.Equal(t, 1, st.Depth())
	require.False(t, st.Position().WhiteMove)
	st.Revert(m)
	require.Equal(t, InitialPositionFen, st.Position().String())
}
