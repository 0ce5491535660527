package uci

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridianchess/meridian/pkg/common"
)

func TestMaterialCount(t *testing.T) {
	var p, err = common.NewPositionFromFEN(common.InitialPositionFen)
	require.NoError(t, err)
	require.Equal(t, 78, MaterialCount(&p))

	var kk, _ = common.NewPositionFromFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	require.Equal(t, 0, MaterialCount(&kk))
}

func TestToCentipawns(t *testing.T) {
	for _, material := range []int{0, 10, 42, 58, 78, 100} {
		require.Equal(t, 0, ToCentipawns(0, material))
	}
	// The normalization divides by a positive polynomial, so the sign
	// survives and the mapping is monotone.
	require.Greater(t, ToCentipawns(300, 58), ToCentipawns(100, 58))
	require.Less(t, ToCentipawns(-100, 58), 0)
}

func TestWDLSumsToThousand(t *testing.T) {
	for _, v := range []int{-800, -250, 0, 1, 120, 500, 2000} {
		for _, material := range []int{10, 40, 58, 78} {
			var win, draw, loss = WDL(v, material)
			require.Equal(t, 1000, win+draw+loss)
			require.GreaterOrEqual(t, win, 0)
			require.GreaterOrEqual(t, loss, 0)
		}
	}
	var win, _, loss = WDL(0, 58)
	require.Equal(t, win, loss)

	var bigWin, _, _ = WDL(1000, 58)
	var smallWin, _, _ = WDL(100, 58)
	require.Greater(t, bigWin, smallWin)
}

func TestScoreString(t *testing.T) {
	var tests = []struct {
		v    int
		want string
	}{
		{0, "cp 0"},
		{common.ValueTB, "cp 20000"},
		{common.ValueTB - 5, "cp 19995"},
		{-(common.ValueTB - 5), "cp -19995"},
		{common.ValueTBWinInMaxPly, "cp " + strconv.Itoa(20000-common.MaxPly)},
		{common.ValueMate - 1, "mate 1"},
		{common.ValueMate - 2, "mate 1"},
		{common.ValueMate - 3, "mate 2"},
		{-(common.ValueMate - 2), "mate -1"},
		{-(common.ValueMate - 4), "mate -2"},
		{common.ValueMateInMaxPly, "mate " + strconv.Itoa((common.MaxPly+1)/2)},
	}
	for _, test := range tests {
		require.Equal(t, test.want, ScoreString(test.v, 58), "value %v", test.v)
	}
}
