package uci

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridianchess/meridian/pkg/common"
)

func parseGoLine(t *testing.T, line string) common.LimitsType {
	t.Helper()
	var p, err = common.NewPositionFromFEN(common.InitialPositionFen)
	require.NoError(t, err)
	return parseLimits(strings.Fields(line), &p)
}

func TestParseLimits(t *testing.T) {
	var limits = parseGoLine(t, "wtime 300000 btime 300000 winc 2000 binc 2000 movestogo 40")
	require.Equal(t, 300000, limits.WhiteTime)
	require.Equal(t, 300000, limits.BlackTime)
	require.Equal(t, 2000, limits.WhiteIncrement)
	require.Equal(t, 2000, limits.BlackIncrement)
	require.Equal(t, 40, limits.MovesToGo)
	require.False(t, limits.Infinite)

	limits = parseGoLine(t, "depth 12 nodes 500000 mate 3 movetime 4000")
	require.Equal(t, 12, limits.Depth)
	require.Equal(t, 500000, limits.Nodes)
	require.Equal(t, 3, limits.Mate)
	require.Equal(t, 4000, limits.MoveTime)

	limits = parseGoLine(t, "infinite")
	require.True(t, limits.Infinite)

	limits = parseGoLine(t, "ponder wtime 60000 btime 60000")
	require.True(t, limits.Ponder)

	limits = parseGoLine(t, "perft 5")
	require.Equal(t, 5, limits.Perft)
}

func TestParseLimitsSearchMoves(t *testing.T) {
	var limits = parseGoLine(t, "depth 8 searchmoves e2e4 d2d4 e2e5")
	require.Equal(t, 8, limits.Depth)
	// The illegal e2e5 is dropped; the rest decode in order.
	require.Equal(t, []common.Move{
		common.MakeMove(common.SquareE2, common.SquareE4),
		common.MakeMove(common.SquareD2, common.SquareD4),
	}, limits.SearchMoves)

	// Keywords after searchmoves are treated as move tokens, not limits.
	limits = parseGoLine(t, "searchmoves e2e4 depth 12")
	require.Len(t, limits.SearchMoves, 1)
	require.Equal(t, 0, limits.Depth)
}

func TestParseLimitsTolerance(t *testing.T) {
	// Trailing keyword without a value and junk tokens leave fields unset.
	var limits = parseGoLine(t, "depth")
	require.Equal(t, 0, limits.Depth)

	limits = parseGoLine(t, "bogus 42 movetime notanumber")
	require.Equal(t, 0, limits.MoveTime)
}
