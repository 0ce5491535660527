package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridianchess/meridian/pkg/common"
	"github.com/meridianchess/meridian/pkg/eval"
)

func newTestEngine() *Engine {
	var e = NewEngine(eval.NewEvaluationService())
	e.Hash = 8
	e.Threads = 2
	return e
}

func searchFEN(t *testing.T, e *Engine, fen string, limits common.LimitsType) common.SearchInfo {
	t.Helper()
	var p, err = common.NewPositionFromFEN(fen)
	require.NoError(t, err)
	return e.Search(context.Background(), common.SearchParams{
		Position: p,
		History:  []uint64{p.Key},
		Limits:   limits,
	})
}

func TestSearchMate(t *testing.T) {
	var tests = []struct {
		fen      string
		bestmove string
		mateIn   int
	}{
		// Back rank mate in one.
		{"6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1", "d1d8", 1},
		// Two rooks ladder, mate in two. Either rook lift mates, so only
		// the score is pinned down.
		{"7k/8/8/8/8/8/R7/1R5K w - - 0 1", "", 2},
	}
	for _, test := range tests {
		var e = newTestEngine()
		var result = searchFEN(t, e, test.fen, common.LimitsType{Depth: 6})
		require.NotEmpty(t, result.MainLine, test.fen)
		if test.bestmove != "" {
			require.Equal(t, test.bestmove, result.MainLine[0].String(), test.fen)
		}
		require.Equal(t, winIn(2*test.mateIn-1), result.Score, test.fen)
	}
}

func TestSearchMatedPosition(t *testing.T) {
	// Checkmated side to move has no moves at all.
	var e = newTestEngine()
	var result = searchFEN(t, e, "6k1/5ppp/8/8/8/8/8/3R2K1 b - - 0 1",
		common.LimitsType{Depth: 4})
	require.NotEmpty(t, result.MainLine)

	result = searchFEN(t, e, "3R2k1/5ppp/8/8/8/8/8/6K1 b - - 0 1",
		common.LimitsType{Depth: 4})
	require.Empty(t, result.MainLine)
}

func TestSearchSingleReply(t *testing.T) {
	// Only Kg8-h7 escapes the check, no iteration needed.
	var e = newTestEngine()
	var result = searchFEN(t, e, "3R2k1/5pp1/7p/8/8/8/8/6K1 b - - 0 1",
		common.LimitsType{Depth: 8})
	require.Len(t, result.MainLine, 1)
	require.Equal(t, "g8h7", result.MainLine[0].String())
}

func TestSearchRespectsSearchMoves(t *testing.T) {
	var p, err = common.NewPositionFromFEN(common.InitialPositionFen)
	require.NoError(t, err)
	var only = common.ParseMoveUCI(&p, "a2a3")
	var e = newTestEngine()
	var result = e.Search(context.Background(), common.SearchParams{
		Position: p,
		History:  []uint64{p.Key},
		Limits:   common.LimitsType{Depth: 4, SearchMoves: []common.Move{only}},
	})
	require.Equal(t, only, result.MainLine[0])
}

func TestSearchCancellation(t *testing.T) {
	var ctx, cancel = context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	var p, err = common.NewPositionFromFEN(common.InitialPositionFen)
	require.NoError(t, err)
	var e = newTestEngine()
	var start = time.Now()
	var result = e.Search(ctx, common.SearchParams{
		Position: p,
		History:  []uint64{p.Key},
		Limits:   common.LimitsType{Infinite: true},
	})
	require.Less(t, time.Since(start), 5*time.Second)
	require.NotEmpty(t, result.MainLine)
}

func TestSearchAvoidsRepetitionWhenWinning(t *testing.T) {
	// White is a queen up; shuffling into a repeated position scores 0,
	// so the draw detector must steer away from it.
	var fen = "8/8/8/8/8/1k6/3Q4/3K4 w - - 0 1"
	var e = newTestEngine()
	var result = searchFEN(t, e, fen, common.LimitsType{Depth: 5})
	require.NotEmpty(t, result.MainLine)
	require.Greater(t, result.Score, 200)
}

func TestTransTableRoundTrip(t *testing.T) {
	var tt = newTransTable(1)
	var key = uint64(0x123456789abcdef)
	var move = common.MakeMove(common.SquareE2, common.SquareE4)
	tt.Update(key, 7, 42, boundExact, move)

	var depth, score, bound, gotMove, ok = tt.Read(key)
	require.True(t, ok)
	require.Equal(t, 7, depth)
	require.Equal(t, 42, score)
	require.Equal(t, boundExact, bound)
	require.Equal(t, move, gotMove)

	_, _, _, _, ok = tt.Read(key ^ 0xffff0000ffff0000)
	require.False(t, ok)
}

func TestValueToFromTT(t *testing.T) {
	for _, v := range []int{0, 250, winIn(12), lossIn(7)} {
		for _, height := range []int{0, 3, 40} {
			require.Equal(t, v, valueFromTT(valueToTT(v, height), height))
		}
	}
}

func TestTimeControlSmart(t *testing.T) {
	var soft, hard = timeControlSmart(60000, 0, 0)
	require.Greater(t, soft, 0)
	require.GreaterOrEqual(t, hard, soft)
	require.LessOrEqual(t, hard, 60000)
}
