package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// https://www.chessprogramming.org/Perft_Results
func TestPerft(t *testing.T) {
	var tests = []struct {
		fen   string
		depth int
		nodes int64
	}{
		{InitialPositionFen, 5, 4865609},
		{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -", 4, 4085603},
		{"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -", 5, 674624},
		{"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", 4, 422333},
		{"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8", 4, 2103487},
		{"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10", 4, 3894594},
	}
	for _, test := range tests {
		var p, err = NewPositionFromFEN(test.fen)
		require.NoError(t, err, test.fen)
		var nodes = Perft(&p, test.depth)
		require.Equal(t, test.nodes, nodes, test.fen)
	}
}

// Perft walks the tree in place, so afterwards the position must be the
// one we started from.
func TestPerftRestoresPosition(t *testing.T) {
	var fen = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	var p, err = NewPositionFromFEN(fen)
	require.NoError(t, err)
	var key = p.Key
	Perft(&p, 3)
	require.Equal(t, fen, p.String())
	require.Equal(t, key, p.Key)
}
