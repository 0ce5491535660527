package uci

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRearrangeUsage(t *testing.T) {
	var p, buf = newTestProtocol(&fakeEngine{})
	var fen = p.pos.String()

	p.dispatch("rearrange")
	require.Contains(t, buf.String(), "usage: rearrange <mode>")
	require.Equal(t, fen, p.pos.String())

	buf.Reset()
	p.dispatch("rearrange 3")
	require.Contains(t, buf.String(), "usage: rearrange <mode>")

	// The verb itself matches case-insensitively.
	buf.Reset()
	p.dispatch("ReArrange bogus")
	require.Contains(t, buf.String(), "usage: rearrange <mode>")
}

// Mode 1 walks every placement with make/unmake, so the live position
// must come back bit for bit.
func TestRearrangeFreeRestoresPosition(t *testing.T) {
	var p, buf = newTestProtocol(&fakeEngine{})
	var fen = "4k3/8/8/8/8/8/8/RNBQK3 w - - 0 1"
	p.dispatch("position fen " + fen)
	var key = p.pos.Key

	p.dispatch("rearrange 1")
	require.Equal(t, fen, p.pos.String())
	require.Equal(t, key, p.pos.Key)
	require.Contains(t, buf.String(), "Best eval is ")
}

// Placing all four pieces on central squares must beat leaving them on
// the back rank, so the reported placement differs from the original.
func TestRearrangeFreeFindsImprovement(t *testing.T) {
	var p, buf = newTestProtocol(&fakeEngine{})
	var fen = "4k3/8/8/8/8/8/8/RNBQK3 w - - 0 1"
	p.dispatch("position fen " + fen)

	p.dispatch("rearrange 1")
	var out = buf.String()
	require.Contains(t, out, "Best eval is ")
	require.NotContains(t, out, "Fen: "+fen)
}

func TestRearrangeLegalRestoresPosition(t *testing.T) {
	var p, buf = newTestProtocol(&fakeEngine{})
	var fen = "4k3/8/8/8/8/8/8/N3K3 w - - 0 1"
	p.dispatch("position fen " + fen)
	var key = p.pos.Key

	p.dispatch("rearrange 2")
	require.Equal(t, fen, p.pos.String())
	require.Equal(t, key, p.pos.Key)
	require.Contains(t, buf.String(), "Best eval is ")
}

// With fewer than four movable pieces mode 1 has nothing to enumerate;
// the floor value is still reported.
func TestRearrangeFreeTooFewPieces(t *testing.T) {
	var p, buf = newTestProtocol(&fakeEngine{})
	p.dispatch("position fen 4k3/8/8/8/8/8/8/N3K3 w - - 0 1")
	p.dispatch("rearrange 1")
	require.Contains(t, buf.String(), "Best eval is 0.00")
	require.Contains(t, buf.String(), "no rearrangement found")
}

// A chain move may give check, and the forced turn flip would then
// leave the opponent's king en prise on the next ply. Those branches
// are pruned, so the walk must neither fault nor disturb the position.
func TestRearrangeLegalPrunesCheckingMoves(t *testing.T) {
	var p, buf = newTestProtocol(&fakeEngine{})
	var fen = "4k3/8/8/3p4/8/8/8/3RK3 w - - 0 1"
	p.dispatch("position fen " + fen)
	var key = p.pos.Key

	require.NotPanics(t, func() { p.dispatch("rearrange 2") })
	require.Equal(t, fen, p.pos.String())
	require.Equal(t, key, p.pos.Key)
	require.Contains(t, buf.String(), "Best eval is ")
}

// Plain captures are legitimate chain moves: winning the loose pawn
// beats any shuffle that leaves it on the board, so the reported best
// configuration has no black pawn left.
func TestRearrangeLegalTriesCaptures(t *testing.T) {
	var p, buf = newTestProtocol(&fakeEngine{})
	var fen = "4k3/8/8/p7/8/8/8/R3K3 w - - 0 1"
	p.dispatch("position fen " + fen)
	p.dispatch("rearrange 2")
	require.Equal(t, fen, p.pos.String())

	var fenLine string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "Fen: ") {
			fenLine = line
		}
	}
	require.NotEmpty(t, fenLine)
	require.NotContains(t, fenLine, "p")
}
