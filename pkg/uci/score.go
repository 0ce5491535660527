package uci

import (
	"fmt"
	"math"

	"github.com/meridianchess/meridian/pkg/common"
)

// MaterialCount weighs the pieces of both sides on the classical scale.
// It is the only positional feature the win-rate model consumes.
func MaterialCount(p *common.Position) int {
	return common.PopCount(p.Pawns) +
		3*common.PopCount(p.Knights) +
		3*common.PopCount(p.Bishops) +
		5*common.PopCount(p.Rooks) +
		9*common.PopCount(p.Queens)
}

// winRateParams returns a = p_a(material) and b = p_b(material). The
// fitted model only uses data for material counts in [10, 78], and is
// anchored at count 58. See github.com/official-stockfish/WDL_model.
func winRateParams(material int) (float64, float64) {
	var m = float64(common.Min(common.Max(material, 10), 78)) / 58.0

	var as = [...]float64{-185.71965483, 504.85014385, -438.58295743, 474.04604627}
	var bs = [...]float64{89.23542728, -137.02141296, 73.28669021, 47.53376190}

	var a = ((as[0]*m+as[1])*m+as[2])*m + as[3]
	var b = ((bs[0]*m+bs[1])*m+bs[2])*m + bs[3]
	return a, b
}

// winRateModel is 1 / (1 + exp((a - v) / b)) in per-mille units.
func winRateModel(v, material int) int {
	var a, b = winRateParams(material)
	return int(0.5 + 1000/(1+math.Exp((a-float64(v))/b)))
}

// ToCentipawns converts an internal value to centipawns, without
// treatment of mate and similar special scores.
func ToCentipawns(v, material int) int {
	var a, _ = winRateParams(material)
	return int(math.Round(100 * float64(v) / a))
}

// ScoreString renders an internal value as a protocol score. Ordinary
// values become centipawns; tablebase scores map into a fixed sentinel
// band around 20000 so they sort above any search score; the rest are
// mate distances in moves.
func ScoreString(v, material int) string {
	var absV = v
	if absV < 0 {
		absV = -absV
	}
	if absV < common.ValueTBWinInMaxPly {
		return fmt.Sprintf("cp %v", ToCentipawns(v, material))
	}
	if absV <= common.ValueTB {
		var ply = common.ValueTB - absV
		if v > 0 {
			return fmt.Sprintf("cp %v", 20000-ply)
		}
		return fmt.Sprintf("cp %v", -20000+ply)
	}
	if v > 0 {
		return fmt.Sprintf("mate %v", (common.ValueMate-v+1)/2)
	}
	return fmt.Sprintf("mate %v", (-common.ValueMate-v)/2)
}

// WDL reports the win/draw/loss expectation in per-mille units. The
// three values sum to 1000 by construction.
func WDL(v, material int) (win, draw, loss int) {
	win = winRateModel(v, material)
	loss = winRateModel(-v, material)
	draw = 1000 - win - loss
	return
}
