package eval

import (
	"github.com/meridianchess/meridian/pkg/common"
)

const (
	sideWhite = iota
	sideBlack
)

const (
	minorPhase = 4
	rookPhase  = 6
	queenPhase = 12
	totalPhase = 2 * (4*minorPhase + 2*rookPhase + queenPhase)
)

const darkSquares = uint64(0xAA55AA55AA55AA55)

var materialScores = [common.King + 1]Score{
	common.Pawn:   S(90, 110),
	common.Knight: S(320, 300),
	common.Bishop: S(330, 320),
	common.Queen:  S(950, 940),
	common.Rook:   S(480, 520),
}

// EvaluationService is a classical tapered material and piece-square
// evaluation. The tables are generated from a handful of positional
// terms rather than tuned square by square.
type EvaluationService struct {
	pst        [2][common.King + 1][64]Score
	bishopPair Score
	tempo      Score
	pieceCount [2][common.King + 1]int
	force      [2]int
}

func NewEvaluationService() *EvaluationService {
	var es = &EvaluationService{
		bishopPair: S(30, 45),
		tempo:      S(12, 6),
	}
	for piece := common.Pawn; piece <= common.King; piece++ {
		for sq := 0; sq < 64; sq++ {
			var s = materialScores[piece] + squareBonus(piece, sq)
			es.pst[sideWhite][piece][sq] = s
			es.pst[sideBlack][piece][common.FlipSquare(sq)] = s
		}
	}
	return es
}

// squareBonus derives the positional part of a white piece on sq from
// centralization and advancement.
func squareBonus(piece, sq int) Score {
	var file = common.File(sq)
	var rank = common.Rank(sq)
	// 0 at the edge, 3 in the center, per axis.
	var fileCenter = 3 - common.Max(file-4, 3-file)
	var rankCenter = 3 - common.Max(rank-4, 3-rank)
	var center = fileCenter + rankCenter

	switch piece {
	case common.Pawn:
		var advance = rank - common.Rank2
		var s = S(2*fileCenter, 6*advance)
		if rank == common.Rank4 || rank == common.Rank5 {
			s += S(6*fileCenter, 0)
		}
		return s
	case common.Knight:
		return S(7*center, 5*center)
	case common.Bishop:
		return S(4*center, 3*center)
	case common.Rook:
		var s = S(2*fileCenter, 0)
		if rank == common.Rank7 {
			s += S(20, 15)
		}
		return s
	case common.Queen:
		return S(2*center, 4*center)
	case common.King:
		// Shelter in the middlegame, activity in the ending.
		var shelter = 0
		if rank == common.Rank1 {
			shelter = 20 - 8*fileCenter
		} else {
			shelter = -12 * (rank - common.Rank1)
		}
		return S(shelter, 8*center)
	}
	return 0
}

func (e *EvaluationService) Evaluate(p *common.Position) int {
	var s Score

	for piece := common.Pawn; piece <= common.King; piece++ {
		e.pieceCount[sideWhite][piece] = 0
		e.pieceCount[sideBlack][piece] = 0
	}

	for x := p.White; x != 0; x &= x - 1 {
		var sq = common.FirstOne(x)
		var piece = p.WhatPiece(sq)
		s += e.pst[sideWhite][piece][sq]
		e.pieceCount[sideWhite][piece]++
	}
	for x := p.Black; x != 0; x &= x - 1 {
		var sq = common.FirstOne(x)
		var piece = p.WhatPiece(sq)
		s -= e.pst[sideBlack][piece][sq]
		e.pieceCount[sideBlack][piece]++
	}

	if e.pieceCount[sideWhite][common.Bishop] >= 2 {
		s += e.bishopPair
	}
	if e.pieceCount[sideBlack][common.Bishop] >= 2 {
		s -= e.bishopPair
	}
	if p.WhiteMove {
		s += e.tempo
	} else {
		s -= e.tempo
	}

	for side := sideWhite; side <= sideBlack; side++ {
		e.force[side] = minorPhase*(e.pieceCount[side][common.Knight]+e.pieceCount[side][common.Bishop]) +
			rookPhase*e.pieceCount[side][common.Rook] +
			queenPhase*e.pieceCount[side][common.Queen]
	}
	var phase = common.Min(e.force[sideWhite]+e.force[sideBlack], totalPhase)

	var result = (s.Middle()*phase + s.End()*(totalPhase-phase)) / totalPhase

	var ocb = e.force[sideWhite] == minorPhase &&
		e.force[sideBlack] == minorPhase &&
		(p.Bishops&darkSquares) != 0 &&
		(p.Bishops & ^darkSquares) != 0
	if result > 0 {
		result /= e.drawishFactor(sideWhite, ocb)
	} else {
		result /= e.drawishFactor(sideBlack, ocb)
	}

	if !p.WhiteMove {
		result = -result
	}
	return result
}

// drawishFactor scales down positions the stronger side cannot
// realistically win, like a bare minor or opposite colored bishops.
func (e *EvaluationService) drawishFactor(side int, ocb bool) int {
	var their = side ^ 1
	if e.force[side] >= queenPhase+rookPhase {
		return 1
	}
	if e.pieceCount[side][common.Pawn] == 0 {
		if e.force[side] <= minorPhase {
			return 16
		}
		if e.force[side]-e.force[their] <= minorPhase {
			return 4
		}
	} else if e.pieceCount[side][common.Pawn] == 1 {
		if e.force[side] <= minorPhase &&
			e.pieceCount[their][common.Knight]+e.pieceCount[their][common.Bishop] != 0 {
			return 8
		}
	} else if ocb && e.pieceCount[side][common.Pawn]-e.pieceCount[their][common.Pawn] <= 2 {
		return 2
	}
	return 1
}
