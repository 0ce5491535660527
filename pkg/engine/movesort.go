package engine

import (
	"sort"

	"github.com/meridianchess/meridian/pkg/common"
)

type orderedMove struct {
	move common.Move
	key  int
}

func sortMoves(moves []orderedMove) {
	sort.Slice(moves, func(i, j int) bool {
		return moves[i].key > moves[j].key
	})
}

func mvvlva(p *common.Position, m common.Move) int {
	var victim int
	switch m.Kind() {
	case common.MoveKindEnPassant:
		victim = common.Pawn
	default:
		victim = p.WhatPiece(m.To())
	}
	var score = 8*victim - p.WhatPiece(m.From())
	if m.Kind() == common.MoveKindPromotion {
		score += 8 * m.Promotion()
	}
	return score
}

// orderMoves scores a pseudo-legal list in place: hash move first, then
// captures by most valuable victim, then killers, then history.
func (line *searchLine) orderMoves(height int, moves []common.Move,
	hashMove common.Move, buf []orderedMove) []orderedMove {
	var p = &line.position
	var ordered = buf[:0]
	for _, m := range moves {
		var key int
		switch {
		case m == hashMove:
			key = 1 << 30
		case p.IsCaptureOrPromotion(m):
			key = 1<<20 + mvvlva(p, m)
		case m == line.killers[height][0]:
			key = 1<<19 + 1
		case m == line.killers[height][1]:
			key = 1 << 19
		default:
			key = line.engine.history.Score(p.WhiteMove, m)
		}
		ordered = append(ordered, orderedMove{m, key})
	}
	sortMoves(ordered)
	return ordered
}
