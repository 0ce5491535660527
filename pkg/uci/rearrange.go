package uci

import (
	"github.com/meridianchess/meridian/pkg/common"
)

// Rearrangement search: exhaustively relocate four of the side to
// move's pieces and report the placement with the best static
// evaluation. Two modes share the report format but differ in what
// counts as a relocation.
//
// Mode 1 lifts any four non-pawn, non-king pieces onto any four empty
// squares of the middle ranks, with no regard for move legality. Mode 2
// restricts relocations to chains of four legal normal moves, forcing
// the same side to move after every step.
//
// Both modes walk the live position with make/unmake, so the position
// observed after the command is bit-identical to the one before it.

func (p *Protocol) rearrangeCommand(fields []string) {
	var mode = ""
	if len(fields) > 0 {
		mode = fields[0]
	}
	p.stop.Store(false)
	switch mode {
	case "1":
		p.rearrangeFree()
	case "2":
		p.rearrangeLegal()
	default:
		p.out.Println("usage: rearrange <mode>")
		p.out.Println("  1: place four pieces freely on empty middle-rank squares")
		p.out.Println("  2: relocate pieces through four consecutive legal moves")
	}
}

// scoreCurrent converts the static evaluation of the live position to
// decimal pawns for side-by-side comparison across placements.
func (p *Protocol) scoreCurrent() float64 {
	var v = p.evaluator.Evaluate(&p.pos)
	return float64(ToCentipawns(v, MaterialCount(&p.pos))) / 100
}

func (p *Protocol) reportRearrangement(best float64, bestFen string) {
	p.out.Printf("Best eval is %.2f (side to move)\n", best)
	if bestFen == "" {
		p.out.Println("info string no rearrangement found")
		return
	}
	var pos, err = common.NewPositionFromFEN(bestFen)
	if err == nil {
		p.printBoard(&pos)
	}
}

// rearrangeFree is mode 1: every 4-subset of movable pieces crossed
// with every 4-subset of empty squares on ranks three through six.
func (p *Protocol) rearrangeFree() {
	var side = p.pos.WhiteMove
	var own = p.pos.PiecesByColor(side)
	var movable = own &^ (p.pos.Pawns | p.pos.Kings)

	var origins []int
	for bb := movable; bb != 0; bb &= bb - 1 {
		origins = append(origins, common.FirstOne(bb))
	}
	var targets []int
	var middle = common.Rank3Mask | common.Rank4Mask | common.Rank5Mask | common.Rank6Mask
	for bb := middle &^ p.pos.AllPieces(); bb != 0; bb &= bb - 1 {
		targets = append(targets, common.FirstOne(bb))
	}
	if len(origins) < 4 || len(targets) < 4 {
		p.reportRearrangement(0, "")
		return
	}

	p.out.Println("info string rearranging 4 pieces across the middle ranks")
	var best float64
	var bestFen string
	var froms [4]int

	var place = func(tos [4]int) {
		for k := 0; k < 4; k++ {
			p.states.ApplyRaw(common.MakeMove(froms[k], tos[k]))
		}
		// Four raw relocations flip the side to move four times, so
		// the original mover is back on turn for the evaluation.
		if v := p.scoreCurrent(); v > best {
			best = v
			bestFen = p.pos.String()
		}
		for k := 3; k >= 0; k-- {
			p.states.Revert(common.MakeMove(froms[k], tos[k]))
		}
	}

	for i1 := 0; i1 < len(origins); i1++ {
		for i2 := i1 + 1; i2 < len(origins); i2++ {
			for i3 := i2 + 1; i3 < len(origins); i3++ {
				for i4 := i3 + 1; i4 < len(origins); i4++ {
					froms = [4]int{origins[i1], origins[i2], origins[i3], origins[i4]}
					for j1 := 0; j1 < len(targets); j1++ {
						if p.stop.Load() {
							p.reportRearrangement(best, bestFen)
							return
						}
						for j2 := j1 + 1; j2 < len(targets); j2++ {
							for j3 := j2 + 1; j3 < len(targets); j3++ {
								for j4 := j3 + 1; j4 < len(targets); j4++ {
									place([4]int{targets[j1], targets[j2], targets[j3], targets[j4]})
								}
							}
						}
					}
				}
			}
		}
	}
	p.reportRearrangement(best, bestFen)
}

// rearrangeLegal is mode 2: depth-first over chains of four legal
// normal moves. After each move the turn is handed back to the original
// side, so all four moves are played by the same player. Promotions,
// castling, en passant and moves landing on the two farthest ranks are
// excluded from the chains; plain captures are not.
func (p *Protocol) rearrangeLegal() {
	p.out.Println("info string rearranging through chains of 4 moves")
	var side = p.pos.WhiteMove
	var best float64
	var bestFen string

	var skip = func(m common.Move) bool {
		if m.Kind() != common.MoveKindNormal {
			return true
		}
		var toRank = common.Rank(m.To())
		if side && toRank >= common.Rank7 {
			return true
		}
		return !side && toRank <= common.Rank2
	}

	var walk func(depth int)
	walk = func(depth int) {
		if p.stop.Load() {
			return
		}
		if depth == 4 {
			if v := p.scoreCurrent(); v > best {
				best = v
				bestFen = p.pos.String()
			}
			return
		}
		var buffer [common.MaxMoves]common.Move
		var moves = append([]common.Move(nil), common.GenerateLegalMoves(&p.pos, buffer[:])...)
		for _, m := range moves {
			if skip(m) {
				continue
			}
			if !p.states.Apply(m) {
				continue
			}
			// A checking move plus the forced turn flip would leave the
			// opponent's king capturable on the next ply; prune it.
			if p.pos.IsCheck() {
				p.states.Revert(m)
				continue
			}
			p.pos.SetSideToMove(side)
			walk(depth + 1)
			p.pos.SetSideToMove(!side)
			p.states.Revert(m)
		}
	}
	walk(0)
	p.reportRearrangement(best, bestFen)
}
