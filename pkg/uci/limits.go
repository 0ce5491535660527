package uci

import (
	"strconv"

	"github.com/meridianchess/meridian/pkg/common"
)

// parseLimits consumes the tokens after "go". Every keyword eats a fixed
// number of following tokens; unknown keywords are skipped; a numeric
// conversion failure leaves the field unset. "searchmoves" must come
// last: everything after it is decoded as a move against pos and keyword
// matching stops.
func parseLimits(args []string, pos *common.Position) common.LimitsType {
	var result common.LimitsType
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "searchmoves":
			for i++; i < len(args); i++ {
				if m := common.ParseMoveUCI(pos, args[i]); m != common.MoveEmpty {
					result.SearchMoves = append(result.SearchMoves, m)
				}
			}
		case "wtime":
			result.WhiteTime = nextInt(args, &i)
		case "btime":
			result.BlackTime = nextInt(args, &i)
		case "winc":
			result.WhiteIncrement = nextInt(args, &i)
		case "binc":
			result.BlackIncrement = nextInt(args, &i)
		case "movestogo":
			result.MovesToGo = nextInt(args, &i)
		case "depth":
			result.Depth = nextInt(args, &i)
		case "nodes":
			result.Nodes = nextInt(args, &i)
		case "mate":
			result.Mate = nextInt(args, &i)
		case "movetime":
			result.MoveTime = nextInt(args, &i)
		case "perft":
			result.Perft = nextInt(args, &i)
		case "infinite":
			result.Infinite = true
		case "ponder":
			result.Ponder = true
		}
	}
	return result
}

func nextInt(args []string, i *int) int {
	if *i+1 >= len(args) {
		return 0
	}
	*i++
	var n, _ = strconv.Atoi(args[*i])
	return n
}
