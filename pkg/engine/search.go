package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/meridianchess/meridian/pkg/common"
)

const maxHeight = 128

func winIn(height int) int {
	return common.ValueMate - height
}

func lossIn(height int) int {
	return -common.ValueMate + height
}

// Mate scores in the table are stored relative to the storing node, so
// they stay correct when read at a different height.
func valueToTT(v, height int) int {
	if v >= winIn(maxHeight) {
		return v + height
	}
	if v <= lossIn(maxHeight) {
		return v - height
	}
	return v
}

func valueFromTT(v, height int) int {
	if v >= winIn(maxHeight) {
		return v - height
	}
	if v <= lossIn(maxHeight) {
		return v + height
	}
	return v
}

// searchLine is one worker's private slice of the tree: its own board,
// undo frames and per-height buffers. Only the transposition and
// history tables are shared.
type searchLine struct {
	engine     *Engine
	thread     int
	ctx        context.Context
	position   common.Position
	frames     []common.StateFrame
	keys       []uint64
	moveBufs   [][]common.Move
	orderBufs  [][]orderedMove
	quietBufs  [][]common.Move
	pvs        [][]common.Move
	killers    [][2]common.Move
	height     int
	localNodes int64
	nodeLimit  int64
}

func newSearchLine(engine *Engine, thread int) *searchLine {
	var l = &searchLine{
		engine:    engine,
		thread:    thread,
		frames:    make([]common.StateFrame, maxHeight+2),
		keys:      make([]uint64, maxHeight+2),
		moveBufs:  make([][]common.Move, maxHeight+2),
		orderBufs: make([][]orderedMove, maxHeight+2),
		quietBufs: make([][]common.Move, maxHeight+2),
		pvs:       make([][]common.Move, maxHeight+2),
		killers:   make([][2]common.Move, maxHeight+2),
	}
	for i := range l.moveBufs {
		l.moveBufs[i] = make([]common.Move, common.MaxMoves)
		l.orderBufs[i] = make([]orderedMove, 0, common.MaxMoves)
		l.quietBufs[i] = make([]common.Move, 0, common.MaxMoves)
		l.pvs[i] = make([]common.Move, 0, maxHeight)
	}
	return l
}

func (l *searchLine) reset(root common.Position, ctx context.Context) {
	l.position = root
	l.ctx = ctx
	l.height = 0
	l.keys[0] = root.Key
	l.localNodes = 0
}

func (l *searchLine) clearKillers() {
	for i := range l.killers {
		l.killers[i] = [2]common.Move{}
	}
}

func (l *searchLine) apply(m common.Move) bool {
	if !l.position.MakeMove(m, &l.frames[l.height]) {
		return false
	}
	l.height++
	l.keys[l.height] = l.position.Key
	return true
}

func (l *searchLine) revert(m common.Move) {
	l.height--
	l.position.UnmakeMove(m, &l.frames[l.height])
}

func (l *searchLine) applyNull() {
	l.position.MakeNullMove(&l.frames[l.height])
	l.height++
	l.keys[l.height] = l.position.Key
}

func (l *searchLine) revertNull() {
	l.height--
	l.position.UnmakeNullMove(&l.frames[l.height])
}

func (l *searchLine) composePV(height int, move common.Move) {
	l.pvs[height] = append(append(l.pvs[height][:0], move), l.pvs[height+1]...)
}

func (l *searchLine) updateKillers(height int, move common.Move) {
	if l.killers[height][0] != move {
		l.killers[height][1] = l.killers[height][0]
		l.killers[height][0] = move
	}
}

func (l *searchLine) isDraw() bool {
	var p = &l.position
	if (p.Pawns|p.Rooks|p.Queens) == 0 &&
		!common.MoreThanOne(p.Knights|p.Bishops) {
		return true
	}
	if p.Rule50 >= 100 {
		return true
	}
	for i := l.height - 1; i >= 0; i-- {
		if l.keys[i] == p.Key {
			return true
		}
	}
	if l.engine.historyRep[p.Key] >= 2 {
		return true
	}
	return false
}

func isLateEndgame(p *common.Position, side bool) bool {
	var ownPieces = p.PiecesByColor(side)
	return ((p.Rooks|p.Queens)&ownPieces) == 0 &&
		!common.MoreThanOne((p.Knights|p.Bishops)&ownPieces)
}

func (e *Engine) iterateSearch(ctx context.Context, limits common.LimitsType,
	progress func(common.SearchInfo)) (result common.SearchInfo) {
	defer recoverFromSearchTimeout()
	defer func() {
		for _, l := range e.lines {
			atomic.AddInt64(&e.nodes, l.localNodes&511)
		}
	}()

	var mainLine = e.lines[0]
	var root = &mainLine.position
	var ml = append([]common.Move(nil),
		common.GenerateLegalMoves(root, mainLine.moveBufs[0])...)
	ml = filterRootMoves(ml, limits.SearchMoves)
	if len(ml) == 0 {
		return
	}
	result.MainLine = []common.Move{ml[0]}
	if len(ml) == 1 {
		result.Depth = 1
		return
	}
	sortRootMoves(mainLine, ml)

	var maxDepth = maxHeight - 1
	if limits.Depth > 0 {
		maxDepth = common.Min(limits.Depth, maxDepth)
	}

	var prevScore int
	for depth := 1; depth <= maxDepth; depth++ {
		var gate sync.Mutex
		var alpha = -common.ValueInfinite
		const beta = common.ValueInfinite
		var bestMoveIndex = 0

		// The first root move establishes the window on the main line
		// before the helpers fan out over the rest.
		{
			var move = ml[0]
			mainLine.apply(move)
			var score = -mainLine.alphaBeta(-beta, -alpha, depth-1)
			mainLine.revert(move)
			alpha = score
			result = common.SearchInfo{
				Depth:    depth,
				Score:    score,
				MainLine: append([]common.Move{move}, mainLine.pvs[1]...),
				Time:     e.timeManager.Elapsed(),
				Nodes:    atomic.LoadInt64(&e.nodes),
			}
			if progress != nil {
				progress(result)
			}
		}

		var index = 1
		var g errgroup.Group
		for t := 0; t < len(e.lines); t++ {
			var line = e.lines[t]
			g.Go(func() error {
				defer recoverFromSearchTimeout()
				for {
					gate.Lock()
					var localAlpha = alpha
					var localIndex = index
					index++
					gate.Unlock()
					if localIndex >= len(ml) {
						return nil
					}
					var move = ml[localIndex]
					line.apply(move)
					var score = -line.alphaBeta(-(localAlpha + 1), -localAlpha, depth-1)
					if score > localAlpha {
						score = -line.alphaBeta(-beta, -localAlpha, depth-1)
					}
					line.revert(move)
					gate.Lock()
					if score > alpha {
						alpha = score
						bestMoveIndex = localIndex
						result = common.SearchInfo{
							Depth:    depth,
							Score:    score,
							MainLine: append([]common.Move{move}, line.pvs[1]...),
							Time:     e.timeManager.Elapsed(),
							Nodes:    atomic.LoadInt64(&e.nodes),
						}
						if progress != nil {
							progress(result)
						}
					}
					gate.Unlock()
				}
			})
		}
		g.Wait()

		if ctx.Err() != nil {
			break
		}
		if alpha >= winIn(depth) || alpha <= lossIn(depth) {
			break
		}
		if limits.Mate > 0 && alpha >= common.ValueMate-2*limits.Mate {
			break
		}
		if limits.Nodes > 0 && atomic.LoadInt64(&e.nodes) >= int64(limits.Nodes) {
			break
		}
		if common.AbsDelta(prevScore, alpha) <= 50 && e.timeManager.IsSoftTimeout() {
			break
		}
		moveToBegin(ml, bestMoveIndex)
		prevScore = alpha
	}
	return
}

func filterRootMoves(ml, allowed []common.Move) []common.Move {
	if len(allowed) == 0 {
		return ml
	}
	var filtered = ml[:0]
	for _, m := range ml {
		for _, a := range allowed {
			if m == a {
				filtered = append(filtered, m)
				break
			}
		}
	}
	return filtered
}

// sortRootMoves orders the root list by shallow quiescence scores so
// the first iteration starts from a sensible candidate.
func sortRootMoves(l *searchLine, ml []common.Move) {
	var list = make([]orderedMove, len(ml))
	for i, m := range ml {
		l.apply(m)
		var score = -l.quiescence(-common.ValueInfinite, common.ValueInfinite, 1)
		l.revert(m)
		list[i] = orderedMove{m, score}
	}
	sortMoves(list)
	for i := range ml {
		ml[i] = list[i].move
	}
}

func moveToBegin(ml []common.Move, index int) {
	if index == 0 {
		return
	}
	var item = ml[index]
	for i := index; i > 0; i-- {
		ml[i] = ml[i-1]
	}
	ml[0] = item
}

func (l *searchLine) alphaBeta(alpha, beta, depth int) int {
	var height = l.height
	l.pvs[height] = l.pvs[height][:0]

	if height >= maxHeight || l.isDraw() {
		return common.ValueDraw
	}

	if depth <= 0 {
		return l.quiescence(alpha, beta, 1)
	}

	l.incNodes()

	var p = &l.position
	var isCheck = p.IsCheck()

	// Mate distance pruning.
	if winIn(height+1) <= alpha {
		return alpha
	}
	if lossIn(height+2) >= beta && !isCheck {
		return beta
	}

	var hashMove = common.MoveEmpty
	if ttDepth, ttScore, ttBound, ttMove, ok := l.engine.transTable.Read(p.Key); ok {
		hashMove = ttMove
		if ttDepth >= depth {
			ttScore = valueFromTT(ttScore, height)
			if ttScore >= beta && (ttBound&boundLower) != 0 {
				return beta
			}
			if ttScore <= alpha && (ttBound&boundUpper) != 0 {
				return alpha
			}
		}
	}

	if depth >= 2 && !isCheck && height > 0 &&
		beta < winIn(maxHeight) &&
		!isLateEndgame(p, p.WhiteMove) {
		var newDepth = depth - 4
		l.applyNull()
		var score int
		if newDepth <= 0 {
			score = -l.quiescence(-beta, -(beta - 1), 1)
		} else {
			score = -l.alphaBeta(-beta, -(beta - 1), newDepth)
		}
		l.revertNull()
		if score >= beta && score < winIn(maxHeight) {
			return beta
		}
	}

	// Internal iterative deepening when the table offers no move.
	if depth >= 4 && hashMove == common.MoveEmpty && beta > alpha+1 {
		l.alphaBeta(alpha, beta, depth-2)
		if len(l.pvs[height]) != 0 {
			hashMove = l.pvs[height][0]
		}
		l.pvs[height] = l.pvs[height][:0]
	}

	var moves = common.GenerateMoves(p, l.moveBufs[height])
	var ordered = l.orderMoves(height, moves, hashMove, l.orderBufs[height])
	l.quietBufs[height] = l.quietBufs[height][:0]
	var moveCount = 0

	for _, om := range ordered {
		var move = om.move
		var quiet = !p.IsCaptureOrPromotion(move)
		var isKiller = move == l.killers[height][0] || move == l.killers[height][1]

		if !l.apply(move) {
			continue
		}
		moveCount++
		var givesCheck = l.position.IsCheck()

		var newDepth = depth - 1
		if givesCheck && depth <= 1 {
			newDepth = depth
		}

		var reduction = 0
		if quiet && moveCount > 4 && depth >= 3 &&
			!isCheck && !givesCheck && !isKiller &&
			alpha > lossIn(maxHeight) {
			reduction = 1
			if moveCount > 12 {
				reduction = 2
			}
		}

		if quiet {
			l.quietBufs[height] = append(l.quietBufs[height], move)
		}

		if reduction > 0 {
			var score = -l.alphaBeta(-(alpha + 1), -alpha, newDepth-reduction)
			if score <= alpha {
				l.revert(move)
				continue
			}
		}

		var score = -l.alphaBeta(-beta, -alpha, newDepth)
		l.revert(move)

		if score > alpha {
			alpha = score
			l.composePV(height, move)
			if alpha >= beta {
				break
			}
		}
	}

	if moveCount == 0 {
		if isCheck {
			return lossIn(height)
		}
		return common.ValueDraw
	}

	var bestMove = common.MoveEmpty
	if len(l.pvs[height]) != 0 {
		bestMove = l.pvs[height][0]
	}

	if bestMove != common.MoveEmpty && !p.IsCaptureOrPromotion(bestMove) {
		l.updateKillers(height, bestMove)
		l.engine.history.Update(p.WhiteMove, l.quietBufs[height], bestMove, depth)
	}

	var bound = 0
	if bestMove != common.MoveEmpty {
		bound |= boundLower
	}
	if alpha < beta {
		bound |= boundUpper
	}
	l.engine.transTable.Update(p.Key, depth, valueToTT(alpha, height), bound, bestMove)

	return alpha
}

func (l *searchLine) quiescence(alpha, beta, depth int) int {
	l.incNodes()
	var height = l.height
	l.pvs[height] = l.pvs[height][:0]
	if height >= maxHeight {
		return common.ValueDraw
	}

	var p = &l.position
	var isCheck = p.IsCheck()
	if !isCheck {
		var eval = l.engine.evaluator.Evaluate(p)
		if eval > alpha {
			alpha = eval
		}
		if eval >= beta {
			return alpha
		}
	}

	var moves = common.GenerateMoves(p, l.moveBufs[height])
	var ordered = l.orderMoves(height, moves, common.MoveEmpty, l.orderBufs[height])
	var moveCount = 0
	for _, om := range ordered {
		var move = om.move
		if !isCheck && !p.IsCaptureOrPromotion(move) {
			continue
		}
		if !l.apply(move) {
			continue
		}
		moveCount++
		var score = -l.quiescence(-beta, -alpha, depth-1)
		l.revert(move)
		if score > alpha {
			alpha = score
			l.composePV(height, move)
			if score >= beta {
				break
			}
		}
	}
	if isCheck && moveCount == 0 {
		return lossIn(height)
	}
	return alpha
}
