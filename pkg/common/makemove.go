package common

// MakeMove applies a move in place, filling frame with everything needed
// to invert it. Returns false (with the position already restored) when
// the move leaves the mover's king attacked.
func (p *Position) MakeMove(m Move, frame *StateFrame) bool {
	p.makeAnyMove(m, frame)
	if !p.isLegal() {
		p.UnmakeMove(m, frame)
		return false
	}
	p.Checkers = p.computeCheckers()
	return true
}

// MakeRawMove relocates the piece on m.From() to the empty square
// m.To() without any legality check. The piece keeps its actual color
// even when it does not belong to the side to move; the side to move
// still flips exactly as for a regular move.
func (p *Position) MakeRawMove(m Move, frame *StateFrame) {
	*frame = StateFrame{
		Captured:     Empty,
		CastleRights: p.CastleRights,
		EpSquare:     p.EpSquare,
		Rule50:       p.Rule50,
		FullMove:     p.FullMove,
		Key:          p.Key,
		Checkers:     p.Checkers,
	}
	if p.EpSquare != SquareNone {
		p.Key ^= enpassantKey[File(p.EpSquare)]
		p.EpSquare = SquareNone
	}

	var from, to = m.From(), m.To()
	var side = (p.White & SquareMask[from]) != 0
	p.movePiece(p.WhatPiece(from), side, from, to)
	p.Rule50++

	var newRights = frame.CastleRights & castleMask[from] & castleMask[to]
	p.Key ^= castlingKey[p.CastleRights^newRights]
	p.CastleRights = newRights

	if !p.WhiteMove {
		p.FullMove++
	}
	p.WhiteMove = !p.WhiteMove
	p.Key ^= sideKey
	p.Checkers = p.computeCheckers()
}

// UnmakeRawMove inverts MakeRawMove with the frame it produced.
func (p *Position) UnmakeRawMove(m Move, frame *StateFrame) {
	var from, to = m.From(), m.To()
	var side = (p.White & SquareMask[to]) != 0
	p.movePiece(p.WhatPiece(to), side, to, from)
	p.WhiteMove = !p.WhiteMove
	p.CastleRights = frame.CastleRights
	p.EpSquare = frame.EpSquare
	p.Rule50 = frame.Rule50
	p.FullMove = frame.FullMove
	p.Key = frame.Key
	p.Checkers = frame.Checkers
}

func (p *Position) makeAnyMove(m Move, frame *StateFrame) {
	*frame = StateFrame{
		Captured:     Empty,
		CastleRights: p.CastleRights,
		EpSquare:     p.EpSquare,
		Rule50:       p.Rule50,
		FullMove:     p.FullMove,
		Key:          p.Key,
		Checkers:     p.Checkers,
	}

	var side = p.WhiteMove
	var from, to = m.From(), m.To()

	if p.EpSquare != SquareNone {
		p.Key ^= enpassantKey[File(p.EpSquare)]
		p.EpSquare = SquareNone
	}

	switch m.Kind() {
	case MoveKindCastling:
		var kingTo, rookTo int
		if to > from {
			kingTo = MakeSquare(FileG, Rank(from))
			rookTo = MakeSquare(FileF, Rank(from))
		} else {
			kingTo = MakeSquare(FileC, Rank(from))
			rookTo = MakeSquare(FileD, Rank(from))
		}
		p.movePiece(King, side, from, kingTo)
		p.movePiece(Rook, side, to, rookTo)
		p.Rule50++
	case MoveKindEnPassant:
		var capSq = to + let(side, -8, 8)
		p.xorPiece(Pawn, !side, capSq)
		p.movePiece(Pawn, side, from, to)
		frame.Captured = Pawn
		p.Rule50 = 0
	case MoveKindPromotion:
		var captured = p.WhatPiece(to)
		if captured != Empty {
			p.xorPiece(captured, !side, to)
			frame.Captured = captured
		}
		p.xorPiece(Pawn, side, from)
		p.xorPiece(m.Promotion(), side, to)
		p.Rule50 = 0
	default:
		var piece = p.WhatPiece(from)
		var captured = p.WhatPiece(to)
		if captured != Empty {
			p.xorPiece(captured, !side, to)
			frame.Captured = captured
		}
		p.movePiece(piece, side, from, to)
		if piece == Pawn || captured != Empty {
			p.Rule50 = 0
		} else {
			p.Rule50++
		}
		if piece == Pawn && AbsDelta(from, to) == 16 {
			p.EpSquare = (from + to) / 2
			p.Key ^= enpassantKey[File(p.EpSquare)]
		}
	}

	var newRights = frame.CastleRights & castleMask[from] & castleMask[to]
	p.Key ^= castlingKey[p.CastleRights^newRights]
	p.CastleRights = newRights

	p.WhiteMove = !side
	p.Key ^= sideKey
	if !side {
		p.FullMove++
	}
}

// MakeNullMove passes the turn without touching a piece. Callers must
// not be in check.
func (p *Position) MakeNullMove(frame *StateFrame) {
	*frame = StateFrame{
		Captured:     Empty,
		CastleRights: p.CastleRights,
		EpSquare:     p.EpSquare,
		Rule50:       p.Rule50,
		FullMove:     p.FullMove,
		Key:          p.Key,
		Checkers:     p.Checkers,
	}
	if p.EpSquare != SquareNone {
		p.Key ^= enpassantKey[File(p.EpSquare)]
		p.EpSquare = SquareNone
	}
	p.Rule50++
	p.WhiteMove = !p.WhiteMove
	p.Key ^= sideKey
	p.Checkers = p.computeCheckers()
}

func (p *Position) UnmakeNullMove(frame *StateFrame) {
	p.WhiteMove = !p.WhiteMove
	p.CastleRights = frame.CastleRights
	p.EpSquare = frame.EpSquare
	p.Rule50 = frame.Rule50
	p.FullMove = frame.FullMove
	p.Key = frame.Key
	p.Checkers = frame.Checkers
}

// UnmakeMove restores the exact prior state. Must be called with the
// frame produced by the matching MakeMove/MakeRawMove.
func (p *Position) UnmakeMove(m Move, frame *StateFrame) {
	var side = !p.WhiteMove
	var from, to = m.From(), m.To()

	switch m.Kind() {
	case MoveKindCastling:
		var kingTo, rookTo int
		if to > from {
			kingTo = MakeSquare(FileG, Rank(from))
			rookTo = MakeSquare(FileF, Rank(from))
		} else {
			kingTo = MakeSquare(FileC, Rank(from))
			rookTo = MakeSquare(FileD, Rank(from))
		}
		p.movePiece(King, side, kingTo, from)
		p.movePiece(Rook, side, rookTo, to)
	case MoveKindEnPassant:
		p.movePiece(Pawn, side, to, from)
		p.xorPiece(Pawn, !side, to+let(side, -8, 8))
	case MoveKindPromotion:
		p.xorPiece(m.Promotion(), side, to)
		p.xorPiece(Pawn, side, from)
		if frame.Captured != Empty {
			p.xorPiece(frame.Captured, !side, to)
		}
	default:
		p.movePiece(p.WhatPiece(to), side, to, from)
		if frame.Captured != Empty {
			p.xorPiece(frame.Captured, !side, to)
		}
	}

	p.WhiteMove = side
	p.CastleRights = frame.CastleRights
	p.EpSquare = frame.EpSquare
	p.Rule50 = frame.Rule50
	p.FullMove = frame.FullMove
	p.Key = frame.Key
	p.Checkers = frame.Checkers
}
