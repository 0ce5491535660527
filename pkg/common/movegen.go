package common

const (
	f1g1Mask = (uint64(1) << SquareF1) | (uint64(1) << SquareG1)
	b1d1Mask = (uint64(1) << SquareB1) | (uint64(1) << SquareC1) | (uint64(1) << SquareD1)
	f8g8Mask = (uint64(1) << SquareF8) | (uint64(1) << SquareG8)
	b8d8Mask = (uint64(1) << SquareB8) | (uint64(1) << SquareC8) | (uint64(1) << SquareD8)
)

func addPromotions(ml []Move, from, to int) int {
	ml[0] = MakePromotionMove(from, to, Queen)
	ml[1] = MakePromotionMove(from, to, Rook)
	ml[2] = MakePromotionMove(from, to, Bishop)
	ml[3] = MakePromotionMove(from, to, Knight)
	return 4
}

// GenerateMoves fills ml with the pseudo-legal moves of the side to move.
// Moves that leave the king attacked are rejected later by MakeMove.
func GenerateMoves(p *Position, ml []Move) []Move {
	var count = 0
	var fromBB, toBB uint64
	var from int

	var ownPieces = p.PiecesByColor(p.WhiteMove)
	var oppPieces = p.PiecesByColor(!p.WhiteMove)

	var target = ^ownPieces
	if p.Checkers != 0 {
		var kingSq = FirstOne(p.Kings & ownPieces)
		target = p.Checkers | Between(FirstOne(p.Checkers), kingSq)
	}

	var allPieces = p.AllPieces()
	var ownPawns = p.Pawns & ownPieces

	if p.EpSquare != SquareNone {
		for fromBB = PawnAttacks(p.EpSquare, !p.WhiteMove) & ownPawns; fromBB != 0; fromBB &= fromBB - 1 {
			ml[count] = MakeEnPassantMove(FirstOne(fromBB), p.EpSquare)
			count++
		}
	}

	if p.WhiteMove {
		for fromBB = ownPawns & ^Rank7Mask; fromBB != 0; fromBB &= fromBB - 1 {
			from = FirstOne(fromBB)
			if (SquareMask[from+8] & allPieces) == 0 {
				ml[count] = MakeMove(from, from+8)
				count++
				if Rank(from) == Rank2 && (SquareMask[from+16]&allPieces) == 0 {
					ml[count] = MakeMove(from, from+16)
					count++
				}
			}
			if File(from) > FileA && (SquareMask[from+7]&oppPieces) != 0 {
				ml[count] = MakeMove(from, from+7)
				count++
			}
			if File(from) < FileH && (SquareMask[from+9]&oppPieces) != 0 {
				ml[count] = MakeMove(from, from+9)
				count++
			}
		}
		for fromBB = ownPawns & Rank7Mask; fromBB != 0; fromBB &= fromBB - 1 {
			from = FirstOne(fromBB)
			if (SquareMask[from+8] & allPieces) == 0 {
				count += addPromotions(ml[count:], from, from+8)
			}
			if File(from) > FileA && (SquareMask[from+7]&oppPieces) != 0 {
				count += addPromotions(ml[count:], from, from+7)
			}
			if File(from) < FileH && (SquareMask[from+9]&oppPieces) != 0 {
				count += addPromotions(ml[count:], from, from+9)
			}
		}
	} else {
		for fromBB = ownPawns & ^Rank2Mask; fromBB != 0; fromBB &= fromBB - 1 {
			from = FirstOne(fromBB)
			if (SquareMask[from-8] & allPieces) == 0 {
				ml[count] = MakeMove(from, from-8)
				count++
				if Rank(from) == Rank7 && (SquareMask[from-16]&allPieces) == 0 {
					ml[count] = MakeMove(from, from-16)
					count++
				}
			}
			if File(from) > FileA && (SquareMask[from-9]&oppPieces) != 0 {
				ml[count] = MakeMove(from, from-9)
				count++
			}
			if File(from) < FileH && (SquareMask[from-7]&oppPieces) != 0 {
				ml[count] = MakeMove(from, from-7)
				count++
			}
		}
		for fromBB = ownPawns & Rank2Mask; fromBB != 0; fromBB &= fromBB - 1 {
			from = FirstOne(fromBB)
			if (SquareMask[from-8] & allPieces) == 0 {
				count += addPromotions(ml[count:], from, from-8)
			}
			if File(from) > FileA && (SquareMask[from-9]&oppPieces) != 0 {
				count += addPromotions(ml[count:], from, from-9)
			}
			if File(from) < FileH && (SquareMask[from-7]&oppPieces) != 0 {
				count += addPromotions(ml[count:], from, from-7)
			}
		}
	}

	for fromBB = p.Knights & ownPieces; fromBB != 0; fromBB &= fromBB - 1 {
		from = FirstOne(fromBB)
		for toBB = KnightAttacks[from] & target; toBB != 0; toBB &= toBB - 1 {
			ml[count] = MakeMove(from, FirstOne(toBB))
			count++
		}
	}

	for fromBB = p.Bishops & ownPieces; fromBB != 0; fromBB &= fromBB - 1 {
		from = FirstOne(fromBB)
		for toBB = BishopAttacks(from, allPieces) & target; toBB != 0; toBB &= toBB - 1 {
			ml[count] = MakeMove(from, FirstOne(toBB))
			count++
		}
	}

	for fromBB = p.Rooks & ownPieces; fromBB != 0; fromBB &= fromBB - 1 {
		from = FirstOne(fromBB)
		for toBB = RookAttacks(from, allPieces) & target; toBB != 0; toBB &= toBB - 1 {
			ml[count] = MakeMove(from, FirstOne(toBB))
			count++
		}
	}

	for fromBB = p.Queens & ownPieces; fromBB != 0; fromBB &= fromBB - 1 {
		from = FirstOne(fromBB)
		for toBB = QueenAttacks(from, allPieces) & target; toBB != 0; toBB &= toBB - 1 {
			ml[count] = MakeMove(from, FirstOne(toBB))
			count++
		}
	}

	from = FirstOne(p.Kings & ownPieces)
	for toBB = KingAttacks[from] &^ ownPieces; toBB != 0; toBB &= toBB - 1 {
		ml[count] = MakeMove(from, FirstOne(toBB))
		count++
	}

	if p.WhiteMove {
		if (p.CastleRights&WhiteKingSide) != 0 &&
			(allPieces&f1g1Mask) == 0 &&
			!p.isAttackedBySide(SquareE1, false) &&
			!p.isAttackedBySide(SquareF1, false) {
			ml[count] = MakeCastlingMove(SquareE1, SquareH1)
			count++
		}
		if (p.CastleRights&WhiteQueenSide) != 0 &&
			(allPieces&b1d1Mask) == 0 &&
			!p.isAttackedBySide(SquareE1, false) &&
			!p.isAttackedBySide(SquareD1, false) {
			ml[count] = MakeCastlingMove(SquareE1, SquareA1)
			count++
		}
	} else {
		if (p.CastleRights&BlackKingSide) != 0 &&
			(allPieces&f8g8Mask) == 0 &&
			!p.isAttackedBySide(SquareE8, true) &&
			!p.isAttackedBySide(SquareF8, true) {
			ml[count] = MakeCastlingMove(SquareE8, SquareH8)
			count++
		}
		if (p.CastleRights&BlackQueenSide) != 0 &&
			(allPieces&b8d8Mask) == 0 &&
			!p.isAttackedBySide(SquareE8, true) &&
			!p.isAttackedBySide(SquareD8, true) {
			ml[count] = MakeCastlingMove(SquareE8, SquareA8)
			count++
		}
	}

	return ml[:count]
}

// GenerateLegalMoves filters the pseudo-legal set through MakeMove.
func GenerateLegalMoves(p *Position, ml []Move) []Move {
	var frame StateFrame
	var legal = 0
	for _, m := range GenerateMoves(p, ml) {
		if p.MakeMove(m, &frame) {
			p.UnmakeMove(m, &frame)
			ml[legal] = m
			legal++
		}
	}
	return ml[:legal]
}

// IsCaptureOrPromotion reports whether the move changes material.
func (p *Position) IsCaptureOrPromotion(m Move) bool {
	switch m.Kind() {
	case MoveKindPromotion, MoveKindEnPassant:
		return true
	case MoveKindCastling:
		return false
	}
	return (SquareMask[m.To()] & p.AllPieces()) != 0
}
