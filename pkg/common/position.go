package common

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"unicode"
)

type coloredPiece struct {
	Type int
	Side bool
}

var castleMask [64]int

func parsePiece(ch rune) coloredPiece {
	var side = unicode.IsUpper(ch)
	var i = strings.Index("pnbrqk", string(unicode.ToLower(ch)))
	if i < 0 {
		return coloredPiece{Empty, false}
	}
	return coloredPiece{i + Pawn, side}
}

func pieceToChar(pieceType int, side bool) string {
	var result = string("pnbrqk"[pieceType-Pawn])
	if side {
		result = strings.ToUpper(result)
	}
	return result
}

func NewPositionFromFEN(fen string) (Position, error) {
	var tokens = strings.Fields(fen)
	if len(tokens) <= 3 {
		return Position{}, fmt.Errorf("parse fen failed %v", fen)
	}

	var board [64]coloredPiece
	var i = 0
	for _, ch := range tokens[0] {
		if unicode.IsDigit(ch) {
			var n, _ = strconv.Atoi(string(ch))
			i += n
		} else if unicode.IsLetter(ch) {
			if i >= 64 {
				return Position{}, fmt.Errorf("parse fen failed %v", fen)
			}
			board[FlipSquare(i)] = parsePiece(ch)
			i++
		}
	}

	var whiteMove = tokens[1] == "w"

	var cr = 0
	if strings.Contains(tokens[2], "K") {
		cr |= WhiteKingSide
	}
	if strings.Contains(tokens[2], "Q") {
		cr |= WhiteQueenSide
	}
	if strings.Contains(tokens[2], "k") {
		cr |= BlackKingSide
	}
	if strings.Contains(tokens[2], "q") {
		cr |= BlackQueenSide
	}

	var epSquare = ParseSquare(tokens[3])

	var rule50 = 0
	if len(tokens) > 4 {
		rule50, _ = strconv.Atoi(tokens[4])
	}
	var fullMove = 1
	if len(tokens) > 5 {
		if n, err := strconv.Atoi(tokens[5]); err == nil && n > 0 {
			fullMove = n
		}
	}

	var p = Position{
		WhiteMove:    whiteMove,
		CastleRights: cr,
		EpSquare:     epSquare,
		Rule50:       rule50,
		FullMove:     fullMove,
	}
	for sq, piece := range board {
		if piece.Type != Empty {
			p.xorPiece(piece.Type, piece.Side, sq)
		}
	}
	p.Key = p.computeKey()

	if p.Kings&p.White == 0 || p.Kings&p.Black == 0 || !p.isLegal() {
		return Position{}, fmt.Errorf("parse fen failed %v", fen)
	}
	p.Checkers = p.computeCheckers()
	return p, nil
}

// String renders the position as FEN.
func (p *Position) String() string {
	var sb strings.Builder

	var emptyCount = 0
	for i := 0; i < 64; i++ {
		var sq = FlipSquare(i)
		var piece = p.WhatPiece(sq)
		if piece == Empty {
			emptyCount++
		} else {
			if emptyCount != 0 {
				sb.WriteString(strconv.Itoa(emptyCount))
				emptyCount = 0
			}
			sb.WriteString(pieceToChar(piece, (p.White&SquareMask[sq]) != 0))
		}
		if File(sq) == FileH {
			if emptyCount != 0 {
				sb.WriteString(strconv.Itoa(emptyCount))
				emptyCount = 0
			}
			if Rank(sq) != Rank1 {
				sb.WriteString("/")
			}
		}
	}

	sb.WriteString(" ")
	if p.WhiteMove {
		sb.WriteString("w")
	} else {
		sb.WriteString("b")
	}

	sb.WriteString(" ")
	if p.CastleRights == 0 {
		sb.WriteString("-")
	} else {
		if (p.CastleRights & WhiteKingSide) != 0 {
			sb.WriteString("K")
		}
		if (p.CastleRights & WhiteQueenSide) != 0 {
			sb.WriteString("Q")
		}
		if (p.CastleRights & BlackKingSide) != 0 {
			sb.WriteString("k")
		}
		if (p.CastleRights & BlackQueenSide) != 0 {
			sb.WriteString("q")
		}
	}

	sb.WriteString(" ")
	if p.EpSquare == SquareNone {
		sb.WriteString("-")
	} else {
		sb.WriteString(SquareName(p.EpSquare))
	}

	sb.WriteString(" ")
	sb.WriteString(strconv.Itoa(p.Rule50))
	sb.WriteString(" ")
	sb.WriteString(strconv.Itoa(p.FullMove))

	return sb.String()
}

func (p *Position) WhatPiece(sq int) int {
	var bb = SquareMask[sq]
	if ((p.White | p.Black) & bb) == 0 {
		return Empty
	}
	if (p.Pawns & bb) != 0 {
		return Pawn
	}
	if (p.Knights & bb) != 0 {
		return Knight
	}
	if (p.Bishops & bb) != 0 {
		return Bishop
	}
	if (p.Rooks & bb) != 0 {
		return Rook
	}
	if (p.Queens & bb) != 0 {
		return Queen
	}
	return King
}

func (p *Position) PiecesByColor(white bool) uint64 {
	if white {
		return p.White
	}
	return p.Black
}

func (p *Position) AllPieces() uint64 {
	return p.White | p.Black
}

func (p *Position) IsCheck() bool {
	return p.Checkers != 0
}

func (p *Position) xorPiece(piece int, side bool, square int) {
	var b = SquareMask[square]
	if side {
		p.White ^= b
	} else {
		p.Black ^= b
	}
	switch piece {
	case Pawn:
		p.Pawns ^= b
	case Knight:
		p.Knights ^= b
	case Bishop:
		p.Bishops ^= b
	case Rook:
		p.Rooks ^= b
	case Queen:
		p.Queens ^= b
	case King:
		p.Kings ^= b
	}
	p.Key ^= pieceSquareKey(piece, side, square)
}

func (p *Position) movePiece(piece int, side bool, from, to int) {
	p.xorPiece(piece, side, from)
	p.xorPiece(piece, side, to)
}

func (p *Position) isAttackedBySide(sq int, side bool) bool {
	var enemy = p.PiecesByColor(side)
	if (PawnAttacks(sq, !side) & p.Pawns & enemy) != 0 {
		return true
	}
	if (KnightAttacks[sq] & p.Knights & enemy) != 0 {
		return true
	}
	if (KingAttacks[sq] & p.Kings & enemy) != 0 {
		return true
	}
	var occ = p.AllPieces()
	if (BishopAttacks(sq, occ) & (p.Bishops | p.Queens) & enemy) != 0 {
		return true
	}
	if (RookAttacks(sq, occ) & (p.Rooks | p.Queens) & enemy) != 0 {
		return true
	}
	return false
}

func (p *Position) attackersTo(sq int) uint64 {
	var occ = p.AllPieces()
	return (blackPawnAttacks[sq] & p.Pawns & p.White) |
		(whitePawnAttacks[sq] & p.Pawns & p.Black) |
		(KnightAttacks[sq] & p.Knights) |
		(BishopAttacks(sq, occ) & (p.Bishops | p.Queens)) |
		(RookAttacks(sq, occ) & (p.Rooks | p.Queens)) |
		(KingAttacks[sq] & p.Kings)
}

func (p *Position) computeCheckers() uint64 {
	if p.WhiteMove {
		return p.attackersTo(FirstOne(p.Kings&p.White)) & p.Black
	}
	return p.attackersTo(FirstOne(p.Kings&p.Black)) & p.White
}

// isLegal reports whether the side that just moved left its king en prise.
func (p *Position) isLegal() bool {
	var kingSq = FirstOne(p.Kings & p.PiecesByColor(!p.WhiteMove))
	return !p.isAttackedBySide(kingSq, p.WhiteMove)
}

// SetSideToMove forces the side to move, keeping the hash and checkers
// consistent. Used by analysis modes that let one side move repeatedly.
func (p *Position) SetSideToMove(white bool) {
	if p.WhiteMove == white {
		return
	}
	p.WhiteMove = white
	p.Key ^= sideKey
	p.Checkers = p.computeCheckers()
}

// Mirror returns the position with colors swapped and the board flipped.
func (p *Position) Mirror() Position {
	var result = Position{
		WhiteMove:    !p.WhiteMove,
		CastleRights: (p.CastleRights >> 2) | ((p.CastleRights & 3) << 2),
		EpSquare:     SquareNone,
		Rule50:       p.Rule50,
		FullMove:     p.FullMove,
		Chess960:     p.Chess960,
	}
	if p.EpSquare != SquareNone {
		result.EpSquare = FlipSquare(p.EpSquare)
	}
	for sq := 0; sq < 64; sq++ {
		var piece = p.WhatPiece(sq)
		if piece != Empty {
			var side = (p.White & SquareMask[sq]) != 0
			result.xorPiece(piece, !side, FlipSquare(sq))
		}
	}
	result.Key = result.computeKey()
	result.Checkers = result.computeCheckers()
	return result
}

var (
	sideKey         uint64
	enpassantKey    [8]uint64
	castlingKey     [16]uint64
	pieceSquareKeys [2 * 7 * 64]uint64
)

func pieceSquareKey(piece int, side bool, square int) uint64 {
	var index = piece*64 + square
	if !side {
		index += 7 * 64
	}
	return pieceSquareKeys[index]
}

func (p *Position) computeKey() uint64 {
	var result = uint64(0)
	if p.WhiteMove {
		result ^= sideKey
	}
	result ^= castlingKey[p.CastleRights]
	if p.EpSquare != SquareNone {
		result ^= enpassantKey[File(p.EpSquare)]
	}
	for sq := 0; sq < 64; sq++ {
		var piece = p.WhatPiece(sq)
		if piece != Empty {
			result ^= pieceSquareKey(piece, (p.White&SquareMask[sq]) != 0, sq)
		}
	}
	return result
}

func init() {
	var r = rand.New(rand.NewSource(0))
	sideKey = r.Uint64()
	for i := range enpassantKey {
		enpassantKey[i] = r.Uint64()
	}
	for i := range pieceSquareKeys {
		pieceSquareKeys[i] = r.Uint64()
	}

	var castle [4]uint64
	for i := range castle {
		castle[i] = r.Uint64()
	}
	for i := range castlingKey {
		for j := 0; j < 4; j++ {
			if (i & (1 << uint(j))) != 0 {
				castlingKey[i] ^= castle[j]
			}
		}
	}

	for i := range castleMask {
		castleMask[i] = WhiteKingSide | WhiteQueenSide | BlackKingSide | BlackQueenSide
	}
	castleMask[SquareA1] &^= WhiteQueenSide
	castleMask[SquareE1] &^= WhiteQueenSide | WhiteKingSide
	castleMask[SquareH1] &^= WhiteKingSide
	castleMask[SquareA8] &^= BlackQueenSide
	castleMask[SquareE8] &^= BlackQueenSide | BlackKingSide
	castleMask[SquareH8] &^= BlackKingSide
}
