package common

import "strings"

// Move packs origin, destination, a kind tag and the promotion piece.
// A castling move keeps the rook's square as its destination; the codec
// rewrites it for standard-chess output.
type Move int32

const (
	MoveKindNormal = iota
	MoveKindPromotion
	MoveKindCastling
	MoveKindEnPassant
)

const (
	MoveEmpty Move = 0
	MoveNull  Move = 1 << 17
)

func MakeMove(from, to int) Move {
	return Move(from | (to << 6))
}

func MakePromotionMove(from, to, promotion int) Move {
	return Move(from | (to << 6) | (MoveKindPromotion << 12) | (promotion << 14))
}

func MakeCastlingMove(kingFrom, rookSquare int) Move {
	return Move(kingFrom | (rookSquare << 6) | (MoveKindCastling << 12))
}

func MakeEnPassantMove(from, to int) Move {
	return Move(from | (to << 6) | (MoveKindEnPassant << 12))
}

func (m Move) From() int {
	return int(m & 63)
}

func (m Move) To() int {
	return int((m >> 6) & 63)
}

func (m Move) Kind() int {
	return int((m >> 12) & 3)
}

func (m Move) Promotion() int {
	return int((m >> 14) & 7)
}

func (m Move) String() string {
	return MoveToUCI(m, false)
}

// MoveToUCI renders a move in protocol coordinate notation. Castling
// places the king on the g- or c-file of its rank unless chess960 keeps
// the literal king-takes-rook form.
func MoveToUCI(m Move, chess960 bool) string {
	if m == MoveEmpty {
		return "(none)"
	}
	if m == MoveNull {
		return "0000"
	}
	var from, to = m.From(), m.To()
	if m.Kind() == MoveKindCastling && !chess960 {
		if to > from {
			to = MakeSquare(FileG, Rank(from))
		} else {
			to = MakeSquare(FileC, Rank(from))
		}
	}
	var s = SquareName(from) + SquareName(to)
	if m.Kind() == MoveKindPromotion {
		s += string("__nbrq"[m.Promotion()])
	}
	return s
}

// ParseMoveUCI resolves a coordinate string against the legal moves of
// the given position. Decoding is legality-checked by construction: a
// string that matches no legal move yields MoveEmpty.
func ParseMoveUCI(p *Position, s string) Move {
	if len(s) == 5 {
		s = s[:4] + strings.ToLower(s[4:])
	}
	var buffer [MaxMoves]Move
	for _, m := range GenerateLegalMoves(p, buffer[:]) {
		if s == MoveToUCI(m, p.Chess960) {
			return m
		}
	}
	return MoveEmpty
}
