package common

import "time"

const InitialPositionFen = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

const (
	Empty int = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

const (
	WhiteKingSide = 1 << iota
	WhiteQueenSide
	BlackKingSide
	BlackQueenSide
)

const MaxMoves = 256

// Internal evaluation value bounds. The mate band sits just below the
// infinite sentinel; the tablebase band sits below the mate band.
const (
	ValueDraw          = 0
	ValueMate          = 32000
	ValueInfinite      = ValueMate + 1
	MaxPly             = 246
	ValueMateInMaxPly  = ValueMate - MaxPly
	ValueTB            = ValueMateInMaxPly - 1
	ValueTBWinInMaxPly = ValueTB - MaxPly
)

// Position is the single live board state. It is mutated in place by
// MakeMove/UnmakeMove; StateFrame captures everything a move destroys.
type Position struct {
	Pawns, Knights, Bishops, Rooks, Queens, Kings uint64
	White, Black                                  uint64
	Checkers                                      uint64
	Key                                           uint64
	WhiteMove                                     bool
	Chess960                                      bool
	CastleRights                                  int
	EpSquare                                      int
	Rule50                                        int
	FullMove                                      int
}

// StateFrame holds the irreversible side of one applied move.
type StateFrame struct {
	Captured     int
	CastleRights int
	EpSquare     int
	Rule50       int
	FullMove     int
	Key          uint64
	Checkers     uint64
}

// LimitsType is the structured form of a "go" command line. Zero means
// unset for every numeric field; an empty SearchMoves list means all moves.
type LimitsType struct {
	Ponder         bool
	Infinite       bool
	WhiteTime      int
	BlackTime      int
	WhiteIncrement int
	BlackIncrement int
	MovesToGo      int
	MoveTime       int
	Depth          int
	Nodes          int
	Mate           int
	Perft          int
	SearchMoves    []Move
}

type SearchParams struct {
	Position Position
	// History holds the zobrist keys of the positions leading to
	// Position, oldest first, for repetition detection.
	History  []uint64
	Limits   LimitsType
	Progress func(si SearchInfo)
}

// SearchInfo reports one search iteration. Score is an internal value on
// the ValueMate scale; the protocol layer normalizes it for output.
type SearchInfo struct {
	Score    int
	Depth    int
	Nodes    int64
	Time     time.Duration
	MainLine []Move
}
