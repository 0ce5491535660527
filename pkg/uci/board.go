package uci

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/meridianchess/meridian/pkg/common"
)

// printBoard renders the diagram, FEN and hash of a position. Debug
// output only, never parsed by controllers.
func (p *Protocol) printBoard(pos *common.Position) {
	var sb strings.Builder
	sb.WriteString("\n +---+---+---+---+---+---+---+---+\n")
	for rank := common.Rank8; rank >= common.Rank1; rank-- {
		for file := common.FileA; file <= common.FileH; file++ {
			var sq = common.MakeSquare(file, rank)
			var piece = pos.WhatPiece(sq)
			sb.WriteString(" | ")
			if piece == common.Empty {
				sb.WriteString(" ")
			} else {
				var ch = " pnbrqk"[piece : piece+1]
				if pos.White&common.SquareMask[sq] != 0 {
					ch = strings.ToUpper(ch)
				}
				sb.WriteString(ch)
			}
		}
		sb.WriteString(" | ")
		sb.WriteString(strconv.Itoa(rank + 1))
		sb.WriteString("\n +---+---+---+---+---+---+---+---+\n")
	}
	sb.WriteString("   a   b   c   d   e   f   g   h\n")
	p.out.Println(sb.String())
	p.out.Printf("Fen: %v\n", pos.String())
	p.out.Printf("Key: %016X\n", pos.Key)
	var checkers = "Checkers:"
	for bb := pos.Checkers; bb != 0; bb &= bb - 1 {
		checkers += " " + common.SquareName(common.FirstOne(bb))
	}
	p.out.Println(checkers)
}

// benchPositions is a small mixed set touching the phases a search has
// to handle: opening, tactical middlegames, promotion races, endings.
var benchPositions = []string{
	common.InitialPositionFen,
	"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"4rrk1/pp1n3p/3q2pQ/2p1pb2/2PP4/2P3N1/P2B2PP/4RRK1 b - - 7 19",
	"8/8/1P6/5pr1/8/4R3/7k/2K5 w - - 0 1",
	"7k/2R5/8/8/8/8/r7/6K1 w - - 0 1",
	"8/8/8/8/8/6k1/6p1/6K1 w - - 0 1",
}

func (p *Protocol) benchCommand(fields []string) {
	var depth = 10
	if len(fields) > 0 {
		if d, err := strconv.Atoi(fields[0]); err == nil && d > 0 {
			depth = d
		}
	}
	var savedFen = p.pos.String()
	var start = time.Now()
	var nodes int64
	for i, fen := range benchPositions {
		if err := p.states.Rebuild(fen); err != nil {
			continue
		}
		p.engine.Clear()
		var result = p.engine.Search(context.Background(), common.SearchParams{
			Position: p.pos,
			History:  p.states.Keys(),
			Limits:   common.LimitsType{Depth: depth},
			Progress: func(common.SearchInfo) {},
		})
		p.logger.Printf("bench %v/%v depth %v nodes %v",
			i+1, len(benchPositions), result.Depth, result.Nodes)
		nodes += result.Nodes
	}
	var elapsed = time.Since(start)
	p.states.Rebuild(savedFen)
	p.out.Println("===========================")
	p.out.Printf("Total time (ms) : %v\n", elapsed.Milliseconds())
	p.out.Printf("Nodes searched  : %v\n", nodes)
	p.out.Printf("Nodes/second    : %v\n", nodes*1000/(elapsed.Milliseconds()+1))
}
