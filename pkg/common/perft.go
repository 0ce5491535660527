package common

// Perft counts the leaf nodes of the legal move tree to the given depth.
func Perft(p *Position, depth int) int64 {
	if depth <= 0 {
		return 1
	}
	var result int64
	var buffer [MaxMoves]Move
	var frame StateFrame
	for _, m := range GenerateMoves(p, buffer[:]) {
		if p.MakeMove(m, &frame) {
			if depth > 1 {
				result += Perft(p, depth-1)
			} else {
				result++
			}
			p.UnmakeMove(m, &frame)
		}
	}
	return result
}
