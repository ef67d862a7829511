package board

import "testing"

// perft counts the number of leaf nodes at the given depth, the standard
// correctness oracle for a move generator: a single missed pin, en-passant
// discovered check, or castling-through-attack case diverges the count.
func perft(p *Position, depth int) int64 {
	if depth == 0 {
		return 1
	}

	moves := p.GenerateLegalMoves()
	if depth == 1 {
		return int64(moves.Len())
	}

	var nodes int64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := p.MakeMove(m)
		nodes += perft(p, depth-1)
		p.UnmakeMove(m, undo)
	}
	return nodes
}

// perftScenario is one row of the canonical table (§8): every implementation
// must match these node counts exactly.
type perftScenario struct {
	name  string
	fen   string
	depth int
	nodes int64
}

var canonicalPerftScenarios = []perftScenario{
	{"startpos", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", 5, 4865609},
	{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 4, 4085603},
	{"endgame", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 5, 674624},
	{"pin_promo", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", 4, 422333},
	{"promotions_castle", "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8", 4, 2103487},
	{"quiet_middlegame", "r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10", 4, 3894594},
}

// TestPerftCanonical runs the six canonical FEN/depth/node-count scenarios.
// These are the long-running, deepest checks; shallower per-scenario depths
// are covered separately below so a failing case is cheap to localize.
func TestPerftCanonical(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping deep perft scenarios in -short mode")
	}
	for _, sc := range canonicalPerftScenarios {
		sc := sc
		t.Run(sc.name, func(t *testing.T) {
			pos, err := ParseFEN(sc.fen)
			if err != nil {
				t.Fatalf("ParseFEN(%q): %v", sc.fen, err)
			}
			if got := perft(pos, sc.depth); got != sc.nodes {
				t.Errorf("perft(%d) = %d, want %d", sc.depth, got, sc.nodes)
			}
		})
	}
}

// TestPerftStartingPosition covers the starting position at shallow depths,
// cheap enough to run every time (not gated behind -short).
func TestPerftStartingPosition(t *testing.T) {
	pos := NewPosition()

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
		{4, 197281},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := perft(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestPerftKiwipete tests the famous Kiwipete position with many edge cases.
func TestPerftKiwipete(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 48},
		{2, 2039},
		{3, 97862},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := perft(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestPerftPosition3 tests en passant edge cases.
func TestPerftPosition3(t *testing.T) {
	pos, err := ParseFEN("8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 14},
		{2, 191},
		{3, 2812},
		{4, 43238},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := perft(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestPerftEnPassantPin tests the specific en passant horizontal pin edge case.
// Black pawn on e4 can capture en passant d3, but this would expose the black
// king on a4 to the white rook on h4.
func TestPerftEnPassantPin(t *testing.T) {
	pos, err := ParseFEN("8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		if m := moves.Get(i); m.IsEnPassant() {
			t.Errorf("En passant move %v should be illegal (horizontal pin)", m)
		}
	}

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 6},
		{2, 94},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := perft(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestEnPassantBothCaptures exercises the ordinary (unpinned) double
// en-passant capture case: either flanking pawn may take.
func TestEnPassantBothCaptures(t *testing.T) {
	pos, err := ParseFEN("rnbqkbnr/ppp1p1pp/8/3pPpP1/8/8/PPPP1P1P/RNBQKBNR w KQkq f6 0 3")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	moves := pos.GenerateLegalMoves()
	var exf6, gxf6 bool
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if !m.IsEnPassant() {
			continue
		}
		switch m.From() {
		case E5:
			exf6 = true
		case G5:
			gxf6 = true
		}
	}

	if !exf6 {
		t.Error("expected exf6 e.p. to be generated")
	}
	if !gxf6 {
		t.Error("expected gxf6 e.p. to be generated")
	}
}

// TestEnPassantHorizontalPinExcluded is the second property-test FEN from
// §8, with a black king added on h8 so that the position passes Validate;
// distinct from TestPerftEnPassantPin's position.
func TestEnPassantHorizontalPinExcluded(t *testing.T) {
	pos, err := ParseFEN("7k/8/8/KPp4r/8/8/8/8 w - c6 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		if m := moves.Get(i); m.IsEnPassant() {
			t.Errorf("bxc6 e.p. should not be generated (horizontal pin through both pawns): got %v", m)
		}
	}
}

// TestEnPassantDiagonalRecaptureAllowed is the counterpart to
// TestEnPassantHorizontalPinExcluded: the capturing pawn's own destination
// square sits on the same diagonal as an enemy bishop, so landing there
// re-blocks the diagonal and the capture is legal, not a discovered check.
func TestEnPassantDiagonalRecaptureAllowed(t *testing.T) {
	pos, err := ParseFEN("2b4k/8/8/4pP2/6K1/8/8/8 w - e6 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	moves := pos.GenerateLegalMoves()
	found := false
	for i := 0; i < moves.Len(); i++ {
		if m := moves.Get(i); m.IsEnPassant() {
			found = true
		}
	}
	if !found {
		t.Error("expected fxe6 e.p. to be generated (landing square re-blocks the diagonal)")
	}
}

// TestCastlingThroughCheckExcluded: the king's transit square on the e-file
// is attacked by a rook, so neither castling move is legal for White.
func TestCastlingThroughCheckExcluded(t *testing.T) {
	pos, err := ParseFEN("r3k2r/8/8/8/8/8/4r3/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		if m := moves.Get(i); m.IsCastling() {
			t.Errorf("castling move %v should be illegal (king transits attacked e-file)", m)
		}
	}
}

// TestNoTripleCheck asserts popcount(check_mask & opp_occ) stays in {0,1,2}
// across a breadth of reachable positions -- "triple check" is impossible
// with legal chess material and would indicate a check-mask bug.
func TestNoTripleCheck(t *testing.T) {
	positions := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	}

	var walk func(p *Position, depth int)
	walk = func(p *Position, depth int) {
		us := p.SideToMove
		checkMask := p.GenerateCheckMask(us)
		if checkMask != Universe {
			n := (checkMask & p.Occupied[us.Other()]).PopCount()
			if n > 2 {
				t.Errorf("impossible triple check: checker count %d", n)
			}
		}
		if depth == 0 {
			return
		}
		moves := p.GenerateLegalMoves()
		for i := 0; i < moves.Len(); i++ {
			m := moves.Get(i)
			undo := p.MakeMove(m)
			walk(p, depth-1)
			p.UnmakeMove(m, undo)
		}
	}

	for _, fen := range positions {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		walk(pos, 3)
	}
}

// TestGeneratedMovesLeaveMoverKingSafe asserts every generated move, once
// applied, leaves the mover's own king unattacked -- the core legality
// guarantee the pin/check-mask design exists to provide without a
// make/unmake filter pass.
func TestGeneratedMovesLeaveMoverKingSafe(t *testing.T) {
	positions := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	}

	var walk func(p *Position, depth int)
	walk = func(p *Position, depth int) {
		if depth == 0 {
			return
		}
		moves := p.GenerateLegalMoves()
		for i := 0; i < moves.Len(); i++ {
			m := moves.Get(i)
			mover := p.SideToMove
			undo := p.MakeMove(m)
			if p.IsSquareAttacked(p.KingSquare[mover], mover.Other()) {
				t.Errorf("move %v left %v king in check", m, mover)
			}
			walk(p, depth-1)
			p.UnmakeMove(m, undo)
		}
	}

	for _, fen := range positions {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		walk(pos, 2)
	}
}
