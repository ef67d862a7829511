package board

// Precomputed ray/mask tables (§4.D) and the check/pin mask derivation
// (§4.H) that the move generator builds its legality constraints from.

var (
	// RankMasks and FileMasks hold the line of sq minus sq itself.
	RankMasks [64]Bitboard
	FileMasks [64]Bitboard

	// D1Masks covers the a1-h8 direction diagonals (rank-file constant),
	// D2Masks the a8-h1 direction anti-diagonals (rank+file constant).
	D1Masks [64]Bitboard
	D2Masks [64]Bitboard

	// sliderHVCheckMask[king*64+slider]: squares strictly between king and
	// slider plus the slider square, if they share a rank or file;
	// otherwise Empty.
	sliderHVCheckMask [64 * 64]Bitboard
	// sliderD12CheckMask: analogous for diagonals.
	sliderD12CheckMask [64 * 64]Bitboard
)

const (
	TopRank            = Rank8
	BottomRank         = Rank1
	PawnInitWhiteRank  = Rank2
	PawnInitBlackRank  = Rank7
)

func init() {
	initLineMasks()
	initSliderCheckMasks()
}

func initLineMasks() {
	var diag, antiDiag [15]Bitboard

	for sq := A1; sq <= H8; sq++ {
		f, r := sq.File(), sq.Rank()
		diag[r-f+7] |= SquareBB(sq)
		antiDiag[r+f] |= SquareBB(sq)
	}

	for sq := A1; sq <= H8; sq++ {
		f, r := sq.File(), sq.Rank()
		RankMasks[sq] = RankMask[r] &^ SquareBB(sq)
		FileMasks[sq] = FileMask[f] &^ SquareBB(sq)
		D1Masks[sq] = diag[r-f+7] &^ SquareBB(sq)
		D2Masks[sq] = antiDiag[r+f] &^ SquareBB(sq)
	}
}

func initSliderCheckMasks() {
	for king := A1; king <= H8; king++ {
		for slider := A1; slider <= H8; slider++ {
			if king == slider {
				continue
			}
			idx := int(king)*64 + int(slider)

			if RankMasks[king].IsSet(slider) || FileMasks[king].IsSet(slider) {
				sliderHVCheckMask[idx] = Between(king, slider) | SquareBB(slider)
			}
			if D1Masks[king].IsSet(slider) || D2Masks[king].IsSet(slider) {
				sliderD12CheckMask[idx] = Between(king, slider) | SquareBB(slider)
			}
		}
	}
}

// SliderHVCheckMask returns the mask used to resolve a check from a
// rank/file-aligned slider sitting on slider, attacking king.
func SliderHVCheckMask(king, slider Square) Bitboard {
	return sliderHVCheckMask[int(king)*64+int(slider)]
}

// SliderD12CheckMask is the diagonal analog of SliderHVCheckMask.
func SliderD12CheckMask(king, slider Square) Bitboard {
	return sliderD12CheckMask[int(king)*64+int(slider)]
}

// pinMaskAlong returns the line between king and slider (inclusive of
// slider) if exactly one piece lies strictly between them, else Empty.
// The caller restricts the sole blocker's legal destinations to this mask.
func pinMaskAlong(occ Bitboard, king, slider Square) Bitboard {
	between := Between(king, slider)
	blockers := between & occ
	if blockers.PopCount() != 1 {
		return Empty
	}
	return between | SquareBB(slider)
}

// GenerateCheckMask returns FULL if color's king is not in check, otherwise
// the union of checking squares and the ray to the king for slider
// checkers (§4.H). The caller detects double check via
// popcount(mask & opponent_pieces) > 1.
func (p *Position) GenerateCheckMask(us Color) Bitboard {
	them := us.Other()
	king := p.KingSquare[us]
	occ := p.AllOccupied

	var mask Bitboard

	kingRookRays := RookAttacks(king, occ)
	hvSliders := (p.Pieces[them][Rook] | p.Pieces[them][Queen]) & (RankMasks[king] | FileMasks[king])
	for hvSliders != 0 {
		slider := hvSliders.PopLSB()
		m := SliderHVCheckMask(king, slider)
		if m != 0 && m&kingRookRays == m {
			mask |= m
		}
	}

	kingBishopRays := BishopAttacks(king, occ)
	d12Sliders := (p.Pieces[them][Bishop] | p.Pieces[them][Queen]) & (D1Masks[king] | D2Masks[king])
	for d12Sliders != 0 {
		slider := d12Sliders.PopLSB()
		m := SliderD12CheckMask(king, slider)
		if m != 0 && m&kingBishopRays == m {
			mask |= m
		}
	}

	mask |= PawnAttacks(king, us) & p.Pieces[them][Pawn]
	mask |= KnightAttacks(king) & p.Pieces[them][Knight]

	if mask == 0 {
		return Universe
	}
	return mask
}

// GenerateHVPinMask ORs pin_mask_h/v(occ, king, slider) over every enemy
// rook or queen sharing king's rank or file.
func (p *Position) GenerateHVPinMask(us Color) Bitboard {
	them := us.Other()
	king := p.KingSquare[us]
	occ := p.AllOccupied

	var mask Bitboard
	sliders := (p.Pieces[them][Rook] | p.Pieces[them][Queen]) & (RankMasks[king] | FileMasks[king])
	for sliders != 0 {
		slider := sliders.PopLSB()
		mask |= pinMaskAlong(occ, king, slider)
	}
	return mask
}

// GenerateD12PinMask is the diagonal analog of GenerateHVPinMask.
func (p *Position) GenerateD12PinMask(us Color) Bitboard {
	them := us.Other()
	king := p.KingSquare[us]
	occ := p.AllOccupied

	var mask Bitboard
	sliders := (p.Pieces[them][Bishop] | p.Pieces[them][Queen]) & (D1Masks[king] | D2Masks[king])
	for sliders != 0 {
		slider := sliders.PopLSB()
		mask |= pinMaskAlong(occ, king, slider)
	}
	return mask
}

// EnPassantExposesCheck reports whether capturing en passant from `from`
// would expose the king to a discovered check -- the classic "two pawns
// and a rook on the same rank" case that a naive per-piece pin check
// misses, since neither pawn alone was pinned. It removes only the
// capturing pawn (the captured pawn is still on the board, and the
// capturing pawn has not yet landed on the target square) and asks
// whether the captured square is the sole remaining blocker on the king's
// rank or diagonals toward an enemy slider -- exactly pinMaskAlong's
// question, reused here instead of removing both pawns unconditionally.
// The king's file is not tested: the target square sits next to the
// captured square on the same file, so it re-blocks any file line the
// capture opens. Removing both pawns and looking for an empty line would
// also wrongly flag a legal capture when the capturing pawn stands on a
// diagonal through the target square, because landing there re-blocks it.
func (p *Position) EnPassantExposesCheck(us Color, from Square) bool {
	them := us.Other()
	king := p.KingSquare[us]

	capturedSq := p.EnPassant - 8
	if us == Black {
		capturedSq = p.EnPassant + 8
	}

	occ := p.AllOccupied &^ SquareBB(from)

	hvSliders := (p.Pieces[them][Rook] | p.Pieces[them][Queen]) & RankMasks[king]
	for hvSliders != 0 {
		slider := hvSliders.PopLSB()
		if pinMaskAlong(occ, king, slider).IsSet(capturedSq) {
			return true
		}
	}
	d12Sliders := (p.Pieces[them][Bishop] | p.Pieces[them][Queen]) & (D1Masks[king] | D2Masks[king])
	for d12Sliders != 0 {
		slider := d12Sliders.PopLSB()
		if pinMaskAlong(occ, king, slider).IsSet(capturedSq) {
			return true
		}
	}
	return false
}

// attackedSquares returns every square attacked by color, with own king
// removed from the occupancy first so that a king cannot "hide" behind
// itself when stepping back along a slider's ray.
func (p *Position) attackedSquares(by Color, kingOfVictim Color) Bitboard {
	occ := p.AllOccupied &^ p.Pieces[kingOfVictim][King]

	var attacked Bitboard

	pawns := p.Pieces[by][Pawn]
	for pawns != 0 {
		sq := pawns.PopLSB()
		attacked |= PawnAttacks(sq, by)
	}

	knights := p.Pieces[by][Knight]
	for knights != 0 {
		attacked |= KnightAttacks(knights.PopLSB())
	}

	bishops := p.Pieces[by][Bishop] | p.Pieces[by][Queen]
	for bishops != 0 {
		attacked |= BishopAttacks(bishops.PopLSB(), occ)
	}

	rooks := p.Pieces[by][Rook] | p.Pieces[by][Queen]
	for rooks != 0 {
		attacked |= RookAttacks(rooks.PopLSB(), occ)
	}

	attacked |= KingAttacks(p.Pieces[by][King].LSB())

	return attacked
}
