package board

// GenerateLegalMoves is the master legal move generator (§4.I). It derives
// the check mask and, outside double check, the two pin masks, then uses
// them to constrain every piece type's destination set directly -- no
// pseudo-legal generation followed by a make/unmake legality filter.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := NewMoveList()

	us := p.SideToMove
	them := us.Other()
	checkMask := p.GenerateCheckMask(us)
	inCheck := checkMask != Universe

	if inCheck && (checkMask&p.Occupied[them]).PopCount() > 1 {
		p.generateKingMoves(ml, us, false)
		return ml
	}

	hvPin := p.GenerateHVPinMask(us)
	d12Pin := p.GenerateD12PinMask(us)
	valid := ^p.Occupied[us] & checkMask

	p.generatePawnMoves(ml, us, checkMask, hvPin, d12Pin)
	p.generateKnightMoves(ml, us, valid, hvPin, d12Pin)
	p.generateRookLikeMoves(ml, p.Pieces[us][Rook]|p.Pieces[us][Queen], valid, hvPin, d12Pin)
	p.generateBishopLikeMoves(ml, p.Pieces[us][Bishop]|p.Pieces[us][Queen], valid, hvPin, d12Pin)
	p.generateKingMoves(ml, us, true)

	return ml
}

// GeneratePseudoLegalMoves is kept as an alias of GenerateLegalMoves;
// since the generator above is already fully legal, the two return the
// same list.
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	return p.GenerateLegalMoves()
}

func (p *Position) generateKnightMoves(ml *MoveList, us Color, valid, hvPin, d12Pin Bitboard) {
	knights := p.Pieces[us][Knight] &^ (hvPin | d12Pin)
	for knights != 0 {
		from := knights.PopLSB()
		attacks := KnightAttacks(from) & valid
		emitMoves(ml, from, attacks)
	}
}

// generateRookLikeMoves handles the rank/file component of rooks and
// queens. A queen pinned on the diagonal is skipped here (it has no hv
// moves available) and picked up by generateBishopLikeMoves instead.
func (p *Position) generateRookLikeMoves(ml *MoveList, pieces, valid, hvPin, d12Pin Bitboard) {
	occ := p.AllOccupied

	hvPinned := pieces & hvPin
	for hvPinned != 0 {
		from := hvPinned.PopLSB()
		attacks := RookAttacks(from, occ) & valid & hvPin
		emitMoves(ml, from, attacks)
	}

	unpinned := pieces &^ (hvPin | d12Pin)
	for unpinned != 0 {
		from := unpinned.PopLSB()
		attacks := RookAttacks(from, occ) & valid
		emitMoves(ml, from, attacks)
	}
}

// generateBishopLikeMoves handles the diagonal component of bishops and
// queens, mirroring generateRookLikeMoves.
func (p *Position) generateBishopLikeMoves(ml *MoveList, pieces, valid, hvPin, d12Pin Bitboard) {
	occ := p.AllOccupied

	d12Pinned := pieces & d12Pin
	for d12Pinned != 0 {
		from := d12Pinned.PopLSB()
		attacks := BishopAttacks(from, occ) & valid & d12Pin
		emitMoves(ml, from, attacks)
	}

	unpinned := pieces &^ (hvPin | d12Pin)
	for unpinned != 0 {
		from := unpinned.PopLSB()
		attacks := BishopAttacks(from, occ) & valid
		emitMoves(ml, from, attacks)
	}
}

func emitMoves(ml *MoveList, from Square, targets Bitboard) {
	for targets != 0 {
		ml.Add(NewMove(from, targets.PopLSB()))
	}
}

// generatePawnMoves partitions own pawns by pin discipline (§4.I.pawn):
// hv-pinned pawns may only push, d12-pinned pawns may only capture,
// unpinned pawns do both.
func (p *Position) generatePawnMoves(ml *MoveList, us Color, checkMask, hvPin, d12Pin Bitboard) {
	pawns := p.Pieces[us][Pawn]

	hvPinned := pawns & hvPin
	quietValid := checkMask & hvPin
	for hvPinned != 0 {
		p.generateQuietPawnMoves(ml, us, hvPinned.PopLSB(), quietValid)
	}

	d12Pinned := pawns & d12Pin
	for d12Pinned != 0 {
		p.generatePawnCaptures(ml, us, d12Pinned.PopLSB(), checkMask, d12Pin)
	}

	unpinned := pawns &^ (hvPin | d12Pin)
	for unpinned != 0 {
		from := unpinned.PopLSB()
		p.generateQuietPawnMoves(ml, us, from, checkMask)
		p.generatePawnCaptures(ml, us, from, checkMask, Universe)
	}
}

func pawnForward(us Color, sq Square) Square {
	if us == White {
		return sq + 8
	}
	return sq - 8
}

func (p *Position) generateQuietPawnMoves(ml *MoveList, us Color, from Square, valid Bitboard) {
	fwd := pawnForward(us, from)
	if !p.IsEmpty(fwd) {
		return
	}

	promoRank := TopRank
	initRank := PawnInitWhiteRank
	if us == Black {
		promoRank = BottomRank
		initRank = PawnInitBlackRank
	}

	if valid.IsSet(fwd) {
		if promoRank.IsSet(fwd) {
			addPromotions(ml, from, fwd)
		} else {
			ml.Add(NewMove(from, fwd))
		}
	}

	if initRank.IsSet(from) {
		dbl := pawnForward(us, fwd)
		if p.IsEmpty(dbl) && valid.IsSet(dbl) {
			ml.Add(NewDoublePush(from, dbl))
		}
	}
}

func (p *Position) generatePawnCaptures(ml *MoveList, us Color, from Square, checkMask, pinMask Bitboard) {
	them := us.Other()
	attacks := PawnAttacks(from, us)

	promoRank := TopRank
	if us == Black {
		promoRank = BottomRank
	}

	captures := attacks & pinMask & checkMask & p.Occupied[them]
	for captures != 0 {
		to := captures.PopLSB()
		if promoRank.IsSet(to) {
			addPromotions(ml, from, to)
		} else {
			ml.Add(NewMove(from, to))
		}
	}

	if p.EnPassant == NoSquare {
		return
	}

	if attacks&pinMask&SquareBB(p.EnPassant) == 0 {
		return
	}

	capturedSq := p.EnPassant - 8
	if us == Black {
		capturedSq = p.EnPassant + 8
	}

	if !(checkMask.IsSet(p.EnPassant) || checkMask.IsSet(capturedSq)) {
		return
	}

	if p.EnPassantExposesCheck(us, from) {
		return
	}

	ml.Add(NewEnPassant(from, p.EnPassant))
}

// addPromotions adds all four promotion moves.
func addPromotions(ml *MoveList, from, to Square) {
	ml.Add(NewPromotion(from, to, Queen))
	ml.Add(NewPromotion(from, to, Rook))
	ml.Add(NewPromotion(from, to, Bishop))
	ml.Add(NewPromotion(from, to, Knight))
}

// generateKingMoves emits the king's normal step moves plus, when
// genCastling is true and the king's own square isn't attacked, castling
// (§4.I.king). The attacked-without-own-king mask also rules out normal
// king steps that would walk into a slider's ray.
func (p *Position) generateKingMoves(ml *MoveList, us Color, genCastling bool) {
	them := us.Other()
	from := p.KingSquare[us]
	attacked := p.attackedSquares(them, us)

	legal := KingAttacks(from) &^ attacked &^ p.Occupied[us]
	emitMoves(ml, from, legal)

	if !genCastling || attacked.IsSet(from) {
		return
	}

	p.generateCastlingMoves(ml, us, attacked)
}

type castlingSide struct {
	right      CastlingRights
	kingFrom   Square
	kingTo     Square
	openMask   Bitboard
	attackMask Bitboard
}

var castlingSides = [2][2]castlingSide{
	White: {
		{WhiteKingSideCastle, E1, G1, SquareBB(F1) | SquareBB(G1), SquareBB(E1) | SquareBB(F1) | SquareBB(G1)},
		{WhiteQueenSideCastle, E1, C1, SquareBB(B1) | SquareBB(C1) | SquareBB(D1), SquareBB(C1) | SquareBB(D1) | SquareBB(E1)},
	},
	Black: {
		{BlackKingSideCastle, E8, G8, SquareBB(F8) | SquareBB(G8), SquareBB(E8) | SquareBB(F8) | SquareBB(G8)},
		{BlackQueenSideCastle, E8, C8, SquareBB(B8) | SquareBB(C8) | SquareBB(D8), SquareBB(C8) | SquareBB(D8) | SquareBB(E8)},
	},
}

func (p *Position) generateCastlingMoves(ml *MoveList, us Color, attacked Bitboard) {
	for _, side := range castlingSides[us] {
		if p.CastlingRights&side.right == 0 {
			continue
		}
		if p.AllOccupied&side.openMask != 0 {
			continue
		}
		if attacked&side.attackMask != 0 {
			continue
		}
		ml.Add(NewCastling(side.kingFrom, side.kingTo))
	}
}

// MakeMove applies a move to the position and returns undo information.
func (p *Position) MakeMove(m Move) UndoInfo {
	undo := UndoInfo{
		CapturedPiece:  NoPiece,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		Hash:           p.Hash,
		Checkers:       p.Checkers,
		Valid:          false,
	}

	us := p.SideToMove
	them := us.Other()
	from := m.From()
	to := m.To()
	piece := p.PieceAt(from)

	if piece == NoPiece {
		return undo
	}

	undo.Valid = true
	pt := piece.Type()

	p.Hash ^= zobristSideToMove
	p.Hash ^= zobristCastling[p.CastlingRights]

	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	p.EnPassant = NoSquare

	if m.IsEnPassant() {
		var capturedSq Square
		if us == White {
			capturedSq = to - 8
		} else {
			capturedSq = to + 8
		}
		undo.CapturedPiece = p.removePiece(capturedSq)
		p.Hash ^= zobristPiece[them][Pawn][capturedSq]
	} else if captured := p.PieceAt(to); captured != NoPiece {
		undo.CapturedPiece = captured
		p.removePiece(to)
		p.Hash ^= zobristPiece[them][captured.Type()][to]
	}

	p.movePiece(from, to)
	p.Hash ^= zobristPiece[us][pt][from]
	p.Hash ^= zobristPiece[us][pt][to]

	if m.IsPromotion() {
		promoPt := m.Promotion()
		p.Pieces[us][Pawn] &^= SquareBB(to)
		p.Pieces[us][promoPt] |= SquareBB(to)
		p.Hash ^= zobristPiece[us][Pawn][to]
		p.Hash ^= zobristPiece[us][promoPt][to]
	}

	if m.IsCastling() {
		var rookFrom, rookTo Square
		if to > from {
			rookFrom = NewSquare(7, from.Rank())
			rookTo = NewSquare(5, from.Rank())
		} else {
			rookFrom = NewSquare(0, from.Rank())
			rookTo = NewSquare(3, from.Rank())
		}
		p.movePiece(rookFrom, rookTo)
		p.Hash ^= zobristPiece[us][Rook][rookFrom]
		p.Hash ^= zobristPiece[us][Rook][rookTo]
	}

	if pt == King {
		if us == White {
			p.CastlingRights &^= WhiteKingSideCastle | WhiteQueenSideCastle
		} else {
			p.CastlingRights &^= BlackKingSideCastle | BlackQueenSideCastle
		}
	}

	if from == A1 || to == A1 {
		p.CastlingRights &^= WhiteQueenSideCastle
	}
	if from == H1 || to == H1 {
		p.CastlingRights &^= WhiteKingSideCastle
	}
	if from == A8 || to == A8 {
		p.CastlingRights &^= BlackQueenSideCastle
	}
	if from == H8 || to == H8 {
		p.CastlingRights &^= BlackKingSideCastle
	}
	p.Hash ^= zobristCastling[p.CastlingRights]

	if m.IsDoublePush() {
		epSquare := Square((int(from) + int(to)) / 2)
		p.EnPassant = epSquare
		p.Hash ^= zobristEnPassant[epSquare.File()]
	}

	if pt == Pawn || undo.CapturedPiece != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}

	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = them
	p.UpdateCheckers()

	return undo
}

// UnmakeMove undoes a move using the stored undo information.
func (p *Position) UnmakeMove(m Move, undo UndoInfo) {
	them := p.SideToMove
	us := them.Other()
	from := m.From()
	to := m.To()

	p.CastlingRights = undo.CastlingRights
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	p.Hash = undo.Hash
	p.Checkers = undo.Checkers
	p.SideToMove = us

	if us == Black {
		p.FullMoveNumber--
	}

	if m.IsPromotion() {
		promoPt := m.Promotion()
		p.Pieces[us][promoPt] &^= SquareBB(to)
		p.Pieces[us][Pawn] |= SquareBB(to)
	}

	p.movePiece(to, from)

	if m.IsCastling() {
		var rookFrom, rookTo Square
		if to > from {
			rookFrom = NewSquare(7, from.Rank())
			rookTo = NewSquare(5, from.Rank())
		} else {
			rookFrom = NewSquare(0, from.Rank())
			rookTo = NewSquare(3, from.Rank())
		}
		p.movePiece(rookTo, rookFrom)
	}

	if undo.CapturedPiece != NoPiece {
		if m.IsEnPassant() {
			var capturedSq Square
			if us == White {
				capturedSq = to - 8
			} else {
				capturedSq = to + 8
			}
			p.setPiece(undo.CapturedPiece, capturedSq)
		} else {
			p.setPiece(undo.CapturedPiece, to)
		}
	}
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p *Position) HasLegalMoves() bool {
	return p.GenerateLegalMoves().Len() > 0
}

// IsCheckmate returns true if the position is checkmate.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the position is stalemate.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// IsDraw returns true if the position is a draw (stalemate, 50-move, insufficient material).
func (p *Position) IsDraw() bool {
	if p.IsStalemate() {
		return true
	}
	if p.HalfMoveClock >= 100 {
		return true
	}
	return p.IsInsufficientMaterial()
}

// IsInsufficientMaterial returns true if neither side can checkmate.
func (p *Position) IsInsufficientMaterial() bool {
	if p.Pieces[White][Pawn]|p.Pieces[Black][Pawn] != 0 ||
		p.Pieces[White][Rook]|p.Pieces[Black][Rook] != 0 ||
		p.Pieces[White][Queen]|p.Pieces[Black][Queen] != 0 {
		return false
	}

	wKnights := p.Pieces[White][Knight].PopCount()
	wBishops := p.Pieces[White][Bishop].PopCount()
	bKnights := p.Pieces[Black][Knight].PopCount()
	bBishops := p.Pieces[Black][Bishop].PopCount()

	if wKnights+wBishops+bKnights+bBishops == 0 {
		return true
	}
	if wKnights+wBishops <= 1 && bKnights+bBishops == 0 {
		return true
	}
	if bKnights+bBishops <= 1 && wKnights+wBishops == 0 {
		return true
	}

	return false
}
