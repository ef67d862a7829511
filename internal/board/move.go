package board

import "fmt"

// Move encodes a chess move's mechanical detail (from, to, promotion piece,
// special-move tag) in packed bits, plus an ordering score carried
// alongside for the search layer. The generator always emits Score 0;
// move ordering is layered above by mutating Score before the first
// NextBest call.
//
// enc bits:
// 0-5:   from square (0-63)
// 6-11:  to square (0-63)
// 12-14: move type tag (see Flag* constants)
// 15-16: promotion piece (0=Knight, 1=Bishop, 2=Rook, 3=Queen)
type Move struct {
	enc   uint32
	Score int16
}

// Move type tags. DoublePush and the two castling sides are distinct from
// Normal so the move type alone tells a consumer what make_move must do,
// without re-deriving it from from/to arithmetic.
const (
	FlagNormal uint32 = iota << 12
	FlagDoublePush
	FlagEnPassant
	FlagCastleKing
	FlagCastleQueen
	FlagPromotion
)

const flagMask uint32 = 0x7 << 12

// NoMove represents an invalid or null move.
var NoMove = Move{}

// NewMove creates a normal move.
func NewMove(from, to Square) Move {
	return Move{enc: uint32(from) | uint32(to)<<6 | FlagNormal}
}

// NewDoublePush creates a pawn double-push move.
func NewDoublePush(from, to Square) Move {
	return Move{enc: uint32(from) | uint32(to)<<6 | FlagDoublePush}
}

// NewPromotion creates a promotion move (capture or not; IsCapture derives
// that from board occupancy at application time).
func NewPromotion(from, to Square, promo PieceType) Move {
	promoIdx := uint32(promo - Knight)
	return Move{enc: uint32(from) | uint32(to)<<6 | FlagPromotion | promoIdx<<15}
}

// NewEnPassant creates an en passant capture move.
func NewEnPassant(from, to Square) Move {
	return Move{enc: uint32(from) | uint32(to)<<6 | FlagEnPassant}
}

// NewCastling creates a castling move (king's two-square move), tagging
// king-side or queen-side from the direction of travel.
func NewCastling(from, to Square) Move {
	if to > from {
		return Move{enc: uint32(from) | uint32(to)<<6 | FlagCastleKing}
	}
	return Move{enc: uint32(from) | uint32(to)<<6 | FlagCastleQueen}
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m.enc & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m.enc >> 6) & 0x3F)
}

// Flag returns the move's type tag.
func (m Move) Flag() uint32 {
	return m.enc & flagMask
}

// Promotion returns the promotion piece type (only valid if IsPromotion() is true).
func (m Move) Promotion() PieceType {
	return PieceType((m.enc>>15)&3) + Knight
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Flag() == FlagPromotion
}

// IsDoublePush returns true if this is a pawn double push.
func (m Move) IsDoublePush() bool {
	return m.Flag() == FlagDoublePush
}

// IsCastling returns true if this is a castling move (either side).
func (m Move) IsCastling() bool {
	f := m.Flag()
	return f == FlagCastleKing || f == FlagCastleQueen
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Flag() == FlagEnPassant
}

// IsCapture returns true if this move captures a piece.
func (m Move) IsCapture(pos *Position) bool {
	if m.IsEnPassant() {
		return true
	}
	return !pos.IsEmpty(m.To())
}

// IsQuiet returns true if this is not a capture or promotion.
func (m Move) IsQuiet(pos *Position) bool {
	return !m.IsCapture(pos) && !m.IsPromotion()
}

// String returns the UCI format of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}

	s := m.From().String() + m.To().String()

	if m.IsPromotion() {
		promoChars := []byte{'n', 'b', 'r', 'q'}
		s += string(promoChars[m.Promotion()-Knight])
	}

	return s
}

// ParseMove parses a UCI format move string against the current position,
// recovering the special-move flags (castling, en passant, double push) that the bare
// string does not encode, and rejects anything that isn't one of pos's
// currently legal moves (§7: a UCI string that does not correspond to any
// move generated from the current position is an IllegalUciMoveError, not
// just a syntax check).
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, &IllegalUciMoveError{UCI: s, Reason: "too short"}
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, &IllegalUciMoveError{UCI: s, Reason: err.Error()}
	}

	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, &IllegalUciMoveError{UCI: s, Reason: err.Error()}
	}

	var m Move

	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, &IllegalUciMoveError{UCI: s, Reason: fmt.Sprintf("invalid promotion piece: %c", s[4])}
		}
		m = NewPromotion(from, to, promo)
	} else {
		piece := pos.PieceAt(from)
		if piece == NoPiece {
			return NoMove, &IllegalUciMoveError{UCI: s, Reason: fmt.Sprintf("no piece at %s", from)}
		}

		pt := piece.Type()

		switch {
		case pt == King && abs(int(to)-int(from)) == 2:
			m = NewCastling(from, to)
		case pt == Pawn && to == pos.EnPassant:
			m = NewEnPassant(from, to)
		case pt == Pawn && abs(int(to)-int(from)) == 16:
			m = NewDoublePush(from, to)
		default:
			m = NewMove(from, to)
		}
	}

	if !pos.GenerateLegalMoves().Contains(m) {
		return NoMove, &IllegalUciMoveError{UCI: s, Reason: "not a legal move in the current position"}
	}

	return m, nil
}

// MoveList is a fixed-capacity arena filled by a single GenerateLegalMoves call
// and drained by the consumer. It supports two draining disciplines:
// in-order (Get/Len, FIFO) and best-first (NextBest, an O(n) selection
// pass per extraction over the pending range).
//
// Invariant: extractIndex <= insertIndex <= len(moves).
type MoveList struct {
	moves        [256]Move
	insertIndex  int
	extractIndex int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Insert appends a generated move to the pending range.
func (ml *MoveList) Insert(m Move) {
	ml.moves[ml.insertIndex] = m
	ml.insertIndex++
}

// Add is an alias for Insert, kept for callers that fill the list
// move-by-move during generation.
func (ml *MoveList) Add(m Move) {
	ml.Insert(m)
}

// Len returns the total number of moves generated.
func (ml *MoveList) Len() int {
	return ml.insertIndex
}

// Remaining returns the number of moves not yet extracted via NextBest.
func (ml *MoveList) Remaining() int {
	return ml.insertIndex - ml.extractIndex
}

// Get returns the move at index i (0 <= i < Len()).
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set sets the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// NextBest moves the highest-scoring move among the pending range to
// extractIndex and returns it, or (NoMove, false) once the list is
// exhausted. Ties keep the earlier move in place.
func (ml *MoveList) NextBest() (Move, bool) {
	if ml.extractIndex >= ml.insertIndex {
		return NoMove, false
	}

	best := ml.extractIndex
	for i := ml.extractIndex + 1; i < ml.insertIndex; i++ {
		if ml.moves[i].Score > ml.moves[best].Score {
			best = i
		}
	}

	ml.moves[ml.extractIndex], ml.moves[best] = ml.moves[best], ml.moves[ml.extractIndex]
	m := ml.moves[ml.extractIndex]
	ml.extractIndex++
	return m, true
}

// Clear resets the list to empty.
func (ml *MoveList) Clear() {
	ml.insertIndex = 0
	ml.extractIndex = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.insertIndex; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the generated moves as a slice (0 .. Len()).
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.insertIndex]
}

// UndoInfo stores information needed to undo a move.
type UndoInfo struct {
	CapturedPiece  Piece
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	Hash           uint64
	Checkers       Bitboard
	KingSquare     [2]Square
	Pieces         [2][6]Bitboard
	Occupied       [2]Bitboard
	AllOccupied    Bitboard
	Valid          bool
}
