package board

import "fmt"

// FenParseField identifies which FEN field failed to parse.
type FenParseField int

const (
	FenParsePlacement FenParseField = iota
	FenParseSide
	FenParseCastling
	FenParseEnPassant
	FenParseClock
)

func (f FenParseField) String() string {
	switch f {
	case FenParsePlacement:
		return "Placement"
	case FenParseSide:
		return "Side"
	case FenParseCastling:
		return "Castling"
	case FenParseEnPassant:
		return "EnPassant"
	case FenParseClock:
		return "Clock"
	default:
		return "Unknown"
	}
}

// FenParseError reports a malformed FEN field (§7).
type FenParseError struct {
	Field  FenParseField
	Detail string
}

func (e *FenParseError) Error() string {
	return fmt.Sprintf("FEN parse error in %s field: %s", e.Field, e.Detail)
}

func newFenParseError(field FenParseField, format string, args ...any) *FenParseError {
	return &FenParseError{Field: field, Detail: fmt.Sprintf(format, args...)}
}

// IllegalUciMoveError reports a UCI move string that does not correspond
// to any move generated from the current position.
type IllegalUciMoveError struct {
	UCI    string
	Reason string
}

func (e *IllegalUciMoveError) Error() string {
	return fmt.Sprintf("illegal UCI move %q: %s", e.UCI, e.Reason)
}

// PositionInvariantViolatedError is a defensive check failure (two kings,
// pawns on the back rank, etc.). Fatal -- it indicates a bug in the
// caller or in a FEN source, not a recoverable user error.
type PositionInvariantViolatedError struct {
	Detail string
}

func (e *PositionInvariantViolatedError) Error() string {
	return fmt.Sprintf("position invariant violated: %s", e.Detail)
}
