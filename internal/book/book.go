// Package book provides an opening book backed by an embedded badger store,
// keyed by the position's Polyglot-style hash (board.Position.PolyglotHash).
package book

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/chesscore/legalmoves/internal/board"
)

// bookEntry is a single weighted candidate move for a position.
type bookEntry struct {
	From   board.Square
	To     board.Square
	Promo  board.PieceType // NoPieceType if not a promotion
	Weight uint16
}

const entrySize = 5 // from(1) to(1) promo(1) weight(2 BE)

// Book is an opening book backed by a badger database. Positions are keyed
// by their 8-byte big-endian Polyglot hash; the value is a concatenation of
// fixed-size entry records so multiple candidate moves share one key.
type Book struct {
	db *badger.DB
}

// Open opens (or creates) the badger database at dir.
func Open(dir string) (*Book, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open opening book at %s: %w", dir, err)
	}
	return &Book{db: db}, nil
}

// Close closes the underlying database.
func (b *Book) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// ImportPolyglot streams standard 16-byte Polyglot book entries from r and
// writes them into the store, grouped by position key. A key that is
// already stored has its entries replaced by the ones read from r.
//
// Polyglot entry layout: 8 bytes big-endian key, 2 bytes move, 2 bytes
// weight, 4 bytes learn data (ignored).
func (b *Book) ImportPolyglot(r io.Reader) (int, error) {
	byKey := make(map[uint64][]bookEntry)

	var raw [16]byte
	for {
		_, err := io.ReadFull(r, raw[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read polyglot entry: %w", err)
		}

		key := binary.BigEndian.Uint64(raw[0:8])
		moveData := binary.BigEndian.Uint16(raw[8:10])
		weight := binary.BigEndian.Uint16(raw[10:12])

		from, to, promo := decodePolyglotMove(moveData)
		byKey[key] = append(byKey[key], bookEntry{From: from, To: to, Promo: promo, Weight: weight})
	}

	imported := 0
	err := b.db.Update(func(txn *badger.Txn) error {
		for key, entries := range byKey {
			value := encodeEntries(entries)
			keyBytes := make([]byte, 8)
			binary.BigEndian.PutUint64(keyBytes, key)
			if err := txn.Set(keyBytes, value); err != nil {
				return err
			}
			imported += len(entries)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("import polyglot entries: %w", err)
	}
	return imported, nil
}

// LoadPolyglotFile opens filename and imports it.
func (b *Book) LoadPolyglotFile(filename string) (int, error) {
	f, err := os.Open(filename)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return b.ImportPolyglot(f)
}

func encodeEntries(entries []bookEntry) []byte {
	buf := make([]byte, 0, len(entries)*entrySize)
	for _, e := range entries {
		promo := byte(0)
		if e.Promo != board.NoPieceType {
			promo = byte(e.Promo) + 1
		}
		weight := make([]byte, 2)
		binary.BigEndian.PutUint16(weight, e.Weight)
		buf = append(buf, byte(e.From), byte(e.To), promo)
		buf = append(buf, weight...)
	}
	return buf
}

func decodeEntries(value []byte) []bookEntry {
	var entries []bookEntry
	for i := 0; i+entrySize <= len(value); i += entrySize {
		rec := value[i : i+entrySize]
		promo := board.NoPieceType
		if rec[2] != 0 {
			promo = board.PieceType(rec[2] - 1)
		}
		entries = append(entries, bookEntry{
			From:   board.Square(rec[0]),
			To:     board.Square(rec[1]),
			Promo:  promo,
			Weight: binary.BigEndian.Uint16(rec[3:5]),
		})
	}
	return entries
}

// decodePolyglotMove converts a Polyglot move encoding into a from/to/promo
// triple, translating Polyglot's king-captures-rook castling encoding into
// this engine's king-steps-two-squares convention.
//
// Polyglot move bits: 0-5 to (file|rank<<3), 6-11 from, 12-14 promotion
// (0=none, 1=knight, 2=bishop, 3=rook, 4=queen).
func decodePolyglotMove(data uint16) (from, to board.Square, promo board.PieceType) {
	toFile := data & 7
	toRank := (data >> 3) & 7
	fromFile := (data >> 6) & 7
	fromRank := (data >> 9) & 7
	promoBits := (data >> 12) & 7

	from = board.NewSquare(int(fromFile), int(fromRank))
	to = board.NewSquare(int(toFile), int(toRank))

	switch {
	case from == board.E1 && to == board.H1:
		to = board.G1
	case from == board.E1 && to == board.A1:
		to = board.C1
	case from == board.E8 && to == board.H8:
		to = board.G8
	case from == board.E8 && to == board.A8:
		to = board.C8
	}

	promo = board.NoPieceType
	if promoBits > 0 {
		promoTypes := [5]board.PieceType{board.NoPieceType, board.Knight, board.Bishop, board.Rook, board.Queen}
		promo = promoTypes[promoBits]
	}

	return from, to, promo
}

// Probe looks up pos in the book and returns a move chosen by weighted
// random selection among the stored candidates, or (NoMove, false) on a
// miss. The returned move is resolved against pos's actual legal moves so
// it carries the correct castling/en-passant/promotion flags.
func (b *Book) Probe(pos *board.Position) (board.Move, bool) {
	entries, err := b.lookup(pos)
	if err != nil || len(entries) == 0 {
		return board.NoMove, false
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Weight > entries[j].Weight })

	var totalWeight uint32
	for _, e := range entries {
		totalWeight += uint32(e.Weight)
	}

	if totalWeight == 0 {
		return resolveAgainstPosition(pos, entries[0]), true
	}

	r := rand.Uint32() % totalWeight
	var cumulative uint32
	for _, e := range entries {
		cumulative += uint32(e.Weight)
		if r < cumulative {
			return resolveAgainstPosition(pos, e), true
		}
	}

	return resolveAgainstPosition(pos, entries[0]), true
}

// ProbeAll returns every book candidate for pos, sorted by descending
// weight, resolved against pos's legal moves.
func (b *Book) ProbeAll(pos *board.Position) []board.Move {
	entries, err := b.lookup(pos)
	if err != nil || len(entries) == 0 {
		return nil
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Weight > entries[j].Weight })

	moves := make([]board.Move, 0, len(entries))
	for _, e := range entries {
		if m := resolveAgainstPosition(pos, e); m != board.NoMove {
			moves = append(moves, m)
		}
	}
	return moves
}

func (b *Book) lookup(pos *board.Position) ([]bookEntry, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}

	keyBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(keyBytes, pos.PolyglotHash())

	var entries []bookEntry
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyBytes)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			entries = decodeEntries(val)
			return nil
		})
	})
	return entries, err
}

// resolveAgainstPosition finds the legal move matching e's from/to/promo,
// recovering the special-move flags the raw book entry does not carry.
func resolveAgainstPosition(pos *board.Position, e bookEntry) board.Move {
	legal := pos.GenerateLegalMoves()
	for i := 0; i < legal.Len(); i++ {
		m := legal.Get(i)
		if m.From() != e.From || m.To() != e.To {
			continue
		}
		if e.Promo == board.NoPieceType {
			if !m.IsPromotion() {
				return m
			}
			continue
		}
		if m.IsPromotion() && m.Promotion() == e.Promo {
			return m
		}
	}
	return board.NoMove
}
