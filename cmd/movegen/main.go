// Command movegen is a minimal line-oriented driver over the legal move
// generator: set a position, run perft, probe an optional opening book,
// quit. It does not implement the full UCI protocol.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chesscore/legalmoves/internal/board"
	"github.com/chesscore/legalmoves/internal/book"
)

func main() {
	bookDir := flag.String("book", "", "badger database directory for an opening book (optional)")
	flag.Parse()

	d := &driver{position: board.NewPosition()}

	if *bookDir != "" {
		b, err := book.Open(*bookDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string failed to open book at %s: %v\n", *bookDir, err)
		} else {
			d.book = b
			defer b.Close()
		}
	}

	d.run(os.Stdin, os.Stdout)
}

type driver struct {
	position *board.Position
	book     *book.Book
}

func (d *driver) run(in *os.File, out *os.File) {
	scanner := bufio.NewScanner(in)
	w := bufio.NewWriter(out)
	defer w.Flush()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		cmd := fields[0]
		args := fields[1:]

		switch cmd {
		case "position":
			d.handlePosition(args)
		case "go":
			d.handleGo(args, w)
			w.Flush()
		case "book":
			d.handleBook(w)
			w.Flush()
		case "quit":
			return
		default:
			fmt.Fprintf(os.Stderr, "info string unknown command: %s\n", cmd)
		}
	}
}

// handlePosition accepts:
//   - position fen <FEN>
//   - position startpos [moves <uci> ...]
func (d *driver) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	var moveStart int

	switch args[0] {
	case "startpos":
		d.position = board.NewPosition()
		moveStart = 1
	case "fen":
		fenEnd := len(args)
		for i := 1; i < len(args); i++ {
			if args[i] == "moves" {
				fenEnd = i
				break
			}
		}
		fenStr := strings.Join(args[1:fenEnd], " ")
		pos, err := board.ParseFEN(fenStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string %v\n", err)
			return
		}
		d.position = pos
		moveStart = fenEnd
	default:
		fmt.Fprintf(os.Stderr, "info string unrecognized position subcommand: %s\n", args[0])
		return
	}

	if moveStart < len(args) && args[moveStart] == "moves" {
		for _, uci := range args[moveStart+1:] {
			m, err := board.ParseMove(uci, d.position)
			if err != nil {
				fmt.Fprintf(os.Stderr, "info string %v\n", err)
				return
			}
			d.position.MakeMove(m)
		}
	}
}

// handleGo accepts "go perft <depth>" and writes the divide output: one
// "<uci>: <nodes>" line per root move, then a "Nodes searched: <total>"
// summary.
func (d *driver) handleGo(args []string, w *bufio.Writer) {
	if len(args) < 2 || args[0] != "perft" {
		fmt.Fprintf(os.Stderr, "info string unsupported go command: %s\n", strings.Join(args, " "))
		return
	}

	depth, err := strconv.Atoi(args[1])
	if err != nil || depth < 0 {
		fmt.Fprintf(os.Stderr, "info string invalid perft depth: %s\n", args[1])
		return
	}

	total := perftDivide(d.position, depth, w)
	fmt.Fprintf(w, "Nodes searched: %d\n", total)
}

// perftDivide runs perft at depth from pos, printing one divide line per
// root move and returning the total leaf count.
func perftDivide(pos *board.Position, depth int, w *bufio.Writer) int64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	var total int64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := pos.MakeMove(m)
		nodes := perftCount(pos, depth-1)
		pos.UnmakeMove(m, undo)

		fmt.Fprintf(w, "%s: %d\n", m.String(), nodes)
		total += nodes
	}
	return total
}

// handleBook probes the opening book (if one was loaded with -book) for the
// current position and prints the chosen move, or "book miss".
func (d *driver) handleBook(w *bufio.Writer) {
	if d.book == nil {
		fmt.Fprintln(w, "info string no book loaded")
		return
	}

	m, found := d.book.Probe(d.position)
	if !found {
		fmt.Fprintln(w, "book miss")
		return
	}
	fmt.Fprintf(w, "book move: %s\n", m.String())
}

func perftCount(pos *board.Position, depth int) int64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return int64(moves.Len())
	}

	var nodes int64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := pos.MakeMove(m)
		nodes += perftCount(pos, depth-1)
		pos.UnmakeMove(m, undo)
	}
	return nodes
}
