package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Oliverans/GooseEngineMG/goosemg"
	"github.com/corentings/chess/v2"
	"github.com/dylhunn/dragontoothmg"
	"golang.org/x/exp/slices"

	"sandbox_chess/internal/game"
)

func main() {
	layout := flag.String("layout", game.StartingLayout, "board layout")
	fen := flag.String("fen", "", "full FEN record (overrides -layout and -turn)")
	turn := flag.String("turn", "white", "side to move for -layout")
	depth := flag.Int("depth", 0, "perft depth (required)")
	divide := flag.Bool("divide", false, "print per-move node counts at the root")
	verify := flag.Bool("verify", false, "compare against reference move generators")
	flag.Parse()

	if *depth <= 0 {
		fmt.Fprintln(os.Stderr, "-depth must be > 0")
		os.Exit(2)
	}

	s, err := game.NewSession()
	if err != nil {
		log.Fatalf("session: %v", err)
	}
	if *fen != "" {
		err = s.LoadFEN(*fen)
	} else {
		c, ok := game.ParseColor(*turn)
		if !ok {
			log.Fatalf("invalid -turn %q", *turn)
		}
		err = s.Load(*layout, c)
	}
	if err != nil {
		log.Fatalf("load: %v", err)
	}
	record := s.FEN()

	start := time.Now()
	if *divide {
		div, err := game.PerftDivide(s, *depth)
		if err != nil {
			log.Fatalf("perft: %v", err)
		}
		names := make([]string, 0, len(div))
		var sum uint64
		for name, n := range div {
			names = append(names, name)
			sum += n
		}
		slices.Sort(names)
		for _, name := range names {
			fmt.Printf("%s: %d\n", name, div[name])
		}
		fmt.Printf("Total: %d\n", sum)
	} else {
		n, err := game.Perft(s, *depth)
		if err != nil {
			log.Fatalf("perft: %v", err)
		}
		fmt.Printf("perft(%d) = %d (%s)\n", *depth, n, time.Since(start).Round(time.Millisecond))
	}

	if *verify && !check(s, record, *depth) {
		os.Exit(1)
	}
}

// check compares the session against goosemg perft, the dragontoothmg root
// move list and the corentings game status.
func check(s *game.Session, record string, depth int) bool {
	ok := true

	board, err := goosemg.ParseFEN(record)
	if err != nil {
		fmt.Printf("goosemg: cannot parse %q: %v\n", record, err)
		return false
	}
	ours, err := game.Perft(s, depth)
	if err != nil {
		fmt.Printf("perft: %v\n", err)
		return false
	}
	if ref := goosemg.Perft(board, depth); ref != ours {
		fmt.Printf("goosemg perft(%d) = %d, ours %d\n", depth, ref, ours)
		ok = false
	}

	all, err := s.AllLegalMoves(s.Turn())
	if err != nil {
		fmt.Printf("legal moves: %v\n", err)
		return false
	}
	names := make(map[string]bool)
	for from, moves := range all {
		for _, to := range moves.Squares() {
			names[from.String()+to.String()] = true
		}
	}
	dt := dragontoothmg.ParseFen(record)
	refMoves := dt.GenerateLegalMoves()
	refNames := make(map[string]bool)
	for i := range refMoves {
		name := refMoves[i].String()
		refNames[name[:4]] = true
	}
	for name := range refNames {
		if !names[name] {
			fmt.Printf("dragontoothmg: missing %s\n", name)
			ok = false
		}
	}
	for name := range names {
		if !refNames[name] {
			fmt.Printf("dragontoothmg: unexpected %s\n", name)
			ok = false
		}
	}

	opt, err := chess.FEN(record)
	if err != nil {
		fmt.Printf("chess: cannot parse %q: %v\n", record, err)
		return false
	}
	g := chess.NewGame(opt)
	mate := g.Method() == chess.Checkmate
	stale := g.Method() == chess.Stalemate
	if mate != (s.Status() == game.StatusCheckmate) || stale != (s.Status() == game.StatusStalemate) {
		fmt.Printf("chess: status %v, ours %s\n", g.Method(), s.Status())
		ok = false
	}

	if ok {
		fmt.Println("verify: ok")
	}
	return ok
}
