package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"sandbox_chess/internal/shared"
)

// StartingLayout is the standard initial arrangement.
const StartingLayout = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"

// ValidateLayout performs the structural check of a layout description:
// eight '/'-separated ranks, each summing to eight squares, made of the
// digits 1-8 and the letters pnbrqk in either case. King counts are not
// checked here.
func ValidateLayout(layout string) error {
	fail := func(offset int, format string, args ...any) error {
		return &LayoutError{Layout: layout, Offset: offset, Reason: fmt.Sprintf(format, args...)}
	}
	if layout == "" {
		return fail(0, "empty layout")
	}
	ranks := 1
	files := 0
	total := 0
	for i := 0; i < len(layout); i++ {
		ch := layout[i]
		switch {
		case ch == '/':
			if files != shared.FileCount {
				return fail(i, "rank %d has %d squares before '/', want %d", ranks, files, shared.FileCount)
			}
			ranks++
			if ranks > shared.RankCount {
				return fail(i, "more than %d ranks", shared.RankCount)
			}
			files = 0
		case ch >= '0' && ch <= '9':
			run := int(ch - '0')
			if run < 1 || run > shared.FileCount {
				return fail(i, "empty run %d outside 1-%d", run, shared.FileCount)
			}
			files += run
			total += run
		default:
			if _, _, ok := shared.PieceTypeFromLetter(ch); !ok {
				return fail(i, "unknown piece letter %q", ch)
			}
			files++
			total++
		}
		if files > shared.FileCount {
			return fail(i, "rank %d overflows %d files", ranks, shared.FileCount)
		}
	}
	if files != shared.FileCount {
		return fail(len(layout), "rank %d has %d squares, want %d", ranks, files, shared.FileCount)
	}
	if total != shared.SquareCount {
		return fail(len(layout), "layout covers %d squares, want %d", total, shared.SquareCount)
	}
	return nil
}

func IsValidLayout(layout string) bool { return ValidateLayout(layout) == nil }

// LoadLayout replaces every occupant with the pieces described by layout.
// The position is left untouched when the layout is rejected.
func (p *Position) LoadLayout(layout string) error {
	layout = strings.TrimSpace(layout)
	if err := ValidateLayout(layout); err != nil {
		return err
	}
	p.Clear()
	rank := shared.MaxRank
	file := 0
	for i := 0; i < len(layout); i++ {
		ch := layout[i]
		switch {
		case ch == '/':
			rank--
			file = 0
		case ch >= '1' && ch <= '8':
			file += int(ch - '0')
		default:
			color, pt, _ := shared.PieceTypeFromLetter(ch)
			sq, _ := shared.SquareFromCoords(file, rank)
			if _, err := p.Place(color, pt, sq); err != nil {
				return err
			}
			file++
		}
	}
	return nil
}

// Layout encodes the board in the same format LoadLayout reads.
func (p *Position) Layout() string {
	var b strings.Builder
	for rank := shared.MaxRank; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < shared.FileCount; file++ {
			sq, _ := shared.SquareFromCoords(file, rank)
			pc := p.pieceAt[sq]
			if pc == nil {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteByte(byte('0' + empty))
				empty = 0
			}
			b.WriteByte(pc.Type.Letter(pc.Color))
		}
		if empty > 0 {
			b.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			b.WriteByte('/')
		}
	}
	return b.String()
}

var errNothingToGenerate = errors.New("every piece type is excluded")

// RandomLayout fills both sides' two home ranks with random pieces drawn
// from the types not excluded. Each side gets exactly one king unless
// kings are excluded.
func RandomLayout(rng *rand.Rand, exclude ...PieceType) (string, error) {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	excluded := make(map[PieceType]bool, len(exclude))
	for _, pt := range exclude {
		excluded[pt] = true
	}
	var pool []PieceType
	for _, pt := range shared.AllPieceTypes {
		if pt != King && !excluded[pt] {
			pool = append(pool, pt)
		}
	}
	withKing := !excluded[King]
	if len(pool) == 0 {
		if withKing {
			return "", fmt.Errorf("random layout: only kings left: %w", errNothingToGenerate)
		}
		return "", fmt.Errorf("random layout: %w", errNothingToGenerate)
	}

	army := func() []PieceType {
		slots := make([]PieceType, 2*shared.FileCount)
		for i := range slots {
			slots[i] = pool[rng.IntN(len(pool))]
		}
		if withKing {
			slots[rng.IntN(len(slots))] = King
		}
		return slots
	}

	pos := NewPosition()
	for _, color := range []Color{White, Black} {
		slots := army()
		home := color.HomeRank()
		next := color.PawnRank()
		for i, pt := range slots {
			rank := home
			if i >= shared.FileCount {
				rank = next
			}
			sq, _ := shared.SquareFromCoords(i%shared.FileCount, rank)
			if _, err := pos.Place(color, pt, sq); err != nil {
				return "", err
			}
		}
	}
	return pos.Layout(), nil
}
