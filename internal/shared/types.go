package shared

import (
	"fmt"
	"strings"
)

const (
	FileCount   = 8
	RankCount   = 8
	SquareCount = FileCount * RankCount

	MaxFile   = FileCount - 1
	MaxRank   = RankCount - 1
	MaxSquare = SquareCount - 1
)

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Forward is the direction pawns of this color advance in.
func (c Color) Forward() Direction {
	if c == White {
		return Top
	}
	return Bottom
}

// HomeRank is the rank holding the color's king and rooks in the standard layout.
func (c Color) HomeRank() int {
	if c == White {
		return 0
	}
	return MaxRank
}

// PawnRank is the rank pawns of this color start on in the standard layout.
func (c Color) PawnRank() int {
	if c == White {
		return 1
	}
	return MaxRank - 1
}

// PromotionRank is the far rank for pawns of this color.
func (c Color) PromotionRank() int {
	if c == White {
		return MaxRank
	}
	return 0
}

func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	default:
		return 0, false
	}
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Color) UnmarshalText(text []byte) error {
	parsed, ok := ParseColor(string(text))
	if !ok {
		return fmt.Errorf("invalid color %q", string(text))
	}
	*c = parsed
	return nil
}

type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
)

var AllPieceTypes = [...]PieceType{Pawn, Knight, Bishop, Rook, Queen, King}

func (p PieceType) String() string {
	switch p {
	case Pawn:
		return "P"
	case Knight:
		return "N"
	case Bishop:
		return "B"
	case Rook:
		return "R"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return fmt.Sprintf("piece(%d)", p)
	}
}

// Name returns the lowercase English name of the piece type.
func (p PieceType) Name() string {
	switch p {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "?"
	}
}

// Letter returns the layout letter for a piece of type p and color c:
// uppercase for White, lowercase for Black.
func (p PieceType) Letter(c Color) byte {
	l := p.String()[0]
	if c == Black {
		return l + ('a' - 'A')
	}
	return l
}

func (p PieceType) IsSlider() bool { return p == Bishop || p == Rook || p == Queen }

// SlidesAlong reports whether a slider of type p attacks along d.
func (p PieceType) SlidesAlong(d Direction) bool {
	switch p {
	case Queen:
		return true
	case Rook:
		return d.IsOrthogonal()
	case Bishop:
		return d.IsDiagonal()
	default:
		return false
	}
}

// PieceTypeFromLetter decodes a layout letter into color and type.
func PieceTypeFromLetter(ch byte) (Color, PieceType, bool) {
	color := White
	if ch >= 'a' && ch <= 'z' {
		color = Black
		ch -= 'a' - 'A'
	}
	switch ch {
	case 'P':
		return color, Pawn, true
	case 'N':
		return color, Knight, true
	case 'B':
		return color, Bishop, true
	case 'R':
		return color, Rook, true
	case 'Q':
		return color, Queen, true
	case 'K':
		return color, King, true
	default:
		return 0, 0, false
	}
}

func ParsePieceType(s string) (PieceType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "p", "pawn":
		return Pawn, true
	case "n", "knight":
		return Knight, true
	case "b", "bishop":
		return Bishop, true
	case "r", "rook":
		return Rook, true
	case "q", "queen":
		return Queen, true
	case "k", "king":
		return King, true
	default:
		return 0, false
	}
}

func (p PieceType) MarshalText() ([]byte, error) { return []byte(p.Name()), nil }

func (p *PieceType) UnmarshalText(text []byte) error {
	parsed, ok := ParsePieceType(string(text))
	if !ok {
		return fmt.Errorf("invalid piece type %q", string(text))
	}
	*p = parsed
	return nil
}

type Square uint8

func (s Square) Rank() int { return int(s) / FileCount }
func (s Square) File() int { return int(s) % FileCount }

func (s Square) String() string {
	file := byte('a' + s.File())
	rank := byte('1' + s.Rank())
	return string([]byte{file, rank})
}

func ParseSquare(coord string) (Square, bool) {
	coord = strings.ToLower(strings.TrimSpace(coord))
	if len(coord) != 2 {
		return 0, false
	}
	file := int(coord[0]) - 'a'
	rank := int(coord[1]) - '1'
	return SquareFromCoords(file, rank)
}

func MustSquare(coord string) Square {
	sq, ok := ParseSquare(coord)
	if !ok {
		panic(fmt.Sprintf("invalid square %q", coord))
	}
	return sq
}

func (s Square) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Square) UnmarshalText(text []byte) error {
	parsed, ok := ParseSquare(string(text))
	if !ok {
		return fmt.Errorf("invalid square %q", string(text))
	}
	*s = parsed
	return nil
}
