package game

import (
	"fmt"
	"strings"

	"sandbox_chess/internal/shared"
)

type (
	Color     = shared.Color
	PieceType = shared.PieceType
	Square    = shared.Square
	Direction = shared.Direction
)

const (
	White = shared.White
	Black = shared.Black

	Pawn   = shared.Pawn
	Knight = shared.Knight
	Bishop = shared.Bishop
	Rook   = shared.Rook
	Queen  = shared.Queen
	King   = shared.King
)

var (
	ParseColor     = shared.ParseColor
	ParseSquare    = shared.ParseSquare
	ParsePieceType = shared.ParsePieceType
)

// Piece is a single occupant of the board.
type Piece struct {
	ID       int
	Color    Color
	Type     PieceType
	Square   Square
	HasMoved bool
}

func (p *Piece) String() string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%s %s@%s", p.Color, p.Type.Name(), p.Square)
}

// Rules toggles independent rule subsystems of a session.
type Rules struct {
	Castle    bool `json:"castle" toml:"castle"`
	Check     bool `json:"check" toml:"check"`
	EnPassant bool `json:"enPassant" toml:"en_passant"`
	Promotion bool `json:"promotion" toml:"promotion"`
}

func DefaultRules() Rules {
	return Rules{Castle: true, Check: true, EnPassant: true, Promotion: true}
}

func (r Rules) String() string {
	flag := func(name string, on bool) string {
		if on {
			return name + "=on"
		}
		return name + "=off"
	}
	return strings.Join([]string{
		flag("castle", r.Castle),
		flag("check", r.Check),
		flag("enpassant", r.EnPassant),
		flag("promotion", r.Promotion),
	}, " ")
}

type CastlingRights uint8

const (
	CastlingNone          CastlingRights = 0
	CastlingWhiteKingside CastlingRights = 1 << iota
	CastlingWhiteQueenside
	CastlingBlackKingside
	CastlingBlackQueenside
	CastlingAll = CastlingWhiteKingside | CastlingWhiteQueenside | CastlingBlackKingside | CastlingBlackQueenside
)

type CastlingSide uint8

const (
	CastleKingside CastlingSide = iota
	CastleQueenside
)

var castlingSides = [...]CastlingSide{CastleKingside, CastleQueenside}

func (cs CastlingSide) String() string {
	switch cs {
	case CastleKingside:
		return "kingside"
	case CastleQueenside:
		return "queenside"
	default:
		return "?"
	}
}

func CastlingRight(color Color, side CastlingSide) CastlingRights {
	switch color {
	case White:
		if side == CastleQueenside {
			return CastlingWhiteQueenside
		}
		return CastlingWhiteKingside
	case Black:
		if side == CastleQueenside {
			return CastlingBlackQueenside
		}
		return CastlingBlackKingside
	default:
		return CastlingNone
	}
}

func (cr CastlingRights) Has(right CastlingRights) bool { return cr&right != 0 }

func (cr CastlingRights) HasSide(color Color, side CastlingSide) bool {
	return cr.Has(CastlingRight(color, side))
}

func (cr CastlingRights) With(right CastlingRights) CastlingRights { return cr | right }

func (cr CastlingRights) String() string {
	if cr == CastlingNone {
		return "-"
	}
	var b strings.Builder
	if cr.Has(CastlingWhiteKingside) {
		b.WriteByte('K')
	}
	if cr.Has(CastlingWhiteQueenside) {
		b.WriteByte('Q')
	}
	if cr.Has(CastlingBlackKingside) {
		b.WriteByte('k')
	}
	if cr.Has(CastlingBlackQueenside) {
		b.WriteByte('q')
	}
	return b.String()
}

func ParseCastlingRights(s string) (CastlingRights, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == "-" {
		return CastlingNone, nil
	}
	var rights CastlingRights
	for _, r := range trimmed {
		switch r {
		case 'K':
			rights |= CastlingWhiteKingside
		case 'Q':
			rights |= CastlingWhiteQueenside
		case 'k':
			rights |= CastlingBlackKingside
		case 'q':
			rights |= CastlingBlackQueenside
		default:
			return CastlingNone, fmt.Errorf("invalid castling flag %q", string(r))
		}
	}
	return rights, nil
}

func (cr CastlingRights) MarshalText() ([]byte, error) { return []byte(cr.String()), nil }

func (cr *CastlingRights) UnmarshalText(text []byte) error {
	parsed, err := ParseCastlingRights(string(text))
	if err != nil {
		return err
	}
	*cr = parsed
	return nil
}

// EnPassantTarget is the square skipped by a pawn double advance together
// with the square of the pawn that made it.
type EnPassantTarget struct {
	square Square
	pawn   Square
	valid  bool
}

func NewEnPassantTarget(target, pawn Square) EnPassantTarget {
	return EnPassantTarget{square: target, pawn: pawn, valid: true}
}

func NoEnPassantTarget() EnPassantTarget { return EnPassantTarget{} }

func (e EnPassantTarget) Valid() bool { return e.valid }

func (e EnPassantTarget) Square() (Square, bool) {
	if !e.valid {
		return 0, false
	}
	return e.square, true
}

// Pawn returns the square of the pawn capturable through the target.
func (e EnPassantTarget) Pawn() (Square, bool) {
	if !e.valid {
		return 0, false
	}
	return e.pawn, true
}

func (e EnPassantTarget) String() string {
	if !e.valid {
		return "-"
	}
	return e.square.String()
}

func (e EnPassantTarget) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

type PromotionChoices uint8

const (
	PromotionNone  PromotionChoices = 0
	PromoteToQueen PromotionChoices = 1 << iota
	PromoteToRook
	PromoteToBishop
	PromoteToKnight
	PromotionAll = PromoteToQueen | PromoteToRook | PromoteToBishop | PromoteToKnight
)

var promotionOrder = [...]PieceType{Queen, Rook, Bishop, Knight}

func (pc PromotionChoices) Contains(pt PieceType) bool {
	switch pt {
	case Queen:
		return pc&PromoteToQueen != 0
	case Rook:
		return pc&PromoteToRook != 0
	case Bishop:
		return pc&PromoteToBishop != 0
	case Knight:
		return pc&PromoteToKnight != 0
	default:
		return false
	}
}

func (pc PromotionChoices) String() string {
	if pc == PromotionNone {
		return "-"
	}
	var b strings.Builder
	for _, pt := range promotionOrder {
		if pc.Contains(pt) {
			b.WriteString(pt.String())
		}
	}
	return b.String()
}

func (pc PromotionChoices) MarshalText() ([]byte, error) { return []byte(pc.String()), nil }

func ParsePromotionPiece(s string) (PieceType, bool) {
	pt, ok := shared.ParsePieceType(s)
	if !ok || !PromotionAll.Contains(pt) {
		return 0, false
	}
	return pt, true
}

// MoveRequest is passed in by an external layer to request a move.
type MoveRequest struct {
	From         Square
	To           Square
	Promotion    PieceType
	HasPromotion bool
}

// Move describes a move that was applied. It is transient and not retained
// by the session beyond the outcome that carries it.
type Move struct {
	From           Square       `json:"from"`
	To             Square       `json:"to"`
	Color          Color        `json:"color"`
	Piece          PieceType    `json:"piece"`
	Captured       *PieceType   `json:"captured,omitempty"`
	CapturedSquare *Square      `json:"capturedSquare,omitempty"`
	Castle         bool         `json:"castle"`
	CastleSide     CastlingSide `json:"-"`
	RookFrom       *Square      `json:"rookFrom,omitempty"`
	RookTo         *Square      `json:"rookTo,omitempty"`
	EnPassant      bool         `json:"enPassant"`
	DoubleAdvance  bool         `json:"doubleAdvance"`
	Promotion      *PieceType   `json:"promotion,omitempty"`
}

func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != nil {
		s += strings.ToLower(m.Promotion.String())
	}
	return s
}

// MoveOutcome reports the categories a move fell into.
type MoveOutcome struct {
	Move             Move   `json:"move"`
	Capture          bool   `json:"capture"`
	Castle           bool   `json:"castle"`
	EnPassant        bool   `json:"enPassant"`
	Check            bool   `json:"check"`
	Checkmate        bool   `json:"checkmate"`
	Stalemate        bool   `json:"stalemate"`
	PromotionPending bool   `json:"promotionPending"`
	Promoted         bool   `json:"promoted"`
	KingCaptured     bool   `json:"kingCaptured"`
	GameOver         bool   `json:"gameOver"`
	Winner           *Color `json:"winner,omitempty"`
}

// Kinds lists every category the outcome belongs to, most significant first.
func (o MoveOutcome) Kinds() []string {
	var kinds []string
	add := func(on bool, name string) {
		if on {
			kinds = append(kinds, name)
		}
	}
	add(o.Checkmate, "checkmate")
	add(o.Stalemate, "stalemate")
	add(o.KingCaptured, "king-captured")
	add(o.Check, "check")
	add(o.PromotionPending, "promotion-pending")
	add(o.Promoted, "promotion")
	add(o.Castle, "castle")
	add(o.EnPassant, "en-passant")
	add(o.Capture && !o.EnPassant, "capture")
	if len(kinds) == 0 {
		kinds = append(kinds, "normal")
	}
	return kinds
}

// Cue picks the single category an audio layer should react to.
func (o MoveOutcome) Cue() string {
	return o.Kinds()[0]
}

// PieceState is a serializable representation of a Piece.
type PieceState struct {
	ID       int       `json:"id"`
	Color    Color     `json:"color"`
	Type     PieceType `json:"type"`
	TypeName string    `json:"typeName"`
	Square   Square    `json:"square"`
	HasMoved bool      `json:"hasMoved"`
}

// BoardState is a serializable representation of the game state.
type BoardState struct {
	Pieces           []PieceState     `json:"pieces"`
	Layout           string           `json:"layout"`
	FEN              string           `json:"fen"`
	Turn             Color            `json:"turn"`
	Rules            Rules            `json:"rules"`
	InCheck          bool             `json:"inCheck"`
	Checkers         []Square         `json:"checkers"`
	GameOver         bool             `json:"gameOver"`
	Status           string           `json:"status"`
	HasWinner        bool             `json:"hasWinner"`
	Winner           Color            `json:"winner"`
	Castling         CastlingRights   `json:"castling"`
	EnPassant        EnPassantTarget  `json:"enPassant"`
	PromotionPending *Square          `json:"promotionPending,omitempty"`
	PromotionChoices PromotionChoices `json:"promotionChoices"`
	LastNote         string           `json:"lastNote"`
}
