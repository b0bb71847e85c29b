package game

import (
	"fmt"
	"strconv"
	"strings"

	"sandbox_chess/internal/shared"
)

type fenRecord struct {
	layout   string
	turn     Color
	castling CastlingRights
	epSquare Square
	hasEP    bool
	halfmove int
	fullmove int
}

// parseFEN splits a FEN record. Only the board field is required; missing
// trailing fields take their usual defaults.
func parseFEN(fen string) (fenRecord, error) {
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return fenRecord{}, &LayoutError{Layout: fen, Reason: "empty fen"}
	}
	rec := fenRecord{layout: fields[0], turn: White, castling: CastlingAll, fullmove: 1}
	if err := ValidateLayout(rec.layout); err != nil {
		return fenRecord{}, err
	}
	if len(fields) > 1 {
		turn, ok := shared.ParseColor(fields[1])
		if !ok {
			return fenRecord{}, fmt.Errorf("fen side to move %q: %w", fields[1], ErrInvalidLayout)
		}
		rec.turn = turn
	}
	if len(fields) > 2 {
		rights, err := ParseCastlingRights(fields[2])
		if err != nil {
			return fenRecord{}, fmt.Errorf("fen castling: %v: %w", err, ErrInvalidLayout)
		}
		rec.castling = rights
	}
	if len(fields) > 3 && fields[3] != "-" {
		sq, ok := shared.ParseSquare(fields[3])
		if !ok {
			return fenRecord{}, fmt.Errorf("fen en passant %q: %w", fields[3], ErrInvalidLayout)
		}
		rec.epSquare = sq
		rec.hasEP = true
	}
	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return fenRecord{}, fmt.Errorf("fen halfmove clock %q: %w", fields[4], ErrInvalidLayout)
		}
		rec.halfmove = n
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return fenRecord{}, fmt.Errorf("fen fullmove number %q: %w", fields[5], ErrInvalidLayout)
		}
		rec.fullmove = n
	}
	return rec, nil
}

// FEN renders the full FEN record of the session for other chess tools.
func (s *Session) FEN() string {
	turn := "w"
	if s.turn == Black {
		turn = "b"
	}
	return strings.Join([]string{
		s.pos.Layout(),
		turn,
		s.CastlingRights().String(),
		s.enPassant.String(),
		strconv.Itoa(s.halfmoveClock),
		strconv.Itoa(s.fullmoveNumber),
	}, " ")
}
