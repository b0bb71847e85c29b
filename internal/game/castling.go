package game

import "sandbox_chess/internal/shared"

const (
	kingHomeFile       = 4
	kingsideRookFile   = shared.MaxFile
	queensideRookFile  = 0
	castleKingDistance = 2
)

type castlePlan struct {
	side   CastlingSide
	king   *Piece
	rook   *Piece
	kingTo Square
	rookTo Square
}

// castleCandidate finds the unmoved king and rook that a castle on side
// would use, ignoring path and safety.
func (v view) castleCandidate(king *Piece, side CastlingSide) (*Piece, bool) {
	if king == nil || king.Type != King || king.HasMoved {
		return nil, false
	}
	home := king.Color.HomeRank()
	if king.Square.Rank() != home || king.Square.File() != kingHomeFile {
		return nil, false
	}
	rookFile := kingsideRookFile
	if side == CastleQueenside {
		rookFile = queensideRookFile
	}
	rookSq, _ := shared.SquareFromCoords(rookFile, home)
	rook := v.pos.PieceAt(rookSq)
	if rook == nil || rook.Type != Rook || rook.Color != king.Color || rook.HasMoved {
		return nil, false
	}
	return rook, true
}

// castlePlan checks whether king may castle on side right now: the
// pieces are unmoved, the squares between them are empty and the king
// neither starts on, crosses nor lands on an attacked square.
func (v view) castlePlan(king *Piece, side CastlingSide) (castlePlan, bool) {
	if !v.rules.Castle {
		return castlePlan{}, false
	}
	rook, ok := v.castleCandidate(king, side)
	if !ok {
		return castlePlan{}, false
	}
	between, ok := shared.SquaresBetween(king.Square, rook.Square, false, false)
	if !ok {
		return castlePlan{}, false
	}
	for _, sq := range between {
		if v.pos.IsOccupied(sq) {
			return castlePlan{}, false
		}
	}

	step := shared.Right
	if side == CastleQueenside {
		step = shared.Left
	}
	crossing, _ := shared.TryStep(king.Square, step)
	kingTo, _ := shared.TryStep(crossing, step)

	enemy := king.Color.Opposite()
	for _, sq := range [...]Square{king.Square, crossing, kingTo} {
		if v.isSquareAttackedBy(enemy, sq) {
			return castlePlan{}, false
		}
	}
	return castlePlan{
		side:   side,
		king:   king,
		rook:   rook,
		kingTo: kingTo,
		rookTo: crossing,
	}, true
}

// castlePlanFor returns the castle plan whose king destination is to.
func (v view) castlePlanFor(king *Piece, to Square) (castlePlan, bool) {
	if king == nil || king.Type != King || shared.FileDiff(king.Square, to) != castleKingDistance {
		return castlePlan{}, false
	}
	for _, side := range castlingSides {
		if plan, ok := v.castlePlan(king, side); ok && plan.kingTo == to {
			return plan, true
		}
	}
	return castlePlan{}, false
}

// castlingRights derives the rights still available from movement history
// and occupancy. Path and safety are not considered.
func (v view) castlingRights() CastlingRights {
	rights := CastlingNone
	if !v.rules.Castle {
		return rights
	}
	for _, color := range []Color{White, Black} {
		kings := v.pos.PiecesOf(color, King)
		if kings.Count() != 1 {
			continue
		}
		sq, _ := kings.PopLSB()
		king := v.pos.PieceAt(sq)
		for _, side := range castlingSides {
			if _, ok := v.castleCandidate(king, side); ok {
				rights = rights.With(CastlingRight(color, side))
			}
		}
	}
	return rights
}
