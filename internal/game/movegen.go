package game

import "sandbox_chess/internal/shared"

// view is a read-only snapshot of everything move generation depends on.
// Nothing reachable from a view mutates the position.
type view struct {
	pos       *Position
	enPassant EnPassantTarget
	rules     Rules
}

func pawnCaptureDirections(color Color) [2]Direction {
	if color == White {
		return [2]Direction{shared.TopLeft, shared.TopRight}
	}
	return [2]Direction{shared.BottomLeft, shared.BottomRight}
}

// generateMoves returns the pseudo-legal destinations of pc: movement and
// blocking rules apply, check and pins do not.
func (v view) generateMoves(pc *Piece) Bitboard {
	if pc == nil {
		return 0
	}
	switch pc.Type {
	case Pawn:
		return v.generatePawnMoves(pc)
	case Knight:
		return v.generateKnightMoves(pc)
	case Bishop:
		return v.generateSlidingMoves(pc, shared.DiagonalDirections[:], 0, false)
	case Rook:
		return v.generateSlidingMoves(pc, shared.OrthogonalDirections[:], 0, false)
	case Queen:
		return v.generateSlidingMoves(pc, shared.AllDirections[:], 0, false)
	case King:
		return v.generateKingMoves(pc)
	default:
		return 0
	}
}

func (v view) generatePawnMoves(pc *Piece) Bitboard {
	var moves Bitboard
	from := pc.Square

	if one, ok := shared.TryStep(from, pc.Color.Forward()); ok && !v.pos.IsOccupied(one) {
		moves = moves.Add(one)
		if v.canDoubleAdvance(pc) {
			if two, ok := shared.TryStep(one, pc.Color.Forward()); ok && !v.pos.IsOccupied(two) {
				moves = moves.Add(two)
			}
		}
	}

	for _, d := range pawnCaptureDirections(pc.Color) {
		target, ok := shared.TryStep(from, d)
		if !ok {
			continue
		}
		if v.pos.IsOccupiedBy(target, pc.Color.Opposite()) {
			moves = moves.Add(target)
		} else if v.isEnPassantTarget(pc, target) {
			moves = moves.Add(target)
		}
	}
	return moves
}

// canDoubleAdvance allows the two-square step for an unmoved pawn on its
// starting rank. Random layouts can also leave pawns on the back rank.
func (v view) canDoubleAdvance(pc *Piece) bool {
	if pc.HasMoved {
		return false
	}
	rank := pc.Square.Rank()
	return rank == pc.Color.PawnRank() || rank == pc.Color.HomeRank()
}

func (v view) isEnPassantTarget(pc *Piece, target Square) bool {
	if !v.rules.EnPassant || pc.Type != Pawn {
		return false
	}
	epSq, ok := v.enPassant.Square()
	if !ok || epSq != target || v.pos.IsOccupied(target) {
		return false
	}
	pawnSq, _ := v.enPassant.Pawn()
	victim := v.pos.PieceAt(pawnSq)
	return victim != nil && victim.Type == Pawn && victim.Color != pc.Color
}

func (v view) generateKnightMoves(pc *Piece) Bitboard {
	var moves Bitboard
	for _, target := range shared.KnightTargets(pc.Square) {
		if !v.pos.IsOccupiedBy(target, pc.Color) {
			moves = moves.Add(target)
		}
	}
	return moves
}

func (v view) generateKingMoves(pc *Piece) Bitboard {
	var moves Bitboard
	for _, d := range shared.AllDirections {
		if target, ok := shared.TryStep(pc.Square, d); ok && !v.pos.IsOccupiedBy(target, pc.Color) {
			moves = moves.Add(target)
		}
	}
	for _, side := range castlingSides {
		if plan, ok := v.castlePlan(pc, side); ok {
			moves = moves.Add(plan.kingTo)
		}
	}
	return moves
}

// generateSlidingMoves walks each direction until the first occupied square.
// That square is included when it holds an enemy piece, or any piece when
// defend is set. Squares in transparent are treated as empty.
func (v view) generateSlidingMoves(pc *Piece, directions []Direction, transparent Bitboard, defend bool) Bitboard {
	var moves Bitboard
	for _, d := range directions {
		for _, target := range shared.Ray(pc.Square, d) {
			occupant := v.pos.PieceAt(target)
			if occupant == nil || transparent.Has(target) {
				moves = moves.Add(target)
				continue
			}
			if defend || occupant.Color != pc.Color {
				moves = moves.Add(target)
			}
			break
		}
	}
	return moves
}

// defendedSquares returns the squares pc attacks. Pawns attack their
// forward diagonals whether or not anything stands there. Friendly pieces
// count as defended so that a king cannot capture a protected piece.
func (v view) defendedSquares(pc *Piece, transparent Bitboard) Bitboard {
	if pc == nil {
		return 0
	}
	var squares Bitboard
	switch pc.Type {
	case Pawn:
		for _, d := range pawnCaptureDirections(pc.Color) {
			if target, ok := shared.TryStep(pc.Square, d); ok {
				squares = squares.Add(target)
			}
		}
	case Knight:
		for _, target := range shared.KnightTargets(pc.Square) {
			squares = squares.Add(target)
		}
	case Bishop:
		squares = v.generateSlidingMoves(pc, shared.DiagonalDirections[:], transparent, true)
	case Rook:
		squares = v.generateSlidingMoves(pc, shared.OrthogonalDirections[:], transparent, true)
	case Queen:
		squares = v.generateSlidingMoves(pc, shared.AllDirections[:], transparent, true)
	case King:
		for _, d := range shared.AllDirections {
			if target, ok := shared.TryStep(pc.Square, d); ok {
				squares = squares.Add(target)
			}
		}
	}
	return squares
}

// attacks is the union of the defended squares of every piece of color.
func (v view) attacks(color Color, transparent Bitboard) Bitboard {
	var squares Bitboard
	for _, pc := range v.pos.Pieces(color) {
		squares |= v.defendedSquares(pc, transparent)
	}
	return squares
}

func (v view) isSquareAttackedBy(color Color, target Square) bool {
	for _, pc := range v.pos.Pieces(color) {
		if v.defendedSquares(pc, 0).Has(target) {
			return true
		}
	}
	return false
}
