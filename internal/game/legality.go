package game

import "sandbox_chess/internal/shared"

// legalMoves filters the pseudo-legal moves of pc. The filters run in a
// fixed order: friendly squares, pin line, check resolution and king
// safety. With the check rule off every pseudo-legal move is legal.
func (v view) legalMoves(pc *Piece) (Bitboard, error) {
	if pc == nil {
		return 0, nil
	}
	moves := v.generateMoves(pc) &^ v.pos.Occupancy(pc.Color)
	if !v.rules.Check {
		return moves, nil
	}
	king, err := v.pos.King(pc.Color)
	if err != nil {
		return 0, err
	}

	// The line filters cannot see a pin through the captured pawn, so
	// en passant is judged separately on a simulated board.
	epSq, hasEP := v.enPassantCandidate(pc, moves)
	if hasEP {
		moves = moves.Remove(epSq)
	}

	if pc.Type == King {
		moves = v.filterKingMoves(pc, moves)
	} else {
		if line, pinned := v.pinLine(pc, king); pinned {
			moves &= line
		}
		checkers := v.checkers(pc.Color)
		switch len(checkers) {
		case 0:
		case 1:
			moves &= v.checkResolution(king, checkers[0])
		default:
			moves = 0
		}
	}

	if hasEP && v.enPassantIsSafe(pc, epSq) {
		moves = moves.Add(epSq)
	}
	return moves, nil
}

func (v view) enPassantCandidate(pc *Piece, moves Bitboard) (Square, bool) {
	if pc.Type != Pawn {
		return 0, false
	}
	epSq, ok := v.enPassant.Square()
	if !ok || !moves.Has(epSq) || !v.isEnPassantTarget(pc, epSq) {
		return 0, false
	}
	return epSq, true
}

// enPassantIsSafe plays the capture on a copy of the board and reports
// whether the mover's king is safe afterwards.
func (v view) enPassantIsSafe(pc *Piece, epSq Square) bool {
	pawnSq, ok := v.enPassant.Pawn()
	if !ok {
		return false
	}
	sim := v.pos.Clone()
	sim.Remove(pawnSq, false)
	sim.relocate(pc.Square, epSq)
	after := view{pos: sim, rules: v.rules}
	king, err := sim.King(pc.Color)
	if err != nil {
		return false
	}
	return !after.isSquareAttackedBy(pc.Color.Opposite(), king.Square)
}

// pinLine reports whether pc is pinned against king. When it is, the
// returned set is the line from the king up to and including the pinner.
func (v view) pinLine(pc *Piece, king *Piece) (Bitboard, bool) {
	if pc.Type == King {
		return 0, false
	}
	d, _, ok := shared.OffsetBetween(king.Square, pc.Square)
	if !ok {
		return 0, false
	}
	between, _ := shared.SquaresBetween(king.Square, pc.Square, false, false)
	for _, sq := range between {
		if v.pos.IsOccupied(sq) {
			return 0, false
		}
	}
	beyond, ok := shared.SquaresBetween(pc.Square, shared.BoundarySquare(pc.Square, d), false, true)
	if !ok {
		return 0, false
	}
	for _, sq := range beyond {
		occupant := v.pos.PieceAt(sq)
		if occupant == nil {
			continue
		}
		if occupant.Color == pc.Color || !occupant.Type.SlidesAlong(d) {
			return 0, false
		}
		line, _ := shared.SquaresBetween(king.Square, sq, false, true)
		return BitboardOf(line...), true
	}
	return 0, false
}

// checkers lists the enemy pieces attacking the king of color.
func (v view) checkers(color Color) []*Piece {
	king, err := v.pos.King(color)
	if err != nil {
		return nil
	}
	var out []*Piece
	for _, pc := range v.pos.Pieces(color.Opposite()) {
		if v.defendedSquares(pc, 0).Has(king.Square) {
			out = append(out, pc)
		}
	}
	return out
}

// checkResolution is the set of squares a non-king move may land on to
// answer a single check: the checker itself, or for a slider any square
// between it and the king.
func (v view) checkResolution(king, checker *Piece) Bitboard {
	if !checker.Type.IsSlider() {
		return BB(checker.Square)
	}
	line, ok := shared.SquaresBetween(king.Square, checker.Square, false, true)
	if !ok {
		return BB(checker.Square)
	}
	return BitboardOf(line...)
}

// filterKingMoves removes every destination the enemy attacks. Sliders
// see through the king's own square so that stepping back along a
// checking line is rejected too.
func (v view) filterKingMoves(king *Piece, moves Bitboard) Bitboard {
	enemy := king.Color.Opposite()
	moves &^= v.attacks(enemy, BB(king.Square))
	for _, checker := range v.checkers(king.Color) {
		if !checker.Type.IsSlider() {
			continue
		}
		d, _, ok := shared.OffsetBetween(checker.Square, king.Square)
		if !ok {
			continue
		}
		if beyond, ok := shared.TryStep(king.Square, d); ok {
			moves = moves.Remove(beyond)
		}
	}
	return moves
}

// hasLegalMove reports whether color has at least one legal move.
func (v view) hasLegalMove(color Color) (bool, error) {
	for _, pc := range v.pos.Pieces(color) {
		moves, err := v.legalMoves(pc)
		if err != nil {
			return false, err
		}
		if !moves.Empty() {
			return true, nil
		}
	}
	return false, nil
}
