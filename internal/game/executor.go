package game

import (
	"fmt"

	"sandbox_chess/internal/shared"
)

// ApplyMove validates req against the legal moves of the side to move and
// applies it. A rejected request leaves the session untouched.
func (s *Session) ApplyMove(req MoveRequest) (MoveOutcome, error) {
	if s.gameOver {
		return MoveOutcome{}, &MoveError{From: req.From, To: req.To, Reason: "game is over", Err: ErrGameOver}
	}
	if s.pending != nil {
		return MoveOutcome{}, &MoveError{From: req.From, To: req.To, Reason: "a promotion must be chosen first", Err: ErrPromotionPending}
	}
	pc := s.pos.PieceAt(req.From)
	if pc == nil {
		return MoveOutcome{}, illegalMove(req, "no piece at source square")
	}
	if pc.Color != s.turn {
		return MoveOutcome{}, illegalMove(req, "not your turn")
	}
	if req.HasPromotion && !PromotionAll.Contains(req.Promotion) {
		return MoveOutcome{}, &MoveError{From: req.From, To: req.To, Reason: "cannot promote to " + req.Promotion.Name(), Err: ErrInvalidPromotion}
	}

	v := s.view()
	legal, err := v.legalMoves(pc)
	if err != nil {
		return MoveOutcome{}, fmt.Errorf("legal moves for %s: %w", pc, err)
	}
	if !legal.Has(req.To) {
		return MoveOutcome{}, illegalMove(req, "destination is not a legal move")
	}

	out := s.executeMove(v, pc, req)
	s.logger.Debug("move applied", "move", out.Move.String(), "cue", out.Cue(), "status", s.status)
	return out, nil
}

// Promote completes a move that stopped on the last rank without a choice.
func (s *Session) Promote(pt PieceType) (MoveOutcome, error) {
	if s.pending == nil {
		return MoveOutcome{}, ErrNoPendingPromotion
	}
	if !PromotionAll.Contains(pt) {
		return MoveOutcome{}, fmt.Errorf("promote to %s: %w", pt.Name(), ErrInvalidPromotion)
	}
	pc := s.pos.PieceAt(*s.pending)
	if pc == nil {
		s.pending = nil
		return MoveOutcome{}, ErrNoPendingPromotion
	}
	out := s.pendingOutcome
	out.PromotionPending = false
	s.pending = nil
	s.pendingOutcome = MoveOutcome{}
	s.promote(pc, pt, &out)
	s.finishTurn(&out)
	return out, nil
}

// executeMove performs an already validated move. Captures, the castling
// rook, the en-passant target and promotion are all settled here.
func (s *Session) executeMove(v view, pc *Piece, req MoveRequest) MoveOutcome {
	from, to := req.From, req.To
	mv := Move{From: from, To: to, Color: pc.Color, Piece: pc.Type}
	var out MoveOutcome

	plan, isCastle := v.castlePlanFor(pc, to)
	isEnPassant := pc.Type == Pawn && from.File() != to.File() && v.isEnPassantTarget(pc, to)

	s.enPassant = NoEnPassantTarget()

	var captured *Piece
	switch {
	case isEnPassant:
		pawnSq, _ := v.enPassant.Pawn()
		captured = s.pos.Remove(pawnSq, true)
		mv.EnPassant = true
		out.EnPassant = true
		s.lastNote = "En passant capture"
	case s.pos.IsOccupied(to):
		captured = s.pos.Remove(to, true)
	}
	if captured != nil {
		kind, sq := captured.Type, captured.Square
		mv.Captured = &kind
		mv.CapturedSquare = &sq
		out.Capture = true
	}

	s.pos.relocate(from, to)
	pc.HasMoved = true
	s.emitPiece(EventMoved, pc, &from, &to, false)

	if isCastle {
		rookFrom, rookTo := plan.rook.Square, plan.rookTo
		s.pos.relocate(rookFrom, rookTo)
		plan.rook.HasMoved = true
		mv.Castle = true
		mv.CastleSide = plan.side
		mv.RookFrom = &rookFrom
		mv.RookTo = &rookTo
		out.Castle = true
		s.lastNote = fmt.Sprintf("%s castles %s", pc.Color, plan.side)
		s.emitPiece(EventMoved, plan.rook, &rookFrom, &rookTo, false)
	}

	if pc.Type == Pawn && shared.RankDiff(from, to) == 2 {
		mv.DoubleAdvance = true
		if s.rules.EnPassant {
			skipped := Square((int(from) + int(to)) / 2)
			s.enPassant = NewEnPassantTarget(skipped, to)
		}
	}

	if pc.Type == Pawn || captured != nil {
		s.halfmoveClock = 0
	} else {
		s.halfmoveClock++
	}

	out.Move = mv
	if captured != nil && captured.Type == King {
		out.KingCaptured = true
		s.endByKingCapture(pc.Color)
	}

	if pc.Type == Pawn && to.Rank() == pc.Color.PromotionRank() && s.rules.Promotion {
		switch {
		case req.HasPromotion:
			s.promote(pc, req.Promotion, &out)
		case !s.gameOver:
			sq := to
			s.pending = &sq
			out.PromotionPending = true
			s.pendingOutcome = out
			s.lastNote = "Choose a promotion piece"
			s.emit(Event{Kind: EventStatus, Status: s.status, Outcome: &out})
			return out
		}
	}

	s.finishTurn(&out)
	return out
}

// promote turns the pawn into pt. The new piece counts as moved so that it
// can never take part in castling.
func (s *Session) promote(pc *Piece, pt PieceType, out *MoveOutcome) {
	s.pos.retype(pc.Square, pt)
	pc.HasMoved = true
	kind := pt
	out.Move.Promotion = &kind
	out.Promoted = true
	s.lastNote = fmt.Sprintf("Pawn promoted to %s", pt.Name())
	sq := pc.Square
	s.emitPiece(EventPromoted, pc, nil, &sq, false)
}

func (s *Session) finishTurn(out *MoveOutcome) {
	s.flipTurn()
	if err := s.refreshStatus(); err != nil {
		s.logger.Warn("status unavailable after move", "error", err)
	}
	out.Check = s.inCheck
	out.Checkmate = s.status == StatusCheckmate
	out.Stalemate = s.status == StatusStalemate
	out.GameOver = s.gameOver
	if s.hasWinner {
		w := s.winner
		out.Winner = &w
	}
	s.emit(Event{Kind: EventStatus, Status: s.status, Outcome: out})
}
