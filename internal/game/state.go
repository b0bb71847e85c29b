package game

// State returns a serializable representation of the current game state.
func (s *Session) State() BoardState {
	state := BoardState{
		Pieces:    make([]PieceState, 0, 32),
		Layout:    s.pos.Layout(),
		FEN:       s.FEN(),
		Turn:      s.turn,
		Rules:     s.rules,
		InCheck:   s.inCheck,
		Checkers:  s.Checkers(),
		GameOver:  s.gameOver,
		Status:    s.status,
		HasWinner: s.hasWinner,
		Winner:    s.winner,
		Castling:  s.CastlingRights(),
		EnPassant: s.enPassant,
		LastNote:  s.lastNote,
	}
	for _, pc := range s.pos.pieceAt {
		if pc != nil {
			state.Pieces = append(state.Pieces, pieceState(pc))
		}
	}
	if s.pending != nil {
		sq := *s.pending
		state.PromotionPending = &sq
		state.PromotionChoices = PromotionAll
	}
	return state
}
