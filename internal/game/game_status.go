package game

const (
	StatusOngoing      = "ongoing"
	StatusCheck        = "check"
	StatusCheckmate    = "checkmate"
	StatusStalemate    = "stalemate"
	StatusKingCaptured = "king-captured"
)

// refreshStatus recomputes check, checkmate and stalemate for the side to
// move. A captured king ends the game for good and is not re-evaluated.
func (s *Session) refreshStatus() error {
	if s.kingCaptured {
		return nil
	}
	v := s.view()
	current := s.turn

	s.checkers = s.checkers[:0]
	for _, pc := range v.checkers(current) {
		s.checkers = append(s.checkers, pc.Square)
	}
	s.inCheck = len(s.checkers) > 0
	s.gameOver = false
	s.hasWinner = false
	s.winner = 0
	s.status = StatusOngoing
	if s.inCheck {
		s.status = StatusCheck
	}

	hasMove, err := v.hasLegalMove(current)
	if err != nil {
		s.logger.Error("status refresh failed", "error", err, "turn", current.String())
		return err
	}
	if hasMove {
		return nil
	}

	s.gameOver = true
	if s.inCheck && s.rules.Check {
		s.status = StatusCheckmate
		s.hasWinner = true
		s.winner = current.Opposite()
	} else {
		s.status = StatusStalemate
	}
	s.logger.Debug("game over", "status", s.status, "turn", current.String())
	return nil
}

// endByKingCapture finishes a sandbox game in which a king was taken.
func (s *Session) endByKingCapture(capturer Color) {
	s.kingCaptured = true
	s.gameOver = true
	s.hasWinner = true
	s.winner = capturer
	s.inCheck = false
	s.checkers = nil
	s.status = StatusKingCaptured
	s.logger.Info("king captured", "winner", capturer.String())
}
