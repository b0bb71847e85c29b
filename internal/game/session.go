// Package game implements the sandbox chess rules engine: move generation,
// legality filtering, move execution and game status for one game session.
package game

import (
	"fmt"
	"log/slog"

	"sandbox_chess/internal/shared"
)

var log = slog.Default().With("package", "game")

// Session owns the board and every piece of per-game bookkeeping. Sessions
// share nothing; concurrent games use independent sessions.
type Session struct {
	pos          *Position
	turn         Color
	rules        Rules
	enPassant    EnPassantTarget
	checkers     []Square
	inCheck      bool
	gameOver     bool
	kingCaptured bool
	hasWinner    bool
	winner       Color
	status       string

	pending        *Square
	pendingOutcome MoveOutcome

	halfmoveClock  int
	fullmoveNumber int
	lastNote       string

	initialLayout string
	initialTurn   Color
	logger        *slog.Logger
	observers     []Observer
}

type Option func(*Session)

func WithRules(r Rules) Option {
	return func(s *Session) { s.rules = r }
}

// WithLayout starts the session from layout with turn to move instead of
// the standard initial position.
func WithLayout(layout string, turn Color) Option {
	return func(s *Session) {
		s.initialLayout = layout
		s.initialTurn = turn
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Session) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// NewSession creates a session and loads its initial position.
func NewSession(opts ...Option) (*Session, error) {
	s := &Session{
		rules:         DefaultRules(),
		initialLayout: StartingLayout,
		initialTurn:   White,
		logger:        log,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Load(s.initialLayout, s.initialTurn); err != nil {
		return nil, err
	}
	return s, nil
}

// Subscribe adds an observer after construction.
func (s *Session) Subscribe(o Observer) {
	if o != nil {
		s.observers = append(s.observers, o)
	}
}

// Reset sets up a standard new game, keeping the current rules.
func (s *Session) Reset() error {
	return s.Load(StartingLayout, White)
}

// Load replaces the position with layout and gives turn the move. A
// rejected layout leaves the session in its previous state.
func (s *Session) Load(layout string, turn Color) error {
	pos := NewPosition()
	if err := pos.LoadLayout(layout); err != nil {
		return fmt.Errorf("load layout: %w", err)
	}
	if s.rules.Check {
		if err := requireKings(pos); err != nil {
			return fmt.Errorf("load layout: %w", err)
		}
	}
	s.install(pos, turn)
	s.lastNote = "New game"
	s.logger.Debug("position loaded", "layout", pos.Layout(), "turn", turn.String(), "rules", s.rules.String())
	s.emit(Event{Kind: EventReset})
	return s.refreshStatus()
}

// LoadFEN loads a full FEN record. Castling fields that are absent mark
// the matching rook as moved; the en-passant field is honoured when a
// capturable pawn stands behind it.
func (s *Session) LoadFEN(fen string) error {
	rec, err := parseFEN(fen)
	if err != nil {
		return err
	}
	pos := NewPosition()
	if err := pos.LoadLayout(rec.layout); err != nil {
		return fmt.Errorf("load fen: %w", err)
	}
	if s.rules.Check {
		if err := requireKings(pos); err != nil {
			return fmt.Errorf("load fen: %w", err)
		}
	}
	v := view{pos: pos, rules: Rules{Castle: true}}
	for _, color := range []Color{White, Black} {
		for _, king := range pos.Pieces(color) {
			if king.Type != King {
				continue
			}
			for _, side := range castlingSides {
				rook, ok := v.castleCandidate(king, side)
				if ok && !rec.castling.HasSide(color, side) {
					rook.HasMoved = true
				}
			}
		}
	}
	s.install(pos, rec.turn)
	if rec.hasEP {
		if pawnSq, ok := shared.TryStep(rec.epSquare, rec.turn.Opposite().Forward()); ok {
			victim := pos.PieceAt(pawnSq)
			if victim != nil && victim.Type == Pawn && victim.Color != rec.turn && !pos.IsOccupied(rec.epSquare) {
				s.enPassant = NewEnPassantTarget(rec.epSquare, pawnSq)
			}
		}
	}
	s.halfmoveClock = rec.halfmove
	s.fullmoveNumber = rec.fullmove
	s.lastNote = "Position loaded"
	s.logger.Debug("fen loaded", "fen", fen)
	s.emit(Event{Kind: EventReset})
	return s.refreshStatus()
}

func (s *Session) install(pos *Position, turn Color) {
	pos.OnRelease(s.onRelease)
	s.pos = pos
	s.turn = turn
	s.enPassant = NoEnPassantTarget()
	s.checkers = nil
	s.inCheck = false
	s.gameOver = false
	s.kingCaptured = false
	s.hasWinner = false
	s.winner = 0
	s.status = StatusOngoing
	s.pending = nil
	s.pendingOutcome = MoveOutcome{}
	s.halfmoveClock = 0
	s.fullmoveNumber = 1
}

func (s *Session) onRelease(pc *Piece) {
	sq := pc.Square
	s.emitPiece(EventRemoved, pc, &sq, nil, true)
}

func requireKings(pos *Position) error {
	for _, color := range []Color{White, Black} {
		if _, err := pos.King(color); err != nil {
			return err
		}
	}
	return nil
}

// SetRules swaps the rule toggles. Enabling the check rule needs exactly
// one king per side on the board.
func (s *Session) SetRules(r Rules) error {
	if r.Check {
		if err := requireKings(s.pos); err != nil {
			return fmt.Errorf("set rules: %w", err)
		}
	}
	if s.pending != nil && !r.Promotion {
		return fmt.Errorf("set rules: %w", ErrPromotionPending)
	}
	s.rules = r
	if !r.EnPassant {
		s.enPassant = NoEnPassantTarget()
	}
	s.logger.Info("rules changed", "rules", r.String())
	return s.refreshStatus()
}

// Place puts a piece on an empty square outside normal play. Under the
// check rule a side may not gain a second king.
func (s *Session) Place(color Color, pt PieceType, sq Square) error {
	if s.pending != nil {
		return fmt.Errorf("place %s: %w", sq, ErrPromotionPending)
	}
	if s.rules.Check && pt == King && !s.pos.PiecesOf(color, King).Empty() {
		return fmt.Errorf("place %s king: %w", color, ErrExtraKing)
	}
	pc, err := s.pos.Place(color, pt, sq)
	if err != nil {
		return err
	}
	s.emitPiece(EventPlaced, pc, nil, &sq, false)
	return s.refreshStatus()
}

// Remove takes the piece off sq outside normal play. Under the check rule
// kings stay on the board.
func (s *Session) Remove(sq Square) error {
	if s.pending != nil {
		return fmt.Errorf("remove %s: %w", sq, ErrPromotionPending)
	}
	if pc := s.pos.PieceAt(sq); pc != nil && pc.Type == King && s.rules.Check {
		return fmt.Errorf("remove %s: %w", sq, ErrMissingKing)
	}
	if s.pos.Remove(sq, true) == nil {
		return fmt.Errorf("remove %s: %w", sq, ErrIllegalMove)
	}
	return s.refreshStatus()
}

// SetTurn hands the move to turn outside normal play, keeping the board.
// Any en-passant target is dropped. Under the check rule the side left
// waiting may not be in check.
func (s *Session) SetTurn(turn Color) error {
	if s.pending != nil {
		return fmt.Errorf("set turn: %w", ErrPromotionPending)
	}
	if s.kingCaptured {
		return fmt.Errorf("set turn: %w", ErrGameOver)
	}
	if s.rules.Check {
		v := view{pos: s.pos, rules: s.rules}
		if len(v.checkers(turn.Opposite())) > 0 {
			return fmt.Errorf("set turn: %s would be left in check: %w", turn.Opposite(), ErrIllegalMove)
		}
	}
	s.turn = turn
	s.enPassant = NoEnPassantTarget()
	s.lastNote = turn.String() + " to move"
	s.logger.Debug("turn set", "turn", turn.String())
	if err := s.refreshStatus(); err != nil {
		return err
	}
	s.emit(Event{Kind: EventStatus, Status: s.status})
	return nil
}

func (s *Session) view() view {
	return view{pos: s.pos, enPassant: s.enPassant, rules: s.rules}
}

func (s *Session) flipTurn() {
	if s.turn == Black {
		s.fullmoveNumber++
	}
	s.turn = s.turn.Opposite()
}

// LegalMoves returns the legal destinations of the piece on sq. The set is
// empty when the square is empty, holds a piece of the side not to move,
// or the game cannot continue.
func (s *Session) LegalMoves(sq Square) (Bitboard, error) {
	pc := s.pos.PieceAt(sq)
	if pc == nil || pc.Color != s.turn || s.gameOver || s.pending != nil {
		return 0, nil
	}
	return s.view().legalMoves(pc)
}

// AllLegalMoves maps every piece of color with at least one legal move to
// its destinations.
func (s *Session) AllLegalMoves(color Color) (map[Square]Bitboard, error) {
	out := make(map[Square]Bitboard)
	if color != s.turn || s.gameOver || s.pending != nil {
		return out, nil
	}
	v := s.view()
	for _, pc := range s.pos.Pieces(color) {
		moves, err := v.legalMoves(pc)
		if err != nil {
			return nil, err
		}
		if !moves.Empty() {
			out[pc.Square] = moves
		}
	}
	return out, nil
}

// PieceAt returns a copy of the occupant of sq.
func (s *Session) PieceAt(sq Square) (Piece, bool) {
	pc := s.pos.PieceAt(sq)
	if pc == nil {
		return Piece{}, false
	}
	return *pc, true
}

func (s *Session) Pieces(color Color) []Piece {
	pieces := s.pos.Pieces(color)
	out := make([]Piece, len(pieces))
	for i, pc := range pieces {
		out[i] = *pc
	}
	return out
}

func (s *Session) Turn() Color { return s.turn }
func (s *Session) Rules() Rules { return s.rules }
func (s *Session) InCheck() bool { return s.inCheck }
func (s *Session) GameOver() bool { return s.gameOver }
func (s *Session) Status() string { return s.status }
func (s *Session) Layout() string { return s.pos.Layout() }
func (s *Session) LastNote() string { return s.lastNote }

func (s *Session) Checkers() []Square {
	out := make([]Square, len(s.checkers))
	copy(out, s.checkers)
	return out
}

func (s *Session) Winner() (Color, bool) { return s.winner, s.hasWinner }

func (s *Session) EnPassant() EnPassantTarget { return s.enPassant }

func (s *Session) CastlingRights() CastlingRights { return s.view().castlingRights() }

func (s *Session) PendingPromotion() (Square, bool) {
	if s.pending == nil {
		return 0, false
	}
	return *s.pending, true
}

// Clone returns an independent copy of the session without observers.
func (s *Session) Clone() *Session {
	cp := *s
	cp.pos = s.pos.Clone()
	cp.observers = nil
	cp.pos.OnRelease(cp.onRelease)
	cp.checkers = append([]Square(nil), s.checkers...)
	if s.pending != nil {
		sq := *s.pending
		cp.pending = &sq
	}
	return &cp
}
