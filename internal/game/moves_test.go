package game

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"sandbox_chess/internal/shared"
)

func mustSquare(t *testing.T, coord string) Square {
	t.Helper()
	sq, ok := shared.ParseSquare(coord)
	if !ok {
		t.Fatalf("invalid square %q", coord)
	}
	return sq
}

func newTestSession(t *testing.T, layout string, turn Color, rules Rules) *Session {
	t.Helper()
	s, err := NewSession(WithRules(rules), WithLayout(layout, turn))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func move(t *testing.T, s *Session, from, to string) MoveOutcome {
	t.Helper()
	out, err := s.ApplyMove(MoveRequest{From: mustSquare(t, from), To: mustSquare(t, to)})
	if err != nil {
		t.Fatalf("move %s%s: %v", from, to, err)
	}
	return out
}

func legalSet(t *testing.T, s *Session, coord string) map[string]bool {
	t.Helper()
	moves, err := s.LegalMoves(mustSquare(t, coord))
	if err != nil {
		t.Fatalf("legal moves %s: %v", coord, err)
	}
	out := make(map[string]bool)
	for _, name := range moves.Strings() {
		out[name] = true
	}
	return out
}

func expectMoves(t *testing.T, s *Session, coord string, want ...string) {
	t.Helper()
	got := legalSet(t, s, coord)
	if len(got) != len(want) {
		t.Fatalf("%s: expected %v, got %v", coord, want, got)
	}
	for _, w := range want {
		if !got[w] {
			t.Fatalf("%s: expected %v, got %v", coord, want, got)
		}
	}
}

func TestOpeningMoveCounts(t *testing.T) {
	s := newTestSession(t, StartingLayout, White, DefaultRules())
	tests := []struct {
		from string
		want []string
	}{
		{"e2", []string{"e3", "e4"}},
		{"b1", []string{"a3", "c3"}},
		{"g1", []string{"f3", "h3"}},
		{"a1", nil},
		{"c1", nil},
		{"d1", nil},
		{"e1", nil},
	}
	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			expectMoves(t, s, tt.from, tt.want...)
		})
	}
	if got := legalSet(t, s, "e7"); len(got) != 0 {
		t.Fatalf("black pieces must have no moves on white's turn, got %v", got)
	}
	if got := legalSet(t, s, "e4"); len(got) != 0 {
		t.Fatalf("empty square must have no moves, got %v", got)
	}
}

func TestApplyMoveRejections(t *testing.T) {
	s := newTestSession(t, StartingLayout, White, DefaultRules())
	before := s.FEN()

	tests := []struct {
		name string
		req  MoveRequest
		want error
	}{
		{"empty origin", MoveRequest{From: mustSquare(t, "e4"), To: mustSquare(t, "e5")}, ErrIllegalMove},
		{"wrong side", MoveRequest{From: mustSquare(t, "e7"), To: mustSquare(t, "e5")}, ErrIllegalMove},
		{"illegal destination", MoveRequest{From: mustSquare(t, "e2"), To: mustSquare(t, "e5")}, ErrIllegalMove},
		{"own piece", MoveRequest{From: mustSquare(t, "a1"), To: mustSquare(t, "a2")}, ErrIllegalMove},
		{"bad promotion", MoveRequest{From: mustSquare(t, "e2"), To: mustSquare(t, "e4"), Promotion: King, HasPromotion: true}, ErrInvalidPromotion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ApplyMove(tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var moveErr *MoveError
			if !errors.As(err, &moveErr) {
				t.Fatalf("expected *MoveError, got %T", err)
			}
			if s.FEN() != before {
				t.Fatalf("rejected move changed the session: %s", s.FEN())
			}
		})
	}
}

func TestPinnedBishopCannotLeaveFile(t *testing.T) {
	s := newTestSession(t, "4r3/k7/8/4B3/8/8/8/4K3", White, DefaultRules())
	expectMoves(t, s, "e5")

	rook := newTestSession(t, "4r3/k7/8/4R3/8/8/8/4K3", White, DefaultRules())
	expectMoves(t, rook, "e5", "e2", "e3", "e4", "e6", "e7", "e8")
}

func TestPinBlockedByFriendlyPiece(t *testing.T) {
	// A second white piece on the line means the bishop is not pinned.
	s := newTestSession(t, "4r3/k3N3/8/4B3/8/8/8/4K3", White, DefaultRules())
	if got := legalSet(t, s, "e5"); !got["d4"] || !got["h8"] {
		t.Fatalf("unpinned bishop should move diagonally, got %v", got)
	}
}

func TestDiagonalPinAllowsCapturingPinner(t *testing.T) {
	s := newTestSession(t, "k7/8/8/8/7b/8/5Q2/4K3", White, DefaultRules())
	expectMoves(t, s, "f2", "g3", "h4")
}

func TestSingleCheckMustBeBlockedOrCaptured(t *testing.T) {
	s := newTestSession(t, "4r2k/8/8/8/R7/8/8/4K3", White, DefaultRules())
	if !s.InCheck() || len(s.Checkers()) != 1 {
		t.Fatalf("expected a single check, got inCheck=%v checkers=%v", s.InCheck(), s.Checkers())
	}
	expectMoves(t, s, "a4", "e4")
	expectMoves(t, s, "e1", "d1", "d2", "f1", "f2")
}

func TestDoubleCheckAllowsOnlyKingMoves(t *testing.T) {
	s := newTestSession(t, "k3r3/8/8/8/8/3n4/8/4KB2", White, DefaultRules())
	if len(s.Checkers()) != 2 {
		t.Fatalf("expected two checkers, got %v", s.Checkers())
	}
	expectMoves(t, s, "f1")
	if got := legalSet(t, s, "e1"); len(got) == 0 {
		t.Fatalf("king should still have escapes")
	}
}

func TestKingCannotRetreatAlongCheckingLine(t *testing.T) {
	s := newTestSession(t, "k3r3/8/8/8/4K3/8/8/8", White, DefaultRules())
	expectMoves(t, s, "e4", "d3", "d4", "d5", "f3", "f4", "f5")
}

func TestKingCannotCaptureProtectedPiece(t *testing.T) {
	s := newTestSession(t, "k7/8/8/8/8/3r4/3r4/4K3", White, DefaultRules())
	got := legalSet(t, s, "e1")
	if got["d2"] {
		t.Fatalf("king must not capture a defended rook, got %v", got)
	}
}

func TestCheckmateScenario(t *testing.T) {
	s := newTestSession(t, "7k/5K2/8/8/8/8/8/6Q1", White, DefaultRules())
	out := move(t, s, "g1", "g7")
	if !out.Checkmate || !out.Check || !out.GameOver {
		t.Fatalf("expected checkmate, got %+v", out)
	}
	if out.Stalemate {
		t.Fatalf("checkmate reported as stalemate")
	}
	if s.Status() != StatusCheckmate || !s.GameOver() {
		t.Fatalf("session status %q gameOver=%v", s.Status(), s.GameOver())
	}
	if w, ok := s.Winner(); !ok || w != White {
		t.Fatalf("expected white to win, got %v %v", w, ok)
	}
	if out.Cue() != "checkmate" {
		t.Fatalf("cue %q", out.Cue())
	}
	if _, err := s.ApplyMove(MoveRequest{From: mustSquare(t, "h8"), To: mustSquare(t, "g8")}); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver after mate, got %v", err)
	}
}

func TestStalemateScenario(t *testing.T) {
	s := newTestSession(t, "7k/5K2/8/6Q1/8/8/8/8", White, DefaultRules())
	out := move(t, s, "g5", "g6")
	if !out.Stalemate || out.Checkmate || out.Check {
		t.Fatalf("expected stalemate, got %+v", out)
	}
	if s.Status() != StatusStalemate || !s.GameOver() {
		t.Fatalf("session status %q", s.Status())
	}
	if _, ok := s.Winner(); ok {
		t.Fatalf("stalemate has no winner")
	}
}

func TestKingsideCastle(t *testing.T) {
	s := newTestSession(t, "r3k2r/8/8/8/8/8/8/R3K2R", White, DefaultRules())
	got := legalSet(t, s, "e1")
	if !got["g1"] || !got["c1"] {
		t.Fatalf("both castles should be offered, got %v", got)
	}
	if s.CastlingRights() != CastlingAll {
		t.Fatalf("castling rights %s", s.CastlingRights())
	}
	out := move(t, s, "e1", "g1")
	if !out.Castle || out.Move.RookTo == nil || *out.Move.RookTo != mustSquare(t, "f1") {
		t.Fatalf("expected castle with rook to f1, got %+v", out)
	}
	rook, ok := s.PieceAt(mustSquare(t, "f1"))
	if !ok || rook.Type != Rook || !rook.HasMoved {
		t.Fatalf("rook not relocated: %+v", rook)
	}
	if _, ok := s.PieceAt(mustSquare(t, "h1")); ok {
		t.Fatalf("h1 should be empty after castling")
	}
	if s.CastlingRights() != CastlingBlackKingside|CastlingBlackQueenside {
		t.Fatalf("white rights should be gone, got %s", s.CastlingRights())
	}
}

func TestQueensideCastleMovesRookToD(t *testing.T) {
	s := newTestSession(t, "r3k2r/8/8/8/8/8/8/R3K2R", Black, DefaultRules())
	out := move(t, s, "e8", "c8")
	if !out.Castle || *out.Move.RookTo != mustSquare(t, "d8") {
		t.Fatalf("expected queenside castle, got %+v", out)
	}
}

func TestCastleBlockedConditions(t *testing.T) {
	tests := []struct {
		name   string
		layout string
		turn   Color
		absent []string
		keep   []string
	}{
		{"through attacked square", "r3kr2/8/8/8/8/8/8/R3K2R", White, []string{"g1", "f1"}, []string{"c1"}},
		{"while in check", "r3k2r/8/8/8/8/8/4q3/R3K2R", White, []string{"c1", "g1"}, []string{"e2"}},
		{"path occupied", "r3k2r/8/8/8/8/8/8/RN2K1NR", White, []string{"c1", "g1"}, nil},
		{"queenside b-file attacked is fine", "1r2k3/8/8/8/8/8/8/R3K3", White, nil, []string{"c1"}},
		{"destination attacked", "2r1k3/8/8/8/8/8/8/R3K3", White, []string{"c1"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, tt.layout, tt.turn, DefaultRules())
			got := legalSet(t, s, "e1")
			for _, sq := range tt.absent {
				if got[sq] {
					t.Fatalf("%s should not be legal, got %v", sq, got)
				}
			}
			for _, sq := range tt.keep {
				if !got[sq] {
					t.Fatalf("%s should be legal, got %v", sq, got)
				}
			}
		})
	}
}

func TestCastleRuleDisabled(t *testing.T) {
	rules := DefaultRules()
	rules.Castle = false
	s := newTestSession(t, "r3k2r/8/8/8/8/8/8/R3K2R", White, rules)
	expectMoves(t, s, "e1", "d1", "f1", "d2", "e2", "f2")
	if _, err := s.ApplyMove(MoveRequest{From: mustSquare(t, "e1"), To: mustSquare(t, "g1")}); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove for castle, got %v", err)
	}
	got := legalSet(t, s, "h1")
	if len(got) != 9 || !got["f1"] || !got["h8"] {
		t.Fatalf("rook moves should be unchanged, got %v", got)
	}
}

func TestCastlingRightsLostAfterRookReturns(t *testing.T) {
	s := newTestSession(t, "r3k2r/8/8/8/8/8/8/R3K2R", White, DefaultRules())
	move(t, s, "h1", "h2")
	move(t, s, "a8", "a7")
	move(t, s, "h2", "h1")
	move(t, s, "a7", "a8")
	if got := legalSet(t, s, "e1"); got["g1"] {
		t.Fatalf("returned rook must not restore kingside castling")
	}
	if s.CastlingRights() != CastlingWhiteQueenside|CastlingBlackKingside {
		t.Fatalf("rights %s", s.CastlingRights())
	}
}

func TestEnPassantWindow(t *testing.T) {
	s := newTestSession(t, StartingLayout, White, DefaultRules())
	move(t, s, "e2", "e4")
	move(t, s, "a7", "a6")
	move(t, s, "e4", "e5")
	move(t, s, "d7", "d5")
	if sq, ok := s.EnPassant().Square(); !ok || sq != mustSquare(t, "d6") {
		t.Fatalf("expected en passant target d6, got %s", s.EnPassant())
	}
	if got := legalSet(t, s, "e5"); !got["d6"] {
		t.Fatalf("en passant capture should be legal immediately, got %v", got)
	}

	later := s.Clone()
	out := move(t, s, "e5", "d6")
	if !out.EnPassant || !out.Capture || out.Move.CapturedSquare == nil || *out.Move.CapturedSquare != mustSquare(t, "d5") {
		t.Fatalf("expected en passant capture of d5, got %+v", out)
	}
	if _, ok := s.PieceAt(mustSquare(t, "d5")); ok {
		t.Fatalf("captured pawn still on d5")
	}

	move(t, later, "h2", "h3")
	move(t, later, "h7", "h6")
	if got := legalSet(t, later, "e5"); got["d6"] {
		t.Fatalf("en passant must expire after one ply, got %v", got)
	}
}

func TestEnPassantDisabled(t *testing.T) {
	rules := DefaultRules()
	rules.EnPassant = false
	s := newTestSession(t, StartingLayout, White, rules)
	move(t, s, "e2", "e4")
	move(t, s, "a7", "a6")
	move(t, s, "e4", "e5")
	move(t, s, "d7", "d5")
	if s.EnPassant().Valid() {
		t.Fatalf("no en passant target expected when disabled")
	}
	expectMoves(t, s, "e5", "e6")
}

func TestDisablingEnPassantClosesWindow(t *testing.T) {
	s := newTestSession(t, StartingLayout, White, DefaultRules())
	move(t, s, "e2", "e4")
	move(t, s, "a7", "a6")
	move(t, s, "e4", "e5")
	move(t, s, "d7", "d5")
	expectMoves(t, s, "e5", "d6", "e6")

	rules := s.Rules()
	rules.EnPassant = false
	if err := s.SetRules(rules); err != nil {
		t.Fatalf("set rules: %v", err)
	}
	if s.EnPassant().Valid() {
		t.Fatalf("en passant target should be dropped, got %s", s.EnPassant())
	}
	expectMoves(t, s, "e5", "e6")
}

func TestEnPassantExposingKingOnRankIsIllegal(t *testing.T) {
	s := newTestSession(t, "8/2p5/8/KP5r/8/8/8/7k", Black, DefaultRules())
	move(t, s, "c7", "c5")
	expectMoves(t, s, "b5", "b6")
}

func TestPromotionPendingThenChosen(t *testing.T) {
	s := newTestSession(t, "k7/4P3/8/8/8/8/8/4K3", White, DefaultRules())
	out := move(t, s, "e7", "e8")
	if !out.PromotionPending || out.Promoted {
		t.Fatalf("expected pending promotion, got %+v", out)
	}
	if s.Turn() != White {
		t.Fatalf("turn must not pass before the promotion is chosen")
	}
	if _, err := s.ApplyMove(MoveRequest{From: mustSquare(t, "e1"), To: mustSquare(t, "e2")}); !errors.Is(err, ErrPromotionPending) {
		t.Fatalf("expected ErrPromotionPending, got %v", err)
	}
	if _, err := s.Promote(King); !errors.Is(err, ErrInvalidPromotion) {
		t.Fatalf("expected ErrInvalidPromotion, got %v", err)
	}
	out, err := s.Promote(Queen)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if !out.Promoted || !out.Check || out.Move.Promotion == nil || *out.Move.Promotion != Queen {
		t.Fatalf("expected queen promotion with check, got %+v", out)
	}
	pc, _ := s.PieceAt(mustSquare(t, "e8"))
	if pc.Type != Queen || !pc.HasMoved {
		t.Fatalf("promoted piece %+v", pc)
	}
	if s.Turn() != Black {
		t.Fatalf("turn should pass after promotion")
	}
	if _, err := s.Promote(Queen); !errors.Is(err, ErrNoPendingPromotion) {
		t.Fatalf("expected ErrNoPendingPromotion, got %v", err)
	}
}

func TestPromotionWithChoice(t *testing.T) {
	s := newTestSession(t, "k7/4P3/8/8/8/8/8/4K3", White, DefaultRules())
	out, err := s.ApplyMove(MoveRequest{From: mustSquare(t, "e7"), To: mustSquare(t, "e8"), Promotion: Knight, HasPromotion: true})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if !out.Promoted || out.Check {
		t.Fatalf("knight promotion should not check a8, got %+v", out)
	}
	if pc, _ := s.PieceAt(mustSquare(t, "e8")); pc.Type != Knight {
		t.Fatalf("expected knight, got %s", pc.Type.Name())
	}
}

func TestPromotionDisabledKeepsPawn(t *testing.T) {
	rules := DefaultRules()
	rules.Promotion = false
	s := newTestSession(t, "k7/4P3/8/8/8/8/8/4K3", White, rules)
	out := move(t, s, "e7", "e8")
	if out.Promoted || out.PromotionPending {
		t.Fatalf("promotion disabled, got %+v", out)
	}
	if pc, _ := s.PieceAt(mustSquare(t, "e8")); pc.Type != Pawn {
		t.Fatalf("pawn should stay a pawn, got %s", pc.Type.Name())
	}
}

func TestSandboxWithoutCheckRule(t *testing.T) {
	rules := DefaultRules()
	rules.Check = false
	s := newTestSession(t, "4r3/k7/8/4B3/8/8/8/4K3", White, rules)
	if got := legalSet(t, s, "e5"); !got["d4"] || !got["h8"] {
		t.Fatalf("pinned bishop should move freely in sandbox, got %v", got)
	}
	// Moving the pinned bishop exposes the king; that must not raise IllegalMove.
	move(t, s, "e5", "d4")
	out := move(t, s, "e8", "e1")
	if !out.KingCaptured || !out.GameOver {
		t.Fatalf("expected king capture, got %+v", out)
	}
	if w, ok := s.Winner(); !ok || w != Black {
		t.Fatalf("capturer should win, got %v %v", w, ok)
	}
	if s.Status() != StatusKingCaptured {
		t.Fatalf("status %q", s.Status())
	}
}

func TestSandboxAllowsKingIntoAttack(t *testing.T) {
	rules := DefaultRules()
	rules.Check = false
	s := newTestSession(t, "k3r3/8/8/8/8/8/8/3K4", White, rules)
	if got := legalSet(t, s, "d1"); !got["e1"] || !got["e2"] {
		t.Fatalf("sandbox king should be able to step into attack, got %v", got)
	}
}

func TestCheckRuleRequiresKings(t *testing.T) {
	s := newTestSession(t, StartingLayout, White, DefaultRules())
	before := s.Layout()
	if err := s.Load("8/8/8/8/8/8/8/4K3", White); !errors.Is(err, ErrMissingKing) {
		t.Fatalf("expected ErrMissingKing, got %v", err)
	}
	if err := s.Load("k6k/8/8/8/8/8/8/4K3", White); !errors.Is(err, ErrExtraKing) {
		t.Fatalf("expected ErrExtraKing, got %v", err)
	}
	if s.Layout() != before {
		t.Fatalf("failed load changed the board")
	}

	rules := DefaultRules()
	rules.Check = false
	if err := s.SetRules(rules); err != nil {
		t.Fatalf("disable check: %v", err)
	}
	if err := s.Load("8/8/8/8/8/8/8/4K3", White); err != nil {
		t.Fatalf("sandbox load without black king: %v", err)
	}
	rules.Check = true
	if err := s.SetRules(rules); !errors.Is(err, ErrMissingKing) {
		t.Fatalf("enabling check without kings should fail, got %v", err)
	}
	if s.Rules().Check {
		t.Fatalf("rules changed despite error")
	}
}

func TestObserverReceivesEvents(t *testing.T) {
	var events []Event
	s, err := NewSession(WithObserver(ObserverFunc(func(ev Event) { events = append(events, ev) })),
		WithLayout("k7/8/8/8/8/8/3p4/4K3", White))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if len(events) == 0 || events[0].Kind != EventReset {
		t.Fatalf("expected reset event first, got %+v", events)
	}
	events = nil
	move(t, s, "e1", "d2")
	kinds := make([]EventKind, 0, len(events))
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	want := []EventKind{EventRemoved, EventMoved, EventStatus}
	if len(kinds) != len(want) {
		t.Fatalf("expected %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, kinds)
		}
	}
	if !events[0].Destroyed {
		t.Fatalf("captured piece should be destroyed")
	}
}

func TestBoardEditsWaitForPromotion(t *testing.T) {
	s := newTestSession(t, "k7/4P3/8/8/8/8/8/4K3", White, DefaultRules())
	move(t, s, "e7", "e8")
	e8 := mustSquare(t, "e8")

	if err := s.Remove(e8); !errors.Is(err, ErrPromotionPending) {
		t.Fatalf("remove: expected ErrPromotionPending, got %v", err)
	}
	if err := s.Place(Black, Rook, mustSquare(t, "h8")); !errors.Is(err, ErrPromotionPending) {
		t.Fatalf("place: expected ErrPromotionPending, got %v", err)
	}
	if err := s.SetTurn(Black); !errors.Is(err, ErrPromotionPending) {
		t.Fatalf("set turn: expected ErrPromotionPending, got %v", err)
	}
	rules := s.Rules()
	rules.Promotion = false
	if err := s.SetRules(rules); !errors.Is(err, ErrPromotionPending) {
		t.Fatalf("disable promotion: expected ErrPromotionPending, got %v", err)
	}
	if !s.Rules().Promotion {
		t.Fatalf("rules changed despite the error")
	}

	if _, ok := s.PieceAt(e8); !ok {
		t.Fatalf("pawn on e8 should still be there")
	}
	if _, err := s.Promote(Rook); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if err := s.Place(Black, Knight, mustSquare(t, "h8")); err != nil {
		t.Fatalf("place after promotion: %v", err)
	}
}

func TestSetTurnKeepsBoard(t *testing.T) {
	s := newTestSession(t, StartingLayout, White, DefaultRules())
	move(t, s, "e2", "e4")
	before := s.Layout()
	if err := s.SetTurn(White); err != nil {
		t.Fatalf("set turn: %v", err)
	}
	if s.Turn() != White || s.Layout() != before {
		t.Fatalf("turn %s layout %s", s.Turn(), s.Layout())
	}
	if s.EnPassant().Valid() {
		t.Fatalf("en passant target should be cleared, got %s", s.EnPassant())
	}
	pawn, _ := s.PieceAt(mustSquare(t, "e4"))
	if !pawn.HasMoved {
		t.Fatalf("moved flags must survive a turn change")
	}
	expectMoves(t, s, "e4", "e5")
	move(t, s, "d2", "d4")
	if s.Turn() != Black {
		t.Fatalf("play should continue normally")
	}

	checked := newTestSession(t, "4k3/8/8/8/8/8/4r3/4K3", White, DefaultRules())
	if err := checked.SetTurn(Black); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove passing the move in check, got %v", err)
	}
	rules := checked.Rules()
	rules.Check = false
	if err := checked.SetRules(rules); err != nil {
		t.Fatalf("set rules: %v", err)
	}
	if err := checked.SetTurn(Black); err != nil || checked.Turn() != Black {
		t.Fatalf("sandbox turn change: %v (turn %s)", err, checked.Turn())
	}
}

func TestLoadingIsQuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	s, err := NewSession(WithLogger(logger))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := s.LoadFEN("4k3/8/8/8/8/8/8/4K2R w K - 0 1"); err != nil {
		t.Fatalf("load fen: %v", err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("unexpected info output: %s", buf.String())
	}
}
