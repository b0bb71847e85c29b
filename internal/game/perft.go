package game

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// requests expands the legal moves of the side to move into move requests.
// A pawn reaching the last rank yields one request per promotion piece.
func (s *Session) requests() ([]MoveRequest, error) {
	all, err := s.AllLegalMoves(s.turn)
	if err != nil {
		return nil, err
	}
	froms := make([]Square, 0, len(all))
	for from := range all {
		froms = append(froms, from)
	}
	slices.Sort(froms)

	var out []MoveRequest
	for _, from := range froms {
		pc := s.pos.PieceAt(from)
		all[from].Iter(func(to Square) {
			if s.rules.Promotion && pc.Type == Pawn && to.Rank() == pc.Color.PromotionRank() {
				for _, pt := range promotionOrder {
					out = append(out, MoveRequest{From: from, To: to, Promotion: pt, HasPromotion: true})
				}
				return
			}
			out = append(out, MoveRequest{From: from, To: to})
		})
	}
	return out, nil
}

// Perft counts the leaf nodes of the legal move tree to depth.
func Perft(s *Session, depth int) (uint64, error) {
	if depth <= 0 {
		return 1, nil
	}
	reqs, err := s.requests()
	if err != nil {
		return 0, err
	}
	if depth == 1 {
		return uint64(len(reqs)), nil
	}
	var nodes uint64
	for _, req := range reqs {
		child := s.Clone()
		if _, err := child.ApplyMove(req); err != nil {
			return 0, fmt.Errorf("perft %s: %w", moveName(req), err)
		}
		n, err := Perft(child, depth-1)
		if err != nil {
			return 0, err
		}
		nodes += n
	}
	return nodes, nil
}

// PerftDivide reports the perft count below each root move.
func PerftDivide(s *Session, depth int) (map[string]uint64, error) {
	out := make(map[string]uint64)
	if depth <= 0 {
		return out, nil
	}
	reqs, err := s.requests()
	if err != nil {
		return nil, err
	}
	for _, req := range reqs {
		child := s.Clone()
		if _, err := child.ApplyMove(req); err != nil {
			return nil, fmt.Errorf("perft %s: %w", moveName(req), err)
		}
		n, err := Perft(child, depth-1)
		if err != nil {
			return nil, err
		}
		out[moveName(req)] = n
	}
	return out, nil
}

// moveName renders a request in long algebraic form, e.g. "e7e8q".
func moveName(req MoveRequest) string {
	name := req.From.String() + req.To.String()
	if req.HasPromotion {
		name += string(req.Promotion.Letter(Black))
	}
	return name
}
