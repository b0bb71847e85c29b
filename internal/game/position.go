package game

import "fmt"

// Position is the mutable board: a square to occupant mapping plus
// per-color occupancy sets kept in step with it.
type Position struct {
	pieceAt     [64]*Piece
	pieces      [2][6]Bitboard
	occupancy   [2]Bitboard
	nextPieceID int
	onRelease   func(*Piece)
}

func NewPosition() *Position {
	return &Position{nextPieceID: 1}
}

// OnRelease registers fn to be called for every piece removed with destroy set.
func (p *Position) OnRelease(fn func(*Piece)) { p.onRelease = fn }

// Place puts a new piece on an empty square.
func (p *Position) Place(color Color, pt PieceType, sq Square) (*Piece, error) {
	if p.pieceAt[sq] != nil {
		return nil, fmt.Errorf("place %s on %s: %w", pt.Name(), sq, ErrSquareOccupied)
	}
	if p.nextPieceID == 0 {
		p.nextPieceID = 1
	}
	pc := &Piece{
		ID:     p.nextPieceID,
		Color:  color,
		Type:   pt,
		Square: sq,
	}
	p.nextPieceID++
	p.put(pc)
	return pc, nil
}

// Remove clears the occupant of sq and returns it. When destroy is set the
// release hook is told the piece is gone for good.
func (p *Position) Remove(sq Square, destroy bool) *Piece {
	pc := p.pieceAt[sq]
	if pc == nil {
		return nil
	}
	p.take(pc)
	if destroy && p.onRelease != nil {
		p.onRelease(pc)
	}
	return pc
}

// relocate moves the occupant of from to the empty square to.
func (p *Position) relocate(from, to Square) *Piece {
	pc := p.pieceAt[from]
	if pc == nil {
		return nil
	}
	p.take(pc)
	pc.Square = to
	p.put(pc)
	return pc
}

// retype changes the kind of the piece on sq, keeping its identity.
func (p *Position) retype(sq Square, pt PieceType) *Piece {
	pc := p.pieceAt[sq]
	if pc == nil {
		return nil
	}
	p.take(pc)
	pc.Type = pt
	p.put(pc)
	return pc
}

func (p *Position) put(pc *Piece) {
	sq := pc.Square
	p.pieceAt[sq] = pc
	p.pieces[pc.Color][pc.Type] = p.pieces[pc.Color][pc.Type].Add(sq)
	p.occupancy[pc.Color] = p.occupancy[pc.Color].Add(sq)
}

func (p *Position) take(pc *Piece) {
	sq := pc.Square
	p.pieceAt[sq] = nil
	p.pieces[pc.Color][pc.Type] = p.pieces[pc.Color][pc.Type].Remove(sq)
	p.occupancy[pc.Color] = p.occupancy[pc.Color].Remove(sq)
}

func (p *Position) PieceAt(sq Square) *Piece { return p.pieceAt[sq] }

func (p *Position) IsOccupied(sq Square) bool { return p.pieceAt[sq] != nil }

func (p *Position) IsOccupiedBy(sq Square, color Color) bool {
	pc := p.pieceAt[sq]
	return pc != nil && pc.Color == color
}

func (p *Position) Occupancy(color Color) Bitboard { return p.occupancy[color] }

func (p *Position) PiecesOf(color Color, pt PieceType) Bitboard { return p.pieces[color][pt] }

// Pieces lists the pieces of color in ascending square order.
func (p *Position) Pieces(color Color) []*Piece {
	out := make([]*Piece, 0, p.occupancy[color].Count())
	p.occupancy[color].Iter(func(sq Square) {
		out = append(out, p.pieceAt[sq])
	})
	return out
}

// King returns the single king of color.
func (p *Position) King(color Color) (*Piece, error) {
	kings := p.pieces[color][King]
	switch kings.Count() {
	case 0:
		return nil, fmt.Errorf("%s: %w", color, ErrMissingKing)
	case 1:
		sq, _ := kings.PopLSB()
		return p.pieceAt[sq], nil
	default:
		return nil, fmt.Errorf("%s has %d kings: %w", color, kings.Count(), ErrExtraKing)
	}
}

func (p *Position) Clear() {
	next := p.nextPieceID
	hook := p.onRelease
	*p = Position{nextPieceID: next, onRelease: hook}
}

// Clone deep-copies the board. The release hook is not carried over.
func (p *Position) Clone() *Position {
	cp := &Position{
		pieces:      p.pieces,
		occupancy:   p.occupancy,
		nextPieceID: p.nextPieceID,
	}
	for sq, pc := range p.pieceAt {
		if pc != nil {
			dup := *pc
			cp.pieceAt[sq] = &dup
		}
	}
	return cp
}
