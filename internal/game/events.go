package game

type EventKind string

const (
	EventReset    EventKind = "reset"
	EventMoved    EventKind = "moved"
	EventRemoved  EventKind = "removed"
	EventPlaced   EventKind = "placed"
	EventPromoted EventKind = "promoted"
	EventStatus   EventKind = "status"
)

// Event tells rendering and audio collaborators what changed on the board.
type Event struct {
	Kind      EventKind    `json:"kind"`
	Piece     *PieceState  `json:"piece,omitempty"`
	From      *Square      `json:"from,omitempty"`
	To        *Square      `json:"to,omitempty"`
	Destroyed bool         `json:"destroyed,omitempty"`
	Outcome   *MoveOutcome `json:"outcome,omitempty"`
	Status    string       `json:"status,omitempty"`
	Turn      Color        `json:"turn"`
}

// Observer receives events synchronously while the session mutates.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(ev Event) { f(ev) }

func pieceState(pc *Piece) PieceState {
	return PieceState{
		ID:       pc.ID,
		Color:    pc.Color,
		Type:     pc.Type,
		TypeName: pc.Type.Name(),
		Square:   pc.Square,
		HasMoved: pc.HasMoved,
	}
}

func (s *Session) emit(ev Event) {
	ev.Turn = s.turn
	for _, obs := range s.observers {
		obs.OnEvent(ev)
	}
}

func (s *Session) emitPiece(kind EventKind, pc *Piece, from, to *Square, destroyed bool) {
	if len(s.observers) == 0 {
		return
	}
	ps := pieceState(pc)
	s.emit(Event{Kind: kind, Piece: &ps, From: from, To: to, Destroyed: destroyed})
}
