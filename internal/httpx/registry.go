package httpx

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/exp/slices"

	"sandbox_chess/internal/game"
)

var (
	errGameNotFound = errors.New("game not found")
	errTooManyGames = errors.New("too many games")
)

// table is one running game. mu serializes every call into the session;
// sessions share nothing with each other.
type table struct {
	id      string
	seq     uint64
	mu      sync.Mutex
	session *game.Session
	hub     *hub
}

// registry owns the running games.
type registry struct {
	mu    sync.RWMutex
	games map[string]*table
	next  uint64
	limit int
}

func newRegistry(limit int) *registry {
	return &registry{games: make(map[string]*table), limit: limit}
}

// create builds a session with build and registers it under a fresh id.
// The table's hub is subscribed before the session is returned to callers.
// build runs without the registry lock; an id whose build fails is not reused.
func (r *registry) create(build func(id string, obs game.Observer) (*game.Session, error)) (*table, error) {
	r.mu.Lock()
	if r.full() {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: limit %d", errTooManyGames, r.limit)
	}
	r.next++
	seq := r.next
	r.mu.Unlock()

	t := &table{id: strconv.FormatUint(seq, 10), seq: seq}
	t.hub = newHub(t.id)
	s, err := build(t.id, t.hub)
	if err != nil {
		return nil, err
	}
	t.session = s

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full() {
		t.hub.close()
		return nil, fmt.Errorf("%w: limit %d", errTooManyGames, r.limit)
	}
	r.games[t.id] = t
	return t, nil
}

func (r *registry) full() bool {
	return r.limit > 0 && len(r.games) >= r.limit
}

func (r *registry) get(id string) (*table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errGameNotFound, id)
	}
	return t, nil
}

func (r *registry) remove(id string) error {
	r.mu.Lock()
	t, ok := r.games[id]
	delete(r.games, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", errGameNotFound, id)
	}
	t.hub.close()
	return nil
}

// ids lists game ids in creation order.
func (r *registry) ids() []string {
	r.mu.RLock()
	tables := make([]*table, 0, len(r.games))
	for _, t := range r.games {
		tables = append(tables, t)
	}
	r.mu.RUnlock()
	slices.SortFunc(tables, func(a, b *table) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
	out := make([]string, len(tables))
	for i, t := range tables {
		out[i] = t.id
	}
	return out
}

func (r *registry) closeAll() {
	r.mu.Lock()
	games := r.games
	r.games = make(map[string]*table)
	r.mu.Unlock()
	for _, t := range games {
		t.hub.close()
	}
}
