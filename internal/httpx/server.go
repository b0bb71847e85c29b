// Package httpx exposes chess sessions over a JSON API and streams their
// events to websocket clients.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"sandbox_chess/internal/game"
)

var log = slog.Default().With("package", "httpx")

const (
	maxJSONBodyBytes int64 = 1 << 20
	apiCSP                 = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"
)

// Options are the defaults applied to new games and the server limits.
type Options struct {
	Rules          game.Rules
	Layout         string
	Turn           game.Color
	MaxGames       int
	AllowedOrigins []string
	AccessLog      io.Writer
	Logger         *slog.Logger
}

// Server wires the HTTP layer to the game registry.
type Server struct {
	opts     Options
	games    *registry
	upgrader websocket.Upgrader
	handler  http.Handler
	logger   *slog.Logger
	srvMu    sync.Mutex
	srv      *http.Server
}

// NewServer builds a Server. Zero-valued options fall back to a standard
// game under every rule.
func NewServer(opts Options) *Server {
	if opts.Layout == "" {
		opts.Layout = game.StartingLayout
	}
	if opts.AccessLog == nil {
		opts.AccessLog = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = log
	}
	s := &Server{
		opts:   opts,
		games:  newRegistry(opts.MaxGames),
		logger: opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(opts.AllowedOrigins),
		},
	}
	s.handler = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Listen starts the HTTP server.
func (s *Server) Listen(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()
	defer func() {
		s.srvMu.Lock()
		s.srv = nil
		s.srvMu.Unlock()
	}()

	s.logger.Info("http listening", "addr", addr)
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close attempts a graceful shutdown of the HTTP server and disconnects
// every websocket client.
func (s *Server) Close(ctx context.Context) error {
	s.games.closeAll()
	s.srvMu.Lock()
	srv := s.srv
	s.srvMu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/games/{id}/ws", s.withTable(s.handleWS)).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(jsonMiddleware)
	api.HandleFunc("/games", s.handleCreate).Methods(http.MethodPost)
	api.HandleFunc("/games", s.handleList).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", s.withTable(s.handleState)).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", s.handleDelete).Methods(http.MethodDelete)
	api.HandleFunc("/games/{id}/moves", s.withTable(s.handleAllMoves)).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/moves/{square}", s.withTable(s.handleLegalMoves)).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/move", s.withTable(s.handleMove)).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/promote", s.withTable(s.handlePromote)).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/layout", s.withTable(s.handleLayout)).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/rules", s.withTable(s.handleRules)).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/turn", s.withTable(s.handleTurn)).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/reset", s.withTable(s.handleReset)).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/pieces", s.withTable(s.handlePlace)).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/pieces/{square}", s.withTable(s.handleRemove)).Methods(http.MethodDelete)

	var h http.Handler = r
	if len(s.opts.AllowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(s.opts.AllowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete}),
			handlers.AllowedHeaders([]string{"Content-Type"}),
		)(h)
	}
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{s.logger}))(h)
	return handlers.LoggingHandler(s.opts.AccessLog, h)
}

type recoveryLogger struct{ l *slog.Logger }

func (r recoveryLogger) Println(v ...any) { r.l.Error("handler panic", "detail", fmt.Sprint(v...)) }

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// ---- JSON helpers ----

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		applyAPISecurityHeaders(w.Header())
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if r.Body != nil && r.Body != http.NoBody {
			r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	writeJSON(w, map[string]string{"error": msg})
}

func applyAPISecurityHeaders(h http.Header) {
	h.Set("Content-Security-Policy", apiCSP)
	h.Set("Cross-Origin-Opener-Policy", "same-origin")
	h.Set("X-Content-Type-Options", "nosniff")
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// decodeBody reads an optional JSON body into v. It reports false after
// writing the error response.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		return true
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		if isBodyTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "request too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return false
	}
	return true
}

// statusFor maps engine and registry errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, errTooManyGames):
		return http.StatusTooManyRequests
	case errors.Is(err, game.ErrInvalidLayout), errors.Is(err, game.ErrInvalidPromotion):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrIllegalMove),
		errors.Is(err, game.ErrPromotionPending),
		errors.Is(err, game.ErrNoPendingPromotion),
		errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrSquareOccupied):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// editStatus is statusFor for requests that edit the board; a king
// violation there is the caller's mistake rather than a broken session.
func editStatus(err error) int {
	if errors.Is(err, game.ErrMissingKing) || errors.Is(err, game.ErrExtraKing) {
		return http.StatusBadRequest
	}
	return statusFor(err)
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeError(w, status, err.Error())
}

func (s *Server) withTable(h func(http.ResponseWriter, *http.Request, *table)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := s.games.get(mux.Vars(r)["id"])
		if err != nil {
			s.fail(w, statusFor(err), err)
			return
		}
		h(w, r, t)
	}
}

// publish pushes the fresh state to websocket clients and answers the
// request with it. Callers hold t.mu.
func (s *Server) publish(w http.ResponseWriter, t *table, extra map[string]any) {
	state := t.session.State()
	t.hub.broadcast(frame{Game: t.id, State: &state})
	body := map[string]any{"id": t.id, "state": state}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, body)
}

// ---- API: games ----

type setupBody struct {
	Layout  string      `json:"layout"`
	FEN     string      `json:"fen"`
	Turn    string      `json:"turn"`
	Random  bool        `json:"random"`
	Exclude []string    `json:"exclude"`
	Seed    *uint64     `json:"seed"`
	Rules   *game.Rules `json:"rules"`
}

// apply loads the described position into session. A body naming only
// the turn keeps the current board.
func (b setupBody) apply(session *game.Session, defaults Options) error {
	if b.FEN != "" {
		return session.LoadFEN(b.FEN)
	}
	turn := defaults.Turn
	if b.Turn != "" {
		c, ok := game.ParseColor(b.Turn)
		if !ok {
			return fmt.Errorf("turn %q: %w", b.Turn, game.ErrInvalidLayout)
		}
		turn = c
	}
	layout := b.Layout
	switch {
	case b.Random:
		exclude := make([]game.PieceType, 0, len(b.Exclude))
		for _, name := range b.Exclude {
			pt, ok := game.ParsePieceType(name)
			if !ok {
				return fmt.Errorf("exclude %q: %w", name, game.ErrInvalidLayout)
			}
			exclude = append(exclude, pt)
		}
		var rng *rand.Rand
		if b.Seed != nil {
			rng = rand.New(rand.NewPCG(*b.Seed, *b.Seed))
		}
		random, err := game.RandomLayout(rng, exclude...)
		if err != nil {
			return fmt.Errorf("%v: %w", err, game.ErrInvalidLayout)
		}
		layout = random
	case layout == "" && b.Turn != "":
		return session.SetTurn(turn)
	case layout == "":
		layout = defaults.Layout
	}
	return session.Load(layout, turn)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body setupBody
	if !decodeBody(w, r, &body) {
		return
	}
	rules := s.opts.Rules
	if body.Rules != nil {
		rules = *body.Rules
	}
	t, err := s.games.create(func(id string, obs game.Observer) (*game.Session, error) {
		session, err := game.NewSession(
			game.WithRules(rules),
			game.WithLayout(s.opts.Layout, s.opts.Turn),
			game.WithLogger(s.logger.With("game", id)),
		)
		if err != nil {
			return nil, err
		}
		if body.FEN != "" || body.Layout != "" || body.Random || body.Turn != "" {
			if err := body.apply(session, s.opts); err != nil {
				return nil, err
			}
		}
		session.Subscribe(obs)
		return session, nil
	})
	if err != nil {
		s.fail(w, editStatus(err), err)
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	w.WriteHeader(http.StatusCreated)
	s.publish(w, t, nil)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"games": s.games.ids()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request, t *table) {
	t.mu.Lock()
	state := t.session.State()
	t.mu.Unlock()
	writeJSON(w, map[string]any{"id": t.id, "state": state})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.games.remove(mux.Vars(r)["id"]); err != nil {
		s.fail(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- API: moves ----

func (s *Server) handleLegalMoves(w http.ResponseWriter, r *http.Request, t *table) {
	raw := mux.Vars(r)["square"]
	sq, ok := game.ParseSquare(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid square %q", raw))
		return
	}
	t.mu.Lock()
	moves, err := t.session.LegalMoves(sq)
	t.mu.Unlock()
	if err != nil {
		s.fail(w, statusFor(err), err)
		return
	}
	writeJSON(w, map[string]any{"square": sq, "moves": moves.Strings()})
}

func (s *Server) handleAllMoves(w http.ResponseWriter, r *http.Request, t *table) {
	t.mu.Lock()
	turn := t.session.Turn()
	all, err := t.session.AllLegalMoves(turn)
	t.mu.Unlock()
	if err != nil {
		s.fail(w, statusFor(err), err)
		return
	}
	out := make(map[string][]string, len(all))
	for from, moves := range all {
		out[from.String()] = moves.Strings()
	}
	writeJSON(w, map[string]any{"turn": turn, "moves": out})
}

type moveBody struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request, t *table) {
	var body moveBody
	if !decodeBody(w, r, &body) {
		return
	}
	from, ok := game.ParseSquare(body.From)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid from square")
		return
	}
	to, ok := game.ParseSquare(body.To)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid to square")
		return
	}
	req := game.MoveRequest{From: from, To: to}
	if promotion := strings.TrimSpace(body.Promotion); promotion != "" {
		pt, ok := game.ParsePromotionPiece(promotion)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid promotion choice")
			return
		}
		req.Promotion = pt
		req.HasPromotion = true
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	out, err := t.session.ApplyMove(req)
	if err != nil {
		s.fail(w, statusFor(err), err)
		return
	}
	s.publish(w, t, map[string]any{"outcome": out, "cue": out.Cue()})
}

type promoteBody struct {
	Piece string `json:"piece"`
}

func (s *Server) handlePromote(w http.ResponseWriter, r *http.Request, t *table) {
	var body promoteBody
	if !decodeBody(w, r, &body) {
		return
	}
	pt, ok := game.ParsePromotionPiece(body.Piece)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid promotion choice")
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out, err := t.session.Promote(pt)
	if err != nil {
		s.fail(w, statusFor(err), err)
		return
	}
	s.publish(w, t, map[string]any{"outcome": out, "cue": out.Cue()})
}

// ---- API: setup ----

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request, t *table) {
	var body setupBody
	if !decodeBody(w, r, &body) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if body.Rules != nil {
		if err := t.session.SetRules(*body.Rules); err != nil {
			s.fail(w, editStatus(err), err)
			return
		}
	}
	if err := body.apply(t.session, s.opts); err != nil {
		s.fail(w, editStatus(err), err)
		return
	}
	s.publish(w, t, nil)
}

type rulesBody struct {
	Castle    *bool `json:"castle"`
	Check     *bool `json:"check"`
	EnPassant *bool `json:"enPassant"`
	Promotion *bool `json:"promotion"`
}

func (b rulesBody) merge(r game.Rules) game.Rules {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&r.Castle, b.Castle)
	set(&r.Check, b.Check)
	set(&r.EnPassant, b.EnPassant)
	set(&r.Promotion, b.Promotion)
	return r
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request, t *table) {
	var body rulesBody
	if !decodeBody(w, r, &body) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.session.SetRules(body.merge(t.session.Rules())); err != nil {
		s.fail(w, editStatus(err), err)
		return
	}
	s.publish(w, t, nil)
}

type turnBody struct {
	Turn string `json:"turn"`
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request, t *table) {
	var body turnBody
	if !decodeBody(w, r, &body) {
		return
	}
	turn, ok := game.ParseColor(body.Turn)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid turn")
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.session.SetTurn(turn); err != nil {
		s.fail(w, editStatus(err), err)
		return
	}
	s.publish(w, t, nil)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, t *table) {
	if r.Body != nil {
		r.Body.Close()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.session.Reset(); err != nil {
		s.fail(w, editStatus(err), err)
		return
	}
	s.publish(w, t, nil)
}

type placeBody struct {
	Color  string `json:"color"`
	Piece  string `json:"piece"`
	Square string `json:"square"`
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request, t *table) {
	var body placeBody
	if !decodeBody(w, r, &body) {
		return
	}
	color, ok := game.ParseColor(body.Color)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid color")
		return
	}
	pt, ok := game.ParsePieceType(body.Piece)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid piece")
		return
	}
	sq, ok := game.ParseSquare(body.Square)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid square")
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.session.Place(color, pt, sq); err != nil {
		s.fail(w, editStatus(err), err)
		return
	}
	s.publish(w, t, nil)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request, t *table) {
	raw := mux.Vars(r)["square"]
	sq, ok := game.ParseSquare(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid square %q", raw))
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.session.Remove(sq); err != nil {
		s.fail(w, editStatus(err), err)
		return
	}
	s.publish(w, t, nil)
}

// ---- websocket ----

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request, t *table) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "game", t.id, "error", err)
		return
	}
	t.mu.Lock()
	state := t.session.State()
	t.hub.attach(conn, frame{Game: t.id, State: &state})
	t.mu.Unlock()
	s.logger.Debug("websocket attached", "game", t.id, "remote", conn.RemoteAddr().String())
}
