package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/game"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/logger"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrNotSessionOwner   = errors.New("session belongs to another user")
	ErrInvalidVariant    = errors.New("invalid variant")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrInvalidTier       = errors.New("invalid time bomb tier")
)

// ResultRecorder receives finished games
type ResultRecorder interface {
	Submit(ctx context.Context, rec SubmitRecord) error
}

type SessionOptions struct {
	Rules          game.Rules
	InputDebounce  time.Duration
	InputLongPress time.Duration
	HintDisplay    time.Duration
	IdleTTL        time.Duration
	TickInterval   time.Duration
	SubmitTimeout  time.Duration

	// random overrides the mine placement source; tests only
	random func() game.RandomSource
}

func (o SessionOptions) withDefaults() SessionOptions {
	if o.HintDisplay <= 0 {
		o.HintDisplay = 2 * time.Second
	}
	if o.IdleTTL <= 0 {
		o.IdleTTL = time.Hour
	}
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	if o.SubmitTimeout <= 0 {
		o.SubmitTimeout = 10 * time.Second
	}
	return o
}

// StartParams selects the rules of a new solo game; empty fields take defaults
type StartParams struct {
	Variant    string `json:"variant"`
	Difficulty string `json:"difficulty"`
	Tier       string `json:"timebomb_tier"`
}

// SessionView is what the API returns after every call
type SessionView struct {
	ID string `json:"id"`
	game.Snapshot
	Outcome   *game.Outcome `json:"outcome,omitempty"`
	Debounced bool          `json:"debounced,omitempty"`
}

type soloSession struct {
	id    string
	owner Identity

	mu       sync.Mutex
	game     *game.Session
	input    *game.IntentFilter
	stopTick context.CancelFunc
	hint     *time.Timer
	hintSeq  uint64
	recorded bool

	createdAt time.Time
	touchedAt time.Time
}

func (sess *soloSession) stopTimers() {
	if sess.stopTick != nil {
		sess.stopTick()
		sess.stopTick = nil
	}
	if sess.hint != nil {
		sess.hint.Stop()
		sess.hint = nil
	}
}

func (sess *soloSession) view(out *game.Outcome) *SessionView {
	v := &SessionView{ID: sess.id, Snapshot: sess.game.Snapshot()}
	if out != nil {
		o := *out
		v.Outcome = &o
	}
	return v
}

// SessionService manages solo games held in memory, one per user
type SessionService struct {
	opts     SessionOptions
	recorder ResultRecorder
	audit    *AuditService

	mu       sync.RWMutex
	sessions map[string]*soloSession
	byUser   map[int64]string

	wg        sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
}

// NewSessionService creates the service and starts its cleanup loop.
// recorder and audit may be nil.
func NewSessionService(opts SessionOptions, recorder ResultRecorder, audit *AuditService) *SessionService {
	s := &SessionService{
		opts:     opts.withDefaults(),
		recorder: recorder,
		audit:    audit,
		sessions: make(map[string]*soloSession),
		byUser:   make(map[int64]string),
		done:     make(chan struct{}),
	}

	go s.cleanupExpiredSessions()

	return s
}

func (s *SessionService) sessionConfig(who Identity, p StartParams) (game.Config, error) {
	cfg := game.Config{
		Mode:  game.ModeSolo,
		Self:  who.DisplayName,
		Rules: s.opts.Rules,
	}

	cfg.Variant = game.VariantStandard
	if p.Variant != "" {
		v, ok := game.ParseVariant(p.Variant)
		if !ok {
			return cfg, ErrInvalidVariant
		}
		cfg.Variant = v
	}

	switch strings.ToLower(p.Difficulty) {
	case "", "easy", "medium", "hard":
		cfg.Difficulty = game.DifficultyByName(p.Difficulty)
	default:
		return cfg, ErrInvalidDifficulty
	}

	cfg.Tier = game.TierMedium
	if p.Tier != "" {
		tier, ok := game.ParseTimeBombTier(p.Tier)
		if !ok {
			return cfg, ErrInvalidTier
		}
		cfg.Tier = tier
	}

	if s.opts.random != nil {
		cfg.Random = s.opts.random()
	}
	return cfg, nil
}

// Start begins a new solo game for who. A game the user already has is discarded.
func (s *SessionService) Start(ctx context.Context, who Identity, p StartParams) (*SessionView, error) {
	cfg, err := s.sessionConfig(who, p)
	if err != nil {
		return nil, err
	}

	g := game.NewSession(cfg)
	g.Start()

	now := time.Now()
	sess := &soloSession{
		id:        uuid.New().String(),
		owner:     who,
		game:      g,
		input:     game.NewIntentFilter(s.opts.InputDebounce, s.opts.InputLongPress),
		createdAt: now,
		touchedAt: now,
	}

	s.mu.Lock()
	var prev *soloSession
	if id, ok := s.byUser[who.UserID]; ok {
		prev = s.sessions[id]
		delete(s.sessions, id)
	}
	s.sessions[sess.id] = sess
	s.byUser[who.UserID] = sess.id
	ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	if prev != nil {
		prev.mu.Lock()
		prev.stopTimers()
		prev.game.Quit()
		prev.mu.Unlock()
	}

	GamesStarted.WithLabelValues(string(cfg.Variant), string(game.ModeSolo)).Inc()
	s.audit.LogGameStart(ctx, &who.UserID, sess.id, cfg.Variant, cfg.Difficulty.Name)
	logger.Info("solo game started", "session", sess.id, "user_id", who.UserID, "variant", cfg.Variant, "difficulty", cfg.Difficulty.Name)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(nil), nil
}

func (s *SessionService) lookup(userID int64, id string) (*soloSession, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.owner.UserID != userID {
		return nil, ErrNotSessionOwner
	}
	return sess, nil
}

func (s *SessionService) act(userID int64, id string, fn func(sess *soloSession) game.Outcome) (*SessionView, error) {
	sess, err := s.lookup(userID, id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.touchedAt = time.Now()
	out := fn(sess)
	s.afterMove(sess, out)
	return sess.view(&out), nil
}

// Reveal opens a cell as a direct click
func (s *SessionService) Reveal(userID int64, id string, row, col int) (*SessionView, error) {
	return s.act(userID, id, func(sess *soloSession) game.Outcome {
		return sess.game.Reveal(row, col, true)
	})
}

func (s *SessionService) Flag(userID int64, id string, row, col int) (*SessionView, error) {
	return s.act(userID, id, func(sess *soloSession) game.Outcome {
		return sess.game.ToggleFlag(row, col)
	})
}

// Hint highlights a safe cell for the configured display time
func (s *SessionService) Hint(userID int64, id string) (*SessionView, error) {
	return s.act(userID, id, func(sess *soloSession) game.Outcome {
		out := sess.game.UseHint()
		if out.Accepted {
			s.scheduleHintClear(sess)
		}
		return out
	})
}

// Input resolves a raw pointer or touch event; duplicates inside the debounce window are dropped
func (s *SessionService) Input(userID int64, id string, ev game.InputEvent) (*SessionView, error) {
	sess, err := s.lookup(userID, id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	intent, ok := sess.input.Resolve(ev)
	if !ok {
		defer sess.mu.Unlock()
		v := sess.view(nil)
		v.Debounced = true
		return v, nil
	}
	sess.mu.Unlock()

	return s.act(userID, id, func(sess *soloSession) game.Outcome {
		return sess.game.Apply(intent)
	})
}

func (s *SessionService) State(userID int64, id string) (*SessionView, error) {
	sess, err := s.lookup(userID, id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(nil), nil
}

// Current returns the user's active session, if any
func (s *SessionService) Current(userID int64) (*SessionView, bool) {
	s.mu.RLock()
	id, ok := s.byUser[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	v, err := s.State(userID, id)
	if err != nil {
		return nil, false
	}
	return v, true
}

// NewGame replaces the board keeping variant, difficulty and tier. Survival restarts at level 1.
func (s *SessionService) NewGame(ctx context.Context, userID int64, id string) (*SessionView, error) {
	sess, err := s.lookup(userID, id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	sess.stopTimers()
	sess.game.NewGame()
	sess.recorded = false
	sess.input = game.NewIntentFilter(s.opts.InputDebounce, s.opts.InputLongPress)
	sess.touchedAt = time.Now()
	v := sess.view(nil)
	variant, difficulty := sess.game.Variant(), sess.game.Difficulty().Name
	sess.mu.Unlock()

	GamesStarted.WithLabelValues(string(variant), string(game.ModeSolo)).Inc()
	s.audit.LogGameStart(ctx, &userID, id, variant, difficulty)
	return v, nil
}

// Quit stops the timers and discards the session
func (s *SessionService) Quit(ctx context.Context, userID int64, id string) error {
	sess, err := s.lookup(userID, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.sessions, id)
	if s.byUser[userID] == id {
		delete(s.byUser, userID)
	}
	ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	sess.mu.Lock()
	sess.stopTimers()
	sess.game.Quit()
	sess.mu.Unlock()

	s.audit.LogGameQuit(ctx, &userID, id)
	logger.Info("solo game quit", "session", id, "user_id", userID)
	return nil
}

// afterMove runs with sess.mu held
func (s *SessionService) afterMove(sess *soloSession, out game.Outcome) {
	if out.TimerStarted {
		s.startTicker(sess)
	}
	if out.LevelAdvanced {
		userID, id := sess.owner.UserID, sess.id
		level, tiles := sess.game.SurvivalLevel()-1, sess.game.SurvivalTotalTiles()
		s.async(func(ctx context.Context) {
			s.audit.LogLevelCleared(ctx, &userID, id, level, tiles)
		})
	}
	if sess.game.Phase().Terminal() {
		s.finish(sess)
	}
}

// finish records a finished game once; runs with sess.mu held
func (s *SessionService) finish(sess *soloSession) {
	sess.stopTimers()
	if sess.recorded {
		return
	}
	res, ok := sess.game.Result()
	if !ok {
		return
	}
	sess.recorded = true

	GamesFinished.WithLabelValues(string(res.Variant), string(res.Mode), OutcomeLabel(res.Won)).Inc()
	logger.Info("solo game finished", "session", sess.id, "user_id", sess.owner.UserID, "variant", res.Variant, "score", res.Score, "won", res.Won)

	userID, name, id := sess.owner.UserID, sess.owner.DisplayName, sess.id
	s.async(func(ctx context.Context) {
		s.audit.LogGameEnd(ctx, &userID, id, res)
		if s.recorder == nil {
			return
		}
		if err := s.recorder.Submit(ctx, SubmitRecord{UserID: &userID, Username: name, Result: res}); err != nil {
			logger.Error("failed to submit result", "error", err, "session", id, "user_id", userID)
		}
	})
}

func (s *SessionService) async(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.SubmitTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// startTicker drives the session clock for the current board generation; runs with sess.mu held
func (s *SessionService) startTicker(sess *soloSession) {
	if sess.stopTick != nil {
		sess.stopTick()
	}
	ctx, cancel := context.WithCancel(context.Background())
	sess.stopTick = cancel
	gen := sess.game.Generation()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.opts.TickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.done:
				return
			case <-ticker.C:
				if !s.tick(sess, gen) {
					return
				}
			}
		}
	}()
}

func (s *SessionService) tick(sess *soloSession, gen uint64) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	out := sess.game.Tick(gen)
	if !out.Accepted {
		return false
	}
	if out.Finished {
		s.finish(sess)
		return false
	}
	return true
}

// scheduleHintClear runs with sess.mu held
func (s *SessionService) scheduleHintClear(sess *soloSession) {
	if sess.hint != nil {
		sess.hint.Stop()
	}
	sess.hintSeq++
	seq := sess.hintSeq
	sess.hint = time.AfterFunc(s.opts.HintDisplay, func() {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		if sess.hintSeq == seq {
			sess.game.ClearHint()
		}
	})
}

// cleanupExpiredSessions drops sessions nobody touched for IdleTTL
func (s *SessionService) cleanupExpiredSessions() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			if n := s.sweep(now); n > 0 {
				logger.Info("expired solo sessions removed", "count", n)
			}
		}
	}
}

func (s *SessionService) sweep(now time.Time) int {
	var expired []*soloSession

	s.mu.Lock()
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := now.Sub(sess.touchedAt)
		sess.mu.Unlock()
		if idle <= s.opts.IdleTTL {
			continue
		}
		expired = append(expired, sess)
		delete(s.sessions, id)
		if s.byUser[sess.owner.UserID] == id {
			delete(s.byUser, sess.owner.UserID)
		}
	}
	ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	for _, sess := range expired {
		sess.mu.Lock()
		sess.stopTimers()
		sess.game.Quit()
		sess.mu.Unlock()
	}
	return len(expired)
}

// ActiveCount returns the number of sessions held in memory
func (s *SessionService) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops every session and waits for pending result submissions
func (s *SessionService) Close() {
	s.closeOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		for id, sess := range s.sessions {
			sess.mu.Lock()
			sess.stopTimers()
			sess.game.Quit()
			sess.mu.Unlock()
			delete(s.sessions, id)
		}
		s.byUser = make(map[int64]string)
		ActiveSessions.Set(0)
		s.mu.Unlock()

		s.wg.Wait()
	})
}
