package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/game"
)

var alice = Identity{UserID: 1, Username: "alice", DisplayName: "Alice", Verified: true}

func newTestSessions(t *testing.T, rec ResultRecorder, audit *AuditService) *SessionService {
	t.Helper()
	seed := int64(0)
	s := NewSessionService(SessionOptions{
		Rules:        game.DefaultRules(),
		HintDisplay:  20 * time.Millisecond,
		TickInterval: time.Hour,
		random: func() game.RandomSource {
			seed++
			return game.NewSeededSource(seed)
		},
	}, rec, audit)
	t.Cleanup(s.Close)
	return s
}

func (s *SessionService) testSession(t *testing.T, id string) *soloSession {
	t.Helper()
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		t.Fatalf("session %s not held", id)
	}
	return sess
}

func hiddenCell(sess *soloSession, mine bool) (int, int) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	b := sess.game.Board()
	for r := range b.Cells {
		for c := range b.Cells[r] {
			cell := b.Cells[r][c]
			if cell.IsMine == mine && !cell.IsRevealed && !cell.IsFlagged {
				return r, c
			}
		}
	}
	return -1, -1
}

func TestStartRejectsUnknownSettings(t *testing.T) {
	s := newTestSessions(t, nil, nil)
	cases := []struct {
		p    StartParams
		want error
	}{
		{StartParams{Variant: "roulette"}, ErrInvalidVariant},
		{StartParams{Difficulty: "nightmare"}, ErrInvalidDifficulty},
		{StartParams{Variant: "timebomb", Tier: "insane"}, ErrInvalidTier},
	}
	for _, tc := range cases {
		if _, err := s.Start(context.Background(), alice, tc.p); !errors.Is(err, tc.want) {
			t.Fatalf("Start(%+v) err = %v; want %v", tc.p, err, tc.want)
		}
	}
	if s.ActiveCount() != 0 {
		t.Fatalf("rejected starts left %d sessions", s.ActiveCount())
	}
}

func TestSessionOwnership(t *testing.T) {
	s := newTestSessions(t, nil, nil)
	v, err := s.Start(context.Background(), alice, StartParams{Difficulty: "easy"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if v.Phase != game.PhaseAwaitingFirstMove || v.Difficulty != game.DifficultyEasy {
		t.Fatalf("new session view = %+v", v.Snapshot)
	}

	if _, err := s.Reveal(2, v.ID, 4, 4); !errors.Is(err, ErrNotSessionOwner) {
		t.Fatalf("foreign reveal err = %v", err)
	}
	if _, err := s.Reveal(1, "missing", 4, 4); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("unknown session err = %v", err)
	}
}

func TestStartingAgainDiscardsPreviousSession(t *testing.T) {
	s := newTestSessions(t, nil, nil)
	first, _ := s.Start(context.Background(), alice, StartParams{})
	second, _ := s.Start(context.Background(), alice, StartParams{Variant: "survival"})

	if _, err := s.State(1, first.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("old session still reachable: %v", err)
	}
	cur, ok := s.Current(1)
	if !ok || cur.ID != second.ID || cur.Variant != game.VariantSurvival {
		t.Fatalf("Current = %+v %v", cur, ok)
	}
}

func TestLostGameIsRecorded(t *testing.T) {
	rec := &stubRecorder{}
	audit := &stubAudit{}
	s := newTestSessions(t, rec, NewAuditService(audit))

	v, _ := s.Start(context.Background(), alice, StartParams{})
	out, err := s.Reveal(1, v.ID, 8, 8)
	if err != nil || !out.Outcome.Accepted {
		t.Fatalf("opening reveal = %+v, %v", out, err)
	}

	sess := s.testSession(t, v.ID)
	r, c := hiddenCell(sess, true)
	out, err = s.Reveal(1, v.ID, r, c)
	if err != nil || !out.Outcome.HitMine || out.Phase != game.PhaseLost {
		t.Fatalf("mine reveal = %+v, %v", out.Outcome, err)
	}
	if again, _ := s.Reveal(1, v.ID, 0, 0); again.Outcome.Rejection != game.RejectFinished {
		t.Fatalf("reveal after loss = %+v", again.Outcome)
	}

	s.Close()
	records := rec.all()
	if len(records) != 1 {
		t.Fatalf("recorded %d results; want 1", len(records))
	}
	res := records[0].Result
	if res.Won || res.Score != out.TilesRevealed || records[0].Username != "Alice" || *records[0].UserID != 1 {
		t.Fatalf("record = %+v", records[0])
	}

	trail, _ := NewAuditService(audit).GetSessionTrail(context.Background(), v.ID)
	if len(trail) != 2 {
		t.Fatalf("audit trail has %d entries; want start and end", len(trail))
	}
}

func TestFlagAndHintLifecycle(t *testing.T) {
	s := newTestSessions(t, nil, nil)
	v, _ := s.Start(context.Background(), alice, StartParams{})

	if out, _ := s.Flag(1, v.ID, 0, 0); out.Outcome.Rejection != game.RejectMinesNotPlaced {
		t.Fatalf("flag before placement = %+v", out.Outcome)
	}
	if out, _ := s.Hint(1, v.ID); out.Outcome.Rejection != game.RejectMinesNotPlaced {
		t.Fatalf("hint before placement = %+v", out.Outcome)
	}

	s.Reveal(1, v.ID, 8, 8)
	sess := s.testSession(t, v.ID)
	r, c := hiddenCell(sess, true)
	if out, _ := s.Flag(1, v.ID, r, c); !out.Outcome.Accepted || out.FlagsPlaced != 1 {
		t.Fatalf("flag = %+v", out.Outcome)
	}

	out, _ := s.Hint(1, v.ID)
	if !out.Outcome.Accepted || out.Hint == nil || out.HintsRemaining != 2 {
		t.Fatalf("hint = %+v", out.Outcome)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		st, _ := s.State(1, v.ID)
		if st.Hint == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("hint was never cleared")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestInputDebounce(t *testing.T) {
	s := newTestSessions(t, nil, nil)
	v, _ := s.Start(context.Background(), alice, StartParams{})

	at := time.Now()
	out, err := s.Input(1, v.ID, game.InputEvent{Source: game.SourceTouch, Row: 8, Col: 8, HeldMS: 60, At: at})
	if err != nil || out.Outcome == nil || !out.Outcome.Accepted {
		t.Fatalf("touch reveal = %+v, %v", out, err)
	}
	dup, _ := s.Input(1, v.ID, game.InputEvent{Source: game.SourceMouse, Row: 8, Col: 8, At: at.Add(30 * time.Millisecond)})
	if !dup.Debounced || dup.Outcome != nil {
		t.Fatalf("synthetic click not debounced: %+v", dup)
	}
}

func TestTimeBombExpiresOnTicks(t *testing.T) {
	rec := &stubRecorder{}
	s := newTestSessions(t, rec, nil)
	v, _ := s.Start(context.Background(), alice, StartParams{Variant: "timebomb", Tier: "hacker"})
	s.Reveal(1, v.ID, 8, 8)

	sess := s.testSession(t, v.ID)
	sess.mu.Lock()
	gen := sess.game.Generation()
	sess.mu.Unlock()

	ticks := 0
	for s.tick(sess, gen) {
		ticks++
		if ticks > 1000 {
			t.Fatalf("countdown never expired")
		}
	}
	st, _ := s.State(1, v.ID)
	if st.Phase != game.PhaseLost || st.TimeRemaining != 0 {
		t.Fatalf("after expiry phase = %s remaining = %v", st.Phase, st.TimeRemaining)
	}
	if s.tick(sess, gen) {
		t.Fatalf("tick accepted after expiry")
	}
}

func TestNewGameInvalidatesOldTicks(t *testing.T) {
	s := newTestSessions(t, nil, nil)
	v, _ := s.Start(context.Background(), alice, StartParams{Variant: "survival"})
	s.Reveal(1, v.ID, 8, 8)

	sess := s.testSession(t, v.ID)
	sess.mu.Lock()
	gen := sess.game.Generation()
	sess.mu.Unlock()

	nv, err := s.NewGame(context.Background(), 1, v.ID)
	if err != nil || nv.Phase != game.PhaseAwaitingFirstMove || nv.Level != 1 {
		t.Fatalf("NewGame = %+v, %v", nv, err)
	}
	if s.tick(sess, gen) {
		t.Fatalf("tick from the previous board accepted")
	}
	if st, _ := s.State(1, v.ID); st.ElapsedTime != 0 {
		t.Fatalf("elapsed = %d after new game", st.ElapsedTime)
	}
}

func TestQuitAndSweep(t *testing.T) {
	s := newTestSessions(t, nil, nil)
	v, _ := s.Start(context.Background(), alice, StartParams{})
	if err := s.Quit(context.Background(), 1, v.ID); err != nil {
		t.Fatalf("Quit: %v", err)
	}
	if _, ok := s.Current(1); ok || s.ActiveCount() != 0 {
		t.Fatalf("quit session still held")
	}

	bob := Identity{UserID: 2, DisplayName: "bob"}
	idle, _ := s.Start(context.Background(), bob, StartParams{})
	fresh, _ := s.Start(context.Background(), alice, StartParams{})
	sess := s.testSession(t, idle.ID)
	sess.mu.Lock()
	sess.touchedAt = time.Now().Add(-2 * time.Hour)
	sess.mu.Unlock()

	if n := s.sweep(time.Now()); n != 1 {
		t.Fatalf("swept %d sessions; want 1", n)
	}
	if _, err := s.State(2, idle.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("idle session survived the sweep")
	}
	if _, err := s.State(1, fresh.ID); err != nil {
		t.Fatalf("fresh session swept: %v", err)
	}
}
