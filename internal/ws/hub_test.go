package ws

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/game"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/service"
)

type recorder struct {
	mu      sync.Mutex
	records []service.SubmitRecord
}

func (r *recorder) Submit(_ context.Context, rec service.SubmitRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func newTestHub(t *testing.T, rec service.ResultRecorder) *Hub {
	t.Helper()
	h := NewHub(HubOptions{MaxPlayers: 3, Recorder: rec})
	h.seed = func() int64 { return 42 }
	t.Cleanup(h.Close)
	return h
}

func testClient(h *Hub, id int64, name string) *Client {
	return &Client{
		UserID:      id,
		Username:    name,
		DisplayName: strings.ToUpper(name[:1]) + name[1:],
		Send:        make(chan []byte, 128),
		Hub:         h,
		Done:        make(chan struct{}),
	}
}

func frame(t *testing.T, typ string, payload any) []byte {
	t.Helper()
	b, err := json.Marshal(Message{Type: typ, Payload: payload})
	if err != nil {
		t.Fatalf("marshal %s: %v", typ, err)
	}
	return b
}

// expect skips frames until one of type typ arrives and decodes its payload into v
func expect(t *testing.T, c *Client, typ string, v any) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case raw := <-c.Send:
			var msg inbound
			if err := json.Unmarshal(raw, &msg); err != nil {
				t.Fatalf("bad frame to %s: %v", c.Username, err)
			}
			if msg.Type != typ {
				continue
			}
			if v != nil {
				if err := json.Unmarshal(msg.Payload, v); err != nil {
					t.Fatalf("decode %s: %v", typ, err)
				}
			}
			return
		case <-timeout:
			t.Fatalf("%s never received %s", c.Username, typ)
		}
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func intp(v int) *int { return &v }

func TestLuckRoomFlow(t *testing.T) {
	rec := &recorder{}
	h := newTestHub(t, rec)
	alice, bob, carol := testClient(h, 1, "alice"), testClient(h, 2, "bob"), testClient(h, 3, "carol")

	room, err := h.CreateRoom(alice, CreateRoomPayload{GameMode: "luck", Difficulty: "medium"})
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	var created RoomPayload
	expect(t, alice, MsgRoomCreated, &created)
	if created.Host != "alice" || created.GameMode != game.VariantLuck || len(created.RoomCode) != roomCodeLength {
		t.Fatalf("room_created = %+v", created)
	}

	if _, err := h.JoinRoom(bob, strings.ToLower(room.Code)); err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}
	expect(t, bob, MsgRoomJoined, nil)
	expect(t, alice, MsgPlayerJoined, nil)

	h.HandleMessage(bob, frame(t, MsgPlayerReady, nil))
	h.HandleMessage(alice, frame(t, MsgPlayerReady, nil))

	var start GameStartPayload
	expect(t, bob, MsgGameStart, &start)
	if start.BoardSeed != 42 || start.CurrentTurn != "alice" || len(start.Players) != 2 {
		t.Fatalf("game_start = %+v", start)
	}
	expect(t, alice, MsgGameStart, nil)

	if _, err := h.JoinRoom(carol, room.Code); !errors.Is(err, ErrRoomInProgress) {
		t.Fatalf("join during game err = %v", err)
	}

	h.HandleMessage(bob, frame(t, MsgGameAction, GameActionPayload{Action: ActionReveal, Row: intp(8), Col: intp(8), Tiles: 1}))
	var rejected ErrorPayload
	expect(t, bob, MsgError, &rejected)
	if rejected.Message != ErrNotYourTurn.Error() {
		t.Fatalf("out of turn reveal error = %q", rejected.Message)
	}

	h.HandleMessage(alice, frame(t, MsgGameAction, GameActionPayload{Action: ActionReveal, Row: intp(8), Col: intp(8), Tiles: 5}))
	var action PlayerActionPayload
	expect(t, bob, MsgPlayerAction, &action)
	if action.Username != "alice" || action.Row != 8 || action.Tiles != 5 {
		t.Fatalf("player_action = %+v", action)
	}
	var turn TurnChangedPayload
	expect(t, alice, MsgTurnChanged, &turn)
	if turn.CurrentTurn != "bob" {
		t.Fatalf("turn after alice = %q", turn.CurrentTurn)
	}

	h.HandleMessage(alice, frame(t, MsgGameFinished, GameFinishedPayload{Score: 1_000_000, Time: 30}))
	var fin PlayerFinishedPayload
	expect(t, bob, MsgPlayerFinished, &fin)
	if fin.Username != "alice" || fin.Score != 5 {
		t.Fatalf("inflated score not clamped: %+v", fin)
	}

	h.HandleMessage(bob, frame(t, MsgGameFinished, GameFinishedPayload{Score: 3, Time: 40}))
	var ended GameEndedPayload
	expect(t, alice, MsgGameEnded, &ended)
	if len(ended.Results) != 2 || ended.Results[0].Participant != "alice" || ended.Results[1].Score != 3 {
		t.Fatalf("game_ended = %+v", ended.Results)
	}

	waitFor(t, "room reset", func() bool { return room.Info().Status == StateWaiting })

	h.Close()
	if len(rec.records) != 2 {
		t.Fatalf("submitted %d results; want 2", len(rec.records))
	}
	for _, r := range rec.records {
		if r.RoomCode == nil || *r.RoomCode != room.Code || r.Result.Mode != game.ModeMultiplayer {
			t.Fatalf("record = %+v", r)
		}
		if r.Result.Won != (r.Result.Participant == "alice") {
			t.Fatalf("won flag of %s = %v", r.Result.Participant, r.Result.Won)
		}
	}
}

func TestDisconnectPassesLuckTurn(t *testing.T) {
	h := newTestHub(t, nil)
	alice, bob, carol := testClient(h, 1, "alice"), testClient(h, 2, "bob"), testClient(h, 3, "carol")

	room, err := h.CreateRoom(alice, CreateRoomPayload{GameMode: "luck"})
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	for _, c := range []*Client{bob, carol} {
		if _, err := h.JoinRoom(c, room.Code); err != nil {
			t.Fatalf("JoinRoom(%s): %v", c.Username, err)
		}
	}
	for _, c := range []*Client{alice, bob, carol} {
		h.HandleMessage(c, frame(t, MsgPlayerReady, nil))
	}
	expect(t, carol, MsgGameStart, nil)

	h.OnDisconnect(alice)
	expect(t, bob, MsgPlayerLeft, nil)
	var turn TurnChangedPayload
	expect(t, carol, MsgTurnChanged, &turn)
	if turn.CurrentTurn != "bob" {
		t.Fatalf("turn after host left = %q", turn.CurrentTurn)
	}
	waitFor(t, "host handover", func() bool { return room.Info().Host == "bob" })
}

func TestChangeModeIsHostOnly(t *testing.T) {
	h := newTestHub(t, nil)
	alice, bob := testClient(h, 1, "alice"), testClient(h, 2, "bob")

	room, _ := h.CreateRoom(alice, CreateRoomPayload{})
	if _, err := h.JoinRoom(bob, room.Code); err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}

	h.HandleMessage(bob, frame(t, MsgChangeMode, ChangeModePayload{GameMode: "timebomb"}))
	var denied ErrorPayload
	expect(t, bob, MsgError, &denied)
	if denied.Message != ErrNotHost.Error() {
		t.Fatalf("guest mode change error = %q", denied.Message)
	}

	h.HandleMessage(alice, frame(t, MsgChangeMode, ChangeModePayload{GameMode: "timebomb", Tier: "hacker"}))
	var changed RoomPayload
	expect(t, bob, MsgModeChanged, &changed)
	if changed.GameMode != game.VariantTimeBomb || changed.Tier != game.TierHacker {
		t.Fatalf("mode_changed = %+v", changed)
	}
}

func TestRoomLifecycle(t *testing.T) {
	h := newTestHub(t, nil)
	alice := testClient(h, 1, "alice")

	if _, err := h.CreateRoom(alice, CreateRoomPayload{GameMode: "roulette"}); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("bad mode err = %v", err)
	}
	if _, err := h.JoinRoom(alice, "ZZZZZZ"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("unknown code err = %v", err)
	}

	room, _ := h.CreateRoom(alice, CreateRoomPayload{MaxPlayers: 10})
	if room.Info().MaxPlayers != 3 {
		t.Fatalf("max players = %d; want clamp to 3", room.Info().MaxPlayers)
	}
	if err := h.LeaveRoom(alice); err != nil {
		t.Fatalf("LeaveRoom: %v", err)
	}
	expect(t, alice, MsgLeftRoom, nil)
	waitFor(t, "empty room removal", func() bool { return len(h.List()) == 0 })

	idle, _ := h.CreateRoom(alice, CreateRoomPayload{})
	if n := h.expireIdle(time.Now().Add(2 * time.Hour)); n != 1 {
		t.Fatalf("expired %d rooms; want 1", n)
	}
	expect(t, alice, MsgError, nil)
	waitFor(t, "idle room removal", func() bool {
		_, ok := h.Room(idle.Code)
		return !ok
	})
	if alice.Room() != nil {
		t.Fatalf("client still bound to an expired room")
	}
}

func TestHandleMessageErrors(t *testing.T) {
	h := newTestHub(t, nil)
	alice := testClient(h, 1, "alice")

	h.HandleMessage(alice, []byte("{"))
	expect(t, alice, MsgError, nil)

	h.HandleMessage(alice, frame(t, MsgGameAction, GameActionPayload{Action: ActionReveal}))
	var e ErrorPayload
	expect(t, alice, MsgError, &e)
	if e.Message != ErrNotInRoom.Error() {
		t.Fatalf("action outside room error = %q", e.Message)
	}

	h.HandleMessage(alice, frame(t, MsgPing, nil))
	expect(t, alice, MsgPong, nil)
}

func TestSurvivalActionRelaysLevel(t *testing.T) {
	h := newTestHub(t, nil)
	alice, bob := testClient(h, 1, "alice"), testClient(h, 2, "bob")

	room, err := h.CreateRoom(alice, CreateRoomPayload{GameMode: "survival"})
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if _, err := h.JoinRoom(bob, room.Code); err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}
	h.HandleMessage(alice, frame(t, MsgPlayerReady, nil))
	h.HandleMessage(bob, frame(t, MsgPlayerReady, nil))
	expect(t, bob, MsgGameStart, nil)

	h.HandleMessage(alice, frame(t, MsgGameAction, GameActionPayload{Action: ActionReveal, Row: intp(2), Col: intp(2), Tiles: 230, Level: 2}))
	var action PlayerActionPayload
	expect(t, bob, MsgPlayerAction, &action)
	if action.Level != 2 || action.Tiles != 230 {
		t.Fatalf("player_action = %+v", action)
	}

	h.HandleMessage(alice, frame(t, MsgGameAction, GameActionPayload{Action: ActionReveal, Row: intp(2), Col: intp(2), Level: -1}))
	var e ErrorPayload
	expect(t, alice, MsgError, &e)
	if e.Message != ErrBadPayload.Error() {
		t.Fatalf("negative level error = %q", e.Message)
	}
}
