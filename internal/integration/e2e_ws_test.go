package integration

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/config"
	httpserver "github.com/tysonsiruno/minesweeper-multiplayer/internal/http"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/http/handlers"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/repository"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/retry"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/service"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/ws"
)

type wsFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// startReader runs a single reader goroutine per connection to avoid concurrent ReadMessage calls
func startReader(conn *websocket.Conn) chan wsFrame {
	out := make(chan wsFrame, 64)
	go func() {
		defer close(out)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var f wsFrame
			if json.Unmarshal(msg, &f) == nil {
				out <- f
			}
		}
	}()
	return out
}

func waitFrame(t *testing.T, ch chan wsFrame, name, typ string, v any) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case f, ok := <-ch:
			if !ok {
				t.Fatalf("%s connection closed waiting for %s", name, typ)
			}
			if f.Type != typ {
				continue
			}
			if v != nil {
				if err := json.Unmarshal(f.Payload, v); err != nil {
					t.Fatalf("%s decode %s: %v", name, typ, err)
				}
			}
			return
		case <-deadline:
			t.Fatalf("%s never received %s", name, typ)
		}
	}
}

func TestE2E_WS_LuckRoom(t *testing.T) {
	dbp := openDB(t)
	ctx := context.Background()

	ur := repository.NewUserRepository(dbp)
	uA := ensureUser(t, ur, "e2e_alice")
	uB := ensureUser(t, ur, "e2e_bob")

	service.InitJWT("test-secret")
	tokenA, err := service.GenerateJWT(uA.ID, uA.Username)
	if err != nil {
		t.Fatalf("gen token A: %v", err)
	}
	tokenB, err := service.GenerateJWT(uB.ID, uB.Username)
	if err != nil {
		t.Fatalf("gen token B: %v", err)
	}

	history := repository.NewGameHistoryRepository(dbp)
	audit := service.NewAuditService(repository.NewAuditRepository(dbp))
	leaderboard := service.NewLeaderboardService(history, nil, retry.DefaultPolicy())
	sessions := service.NewSessionService(service.SessionOptions{}, leaderboard, audit)
	defer sessions.Close()
	hub := ws.NewHub(ws.HubOptions{MaxPlayers: 2, Recorder: leaderboard, Audit: audit})
	defer hub.Close()

	h := handlers.NewHandler(service.NewIdentityService(ur), sessions, leaderboard, audit, hub)

	// start server with real routes
	gin.SetMode(gin.TestMode)
	r := gin.New()
	httpserver.RegisterRoutes(r, h, handlers.NewHealthHandler(dbp, nil, "test"), &config.Config{GameRateLimit: 100, GameRateWindow: 60})
	ts := httptest.NewServer(r)
	defer ts.Close()

	base := strings.Replace(ts.URL, "http", "ws", 1) + "/ws?token="
	connA, _, err := websocket.DefaultDialer.Dial(base+tokenA, nil)
	if err != nil {
		t.Fatalf("dial A: %v", err)
	}
	defer connA.Close()
	connB, _, err := websocket.DefaultDialer.Dial(base+tokenB, nil)
	if err != nil {
		t.Fatalf("dial B: %v", err)
	}
	defer connB.Close()

	chA, chB := startReader(connA), startReader(connB)
	waitFrame(t, chA, "A", ws.MsgConnected, nil)
	waitFrame(t, chB, "B", ws.MsgConnected, nil)

	send := func(conn *websocket.Conn, typ string, payload any) {
		b, _ := json.Marshal(ws.Message{Type: typ, Payload: payload})
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			t.Fatalf("write %s: %v", typ, err)
		}
	}

	send(connA, ws.MsgCreateRoom, ws.CreateRoomPayload{GameMode: "luck", Difficulty: "easy"})
	var room ws.RoomPayload
	waitFrame(t, chA, "A", ws.MsgRoomCreated, &room)

	send(connB, ws.MsgJoinRoom, ws.JoinRoomPayload{RoomCode: room.RoomCode})
	waitFrame(t, chB, "B", ws.MsgRoomJoined, nil)

	send(connA, ws.MsgPlayerReady, nil)
	send(connB, ws.MsgPlayerReady, nil)

	var start ws.GameStartPayload
	waitFrame(t, chB, "B", ws.MsgGameStart, &start)
	if start.CurrentTurn != uA.Username {
		t.Fatalf("first turn = %q; want %q", start.CurrentTurn, uA.Username)
	}

	row, col := 4, 4
	send(connA, ws.MsgGameAction, ws.GameActionPayload{Action: ws.ActionReveal, Row: &row, Col: &col, Tiles: 7})
	var relayed ws.PlayerActionPayload
	waitFrame(t, chB, "B", ws.MsgPlayerAction, &relayed)
	if relayed.Username != uA.Username || relayed.Row != 4 || relayed.Col != 4 {
		t.Fatalf("relayed = %+v", relayed)
	}

	send(connA, ws.MsgGameFinished, ws.GameFinishedPayload{Score: 7, Time: 12})
	send(connB, ws.MsgGameFinished, ws.GameFinishedPayload{Score: 2, Time: 15})

	var ended ws.GameEndedPayload
	waitFrame(t, chA, "A", ws.MsgGameEnded, &ended)
	if len(ended.Results) != 2 || ended.Results[0].Participant != uA.Username {
		t.Fatalf("results = %+v", ended.Results)
	}

	// results are submitted in the background
	deadline := time.Now().Add(5 * time.Second)
	for {
		games, err := history.GetByUser(ctx, uA.ID, 1)
		if err == nil && len(games) == 1 && games[0].RoomCode != nil && *games[0].RoomCode == room.RoomCode {
			if !games[0].Won || !games[0].Multiplayer || games[0].Score != 7 {
				t.Fatalf("stored result = %+v", games[0])
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("room result never stored: %+v, %v", games, err)
		}
		time.Sleep(50 * time.Millisecond)
	}
}
