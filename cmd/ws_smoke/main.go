package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/db"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/domain"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/repository"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/service"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/ws"
)

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	ur := repository.NewUserRepository(pool)
	ctx := context.Background()
	service.InitJWT(jwtSecret)

	tokenFor := func(username string) string {
		u, err := ur.GetByUsername(ctx, username)
		if errors.Is(err, repository.ErrUserNotFound) {
			u = &domain.User{Username: username, DisplayName: username, IsVerified: true}
			err = ur.Create(ctx, u)
		}
		if err != nil {
			log.Fatalf("prepare %s: %v", username, err)
		}
		token, err := service.GenerateJWT(u.ID, u.Username)
		if err != nil {
			log.Fatalf("gen token %s: %v", username, err)
		}
		return token
	}

	dial := func(token string) *websocket.Conn {
		// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
		url := fmt.Sprintf("ws://127.0.0.1:%s/ws?token=%s", port, token)
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			log.Fatalf("dial: %v", err)
		}
		return conn
	}

	connA := dial(tokenFor("smokeA"))
	defer connA.Close()
	connB := dial(tokenFor("smokeB"))
	defer connB.Close()

	send := func(conn *websocket.Conn, typ string, payload any) {
		b, _ := json.Marshal(ws.Message{Type: typ, Payload: payload})
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Fatalf("write %s: %v", typ, err)
		}
	}

	// waitFor prints every frame it skips and returns the payload of typ
	waitFor := func(conn *websocket.Conn, name, typ string) json.RawMessage {
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			_ = conn.SetReadDeadline(deadline)
			_, msg, err := conn.ReadMessage()
			if err != nil {
				log.Fatalf("%s read error waiting for %s: %v", name, typ, err)
			}
			var f frame
			_ = json.Unmarshal(msg, &f)
			log.Printf("%s got: %s", name, string(msg))
			if f.Type == ws.MsgError {
				log.Fatalf("%s received error while waiting for %s", name, typ)
			}
			if f.Type == typ {
				return f.Payload
			}
		}
		log.Fatalf("%s timed out waiting for %s", name, typ)
		return nil
	}

	send(connA, ws.MsgCreateRoom, ws.CreateRoomPayload{GameMode: "luck", Difficulty: "medium", MaxPlayers: 2})
	var room ws.RoomPayload
	_ = json.Unmarshal(waitFor(connA, "A", ws.MsgRoomCreated), &room)

	send(connB, ws.MsgJoinRoom, ws.JoinRoomPayload{RoomCode: room.RoomCode})
	waitFor(connB, "B", ws.MsgRoomJoined)

	send(connA, ws.MsgPlayerReady, nil)
	send(connB, ws.MsgPlayerReady, nil)

	var start ws.GameStartPayload
	_ = json.Unmarshal(waitFor(connA, "A", ws.MsgGameStart), &start)
	waitFor(connB, "B", ws.MsgGameStart)
	log.Printf("room %s seed=%d first turn=%s", room.RoomCode, start.BoardSeed, start.CurrentTurn)

	row, col := start.Difficulty.Rows/2, start.Difficulty.Cols/2
	send(connA, ws.MsgGameAction, ws.GameActionPayload{Action: ws.ActionReveal, Row: &row, Col: &col, Tiles: 1})
	waitFor(connB, "B", ws.MsgPlayerAction)
	waitFor(connB, "B", ws.MsgTurnChanged)

	send(connA, ws.MsgGameFinished, ws.GameFinishedPayload{Score: 1, Time: 5})
	send(connB, ws.MsgGameFinished, ws.GameFinishedPayload{Score: 0, Time: 6})
	waitFor(connA, "A", ws.MsgGameEnded)

	log.Println("smoke test finished")
}
