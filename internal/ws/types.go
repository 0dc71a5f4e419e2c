package ws

import "encoding/json"

const (
	// client - server
	MsgCreateRoom   = "create_room"
	MsgJoinRoom     = "join_room"
	MsgLeaveRoom    = "leave_room"
	MsgPlayerReady  = "player_ready"
	MsgGameAction   = "game_action"
	MsgGameFinished = "game_finished"
	MsgChangeMode   = "change_game_mode"
	MsgPing         = "ping"

	// server - client
	MsgConnected        = "connected"
	MsgRoomCreated      = "room_created"
	MsgRoomJoined       = "room_joined"
	MsgPlayerJoined     = "player_joined"
	MsgPlayerLeft       = "player_left"
	MsgLeftRoom         = "left_room"
	MsgReadyUpdate      = "player_ready_update"
	MsgGameStart        = "game_start"
	MsgPlayerAction     = "player_action"
	MsgTurnChanged      = "turn_changed"
	MsgPlayerFinished   = "player_finished"
	MsgPlayerEliminated = "player_eliminated"
	MsgGameEnded        = "game_ended"
	MsgModeChanged      = "mode_changed"
	MsgPong             = "pong"
	MsgError            = "error"
)

// Message is the envelope of every frame sent to a client
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// inbound is the envelope of every frame read from a client
type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Room states
const (
	StateWaiting = "waiting"
	StatePlaying = "playing"
)

// Game actions relayed between participants
const (
	ActionReveal     = "reveal"
	ActionFlag       = "flag"
	ActionEliminated = "eliminated"
)
