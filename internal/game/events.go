package game

import "errors"

// MoveKind is the action carried by a move event
type MoveKind string

const (
	MoveReveal MoveKind = "reveal"
	MoveFlag   MoveKind = "flag"
)

// Inbound events, delivered by the realtime channel

type SessionStart struct {
	Seed         int64        `json:"seed"`
	Variant      Variant      `json:"variant"`
	Difficulty   Difficulty   `json:"difficulty"`
	TimeBombTier TimeBombTier `json:"timebomb_tier,omitempty"`
	InitialTurn  string       `json:"initial_turn,omitempty"`
	Participants []string     `json:"participants,omitempty"`
}

type RemoteMove struct {
	Participant   string   `json:"participant"`
	Kind          MoveKind `json:"kind"`
	Row           *int     `json:"row"`
	Col           *int     `json:"col"`
	TilesRevealed int      `json:"tiles"`
	// Level is the Survival level the move was made on; 0 reads as level 1
	Level         int      `json:"level,omitempty"`
}

type TurnAssigned struct {
	Participant string `json:"participant"`
}

type ParticipantResult struct {
	Participant string `json:"participant"`
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
	ElapsedTime int    `json:"elapsed_time"`
	Finished    bool   `json:"finished"`
}

type SessionEnded struct {
	Results []ParticipantResult `json:"results"`
}

// Outbound events, drained by whoever owns the channel

type OutboundKind string

const (
	OutLocalMove       OutboundKind = "local_move"
	OutSessionFinished OutboundKind = "session_finished"
)

type OutboundEvent struct {
	Kind OutboundKind `json:"kind"`

	// local_move
	Move          MoveKind `json:"move,omitempty"`
	Row           int      `json:"row"`
	Col           int      `json:"col"`
	TilesRevealed int      `json:"tiles"`
	Level         int      `json:"level,omitempty"`

	// session_finished
	Score       int  `json:"score"`
	ElapsedTime int  `json:"elapsed_time"`
	Won         bool `json:"won"`
}

var (
	ErrMalformedEvent     = errors.New("malformed event")
	ErrUnknownParticipant = errors.New("unknown participant")
)

func (m RemoteMove) level() int {
	if m.Level < 1 {
		return 1
	}
	return m.Level
}

// Validate checks a relayed move against the board bounds
func (m RemoteMove) Validate(d Difficulty) error {
	if m.Participant == "" || m.Row == nil || m.Col == nil {
		return ErrMalformedEvent
	}
	if m.Kind != MoveReveal && m.Kind != MoveFlag {
		return ErrMalformedEvent
	}
	if m.Level < 0 {
		return ErrMalformedEvent
	}
	if *m.Row < 0 || *m.Row >= d.Rows || *m.Col < 0 || *m.Col >= d.Cols {
		return ErrMalformedEvent
	}
	return nil
}
