package game

// TurnState is the coordinator's view of the current turn
type TurnState int

const (
	TurnWaiting TurnState = iota
	TurnActive
	TurnConsumed
)

func (s TurnState) String() string {
	switch s {
	case TurnActive:
		return "active"
	case TurnConsumed:
		return "consumed"
	default:
		return "waiting"
	}
}

// TurnCoordinator arbitrates whose reveal is admissible in turn-restricted play.
// Rotation is decided by the session authority and delivered through Assign.
type TurnCoordinator struct {
	self    string
	current string
	state   TurnState
}

// NewTurnCoordinator creates a coordinator for the local participant self.
// The session authority passes an empty self.
func NewTurnCoordinator(self string) *TurnCoordinator {
	return &TurnCoordinator{self: self}
}

// Assign records an authoritative turn assignment
func (t *TurnCoordinator) Assign(participant string) {
	if participant == "" {
		t.current = ""
		t.state = TurnWaiting
		return
	}
	t.current = participant
	t.state = TurnActive
}

// Current returns the participant holding an active turn
func (t *TurnCoordinator) Current() (string, bool) {
	if t.state != TurnActive {
		return "", false
	}
	return t.current, true
}

func (t *TurnCoordinator) State() TurnState { return t.state }

func (t *TurnCoordinator) IsMyTurn() bool {
	return t.self != "" && t.state == TurnActive && t.current == t.self
}

// Admit accepts a reveal from participant only while that participant holds the turn.
// An admitted reveal consumes the turn at once so a second submit in the
// latency window before the next assignment is refused.
func (t *TurnCoordinator) Admit(participant string) bool {
	if t.state != TurnActive || participant == "" || t.current != participant {
		return false
	}
	t.state = TurnConsumed
	return true
}

// Reset drops any turn state
func (t *TurnCoordinator) Reset() {
	t.current = ""
	t.state = TurnWaiting
}
