package game

import "time"

// PointerSource is the device an input came from
type PointerSource string

const (
	SourceMouse PointerSource = "mouse"
	SourceTouch PointerSource = "touch"
)

const (
	DefaultDebounceWindow = 300 * time.Millisecond
	DefaultLongPress      = 500 * time.Millisecond
)

// InputEvent is a raw press on a cell
type InputEvent struct {
	Source    PointerSource `json:"source"`
	Row       int           `json:"row"`
	Col       int           `json:"col"`
	Secondary bool          `json:"secondary"`
	HeldMS    int64         `json:"held_ms"`
	At        time.Time     `json:"-"`
}

// Intent is the logical action an input resolves to
type Intent struct {
	Kind MoveKind `json:"kind"`
	Row  int      `json:"row"`
	Col  int      `json:"col"`
}

// IntentFilter turns mouse and touch input into one stream of intents.
// A touch that also fires a synthetic click, or a double tap, arrives as the
// same intent twice inside the window and is delivered once.
type IntentFilter struct {
	window    time.Duration
	longPress time.Duration

	last   Intent
	lastAt time.Time
	seen   bool
}

func NewIntentFilter(window, longPress time.Duration) *IntentFilter {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	if longPress <= 0 {
		longPress = DefaultLongPress
	}
	return &IntentFilter{window: window, longPress: longPress}
}

// Resolve maps ev to an intent; ok is false when ev duplicates the previous intent
func (f *IntentFilter) Resolve(ev InputEvent) (Intent, bool) {
	kind := MoveReveal
	if ev.Secondary || (ev.Source == SourceTouch && time.Duration(ev.HeldMS)*time.Millisecond >= f.longPress) {
		kind = MoveFlag
	}
	in := Intent{Kind: kind, Row: ev.Row, Col: ev.Col}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	if f.seen && in == f.last && at.Sub(f.lastAt) < f.window {
		return Intent{}, false
	}
	f.last = in
	f.lastAt = at
	f.seen = true
	return in, true
}

// Apply dispatches an intent to the session
func (s *Session) Apply(in Intent) Outcome {
	if in.Kind == MoveFlag {
		return s.ToggleFlag(in.Row, in.Col)
	}
	return s.Reveal(in.Row, in.Col, true)
}
