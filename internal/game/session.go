package game

import "errors"

// Phase is the lifecycle state of a session
type Phase string

const (
	PhaseIdle              Phase = "idle"
	PhaseAwaitingFirstMove Phase = "awaiting_first_move"
	PhaseInProgress        Phase = "in_progress"
	PhaseWon               Phase = "won"
	PhaseLost              Phase = "lost"
	PhaseLevelAdvance      Phase = "level_advance"
	PhaseEnded             Phase = "ended"
)

// Terminal reports whether the phase accepts no further moves
func (p Phase) Terminal() bool {
	return p == PhaseWon || p == PhaseLost || p == PhaseEnded
}

// Rejection explains why an operation was a no-op
type Rejection string

const (
	RejectNone            Rejection = ""
	RejectOutOfBounds     Rejection = "out_of_bounds"
	RejectNotStarted      Rejection = "not_started"
	RejectFinished        Rejection = "finished"
	RejectAlreadyRevealed Rejection = "already_revealed"
	RejectFlagged         Rejection = "flagged"
	RejectNotYourTurn     Rejection = "not_your_turn"
	RejectMinesNotPlaced  Rejection = "mines_not_placed"
	RejectHintsDisabled   Rejection = "hints_disabled"
	RejectNoHintsLeft     Rejection = "no_hints_left"
	RejectNoSafeCell      Rejection = "no_safe_cell"
	RejectStaleTick       Rejection = "stale_tick"
	RejectWrongMode       Rejection = "wrong_mode"
)

// Outcome describes the effect of one engine call
type Outcome struct {
	Accepted      bool      `json:"accepted"`
	Rejection     Rejection `json:"rejection,omitempty"`
	Revealed      []Coord   `json:"revealed,omitempty"`
	HitMine       bool      `json:"hit_mine,omitempty"`
	TimerStarted  bool      `json:"-"`
	LevelAdvanced bool      `json:"level_advanced,omitempty"`
	Finished      bool      `json:"finished,omitempty"`
	Hint          *Coord    `json:"hint,omitempty"`
}

func rejected(r Rejection) Outcome { return Outcome{Rejection: r} }

var ErrNotMultiplayer = errors.New("session is not multiplayer")

// Config selects the rule set of a new session
type Config struct {
	Mode       Mode
	Variant    Variant
	Difficulty Difficulty
	Tier       TimeBombTier
	// Self is the local participant; empty for the session authority's mirror
	Self  string
	Rules Rules
	// Random overrides the mine placement source; solo sessions default to DefaultSource
	Random RandomSource
	// HintRandom overrides the hint picker source
	HintRandom RandomSource
}

// Session is the state of one game as seen by one participant.
// It is not safe for concurrent use; owners serialize access.
type Session struct {
	mode       Mode
	variant    Variant
	policy     Policy
	rules      Rules
	difficulty Difficulty
	tier       TimeBombTier
	self       string

	phase      Phase
	board      *Board
	random     RandomSource
	hintRandom RandomSource
	turn       *TurnCoordinator

	// generation changes on every reset; ticks carry it to detect staleness
	generation   uint64
	timerRunning bool

	elapsed        int
	timeRemaining  float64
	flagsPlaced    int
	hintsRemaining int
	hintsUsed      int
	hint           *Coord
	score          int
	won            bool

	tilesRevealed int
	directClicks  int

	survivalLevel      int
	survivalMineCount  int
	survivalTotalTiles int

	participants map[string]bool
	remoteTiles  map[string]int
	results      []ParticipantResult

	outbox []OutboundEvent
}

// NewSession creates an idle session; Start (solo) or ApplySessionStart
// (multiplayer) arms the first board.
func NewSession(cfg Config) *Session {
	if cfg.Mode == "" {
		cfg.Mode = ModeSolo
	}
	if cfg.Variant == "" {
		cfg.Variant = VariantStandard
	}
	if cfg.Difficulty.Rows == 0 {
		cfg.Difficulty = DifficultyMedium
	}
	if cfg.Tier == "" {
		cfg.Tier = TierMedium
	}
	if cfg.Rules.HintsPerGame == 0 && cfg.Rules.TimeBomb.Start == nil {
		cfg.Rules = DefaultRules()
	}
	hintRandom := cfg.HintRandom
	if hintRandom == nil {
		hintRandom = NewDefaultSource()
	}
	return &Session{
		mode:        cfg.Mode,
		variant:     cfg.Variant,
		policy:      PolicyFor(cfg.Variant, cfg.Mode),
		rules:       cfg.Rules,
		difficulty:  cfg.Difficulty,
		tier:        cfg.Tier,
		self:        cfg.Self,
		phase:       PhaseIdle,
		random:      cfg.Random,
		hintRandom:  hintRandom,
		turn:        NewTurnCoordinator(cfg.Self),
		remoteTiles: make(map[string]int),
	}
}

// Start arms a fresh board for a solo game. Survival restarts from level 1.
func (s *Session) Start() {
	if s.random == nil {
		s.random = NewDefaultSource()
	}
	s.reset()
}

// NewGame discards the current board and starts over with the same settings
func (s *Session) NewGame() {
	s.Start()
}

// Quit stops the timer and discards the session; no further move is accepted.
func (s *Session) Quit() {
	s.generation++
	s.timerRunning = false
	s.hint = nil
	s.phase = PhaseEnded
}

func (s *Session) reset() {
	s.generation++
	s.timerRunning = false
	s.elapsed = 0
	s.flagsPlaced = 0
	s.hintsRemaining = s.rules.HintsPerGame
	s.hintsUsed = 0
	s.hint = nil
	s.score = 0
	s.won = false
	s.tilesRevealed = 0
	s.directClicks = 0
	s.survivalLevel = 1
	s.survivalTotalTiles = 0
	s.remoteTiles = make(map[string]int)
	s.results = nil
	s.outbox = nil
	s.turn.Reset()

	if s.policy.Countdown {
		s.timeRemaining = s.rules.TimeBomb.Start[s.tier]
	} else {
		s.timeRemaining = 0
	}

	d := s.difficulty
	if s.policy.Progressive {
		s.survivalMineCount = s.rules.Survival.MinesForLevel(1, d.Rows, d.Cols)
		d.Mines = s.survivalMineCount
	}
	s.board = NewBoard(d)
	s.phase = PhaseAwaitingFirstMove
}

// Reveal discloses (row, col) as the local participant.
// direct is false only for synthetic reveals that must not earn the Time Bomb bonus.
func (s *Session) Reveal(row, col int, direct bool) Outcome {
	switch {
	case s.phase == PhaseIdle || s.board == nil:
		return rejected(RejectNotStarted)
	case s.phase.Terminal():
		return rejected(RejectFinished)
	case !s.board.InBounds(row, col):
		return rejected(RejectOutOfBounds)
	}
	cell := s.board.Cell(row, col)
	if cell.IsRevealed {
		return rejected(RejectAlreadyRevealed)
	}
	if cell.IsFlagged {
		return rejected(RejectFlagged)
	}
	if s.policy.TurnGated && !s.turn.Admit(s.self) {
		return rejected(RejectNotYourTurn)
	}

	out := Outcome{Accepted: true}
	out.TimerStarted = s.commitMines(row, col)
	s.hint = nil

	revealed, hitMine := s.revealFrom(row, col, direct)
	out.Revealed = revealed

	if s.mode == ModeMultiplayer {
		s.outbox = append(s.outbox, OutboundEvent{
			Kind:          OutLocalMove,
			Move:          MoveReveal,
			Row:           row,
			Col:           col,
			TilesRevealed: s.reportedTiles(),
			Level:         s.moveLevel(),
		})
	}

	if hitMine {
		out.HitMine = true
		s.lose()
		out.Finished = true
		return out
	}

	if CheckWin(s.board) {
		if s.policy.Progressive {
			s.advanceLevel()
			out.LevelAdvanced = true
			return out
		}
		s.win()
		out.Finished = true
	}
	return out
}

// commitMines places mines on the first accepted reveal of a board generation.
// It returns true when this call started the session timer.
func (s *Session) commitMines(row, col int) bool {
	if s.board.MinesPlaced {
		return false
	}
	capacity := s.board.PlacementCapacity(row, col)
	if s.board.Difficulty.Mines > capacity {
		s.board.Difficulty.Mines = capacity
		if s.policy.Progressive {
			s.survivalMineCount = capacity
		}
	}
	s.board.PlaceMines(row, col, s.random)
	s.phase = PhaseInProgress
	if s.timerRunning {
		return false
	}
	s.timerRunning = true
	return true
}

func (s *Session) win() {
	s.won = true
	s.phase = PhaseWon
	s.timerRunning = false
	s.hint = nil
	s.finish()
}

func (s *Session) lose() {
	s.won = false
	s.phase = PhaseLost
	s.timerRunning = false
	s.hint = nil
	s.board.RevealAllMines()
	s.finish()
}

func (s *Session) finish() {
	s.score = CalculateScore(s.scoreInput())
	if s.mode == ModeMultiplayer {
		s.outbox = append(s.outbox, OutboundEvent{
			Kind:        OutSessionFinished,
			Score:       s.score,
			ElapsedTime: s.elapsed,
			Won:         s.won,
		})
	}
}

func (s *Session) scoreInput() ScoreInput {
	in := ScoreInput{
		Mode:                s.mode,
		Variant:             s.variant,
		Won:                 s.won,
		TilesRevealed:       s.tilesRevealed,
		CompletedLevelTiles: s.survivalTotalTiles,
	}
	if s.mode == ModeMultiplayer {
		in.TilesRevealed = s.reportedTiles()
	}
	in.AllParticipantsTiles = in.TilesRevealed
	for p, n := range s.remoteTiles {
		if p != s.self {
			in.AllParticipantsTiles += n
		}
	}
	return in
}

// reportedTiles counts completed Survival levels too
func (s *Session) reportedTiles() int {
	if s.policy.Progressive {
		return s.tilesRevealed + s.survivalTotalTiles
	}
	return s.tilesRevealed
}

func (s *Session) moveLevel() int {
	if s.policy.Progressive {
		return s.survivalLevel
	}
	return 0
}

// advanceLevel moves a cleared Survival board to the next level
func (s *Session) advanceLevel() {
	s.phase = PhaseLevelAdvance
	s.survivalTotalTiles += s.tilesRevealed
	s.survivalLevel++

	d := s.difficulty
	s.survivalMineCount = s.rules.Survival.MinesForLevel(s.survivalLevel, d.Rows, d.Cols)
	d.Mines = s.survivalMineCount

	s.board = NewBoard(d)
	s.flagsPlaced = 0
	s.tilesRevealed = 0
	s.hint = nil
	s.phase = PhaseAwaitingFirstMove
}

// ToggleFlag flips the flag on an unrevealed cell
func (s *Session) ToggleFlag(row, col int) Outcome {
	switch {
	case s.phase == PhaseIdle || s.board == nil:
		return rejected(RejectNotStarted)
	case s.phase.Terminal():
		return rejected(RejectFinished)
	case !s.board.InBounds(row, col):
		return rejected(RejectOutOfBounds)
	case !s.board.MinesPlaced:
		return rejected(RejectMinesNotPlaced)
	}
	cell := s.board.Cell(row, col)
	if cell.IsRevealed {
		return rejected(RejectAlreadyRevealed)
	}
	cell.IsFlagged = !cell.IsFlagged
	if cell.IsFlagged {
		s.flagsPlaced++
		if s.policy.Countdown {
			s.timeRemaining += s.rules.TimeBomb.FlagBonus
		}
	} else {
		s.flagsPlaced--
	}
	if s.mode == ModeMultiplayer {
		s.outbox = append(s.outbox, OutboundEvent{
			Kind:          OutLocalMove,
			Move:          MoveFlag,
			Row:           row,
			Col:           col,
			TilesRevealed: s.reportedTiles(),
			Level:         s.moveLevel(),
		})
	}
	return Outcome{Accepted: true}
}

// UseHint marks a random unrevealed safe cell. The hint stays until ClearHint
// or the next reveal.
func (s *Session) UseHint() Outcome {
	switch {
	case s.phase == PhaseIdle || s.board == nil:
		return rejected(RejectNotStarted)
	case s.phase.Terminal():
		return rejected(RejectFinished)
	case !s.policy.HintsAllowed:
		return rejected(RejectHintsDisabled)
	case !s.board.MinesPlaced:
		return rejected(RejectMinesNotPlaced)
	case s.hintsRemaining <= 0:
		return rejected(RejectNoHintsLeft)
	}

	var safe []Coord
	for r := range s.board.Cells {
		for c := range s.board.Cells[r] {
			cell := s.board.Cells[r][c]
			if !cell.IsRevealed && !cell.IsMine && !cell.IsFlagged {
				safe = append(safe, Coord{Row: r, Col: c})
			}
		}
	}
	if len(safe) == 0 {
		return rejected(RejectNoSafeCell)
	}

	pick := safe[int(s.hintRandom.Next()*float64(len(safe)))]
	s.hint = &pick
	s.hintsRemaining--
	s.hintsUsed++
	return Outcome{Accepted: true, Hint: &pick}
}

// ClearHint drops the highlighted hint cell
func (s *Session) ClearHint() {
	s.hint = nil
}

// Tick advances the session clock by one second. Ticks from a previous
// generation are ignored.
func (s *Session) Tick(generation uint64) Outcome {
	if generation != s.generation || !s.timerRunning {
		return rejected(RejectStaleTick)
	}
	s.elapsed++
	if !s.policy.Countdown {
		return Outcome{Accepted: true}
	}
	s.timeRemaining--
	if s.timeRemaining <= 0 {
		s.timeRemaining = 0
		s.lose()
		return Outcome{Accepted: true, Finished: true}
	}
	return Outcome{Accepted: true}
}

// DrainOutbox returns and clears the events produced since the last drain
func (s *Session) DrainOutbox() []OutboundEvent {
	out := s.outbox
	s.outbox = nil
	return out
}

// Result returns the record of a finished game
func (s *Session) Result() (Result, bool) {
	if s.phase != PhaseWon && s.phase != PhaseLost {
		if s.phase != PhaseEnded || s.board == nil || !s.board.MinesPlaced {
			return Result{}, false
		}
	}
	return Result{
		Participant:   s.self,
		Mode:          s.mode,
		Variant:       s.variant,
		Difficulty:    s.difficulty.Name,
		Score:         s.score,
		ElapsedTime:   s.elapsed,
		TilesRevealed: s.tilesRevealed + s.survivalTotalTiles,
		HintsUsed:     s.hintsUsed,
		Won:           s.won,
		Level:         s.survivalLevel,
	}, true
}

// Result is what a finished session reports to the leaderboard
type Result struct {
	Participant   string  `json:"participant"`
	Mode          Mode    `json:"mode"`
	Variant       Variant `json:"variant"`
	Difficulty    string  `json:"difficulty"`
	Score         int     `json:"score"`
	ElapsedTime   int     `json:"elapsed_time"`
	TilesRevealed int     `json:"tiles_revealed"`
	HintsUsed     int     `json:"hints_used"`
	Won           bool    `json:"won"`
	Level         int     `json:"level,omitempty"`
}

func (s *Session) Phase() Phase { return s.phase }
func (s *Session) Mode() Mode { return s.mode }
func (s *Session) Variant() Variant { return s.variant }
func (s *Session) Policy() Policy { return s.policy }
func (s *Session) Difficulty() Difficulty { return s.difficulty }
func (s *Session) Board() *Board { return s.board }
func (s *Session) Generation() uint64 { return s.generation }
func (s *Session) TimerRunning() bool { return s.timerRunning }
func (s *Session) ElapsedTime() int { return s.elapsed }
func (s *Session) TimeRemaining() float64 { return s.timeRemaining }
func (s *Session) FlagsPlaced() int { return s.flagsPlaced }
func (s *Session) HintsRemaining() int { return s.hintsRemaining }
func (s *Session) HintsUsed() int { return s.hintsUsed }
func (s *Session) Score() int { return s.score }
func (s *Session) TilesRevealed() int { return s.tilesRevealed }
func (s *Session) DirectClicks() int { return s.directClicks }
func (s *Session) SurvivalLevel() int { return s.survivalLevel }
func (s *Session) SurvivalMineCount() int { return s.survivalMineCount }
func (s *Session) SurvivalTotalTiles() int { return s.survivalTotalTiles }
func (s *Session) Turn() *TurnCoordinator { return s.turn }
func (s *Session) Results() []ParticipantResult { return s.results }
