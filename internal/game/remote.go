package game

// ApplySessionStart arms a multiplayer board from the shared seed.
// Every participant that applies the same start builds the same layout once
// the opening coordinate is known.
func (s *Session) ApplySessionStart(ev SessionStart) error {
	if s.mode != ModeMultiplayer {
		return ErrNotMultiplayer
	}
	if ev.Difficulty.Rows <= 0 || ev.Difficulty.Cols <= 0 {
		return ErrMalformedEvent
	}
	if ev.Variant != "" {
		s.variant = ev.Variant
		s.policy = PolicyFor(ev.Variant, s.mode)
	}
	if ev.TimeBombTier != "" {
		s.tier = ev.TimeBombTier
	}
	s.difficulty = ev.Difficulty
	s.random = NewSeededSource(ev.Seed)

	s.participants = nil
	if len(ev.Participants) > 0 {
		s.participants = make(map[string]bool, len(ev.Participants))
		for _, p := range ev.Participants {
			s.participants[p] = true
		}
	}

	s.reset()
	if ev.InitialTurn != "" {
		s.turn.Assign(ev.InitialTurn)
	}
	return nil
}

// ApplyRemoteMove folds a move relayed from another participant into the
// session. Malformed moves return an error and leave the session untouched.
func (s *Session) ApplyRemoteMove(m RemoteMove) (Outcome, error) {
	if s.mode != ModeMultiplayer {
		return rejected(RejectWrongMode), ErrNotMultiplayer
	}
	if s.board == nil || s.phase == PhaseIdle {
		return rejected(RejectNotStarted), nil
	}
	if err := m.Validate(s.board.Difficulty); err != nil {
		return rejected(RejectOutOfBounds), err
	}
	if s.participants != nil && !s.participants[m.Participant] {
		return Outcome{}, ErrUnknownParticipant
	}
	if m.Participant == s.self {
		return rejected(RejectAlreadyRevealed), nil
	}
	if s.phase == PhaseEnded {
		return rejected(RejectFinished), nil
	}

	if m.TilesRevealed > s.remoteTiles[m.Participant] {
		s.remoteTiles[m.Participant] = m.TilesRevealed
	}

	row, col := *m.Row, *m.Col
	switch m.Kind {
	case MoveFlag:
		return s.applyRemoteFlag(row, col), nil
	default:
		return s.applyRemoteReveal(row, col, m.level()), nil
	}
}

func (s *Session) applyRemoteReveal(row, col, level int) Outcome {
	out := Outcome{Accepted: true}

	// a Survival move only touches the board of the level it was made on
	if s.policy.Progressive && level != s.survivalLevel {
		return out
	}

	// the opening move commits the layout for everyone, whoever made it
	if !s.board.MinesPlaced && s.phase == PhaseAwaitingFirstMove {
		out.TimerStarted = s.commitMines(row, col)
	}

	// only the shared Luck board mirrors other participants' reveals
	if s.variant != VariantLuck || !s.board.MinesPlaced {
		return out
	}

	cell := s.board.Cell(row, col)
	if cell.IsRevealed {
		return out
	}
	if cell.IsFlagged {
		cell.IsFlagged = false
		s.flagsPlaced--
	}
	cell.IsRevealed = true
	out.Revealed = []Coord{{Row: row, Col: col}}
	if cell.IsMine {
		out.HitMine = true
		return out
	}

	// the clicker owns the win; everyone else ends on their own tiles
	if s.phase == PhaseInProgress && CheckWin(s.board) {
		s.lose()
		out.Finished = true
	}
	return out
}

func (s *Session) applyRemoteFlag(row, col int) Outcome {
	if s.variant != VariantLuck || s.board == nil || !s.board.MinesPlaced {
		return Outcome{Accepted: true}
	}
	cell := s.board.Cell(row, col)
	if cell.IsRevealed {
		return Outcome{Accepted: true}
	}
	cell.IsFlagged = !cell.IsFlagged
	if cell.IsFlagged {
		s.flagsPlaced++
	} else {
		s.flagsPlaced--
	}
	return Outcome{Accepted: true}
}

// ApplyTurnAssigned records the authority's turn decision
func (s *Session) ApplyTurnAssigned(ev TurnAssigned) error {
	if s.mode != ModeMultiplayer {
		return ErrNotMultiplayer
	}
	if ev.Participant != "" && s.participants != nil && !s.participants[ev.Participant] {
		return ErrUnknownParticipant
	}
	s.turn.Assign(ev.Participant)
	return nil
}

// ApplySessionEnded closes the session with the authority's ranking.
// A participant still playing is finished with its current score.
func (s *Session) ApplySessionEnded(ev SessionEnded) error {
	if s.mode != ModeMultiplayer {
		return ErrNotMultiplayer
	}
	if len(ev.Results) == 0 {
		return ErrMalformedEvent
	}
	if !s.phase.Terminal() && s.board != nil && s.board.MinesPlaced {
		s.score = CalculateScore(s.scoreInput())
	}
	s.results = append([]ParticipantResult(nil), ev.Results...)
	s.generation++
	s.timerRunning = false
	s.hint = nil
	s.turn.Reset()
	s.phase = PhaseEnded
	return nil
}

// RemoteTiles returns the last reported tile count of a participant
func (s *Session) RemoteTiles(participant string) int {
	return s.remoteTiles[participant]
}
