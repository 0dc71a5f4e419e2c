package game

// CellView is a cell as a participant may see it.
// Adjacent is -1 when the number is hidden.
type CellView struct {
	Revealed bool `json:"revealed"`
	Flagged  bool `json:"flagged"`
	Mine     bool `json:"mine,omitempty"`
	Adjacent int  `json:"adjacent"`
}

type Snapshot struct {
	Mode           Mode         `json:"mode"`
	Variant        Variant      `json:"variant"`
	Phase          Phase        `json:"phase"`
	Difficulty     Difficulty   `json:"difficulty"`
	Tier           TimeBombTier `json:"timebomb_tier,omitempty"`
	Cells          [][]CellView `json:"cells"`
	MinesPlaced    bool         `json:"mines_placed"`
	FlagsPlaced    int          `json:"flags_placed"`
	HintsRemaining int          `json:"hints_remaining"`
	Hint           *Coord       `json:"hint,omitempty"`
	ElapsedTime    int          `json:"elapsed_time"`
	TimeRemaining  float64      `json:"time_remaining"`
	TilesRevealed  int          `json:"tiles_revealed"`
	Score          int          `json:"score"`
	Won            bool         `json:"won"`
	Level          int          `json:"level,omitempty"`
	LevelMines     int          `json:"level_mines,omitempty"`
	Turn           string       `json:"turn,omitempty"`
	MyTurn         bool         `json:"my_turn"`
}

// Snapshot renders the session for presentation. Mines stay hidden until
// revealed, and numbers stay hidden where the variant conceals them.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Mode:           s.mode,
		Variant:        s.variant,
		Phase:          s.phase,
		Difficulty:     s.difficulty,
		FlagsPlaced:    s.flagsPlaced,
		HintsRemaining: s.hintsRemaining,
		ElapsedTime:    s.elapsed,
		TilesRevealed:  s.tilesRevealed,
		Score:          s.score,
		Won:            s.won,
		MyTurn:         s.turn.IsMyTurn(),
	}
	if s.hint != nil {
		h := *s.hint
		snap.Hint = &h
	}
	if s.policy.Countdown {
		snap.Tier = s.tier
		snap.TimeRemaining = s.timeRemaining
	}
	if s.policy.Progressive {
		snap.Level = s.survivalLevel
		snap.LevelMines = s.survivalMineCount
	}
	if p, ok := s.turn.Current(); ok {
		snap.Turn = p
	}
	if s.board == nil {
		return snap
	}

	snap.Difficulty = s.board.Difficulty
	snap.MinesPlaced = s.board.MinesPlaced
	snap.Cells = make([][]CellView, len(s.board.Cells))
	for r := range s.board.Cells {
		row := make([]CellView, len(s.board.Cells[r]))
		for c, cell := range s.board.Cells[r] {
			v := CellView{Revealed: cell.IsRevealed, Flagged: cell.IsFlagged, Adjacent: -1}
			if cell.IsRevealed {
				v.Mine = cell.IsMine
				if !cell.IsMine && s.policy.NumbersVisible {
					v.Adjacent = cell.AdjacentMines
				}
			}
			row[c] = v
		}
		snap.Cells[r] = row
	}
	return snap
}
