package game

// revealFrom discloses (row, col) and, where the policy allows it, the
// contiguous zero-adjacency region around it. The caller has already checked
// that the cell is in bounds, hidden and unflagged.
func (s *Session) revealFrom(row, col int, direct bool) ([]Coord, bool) {
	cell := s.board.Cell(row, col)
	cell.IsRevealed = true
	revealed := []Coord{{Row: row, Col: col}}

	if cell.IsMine {
		return revealed, true
	}

	s.tilesRevealed++
	if direct {
		s.directClicks++
		if s.policy.Countdown {
			s.timeRemaining += s.rules.TimeBomb.Bonus[s.tier]
		}
	}

	if !s.policy.FloodFill || cell.AdjacentMines != 0 {
		return revealed, false
	}

	stack := []Coord{{Row: row, Col: col}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, n := range s.board.neighbors(cur.Row, cur.Col) {
			nc := &s.board.Cells[n.Row][n.Col]
			if nc.IsRevealed || nc.IsFlagged || nc.IsMine {
				continue
			}
			nc.IsRevealed = true
			s.tilesRevealed++
			revealed = append(revealed, n)
			if nc.AdjacentMines == 0 {
				stack = append(stack, n)
			}
		}
	}
	return revealed, false
}
