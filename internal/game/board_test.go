package game

import (
	"reflect"
	"testing"
)

func chebyshev(a, b Coord) int {
	dr := a.Row - b.Row
	if dr < 0 {
		dr = -dr
	}
	dc := a.Col - b.Col
	if dc < 0 {
		dc = -dc
	}
	if dr > dc {
		return dr
	}
	return dc
}

func TestPlaceMinesKeepsExclusionZoneClear(t *testing.T) {
	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		openings := []Coord{
			{0, 0}, {0, d.Cols - 1}, {d.Rows - 1, 0}, {d.Rows - 1, d.Cols - 1},
			{d.Rows / 2, d.Cols / 2}, {1, 1}, {0, d.Cols / 2},
		}
		for _, open := range openings {
			for seed := int64(1); seed <= 20; seed++ {
				b := NewBoard(d)
				if !b.PlaceMines(open.Row, open.Col, NewSeededSource(seed)) {
					t.Fatalf("%s: first placement refused", d.Name)
				}
				if got := b.MineCount(); got != d.Mines {
					t.Fatalf("%s seed %d: mines = %d; want %d", d.Name, seed, got, d.Mines)
				}
				for r := 0; r < d.Rows; r++ {
					for c := 0; c < d.Cols; c++ {
						if b.Cells[r][c].IsMine && chebyshev(Coord{r, c}, open) <= ExclusionRadius {
							t.Fatalf("%s seed %d: mine at (%d,%d) inside zone of %v", d.Name, seed, r, c, open)
						}
					}
				}
			}
		}
	}
}

func TestAdjacencyMatchesNeighbourMines(t *testing.T) {
	b := NewBoard(DifficultyHard)
	b.PlaceMines(8, 15, NewSeededSource(2024))

	for r := 0; r < b.Rows(); r++ {
		for c := 0; c < b.Cols(); c++ {
			if b.Cells[r][c].IsMine {
				continue
			}
			want := 0
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					if (dr != 0 || dc != 0) && b.InBounds(r+dr, c+dc) && b.Cells[r+dr][c+dc].IsMine {
						want++
					}
				}
			}
			if got := b.Cells[r][c].AdjacentMines; got != want {
				t.Fatalf("adjacent(%d,%d) = %d; want %d", r, c, got, want)
			}
		}
	}
}

func TestPlaceMinesSecondCallLeavesBoardUnchanged(t *testing.T) {
	b := NewBoard(DifficultyMedium)
	b.PlaceMines(3, 3, NewSeededSource(77))
	before := b.Clone()

	if b.PlaceMines(12, 12, NewSeededSource(78)) {
		t.Fatalf("second placement accepted")
	}
	if !reflect.DeepEqual(before, b) {
		t.Fatalf("board mutated by second placement")
	}
}

func TestOpeningAtCentreOfEasyBoard(t *testing.T) {
	b := NewBoard(DifficultyEasy)
	b.PlaceMines(4, 4, NewDefaultSource())

	for r := 2; r <= 6; r++ {
		for c := 2; c <= 6; c++ {
			if b.Cells[r][c].IsMine {
				t.Fatalf("mine at (%d,%d) inside the opening block", r, c)
			}
		}
	}
	if got := b.MineCount(); got != 10 {
		t.Fatalf("mines = %d; want 10", got)
	}
}

func TestCheckWin(t *testing.T) {
	b := NewBoard(DifficultyEasy)
	if CheckWin(b) {
		t.Fatalf("unplaced board reported as won")
	}

	b.PlaceMines(4, 4, NewSeededSource(5))
	if CheckWin(b) {
		t.Fatalf("fresh board reported as won")
	}

	var last *Cell
	for r := range b.Cells {
		for c := range b.Cells[r] {
			if !b.Cells[r][c].IsMine {
				b.Cells[r][c].IsRevealed = true
				last = &b.Cells[r][c]
			}
		}
	}
	if !CheckWin(b) {
		t.Fatalf("fully cleared board not won")
	}

	last.IsRevealed = false
	if CheckWin(b) {
		t.Fatalf("board with a hidden safe cell reported as won")
	}
}

func TestPlacementCapacity(t *testing.T) {
	b := NewBoard(DifficultyEasy)
	cases := []struct {
		row, col int
		want     int
	}{
		{4, 4, 81 - 25},
		{0, 0, 81 - 9},
		{0, 4, 81 - 15},
		{1, 1, 81 - 16},
	}
	for _, tc := range cases {
		if got := b.PlacementCapacity(tc.row, tc.col); got != tc.want {
			t.Fatalf("capacity(%d,%d) = %d; want %d", tc.row, tc.col, got, tc.want)
		}
	}
}

func TestRevealAllMinesClearsFlags(t *testing.T) {
	b := NewBoard(DifficultyEasy)
	b.PlaceMines(4, 4, NewSeededSource(9))
	for r := range b.Cells {
		for c := range b.Cells[r] {
			if b.Cells[r][c].IsMine {
				b.Cells[r][c].IsFlagged = true
			}
		}
	}
	b.RevealAllMines()
	for r := range b.Cells {
		for c := range b.Cells[r] {
			cell := b.Cells[r][c]
			if cell.IsMine && (!cell.IsRevealed || cell.IsFlagged) {
				t.Fatalf("mine (%d,%d) revealed=%v flagged=%v", r, c, cell.IsRevealed, cell.IsFlagged)
			}
		}
	}
}

func TestDifficultyByName(t *testing.T) {
	cases := map[string]Difficulty{
		"easy":    DifficultyEasy,
		"HARD":    DifficultyHard,
		"medium":  DifficultyMedium,
		"unknown": DifficultyMedium,
	}
	for name, want := range cases {
		if got := DifficultyByName(name); got != want {
			t.Fatalf("DifficultyByName(%q) = %+v; want %+v", name, got, want)
		}
	}
}
