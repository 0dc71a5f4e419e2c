package game

import "strings"

// Difficulty describes the grid a board is built from
type Difficulty struct {
	Name  string `json:"name"`
	Rows  int    `json:"rows"`
	Cols  int    `json:"cols"`
	Mines int    `json:"mines"`
}

var (
	DifficultyEasy   = Difficulty{Name: "easy", Rows: 9, Cols: 9, Mines: 10}
	DifficultyMedium = Difficulty{Name: "medium", Rows: 16, Cols: 16, Mines: 40}
	DifficultyHard   = Difficulty{Name: "hard", Rows: 16, Cols: 30, Mines: 99}
)

// DifficultyByName returns a preset, falling back to medium
func DifficultyByName(name string) Difficulty {
	switch strings.ToLower(name) {
	case "easy":
		return DifficultyEasy
	case "hard":
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// ExclusionRadius is the Chebyshev distance around the opening move kept free of mines.
const ExclusionRadius = 2

type Cell struct {
	IsMine        bool `json:"is_mine"`
	IsRevealed    bool `json:"is_revealed"`
	IsFlagged     bool `json:"is_flagged"`
	AdjacentMines int  `json:"adjacent_mines"`
}

type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type Board struct {
	Difficulty  Difficulty `json:"difficulty"`
	Cells       [][]Cell   `json:"cells"`
	MinesPlaced bool       `json:"mines_placed"`
}

// NewBoard returns an all-clear grid: no mines, nothing revealed
func NewBoard(d Difficulty) *Board {
	cells := make([][]Cell, d.Rows)
	for r := range cells {
		cells[r] = make([]Cell, d.Cols)
	}
	return &Board{Difficulty: d, Cells: cells}
}

func (b *Board) Rows() int { return b.Difficulty.Rows }
func (b *Board) Cols() int { return b.Difficulty.Cols }

func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.Difficulty.Rows && col >= 0 && col < b.Difficulty.Cols
}

// Cell returns a pointer into the grid, nil when out of bounds
func (b *Board) Cell(row, col int) *Cell {
	if !b.InBounds(row, col) {
		return nil
	}
	return &b.Cells[row][col]
}

// neighbors returns the in-bounds cells of the 8-neighbourhood
func (b *Board) neighbors(row, col int) []Coord {
	out := make([]Coord, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if b.InBounds(row+dr, col+dc) {
				out = append(out, Coord{Row: row + dr, Col: col + dc})
			}
		}
	}
	return out
}

// exclusionZone returns every in-bounds cell within ExclusionRadius of (row, col)
func (b *Board) exclusionZone(row, col int) map[Coord]bool {
	zone := make(map[Coord]bool, (2*ExclusionRadius+1)*(2*ExclusionRadius+1))
	for dr := -ExclusionRadius; dr <= ExclusionRadius; dr++ {
		for dc := -ExclusionRadius; dc <= ExclusionRadius; dc++ {
			if b.InBounds(row+dr, col+dc) {
				zone[Coord{Row: row + dr, Col: col + dc}] = true
			}
		}
	}
	return zone
}

// PlacementCapacity is the number of cells a mine may occupy when the opening move is (row, col)
func (b *Board) PlacementCapacity(row, col int) int {
	return b.Difficulty.Rows*b.Difficulty.Cols - len(b.exclusionZone(row, col))
}

// PlaceMines commits the mine layout with (excludeRow, excludeCol) as the opening move.
// It returns false without touching the board when mines were already placed.
// The caller guarantees Difficulty.Mines fits outside the exclusion zone.
func (b *Board) PlaceMines(excludeRow, excludeCol int, src RandomSource) bool {
	if b.MinesPlaced {
		return false
	}

	excluded := b.exclusionZone(excludeRow, excludeCol)
	rows, cols := b.Difficulty.Rows, b.Difficulty.Cols

	placed := 0
	for placed < b.Difficulty.Mines {
		// row is drawn before col; seeded clients depend on this order
		row := int(src.Next() * float64(rows))
		col := int(src.Next() * float64(cols))

		if b.Cells[row][col].IsMine || excluded[Coord{Row: row, Col: col}] {
			continue
		}
		b.Cells[row][col].IsMine = true
		placed++
	}

	b.computeAdjacency()
	b.MinesPlaced = true
	return true
}

func (b *Board) computeAdjacency() {
	for r := 0; r < b.Difficulty.Rows; r++ {
		for c := 0; c < b.Difficulty.Cols; c++ {
			if b.Cells[r][c].IsMine {
				b.Cells[r][c].AdjacentMines = 0
				continue
			}
			count := 0
			for _, n := range b.neighbors(r, c) {
				if b.Cells[n.Row][n.Col].IsMine {
					count++
				}
			}
			b.Cells[r][c].AdjacentMines = count
		}
	}
}

// RevealAllMines discloses every mine for the end-of-game display
func (b *Board) RevealAllMines() {
	for r := range b.Cells {
		for c := range b.Cells[r] {
			if b.Cells[r][c].IsMine {
				b.Cells[r][c].IsRevealed = true
				b.Cells[r][c].IsFlagged = false
			}
		}
	}
}

// CheckWin reports whether every non-mine cell is revealed.
// An unplaced board never wins.
func CheckWin(b *Board) bool {
	if b == nil || !b.MinesPlaced {
		return false
	}
	for r := range b.Cells {
		for c := range b.Cells[r] {
			cell := b.Cells[r][c]
			if !cell.IsMine && !cell.IsRevealed {
				return false
			}
		}
	}
	return true
}

// MineCount counts mined cells
func (b *Board) MineCount() int {
	n := 0
	for r := range b.Cells {
		for c := range b.Cells[r] {
			if b.Cells[r][c].IsMine {
				n++
			}
		}
	}
	return n
}

// Clone returns a deep copy
func (b *Board) Clone() *Board {
	cp := &Board{Difficulty: b.Difficulty, MinesPlaced: b.MinesPlaced}
	cp.Cells = make([][]Cell, len(b.Cells))
	for r := range b.Cells {
		cp.Cells[r] = append([]Cell(nil), b.Cells[r]...)
	}
	return cp
}
