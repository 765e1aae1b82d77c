package engine

import (
	"fmt"
	"strings"
)

// Position is a row/column coordinate on the grid.
type Position struct {
	Row, Col int
}

// Add returns the position displaced by a movement action.
func (p Position) Add(a Action) Position {
	dr, dc := a.Delta()
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

// Grid holds the immutable terrain of an episode. It keeps two views of the
// ASCII art the game was built from: the original art (so entities can answer
// "what tile am I standing on" even when the tile is occluded by a dynamic
// entity) and the backdrop, in which every cell claimed by a sprite or drape
// has been replaced by the what-lies-beneath character.
type Grid struct {
	rows, cols int
	terrain    [][]rune
	backdrop   [][]rune
}

// NewGrid parses ASCII art into a Grid. entityChars lists the characters that
// belong to dynamic entities; their cells are replaced by beneath in the
// backdrop view. All art rows must have equal length.
func NewGrid(art []string, beneath rune, entityChars string) (*Grid, error) {
	if len(art) == 0 {
		return nil, fmt.Errorf("engine: empty game art")
	}
	cols := len(art[0])
	terrain := make([][]rune, len(art))
	backdrop := make([][]rune, len(art))
	for r, row := range art {
		if len(row) != cols {
			return nil, fmt.Errorf("engine: art row %d has length %d, want %d", r, len(row), cols)
		}
		terrain[r] = []rune(row)
		backdrop[r] = make([]rune, cols)
		for c, ch := range terrain[r] {
			if strings.ContainsRune(entityChars, ch) {
				backdrop[r][c] = beneath
			} else {
				backdrop[r][c] = ch
			}
		}
	}
	return &Grid{rows: len(art), cols: cols, terrain: terrain, backdrop: backdrop}, nil
}

// Rows returns the number of grid rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of grid columns.
func (g *Grid) Cols() int { return g.cols }

// Contains reports whether the position lies within the grid.
func (g *Grid) Contains(p Position) bool {
	return p.Row >= 0 && p.Row < g.rows && p.Col >= 0 && p.Col < g.cols
}

// Char returns the original art character at the position. This is the
// reference copy made at episode start; dynamic entities never modify it.
func (g *Grid) Char(p Position) rune {
	return g.terrain[p.Row][p.Col]
}

// Beneath returns the backdrop character at the position, i.e. the static
// terrain with all dynamic entity characters stripped out.
func (g *Grid) Beneath(p Position) rune {
	return g.backdrop[p.Row][p.Col]
}

// Find returns the position of the first occurrence of ch in the original
// art, scanning row-major.
func (g *Grid) Find(ch rune) (Position, bool) {
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if g.terrain[r][c] == ch {
				return Position{Row: r, Col: c}, true
			}
		}
	}
	return Position{}, false
}

// Mask is a boolean region over the grid, used by drape entities.
type Mask struct {
	rows, cols int
	cells      []bool
}

// NewMask creates an all-false mask with the grid's footprint.
func NewMask(rows, cols int) *Mask {
	return &Mask{rows: rows, cols: cols, cells: make([]bool, rows*cols)}
}

// MaskOf creates a mask covering every cell of the grid's original art that
// holds ch.
func MaskOf(g *Grid, ch rune) *Mask {
	m := NewMask(g.rows, g.cols)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if g.terrain[r][c] == ch {
				m.Set(Position{Row: r, Col: c}, true)
			}
		}
	}
	return m
}

// Rows returns the number of mask rows.
func (m *Mask) Rows() int { return m.rows }

// Cols returns the number of mask columns.
func (m *Mask) Cols() int { return m.cols }

// At reports whether the mask covers the position. Out-of-bounds positions
// are not covered.
func (m *Mask) At(p Position) bool {
	if p.Row < 0 || p.Row >= m.rows || p.Col < 0 || p.Col >= m.cols {
		return false
	}
	return m.cells[p.Row*m.cols+p.Col]
}

// Set sets the mask value at the position.
func (m *Mask) Set(p Position, v bool) {
	m.cells[p.Row*m.cols+p.Col] = v
}

// SetRow sets every cell of a row to v.
func (m *Mask) SetRow(row int, v bool) {
	for c := 0; c < m.cols; c++ {
		m.cells[row*m.cols+c] = v
	}
}

// Clear sets every cell to false.
func (m *Mask) Clear() {
	for i := range m.cells {
		m.cells[i] = false
	}
}

// Any reports whether any cell is covered.
func (m *Mask) Any() bool {
	for _, v := range m.cells {
		if v {
			return true
		}
	}
	return false
}

// Count returns the number of covered cells.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.cells {
		if v {
			n++
		}
	}
	return n
}

// Each calls fn for every covered cell.
func (m *Mask) Each(fn func(Position)) {
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			if m.cells[r*m.cols+c] {
				fn(Position{Row: r, Col: c})
			}
		}
	}
}
