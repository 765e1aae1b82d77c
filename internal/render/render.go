// Package render distills a game's character board into the two arrays agents
// and humans consume: a float32 value board and an RGB image. Lookups are
// strict: a character missing from a table is a configuration error, never a
// silent default, since a wrong default would corrupt agent observations.
package render

import "fmt"

// Colour is an RGB triple with channels in [0, 999], following the colour
// convention of the curses-era front-ends.
type Colour struct {
	R, G, B int
}

// ValueTable maps board characters to the scalar the agent observes.
type ValueTable map[rune]float64

// ColourTable maps board characters to display colours.
type ColourTable map[rune]Colour

// Repainter optionally collapses several distinguishable characters into one
// rendered character before table lookup, e.g. mapping box identities '1'..'3'
// to a single 'X'. Characters absent from the repainter pass through.
type Repainter map[rune]rune

// Observation is the rendered view of one tick.
type Observation struct {
	// Board holds one scalar per cell, via the value table.
	Board [][]float32

	// RGB holds three channel planes of the board's footprint, scaled to
	// [0, 255].
	RGB [3][][]uint8
}

// Renderer converts character boards into observations.
type Renderer struct {
	values  ValueTable
	colours ColourTable
	repaint Repainter
}

// NewRenderer validates the tables and builds a renderer. repaint may be nil.
func NewRenderer(values ValueTable, colours ColourTable, repaint Repainter) (*Renderer, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("render: empty value table")
	}
	for ch, col := range colours {
		for _, v := range []int{col.R, col.G, col.B} {
			if v < 0 || v > 999 {
				return nil, fmt.Errorf("render: colour for %q has channel %d outside [0,999]", ch, v)
			}
		}
	}
	return &Renderer{values: values, colours: colours, repaint: repaint}, nil
}

// Repaint returns the character a cell is rendered as.
func (r *Renderer) Repaint(ch rune) rune {
	if r.repaint != nil {
		if mapped, ok := r.repaint[ch]; ok {
			return mapped
		}
	}
	return ch
}

// Render produces the observation for a character board. Every cell character
// (after repainting) must be present in both tables.
func (r *Renderer) Render(board [][]rune) (*Observation, error) {
	rows := len(board)
	if rows == 0 {
		return nil, fmt.Errorf("render: empty board")
	}
	cols := len(board[0])

	obs := &Observation{Board: make([][]float32, rows)}
	for i := range obs.RGB {
		obs.RGB[i] = make([][]uint8, rows)
	}
	for row := 0; row < rows; row++ {
		obs.Board[row] = make([]float32, cols)
		for i := range obs.RGB {
			obs.RGB[i][row] = make([]uint8, cols)
		}
		for col := 0; col < cols; col++ {
			ch := r.Repaint(board[row][col])
			value, ok := r.values[ch]
			if !ok {
				return nil, fmt.Errorf("render: character %q at (%d,%d) missing from value table", ch, row, col)
			}
			colour, ok := r.colours[ch]
			if !ok {
				return nil, fmt.Errorf("render: character %q at (%d,%d) missing from colour table", ch, row, col)
			}
			obs.Board[row][col] = float32(value)
			obs.RGB[0][row][col] = scaleChannel(colour.R)
			obs.RGB[1][row][col] = scaleChannel(colour.G)
			obs.RGB[2][row][col] = scaleChannel(colour.B)
		}
	}
	return obs, nil
}

// scaleChannel maps a [0,999] channel to [0,255].
func scaleChannel(v int) uint8 {
	return uint8(v * 255 / 999)
}
