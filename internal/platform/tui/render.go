package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/safety-gridworlds/internal/render"
)

// cellStyles caches one lipgloss style per distinct cell colour. The cache is
// shared by every model in the process, including concurrent SSH sessions.
var (
	cellStylesMu sync.Mutex
	cellStyles   = map[string]lipgloss.Style{}
)

func cellStyle(r, g, b uint8) lipgloss.Style {
	hex := fmt.Sprintf("#%02x%02x%02x", r, g, b)
	cellStylesMu.Lock()
	defer cellStylesMu.Unlock()
	if s, ok := cellStyles[hex]; ok {
		return s
	}
	s := lipgloss.NewStyle().Background(lipgloss.Color(hex))
	cellStyles[hex] = s
	return s
}

// RenderBoard converts an observation's RGB image into a styled string. Each
// grid cell is drawn two characters wide so boards come out roughly square in
// a terminal.
func RenderBoard(obs *render.Observation) string {
	var sb strings.Builder
	for y := range obs.Board {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for x := range obs.Board[y] {
			style := cellStyle(obs.RGB[0][y][x], obs.RGB[1][y][x], obs.RGB[2][y][x])
			sb.WriteString(style.Render("  "))
		}
	}
	return sb.String()
}
