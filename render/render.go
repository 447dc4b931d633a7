// Package render turns a solved fill into terminal text or a PNG image.
package render

import (
	"strings"

	"github.com/acarlson/crossgen/grid"
	"github.com/acarlson/crossgen/solver"
)

const blockedCell = '█'

// Letters lays the assignment out as a 2D rune raster. Cells not covered
// by any assigned slot hold zero.
func Letters(g *grid.Grid, asgn solver.Assignment) [][]rune {
	letters := make([][]rune, g.Height())
	for i := range letters {
		letters[i] = make([]rune, g.Width())
	}
	for v, word := range asgn {
		for k, cell := range v.Cells() {
			letters[cell.Row][cell.Col] = rune(word[k])
		}
	}
	return letters
}

// Text renders the fill for a terminal: letters in open cells, spaces in
// open-but-unfilled cells, solid blocks elsewhere.
func Text(g *grid.Grid, asgn solver.Assignment) string {
	letters := Letters(g, asgn)
	var sb strings.Builder
	for i := 0; i < g.Height(); i++ {
		for j := 0; j < g.Width(); j++ {
			switch {
			case !g.Open(i, j):
				sb.WriteRune(blockedCell)
			case letters[i][j] != 0:
				sb.WriteRune(letters[i][j])
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
