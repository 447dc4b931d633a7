// Package grid models a crossword puzzle: the open/blocked cell raster,
// the word slots it induces, and the vocabulary available to fill them.
// It is purely geometric; the fill logic lives in the solver package.
package grid

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// OpenCell is the structure-file marker for a fillable cell. Any other
// character is a blocked cell.
const OpenCell = '_'

// An Overlap is the shared cell of two crossing slots, expressed as the
// character index within each slot's word. A and B index into the first
// and second variable of the query, respectively.
type Overlap struct {
	A, B int
}

type pair struct {
	a, b Variable
}

// Grid is an immutable puzzle model: cell structure, variables, the
// overlap geometry between them, and the word list.
type Grid struct {
	height, width int
	open          [][]bool

	variables []Variable
	words     map[string]struct{}
	overlaps  map[pair]Overlap
	neighbors map[Variable][]Variable
}

var upper = cases.Upper(language.Und)

// New reads a structure file and a word list file and builds the puzzle
// model. The structure file is a character raster; see OpenCell. The word
// list has one word per line and is uppercased on load.
func New(structurePath, wordsPath string) (*Grid, error) {
	structure, err := os.ReadFile(structurePath)
	if err != nil {
		return nil, fmt.Errorf("reading structure: %w", err)
	}
	wordData, err := os.ReadFile(wordsPath)
	if err != nil {
		return nil, fmt.Errorf("reading word list: %w", err)
	}
	var words []string
	for _, line := range strings.Split(string(wordData), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			words = append(words, line)
		}
	}
	return NewFromStrings(string(structure), words)
}

// NewFromStrings builds the puzzle model from an in-memory structure
// raster and vocabulary. Lines may be ragged; the grid width is the
// longest line. Words are uppercased; duplicates collapse.
func NewFromStrings(structure string, words []string) (*Grid, error) {
	lines := strings.Split(strings.TrimRight(structure, "\n"), "\n")
	g := &Grid{
		height:    len(lines),
		words:     make(map[string]struct{}, len(words)),
		overlaps:  make(map[pair]Overlap),
		neighbors: make(map[Variable][]Variable),
	}
	for _, line := range lines {
		if len(line) > g.width {
			g.width = len(line)
		}
	}
	g.open = make([][]bool, g.height)
	for i, line := range lines {
		g.open[i] = make([]bool, g.width)
		for j := range line {
			g.open[i][j] = line[j] == OpenCell
		}
	}

	for _, w := range words {
		g.words[upper.String(w)] = struct{}{}
	}

	g.findVariables()
	if len(g.variables) == 0 {
		return nil, errors.New("structure contains no word slots")
	}
	g.computeOverlaps()
	return g, nil
}

// findVariables scans every row and column for maximal runs of at least
// two open cells.
func (g *Grid) findVariables() {
	for i := 0; i < g.height; i++ {
		for j := 0; j < g.width; j++ {
			if !g.open[i][j] {
				continue
			}
			// A slot starts at the first open cell of its run.
			if j == 0 || !g.open[i][j-1] {
				length := 0
				for j+length < g.width && g.open[i][j+length] {
					length++
				}
				if length > 1 {
					g.variables = append(g.variables,
						Variable{Row: i, Col: j, Length: length, Dir: Across})
				}
			}
			if i == 0 || !g.open[i-1][j] {
				length := 0
				for i+length < g.height && g.open[i+length][j] {
					length++
				}
				if length > 1 {
					g.variables = append(g.variables,
						Variable{Row: i, Col: j, Length: length, Dir: Down})
				}
			}
		}
	}
	sortVariables(g.variables)
}

func (g *Grid) computeOverlaps() {
	for i, a := range g.variables {
		for _, b := range g.variables[i+1:] {
			for ai, ac := range a.Cells() {
				for bi, bc := range b.Cells() {
					if ac != bc {
						continue
					}
					g.overlaps[pair{a, b}] = Overlap{A: ai, B: bi}
					g.overlaps[pair{b, a}] = Overlap{A: bi, B: ai}
					g.neighbors[a] = append(g.neighbors[a], b)
					g.neighbors[b] = append(g.neighbors[b], a)
				}
			}
		}
	}
	for _, ns := range g.neighbors {
		sortVariables(ns)
	}
}

// sortVariables fixes a row-major total order, across before down. The
// solver's heuristic tie-breaks rely on this being deterministic.
func sortVariables(vs []Variable) {
	sort.Slice(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		if a.Col != b.Col {
			return a.Col < b.Col
		}
		if a.Dir != b.Dir {
			return a.Dir < b.Dir
		}
		return a.Length < b.Length
	})
}

func (g *Grid) Height() int { return g.height }
func (g *Grid) Width() int  { return g.width }

// Open reports whether the cell at (row, col) is fillable.
func (g *Grid) Open(row, col int) bool {
	return row >= 0 && row < g.height && col >= 0 && col < g.width && g.open[row][col]
}

// Variables returns every word slot, in row-major order. Callers must
// not modify the returned slice.
func (g *Grid) Variables() []Variable { return g.variables }

// Words returns the vocabulary set. Callers must not modify it.
func (g *Grid) Words() map[string]struct{} { return g.words }

// Neighbors returns the slots that cross v, in row-major order.
func (g *Grid) Neighbors(v Variable) []Variable { return g.neighbors[v] }

// Overlap returns the character indices at which a and b cross, if they
// do. The A index is into a's word, the B index into b's.
func (g *Grid) Overlap(a, b Variable) (Overlap, bool) {
	ov, ok := g.overlaps[pair{a, b}]
	return ov, ok
}
