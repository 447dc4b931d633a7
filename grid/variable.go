package grid

import "fmt"

type Direction uint8

const (
	Across Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Across {
		return "across"
	}
	return "down"
}

// A Variable is a single word slot in the grid: its starting cell, its
// length in cells, and whether it runs across or down. Variables are
// comparable and are used as map keys throughout.
type Variable struct {
	Row    int
	Col    int
	Length int
	Dir    Direction
}

func (v Variable) String() string {
	return fmt.Sprintf("(%d, %d) %v : %d", v.Row, v.Col, v.Dir, v.Length)
}

// A Cell is a single grid coordinate.
type Cell struct {
	Row, Col int
}

// Cells returns the grid cells this slot covers, in word order.
func (v Variable) Cells() []Cell {
	cells := make([]Cell, v.Length)
	for k := 0; k < v.Length; k++ {
		if v.Dir == Across {
			cells[k] = Cell{v.Row, v.Col + k}
		} else {
			cells[k] = Cell{v.Row + k, v.Col}
		}
	}
	return cells
}
