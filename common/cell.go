package common

import "fmt"

// Cell is the position of one grid cell. The first component is the row (latitude axis), the second one the column
// (longitude axis). Cells outside the grid are valid values, they simply never hold any records.
type Cell [2]int

func (c Cell) Row() int { return c[0] }

func (c Cell) Column() int { return c[1] }

func (c Cell) Up() Cell { return Cell{c.Row() + 1, c.Column()} }

func (c Cell) Down() Cell { return Cell{c.Row() - 1, c.Column()} }

func (c Cell) Left() Cell { return Cell{c.Row(), c.Column() - 1} }

func (c Cell) Right() Cell { return Cell{c.Row(), c.Column() + 1} }

// AxisNeighbors returns the four cells sharing an edge with this cell in the order down, up, left, right. Diagonal
// cells are not included.
func (c Cell) AxisNeighbors() []Cell {
	return []Cell{c.Down(), c.Up(), c.Left(), c.Right()}
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d, %d)", c.Row(), c.Column())
}

func (c Cell) isBelowOrLeftOf(other Cell) bool {
	return c.Row() < other.Row() || c.Column() < other.Column()
}

func (c Cell) isAboveOrRightOf(other Cell) bool {
	return c.Row() > other.Row() || c.Column() > other.Column()
}

// CellExtent is the rectangle of cells between a lower-left and an upper-right cell, both inclusive.
type CellExtent [2]Cell

func (c CellExtent) LowerLeftCell() Cell { return c[0] }

func (c CellExtent) UpperRightCell() Cell { return c[1] }

func (c CellExtent) Expand(cell Cell) CellExtent {
	if c.Contains(cell) {
		return c
	}

	minRow := c.LowerLeftCell().Row()
	minColumn := c.LowerLeftCell().Column()

	maxRow := c.UpperRightCell().Row()
	maxColumn := c.UpperRightCell().Column()

	if cell.Row() < minRow {
		minRow = cell.Row()
	}
	if cell.Column() < minColumn {
		minColumn = cell.Column()
	}

	if cell.Row() > maxRow {
		maxRow = cell.Row()
	}
	if cell.Column() > maxColumn {
		maxColumn = cell.Column()
	}

	return CellExtent{
		Cell{minRow, minColumn},
		Cell{maxRow, maxColumn},
	}
}

func (c CellExtent) Contains(cell Cell) bool {
	return !cell.isAboveOrRightOf(c.UpperRightCell()) && !cell.isBelowOrLeftOf(c.LowerLeftCell())
}

// Size returns the amount of rows and columns covered by this extent.
func (c CellExtent) Size() (int, int) {
	return c.UpperRightCell().Row() - c.LowerLeftCell().Row() + 1, c.UpperRightCell().Column() - c.LowerLeftCell().Column() + 1
}
