package index

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"math"
	"netcov/common"
)

type Axis int

const (
	AxisLatitude Axis = iota
	AxisLongitude
)

type Edge int

const (
	EdgeNear Edge = iota // Lower latitude or lower longitude border of a cell
	EdgeFar              // Upper latitude or upper longitude border of a cell
)

// Grid partitions a rectangular region into square cells of CellSize degrees. Rows go along the latitude, columns along
// the longitude, cell (0, 0) is at the minimum corner of the region. The row and column counts are fixed when the grid
// is created, cell IDs therefore never change for the lifetime of a grid.
type Grid struct {
	region      orb.Bound
	cellSize    float64
	rowCount    int
	columnCount int
}

func NewGrid(region orb.Bound, cellSize float64) (*Grid, error) {
	if !(cellSize > 0) || math.IsInf(cellSize, 1) {
		return nil, errors.Errorf("Cell size must be a positive number but was %f", cellSize)
	}
	if region.Min.Lat() > region.Max.Lat() || region.Min.Lon() > region.Max.Lon() {
		return nil, errors.Errorf("Invalid region: minimum %v is not below maximum %v", region.Min, region.Max)
	}

	rowCount := cellCount(region.Max.Lat()-region.Min.Lat(), cellSize)
	columnCount := cellCount(region.Max.Lon()-region.Min.Lon(), cellSize)

	// Cell IDs are row*columnCount+column and must not overflow.
	if rowCount*columnCount >= math.MaxInt {
		return nil, errors.Errorf("Cell size %g is too small for region %v, the grid would have %g cells", cellSize, region, rowCount*columnCount)
	}

	return &Grid{
		region:      region,
		cellSize:    cellSize,
		rowCount:    int(rowCount),
		columnCount: int(columnCount),
	}, nil
}

// cellCount returns the amount of cells needed to cover the given length. A region of zero length still has one cell.
func cellCount(length float64, cellSize float64) float64 {
	return math.Max(1, math.Ceil(length/cellSize))
}

func (g *Grid) Region() orb.Bound { return g.region }

func (g *Grid) CellSize() float64 { return g.cellSize }

func (g *Grid) RowCount() int { return g.rowCount }

func (g *Grid) ColumnCount() int { return g.columnCount }

// CellOf returns the cell containing the given point. When the cell is outside the grid, it is returned together with
// an ErrOutOfRegion error, so that callers can still look at the adjacent cells.
func (g *Grid) CellOf(point orb.Point) (common.Cell, error) {
	row := g.cellIndex(point.Lat(), g.region.Min.Lat(), g.region.Max.Lat(), g.rowCount)
	column := g.cellIndex(point.Lon(), g.region.Min.Lon(), g.region.Max.Lon(), g.columnCount)
	cell := common.Cell{row, column}

	if !g.Contains(cell) {
		return cell, errors.Wrapf(ErrOutOfRegion, "point (lat=%f, lon=%f) is in cell %s of a %dx%d grid", point.Lat(), point.Lon(), cell, g.rowCount, g.columnCount)
	}

	return cell, nil
}

func (g *Grid) cellIndex(value float64, min float64, max float64, count int) int {
	index := int(math.Floor((value - min) / g.cellSize))

	// A point exactly on the upper border of the region belongs to the last cell and not to the one above.
	if index == count && value <= max {
		index = count - 1
	}

	return index
}

// Contains checks whether the cell is a valid cell of this grid.
func (g *Grid) Contains(cell common.Cell) bool {
	return cell.Row() >= 0 && cell.Row() < g.rowCount && cell.Column() >= 0 && cell.Column() < g.columnCount
}

// CellId flattens the cell in row-major order. IDs are only unique for cells within the grid, see Contains.
func (g *Grid) CellId(cell common.Cell) int {
	return cell.Row()*g.columnCount + cell.Column()
}

// cellFromId is the inverse of CellId for cells within the grid.
func (g *Grid) cellFromId(id int) common.Cell {
	return common.Cell{id / g.columnCount, id % g.columnCount}
}

// CellBound returns the rectangle covered by the given cell.
func (g *Grid) CellBound(cell common.Cell) orb.Bound {
	minPoint := orb.Point{
		g.region.Min.Lon() + float64(cell.Column())*g.cellSize,
		g.region.Min.Lat() + float64(cell.Row())*g.cellSize,
	}
	return orb.Bound{
		Min: minPoint,
		Max: orb.Point{minPoint.Lon() + g.cellSize, minPoint.Lat() + g.cellSize},
	}
}

// BorderDistance returns the distance in degrees between the point and one edge of the cell along the given axis.
func (g *Grid) BorderDistance(point orb.Point, cell common.Cell, axis Axis, edge Edge) float64 {
	bound := g.CellBound(cell)
	edgePoint := bound.Min
	if edge == EdgeFar {
		edgePoint = bound.Max
	}

	switch axis {
	case AxisLatitude:
		return math.Abs(point.Lat() - edgePoint.Lat())
	case AxisLongitude:
		return math.Abs(point.Lon() - edgePoint.Lon())
	}
	return math.Inf(1)
}
