package index

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"math"
	"netcov/common"
	"netcov/feature"
)

const (
	SearchStrategyRing   = "ring"
	SearchStrategyBorder = "border"
)

// NeighborSearch collects candidate records around a point. The candidates are not ordered by distance. Searches are
// locality heuristics: they only look at the cell of the point and some adjacent cells, so the globally closest record
// is not guaranteed to be among the candidates when the cell size or search radius doesn't fit the data density.
type NeighborSearch interface {
	Name() string

	// Neighbors returns the candidates for the given point. It returns an empty (non-nil) slice when nothing has been
	// found.
	Neighbors(point orb.Point, dataset *Dataset) []*feature.Record
}

// NewNeighborSearch creates the search for the given strategy name. The radius is only used by the ring strategy,
// the tolerance only by the border strategy.
func NewNeighborSearch(strategy string, radius float64, tolerance float64) (NeighborSearch, error) {
	switch strategy {
	case SearchStrategyRing:
		if !(radius > 0) {
			return nil, errors.Errorf("Search radius must be positive but was %f", radius)
		}
		return &RingSearch{Radius: radius}, nil
	case SearchStrategyBorder:
		if tolerance < 0 {
			return nil, errors.Errorf("Border tolerance must not be negative but was %f", tolerance)
		}
		return &BorderSearch{Tolerance: tolerance}, nil
	}
	return nil, errors.Errorf("Unknown search strategy '%s'", strategy)
}

// primaryCell returns the cell of the point. A point outside the grid is no error for searches, its cell simply
// doesn't contain records but the adjacent cells might.
func primaryCell(point orb.Point, grid *Grid) common.Cell {
	cell, err := grid.CellOf(point)
	if err != nil {
		sigolo.Debugf("Primary cell is empty: %s", err.Error())
	}
	return cell
}

// BorderSearch uses the cell of the point. When the point is closer than Tolerance degrees to an edge of its cell, the
// cell across that edge is used as well. This happens at most once per axis, so at most three cells are searched and
// diagonal cells never are.
type BorderSearch struct {
	Tolerance float64
}

func (s *BorderSearch) Name() string {
	return SearchStrategyBorder
}

func (s *BorderSearch) Neighbors(point orb.Point, dataset *Dataset) []*feature.Record {
	cell := primaryCell(point, dataset.Grid())

	candidates := []*feature.Record{}
	for _, targetCell := range s.targetCells(point, cell, dataset.Grid()) {
		records := dataset.Records(targetCell)
		sigolo.Debugf("Added %d records from cell %s", len(records), targetCell)
		candidates = append(candidates, records...)
	}

	sigolo.Debugf("Border search found %d candidates for point (lat=%f, lon=%f)", len(candidates), point.Lat(), point.Lon())
	return candidates
}

func (s *BorderSearch) targetCells(point orb.Point, cell common.Cell, grid *Grid) []common.Cell {
	cells := []common.Cell{cell}

	if adjacentCell, ok := s.adjacentCell(point, cell, grid, AxisLatitude, cell.Down(), cell.Up()); ok {
		cells = append(cells, adjacentCell)
	}
	if adjacentCell, ok := s.adjacentCell(point, cell, grid, AxisLongitude, cell.Left(), cell.Right()); ok {
		cells = append(cells, adjacentCell)
	}

	return cells
}

// adjacentCell returns the neighbor across the closer edge of the given axis, if the point is within the tolerance of
// that edge.
func (s *BorderSearch) adjacentCell(point orb.Point, cell common.Cell, grid *Grid, axis Axis, nearCell common.Cell, farCell common.Cell) (common.Cell, bool) {
	nearDistance := grid.BorderDistance(point, cell, axis, EdgeNear)
	farDistance := grid.BorderDistance(point, cell, axis, EdgeFar)

	if nearDistance <= farDistance && nearDistance < s.Tolerance {
		return nearCell, true
	}
	if farDistance < nearDistance && farDistance < s.Tolerance {
		return farCell, true
	}
	return common.Cell{}, false
}

// RingSearch looks at the cell of the point and its four axis-adjacent cells. Within each cell only records inside a
// box of +/- radius degrees around the point are used. When a cell has no such record, the radius is doubled until it
// exceeds the cell size. The box is a cheap prefilter, not a circle.
type RingSearch struct {
	Radius float64
}

func (s *RingSearch) Name() string {
	return SearchStrategyRing
}

func (s *RingSearch) Neighbors(point orb.Point, dataset *Dataset) []*feature.Record {
	cell := primaryCell(point, dataset.Grid())
	maxRadius := dataset.Grid().CellSize()

	candidates := []*feature.Record{}
	for _, targetCell := range append([]common.Cell{cell}, cell.AxisNeighbors()...) {
		records := dataset.Records(targetCell)
		if len(records) == 0 {
			continue
		}

		matches, radius := s.searchCell(point, records, maxRadius)
		sigolo.Debugf("Added %d of %d records from cell %s with radius %f", len(matches), len(records), targetCell, radius)
		candidates = append(candidates, matches...)
	}

	sigolo.Debugf("Ring search found %d candidates for point (lat=%f, lon=%f)", len(candidates), point.Lat(), point.Lon())
	return candidates
}

// searchCell returns the records within the box around the point and the radius used to find them. The initial radius
// is always tried, even when it's already larger than maxRadius.
func (s *RingSearch) searchCell(point orb.Point, records []*feature.Record, maxRadius float64) ([]*feature.Record, float64) {
	radius := s.Radius
	for {
		matches := recordsWithinBox(point, records, radius)
		if len(matches) > 0 || radius*2 > maxRadius {
			return matches, radius
		}
		radius *= 2
	}
}

func recordsWithinBox(point orb.Point, records []*feature.Record, radius float64) []*feature.Record {
	var matches []*feature.Record
	for _, record := range records {
		if math.Abs(point.Lat()-record.Lat()) < radius && math.Abs(point.Lon()-record.Lon()) < radius {
			matches = append(matches, record)
		}
	}
	return matches
}
