package index

import (
	"github.com/paulmach/orb"
	"netcov/feature"
	"netcov/util"
	"testing"
)

func buildDataset(t *testing.T, cellSize float64, records ...*feature.Record) *Dataset {
	dataset, err := BuildDataset(records, cellSize)
	util.AssertNil(t, err)
	return dataset
}

func recordIds(records []*feature.Record) []int64 {
	ids := []int64{}
	for _, record := range records {
		ids = append(ids, record.ID)
	}
	return ids
}

func TestNewNeighborSearch(t *testing.T) {
	search, err := NewNeighborSearch("ring", 0.01, 0.01)
	util.AssertNil(t, err)
	util.AssertEqual(t, &RingSearch{Radius: 0.01}, search)

	search, err = NewNeighborSearch("border", 0.01, 0.02)
	util.AssertNil(t, err)
	util.AssertEqual(t, &BorderSearch{Tolerance: 0.02}, search)

	_, err = NewNeighborSearch("ring", 0, 0.01)
	util.AssertNotNil(t, err)

	_, err = NewNeighborSearch("foobar", 0.01, 0.01)
	util.AssertNotNil(t, err)
}

/*
Cells of the border search dataset (1° cells, rows are latitude):

	row 3 |   .   .   .   6
	row 2 |   .   3   5   .
	row 1 |   .   2   4   .
	row 0 |   1   .   .   .
	        col0 col1 col2 col3
*/
func newBorderSearchDataset(t *testing.T) *Dataset {
	return buildDataset(t, 1.0,
		newRecord(1, 10.0, 5.0),
		newRecord(2, 11.5, 6.5),
		newRecord(3, 12.5, 6.5),
		newRecord(4, 11.5, 7.5),
		newRecord(5, 12.5, 7.5),
		newRecord(6, 13.9, 8.9),
	)
}

func TestBorderSearch_pointInCellCenter(t *testing.T) {
	// Arrange
	dataset := newBorderSearchDataset(t)
	search := &BorderSearch{Tolerance: 0.01}

	// Act
	candidates := search.Neighbors(orb.Point{6.5, 11.5}, dataset)

	// Assert
	util.AssertEqual(t, []int64{2}, recordIds(candidates))
}

func TestBorderSearch_pointNearUpperAndRightBorder(t *testing.T) {
	dataset := newBorderSearchDataset(t)
	search := &BorderSearch{Tolerance: 0.01}

	candidates := search.Neighbors(orb.Point{6.995, 11.995}, dataset)

	// The diagonal cell with record 5 is not used
	util.AssertEqual(t, []int64{2, 3, 4}, recordIds(candidates))
}

func TestBorderSearch_pointNearLowerBorderWithEmptyNeighbor(t *testing.T) {
	dataset := newBorderSearchDataset(t)
	search := &BorderSearch{Tolerance: 0.01}

	candidates := search.Neighbors(orb.Point{6.5, 11.005}, dataset)

	util.AssertEqual(t, []int64{2}, recordIds(candidates))
}

func TestBorderSearch_pointOutsideGridNearBorder(t *testing.T) {
	dataset := newBorderSearchDataset(t)
	search := &BorderSearch{Tolerance: 0.01}

	// The point is in row -1, the adjacent row 0 contains record 1
	candidates := search.Neighbors(orb.Point{5.2, 9.995}, dataset)

	util.AssertEqual(t, []int64{1}, recordIds(candidates))
}

func TestBorderSearch_pointFarOutsideGrid(t *testing.T) {
	dataset := newBorderSearchDataset(t)
	search := &BorderSearch{Tolerance: 0.01}

	candidates := search.Neighbors(orb.Point{-20, -30}, dataset)

	util.AssertNotNil(t, candidates)
	util.AssertEqual(t, 0, len(candidates))
}

func TestBorderSearch_atMostOneNeighborPerAxis(t *testing.T) {
	dataset := newBorderSearchDataset(t)
	// Tolerance larger than half a cell: both edges of both axes are "near"
	search := &BorderSearch{Tolerance: 0.8}

	point := orb.Point{6.4, 11.6}

	cells := search.targetCells(point, primaryCell(point, dataset.Grid()), dataset.Grid())

	util.AssertEqual(t, 3, len(cells))
}

/*
Records of the ring search dataset (1° cells):

	row 1 |   .   7,8
	row 0 | 1,2   .
	        col0 col1
*/
func newRingSearchDataset(t *testing.T) *Dataset {
	return buildDataset(t, 1.0,
		newRecord(1, 10.0, 5.0),
		newRecord(2, 10.3, 5.3),
		newRecord(7, 11.1, 6.1),
		newRecord(8, 11.9, 6.9),
	)
}

func TestRingSearch_recordWithinInitialRadius(t *testing.T) {
	// Arrange
	dataset := newRingSearchDataset(t)
	search := &RingSearch{Radius: 0.1}

	// Act
	candidates := search.Neighbors(orb.Point{5.05, 10.05}, dataset)

	// Assert
	util.AssertEqual(t, []int64{1}, recordIds(candidates))
}

func TestRingSearch_radiusIsDoubled(t *testing.T) {
	dataset := newRingSearchDataset(t)
	search := &RingSearch{Radius: 0.1}

	// Record 2 is 0.3° away on both axes and found with radius 0.4
	candidates := search.Neighbors(orb.Point{5.6, 10.6}, dataset)

	util.AssertEqual(t, []int64{2}, recordIds(candidates))
}

func TestRingSearch_usesAdjacentCells(t *testing.T) {
	dataset := newRingSearchDataset(t)
	search := &RingSearch{Radius: 0.1}

	// Own cell (0, 1) is empty, record 7 comes from the cell above, record 2 from the cell to the left
	candidates := search.Neighbors(orb.Point{6.05, 10.95}, dataset)

	util.AssertEqual(t, []int64{7, 2}, recordIds(candidates))
}

func TestRingSearch_nothingWithinMaximumRadius(t *testing.T) {
	dataset := buildDataset(t, 1.0,
		newRecord(1, 10.0, 5.0),
		newRecord(8, 11.9, 6.9),
	)
	search := &RingSearch{Radius: 0.1}

	// Record 1 is 0.95° away on both axes, the largest radius tried is 0.8. Record 8 is in a diagonal cell.
	candidates := search.Neighbors(orb.Point{5.95, 10.95}, dataset)

	util.AssertNotNil(t, candidates)
	util.AssertEqual(t, 0, len(candidates))
}

func TestRingSearch_initialRadiusLargerThanCellSize(t *testing.T) {
	dataset := newRingSearchDataset(t)
	search := &RingSearch{Radius: 2}

	candidates := search.Neighbors(orb.Point{5.05, 10.05}, dataset)

	// Records 7 and 8 are in the diagonal cell
	util.AssertEqual(t, []int64{1, 2}, recordIds(candidates))
}
