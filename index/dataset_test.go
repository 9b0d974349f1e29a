package index

import (
	"github.com/paulmach/orb"
	"math"
	"netcov/common"
	"netcov/feature"
	"netcov/util"
	"testing"
)

func newRecord(id int64, lat float64, lon float64) *feature.Record {
	return &feature.Record{
		ID:       id,
		Location: orb.Point{lon, lat},
	}
}

func TestBuildDataset_assignsRecordsToCells(t *testing.T) {
	// Arrange
	records := []*feature.Record{
		newRecord(1, 10.0, 5.0),
		newRecord(2, 10.5, 5.5),
		newRecord(3, 12.2, 6.1),
		newRecord(4, 10.2, 5.9),
		newRecord(5, 19.9, 9.9),
	}

	// Act
	dataset, err := BuildDataset(records, 1.0)

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, 5, dataset.RecordCount())
	util.AssertEqual(t, 3, dataset.CellCount())

	grid := dataset.Grid()
	util.AssertEqual(t, orb.Bound{Min: orb.Point{5.0, 10.0}, Max: orb.Point{9.9, 19.9}}, grid.Region())
	util.AssertEqual(t, 10, grid.RowCount())
	util.AssertEqual(t, 5, grid.ColumnCount())

	// Input order is kept within a cell
	util.AssertEqual(t, []*feature.Record{records[0], records[1], records[3]}, dataset.Records(common.Cell{0, 0}))
	util.AssertEqual(t, []*feature.Record{records[2]}, dataset.Records(common.Cell{2, 1}))
	util.AssertEqual(t, []*feature.Record{records[4]}, dataset.Records(common.Cell{9, 4}))

	util.AssertEqual(t, common.CellExtent{common.Cell{0, 0}, common.Cell{9, 4}}, dataset.extent)
}

func TestBuildDataset_cellSizeTooSmall(t *testing.T) {
	records := []*feature.Record{
		newRecord(1, 40.0, -5.0),
		newRecord(2, 50.0, 5.0),
	}

	dataset, err := BuildDataset(records, 1e-10)

	util.AssertNil(t, dataset)
	util.AssertMatch(t, "too small", err.Error())
}

func TestBuildDataset_everyRecordIsInExactlyOneCell(t *testing.T) {
	var records []*feature.Record
	for i := 0; i < 200; i++ {
		records = append(records, newRecord(int64(i), 42.0+float64(i%20)*0.37, -4.5+float64(i/20)*0.91))
	}

	dataset, err := BuildDataset(records, 0.5)
	util.AssertNil(t, err)

	seen := map[int64]int{}
	for row := 0; row < dataset.Grid().RowCount(); row++ {
		for column := 0; column < dataset.Grid().ColumnCount(); column++ {
			for _, record := range dataset.Records(common.Cell{row, column}) {
				seen[record.ID]++
			}
		}
	}

	util.AssertEqual(t, len(records), len(seen))
	for _, count := range seen {
		util.AssertEqual(t, 1, count)
	}
}

func TestBuildDataset_emptyInput(t *testing.T) {
	dataset, err := BuildDataset([]*feature.Record{}, 0.5)

	util.AssertNil(t, dataset)
	util.AssertErrorIs(t, ErrEmptyInput, err)
}

func TestBuildDataset_invalidRecord(t *testing.T) {
	records := []*feature.Record{
		newRecord(1, 48.8566, 2.3522),
		newRecord(2, math.NaN(), 2.3522),
	}

	dataset, err := BuildDataset(records, 0.5)

	util.AssertNil(t, dataset)
	util.AssertErrorIs(t, ErrInvalidRecord, err)
}

func TestBuildDataset_recordOutsideWgs84Range(t *testing.T) {
	records := []*feature.Record{
		newRecord(1, 6862035, 652469), // Lambert93 values that have not been converted
	}

	_, err := BuildDataset(records, 0.5)

	util.AssertErrorIs(t, ErrInvalidRecord, err)
}

func TestBuildDataset_invalidCellSize(t *testing.T) {
	dataset, err := BuildDataset([]*feature.Record{newRecord(1, 48.8566, 2.3522)}, 0)

	util.AssertNil(t, dataset)
	util.AssertNotNil(t, err)
}

func TestDataset_recordsOfCellsOutsideGrid(t *testing.T) {
	dataset, err := BuildDataset([]*feature.Record{newRecord(1, 48.8566, 2.3522)}, 0.5)
	util.AssertNil(t, err)

	util.AssertEqual(t, 1, len(dataset.Records(common.Cell{0, 0})))
	util.AssertEqual(t, 0, len(dataset.Records(common.Cell{-1, 0})))
	util.AssertEqual(t, 0, len(dataset.Records(common.Cell{0, -1})))
	util.AssertEqual(t, 0, len(dataset.Records(common.Cell{1, 0})))
	util.AssertEqual(t, 0, len(dataset.Records(common.Cell{0, 1})))
}
