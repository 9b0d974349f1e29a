package index

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"math"
	"netcov/common"
	"netcov/feature"
	"netcov/util"
	"time"
)

// Dataset is an immutable set of records indexed by the grid cell they are located in. It's safe for concurrent use
// since nothing is modified after BuildDataset returned.
type Dataset struct {
	grid        *Grid
	cells       map[int][]*feature.Record // Cell ID to the records within that cell, in input order
	extent      common.CellExtent         // Smallest extent containing all non-empty cells
	recordCount int
}

// BuildDataset determines the bounding region of all records, creates a grid for it and assigns each record to the
// cell it's located in. The order of the records within a cell is the order of the input.
func BuildDataset(records []*feature.Record, cellSize float64) (*Dataset, error) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	buildStartTime := time.Now()

	region, err := boundingRegion(records)
	if err != nil {
		return nil, err
	}

	grid, err := NewGrid(region, cellSize)
	if err != nil {
		return nil, err
	}

	dataset := &Dataset{
		grid:        grid,
		cells:       map[int][]*feature.Record{},
		recordCount: len(records),
	}

	for i, record := range records {
		cell, err := grid.CellOf(record.Location)
		if err != nil {
			util.LogFatalBug("Record %d is not within its own bounding region: %+v", record.ID, err)
		}

		cellId := grid.CellId(cell)
		dataset.cells[cellId] = append(dataset.cells[cellId], record)

		if i == 0 {
			dataset.extent = common.CellExtent{cell, cell}
		} else {
			dataset.extent = dataset.extent.Expand(cell)
		}
	}

	extentRows, extentColumns := dataset.extent.Size()
	sigolo.Debugf("Built dataset with %d records in %d of %dx%d cells (cell size %f, occupied extent %dx%d cells) in %s", len(records), dataset.CellCount(), grid.RowCount(), grid.ColumnCount(), cellSize, extentRows, extentColumns, time.Since(buildStartTime))

	return dataset, nil
}

func boundingRegion(records []*feature.Record) (orb.Bound, error) {
	var region orb.Bound

	for i, record := range records {
		if !isValidLocation(record.Location) {
			return orb.Bound{}, errors.Wrapf(ErrInvalidRecord, "record %d has invalid location (lat=%f, lon=%f)", record.ID, record.Lat(), record.Lon())
		}

		if i == 0 {
			region = record.Location.Bound()
		} else {
			region = region.Extend(record.Location)
		}
	}

	return region, nil
}

func isValidLocation(location orb.Point) bool {
	lat := location.Lat()
	lon := location.Lon()
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func (d *Dataset) Grid() *Grid { return d.grid }

func (d *Dataset) RecordCount() int { return d.recordCount }

// CellCount returns the number of non-empty cells.
func (d *Dataset) CellCount() int { return len(d.cells) }

// Records returns the records of the given cell. Cells outside the grid or without records return nil. The returned
// slice must not be modified.
func (d *Dataset) Records(cell common.Cell) []*feature.Record {
	if !d.grid.Contains(cell) || !d.extent.Contains(cell) {
		return nil
	}
	return d.cells[d.grid.CellId(cell)]
}
