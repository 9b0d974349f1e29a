package importing

import (
	"encoding/csv"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"io"
	"netcov/feature"
	"os"
	"strconv"
	"strings"
)

const (
	ColumnOperator  = "Operateur"
	ColumnX         = "x"
	ColumnY         = "y"
	ColumnLatitude  = "latitude"
	ColumnLongitude = "longitude"
)

// ConvertedFileName is the name of the CSV file containing the site list with WGS84 coordinates.
const ConvertedFileName = "network_data_converted.csv"

var convertedHeader = []string{ColumnOperator, ColumnX, ColumnY, "2G", "3G", "4G", ColumnLatitude, ColumnLongitude}

// csvHeader maps column names to their position.
type csvHeader map[string]int

func newCsvHeader(columns []string, requiredColumns ...string) (csvHeader, error) {
	header := csvHeader{}
	for i, column := range columns {
		// Files written by spreadsheet tools often start with a BOM
		header[strings.TrimPrefix(strings.TrimSpace(column), "\ufeff")] = i
	}

	for _, column := range requiredColumns {
		if _, ok := header[column]; !ok {
			return nil, errors.Errorf("Missing column '%s' in CSV header %v", column, columns)
		}
	}

	return header, nil
}

func (h csvHeader) value(row []string, column string) string {
	i, ok := h[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (h csvHeader) float(row []string, column string) (float64, error) {
	return strconv.ParseFloat(h.value(row, column), 64)
}

func (h csvHeader) operator(row []string) (feature.Operator, error) {
	code, err := strconv.Atoi(h.value(row, ColumnOperator))
	if err != nil {
		return 0, errors.Wrap(err, "Invalid operator code")
	}
	return feature.ParseOperatorCode(code)
}

// coverage reads the 2G/3G/4G columns. Values are "1"/"0" or "True"/"False".
func (h csvHeader) coverage(row []string) (feature.Coverage, error) {
	coverage := feature.Coverage{}
	for _, network := range feature.Networks {
		available, err := strconv.ParseBool(h.value(row, network.String()))
		if err != nil {
			return coverage, errors.Wrapf(err, "Invalid %s value", network)
		}
		coverage.Set(network, available)
	}
	return coverage, nil
}

// LoadConvertedCsv reads the records of one operator from the converted site list file.
func LoadConvertedCsv(filename string, operator feature.Operator) ([]*feature.Record, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to open CSV file %s", filename)
	}
	defer file.Close()

	records, err := ReadConvertedCsv(file, operator)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to read CSV file %s", filename)
	}

	sigolo.Debugf("Read %d records of operator %s from %s", len(records), operator, filename)
	return records, nil
}

// ReadConvertedCsv reads all rows of the given operator. The ID of a record is its line number.
func ReadConvertedCsv(reader io.Reader, operator feature.Operator) ([]*feature.Record, error) {
	csvReader := csv.NewReader(reader)
	csvReader.ReuseRecord = true

	headerRow, err := csvReader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "Unable to read CSV header")
	}

	header, err := newCsvHeader(headerRow, ColumnOperator, ColumnLatitude, ColumnLongitude, "2G", "3G", "4G")
	if err != nil {
		return nil, err
	}

	var records []*feature.Record
	line := int64(1)
	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrapf(err, "Unable to read CSV line %d", line)
		}

		rowOperator, err := header.operator(row)
		if err != nil {
			return nil, errors.Wrapf(err, "Invalid CSV line %d", line)
		}
		if rowOperator != operator {
			continue
		}

		record, err := header.toRecord(row, line)
		if err != nil {
			return nil, errors.Wrapf(err, "Invalid CSV line %d", line)
		}
		records = append(records, record)
	}

	return records, nil
}

func (h csvHeader) toRecord(row []string, line int64) (*feature.Record, error) {
	lat, err := h.float(row, ColumnLatitude)
	if err != nil {
		return nil, errors.Wrap(err, "Invalid latitude")
	}
	lon, err := h.float(row, ColumnLongitude)
	if err != nil {
		return nil, errors.Wrap(err, "Invalid longitude")
	}
	coverage, err := h.coverage(row)
	if err != nil {
		return nil, err
	}

	record := &feature.Record{
		ID:       line,
		Location: orb.Point{lon, lat},
		Coverage: coverage,
	}

	// The Lambert93 coordinates are optional
	if x, err := h.float(row, ColumnX); err == nil {
		record.X = x
	}
	if y, err := h.float(row, ColumnY); err == nil {
		record.Y = y
	}

	return record, nil
}
