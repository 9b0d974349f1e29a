package importing

import (
	"encoding/csv"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"io"
	"math"
	"netcov/reproject"
	"os"
	"path"
	"strconv"
	"time"
)

// coordinatePrecision is the number of decimals kept for converted coordinates, which is roughly 10m.
const coordinatePrecision = 4

// Preprocess converts the raw ARCEP site list (semicolon separated, Lambert93 coordinates) into the converted CSV file
// within the data folder. Rows with missing values or unknown operators are dropped.
func Preprocess(inputFile string, dataFolder string) error {
	if inputFile == "" {
		return errors.New("No input file given")
	}

	sigolo.Infof("Start preprocessing of file %s", inputFile)
	preprocessStartTime := time.Now()

	transformer, err := reproject.NewLambert93ToWgs84()
	if err != nil {
		return err
	}

	input, err := os.Open(inputFile)
	if err != nil {
		return errors.Wrapf(err, "Unable to open input file %s", inputFile)
	}
	defer input.Close()

	err = os.MkdirAll(dataFolder, os.ModePerm)
	if err != nil {
		return errors.Wrapf(err, "Unable to create data folder %s", dataFolder)
	}

	outputFile := path.Join(dataFolder, ConvertedFileName)
	output, err := os.Create(outputFile)
	if err != nil {
		return errors.Wrapf(err, "Unable to create output file %s", outputFile)
	}
	defer func() {
		closeErr := output.Close()
		if closeErr != nil {
			sigolo.Errorf("Unable to close output file %s: %+v", outputFile, closeErr)
		}
	}()

	written, dropped, err := ConvertSiteList(input, output, transformer)
	if err != nil {
		return errors.Wrapf(err, "Unable to convert site list %s", inputFile)
	}

	sigolo.Infof("Wrote %d sites to %s, dropped %d incomplete rows, took %s", written, outputFile, dropped, time.Since(preprocessStartTime))
	return nil
}

// ConvertSiteList reads the raw site list, adds the WGS84 coordinates and writes the converted CSV. It returns the
// number of written and dropped rows.
func ConvertSiteList(reader io.Reader, writer io.Writer, transformer *reproject.Transformer) (int, int, error) {
	csvReader := csv.NewReader(reader)
	csvReader.Comma = ';'
	csvReader.FieldsPerRecord = -1

	headerRow, err := csvReader.Read()
	if err != nil {
		return 0, 0, errors.Wrap(err, "Unable to read CSV header")
	}
	header, err := newCsvHeader(headerRow, ColumnOperator, ColumnX, ColumnY, "2G", "3G", "4G")
	if err != nil {
		return 0, 0, err
	}

	csvWriter := csv.NewWriter(writer)
	err = csvWriter.Write(convertedHeader)
	if err != nil {
		return 0, 0, errors.Wrap(err, "Unable to write CSV header")
	}

	written := 0
	dropped := 0
	line := 1
	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return written, dropped, errors.Wrapf(err, "Unable to read CSV line %d", line)
		}

		outputRow, ok := convertRow(header, row, transformer)
		if !ok {
			sigolo.Tracef("Drop incomplete or invalid line %d: %v", line, row)
			dropped++
			continue
		}

		err = csvWriter.Write(outputRow)
		if err != nil {
			return written, dropped, errors.Wrapf(err, "Unable to write converted line %d", line)
		}
		written++
	}

	csvWriter.Flush()
	return written, dropped, errors.Wrap(csvWriter.Error(), "Unable to flush converted CSV")
}

// convertRow returns the output row for the given raw row or false if the row is incomplete or can't be converted.
func convertRow(header csvHeader, row []string, transformer *reproject.Transformer) ([]string, bool) {
	for _, column := range []string{ColumnOperator, ColumnX, ColumnY, "2G", "3G", "4G"} {
		if header.value(row, column) == "" {
			return nil, false
		}
	}

	_, err := header.operator(row)
	if err != nil {
		return nil, false
	}

	x, err := header.float(row, ColumnX)
	if err != nil {
		return nil, false
	}
	y, err := header.float(row, ColumnY)
	if err != nil {
		return nil, false
	}

	point, err := transformer.ToWgs84(x, y)
	if err != nil {
		sigolo.Debugf("Unable to convert coordinate: %+v", err)
		return nil, false
	}

	return []string{
		header.value(row, ColumnOperator),
		header.value(row, ColumnX),
		header.value(row, ColumnY),
		header.value(row, "2G"),
		header.value(row, "3G"),
		header.value(row, "4G"),
		formatCoordinate(point.Lat()),
		formatCoordinate(point.Lon()),
	}, true
}

func formatCoordinate(value float64) string {
	factor := math.Pow(10, coordinatePrecision)
	return strconv.FormatFloat(math.Round(value*factor)/factor, 'f', -1, 64)
}
