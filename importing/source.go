package importing

import (
	"github.com/pkg/errors"
	"netcov/feature"
	"path"
)

const (
	SourceCsv = "csv"
	SourceOsm = "osm"
)

// Source provides the records of one operator.
type Source interface {
	Records(operator feature.Operator) ([]*feature.Record, error)
}

// CsvSource reads the converted site list within the data folder.
type CsvSource struct {
	DataFolder string
}

func (s *CsvSource) Records(operator feature.Operator) ([]*feature.Record, error) {
	return LoadConvertedCsv(path.Join(s.DataFolder, ConvertedFileName), operator)
}

// OsmSource reads communication sites from an OSM extract.
type OsmSource struct {
	File string
}

func (s *OsmSource) Records(operator feature.Operator) ([]*feature.Record, error) {
	return LoadOsm(s.File, operator)
}

func NewSource(kind string, dataFolder string, osmFile string) (Source, error) {
	switch kind {
	case SourceCsv, "":
		return &CsvSource{DataFolder: dataFolder}, nil
	case SourceOsm:
		if osmFile == "" {
			return nil, errors.New("OSM source requires an OSM file")
		}
		return &OsmSource{File: osmFile}, nil
	}
	return nil, errors.Errorf("Unknown dataset source '%s'", kind)
}
