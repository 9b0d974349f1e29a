package importing

import (
	"context"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
	"io"
	"netcov/feature"
	"os"
	"strings"
	"time"
)

// Tags of mobile network sites in OSM. See https://wiki.openstreetmap.org/wiki/Tag:tower:type%3Dcommunication
var osmCoverageTags = map[feature.Network]string{
	feature.Network2G: "communication:gsm",
	feature.Network3G: "communication:umts",
	feature.Network4G: "communication:lte",
}

// LoadOsm reads the communication sites of the given operator from an .osm or .osm.pbf file.
func LoadOsm(inputFile string, operator feature.Operator) ([]*feature.Record, error) {
	if !strings.HasSuffix(inputFile, ".osm") && !strings.HasSuffix(inputFile, ".pbf") {
		return nil, errors.Errorf("Input file %s must be an .osm or .pbf file", inputFile)
	}

	file, err := os.Open(inputFile)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to open OSM input file %s", inputFile)
	}
	defer file.Close()

	sigolo.Infof("Start reading %s sites from OSM file %s", operator, inputFile)
	readStartTime := time.Now()

	var scanner osm.Scanner
	if strings.HasSuffix(inputFile, ".osm") {
		scanner = osmxml.New(context.Background(), file)
	} else {
		pbfScanner := osmpbf.New(context.Background(), file, 1)
		pbfScanner.SkipWays = true
		pbfScanner.SkipRelations = true
		scanner = pbfScanner
	}

	records, err := ReadOsm(scanner, operator)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to read OSM file %s", inputFile)
	}

	sigolo.Infof("Read %d sites of %s in %s", len(records), operator, time.Since(readStartTime))
	return records, nil
}

// ReadOsm turns all communication site nodes of the operator into records. The scanner is closed afterwards.
func ReadOsm(scanner osm.Scanner, operator feature.Operator) ([]*feature.Record, error) {
	var records []*feature.Record

	for scanner.Scan() {
		node, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if !isCommunicationSite(node.Tags) || !isOperatedBy(node.Tags, operator) {
			continue
		}

		records = append(records, nodeToRecord(node))
	}

	scanErr := scanner.Err()
	closeErr := scanner.Close()
	if scanErr != nil && scanErr != io.EOF {
		return nil, errors.Wrap(scanErr, "Error while scanning OSM data")
	}
	if closeErr != nil {
		return nil, errors.Wrap(closeErr, "Unable to close OSM scanner")
	}

	return records, nil
}

func isCommunicationSite(tags osm.Tags) bool {
	if tags.Find("tower:type") == "communication" {
		return true
	}
	manMade := tags.Find("man_made")
	return (manMade == "mast" || manMade == "tower") && tags.Find("communication:mobile_phone") == "yes"
}

func isOperatedBy(tags osm.Tags, operator feature.Operator) bool {
	// Sites shared by several operators list them separated by ";"
	for _, name := range strings.Split(tags.Find("operator"), ";") {
		parsedOperator, err := feature.ParseOperatorName(name)
		if err == nil && parsedOperator == operator {
			return true
		}
	}
	return false
}

func nodeToRecord(node *osm.Node) *feature.Record {
	coverage := feature.Coverage{}
	for network, key := range osmCoverageTags {
		coverage.Set(network, node.Tags.Find(key) == "yes")
	}

	return &feature.Record{
		ID:         int64(node.ID),
		Location:   orb.Point{node.Lon, node.Lat},
		Coverage:   coverage,
		Attributes: node.Tags.Map(),
	}
}
