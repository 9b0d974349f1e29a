package io

import (
	"encoding/json"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"io"
	"netcov/coverage"
	"netcov/feature"
	"os"
)

const (
	FormatJson    = "json"
	FormatGeoJson = "geojson"
)

const (
	RoleTarget = "target"
	RoleSite   = "site"
)

// WriteResultsAsGeoJson writes the closest site of each result as point feature. The target point of the lookup is
// added as separate feature, it's the same for all results.
func WriteResultsAsGeoJson(results []*coverage.Result, writer io.Writer) error {
	sigolo.Debugf("Write %d results to GeoJSON", len(results))

	featureCollection := geojson.NewFeatureCollection()
	for i, result := range results {
		if i == 0 {
			targetFeature := geojson.NewFeature(result.Target)
			targetFeature.Properties["role"] = RoleTarget
			if result.TargetLocation != nil && result.TargetLocation.Address != nil {
				targetFeature.Properties["address"] = *result.TargetLocation.Address
			}
			featureCollection.Append(targetFeature)
		}

		featureCollection.Append(resultToFeature(result))
	}

	geojsonBytes, err := featureCollection.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Unable to serialize GeoJSON")
	}

	_, err = writer.Write(geojsonBytes)
	return errors.Wrap(err, "Unable to write GeoJSON")
}

func resultToFeature(result *coverage.Result) *geojson.Feature {
	siteFeature := geojson.NewFeature(result.Closest)

	for key, value := range result.Record.Attributes {
		siteFeature.Properties[key] = value
	}

	siteFeature.Properties["role"] = RoleSite
	siteFeature.Properties["site_id"] = result.Record.ID
	siteFeature.Properties["operator"] = result.Operator
	for _, network := range feature.Networks {
		siteFeature.Properties[network.String()] = result.Coverage().Has(network)
	}
	if result.Record.X != 0 || result.Record.Y != 0 {
		siteFeature.Properties["lambert93_x"] = result.Record.X
		siteFeature.Properties["lambert93_y"] = result.Record.Y
	}
	siteFeature.Properties["distance"] = result.DistanceKm
	if result.ClosestLocation != nil && result.ClosestLocation.Address != nil {
		siteFeature.Properties["address"] = *result.ClosestLocation.Address
	}

	return siteFeature
}

// WriteResultsAsJson writes the results as JSON array. An empty result list is written as "[]".
func WriteResultsAsJson(results []*coverage.Result, writer io.Writer) error {
	if results == nil {
		results = []*coverage.Result{}
	}

	err := json.NewEncoder(writer).Encode(results)
	return errors.Wrap(err, "Unable to write JSON")
}

// WriteResults writes the results in the given format ("json" or "geojson") to stdout.
func WriteResults(results []*coverage.Result, format string) error {
	switch format {
	case FormatJson, "":
		return WriteResultsAsJson(results, os.Stdout)
	case FormatGeoJson:
		return WriteResultsAsGeoJson(results, os.Stdout)
	}
	return errors.Errorf("Unknown output format '%s'", format)
}
