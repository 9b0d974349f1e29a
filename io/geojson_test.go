package io

import (
	"bytes"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"netcov/coverage"
	"netcov/feature"
	"netcov/util"
	"testing"
)

func newResult(operator string, closest orb.Point) *coverage.Result {
	return &coverage.Result{
		Operator:   operator,
		N2G:        true,
		N4G:        true,
		Target:     orb.Point{2.3522, 48.8566},
		Closest:    closest,
		DistanceKm: 0.25,
		Record: &feature.Record{
			ID:         42,
			Location:   closest,
			X:          652000,
			Y:          6862000,
			Attributes: map[string]string{"height": "30"},
		},
	}
}

func TestWriteResultsAsGeoJson(t *testing.T) {
	// Arrange
	address := "1 Rue de Rivoli 75004 Paris"
	orange := newResult("Orange", orb.Point{2.35, 48.857})
	orange.ClosestLocation = &coverage.Location{Latitude: 48.857, Longitude: 2.35, Address: &address}
	sfr := newResult("SFR", orb.Point{2.36, 48.86})
	buffer := &bytes.Buffer{}

	// Act
	err := WriteResultsAsGeoJson([]*coverage.Result{orange, sfr}, buffer)

	// Assert
	util.AssertNil(t, err)

	featureCollection, err := geojson.UnmarshalFeatureCollection(buffer.Bytes())
	util.AssertNil(t, err)
	util.AssertEqual(t, 3, len(featureCollection.Features))

	target := featureCollection.Features[0]
	util.AssertEqual(t, orb.Point{2.3522, 48.8566}, target.Geometry)
	util.AssertEqual(t, RoleTarget, target.Properties.MustString("role"))

	site := featureCollection.Features[1]
	util.AssertEqual(t, orb.Point{2.35, 48.857}, site.Geometry)
	util.AssertEqual(t, RoleSite, site.Properties.MustString("role"))
	util.AssertEqual(t, "Orange", site.Properties.MustString("operator"))
	util.AssertEqual(t, true, site.Properties.MustBool("2G"))
	util.AssertEqual(t, false, site.Properties.MustBool("3G"))
	util.AssertEqual(t, true, site.Properties.MustBool("4G"))
	util.AssertEqual(t, 652000.0, site.Properties.MustFloat64("lambert93_x"))
	util.AssertEqual(t, 6862000.0, site.Properties.MustFloat64("lambert93_y"))
	util.AssertEqual(t, 0.25, site.Properties.MustFloat64("distance"))
	util.AssertEqual(t, 42, site.Properties.MustInt("site_id"))
	util.AssertEqual(t, "30", site.Properties.MustString("height"))
	util.AssertEqual(t, address, site.Properties.MustString("address"))

	util.AssertEqual(t, "SFR", featureCollection.Features[2].Properties.MustString("operator"))
	util.AssertNil(t, featureCollection.Features[2].Properties["address"])
}

func TestWriteResultsAsGeoJson_noResults(t *testing.T) {
	buffer := &bytes.Buffer{}

	err := WriteResultsAsGeoJson(nil, buffer)

	util.AssertNil(t, err)
	featureCollection, err := geojson.UnmarshalFeatureCollection(buffer.Bytes())
	util.AssertNil(t, err)
	util.AssertEqual(t, 0, len(featureCollection.Features))
}

func TestWriteResultsAsJson(t *testing.T) {
	// Arrange
	distance := 0.25
	result := newResult("Free", orb.Point{2.35, 48.857})
	result.Distance = &distance
	result.TargetLocation = &coverage.Location{Latitude: 48.8566, Longitude: 2.3522}
	buffer := &bytes.Buffer{}

	// Act
	err := WriteResultsAsJson([]*coverage.Result{result}, buffer)

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, `[{"operator":"Free","2G":true,"3G":false,"4G":true,"distance":0.25,"target_location":{"latitude":48.8566,"longitude":2.3522,"address":null}}]`+"\n", buffer.String())
}

func TestWriteResultsAsJson_empty(t *testing.T) {
	buffer := &bytes.Buffer{}

	err := WriteResultsAsJson(nil, buffer)

	util.AssertNil(t, err)
	util.AssertEqual(t, "[]\n", buffer.String())
}
