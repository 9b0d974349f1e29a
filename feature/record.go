package feature

import (
	"github.com/paulmach/orb"
)

// Coverage holds the network generations available at a site.
type Coverage struct {
	N2G bool
	N3G bool
	N4G bool
}

func (c Coverage) Has(network Network) bool {
	switch network {
	case Network2G:
		return c.N2G
	case Network3G:
		return c.N3G
	case Network4G:
		return c.N4G
	}
	return false
}

func (c *Coverage) Set(network Network, available bool) {
	switch network {
	case Network2G:
		c.N2G = available
	case Network3G:
		c.N3G = available
	case Network4G:
		c.N4G = available
	}
}

// Record is one geo-tagged data point of a dataset, e.g. a mobile antenna site. Records are not modified after they
// have been loaded.
type Record struct {
	// ID is the position of the record within its source (line number for CSV files, node ID for OSM data).
	ID int64

	// Location is the WGS84 position. Note that orb uses the (lon, lat) order.
	Location orb.Point

	// X and Y are the Lambert93 coordinates the location has been computed from. Both are 0 for sources that already
	// contain WGS84 data.
	X float64
	Y float64

	Coverage Coverage

	// Attributes are additional source specific values (e.g. OSM tags). They are passed through unchanged.
	Attributes map[string]string
}

func (r *Record) Lat() float64 {
	return r.Location.Lat()
}

func (r *Record) Lon() float64 {
	return r.Location.Lon()
}
