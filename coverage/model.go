package coverage

import (
	"github.com/paulmach/orb"
	"netcov/feature"
	"strings"
)

// Address is a postal address in France. Empty parts are allowed.
type Address struct {
	StreetNumber string
	StreetName   string
	City         string
	PostalCode   string
}

// FullAddress joins all non-empty parts separated by a space, which is the query format of the geocoder.
func (a Address) FullAddress() string {
	var parts []string
	for _, part := range []string{a.StreetNumber, a.StreetName, a.City, a.PostalCode} {
		part = strings.TrimSpace(part)
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

func (a Address) IsEmpty() bool {
	return a.FullAddress() == ""
}

// Location is a position with its address. The address is nil when it couldn't be determined.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   *string `json:"address"`
}

func newLocation(point orb.Point, address string) *Location {
	location := &Location{
		Latitude:  point.Lat(),
		Longitude: point.Lon(),
	}
	if address != "" {
		location.Address = &address
	}
	return location
}

// Result is the network coverage of one operator. The distance and locations are only set for detailed results.
type Result struct {
	Operator string `json:"operator"`
	N2G      bool   `json:"2G"`
	N3G      bool   `json:"3G"`
	N4G      bool   `json:"4G"`

	Distance        *float64  `json:"distance,omitempty"`
	TargetLocation  *Location `json:"target_location,omitempty"`
	ClosestLocation *Location `json:"closest_location,omitempty"`

	// Raw values of the lookup, e.g. for GeoJSON output.
	Target     orb.Point       `json:"-"`
	Closest    orb.Point       `json:"-"`
	DistanceKm float64         `json:"-"`
	Record     *feature.Record `json:"-"`
}

func (r *Result) Coverage() feature.Coverage {
	return feature.Coverage{N2G: r.N2G, N3G: r.N3G, N4G: r.N4G}
}
