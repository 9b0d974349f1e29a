package index

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"netcov/feature"
)

// Result is the closest record found for a point.
type Result struct {
	Record     *feature.Record
	Point      orb.Point // Location of the record
	DistanceKm float64
}

// Distance returns the great-circle distance in kilometers.
func Distance(a orb.Point, b orb.Point) float64 {
	return geo.DistanceHaversine(a, b) / 1000
}

// Closest returns the candidate with the smallest distance to the point. On equal distances the first candidate wins.
// ErrNotFound is returned when there are no candidates.
func Closest(point orb.Point, candidates []*feature.Record) (*Result, error) {
	if len(candidates) == 0 {
		return nil, ErrNotFound
	}

	var best *Result
	for _, candidate := range candidates {
		distance := Distance(point, candidate.Location)

		if sigolo.ShouldLogTrace() {
			sigolo.Tracef("Distance between (lat=%f, lon=%f) and record %d: %f km", point.Lat(), point.Lon(), candidate.ID, distance)
		}

		if best == nil || distance < best.DistanceKm {
			best = &Result{
				Record:     candidate,
				Point:      candidate.Location,
				DistanceKm: distance,
			}
		}
	}

	return best, nil
}

// FindClosest searches the candidates of the point within the dataset and returns the closest one.
func FindClosest(point orb.Point, dataset *Dataset, search NeighborSearch) (*Result, error) {
	candidates := search.Neighbors(point, dataset)
	return Closest(point, candidates)
}
