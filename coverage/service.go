package coverage

import (
	"context"
	"fmt"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"math"
	"netcov/feature"
	"netcov/geocoding"
	"netcov/index"
	"netcov/metrics"
	"time"
)

var ErrInvalidPoint = errors.New("invalid point")

// GeocoderError is returned when an address couldn't be geocoded because the geocoder returned an error, e.g. due to a
// canceled request. An unknown address is no error.
type GeocoderError struct {
	Address string
	Err     error
}

func (e *GeocoderError) Error() string {
	return fmt.Sprintf("Unable to geocode address '%s': %s", e.Address, e.Err.Error())
}

func (e *GeocoderError) Unwrap() error {
	return e.Err
}

// Service determines the network coverage of all operators at an address or point.
type Service struct {
	registry *index.Registry
	search   index.NeighborSearch
	geocoder geocoding.Geocoder
}

func NewService(registry *index.Registry, search index.NeighborSearch, geocoder geocoding.Geocoder) *Service {
	return &Service{
		registry: registry,
		search:   search,
		geocoder: geocoder,
	}
}

// Coverage geocodes the address and returns the coverage of each operator. An address that can't be found results in
// an empty list.
func (s *Service) Coverage(ctx context.Context, address Address, detailed bool) ([]*Result, error) {
	if address.IsEmpty() {
		sigolo.Debug("Empty address, no coverage to determine")
		return []*Result{}, nil
	}

	location, err := s.geocoder.Geocode(ctx, address.FullAddress())
	if err != nil {
		return nil, &GeocoderError{Address: address.FullAddress(), Err: err}
	}
	if location == nil {
		sigolo.Infof("Address not found: %s", address.FullAddress())
		return []*Result{}, nil
	}
	sigolo.Infof("Geocoded address '%s' to (lat=%f, lon=%f): %s", address.FullAddress(), location.Lat(), location.Lon(), location.Address)

	return s.coverage(ctx, location.Point, location.Address, detailed)
}

// CoverageAt returns the coverage of each operator at the given point. The address of the point is determined by
// reverse geocoding for detailed results.
func (s *Service) CoverageAt(ctx context.Context, point orb.Point, detailed bool) ([]*Result, error) {
	if !IsValidPoint(point) {
		return nil, errors.Wrapf(ErrInvalidPoint, "lat=%f, lon=%f", point.Lat(), point.Lon())
	}

	targetAddress := ""
	if detailed {
		targetAddress = s.reverseAddress(ctx, point)
	}

	return s.coverage(ctx, point, targetAddress, detailed)
}

// IsValidPoint checks whether the point is a finite WGS84 coordinate.
func IsValidPoint(point orb.Point) bool {
	for _, value := range []float64{point.Lat(), point.Lon()} {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return false
		}
	}
	return point.Lat() >= -90 && point.Lat() <= 90 && point.Lon() >= -180 && point.Lon() <= 180
}

// coverage looks up all operators concurrently. The result is ordered like feature.Operators and only contains
// operators with data near the point.
func (s *Service) coverage(ctx context.Context, point orb.Point, targetAddress string, detailed bool) ([]*Result, error) {
	lookupStartTime := time.Now()
	operatorResults := make([]*Result, len(feature.Operators))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, operator := range feature.Operators {
		group.Go(func() error {
			result, err := s.lookup(operator, point)
			if err != nil || result == nil {
				return err
			}

			if detailed {
				s.addDetails(groupCtx, result, targetAddress)
			}
			operatorResults[i] = result
			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		return nil, err
	}

	results := []*Result{}
	for _, result := range operatorResults {
		if result != nil {
			results = append(results, result)
		}
	}

	sigolo.Debugf("Found coverage of %d operators at (lat=%f, lon=%f) in %s", len(results), point.Lat(), point.Lon(), time.Since(lookupStartTime))
	return results, nil
}

// lookup returns the coverage of the operator at the point or nil if the operator has no data near the point.
func (s *Service) lookup(operator feature.Operator, point orb.Point) (*Result, error) {
	if !s.registry.Has(operator.String()) {
		sigolo.Infof("Dataset of operator %s not loaded yet, this request will build it", operator)
	}

	dataset, err := s.registry.Get(operator.String())
	if errors.Is(err, index.ErrEmptyInput) {
		sigolo.Errorf("No data for operator %s: %+v", operator, err)
		metrics.LookupsTotal.WithLabelValues(operator.String(), "no_data").Inc()
		return nil, nil
	}
	if err != nil {
		metrics.LookupsTotal.WithLabelValues(operator.String(), "error").Inc()
		return nil, err
	}

	closest, err := index.FindClosest(point, dataset, s.search)
	if errors.Is(err, index.ErrNotFound) {
		sigolo.Debugf("No %s site near (lat=%f, lon=%f)", operator, point.Lat(), point.Lon())
		metrics.LookupsTotal.WithLabelValues(operator.String(), "not_found").Inc()
		return nil, nil
	}
	if err != nil {
		metrics.LookupsTotal.WithLabelValues(operator.String(), "error").Inc()
		return nil, errors.Wrapf(err, "Unable to find closest site of operator %s", operator)
	}

	metrics.LookupsTotal.WithLabelValues(operator.String(), "found").Inc()
	metrics.LookupDistanceKm.Observe(closest.DistanceKm)
	sigolo.Debugf("Closest %s site is record %d in %f km", operator, closest.Record.ID, closest.DistanceKm)

	coverage := closest.Record.Coverage
	return &Result{
		Operator:   operator.String(),
		N2G:        coverage.N2G,
		N3G:        coverage.N3G,
		N4G:        coverage.N4G,
		Target:     point,
		Closest:    closest.Point,
		DistanceKm: closest.DistanceKm,
		Record:     closest.Record,
	}, nil
}

func (s *Service) addDetails(ctx context.Context, result *Result, targetAddress string) {
	distance := result.DistanceKm
	result.Distance = &distance
	result.TargetLocation = newLocation(result.Target, targetAddress)
	result.ClosestLocation = newLocation(result.Closest, s.reverseAddress(ctx, result.Closest))
}

// reverseAddress returns the address at the point or an empty string if it's unknown. Geocoder errors don't fail the
// lookup since the address is only additional information.
func (s *Service) reverseAddress(ctx context.Context, point orb.Point) string {
	location, err := s.geocoder.Reverse(ctx, point)
	if err != nil {
		sigolo.Errorf("Unable to find address at (lat=%f, lon=%f): %+v", point.Lat(), point.Lon(), err)
		return ""
	}
	if location == nil {
		return ""
	}
	return location.Address
}
