package geocoding

import (
	"context"
	"fmt"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
	"io"
	"net/http"
	"net/url"
	"netcov/metrics"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseUrl = "https://api-adresse.data.gouv.fr"

	endpointSearch  = "search"
	endpointReverse = "reverse"
)

// Location is a geocoded position. Address is the formatted label of the address.
type Location struct {
	Point   orb.Point
	Address string
}

func (l *Location) Lat() float64 {
	return l.Point.Lat()
}

func (l *Location) Lon() float64 {
	return l.Point.Lon()
}

// Geocoder resolves addresses to locations and back. A nil location without an error means that nothing was found,
// either because the address is unknown or because the geocoder kept failing.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*Location, error)
	Reverse(ctx context.Context, point orb.Point) (*Location, error)
}

type Options struct {
	BaseUrl           string
	Retries           int
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client uses the API of the "Base Adresse Nationale" (BAN) of France.
type Client struct {
	baseUrl    string
	retries    int
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *Cache
}

// NewClient creates a BAN client. The cache is optional and may be nil.
func NewClient(options Options, cache *Cache) *Client {
	baseUrl := strings.TrimSuffix(options.BaseUrl, "/")
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}

	retries := options.Retries
	if retries < 1 {
		retries = 1
	}

	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	limit := rate.Inf
	if options.RequestsPerSecond > 0 {
		limit = rate.Limit(options.RequestsPerSecond)
	}

	return &Client{
		baseUrl:    baseUrl,
		retries:    retries,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
		cache:      cache,
	}
}

func (c *Client) Geocode(ctx context.Context, query string) (*Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	parameters := url.Values{}
	parameters.Set("q", query)
	parameters.Set("limit", "1")

	return c.cachedRequest(ctx, endpointSearch, "search:"+strings.ToLower(query), parameters)
}

func (c *Client) Reverse(ctx context.Context, point orb.Point) (*Location, error) {
	parameters := url.Values{}
	parameters.Set("lon", strconv.FormatFloat(point.Lon(), 'f', -1, 64))
	parameters.Set("lat", strconv.FormatFloat(point.Lat(), 'f', -1, 64))

	return c.cachedRequest(ctx, endpointReverse, fmt.Sprintf("reverse:%.5f:%.5f", point.Lon(), point.Lat()), parameters)
}

func (c *Client) cachedRequest(ctx context.Context, endpoint string, cacheKey string, parameters url.Values) (*Location, error) {
	if location, ok := c.cache.get(ctx, cacheKey); ok {
		return location, nil
	}

	location, err := c.request(ctx, endpoint, parameters)
	if err != nil {
		return nil, err
	}

	if location != nil {
		c.cache.set(ctx, cacheKey, location)
	}
	return location, nil
}

// request calls the endpoint until a response has been received or all tries failed. Only transport errors and
// server errors are retried. A request that failed for good is "not found" (nil location, no error), only a canceled
// context results in an error.
func (c *Client) request(ctx context.Context, endpoint string, parameters url.Values) (*Location, error) {
	requestUrl := fmt.Sprintf("%s/%s/?%s", c.baseUrl, endpoint, parameters.Encode())

	var lastErr error
	for try := 1; try <= c.retries; try++ {
		err := c.limiter.Wait(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "Waiting for geocoder rate limit failed")
		}

		requestStartTime := time.Now()
		location, retryable, err := c.requestOnce(ctx, requestUrl)
		metrics.GeocoderDurationMs.WithLabelValues(endpoint).Observe(float64(time.Since(requestStartTime).Milliseconds()))

		if err == nil {
			outcome := "found"
			if location == nil {
				outcome = "not_found"
			}
			metrics.GeocoderRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
			return location, nil
		}

		metrics.GeocoderRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		sigolo.Errorf("Geocoder request %s failed (try %d of %d): %+v", requestUrl, try, c.retries, err)
		lastErr = err

		if !retryable || ctx.Err() != nil {
			break
		}
	}

	if ctx.Err() != nil {
		return nil, errors.Wrapf(lastErr, "Geocoder request to %s canceled", endpoint)
	}

	sigolo.Errorf("Giving up geocoder request to %s, treating it as not found: %+v", endpoint, lastErr)
	return nil, nil
}

func (c *Client) requestOnce(ctx context.Context, requestUrl string) (*Location, bool, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestUrl, nil)
	if err != nil {
		return nil, false, errors.Wrapf(err, "Unable to create request for %s", requestUrl)
	}
	request.Header.Set("Accept", "application/json")

	sigolo.Debugf("Geocoder request: %s", requestUrl)
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, true, errors.Wrap(err, "Unable to send geocoder request")
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, true, errors.Wrap(err, "Unable to read geocoder response")
	}

	if response.StatusCode >= 500 {
		return nil, true, errors.Errorf("Geocoder responded with status %d: %s", response.StatusCode, string(body))
	}
	if response.StatusCode != http.StatusOK {
		return nil, false, errors.Errorf("Geocoder responded with status %d: %s", response.StatusCode, string(body))
	}

	location, err := parseFeatureCollection(body)
	return location, false, err
}

// parseFeatureCollection returns the first feature of the GeoJSON response or nil if there is none.
func parseFeatureCollection(body []byte) (*Location, error) {
	featureCollection, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to parse geocoder response")
	}

	if len(featureCollection.Features) == 0 {
		return nil, nil
	}

	firstFeature := featureCollection.Features[0]
	point, ok := firstFeature.Geometry.(orb.Point)
	if !ok {
		return nil, errors.Errorf("Expected point geometry in geocoder response but got %T", firstFeature.Geometry)
	}

	return &Location{
		Point:   point,
		Address: firstFeature.Properties.MustString("label", ""),
	}, nil
}
