package web

import (
	"encoding/json"
	"fmt"
	"github.com/gorilla/mux"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"net/http"
	"netcov/coverage"
	ownIo "netcov/io"
	"netcov/metrics"
	"strconv"
)

const (
	routeCoverage         = "/network_coverage/"
	routeCoverageDetailed = "/network_coverage/detailed/"
	routeCoveragePoint    = "/network_coverage/point/"
	routeMetrics          = "/metrics"
)

// ErrorResponse is the body of all error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func StartServer(port int, service *coverage.Service) {
	r := initRouter(service)
	sigolo.Infof("Start server on port %d", port)
	err := http.ListenAndServe(fmt.Sprintf(":%d", port), r)
	sigolo.FatalCheck(err)
}

func initRouter(service *coverage.Service) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestIdMiddleware, accessMiddleware)

	r.HandleFunc(routeCoverage, func(writer http.ResponseWriter, request *http.Request) {
		handleAddressCoverage(service, writer, request, false)
	}).Methods(http.MethodGet)

	r.HandleFunc(routeCoverageDetailed, func(writer http.ResponseWriter, request *http.Request) {
		handleAddressCoverage(service, writer, request, true)
	}).Methods(http.MethodGet)

	r.HandleFunc(routeCoveragePoint, func(writer http.ResponseWriter, request *http.Request) {
		handlePointCoverage(service, writer, request)
	}).Methods(http.MethodGet)

	r.Handle(routeMetrics, metrics.Handler()).Methods(http.MethodGet)

	return r
}

func handleAddressCoverage(service *coverage.Service, writer http.ResponseWriter, request *http.Request, detailed bool) {
	query := request.URL.Query()
	address := coverage.Address{
		StreetNumber: query.Get("street_number"),
		StreetName:   query.Get("street_name"),
		City:         query.Get("city"),
		PostalCode:   query.Get("postal_code"),
	}
	sigolo.Infof("[%s] Coverage request for address '%s' (detailed=%t)", requestId(request), address.FullAddress(), detailed)

	results, err := service.Coverage(request.Context(), address, detailed)
	if err != nil {
		writeServiceError(writer, request, err)
		return
	}

	writeResults(writer, request, results)
}

func handlePointCoverage(service *coverage.Service, writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	point, err := parsePoint(query.Get("latitude"), query.Get("longitude"))
	if err != nil {
		writeError(writer, request, http.StatusBadRequest, "Invalid coordinates", err)
		return
	}

	detailed := false
	if query.Has("detailed") {
		detailed, err = strconv.ParseBool(query.Get("detailed"))
		if err != nil {
			writeError(writer, request, http.StatusBadRequest, "Invalid parameter 'detailed'", err)
			return
		}
	}
	sigolo.Infof("[%s] Coverage request for point (lat=%f, lon=%f) (detailed=%t)", requestId(request), point.Lat(), point.Lon(), detailed)

	results, err := service.CoverageAt(request.Context(), point, detailed)
	if err != nil {
		writeServiceError(writer, request, err)
		return
	}

	writeResults(writer, request, results)
}

func parsePoint(latitudeString string, longitudeString string) (orb.Point, error) {
	latitude, err := strconv.ParseFloat(latitudeString, 64)
	if err != nil {
		return orb.Point{}, errors.Wrapf(err, "Invalid latitude '%s'", latitudeString)
	}

	longitude, err := strconv.ParseFloat(longitudeString, 64)
	if err != nil {
		return orb.Point{}, errors.Wrapf(err, "Invalid longitude '%s'", longitudeString)
	}

	return orb.Point{longitude, latitude}, nil
}

func writeResults(writer http.ResponseWriter, request *http.Request, results []*coverage.Result) {
	sigolo.Debugf("[%s] Found coverage of %d operators", requestId(request), len(results))

	var err error
	switch format := request.URL.Query().Get("format"); format {
	case "", ownIo.FormatJson:
		writer.Header().Set("Content-Type", "application/json")
		err = ownIo.WriteResultsAsJson(results, writer)
	case ownIo.FormatGeoJson:
		writer.Header().Set("Content-Type", "application/geo+json")
		err = ownIo.WriteResultsAsGeoJson(results, writer)
	default:
		writeError(writer, request, http.StatusBadRequest, "Invalid parameter 'format'", errors.Errorf("Unknown output format '%s'", format))
		return
	}

	if err != nil {
		sigolo.Errorf("[%s] Error writing coverage result: %+v", requestId(request), err)
	}
}

func writeServiceError(writer http.ResponseWriter, request *http.Request, err error) {
	var geocoderErr *coverage.GeocoderError
	switch {
	case errors.Is(err, coverage.ErrInvalidPoint):
		writeError(writer, request, http.StatusBadRequest, "Invalid coordinates", err)
	case errors.As(err, &geocoderErr):
		writeError(writer, request, http.StatusBadGateway, "Geocoding failed", err)
	default:
		writeError(writer, request, http.StatusInternalServerError, "Unable to determine network coverage", err)
	}
}

func writeError(writer http.ResponseWriter, request *http.Request, status int, message string, err error) {
	sigolo.Errorf("[%s] %s: %+v", requestId(request), message, err)

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)

	err = json.NewEncoder(writer).Encode(ErrorResponse{Error: message, Details: err.Error()})
	if err != nil {
		sigolo.Errorf("[%s] Error writing error response: %+v", requestId(request), err)
	}
}
