package web

import (
	"context"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/hauke96/sigolo/v2"
	"net/http"
	"netcov/metrics"
	"strconv"
	"time"
)

const HeaderRequestId = "X-Request-ID"

type requestIdKey struct{}

// requestIdMiddleware takes the request ID from the header or generates a new one. The ID is added to the response
// and the request context.
func requestIdMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		id := request.Header.Get(HeaderRequestId)
		if id == "" {
			id = uuid.NewString()
		}

		writer.Header().Set(HeaderRequestId, id)
		next.ServeHTTP(writer, request.WithContext(context.WithValue(request.Context(), requestIdKey{}, id)))
	})
}

func requestId(request *http.Request) string {
	id, _ := request.Context().Value(requestIdKey{}).(string)
	return id
}

// statusWriter remembers the status code written by the handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func accessMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requestStartTime := time.Now()
		statusWriter := &statusWriter{ResponseWriter: writer, status: http.StatusOK}

		next.ServeHTTP(statusWriter, request)

		route := request.URL.Path
		if currentRoute := mux.CurrentRoute(request); currentRoute != nil {
			if template, err := currentRoute.GetPathTemplate(); err == nil {
				route = template
			}
		}

		duration := time.Since(requestStartTime)
		metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(statusWriter.status)).Inc()
		metrics.RequestDurationMs.WithLabelValues(route).Observe(float64(duration.Milliseconds()))
		sigolo.Debugf("[%s] %s %s -> %d in %s", requestId(request), request.Method, request.URL.String(), statusWriter.status, duration)
	})
}
