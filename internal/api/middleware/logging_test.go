package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestRequestLoggingCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := CorrelationID(logger)(RequestLogging(logger)(okHandler()))

	req := httptest.NewRequest("GET", "/v1/events?district=Kathmandu", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	line := logLine(t, &buf)
	require.Equal(t, "req-42", line["request_id"])
	require.Equal(t, "GET", line["method"])
	require.Equal(t, "/v1/events", line["path"])
	require.Equal(t, float64(http.StatusOK), line["status"])
	require.Equal(t, "request served", line["message"])
	require.NotContains(t, buf.String(), "district=Kathmandu")
}

func TestRequestLoggingFallsBackWithoutCorrelation(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := RequestLogging(logger)(okHandler())

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	line := logLine(t, &buf)
	require.Equal(t, "/healthz", line["path"])
}

func TestRequestLoggingMarksServerErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := RequestLogging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	req := httptest.NewRequest("GET", "/v1/events", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	line := logLine(t, &buf)
	require.Equal(t, "error", line["level"])
	require.Equal(t, float64(http.StatusInternalServerError), line["status"])
}
