package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nirvachan/server/internal/domain/constituencies"
	"github.com/nirvachan/server/internal/domain/events"
	"github.com/nirvachan/server/internal/domain/parties"
	"github.com/nirvachan/server/internal/domain/users"
	"github.com/nirvachan/server/internal/storage"
)

type fakeStore struct {
	pingErr error
}

func (f *fakeStore) Events() events.Repository                 { return nil }
func (f *fakeStore) Parties() parties.Repository               { return nil }
func (f *fakeStore) Constituencies() constituencies.Repository { return nil }
func (f *fakeStore) Users() users.Repository                   { return nil }

func (f *fakeStore) WithTx(ctx context.Context, fn func(context.Context, storage.Repository) error) error {
	return fn(ctx, f)
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func TestHealthHealthy(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	Health(&fakeStore{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "healthy", body.Status)
	require.Equal(t, "nepal-elections-api", body.Service)
	require.Equal(t, "connected", body.Database)
	require.Equal(t, "full-db", body.Mode)
}

func TestHealthDegradedStill200(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	Health(&fakeStore{pingErr: errors.New("connection refused")}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "degraded", body.Status)
	require.Equal(t, "error: connection refused", body.Database)
}
