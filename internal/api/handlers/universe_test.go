package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityavk/nsescreener/internal/contracts"
	"github.com/adityavk/nsescreener/pkg/logger"
)

type fakeSnapshotReader struct {
	entry *contracts.CacheEntry
	err   error
}

func (f *fakeSnapshotReader) GetLatestSnapshot(ctx context.Context) (*contracts.CacheEntry, error) {
	return f.entry, f.err
}

func TestGetSnapshot(t *testing.T) {
	snapshots := &fakeSnapshotReader{
		entry: &contracts.CacheEntry{
			Date:    "2026-08-28",
			Symbols: []string{"RELIANCE", "TCS"},
			Count:   2,
		},
	}
	h := NewUniverseHandler(nil, snapshots, logger.NewNop())

	rec := httptest.NewRecorder()
	h.GetSnapshot(rec, httptest.NewRequest(http.MethodGet, "/api/universe/snapshot", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success  bool                 `json:"success"`
		Snapshot contracts.CacheEntry `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "2026-08-28", body.Snapshot.Date)
	assert.Equal(t, []string{"RELIANCE", "TCS"}, body.Snapshot.Symbols)
	assert.Equal(t, 2, body.Snapshot.Count)
}

func TestGetSnapshot_NoHistoryYet(t *testing.T) {
	snapshots := &fakeSnapshotReader{err: contracts.ErrDataUnavailable}
	h := NewUniverseHandler(nil, snapshots, logger.NewNop())

	rec := httptest.NewRecorder()
	h.GetSnapshot(rec, httptest.NewRequest(http.MethodGet, "/api/universe/snapshot", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSnapshot_StoreError(t *testing.T) {
	snapshots := &fakeSnapshotReader{err: errors.New("connection refused")}
	h := NewUniverseHandler(nil, snapshots, logger.NewNop())

	rec := httptest.NewRecorder()
	h.GetSnapshot(rec, httptest.NewRequest(http.MethodGet, "/api/universe/snapshot", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetSnapshot_NotConfigured(t *testing.T) {
	h := NewUniverseHandler(nil, nil, logger.NewNop())

	rec := httptest.NewRecorder()
	h.GetSnapshot(rec, httptest.NewRequest(http.MethodGet, "/api/universe/snapshot", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
