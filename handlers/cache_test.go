package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/padel-tournament/storage"
)

func TestResponseCache(t *testing.T) {
	const tournamentID = 7
	get := func(c *ResponseCache, load func() (interface{}, error)) (*httptest.ResponseRecorder, map[string]int) {
		rec := httptest.NewRecorder()
		c.serve(rec, httptest.NewRequest(http.MethodGet, "/", nil), tournamentID, "zones", load)
		var body map[string]int
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return rec, body
	}
	version := func(v int) func() (interface{}, error) {
		return func() (interface{}, error) { return jsonResponse{"version": v}, nil }
	}

	t.Run("Hit until invalidated", func(t *testing.T) {
		c := NewResponseCache(storage.NewMemoryCache(), time.Minute, nil)

		rec, body := get(c, version(1))
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
		assert.Equal(t, 1, body["version"])

		rec, body = get(c, version(2))
		assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
		assert.Equal(t, 1, body["version"])

		c.invalidate(context.Background(), tournamentID)
		rec, body = get(c, version(2))
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
		assert.Equal(t, 2, body["version"])
	})

	t.Run("Body loaded before a change is not served after it", func(t *testing.T) {
		c := NewResponseCache(storage.NewMemoryCache(), time.Minute, nil)

		// the read loads version 1, then the mutation commits and
		// invalidates before the read stores its body
		rec, body := get(c, func() (interface{}, error) {
			c.invalidate(context.Background(), tournamentID)
			return jsonResponse{"version": 1}, nil
		})
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
		assert.Equal(t, 1, body["version"])

		rec, body = get(c, version(2))
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
		assert.Equal(t, 2, body["version"])

		rec, body = get(c, version(3))
		assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
		assert.Equal(t, 2, body["version"])
	})

	t.Run("Other tournaments keep their entries", func(t *testing.T) {
		cache := storage.NewMemoryCache()
		c := NewResponseCache(cache, time.Minute, nil)
		get(c, version(1))

		c.invalidate(context.Background(), tournamentID+1)
		rec, _ := get(c, version(2))
		assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	})
}
