package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Dosada05/padel-tournament/storage"
)

// ResponseCache serves GET responses of a tournament from storage.Cache and
// drops all of them whenever the tournament changes. Cache failures degrade to
// uncached reads.
//
// Keys carry the tournament's generation token. invalidate replaces the token,
// so a body loaded before a mutation and stored after its invalidation is
// written under a generation nobody reads any more.
type ResponseCache struct {
	cache  storage.Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewResponseCache(cache storage.Cache, ttl time.Duration, logger *slog.Logger) *ResponseCache {
	if cache == nil {
		cache = storage.NoopCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResponseCache{cache: cache, ttl: ttl, logger: logger}
}

// serve writes the cached body of (tournamentID, resource) or, on a miss,
// calls load and caches its JSON.
func (c *ResponseCache) serve(w http.ResponseWriter, r *http.Request, tournamentID int, resource string, load func() (interface{}, error)) {
	ctx := r.Context()
	generation, cacheable := c.generation(ctx, tournamentID)
	key := storage.TournamentKey(tournamentID, generation+":"+resource)
	if cacheable {
		body, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.Any("error", err))
		}
		if ok {
			if err := writeRawJSON(w, http.StatusOK, body, http.Header{"X-Cache": []string{"HIT"}}); err != nil {
				serverErrorResponse(w, r, err)
			}
			return
		}
	}

	data, err := load()
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	body, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	body = append(body, '\n')
	if cacheable {
		if err := c.cache.Set(ctx, key, body, c.ttl); err != nil {
			c.logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.Any("error", err))
		}
	}
	if err := writeRawJSON(w, http.StatusOK, body, http.Header{"X-Cache": []string{"MISS"}}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// generation returns the tournament's current token ("0" before the first
// change). When it cannot be read the response is not cached at all.
func (c *ResponseCache) generation(ctx context.Context, tournamentID int) (string, bool) {
	token, ok, err := c.cache.Get(ctx, storage.TournamentGenerationKey(tournamentID))
	if err != nil {
		c.logger.WarnContext(ctx, "cache generation read failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return "", false
	}
	if !ok {
		return "0", true
	}
	return string(token), true
}

func (c *ResponseCache) invalidate(ctx context.Context, tournamentID int) {
	if err := c.cache.Set(ctx, storage.TournamentGenerationKey(tournamentID), []byte(uuid.NewString()), 0); err != nil {
		c.logger.WarnContext(ctx, "cache generation bump failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}
	if err := c.cache.DeletePrefix(ctx, storage.TournamentPrefix(tournamentID)); err != nil {
		c.logger.WarnContext(ctx, "cache invalidation failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}
}
