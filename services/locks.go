package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/semaphore"

	"github.com/Dosada05/padel-tournament/brackets"
)

// Locker guards structural changes of a tournament. TryLock never waits: when
// the tournament is already locked it fails with a tournament_busy conflict.
type Locker interface {
	TryLock(ctx context.Context, tournamentID int) (unlock func(), err error)
}

func busyError(tournamentID int) error {
	return brackets.NewError(brackets.ErrConflict, CodeTournamentBusy, "tournament %d is being modified by another request, try again", tournamentID)
}

// semaphoreLocker keeps an entry only while its tournament is locked.
type semaphoreLocker struct {
	mu   sync.Mutex
	sems map[int]*semaphore.Weighted
}

// NewLocalLocker returns an in-process Locker. It is only correct with a single
// API instance.
func NewLocalLocker() Locker {
	return &semaphoreLocker{sems: make(map[int]*semaphore.Weighted)}
}

func (l *semaphoreLocker) TryLock(ctx context.Context, tournamentID int) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	sem, ok := l.sems[tournamentID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.sems[tournamentID] = sem
	}
	if !sem.TryAcquire(1) {
		return nil, busyError(tournamentID)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			sem.Release(1)
			delete(l.sems, tournamentID)
		})
	}, nil
}

// releaseScript deletes the lock only if it still holds our token, so an
// expired lock taken over by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisLocker returns a Locker shared by every API instance using the same
// Redis. ttl bounds how long a crashed holder can block the tournament.
func NewRedisLocker(client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) Locker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &redisLocker{client: client, ttl: ttl, logger: logger}
}

func lockKey(tournamentID int) string {
	return "lock:tournament:" + strconv.Itoa(tournamentID)
}

func (l *redisLocker) TryLock(ctx context.Context, tournamentID int) (func(), error) {
	key := lockKey(tournamentID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, busyError(tournamentID)
	}

	var once sync.Once
	unlock := func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
				l.logger.Warn("failed to release tournament lock",
					slog.Int("tournament_id", tournamentID), slog.Any("error", err))
			}
		})
	}
	return unlock, nil
}
