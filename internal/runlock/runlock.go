// Package runlock provides a redis-backed mutual exclusion lock so that only
// one crawl pass runs at a time across service replicas.
package runlock

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"bookapp/internal/util"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock is a single-holder lock with a TTL safety valve. Acquire is
// non-blocking: a held lock means the caller should skip its pass.
type Lock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// New creates a redis-backed lock under the given key.
func New(addr, password, key string, ttl time.Duration) (*Lock, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("run lock redis addr is required")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "bookapp:crawl:lock"
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Lock{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password}),
		key:    key,
		ttl:    ttl,
	}, nil
}

// Acquire attempts to take the lock. On success it returns a release func
// that only deletes the key if this holder still owns it, so a TTL-expired
// lock taken over by another replica is never released by the old holder.
func (l *Lock) Acquire(ctx context.Context) (release func(), ok bool, err error) {
	if l == nil {
		return func() {}, true, nil
	}
	token := util.NewID()
	ok, err = l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release = func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, _ = releaseScript.Run(releaseCtx, l.client, []string{l.key}, token).Result()
	}
	return release, true, nil
}
