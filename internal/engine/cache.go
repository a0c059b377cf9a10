package engine

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// responseCache remembers decoded responses per composed prompt. Generation
// with default parameters is deterministic, so a hit can skip the runtime
// entirely for the TTL window.
type responseCache struct {
	cache *ttlcache.Cache[string, string]
}

func newResponseCache(ttl time.Duration) *responseCache {
	c := ttlcache.New[string, string](
		ttlcache.WithTTL[string, string](ttl),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	go c.Start()
	return &responseCache{cache: c}
}

func (rc *responseCache) get(prompt string) (string, bool) {
	item := rc.cache.Get(prompt)
	if item == nil {
		return "", false
	}
	return item.Value(), true
}

func (rc *responseCache) set(prompt, response string) {
	rc.cache.Set(prompt, response, ttlcache.DefaultTTL)
}

// stop halts the expiration loop.
func (rc *responseCache) stop() {
	rc.cache.Stop()
}
