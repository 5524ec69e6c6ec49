package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/psiborg/task-manager/internal/core/domain"
	"github.com/psiborg/task-manager/internal/core/ports"
	"github.com/psiborg/task-manager/internal/pkg/metrics"
)

// DefaultCacheTTL bounds how stale a cached read may be. Writes never
// invalidate entries.
const DefaultCacheTTL = 5 * time.Minute

// Cache key namespaces.
const (
	NamespaceTasks    = "tasks"
	NamespaceProfile  = "user:profile"
	NamespaceProfiles = "user:profiles"
)

// KeyParam is a named query parameter taking part in a cache key.
type KeyParam struct {
	Name  string
	Value string
}

// CacheKey derives a deterministic key from the namespace, the identity
// parts and the named parameters, in the order given. Parts and parameter
// values are escaped so no value can forge a separator, which keeps keys
// injective over their inputs. An empty value still occupies its slot.
func CacheKey(namespace string, parts []string, params ...KeyParam) string {
	var b strings.Builder
	b.WriteString(namespace)
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(url.QueryEscape(p))
	}
	for _, p := range params {
		b.WriteByte(':')
		b.WriteString(p.Name)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// TasksCacheKey is the key of a caller's task list for the given filters.
func TasksCacheKey(caller *domain.Claims, q ports.TaskQuery) string {
	return CacheKey(NamespaceTasks, []string{caller.SubjectID, string(caller.Role)},
		KeyParam{Name: "status", Value: q.Status},
		KeyParam{Name: "priority", Value: q.Priority},
	)
}

// ProfileCacheKey is the key of the caller's own profile.
func ProfileCacheKey(caller *domain.Claims) string {
	return CacheKey(NamespaceProfile, []string{caller.SubjectID})
}

// ProfilesCacheKey is the key of the profiles visible to the caller.
func ProfilesCacheKey(caller *domain.Claims) string {
	return CacheKey(NamespaceProfiles, []string{caller.SubjectID, string(caller.Role)})
}

// ResponseCache is a read-through cache of serialized response payloads.
type ResponseCache struct {
	store ports.CacheStore
	ttl   time.Duration
	log   zerolog.Logger
}

func NewResponseCache(store ports.CacheStore, ttl time.Duration, log zerolog.Logger) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ResponseCache{store: store, ttl: ttl, log: log}
}

// ReadThrough returns the cached payload for key verbatim, or runs load,
// encodes its result as JSON, caches it and returns it. Store failures are
// logged and served as a miss; load failures are returned and not cached.
func (c *ResponseCache) ReadThrough(ctx context.Context, key string, load func(ctx context.Context) (any, error)) ([]byte, error) {
	ns := namespaceOf(key)

	cached, found, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		metrics.CacheLookupsTotal.WithLabelValues(ns, "error").Inc()
		c.log.Warn().Err(err).Str("key", key).Msg("cache get failed, continuing as miss")
	case found:
		metrics.CacheLookupsTotal.WithLabelValues(ns, "hit").Inc()
		return cached, nil
	default:
		metrics.CacheLookupsTotal.WithLabelValues(ns, "miss").Inc()
	}

	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode cached payload: %w", err)
	}

	if err := c.store.Set(ctx, key, payload, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
	return payload, nil
}

func namespaceOf(key string) string {
	for _, ns := range []string{NamespaceProfiles, NamespaceProfile, NamespaceTasks} {
		if strings.HasPrefix(key, ns+":") {
			return ns
		}
	}
	return "other"
}
