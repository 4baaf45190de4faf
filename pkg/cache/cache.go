// Package cache is a TTL-based disk cache for fetched remote content
// trees. Entries are keyed by owner/repo/subpath@ref, stored as plain
// directories with a metadata sidecar, and replaced wholesale via
// write-to-temp-then-rename so a concurrent reader never observes a
// half-written entry. At most one fetch per key is in flight at any
// time; concurrent callers for the same key share the result, while
// different keys proceed fully in parallel.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/jingkaihe/skillsync/pkg/logger"
	skilltypes "github.com/jingkaihe/skillsync/pkg/types/skill"
)

// MetadataFile is the per-entry sidecar recording provenance and
// fetch time.
const MetadataFile = ".cache-metadata.json"

// DefaultTTL is the freshness window used when the configuration does
// not override it.
const DefaultTTL = 24 * time.Hour

// Fetcher retrieves a remote content tree. The cache delegates to it
// on miss or expiry.
type Fetcher interface {
	Fetch(ctx context.Context, coord skilltypes.SourceCoordinate) (skilltypes.ContentTree, error)
}

// CacheError reports a local cache IO or corruption problem. The
// cache logs and works around these where it can (falling back to a
// direct fetch); they surface only when nothing else is possible.
type CacheError struct {
	Key     string
	Message string
	Err     error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache entry %s: %s: %v", e.Key, e.Message, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }

// metadata is the serialized form of the entry sidecar.
type metadata struct {
	Key       string    `json:"key"`
	Owner     string    `json:"owner"`
	Repo      string    `json:"repo"`
	Subpath   string    `json:"subpath"`
	Ref       string    `json:"ref"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Cache serves content trees for source coordinates, delegating to a
// Fetcher when the disk entry is missing, expired, or force-refreshed.
type Cache struct {
	dir     string
	ttl     time.Duration
	fetcher Fetcher
	group   singleflight.Group
	now     func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source, used by expiry tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a cache rooted at dir. A zero ttl means DefaultTTL.
func New(dir string, ttl time.Duration, fetcher Fetcher, opts ...Option) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating cache directory %s", dir)
	}
	c := &Cache{
		dir:     dir,
		ttl:     ttl,
		fetcher: fetcher,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Key derives the deterministic cache key for a remote coordinate: a
// human-readable owner-repo-ref prefix plus a digest of the full
// identity.
func Key(coord skilltypes.SourceCoordinate) string {
	identity := fmt.Sprintf("%s/%s/%s@%s", coord.Owner, coord.Repo, coord.Subpath, coord.Ref)
	digest := sha256.Sum256([]byte(identity))

	sanitize := func(s string) string {
		s = strings.ReplaceAll(s, "/", "-")
		return strings.ReplaceAll(s, ".", "-")
	}
	return fmt.Sprintf("%s-%s-%s-%s",
		sanitize(coord.Owner), sanitize(coord.Repo), sanitize(coord.Ref),
		hex.EncodeToString(digest[:])[:16])
}

// Get returns the content tree for a coordinate. Local coordinates
// bypass the cache and are read from disk on every call. Remote
// coordinates are served from a fresh cache entry when possible;
// otherwise a single fetch per key runs, shared by all concurrent
// callers of that key.
func (c *Cache) Get(ctx context.Context, coord skilltypes.SourceCoordinate, forceRefresh bool) (skilltypes.ContentTree, error) {
	if coord.IsLocal() {
		return skilltypes.ReadTree(coord.LocalPath)
	}

	key := Key(coord)
	flightKey := key
	if forceRefresh {
		// A refresh request must not coalesce onto an in-flight cached
		// read, which could hand back the very entry it asked to bypass.
		flightKey += ":force"
	}
	v, err, _ := c.group.Do(flightKey, func() (interface{}, error) {
		return c.getRemote(ctx, coord, key, forceRefresh)
	})
	if err != nil {
		return nil, err
	}
	return v.(skilltypes.ContentTree), nil
}

func (c *Cache) getRemote(ctx context.Context, coord skilltypes.SourceCoordinate, key string, forceRefresh bool) (skilltypes.ContentTree, error) {
	log := logger.G(ctx).WithField("cache_key", key)
	entryDir := filepath.Join(c.dir, key)

	if !forceRefresh {
		if tree, ok := c.loadFresh(ctx, coord, entryDir, key); ok {
			log.Debug("cache hit")
			return tree, nil
		}
	}

	tree, fetchErr := c.fetcher.Fetch(ctx, coord)
	if fetchErr != nil {
		// Degraded-mode read: an existing entry, however stale, beats
		// failing outright when only the refresh failed.
		if stale, ok := c.loadAny(ctx, coord, entryDir, key); ok {
			log.WithError(fetchErr).Warn("fetch failed, serving stale cache entry")
			return stale, nil
		}
		return nil, fetchErr
	}

	if err := c.store(coord, key, tree); err != nil {
		log.WithError(err).Warn("failed to store cache entry, continuing with fetched content")
	} else {
		log.Debug("cache entry refreshed")
	}
	return tree, nil
}

// loadFresh loads the entry only if its metadata matches the
// coordinate and it is within TTL.
func (c *Cache) loadFresh(ctx context.Context, coord skilltypes.SourceCoordinate, entryDir, key string) (skilltypes.ContentTree, bool) {
	meta, err := c.readMetadata(entryDir, key)
	if err != nil {
		return nil, false
	}
	if !c.matches(meta, coord) {
		logger.G(ctx).WithField("cache_key", key).Warn("cache entry metadata mismatch, refetching")
		return nil, false
	}
	if c.now().Sub(meta.FetchedAt) > c.ttl {
		return nil, false
	}
	return c.loadTree(ctx, entryDir, key)
}

// loadAny loads the entry regardless of age, for the stale fallback.
func (c *Cache) loadAny(ctx context.Context, coord skilltypes.SourceCoordinate, entryDir, key string) (skilltypes.ContentTree, bool) {
	meta, err := c.readMetadata(entryDir, key)
	if err != nil || !c.matches(meta, coord) {
		return nil, false
	}
	return c.loadTree(ctx, entryDir, key)
}

func (c *Cache) loadTree(ctx context.Context, entryDir, key string) (skilltypes.ContentTree, bool) {
	tree, err := skilltypes.ReadTree(entryDir)
	if err != nil {
		logger.G(ctx).WithError(&CacheError{Key: key, Message: "reading entry", Err: err}).Warn("unreadable cache entry")
		return nil, false
	}
	// The sidecar is cache bookkeeping, not entry content. Everything
	// else, dotfiles included, round-trips untouched.
	delete(tree, MetadataFile)
	return tree, true
}

func (c *Cache) matches(meta *metadata, coord skilltypes.SourceCoordinate) bool {
	return meta.Owner == coord.Owner &&
		meta.Repo == coord.Repo &&
		meta.Subpath == coord.Subpath &&
		meta.Ref == coord.Ref
}

func (c *Cache) readMetadata(entryDir, key string) (*metadata, error) {
	raw, err := os.ReadFile(filepath.Join(entryDir, MetadataFile))
	if err != nil {
		return nil, err
	}
	var meta metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, &CacheError{Key: key, Message: "corrupt metadata", Err: err}
	}
	return &meta, nil
}

// store replaces the entry wholesale: the tree and its metadata are
// written to a staging directory and renamed into place, so readers
// of the previous entry are never exposed to a partial write.
func (c *Cache) store(coord skilltypes.SourceCoordinate, key string, tree skilltypes.ContentTree) error {
	staging := filepath.Join(c.dir, ".staging-"+key+"-"+uuid.NewString())
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return &CacheError{Key: key, Message: "creating staging directory", Err: err}
	}
	defer os.RemoveAll(staging)

	if err := tree.WriteTo(staging); err != nil {
		return &CacheError{Key: key, Message: "writing entry", Err: err}
	}

	meta := metadata{
		Key:       key,
		Owner:     coord.Owner,
		Repo:      coord.Repo,
		Subpath:   coord.Subpath,
		Ref:       coord.Ref,
		FetchedAt: c.now().UTC(),
	}
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return &CacheError{Key: key, Message: "encoding metadata", Err: err}
	}
	if err := os.WriteFile(filepath.Join(staging, MetadataFile), raw, 0o644); err != nil {
		return &CacheError{Key: key, Message: "writing metadata", Err: err}
	}

	entryDir := filepath.Join(c.dir, key)
	if err := os.RemoveAll(entryDir); err != nil {
		return &CacheError{Key: key, Message: "removing previous entry", Err: err}
	}
	if err := os.Rename(staging, entryDir); err != nil {
		return &CacheError{Key: key, Message: "activating entry", Err: err}
	}
	return nil
}

// EntryInfo describes one cache entry for diagnostics.
type EntryInfo struct {
	Key       string
	Source    string
	FetchedAt time.Time
	Stale     bool
}

// Entries lists the cache contents, oldest first.
func (c *Cache) Entries() ([]EntryInfo, error) {
	dirents, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing cache directory %s", c.dir)
	}

	var infos []EntryInfo
	for _, d := range dirents {
		if !d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			continue
		}
		meta, err := c.readMetadata(filepath.Join(c.dir, d.Name()), d.Name())
		if err != nil {
			continue
		}
		infos = append(infos, EntryInfo{
			Key:       meta.Key,
			Source:    fmt.Sprintf("%s/%s/%s@%s", meta.Owner, meta.Repo, meta.Subpath, meta.Ref),
			FetchedAt: meta.FetchedAt,
			Stale:     c.now().Sub(meta.FetchedAt) > c.ttl,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].FetchedAt.Before(infos[j].FetchedAt) })
	return infos, nil
}

// Clear removes every cache entry.
func (c *Cache) Clear() error {
	dirents, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "listing cache directory %s", c.dir)
	}
	for _, d := range dirents {
		if err := os.RemoveAll(filepath.Join(c.dir, d.Name())); err != nil {
			return errors.Wrapf(err, "removing cache entry %s", d.Name())
		}
	}
	return nil
}
