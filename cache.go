package folio

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/eringen/folio/search"
)

// snapshot is one load of the published posts and everything derived from it.
type snapshot struct {
	posts   []BlogPost
	records []search.Post
	tags    []search.TagCount
	bySlug  map[string]BlogPost
	byLink  map[string]BlogPost
	fetched time.Time
}

// PostCache is an in-memory cache of published blog posts, their search
// records and tag counts, with TTL. Concurrent reloads share one query.
type PostCache struct {
	mu    sync.RWMutex
	snap  *snapshot
	gen   uint64
	ttl   time.Duration
	store *Store
	group singleflight.Group

	// OnReload, if set, is called after every store load.
	OnReload func(err error)
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl}
}

// Invalidate clears the cache so the next read triggers a fresh load.
// A load already in flight is discarded.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.gen++
	c.mu.Unlock()
	c.group.Forget("posts")
}

func (c *PostCache) current() (*snapshot, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap != nil && time.Since(c.snap.fetched) < c.ttl {
		return c.snap, c.gen
	}
	return nil, c.gen
}

func (c *PostCache) ensureLoaded() (*snapshot, error) {
	if snap, _ := c.current(); snap != nil {
		return snap, nil
	}
	v, err, _ := c.group.Do("posts", func() (any, error) {
		snap, gen := c.current()
		if snap != nil {
			return snap, nil
		}
		posts, err := c.store.ListPosts()
		if c.OnReload != nil {
			c.OnReload(err)
		}
		if err != nil {
			return nil, err
		}
		snap = buildSnapshot(posts)
		c.mu.Lock()
		if c.gen == gen {
			c.snap = snap
		}
		c.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*snapshot), nil
}

func buildSnapshot(posts []BlogPost) *snapshot {
	s := &snapshot{
		posts:   posts,
		records: make([]search.Post, len(posts)),
		bySlug:  make(map[string]BlogPost, len(posts)),
		byLink:  make(map[string]BlogPost, len(posts)),
		fetched: time.Now(),
	}
	for i, p := range posts {
		s.records[i] = p.Record()
		s.bySlug[p.Slug] = p
		s.byLink[p.Link] = p
	}
	s.tags = search.Aggregate(s.records)
	return s
}

// ListPosts returns published posts, optionally filtered by tag.
func (c *PostCache) ListPosts(tag string) ([]BlogPost, error) {
	snap, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	tag = normalizeTag(tag)
	if tag == "" {
		return snap.posts, nil
	}
	var filtered []BlogPost
	for _, r := range search.FilterByTag(snap.records, tag) {
		filtered = append(filtered, snap.byLink[r.Slug])
	}
	return filtered, nil
}

// Records returns the search records of all published posts, in list order.
func (c *PostCache) Records() ([]search.Post, error) {
	snap, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	return snap.records, nil
}

// TagCounts returns the tags of published posts, most used first.
func (c *PostCache) TagCounts() ([]search.TagCount, error) {
	snap, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	return snap.tags, nil
}

// GetPost returns a single published post by slug from the cache.
func (c *PostCache) GetPost(slug string) (BlogPost, error) {
	snap, err := c.ensureLoaded()
	if err != nil {
		return BlogPost{}, err
	}
	if p, ok := snap.bySlug[slug]; ok {
		return p, nil
	}
	return BlogPost{}, ErrNotFound
}
