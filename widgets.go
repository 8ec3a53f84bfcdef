package folio

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/eringen/folio/search"
)

// widgetPage is one open browser page: its document-level pointer stream
// and the search widgets mounted on it.
type widgetPage struct {
	visitor string
	bus     *search.PointerBus
	widgets map[string]*search.Widget
	seen    time.Time
}

const (
	defaultMaxPages        = 10000
	defaultMaxVisitorPages = 8
)

// WidgetHub keeps the server-side interaction state of search widgets,
// keyed by visitor page ("<visitor>:<page>"). Pages idle for longer than the
// TTL are swept and their widgets unmounted. Opening a page past MaxPages in
// total, or past MaxVisitorPages for one visitor, evicts the least recently
// used page first.
type WidgetHub struct {
	mu    sync.Mutex
	pages map[string]*widgetPage
	ttl   time.Duration
	now   func() time.Time

	MaxPages        int
	MaxVisitorPages int

	// OnMount is called with +1 or -1 whenever a widget mounts or unmounts.
	OnMount func(delta int)
}

// NewWidgetHub creates a hub that forgets pages idle for ttl.
func NewWidgetHub(ttl time.Duration) *WidgetHub {
	return &WidgetHub{
		pages:           make(map[string]*widgetPage),
		ttl:             ttl,
		now:             time.Now,
		MaxPages:        defaultMaxPages,
		MaxVisitorPages: defaultMaxVisitorPages,
	}
}

// widgetBounds is the element id covering a variant's markup.
func widgetBounds(variant string) search.ElementBounds {
	return search.ElementBounds("search-" + variant)
}

func (h *WidgetHub) pageLocked(key string) *widgetPage {
	p, ok := h.pages[key]
	if !ok {
		visitor, _, _ := strings.Cut(key, ":")
		h.makeRoomLocked(visitor)
		p = &widgetPage{
			visitor: visitor,
			bus:     search.NewPointerBus(),
			widgets: make(map[string]*search.Widget),
		}
		h.pages[key] = p
	}
	p.seen = h.now()
	return p
}

// makeRoomLocked evicts least recently used pages until one more page for
// visitor fits under both limits.
func (h *WidgetHub) makeRoomLocked(visitor string) {
	for h.MaxVisitorPages > 0 && h.countLocked(visitor) >= h.MaxVisitorPages {
		h.evictOldestLocked(visitor)
	}
	for h.MaxPages > 0 && len(h.pages) >= h.MaxPages {
		h.evictOldestLocked("")
	}
}

func (h *WidgetHub) countLocked(visitor string) int {
	n := 0
	for _, p := range h.pages {
		if p.visitor == visitor {
			n++
		}
	}
	return n
}

// evictOldestLocked drops the least recently seen page, limited to visitor
// unless visitor is "".
func (h *WidgetHub) evictOldestLocked(visitor string) {
	var oldestKey string
	var oldest *widgetPage
	for key, p := range h.pages {
		if visitor != "" && p.visitor != visitor {
			continue
		}
		if oldest == nil || p.seen.Before(oldest.seen) {
			oldestKey, oldest = key, p
		}
	}
	if oldest == nil {
		return
	}
	h.unmountPageLocked(oldest)
	delete(h.pages, oldestKey)
}

// Widget returns the page's widget for variant v, mounting it on first use.
// posts replaces the collection the widget searches.
func (h *WidgetHub) Widget(key string, v search.Variant, posts []search.Post) (*search.Widget, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.pageLocked(key)
	if w, ok := p.widgets[v.Name]; ok {
		w.SetPosts(posts)
		return w, nil
	}
	w := search.NewWidget(v, posts)
	if err := w.Mount(p.bus, widgetBounds(v.Name)); err != nil {
		return nil, err
	}
	p.widgets[v.Name] = w
	h.mounted(1)
	return w, nil
}

// Pointer publishes a pointer-down on the page and reports which of its
// widgets are open afterwards.
func (h *WidgetHub) Pointer(key string, ev search.PointerEvent) map[string]bool {
	h.mu.Lock()
	p, ok := h.pages[key]
	if ok {
		p.seen = h.now()
	}
	h.mu.Unlock()

	open := make(map[string]bool)
	if !ok {
		return open
	}
	p.bus.Publish(ev)

	h.mu.Lock()
	defer h.mu.Unlock()
	for name, w := range p.widgets {
		open[name] = w.State().Open
	}
	return open
}

// Unmount removes one widget from a page, dropping the page when it is the
// last one.
func (h *WidgetHub) Unmount(key, variant string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.pages[key]
	if !ok {
		return
	}
	if w, ok := p.widgets[variant]; ok {
		w.Unmount()
		delete(p.widgets, variant)
		h.mounted(-1)
	}
	if len(p.widgets) == 0 {
		delete(h.pages, key)
	}
}

// Sweep unmounts every widget on pages idle past the TTL and returns how
// many pages were dropped.
func (h *WidgetHub) Sweep() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	cutoff := h.now().Add(-h.ttl)
	dropped := 0
	for key, p := range h.pages {
		if p.seen.After(cutoff) {
			continue
		}
		h.unmountPageLocked(p)
		delete(h.pages, key)
		dropped++
	}
	return dropped
}

// Run sweeps idle pages every interval until ctx is done, then unmounts
// everything.
func (h *WidgetHub) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer h.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Sweep()
		}
	}
}

// Close unmounts every widget on every page.
func (h *WidgetHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, p := range h.pages {
		h.unmountPageLocked(p)
		delete(h.pages, key)
	}
}

// Pages returns the number of tracked pages.
func (h *WidgetHub) Pages() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pages)
}

func (h *WidgetHub) unmountPageLocked(p *widgetPage) {
	for name, w := range p.widgets {
		w.Unmount()
		delete(p.widgets, name)
		h.mounted(-1)
	}
}

func (h *WidgetHub) mounted(delta int) {
	if h.OnMount != nil {
		h.OnMount(delta)
	}
}
