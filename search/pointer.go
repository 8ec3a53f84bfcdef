package search

import (
	"strings"
	"sync"
)

// PointerEvent is a pointer-down somewhere on the page. Target is the id of
// the element under the pointer.
type PointerEvent struct {
	Target string
}

// Bounds reports whether a pointer target lies inside a widget.
type Bounds interface {
	Contains(target string) bool
}

// ElementBounds covers the element with this id and every element whose id
// extends it with a "-" suffix, e.g. "search-bar" covers "search-bar-input".
type ElementBounds string

// Contains implements Bounds.
func (b ElementBounds) Contains(target string) bool {
	root := string(b)
	return target == root || strings.HasPrefix(target, root+"-")
}

// PointerBus fans page-level pointer events out to subscribed widgets.
type PointerBus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(PointerEvent)
}

// NewPointerBus returns an empty bus.
func NewPointerBus() *PointerBus {
	return &PointerBus{subs: make(map[int]func(PointerEvent))}
}

// Subscribe registers fn and returns the function that removes it. The
// returned cancel is safe to call more than once.
func (b *PointerBus) Subscribe(fn func(PointerEvent)) (cancel func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers ev to every current subscriber. Listeners run outside the
// bus lock, so a listener may unsubscribe itself.
func (b *PointerBus) Publish(ev PointerEvent) {
	b.mu.Lock()
	fns := make([]func(PointerEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Len returns the number of live subscriptions.
func (b *PointerBus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
