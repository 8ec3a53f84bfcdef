package search

import (
	"errors"
	"strings"
	"sync"
)

// ErrMounted is returned when mounting a widget that is already mounted.
var ErrMounted = errors.New("search: widget already mounted")

// State is the transient state of one search widget.
type State struct {
	Query string
	Open  bool
}

// Widget is the interaction controller behind one search box. Each event is
// applied under the widget's lock, so the latest event always wins.
type Widget struct {
	variant Variant

	mu      sync.Mutex
	posts   []Post
	state   State
	release func()
}

// NewWidget returns an unmounted widget searching posts with variant v.
func NewWidget(v Variant, posts []Post) *Widget {
	return &Widget{variant: v, posts: posts}
}

// Variant returns the widget's presentation variant.
func (w *Widget) Variant() Variant {
	return w.variant
}

// Mount subscribes the widget to bus. A pointer-down outside bounds
// dismisses the dropdown. Every successful Mount must be paired with
// Unmount; the usual form is
//
//	if err := w.Mount(bus, bounds); err != nil { ... }
//	defer w.Unmount()
func (w *Widget) Mount(bus *PointerBus, bounds Bounds) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.release != nil {
		return ErrMounted
	}
	w.release = bus.Subscribe(func(ev PointerEvent) {
		if !bounds.Contains(ev.Target) {
			w.Dismiss()
		}
	})
	return nil
}

// Unmount releases the pointer subscription. It is a no-op when the widget
// is not mounted, so it may be called on every exit path.
func (w *Widget) Unmount() {
	w.mu.Lock()
	release := w.release
	w.release = nil
	w.mu.Unlock()
	if release != nil {
		release()
	}
}

// Mounted reports whether the widget currently holds a subscription.
func (w *Widget) Mounted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.release != nil
}

// SetPosts replaces the collection the widget searches.
func (w *Widget) SetPosts(posts []Post) {
	w.mu.Lock()
	w.posts = posts
	w.mu.Unlock()
}

// Type sets the query and opens the dropdown, even when text is empty.
func (w *Widget) Type(text string) {
	w.mu.Lock()
	w.state = State{Query: text, Open: true}
	w.mu.Unlock()
}

// Focus reopens the dropdown if there is a query to show results for.
func (w *Widget) Focus() {
	w.mu.Lock()
	if w.state.Query != "" {
		w.state.Open = true
	}
	w.mu.Unlock()
}

// Clear empties the query and closes the dropdown.
func (w *Widget) Clear() {
	w.mu.Lock()
	w.state = State{}
	w.mu.Unlock()
}

// Dismiss closes the dropdown and keeps the query.
func (w *Widget) Dismiss() {
	w.mu.Lock()
	w.state.Open = false
	w.mu.Unlock()
}

// SelectResult closes the dropdown after a result link was activated.
// Navigation itself is left to the link.
func (w *Widget) SelectResult() {
	w.Dismiss()
}

// State returns a snapshot of the widget state.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// View is what the widget should render right now.
type View struct {
	State   State
	Entries []Entry
	// Visible is false when the dropdown is closed or there is nothing to
	// search for.
	Visible   bool
	NoResults bool
	ShowCount bool
}

// View runs the current query and builds the dropdown contents.
func (w *Widget) View() View {
	w.mu.Lock()
	st, posts := w.state, w.posts
	w.mu.Unlock()

	v := View{State: st, ShowCount: w.variant.ShowCount}
	if !st.Open || strings.TrimSpace(st.Query) == "" {
		return v
	}
	matches := Search(st.Query, posts, w.variant.Options)
	v.Visible = true
	v.Entries = Entries(matches, st.Query, w.variant)
	v.NoResults = len(v.Entries) == 0
	return v
}
