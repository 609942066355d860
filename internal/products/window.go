package product

import (
	"sync"
	"sync/atomic"
)

// DefaultPageSize is the number of products revealed per batch.
const DefaultPageSize = 9

// Window is the growing visible prefix of a sorted product list.
type Window struct {
	pageSize int
	inFlight atomic.Bool

	mu           sync.Mutex
	displayCount int
}

func NewWindow(pageSize int) *Window {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Window{pageSize: pageSize, displayCount: pageSize}
}

func (w *Window) PageSize() int {
	return w.pageSize
}

func (w *Window) DisplayCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.displayCount
}

// HasMore reports whether a list of total items extends past the window.
func (w *Window) HasMore(total int) bool {
	return w.DisplayCount() < total
}

// Visible returns the windowed prefix of sorted without copying.
func Visible[T any](w *Window, sorted []T) []T {
	n := min(w.DisplayCount(), len(sorted))
	return sorted[:n]
}

// LoadMore grows the window by one page, capped at total. It reports false
// when another LoadMore was already in flight, in which case nothing changes.
func (w *Window) LoadMore(total int) bool {
	if !w.inFlight.CompareAndSwap(false, true) {
		return false
	}
	defer w.inFlight.Store(false)

	w.mu.Lock()
	defer w.mu.Unlock()
	next := min(w.displayCount+w.pageSize, total)
	if next > w.displayCount {
		w.displayCount = next
	}
	return true
}

// Reset returns the window to a single page.
func (w *Window) Reset() {
	w.mu.Lock()
	w.displayCount = w.pageSize
	w.mu.Unlock()
}
