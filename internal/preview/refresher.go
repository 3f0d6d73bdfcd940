package preview

import (
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/academy/internal/domain"
)

// Target receives synthesized documents. Each SetDocument is a full
// replacement of the previous document, never a partial patch.
type Target interface {
	SetDocument(doc string)
}

// Document is a Target that holds the latest synthesized document
// behind a mutex, for serving to an isolated frame.
type Document struct {
	mu  sync.RWMutex
	doc string
}

func (d *Document) SetDocument(doc string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doc = doc
}

// Get returns the current document.
func (d *Document) Get() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.doc
}

// DefaultDebounce is the quiet period between an edit and the rebuild.
const DefaultDebounce = 500 * time.Millisecond

// Refresher regenerates a preview document on code changes, debounced
// so rapid keystrokes do not rebuild per character, with an immediate
// path for explicit refresh actions.
type Refresher struct {
	target   Target
	debounce *Debouncer
}

// NewRefresher creates a refresher writing to target. A non-positive
// delay falls back to DefaultDebounce.
func NewRefresher(target Target, delay time.Duration) *Refresher {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Refresher{
		target:   target,
		debounce: NewDebouncer(delay),
	}
}

// CodeChanged schedules a debounced rebuild for the given source.
// Non-web languages are ignored.
func (r *Refresher) CodeChanged(lang domain.Language, source string) {
	if !lang.IsWeb() {
		return
	}
	r.debounce.Trigger(func() {
		r.render(lang, source)
	})
}

// Refresh rebuilds immediately, bypassing the debounce. Used for the
// explicit manual refresh action and for Run on web languages.
func (r *Refresher) Refresh(lang domain.Language, source string) {
	r.debounce.Cancel()
	r.render(lang, source)
}

// Close drops any pending rebuild.
func (r *Refresher) Close() {
	r.debounce.Cancel()
}

func (r *Refresher) render(lang domain.Language, source string) {
	doc, err := Synthesize(lang, source)
	if err != nil {
		slog.Warn("preview synthesis failed", "language", lang, "error", err)
		return
	}
	r.target.SetDocument(doc)
}
