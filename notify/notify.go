// Package notify holds the transient toast queue shared by the UI and
// background work.
package notify

import (
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	// DefaultWidth is the column width notification bodies are wrapped to.
	DefaultWidth = 40
	// ErrorTTL is how long an error notification stays visible.
	ErrorTTL = 5 * time.Second
	// ErrorTitle is the title used for every background failure.
	ErrorTitle = "Error Occurred"
)

// ColorPair is the foreground/background of a toast.
type ColorPair struct {
	Fg lipgloss.Color
	Bg lipgloss.Color
}

var (
	DangerPair  = ColorPair{Fg: lipgloss.Color("#ffffff"), Bg: lipgloss.Color("#eb6f92")}
	SuccessPair = ColorPair{Fg: lipgloss.Color("#232136"), Bg: lipgloss.Color("#9ccfd8")}
	InfoPair    = ColorPair{Fg: lipgloss.Color("#232136"), Bg: lipgloss.Color("#c4a7e7")}
)

// Notification is a single toast. Body is empty when the toast has no text.
type Notification struct {
	Title   string
	Body    string
	Colors  ColorPair
	TTL     time.Duration
	Created time.Time
}

// Expired reports whether the notification is hidden at now. A notification
// is visible while the elapsed time is at most its TTL.
func (n Notification) Expired(now time.Time) bool {
	return now.Sub(n.Created) > n.TTL
}

// Notifier is the producer/consumer view of a notification queue.
type Notifier interface {
	Push(title, body string, colors ColorPair, ttl time.Duration)
	Poll() []Notification
}

// Option configures a Queue.
type Option func(*Queue)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// WithWidth sets the body wrap width.
func WithWidth(width int) Option {
	return func(q *Queue) {
		if width > 0 {
			q.width = width
		}
	}
}

// Queue is a mutex-guarded Notifier. Expired entries are dropped lazily on the
// next Push or Poll.
type Queue struct {
	mu    sync.Mutex
	items []Notification
	now   func() time.Time
	width int
}

// NewQueue returns an empty queue.
func NewQueue(opts ...Option) *Queue {
	q := &Queue{now: time.Now, width: DefaultWidth}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Push wraps body and appends a notification created now.
func (q *Queue) Push(title, body string, colors ColorPair, ttl time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	wrapped := Wrap(body, q.width)
	now := q.now()
	q.evictLocked(now)
	q.items = append(q.items, Notification{
		Title:   title,
		Body:    wrapped,
		Colors:  colors,
		TTL:     ttl,
		Created: now,
	})
}

// SetWidth changes the wrap width for later pushes. Non-positive widths are
// ignored.
func (q *Queue) SetWidth(width int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	WithWidth(width)(q)
}

// Poll evicts expired notifications and returns the rest in insertion order.
func (q *Queue) Poll() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.evictLocked(q.now())
	out := make([]Notification, len(q.items))
	copy(out, q.items)
	return out
}

// Error pushes the standard failure toast.
func Error(n Notifier, body string) {
	n.Push(ErrorTitle, body, DangerPair, ErrorTTL)
}

func (q *Queue) evictLocked(now time.Time) {
	kept := q.items[:0]
	for _, n := range q.items {
		if !n.Expired(now) {
			kept = append(kept, n)
		}
	}
	// clear the tail so evicted entries can be collected
	for i := len(kept); i < len(q.items); i++ {
		q.items[i] = Notification{}
	}
	q.items = kept
}

var shared = sync.OnceValue(func() *Queue { return NewQueue() })

// Shared returns the process-wide queue. Only the entry point should use it;
// everything else receives a Notifier.
func Shared() *Queue {
	return shared()
}

// Wrap greedily fills lines up to width display columns. Existing newlines
// are kept as hard breaks and a word wider than width gets a line of its own.
// Wrap(Wrap(s, w), w) == Wrap(s, w).
func Wrap(text string, width int) string {
	if text == "" {
		return ""
	}
	if width <= 0 {
		width = DefaultWidth
	}

	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		lineWidth := runewidth.StringWidth(line)
		for _, w := range words[1:] {
			ww := runewidth.StringWidth(w)
			if lineWidth+1+ww > width {
				out = append(out, line)
				line, lineWidth = w, ww
				continue
			}
			line += " " + w
			lineWidth += 1 + ww
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
