// Package toast queues short notifications for display. The web front end
// drains a session's queue into each response; the browser fades every toast
// in, shows it for its duration and fades it out. The CLI prints them.
package toast

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind selects the toast styling
type Kind string

const (
	Info    Kind = "info"
	Success Kind = "success"
	Error   Kind = "error"
)

// Timing of a toast on screen
const (
	FadeIn          = 50 * time.Millisecond
	DefaultDuration = 3 * time.Second
	FadeOut         = 300 * time.Millisecond
)

const (
	// pendingTTL bounds how long an undrained toast waits for a page render
	pendingTTL = 30 * time.Second
	maxPerKey  = 20
)

// Toast is one queued message
type Toast struct {
	ID        string
	Message   string
	Kind      Kind
	Duration  time.Duration
	CreatedAt time.Time
}

// DurationMillis is the display time handed to the browser timer
func (t Toast) DurationMillis() int64 {
	return t.Duration.Milliseconds()
}

// Notifier shows toasts to one user
type Notifier interface {
	Show(message string, kind Kind)
}

// Board holds pending toasts per session key. Containers are created on the
// first toast for a key and dropped once drained.
type Board struct {
	mu       sync.Mutex
	byKey    map[string][]Toast
	duration time.Duration
	now      func() time.Time
}

var (
	defaultBoard *Board
	defaultOnce  sync.Once
)

// Default returns the process-wide board
func Default() *Board {
	defaultOnce.Do(func() {
		defaultBoard = NewBoard(DefaultDuration)
	})
	return defaultBoard
}

// NewBoard creates a board whose toasts display for duration
func NewBoard(duration time.Duration) *Board {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Board{
		byKey:    make(map[string][]Toast),
		duration: duration,
		now:      time.Now,
	}
}

// SetDuration changes the display time of toasts queued from now on
func (b *Board) SetDuration(d time.Duration) {
	if d <= 0 {
		return
	}
	b.mu.Lock()
	b.duration = d
	b.mu.Unlock()
}

// Add queues a toast for key and returns it
func (b *Board) Add(key, message string, kind Kind) Toast {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := Toast{
		ID:        uuid.NewString(),
		Message:   message,
		Kind:      kind,
		Duration:  b.duration,
		CreatedAt: b.now(),
	}
	if key == "" {
		return t
	}

	queue := append(b.byKey[key], t)
	if len(queue) > maxPerKey {
		queue = queue[len(queue)-maxPerKey:]
	}
	b.byKey[key] = queue
	return t
}

// Drain returns the live toasts for key, oldest first, and removes them
func (b *Board) Drain(key string) []Toast {
	b.mu.Lock()
	defer b.mu.Unlock()

	queue := b.byKey[key]
	delete(b.byKey, key)
	if len(queue) == 0 {
		return nil
	}

	cutoff := b.now().Add(-pendingTTL)
	live := make([]Toast, 0, len(queue))
	for _, t := range queue {
		if t.CreatedAt.Before(cutoff) {
			continue
		}
		live = append(live, t)
	}
	if len(live) == 0 {
		return nil
	}
	return live
}

// Pending reports how many toasts wait for key
func (b *Board) Pending(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.byKey[key])
}

// Forget drops everything queued for key
func (b *Board) Forget(key string) {
	b.mu.Lock()
	delete(b.byKey, key)
	b.mu.Unlock()
}

// For returns a notifier bound to key
func (b *Board) For(key string) Notifier {
	return scoped{board: b, key: key}
}

type scoped struct {
	board *Board
	key   string
}

func (s scoped) Show(message string, kind Kind) {
	s.board.Add(s.key, message, kind)
}

// WriterNotifier prints toasts as lines, for terminal use
type WriterNotifier struct {
	W io.Writer
}

func (n WriterNotifier) Show(message string, kind Kind) {
	prefix := "•"
	switch kind {
	case Success:
		prefix = "✓"
	case Error:
		prefix = "✗"
	}
	fmt.Fprintf(n.W, "%s %s\n", prefix, message)
}

// Recorder keeps every toast it is shown
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *Recorder) Show(message string, kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, Toast{Message: message, Kind: kind})
}

// Toasts returns a copy of what was shown
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}

// Messages returns the shown messages of kind
func (r *Recorder) Messages(kind Kind) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, t := range r.toasts {
		if t.Kind == kind {
			out = append(out, t.Message)
		}
	}
	return out
}

// Reset forgets recorded toasts
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.toasts = nil
	r.mu.Unlock()
}
