// Package feedback carries the success and failure signals a workflow emits
// when an operation settles. Hosts map them onto whatever output they have
// (haptics, a terminal bell, a toast); the workflows only know the Notifier
// interface.
package feedback

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// Kind identifies a feedback signal
type Kind int

const (
	Success Kind = iota + 1
	Failure
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Notifier receives feedback signals. Implementations should return quickly.
type Notifier interface {
	Notify(ctx context.Context, kind Kind)
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(ctx context.Context, kind Kind)

// Notify implements Notifier
func (f NotifierFunc) Notify(ctx context.Context, kind Kind) {
	f(ctx, kind)
}

// Noop discards every signal
type Noop struct{}

func (Noop) Notify(ctx context.Context, kind Kind) {}

// LogNotifier writes each signal to a slog.Logger
type LogNotifier struct {
	Logger *slog.Logger
	Source string
}

// NewLogNotifier creates a LogNotifier. If logger is nil, slog.Default() is used.
func NewLogNotifier(logger *slog.Logger, source string) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{Logger: logger, Source: source}
}

func (n *LogNotifier) Notify(ctx context.Context, kind Kind) {
	n.Logger.InfoContext(ctx, "feedback", "kind", kind.String(), "source", n.Source)
}

// Recorder keeps every signal it receives, in order
type Recorder struct {
	mu    sync.Mutex
	kinds []Kind
}

func (r *Recorder) Notify(ctx context.Context, kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
}

// Kinds returns a copy of the recorded signals
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, len(r.kinds))
	copy(out, r.kinds)
	return out
}

// Multi fans a signal out to every non-nil notifier
func Multi(notifiers ...Notifier) Notifier {
	filtered := make([]Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			filtered = append(filtered, n)
		}
	}
	switch len(filtered) {
	case 0:
		return Noop{}
	case 1:
		return filtered[0]
	}
	return multiNotifier(filtered)
}

type multiNotifier []Notifier

func (m multiNotifier) Notify(ctx context.Context, kind Kind) {
	for _, n := range m {
		n.Notify(ctx, kind)
	}
}

// Bell rings the terminal bell: once for success, twice for failure
type Bell struct {
	W io.Writer
}

func (b Bell) Notify(ctx context.Context, kind Kind) {
	switch kind {
	case Success:
		_, _ = io.WriteString(b.W, "\a")
	case Failure:
		_, _ = io.WriteString(b.W, "\a\a")
	}
}
