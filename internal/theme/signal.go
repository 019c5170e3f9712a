package theme

import (
	"slices"
	"sync"

	"github.com/muesli/termenv"
)

// SystemSignal reports the environment's dark-appearance preference.
type SystemSignal interface {
	IsDark() bool
	// Watch calls fn with the current value whenever it changes. The
	// returned func deregisters fn.
	Watch(fn func(dark bool)) (stop func())
}

// watchers is a registry of change callbacks.
type watchers struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func(bool)
}

func (w *watchers) add(fn func(bool)) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fns == nil {
		w.fns = make(map[int]func(bool))
	}
	w.nextID++
	w.fns[w.nextID] = fn
	return w.nextID
}

func (w *watchers) remove(id int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.fns, id)
}

func (w *watchers) notify(dark bool) {
	w.mu.Lock()
	ids := make([]int, 0, len(w.fns))
	for id := range w.fns {
		ids = append(ids, id)
	}
	fns := make([]func(bool), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, w.fns[id])
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(dark)
	}
}

// TerminalSignal reports the terminal background color read once, when
// the signal is created. Create it before the Bubble Tea program starts:
// the query writes to the tty and reads the reply, which would race the
// program's input reader. The value never changes afterwards, so Watch
// callbacks never fire.
type TerminalSignal struct {
	dark bool
}

// NewTerminalSignal queries the terminal through termenv.
func NewTerminalSignal() *TerminalSignal {
	return newTerminalSignal(termenv.HasDarkBackground)
}

func newTerminalSignal(probe func() bool) *TerminalSignal {
	return &TerminalSignal{dark: probe()}
}

// IsDark implements SystemSignal.
func (s *TerminalSignal) IsDark() bool {
	return s.dark
}

// Watch implements SystemSignal.
func (s *TerminalSignal) Watch(fn func(dark bool)) func() {
	return func() {}
}

// ManualSignal is a SystemSignal whose value is set explicitly. It stands in
// for the terminal when stdout is not a TTY.
type ManualSignal struct {
	mu       sync.Mutex
	dark     bool
	watchers watchers
}

// NewManualSignal returns a ManualSignal reporting dark.
func NewManualSignal(dark bool) *ManualSignal {
	return &ManualSignal{dark: dark}
}

// IsDark implements SystemSignal.
func (s *ManualSignal) IsDark() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dark
}

// Set changes the reported value and notifies watchers when it differs.
func (s *ManualSignal) Set(dark bool) {
	s.mu.Lock()
	changed := s.dark != dark
	s.dark = dark
	s.mu.Unlock()
	if changed {
		s.watchers.notify(dark)
	}
}

// Watch implements SystemSignal.
func (s *ManualSignal) Watch(fn func(dark bool)) func() {
	if fn == nil {
		return func() {}
	}
	id := s.watchers.add(fn)
	var once sync.Once
	return func() {
		once.Do(func() { s.watchers.remove(id) })
	}
}

var (
	_ SystemSignal = (*TerminalSignal)(nil)
	_ SystemSignal = (*ManualSignal)(nil)
)
