package theme

import (
	"sync"

	"go.uber.org/zap"
)

// Store is the process-wide appearance state.
//
// The applied marker holds light or dark; system mode is the marker's
// absence. Until InitMode or SetMode runs, Mode falls back to the persisted
// value. The zero value is not usable; call NewStore.
type Store struct {
	storage Storage
	signal  SystemSignal
	logger  *zap.Logger

	mu        sync.RWMutex
	applied   bool
	marker    Mode
	hasMarker bool
	scheme    string

	watchMu sync.Mutex
	nextID  int
	stops   map[int]func()
}

// Option customizes a Store.
type Option func(*Store)

// WithStorage sets where the mode is persisted. A nil storage disables
// persistence.
func WithStorage(s Storage) Option {
	return func(st *Store) {
		st.storage = s
	}
}

// WithSignal sets the source of the system preference. Without one, system
// mode renders light.
func WithSignal(s SystemSignal) Option {
	return func(st *Store) {
		st.signal = s
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(st *Store) {
		if l != nil {
			st.logger = l
		}
	}
}

// NewStore creates a Store. Nothing is applied until InitMode.
func NewStore(opts ...Option) *Store {
	s := &Store{
		logger: zap.NewNop(),
		scheme: Scheme(false),
		stops:  make(map[int]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode returns the current mode, defaulting to System.
func (s *Store) Mode() Mode {
	if s == nil {
		return System
	}
	s.mu.RLock()
	applied, marker, hasMarker := s.applied, s.marker, s.hasMarker
	s.mu.RUnlock()

	if hasMarker {
		return marker
	}
	if applied {
		return System
	}
	return s.persisted()
}

// Marker returns the applied marker. It is absent in system mode.
func (s *Store) Marker() (Mode, bool) {
	if s == nil {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.marker, s.hasMarker
}

// ColorScheme returns the last applied appearance, "light" or "dark".
func (s *Store) ColorScheme() string {
	if s == nil {
		return Scheme(false)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scheme
}

// IsDark resolves the effective appearance for the current mode.
func (s *Store) IsDark() bool {
	switch s.Mode() {
	case Dark:
		return true
	case Light:
		return false
	default:
		return s.systemDark()
	}
}

// SetMode applies and persists m. Unknown modes are ignored.
func (s *Store) SetMode(m Mode) {
	if s == nil {
		return
	}
	if !m.Valid() {
		s.logger.Debug("ignoring unknown theme mode", zap.String("mode", string(m)))
		return
	}
	s.apply(m)
	s.persist(m)
}

// InitMode applies the persisted mode. Call it before the first frame.
func (s *Store) InitMode() Mode {
	if s == nil {
		return System
	}
	m := s.persisted()
	s.apply(m)
	s.logger.Debug("theme initialized",
		zap.String("mode", string(m)),
		zap.String("scheme", s.ColorScheme()))
	return m
}

// WatchSystem calls fn with the system preference on every change, whatever
// the current mode. In system mode the color scheme follows the change
// before fn runs. The returned func deregisters fn.
func (s *Store) WatchSystem(fn func(dark bool)) (unsubscribe func()) {
	if s == nil || s.signal == nil || fn == nil {
		return func() {}
	}
	stop := s.signal.Watch(func(dark bool) {
		if s.Mode() == System {
			s.setScheme(dark)
		}
		fn(dark)
	})

	s.watchMu.Lock()
	s.nextID++
	id := s.nextID
	s.stops[id] = stop
	s.watchMu.Unlock()

	return func() {
		s.watchMu.Lock()
		stop, ok := s.stops[id]
		delete(s.stops, id)
		s.watchMu.Unlock()
		if ok {
			stop()
		}
	}
}

// Close deregisters every WatchSystem callback.
func (s *Store) Close() {
	if s == nil {
		return
	}
	s.watchMu.Lock()
	stops := s.stops
	s.stops = make(map[int]func())
	s.watchMu.Unlock()

	for _, stop := range stops {
		stop()
	}
}

func (s *Store) apply(m Mode) {
	s.mu.Lock()
	s.applied = true
	if m == System {
		s.marker, s.hasMarker = "", false
	} else {
		s.marker, s.hasMarker = m, true
	}
	s.mu.Unlock()

	s.setScheme(s.IsDark())
}

func (s *Store) setScheme(dark bool) {
	s.mu.Lock()
	s.scheme = Scheme(dark)
	s.mu.Unlock()
}

func (s *Store) systemDark() bool {
	if s == nil || s.signal == nil {
		return false
	}
	return s.signal.IsDark()
}

func (s *Store) persisted() Mode {
	if s.storage == nil {
		return System
	}
	raw, err := s.storage.LoadMode()
	if err != nil {
		s.logger.Debug("theme storage unavailable", zap.Error(err))
		return System
	}
	if raw == "" {
		return System
	}
	m, err := ParseMode(raw)
	if err != nil {
		s.logger.Debug("ignoring stored theme mode", zap.String("stored", raw))
		return System
	}
	return m
}

func (s *Store) persist(m Mode) {
	if s.storage == nil {
		return
	}
	if err := s.storage.SaveMode(string(m)); err != nil {
		s.logger.Warn("failed to persist theme mode", zap.String("mode", string(m)), zap.Error(err))
	}
}
