package system

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrSystemExists   = errors.New("system already registered")
	ErrSystemNotFound = errors.New("system not found")
)

// System is one stage of a simulation frame.
type System interface {
	Name() string
	Update(dt float64) error
}

type funcSystem struct {
	name string
	fn   func(dt float64) error
}

func (s funcSystem) Name() string            { return s.name }
func (s funcSystem) Update(dt float64) error { return s.fn(dt) }

// Func wraps fn as a System.
func Func(name string, fn func(dt float64) error) System {
	return funcSystem{name: name, fn: fn}
}

// ManagerMetrics provides system manager statistics
type ManagerMetrics struct {
	RegisteredSystems uint32
	EnabledSystems    uint32
	Updates           uint64
	TotalUpdateTime   time.Duration
	LastUpdateTime    time.Time
	SystemErrorCount  map[string]uint32
}

type entry struct {
	system  System
	enabled bool
}

// Manager runs registered systems once per frame in registration order.
type Manager struct {
	mu      sync.RWMutex
	entries []*entry
	metrics ManagerMetrics
	onError func(name string, err error)
}

func NewManager() *Manager {
	return &Manager{metrics: ManagerMetrics{SystemErrorCount: make(map[string]uint32)}}
}

func (m *Manager) RegisterSystem(s System) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findLocked(s.Name()) != nil {
		return fmt.Errorf("%w: %s", ErrSystemExists, s.Name())
	}
	m.entries = append(m.entries, &entry{system: s, enabled: true})
	return nil
}

func (m *Manager) UnregisterSystem(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.system.Name() == name {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrSystemNotFound, name)
}

func (m *Manager) EnableSystem(name string) error  { return m.setEnabled(name, true) }
func (m *Manager) DisableSystem(name string) error { return m.setEnabled(name, false) }

func (m *Manager) setEnabled(name string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.findLocked(name)
	if e == nil {
		return fmt.Errorf("%w: %s", ErrSystemNotFound, name)
	}
	e.enabled = enabled
	return nil
}

// GetExecutionOrder lists enabled and disabled systems in the order Update runs them.
func (m *Manager) GetExecutionOrder() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, len(m.entries))
	for i, e := range m.entries {
		names[i] = e.system.Name()
	}
	return names
}

// OnSystemError registers a hook called when a system fails.
func (m *Manager) OnSystemError(fn func(name string, err error)) {
	m.mu.Lock()
	m.onError = fn
	m.mu.Unlock()
}

// Update runs every enabled system. The first failure aborts the frame.
func (m *Manager) Update(dt float64) error {
	m.mu.RLock()
	entries := make([]*entry, 0, len(m.entries))
	for _, e := range m.entries {
		if e.enabled {
			entries = append(entries, e)
		}
	}
	onError := m.onError
	m.mu.RUnlock()

	start := time.Now()
	var failed error
	for _, e := range entries {
		if err := e.system.Update(dt); err != nil {
			failed = fmt.Errorf("system %s: %w", e.system.Name(), err)
			m.mu.Lock()
			m.metrics.SystemErrorCount[e.system.Name()]++
			m.mu.Unlock()
			if onError != nil {
				onError(e.system.Name(), err)
			}
			break
		}
	}

	m.mu.Lock()
	m.metrics.Updates++
	m.metrics.TotalUpdateTime += time.Since(start)
	m.metrics.LastUpdateTime = start
	m.mu.Unlock()
	return failed
}

func (m *Manager) GetMetrics() ManagerMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.metrics
	out.RegisteredSystems = uint32(len(m.entries))
	for _, e := range m.entries {
		if e.enabled {
			out.EnabledSystems++
		}
	}
	out.SystemErrorCount = make(map[string]uint32, len(m.metrics.SystemErrorCount))
	for k, v := range m.metrics.SystemErrorCount {
		out.SystemErrorCount[k] = v
	}
	return out
}

func (m *Manager) findLocked(name string) *entry {
	for _, e := range m.entries {
		if e.system.Name() == name {
			return e
		}
	}
	return nil
}
