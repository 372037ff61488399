package poll

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"tidewatch/internal/config"
	"tidewatch/internal/sensor"
)

// Manager owns one coordinator per configured entry and runs them all on
// their own intervals. Entries can be added while the manager is running;
// the setup flow does exactly that.
type Manager struct {
	logger *slog.Logger

	mu      sync.RWMutex
	coords  []*Coordinator
	byEntry map[string]*Coordinator
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger:  logger,
		byEntry: make(map[string]*Coordinator),
	}
}

// Add registers a coordinator. If the manager is already running the
// coordinator starts polling right away.
func (m *Manager) Add(c *Coordinator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := c.Entry().ID()
	if _, ok := m.byEntry[id]; ok {
		return fmt.Errorf("entry %q already registered", id)
	}
	m.coords = append(m.coords, c)
	m.byEntry[id] = c
	if m.running {
		m.launch(c)
	}
	return nil
}

// Start launches every registered coordinator. It returns immediately;
// polling continues until Stop or context cancellation.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.running = true
	for _, c := range m.coords {
		m.launch(c)
	}
	m.logger.Info("polling started", "entries", len(m.coords))
}

// launch starts one coordinator goroutine. Callers hold the lock.
func (m *Manager) launch(c *Coordinator) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		c.Run(m.ctx)
	}()
}

// Stop cancels all coordinators and waits for them to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.cancel()
	m.mu.Unlock()

	m.wg.Wait()
	m.logger.Info("polling stopped")
}

// Entries lists the configured entries in registration order.
func (m *Manager) Entries() []config.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]config.Entry, 0, len(m.coords))
	for _, c := range m.coords {
		out = append(out, c.Entry())
	}
	return out
}

// Sensors returns the latest state of every sensor across all entries.
func (m *Manager) Sensors() []sensor.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []sensor.State
	for _, c := range m.coords {
		out = append(out, c.States()...)
	}
	return out
}

// Sensor looks a single sensor up by id.
func (m *Manager) Sensor(id string) (sensor.State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.coords {
		for _, s := range c.States() {
			if s.ID == id {
				return s, true
			}
		}
	}
	return sensor.State{}, false
}

// Coordinator looks up the coordinator for an entry id.
func (m *Manager) Coordinator(entryID string) (*Coordinator, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.byEntry[entryID]
	return c, ok
}
