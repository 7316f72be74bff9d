package stream

import (
	"sync"
	"time"

	"github.com/kylemclaren/clockbar/internal/display"
)

// Update is a status line stamped with the time it was published
type Update struct {
	Line      display.StatusLine `json:"line"`
	Timestamp time.Time          `json:"timestamp"`
}

// Client represents a connected SSE client
type Client struct {
	ID      string
	Updates chan Update
	Done    chan struct{}
}

// Manager fans status lines out to subscribed clients. It implements
// display.OutputSink so the refresher can publish into it directly.
type Manager struct {
	clients map[string]*Client
	last    *Update
	mu      sync.RWMutex
	now     func() time.Time
}

// NewManager creates a new stream manager
func NewManager() *Manager {
	return &Manager{
		clients: make(map[string]*Client),
		now:     time.Now,
	}
}

// Subscribe registers a client. The latest line, if any, is delivered
// immediately so a new client never starts blank.
func (m *Manager) Subscribe(clientID string) *Client {
	client := &Client{
		ID:      clientID,
		Updates: make(chan Update, 16),
		Done:    make(chan struct{}),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.last != nil {
		client.Updates <- *m.last
	}
	m.clients[clientID] = client
	return client
}

// Unsubscribe removes a client
func (m *Manager) Unsubscribe(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if client, ok := m.clients[clientID]; ok {
		close(client.Done)
		delete(m.clients, clientID)
	}
}

// Emit publishes a line to every client. Slow clients drop lines rather
// than stalling the refresher.
func (m *Manager) Emit(line display.StatusLine) error {
	update := Update{Line: line, Timestamp: m.now()}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.last = &update
	for _, client := range m.clients {
		select {
		case client.Updates <- update:
		default:
			// Client channel full, skip
		}
	}
	return nil
}

// Latest returns the last published line
func (m *Manager) Latest() (Update, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.last == nil {
		return Update{}, false
	}
	return *m.last, true
}

// ClientCount returns the number of connected clients
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}
