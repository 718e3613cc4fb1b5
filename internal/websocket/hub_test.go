package websocket

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient is a test double for Client that captures sent messages
type mockClient struct {
	id        string
	sessionID uuid.UUID
	messages  [][]byte
	mu        sync.Mutex
	closed    bool
}

func newMockClient(id string, sessionID uuid.UUID) *mockClient {
	return &mockClient{
		id:        id,
		sessionID: sessionID,
		messages:  make([][]byte, 0),
	}
}

func (m *mockClient) ID() string {
	return m.id
}

func (m *mockClient) SessionID() uuid.UUID {
	return m.sessionID
}

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockClient) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]byte, len(m.messages))
	copy(copied, m.messages)
	return copied
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	session1 := uuid.New()
	session2 := uuid.New()

	client1 := newMockClient("client-1", session1)
	client2 := newMockClient("client-2", session1)
	client3 := newMockClient("client-3", session2)

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	assert.Equal(t, 2, hub.ClientCount(session1))
	assert.Equal(t, 1, hub.ClientCount(session2))
	assert.Equal(t, 0, hub.ClientCount(uuid.New()))
	assert.Equal(t, 3, hub.TotalClientCount())

	// Unregister one tab of session 1
	hub.Unregister(client1)
	assert.Equal(t, 1, hub.ClientCount(session1))

	hub.Unregister(client2)
	hub.Unregister(client3)
	assert.Equal(t, 0, hub.ClientCount(session1))
	assert.Equal(t, 0, hub.ClientCount(session2))
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHub_Broadcast_SessionIsolation(t *testing.T) {
	hub := NewHub()
	session1 := uuid.New()
	session2 := uuid.New()

	client1a := newMockClient("client-1a", session1)
	client1b := newMockClient("client-1b", session1)
	client2 := newMockClient("client-2", session2)

	hub.Register(client1a)
	hub.Register(client1b)
	hub.Register(client2)

	hub.Broadcast(session1, CategoryCreated(map[string]interface{}{"_id": "42"}))

	// Give goroutines time to process
	time.Sleep(10 * time.Millisecond)

	assert.Len(t, client1a.GetMessages(), 1, "client1a should receive 1 message")
	assert.Len(t, client1b.GetMessages(), 1, "client1b should receive 1 message")
	assert.Len(t, client2.GetMessages(), 0, "client2 should not receive message from session 1")
}

func TestHub_ConcurrentAccess(t *testing.T) {
	hub := NewHub()

	sessions := make([]uuid.UUID, 5)
	for i := range sessions {
		sessions[i] = uuid.New()
	}

	var wg sync.WaitGroup
	clientCount := 50

	clients := make([]*mockClient, clientCount)
	for i := 0; i < clientCount; i++ {
		clients[i] = newMockClient(uuid.New().String(), sessions[i%5])
	}

	for i := 0; i < clientCount; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			hub.Register(clients[idx])
		}(i)
	}
	wg.Wait()

	assert.Equal(t, clientCount, hub.TotalClientCount())

	// Concurrently broadcast and unregister
	for i := 0; i < clientCount; i++ {
		wg.Add(2)
		go func(idx int) {
			defer wg.Done()
			hub.Broadcast(sessions[idx%5], CategoryUpdated(map[string]interface{}{"_id": idx}))
		}(i)
		go func(idx int) {
			defer wg.Done()
			hub.Unregister(clients[idx])
		}(i)
	}
	wg.Wait()

	for _, s := range sessions {
		assert.Equal(t, 0, hub.ClientCount(s))
	}
}

func TestHub_UnregisterNonexistent(t *testing.T) {
	hub := NewHub()
	client := newMockClient("client-1", uuid.New())

	require.NotPanics(t, func() {
		hub.Unregister(client)
	})
}

func TestHub_BroadcastToEmptySession(t *testing.T) {
	hub := NewHub()

	require.NotPanics(t, func() {
		hub.Broadcast(uuid.New(), CategoryDeleted(map[string]interface{}{"_id": "1"}))
	})
}

func TestHub_CloseSession(t *testing.T) {
	hub := NewHub()
	session1 := uuid.New()
	session2 := uuid.New()

	client1 := newMockClient("client-1", session1)
	client2 := newMockClient("client-2", session2)
	hub.Register(client1)
	hub.Register(client2)

	hub.CloseSession(session1)

	assert.True(t, client1.IsClosed())
	assert.False(t, client2.IsClosed())
	assert.Equal(t, 0, hub.ClientCount(session1))
	assert.Equal(t, 1, hub.ClientCount(session2))
}

// slowClient always reports a full buffer
type slowClient struct {
	*mockClient
}

func (s *slowClient) Send(data []byte) error {
	return ErrSlowClient
}

func TestHub_Broadcast_DropsSlowClient(t *testing.T) {
	hub := NewHub()
	sessionID := uuid.New()

	slow := &slowClient{newMockClient("slow", sessionID)}
	fast := newMockClient("fast", sessionID)
	hub.Register(slow)
	hub.Register(fast)

	hub.Broadcast(sessionID, CategoryDeleted(map[string]interface{}{"_id": "1"}))

	assert.True(t, slow.IsClosed())
	assert.Equal(t, 1, hub.ClientCount(sessionID))
	assert.Len(t, fast.GetMessages(), 1)
}

func TestHub_Broadcast_PreservesOrder(t *testing.T) {
	hub := NewHub()
	sessionID := uuid.New()
	client := newMockClient("client-1", sessionID)
	hub.Register(client)

	for i := 0; i < 20; i++ {
		hub.Broadcast(sessionID, CategoryListSynced(map[string]interface{}{"seq": i}))
	}

	messages := client.GetMessages()
	require.Len(t, messages, 20)
	for i, raw := range messages {
		var event struct {
			Payload struct {
				Seq int `json:"seq"`
			} `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(raw, &event))
		assert.Equal(t, i, event.Payload.Seq)
	}
}
