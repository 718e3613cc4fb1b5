package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServer upgrades every request into a Client registered for sessionID
func startServer(t *testing.T, hub *Hub, sessionID uuid.UUID) (*httptest.Server, chan *Client) {
	t.Helper()
	clients := make(chan *Client, 1)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(conn, sessionID, hub)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
		clients <- client
	}))
	t.Cleanup(srv.Close)
	return srv, clients
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestClient_DeliversEventsInOrder(t *testing.T) {
	hub := NewHub()
	sessionID := uuid.New()
	srv, clients := startServer(t, hub, sessionID)

	conn := dial(t, srv)
	<-clients

	hub.Broadcast(sessionID, CategoryCreated(map[string]interface{}{"_id": "1"}))
	hub.Broadcast(sessionID, NotificationRaised(map[string]interface{}{"message": "Category added successfully!"}))

	want := []string{"category.created", "notification.raised"}
	for _, typ := range want {
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var event Event
		require.NoError(t, json.Unmarshal(data, &event))
		assert.Equal(t, typ, event.Type)
	}
}

func TestClient_CloseSessionSendsReason(t *testing.T) {
	hub := NewHub()
	sessionID := uuid.New()
	srv, clients := startServer(t, hub, sessionID)

	conn := dial(t, srv)
	client := <-clients

	hub.CloseSession(sessionID)

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)

	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok, "expected close frame, got %v", err)
	assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)
	assert.Equal(t, CloseReasonSessionEnded, closeErr.Text)

	select {
	case <-client.Done():
	case <-time.After(time.Second):
		t.Fatal("write pump did not stop")
	}
	assert.Equal(t, 0, hub.ClientCount(sessionID))
}

func TestClient_SendAfterClose(t *testing.T) {
	client := &Client{send: make(chan []byte, 1), done: make(chan struct{})}

	require.NoError(t, client.Send([]byte("a")))
	assert.ErrorIs(t, client.Send([]byte("b")), ErrSlowClient)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
	assert.ErrorIs(t, client.Send([]byte("c")), ErrClientClosed)
}
