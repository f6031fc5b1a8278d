package tracking

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canteen-system/internal/logger"
	"canteen-system/internal/models"
)

func TestClientWants(t *testing.T) {
	event := &models.OrderEvent{
		Type:        models.EventStatusChanged,
		UserID:      "user-1",
		OrderNumber: "ORD_20260302_001",
		NewStatus:   models.StatusReady,
	}

	tests := []struct {
		name   string
		client *Client
		want   bool
	}{
		{name: "owner sees own order", client: &Client{userID: "user-1"}, want: true},
		{name: "other user filtered out", client: &Client{userID: "user-2"}, want: false},
		{name: "admin sees everything", client: &Client{userID: "staff-1", admin: true}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.client.wants(event))
		})
	}
}

func TestBroadcastRouting(t *testing.T) {
	hub := NewHub(logger.New("tracking-test"))

	owner := &Client{userID: "user-1", send: make(chan []byte, 1)}
	other := &Client{userID: "user-2", send: make(chan []byte, 1)}
	admin := &Client{userID: "staff-1", admin: true, send: make(chan []byte, 1)}
	hub.clients[owner] = true
	hub.clients[other] = true
	hub.clients[admin] = true

	event := &models.OrderEvent{
		Type:        models.EventOrderCreated,
		OrderID:     "ord-id-1",
		OrderNumber: "ORD_20260302_001",
		UserID:      "user-1",
		NewStatus:   models.StatusPendingApproval,
		SlotID:      "2026-03-02T12:15:00Z",
	}
	hub.broadcast(event)

	require.Len(t, owner.send, 1)
	assert.Empty(t, other.send)
	require.Len(t, admin.send, 1)

	var got models.OrderEvent
	require.NoError(t, json.Unmarshal(<-owner.send, &got))
	assert.Equal(t, "ORD_20260302_001", got.OrderNumber)
	assert.Equal(t, models.StatusPendingApproval, got.NewStatus)
}

func TestBroadcastDropsSlowConsumer(t *testing.T) {
	hub := NewHub(logger.New("tracking-test"))

	slow := &Client{userID: "user-1", send: make(chan []byte)} // unbuffered, no reader
	hub.clients[slow] = true

	hub.broadcast(&models.OrderEvent{UserID: "user-1", OrderNumber: "ORD_20260302_002"})

	assert.NotContains(t, hub.clients, slow)
	_, open := <-slow.send
	assert.False(t, open, "slow consumer channel should be closed")
}

func TestDispatchNonBlocking(t *testing.T) {
	hub := NewHub(logger.New("tracking-test"))

	// Fill the queue past its buffer with no running hub loop. Dispatch must
	// drop instead of blocking the consumer goroutine.
	for i := 0; i < 300; i++ {
		hub.Dispatch(&models.OrderEvent{OrderNumber: "ORD_20260302_003", UserID: "user-1"})
	}

	assert.Len(t, hub.events, 256)
}

func TestRoutingKey(t *testing.T) {
	event := &models.OrderEvent{UserID: "user-9"}
	assert.Equal(t, "orders.user-9", event.RoutingKey())
}
