package websocket

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/service-desk-analytics/internal/auth"
	"github.com/lorrc/service-desk-analytics/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(hub *Hub, subject, role string) *Client {
	claims := &auth.Claims{Role: role, RegisteredClaims: jwt.RegisteredClaims{Subject: subject}}
	return NewClient(hub, nil, claims, testLogger())
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func receive(t *testing.T, c *Client) domain.Event {
	t.Helper()
	select {
	case ev, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return domain.Event{}
	}
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case ev := <-c.Send:
		t.Fatalf("unexpected event %v", ev.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_RoutesToOwnRoom(t *testing.T) {
	hub := startHub(t)
	ana := newTestClient(hub, "Ána Souza", auth.RoleTechnician)
	bruno := newTestClient(hub, "Bruno", auth.RoleTechnician)
	require.True(t, hub.Attach(ana))
	require.True(t, hub.Attach(bruno))

	require.NoError(t, hub.Broadcast(domain.Event{Type: domain.EventBadgeEarned, Technician: "ana souza"}))

	ev := receive(t, ana)
	assert.Equal(t, domain.EventBadgeEarned, ev.Type)
	assertNoEvent(t, bruno)
	assert.Equal(t, 2, hub.GetClientCount())
	assert.Equal(t, 1, hub.GetClientsInRoom("ANA SOUZA"))
}

func TestHub_SupervisorSubscribes(t *testing.T) {
	hub := startHub(t)
	lead := newTestClient(hub, "Lead", auth.RoleSupervisor)
	require.True(t, hub.Attach(lead))

	lead.handleIncomingMessage([]byte(`{"type":"SUBSCRIBE_TO_TECHNICIAN","payload":{"technician":"Bruno"}}`))
	assert.True(t, lead.HasSubscription("bruno"))

	require.NoError(t, hub.Broadcast(domain.Event{Type: domain.EventLevelUp, Technician: "Bruno"}))
	assert.Equal(t, domain.EventLevelUp, receive(t, lead).Type)

	lead.handleIncomingMessage([]byte(`{"type":"UNSUBSCRIBE_FROM_TECHNICIAN","payload":{"technician":"Bruno"}}`))
	assert.False(t, lead.HasSubscription("Bruno"))
	assert.Equal(t, 0, hub.GetClientsInRoom("Bruno"))
}

func TestHub_AttachJoinsPresetRooms(t *testing.T) {
	hub := startHub(t)
	lead := newTestClient(hub, "Lead", auth.RoleSupervisor)
	lead.AddSubscription("ana")
	lead.AddSubscription("bruno")
	require.True(t, hub.Attach(lead))

	require.NoError(t, hub.Broadcast(domain.Event{Type: domain.EventBadgeEarned, Technician: "Bruno"}))
	assert.Equal(t, domain.EventBadgeEarned, receive(t, lead).Type)
	assert.Equal(t, 1, hub.GetClientsInRoom("Ana"))
	assert.ElementsMatch(t, []string{"lead", "ana", "bruno"}, lead.GetSubscriptions())
}

func TestClient_SubscribeDeniedForOtherTechnician(t *testing.T) {
	hub := NewHub(testLogger())
	ana := newTestClient(hub, "Ana", auth.RoleTechnician)

	ana.handleIncomingMessage([]byte(`{"type":"SUBSCRIBE_TO_TECHNICIAN","payload":{"technician":"Bruno"}}`))

	ev := <-ana.Send
	assert.Equal(t, EventError, ev.Type)
	assert.False(t, ana.HasSubscription("Bruno"))
}

func TestClient_PingAndBadPayload(t *testing.T) {
	hub := NewHub(testLogger())
	ana := newTestClient(hub, "Ana", auth.RoleTechnician)

	ana.handleIncomingMessage([]byte(`{"type":"PING"}`))
	assert.Equal(t, EventPong, (<-ana.Send).Type)

	ana.handleIncomingMessage([]byte(`{"type":"SUBSCRIBE_TO_TECHNICIAN","payload":{"technician":"  "}}`))
	assert.Equal(t, EventError, (<-ana.Send).Type)

	ana.handleIncomingMessage([]byte(`not json`))
	assert.Len(t, ana.Send, 0)
}

func TestHub_OwnRoomCannotBeLeft(t *testing.T) {
	hub := startHub(t)
	ana := newTestClient(hub, "Ana", auth.RoleTechnician)
	require.True(t, hub.Attach(ana))

	hub.unsubscribe(ana, "ana")
	assert.True(t, ana.HasSubscription("Ana"))
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	ana := newTestClient(hub, "Ana", auth.RoleTechnician)
	require.True(t, hub.Attach(ana))

	hub.Detach(ana)

	select {
	case _, ok := <-ana.Send:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("send channel not closed")
	}
	assert.Equal(t, 0, hub.GetClientsInRoom("Ana"))

	// Replies after close are dropped instead of panicking.
	ana.handleIncomingMessage([]byte(`{"type":"PING"}`))
}

func TestHub_StopClosesClientsAndRejectsNew(t *testing.T) {
	hub := NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	ana := newTestClient(hub, "Ana", auth.RoleTechnician)
	require.True(t, hub.Attach(ana))

	cancel()
	<-stopped

	_, ok := <-ana.Send
	assert.False(t, ok)
	assert.False(t, hub.Attach(newTestClient(hub, "Bruno", auth.RoleTechnician)))
	hub.Detach(ana)
}

func TestHub_BroadcastNeverBlocks(t *testing.T) {
	hub := NewHub(testLogger())
	for i := 0; i < 1000; i++ {
		require.NoError(t, hub.Broadcast(domain.Event{Type: domain.EventReportUpdated, Technician: "Ana"}))
	}
}
