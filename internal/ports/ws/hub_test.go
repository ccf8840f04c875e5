package ws

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rescue-coordination-system/internal/domain"
)

func newTestClient() *client {
	return &client{
		id:   uuid.New(),
		send: make(chan domain.Event, clientBufferSize),
	}
}

func TestBroadcast_DeliversToAllSubscribers(t *testing.T) {
	hub := NewHub(zap.NewNop())
	first := newTestClient()
	second := newTestClient()
	require.True(t, hub.register(first))
	require.True(t, hub.register(second))

	hub.Broadcast(domain.NewEvent(domain.EventAlertNew, nil))

	assert.Len(t, first.send, 1)
	assert.Len(t, second.send, 1)
}

// Повільний підписник не блокує відправника: найстаріша подія витісняється
func TestBroadcast_SlowSubscriberDropsOldest(t *testing.T) {
	hub := NewHub(zap.NewNop())
	slow := newTestClient()
	require.True(t, hub.register(slow))

	for i := 0; i <= clientBufferSize; i++ {
		hub.Broadcast(domain.NewEvent(domain.EventSensorData, map[string]int{"seq": i}))
	}

	assert.Len(t, slow.send, clientBufferSize)

	// Найстаріша подія (seq 0) витіснена
	first := <-slow.send
	assert.Equal(t, map[string]int{"seq": 1}, first.Payload)
}

func TestBroadcast_ManyEventsNeverBlock(t *testing.T) {
	hub := NewHub(zap.NewNop())
	require.True(t, hub.register(newTestClient()))

	done := make(chan struct{})
	go func() {
		for i := 0; i < clientBufferSize*10; i++ {
			hub.Broadcast(domain.NewEvent(domain.EventDeviceUpdate, fmt.Sprintf("event-%d", i)))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on slow subscriber")
	}
}

func TestUnregister_RemovesSubscriber(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := newTestClient()
	require.True(t, hub.register(c))
	assert.Equal(t, 1, hub.ClientCount())

	hub.unregister(c)
	assert.Equal(t, 0, hub.ClientCount())

	// Канал закрито; трансляція після відписки не панікує
	_, open := <-c.send
	assert.False(t, open)
	hub.Broadcast(domain.NewEvent(domain.EventAlertNew, nil))
}

func TestUnregister_Idempotent(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := newTestClient()
	require.True(t, hub.register(c))

	hub.unregister(c)
	hub.unregister(c)
	assert.Equal(t, 0, hub.ClientCount())
}
