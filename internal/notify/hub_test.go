package notify_test

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anistream/internal/notify"
)

func TestPublishFramesEventsToTCPClients(t *testing.T) {
	hub := notify.NewHub()

	server, client := net.Pipe()
	t.Cleanup(func() { _ = client.Close() })
	hub.AddTCP(server)

	lines := make(chan string, 1)
	go func() {
		scanner := bufio.NewScanner(client)
		if scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	hub.Publish(notify.Event{Type: notify.EventTitleSaved, ID: "t1"})

	select {
	case line := <-lines:
		var ev notify.Event
		require.NoError(t, json.Unmarshal([]byte(line), &ev))
		assert.Equal(t, notify.EventTitleSaved, ev.Type)
		assert.Equal(t, "t1", ev.ID)
		assert.False(t, ev.At.IsZero(), "publish stamps the event")
	case <-time.After(3 * time.Second):
		t.Fatal("no event received")
	}
}

func TestPublishDropsDeadConnections(t *testing.T) {
	hub := notify.NewHub()

	server, client := net.Pipe()
	hub.AddTCP(server)
	_ = client.Close()

	assert.Equal(t, 1, hub.Stats().TCPClients)
	hub.Publish(notify.Event{Type: notify.EventSignedIn})
	assert.Equal(t, 0, hub.Stats().TCPClients)
}

func TestStatsTracksRegistration(t *testing.T) {
	hub := notify.NewHub()
	assert.Equal(t, notify.Stats{}, hub.Stats())

	server, client := net.Pipe()
	t.Cleanup(func() { _ = client.Close() })

	hub.AddTCP(server)
	assert.Equal(t, 1, hub.Stats().TCPClients)

	hub.RemoveTCP(server)
	assert.Equal(t, 0, hub.Stats().TCPClients)
}
