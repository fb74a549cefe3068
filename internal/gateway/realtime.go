package gateway

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/gorilla/websocket"

	"anistream/pkg/models"
)

var ErrRealtimeDisabled = errors.New("realtime url not configured")

// AuthEvent is one auth-state change pushed by the gateway. Event values
// follow the gateway's naming: SIGNED_IN, SIGNED_OUT, TOKEN_REFRESHED.
type AuthEvent struct {
	Event string       `json:"event"`
	User  *models.User `json:"user,omitempty"`
}

// SubscribeAuthEvents opens the gateway's realtime websocket and invokes
// handler for every auth event until the returned stop function is called
// or the connection drops. The subscription is long-lived; callers keep it
// for the process lifetime.
func (c *Client) SubscribeAuthEvents(handler func(AuthEvent)) (func(), error) {
	if c.realtime == "" {
		return nil, ErrRealtimeDisabled
	}

	conn, _, err := websocket.DefaultDialer.Dial(c.realtime, nil)
	if err != nil {
		return nil, err
	}

	log.Printf("[realtime] connected to %s", c.realtime)

	go func() {
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				log.Printf("[realtime] disconnected: %v", err)
				return
			}
			var ev AuthEvent
			if err := json.Unmarshal(msg, &ev); err != nil {
				log.Printf("[realtime] bad event: %v", err)
				continue
			}
			if ev.Event == "" {
				continue
			}
			handler(ev)
		}
	}()

	return func() { _ = conn.Close() }, nil
}
