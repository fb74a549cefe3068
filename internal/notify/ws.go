package notify

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // restrict in production
	},
}

// WSHandler upgrades and parks the connection; incoming messages are
// ignored, the hub only pushes.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		hub.AddWS(conn)
		log.Println("[ws] client connected")

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		hub.RemoveWS(conn)
		log.Println("[ws] client disconnected")
	}
}
