package events

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"rolstat/domain/core"
	"rolstat/ports"

	"github.com/gin-gonic/gin"
)

// OriginHeader carries the caller's origin on API requests
const OriginHeader = "X-Rol-Origin"

const keepAliveInterval = 30 * time.Second

// Handler returns a gin engine streaming change events as server-sent events
// on GET path. Clients pass their own origin as the "origin" query parameter
// so their own writes are not echoed back.
func (h *Hub) Handler(path string) http.Handler {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET(path, h.HandleSSE)
	return engine
}

// HandleSSE streams change events to one client until it disconnects
func (h *Hub) HandleSSE(c *gin.Context) {
	origin := core.OriginExternal
	if q := c.Query("origin"); q != "" {
		parsed, err := core.ParseOrigin(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		origin = parsed
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	clientChan := make(chan ports.ChangeEvent, 10)
	sub := h.Subscribe(origin, func(ev ports.ChangeEvent) {
		select {
		case clientChan <- ev:
		default:
			h.log.Warn("client channel full for origin %s, dropping %s event", origin, ev.Key)
		}
	})
	defer sub.Close()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case ev := <-clientChan:
			payload, err := json.Marshal(ev)
			if err != nil {
				h.log.Error("failed to marshal event: %v", err)
				return true
			}
			c.SSEvent("storage", string(payload))
			return true

		case <-time.After(keepAliveInterval):
			c.SSEvent("ping", `{"status": "alive", "timestamp": "`+time.Now().Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			return false
		}
	})
}
