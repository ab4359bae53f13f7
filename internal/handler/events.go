package handler

import (
	"encoding/json"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/ltxvideo/api/internal/model"
	"github.com/ltxvideo/api/internal/service"
	ws "github.com/ltxvideo/api/internal/websocket"
)

// EventsHandler streams job lifecycle events over websocket
type EventsHandler struct {
	hub  *ws.Hub
	jobs *service.JobService
}

func NewEventsHandler(hub *ws.Hub, jobs *service.JobService) *EventsHandler {
	return &EventsHandler{hub: hub, jobs: jobs}
}

// Upgrade rejects non-websocket requests and unknown jobs before the handshake
func (h *EventsHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	status, err := h.jobs.Status(c.Context(), c.Params("jobId"))
	if err != nil {
		return writeError(c, err)
	}
	c.Locals("initialStatus", status.Status)
	return c.Next()
}

// Stream handles GET /ws/jobs/:jobId. The current status is sent on connect.
func (h *EventsHandler) Stream() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		jobID := c.Params("jobId")

		status, _ := c.Locals("initialStatus").(model.JobStatus)
		var initial []byte
		if status != "" {
			initial, _ = json.Marshal(model.WSStatusMessage{
				Type:   model.WSMessageTypeStatus,
				JobID:  jobID,
				Status: status,
			})
		}

		// finished jobs emit no further events
		if status.IsTerminal() {
			c.WriteMessage(websocket.TextMessage, initial)
			c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "job finished"))
			return
		}

		h.hub.HandleConnection(c, jobID, initial)
	})
}
