package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/BIJODEV/BibleQZ/internal/models"
	"github.com/BIJODEV/BibleQZ/internal/services"
	"github.com/BIJODEV/BibleQZ/internal/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Share links are opened from arbitrary origins.
		return true
	},
}

// LiveHandler streams the aggregated results dashboard over a websocket.
// Every message carries the complete current view; clients replace their state
// wholesale on each frame.
type LiveHandler struct {
	BaseHandler
	results services.ResultsService
}

func NewLiveHandler(results services.ResultsService, logger utils.Logger) *LiveHandler {
	return &LiveHandler{
		BaseHandler: NewBaseHandler(logger),
		results:     results,
	}
}

// StreamDashboard handles GET /api/v1/quizzes/:id/results/live. The feed
// subscription is torn down when the client disconnects.
func (h *LiveHandler) StreamDashboard(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.LogError(c, err, "websocket upgrade failed", "quiz_id", id)
		return
	}
	defer conn.Close()

	// Buffer one pending update and drop the older one when the client is
	// slow; only the latest full view matters.
	updates := make(chan *models.Dashboard, 1)
	cancel, err := h.results.Subscribe(id, func(d *models.Dashboard) {
		select {
		case updates <- d:
		default:
			select {
			case <-updates:
			default:
			}
			updates <- d
		}
	})
	if err != nil {
		h.LogError(c, err, "live feed subscription failed", "quiz_id", id)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "feed unavailable"),
			time.Now().Add(writeWait))
		return
	}
	defer cancel()

	// Initial frame so the viewer never starts empty-handed.
	if dashboard, err := h.results.Dashboard(c.Request.Context(), id); err == nil {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(dashboard); err != nil {
			return
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case dashboard := <-updates:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(dashboard); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
