package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/phuslu/log"

	"Itinerary-App/internal/usecase"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ProgressStreamHandler は進捗イベントをWebSocketで配信する
type ProgressStreamHandler struct {
	useCase usecase.ItineraryUseCase
}

func NewProgressStreamHandler(useCase usecase.ItineraryUseCase) *ProgressStreamHandler {
	return &ProgressStreamHandler{useCase: useCase}
}

// StreamEvents は進捗イベントを順に送信し、終了状態に達したら接続を閉じる
// GET /api/itineraries/:id/events
func (h *ProgressStreamHandler) StreamEvents(c *gin.Context) {
	sessionID := c.Param("id")
	events, unsubscribe, err := h.useCase.Subscribe(c.Request.Context(), sessionID)
	if err != nil {
		respondSessionError(c, err)
		return
	}
	defer unsubscribe()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("⚠️ WebSocket接続へのアップグレードに失敗")
		return
	}
	defer conn.Close()

	// クライアントからの切断を検知する
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Warn().Err(err).Str("session_id", sessionID).Msg("⚠️ WebSocketエラー")
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Warn().Err(err).Str("session_id", sessionID).Msg("⚠️ 進捗イベントの送信に失敗")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
