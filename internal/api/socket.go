package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/abhisek/certifica/internal/exam"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 5 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// tickMessage is pushed to the browser after every clock tick and change.
type tickMessage struct {
	TimeRemaining int          `json:"timeRemaining"`
	Phase         string       `json:"phase"`
	Answered      int          `json:"answered"`
	Busy          bool         `json:"busy"`
	Result        *exam.Result `json:"result,omitempty"`
}

func tickFrom(s exam.Snapshot) tickMessage {
	return tickMessage{
		TimeRemaining: s.TimeRemaining,
		Phase:         s.Phase,
		Answered:      len(s.Answers),
		Busy:          s.Busy,
		Result:        s.Result,
	}
}

// attemptSocket streams the attempt clock until the attempt is discarded
// or the client goes away.
func (h *handler) attemptSocket(w http.ResponseWriter, r *http.Request) {
	updates, cancel, err := h.Exams.Subscribe(chi.URLParam(r, "id"), claims(r).UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Reading is required for control frames; client messages are ignored.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-gone:
			return
		case snap, ok := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "attempt closed"))
				return
			}
			if err := conn.WriteJSON(tickFrom(snap)); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
