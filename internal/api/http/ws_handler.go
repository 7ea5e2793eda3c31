package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"alugaai-backend/internal/apperr"
	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/events"
	"alugaai-backend/internal/logger"
	"alugaai-backend/internal/security"
	"alugaai-backend/internal/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
)

const snapshotType = "snapshot"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// mobile clients send no Origin; tokens carry the authorization
	CheckOrigin: func(r *http.Request) bool { return true },
}

// feedMessage is one websocket frame. The first frame is a snapshot of all
// rentals involving the user; later frames carry a single rental event.
type feedMessage struct {
	Type       string          `json:"type"`
	Rentals    []domain.Rental `json:"rentals,omitempty"`
	Rental     *domain.Rental  `json:"rental,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type RentalFeedHandler struct {
	rentalSvc service.RentalService
	feed      events.Subscriber
}

func NewRentalFeedHandler(rentalSvc service.RentalService, feed events.Subscriber) *RentalFeedHandler {
	return &RentalFeedHandler{rentalSvc: rentalSvc, feed: feed}
}

func (h *RentalFeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	caller := security.IdentityFromContext(r.Context())
	if caller == nil {
		writeError(w, apperr.Unauthorized("authentication required"))
		return
	}

	evs, cancel := h.feed.Subscribe()
	defer cancel()

	snapshot, err := h.rentalSvc.ListInvolving(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already replied
		logger.Debug("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	log := logger.WithComponent("ws-feed").With("userID", caller.UserID)
	log.Info("Rental feed connected")
	defer log.Info("Rental feed disconnected")

	closed := make(chan struct{})
	go readPump(conn, closed)

	if err := writeFrame(conn, feedMessage{Type: snapshotType, Rentals: snapshot, OccurredAt: time.Now().UTC()}); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case ev, ok := <-evs:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(writeWait))
				return
			}
			if !ev.ConcernsUser(caller.UserID) {
				continue
			}
			if err := writeFrame(conn, feedMessage{Type: string(ev.Type), Rental: ev.Rental, OccurredAt: ev.OccurredAt}); err != nil {
				log.Debug("Rental feed write failed", "error", err)
				return
			}
		}
	}
}

func writeFrame(conn *websocket.Conn, msg feedMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// readPump discards client frames and keeps the read deadline alive through
// pongs. It closes done when the connection fails.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("WebSocket read error", "error", err)
			}
			return
		}
	}
}
