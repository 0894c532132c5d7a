package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/withjet/backend/internal/model/chat"
	chatService "github.com/zhouzirui/withjet/backend/internal/service/chat"
	"github.com/zhouzirui/withjet/backend/pkg/utils"
)

// Envelope types carried on the frame socket.
const (
	TypeTurn  = "TURN"
	TypeReply = "REPLY"
	TypeBusy  = "BUSY"
	TypeError = "ERROR"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 54 * time.Second
)

// Handler bridges the embedded frame UI and the chat engine over a websocket.
type Handler struct {
	chatSvc  *chatService.Service
	upgrader websocket.Upgrader
}

// New creates the websocket handler. allowOrigin gates cross-origin upgrade
// requests; same-origin requests and requests without an Origin header are
// always accepted.
func New(chatSvc *chatService.Service, allowOrigin func(origin string) bool) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowOrigin == nil {
					return true
				}
				if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
					return true
				}
				return allowOrigin(origin)
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the frame socket.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type  string `json:"type"`
	BotID string `json:"botId"`
	Text  string `json:"text"`
}

type outgoingMessage struct {
	Type    string        `json:"type"`
	BotID   string        `json:"botId,omitempty"`
	Message *chat.Message `json:"message,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// connection serializes writes; gorilla allows one concurrent writer.
type connection struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *connection) send(msg outgoingMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(msg); err != nil {
		log.Debug().Err(err).Str("component", "ws").Str("type", msg.Type).Msg("write failed")
	}
}

func (c *connection) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("component", "ws").Msg("upgrade failed")
		return
	}
	conn := &connection{conn: raw}
	defer raw.Close()

	var turns sync.WaitGroup
	defer turns.Wait()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_ = raw.SetReadDeadline(time.Now().Add(readTimeout))
	raw.SetPongHandler(func(string) error {
		return raw.SetReadDeadline(time.Now().Add(readTimeout))
	})
	go pingLoop(ctx, conn)

	log.Debug().Str("component", "ws").Str("session_id", sessionID).Str("bot_id", session.BotID).Msg("connection opened")

	for {
		_, data, err := raw.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("component", "ws").Str("session_id", sessionID).Msg("read error")
			}
			return
		}
		_ = raw.SetReadDeadline(time.Now().Add(readTimeout))

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			conn.send(outgoingMessage{Type: TypeError, Error: "malformed message"})
			continue
		}

		// Envelopes for another bot are dropped without a reply.
		if msg.BotID != session.BotID {
			continue
		}

		switch msg.Type {
		case TypeTurn:
			turns.Add(1)
			go func(text string) {
				defer turns.Done()
				h.handleTurn(ctx, conn, session, text)
			}(msg.Text)
		default:
			conn.send(outgoingMessage{Type: TypeError, Error: "unsupported message type: " + msg.Type})
		}
	}
}

func (h *Handler) handleTurn(ctx context.Context, conn *connection, session chat.Session, text string) {
	reply, err := h.chatSvc.SubmitTurn(ctx, session.ID, text)
	switch {
	case errors.Is(err, chatService.ErrTurnInFlight):
		conn.send(outgoingMessage{Type: TypeBusy})
	case err != nil:
		conn.send(outgoingMessage{Type: TypeError, Error: err.Error()})
	default:
		conn.send(outgoingMessage{Type: TypeReply, BotID: session.BotID, Message: &reply})
	}
}

// pingLoop keeps the connection alive until ctx is done.
func pingLoop(ctx context.Context, conn *connection) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return
			}
		}
	}
}
