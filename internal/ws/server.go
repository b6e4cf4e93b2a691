package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"storechatgo/internal/services/autoreply"
	"storechatgo/internal/services/chat"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 12 * time.Second
	pingPeriod      = 3 * time.Second // must be < pongWait
	maxFrameSize    = 4096
	dispatchTimeout = 1900 * time.Millisecond
	historyTimeout  = 4 * time.Second
)

// ConnContext is the per-session state handed to frame handlers.
// RoomID is owned by the session goroutine; a connection is in at most one
// room at a time.
type ConnContext struct {
	UserID string
	RoomID string
	conn   *clientConn
	Server *WsServer
}

type WsServer struct {
	hub          *Hub
	registry     *Registry
	router       *Router
	chatSvc      chat.IChatService
	responder    autoreply.IAutoResponder
	validate     *validator.Validate
	upgrader     websocket.Upgrader
	defaultRoom  string
	historyLimit int
}

func NewWsServer(
	hub *Hub,
	registry *Registry,
	chatSvc chat.IChatService,
	responder autoreply.IAutoResponder,
	defaultRoom string,
	historyLimit int,
) *WsServer {
	srv := &WsServer{
		hub:          hub,
		registry:     registry,
		router:       NewRouter(),
		chatSvc:      chatSvc,
		responder:    responder,
		validate:     validator.New(),
		defaultRoom:  defaultRoom,
		historyLimit: historyLimit,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true }, // dev-only
		},
	}
	srv.registerHandlers() // ← all WS endpoints configured here
	return srv
}

// ---------------------------------------------------------------------------
//  Public: Gin entry-point
// ---------------------------------------------------------------------------

func (s *WsServer) Handle(ginCtx *gin.Context) {
	userID := ginCtx.Query("user_id")
	if userID == "" {
		ginCtx.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	roomID := ginCtx.Query("room_id")
	if roomID == "" {
		roomID = s.defaultRoom
	}

	rawConn, err := s.upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.upgrade", zap.Error(err))
		return
	}
	rawConn.SetReadLimit(maxFrameSize)

	// ─────────────────── Client joined ────────────────────────
	conn := &clientConn{rawConn: rawConn}
	cc := &ConnContext{UserID: userID, conn: conn, Server: s}

	s.registry.Register(userID, conn)
	s.joinRoom(cc, roomID)

	go s.reader(cc)
	go s.pinger(conn)
}

// PublishMessage fans a stored message out to its whole room, sender included.
// Implements autoreply.MessagePublisher; no-ops when the room has emptied.
func (s *WsServer) PublishMessage(msg *chat.ChatMessageDTO) {
	s.broadcastEvent(msg.RoomID, EventNewMessage, msg, nil)
}

// ---------------------------------------------------------------------------
//  Private helpers
// ---------------------------------------------------------------------------

func (s *WsServer) registerHandlers() {
	// 🔹 join_room -----------------------------------------------------------
	Register(
		s.router,
		frameJoinRoom,
		func(ctx context.Context, cc *ConnContext, req JoinRoomBody) error {
			if err := s.validate.Struct(req); err != nil {
				return errors.New("roomId is required")
			}
			// full re-entry: leave side effects, then join side effects
			s.leaveRoom(cc)
			s.joinRoom(cc, req.RoomID)
			return nil
		},
	)

	// 🔹 send_message --------------------------------------------------------
	Register(
		s.router,
		frameSendMessage,
		func(ctx context.Context, cc *ConnContext, req SendMessageBody) error {
			if err := s.validate.Struct(req); err != nil {
				return chat.ErrEmptyMessage
			}

			profile, err := s.chatSvc.ProfileOf(ctx, cc.UserID)
			if err != nil {
				return err
			}

			userID := cc.UserID
			stored, err := s.chatSvc.AppendMessage(ctx, chat.MessageDraft{
				UserID:     &userID,
				SenderType: chat.SenderTypeUser,
				SenderName: profile.DisplayName(),
				Message:    req.Message,
				RoomID:     cc.RoomID,
			})
			if err != nil {
				return err
			}

			// broadcast only after the store acknowledged; the sender is
			// included so its UI picks up the server-assigned id/createdAt
			s.broadcastEvent(cc.RoomID, EventNewMessage, stored, nil)

			if s.responder != nil && s.responder.Eligible(cc.RoomID) {
				s.responder.ScheduleReply(cc.RoomID, s)
			}
			return nil
		},
	)

	// 🔹 typing / stop_typing ------------------------------------------------
	Register(
		s.router,
		frameTyping,
		func(ctx context.Context, cc *ConnContext, _ struct{}) error {
			s.broadcastEvent(cc.RoomID, EventUserTyping,
				TypingBody{UserID: cc.UserID, IsTyping: true}, cc.conn)
			return nil
		},
	)
	Register(
		s.router,
		frameStopTyping,
		func(ctx context.Context, cc *ConnContext, _ struct{}) error {
			s.broadcastEvent(cc.RoomID, EventUserTyping,
				TypingBody{UserID: cc.UserID, IsTyping: false}, cc.conn)
			return nil
		},
	)
}

// joinRoom adds the connection to the room table, announces it to the members
// that were already there, and pushes history to the newcomer only.
func (s *WsServer) joinRoom(cc *ConnContext, roomID string) {
	s.hub.Join(roomID, cc.conn)
	cc.RoomID = roomID

	s.broadcastEvent(roomID, EventUserJoined, PresenceBody{
		UserID:  cc.UserID,
		Message: cc.UserID + " joined the chat",
	}, cc.conn)

	s.pushHistory(cc)
}

// leaveRoom removes the connection and tells the remaining members. When the
// room empties there is nobody left to tell and the event is simply dropped.
func (s *WsServer) leaveRoom(cc *ConnContext) {
	if cc.RoomID == "" {
		return
	}
	roomID := cc.RoomID
	cc.RoomID = ""

	s.hub.Leave(roomID, cc.conn)
	s.broadcastEvent(roomID, EventUserLeft, PresenceBody{
		UserID:  cc.UserID,
		Message: cc.UserID + " left the chat",
	}, nil)
}

// pushHistory sends the most recent messages of the current room,
// chronological order, to this connection only.
func (s *WsServer) pushHistory(cc *ConnContext) {
	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()

	messages, err := s.chatSvc.RecentMessages(ctx, cc.RoomID, s.historyLimit)
	if err != nil {
		zap.L().Warn("ws.history", zap.String("room", cc.RoomID), zap.Error(err))
		s.sendError(cc.conn, "could not load message history")
		return
	}
	s.sendEvent(cc.conn, EventMessageHistory, HistoryBody{Messages: messages})
}

func (s *WsServer) broadcastEvent(roomID, eventType string, data any, exclude *clientConn) {
	msg, err := marshalEvent(eventType, data)
	if err != nil {
		zap.L().Warn("ws.marshal_event", zap.String("event", eventType), zap.Error(err))
		return
	}
	s.hub.Broadcast(roomID, msg, exclude)
}

func (s *WsServer) sendEvent(conn *clientConn, eventType string, data any) {
	_ = conn.writeJSON(map[string]any{
		"type": eventType,
		"data": data,
	})
}

func (s *WsServer) sendError(conn *clientConn, message string) {
	s.sendEvent(conn, EventError, ErrorBody{Message: message})
}

func (s *WsServer) reader(cc *ConnContext) {
	defer s.teardown(cc)

	conn := cc.conn
	_ = conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	conn.rawConn.SetPongHandler(func(string) error {
		return conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.rawConn.ReadMessage()
		if err != nil {
			return // client closed or errored
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.sendError(conn, "invalid frame: expected a JSON envelope")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		err = s.router.dispatch(ctx, cc, env)
		cancel()

		// ---- error -> {"type":"error","data":{...}}, sender only ----------
		if err != nil {
			s.sendError(conn, err.Error())
		}
	}
}

// teardown runs the close transition exactly once: unregister, leave the
// current room (announcing user_left to whoever remains), close the socket.
func (s *WsServer) teardown(cc *ConnContext) {
	cc.conn.teardownOnce.Do(func() {
		s.registry.Unregister(cc.UserID)
		s.leaveRoom(cc)
		_ = cc.conn.rawConn.Close()
	})
}

func (s *WsServer) pinger(conn *clientConn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.write(websocket.PingMessage, nil); err != nil {
			_ = conn.rawConn.Close()
			return
		}
	}
}
