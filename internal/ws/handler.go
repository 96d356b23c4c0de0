package ws

import (
	"net/http"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/glasskit/broker/internal/logging"
	"github.com/glasskit/broker/internal/monitoring"
	"github.com/glasskit/broker/internal/relay"
	"github.com/glasskit/broker/internal/session"
	"github.com/glasskit/broker/internal/shared/id"
	"github.com/glasskit/broker/internal/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Simulator UI and SDK clients connect cross-origin
	},
}

// Handler manages WebSocket connections. The dispatch mutex serializes
// every event handler body, so session and registry mutations never
// interleave.
type Handler struct {
	mu      sync.Mutex
	manager *session.Manager
	router  *relay.Router
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler
func NewHandler(manager *session.Manager, router *relay.Router, log *logging.Logger, metrics *monitoring.Metrics) *Handler {
	return &Handler{
		manager: manager,
		router:  router,
		log:     log,
		metrics: metrics,
	}
}

// HandleConnection handles WebSocket upgrade and the per-connection
// read loop
func (h *Handler) HandleConnection(c *gin.Context) {
	sock, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := NewConn(sock)
	defer conn.Close()

	connID := id.NewConnID()

	h.mu.Lock()
	h.manager.Connect(connID, conn)
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		h.manager.Disconnect(connID)
		h.mu.Unlock()
	}()

	for {
		_, msg, err := sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("websocket read error",
					zap.String("conn_id", connID.String()),
					zap.Error(err))
			}
			return
		}

		frame, err := DecodeFrame(msg)
		if err != nil {
			// Fail closed: drop the frame, keep the connection
			h.log.Warn("dropping malformed frame",
				zap.String("conn_id", connID.String()),
				zap.Error(err))
			continue
		}

		h.dispatch(conn, connID, frame)
	}
}

// dispatch runs one event handler under the dispatch lock
func (h *Handler) dispatch(conn *Conn, connID id.ConnID, frame Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.metrics.FrameReceived(frame.Event)

	switch frame.Event {
	case types.EventSimulatorRegister:
		if err := h.manager.RegisterSimulator(connID); err != nil {
			h.log.Warn("simulator registration failed",
				zap.String("conn_id", connID.String()),
				zap.Error(err))
		}

	case types.EventSimulatorModelChanged:
		var payload types.ModelChangedPayload
		if err := sonic.Unmarshal(frame.Data, &payload); err != nil {
			h.log.Warn("dropping malformed model change",
				zap.String("conn_id", connID.String()),
				zap.Error(err))
			return
		}
		h.manager.ChangeModel(connID, payload.Model)

	case types.EventSDKConnect:
		var req types.ConnectRequest
		if err := sonic.Unmarshal(frame.Data, &req); err != nil {
			h.log.Warn("dropping malformed connect request",
				zap.String("conn_id", connID.String()),
				zap.Error(err))
			return
		}
		if err := h.manager.AttemptPairing(connID, req.Payload.Code, req.Payload.AppInfo); err != nil {
			h.sendError(conn, err)
		}

	case types.EventMessage:
		h.router.FromApplication(connID, frame.Data)

	case types.EventSimulatorMessage:
		h.router.FromSimulator(connID, frame.Data)

	default:
		h.log.Debug("ignoring unknown event",
			zap.String("conn_id", connID.String()),
			zap.String("event", frame.Event))
	}
}

// sendError reports a pairing failure to the originating connection
// only
func (h *Handler) sendError(conn *Conn, err error) {
	code := types.ErrorCode(err)
	if code == "" {
		return
	}

	if emitErr := conn.Emit(types.EventError, types.ErrorPayload{
		Code:    code,
		Message: err.Error(),
	}); emitErr != nil {
		h.log.Debug("error reply failed", zap.Error(emitErr))
	}
}
