package conn

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/tobsdb/tablekit/internal/dataset"
	"github.com/tobsdb/tablekit/pkg"
)

type WsRequest struct {
	Action  RequestAction `json:"action"`
	Dataset string        `json:"dataset"`
	ReqId   int           `json:"__tkit_client_req_id__"` // used in tkit clients
}

const EventView = "view"

// Event is a message pushed without a request, e.g. when a fetch lands.
type Event struct {
	Event   string `json:"event"`
	Dataset string `json:"dataset"`
	Data    any    `json:"data"`
}

var Upgrader = websocket.Upgrader{
	WriteBufferSize: 1024 * 10,
	ReadBufferSize:  1024 * 10,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ConnCtx serializes writes to one websocket. Responses and pushed events
// come from different goroutines.
type ConnCtx struct {
	conn       *websocket.Conn
	write_lock sync.Mutex

	Session *Session
}

func NewConnCtx(c *websocket.Conn, s *Session) *ConnCtx {
	return &ConnCtx{conn: c, Session: s}
}

func (ctx *ConnCtx) WriteJSON(v any) error {
	ctx.write_lock.Lock()
	defer ctx.write_lock.Unlock()
	return ctx.conn.WriteJSON(v)
}

func (ctx *ConnCtx) WriteResponse(r Response) error { return ctx.WriteJSON(r) }

func (ctx *ConnCtx) WriteEvent(e Event) error { return ctx.WriteJSON(e) }

func (h *Host) HandleConnection(w http.ResponseWriter, r *http.Request) {
	session, err := h.NewSession()
	if err != nil {
		pkg.ErrorLog("creating session", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer session.Close()

	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		pkg.ErrorLog(err)
		return
	}
	pkg.LogFields(logrus.Fields{"session": session.ID, "remote": conn.RemoteAddr()}).
		Info("New connection established")
	defer conn.Close()

	ctx := NewConnCtx(conn, session)
	session.OnView(func(name string, view dataset.Snapshot) {
		if err := ctx.WriteEvent(Event{EventView, name, view}); err != nil {
			pkg.DebugLog("pushing view", err)
		}
	})
	session.Prefetch()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				pkg.ErrorLog("unexpected close", err)
			} else {
				pkg.DebugLog("connection closed", err)
			}
			return
		}

		var req WsRequest
		var res Response
		if err := json.Unmarshal(message, &req); err != nil {
			pkg.ErrorLog("parsing request", err)
			res = NewErrorResponse(http.StatusBadRequest, err.Error())
		} else {
			pkg.LogFields(logrus.Fields{
				"session": session.ID, "action": req.Action, "dataset": req.Dataset, "req_id": req.ReqId,
			}).Debug("request")
			res = ActionHandler(session, req, message)
		}
		res.ReqId = req.ReqId

		if err := ctx.WriteResponse(res); err != nil {
			pkg.ErrorLog("writing response", err)
			return
		}
	}
}
