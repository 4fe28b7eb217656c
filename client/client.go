// Go client for a tablekit host.
//
// Usage:
//
//	c, err := client.NewClient("ws://localhost:7085")
//	if err != nil { ... }
//	if err := c.Connect(); err != nil { ... }
//	defer c.Close()
//
//	res, err := c.Do("setGlobalFilter", map[string]any{"dataset": "employees", "value": "ahmed"})
//	var view dataset.Snapshot
//	err = res.Decode(&view)
//
// Views pushed by the host after a fetch arrive on c.Events().
package client

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"

	ws "github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/tobsdb/tablekit/pkg"
)

const REQ_ID_FIELD = "__tkit_client_req_id__"

var ErrNotConnected = errors.New("not connected")

type (
	Response struct {
		Status    int             `json:"status"`
		Message   string          `json:"message"`
		Data      json.RawMessage `json:"data"`
		RequestId int             `json:"__tkit_client_req_id__"`
	}

	Event struct {
		Event   string          `json:"event"`
		Dataset string          `json:"dataset"`
		Data    json.RawMessage `json:"data"`
	}

	// message is either a response or a pushed event
	message struct {
		Response
		Event   string `json:"event"`
		Dataset string `json:"dataset"`
	}
)

func (r Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

func (r Response) Decode(v any) error {
	if len(r.Data) == 0 {
		return errors.New("response has no data")
	}
	return json.Unmarshal(r.Data, v)
}

func (e Event) Decode(v any) error { return json.Unmarshal(e.Data, v) }

// Client talks to one host over one websocket. It is safe for concurrent use.
type Client struct {
	locker sync.Mutex
	conn   *ws.Conn
	// The formatted connection url of the host
	Url *url.URL

	next_id int
	pending map[int]chan Response
	events  chan Event
	done    chan struct{}
	err     error
}

func NewClient(urlStr string) (*Client, error) {
	Url, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}
	if Url.Scheme != "ws" && Url.Scheme != "wss" {
		return nil, errors.Errorf("unsupported scheme %q", Url.Scheme)
	}
	return &Client{Url: Url, pending: map[int]chan Response{}, events: make(chan Event, 64)}, nil
}

func (c *Client) Connect() error {
	c.locker.Lock()
	defer c.locker.Unlock()
	if c.conn != nil {
		return nil
	}
	conn, _, err := ws.DefaultDialer.Dial(c.Url.String(), nil)
	if err != nil {
		return errors.Wrap(err, "dial")
	}
	pkg.InfoLog("Connected to tablekit host", c.Url.String())
	c.conn = conn
	c.done = make(chan struct{})
	go c.read(conn, c.done)
	return nil
}

// Events delivers pushed messages. Events are dropped when nobody reads.
func (c *Client) Events() <-chan Event { return c.events }

func (c *Client) read(conn *ws.Conn, done chan struct{}) {
	defer close(done)
	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			c.fail(err)
			return
		}
		if msg.Event != "" {
			select {
			case c.events <- Event{msg.Event, msg.Dataset, msg.Data}:
			default:
				pkg.DebugLog("dropping event", msg.Event, msg.Dataset)
			}
			continue
		}
		c.locker.Lock()
		ch, ok := c.pending[msg.RequestId]
		delete(c.pending, msg.RequestId)
		c.locker.Unlock()
		if ok {
			ch <- msg.Response
		}
	}
}

// fail releases every waiting request.
func (c *Client) fail(err error) {
	c.locker.Lock()
	defer c.locker.Unlock()
	if ws.IsUnexpectedCloseError(err, ws.CloseNormalClosure, ws.CloseGoingAway) {
		pkg.ErrorLog("tablekit connection lost", err)
	}
	c.err = err
	c.conn = nil
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

func (c *Client) Do(action string, payload map[string]any) (Response, error) {
	return c.DoContext(context.Background(), action, payload)
}

// DoContext sends one request and waits for the response with the same request id.
func (c *Client) DoContext(ctx context.Context, action string, payload map[string]any) (Response, error) {
	req := map[string]any{}
	for k, v := range payload {
		req[k] = v
	}
	req["action"] = action

	c.locker.Lock()
	if c.conn == nil {
		err := ErrNotConnected
		if c.err != nil {
			err = errors.Wrap(ErrNotConnected, c.err.Error())
		}
		c.locker.Unlock()
		return Response{}, err
	}
	c.next_id++
	id := c.next_id
	req[REQ_ID_FIELD] = id
	ch := make(chan Response, 1)
	c.pending[id] = ch
	err := c.conn.WriteJSON(req)
	if err != nil {
		delete(c.pending, id)
	}
	c.locker.Unlock()
	if err != nil {
		return Response{}, errors.Wrap(err, "write request")
	}

	select {
	case res, ok := <-ch:
		if !ok {
			return Response{}, errors.Wrap(ErrNotConnected, "connection closed before response")
		}
		return res, nil
	case <-ctx.Done():
		c.locker.Lock()
		delete(c.pending, id)
		c.locker.Unlock()
		return Response{}, ctx.Err()
	}
}

func (c *Client) Close() error {
	c.locker.Lock()
	conn, done := c.conn, c.done
	c.locker.Unlock()
	if conn == nil {
		return nil
	}
	err := conn.WriteMessage(ws.CloseMessage,
		ws.FormatCloseMessage(ws.CloseNormalClosure, "Disconnect"))
	if err != nil {
		pkg.ErrorLog(err)
	}
	err = conn.Close()
	<-done
	pkg.InfoLog("Disconnected from tablekit host")
	return err
}
