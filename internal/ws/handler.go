package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/ludo-backend/internal/broadcast"
	"github.com/DoyleJ11/ludo-backend/internal/dispatch"
	"github.com/DoyleJ11/ludo-backend/internal/types"
	pub "github.com/DoyleJ11/ludo-backend/pkg/types"
)

const (
	writeTimeout = 3 * time.Second
	readTimeout  = 5 * time.Minute
	sendBuffer   = 32
)

type Options struct {
	// OriginPatterns loosens the same-origin check, e.g. "localhost:*" in dev.
	OriginPatterns []string
}

func Handler(d *dispatch.Dispatcher, rooms *broadcast.Fanout, logger *zap.Logger, opts Options) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			logger.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		c := &client{
			id:    uuid.NewString(),
			conn:  conn,
			rooms: rooms,
			send:  make(chan types.ServerMessage, sendBuffer),
			log:   logger,
		}
		c.log = logger.With(zap.String("client_id", c.id))
		c.log.Debug("client connected")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		defer c.leave()

		go c.writeLoop(ctx, cancel)
		c.readLoop(ctx, d)
		c.log.Debug("client disconnected")
	}
}

type client struct {
	id    string
	conn  *websocket.Conn
	rooms *broadcast.Fanout
	send  chan types.ServerMessage
	log   *zap.Logger

	mu       sync.Mutex
	roomID   string
	playerID string
	events   <-chan pub.Event
}

var (
	errSeatTaken = fmt.Errorf("%w: connection already seated as another player", types.ErrInvalidRequest)
	errNotSeated = fmt.Errorf("%w: player is not seated on this connection", types.ErrInvalidRequest)
)

func (c *client) readLoop(ctx context.Context, d *dispatch.Dispatcher) {
	for {
		readCtx, cancel := context.WithTimeout(ctx, readTimeout)
		_, data, err := c.conn.Read(readCtx)
		cancel()
		if err != nil {
			// Treat clean close/going-away as normal; anything else just ends the connection.
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				c.log.Debug("read failed", zap.Error(err))
			}
			return
		}

		cm, req, err := types.Decode(data)
		if err != nil {
			c.enqueue(ctx, types.ServerMessage{
				Type:      types.TypeAck,
				RequestID: cm.RequestID,
				Op:        cm.Type,
				Reason:    dispatch.Reason(err),
			})
			continue
		}

		if err := c.authorize(req); err != nil {
			c.log.Debug("request rejected", zap.String("op", req.Op()), zap.Error(err))
			if !c.enqueue(ctx, types.ServerMessage{
				Type:      types.TypeAck,
				RequestID: cm.RequestID,
				Op:        req.Op(),
				RoomID:    req.Room(),
				Reason:    dispatch.Reason(err),
			}) {
				return
			}
			continue
		}

		ack := d.Handle(ctx, req)
		ack.RequestID = cm.RequestID
		if _, ok := req.(types.JoinRequest); ok && ack.Success {
			c.follow(ctx, req.Room(), req.Player())
		}
		if !c.enqueue(ctx, ack) {
			return
		}
	}
}

func (c *client) writeLoop(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.send:
			payload, err := json.Marshal(msg)
			if err != nil {
				c.log.Error("encode message", zap.Error(err))
				continue
			}
			writeCtx, done := context.WithTimeout(ctx, writeTimeout)
			err = c.conn.Write(writeCtx, websocket.MessageText, payload)
			done()
			if err != nil {
				return
			}
		}
	}
}

// authorize ties player actions to the seat this connection joined with.
// Start carries no player and is open to anyone.
func (c *client) authorize(req types.Request) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch req.(type) {
	case types.StartRequest:
		return nil
	case types.JoinRequest:
		if c.playerID != "" && c.playerID != req.Player() {
			return errSeatTaken
		}
		return nil
	}
	if c.playerID == "" || c.playerID != req.Player() || c.roomID != req.Room() {
		return errNotSeated
	}
	return nil
}

// follow seats the connection as playerID in roomID and makes sure it is
// subscribed there. Subscribe is idempotent per client, so a subscription
// dropped for being slow is restored by joining again.
func (c *client) follow(ctx context.Context, roomID, playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.roomID != "" && c.roomID != roomID {
		c.rooms.Unsubscribe(c.roomID, c.id)
	}
	c.roomID = roomID
	c.playerID = playerID

	events := c.rooms.Subscribe(roomID, c.id)
	if events == c.events {
		return
	}
	c.events = events
	go c.forward(ctx, events)
}

func (c *client) forward(ctx context.Context, events <-chan pub.Event) {
	defer func() {
		c.mu.Lock()
		if c.events == events {
			c.events = nil
		}
		c.mu.Unlock()
	}()
	for evt := range events {
		if !c.enqueue(ctx, types.FromEvent(evt)) {
			return
		}
	}
}

func (c *client) leave() {
	c.mu.Lock()
	roomID := c.roomID
	c.roomID = ""
	c.playerID = ""
	c.events = nil
	c.mu.Unlock()
	if roomID != "" {
		c.rooms.Unsubscribe(roomID, c.id)
	}
}

func (c *client) enqueue(ctx context.Context, msg types.ServerMessage) bool {
	select {
	case c.send <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}
