package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/praytyushpande/crewlyx/internal/services/notify"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024

	commandJoinMatch  = "join-match"
	commandLeaveMatch = "leave-match"
)

// clientCommand is what a connected client may send upstream. The socket is
// read-mostly: messages themselves go through the REST API.
type clientCommand struct {
	Type    string `json:"type"`
	MatchID int64  `json:"matchId"`
}

type client struct {
	conn    *websocket.Conn
	sub     *goredis.PubSub
	matches MatchAuthorizer
	userID  int64
	logger  *zap.Logger
	send    chan []byte

	mu     sync.Mutex
	joined map[int64]bool
}

func newClient(conn *websocket.Conn, sub *goredis.PubSub, matches MatchAuthorizer, userID int64, logger *zap.Logger) *client {
	return &client{
		conn:    conn,
		sub:     sub,
		matches: matches,
		userID:  userID,
		logger:  logger,
		send:    make(chan []byte, 256),
		joined:  make(map[int64]bool),
	}
}

// readPump consumes client commands until the connection drops, then closes
// the broker subscription which in turn winds down the other pumps.
func (c *client) readPump() {
	defer func() {
		_ = c.sub.Close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read", zap.Int64("user_id", c.userID), zap.Error(err))
			}
			return
		}

		var cmd clientCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.sendEvent("error", map[string]string{"message": "invalid command"})
			continue
		}
		c.handleCommand(cmd)
	}
}

func (c *client) handleCommand(cmd clientCommand) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch cmd.Type {
	case commandJoinMatch:
		if cmd.MatchID <= 0 {
			c.sendEvent("error", map[string]string{"message": "matchId is required"})
			return
		}
		if c.matches != nil {
			if _, err := c.matches.Get(ctx, cmd.MatchID, c.userID); err != nil {
				c.sendEvent("error", map[string]string{"message": "match not available"})
				return
			}
		}
		if err := c.sub.Subscribe(ctx, notify.MatchChannel(cmd.MatchID)); err != nil {
			c.logger.Warn("subscribe match channel",
				zap.Int64("user_id", c.userID),
				zap.Int64("match_id", cmd.MatchID),
				zap.Error(err),
			)
			c.sendEvent("error", map[string]string{"message": "subscription failed"})
			return
		}
		c.mu.Lock()
		c.joined[cmd.MatchID] = true
		c.mu.Unlock()
		c.sendEvent("joined-match", map[string]int64{"matchId": cmd.MatchID})

	case commandLeaveMatch:
		c.mu.Lock()
		wasJoined := c.joined[cmd.MatchID]
		delete(c.joined, cmd.MatchID)
		c.mu.Unlock()
		if !wasJoined {
			return
		}
		if err := c.sub.Unsubscribe(ctx, notify.MatchChannel(cmd.MatchID)); err != nil {
			c.logger.Warn("unsubscribe match channel",
				zap.Int64("user_id", c.userID),
				zap.Int64("match_id", cmd.MatchID),
				zap.Error(err),
			)
			return
		}
		c.sendEvent("left-match", map[string]int64{"matchId": cmd.MatchID})

	default:
		c.sendEvent("error", map[string]string{"message": "unknown command"})
	}
}

// relayPump forwards broker events to the outbound queue. It exits when the
// subscription is closed and closes the queue behind itself.
func (c *client) relayPump() {
	defer close(c.send)

	for msg := range c.sub.Channel() {
		select {
		case c.send <- []byte(msg.Payload):
		default:
			// Slow consumer; drop the event rather than block the relay.
			c.logger.Warn("realtime queue full, dropping event", zap.Int64("user_id", c.userID))
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) sendEvent(event string, data interface{}) {
	payload, err := json.Marshal(notify.Envelope{Event: event, Data: data})
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}
