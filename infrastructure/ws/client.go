package ws

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"net"
	"time"

	"quicktalk/errors"
	"quicktalk/session"

	"github.com/gorilla/websocket"
)

// client pumps one websocket connection in and out of its session.
// The read pump owns the session teardown, the write pump owns the socket
// close: whichever side stops first unblocks the other.
type client struct {
	log     *slog.Logger
	conn    *websocket.Conn
	session *session.Session
	cfg     Config
}

func newClient(log *slog.Logger, conn *websocket.Conn, s *session.Session, cfg Config) *client {
	conn.SetReadLimit(cfg.MaxMessageSize)
	return &client{log: log, conn: conn, session: s, cfg: cfg}
}

func (c *client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait)); err != nil {
		c.log.Debug("Error setting initial read deadline", "error", err)
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})
}

func (c *client) readPump(ctx context.Context) {
	defer func() {
		c.session.Close()
		c.closeConnection()
	}()

	c.setupReadConnection()
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}
		if err := c.session.HandleFrame(ctx, raw); stderrors.Is(err, errors.ErrSessionClosed) {
			return
		}
	}
}

func (c *client) logReadError(err error) {
	switch {
	case stderrors.Is(err, websocket.ErrReadLimit):
		c.log.Info("Frame exceeded maximum size", "limit", c.cfg.MaxMessageSize)
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived):
		c.log.Debug("Client disconnected")
	case stderrors.Is(err, io.EOF), stderrors.Is(err, net.ErrClosed):
		c.log.Debug("Connection closed", "error", err)
	default:
		c.log.Warn("Websocket read error", "error", err)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	sink := c.session.Sink()
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case e := <-sink.Events():
			raw, ok, err := session.Encode(e)
			if err != nil {
				c.log.Error("Encoding outbound frame failed", "error", err)
				continue
			}
			if !ok {
				continue
			}
			if !c.write(websocket.TextMessage, raw) {
				return
			}
		case <-sink.Done():
			c.writeClose(sink.Err())
			return
		case <-ticker.C:
			if !c.write(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *client) write(messageType int, payload []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait)); err != nil {
		c.log.Debug("Error setting write deadline", "error", err)
		return false
	}
	if err := c.conn.WriteMessage(messageType, payload); err != nil {
		c.log.Debug("Websocket write failed", "error", err)
		return false
	}
	return true
}

// writeClose tells the peer why the server ends the connection.
func (c *client) writeClose(cause error) {
	code, reason := websocket.CloseNormalClosure, ""
	if stderrors.Is(cause, errors.ErrSlowConsumer) {
		code, reason = websocket.ClosePolicyViolation, "slow consumer"
	}
	deadline := time.Now().Add(c.cfg.WriteWait)
	if err := c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline); err != nil {
		c.log.Debug("Error writing close message", "error", err)
	}
}

func (c *client) closeConnection() {
	if err := c.conn.Close(); err != nil && !stderrors.Is(err, net.ErrClosed) {
		c.log.Debug("Error closing connection", "error", err)
	}
}
