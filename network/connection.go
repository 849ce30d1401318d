package network

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

// ErrConnectionClosed is returned by SendMessage after Close.
var ErrConnectionClosed = errors.New("connection closed")

// ErrSendBufferFull is returned when the client is not reading fast enough.
// The connection is closed when it happens.
var ErrSendBufferFull = errors.New("send buffer full")

// Connection wraps the WebSocket connection with its outgoing queue
type Connection struct {
	ws   *websocket.Conn
	send chan []byte
	log  *logrus.Entry

	closeOnce sync.Once
	done      chan struct{}
}

// NewConnection creates a new connection wrapper
func NewConnection(ws *websocket.Conn, log *logrus.Entry) *Connection {
	return &Connection{
		ws:   ws,
		send: make(chan []byte, sendBuffer),
		log:  log.WithField("remote_addr", ws.RemoteAddr().String()),
		done: make(chan struct{}),
	}
}

// ReadPump reads messages until the client goes away. It closes the
// connection on return.
func (c *Connection) ReadPump(h MessageHandler) {
	defer c.Close()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.log.WithError(err).Warn("read failed")
			}
			return
		}
		h.HandleMessage(c, message)
	}
}

// WritePump writes queued messages and keeps the connection alive with pings
func (c *Connection) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message := <-c.send:
			if err := c.write(websocket.TextMessage, message); err != nil {
				c.log.WithError(err).Debug("write failed")
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			// Flush what is already queued, then say goodbye.
			for {
				select {
				case message := <-c.send:
					if err := c.write(websocket.TextMessage, message); err != nil {
						return
					}
				default:
					_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}

func (c *Connection) write(messageType int, data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(messageType, data)
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg any) error {
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- messageBytes:
		return nil
	default:
		c.log.Warn("send buffer full, closing connection")
		c.Close()
		return ErrSendBufferFull
	}
}

// Close stops the write pump. It is safe to call more than once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Done is closed once the connection is shutting down.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// MessageHandler interface for handling messages
type MessageHandler interface {
	HandleMessage(conn *Connection, message []byte)
}
