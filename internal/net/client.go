// Package net maintains the websocket session with the game server. The
// read and write pumps hand frames to the simulation through bounded
// channels so a slow or dead connection can never stall a tick.
package net

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/emberveil/client/internal/config"
)

// Client is one live websocket session.
type Client struct {
	conn *websocket.Conn
	log  *zap.Logger

	in  chan []byte
	out chan []byte

	writeTimeout time.Duration

	closeOnce sync.Once
	done      chan struct{}
}

// Dial connects to the server and starts the read/write pumps.
func Dial(ctx context.Context, cfg config.NetworkConfig, log *zap.Logger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.ServerURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.ServerURL, err)
	}
	c := &Client{
		conn:         conn,
		log:          log,
		in:           make(chan []byte, cfg.InQueueSize),
		out:          make(chan []byte, cfg.OutQueueSize),
		writeTimeout: cfg.WriteTimeout,
		done:         make(chan struct{}),
	}
	go c.readPump()
	go c.writePump()
	return c, nil
}

// In exposes received frames. The frame loop drains from here each tick.
func (c *Client) In() <-chan []byte { return c.in }

// Done closes when the session ends, whatever the cause.
func (c *Client) Done() <-chan struct{} { return c.done }

// Send queues a frame for the write pump. When the queue is full the frame
// is dropped: position updates supersede each other and the server
// reconciles anything that matters.
func (c *Client) Send(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.out <- data:
		return true
	default:
		c.log.Warn("outbound queue full, dropping frame", zap.Int("size", len(data)))
		return false
	}
}

// Close tears the session down. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		deadline := time.Now().Add(c.writeTimeout)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = c.conn.Close()
	})
}

func (c *Client) readPump() {
	defer c.Close()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn("connection lost", zap.Error(err))
			}
			return
		}
		select {
		case c.in <- data:
		case <-c.done:
			return
		default:
			// Inbound backlog means the sim fell behind; dropping the
			// oldest frame keeps the freshest state flowing.
			select {
			case <-c.in:
			default:
			}
			select {
			case c.in <- data:
			default:
			}
		}
	}
}

func (c *Client) writePump() {
	for {
		select {
		case data := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Warn("write failed", zap.Error(err))
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}
