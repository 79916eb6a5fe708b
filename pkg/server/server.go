// Package server hosts the TCP transport: it accepts connections, frames
// incoming and outgoing messages per pkg/protocol, and exposes each
// connection's duplex channels to the lifecycle pipeline. It has no
// counterpart in spec.md's component table but is required to realize
// §4.8/§4.9 of the world core.
package server

import (
	"fmt"
	"log"
	"net"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/leterax/voxelcore/pkg/protocol"
)

// MaxPendingMessages bounds a connection's outgoing backlog. A
// connection whose txOut queue exceeds this is treated as stalled and
// dropped at the next tick (§5).
const MaxPendingMessages = 1024

// DefaultMaxMessageSize is the recommended ceiling on a single frame's
// payload length.
const DefaultMaxMessageSize = 32 << 20

// Conn is one accepted client connection: a duplex pair of channels
// bridging the network socket to the pipeline, serviced by a read task
// and a write task.
type Conn struct {
	ID uuid.UUID

	conn   net.Conn
	txOut  chan protocol.Message
	rxIn   chan protocol.Message
	closed atomic.Bool

	maxMessageSize uint32
	log            *log.Logger
}

// Closed reports whether either I/O task has observed a failure.
func (c *Conn) Closed() bool {
	return c.closed.Load()
}

// Send enqueues msg for delivery. It silently drops the message if the
// connection is already closed — per §7, a channel-send failure after a
// peer disconnect is not an error worth surfacing. If the outgoing queue
// already holds MaxPendingMessages, the message is dropped, the backlog
// is logged, and the connection is marked closed.
func (c *Conn) Send(msg protocol.Message) {
	if c.Closed() {
		return
	}
	select {
	case c.txOut <- msg:
	default:
		c.log.Printf("server: connection %s backlogged past %d messages, dropping", c.ID, MaxPendingMessages)
		c.markClosed()
	}
}

// Receive drains every message the read task has decoded since the last
// call. Called once per tick from the pipeline's Receive stage.
func (c *Conn) Receive() []protocol.Message {
	var out []protocol.Message
	for {
		select {
		case msg := <-c.rxIn:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func (c *Conn) markClosed() {
	if c.closed.CompareAndSwap(false, true) {
		c.conn.Close()
	}
}

func (c *Conn) readLoop(table *protocol.Table) {
	defer c.markClosed()
	for {
		code, payload, err := protocol.DecodeFrame(c.conn, c.maxMessageSize)
		if err != nil {
			c.log.Printf("server: connection %s framing error: %v", c.ID, err)
			return
		}
		msg, name, err := table.Decode(code, payload)
		if err != nil {
			c.log.Printf("server: connection %s failed to decode code %d (%s): %v", c.ID, code, name, err)
			return
		}
		select {
		case c.rxIn <- msg:
		default:
			c.log.Printf("server: connection %s inbound backlog full, dropping %s", c.ID, name)
		}
	}
}

func (c *Conn) writeLoop() {
	defer c.markClosed()
	for msg := range c.txOut {
		if err := protocol.EncodeFrame(c.conn, msg.Code(), msg.Encode()); err != nil {
			c.log.Printf("server: connection %s write failed: %v", c.ID, err)
			return
		}
	}
}

// Server accepts TCP connections and hands each one a Conn.
type Server struct {
	table          *protocol.Table
	maxMessageSize uint32
	log            *log.Logger

	onAccept func(*Conn)
}

// New creates a Server dispatching decoded client messages against
// table. onAccept is invoked once per accepted connection, before its
// I/O tasks start, so the caller can register the Conn with the
// pipeline.
func New(table *protocol.Table, maxMessageSize uint32, logger *log.Logger, onAccept func(*Conn)) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if maxMessageSize == 0 {
		maxMessageSize = DefaultMaxMessageSize
	}
	return &Server{table: table, maxMessageSize: maxMessageSize, log: logger, onAccept: onAccept}
}

// Listen binds addr with TCP_NODELAY enabled and accepts connections
// until the listener is closed.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", addr, err)
	}
	defer ln.Close()

	for {
		nc, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("server: accept: %w", err)
		}
		if tcp, ok := nc.(*net.TCPConn); ok {
			tcp.SetNoDelay(true)
		}
		c := &Conn{
			ID:             uuid.New(),
			conn:           nc,
			txOut:          make(chan protocol.Message, MaxPendingMessages),
			rxIn:           make(chan protocol.Message, MaxPendingMessages),
			maxMessageSize: s.maxMessageSize,
			log:            s.log,
		}
		if s.onAccept != nil {
			s.onAccept(c)
		}
		go c.readLoop(s.table)
		go c.writeLoop()
	}
}
