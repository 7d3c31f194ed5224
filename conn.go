package evkv

import (
	"errors"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// connState is the connection's logical mode. Representing it as a tagged
// enum (rather than independent want_read/want_write/want_close booleans)
// makes "never both read and write intent" true by construction.
type connState uint8

const (
	connReading connState = iota
	connWriting
	connClosing
)

// conn is a single client connection: its file descriptor, its logical
// state, and the two byte buffers backing its incoming and outgoing
// streams. Each conn exclusively owns its fd and buffers.
type conn struct {
	fd    int
	state connState

	incoming *ringBuffer
	outgoing *ringBuffer

	remote string

	maxFrame int
	maxArgs  int
}

func newConn(fd int, remote string, maxFrame, maxArgs int) *conn {
	return &conn{
		fd:       fd,
		state:    connReading,
		incoming: newRingBuffer(4096),
		outgoing: newRingBuffer(4096),
		remote:   remote,
		maxFrame: maxFrame,
		maxArgs:  maxArgs,
	}
}

func (c *conn) wantRead() bool  { return c.state == connReading }
func (c *conn) wantWrite() bool { return c.state == connWriting }
func (c *conn) closing() bool   { return c.state == connClosing }

// runProtocolEngine repeatedly extracts one complete request from the
// incoming buffer, dispatches it, and appends the framed response to the
// outgoing buffer, until no further complete request is available. It
// implements spec §4.5 (the "try one request" loop).
func (c *conn) runProtocolEngine(st *store, log *logrus.Logger) {
	for {
		buf := c.incoming.view()

		length, ok := tryReadFrameLength(buf)
		if !ok {
			return
		}
		if length > uint32(c.maxFrame) {
			log.WithFields(logrus.Fields{"remote": c.remote, "length": length}).
				Warn("evkv: oversize frame, closing connection")
			c.state = connClosing
			return
		}
		if len(buf) < lengthPrefixSize+int(length) {
			return
		}

		payload := buf[lengthPrefixSize : lengthPrefixSize+int(length)]
		cmd, err := decodeRequest(payload, c.maxArgs)
		if err != nil {
			log.WithFields(logrus.Fields{"remote": c.remote, "err": err}).
				Warn("evkv: protocol violation, closing connection")
			c.state = connClosing
			return
		}

		if isClose(cmd) {
			c.incoming.consume(lengthPrefixSize + int(length))
			c.state = connClosing
			return
		}

		resp := st.dispatch(cmd)
		c.outgoing.append(encodeResponse(resp))
		c.incoming.consume(lengthPrefixSize + int(length))
	}
}

// afterProtocolEngine flips intents once the protocol engine has drained
// what it can: if a response is pending, switch to the write intent.
func (c *conn) afterProtocolEngine() {
	if c.state == connClosing {
		return
	}
	if c.outgoing.len() > 0 {
		c.state = connWriting
	}
}

// readScratchSize is the fixed stack-sized buffer used for each
// non-blocking read, per spec §4.6 ("a fixed stack buffer, >= 64 KiB
// recommended").
const readScratchSize = 64 * 1024

// onReadable performs a single non-blocking read and, on progress, drives
// the protocol engine. It implements spec §4.6.
func (c *conn) onReadable(st *store, log *logrus.Logger, pool *bytePool) {
	scratch := pool.get(readScratchSize)
	defer pool.put(scratch)
	scratch = scratch[:readScratchSize]

	n, err := unix.Read(c.fd, scratch)
	switch {
	case n > 0:
		c.incoming.append(scratch[:n])
		c.runProtocolEngine(st, log)
		c.afterProtocolEngine()
	case n == 0 && err == nil:
		// Peer EOF. A non-empty incoming buffer here is an abrupt close,
		// observable only via logging, not a distinct terminal state.
		if c.incoming.len() > 0 {
			log.WithFields(logrus.Fields{"remote": c.remote}).
				Warn("evkv: peer closed with unconsumed bytes pending")
		}
		c.state = connClosing
	case isWouldBlock(err):
		// Not ready yet; leave state unchanged, re-poll next iteration.
	default:
		c.state = connClosing
	}
}

// onWritable performs a single non-blocking write of the entire outgoing
// region. It implements spec §4.7. Precondition: outgoing is non-empty.
func (c *conn) onWritable() {
	buf := c.outgoing.view()
	if len(buf) == 0 {
		c.state = connReading
		return
	}
	n, err := unix.Write(c.fd, buf)
	switch {
	case n > 0:
		c.outgoing.consume(n)
		if c.outgoing.len() == 0 {
			c.state = connReading
		}
	case isWouldBlock(err):
		// Not ready yet; leave state unchanged, re-poll next iteration.
	default:
		c.state = connClosing
	}
}

// isWouldBlock reports whether err represents transient non-blocking
// unreadiness (EAGAIN/EWOULDBLOCK/EINTR) rather than a real failure.
func isWouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR)
}
