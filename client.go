package evkv

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// Client is the one-shot protocol driver used by cmd/evkv-client. It is
// an external collaborator per spec.md §1 (not part of the core event
// loop): a plain blocking net.Conn is sufficient here since the client
// talks to exactly one connection at a time and never multiplexes.
//
// Behavior follows original_source/tcp_client.cpp: requests may be sent
// in a batch before any response is read back (pipelining from the
// client side), and responses are read back in submission order.
type Client struct {
	conn net.Conn
}

// Dial connects to addr (e.g. "127.0.0.1:1234") and returns a Client.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp4", addr)
	if err != nil {
		return nil, fmt.Errorf("evkv: dial %q: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// SendCommand frames and sends one request (e.g. SendCommand("set", "k", "v")).
func (c *Client) SendCommand(args ...string) error {
	raw := make([][]byte, len(args))
	for i, a := range args {
		raw[i] = []byte(a)
	}
	frame, err := encodeRequest(raw...)
	if err != nil {
		return err
	}
	_, err = c.conn.Write(frame)
	return err
}

// ReadResponse blocks for exactly one framed response and returns its
// status and payload.
func (c *Client) ReadResponse() (status Status, payload []byte, err error) {
	var lenBuf [lengthPrefixSize]byte
	if _, err := io.ReadFull(c.conn, lenBuf[:]); err != nil {
		return 0, nil, fmt.Errorf("evkv: read response length: %w", err)
	}
	length := binary.LittleEndian.Uint32(lenBuf[:])
	if length > MaxFrame {
		return 0, nil, ErrFrameTooLarge
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(c.conn, body); err != nil {
		return 0, nil, fmt.Errorf("evkv: read response body: %w", err)
	}
	resp, err := decodeResponse(body)
	if err != nil {
		return 0, nil, err
	}
	return resp.status, resp.payload, nil
}
