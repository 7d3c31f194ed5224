package evkv

import "encoding/binary"

// Wire format. All integers are unsigned, 32-bit, little-endian. Every
// message (request and response) is <u32 length><length bytes payload>.
//
// Request payload:  <u32 nstr><arg>...   where each arg is <u32 arglen><bytes>
// Response payload: <u32 status><payload bytes>
const (
	lengthPrefixSize = 4

	// MaxFrame is the maximum allowed frame payload size: 32 MiB.
	MaxFrame = 32 << 20

	// MaxArgs is the maximum allowed request argument count.
	MaxArgs = 200000
)

// Status is the response discriminator.
type Status uint32

const (
	StatusOK  Status = 0
	StatusErr Status = 1
	StatusNo  Status = 2
)

// command is a parsed request: an ordered sequence of argument strings.
// The first argument is the verb.
type command struct {
	args [][]byte
}

func (c command) verb() []byte {
	if len(c.args) == 0 {
		return nil
	}
	return c.args[0]
}

// response is a framed reply: a status code plus a raw payload.
type response struct {
	status  Status
	payload []byte
}

// tryReadFrameLength reads a 4-byte little-endian length prefix from the
// head of buf. ok is false if fewer than 4 bytes are available.
func tryReadFrameLength(buf []byte) (length uint32, ok bool) {
	if len(buf) < lengthPrefixSize {
		return 0, false
	}
	return binary.LittleEndian.Uint32(buf[:lengthPrefixSize]), true
}

// decodeRequest parses a request payload (the bytes after the 4-byte
// length prefix, exactly `length` of them) into a command. It enforces
// maxArgs, bounds-checks every arglen against the remaining payload, and
// rejects trailing garbage after the last argument.
func decodeRequest(payload []byte, maxArgs int) (command, error) {
	if len(payload) < 4 {
		return command{}, ErrMalformedRequest
	}
	nstr := binary.LittleEndian.Uint32(payload[:4])
	if nstr > uint32(maxArgs) {
		return command{}, ErrTooManyArgs
	}
	off := 4
	args := make([][]byte, 0, nstr)
	for i := uint32(0); i < nstr; i++ {
		if len(payload)-off < 4 {
			return command{}, ErrMalformedRequest
		}
		arglen := binary.LittleEndian.Uint32(payload[off : off+4])
		off += 4
		if uint64(off)+uint64(arglen) > uint64(len(payload)) {
			return command{}, ErrMalformedRequest
		}
		args = append(args, payload[off:off+int(arglen)])
		off += int(arglen)
	}
	if off != len(payload) {
		return command{}, ErrMalformedRequest
	}
	return command{args: args}, nil
}

// encodeRequest frames args as a request message, including the outer
// 4-byte length prefix.
func encodeRequest(args ...[]byte) ([]byte, error) {
	if uint64(len(args)) > MaxArgs {
		return nil, ErrTooManyArgs
	}
	payloadLen := 4
	for _, a := range args {
		payloadLen += 4 + len(a)
	}
	if payloadLen > MaxFrame {
		return nil, ErrFrameTooLarge
	}
	buf := make([]byte, lengthPrefixSize+payloadLen)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(payloadLen))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(args)))
	off := 8
	for _, a := range args {
		binary.LittleEndian.PutUint32(buf[off:off+4], uint32(len(a)))
		off += 4
		copy(buf[off:], a)
		off += len(a)
	}
	return buf, nil
}

// encodeResponse frames a response, including the outer 4-byte length
// prefix.
func encodeResponse(resp response) []byte {
	payloadLen := 4 + len(resp.payload)
	buf := make([]byte, lengthPrefixSize+payloadLen)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(payloadLen))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(resp.status))
	copy(buf[8:], resp.payload)
	return buf
}

// decodeResponse parses a response payload (the bytes after the 4-byte
// length prefix) into a status and payload. Used by the client driver.
func decodeResponse(payload []byte) (response, error) {
	if len(payload) < 4 {
		return response{}, ErrMalformedRequest
	}
	status := Status(binary.LittleEndian.Uint32(payload[:4]))
	out := make([]byte, len(payload)-4)
	copy(out, payload[4:])
	return response{status: status, payload: out}, nil
}
