package evkv

import "errors"

var (
	// ErrFrameTooLarge reports a length prefix exceeding MaxFrame.
	ErrFrameTooLarge = errors.New("evkv: frame exceeds maximum size")

	// ErrTooManyArgs reports a request nstr exceeding MaxArgs.
	ErrTooManyArgs = errors.New("evkv: too many arguments")

	// ErrMalformedRequest reports a request whose argument lengths do not
	// fit within the frame, or that leaves trailing bytes unconsumed. The
	// client's response decoder also returns it for a response payload
	// shorter than its 4-byte status field.
	ErrMalformedRequest = errors.New("evkv: malformed request")
)
