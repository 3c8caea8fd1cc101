package ascii

import (
	"errors"
	"fmt"
)

// ErrTooShort is returned by ParseReply when the input is shorter than the
// minimum viable frame (type tag, device address and axis number). The line
// is unrecoverable and should be discarded.
var ErrTooShort = errors.New("ascii: message too short to be a valid reply")

// ChecksumError is returned when a message carries a checksum that does not
// match the value computed over its body. It signals possible data
// corruption on the wire; the caller should discard the line and may
// request retransmission.
type ChecksumError struct {
	Found    string
	Expected string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("ascii: checksum incorrect: found %s, expected %s", e.Found, e.Expected)
}

// MalformedError is returned when a message body does not match the field
// layout required by its declared type. It usually indicates a protocol
// version mismatch or transport corruption.
type MalformedError struct {
	Type MessageType
	Body string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("ascii: failed to parse %s message: %q", e.Type, e.Body)
}

// UnknownTypeError is returned when the leading character of a line is not
// one of the recognized type tags.
type UnknownTypeError struct {
	Tag byte
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("ascii: unknown message type %q", e.Tag)
}
