// Package ascii implements the line-oriented ASCII protocol spoken by
// motion controllers on a shared serial bus.
//
// The package is a pure codec: it converts raw protocol lines into typed
// messages and back, and never touches the transport. Parse and Encode are
// stateless and may be called concurrently on independent inputs.
package ascii

// MessageType identifies the category of a message by its leading tag
// character.
type MessageType byte

const (
	// TypeUnknown marks a line that carries no recognized tag.
	TypeUnknown MessageType = 0
	// TypeReply is a direct response to a command ('@').
	TypeReply MessageType = '@'
	// TypeInfo carries informational output from a device ('#').
	TypeInfo MessageType = '#'
	// TypeAlert is an unsolicited notification ('!').
	TypeAlert MessageType = '!'
)

// String returns the human-readable category name.
func (t MessageType) String() string {
	switch t {
	case TypeReply:
		return "reply"
	case TypeInfo:
		return "info"
	case TypeAlert:
		return "alert"
	default:
		return "unknown"
	}
}

const (
	// Terminal control
	LF   = "\n"
	CRLF = "\r\n"

	// CommandMarker is the lead-in character of a request line.
	CommandMarker = '/'

	// ChecksumDelimiter separates the message body from its two
	// hex-digit integrity code.
	ChecksumDelimiter = ':'

	// Reply flags
	FlagOK       = "OK"
	FlagRejected = "RJ"

	// Device statuses
	StatusBusy = "BUSY"
	StatusIdle = "IDLE"

	// DefaultWarning is the warning-flag value a device reports when no
	// warning is active.
	DefaultWarning = "--"
)

// minReplyLen is the shortest frame that can still hold a type tag plus at
// least one address digit and one axis digit. Anything shorter cannot be
// classified and is rejected outright; frames that meet the length but miss
// fields are reported against their declared type instead.
const minReplyLen = 3

// TypeOf peeks at the leading tag of a line. It lets a read loop route
// alerts and replies without a full parse. Lines that do not start with a
// recognized tag yield TypeUnknown.
func TypeOf(line string) MessageType {
	if line == "" {
		return TypeUnknown
	}
	switch t := MessageType(line[0]); t {
	case TypeReply, TypeInfo, TypeAlert:
		return t
	default:
		return TypeUnknown
	}
}
