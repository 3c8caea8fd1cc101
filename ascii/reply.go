package ascii

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ReplyMessage is a single parsed message received from a device on the
// bus. A ReplyMessage is constructed once per ParseReply call and is not
// mutated by this package afterwards; each parse is independent of any
// other.
//
// Which optional fields are populated depends on Type: an info message
// never carries ReplyFlag, DeviceStatus or WarningFlag, and an alert never
// carries ReplyFlag.
type ReplyMessage struct {
	// Type is the message category tag: TypeReply, TypeInfo or TypeAlert.
	Type MessageType
	// DeviceAddress is the address of the sending device, 1-99.
	DeviceAddress int
	// AxisNumber is the sending axis, 0-9. Axis 0 is the device as a whole.
	AxisNumber int
	// MessageID is the correlation tag linking this message to the request
	// that produced it, 0-255. It is nil when the wire message carried no
	// message id; 0 is a valid id and is never used to mean "absent".
	MessageID *int
	// ReplyFlag is FlagOK or FlagRejected. Empty for info and alert
	// messages.
	ReplyFlag string
	// DeviceStatus is StatusBusy or StatusIdle. Empty for info messages.
	DeviceStatus string
	// WarningFlag is DefaultWarning or a two-letter warning code. Empty
	// for info messages.
	WarningFlag string
	// Data is the free-form payload. It may be empty and may contain
	// embedded whitespace.
	Data string
	// Checksum holds the two hex characters received on the wire, or the
	// empty string when the line carried no checksum suffix.
	Checksum string
}

// Field layouts per message type. The optional message-id group is read
// only when the remaining field count allows it, which matches how the
// device firmware emits these lines.
var (
	replyPattern = regexp.MustCompile(`^@(\d+)\s(\d+)\s(?:(\d+)\s)?(\S+)\s(\S+)\s(\S+)\s(.+)$`)
	infoPattern  = regexp.MustCompile(`^#(\d+)\s(\d+)\s(?:(\d+)\s)?(.*)$`)
	alertPattern = regexp.MustCompile(`^!(\d+)\s(\d+)\s(?:(\d+)\s)?(\S+)\s(\S+)(?:\s(.*))?$`)
)

// ParseReply parses one raw protocol line into a ReplyMessage.
//
// The line may include a trailing line terminator and an optional checksum
// suffix. Validation is strict and all-or-nothing: on failure no message is
// returned and the error identifies what went wrong (ErrTooShort,
// *ChecksumError, *MalformedError or *UnknownTypeError). ParseReply is a
// pure function of its input.
func ParseReply(line string) (*ReplyMessage, error) {
	body := strings.TrimRight(line, CRLF)
	if len(body) < minReplyLen {
		return nil, ErrTooShort
	}

	msg := &ReplyMessage{}

	// Any message type may carry a checksum suffix.
	if body[len(body)-3] == ChecksumDelimiter {
		msg.Checksum = body[len(body)-2:]
		body = body[:len(body)-3]
		if body == "" {
			return nil, ErrTooShort
		}
		if want := Checksum(body[1:]); msg.Checksum != want {
			return nil, &ChecksumError{Found: msg.Checksum, Expected: want}
		}
	}

	msg.Type = MessageType(body[0])
	switch msg.Type {
	case TypeReply:
		m := replyPattern.FindStringSubmatch(body)
		if m == nil {
			return nil, &MalformedError{Type: TypeReply, Body: body}
		}
		msg.DeviceAddress = atoi(m[1])
		msg.AxisNumber = atoi(m[2])
		msg.MessageID = optAtoi(m[3])
		msg.ReplyFlag = m[4]
		msg.DeviceStatus = m[5]
		msg.WarningFlag = m[6]
		msg.Data = m[7]

	case TypeInfo:
		m := infoPattern.FindStringSubmatch(body)
		if m == nil {
			return nil, &MalformedError{Type: TypeInfo, Body: body}
		}
		msg.DeviceAddress = atoi(m[1])
		msg.AxisNumber = atoi(m[2])
		msg.MessageID = optAtoi(m[3])
		msg.Data = m[4]

	case TypeAlert:
		m := alertPattern.FindStringSubmatch(body)
		if m == nil {
			return nil, &MalformedError{Type: TypeAlert, Body: body}
		}
		msg.DeviceAddress = atoi(m[1])
		msg.AxisNumber = atoi(m[2])
		msg.MessageID = optAtoi(m[3])
		msg.DeviceStatus = m[4]
		msg.WarningFlag = m[5]
		msg.Data = m[6]

	default:
		return nil, &UnknownTypeError{Tag: body[0]}
	}

	return msg, nil
}

// Encode reconstructs the wire-format line for the message, using the same
// field widths as the device firmware: two-digit zero-padded device
// address and message id, unpadded axis number.
//
// A stored checksum is appended verbatim; Encode never recomputes one. The
// checksum belongs to whoever last computed it, so a message whose fields
// were changed after parsing will round-trip to the same field values but
// not necessarily to a valid checksummed line. The result ends with a
// single line feed.
func (m *ReplyMessage) Encode() string {
	var body string
	switch m.Type {
	case TypeReply:
		if m.MessageID == nil {
			body = fmt.Sprintf("@%02d %d %s %s %s %s",
				m.DeviceAddress, m.AxisNumber,
				m.ReplyFlag, m.DeviceStatus, m.WarningFlag, m.Data)
		} else {
			body = fmt.Sprintf("@%02d %d %02d %s %s %s %s",
				m.DeviceAddress, m.AxisNumber, *m.MessageID,
				m.ReplyFlag, m.DeviceStatus, m.WarningFlag, m.Data)
		}

	case TypeInfo:
		if m.MessageID == nil {
			body = fmt.Sprintf("#%02d %d %s",
				m.DeviceAddress, m.AxisNumber, m.Data)
		} else {
			body = fmt.Sprintf("#%02d %d %02d %s",
				m.DeviceAddress, m.AxisNumber, *m.MessageID, m.Data)
		}

	case TypeAlert:
		if m.MessageID == nil {
			body = fmt.Sprintf("!%02d %d %s %s",
				m.DeviceAddress, m.AxisNumber,
				m.DeviceStatus, m.WarningFlag)
		} else {
			body = fmt.Sprintf("!%02d %d %02d %s %s",
				m.DeviceAddress, m.AxisNumber, *m.MessageID,
				m.DeviceStatus, m.WarningFlag)
		}
		if m.Data != "" {
			body += " " + m.Data
		}
	}

	if m.Checksum != "" {
		return body + string(ChecksumDelimiter) + m.Checksum + LF
	}
	return body + LF
}

// String returns the same line as Encode.
func (m *ReplyMessage) String() string {
	return m.Encode()
}

// NewReply builds a reply message for direct construction by callers. An
// empty warning flag is substituted with DefaultWarning here, so formatting
// code never has to guess.
func NewReply(address, axis int, flag, status, warning, data string) *ReplyMessage {
	if warning == "" {
		warning = DefaultWarning
	}
	return &ReplyMessage{
		Type:          TypeReply,
		DeviceAddress: address,
		AxisNumber:    axis,
		ReplyFlag:     flag,
		DeviceStatus:  status,
		WarningFlag:   warning,
		Data:          data,
	}
}

// NewAlert builds an alert message. An empty warning flag is substituted
// with DefaultWarning.
func NewAlert(address, axis int, status, warning string) *ReplyMessage {
	if warning == "" {
		warning = DefaultWarning
	}
	return &ReplyMessage{
		Type:          TypeAlert,
		DeviceAddress: address,
		AxisNumber:    axis,
		DeviceStatus:  status,
		WarningFlag:   warning,
	}
}

// NewInfo builds an info message.
func NewInfo(address, axis int, data string) *ReplyMessage {
	return &ReplyMessage{
		Type:          TypeInfo,
		DeviceAddress: address,
		AxisNumber:    axis,
		Data:          data,
	}
}

// atoi converts a digits-only submatch. The patterns above guarantee the
// input is numeric.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// optAtoi converts an optional submatch, keeping the absent/zero
// distinction: an empty capture yields nil, never 0.
func optAtoi(s string) *int {
	if s == "" {
		return nil
	}
	n, _ := strconv.Atoi(s)
	return &n
}
