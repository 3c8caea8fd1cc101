package ascii

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is a single request destined for a device on the bus.
type Command struct {
	// DeviceAddress is the target device, 1-99. Address 0 addresses every
	// device on the bus.
	DeviceAddress int
	// AxisNumber is the target axis, 0-9. Axis 0 makes the command device
	// scope.
	AxisNumber int
	// MessageID is an optional correlation tag, 0-255. When set, the
	// device echoes it back in the matching reply. 0 is a valid id.
	MessageID *int
	// Data is the command verb and its parameters, separated by spaces.
	// The empty string is a valid command and queries busy/idle status.
	Data string
}

// NewCommand builds a command addressed to the given device and axis.
func NewCommand(address, axis int, data string) *Command {
	return &Command{DeviceAddress: address, AxisNumber: axis, Data: data}
}

// ParseCommand builds a Command from a raw command string such as
// "/1 0 move abs 10000" or "1 move abs 10000".
//
// Leading '/' characters and the trailing terminator are stripped. Leading
// integer tokens fill the device address, axis number and message id in
// that order; the first token that is not an integer starts the data. This
// mirrors how the device firmware itself reads command lines, so partial
// prefixes like "1 home" (address only) work as they do on the wire.
func ParseCommand(s string) *Command {
	s = strings.TrimLeft(s, string(CommandMarker))
	s = strings.TrimRight(s, CRLF)

	cmd := &Command{}
	tokens := strings.Split(s, " ")
	var data []string
	slot := 0
	for i, tok := range tokens {
		if slot < 3 {
			if n, err := strconv.Atoi(tok); err == nil {
				switch slot {
				case 0:
					cmd.DeviceAddress = n
				case 1:
					cmd.AxisNumber = n
				case 2:
					cmd.MessageID = &n
				}
				slot++
				continue
			}
		}
		data = tokens[i:]
		break
	}
	cmd.Data = strings.Join(data, " ")
	return cmd
}

// Encode returns the fully formed wire line for the command, terminated
// with a single line feed. The template is chosen by whether a message id
// is set and whether the command carries data.
func (c *Command) Encode() string {
	if c.MessageID != nil {
		if c.Data != "" {
			return fmt.Sprintf("/%d %d %d %s%s",
				c.DeviceAddress, c.AxisNumber, *c.MessageID, c.Data, LF)
		}
		return fmt.Sprintf("/%d %d %d%s",
			c.DeviceAddress, c.AxisNumber, *c.MessageID, LF)
	}
	if c.Data != "" {
		return fmt.Sprintf("/%d %d %s%s", c.DeviceAddress, c.AxisNumber, c.Data, LF)
	}
	return fmt.Sprintf("/%d %d%s", c.DeviceAddress, c.AxisNumber, LF)
}

// String returns the encoded command without the line terminator, for ease
// of printing.
func (c *Command) String() string {
	return strings.TrimRight(c.Encode(), LF)
}
