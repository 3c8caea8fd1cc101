package controller

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"i4.energy/across/motiongw/ascii"
)

// Device represents a single actuator controller on the bus, addressed
// 1-99. It is a thin view over the Controller; creating one performs no
// I/O.
type Device struct {
	controller *Controller
	address    int
}

// Device returns a view of the device at the given bus address.
func (c *Controller) Device(address int) (*Device, error) {
	if address < 1 || address > 99 {
		return nil, fmt.Errorf("device address must be between 1 and 99, got %d", address)
	}
	return &Device{controller: c, address: address}, nil
}

// Address returns the bus address of this device.
func (d *Device) Address() int {
	return d.address
}

// Axis returns a view of one axis of this device, numbered 1-9.
func (d *Device) Axis(number int) (*Axis, error) {
	if number < 1 || number > 9 {
		return nil, fmt.Errorf("axis number must be between 1 and 9, got %d", number)
	}
	return &Axis{device: d, number: number}, nil
}

// Send sends a command to the device and waits for its reply.
//
// Regardless of the device address set in the command, Send always
// addresses this device. This prevents a caller from accidentally
// broadcasting to the whole bus: sending "home" through a device with
// address 1 always writes "/1 0 home", never "/0 0 home". The axis number
// and message id are preserved.
//
// A reply whose address, axis or message id does not match the request
// fails with *UnexpectedReplyError.
func (d *Device) Send(ctx context.Context, cmd *ascii.Command) (*ascii.ReplyMessage, error) {
	send := *cmd
	send.DeviceAddress = d.address

	reply, err := d.controller.Send(ctx, &send)
	if err != nil {
		return nil, err
	}

	if reply.DeviceAddress != d.address ||
		reply.AxisNumber != send.AxisNumber ||
		!sameID(reply.MessageID, send.MessageID) {
		return nil, &UnexpectedReplyError{Reply: reply}
	}
	return reply, nil
}

// SendString is a convenience wrapper that parses a raw command string and
// sends it to this device.
func (d *Device) SendString(ctx context.Context, command string) (*ascii.ReplyMessage, error) {
	return d.Send(ctx, ascii.ParseCommand(command))
}

// PollUntilIdle queries the device status until it reports idle, sleeping
// the configured poll interval between queries. Axis 0 polls the device as
// a whole: it stays busy while any axis is moving.
func (d *Device) PollUntilIdle(ctx context.Context, axis int) (*ascii.ReplyMessage, error) {
	for {
		reply, err := d.Send(ctx, &ascii.Command{AxisNumber: axis})
		if err != nil {
			return nil, err
		}
		if reply.DeviceStatus == ascii.StatusIdle {
			return reply, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for idle: %w", ctx.Err())
		case <-time.After(d.controller.pollInterval()):
		}
	}
}

// Home sends the "home" command, then polls the device until it is idle.
// It returns the first reply received.
func (d *Device) Home(ctx context.Context) (*ascii.ReplyMessage, error) {
	return d.moveAndWait(ctx, 0, "home", true)
}

// MoveAbs moves the device to the given absolute position in microsteps.
// When blocking is true it polls the device until the move completes.
func (d *Device) MoveAbs(ctx context.Context, position int, blocking bool) (*ascii.ReplyMessage, error) {
	return d.moveAndWait(ctx, 0, fmt.Sprintf("move abs %d", position), blocking)
}

// MoveRel moves the device by the given distance in microsteps. When
// blocking is true it polls the device until the move completes.
func (d *Device) MoveRel(ctx context.Context, distance int, blocking bool) (*ascii.ReplyMessage, error) {
	return d.moveAndWait(ctx, 0, fmt.Sprintf("move rel %d", distance), blocking)
}

// MoveVel makes the device move at the given speed. Unlike the other move
// commands a velocity move never finishes on its own, so callers normally
// pass blocking=false and stop it with Stop.
func (d *Device) MoveVel(ctx context.Context, speed int, blocking bool) (*ascii.ReplyMessage, error) {
	return d.moveAndWait(ctx, 0, fmt.Sprintf("move vel %d", speed), blocking)
}

// Stop pre-empts any movement command and waits for the device to come to
// rest.
func (d *Device) Stop(ctx context.Context) (*ascii.ReplyMessage, error) {
	return d.moveAndWait(ctx, 0, "stop", true)
}

// Status queries the device and returns either StatusBusy or StatusIdle.
func (d *Device) Status(ctx context.Context) (string, error) {
	reply, err := d.Send(ctx, &ascii.Command{})
	if err != nil {
		return "", err
	}
	return reply.DeviceStatus, nil
}

// Position queries the current position in the device's native microstep
// units. On a multi-axis device this is the position of the first axis.
func (d *Device) Position(ctx context.Context) (int, error) {
	reply, err := d.exec(ctx, 0, "get pos")
	if err != nil {
		return 0, err
	}
	data := reply.Data
	if i := strings.IndexByte(data, ' '); i >= 0 {
		data = data[:i]
	}
	pos, err := strconv.Atoi(data)
	if err != nil {
		return 0, fmt.Errorf("parse position %q: %w", reply.Data, err)
	}
	return pos, nil
}

// exec sends a command and surfaces a rejected reply as *RejectedError.
func (d *Device) exec(ctx context.Context, axis int, command string) (*ascii.ReplyMessage, error) {
	reply, err := d.Send(ctx, &ascii.Command{AxisNumber: axis, Data: command})
	if err != nil {
		return nil, err
	}
	if reply.ReplyFlag == ascii.FlagRejected {
		return nil, &RejectedError{Reply: reply}
	}
	return reply, nil
}

// moveAndWait issues a movement command and optionally blocks until the
// device is idle again. It returns the first reply received, matching the
// device's own notion of command completion.
func (d *Device) moveAndWait(ctx context.Context, axis int, command string, blocking bool) (*ascii.ReplyMessage, error) {
	reply, err := d.exec(ctx, axis, command)
	if err != nil {
		return nil, err
	}
	if blocking {
		if _, err := d.PollUntilIdle(ctx, axis); err != nil {
			return nil, err
		}
	}
	return reply, nil
}

// sameID compares two optional message ids, treating absent and zero as
// distinct values.
func sameID(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
