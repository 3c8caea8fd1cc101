package controller

import (
	"context"
	"fmt"

	"i4.energy/across/motiongw/ascii"
)

// Axis represents one axis of a multi-axis device, numbered 1-9. All
// commands issued through an Axis carry its axis number, so they affect
// only that axis.
type Axis struct {
	device *Device
	number int
}

// Number returns the axis number.
func (a *Axis) Number() int {
	return a.number
}

// Send sends a command to this axis, overriding whatever axis number the
// command carries.
func (a *Axis) Send(ctx context.Context, cmd *ascii.Command) (*ascii.ReplyMessage, error) {
	send := *cmd
	send.AxisNumber = a.number
	return a.device.Send(ctx, &send)
}

// PollUntilIdle polls this axis until it reports idle. Other axes of the
// same device may still be moving.
func (a *Axis) PollUntilIdle(ctx context.Context) (*ascii.ReplyMessage, error) {
	return a.device.PollUntilIdle(ctx, a.number)
}

// Home homes this axis and waits for it to finish.
func (a *Axis) Home(ctx context.Context) (*ascii.ReplyMessage, error) {
	return a.device.moveAndWait(ctx, a.number, "home", true)
}

// MoveAbs moves this axis to an absolute position in microsteps.
func (a *Axis) MoveAbs(ctx context.Context, position int, blocking bool) (*ascii.ReplyMessage, error) {
	return a.device.moveAndWait(ctx, a.number, fmt.Sprintf("move abs %d", position), blocking)
}

// MoveRel moves this axis by a relative distance in microsteps.
func (a *Axis) MoveRel(ctx context.Context, distance int, blocking bool) (*ascii.ReplyMessage, error) {
	return a.device.moveAndWait(ctx, a.number, fmt.Sprintf("move rel %d", distance), blocking)
}

// MoveVel makes this axis move at the given speed until stopped.
func (a *Axis) MoveVel(ctx context.Context, speed int, blocking bool) (*ascii.ReplyMessage, error) {
	return a.device.moveAndWait(ctx, a.number, fmt.Sprintf("move vel %d", speed), blocking)
}

// Stop pre-empts any movement on this axis and waits for it to rest.
func (a *Axis) Stop(ctx context.Context) (*ascii.ReplyMessage, error) {
	return a.device.moveAndWait(ctx, a.number, "stop", true)
}

// Status queries this axis and returns either StatusBusy or StatusIdle.
func (a *Axis) Status(ctx context.Context) (string, error) {
	reply, err := a.Send(ctx, &ascii.Command{})
	if err != nil {
		return "", err
	}
	return reply.DeviceStatus, nil
}
