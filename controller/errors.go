package controller

import (
	"errors"
	"fmt"

	"i4.energy/across/motiongw/ascii"
)

var (
	// ErrNoDialer is returned when a Controller is constructed without a
	// Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order
	// to establish a connection to the bus.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotInitialized is returned when an operation is attempted on a
	// Controller that has no usable transport.
	ErrNotInitialized = errors.New("controller not initialized")

	// ErrAlreadyClosed is returned when Close is called on a Controller
	// that has already been closed.
	ErrAlreadyClosed = errors.New("controller already closed")

	// ErrLoopRunning is returned when Loop is called while another Loop
	// call is still active. Only one loop may own the transport.
	ErrLoopRunning = errors.New("event loop already running")
)

// UnexpectedReplyError is returned when the reply received does not match
// the device address, axis number or message id of the request that was
// sent. It carries the offending reply so the caller can log it.
type UnexpectedReplyError struct {
	Reply *ascii.ReplyMessage
}

func (e *UnexpectedReplyError) Error() string {
	return fmt.Sprintf("unexpected reply from device %d, axis %d",
		e.Reply.DeviceAddress, e.Reply.AxisNumber)
}

// RejectedError is returned by movement helpers when the device answers
// with the RJ flag. The reply data names the rejection reason.
type RejectedError struct {
	Reply *ascii.ReplyMessage
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("device %d rejected command: %s",
		e.Reply.DeviceAddress, e.Reply.Data)
}
