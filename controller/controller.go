package controller

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"i4.energy/across/motiongw/ascii"
)

// Controller drives motorized actuators speaking the ASCII protocol over a
// shared serial bus. It provides thread-safe command execution through a
// centralized event loop that owns all transport I/O.
type Controller struct {
	// transport provides the physical connection to the bus (serial,
	// TCP, etc.)
	transport Transport
	// config contains the session settings
	config Config
	// logger receives loop diagnostics
	logger *slog.Logger
	// closed indicates if the controller has been shut down
	closed bool
	// loopRunning indicates if the Loop is currently running
	loopRunning bool

	// alertChan receives unsolicited alert messages from the bus
	alertChan chan *ascii.ReplyMessage
	// commands queues command requests for the Loop to process
	commands chan *commandRequest
}

// commandRequest represents a command to be executed by the Loop.
type commandRequest struct {
	// cmd is the command to write to the bus
	cmd *ascii.Command
	// respChan receives the reply from the Loop
	respChan chan commandResponse
	// ctx provides timeout and cancellation control for the command
	ctx context.Context
}

// commandResponse contains the result of one command execution.
type commandResponse struct {
	reply *ascii.ReplyMessage
	err   error
}

// New creates a Controller with the given configuration. It establishes
// the transport connection but does not start reading; call Loop once
// before issuing commands.
func New(ctx context.Context, config Config) (*Controller, error) {
	if config.Dialer == nil {
		return nil, ErrNoDialer
	}
	config.setDefaults()

	transport, err := config.Dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	if transport == nil {
		return nil, ErrNotInitialized
	}

	return &Controller{
		transport: transport,
		config:    config,
		logger:    config.Logger,
		alertChan: make(chan *ascii.ReplyMessage, 100), // Buffered to prevent blocking on alerts
		// No queue for commands; the bus is strictly request/reply
		commands: make(chan *commandRequest),
	}, nil
}

// Loop is the main event loop that handles all transport I/O. It must be
// called exactly once after New and before any Send. The Loop:
//
//  1. Processes command requests from Send calls
//  2. Writes encoded commands to the transport
//  3. Reads and parses reply lines from the transport
//  4. Dispatches alert messages to the Alerts channel
//  5. Completes the in-flight command when its reply arrives
//
// The Loop runs until the provided context is cancelled. It is the ONLY
// goroutine that reads from the transport, so unsolicited alerts are never
// lost and replies cannot be interleaved between callers.
//
// Usage:
//
//	c, err := controller.New(ctx, config)
//	if err != nil { return err }
//
//	go c.Loop(ctx)
//
//	reply, err := c.Send(ctx, ascii.NewCommand(1, 0, "home"))
func (c *Controller) Loop(ctx context.Context) error {
	if c.loopRunning {
		return ErrLoopRunning
	}
	c.loopRunning = true
	defer func() {
		c.loopRunning = false
	}()

	scanner := bufio.NewScanner(c.transport)
	scanner.Split(ascii.Splitter)

	// Channels for lines and errors from the scanner goroutine
	lines := make(chan string, 10)
	scanErrs := make(chan error, 1)

	// Start goroutine to read lines from the transport
	go func() {
		defer close(lines)
		for scanner.Scan() {
			line := scanner.Text()
			if line != "" {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
		}
		// Scanner stopped - check if there was an error
		if err := scanner.Err(); err != nil {
			select {
			case scanErrs <- err:
			case <-ctx.Done():
			}
		}
	}()

	// Current command being processed
	var currentCmd *commandRequest

	for {
		select {
		case <-ctx.Done():
			// Context cancelled - shut down gracefully
			if currentCmd != nil {
				currentCmd.respChan <- commandResponse{err: ctx.Err()}
			}
			return ctx.Err()

		case req := <-c.commands:
			currentCmd = req

			wire := req.cmd.Encode()
			if _, err := c.transport.Write([]byte(wire)); err != nil {
				req.respChan <- commandResponse{err: fmt.Errorf("write command %q: %w", req.cmd, err)}
				currentCmd = nil
				continue
			}

		case line, ok := <-lines:
			if !ok {
				// Line channel closed - scanner stopped
				if currentCmd != nil {
					currentCmd.respChan <- commandResponse{err: io.EOF}
					currentCmd = nil
				}
				return io.EOF
			}

			msg, err := ascii.ParseReply(line)
			if err != nil {
				// A corrupt line cannot be attributed to anyone but the
				// in-flight command; the caller decides on retry or
				// discard. Without an in-flight command the line is
				// dropped.
				if currentCmd != nil {
					currentCmd.respChan <- commandResponse{err: err}
					currentCmd = nil
				} else {
					c.logger.Debug("dropping unparseable line", "line", line, "error", err)
				}
				continue
			}

			switch msg.Type {
			case ascii.TypeAlert:
				// Alerts can arrive at any time, even mid-command
				select {
				case c.alertChan <- msg:
				default:
					// Alert channel is full - drop the alert
					c.logger.Warn("alert channel full, dropping alert", "device", msg.DeviceAddress)
				}

			case ascii.TypeInfo:
				// Informational output preceding a reply; not part of
				// the request/reply contract
				c.logger.Debug("info message", "device", msg.DeviceAddress, "data", msg.Data)

			case ascii.TypeReply:
				if currentCmd != nil {
					currentCmd.respChan <- commandResponse{reply: msg}
					currentCmd = nil
				} else {
					// Orphaned reply, likely from a timed-out command
					c.logger.Debug("dropping orphaned reply", "device", msg.DeviceAddress)
				}
			}

			// Check if current command has timed out
			if currentCmd != nil {
				select {
				case <-currentCmd.ctx.Done():
					currentCmd.respChan <- commandResponse{err: fmt.Errorf("command timeout: %w", currentCmd.ctx.Err())}
					currentCmd = nil
				default:
					// Command still within timeout
				}
			}

		case err := <-scanErrs:
			// Scanner error - notify current command if any
			if currentCmd != nil {
				currentCmd.respChan <- commandResponse{err: fmt.Errorf("read error: %w", err)}
				currentCmd = nil
			}
			return fmt.Errorf("scanner error: %w", err)
		}
	}
}

// Alerts returns a read-only channel that receives unsolicited alert
// messages from the bus (for example, a slip or stall condition while an
// axis is moving). The channel is buffered, but may drop alerts if not
// consumed fast enough.
func (c *Controller) Alerts() <-chan *ascii.ReplyMessage {
	return c.alertChan
}

// Send writes a command to the bus and waits for its reply. The Loop must
// be running. Send does not inspect the reply beyond parsing; address and
// rejection checks belong to Device and Axis.
func (c *Controller) Send(ctx context.Context, cmd *ascii.Command) (*ascii.ReplyMessage, error) {
	if c.closed {
		return nil, ErrAlreadyClosed
	}
	if c.transport == nil {
		return nil, ErrNotInitialized
	}

	// Apply the per-command timeout if the context has none
	if _, ok := ctx.Deadline(); !ok && c.config.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.CommandTimeout)
		defer cancel()
	}

	req := &commandRequest{
		cmd:      cmd,
		respChan: make(chan commandResponse, 1), // Buffered to prevent blocking the Loop
		ctx:      ctx,
	}

	select {
	case c.commands <- req:
	case <-ctx.Done():
		return nil, fmt.Errorf("command cancelled before sending: %w", ctx.Err())
	}

	select {
	case resp := <-req.respChan:
		return resp.reply, resp.err
	case <-ctx.Done():
		return nil, fmt.Errorf("command timeout: %w", ctx.Err())
	}
}

// Close shuts down the controller and releases the transport. After Close
// the controller cannot be reused.
func (c *Controller) Close() error {
	if c.closed {
		return ErrAlreadyClosed
	}
	c.closed = true

	if c.transport != nil {
		return c.transport.Close()
	}
	return nil
}

// pollInterval exposes the configured busy-poll delay to Device.
func (c *Controller) pollInterval() time.Duration {
	return c.config.PollInterval
}
