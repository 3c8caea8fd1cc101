package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.bug.st/serial"
	"i4.energy/across/motiongw/controller"
)

func main() {
	flag.String("serial-port", "/dev/ttyUSB0", "Serial port to connect to the actuator bus")
	flag.Int("baud-rate", 115200, "Baud rate for serial communication")
	flag.String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP server")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Int("device-address", 1, "Bus address of the device to drive")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	controllerConfig, err := controller.NewConfigBuilder().
		WithCommandTimeout(5 * time.Second).
		WithPollInterval(50 * time.Millisecond).
		WithLogger(logger.With("component", "controller")).
		WithDialer(controller.SerialDialer{
			PortName: config.SerialPort,
			Mode:     &serial.Mode{BaudRate: config.BaudRate, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit},
		}).
		Build()
	if err != nil {
		logger.Error("Failed to create controller config", "error", err)
		os.Exit(1)
	}

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	c, err := controller.New(loopCtx, controllerConfig)
	if err != nil {
		logger.Error("Failed to connect to actuator bus", "error", err)
		os.Exit(1)
	}

	device, err := c.Device(config.DeviceAddress)
	if err != nil {
		logger.Error("Invalid device address", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting motion gateway", "device", device.Address(), "port", config.SerialPort)

	go func() {
		if err := c.Loop(loopCtx); err != nil && loopCtx.Err() == nil {
			logger.Error("Controller loop failed", "error", err)
			os.Exit(1)
		}
	}()

	// Alerts arrive unsolicited; surface them in the log.
	go func() {
		for alert := range c.Alerts() {
			logger.Warn("Device alert",
				"device", alert.DeviceAddress,
				"axis", alert.AxisNumber,
				"status", alert.DeviceStatus,
				"warning", alert.WarningFlag)
		}
	}()

	httpServer := &http.Server{
		Addr: config.BindAddress,
		Handler: &Server{
			Logger: logger.With("component", "server"),
			Device: device,
		},
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sig := <-sigChan
	logger.Info("Received shutdown signal", "signal", sig)

	logger.Info("Closing bus connection")
	stopLoop()
	if err := c.Close(); err != nil {
		logger.Error("Failed to close controller", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Closing HTTP server")
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to gracefully shutdown server", "error", err)
		os.Exit(1)
	}
}
