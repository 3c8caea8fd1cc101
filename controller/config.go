package controller

import (
	"log/slog"
	"time"
)

// Config carries the settings for a Controller. Build one with
// NewConfigBuilder.
type Config struct {
	// Dialer opens the transport to the bus. Required.
	Dialer Dialer
	// CommandTimeout bounds how long Send waits for a reply when the
	// caller's context has no deadline of its own.
	CommandTimeout time.Duration
	// PollInterval is the delay between status queries while waiting for
	// a device to become idle.
	PollInterval time.Duration
	// Logger receives loop diagnostics (dropped lines, discarded
	// alerts). The codec itself never logs; observability is owned by
	// the caller. When nil, diagnostics are discarded.
	Logger *slog.Logger
}

func (c *Config) validate() error {
	if c.Dialer == nil {
		return ErrNoDialer
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.CommandTimeout == 0 {
		c.CommandTimeout = 5 * time.Second
	}
	if c.PollInterval == 0 {
		c.PollInterval = 50 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
}

// ConfigBuilder assembles a Config step by step.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder returns a builder preloaded with nothing; defaults are
// applied during Build.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

// WithDialer sets the transport dialer.
func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.Dialer = d
	return b
}

// WithCommandTimeout sets the default per-command reply timeout.
func (b *ConfigBuilder) WithCommandTimeout(d time.Duration) *ConfigBuilder {
	b.config.CommandTimeout = d
	return b
}

// WithPollInterval sets the busy-polling interval.
func (b *ConfigBuilder) WithPollInterval(d time.Duration) *ConfigBuilder {
	b.config.PollInterval = d
	return b
}

// WithLogger sets the diagnostics logger.
func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.Logger = l
	return b
}

// Build validates the configuration and fills in defaults.
func (b *ConfigBuilder) Build() (Config, error) {
	config := b.config
	config.setDefaults()
	if err := config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}
