package modem

import (
	"time"
)

// Config describes how the Modem connects to and talks to the device.
// The retry/recovery policy values are deliberately part of the public
// surface: they are tuning knobs, not hidden magic numbers.
type Config struct {
	Dialer Dialer
	// ATTimeout is the default per-command response window.
	ATTimeout time.Duration
	// InitTimeout bounds the initial setup sequence.
	InitTimeout time.Duration
	// MaxRetries is how many additional attempts a timed-out command gets.
	MaxRetries int
	// FailThreshold is the number of consecutive command failures, across
	// any commands, after which the port is flushed and reopened.
	FailThreshold int
}

func (c *Config) validate() error {
	if c.Dialer == nil {
		return ErrNoDialer
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.ATTimeout == 0 {
		c.ATTimeout = 5 * time.Second
	}
	if c.InitTimeout == 0 {
		c.InitTimeout = 30 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 2
	}
	if c.FailThreshold == 0 {
		c.FailThreshold = 3
	}
}

// ConfigBuilder assembles a Config fluently. Build applies defaults and
// validates the result.
type ConfigBuilder struct {
	config Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.Dialer = d
	return b
}

func (b *ConfigBuilder) WithATTimeout(d time.Duration) *ConfigBuilder {
	b.config.ATTimeout = d
	return b
}

func (b *ConfigBuilder) WithInitTimeout(d time.Duration) *ConfigBuilder {
	b.config.InitTimeout = d
	return b
}

func (b *ConfigBuilder) WithMaxRetries(n int) *ConfigBuilder {
	b.config.MaxRetries = n
	return b
}

func (b *ConfigBuilder) WithFailThreshold(n int) *ConfigBuilder {
	b.config.FailThreshold = n
	return b
}

func (b *ConfigBuilder) Build() (Config, error) {
	config := b.config
	config.setDefaults()
	if err := config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}
