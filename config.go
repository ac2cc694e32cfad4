package main

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// AppConfig is the process configuration, loaded defaults-first, then
// environment, then flags.
type AppConfig struct {
	SerialPort    string        `mapstructure:"serial_port" validate:"required"`
	BaudRate      int           `mapstructure:"baud_rate" validate:"gt=0"`
	PollInterval  time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	Once          bool          `mapstructure:"once"`
	ATTimeout     time.Duration `mapstructure:"at_timeout" validate:"gt=0"`
	InitTimeout   time.Duration `mapstructure:"init_timeout" validate:"gt=0"`
	MaxRetries    int           `mapstructure:"max_retries" validate:"gte=0"`
	FailThreshold int           `mapstructure:"fail_threshold" validate:"gt=0"`
	OutputDir     string        `mapstructure:"output_dir"`
	LogLevel      string        `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	LogFile       string        `mapstructure:"log_file"`
}

type ConfigOption func(v *viper.Viper) error

// WithDefaults seeds the baseline values every other source overrides.
func WithDefaults() ConfigOption {
	return func(v *viper.Viper) error {
		v.SetDefault("serial_port", "")
		v.SetDefault("baud_rate", 115200)
		v.SetDefault("poll_interval", 5*time.Second)
		v.SetDefault("once", false)
		v.SetDefault("at_timeout", 5*time.Second)
		v.SetDefault("init_timeout", 30*time.Second)
		v.SetDefault("max_retries", 2)
		v.SetDefault("fail_threshold", 3)
		v.SetDefault("output_dir", "")
		v.SetDefault("log_level", "info")
		v.SetDefault("log_file", "")
		return nil
	}
}

// WithEnv maps NETMON_* environment variables onto the config keys,
// e.g. NETMON_SERIAL_PORT and NETMON_POLL_INTERVAL.
func WithEnv() ConfigOption {
	return func(v *viper.Viper) error {
		v.SetEnvPrefix("NETMON")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
		return nil
	}
}

// WithFlags binds the command line onto the config keys. Flags win
// over environment and defaults.
func WithFlags(args []string) ConfigOption {
	return func(v *viper.Viper) error {
		fs := flag.NewFlagSet("netmon", flag.ContinueOnError)
		port := fs.String("port", "", "serial device of the modem, e.g. /dev/ttyUSB2")
		baud := fs.Int("baud", 0, "serial baud rate")
		interval := fs.Duration("interval", 0, "pause between poll cycles")
		once := fs.Bool("once", false, "run a single poll cycle and exit")
		outputDir := fs.String("output-dir", "", "directory for CSV snapshot logs")
		logLevel := fs.String("log-level", "", "log level: trace, debug, info, warn, error")
		logFile := fs.String("log-file", "", "log file path, empty for stderr only")
		if err := fs.Parse(args); err != nil {
			return err
		}

		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "port":
				v.Set("serial_port", *port)
			case "baud":
				v.Set("baud_rate", *baud)
			case "interval":
				v.Set("poll_interval", *interval)
			case "once":
				v.Set("once", *once)
			case "output-dir":
				v.Set("output_dir", *outputDir)
			case "log-level":
				v.Set("log_level", *logLevel)
			case "log-file":
				v.Set("log_file", *logFile)
			}
		})
		return nil
	}
}

// LoadConfig applies the options in order and validates the result.
func LoadConfig(opts ...ConfigOption) (*AppConfig, error) {
	v := viper.New()
	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}
