package nodeedit

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds settings shared by sessions and the command line host.
type Config struct {
	// Indent is the number of spaces used when writing the document.
	Indent int
	// NumberPolicy decides how unparsable number input is handled.
	NumberPolicy NumberPolicy
	// LogLevel is the minimum level the host logs at.
	LogLevel slog.Level
}

// Environment variables read by ConfigFromEnv.
const (
	EnvIndent       = "NODEEDIT_INDENT"
	EnvNumberPolicy = "NODEEDIT_NUMBER_POLICY"
	EnvLogLevel     = "NODEEDIT_LOG_LEVEL"
)

// DefaultConfig returns two-space indentation, strict numbers and info logging.
func DefaultConfig() Config {
	return Config{
		Indent:       len(DefaultIndent),
		NumberPolicy: NumberStrict,
		LogLevel:     slog.LevelInfo,
	}
}

// ConfigFromEnv returns DefaultConfig overridden by any NODEEDIT_* variables
// that are set.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if v, ok := os.LookupEnv(EnvIndent); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("nodeedit: %s: %w", EnvIndent, err)
		}
		cfg.Indent = n
	}
	if v, ok := os.LookupEnv(EnvNumberPolicy); ok {
		cfg.NumberPolicy = NumberPolicy(strings.ToLower(strings.TrimSpace(v)))
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.TrimSpace(v))); err != nil {
			return cfg, fmt.Errorf("nodeedit: %s: %w", EnvLogLevel, err)
		}
	}
	return cfg, cfg.Validate()
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	if c.Indent < 0 || c.Indent > 8 {
		return fmt.Errorf("nodeedit: indent %d out of range 0..8", c.Indent)
	}
	switch c.NumberPolicy {
	case NumberStrict, NumberNull:
	default:
		return fmt.Errorf("nodeedit: unknown number policy %q", c.NumberPolicy)
	}
	return nil
}

func (c Config) indent() string {
	return strings.Repeat(" ", c.Indent)
}
