package config

import "time"

const (
	// DefaultHTTPTimeout matches the library default of the tower package.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultLogLevel is used when the file does not set logLevel.
	DefaultLogLevel = "info"
)

// GetDefaultConfig returns the configuration used when no file exists.
func GetDefaultConfig() Config {
	return Config{
		HTTPTimeout: DefaultHTTPTimeout,
		LogLevel:    DefaultLogLevel,
	}
}
