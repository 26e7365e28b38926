package cliconfig

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/storytext/pkg/log"
)

// Logger returns a console zerolog logger on stderr at the configured level.
// An unparsable level falls back to info.
func (c *Config) Logger() zerolog.Logger {
	level, err := c.Level()
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}

// LogAdapter wraps Logger for the application layer.
func (c *Config) LogAdapter() *log.ZerologAdapter {
	return log.NewZerologAdapterWithLogger(c.Logger())
}
