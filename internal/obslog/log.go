// Package obslog provides the structured logger shared by every autumndb
// component that logs: AAE workers, client acceptor, and the node bootstrap
// entrypoint.
package obslog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide logger. Init replaces it; until then it logs
// at info level to stdout in console form.
var Logger zerolog.Logger

// Level is a logging verbosity, independent of zerolog's own type so
// callers configuring autumndb don't need to import zerolog directly.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config configures the global logger.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

func init() {
	Init(Config{Level: InfoLevel})
}

// Init replaces the global logger per cfg.
func Init(cfg Config) {
	var level zerolog.Level

	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	case InfoLevel, "":
		level = zerolog.InfoLevel
	default:
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
		return
	}

	Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

// WithComponent returns a child logger tagging every entry with component,
// e.g. "node", "aae.broadcaster", "server".
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithNodeID returns a child logger tagging every entry with the node's
// configured id.
func WithNodeID(nodeID string) zerolog.Logger {
	return Logger.With().Str("node_id", nodeID).Logger()
}

// WithCollection returns a child logger tagging every entry with a
// collection name.
func WithCollection(name string) zerolog.Logger {
	return Logger.With().Str("collection", name).Logger()
}

// WithPeer returns a child logger tagging every entry with an AAE peer
// address.
func WithPeer(addr string) zerolog.Logger {
	return Logger.With().Str("peer", addr).Logger()
}
