// Package tkv defines a transactional in-memory key/value store.
//
// The store keeps a single committed mapping shared by every session and lets
// each session run nested transactions against it. The db package hosts the
// engine, the txn package the buffered write sets and the store packages the
// committed state.
package tkv

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var logout = zerolog.ConsoleWriter{
	Out:        os.Stdout,
	TimeFormat: time.RFC3339,
}

// Logger is a globally available logger instance.
var Logger = zerolog.New(logout).
	With().Timestamp().Logger().
	With().Caller().Logger().
	Level(zerolog.InfoLevel)

// PromCollectors exposes the metrics of the modules so that an external
// program can register them against a prometheus registry.
var PromCollectors []prometheus.Collector
