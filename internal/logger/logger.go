// Package logger builds the zap logger shared by the clients and tools.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New builds a logger at the given level. Unknown levels fall back to info.
// The console format uses zap's development encoder, anything else logs JSON.
func New(logLevel, format string) (*zap.Logger, error) {
	var config zap.Config
	if strings.EqualFold(format, FormatConsole) {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	config.Level.SetLevel(level)

	return config.Build()
}

// Operation returns the field naming the client operation being logged.
func Operation(name string) zap.Field {
	return zap.String("operation", name)
}

// Table returns the field naming the datastore collection being queried.
func Table(name string) zap.Field {
	return zap.String("table", name)
}
