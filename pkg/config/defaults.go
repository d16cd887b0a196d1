package config

import (
	"time"

	"github.com/dinhlab/supreme-fiesta/pkg/store"
)

// DefaultPort is the default HTTP port.
const DefaultPort = 3000

// DefaultReadTimeout is the default server read timeout.
const DefaultReadTimeout = 30 * time.Second

// DefaultWriteTimeout is the default server write timeout.
const DefaultWriteTimeout = 30 * time.Second

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 10 * time.Second

// DefaultLogMaxSize is the log file size, in megabytes, that triggers rotation.
const DefaultLogMaxSize = 100

// DefaultLogMaxBackups is how many rotated log files are kept.
const DefaultLogMaxBackups = 3

// DefaultAMQPExchange receives change events when AMQP is enabled.
const DefaultAMQPExchange = "bookshelf.changes"

// Default returns a Config holding built-in defaults.
func Default() *Config {
	cfg := &Config{
		Port:            DefaultPort,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		CORSOrigins:     []string{"*"},
		DataFile:        store.DefaultPath,
		Backend:         store.BackendFile,
		LogLevel:        "info",
		LogFormat:       "text",
		LogMaxSize:      DefaultLogMaxSize,
		LogMaxBackups:   DefaultLogMaxBackups,
		AMQPExchange:    DefaultAMQPExchange,
		Sources:         make(map[string]string),
	}
	for _, key := range keys {
		cfg.Sources[key] = SourceDefault
	}
	return cfg
}

// keys lists every configurable value by YAML name.
var keys = []string{
	"host", "port", "readTimeout", "writeTimeout", "shutdownTimeout", "corsOrigins",
	"rateLimit", "rateBurst", "trustedProxies",
	"dataFile", "backend", "readOnly", "logLevel", "logFormat", "logFile",
	"logMaxSize", "logMaxBackups", "amqpURL", "amqpExchange",
}
