package config

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/dinhlab/supreme-fiesta/pkg/store"
)

// Config is the complete server configuration.
type Config struct {
	// Server settings
	Host            string        `yaml:"host" json:"host"`
	Port            int           `yaml:"port" json:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" json:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" json:"shutdownTimeout"`
	CORSOrigins     []string      `yaml:"corsOrigins" json:"corsOrigins"`

	// Rate limiting; RateLimit <= 0 disables it
	RateLimit      float64  `yaml:"rateLimit" json:"rateLimit"`
	RateBurst      int      `yaml:"rateBurst" json:"rateBurst"`
	TrustedProxies []string `yaml:"trustedProxies,omitempty" json:"trustedProxies,omitempty"`

	// Storage settings
	DataFile string        `yaml:"dataFile" json:"dataFile"`
	Backend  store.Backend `yaml:"backend" json:"backend"`
	ReadOnly bool          `yaml:"readOnly" json:"readOnly"`

	// Logging settings
	LogLevel  string `yaml:"logLevel" json:"logLevel"`
	LogFormat string `yaml:"logFormat" json:"logFormat"`
	LogFile   string `yaml:"logFile,omitempty" json:"logFile,omitempty"`

	// Log file rotation, in megabytes and retained files
	LogMaxSize    int `yaml:"logMaxSize" json:"logMaxSize"`
	LogMaxBackups int `yaml:"logMaxBackups" json:"logMaxBackups"`

	// Change events; an empty AMQPURL disables publishing
	AMQPURL      string `yaml:"amqpURL,omitempty" json:"amqpURL,omitempty"`
	AMQPExchange string `yaml:"amqpExchange" json:"amqpExchange"`

	// File is the YAML file that was merged, if any.
	File string `yaml:"-" json:"file,omitempty"`

	// Sources tracks where each value came from, keyed by YAML name.
	Sources map[string]string `yaml:"-" json:"-"`
}

// Value sources.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceDotEnv  = "dotenv"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// StoreConfig returns the storage settings.
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		Backend:  c.Backend,
		Path:     c.DataFile,
		ReadOnly: c.ReadOnly,
	}
}

// fileConfig mirrors Config with pointers so absent keys are distinguishable
// from explicit zero values.
type fileConfig struct {
	Host            *string        `yaml:"host"`
	Port            *int           `yaml:"port"`
	ReadTimeout     *time.Duration `yaml:"readTimeout"`
	WriteTimeout    *time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout *time.Duration `yaml:"shutdownTimeout"`
	CORSOrigins     []string       `yaml:"corsOrigins"`
	RateLimit       *float64       `yaml:"rateLimit"`
	RateBurst       *int           `yaml:"rateBurst"`
	TrustedProxies  []string       `yaml:"trustedProxies"`
	DataFile        *string        `yaml:"dataFile"`
	Backend         *store.Backend `yaml:"backend"`
	ReadOnly        *bool          `yaml:"readOnly"`
	LogLevel        *string        `yaml:"logLevel"`
	LogFormat       *string        `yaml:"logFormat"`
	LogFile         *string        `yaml:"logFile"`
	LogMaxSize      *int           `yaml:"logMaxSize"`
	LogMaxBackups   *int           `yaml:"logMaxBackups"`
	AMQPURL         *string        `yaml:"amqpURL"`
	AMQPExchange    *string        `yaml:"amqpExchange"`
}

// Keys returns every configurable key in display order.
func Keys() []string {
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Get returns the value of key formatted the way Set accepts it.
func (c *Config) Get(key string) (string, bool) {
	switch key {
	case "host":
		return c.Host, true
	case "port":
		return strconv.Itoa(c.Port), true
	case "readTimeout":
		return c.ReadTimeout.String(), true
	case "writeTimeout":
		return c.WriteTimeout.String(), true
	case "shutdownTimeout":
		return c.ShutdownTimeout.String(), true
	case "corsOrigins":
		return strings.Join(c.CORSOrigins, ","), true
	case "rateLimit":
		return strconv.FormatFloat(c.RateLimit, 'f', -1, 64), true
	case "rateBurst":
		return strconv.Itoa(c.RateBurst), true
	case "trustedProxies":
		return strings.Join(c.TrustedProxies, ","), true
	case "dataFile":
		return c.DataFile, true
	case "backend":
		return string(c.Backend), true
	case "readOnly":
		return strconv.FormatBool(c.ReadOnly), true
	case "logLevel":
		return c.LogLevel, true
	case "logFormat":
		return c.LogFormat, true
	case "logFile":
		return c.LogFile, true
	case "logMaxSize":
		return strconv.Itoa(c.LogMaxSize), true
	case "logMaxBackups":
		return strconv.Itoa(c.LogMaxBackups), true
	case "amqpURL":
		return c.AMQPURL, true
	case "amqpExchange":
		return c.AMQPExchange, true
	}
	return "", false
}
