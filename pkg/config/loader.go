package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dinhlab/supreme-fiesta/pkg/logging"
	"github.com/dinhlab/supreme-fiesta/pkg/store"
)

// FileNames are searched, in order, when no config file is given.
var FileNames = []string{"bookshelf.yaml", "bookshelf.yml", ".bookshelf.yaml", ".bookshelf.yml"}

// DefaultEnvFile is the dotenv file read when none is given.
const DefaultEnvFile = ".env"

// EnvVar binds an environment variable to a config key.
type EnvVar struct {
	Name string
	Key  string
}

// EnvVars lists the recognized variables. BOOKSHELF_PORT follows PORT so it
// wins when both are set.
var EnvVars = []EnvVar{
	{"PORT", "port"},
	{"BOOKSHELF_HOST", "host"},
	{"BOOKSHELF_PORT", "port"},
	{"BOOKSHELF_DATA_FILE", "dataFile"},
	{"BOOKSHELF_BACKEND", "backend"},
	{"BOOKSHELF_READ_ONLY", "readOnly"},
	{"BOOKSHELF_LOG_LEVEL", "logLevel"},
	{"BOOKSHELF_LOG_FORMAT", "logFormat"},
	{"BOOKSHELF_LOG_FILE", "logFile"},
	{"BOOKSHELF_LOG_MAX_SIZE", "logMaxSize"},
	{"BOOKSHELF_LOG_MAX_BACKUPS", "logMaxBackups"},
	{"BOOKSHELF_AMQP_URL", "amqpURL"},
	{"BOOKSHELF_AMQP_EXCHANGE", "amqpExchange"},
	{"BOOKSHELF_CORS_ORIGINS", "corsOrigins"},
	{"BOOKSHELF_RATE_LIMIT", "rateLimit"},
	{"BOOKSHELF_RATE_BURST", "rateBurst"},
	{"BOOKSHELF_TRUSTED_PROXIES", "trustedProxies"},
	{"BOOKSHELF_READ_TIMEOUT", "readTimeout"},
	{"BOOKSHELF_WRITE_TIMEOUT", "writeTimeout"},
	{"BOOKSHELF_SHUTDOWN_TIMEOUT", "shutdownTimeout"},
}

// ConfigError reports a bad value and where it came from.
type ConfigError struct {
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Path + ": " + e.Message
}

// Options controls Load.
type Options struct {
	// ConfigFile is an explicit YAML file. It must exist.
	ConfigFile string

	// EnvFile is the dotenv file. Defaults to DefaultEnvFile; a missing
	// default file is ignored.
	EnvFile string

	// Dir is searched for FileNames. Defaults to the working directory.
	Dir string

	// LookupEnv reads the process environment. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load builds a Config from defaults, file, dotenv and environment.
func Load(opts Options) (*Config, error) {
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}

	cfg := Default()

	path := opts.ConfigFile
	if path == "" {
		found, err := FindFile(opts.Dir)
		if err != nil {
			return nil, err
		}
		path = found
	}
	if path != "" {
		fc, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		cfg.merge(fc, SourceFile)
		cfg.File = path
	}

	envFile := opts.EnvFile
	explicitEnv := envFile != ""
	if !explicitEnv {
		envFile = filepath.Join(opts.Dir, DefaultEnvFile)
	}
	dotenv, err := ReadDotEnv(envFile)
	if err != nil && (explicitEnv || !errors.Is(err, fs.ErrNotExist)) {
		return nil, &ConfigError{Path: envFile, Message: err.Error()}
	}
	if err := cfg.ApplyEnv(func(name string) (string, bool) {
		if _, set := opts.LookupEnv(name); set {
			return "", false
		}
		v, ok := dotenv[name]
		return v, ok
	}, SourceDotEnv); err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(opts.LookupEnv, SourceEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindFile returns the first of FileNames present in dir, or "".
func FindFile(dir string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = cwd
	}
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// loadFile decodes a YAML config file. Unknown keys are rejected.
func loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, &ConfigError{Path: path, Message: err.Error()}
	}
	return &fc, nil
}

// ReadDotEnv parses a dotenv file without touching the process environment.
func ReadDotEnv(path string) (map[string]string, error) {
	return godotenv.Read(path)
}

// ApplyEnv sets every value whose variable lookup reports as present.
func (c *Config) ApplyEnv(lookup func(string) (string, bool), source string) error {
	for _, ev := range EnvVars {
		v, ok := lookup(ev.Name)
		if !ok {
			continue
		}
		if err := c.Set(ev.Key, v, source); err != nil {
			return &ConfigError{Path: source + " " + ev.Name, Message: err.Error()}
		}
	}
	return nil
}

// Set parses value for key and records source.
func (c *Config) Set(key, value, source string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "host":
		c.Host = value
	case "port":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid port %q", value)
		}
		c.Port = n
	case "readTimeout", "writeTimeout", "shutdownTimeout":
		d, err := parseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q", key, value)
		}
		switch key {
		case "readTimeout":
			c.ReadTimeout = d
		case "writeTimeout":
			c.WriteTimeout = d
		default:
			c.ShutdownTimeout = d
		}
	case "corsOrigins":
		c.CORSOrigins = splitList(value)
	case "rateLimit":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid rateLimit %q", value)
		}
		c.RateLimit = f
	case "rateBurst":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid rateBurst %q", value)
		}
		c.RateBurst = n
	case "trustedProxies":
		c.TrustedProxies = splitList(value)
	case "dataFile":
		c.DataFile = value
	case "backend":
		c.Backend = store.Backend(strings.ToLower(value))
	case "readOnly":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid readOnly %q", value)
		}
		c.ReadOnly = b
	case "logLevel":
		c.LogLevel = value
	case "logFormat":
		c.LogFormat = value
	case "logFile":
		c.LogFile = value
	case "logMaxSize", "logMaxBackups":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q", key, value)
		}
		if key == "logMaxSize" {
			c.LogMaxSize = n
		} else {
			c.LogMaxBackups = n
		}
	case "amqpURL":
		c.AMQPURL = value
	case "amqpExchange":
		c.AMQPExchange = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	c.source(key, source)
	return nil
}

// Validate checks that the merged values are usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.RateLimit < 0 || math.IsNaN(c.RateLimit) || math.IsInf(c.RateLimit, 0) {
		errs = append(errs, errors.New("rateLimit must be a non-negative number"))
	}
	if c.RateBurst < 0 {
		errs = append(errs, errors.New("rateBurst must not be negative"))
	}
	for _, p := range c.TrustedProxies {
		if !validProxy(p) {
			errs = append(errs, fmt.Errorf("trustedProxies: %q is not an IP or CIDR", p))
		}
	}
	if !c.Backend.Valid() {
		errs = append(errs, fmt.Errorf("unknown backend %q", c.Backend))
	}
	if c.Backend == store.BackendFile && c.DataFile == "" {
		errs = append(errs, errors.New("dataFile is required for the file backend"))
	}
	if !logging.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	if !logging.ValidFormat(c.LogFormat) {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if c.LogMaxSize < 0 {
		errs = append(errs, errors.New("logMaxSize must not be negative"))
	}
	if c.LogMaxBackups < 0 {
		errs = append(errs, errors.New("logMaxBackups must not be negative"))
	}
	if c.AMQPURL != "" {
		if !strings.HasPrefix(c.AMQPURL, "amqp://") && !strings.HasPrefix(c.AMQPURL, "amqps://") {
			errs = append(errs, errors.New("amqpURL must use the amqp or amqps scheme"))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, errors.New("amqpExchange is required when amqpURL is set"))
		}
	}
	timeouts := []struct {
		name string
		d    time.Duration
	}{
		{"readTimeout", c.ReadTimeout},
		{"writeTimeout", c.WriteTimeout},
		{"shutdownTimeout", c.ShutdownTimeout},
	}
	for _, t := range timeouts {
		if t.d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", t.name))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) merge(fc *fileConfig, source string) {
	if fc.Host != nil {
		c.Host = *fc.Host
		c.source("host", source)
	}
	if fc.Port != nil {
		c.Port = *fc.Port
		c.source("port", source)
	}
	if fc.ReadTimeout != nil {
		c.ReadTimeout = *fc.ReadTimeout
		c.source("readTimeout", source)
	}
	if fc.WriteTimeout != nil {
		c.WriteTimeout = *fc.WriteTimeout
		c.source("writeTimeout", source)
	}
	if fc.ShutdownTimeout != nil {
		c.ShutdownTimeout = *fc.ShutdownTimeout
		c.source("shutdownTimeout", source)
	}
	if fc.CORSOrigins != nil {
		c.CORSOrigins = fc.CORSOrigins
		c.source("corsOrigins", source)
	}
	if fc.RateLimit != nil {
		c.RateLimit = *fc.RateLimit
		c.source("rateLimit", source)
	}
	if fc.RateBurst != nil {
		c.RateBurst = *fc.RateBurst
		c.source("rateBurst", source)
	}
	if fc.TrustedProxies != nil {
		c.TrustedProxies = fc.TrustedProxies
		c.source("trustedProxies", source)
	}
	if fc.DataFile != nil {
		c.DataFile = *fc.DataFile
		c.source("dataFile", source)
	}
	if fc.Backend != nil {
		c.Backend = *fc.Backend
		c.source("backend", source)
	}
	if fc.ReadOnly != nil {
		c.ReadOnly = *fc.ReadOnly
		c.source("readOnly", source)
	}
	if fc.LogLevel != nil {
		c.LogLevel = *fc.LogLevel
		c.source("logLevel", source)
	}
	if fc.LogFormat != nil {
		c.LogFormat = *fc.LogFormat
		c.source("logFormat", source)
	}
	if fc.LogFile != nil {
		c.LogFile = *fc.LogFile
		c.source("logFile", source)
	}
	if fc.LogMaxSize != nil {
		c.LogMaxSize = *fc.LogMaxSize
		c.source("logMaxSize", source)
	}
	if fc.LogMaxBackups != nil {
		c.LogMaxBackups = *fc.LogMaxBackups
		c.source("logMaxBackups", source)
	}
	if fc.AMQPURL != nil {
		c.AMQPURL = *fc.AMQPURL
		c.source("amqpURL", source)
	}
	if fc.AMQPExchange != nil {
		c.AMQPExchange = *fc.AMQPExchange
		c.source("amqpExchange", source)
	}
}

func (c *Config) source(key, source string) {
	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	c.Sources[key] = source
}

// parseDuration accepts Go durations ("15s") or whole seconds ("15").
func parseDuration(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}

func validProxy(s string) bool {
	if _, _, err := net.ParseCIDR(s); err == nil {
		return true
	}
	return net.ParseIP(s) != nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
