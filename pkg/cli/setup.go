package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dinhlab/supreme-fiesta/pkg/book"
	"github.com/dinhlab/supreme-fiesta/pkg/config"
	"github.com/dinhlab/supreme-fiesta/pkg/logging"
	"github.com/dinhlab/supreme-fiesta/pkg/store"
	"github.com/dinhlab/supreme-fiesta/pkg/store/file"
)

// lookupEnv and configDir are replaced in tests.
var (
	lookupEnv = os.LookupEnv
	configDir = ""
)

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"host":             "host",
	"port":             "port",
	"cors-origins":     "corsOrigins",
	"rate-limit":       "rateLimit",
	"rate-burst":       "rateBurst",
	"trusted-proxies":  "trustedProxies",
	"read-timeout":     "readTimeout",
	"write-timeout":    "writeTimeout",
	"shutdown-timeout": "shutdownTimeout",
	"data":             "dataFile",
	"backend":          "backend",
	"read-only":        "readOnly",
	"log-level":        "logLevel",
	"log-format":       "logFormat",
	"log-file":         "logFile",
	"log-max-size":     "logMaxSize",
	"log-max-backups":  "logMaxBackups",
	"amqp-url":         "amqpURL",
	"amqp-exchange":    "amqpExchange",
}

func addStoreFlags(fs *pflag.FlagSet) {
	fs.StringP("data", "d", "", "Data file path (default: db.json)")
	fs.String("backend", "", "Storage backend: file or memory (default: file)")
	fs.Bool("read-only", false, "Reject every write")
}

func addServerFlags(fs *pflag.FlagSet) {
	fs.String("host", "", "Listen host (default: all interfaces)")
	fs.IntP("port", "p", 0, "Listen port (default: 3000)")
	fs.String("cors-origins", "", "Comma-separated allowed CORS origins (default: *)")
	fs.Float64("rate-limit", 0, "Requests per second per client IP; 0 disables")
	fs.Int("rate-burst", 0, "Rate limit burst size (default: twice the rate)")
	fs.String("trusted-proxies", "", "Comma-separated proxy IPs or CIDRs whose X-Forwarded-For is trusted")
	fs.String("read-timeout", "", "HTTP read timeout, seconds or Go duration (default: 30s)")
	fs.String("write-timeout", "", "HTTP write timeout, seconds or Go duration (default: 30s)")
	fs.String("shutdown-timeout", "", "Graceful shutdown timeout (default: 10s)")
	fs.String("log-level", "", "Log level: debug, info, warn, error (default: info)")
	fs.String("log-format", "", "Log format: text or json (default: text)")
	fs.String("log-file", "", "Also write JSON logs to this file")
	fs.Int("log-max-size", 0, "Rotate the log file at this size in megabytes (default: 100)")
	fs.Int("log-max-backups", 0, "Rotated log files to keep (default: 3)")
	fs.String("amqp-url", "", "Publish change events to this AMQP broker")
	fs.String("amqp-exchange", "", "Fanout exchange for change events (default: bookshelf.changes)")
}

// loadConfig merges every config source, then the flags changed on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.Options{
		ConfigFile: configFile,
		EnvFile:    envFile,
		Dir:        configDir,
		LookupEnv:  lookupEnv,
	})
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyFlags(fs *pflag.FlagSet, cfg *config.Config) error {
	var errs []error
	fs.Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		if err := cfg.Set(key, f.Value.String(), config.SourceFlag); err != nil {
			errs = append(errs, fmt.Errorf("--%s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

// newLogger builds the process logger. The log file, if any, rotates by size;
// the returned func closes it.
func newLogger(cfg *config.Config, stderr io.Writer) (*slog.Logger, func(), error) {
	lc := logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
		Output: stderr,
	}
	closeFn := func() {}
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSize,
			MaxBackups: cfg.LogMaxBackups,
			Compress:   true,
		}
		lc.File = lj
		closeFn = func() { _ = lj.Close() }
	}
	return logging.New(lc), closeFn, nil
}

// openStore returns the configured backend. The memory backend is seeded
// from the data file when it loads cleanly.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (store.Store, error) {
	sc := cfg.StoreConfig()
	switch sc.Backend {
	case store.BackendFile:
		return file.New(sc.Path, file.WithReadOnly(sc.ReadOnly), file.WithLogger(log)), nil
	case store.BackendMemory:
		var books []book.Book
		ds, err := file.New(sc.Path, file.WithReadOnly(true)).Load(ctx)
		switch {
		case err == nil:
			books = ds.Books
			log.Info("memory store seeded from data file", "path", sc.Path, "books", ds.Len())
		case !errors.Is(err, store.ErrMissing):
			log.Warn("ignoring unreadable data file", "path", sc.Path, "error", err)
		}
		if sc.ReadOnly {
			return store.NewMemoryReadOnly(books...), nil
		}
		return store.NewMemory(books...), nil
	}
	return nil, fmt.Errorf("unknown backend %q", sc.Backend)
}
