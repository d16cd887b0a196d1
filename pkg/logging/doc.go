// Package logging configures structured logging for bookshelf.
//
// It wraps log/slog so every component logs the same way:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.ParseLevel("debug"),
//	    Format: logging.FormatJSON,
//	})
//	logger.Info("server started", "addr", ":3000")
//
// Text output is meant for terminals and JSON for log collectors. Setting
// Config.File tees every record, as JSON, to a second writer such as an
// append-only log file.
//
// Components accept a *slog.Logger; when none is given they use Nop.
package logging
