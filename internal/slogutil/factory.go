package slogutil

import (
	"io"
	"log/slog"

	"nsprefix/internal/config"
	"nsprefix/internal/paths"
)

// LoggerFactory builds the command-line logger from flags and configuration.
// Precedence for the level: CLI flag > logging.level > warn.
type LoggerFactory struct {
	root     string
	config   *config.Config
	cliLevel *slog.Level
	closers  []io.Closer
}

// NewLoggerFactory creates a factory. cliLevel is nil when no -v or -q flag
// was given.
func NewLoggerFactory(root string, cfg *config.Config, cliLevel *slog.Level) *LoggerFactory {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &LoggerFactory{root: root, config: cfg, cliLevel: cliLevel}
}

// CLILogger writes to stderr and, when logging.file is set, also to that
// file (relative paths resolve against the project root). The file always
// logs at the effective level so --quiet does not blank it.
func (f *LoggerFactory) CLILogger(stderr io.Writer) (*slog.Logger, error) {
	level := f.EffectiveLevel()
	console := NewHandler(stderr, &slog.HandlerOptions{Level: level})

	if f.config.Logging.File == "" {
		return slog.New(console), nil
	}

	path := paths.Resolve(f.root, f.config.Logging.File)
	fileLevel := level
	if fileLevel == LevelSilent {
		fileLevel = LevelFromString(f.config.Logging.Level)
	}
	fileLogger, closer, err := NewRotatingFileLogger(path, fileLevel, f.config.Logging.MaxSize, f.config.Logging.MaxBackups)
	if err != nil {
		return nil, err
	}
	f.closers = append(f.closers, closer)
	return slog.New(NewTeeHandler(console, fileLogger.Handler())), nil
}

// EffectiveLevel resolves the level for the console.
func (f *LoggerFactory) EffectiveLevel() slog.Level {
	if f.cliLevel != nil {
		return *f.cliLevel
	}
	if f.config.Logging.Level != "" {
		return LevelFromString(f.config.Logging.Level)
	}
	return slog.LevelWarn
}

// Close closes all open log files.
func (f *LoggerFactory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
