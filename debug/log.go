package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu       sync.Mutex
	logger   = zap.NewNop()
	enabled  bool
	allow    func(category string) bool
	counters = make(map[string]int)
)

// Options controls where and how much Enable logs.
type Options struct {
	Path   string // defaults to ~/.config/gig-director/debug.log
	Level  string // debug, info, warn, error
	Format string // json or console

	// Categories filters Log calls by category. nil allows every category.
	Categories func(category string) bool
}

// DefaultPath returns ~/.config/gig-director/debug.log
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "gig-director", "debug.log")
}

// Enable starts debug logging to a file. Calling it twice replaces the sink.
func Enable(opts Options) error {
	if opts.Path == "" {
		opts.Path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	level := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		level.SetLevel(parsed)
	}

	cfg := zap.NewDevelopmentConfig()
	if opts.Format == "json" {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = level
	cfg.OutputPaths = []string{opts.Path}
	cfg.ErrorOutputPaths = []string{opts.Path}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	mu.Lock()
	old := logger
	logger = l
	allow = opts.Categories
	enabled = true
	mu.Unlock()

	_ = old.Sync()
	l.Named("debug").Info("=== Debug logging started ===")
	return nil
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	_ = logger.Sync()
	logger = zap.NewNop()
	allow = nil
	enabled = false
}

// Use installs an already built logger, mostly for tests and embedding hosts.
func Use(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	logger = l
	enabled = true
	mu.Unlock()
}

// L returns the structured logger. It is a no-op logger while disabled.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Log writes a message to the debug log under a category
func Log(category, format string, args ...any) {
	mu.Lock()
	if !enabled || (allow != nil && !allow(category)) {
		mu.Unlock()
		return
	}
	l := logger
	mu.Unlock()

	l.Named(category).Sugar().Debugf(format, args...)
}

// LogEvery logs only every N calls (use for high-frequency events like ticks)
func LogEvery(n int, category, format string, args ...any) {
	if n <= 0 {
		n = 1
	}
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
