package log

import (
	"context"
	"log/slog"
	"sync"
)

var (
	providerMu sync.RWMutex
	provider   LoggerProvider = NewSlogProvider(nil)
)

// SetProvider replaces the provider behind GetLogger and GetLoggerWithName.
// The CLI installs a zerolog provider once at startup; library code should
// prefer an explicitly injected Logger and only fall back to these helpers.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
}

// GetLogger returns the default logger of the current provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLogger()
}

// GetLoggerWithName returns a component logger of the current provider.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLoggerWithName(name)
}

// SlogProvider creates Loggers backed by a *slog.Logger.
type SlogProvider struct {
	base  *slog.Logger
	level Level
	mu    sync.RWMutex
}

// NewSlogProvider returns a provider over base. A nil base resolves to
// slog.Default() at the time each logger is created, so SetupLogger may run
// after the provider was built.
func NewSlogProvider(base *slog.Logger) *SlogProvider {
	return &SlogProvider{base: base, level: LevelDebug}
}

func (p *SlogProvider) logger() *slog.Logger {
	if p.base != nil {
		return p.base
	}
	return slog.Default()
}

// GetLogger implements LoggerProvider.
func (p *SlogProvider) GetLogger() Logger {
	return &slogLogger{l: p.logger(), provider: p}
}

// GetLoggerWithName implements LoggerProvider.
func (p *SlogProvider) GetLoggerWithName(name string) Logger {
	return &slogLogger{l: p.logger().With(ComponentKey, name), provider: p}
}

// SetLevel implements LoggerProvider.
func (p *SlogProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
}

func (p *SlogProvider) minLevel() Level {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.level
}

type slogLogger struct {
	l        *slog.Logger
	provider *SlogProvider
}

func (s *slogLogger) log(level Level, msg string, fields []any) {
	if level < s.provider.minLevel() {
		return
	}
	s.l.Log(context.Background(), slog.Level(level), msg, errFirst(fields)...)
}

func (s *slogLogger) Debug(msg string, fields ...any) { s.log(LevelDebug, msg, fields) }
func (s *slogLogger) Info(msg string, fields ...any)  { s.log(LevelInfo, msg, fields) }
func (s *slogLogger) Warn(msg string, fields ...any)  { s.log(LevelWarn, msg, fields) }
func (s *slogLogger) Error(msg string, fields ...any) { s.log(LevelError, msg, fields) }

func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{l: s.l.With(errFirst(fields)...), provider: s.provider}
}

func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return level >= s.provider.minLevel() && s.l.Enabled(ctx, slog.Level(level))
}

// errFirst turns a leading error argument into an ErrAttr so that
// ErrFmtHandler can attach its stack trace.
func errFirst(fields []any) []any {
	if len(fields) == 0 {
		return fields
	}
	err, ok := fields[0].(error)
	if !ok {
		return fields
	}
	out := make([]any, 0, len(fields))
	out = append(out, ErrAttr(err))
	return append(out, fields[1:]...)
}
