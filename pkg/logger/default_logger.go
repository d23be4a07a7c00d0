package logger

import "sync"

var (
	defaultLogger *Logger
	onceLogger    sync.Once
)

// Default returns the shared process logger, creating it on first use.
func Default() *Logger {
	onceLogger.Do(func() {
		defaultLogger = New()
	})
	return defaultLogger
}
