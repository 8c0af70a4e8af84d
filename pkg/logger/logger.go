// Package logger dispatches leveled, structured log calls to the configured
// backends. Calls made before Init are dropped.
package logger

import "sync"

// LoggerInstance is a logging backend.
type LoggerInstance interface {
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
}

type Logger struct {
	instances []LoggerInstance
}

var (
	mu        sync.RWMutex
	singleton *Logger
)

func getSingleton() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return singleton
}

// Init installs the backends used by the package level functions.
func Init(instances ...LoggerInstance) {
	mu.Lock()
	defer mu.Unlock()
	singleton = &Logger{instances: instances}
}

func Debug(message string, keyvals ...any) {
	if logger := getSingleton(); logger != nil {
		for _, instance := range logger.instances {
			instance.Debug(message, keyvals...)
		}
	}
}

func Info(message string, keyvals ...any) {
	if logger := getSingleton(); logger != nil {
		for _, instance := range logger.instances {
			instance.Info(message, keyvals...)
		}
	}
}

func Warn(message string, keyvals ...any) {
	if logger := getSingleton(); logger != nil {
		for _, instance := range logger.instances {
			instance.Warn(message, keyvals...)
		}
	}
}

func Error(message string, keyvals ...any) {
	if logger := getSingleton(); logger != nil {
		for _, instance := range logger.instances {
			instance.Error(message, keyvals...)
		}
	}
}
