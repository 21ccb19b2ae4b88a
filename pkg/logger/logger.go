package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	mu          sync.Mutex
	infoLogger  *zap.Logger
	serviceName = "default"
)

func SetServiceName(newName string) string {
	mu.Lock()
	defer mu.Unlock()

	oldName := serviceName
	serviceName = newName

	return oldName
}

// Init builds the package logger. Safe to call more than once;
// later calls are no-ops.
func Init() error {
	mu.Lock()
	defer mu.Unlock()

	if infoLogger != nil {
		return nil
	}
	l, err := zap.NewProduction(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	infoLogger = l
	return nil
}

func get() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()

	if infoLogger == nil {
		// fallback so early failures are still visible
		infoLogger = zap.Must(zap.NewProduction(zap.AddCallerSkip(1)))
	}
	return infoLogger
}

func Info(format string, args ...interface{}) {
	get().With(zap.String("service", serviceName)).Info(fmt.Sprintf(format, args...))
}

func Error(format string, args ...interface{}) {
	get().With(zap.String("service", serviceName)).Error(fmt.Sprintf(format, args...))
}

func Fatal(format string, args ...interface{}) {
	get().With(zap.String("service", serviceName)).Fatal(fmt.Sprintf(format, args...))
}
