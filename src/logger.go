package src

// Logger is the process-wide logging surface. zap.SugaredLogger satisfies it;
// tests may pass a no-op implementation.
type Logger interface {
	Debugf(template string, args ...any)
	Infof(template string, args ...any)
	Warnf(template string, args ...any)
	Errorf(template string, args ...any)
	Info(args ...any)
	Error(args ...any)
	Sync() error
}

type nopLogger struct{}

// NoopLogger returns a Logger that discards everything.
func NoopLogger() Logger { return nopLogger{} }

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
func (nopLogger) Info(...any)           {}
func (nopLogger) Error(...any)          {}
func (nopLogger) Sync() error           { return nil }
