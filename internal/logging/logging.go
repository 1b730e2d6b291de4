package logging

import (
	"fmt"
	"io"
	"time"
)

// Logger is the shared logging contract for all subsystems.
// Components pass a short subsystem tag (e.g. "render", "pixoo") so one
// log file stays greppable.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Infof(component, format string, args ...interface{})  {}
func (NoopLogger) Errorf(component, format string, args ...interface{}) {}

type WriterLogger struct{ w io.Writer }

func NewWriterLogger(w io.Writer) WriterLogger { return WriterLogger{w: w} }

func (l WriterLogger) Infof(component string, format string, args ...interface{}) {
	writeLog(l.w, "INFO", component, format, args...)
}

func (l WriterLogger) Errorf(component string, format string, args ...interface{}) {
	writeLog(l.w, "ERROR", component, format, args...)
}

func writeLog(w io.Writer, level, component, format string, args ...interface{}) {
	timestamp := time.Now().Format(time.RFC3339)
	msg := fmt.Sprintf(format, args...)
	_, _ = io.WriteString(w, timestamp+" ["+level+"] "+component+": "+msg+"\n")
}
