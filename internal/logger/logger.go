package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Level is the severity of a log message.
type Level int32

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

func (l Level) String() string {
	if n, ok := levelNames[l]; ok {
		return n
	}
	return fmt.Sprintf("Level(%d)", int32(l))
}

var current atomic.Int32

// exit is swapped in tests.
var exit = os.Exit

func init() {
	current.Store(int32(INFO))
}

// ParseLevel maps a name to a Level; unknown names are an error.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO", "":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	case "FATAL":
		return FATAL, nil
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

// SetLevel falls back to INFO on an unknown name and says so.
func SetLevel(s string) {
	l, err := ParseLevel(s)
	if err != nil {
		log.Printf("[WARN] %v, using INFO", err)
	}
	current.Store(int32(l))
}

func GetLevel() Level { return Level(current.Load()) }

func Enabled(l Level) bool { return l >= GetLevel() }

func logf(l Level, format string, args ...any) {
	if !Enabled(l) {
		return
	}
	log.Printf("[%s] %s", l, fmt.Sprintf(format, args...))
	if l == FATAL {
		exit(1)
	}
}

func Debugf(format string, args ...any) { logf(DEBUG, format, args...) }

func Infof(format string, args ...any) { logf(INFO, format, args...) }

func Warnf(format string, args ...any) { logf(WARN, format, args...) }

func Errorf(format string, args ...any) { logf(ERROR, format, args...) }

// Fatalf logs and exits with status 1 regardless of the configured level.
func Fatalf(format string, args ...any) {
	log.Printf("[%s] %s", FATAL, fmt.Sprintf(format, args...))
	exit(1)
}
