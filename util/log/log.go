package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level orders log severities from most to least verbose.
type Level int32

// Log levels. LevelDump is reserved for raw payloads that must never reach normal logs.
const (
	LevelDump Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
)

var levelNames = map[Level]string{
	LevelDump:     "dump",
	LevelDebug:    "debug",
	LevelInfo:     "info",
	LevelWarn:     "warn",
	LevelError:    "error",
	LevelCritical: "critical",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int32(l))
}

// ParseLevel converts a level name such as "debug" into a Level.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LevelInfo, nil
	}
	if s == "warning" {
		return LevelWarn, nil
	}
	for l, name := range levelNames {
		if name == s {
			return l, nil
		}
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

var current atomic.Int32

func init() {
	current.Store(int32(LevelInfo))
}

// SetLevel sets the minimum level that is written.
func SetLevel(l Level) {
	current.Store(int32(l))
}

// GetLevel returns the minimum level that is written.
func GetLevel() Level {
	return Level(current.Load())
}

// Enabled reports whether messages at l are written.
func Enabled(l Level) bool {
	return l >= GetLevel()
}

// SetOutput redirects the standard logger.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// SetOutputFile routes the standard logger to a rotating log file.
func SetOutputFile(path string) {
	log.SetOutput(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 2,
		MaxAge:     28, // days
		Compress:   true,
	})
}

func output(l Level, prefix, msg string) {
	if !Enabled(l) {
		return
	}
	// 3 skips output, the exported wrapper and log.Output itself
	log.Output(3, prefix+msg)
}

// Print calls the standard log.Print() at info level
func Print(v ...interface{}) {
	output(LevelInfo, "", fmt.Sprint(v...))
}

// Printf calls the standard log.Printf() at info level
func Printf(format string, v ...interface{}) {
	output(LevelInfo, "", fmt.Sprintf(format, v...))
}

// Println calls the standard log.Println() at info level
func Println(v ...interface{}) {
	output(LevelInfo, "", fmt.Sprintln(v...))
}

// Debug calls the standard log.Print() with a [DEBUG] prefix
func Debug(v ...interface{}) {
	output(LevelDebug, "[DEBUG] ", fmt.Sprint(v...))
}

// Debugf calls the standard log.Printf() with a [DEBUG] prefix
func Debugf(format string, v ...interface{}) {
	output(LevelDebug, "[DEBUG] ", fmt.Sprintf(format, v...))
}

// Dumpf logs raw payloads. Only written when the level is LevelDump.
func Dumpf(format string, v ...interface{}) {
	output(LevelDump, "[DUMP] ", fmt.Sprintf(format, v...))
}

// Warnf logs with a [WARN] prefix
func Warnf(format string, v ...interface{}) {
	output(LevelWarn, "[WARN] ", fmt.Sprintf(format, v...))
}

// Errorf logs with an [ERROR] prefix
func Errorf(format string, v ...interface{}) {
	output(LevelError, "[ERROR] ", fmt.Sprintf(format, v...))
}

// Criticalf logs with a [CRITICAL] prefix
func Criticalf(format string, v ...interface{}) {
	output(LevelCritical, "[CRITICAL] ", fmt.Sprintf(format, v...))
}

// Fatal logs regardless of level and exits
func Fatal(v ...interface{}) {
	log.Output(2, fmt.Sprint(v...))
	os.Exit(1)
}

// Fatalf logs regardless of level and exits
func Fatalf(format string, v ...interface{}) {
	log.Output(2, fmt.Sprintf(format, v...))
	os.Exit(1)
}

// Fatalln logs regardless of level and exits
func Fatalln(v ...interface{}) {
	log.Output(2, fmt.Sprintln(v...))
	os.Exit(1)
}
