// Package pantrylog provides a namespaced debug logger gated by the DEBUG
// environment variable, following the npm "debug" package's conventions:
//
//	DEBUG=*              enables every logger
//	DEBUG=install:*       enables every logger in the "install" namespace
//	DEBUG=install:worker  enables one specific logger
//	DEBUG=*,-install:worker enables everything except one logger
//
// Loggers write to stderr only; pantry's stdout is reserved for shell-hook
// wire output (see internal/activate) and must never carry debug noise.
package pantrylog

import (
	"fmt"
	"hash/fnv"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Logger is a debug logger for one namespace.
type Logger struct {
	namespace string
	enabled   bool
	lastLog   time.Time
	mu        sync.Mutex
	color     string
}

var (
	debugEnv    = os.Getenv("DEBUG")
	debugColors = os.Getenv("NO_COLOR") == ""
	isTTY       = isatty.IsTerminal(os.Stderr.Fd())

	colorPalette = []string{
		"\033[38;5;33m",  // Blue
		"\033[38;5;35m",  // Green
		"\033[38;5;166m", // Orange
		"\033[38;5;125m", // Purple
		"\033[38;5;37m",  // Cyan
		"\033[38;5;161m", // Magenta
		"\033[38;5;136m", // Yellow
		"\033[38;5;28m",  // Dark green
	}
	colorReset = "\033[0m"
)

// New creates a Logger for namespace. Enabled-ness is computed once at
// construction time from the DEBUG environment variable.
func New(namespace string) *Logger {
	return &Logger{
		namespace: namespace,
		enabled:   computeEnabled(namespace),
		lastLog:   time.Now(),
		color:     selectColor(namespace),
	}
}

// Enabled reports whether this logger will actually write anything.
func (l *Logger) Enabled() bool {
	return l.enabled
}

// Printf writes a formatted line to stderr if the logger is enabled.
func (l *Logger) Printf(format string, args ...any) {
	if !l.enabled {
		return
	}
	l.write(fmt.Sprintf(format, args...))
}

// Print writes a line to stderr if the logger is enabled.
func (l *Logger) Print(args ...any) {
	if !l.enabled {
		return
	}
	l.write(fmt.Sprint(args...))
}

// LazyPrintf only evaluates fn (and writes its result) if the logger is
// enabled, avoiding the cost of building debug strings on the hot path.
func (l *Logger) LazyPrintf(fn func() string) {
	if !l.enabled {
		return
	}
	l.write(fn())
}

func (l *Logger) write(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	elapsed := time.Since(l.lastLog)
	l.lastLog = time.Now()

	namespace := l.namespace
	if debugColors && isTTY && l.color != "" {
		namespace = l.color + l.namespace + colorReset
	}
	fmt.Fprintf(os.Stderr, "%s %s +%s\n", namespace, msg, elapsed.Round(time.Millisecond))
}

func selectColor(namespace string) string {
	if len(colorPalette) == 0 {
		return ""
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(namespace))
	return colorPalette[h.Sum32()%uint32(len(colorPalette))]
}

func computeEnabled(namespace string) bool {
	if debugEnv == "" {
		return false
	}

	var include, exclude bool
	for _, pattern := range strings.Split(debugEnv, ",") {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		negate := strings.HasPrefix(pattern, "-")
		if negate {
			pattern = pattern[1:]
		}
		if matchNamespace(pattern, namespace) {
			if negate {
				exclude = true
			} else {
				include = true
			}
		}
	}
	return include && !exclude
}

func matchNamespace(pattern, namespace string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, ":*") {
		return strings.HasPrefix(namespace, strings.TrimSuffix(pattern, "*"))
	}
	return pattern == namespace
}
