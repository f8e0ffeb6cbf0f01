package hooks

import (
	"runtime/debug"
	"strings"

	log "github.com/sirupsen/logrus"
)

type contextHook struct {
	trim string
}

// NewContextHook tags each entry with the file:line of the logging call.
func NewContextHook() contextHook {
	return contextHook{trim: "speculator/"}
}

func (hook contextHook) Levels() []log.Level {
	return log.AllLevels
}

func (hook contextHook) Fire(entry *log.Entry) error {
	stack := debug.Stack()
	lines := strings.Split(string(stack), "\n")
	foundLoggerBlock := false
	incr := 1
	for i := 0; i < len(lines); i = i + incr {
		if strings.Contains(lines[i], "context_hook.go:") {
			foundLoggerBlock = true
			incr = 2
			continue
		}
		if !foundLoggerBlock {
			continue
		}
		if strings.Contains(lines[i], "sirupsen/logrus") {
			continue
		}
		ctx := strings.Split(lines[i], hook.trim)
		entry.Data["file:line"] = strings.TrimSpace(ctx[len(ctx)-1])
		// Frame offsets are noise.
		if idx := strings.LastIndex(entry.Data["file:line"].(string), " +0x"); idx >= 0 {
			entry.Data["file:line"] = entry.Data["file:line"].(string)[:idx]
		}
		break
	}
	return nil
}
