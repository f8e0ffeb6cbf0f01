package hooks

import (
	"bytes"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestContextHook(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New()
	logger.Out = &buf
	logger.Formatter = &log.JSONFormatter{}
	logger.AddHook(NewContextHook())

	logger.Info("hello")
	out := buf.String()
	if !strings.Contains(out, "file:line") {
		t.Fatalf("expected a file:line field, got %s", out)
	}
	if !strings.Contains(out, "context_hook_test.go:") {
		t.Errorf("expected the caller to be this test, got %s", out)
	}
}
