package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNew_WritesJSONFile(t *testing.T) {
	dir := t.TempDir()
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	log, err := New(Options{Dir: dir, Level: "info"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Infow("hello", "resource", "blog")
	log.Debugw("hidden")
	_ = log.Sync()

	raw, err := os.ReadFile(filepath.Join(dir, time.Now().Format("2006-01-02")+".log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(raw)
	if !strings.Contains(out, `"msg":"hello"`) || !strings.Contains(out, `"resource":"blog"`) {
		t.Fatalf("missing entry in %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug entry leaked at info level")
	}
}

func TestNew_BadLevel(t *testing.T) {
	if _, err := New(Options{Dir: t.TempDir(), Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
