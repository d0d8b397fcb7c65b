package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func initFile(t *testing.T, level, format string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "render.log")
	opts := Options{
		Level:  level,
		Format: format,
		File: FileConfig{
			Path:       path,
			MaxSizeMB:  10,
			MaxBackups: 1,
			MaxAgeDays: 1,
		},
	}
	if err := Init(opts); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() {
		Log = zap.NewNop()
		Sugar = Log.Sugar()
	})
	return path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	Sync()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	return string(content)
}

func TestNopBeforeInit(t *testing.T) {
	// Must not panic without Init
	Debug("debug message")
	Info("info message", zap.Int("n", 1))
	Named("raster").Warn("warn message")
	Sync()
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			path := initFile(t, tt.level, "console")

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")

			content := readLog(t, path)
			for _, exp := range tt.expected {
				if !strings.Contains(content, exp) {
					t.Errorf("expected %s in log output", exp)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(content, exc) {
					t.Errorf("unexpected %s in log output for level %s", exc, tt.level)
				}
			}
		})
	}
}

func TestJSONNamedComponent(t *testing.T) {
	path := initFile(t, "info", "json")

	Named("ssao").Info("pass done", Since(time.Now()))

	line := strings.TrimSpace(readLog(t, path))
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, line)
	}
	if entry["component"] != "ssao" {
		t.Errorf("component: got %v, want ssao", entry["component"])
	}
	if entry["msg"] != "pass done" {
		t.Errorf("msg: got %v", entry["msg"])
	}
	if _, ok := entry["elapsed"]; !ok {
		t.Error("missing elapsed field")
	}
	caller, _ := entry["caller"].(string)
	if !strings.HasPrefix(caller, "logger/logger_test.go") {
		t.Errorf("caller should point at the test, got %q", caller)
	}
}

func TestHelperCaller(t *testing.T) {
	path := initFile(t, "info", "json")

	Info("from helper")

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, path))), &entry); err != nil {
		t.Fatal(err)
	}
	caller, _ := entry["caller"].(string)
	if !strings.HasPrefix(caller, "logger/logger_test.go") {
		t.Errorf("caller should skip the helper, got %q", caller)
	}
}

func TestInitRejectsBadOptions(t *testing.T) {
	if err := Init(Options{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := Init(Options{Format: "xml", Console: true}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/render.log")

	if cfg.Path != "/tmp/render.log" {
		t.Errorf("expected path /tmp/render.log, got %s", cfg.Path)
	}
	if cfg.MaxSizeMB != 20 || cfg.MaxBackups != 3 || cfg.MaxAgeDays != 7 {
		t.Errorf("unexpected rotation settings: %+v", cfg)
	}
	if !cfg.Compress {
		t.Error("expected Compress to be true")
	}
}
