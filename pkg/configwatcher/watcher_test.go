package configwatcher

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"school_exam_backend/internal/config"
	"school_exam_backend/pkg/logger"

	"go.uber.org/zap"
)

func writeTestConfig(t *testing.T, path string, passingScore int) {
	t.Helper()
	body := fmt.Sprintf("server:\n  port: \"0\"\nexam:\n  default_passing_score: %d\n", passingScore)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestWatchConfigReloadsAndKeepsRunning(t *testing.T) {
	logger.Log = zap.NewNop()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeTestConfig(t, path, 60)

	reloaded := make(chan *config.Config, 1)
	done := make(chan struct{})
	go func() {
		// The watcher never returns on its own; callers must run it
		// detached or they block forever.
		WatchConfig(path, func(cfg *config.Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
		close(done)
	}()

	// Give the watcher time to register before touching the file.
	time.Sleep(300 * time.Millisecond)
	writeTestConfig(t, path, 70)

	select {
	case cfg := <-reloaded:
		if cfg.Exam.DefaultPassingScore != 70 {
			t.Errorf("reloaded passing score = %d, want 70", cfg.Exam.DefaultPassingScore)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("reloader was not invoked after a config write")
	}

	select {
	case <-done:
		t.Fatal("WatchConfig returned; it must keep watching for the process lifetime")
	default:
	}
}
