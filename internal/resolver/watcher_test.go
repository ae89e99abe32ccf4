package resolver

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestConfigWatcher_FiresOnWatchedFiles(t *testing.T) {
	root := t.TempDir()
	changes := make(chan struct{}, 4)

	w, err := NewConfigWatcher(root, zerolog.Nop(), func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(root, ConfigFileName), []byte(`[]`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	select {
	case <-changes:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change notification for " + ConfigFileName)
	}

	if err := os.WriteFile(filepath.Join(root, ".env"), []byte("DB_CONNECTION=sqlite\n"), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	select {
	case <-changes:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change notification for .env")
	}
}
