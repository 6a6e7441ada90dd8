package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestLocalStore_Save(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	saved, err := store.Save(context.Background(), "scan.png", []byte("payload"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if !strings.HasSuffix(saved.StoredName, "_scan.png") {
		t.Errorf("stored name %q does not end with sanitized original", saved.StoredName)
	}

	data, err := os.ReadFile(saved.Path)
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("stored content = %q, want %q", data, "payload")
	}
}

func TestLocalStore_SaveAvoidsCollisions(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		saved, err := store.Save(context.Background(), "scan.png", []byte("x"))
		if err != nil {
			t.Fatalf("Save #%d: %v", i, err)
		}
		if seen[saved.StoredName] {
			t.Fatalf("duplicate stored name %q", saved.StoredName)
		}
		seen[saved.StoredName] = true
	}
}

func TestLocalStore_SaveRespectsCanceledContext(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Save(ctx, "scan.png", []byte("x")); err == nil {
		t.Error("Save with canceled context succeeded, want error")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"scan.png", "scan.png"},
		{"my scan (1).png", "my_scan__1_.png"},
		{"../../etc/passwd", "passwd"},
		{"рентген.dcm", "_______.dcm"},
		{"", "upload"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLocalStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	if _, err := NewLocalStore(dir, zap.NewNop()); err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("storage directory was not created: %v", err)
	}
}
