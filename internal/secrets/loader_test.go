package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "key")
	if err := os.WriteFile(keyFile, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	emptyFile := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyFile, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write empty: %v", err)
	}

	t.Setenv("COACH_TEST_KEY", " from-env ")
	t.Setenv("COACH_TEST_EMPTY", "")

	tests := []struct {
		name    string
		src     Source
		want    string
		wantErr string
	}{
		{name: "file wins", src: Source{File: keyFile, Env: "COACH_TEST_KEY", Value: "inline"}, want: "from-file"},
		{name: "env before value", src: Source{Env: "COACH_TEST_KEY", Value: "inline"}, want: "from-env"},
		{name: "value fallback", src: Source{Env: "COACH_TEST_EMPTY", Value: " inline "}, want: "inline"},
		{name: "missing file", src: Source{Name: "gemini api key", File: filepath.Join(dir, "nope")}, wantErr: "reading gemini api key"},
		{name: "empty file", src: Source{File: emptyFile, Value: "inline"}, wantErr: "is empty"},
		{name: "nothing", src: Source{Env: "COACH_TEST_EMPTY"}, wantErr: "secret is not configured (checked COACH_TEST_EMPTY)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Load() = %q, want %q", got, tt.want)
			}
		})
	}
}
