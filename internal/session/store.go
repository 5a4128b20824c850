package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Persist writes the session to dir and returns the artifact path. The
// directory is created when missing. Once persisted the session no longer
// accepts records.
func (r *Recorder) Persist(dir string) (string, error) {
	if r.persisted != "" {
		return r.persisted, nil
	}

	artifact := r.Artifact()
	path, err := artifact.WriteTo(dir)
	if err != nil {
		return "", err
	}

	r.persisted = path
	return path, nil
}

// Persisted returns the artifact path or an empty string.
func (r *Recorder) Persisted() string {
	return r.persisted
}

// WriteTo writes the artifact into dir through a temporary file so a failed
// write never leaves a partial artifact behind.
func (a *Artifact) WriteTo(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create sessions directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".session_*.json.tmp")
	if err != nil {
		return "", fmt.Errorf("create session file in %q: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	// CreateTemp uses 0600; artifacts are ordinary readable files.
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return "", fmt.Errorf("set session file mode: %w", err)
	}

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "    ")
	if err := enc.Encode(a); err != nil {
		tmp.Close()
		return "", fmt.Errorf("encode session: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close session file: %w", err)
	}

	path := filepath.Join(dir, a.FileName())
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("save session to %q: %w", path, err)
	}

	return path, nil
}

// Load reads a persisted session artifact.
func Load(path string) (*Artifact, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var artifact Artifact
	if err := json.NewDecoder(file).Decode(&artifact); err != nil {
		return nil, fmt.Errorf("decode session %q: %w", path, err)
	}

	if artifact.Questions == nil {
		artifact.Questions = []Record{}
	}

	return &artifact, nil
}
