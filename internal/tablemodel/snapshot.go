package tablemodel

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// snapshotVersion guards against loading metadata written by an incompatible
// build.
const snapshotVersion = 1

type snapshot struct {
	Version int    `json:"version"`
	Table   *Table `json:"table"`
}

// WriteSnapshot serializes the inferred model (without row data) as JSON.
func WriteSnapshot(w io.Writer, t *Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot{Version: snapshotVersion, Table: t}); err != nil {
		return fmt.Errorf("tablemodel: write snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot restores a model previously written by WriteSnapshot. The
// returned model carries no rows, so it can drive CREATE and DROP rendering
// but not INSERTs.
func ReadSnapshot(r io.Reader) (*Table, error) {
	var s snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("tablemodel: read snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("tablemodel: unsupported snapshot version %d", s.Version)
	}
	if s.Table == nil {
		return nil, fmt.Errorf("tablemodel: snapshot has no table")
	}
	return s.Table, nil
}

// SaveSnapshot writes the model to a file, creating or truncating it.
func SaveSnapshot(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tablemodel: save snapshot: %w", err)
	}
	defer f.Close()
	if err := WriteSnapshot(f, t); err != nil {
		return err
	}
	return f.Close()
}

// LoadSnapshot reads a model from a file written by SaveSnapshot.
func LoadSnapshot(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tablemodel: load snapshot: %w", err)
	}
	defer f.Close()
	return ReadSnapshot(f)
}
