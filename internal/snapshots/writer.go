package snapshots

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// marshalDocument renders payload deterministically: encoding/json sorts map
// keys, and indentation is fixed.
func marshalDocument(payload any) ([]byte, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// writeAtomic writes data next to target and renames it into place, so readers
// only ever observe the previous file or the complete new one. Identical
// contents are left untouched. It reports whether the file changed.
func writeAtomic(target string, data []byte) (bool, error) {
	if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, data) {
		return false, nil
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(target)+".*.tmp")
	if err != nil {
		return false, err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return false, fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return false, fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return false, err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return false, err
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return false, err
	}
	return true, nil
}

func writeJSON(target string, payload any) (bool, error) {
	data, err := marshalDocument(payload)
	if err != nil {
		return false, err
	}
	return writeAtomic(target, data)
}
