package folio

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// readJSON decodes the document at path into v. It reports false without an
// error when the file does not exist.
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, persistErr("read", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, persistErr("decode", path, err)
	}
	return true, nil
}

// writeJSON stores v as indented JSON.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return persistErr("encode", path, err)
	}
	return writeFileAtomic(path, data, 0o644)
}

// writeFileAtomic writes data to a temp file beside path and renames it into
// place, creating the parent directory on demand.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return persistErr("mkdir", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return persistErr("create", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return persistErr("write", path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		cleanup()
		return persistErr("chmod", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return persistErr("close", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return persistErr("rename", path, err)
	}
	return nil
}
