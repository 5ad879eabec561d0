package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

// writeJSON replaces path with the indented encoding of v via temp file + rename
func writeJSON(path string, v any) (err error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encode %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("jsonfile: create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("jsonfile: create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	_, werr := tmp.Write(data)
	if werr == nil {
		werr = tmp.Sync()
	}
	if werr = multierr.Append(werr, tmp.Close()); werr != nil {
		return fmt.Errorf("jsonfile: write %s: %w", path, werr)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("jsonfile: replace %s: %w", path, err)
	}
	return nil
}
