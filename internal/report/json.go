// Package report renders experiment results: the JSON result documents
// written under the results directory, the Arrow trial export, and the
// plain-text tables printed by the CLI.
package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nvandessel/structsim/internal/pathutil"
)

// WriteJSON writes v as indented JSON to dir/name, creating dir as needed.
// It returns the written path and its size in bytes.
func WriteJSON(dir, name string, v any) (string, int64, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, fmt.Errorf("creating results dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", 0, fmt.Errorf("encoding %s: %w", name, err)
	}
	data = append(data, '\n')

	path, err := pathutil.Within(dir, name)
	if err != nil {
		return "", 0, err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", 0, fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", 0, fmt.Errorf("writing %s: %w", name, err)
	}
	return path, int64(len(data)), nil
}

// ReadJSON decodes the document at path into v.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
