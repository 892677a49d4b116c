package sources

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danmuck/amfiles/internal/corrections"
	"github.com/tailscale/hujson"
)

// DecodeTable parses JSON with comments and trailing commas into a table.
// The root must be an object.
func DecodeTable(data []byte) (corrections.Table, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	dec := json.NewDecoder(bytes.NewReader(std))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after document", ErrMalformedFile)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: root is %T, want object", ErrMalformedFile, raw)
	}
	return corrections.Table(obj), nil
}

// FileReader reads proposed tables from the working copy rooted at Dir.
type FileReader struct {
	Dir string
}

func (r FileReader) ReadProposed(path string) (corrections.Table, error) {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(r.Dir, path)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read proposed %s: %w", path, err)
	}
	table, err := DecodeTable(data)
	if err != nil {
		return nil, fmt.Errorf("decode proposed %s: %w", path, err)
	}
	return table, nil
}
