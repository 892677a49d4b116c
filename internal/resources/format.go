// Package resources reads auxiliary data files shipped with the repository,
// inferring the decoder from the file extension.
package resources

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnsupportedFormat = errors.New("resources: unsupported format")
	ErrNotFound          = errors.New("resources: not found")
	ErrTooLarge          = errors.New("resources: payload too large")
)

// Format is a recognised file encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatJSONGz  Format = "json.gz"
	FormatYAML    Format = "yaml"
	FormatText    Format = "text"
	FormatBinary  Format = "binary"
	FormatCSV     Format = "csv"
	FormatUnknown Format = ""
)

// maxDecompressed caps the size of a gzip payload after inflation.
var maxDecompressed int64 = 256 << 20

// DetectFormat maps a file name to its Format.
func DetectFormat(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".txt", ".text":
		return FormatText, nil
	case ".binary":
		return FormatBinary, nil
	case ".csv":
		return FormatCSV, nil
	case ".gz":
		inner := strings.ToLower(filepath.Ext(strings.TrimSuffix(name, filepath.Ext(name))))
		if inner == ".json" {
			return FormatJSONGz, nil
		}
		return FormatUnknown, fmt.Errorf("%w: gzip payload %q", ErrUnsupportedFormat, inner)
	default:
		// .npy, .npz and .pkl are Python-native encodings.
		return FormatUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// ReadFile opens path and decodes it according to its extension.
func ReadFile(path string) (any, error) {
	if _, err := DetectFormat(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	return Decode(path, data)
}

// Decode interprets data as the format implied by name.
//
// JSON (including JSON with comments) and YAML decode to map/slice/scalar
// trees, text to string, binary to []byte and CSV to [][]string.
func Decode(name string, data []byte) (any, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatJSONGz:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("resources: gunzip %s: %w", name, err)
		}
		defer zr.Close()
		raw, err := io.ReadAll(io.LimitReader(zr, maxDecompressed+1))
		if err != nil {
			return nil, fmt.Errorf("resources: gunzip %s: %w", name, err)
		}
		if int64(len(raw)) > maxDecompressed {
			return nil, fmt.Errorf("%w: %s exceeds %d bytes decompressed", ErrTooLarge, name, maxDecompressed)
		}
		return decodeJSON(raw)
	case FormatYAML:
		var out any
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("resources: yaml %s: %w", name, err)
		}
		return out, nil
	case FormatText:
		return string(data), nil
	case FormatBinary:
		return data, nil
	case FormatCSV:
		rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		if err != nil {
			return nil, fmt.Errorf("resources: csv %s: %w", name, err)
		}
		return rows, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}

func decodeJSON(data []byte) (any, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("resources: json: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(std))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("resources: json: %w", err)
	}
	return out, nil
}
