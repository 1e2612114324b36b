package board

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/masonry/pkg/errors"
)

// Format is a board file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the encoding from a file extension. Anything that is
// not .toml is treated as JSON.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// ParseFormat accepts "json" or "toml" (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatTOML:
		return f, nil
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "unknown board format %q (want json or toml)", s)
}

// ReadBoard decodes a board from r and validates it.
//
// Tiles keep their file order, which is the order they are laid out in.
// ReadBoard does not close r.
func ReadBoard(r io.Reader, f Format) (*Board, error) {
	var b Board
	switch f {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&b); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode toml board")
		}
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&b); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode json board")
		}
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unknown board format %q", f)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// ParseBoard decodes a board from data.
func ParseBoard(data []byte, f Format) (*Board, error) {
	return ReadBoard(bytes.NewReader(data), f)
}

// ReadBoardFile reads a board, choosing the decoder by file extension.
func ReadBoardFile(path string) (*Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	b, err := ReadBoard(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// WriteBoard encodes b to w.
func WriteBoard(w io.Writer, b *Board, f Format) error {
	switch f {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(b)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	}
}

// WriteBoardFile writes b to path, choosing the encoder by file extension.
func WriteBoardFile(b *Board, path string) error {
	var buf bytes.Buffer
	if err := WriteBoard(&buf, b, FormatFromPath(path)); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
