package render

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	errs "github.com/matzehuels/masonry/pkg/errors"
)

// Converter is the external SVG converter from librsvg.
const Converter = "rsvg-convert"

// ToPDF converts SVG bytes to PDF with rsvg-convert. The process is killed
// when ctx is done.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convert(ctx, svg, "pdf")
}

// Available reports whether the converter is on PATH.
func Available() bool {
	_, err := exec.LookPath(Converter)
	return err == nil
}

func convert(ctx context.Context, svg []byte, format string) ([]byte, error) {
	if !Available() {
		return nil, errs.New(errs.ErrCodeUnsupported,
			"%s output requires %s (librsvg): brew install librsvg (macOS), apt install librsvg2-bin (Linux)",
			format, Converter)
	}

	cmd := exec.CommandContext(ctx, Converter, "-f", format)
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "%s: %s", Converter, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}
