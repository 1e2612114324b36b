package render

import (
	"bytes"
	"context"
	"errors"
	"testing"

	errs "github.com/matzehuels/masonry/pkg/errors"
)

const square = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`

func TestToPDF(t *testing.T) {
	pdf, err := ToPDF(context.Background(), []byte(square))
	if !Available() {
		if !errs.Is(err, errs.ErrCodeUnsupported) {
			t.Fatalf("ToPDF without %s: err = %v, want UNSUPPORTED", Converter, err)
		}
		t.Skipf("%s not installed", Converter)
	}
	if err != nil {
		t.Fatalf("ToPDF: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("output does not start with a PDF header: %q", pdf[:min(len(pdf), 16)])
	}
}

func TestToPDFCanceled(t *testing.T) {
	if !Available() {
		t.Skipf("%s not installed", Converter)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ToPDF(ctx, []byte(square)); !errors.Is(err, context.Canceled) {
		t.Errorf("ToPDF with canceled context: err = %v, want context.Canceled", err)
	}
}
