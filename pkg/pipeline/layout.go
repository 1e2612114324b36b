package pipeline

import (
	"context"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/masonry/pkg/board"
	errs "github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/virtual"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout places every tile of b with settings s.
//
// The layout is computed by a virtual host whose viewport is as wide as the
// settings and infinitely tall, so the realization region covers the whole
// content and every tile is measured and placed in one pass.
func GenerateLayout(ctx context.Context, b *board.Board, s board.Settings, logger *log.Logger) (board.Layout, error) {
	if len(b.Tiles) > MaxTiles {
		return board.Layout{}, errs.New(errs.ErrCodeInvalidBoard, "board has %d tiles (max %d)", len(b.Tiles), MaxTiles)
	}
	so, err := s.Options()
	if err != nil {
		return board.Layout{}, err
	}
	if err := ctx.Err(); err != nil {
		return board.Layout{}, err
	}

	opts := []virtual.Option{
		virtual.WithViewport(virtual.Viewport{Width: s.Width, Height: math.Inf(1)}),
		virtual.WithLayoutOptions(so),
	}
	if logger != nil {
		opts = append(opts, virtual.WithLogger(logger))
	}
	host := virtual.New(b.Tiles, opts...)
	defer host.Close()

	host.Pass(ctx)
	return host.Snapshot(b.Name), nil
}
