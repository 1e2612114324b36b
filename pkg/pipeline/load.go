package pipeline

import (
	"context"

	"github.com/matzehuels/masonry/pkg/board"
	"github.com/matzehuels/masonry/pkg/fetch"
)

// LoadBoard reads the board named by opts without touching the network
// cache. Remote inputs go through f; a nil f is an error for remote inputs.
// The bool result reports a cache hit of the remote fetch.
func LoadBoard(ctx context.Context, f *fetch.Client, opts Options) (*board.Board, bool, error) {
	switch {
	case opts.Board != nil:
		if err := opts.Board.Validate(); err != nil {
			return nil, false, err
		}
		return opts.Board, false, nil

	case len(opts.BoardData) > 0:
		format := board.FormatJSON
		if opts.BoardFormat != "" {
			f, err := board.ParseFormat(opts.BoardFormat)
			if err != nil {
				return nil, false, err
			}
			format = f
		}
		b, err := board.ParseBoard(opts.BoardData, format)
		return b, false, err

	case opts.IsRemote():
		if f == nil {
			f = fetch.NewClient(nil, nil, 0, nil)
		}
		return f.Board(ctx, opts.Input, opts.Refresh)

	default:
		b, err := board.ReadBoardFile(opts.Input)
		return b, false, err
	}
}
