package stagger

import (
	"fmt"
	"math"
	"strings"
)

// DefaultDesiredColumnWidth is the desired column width of a new [Layout].
const DefaultDesiredColumnWidth = 250.0

// =============================================================================
// Configuration
// =============================================================================

// Stretch controls how columns use leftover horizontal space.
type Stretch int

const (
	// StretchNone keeps columns at the desired width and leaves the remainder empty.
	StretchNone Stretch = iota
	// StretchFill widens columns so they span the available width exactly.
	StretchFill
)

func (s Stretch) String() string {
	switch s {
	case StretchNone:
		return "none"
	case StretchFill:
		return "fill"
	default:
		return fmt.Sprintf("Stretch(%d)", int(s))
	}
}

// ParseStretch parses "none" or "fill" (case-insensitive).
func ParseStretch(s string) (Stretch, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return StretchNone, nil
	case "fill":
		return StretchFill, nil
	default:
		return StretchNone, fmt.Errorf("unknown stretch mode %q (want none or fill)", s)
	}
}

// Options configures a [Layout]. A NaN DesiredColumnWidth means unset: the
// column takes the whole available width.
type Options struct {
	DesiredColumnWidth float64
	Stretch            Stretch
	ColumnSpacing      float64
	RowSpacing         float64
}

// DefaultOptions returns a 250-wide column, no stretch and no spacing.
func DefaultOptions() Options {
	return Options{DesiredColumnWidth: DefaultDesiredColumnWidth}
}

// Validate checks that the options can produce a column geometry.
func (o Options) Validate() error {
	if !math.IsNaN(o.DesiredColumnWidth) && (o.DesiredColumnWidth <= 0 || math.IsInf(o.DesiredColumnWidth, 0)) {
		return fmt.Errorf("desired column width must be positive and finite, got %v", o.DesiredColumnWidth)
	}
	if o.Stretch != StretchNone && o.Stretch != StretchFill {
		return fmt.Errorf("invalid stretch mode %v", o.Stretch)
	}
	if !validSpacing(o.ColumnSpacing) {
		return fmt.Errorf("column spacing must be non-negative and finite, got %v", o.ColumnSpacing)
	}
	if !validSpacing(o.RowSpacing) {
		return fmt.Errorf("row spacing must be non-negative and finite, got %v", o.RowSpacing)
	}
	return nil
}

func validSpacing(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

// Option configures a [Layout] at construction.
type Option func(*Layout)

// WithDesiredColumnWidth sets the target column width. NaN uses the
// available width.
func WithDesiredColumnWidth(w float64) Option {
	return func(l *Layout) { l.opts.DesiredColumnWidth = w }
}

// WithStretch sets how leftover width is distributed across columns.
func WithStretch(s Stretch) Option { return func(l *Layout) { l.opts.Stretch = s } }

// WithColumnSpacing sets the horizontal gap between columns.
func WithColumnSpacing(v float64) Option { return func(l *Layout) { l.opts.ColumnSpacing = v } }

// WithRowSpacing sets the vertical gap between items in a column.
func WithRowSpacing(v float64) Option { return func(l *Layout) { l.opts.RowSpacing = v } }

// WithOptions replaces every option at once.
func WithOptions(o Options) Option { return func(l *Layout) { l.opts = o } }

// WithLogf sets a debug logger that receives cache invalidation events.
func WithLogf(fn func(format string, args ...any)) Option {
	return func(l *Layout) { l.logf = fn }
}

// Reason names why a layout asked its host for a new measure pass.
type Reason int

const (
	ReasonDesiredColumnWidth Reason = iota // desired column width changed
	ReasonStretch                          // stretch mode changed
	ReasonColumnSpacing                    // column spacing changed
	ReasonRowSpacing                       // row spacing changed
	ReasonItemsChanged                     // the item collection changed
	ReasonItemSize                         // a realized item reported a new size
)

var reasonNames = [...]string{
	ReasonDesiredColumnWidth: "desired-column-width",
	ReasonStretch:            "stretch",
	ReasonColumnSpacing:      "column-spacing",
	ReasonRowSpacing:         "row-spacing",
	ReasonItemsChanged:       "items-changed",
	ReasonItemSize:           "item-size",
}

func (r Reason) String() string {
	if r >= 0 && int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// =============================================================================
// Controller
// =============================================================================

// Layout is the staggered layout controller. One Layout may serve several
// hosts; all per-host data lives in the [State] stored in each host.
type Layout struct {
	opts      Options
	logf      func(format string, args ...any)
	listeners []func(Reason)
}

// New returns a Layout with [DefaultOptions] modified by opts. It panics if
// the resulting options are invalid.
func New(opts ...Option) *Layout {
	l := &Layout{opts: DefaultOptions()}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.opts.Validate(); err != nil {
		panic("stagger: " + err.Error())
	}
	return l
}

// Options returns the current configuration.
func (l *Layout) Options() Options { return l.opts }

// SetDesiredColumnWidth changes the target column width and invalidates
// measure if it differs.
func (l *Layout) SetDesiredColumnWidth(w float64) {
	if sameValue(l.opts.DesiredColumnWidth, w) {
		return
	}
	l.apply(func(o *Options) { o.DesiredColumnWidth = w }, ReasonDesiredColumnWidth)
}

// SetStretch changes the stretch mode and invalidates measure if it differs.
func (l *Layout) SetStretch(s Stretch) {
	if l.opts.Stretch == s {
		return
	}
	l.apply(func(o *Options) { o.Stretch = s }, ReasonStretch)
}

// SetColumnSpacing changes the gap between columns.
func (l *Layout) SetColumnSpacing(v float64) {
	if sameValue(l.opts.ColumnSpacing, v) {
		return
	}
	l.apply(func(o *Options) { o.ColumnSpacing = v }, ReasonColumnSpacing)
}

// SetRowSpacing changes the gap between items in a column.
func (l *Layout) SetRowSpacing(v float64) {
	if sameValue(l.opts.RowSpacing, v) {
		return
	}
	l.apply(func(o *Options) { o.RowSpacing = v }, ReasonRowSpacing)
}

// SetOptions replaces the whole configuration, raising one invalidation per
// changed field.
func (l *Layout) SetOptions(o Options) {
	if err := o.Validate(); err != nil {
		panic("stagger: " + err.Error())
	}
	l.SetDesiredColumnWidth(o.DesiredColumnWidth)
	l.SetStretch(o.Stretch)
	l.SetColumnSpacing(o.ColumnSpacing)
	l.SetRowSpacing(o.RowSpacing)
}

func (l *Layout) apply(set func(*Options), r Reason) {
	next := l.opts
	set(&next)
	if err := next.Validate(); err != nil {
		panic("stagger: " + err.Error())
	}
	l.opts = next
	l.InvalidateMeasure(r)
}

// OnMeasureInvalidated registers fn to be called whenever the layout needs
// a new measure pass. Hosts use it to schedule layout.
func (l *Layout) OnMeasureInvalidated(fn func(Reason)) {
	if fn != nil {
		l.listeners = append(l.listeners, fn)
	}
}

// InvalidateMeasure notifies every registered listener. Geometry changes are
// reconciled by the next [Layout.Measure], not here.
func (l *Layout) InvalidateMeasure(r Reason) {
	l.debugf("measure invalidated: %s", r)
	for _, fn := range l.listeners {
		fn(r)
	}
}

// Initialize attaches a fresh [State] to ctx.
func (l *Layout) Initialize(ctx Context) {
	ctx.SetLayoutState(newState(ctx, l.logf))
}

// Uninitialize returns every element still held to the host and detaches
// the state from ctx.
func (l *Layout) Uninitialize(ctx Context) {
	if st, ok := ctx.LayoutState().(*State); ok {
		st.releaseAll()
	}
	ctx.SetLayoutState(nil)
}

// StateOf returns the state attached to ctx. It panics if ctx was never
// initialized by a Layout.
func (l *Layout) StateOf(ctx Context) *State {
	st, ok := ctx.LayoutState().(*State)
	if !ok || st == nil {
		panic("stagger: layout state missing (Initialize was not called)")
	}
	return st
}

// ItemsChanged invalidates the cache suffix affected by ch and requests a
// new measure pass.
func (l *Layout) ItemsChanged(ctx Context, ch Change) {
	ch.apply(l.StateOf(ctx))
	l.InvalidateMeasure(ReasonItemsChanged)
}

// InvalidateItemSize forces item i to be measured again on the next pass
// while keeping its cached geometry as the starting point. Hosts call it when
// an item's content changed without a collection mutation.
func (l *Layout) InvalidateItemSize(ctx Context, i int) {
	l.StateOf(ctx).RecycleElementAt(i)
	l.InvalidateMeasure(ReasonItemSize)
}

// Geometry returns the column geometry of the last measure pass on ctx.
func (l *Layout) Geometry(ctx Context) Geometry {
	return l.StateOf(ctx).Geometry()
}

// LastPass returns the counters of the last measure pass on ctx.
func (l *Layout) LastPass(ctx Context) PassStats {
	return l.StateOf(ctx).Stats()
}

func (l *Layout) debugf(format string, args ...any) {
	if l.logf != nil {
		l.logf(format, args...)
	}
}

// sameValue compares configuration values, treating NaN as equal to NaN.
func sameValue(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}
