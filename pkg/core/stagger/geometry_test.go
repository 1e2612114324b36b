package stagger

import (
	"math"
	"testing"
)

func TestColumnGeometry(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)
	tests := []struct {
		name        string
		available   float64
		opts        Options
		wantWidth   float64
		wantCount   int
		wantDesired float64
	}{
		{"none fits three", 1000, Options{DesiredColumnWidth: 300, ColumnSpacing: 20}, 300, 3, 1000},
		{"none narrower than desired", 200, Options{DesiredColumnWidth: 300}, 200, 1, 200},
		{"none unset", 640, Options{DesiredColumnWidth: nan, ColumnSpacing: 10}, 640, 1, 640},
		{"none zero width", 0, Options{DesiredColumnWidth: 250}, 0, 1, 0},
		{"fill three", 1000, Options{DesiredColumnWidth: 300, Stretch: StretchFill, ColumnSpacing: 20}, 319.99996667, 3, 1000},
		{"fill exact", 600, Options{DesiredColumnWidth: 200, Stretch: StretchFill}, 299.99995, 2, 600},
		{"fill wider than available", 180, Options{DesiredColumnWidth: 300, Stretch: StretchFill}, 180, 1, 180},
		{"fill unset", 500, Options{DesiredColumnWidth: nan, Stretch: StretchFill}, 500, 1, 500},
		{"infinite", inf, Options{DesiredColumnWidth: 120, ColumnSpacing: 5}, 120, 1, 120},
		{"infinite unset", inf, Options{DesiredColumnWidth: nan}, DefaultDesiredColumnWidth, 1, DefaultDesiredColumnWidth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, n, d := columnGeometry(tt.available, tt.opts)
			if math.Abs(w-tt.wantWidth) > 1e-6 {
				t.Errorf("width = %v, want %v", w, tt.wantWidth)
			}
			if n != tt.wantCount {
				t.Errorf("count = %d, want %d", n, tt.wantCount)
			}
			if d != tt.wantDesired {
				t.Errorf("desired width = %v, want %v", d, tt.wantDesired)
			}
		})
	}
}

func TestFillOccupiesAvailableWidth(t *testing.T) {
	for _, available := range []float64{317, 640, 1000, 1919.5} {
		o := Options{DesiredColumnWidth: 150, Stretch: StretchFill, ColumnSpacing: 12}
		w, n, _ := columnGeometry(available, o)
		occupied := w*float64(n) + o.ColumnSpacing*float64(n-1)
		if occupied > available {
			t.Errorf("available %v: occupied %v overflows", available, occupied)
		}
		if available-occupied > 1e-3 {
			t.Errorf("available %v: occupied %v leaves a gap", available, occupied)
		}
	}
}

func TestFloorCount(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{math.NaN(), 1},
		{math.Inf(1), 1},
		{0, 1},
		{0.99, 1},
		{3.7, 3},
	}
	for _, tt := range tests {
		if got := floorCount(tt.in); got != tt.want {
			t.Errorf("floorCount(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
