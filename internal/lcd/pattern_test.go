package lcd

import "testing"

func TestNewPatternLayer(t *testing.T) {
	patterns := []Pattern{PatternCheckerboard, PatternStripes, PatternGradient, PatternBorder}

	for _, p := range patterns {
		layer := NewPatternLayer(p)
		if len(layer) != LayerSize*LayerSize {
			t.Fatalf("%s: expected %d entries, got %d", p, LayerSize*LayerSize, len(layer))
		}
		seen := map[uint8]bool{}
		for _, v := range layer {
			if v > 3 {
				t.Fatalf("%s: colour index %d out of range", p, v)
			}
			seen[v] = true
		}
		if len(seen) < 2 {
			t.Errorf("%s: expected at least two colour indices, got %v", p, seen)
		}
	}

	for _, v := range NewPatternLayer("unknown") {
		if v != 0 {
			t.Fatal("Expected unknown pattern to produce an empty layer")
		}
	}
}

func TestWaveEffect(t *testing.T) {
	l := New()
	l.SetHBlankCallback(WaveEffect(l, func() uint8 { return 100 }, 8))
	l.RunFrame()

	params := l.ScanlineParameters()
	if params[0][0] != 0 {
		t.Errorf("Expected line 0 to use the initial SCX, got %d", params[0][0])
	}

	// Quarter period peaks at +8, three quarters at -8.
	if got := params[Height/4][0]; got != 108 {
		t.Errorf("Expected SCX 108 at line %d, got %d", Height/4, got)
	}
	if got := params[3*Height/4][0]; got != 92 {
		t.Errorf("Expected SCX 92 at line %d, got %d", 3*Height/4, got)
	}

	// The last HBlank restores the base scroll for the next frame.
	if scx, _ := l.Viewport(); scx != 100 {
		t.Errorf("Expected SCX 100 after the frame, got %d", scx)
	}
}

func TestBorderPatternFrame(t *testing.T) {
	layer := NewPatternLayer(PatternBorder)
	at := func(x, y int) uint8 { return layer[y*LayerSize+x] }

	tests := []struct {
		x, y int
		want uint8
	}{
		{0, 0, 3},
		{patternBorderThickness - 1, 10, 3},
		{patternBorderThickness, patternBorderThickness, 1},
		{patternBorderWidth - patternBorderThickness - 1, 10, 1},
		{patternBorderWidth - patternBorderThickness, 10, 3},
		{20, patternBorderHeight - patternBorderThickness - 1, 1},
		{20, patternBorderHeight - patternBorderThickness, 3},
	}

	for _, tt := range tests {
		if got := at(tt.x, tt.y); got != tt.want {
			t.Errorf("(%d,%d): expected index %d, got %d", tt.x, tt.y, tt.want, got)
		}
	}
}
