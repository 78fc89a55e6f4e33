package stretch

import "math"

// Grain windows are precomputed once per engine at these sizes; a requested
// grain length snaps to the closest entry. The table is read-only after
// construction, so concurrent Process calls may share it.
var windowSizes = []int{256, 512, 1024, 2048, 4096}

type windowTable struct {
	windows map[int][]float64
}

func newWindowTable() *windowTable {
	t := &windowTable{windows: make(map[int][]float64, len(windowSizes))}
	for _, size := range windowSizes {
		t.windows[size] = hannWindow(size)
	}
	return t
}

// closestSize returns the precomputed size nearest to the requested grain
// length, preferring the smaller size on a tie.
func (t *windowTable) closestSize(requested int) int {
	best := windowSizes[0]
	bestDist := math.Abs(float64(requested - best))
	for _, size := range windowSizes[1:] {
		if d := math.Abs(float64(requested - size)); d < bestDist {
			best = size
			bestDist = d
		}
	}
	return best
}

func (t *windowTable) get(size int) []float64 {
	return t.windows[size]
}

func hannWindow(size int) []float64 {
	window := make([]float64, size)
	for i := range window {
		window[i] = 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/float64(size-1)))
	}
	return window
}
