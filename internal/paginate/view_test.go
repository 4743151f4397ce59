package paginate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepZoom(t *testing.T) {
	tests := []struct {
		name  string
		scale float64
		n     int
		want  float64
	}{
		{"zoom in", 1.0, 1, 1.1},
		{"zoom out", 1.0, -1, 0.9},
		{"floor", 0.1, -1, 0.1},
		{"no ceiling", 9.9, 3, 10.2},
		{"rounds accumulated error", 0.30000000000000004, 1, 0.4},
		{"invalid resets", math.NaN(), 0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StepZoom(tt.scale, tt.n))
		})
	}
}

func TestStepOverlap(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		n     int
		want  float64
	}{
		{"increase", 0.2, 1, 0.25},
		{"decrease", 0.2, -1, 0.15},
		{"upper bound", 0.3, 1, 0.3},
		{"lower bound", 0.05, -1, 0.05},
		{"out of range input", 0.9, -1, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StepOverlap(tt.ratio, tt.n))
		})
	}
}

func TestViewState_Steps(t *testing.T) {
	vs := DefaultViewState()
	assert.Equal(t, ViewState{Scale: 1.0, OverlapRatio: 0.2}, vs)

	vs = vs.ZoomIn().ZoomIn().MoreOverlap()
	assert.Equal(t, ViewState{Scale: 1.2, OverlapRatio: 0.25}, vs)

	vs = vs.ZoomOut().LessOverlap().LessOverlap()
	assert.Equal(t, ViewState{Scale: 1.1, OverlapRatio: 0.15}, vs)
}

func TestViewState_Normalize(t *testing.T) {
	assert.Equal(t, ViewState{Scale: 1.0, OverlapRatio: 0.05}, ViewState{Scale: -2, OverlapRatio: 0}.Normalize())
	assert.Equal(t, ViewState{Scale: 3.14, OverlapRatio: 0.3}, ViewState{Scale: 3.14159, OverlapRatio: 0.31}.Normalize())
}
