package paginate

import "math"

const (
	DefaultScale   = 1.0
	MinScale       = 0.1
	ScaleStep      = 0.1
	DefaultOverlap = 0.2
	MinOverlap     = 0.05
	MaxOverlap     = 0.30
	OverlapStep    = 0.05
)

// ViewState is the per-image zoom and overlap, persisted by basename
type ViewState struct {
	Scale        float64 `json:"scale"`
	OverlapRatio float64 `json:"overlap_ratio"`
}

// DefaultViewState is used for images without a saved state
func DefaultViewState() ViewState {
	return ViewState{Scale: DefaultScale, OverlapRatio: DefaultOverlap}
}

// Normalize applies the zoom floor and overlap domain
func (v ViewState) Normalize() ViewState {
	return ViewState{
		Scale:        ClampScale(v.Scale),
		OverlapRatio: ClampOverlap(v.OverlapRatio),
	}
}

// ZoomIn returns the state one zoom step larger
func (v ViewState) ZoomIn() ViewState {
	v.Scale = StepZoom(v.Scale, 1)
	return v
}

// ZoomOut returns the state one zoom step smaller
func (v ViewState) ZoomOut() ViewState {
	v.Scale = StepZoom(v.Scale, -1)
	return v
}

// MoreOverlap returns the state one overlap step larger
func (v ViewState) MoreOverlap() ViewState {
	v.OverlapRatio = StepOverlap(v.OverlapRatio, 1)
	return v
}

// LessOverlap returns the state one overlap step smaller
func (v ViewState) LessOverlap() ViewState {
	v.OverlapRatio = StepOverlap(v.OverlapRatio, -1)
	return v
}

// ClampScale rounds to two decimals and applies the zoom floor.
// Non-finite or non-positive values fall back to the default.
func ClampScale(scale float64) float64 {
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return DefaultScale
	}
	return math.Max(MinScale, round2(scale))
}

// ClampOverlap rounds to two decimals and clamps to [MinOverlap, MaxOverlap].
func ClampOverlap(ratio float64) float64 {
	if math.IsNaN(ratio) {
		return DefaultOverlap
	}
	return math.Min(MaxOverlap, math.Max(MinOverlap, round2(ratio)))
}

// StepZoom moves scale by n zoom steps
func StepZoom(scale float64, n int) float64 {
	return math.Max(MinScale, round2(ClampScale(scale)+float64(n)*ScaleStep))
}

// StepOverlap moves ratio by n overlap steps
func StepOverlap(ratio float64, n int) float64 {
	return ClampOverlap(ClampOverlap(ratio) + float64(n)*OverlapStep)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
