package wheel

import "math"

const (
	fullTurn = 360.0

	// minAdvance is the smallest arc the wheel travels past its whole spins.
	minAdvance = 30.0

	// offsetSpread scales the random landing offset relative to half a segment,
	// keeping the pointer inside the inner half of the winning segment.
	offsetSpread = 0.5
)

// Geometry is the result of a landing computation.
type Geometry struct {
	SegmentAngle       float64 `json:"segmentAngle"`
	Index              int     `json:"index"`
	Spins              int     `json:"spins"`
	Offset             float64 `json:"offset"`
	TargetAngle        float64 `json:"targetAngle"`
	AdditionalRotation float64 `json:"additionalRotation"`
	TargetRotation     float64 `json:"targetRotation"`
}

// SegmentAngle is the width of one of n equal segments.
func SegmentAngle(n int) float64 {
	return fullTurn / float64(n)
}

// Normalize maps any rotation into [0, 360).
func Normalize(rotation float64) float64 {
	r := math.Mod(math.Mod(rotation, fullTurn)+fullTurn, fullTurn)
	if r >= fullTurn {
		return 0
	}
	return r
}

// Offset turns a uniform sample u in [0, 1) into a landing offset inside the
// inner half of a segment.
func Offset(u, segmentAngle float64) float64 {
	return (u - 0.5) * segmentAngle * offsetSpread
}

// Land computes where the wheel must stop so that segment index of n sits under
// the pointer at 12 o'clock. Segment 0 starts at 12 o'clock and segments run
// clockwise; rotating the wheel by X moves wheel angle A to screen angle A+X.
func Land(rotation float64, n, index, spins int, offset float64) Geometry {
	segment := SegmentAngle(n)
	normalized := Normalize(rotation)

	center := float64(index)*segment + segment/2
	target := center + offset

	additional := math.Mod((fullTurn-target)-normalized+fullTurn, fullTurn)
	if additional < 0 {
		additional += fullTurn
	}
	if additional < minAdvance {
		additional += fullTurn
	}

	return Geometry{
		SegmentAngle:       segment,
		Index:              index,
		Spins:              spins,
		Offset:             offset,
		TargetAngle:        target,
		AdditionalRotation: additional,
		TargetRotation:     rotation + float64(spins)*fullTurn + additional,
	}
}

// PointerAngle returns the wheel angle that sits under the pointer after the
// wheel has turned by rotation degrees.
func PointerAngle(rotation float64) float64 {
	return Normalize(fullTurn - Normalize(rotation))
}

// SegmentAt returns the index of the segment under the pointer for n segments.
func SegmentAt(rotation float64, n int) int {
	i := int(PointerAngle(rotation) / SegmentAngle(n))
	if i >= n {
		i = n - 1
	}
	return i
}
