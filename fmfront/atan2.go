package fmfront

import "math"

const piOver4 = math.Pi / 4

// atan2Radians is the self-normalizing approximation
//
//	atan2(y,x) ~ pi/4 - pi/4 * (x-|y|)/(x+|y|)   in quadrants I/IV
//	atan2(y,x) ~ 3*pi/4 - pi/4 * (x+|y|)/(|y|-x) in quadrants II/III
//
// Max error is ~0.07 rad. Returns 0 when both inputs are 0 and avoids
// divide-by-zero at axis points.
func atan2Radians(y, x float64) float64 {
	if x == 0 && y == 0 {
		return 0
	}

	absY := math.Abs(y)
	var r, angle float64
	if x >= 0 {
		denom := x + absY
		if denom == 0 {
			denom = math.SmallestNonzeroFloat64
		}
		r = (x - absY) / denom
		angle = piOver4 - piOver4*r
	} else {
		denom := absY - x
		if denom == 0 {
			denom = math.SmallestNonzeroFloat64
		}
		r = (x + absY) / denom
		angle = 3*piOver4 - piOver4*r
	}
	if y < 0 {
		return -angle
	}
	return angle
}

// Atan2Int16 scales atan2Radians so that +-pi maps to +-math.MaxInt16,
// matching the CU8 front-end path's FM buffer scale.
func Atan2Int16(y, x int64) int16 {
	return int16(math.Round(atan2Radians(float64(y), float64(x)) / math.Pi * math.MaxInt16))
}

// Atan2Int32 scales atan2Radians so that +-pi maps to +-math.MaxInt32,
// matching the CS16 front-end path's higher precision intermediate.
func Atan2Int32(y, x int64) int32 {
	return int32(math.Round(atan2Radians(float64(y), float64(x)) / math.Pi * math.MaxInt32))
}
