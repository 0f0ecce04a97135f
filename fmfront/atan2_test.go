package fmfront

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestAtan2Int16Accuracy(t *testing.T) {
	const maxErr = math.MaxInt16 * 0.07 / math.Pi

	rapid.Check(t, func(t *rapid.T) {
		y := rapid.Int64Range(-1<<15, 1<<15).Draw(t, "y")
		x := rapid.Int64Range(-1<<15, 1<<15).Draw(t, "x")

		got := Atan2Int16(y, x)
		want := math.Atan2(float64(y), float64(x)) / math.Pi * math.MaxInt16

		assert.LessOrEqual(t, math.Abs(float64(got)-want), maxErr+1)
	})
}

func TestAtan2ZeroZero(t *testing.T) {
	assert.Equal(t, int16(0), Atan2Int16(0, 0))
	assert.Equal(t, int32(0), Atan2Int32(0, 0))
}

func TestAtan2AxisPoints(t *testing.T) {
	assert.NotPanics(t, func() {
		Atan2Int16(0, 100)
		Atan2Int16(100, 0)
		Atan2Int16(0, -100)
		Atan2Int16(-100, 0)
	})
}
