package amfront

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ismband/ismrx/internal/fixedpoint"
)

// fullScaleSineCU8 builds a CU8 IQ block for a full-scale single-tone
// sine: I/Q trace a constant-radius circle (I=127cos, Q=127sin), the
// classic "full scale sine" SDR test vector, whose magnitude every
// estimator should recover close to fixedpoint.FullScale regardless of
// instantaneous phase.
func fullScaleSineCU8(n int) []byte {
	iq := make([]byte, n*2)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / 37
		iq[2*i] = byte(128 + int(math.Round(127*math.Cos(theta))))
		iq[2*i+1] = byte(128 + int(math.Round(127*math.Sin(theta))))
	}
	return iq
}

func fullScaleSineCS16(n int) []int16 {
	iq := make([]int16, n*2)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / 37
		iq[2*i] = int16(math.Round(32767 * math.Cos(theta)))
		iq[2*i+1] = int16(math.Round(32767 * math.Sin(theta)))
	}
	return iq
}

func TestScaleConsistencyCU8(t *testing.T) {
	iq := fullScaleSineCU8(4000)

	for name, fn := range map[string]func([]byte) ([]uint16, float64){
		"lut":       MagnitudeLUT,
		"estimate":  MagnitudeEstimateCU8,
		"true":      MagnitudeTrueCU8,
	} {
		am, avgDB := fn(iq)
		var sum float64
		for _, v := range am {
			sum += float64(v)
		}
		mean := sum / float64(len(am))
		db := fixedpoint.MagToDB(mean)

		assert.GreaterOrEqualf(t, db, -0.6, "%s: mean-based dB", name)
		assert.LessOrEqualf(t, db, 0.6, "%s: mean-based dB", name)
		assert.GreaterOrEqualf(t, avgDB, -0.6, "%s: reported avg dB", name)
		assert.LessOrEqualf(t, avgDB, 0.6, "%s: reported avg dB", name)
	}
}

func TestScaleConsistencyCS16(t *testing.T) {
	iq := fullScaleSineCS16(4000)

	for name, fn := range map[string]func([]int16) ([]uint16, float64){
		"estimate": MagnitudeEstimateCS16,
		"true":     MagnitudeTrueCS16,
	} {
		am, avgDB := fn(iq)
		var sum float64
		for _, v := range am {
			sum += float64(v)
		}
		mean := sum / float64(len(am))
		db := fixedpoint.MagToDB(mean)

		assert.GreaterOrEqualf(t, db, -0.6, "%s: mean-based dB", name)
		assert.LessOrEqualf(t, db, 0.6, "%s: mean-based dB", name)
		assert.GreaterOrEqualf(t, avgDB, -0.6, "%s: reported avg dB", name)
		assert.LessOrEqualf(t, avgDB, 0.6, "%s: reported avg dB", name)
	}
}
