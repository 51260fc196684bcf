package probe

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

func checkTraces(ref, test []float64) error {
	if len(ref) == 0 {
		return fmt.Errorf("empty reference trace")
	}
	if len(ref) != len(test) {
		return fmt.Errorf("trace lengths differ: %d reference, %d test", len(ref), len(test))
	}
	return nil
}

// MaxRelativeError returns max|ref-test| / max|ref|
func MaxRelativeError(ref, test []float64) (float64, error) {
	if err := checkTraces(ref, test); err != nil {
		return 0, err
	}
	diff := make([]float64, len(ref))
	floats.SubTo(diff, test, ref)

	peak := math.Max(floats.Max(ref), -floats.Min(ref))
	if peak == 0 {
		return 0, fmt.Errorf("reference trace is identically zero")
	}
	return math.Max(floats.Max(diff), -floats.Min(diff)) / peak, nil
}

// ReflectionSpectrum returns |FFT(test-ref)| / |FFT(ref)| for the
// non-negative frequency bins 0..len/2. Bins where the reference has no
// energy come out as NaN or +Inf.
func ReflectionSpectrum(ref, test []float64) ([]float64, error) {
	if err := checkTraces(ref, test); err != nil {
		return nil, err
	}
	diff := make([]float64, len(ref))
	floats.SubTo(diff, test, ref)

	r := fft.FFTReal(ref)
	d := fft.FFTReal(diff)
	out := make([]float64, len(ref)/2+1)
	for k := range out {
		out[k] = cmplx.Abs(d[k]) / cmplx.Abs(r[k])
	}
	return out, nil
}

// Frequencies returns the bin frequencies matching ReflectionSpectrum for n
// samples taken every dt.
func Frequencies(n int, dt float64) []float64 {
	out := make([]float64, n/2+1)
	if len(out) == 1 {
		return out
	}
	floats.Span(out, 0, float64(n/2)/(float64(n)*dt))
	return out
}
