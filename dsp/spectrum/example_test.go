package spectrum_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-calcium/dsp/spectrum"
)

func ExamplePower() {
	pow := spectrum.Power([]complex128{1 + 0i, 0 + 2i, 3 + 4i})
	fmt.Printf("%.0f %.0f %.0f\n", pow[0], pow[1], pow[2])
	// Output:
	// 1 4 25
}

func ExampleWelch() {
	x := make([]float64, 1024)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * 0.25 * float64(i))
	}
	psd, _ := spectrum.Welch(x, 64)
	fmt.Println(len(psd.Freqs), psd.Freqs[16])
	// Output:
	// 33 0.25
}
