package median

import (
	"fmt"
	"testing"

	"github.com/cwbudde/algo-calcium/internal/testutil"
)

func BenchmarkFilter(b *testing.B) {
	x := testutil.DeterministicNoise(1, 1, 9000)
	dst := make([]float64, len(x))

	for _, k := range []int{11, 101, 301} {
		b.Run(fmt.Sprintf("kernel=%d", k), func(b *testing.B) {
			for b.Loop() {
				FilterTo(dst, x, k)
			}
		})
	}
}
