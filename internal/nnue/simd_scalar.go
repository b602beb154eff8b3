//go:build !amd64 && !arm64

// Scalar fallback squared clipped-ReLU (SCReLU) dot product, used on
// architectures without a dedicated SIMD kernel.
package nnue

func dotClippedReLU(acc []int16, weights []int16) int32 {
	var sum int32
	for i, v := range acc {
		c := clippedReLU(v)
		sum += c * c * int32(weights[i])
	}
	return sum
}
