package main

import (
	"fmt"
	"math"
	"math/cmplx"
)

// hostDFT is the direct O(N^2) transform used to check device output.
func hostDFT(x []complex64) []complex128 {
	n := len(x)
	out := make([]complex128, n)
	for k := range out {
		var acc complex128
		for j, v := range x {
			angle := -2 * math.Pi * float64((j*k)%n) / float64(n)
			acc += complex128(v) * cmplx.Rect(1, angle)
		}
		out[k] = acc
	}
	return out
}

// verifyResult compares device output with the host DFT of input and returns
// the largest absolute difference. It fails when a bin differs by more than
// verifyTolerance scaled by the transform size.
func verifyResult(input, output []complex64) (float64, error) {
	if len(input) != len(output) {
		return 0, fmt.Errorf("verifying result: %d input samples, %d output samples", len(input), len(output))
	}
	if len(input) > maxVerifySize {
		return 0, fmt.Errorf("verifying result: size %d exceeds the host limit of %d", len(input), maxVerifySize)
	}
	want := hostDFT(input)
	limit := verifyTolerance * float64(len(input))
	var maxErr float64
	worst := -1
	for k, w := range want {
		if diff := cmplx.Abs(w - complex128(output[k])); diff > maxErr {
			maxErr = diff
			worst = k
		}
	}
	if maxErr > limit {
		return maxErr, fmt.Errorf("result mismatch at bin %d: device=%v host=%v diff=%f",
			worst, output[worst], complex64(want[worst]), maxErr)
	}
	return maxErr, nil
}
