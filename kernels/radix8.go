package kernels

import "math"

// Radix8Pass performs the work of work-item i of one radix-8 Stockham pass,
// exactly as fft_radix8.cl does. len(in) and len(out) must be 8*threads and
// p must be a power of eight not larger than threads.
func Radix8Pass(in, out []complex64, p, threads, i int) {
	if i >= threads {
		return
	}
	k := i & (p - 1)
	alpha := -2 * math.Pi * float64(k) / float64(8*p)

	var u [8]complex128
	for r := 0; r < 8; r++ {
		u[r] = complex128(in[i+r*threads]) * expi(alpha*float64(r))
	}

	base := (i-k)<<3 + k
	for q := 0; q < 8; q++ {
		var acc complex128
		for r := 0; r < 8; r++ {
			acc += u[r] * radix8Roots[(q*r)&7]
		}
		out[base+q*p] = complex64(acc)
	}
}

var radix8Roots = func() [8]complex128 {
	var roots [8]complex128
	for j := range roots {
		roots[j] = expi(-2 * math.Pi * float64(j) / 8)
	}
	return roots
}()

func expi(angle float64) complex128 {
	s, c := math.Sincos(angle)
	return complex(c, s)
}
