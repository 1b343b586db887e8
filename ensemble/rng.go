// SPDX-License-Identifier: MIT

package ensemble

import "math/rand/v2"

// defaultSeed replaces a zero seed so the default draw is reproducible.
const defaultSeed uint64 = 1

// parentSeed resolves the seed every group stream of one draw derives from.
// An explicit source is consumed once per draw.
func parentSeed(o options) uint64 {
	if o.src != nil {
		return o.src.Uint64()
	}
	if o.seed == 0 {
		return defaultSeed
	}

	return o.seed
}

// deriveSeed mixes a parent seed and a stream id with the SplitMix64
// finalizer so neighbouring streams are decorrelated.
func deriveSeed(parent, stream uint64) uint64 {
	x := parent ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return x
}

// streamSource returns the independent PCG stream for group stream of a draw.
// Streams never share state, so groups may be drawn on separate goroutines.
func streamSource(parent, stream uint64) *rand.PCG {
	hi := deriveSeed(parent, stream)

	return rand.NewPCG(hi, deriveSeed(hi, ^stream))
}
