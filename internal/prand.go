package internal

// Prand32 generates a pseudo random number from a seed.
func Prand32[T ~uint32](seed T) T {
	/* Algorithm "xor" from p. 4 of Marsaglia, "Xorshift RNGs" */
	seed ^= seed << 13
	seed ^= seed >> 17
	seed ^= seed << 5
	return seed
}

// FillPrand fills b with pseudo random bytes derived from seed and returns the next seed.
func FillPrand(b []byte, seed uint32) uint32 {
	if seed == 0 {
		seed = 1
	}
	for i := range b {
		if i%4 == 0 {
			seed = Prand32(seed)
		}
		b[i] = byte(seed >> (8 * (i % 4)))
	}
	return seed
}
