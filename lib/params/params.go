package params

const (
	// SecParam is the bit security parameter κ.
	SecParam = 128

	// PaillierBits is the default bit length of a Paillier modulus N.
	PaillierBits = 16 * SecParam // = 2048

	// PrimeBits is the default bit length of each prime factor of N.
	PrimeBits = PaillierBits / 2 // = 1024

	// PrimeRounds is the number of Miller-Rabin rounds applied to prime
	// candidates. The scheme stays correct with a single round; the higher
	// count only lowers the false-positive probability and does not change
	// the distribution of accepted primes.
	PrimeRounds = 20

	// MinKeyBits is the smallest modulus length KeyGen accepts. Anything
	// this small is only useful inside tests.
	MinKeyBits = 16

	BytesPaillier   = PaillierBits / 8
	BytesCiphertext = 2 * BytesPaillier
)
