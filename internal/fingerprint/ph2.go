package fingerprint

import "sort"

// ph2MaxValue is both the block's maximum value (1-byte blocks) and the
// modulus applied to every running counter.
const ph2MaxValue = 255

// ph2Primes is the fixed table of the first 54 primes through 251, used
// to classify each 1-byte block as "prime" or "regular".
var ph2Primes = []int{
	2, 3, 5, 7, 11, 13, 17, 19, 23, 29,
	31, 37, 41, 43, 47, 53, 59, 61, 67, 71,
	73, 79, 83, 89, 97, 101, 103, 107, 109, 113,
	127, 131, 137, 139, 149, 151, 157, 163, 167, 173,
	179, 181, 191, 193, 197, 199, 211, 223, 227, 229,
	233, 239, 241, 251,
}

func isPH2Prime(v int) bool {
	i := sort.SearchInts(ph2Primes, v)
	return i < len(ph2Primes) && ph2Primes[i] == v
}

// PH2 is a prime-histogram hash builder operating over 1-byte blocks.
// It is write-once - see sealable.
type PH2 struct {
	sealable
	sumRegular      int
	overflowRegular int
	countRegular    int
	sumPrimes       int
	overflowPrimes  int
	countPrimes     int
}

// NewPH2 returns an empty, open PH2 builder.
func NewPH2() *PH2 {
	return &PH2{}
}

// Write feeds bytes into the hash. Block size is one byte, so the padding
// step the spec describes for larger block sizes is a no-op here -
// preserved conceptually (every byte is already block-aligned) rather
// than coded as a literal pad step.
func (h *PH2) Write(p []byte) (int, error) {
	if err := h.checkOpen(); err != nil {
		return 0, err
	}

	for _, b := range p {
		h.addBlock(int(b))
	}

	return len(p), nil
}

func (h *PH2) addBlock(v int) {
	if isPH2Prime(v) {
		h.sumPrimes, h.overflowPrimes = accumulate(h.sumPrimes, h.overflowPrimes, v)
		h.countPrimes = (h.countPrimes + 1) % ph2MaxValue

		return
	}

	h.sumRegular, h.overflowRegular = accumulate(h.sumRegular, h.overflowRegular, v)
	h.countRegular = (h.countRegular + 1) % ph2MaxValue
}

func accumulate(sum, overflow, v int) (newSum, newOverflow int) {
	diff := ph2MaxValue - sum
	if v >= diff {
		return v - diff, (overflow + 1) % ph2MaxValue
	}

	return sum + v, overflow
}

// Digest seals the builder and returns the six summary bytes, in the
// order count_regular, count_primes, sum_regular, overflow_regular,
// sum_primes, overflow_primes.
func (h *PH2) Digest() [6]byte {
	h.seal()

	return [6]byte{
		byte(h.countRegular % ph2MaxValue),
		byte(h.countPrimes % ph2MaxValue),
		byte(h.sumRegular % ph2MaxValue),
		byte(h.overflowRegular % ph2MaxValue),
		byte(h.sumPrimes % ph2MaxValue),
		byte(h.overflowPrimes % ph2MaxValue),
	}
}
