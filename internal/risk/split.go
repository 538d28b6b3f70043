// ABOUTME: Seeded train/test partitioning of sample indices.
// ABOUTME: The test side holds ceil(fraction * n) indices.
package risk

import (
	"math"
	"math/rand/v2"
)

// Split shuffles 0..n-1 with a fixed seed and returns the train and test
// index sets. The test set holds ceil(testFraction*n) indices.
func Split(n int, testFraction float64, seed uint64) (train, test []int) {
	if n <= 0 {
		return nil, nil
	}
	if testFraction < 0 {
		testFraction = 0
	}
	if testFraction > 1 {
		testFraction = 1
	}

	nTest := int(math.Ceil(testFraction * float64(n)))
	perm := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)).Perm(n)
	return perm[nTest:], perm[:nTest]
}
