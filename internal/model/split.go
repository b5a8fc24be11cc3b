package model

import "math/rand"

// TrainTestSplit partitions row indices [0,n) into train and test sets with a
// seeded shuffle, so evaluation runs are reproducible. testFraction is
// clamped to [0,1]; the test set gets round(n * testFraction) rows.
func TrainTestSplit(n int, testFraction float64, seed int64) (train, test []int) {
	if n <= 0 {
		return nil, nil
	}
	if testFraction < 0 {
		testFraction = 0
	}
	if testFraction > 1 {
		testFraction = 1
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	testSize := int(float64(n)*testFraction + 0.5)
	return idx[testSize:], idx[:testSize]
}
