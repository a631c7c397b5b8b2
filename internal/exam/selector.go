package exam

import (
	"math/rand/v2"

	"github.com/certlab/kcnasim/internal/model"
)

// Select returns a randomized subset of count records from the bank without
// replacement. The whole bank is shuffled with an unbiased Fisher-Yates
// shuffle, so when count exceeds the bank size the full bank comes back in
// shuffled order. The bank itself is never reordered.
func Select(rng *rand.Rand, bank model.QuestionBank, count int) model.QuestionBank {
	shuffled := append(model.QuestionBank(nil), bank...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if count < len(shuffled) {
		shuffled = shuffled[:count]
	}
	return shuffled
}
