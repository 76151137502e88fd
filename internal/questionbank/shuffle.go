package questionbank

import "math/rand/v2"

// ShuffleOptions returns q with its options permuted uniformly and Correct
// pointing at the same option text it pointed at before.
func ShuffleOptions(q Question, r *rand.Rand) Question {
	perm := r.Perm(OptionCount)
	out := q
	for newIdx, oldIdx := range perm {
		out.Options[newIdx] = q.Options[oldIdx]
		if oldIdx == q.Correct {
			out.Correct = newIdx
		}
	}
	return out
}

// shuffleItems permutes items in place with Fisher-Yates.
func shuffleItems(items []item, r *rand.Rand) {
	for i := len(items) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
