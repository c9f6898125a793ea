package model

import "math"

func crossEntropy(probs []float64, label int) float64 {
	return -math.Log(math.Max(probs[label], minProb))
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}

	return best
}
