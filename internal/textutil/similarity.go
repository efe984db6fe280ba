package textutil

// CosineSimilarity returns the cosine of the angle between two fingerprints,
// in [0, 1] for non-negative weights. Nil or zero-norm inputs score 0.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	small, large := a.tokens, b.tokens
	if len(small) > len(large) {
		small, large = large, small
	}
	var dot float64
	for token, w := range small {
		dot += w * large[token]
	}
	return dot / (a.norm * b.norm)
}
