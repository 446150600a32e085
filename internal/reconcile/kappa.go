// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reconcile

import "github.com/pfortes/prisma-screen/pkg/types"

// kappa computes Cohen's kappa over paired decision vectors. The slices are
// parallel and must be the same length. An empty input returns 0: the
// neutral "insufficient data" value, not perfect agreement.
func kappa(a, b []types.Decision) float64 {
	n := len(a)
	if n == 0 {
		return 0
	}

	agree := 0
	countA := make(map[types.Decision]int)
	countB := make(map[types.Decision]int)
	for i := range a {
		if a[i] == b[i] {
			agree++
		}
		countA[a[i]]++
		countB[b[i]]++
	}

	po := float64(agree) / float64(n)
	var pe float64
	for d, ca := range countA {
		pe += (float64(ca) / float64(n)) * (float64(countB[d]) / float64(n))
	}

	// Both raters constant on the same category: chance agreement is
	// total and the statistic is undefined. Report full agreement as 1,
	// anything else as the neutral 0.
	if pe == 1 {
		if po == 1 {
			return 1
		}
		return 0
	}
	return (po - pe) / (1 - pe)
}

// Interpret returns the conventional verbal band for a kappa value. For
// reporting only; nothing branches on it.
func Interpret(k float64) string {
	switch {
	case k < 0:
		return "worse than chance"
	case k < 0.20:
		return "slight agreement"
	case k < 0.40:
		return "fair agreement"
	case k < 0.60:
		return "moderate agreement"
	case k < 0.80:
		return "substantial agreement"
	}
	return "almost perfect agreement"
}
