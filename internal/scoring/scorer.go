package scoring

import "math"

// Weights of the four score terms. They sum to 100.
const (
	weightSubjects     = 40.0
	weightStyle        = 30.0
	weightAvailability = 20.0
	weightPerformance  = 10.0
)

// Score computes the compatibility of two profiles on a 0-100 scale.
// The function is pure and symmetric: every term uses overlap or absolute
// difference, so Score(a, b) == Score(b, a).
//
// Terms:
//   - subjects (40): shared subjects over the larger subject set
//   - learning style (30): full credit on equality, half on adjacent styles
//   - availability (20): shared weekdays over the 7-day week
//   - performance (10): 10 minus 2 per level of distance, floored at 0
//
// Both profiles are expected to be Complete(); a side with no subjects
// simply contributes nothing to the subject term.
func Score(a, b Profile) int {
	total := subjectTerm(a, b) + styleTerm(a, b) + availabilityTerm(a, b) + performanceTerm(a, b)

	score := int(math.Round(total))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func subjectTerm(a, b Profile) float64 {
	setA := lowerSet(a.Subjects)
	setB := lowerSet(b.Subjects)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	shared := 0
	for s := range setA {
		if _, ok := setB[s]; ok {
			shared++
		}
	}

	larger := len(setA)
	if len(setB) > larger {
		larger = len(setB)
	}
	return float64(shared) / float64(larger) * weightSubjects
}

func styleTerm(a, b Profile) float64 {
	switch diff := absInt(a.LearningStyle - b.LearningStyle); diff {
	case 0:
		return weightStyle
	case 1:
		return weightStyle / 2
	default:
		return 0
	}
}

func availabilityTerm(a, b Profile) float64 {
	setA := lowerSet(a.Availability)
	setB := lowerSet(b.Availability)

	shared := 0
	for d := range setA {
		if _, ok := setB[d]; ok {
			shared++
		}
	}
	return float64(shared) / 7 * weightAvailability
}

func performanceTerm(a, b Profile) float64 {
	term := weightPerformance - 2*float64(absInt(a.PerformanceLevel-b.PerformanceLevel))
	if term < 0 {
		return 0
	}
	return term
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
