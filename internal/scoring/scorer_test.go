package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/studybuddy/studybuddy-api/internal/scoring"
)

func fullProfile() scoring.Profile {
	return scoring.Profile{
		Subjects:         []string{"Math", "Physics"},
		LearningStyle:    scoring.StyleVisual,
		Availability:     []string{"monday", "wednesday", "friday"},
		PerformanceLevel: 3,
	}
}

func TestScoreSelfComparison(t *testing.T) {
	p := fullProfile()
	p.Availability = scoring.Weekdays // saturate the availability term too

	assert.Equal(t, 100, scoring.Score(p, p))
}

func TestScoreWithinBounds(t *testing.T) {
	profiles := []scoring.Profile{
		fullProfile(),
		{Subjects: []string{"History"}, LearningStyle: 4, Availability: []string{"sunday"}, PerformanceLevel: 1},
		{Subjects: nil, LearningStyle: 2, Availability: nil, PerformanceLevel: 5},
		{Subjects: []string{"a", "b", "c", "d", "e"}, LearningStyle: 1, Availability: scoring.Weekdays, PerformanceLevel: 5},
	}

	for _, a := range profiles {
		for _, b := range profiles {
			s := scoring.Score(a, b)
			assert.GreaterOrEqual(t, s, 0)
			assert.LessOrEqual(t, s, 100)
			assert.Equal(t, s, scoring.Score(b, a), "score must be symmetric")
		}
	}
}

func TestScoreSubjectsCaseInsensitive(t *testing.T) {
	a := fullProfile()
	b := fullProfile()
	a.Subjects = []string{"Math"}
	b.Subjects = []string{"math"}

	// identical apart from subject casing: every term at max except the
	// availability term (3 of 7 days shared)
	got := scoring.Score(a, b)
	want := scoring.Score(fullProfile(), fullProfile())
	assert.Equal(t, want, got)
}

func TestScoreDisjointSubjects(t *testing.T) {
	a := fullProfile()
	b := fullProfile()
	a.Subjects = []string{"Math"}
	b.Subjects = []string{"Biology"}
	a.Availability = scoring.Weekdays
	b.Availability = scoring.Weekdays

	// subject term 0, style 30, availability 20, performance 10
	assert.Equal(t, 60, scoring.Score(a, b))
}

func TestScoreNoSubjectsGuard(t *testing.T) {
	a := fullProfile()
	b := fullProfile()
	b.Subjects = nil

	// must not divide by zero; subject term contributes 0
	assert.NotPanics(t, func() { scoring.Score(a, b) })
	assert.Equal(t, scoring.Score(a, b), scoring.Score(b, a))
}

func TestScoreAdjacentLearningStyle(t *testing.T) {
	a := fullProfile()
	b := fullProfile()
	a.LearningStyle = scoring.StyleVisual
	b.LearningStyle = scoring.StyleAuditory

	base := scoring.Score(a, a)
	assert.Equal(t, base-15, scoring.Score(a, b))

	b.LearningStyle = scoring.StyleReading
	assert.Equal(t, base-30, scoring.Score(a, b))
}

func TestScorePerformanceDistance(t *testing.T) {
	a := fullProfile()
	b := fullProfile()
	a.PerformanceLevel = 1

	for level, wantPenalty := range map[int]int{1: 0, 2: 2, 3: 4, 4: 6, 5: 8} {
		b.PerformanceLevel = level
		assert.Equal(t, scoring.Score(a, a)-wantPenalty, scoring.Score(a, b), "level %d", level)
	}
}

func TestProfileComplete(t *testing.T) {
	assert.True(t, fullProfile().Complete())

	cases := map[string]func(*scoring.Profile){
		"no subjects":        func(p *scoring.Profile) { p.Subjects = nil },
		"no availability":    func(p *scoring.Profile) { p.Availability = nil },
		"style out of range": func(p *scoring.Profile) { p.LearningStyle = 5 },
		"style unset":        func(p *scoring.Profile) { p.LearningStyle = 0 },
		"level out of range": func(p *scoring.Profile) { p.PerformanceLevel = 6 },
		"level unset":        func(p *scoring.Profile) { p.PerformanceLevel = 0 },
	}
	for name, mutate := range cases {
		p := fullProfile()
		mutate(&p)
		assert.False(t, p.Complete(), name)
	}
}

func TestSharesSubject(t *testing.T) {
	p := fullProfile()

	assert.True(t, p.SharesSubject([]string{"physics", "Chemistry"}))
	assert.False(t, p.SharesSubject([]string{"Chemistry"}))
	assert.False(t, p.SharesSubject(nil))
}
