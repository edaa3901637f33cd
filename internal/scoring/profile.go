package scoring

import "strings"

// Learning style codes as stored on the user profile.
const (
	StyleVisual      = 1
	StyleAuditory    = 2
	StyleReading     = 3
	StyleKinesthetic = 4
)

// Weekdays recognised in an availability set.
var Weekdays = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// Profile is the slice of a user record the scorer cares about.
// Subjects and Availability are compared case-insensitively.
type Profile struct {
	Subjects         []string
	LearningStyle    int
	Availability     []string
	PerformanceLevel int
}

// Complete reports whether the profile carries every field needed for
// matching. Incomplete profiles must not reach Score.
func (p Profile) Complete() bool {
	return len(p.Subjects) > 0 &&
		p.LearningStyle >= StyleVisual && p.LearningStyle <= StyleKinesthetic &&
		len(p.Availability) > 0 &&
		p.PerformanceLevel >= 1 && p.PerformanceLevel <= 5
}

// SharesSubject reports whether the profile has at least one subject in
// common with the given set, ignoring case.
func (p Profile) SharesSubject(subjects []string) bool {
	theirs := lowerSet(subjects)
	for _, s := range p.Subjects {
		if _, ok := theirs[strings.ToLower(s)]; ok {
			return true
		}
	}
	return false
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	return set
}
