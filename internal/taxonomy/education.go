// internal/taxonomy/education.go
package taxonomy

import "strings"

// EducationLevel is one step in the platform-wide education hierarchy. The
// fit scorer and the search indexer both rank through this table so a level
// never ranks differently in matching than it does in filtering.
type EducationLevel struct {
	Name string
	Rank float64
}

// educationLevels is ordered lowest to highest. Diploma sits between 12th and
// Graduate, hence the fractional rank.
var educationLevels = []EducationLevel{
	{Name: "Below 10th", Rank: 1},
	{Name: "10th", Rank: 2},
	{Name: "12th", Rank: 3},
	{Name: "Diploma", Rank: 3.5},
	{Name: "Graduate", Rank: 4},
	{Name: "Post Graduate", Rank: 5},
	{Name: "PhD", Rank: 6},
}

// Levels returns the hierarchy in ascending order.
func Levels() []EducationLevel {
	out := make([]EducationLevel, len(educationLevels))
	copy(out, educationLevels)
	return out
}

// Rank maps a level string to its ordinal rank. Unrecognized or empty
// strings rank 0; lookups are case-insensitive and trim whitespace.
func Rank(level string) float64 {
	idx := index(level)
	if idx < 0 {
		return 0
	}
	return educationLevels[idx].Rank
}

// StepsBelow reports how many hierarchy steps the candidate level sits below
// the required level. Zero or negative means the requirement is met.
// Either side unrecognized returns -1 for that side's index, so a missing
// requirement is always met and a missing candidate level never earns the
// one-step-below half credit.
func StepsBelow(required, candidate string) int {
	return index(required) - index(candidate)
}

func index(level string) int {
	needle := strings.TrimSpace(strings.ToLower(level))
	for i, l := range educationLevels {
		if strings.ToLower(l.Name) == needle {
			return i
		}
	}
	return -1
}
