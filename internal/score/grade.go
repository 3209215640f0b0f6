package score

// Grade is the letter rating derived from the total score.
type Grade string

const (
	GradeExcellent        Grade = "excellent"
	GradeGood             Grade = "good"
	GradeFair             Grade = "fair"
	GradePass             Grade = "pass"
	GradeNeedsImprovement Grade = "needs-improvement"
)

// GradeFor maps a total score to its grade band.
func GradeFor(total float64) Grade {
	switch {
	case total >= 90:
		return GradeExcellent
	case total >= 80:
		return GradeGood
	case total >= 70:
		return GradeFair
	case total >= 60:
		return GradePass
	default:
		return GradeNeedsImprovement
	}
}
