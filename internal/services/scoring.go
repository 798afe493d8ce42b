package services

import (
	"math"
	"strconv"

	"github.com/ketan-bobby/skillpulse/internal/models"
)

// questionKey is the JSON map key form of a question id, matching how
// answers are stored on the session.
func questionKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// ScoreOutcome is the pure output of grading one answer set against a
// question list. It carries no identity and no persistence concerns.
type ScoreOutcome struct {
	TotalQuestions int
	CorrectAnswers int
	Percentage     int
	Passed         bool
}

// ScoreAnswers grades submitted answers against the question list.
//
// Comparison is an exact, case-sensitive string match; unanswered questions
// count as incorrect. The percentage is rounded half-up to the nearest
// integer. An empty question list scores zero and never passes.
func ScoreAnswers(questions []*models.Question, answers map[string]string, passingScore int) ScoreOutcome {
	total := len(questions)
	correct := 0
	for _, q := range questions {
		given, ok := answers[questionKey(q.ID)]
		if ok && given == q.CorrectAnswer {
			correct++
		}
	}

	if total == 0 {
		return ScoreOutcome{}
	}

	percentage := int(math.Round(float64(correct) * 100 / float64(total)))
	return ScoreOutcome{
		TotalQuestions: total,
		CorrectAnswers: correct,
		Percentage:     percentage,
		Passed:         percentage >= passingScore,
	}
}
