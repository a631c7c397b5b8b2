package exam

import (
	"errors"
	"math"

	"github.com/certlab/kcnasim/internal/model"
)

// PassThreshold is the minimum score (percent) for a passing attempt.
const PassThreshold = 80

// ErrNoQuestions is returned when scoring an empty question set.
var ErrNoQuestions = errors.New("cannot score an exam with no questions")

// Score compares submitted answers to the correct answers and returns the
// percentage of correct ones, rounded to the nearest integer. Unanswered
// questions count as incorrect.
func Score(questions model.QuestionBank, answers model.AnswerSet) (int, error) {
	if len(questions) == 0 {
		return 0, ErrNoQuestions
	}
	correct := 0
	for _, q := range questions {
		if answer, ok := answers.Get(q.ID); ok && answer == q.Correct {
			correct++
		}
	}
	return int(math.Round(float64(correct) / float64(len(questions)) * 100)), nil
}

// Passed reports whether a score meets the pass threshold.
func Passed(score int) bool {
	return score >= PassThreshold
}
