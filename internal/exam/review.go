package exam

import "github.com/certlab/kcnasim/internal/model"

// Review joins each question with the user's answer and its correctness, in
// question order. Unanswered questions appear with Answered=false and
// Correct=false. Pure projection; the session is never mutated.
func Review(questions model.QuestionBank, answers model.AnswerSet) []model.ReviewEntry {
	entries := make([]model.ReviewEntry, 0, len(questions))
	for _, q := range questions {
		answer, answered := answers.Get(q.ID)
		entries = append(entries, model.ReviewEntry{
			Question: q,
			Answer:   answer,
			Answered: answered,
			Correct:  answered && answer == q.Correct,
		})
	}
	return entries
}
