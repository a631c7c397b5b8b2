package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/certlab/kcnasim/internal/exam"
	"github.com/certlab/kcnasim/internal/model"
)

// ExportAttempts builds export-ready results from all archived attempts,
// newest first.
func (s *Store) ExportAttempts() ([]model.AttemptResult, error) {
	rows, err := s.db.Query(
		`SELECT id, started_at, completed_at, score, passed, payload
		 FROM attempts ORDER BY completed_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var results []model.AttemptResult
	for rows.Next() {
		var (
			result  model.AttemptResult
			passed  int
			payload string
		)
		if err := rows.Scan(&result.ID, &result.StartedAt, &result.CompletedAt,
			&result.Score, &passed, &payload); err != nil {
			return nil, err
		}
		result.Passed = passed != 0

		var sess model.ExamSession
		if err := json.Unmarshal([]byte(payload), &sess); err != nil {
			return nil, fmt.Errorf("decode attempt %s: %w", result.ID, err)
		}
		for _, entry := range exam.Review(sess.Questions, sess.Answers) {
			result.Questions = append(result.Questions, model.QuestionResult{
				ID:         entry.Question.ID,
				Prompt:     entry.Question.Prompt,
				Domain:     entry.Question.Domain,
				Competency: entry.Question.Competency,
				Correct:    entry.Question.Correct,
				Answer:     entry.Answer,
				IsCorrect:  entry.Correct,
			})
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// BuildExport wraps archived attempts in the export envelope.
func (s *Store) BuildExport() (model.AttemptExport, error) {
	results, err := s.ExportAttempts()
	if err != nil {
		return model.AttemptExport{}, err
	}
	return model.AttemptExport{
		ExportedAt: time.Now().UTC(),
		Attempts:   results,
	}, nil
}
