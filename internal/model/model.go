package model

import "time"

// Option is an answer option letter.
type Option string

const (
	OptionA Option = "A"
	OptionB Option = "B"
	OptionC Option = "C"
	OptionD Option = "D"
	OptionE Option = "E"
)

// OptionLetters lists all letters a record may carry, in display order.
var OptionLetters = []Option{OptionA, OptionB, OptionC, OptionD, OptionE}

// IsValid reports whether o is one of the known option letters.
func (o Option) IsValid() bool {
	switch o {
	case OptionA, OptionB, OptionC, OptionD, OptionE:
		return true
	}
	return false
}

// SessionStatus represents the lifecycle state of the attempt.
type SessionStatus string

const (
	StatusNotStarted SessionStatus = "not_started"
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
)

// QuestionRecord is one parsed question. Immutable once it enters a bank.
type QuestionRecord struct {
	ID          string `json:"id"`
	Prompt      string `json:"prompt"`
	OptionA     string `json:"option_a"`
	OptionB     string `json:"option_b"`
	OptionC     string `json:"option_c"`
	OptionD     string `json:"option_d"`
	OptionE     string `json:"option_e,omitempty"`
	Correct     Option `json:"correct_option"`
	Explanation string `json:"explanation,omitempty"`
	Domain      string `json:"domain,omitempty"`
	Competency  string `json:"competency,omitempty"`
}

// Choice pairs an option letter with its text.
type Choice struct {
	Letter Option `json:"letter"`
	Text   string `json:"text"`
}

// OptionText returns the text for a letter and whether the record carries it.
// A letter with empty text is treated as absent.
func (q QuestionRecord) OptionText(o Option) (string, bool) {
	var text string
	switch o {
	case OptionA:
		text = q.OptionA
	case OptionB:
		text = q.OptionB
	case OptionC:
		text = q.OptionC
	case OptionD:
		text = q.OptionD
	case OptionE:
		text = q.OptionE
	}
	return text, text != ""
}

// Options returns the record's present options in A..E order.
func (q QuestionRecord) Options() []Choice {
	var choices []Choice
	for _, letter := range OptionLetters {
		if text, ok := q.OptionText(letter); ok {
			choices = append(choices, Choice{Letter: letter, Text: text})
		}
	}
	return choices
}

// Valid reports whether the record may enter a bank: prompt, option A,
// option B, and the correct answer must be non-empty, and the correct
// answer must name a present option.
func (q QuestionRecord) Valid() bool {
	if q.Prompt == "" || q.OptionA == "" || q.OptionB == "" || q.Correct == "" {
		return false
	}
	_, ok := q.OptionText(q.Correct)
	return ok
}

// QuestionBank is an ordered sequence of valid records. Duplicate IDs may
// coexist; the bank never indirects through an ID index.
type QuestionBank []QuestionRecord

// AnswerSet maps question IDs to the chosen option letter.
type AnswerSet map[string]Option

// Get looks up the answer for a question ID. Unanswered questions are a
// normal state, reported through ok.
func (a AnswerSet) Get(id string) (Option, bool) {
	o, ok := a[id]
	return o, ok
}

// ExamSession is the single mutable attempt.
type ExamSession struct {
	ID            string       `json:"id"`
	Questions     QuestionBank `json:"questions"`
	CurrentIndex  int          `json:"current_index"`
	Answers       AnswerSet    `json:"answers"`
	StartTime     time.Time    `json:"start_time"`
	TimeRemaining int          `json:"time_remaining"`
	Completed     bool         `json:"is_completed"`
	Score         *int         `json:"score,omitempty"`
	Passed        *bool        `json:"passed,omitempty"`
}

// Current returns the record at the current position.
func (s *ExamSession) Current() QuestionRecord {
	return s.Questions[s.CurrentIndex]
}

// Clone returns a deep copy so callers cannot mutate engine state through
// a returned snapshot.
func (s *ExamSession) Clone() *ExamSession {
	if s == nil {
		return nil
	}
	c := *s
	c.Questions = append(QuestionBank(nil), s.Questions...)
	c.Answers = make(AnswerSet, len(s.Answers))
	for id, o := range s.Answers {
		c.Answers[id] = o
	}
	if s.Score != nil {
		score := *s.Score
		c.Score = &score
	}
	if s.Passed != nil {
		passed := *s.Passed
		c.Passed = &passed
	}
	return &c
}

// ReviewEntry joins a question with the user's answer for the review view.
type ReviewEntry struct {
	Question QuestionRecord `json:"question"`
	Answer   Option         `json:"answer,omitempty"`
	Answered bool           `json:"answered"`
	Correct  bool           `json:"correct"`
}
