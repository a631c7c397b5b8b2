// Package parser turns a raw delimited-text blob into a validated question bank.
//
// The input is a hand-maintained CSV dump: a header row followed by one
// candidate record per line, eleven columns in fixed order (id, prompt,
// options A through E, correct option, explanation, domain, competency).
// Malformed rows are expected noise and are dropped, not reported per row.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/certlab/kcnasim/internal/model"
)

// ErrEmptyBank is returned when no valid records survive parsing.
var ErrEmptyBank = errors.New("question bank is empty")

// numColumns is the number of resolved fields a row must have to be considered.
const numColumns = 11

// Parse converts raw CSV text into a question bank. Rows that are blank,
// have fewer than eleven fields, or fail the record validity check are
// dropped silently; the second return value is the count of dropped rows.
// Parse fails only when the entire resulting bank is empty.
func Parse(text string) (model.QuestionBank, int, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return nil, 0, ErrEmptyBank
	}

	var bank model.QuestionBank
	dropped := 0
	// Skip the header row.
	for i := 1; i < len(lines); i++ {
		fields := splitLine(strings.TrimSpace(lines[i]))
		if len(fields) < numColumns {
			dropped++
			continue
		}

		record := model.QuestionRecord{
			ID:          fields[0],
			Prompt:      fields[1],
			OptionA:     fields[2],
			OptionB:     fields[3],
			OptionC:     fields[4],
			OptionD:     fields[5],
			OptionE:     fields[6],
			Correct:     model.Option(fields[7]),
			Explanation: fields[8],
			Domain:      fields[9],
			Competency:  fields[10],
		}
		if record.ID == "" {
			// Positional placeholder so every surviving record has an ID.
			record.ID = fmt.Sprintf("q%d", i)
		}
		if !record.Valid() {
			dropped++
			continue
		}
		bank = append(bank, record)
	}

	if len(bank) == 0 {
		return nil, dropped, ErrEmptyBank
	}
	return bank, dropped, nil
}

// splitLine splits one CSV row into fields. Fields may be double-quote
// enclosed; a doubled quote inside a quoted field is one literal quote, and
// a comma inside a quoted field is not a separator. Every field is trimmed
// before quote-stripping.
func splitLine(line string) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		switch c := line[i]; c {
		case '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
				current.WriteByte(c)
			}
		case ',':
			if inQuotes {
				current.WriteByte(c)
			} else {
				fields = append(fields, cleanField(current.String()))
				current.Reset()
			}
		default:
			current.WriteByte(c)
		}
	}
	fields = append(fields, cleanField(current.String()))
	return fields
}

// cleanField trims surrounding whitespace and strips one layer of enclosing
// quotes, unescaping doubled quotes inside.
func cleanField(field string) string {
	field = strings.TrimSpace(field)
	if len(field) >= 2 && strings.HasPrefix(field, `"`) && strings.HasSuffix(field, `"`) {
		field = strings.ReplaceAll(field[1:len(field)-1], `""`, `"`)
	}
	return field
}
