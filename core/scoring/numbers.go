// Package scoring holds the pure response scorers for spoken assessment
// tasks. Scorers take transcripts or tap timelines and produce numeric
// scores; they perform no I/O.
package scoring

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

// ErrNoResponse reports that there was nothing to score; callers record a
// zero score and a status message instead of failing the task.
var ErrNoResponse = errors.New("no response to score")

var unitWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tensWords = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

// tokenize lowercases the transcript and splits it into alphanumeric tokens.
// Hyphens split compounds ("ninety-three" becomes two tokens), matching how
// spoken number compounds arrive from transcription.
func tokenize(transcript string) []string {
	return strings.FieldsFunc(strings.ToLower(transcript), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// extractDigits maps a transcript to the sequence of single digits it
// speaks. Number words map to digits and multi-digit tokens split into
// their digits, so "four 81 two" yields 4 8 1 2.
func extractDigits(transcript string) []int {
	var digits []int
	for _, token := range tokenize(transcript) {
		if value, ok := unitWords[token]; ok && value <= 9 {
			digits = append(digits, value)
			continue
		}
		for _, r := range token {
			if unicode.IsDigit(r) {
				digits = append(digits, int(r-'0'))
			}
		}
	}
	return digits
}

// extractNumbers maps a transcript to the sequence of integers it speaks,
// combining simple two-word compounds: "ninety three" and "ninety-three"
// both yield 93, "one hundred" yields 100.
func extractNumbers(transcript string) []int {
	tokens := tokenize(transcript)

	var numbers []int
	for i := 0; i < len(tokens); i++ {
		token := tokens[i]

		if value, err := strconv.Atoi(token); err == nil {
			numbers = append(numbers, value)
			continue
		}

		if tens, ok := tensWords[token]; ok {
			if i+1 < len(tokens) {
				if unit, ok := unitWords[tokens[i+1]]; ok && unit <= 9 {
					numbers = append(numbers, tens+unit)
					i++
					continue
				}
			}
			numbers = append(numbers, tens)
			continue
		}

		if unit, ok := unitWords[token]; ok {
			if unit == 1 && i+1 < len(tokens) && tokens[i+1] == "hundred" {
				numbers = append(numbers, 100)
				i++
				continue
			}
			numbers = append(numbers, unit)
			continue
		}

		if token == "hundred" {
			numbers = append(numbers, 100)
		}
	}
	return numbers
}
