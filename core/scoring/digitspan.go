package scoring

import "strings"

// ScoreDigitSpan compares the digits spoken in the transcript against the
// presented sequence. For the backward variant the subject must repeat the
// sequence reversed, so the expected sequence is reversed before comparing.
// Only an exact match scores; there is no partial credit.
func ScoreDigitSpan(transcript string, presented []int, backward bool) (float64, error) {
	if strings.TrimSpace(transcript) == "" {
		return 0, ErrNoResponse
	}

	expected := presented
	if backward {
		expected = make([]int, len(presented))
		for i, digit := range presented {
			expected[len(presented)-1-i] = digit
		}
	}

	spoken := extractDigits(transcript)
	if len(spoken) != len(expected) {
		return 0, nil
	}
	for i, digit := range expected {
		if spoken[i] != digit {
			return 0, nil
		}
	}

	return 1, nil
}
