package scoring

import "strings"

// ScoreSerialSubtraction compares the integers spoken in the transcript
// positionally against the expected arithmetic sequence and buckets the
// correct count into the task score: at least 4 correct scores 3, at least
// 2 scores 2, at least 1 scores 1, otherwise 0. The correct count is
// returned alongside the score for persistence.
func ScoreSerialSubtraction(transcript string, expected []int) (correct int, score float64, err error) {
	if strings.TrimSpace(transcript) == "" {
		return 0, 0, ErrNoResponse
	}

	spoken := extractNumbers(transcript)
	for i, value := range expected {
		if i >= len(spoken) {
			break
		}
		if spoken[i] == value {
			correct++
		}
	}

	switch {
	case correct >= 4:
		score = 3
	case correct >= 2:
		score = 2
	case correct >= 1:
		score = 1
	}

	return correct, score, nil
}
