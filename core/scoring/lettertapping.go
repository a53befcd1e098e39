package scoring

import "time"

// Window is the interval during which a tap counts for one presented
// letter: presentation start through presentation end plus a fixed grace
// for human reaction delay. Windows are built incrementally while letters
// are read and consumed once at scoring time.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// AttributeTaps assigns each tap to the first letter window containing its
// timestamp. A tap matching no window but landing within finalGrace after
// the last window attributes to the last letter; anything else is dropped.
// The result maps letter index to the number of taps attributed to it.
func AttributeTaps(windows []Window, taps []time.Time, finalGrace time.Duration) map[int]int {
	attributed := make(map[int]int)
	if len(windows) == 0 {
		return attributed
	}

	last := len(windows) - 1
	for _, tap := range taps {
		matched := false
		for i, window := range windows {
			if window.contains(tap) {
				attributed[i]++
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		if tap.After(windows[last].End) && !tap.After(windows[last].End.Add(finalGrace)) {
			attributed[last]++
		}
	}

	return attributed
}

// ScoreLetterTapping counts errors for the tap-on-target-letter task: every
// target letter with no attributed tap is a miss, and every tap attributed
// to a non-target letter is a false positive. Up to two errors still pass
// (score 1); three or more fail (score 0).
//
// The continuous error count is returned for persistence even though the
// score collapses to pass/fail.
func ScoreLetterTapping(letters []string, target string, windows []Window, taps []time.Time, finalGrace time.Duration) (errorCount int, score float64) {
	attributed := AttributeTaps(windows, taps, finalGrace)

	for i, letter := range letters {
		tapCount := attributed[i]
		if letter == target {
			if tapCount == 0 {
				errorCount++
			}
			continue
		}
		errorCount += tapCount
	}

	if errorCount <= 2 {
		return errorCount, 1
	}
	return errorCount, 0
}
