package events

const (
	// KindEvaluationReceived identifies an arrived per-trial evaluation.
	KindEvaluationReceived Kind = "evaluation.result_received"
	// KindEvaluationTimedOut identifies an evaluation that never arrived.
	KindEvaluationTimedOut Kind = "evaluation.timed_out"
)

// EvaluationReceived carries a per-trial evaluation result.
type EvaluationReceived struct {
	Base
	TrialNumber int
	Transcript  string
	IsCorrect   bool
	Score       float64
}

// NewEvaluationReceived creates an evaluation received event.
func NewEvaluationReceived(trialNumber int, transcript string, isCorrect bool, score float64) EvaluationReceived {
	return EvaluationReceived{
		Base:        NewBase(KindEvaluationReceived),
		TrialNumber: trialNumber,
		Transcript:  transcript,
		IsCorrect:   isCorrect,
		Score:       score,
	}
}

// EvaluationTimedOut marks a trial whose evaluation did not arrive within
// the transcription ceiling.
type EvaluationTimedOut struct {
	Base
	TrialNumber int
}

// NewEvaluationTimedOut creates an evaluation timed out event.
func NewEvaluationTimedOut(trialNumber int) EvaluationTimedOut {
	return EvaluationTimedOut{Base: NewBase(KindEvaluationTimedOut), TrialNumber: trialNumber}
}
