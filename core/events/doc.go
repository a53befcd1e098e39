// Package events defines the typed task orchestration event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - task_state.*
//   - stimulus.*
//   - response.*
//   - evaluation.*
//
// task_state events
//
//   - TaskPhaseChanged (task_state.phase_changed): the task moved from one
//     lifecycle phase to another.
//   - TaskCompleted (task_state.completed): the task ran to completion and
//     its results are recorded.
//   - TaskCancelled (task_state.cancelled): the task was cancelled before
//     completion; partial results may be recorded.
//   - TaskFailed (task_state.failed): the task aborted on an error.
//
// stimulus events
//
//   - StimulusPresented (stimulus.presented): one stimulus item (digit,
//     letter, instruction) was presented to the subject.
//   - PromptSpoken (stimulus.prompt_spoken): a spoken prompt finished
//     playing through the output device.
//   - WordDisplayed (stimulus.word_displayed): the remote evaluator asked
//     for a word to be shown on screen.
//
// response events
//
//   - TapDetected (response.tap_detected): the subject tapped during a
//     letter presentation run.
//   - TranscriptReceived (response.transcript_received): a transcript for a
//     recorded response clip became available.
//   - ClipRecorded (response.clip_recorded): a response clip finished
//     recording and was persisted.
//
// evaluation events
//
//   - EvaluationReceived (evaluation.result_received): a per-trial
//     evaluation result arrived.
//   - EvaluationTimedOut (evaluation.timed_out): no evaluation arrived
//     within the transcription ceiling.
package events
