package protocol

import (
	"encoding/json"
	"fmt"
)

// PCMFormatTag is the only audio format carried on the wire.
const PCMFormatTag = "pcm_16bit_mono"

// EventAction enumerates client-to-evaluator control events.
type EventAction string

const (
	EventStartTask     EventAction = "start_task"
	EventEndSession    EventAction = "end_session"
	EventAudioComplete EventAction = "audio_complete"
)

// OutboundMessage is a closed sum of client-to-evaluator messages. The wire
// envelope is {"type": ..., "data": {...}} with the type field selecting the
// data shape.
type OutboundMessage interface {
	isOutbound()
	messageType() string
}

// AudioChunk carries one block of canonical-format PCM, base64-encoded.
type AudioChunk struct {
	Audio      []byte `json:"audio"`
	SampleRate int    `json:"sample_rate"`
	Format     string `json:"format"`
}

func (AudioChunk) isOutbound()         {}
func (AudioChunk) messageType() string { return "audio_chunk" }

// Event is a control event such as starting the task or ending the session.
type Event struct {
	Action EventAction `json:"action"`
}

func (Event) isOutbound()         {}
func (Event) messageType() string { return "event" }

type outboundEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// EncodeOutbound serializes an outbound message into its wire envelope.
func EncodeOutbound(msg OutboundMessage) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s data: %w", msg.messageType(), err)
	}

	return json.Marshal(outboundEnvelope{Type: msg.messageType(), Data: data})
}

// TaskStateValue enumerates evaluator-reported task states.
type TaskStateValue string

const (
	TaskStateListening TaskStateValue = "listening"
	TaskStateComplete  TaskStateValue = "complete"
)

// TransitionPhase tags an explicit evaluator-driven phase change.
type TransitionPhase string

const (
	PhaseInstructionDisplay TransitionPhase = "instruction_display"
	PhaseInstructionPlaying TransitionPhase = "instruction_playing"
	PhaseTrialIntroPlaying  TransitionPhase = "trial_intro_playing"
	PhaseWordsDisplaying    TransitionPhase = "words_displaying"
	PhaseWordsPlaying       TransitionPhase = "words_playing"
	PhasePromptPlaying      TransitionPhase = "prompt_playing"
	PhaseBeepStart          TransitionPhase = "beep_start"
	PhaseRecording          TransitionPhase = "recording"
	PhaseBeepEnd            TransitionPhase = "beep_end"
	PhaseRecordingComplete  TransitionPhase = "recording_complete"
	PhaseCompletionPlaying  TransitionPhase = "completion_playing"
	PhaseComplete           TransitionPhase = "complete"
)

// InboundMessage is a closed sum of evaluator-to-client messages. Decoding is
// fail closed: an unknown type or a missing required field yields a
// *DecodeError, never a best-effort variant.
type InboundMessage interface {
	isInbound()
	MessageType() string
}

// TTSAudio carries synthesized speech to play, base64-encoded.
type TTSAudio struct {
	Audio       []byte `json:"audio"`
	TrialNumber *int   `json:"trial_number,omitempty"`
}

func (TTSAudio) isInbound()          {}
func (TTSAudio) MessageType() string { return "tts_audio" }

// TaskState reports the evaluator-side task state.
type TaskState struct {
	State       TaskStateValue `json:"state"`
	TrialNumber *int           `json:"trial_number,omitempty"`
	Message     *string        `json:"message,omitempty"`
}

func (TaskState) isInbound()          {}
func (TaskState) MessageType() string { return "task_state" }

// Debug is a human-readable diagnostic line from the evaluator.
type Debug struct {
	Message string `json:"message"`
}

func (Debug) isInbound()          {}
func (Debug) MessageType() string { return "debug" }

// EvaluationResult is the evaluator's verdict for one trial. The optional
// field groups differ per task: word1/word2/category for abstraction,
// words/correct_words/score for working memory.
type EvaluationResult struct {
	TrialNumber  int       `json:"trial_number"`
	Word1        *string   `json:"word1,omitempty"`
	Word2        *string   `json:"word2,omitempty"`
	Category     *string   `json:"category,omitempty"`
	Words        []string  `json:"words,omitempty"`
	CorrectWords []string  `json:"correct_words,omitempty"`
	Score        *float64  `json:"score,omitempty"`
	Transcript   string    `json:"transcript"`
	IsCorrect    bool      `json:"is_correct"`
	Confidence   float64   `json:"confidence"`
	Notes        string    `json:"notes"`
}

func (EvaluationResult) isInbound()          {}
func (EvaluationResult) MessageType() string { return "evaluation_result" }

// AllResults is the ordered sequence of per-trial results sent at task end.
type AllResults []EvaluationResult

func (AllResults) isInbound()          {}
func (AllResults) MessageType() string { return "all_results" }

// WordDisplay asks the presentation layer to show one stimulus word.
type WordDisplay struct {
	Word        string `json:"word"`
	TrialNumber int    `json:"trial_number"`
	WordIndex   int    `json:"word_index"`
}

func (WordDisplay) isInbound()          {}
func (WordDisplay) MessageType() string { return "word_display" }

// StateTransition is an explicit evaluator-driven phase change.
type StateTransition struct {
	Phase       TransitionPhase `json:"phase"`
	TrialNumber *int            `json:"trial_number,omitempty"`
	Message     *string         `json:"message,omitempty"`
}

func (StateTransition) isInbound()          {}
func (StateTransition) MessageType() string { return "state_transition" }

// DecodeError reports a malformed inbound message. It is surfaced to the
// error subscriber and never terminates the connection.
type DecodeError struct {
	MessageType string
	Err         error
}

func (e *DecodeError) Error() string {
	if e.MessageType == "" {
		return fmt.Sprintf("failed to decode inbound message: %v", e.Err)
	}
	return fmt.Sprintf("failed to decode %q message: %v", e.MessageType, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type inboundEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// DecodeInbound parses one wire frame into its typed variant. The type field
// is matched first; the required fields of the selected variant are then
// validated, and any other combination fails.
func DecodeInbound(frame []byte) (InboundMessage, error) {
	var envelope inboundEnvelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if envelope.Type == "" {
		return nil, &DecodeError{Err: fmt.Errorf("missing type field")}
	}
	if len(envelope.Data) == 0 {
		return nil, &DecodeError{MessageType: envelope.Type, Err: fmt.Errorf("missing data field")}
	}

	switch envelope.Type {
	case "tts_audio":
		var msg TTSAudio
		if err := json.Unmarshal(envelope.Data, &msg); err != nil {
			return nil, &DecodeError{MessageType: envelope.Type, Err: err}
		}
		if len(msg.Audio) == 0 {
			return nil, &DecodeError{MessageType: envelope.Type, Err: fmt.Errorf("missing audio field")}
		}
		return msg, nil

	case "task_state":
		var msg TaskState
		if err := json.Unmarshal(envelope.Data, &msg); err != nil {
			return nil, &DecodeError{MessageType: envelope.Type, Err: err}
		}
		if msg.State != TaskStateListening && msg.State != TaskStateComplete {
			return nil, &DecodeError{MessageType: envelope.Type, Err: fmt.Errorf("invalid state %q", msg.State)}
		}
		return msg, nil

	case "debug":
		var msg Debug
		if err := json.Unmarshal(envelope.Data, &msg); err != nil {
			return nil, &DecodeError{MessageType: envelope.Type, Err: err}
		}
		if msg.Message == "" {
			return nil, &DecodeError{MessageType: envelope.Type, Err: fmt.Errorf("missing message field")}
		}
		return msg, nil

	case "evaluation_result":
		msg, err := decodeEvaluationResult(envelope.Data)
		if err != nil {
			return nil, &DecodeError{MessageType: envelope.Type, Err: err}
		}
		return *msg, nil

	case "all_results":
		var raw []json.RawMessage
		if err := json.Unmarshal(envelope.Data, &raw); err != nil {
			return nil, &DecodeError{MessageType: envelope.Type, Err: err}
		}
		results := make(AllResults, 0, len(raw))
		for i, item := range raw {
			msg, err := decodeEvaluationResult(item)
			if err != nil {
				return nil, &DecodeError{MessageType: envelope.Type, Err: fmt.Errorf("result %d: %w", i, err)}
			}
			results = append(results, *msg)
		}
		return results, nil

	case "word_display":
		var fields struct {
			Word        *string `json:"word"`
			TrialNumber *int    `json:"trial_number"`
			WordIndex   *int    `json:"word_index"`
		}
		if err := json.Unmarshal(envelope.Data, &fields); err != nil {
			return nil, &DecodeError{MessageType: envelope.Type, Err: err}
		}
		if fields.Word == nil || fields.TrialNumber == nil || fields.WordIndex == nil {
			return nil, &DecodeError{MessageType: envelope.Type, Err: fmt.Errorf("missing required field")}
		}
		return WordDisplay{Word: *fields.Word, TrialNumber: *fields.TrialNumber, WordIndex: *fields.WordIndex}, nil

	case "state_transition":
		var msg StateTransition
		if err := json.Unmarshal(envelope.Data, &msg); err != nil {
			return nil, &DecodeError{MessageType: envelope.Type, Err: err}
		}
		if msg.Phase == "" {
			return nil, &DecodeError{MessageType: envelope.Type, Err: fmt.Errorf("missing phase field")}
		}
		return msg, nil
	}

	return nil, &DecodeError{MessageType: envelope.Type, Err: fmt.Errorf("unknown message type")}
}

func decodeEvaluationResult(data []byte) (*EvaluationResult, error) {
	var fields struct {
		TrialNumber  *int      `json:"trial_number"`
		Word1        *string   `json:"word1"`
		Word2        *string   `json:"word2"`
		Category     *string   `json:"category"`
		Words        []string  `json:"words"`
		CorrectWords []string  `json:"correct_words"`
		Score        *float64  `json:"score"`
		Transcript   *string   `json:"transcript"`
		IsCorrect    *bool     `json:"is_correct"`
		Confidence   *float64  `json:"confidence"`
		Notes        *string   `json:"notes"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	if fields.TrialNumber == nil {
		return nil, fmt.Errorf("missing trial_number field")
	}
	if fields.Transcript == nil || fields.IsCorrect == nil || fields.Confidence == nil {
		return nil, fmt.Errorf("missing required field")
	}

	msg := EvaluationResult{
		TrialNumber:  *fields.TrialNumber,
		Word1:        fields.Word1,
		Word2:        fields.Word2,
		Category:     fields.Category,
		Words:        fields.Words,
		CorrectWords: fields.CorrectWords,
		Score:        fields.Score,
		Transcript:   *fields.Transcript,
		IsCorrect:    *fields.IsCorrect,
		Confidence:   *fields.Confidence,
	}
	if fields.Notes != nil {
		msg.Notes = *fields.Notes
	}
	return &msg, nil
}
