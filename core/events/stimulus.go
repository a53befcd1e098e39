package events

const (
	// KindStimulusPresented identifies presentation of one stimulus item.
	KindStimulusPresented Kind = "stimulus.presented"
	// KindPromptSpoken identifies completed playback of a spoken prompt.
	KindPromptSpoken Kind = "stimulus.prompt_spoken"
	// KindWordDisplayed identifies a word the remote evaluator wants shown.
	KindWordDisplayed Kind = "stimulus.word_displayed"
)

// StimulusPresented carries one presented stimulus item: a digit, a letter,
// or an instruction line, together with its position in the run.
type StimulusPresented struct {
	Base
	Text  string
	Index int
}

// NewStimulusPresented creates a stimulus presented event.
func NewStimulusPresented(text string, index int) StimulusPresented {
	return StimulusPresented{Base: NewBase(KindStimulusPresented), Text: text, Index: index}
}

// PromptSpoken marks that a spoken prompt finished playing.
type PromptSpoken struct {
	Base
	Text string
}

// NewPromptSpoken creates a prompt spoken event.
func NewPromptSpoken(text string) PromptSpoken {
	return PromptSpoken{Base: NewBase(KindPromptSpoken), Text: text}
}

// WordDisplayed carries a word the remote evaluator asked to show on screen.
type WordDisplayed struct {
	Base
	Word string
}

// NewWordDisplayed creates a word displayed event.
func NewWordDisplayed(word string) WordDisplayed {
	return WordDisplayed{Base: NewBase(KindWordDisplayed), Word: word}
}
