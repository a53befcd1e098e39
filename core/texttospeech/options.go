package texttospeech

import "github.com/cognivoice/assess-core/core/audio"

type TextToSpeechOptions struct {
	// SpeechAudioCallback is called when the TTS client produces audio.
	SpeechAudioCallback func(audio []byte)
	// SpeechEndedCallback is called once all requested speech has been
	// generated and delivered.
	SpeechEndedCallback func()
	// ErrorCallback is called when the TTS client encounters an error, this
	// usually means the generation has been cancelled.
	ErrorCallback func(error)

	Format audio.Format
}

type TextToSpeechOption func(*TextToSpeechOptions)

func WithSpeechAudioCallback(callback func([]byte)) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		o.SpeechAudioCallback = callback
	}
}

func WithSpeechEndedCallback(callback func()) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		o.SpeechEndedCallback = callback
	}
}

func WithErrorCallback(callback func(error)) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		o.ErrorCallback = callback
	}
}

func WithFormat(format audio.Format) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		if format.IsZero() {
			return
		}

		o.Format = format
	}
}

type SpeechGenerator interface {
	// SendText sends text to the generator. It is guaranteed that the
	// speech will be generated in the order text is sent.
	//
	// SendText will error if EndOfText, Cancel or Close has been called.
	SendText(string) error
	// EndOfText signals that no more text will be sent. After EndOfText the
	// generator closes itself once all the speech has been generated.
	//
	// EndOfText will error if Cancel or Close has been called.
	EndOfText() error
	// Cancel immediately cancels further speech generation and closes the
	// generator.
	//
	// Cancel will error if Close has been called.
	Cancel() error
	// Close immediately closes the generator. No more speech is generated
	// after this call. Repeated calls are ignored.
	Close() error
}
