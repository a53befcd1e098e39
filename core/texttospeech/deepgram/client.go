// Package deepgram synthesizes spoken prompts over Deepgram's speak API.
package deepgram

import (
	"fmt"
	"slices"

	"github.com/cognivoice/assess-core/core/audio"
)

type deepgramVoice string

const (
	VoiceThalia  deepgramVoice = "aura-2-thalia-en"
	VoiceOrion   deepgramVoice = "aura-2-orion-en"
	VoiceLuna    deepgramVoice = "aura-2-luna-en"
	VoiceAsteria deepgramVoice = "aura-asteria-en"

	defaultVoice = VoiceThalia
)

func GetAvailableVoices() []deepgramVoice {
	return []deepgramVoice{VoiceThalia, VoiceOrion, VoiceLuna, VoiceAsteria}
}

type TextToSpeechClient struct {
	voice  deepgramVoice
	format audio.Format
}

func NewTextToSpeechClient(voice deepgramVoice) (*TextToSpeechClient, error) {
	if !slices.Contains(GetAvailableVoices(), voice) {
		return nil, fmt.Errorf("invalid voice")
	}

	return &TextToSpeechClient{voice: voice, format: audio.Canonical()}, nil
}

func (c *TextToSpeechClient) SetVoice(voice deepgramVoice) {
	c.voice = voice
}
